package service

import (
	"context"
	"errors"
	"time"

	"github.com/sangkips/velo-register/internal/domain/entity"
	"github.com/sangkips/velo-register/internal/domain/enum"
	"github.com/sangkips/velo-register/internal/domain/repository"
	"github.com/sangkips/velo-register/pkg/apperror"
	"github.com/sangkips/velo-register/pkg/pagination"
	"go.uber.org/zap"
)

const (
	reasonDocumentsAuth = "Order recorded, but the session expired before its documents were generated. Re-open the order to resend them."
	reasonDocuments     = "Order recorded, but its documents could not be generated. Re-open the order to resend them."
	reasonNoInvoice     = "Order recorded, but the back office did not open an invoice for it."
	reasonDownload      = "Order recorded and documents generated, but they could not be downloaded to this register."
	reasonNoSink        = "Order recorded and documents generated, but this register has no document folder to save them in."
)

var errNoDocumentSink = errors.New("no document sink configured")

// CheckoutOptions tune a single checkout run
type CheckoutOptions struct {
	// SupportsLocalDownload overrides the register default when set. Clients
	// that cannot save files, such as the Android tablets, pass false.
	SupportsLocalDownload *bool
}

// CheckoutService turns an operator's cart into an order and its documents.
// Steps run strictly in sequence and are never retried.
type CheckoutService struct {
	carts         *CartService
	gateway       repository.BackOfficeGateway
	credentials   CredentialProvider
	sink          DocumentSink
	journal       repository.CheckoutRepository
	localDownload bool
	logger        *zap.Logger
}

// NewCheckoutService creates a new checkout service. journal and sink may be
// nil; without a sink documents are never downloaded.
func NewCheckoutService(
	carts *CartService,
	gateway repository.BackOfficeGateway,
	credentials CredentialProvider,
	sink DocumentSink,
	journal repository.CheckoutRepository,
	localDownload bool,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		carts:         carts,
		gateway:       gateway,
		credentials:   credentials,
		sink:          sink,
		journal:       journal,
		localDownload: localDownload,
		logger:        logger.Named("checkout"),
	}
}

// Checkout runs the orchestrator for the operator's cart. The returned error
// is only set when the run could not start; every outcome of a run that did
// start is described by the result. The run is not cancelled when ctx is.
func (s *CheckoutService) Checkout(ctx context.Context, operatorID int64, opts CheckoutOptions) (entity.CheckoutResult, error) {
	ctx = context.WithoutCancel(ctx)

	sess, err := s.carts.Session(ctx, operatorID)
	if err != nil {
		return entity.CheckoutResult{}, err
	}
	cart, err := sess.beginCheckout()
	if err != nil {
		return entity.CheckoutResult{}, err
	}
	defer sess.setCheckoutState(enum.CheckoutIdle)

	download := s.localDownload
	if opts.SupportsLocalDownload != nil {
		download = *opts.SupportsLocalDownload
	}

	start := time.Now()
	result := s.run(ctx, sess, cart, download)
	result.Totals = cart.Totals().Display()

	if result.Outcome.OrderCreated() {
		s.carts.clearAfterSale(ctx, sess)
	}
	sess.setCheckoutState(result.State)
	s.record(ctx, operatorID, cart, result)

	fields := []zap.Field{
		zap.Int64("operator_id", operatorID),
		zap.String("outcome", result.Outcome.String()),
		zap.Duration("took", time.Since(start)),
	}
	if result.OrderID != 0 {
		fields = append(fields, zap.Int64("order_id", result.OrderID), zap.String("invoice_number", result.InvoiceNumber))
	}
	switch result.Outcome {
	case enum.OutcomeSuccess:
		s.logger.Info("checkout completed", fields...)
	default:
		fields = append(fields, zap.String("stage", result.Stage.String()), zap.Error(result.Err))
		s.logger.Warn("checkout did not complete", fields...)
	}
	return result, nil
}

func (s *CheckoutService) run(ctx context.Context, sess *Session, cart *entity.Cart, download bool) entity.CheckoutResult {
	if err := cart.CanCheckout(); err != nil {
		return entity.Failed(enum.StageValidation, apperror.GetAppError(err).Message, err)
	}

	sess.setCheckoutState(enum.CheckoutCreatingOrder)
	tok, err := s.credentials.Token(ctx, sess.OperatorID)
	if err != nil {
		return entity.Failed(enum.StageOrder, apperror.GetAppError(err).Message, err)
	}
	conf, err := s.gateway.CreateOrder(ctx, tok, entity.NewOrderDraft(cart))
	if err != nil {
		return entity.Failed(enum.StageOrder, apperror.GetAppError(err).Message, err)
	}

	// The order is final from here on.
	sess.setCheckoutState(enum.CheckoutGeneratingDocuments)
	if conf.InvoiceID == 0 {
		return entity.PartiallySucceeded(*conf, enum.StageDocuments, reasonNoInvoice, nil)
	}
	tok, err = s.credentials.Token(ctx, sess.OperatorID)
	if err != nil {
		return entity.PartiallySucceeded(*conf, enum.StageDocuments, reasonDocumentsAuth, err)
	}
	if err := s.gateway.GenerateDocuments(ctx, tok, conf.InvoiceID); err != nil {
		reason := reasonDocuments
		if apperror.KindOf(err) == apperror.KindAuthExpired {
			reason = reasonDocumentsAuth
		}
		return entity.PartiallySucceeded(*conf, enum.StageDocuments, reason, err)
	}

	if !download {
		return entity.Succeeded(*conf, false)
	}
	if s.sink == nil {
		return entity.PartiallySucceeded(*conf, enum.StageDownload, reasonNoSink, errNoDocumentSink)
	}

	sess.setCheckoutState(enum.CheckoutDownloadingDocuments)
	if err := s.download(ctx, sess.OperatorID, *conf); err != nil {
		return entity.PartiallySucceeded(*conf, enum.StageDownload, reasonDownload, err)
	}
	return entity.Succeeded(*conf, true)
}

func (s *CheckoutService) download(ctx context.Context, operatorID int64, conf entity.OrderConfirmation) error {
	tok, err := s.credentials.Token(ctx, operatorID)
	if err != nil {
		return err
	}

	docs := []struct {
		name  string
		fetch func() ([]byte, error)
	}{
		{entity.ReceiptFileName(conf.InvoiceNumber), func() ([]byte, error) {
			return s.gateway.DownloadReceipt(ctx, tok, conf.InvoiceID)
		}},
		{entity.InvoiceFileName(conf.InvoiceNumber), func() ([]byte, error) {
			return s.gateway.DownloadInvoice(ctx, tok, conf.InvoiceID)
		}},
	}
	for _, doc := range docs {
		data, err := doc.fetch()
		if err != nil {
			return err
		}
		path, err := s.sink.Save(ctx, doc.name, data)
		if err != nil {
			return err
		}
		s.logger.Debug("document saved", zap.String("path", path), zap.Int("bytes", len(data)))
	}
	return nil
}

func (s *CheckoutService) record(ctx context.Context, operatorID int64, cart *entity.Cart, result entity.CheckoutResult) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Create(ctx, entity.NewCheckoutRecord(operatorID, cart, result)); err != nil {
		s.logger.Error("failed to journal checkout", zap.Int64("operator_id", operatorID), zap.Error(err))
	}
}

// State returns the orchestrator state of the operator's session
func (s *CheckoutService) State(ctx context.Context, operatorID int64) (enum.CheckoutState, error) {
	sess, err := s.carts.Session(ctx, operatorID)
	if err != nil {
		return "", err
	}
	return sess.CheckoutState(), nil
}

// ListRecords returns the operator's checkout journal, newest first
func (s *CheckoutService) ListRecords(ctx context.Context, operatorID int64, params *pagination.PaginationParams, pendingOnly bool) (*pagination.PaginatedResult[entity.CheckoutRecord], error) {
	if s.journal == nil {
		return pagination.Slice([]entity.CheckoutRecord{}, params), nil
	}
	records, total, err := s.journal.List(ctx, operatorID, params, pendingOnly)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(records, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// ListRecordsWithCursor pages through the journal by keyset
func (s *CheckoutService) ListRecordsWithCursor(ctx context.Context, operatorID int64, params *pagination.CursorParams) (*pagination.CursorPaginatedResult[entity.CheckoutRecord], error) {
	params.Validate()
	if s.journal == nil {
		meta, items := pagination.NewCursorPagination([]entity.CheckoutRecord{}, params, recordID, recordCreatedAt)
		return pagination.NewCursorPaginatedResult(items, meta), nil
	}
	if _, err := params.DecodeCursor(); err != nil {
		return nil, apperror.NewBadRequestError("Invalid cursor")
	}
	records, err := s.journal.ListWithCursor(ctx, operatorID, params)
	if err != nil {
		return nil, err
	}
	meta, items := pagination.NewCursorPagination(records, params, recordID, recordCreatedAt)
	return pagination.NewCursorPaginatedResult(items, meta), nil
}

func recordID(r entity.CheckoutRecord) string           { return r.ID.String() }
func recordCreatedAt(r entity.CheckoutRecord) time.Time { return r.CreatedAt }
