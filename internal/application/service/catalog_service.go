package service

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sangkips/velo-register/internal/domain/entity"
	"github.com/sangkips/velo-register/internal/domain/enum"
	"github.com/sangkips/velo-register/internal/domain/repository"
	"github.com/sangkips/velo-register/pkg/apperror"
	"github.com/sangkips/velo-register/pkg/pagination"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const acknowledgeTimeout = 3 * time.Second

// CatalogService turns scanned or typed tokens into sellable products. It
// searches an in-memory snapshot of the catalog first and falls back to an
// exact barcode lookup in the back office.
type CatalogService struct {
	gateway     repository.BackOfficeGateway
	repo        repository.CatalogRepository
	credentials CredentialProvider
	ack         Acknowledger
	logger      *zap.Logger

	mu          sync.RWMutex
	products    []entity.Product
	lastRefresh time.Time

	refreshes singleflight.Group
}

// NewCatalogService creates a new catalog service. repo may be nil, in which
// case the snapshot lives in memory only.
func NewCatalogService(
	gateway repository.BackOfficeGateway,
	repo repository.CatalogRepository,
	credentials CredentialProvider,
	ack Acknowledger,
	logger *zap.Logger,
) *CatalogService {
	if ack == nil {
		ack = noopAcknowledger{}
	}
	return &CatalogService{
		gateway:     gateway,
		repo:        repo,
		credentials: credentials,
		ack:         ack,
		logger:      logger.Named("catalog"),
	}
}

func normalizeToken(token string) string {
	return strings.ToLower(strings.TrimSpace(token))
}

// Resolve finds the product behind token and checks it can be sold from
// store. On success the operator gets audible feedback in the background.
func (s *CatalogService) Resolve(ctx context.Context, operatorID int64, token string, store enum.Store) (*entity.Product, error) {
	raw := strings.TrimSpace(token)
	term := normalizeToken(raw)
	if term == "" {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "token", Message: "Scan or type a product code"},
		})
	}

	product, found := s.matchLocal(term)
	if !found {
		// barcodes are case-sensitive on the back office
		remote, err := s.lookupRemote(ctx, operatorID, raw)
		if err != nil {
			return nil, err
		}
		product = remote
	}

	if !product.IsVisible {
		s.logger.Info("hidden product scanned", zap.Int64("product_id", product.ID))
		return nil, apperror.ErrHiddenProduct
	}
	if product.Stock(store) <= 0 {
		s.logger.Info("product out of stock",
			zap.Int64("product_id", product.ID),
			zap.String("store", store.String()))
		return nil, apperror.NewOutOfStockError(store.DisplayName())
	}

	s.acknowledge(ctx, product)
	return product, nil
}

// matchLocal returns the first snapshot product containing term, preferring
// an exact barcode match.
func (s *CatalogService) matchLocal(term string) (*entity.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	first := -1
	for i := range s.products {
		p := &s.products[i]
		if !p.Matches(term) {
			continue
		}
		if p.BarcodeEquals(term) {
			cp := *p
			return &cp, true
		}
		if first < 0 {
			first = i
		}
	}
	if first < 0 {
		return nil, false
	}
	cp := s.products[first]
	return &cp, true
}

func (s *CatalogService) lookupRemote(ctx context.Context, operatorID int64, code string) (*entity.Product, error) {
	tok, err := s.credentials.Token(ctx, operatorID)
	if err != nil {
		return nil, err
	}

	product, err := s.gateway.ProductByBarcode(ctx, tok, code)
	if err == nil {
		return product, nil
	}

	switch apperror.KindOf(err) {
	case apperror.KindNotFound:
		s.logger.Info("product not found", zap.String("token", code), zap.String("reason", "not_found"))
		return nil, apperror.NewNotFoundError("Product")
	case apperror.KindTransport:
		s.logger.Warn("product lookup failed", zap.String("token", code), zap.String("reason", "transport"), zap.Error(err))
		return nil, &apperror.AppError{
			Code:    http.StatusNotFound,
			Kind:    apperror.KindNotFound,
			Message: "Product not found",
			Err:     err,
		}
	default:
		return nil, err
	}
}

func (s *CatalogService) acknowledge(ctx context.Context, product *entity.Product) {
	ackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), acknowledgeTimeout)
	go func() {
		defer cancel()
		if err := s.ack.Acknowledge(ackCtx, product); err != nil {
			s.logger.Warn("scan acknowledgement failed", zap.Int64("product_id", product.ID), zap.Error(err))
		}
	}()
}

// Get returns the snapshot product with id
func (s *CatalogService) Get(id int64) (*entity.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.products {
		if s.products[i].ID == id {
			cp := s.products[i]
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFoundError("Product")
}

// Browse lists snapshot products whose name, reference or barcode contains search
func (s *CatalogService) Browse(search string, params *pagination.PaginationParams) *pagination.PaginatedResult[entity.Product] {
	term := normalizeToken(search)

	s.mu.RLock()
	matches := make([]entity.Product, 0, len(s.products))
	for _, p := range s.products {
		if p.Matches(term) {
			matches = append(matches, p)
		}
	}
	s.mu.RUnlock()

	return pagination.Slice(matches, params)
}

// Load warms the snapshot from the local repository
func (s *CatalogService) Load(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	products, err := s.repo.All(ctx)
	if err != nil {
		return err
	}
	s.replace(products)
	s.logger.Info("catalog snapshot loaded", zap.Int("products", len(products)))
	return nil
}

// Refresh reloads the snapshot from the back office. Concurrent calls share
// one fetch and its result.
func (s *CatalogService) Refresh(ctx context.Context, tok *oauth2.Token) (int, error) {
	v, err, shared := s.refreshes.Do("refresh", func() (interface{}, error) {
		return s.refresh(context.WithoutCancel(ctx), tok)
	})
	if shared {
		s.logger.Debug("catalog refresh shared with a concurrent caller")
	}
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

func (s *CatalogService) refresh(ctx context.Context, tok *oauth2.Token) (int, error) {
	start := time.Now()
	products, err := s.gateway.ListVisibleProducts(ctx, tok)
	if err != nil {
		s.logger.Warn("catalog refresh failed", zap.Error(err))
		return 0, err
	}

	if s.repo != nil {
		if err := s.repo.ReplaceAll(ctx, products); err != nil {
			s.logger.Error("failed to persist catalog snapshot", zap.Error(err))
		}
	}
	s.replace(products)

	s.logger.Info("catalog refreshed",
		zap.Int("products", len(products)),
		zap.Duration("took", time.Since(start)))
	return len(products), nil
}

func (s *CatalogService) replace(products []entity.Product) {
	s.mu.Lock()
	s.products = products
	s.lastRefresh = time.Now()
	s.mu.Unlock()
}

// RefreshForOperator refreshes with the operator's own credential
func (s *CatalogService) RefreshForOperator(ctx context.Context, operatorID int64) (int, error) {
	tok, err := s.credentials.Token(ctx, operatorID)
	if err != nil {
		return 0, err
	}
	return s.Refresh(ctx, tok)
}

// Run refreshes the snapshot every interval until ctx is done. Ticks with
// nobody signed in are skipped.
func (s *CatalogService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tok, ok := s.credentials.AnyValid()
			if !ok {
				s.logger.Debug("skipping catalog refresh, no operator signed in")
				continue
			}
			_, _ = s.Refresh(ctx, tok)
		}
	}
}

// CatalogStats describes the snapshot
type CatalogStats struct {
	Products    int       `json:"products"`
	LastRefresh time.Time `json:"last_refresh"`
}

func (s *CatalogService) Stats() CatalogStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CatalogStats{Products: len(s.products), LastRefresh: s.lastRefresh}
}
