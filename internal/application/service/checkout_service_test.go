package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sangkips/velo-register/internal/domain/entity"
	"github.com/sangkips/velo-register/internal/domain/enum"
	"github.com/sangkips/velo-register/pkg/apperror"
	"github.com/sangkips/velo-register/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// readyCart fills the operator's cart with two Dérailleurs at 45.00 for a
// selected client.
func readyCart(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()
	_, err := f.carts.AddProduct(ctx, testOperator, 1)
	require.NoError(t, err)
	_, err = f.carts.UpdateQuantity(ctx, testOperator, 1, 2)
	require.NoError(t, err)
	_, err = f.carts.SetClient(ctx, testOperator, entity.ClientRef{ID: 12, FullName: "Anne Martin"})
	require.NoError(t, err)
}

func newCheckoutFixture(t *testing.T) *fixture {
	f := newFixture(product(1, "Dérailleur", "3700", "45.00", 5, 5))
	readyCart(t, f)
	return f
}

func cartLines(t *testing.T, f *fixture) int {
	t.Helper()
	view, err := f.carts.Get(context.Background(), testOperator)
	require.NoError(t, err)
	return len(view.Lines)
}

func TestCheckout_Success(t *testing.T) {
	f := newCheckoutFixture(t)

	result, err := f.checkout.Checkout(context.Background(), testOperator, CheckoutOptions{})
	require.NoError(t, err)

	assert.Equal(t, enum.OutcomeSuccess, result.Outcome)
	assert.Equal(t, int64(901), result.OrderID)
	assert.Equal(t, "FAC-0042", result.InvoiceNumber)
	assert.True(t, result.DocumentsRetrieved)
	assert.Equal(t, "90", result.Totals.Inclusive.String())
	assert.Equal(t, []string{
		"create_order", "generate_documents", "download_receipt", "download_invoice",
	}, f.gateway.Calls())

	assert.Contains(t, f.sink.files, "ticket_FAC-0042.pdf")
	assert.Contains(t, f.sink.files, "facture_FAC-0042.pdf")

	require.Len(t, f.gateway.drafts, 1)
	draft := f.gateway.drafts[0]
	assert.Equal(t, int64(12), draft.ClientID)
	assert.Equal(t, enum.StoreVilleAvray, draft.Store)
	require.Len(t, draft.Items, 1)
	assert.Equal(t, 2, draft.Items[0].Quantity)

	assert.Equal(t, 0, cartLines(t, f))
	state, err := f.checkout.State(context.Background(), testOperator)
	require.NoError(t, err)
	assert.Equal(t, enum.CheckoutIdle, state)

	require.Len(t, f.journal.records, 1)
	rec := f.journal.records[0]
	assert.Equal(t, enum.OutcomeSuccess, rec.Outcome)
	require.NotNil(t, rec.OrderID)
	assert.Equal(t, int64(901), *rec.OrderID)
	assert.Equal(t, 2, rec.ItemCount)
}

func TestCheckout_WithoutClientFailsBeforeAnyCall(t *testing.T) {
	f := newFixture(product(1, "Dérailleur", "3700", "45.00", 5, 5))
	_, err := f.carts.AddProduct(context.Background(), testOperator, 1)
	require.NoError(t, err)

	result, err := f.checkout.Checkout(context.Background(), testOperator, CheckoutOptions{})
	require.NoError(t, err)

	assert.Equal(t, enum.OutcomeFailure, result.Outcome)
	assert.Equal(t, enum.StageValidation, result.Stage)
	assert.True(t, errors.Is(result.Err, apperror.ErrValidation))
	assert.Empty(t, f.gateway.Calls())
	assert.Equal(t, 1, cartLines(t, f))
}

func TestCheckout_EmptyCartFails(t *testing.T) {
	f := newFixture()
	_, err := f.carts.SetClient(context.Background(), testOperator, entity.ClientRef{ID: 12, FullName: "Anne Martin"})
	require.NoError(t, err)

	result, err := f.checkout.Checkout(context.Background(), testOperator, CheckoutOptions{})
	require.NoError(t, err)

	assert.Equal(t, enum.OutcomeFailure, result.Outcome)
	assert.Empty(t, f.gateway.Calls())
}

func TestCheckout_OrderTransportFailureKeepsCart(t *testing.T) {
	f := newCheckoutFixture(t)
	f.gateway.orderErr = apperror.NewTransportError("Back office unreachable", errors.New("timeout"))

	result, err := f.checkout.Checkout(context.Background(), testOperator, CheckoutOptions{})
	require.NoError(t, err)

	assert.Equal(t, enum.OutcomeFailure, result.Outcome)
	assert.Equal(t, enum.StageOrder, result.Stage)
	assert.Zero(t, result.OrderID)
	assert.Equal(t, []string{"create_order"}, f.gateway.Calls(), "no retry and no document call")
	assert.Equal(t, 1, cartLines(t, f))

	state, err := f.checkout.State(context.Background(), testOperator)
	require.NoError(t, err)
	assert.Equal(t, enum.CheckoutIdle, state)

	// the operator can simply try again
	f.gateway.orderErr = nil
	result, err = f.checkout.Checkout(context.Background(), testOperator, CheckoutOptions{})
	require.NoError(t, err)
	assert.Equal(t, enum.OutcomeSuccess, result.Outcome)
}

func TestCheckout_ExpiredCredentialAfterOrderIsPartial(t *testing.T) {
	f := newCheckoutFixture(t)
	f.credentials.expireAfter = 1

	result, err := f.checkout.Checkout(context.Background(), testOperator, CheckoutOptions{})
	require.NoError(t, err)

	assert.Equal(t, enum.OutcomePartialSuccess, result.Outcome)
	assert.Equal(t, enum.StageDocuments, result.Stage)
	assert.Equal(t, int64(901), result.OrderID)
	assert.Equal(t, reasonDocumentsAuth, result.Reason)
	assert.True(t, errors.Is(result.Err, apperror.ErrAuthExpired))
	assert.Equal(t, []string{"create_order"}, f.gateway.Calls())
	assert.Equal(t, 0, cartLines(t, f), "the order exists, so the cart is cleared")

	require.Len(t, f.journal.records, 1)
	assert.True(t, f.journal.records[0].NeedsDocuments())
}

func TestCheckout_DocumentGenerationFailure(t *testing.T) {
	f := newCheckoutFixture(t)
	f.gateway.generateErr = apperror.NewTransportError("Back office unreachable", errors.New("502"))

	result, err := f.checkout.Checkout(context.Background(), testOperator, CheckoutOptions{})
	require.NoError(t, err)

	assert.Equal(t, enum.OutcomePartialSuccess, result.Outcome)
	assert.Equal(t, enum.StageDocuments, result.Stage)
	assert.Equal(t, reasonDocuments, result.Reason)
	assert.NotContains(t, f.gateway.Calls(), "download_receipt")
	assert.Equal(t, 0, cartLines(t, f))
}

func TestCheckout_NoInvoiceIsPartial(t *testing.T) {
	f := newCheckoutFixture(t)
	f.gateway.orderConf = &entity.OrderConfirmation{OrderID: 902}

	result, err := f.checkout.Checkout(context.Background(), testOperator, CheckoutOptions{})
	require.NoError(t, err)

	assert.Equal(t, enum.OutcomePartialSuccess, result.Outcome)
	assert.Equal(t, reasonNoInvoice, result.Reason)
	assert.Equal(t, []string{"create_order"}, f.gateway.Calls())
}

func TestCheckout_DownloadFailureIsPartial(t *testing.T) {
	f := newCheckoutFixture(t)
	f.gateway.invoiceErr = apperror.NewTransportError("Back office unreachable", errors.New("reset"))

	result, err := f.checkout.Checkout(context.Background(), testOperator, CheckoutOptions{})
	require.NoError(t, err)

	assert.Equal(t, enum.OutcomePartialSuccess, result.Outcome)
	assert.Equal(t, enum.StageDownload, result.Stage)
	assert.Equal(t, reasonDownload, result.Reason)
	assert.False(t, result.DocumentsRetrieved)
	assert.Equal(t, 0, cartLines(t, f))
}

func TestCheckout_SkipsDownloadWhenUnsupported(t *testing.T) {
	f := newCheckoutFixture(t)
	no := false

	result, err := f.checkout.Checkout(context.Background(), testOperator, CheckoutOptions{SupportsLocalDownload: &no})
	require.NoError(t, err)

	assert.Equal(t, enum.OutcomeSuccess, result.Outcome)
	assert.False(t, result.DocumentsRetrieved)
	assert.Equal(t, []string{"create_order", "generate_documents"}, f.gateway.Calls())
	assert.Empty(t, f.sink.files)
}

func TestCheckout_RequestOverridesDisabledDownload(t *testing.T) {
	f := newCheckoutFixture(t)
	f.checkout = NewCheckoutService(f.carts, f.gateway, f.credentials, f.sink, f.journal, false, zap.NewNop())
	yes := true

	result, err := f.checkout.Checkout(context.Background(), testOperator, CheckoutOptions{SupportsLocalDownload: &yes})
	require.NoError(t, err)

	assert.Equal(t, enum.OutcomeSuccess, result.Outcome)
	assert.True(t, result.DocumentsRetrieved)
	assert.Contains(t, f.sink.files, "ticket_FAC-0042.pdf")
	assert.Contains(t, f.sink.files, "facture_FAC-0042.pdf")
}

func TestCheckout_DownloadWithoutSinkIsPartial(t *testing.T) {
	f := newCheckoutFixture(t)
	f.checkout = NewCheckoutService(f.carts, f.gateway, f.credentials, nil, f.journal, false, zap.NewNop())
	yes := true

	result, err := f.checkout.Checkout(context.Background(), testOperator, CheckoutOptions{SupportsLocalDownload: &yes})
	require.NoError(t, err)

	assert.Equal(t, enum.OutcomePartialSuccess, result.Outcome)
	assert.Equal(t, enum.StageDownload, result.Stage)
	assert.Equal(t, reasonNoSink, result.Reason)
	assert.Equal(t, int64(901), result.OrderID)
	assert.Equal(t, []string{"create_order", "generate_documents"}, f.gateway.Calls())
	assert.Equal(t, 0, cartLines(t, f))
}

func TestCheckout_BusyWhileRunning(t *testing.T) {
	f := newCheckoutFixture(t)

	sess, err := f.carts.Session(context.Background(), testOperator)
	require.NoError(t, err)
	_, err = sess.beginCheckout()
	require.NoError(t, err)

	_, err = f.checkout.Checkout(context.Background(), testOperator, CheckoutOptions{})
	assert.True(t, errors.Is(err, apperror.ErrBusy))
	assert.Empty(t, f.gateway.Calls())
}

func TestCheckout_SurvivesCallerCancellation(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := f.checkout.Checkout(ctx, testOperator, CheckoutOptions{})
	require.NoError(t, err)
	assert.Equal(t, enum.OutcomeSuccess, result.Outcome)
}

func TestCheckout_ListRecords(t *testing.T) {
	f := newCheckoutFixture(t)
	f.credentials.expireAfter = 1
	_, err := f.checkout.Checkout(context.Background(), testOperator, CheckoutOptions{})
	require.NoError(t, err)

	readyCart(t, f)
	f.credentials.expireAfter = 0
	_, err = f.checkout.Checkout(context.Background(), testOperator, CheckoutOptions{})
	require.NoError(t, err)

	all, err := f.checkout.ListRecords(context.Background(), testOperator, pagination.DefaultPagination(), false)
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)

	pending, err := f.checkout.ListRecords(context.Background(), testOperator, pagination.DefaultPagination(), true)
	require.NoError(t, err)
	require.Len(t, pending.Items, 1)
	assert.Equal(t, enum.OutcomePartialSuccess, pending.Items[0].Outcome)
}

func TestCheckout_ListRecordsRejectsBadCursor(t *testing.T) {
	f := newFixture()

	_, err := f.checkout.ListRecordsWithCursor(context.Background(), testOperator, &pagination.CursorParams{Cursor: "%%%", Limit: 10})

	assert.True(t, errors.Is(err, apperror.ErrBadRequest))
}
