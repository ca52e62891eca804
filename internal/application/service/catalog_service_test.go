package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sangkips/velo-register/internal/domain/entity"
	"github.com/sangkips/velo-register/internal/domain/enum"
	"github.com/sangkips/velo-register/pkg/apperror"
	"github.com/sangkips/velo-register/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestResolve_LocalMatchPrefersExactBarcode(t *testing.T) {
	f := newFixture(
		product(1, "Pneu 700x25", "1234", "39.90", 3, 3),
		product(2, "Pneu 700x28", "123", "41.90", 3, 3),
	)

	p, err := f.catalog.Resolve(context.Background(), testOperator, " 123 ", enum.StoreVilleAvray)
	require.NoError(t, err)
	assert.Equal(t, int64(2), p.ID)

	p, err = f.catalog.Resolve(context.Background(), testOperator, "PNEU", enum.StoreVilleAvray)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID, "first match in snapshot order")

	assert.Empty(t, f.gateway.Calls(), "local matches never reach the back office")
}

func TestResolve_EmptyTokenIsValidationError(t *testing.T) {
	f := newFixture()

	_, err := f.catalog.Resolve(context.Background(), testOperator, "   ", enum.StoreVilleAvray)

	assert.True(t, errors.Is(err, apperror.ErrValidation))
	assert.Empty(t, f.gateway.Calls())
}

func TestResolve_RemoteFallback(t *testing.T) {
	f := newFixture()
	remote := product(9, "Selle", "999", "59.00", 1, 0)
	f.gateway.byBarcode["999"] = &remote

	p, err := f.catalog.Resolve(context.Background(), testOperator, "999", enum.StoreVilleAvray)
	require.NoError(t, err)
	assert.Equal(t, int64(9), p.ID)
	assert.Equal(t, []string{"barcode"}, f.gateway.Calls())
}

func TestResolve_RemoteLookupKeepsCase(t *testing.T) {
	f := newFixture(product(1, "Pneu", "3700", "30.00", 2, 2))
	remote := product(9, "Shifter", "SH-AB12", "24.00", 3, 0)
	f.gateway.byBarcode["SH-AB12"] = &remote

	p, err := f.catalog.Resolve(context.Background(), testOperator, "  SH-AB12 ", enum.StoreVilleAvray)
	require.NoError(t, err)
	assert.Equal(t, int64(9), p.ID)
	assert.Equal(t, []string{"barcode"}, f.gateway.Calls())
}

func TestResolve_OutOfStockInSelectedStore(t *testing.T) {
	f := newFixture(product(1, "Dérailleur", "3700", "45.00", 0, 5))

	_, err := f.catalog.Resolve(context.Background(), testOperator, "3700", enum.StoreVilleAvray)

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrOutOfStock))
	assert.Contains(t, err.Error(), "Ville d'Avray")

	p, err := f.catalog.Resolve(context.Background(), testOperator, "3700", enum.StoreGarches)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
}

func TestResolve_HiddenRegardlessOfStock(t *testing.T) {
	hidden := product(1, "Vieux cadre", "111", "199.00", 10, 10)
	hidden.IsVisible = false
	f := newFixture(hidden)

	_, err := f.catalog.Resolve(context.Background(), testOperator, "111", enum.StoreVilleAvray)

	assert.True(t, errors.Is(err, apperror.ErrHiddenProduct))
}

func TestResolve_NotFound(t *testing.T) {
	f := newFixture()

	_, err := f.catalog.Resolve(context.Background(), testOperator, "000", enum.StoreVilleAvray)

	assert.True(t, errors.Is(err, apperror.ErrNotFound))
	assert.False(t, errors.Is(err, apperror.ErrTransport))
}

func TestResolve_TransportFailureSurfacesAsNotFound(t *testing.T) {
	f := newFixture()
	f.gateway.barcodeErr = apperror.NewTransportError("Back office unreachable", errors.New("dial tcp: refused"))

	_, err := f.catalog.Resolve(context.Background(), testOperator, "000", enum.StoreVilleAvray)

	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	assert.True(t, errors.Is(err, apperror.ErrTransport), "cause is kept")
	assert.Len(t, f.gateway.Calls(), 1, "no automatic retry")
}

func TestResolve_RemoteNeedsCredential(t *testing.T) {
	f := newFixture()
	f.credentials.missing = true

	_, err := f.catalog.Resolve(context.Background(), testOperator, "000", enum.StoreVilleAvray)

	assert.True(t, errors.Is(err, apperror.ErrAuthExpired))
	assert.Empty(t, f.gateway.Calls())
}

func TestResolve_AcknowledgesInBackground(t *testing.T) {
	f := newFixture(product(1, "Bidon", "42", "8.00", 2, 2))
	f.ack.done = make(chan struct{}, 1)
	f.ack.err = errors.New("printer offline")

	_, err := f.catalog.Resolve(context.Background(), testOperator, "42", enum.StoreGarches)
	require.NoError(t, err, "acknowledgement failures are not returned")

	select {
	case <-f.ack.done:
	case <-time.After(time.Second):
		t.Fatal("acknowledger was not called")
	}
}

func TestBrowseAndGet(t *testing.T) {
	f := newFixture(
		product(1, "Pneu 700x25", "", "39.90", 3, 3),
		product(2, "Chambre à air", "", "6.90", 3, 3),
		product(3, "Pneu VTT", "", "44.90", 3, 3),
	)

	page := f.catalog.Browse("pneu", &pagination.PaginationParams{Page: 1, PerPage: 1})
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(1), page.Items[0].ID)
	assert.Equal(t, int64(2), page.Pagination.Total)

	all := f.catalog.Browse("", pagination.DefaultPagination())
	assert.Len(t, all.Items, 3)

	p, err := f.catalog.Get(2)
	require.NoError(t, err)
	assert.Equal(t, "Chambre à air", p.Name)

	_, err = f.catalog.Get(99)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestRefresh_ConcurrentCallsShareOneFetch(t *testing.T) {
	f := newFixture()
	f.gateway.listed = []entity.Product{product(5, "Casque", "", "89.00", 1, 1)}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := f.catalog.Refresh(context.Background(), &oauth2.Token{AccessToken: "tok"})
			assert.NoError(t, err)
			assert.Equal(t, 1, n)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, f.gateway.listCalls, 5)
	assert.GreaterOrEqual(t, f.gateway.listCalls, 1)
	assert.Equal(t, 1, f.catalog.Stats().Products)
}

func TestRefresh_FailureKeepsSnapshot(t *testing.T) {
	f := newFixture(product(1, "Bidon", "", "8.00", 2, 2))
	f.gateway.listErr = apperror.NewTransportError("down", errors.New("boom"))

	_, err := f.catalog.RefreshForOperator(context.Background(), testOperator)

	assert.Error(t, err)
	assert.Equal(t, 1, f.catalog.Stats().Products)
}
