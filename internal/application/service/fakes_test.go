package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sangkips/velo-register/internal/domain/entity"
	"github.com/sangkips/velo-register/internal/domain/enum"
	"github.com/sangkips/velo-register/pkg/apperror"
	"github.com/sangkips/velo-register/pkg/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const testOperator int64 = 7

type fakeGateway struct {
	mu sync.Mutex

	byBarcode    map[string]*entity.Product
	barcodeErr   error
	barcodeDelay time.Duration
	listed       []entity.Product
	listErr      error
	listCalls    int

	orderConf   *entity.OrderConfirmation
	orderErr    error
	generateErr error
	receiptErr  error
	invoiceErr  error

	clients      []entity.ClientRef
	createdRef   *entity.ClientRef
	createClient error

	calls  []string
	drafts []entity.OrderDraft
}

func (g *fakeGateway) record(call string) {
	g.mu.Lock()
	g.calls = append(g.calls, call)
	g.mu.Unlock()
}

func (g *fakeGateway) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

func (g *fakeGateway) ProductByBarcode(ctx context.Context, _ *oauth2.Token, code string) (*entity.Product, error) {
	g.record("barcode")
	if g.barcodeDelay > 0 {
		time.Sleep(g.barcodeDelay)
	}
	if g.barcodeErr != nil {
		return nil, g.barcodeErr
	}
	if p, ok := g.byBarcode[code]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, apperror.NewNotFoundError("Resource")
}

func (g *fakeGateway) ListVisibleProducts(context.Context, *oauth2.Token) ([]entity.Product, error) {
	g.record("list_products")
	g.mu.Lock()
	g.listCalls++
	g.mu.Unlock()
	time.Sleep(20 * time.Millisecond)
	return g.listed, g.listErr
}

func (g *fakeGateway) CreateOrder(_ context.Context, _ *oauth2.Token, draft entity.OrderDraft) (*entity.OrderConfirmation, error) {
	g.record("create_order")
	g.mu.Lock()
	g.drafts = append(g.drafts, draft)
	g.mu.Unlock()
	if g.orderErr != nil {
		return nil, g.orderErr
	}
	return g.orderConf, nil
}

func (g *fakeGateway) GenerateDocuments(context.Context, *oauth2.Token, int64) error {
	g.record("generate_documents")
	return g.generateErr
}

func (g *fakeGateway) DownloadReceipt(context.Context, *oauth2.Token, int64) ([]byte, error) {
	g.record("download_receipt")
	if g.receiptErr != nil {
		return nil, g.receiptErr
	}
	return []byte("%PDF-receipt"), nil
}

func (g *fakeGateway) DownloadInvoice(context.Context, *oauth2.Token, int64) ([]byte, error) {
	g.record("download_invoice")
	if g.invoiceErr != nil {
		return nil, g.invoiceErr
	}
	return []byte("%PDF-invoice"), nil
}

func (g *fakeGateway) SearchClients(context.Context, *oauth2.Token, string) ([]entity.ClientRef, error) {
	g.record("search_clients")
	return g.clients, nil
}

func (g *fakeGateway) CreateClient(context.Context, *oauth2.Token, entity.NewClientInput) (*entity.ClientRef, error) {
	g.record("create_client")
	return g.createdRef, g.createClient
}

// fakeCredentials hands out tokens; expireAfter makes every call past the
// given count fail as expired.
type fakeCredentials struct {
	mu          sync.Mutex
	calls       int
	expireAfter int
	missing     bool
}

func (c *fakeCredentials) Token(context.Context, int64) (*oauth2.Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.missing || (c.expireAfter > 0 && c.calls > c.expireAfter) {
		return nil, apperror.NewAuthExpiredError(errors.New("expired"))
	}
	return &oauth2.Token{AccessToken: "tok", TokenType: "Bearer"}, nil
}

func (c *fakeCredentials) AnyValid() (*oauth2.Token, bool) {
	if c.missing {
		return nil, false
	}
	return &oauth2.Token{AccessToken: "tok"}, true
}

type fakeCartStore struct {
	mu    sync.Mutex
	carts map[int64]*entity.Cart
	saves int
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{carts: make(map[int64]*entity.Cart)}
}

func (f *fakeCartStore) Load(_ context.Context, id int64) (*entity.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.carts[id]; ok {
		return c.Snapshot(), nil
	}
	return nil, nil
}

func (f *fakeCartStore) Save(_ context.Context, id int64, cart *entity.Cart) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.carts[id] = cart.Snapshot()
	f.saves++
	return nil
}

func (f *fakeCartStore) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.carts, id)
	return nil
}

type fakeSink struct {
	mu    sync.Mutex
	files map[string][]byte
	err   error
}

func (s *fakeSink) Save(_ context.Context, name string, data []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.files == nil {
		s.files = make(map[string][]byte)
	}
	s.files[name] = data
	return "/docs/" + name, nil
}

type fakeJournal struct {
	mu      sync.Mutex
	records []*entity.CheckoutRecord
}

func (j *fakeJournal) Create(_ context.Context, r *entity.CheckoutRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = append(j.records, r)
	return nil
}

func (j *fakeJournal) List(_ context.Context, _ int64, params *pagination.PaginationParams, pendingOnly bool) ([]entity.CheckoutRecord, int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []entity.CheckoutRecord
	for _, r := range j.records {
		if pendingOnly && !r.NeedsDocuments() {
			continue
		}
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

func (j *fakeJournal) ListWithCursor(context.Context, int64, *pagination.CursorParams) ([]entity.CheckoutRecord, error) {
	return nil, nil
}

type fakeAcknowledger struct {
	mu    sync.Mutex
	count int
	err   error
	done  chan struct{}
}

func (a *fakeAcknowledger) Acknowledge(context.Context, *entity.Product) error {
	a.mu.Lock()
	a.count++
	a.mu.Unlock()
	if a.done != nil {
		a.done <- struct{}{}
	}
	return a.err
}

func product(id int64, name, barcode, ttc string, stockVA, stockG int) entity.Product {
	p := entity.Product{
		ID:                id,
		Name:              name,
		Reference:         "REF-" + name,
		PriceInclusiveTax: decimal.RequireFromString(ttc),
		TaxRate:           decimal.NewFromInt(20),
		IsVisible:         true,
		StockByStore: map[enum.Store]int{
			enum.StoreVilleAvray: stockVA,
			enum.StoreGarches:    stockG,
		},
	}
	p.PriceExclusiveTax = p.PriceInclusiveTax.Div(decimal.RequireFromString("1.2"))
	if barcode != "" {
		p.Barcode = &barcode
	}
	return p
}

type fixture struct {
	gateway     *fakeGateway
	credentials *fakeCredentials
	store       *fakeCartStore
	sink        *fakeSink
	journal     *fakeJournal
	ack         *fakeAcknowledger
	catalog     *CatalogService
	carts       *CartService
	checkout    *CheckoutService
	clients     *ClientService
}

func newFixture(snapshot ...entity.Product) *fixture {
	f := &fixture{
		gateway: &fakeGateway{
			byBarcode: map[string]*entity.Product{},
			orderConf: &entity.OrderConfirmation{OrderID: 901, InvoiceID: 77, InvoiceNumber: "FAC-0042"},
		},
		credentials: &fakeCredentials{},
		store:       newFakeCartStore(),
		sink:        &fakeSink{},
		journal:     &fakeJournal{},
		ack:         &fakeAcknowledger{},
	}
	log := zap.NewNop()
	f.catalog = NewCatalogService(f.gateway, nil, f.credentials, f.ack, log)
	f.catalog.replace(snapshot)
	f.carts = NewCartService(f.catalog, f.store, enum.StoreVilleAvray, log)
	f.checkout = NewCheckoutService(f.carts, f.gateway, f.credentials, f.sink, f.journal, true, log)
	f.clients = NewClientService(f.gateway, f.credentials, log)
	return f
}
