package service

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/sangkips/velo-register/internal/domain/entity"
	"github.com/sangkips/velo-register/internal/domain/enum"
	"github.com/sangkips/velo-register/internal/domain/repository"
	"github.com/sangkips/velo-register/pkg/apperror"
	"github.com/sangkips/velo-register/pkg/money"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Session is one operator's register: a cart, a scan in progress flag and
// the state of the checkout orchestrator.
type Session struct {
	OperatorID int64

	mu            sync.Mutex
	cart          *entity.Cart
	checkoutState enum.CheckoutState

	resolving atomic.Bool
}

// beginCheckout moves an idle session into validation and returns a
// snapshot of the cart to check out.
func (s *Session) beginCheckout() (*entity.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checkoutState != enum.CheckoutIdle {
		return nil, apperror.ErrBusy
	}
	s.checkoutState = enum.CheckoutValidating
	return s.cart.Snapshot(), nil
}

func (s *Session) setCheckoutState(state enum.CheckoutState) {
	s.mu.Lock()
	s.checkoutState = state
	s.mu.Unlock()
}

// CheckoutState returns where the session's orchestrator currently is
func (s *Session) CheckoutState() enum.CheckoutState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkoutState
}

// CartLineView is a cart line with its display totals
type CartLineView struct {
	entity.CartLine
	Totals money.LineTotals `json:"totals"`
}

// CartView is what the register shows for a cart
type CartView struct {
	Lines            []CartLineView     `json:"lines"`
	SelectedStore    enum.Store         `json:"selected_store"`
	StoreName        string             `json:"store_name"`
	SelectedClient   *entity.ClientRef  `json:"selected_client,omitempty"`
	PaymentMethod    enum.PaymentMethod `json:"payment_method"`
	InstallmentCount int                `json:"installment_count"`
	Installments     []decimal.Decimal  `json:"installments"`
	Notes            string             `json:"notes,omitempty"`
	ItemCount        int                `json:"item_count"`
	Totals           money.Totals       `json:"totals"`
	CanCheckout      bool               `json:"can_checkout"`
	CheckoutState    enum.CheckoutState `json:"checkout_state"`
}

func newCartView(c *entity.Cart, state enum.CheckoutState) *CartView {
	lines := make([]CartLineView, len(c.Lines))
	for i, l := range c.Lines {
		lines[i] = CartLineView{CartLine: l, Totals: money.LineTotal(l.Pricing())}
	}
	totals := c.Totals()
	return &CartView{
		Lines:            lines,
		SelectedStore:    c.SelectedStore,
		StoreName:        c.SelectedStore.DisplayName(),
		SelectedClient:   c.SelectedClient,
		PaymentMethod:    c.PaymentMethod,
		InstallmentCount: c.InstallmentCount,
		Installments:     money.Installments(totals.Inclusive, c.InstallmentCount),
		Notes:            c.Notes,
		ItemCount:        c.ItemCount(),
		Totals:           totals.Display(),
		CanCheckout:      c.CanCheckout() == nil,
		CheckoutState:    state,
	}
}

// CartService keeps one session per operator and applies cart operations
// to it. Every change is written through to the cart store.
type CartService struct {
	catalog      *CatalogService
	store        repository.CartStore
	defaultStore enum.Store
	logger       *zap.Logger

	mu       sync.Mutex
	sessions map[int64]*Session
}

// NewCartService creates a new cart service
func NewCartService(catalog *CatalogService, store repository.CartStore, defaultStore enum.Store, logger *zap.Logger) *CartService {
	if !defaultStore.IsValid() {
		defaultStore = enum.StoreVilleAvray
	}
	return &CartService{
		catalog:      catalog,
		store:        store,
		defaultStore: defaultStore,
		logger:       logger.Named("cart"),
		sessions:     make(map[int64]*Session),
	}
}

// Session returns the operator's session, restoring a stored cart the first
// time the operator is seen.
func (s *CartService) Session(ctx context.Context, operatorID int64) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[operatorID]; ok {
		return sess, nil
	}

	cart, err := s.store.Load(ctx, operatorID)
	if err != nil {
		s.logger.Warn("failed to restore cart, starting empty",
			zap.Int64("operator_id", operatorID), zap.Error(err))
		cart = nil
	}
	if cart == nil {
		cart = entity.NewCart(s.defaultStore)
	}

	sess := &Session{
		OperatorID:    operatorID,
		cart:          cart,
		checkoutState: enum.CheckoutIdle,
	}
	s.sessions[operatorID] = sess
	return sess, nil
}

// Get returns the operator's cart
func (s *CartService) Get(ctx context.Context, operatorID int64) (*CartView, error) {
	sess, err := s.Session(ctx, operatorID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return newCartView(sess.cart, sess.checkoutState), nil
}

// mutate applies fn under the session lock. Carts cannot change while a
// checkout is running.
func (s *CartService) mutate(ctx context.Context, operatorID int64, fn func(*entity.Cart) error) (*CartView, error) {
	sess, err := s.Session(ctx, operatorID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.checkoutState != enum.CheckoutIdle {
		return nil, apperror.ErrBusy
	}
	if err := fn(sess.cart); err != nil {
		return nil, err
	}
	s.persist(ctx, operatorID, sess.cart)
	return newCartView(sess.cart, sess.checkoutState), nil
}

// persist writes the cart through. The in-memory cart stays authoritative
// when the store is unavailable.
func (s *CartService) persist(ctx context.Context, operatorID int64, cart *entity.Cart) {
	if err := s.store.Save(ctx, operatorID, cart); err != nil {
		s.logger.Warn("failed to persist cart", zap.Int64("operator_id", operatorID), zap.Error(err))
	}
}

// Scan resolves token against the selected store and adds the product. A
// second scan while one is still resolving is rejected.
func (s *CartService) Scan(ctx context.Context, operatorID int64, token string) (*entity.Product, *CartView, error) {
	sess, err := s.Session(ctx, operatorID)
	if err != nil {
		return nil, nil, err
	}
	if !sess.resolving.CompareAndSwap(false, true) {
		return nil, nil, apperror.ErrBusy
	}
	defer sess.resolving.Store(false)

	sess.mu.Lock()
	store := sess.cart.SelectedStore
	sess.mu.Unlock()

	product, err := s.catalog.Resolve(ctx, operatorID, token, store)
	if err != nil {
		return nil, nil, err
	}

	view, err := s.mutate(ctx, operatorID, func(c *entity.Cart) error {
		c.AddProduct(*product)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return product, view, nil
}

// AddProduct adds a product picked from the catalog listing. Stock is checked
// against the selected store like a scan.
func (s *CartService) AddProduct(ctx context.Context, operatorID int64, productID int64) (*CartView, error) {
	product, err := s.catalog.Get(productID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, operatorID, func(c *entity.Cart) error {
		if !product.IsVisible {
			return apperror.ErrHiddenProduct
		}
		if product.Stock(c.SelectedStore) <= 0 {
			return apperror.NewOutOfStockError(c.SelectedStore.DisplayName())
		}
		c.AddProduct(*product)
		return nil
	})
}

func (s *CartService) UpdateQuantity(ctx context.Context, operatorID, productID int64, quantity int) (*CartView, error) {
	return s.mutate(ctx, operatorID, func(c *entity.Cart) error {
		return c.UpdateQuantity(productID, quantity)
	})
}

func (s *CartService) RemoveLine(ctx context.Context, operatorID, productID int64) (*CartView, error) {
	return s.mutate(ctx, operatorID, func(c *entity.Cart) error {
		c.RemoveLine(productID)
		return nil
	})
}

func (s *CartService) SetStore(ctx context.Context, operatorID int64, store enum.Store) (*CartView, error) {
	return s.mutate(ctx, operatorID, func(c *entity.Cart) error {
		return c.SetStore(store)
	})
}

func (s *CartService) SetClient(ctx context.Context, operatorID int64, ref entity.ClientRef) (*CartView, error) {
	return s.mutate(ctx, operatorID, func(c *entity.Cart) error {
		c.SetClient(ref)
		return nil
	})
}

func (s *CartService) ClearClient(ctx context.Context, operatorID int64) (*CartView, error) {
	return s.mutate(ctx, operatorID, func(c *entity.Cart) error {
		c.ClearClient()
		return nil
	})
}

func (s *CartService) SetPayment(ctx context.Context, operatorID int64, method enum.PaymentMethod, installments int) (*CartView, error) {
	return s.mutate(ctx, operatorID, func(c *entity.Cart) error {
		return c.SetPayment(method, installments)
	})
}

func (s *CartService) SetNotes(ctx context.Context, operatorID int64, notes string) (*CartView, error) {
	return s.mutate(ctx, operatorID, func(c *entity.Cart) error {
		c.SetNotes(notes)
		return nil
	})
}

// Clear empties the cart by hand
func (s *CartService) Clear(ctx context.Context, operatorID int64) (*CartView, error) {
	return s.mutate(ctx, operatorID, func(c *entity.Cart) error {
		c.Clear()
		return nil
	})
}

// clearAfterSale empties the cart of a session whose order now exists. It
// runs while the session is still checking out.
func (s *CartService) clearAfterSale(ctx context.Context, sess *Session) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.cart.Clear()
	s.persist(ctx, sess.OperatorID, sess.cart)
}
