package cache

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/sangkips/velo-register/internal/domain/entity"
	domainRepo "github.com/sangkips/velo-register/internal/domain/repository"
)

// MemoryCartStore keeps carts in process memory. Carts are stored as JSON
// so callers never share a cart value with the store.
type MemoryCartStore struct {
	mu    sync.RWMutex
	carts map[int64][]byte
}

var _ domainRepo.CartStore = (*MemoryCartStore)(nil)

func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{carts: make(map[int64][]byte)}
}

func (m *MemoryCartStore) Load(_ context.Context, operatorID int64) (*entity.Cart, error) {
	m.mu.RLock()
	data, ok := m.carts[operatorID]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	var cart entity.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (m *MemoryCartStore) Save(_ context.Context, operatorID int64, cart *entity.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.carts[operatorID] = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryCartStore) Delete(_ context.Context, operatorID int64) error {
	m.mu.Lock()
	delete(m.carts, operatorID)
	m.mu.Unlock()
	return nil
}
