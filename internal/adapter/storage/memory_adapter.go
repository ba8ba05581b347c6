package storage

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rl1809/eshop/internal/core/domain"
	"github.com/rl1809/eshop/internal/port"
)

// MemoryAdapter keeps shipment records in process. It backs the tests and
// the default server configuration when no durable store is configured.
type MemoryAdapter struct {
	mu      sync.RWMutex
	records map[string]domain.Shipping
	byOrder map[string]string
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		records: make(map[string]domain.Shipping),
		byOrder: make(map[string]string),
	}
}

func (m *MemoryAdapter) Create(ctx context.Context, rec domain.Shipping) (domain.Shipping, bool, error) {
	_ = ctx

	m.mu.Lock()
	defer m.mu.Unlock()

	if existingID, ok := m.byOrder[rec.OrderID]; ok {
		return cloneShipping(m.records[existingID]), false, nil
	}

	m.records[rec.ID] = cloneShipping(rec)
	m.byOrder[rec.OrderID] = rec.ID
	return rec, true, nil
}

func (m *MemoryAdapter) Get(ctx context.Context, shippingID string) (domain.Shipping, error) {
	_ = ctx

	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[shippingID]
	if !ok {
		return domain.Shipping{}, port.ErrShippingNotFound
	}
	return cloneShipping(rec), nil
}

func (m *MemoryAdapter) UpdateStatus(ctx context.Context, shippingID string, status domain.ShippingStatus) error {
	_ = ctx

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[shippingID]
	if !ok {
		return port.ErrShippingNotFound
	}
	rec.Status = status
	rec.UpdatedAt = time.Now().UTC()
	m.records[shippingID] = rec
	return nil
}

func cloneShipping(rec domain.Shipping) domain.Shipping {
	rec.ProductIDs = slices.Clone(rec.ProductIDs)
	return rec
}
