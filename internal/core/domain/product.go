package domain

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrInvalidPrice      = errors.New("product: price must be zero or greater")
	ErrInvalidStock      = errors.New("product: stock must be zero or greater")
	ErrInvalidQuantity   = errors.New("product: invalid quantity")
	ErrInsufficientStock = errors.New("product: insufficient stock")
)

// Product is a stock-keeping unit. Identity is the name: two instances
// carrying the same name are interchangeable as cart keys. The stock field
// is guarded by a per-instance mutex so concurrent orders contending for
// the same product cannot oversell it.
type Product struct {
	name  string
	price int64

	mu        sync.Mutex
	available int
}

// NewProduct creates a product with its initial stock. Price is in minor
// currency units.
func NewProduct(name string, price int64, available int) (*Product, error) {
	if price < 0 {
		return nil, ErrInvalidPrice
	}
	if available < 0 {
		return nil, ErrInvalidStock
	}
	return &Product{name: name, price: price, available: available}, nil
}

func (p *Product) Name() string { return p.name }

func (p *Product) Price() int64 { return p.price }

// Available returns a snapshot of the current stock.
func (p *Product) Available() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.available
}

// IsAvailable reports whether the requested amount is in stock right now.
// Negative amounts are never available.
func (p *Product) IsAvailable(amount int) bool {
	if amount < 0 {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.available >= amount
}

// Buy atomically checks availability and decrements stock. Stock never
// goes negative: an amount exceeding the current stock leaves it unchanged
// and returns ErrInsufficientStock.
func (p *Product) Buy(amount int) error {
	if amount < 0 {
		return ErrInvalidQuantity
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.available < amount {
		return fmt.Errorf("product %q has only %d items: %w", p.name, p.available, ErrInsufficientStock)
	}
	p.available -= amount
	return nil
}

// Equal compares products by name only.
func (p *Product) Equal(other *Product) bool {
	return other != nil && p.name == other.name
}

func (p *Product) String() string { return p.name }
