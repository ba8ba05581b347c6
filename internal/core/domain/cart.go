package domain

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var ErrEmptyCart = errors.New("cart: cannot place order, cart is empty")

// CartItem is one cart entry: a product and its requested quantity.
type CartItem struct {
	Product  *Product
	Quantity int
}

// ShoppingCart maps products to strictly positive requested quantities.
// Entries keep insertion order so submission returns product identifiers
// deterministically. Re-adding a product replaces its quantity.
type ShoppingCart struct {
	mu    sync.Mutex
	items []CartItem
}

func NewShoppingCart() *ShoppingCart {
	return &ShoppingCart{}
}

// AddProduct validates the requested amount against current stock and
// inserts or replaces the entry for the product. A failed add leaves the
// cart unchanged.
func (c *ShoppingCart) AddProduct(p *Product, amount int) error {
	if p == nil {
		return errors.New("cart: product is required")
	}
	if amount <= 0 {
		return ErrInvalidQuantity
	}
	if !p.IsAvailable(amount) {
		return fmt.Errorf("cart: product %q has only %d items: %w", p.Name(), p.Available(), ErrInsufficientStock)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].Product.Equal(p) {
			c.items[i] = CartItem{Product: p, Quantity: amount}
			return nil
		}
	}
	c.items = append(c.items, CartItem{Product: p, Quantity: amount})
	return nil
}

// RemoveProduct drops the entry for the product. Removing an absent
// product is a no-op.
func (c *ShoppingCart) RemoveProduct(p *Product) {
	if p == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].Product.Equal(p) {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// ContainsProduct reports membership by product identity (name).
func (c *ShoppingCart) ContainsProduct(p *Product) bool {
	if p == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].Product.Equal(p) {
			return true
		}
	}
	return false
}

// CalculateTotal sums price times quantity over all entries. An empty cart
// totals zero.
func (c *ShoppingCart) CalculateTotal() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total int64
	for _, it := range c.items {
		total += it.Product.Price() * int64(it.Quantity)
	}
	return total
}

// Size returns the number of entries in the cart.
func (c *ShoppingCart) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Submit re-validates every entry against live stock and, only if all
// pass, decrements each product and clears the cart. The returned slice
// holds the product names in cart order.
//
// All product locks are held across the whole validate-then-decrement
// sequence, acquired in name order so two carts submitting over shared
// products cannot deadlock. Either every entry is bought or none is.
func (c *ShoppingCart) Submit() ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.items) == 0 {
		return nil, ErrEmptyCart
	}

	// A cart holds at most one entry per name, so the sorted lock order is
	// total and collision free.
	locked := make([]*Product, len(c.items))
	for i, it := range c.items {
		locked[i] = it.Product
	}
	sort.Slice(locked, func(i, j int) bool { return locked[i].name < locked[j].name })
	for _, p := range locked {
		p.mu.Lock()
	}
	defer func() {
		for _, p := range locked {
			p.mu.Unlock()
		}
	}()

	for _, it := range c.items {
		if it.Product.available < it.Quantity {
			return nil, fmt.Errorf("cart: product %q is out of stock: %w", it.Product.name, ErrInsufficientStock)
		}
	}

	productIDs := make([]string, 0, len(c.items))
	for _, it := range c.items {
		it.Product.available -= it.Quantity
		productIDs = append(productIDs, it.Product.name)
	}
	c.items = nil

	return productIDs, nil
}
