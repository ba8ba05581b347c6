package domain

import (
	"sort"
	"sync"
)

// Catalog is a name-keyed registry of live products. Callers that receive
// product names over the wire resolve them here to the shared stock
// records orders contend over.
type Catalog struct {
	mu       sync.RWMutex
	products map[string]*Product
}

func NewCatalog() *Catalog {
	return &Catalog{products: make(map[string]*Product)}
}

// Register adds or replaces the product under its name.
func (c *Catalog) Register(p *Product) {
	if p == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[p.Name()] = p
}

func (c *Catalog) Get(name string) (*Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[name]
	return p, ok
}

// Names lists the registered product names in sorted order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.products))
	for name := range c.products {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
