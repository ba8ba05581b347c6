package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/eshop/internal/core/domain"
	"github.com/rl1809/eshop/internal/port"
)

// DefaultDueWindow is how far in the future a shipment is due when the
// caller does not supply a due date.
const DefaultDueWindow = 24 * time.Hour

var ErrNilCart = errors.New("order: cart is required")

// Order binds one cart to the shipping subsystem under a single order ID.
// It is not reusable for a second cart.
type Order struct {
	cart      *domain.ShoppingCart
	shipping  port.ShippingService
	orderID   string
	dueWindow time.Duration
}

type Option func(*Order)

// WithOrderID overrides the generated order ID, e.g. for a retry that must
// stay idempotent with the original attempt.
func WithOrderID(id string) Option {
	return func(o *Order) {
		if id != "" {
			o.orderID = id
		}
	}
}

// WithDueWindow overrides the default shipment due window.
func WithDueWindow(d time.Duration) Option {
	return func(o *Order) {
		if d > 0 {
			o.dueWindow = d
		}
	}
}

// NewOrder creates an order over the given cart. Every call generates a
// fresh order ID; IDs are never shared between instances.
func NewOrder(cart *domain.ShoppingCart, shipping port.ShippingService, opts ...Option) *Order {
	o := &Order{
		cart:      cart,
		shipping:  shipping,
		orderID:   uuid.NewString(),
		dueWindow: DefaultDueWindow,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Order) ID() string { return o.orderID }

// PlaceOrder submits the cart and requests a shipment for its contents,
// returning the shipping ID. A zero dueDate falls back to now plus the
// configured due window.
//
// Errors from cart submission and from the shipping subsystem are returned
// unchanged; no shipment is requested when submission fails. Shipping type
// and due date validation belong to the shipping subsystem and are not
// duplicated here.
func (o *Order) PlaceOrder(ctx context.Context, shippingType string, dueDate time.Time) (string, error) {
	if o.cart == nil {
		return "", ErrNilCart
	}
	if dueDate.IsZero() {
		dueDate = time.Now().UTC().Add(o.dueWindow)
	}

	productIDs, err := o.cart.Submit()
	if err != nil {
		return "", err
	}

	return o.shipping.CreateShipping(ctx, shippingType, productIDs, o.orderID, dueDate)
}
