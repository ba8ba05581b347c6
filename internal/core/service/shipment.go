package service

import (
	"context"

	"github.com/rl1809/eshop/internal/core/domain"
	"github.com/rl1809/eshop/internal/port"
)

// Shipment is a read handle over a shipment record owned by the shipping
// subsystem.
type Shipment struct {
	shippingID string
	shipping   port.ShippingService
}

func NewShipment(shippingID string, shipping port.ShippingService) *Shipment {
	return &Shipment{shippingID: shippingID, shipping: shipping}
}

func (s *Shipment) ID() string { return s.shippingID }

// CheckShippingStatus reads the current status. Every call is a fresh
// lookup; nothing is cached or retried.
func (s *Shipment) CheckShippingStatus(ctx context.Context) (domain.ShippingStatus, error) {
	return s.shipping.CheckStatus(ctx, s.shippingID)
}
