package port

import (
	"context"

	"github.com/rl1809/eshop/internal/core/domain"
)

// ShippingRepository persists shipment records for the shipping subsystem.
type ShippingRepository interface {
	// Create stores the record unless one already exists for the same
	// order ID. It returns the stored record and whether this call created
	// it, so creation stays idempotent per order.
	Create(ctx context.Context, rec domain.Shipping) (domain.Shipping, bool, error)

	// Get retrieves a record by shipping ID
	Get(ctx context.Context, shippingID string) (domain.Shipping, error)

	// UpdateStatus transitions a record to the given status
	UpdateStatus(ctx context.Context, shippingID string, status domain.ShippingStatus) error
}

// ShippingPublisher announces freshly created shipments to the processing
// pipeline.
type ShippingPublisher interface {
	Publish(ctx context.Context, shippingID string) error
}
