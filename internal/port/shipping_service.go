package port

import (
	"context"
	"errors"
	"time"

	"github.com/rl1809/eshop/internal/core/domain"
)

var (
	ErrUnsupportedShippingType = errors.New("shipping: shipping type is not available")
	ErrPastDueDate             = errors.New("shipping: due date must be in the future")
	ErrShippingNotFound        = errors.New("shipping: shipping not found")
)

// ShippingService is the client contract of the shipping subsystem. The
// order core is agnostic to what backs it.
type ShippingService interface {
	// ListAvailableShippingType returns the supported shipping types in
	// stable order. Never empty.
	ListAvailableShippingType() []string

	// CreateShipping registers a shipment request and returns its shipping
	// ID. It is idempotent on orderID: a repeated order yields the shipping
	// ID of the original record instead of a duplicate.
	CreateShipping(ctx context.Context, shippingType string, productIDs []string, orderID string, dueDate time.Time) (string, error)

	// CheckStatus returns the current status of a shipment.
	CheckStatus(ctx context.Context, shippingID string) (domain.ShippingStatus, error)
}
