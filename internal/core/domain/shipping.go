package domain

import "time"

type ShippingStatus string

const (
	ShippingCreated    ShippingStatus = "created"
	ShippingInProgress ShippingStatus = "in_progress"
	ShippingDelivered  ShippingStatus = "delivered"
	ShippingFailed     ShippingStatus = "failed"
	ShippingOverdue    ShippingStatus = "overdue"
)

// Terminal reports whether the status can no longer change.
func (s ShippingStatus) Terminal() bool {
	switch s {
	case ShippingDelivered, ShippingFailed, ShippingOverdue:
		return true
	}
	return false
}

// Shipping is the authoritative shipment record owned by the shipping
// subsystem. The order core only ever holds its ID.
type Shipping struct {
	ID           string
	OrderID      string
	ShippingType string
	ProductIDs   []string
	Status       ShippingStatus
	DueDate      time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
