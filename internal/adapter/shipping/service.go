package shipping

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/rl1809/eshop/internal/core/domain"
	"github.com/rl1809/eshop/internal/pkg/metrics"
	"github.com/rl1809/eshop/internal/port"
)

var availableShippingTypes = []string{"standard", "express", "overnight", "pickup"}

// Service implements the shipping subsystem: it validates and stores
// shipment requests, announces them on the processing queue, and drives
// status transitions. Records live behind the repository port, so the
// backing store is swappable.
type Service struct {
	repo   port.ShippingRepository
	pub    port.ShippingPublisher
	logger *zap.Logger
	group  singleflight.Group
	now    func() time.Time
}

func NewService(repo port.ShippingRepository, pub port.ShippingPublisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		pub:    pub,
		logger: logger,
		now:    time.Now,
	}
}

// ListAvailableShippingType returns a copy of the supported shipping types.
func (s *Service) ListAvailableShippingType() []string {
	return slices.Clone(availableShippingTypes)
}

// CreateShipping registers a shipment for the order. Idempotent on
// orderID: a repeated order returns the original shipping ID and publishes
// nothing.
func (s *Service) CreateShipping(ctx context.Context, shippingType string, productIDs []string, orderID string, dueDate time.Time) (string, error) {
	if !slices.Contains(availableShippingTypes, shippingType) {
		return "", fmt.Errorf("%w: %q", port.ErrUnsupportedShippingType, shippingType)
	}
	if !dueDate.After(s.now()) {
		return "", port.ErrPastDueDate
	}

	now := s.now().UTC()
	rec := domain.Shipping{
		ID:           uuid.NewString(),
		OrderID:      orderID,
		ShippingType: shippingType,
		ProductIDs:   slices.Clone(productIDs),
		Status:       domain.ShippingCreated,
		DueDate:      dueDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	stored, created, err := s.repo.Create(ctx, rec)
	if err != nil {
		return "", fmt.Errorf("create shipping: %w", err)
	}
	if !created {
		s.logger.Info("shipping already exists for order",
			zap.String("order_id", orderID),
			zap.String("shipping_id", stored.ID),
		)
		return stored.ID, nil
	}

	if err := s.pub.Publish(ctx, stored.ID); err != nil {
		return "", fmt.Errorf("publish shipping: %w", err)
	}

	metrics.ShipmentsCreated.Inc()
	s.logger.Info("shipping created",
		zap.String("shipping_id", stored.ID),
		zap.String("order_id", orderID),
		zap.String("shipping_type", shippingType),
		zap.Time("due_date", dueDate),
	)
	return stored.ID, nil
}

// CheckStatus returns the current status of a shipment. A record still in
// flight past its due date is moved to overdue before returning.
// Concurrent polls for the same shipment collapse into one repository read.
func (s *Service) CheckStatus(ctx context.Context, shippingID string) (domain.ShippingStatus, error) {
	metrics.StatusChecks.Inc()

	v, err, _ := s.group.Do(shippingID, func() (any, error) {
		rec, err := s.repo.Get(ctx, shippingID)
		if err != nil {
			return domain.ShippingStatus(""), err
		}
		if !rec.Status.Terminal() && s.now().After(rec.DueDate) {
			if err := s.repo.UpdateStatus(ctx, rec.ID, domain.ShippingOverdue); err != nil {
				return domain.ShippingStatus(""), fmt.Errorf("mark overdue: %w", err)
			}
			s.logger.Warn("shipping overdue",
				zap.String("shipping_id", rec.ID),
				zap.Time("due_date", rec.DueDate),
			)
			return domain.ShippingOverdue, nil
		}
		return rec.Status, nil
	})
	if err != nil {
		return "", err
	}
	return v.(domain.ShippingStatus), nil
}

// ProcessShipping is the worker step behind the notification queue: a
// freshly created shipment moves to in_progress, or straight to failed
// when its due date already elapsed. Re-processing a shipment that left
// the created state is a no-op.
func (s *Service) ProcessShipping(ctx context.Context, shippingID string) error {
	rec, err := s.repo.Get(ctx, shippingID)
	if err != nil {
		return err
	}
	if rec.Status != domain.ShippingCreated {
		return nil
	}

	next := domain.ShippingInProgress
	if s.now().After(rec.DueDate) {
		next = domain.ShippingFailed
	}
	if err := s.repo.UpdateStatus(ctx, rec.ID, next); err != nil {
		return fmt.Errorf("process shipping: %w", err)
	}

	s.logger.Info("shipping processed",
		zap.String("shipping_id", rec.ID),
		zap.String("status", string(next)),
	)
	return nil
}

// CompleteShipping marks a shipment delivered. Terminal records are left
// untouched.
func (s *Service) CompleteShipping(ctx context.Context, shippingID string) error {
	rec, err := s.repo.Get(ctx, shippingID)
	if err != nil {
		return err
	}
	if rec.Status.Terminal() {
		return fmt.Errorf("shipping %s is already %s", rec.ID, rec.Status)
	}
	if err := s.repo.UpdateStatus(ctx, rec.ID, domain.ShippingDelivered); err != nil {
		return fmt.Errorf("complete shipping: %w", err)
	}

	s.logger.Info("shipping delivered", zap.String("shipping_id", rec.ID))
	return nil
}
