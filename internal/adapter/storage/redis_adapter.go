package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/eshop/internal/core/domain"
	"github.com/rl1809/eshop/internal/port"
)

const (
	shippingKeyPrefix   = "shipping:"
	orderIndexKeyPrefix = "shipping:order:"
)

// RedisAdapter stores shipment records as hashes, with a SETNX index from
// order ID to shipping ID enforcing idempotent creation.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) Create(ctx context.Context, rec domain.Shipping) (domain.Shipping, bool, error) {
	productIDs, err := json.Marshal(rec.ProductIDs)
	if err != nil {
		return domain.Shipping{}, false, fmt.Errorf("marshal product ids: %w", err)
	}

	recordKey := shippingKeyPrefix + rec.ID
	if err := r.client.HSet(ctx, recordKey,
		"id", rec.ID,
		"order_id", rec.OrderID,
		"shipping_type", rec.ShippingType,
		"product_ids", productIDs,
		"status", string(rec.Status),
		"due_date", rec.DueDate.Format(time.RFC3339Nano),
		"created_at", rec.CreatedAt.Format(time.RFC3339Nano),
		"updated_at", rec.UpdatedAt.Format(time.RFC3339Nano),
	).Err(); err != nil {
		return domain.Shipping{}, false, fmt.Errorf("store shipping: %w", err)
	}

	ok, err := r.client.SetNX(ctx, orderIndexKeyPrefix+rec.OrderID, rec.ID, 0).Result()
	if err != nil {
		return domain.Shipping{}, false, fmt.Errorf("index order: %w", err)
	}
	if !ok {
		// Lost the race for this order: discard the candidate record and
		// hand back the winner.
		if err := r.client.Del(ctx, recordKey).Err(); err != nil {
			return domain.Shipping{}, false, fmt.Errorf("discard duplicate shipping: %w", err)
		}
		existingID, err := r.client.Get(ctx, orderIndexKeyPrefix+rec.OrderID).Result()
		if err != nil {
			return domain.Shipping{}, false, fmt.Errorf("resolve order index: %w", err)
		}
		existing, err := r.Get(ctx, existingID)
		if err != nil {
			return domain.Shipping{}, false, err
		}
		return existing, false, nil
	}

	return rec, true, nil
}

func (r *RedisAdapter) Get(ctx context.Context, shippingID string) (domain.Shipping, error) {
	fields, err := r.client.HGetAll(ctx, shippingKeyPrefix+shippingID).Result()
	if err != nil {
		return domain.Shipping{}, fmt.Errorf("fetch shipping: %w", err)
	}
	if len(fields) == 0 {
		return domain.Shipping{}, port.ErrShippingNotFound
	}
	return shippingFromFields(fields)
}

func (r *RedisAdapter) UpdateStatus(ctx context.Context, shippingID string, status domain.ShippingStatus) error {
	key := shippingKeyPrefix + shippingID

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("check shipping: %w", err)
	}
	if exists == 0 {
		return port.ErrShippingNotFound
	}

	return r.client.HSet(ctx, key,
		"status", string(status),
		"updated_at", time.Now().UTC().Format(time.RFC3339Nano),
	).Err()
}

func shippingFromFields(fields map[string]string) (domain.Shipping, error) {
	var productIDs []string
	if raw := fields["product_ids"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &productIDs); err != nil {
			return domain.Shipping{}, fmt.Errorf("unmarshal product ids: %w", err)
		}
	}

	dueDate, err := parseRedisTime(fields["due_date"])
	if err != nil {
		return domain.Shipping{}, err
	}
	createdAt, err := parseRedisTime(fields["created_at"])
	if err != nil {
		return domain.Shipping{}, err
	}
	updatedAt, err := parseRedisTime(fields["updated_at"])
	if err != nil {
		return domain.Shipping{}, err
	}

	return domain.Shipping{
		ID:           fields["id"],
		OrderID:      fields["order_id"],
		ShippingType: fields["shipping_type"],
		ProductIDs:   productIDs,
		Status:       domain.ShippingStatus(fields["status"]),
		DueDate:      dueDate,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}

func parseRedisTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("shipping record: missing timestamp")
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp: %w", err)
	}
	return t, nil
}
