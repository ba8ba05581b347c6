package storage

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/eshop/internal/core/domain"
	"github.com/rl1809/eshop/internal/port"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func TestRedisCreateAndGet(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client)

	rec := testShipping(uuid.NewString(), "redis-order-"+uuid.NewString())
	defer client.Del(ctx, shippingKeyPrefix+rec.ID, orderIndexKeyPrefix+rec.OrderID)

	stored, created, err := adapter.Create(ctx, rec)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !created {
		t.Fatal("expected the record to be created")
	}
	if stored.ID != rec.ID {
		t.Errorf("expected id %s, got %s", rec.ID, stored.ID)
	}

	got, err := adapter.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.OrderID != rec.OrderID || got.Status != domain.ShippingCreated {
		t.Errorf("unexpected record: %+v", got)
	}
	if len(got.ProductIDs) != 1 || got.ProductIDs[0] != "widget" {
		t.Errorf("expected product ids [widget], got %v", got.ProductIDs)
	}
	if !got.DueDate.Equal(rec.DueDate) {
		t.Errorf("expected due date %v, got %v", rec.DueDate, got.DueDate)
	}
}

func TestRedisCreate_IdempotentOnOrder(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client)

	orderID := "redis-order-" + uuid.NewString()
	first := testShipping(uuid.NewString(), orderID)
	second := testShipping(uuid.NewString(), orderID)
	defer client.Del(ctx,
		shippingKeyPrefix+first.ID,
		shippingKeyPrefix+second.ID,
		orderIndexKeyPrefix+orderID,
	)

	if _, created, err := adapter.Create(ctx, first); err != nil || !created {
		t.Fatalf("first create failed: created=%v err=%v", created, err)
	}

	stored, created, err := adapter.Create(ctx, second)
	if err != nil {
		t.Fatalf("duplicate create failed: %v", err)
	}
	if created {
		t.Error("expected duplicate create to be rejected")
	}
	if stored.ID != first.ID {
		t.Errorf("expected original record %s, got %s", first.ID, stored.ID)
	}

	// The losing candidate record is discarded.
	if _, err := adapter.Get(ctx, second.ID); !errors.Is(err, port.ErrShippingNotFound) {
		t.Errorf("expected ErrShippingNotFound for the loser, got: %v", err)
	}
}

func TestRedisUpdateStatus(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client)

	rec := testShipping(uuid.NewString(), "redis-order-"+uuid.NewString())
	defer client.Del(ctx, shippingKeyPrefix+rec.ID, orderIndexKeyPrefix+rec.OrderID)

	if _, _, err := adapter.Create(ctx, rec); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := adapter.UpdateStatus(ctx, rec.ID, domain.ShippingOverdue); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, err := adapter.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Status != domain.ShippingOverdue {
		t.Errorf("expected overdue, got %s", got.Status)
	}
	if !got.UpdatedAt.After(rec.UpdatedAt) {
		t.Error("expected updated_at to advance")
	}
}

func TestRedisUpdateStatus_NotFound(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	adapter := NewRedisAdapter(client)
	err := adapter.UpdateStatus(context.Background(), uuid.NewString(), domain.ShippingFailed)
	if !errors.Is(err, port.ErrShippingNotFound) {
		t.Errorf("expected ErrShippingNotFound, got: %v", err)
	}
}

func TestRedisGet_NotFound(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	adapter := NewRedisAdapter(client)
	_, err := adapter.Get(context.Background(), uuid.NewString())
	if !errors.Is(err, port.ErrShippingNotFound) {
		t.Errorf("expected ErrShippingNotFound, got: %v", err)
	}
}

func TestRedisTimestampRoundTrip(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client)

	rec := testShipping(uuid.NewString(), "redis-order-"+uuid.NewString())
	rec.DueDate = time.Date(2026, 9, 1, 12, 30, 0, 123456789, time.UTC)
	defer client.Del(ctx, shippingKeyPrefix+rec.ID, orderIndexKeyPrefix+rec.OrderID)

	if _, _, err := adapter.Create(ctx, rec); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	got, err := adapter.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !got.DueDate.Equal(rec.DueDate) {
		t.Errorf("expected due date %v, got %v", rec.DueDate, got.DueDate)
	}
}
