package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rl1809/eshop/internal/core/domain"
)

// Mock ShippingService
type mockShippingService struct {
	mu         sync.Mutex
	shippingID string
	err        error
	statuses   map[string]domain.ShippingStatus

	createCalls []createCall
}

type createCall struct {
	shippingType string
	productIDs   []string
	orderID      string
	dueDate      time.Time
}

func newMockShippingService(shippingID string) *mockShippingService {
	return &mockShippingService{
		shippingID: shippingID,
		statuses:   make(map[string]domain.ShippingStatus),
	}
}

func (m *mockShippingService) ListAvailableShippingType() []string {
	return []string{"standard"}
}

func (m *mockShippingService) CreateShipping(ctx context.Context, shippingType string, productIDs []string, orderID string, dueDate time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls = append(m.createCalls, createCall{
		shippingType: shippingType,
		productIDs:   productIDs,
		orderID:      orderID,
		dueDate:      dueDate,
	})
	if m.err != nil {
		return "", m.err
	}
	return m.shippingID, nil
}

func (m *mockShippingService) CheckStatus(ctx context.Context, shippingID string) (domain.ShippingStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	status, ok := m.statuses[shippingID]
	if !ok {
		return "", errors.New("not found")
	}
	return status, nil
}

func cartWith(t *testing.T, name string, price int64, stock, amount int) (*domain.ShoppingCart, *domain.Product) {
	t.Helper()
	product, err := domain.NewProduct(name, price, stock)
	if err != nil {
		t.Fatalf("NewProduct failed: %v", err)
	}
	cart := domain.NewShoppingCart()
	if err := cart.AddProduct(product, amount); err != nil {
		t.Fatalf("AddProduct failed: %v", err)
	}
	return cart, product
}

func TestPlaceOrder_Success(t *testing.T) {
	cart, product := cartWith(t, "widget", 10, 5, 3)
	shipping := newMockShippingService("shipping-1")
	order := NewOrder(cart, shipping)

	dueDate := time.Now().UTC().Add(time.Hour)
	shippingID, err := order.PlaceOrder(context.Background(), "standard", dueDate)
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}
	if shippingID != "shipping-1" {
		t.Errorf("expected shipping-1, got %s", shippingID)
	}

	if product.Available() != 2 {
		t.Errorf("expected stock 2, got %d", product.Available())
	}
	if cart.Size() != 0 {
		t.Error("cart must be empty after placing the order")
	}

	if len(shipping.createCalls) != 1 {
		t.Fatalf("expected 1 create call, got %d", len(shipping.createCalls))
	}
	call := shipping.createCalls[0]
	if call.shippingType != "standard" {
		t.Errorf("expected shipping type standard, got %s", call.shippingType)
	}
	if len(call.productIDs) != 1 || call.productIDs[0] != "widget" {
		t.Errorf("expected product ids [widget], got %v", call.productIDs)
	}
	if call.orderID != order.ID() {
		t.Errorf("expected order id %s, got %s", order.ID(), call.orderID)
	}
	if !call.dueDate.Equal(dueDate) {
		t.Errorf("expected due date %v, got %v", dueDate, call.dueDate)
	}
}

func TestPlaceOrder_DefaultDueDate(t *testing.T) {
	cart, _ := cartWith(t, "widget", 10, 5, 1)
	shipping := newMockShippingService("shipping-1")
	order := NewOrder(cart, shipping, WithDueWindow(time.Hour))

	before := time.Now().UTC()
	if _, err := order.PlaceOrder(context.Background(), "standard", time.Time{}); err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}
	after := time.Now().UTC()

	due := shipping.createCalls[0].dueDate
	if due.Before(before.Add(time.Hour)) || due.After(after.Add(time.Hour)) {
		t.Errorf("default due date %v not within an hour of now", due)
	}
}

func TestPlaceOrder_EmptyCartNoShipmentRequested(t *testing.T) {
	cart := domain.NewShoppingCart()
	shipping := newMockShippingService("shipping-1")
	order := NewOrder(cart, shipping)

	_, err := order.PlaceOrder(context.Background(), "standard", time.Time{})
	if !errors.Is(err, domain.ErrEmptyCart) {
		t.Errorf("expected ErrEmptyCart, got: %v", err)
	}
	if len(shipping.createCalls) != 0 {
		t.Error("no shipment may be requested when submission fails")
	}
}

func TestPlaceOrder_OversoldNoShipmentRequested(t *testing.T) {
	cart, product := cartWith(t, "widget", 10, 5, 3)
	// Stock shrinks between add and submit.
	if err := product.Buy(4); err != nil {
		t.Fatalf("buy failed: %v", err)
	}

	shipping := newMockShippingService("shipping-1")
	order := NewOrder(cart, shipping)

	_, err := order.PlaceOrder(context.Background(), "standard", time.Time{})
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Errorf("expected ErrInsufficientStock, got: %v", err)
	}
	if len(shipping.createCalls) != 0 {
		t.Error("no shipment may be requested when submission fails")
	}
	if product.Available() != 1 {
		t.Errorf("failed submission must not change stock, got %d", product.Available())
	}
}

func TestPlaceOrder_ShippingErrorPropagated(t *testing.T) {
	cart, _ := cartWith(t, "widget", 10, 5, 1)
	shipping := newMockShippingService("")
	shipping.err = errors.New("shipping backend down")
	order := NewOrder(cart, shipping)

	_, err := order.PlaceOrder(context.Background(), "standard", time.Time{})
	if err == nil || err.Error() != "shipping backend down" {
		t.Errorf("expected shipping error unchanged, got: %v", err)
	}
}

func TestPlaceOrder_NilCart(t *testing.T) {
	order := NewOrder(nil, newMockShippingService("shipping-1"))
	if _, err := order.PlaceOrder(context.Background(), "standard", time.Time{}); !errors.Is(err, ErrNilCart) {
		t.Errorf("expected ErrNilCart, got: %v", err)
	}
}

func TestNewOrder_FreshIDPerConstruction(t *testing.T) {
	shipping := newMockShippingService("shipping-1")

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		order := NewOrder(domain.NewShoppingCart(), shipping)
		if order.ID() == "" {
			t.Fatal("expected a generated order id")
		}
		if seen[order.ID()] {
			t.Fatalf("order id %s generated twice", order.ID())
		}
		seen[order.ID()] = true
	}
}

func TestNewOrder_WithOrderID(t *testing.T) {
	order := NewOrder(domain.NewShoppingCart(), newMockShippingService(""), WithOrderID("order-42"))
	if order.ID() != "order-42" {
		t.Errorf("expected order-42, got %s", order.ID())
	}
}

func TestShipment_CheckShippingStatus(t *testing.T) {
	shipping := newMockShippingService("")
	shipping.statuses["shipping-1"] = domain.ShippingInProgress

	shipment := NewShipment("shipping-1", shipping)
	status, err := shipment.CheckShippingStatus(context.Background())
	if err != nil {
		t.Fatalf("CheckShippingStatus failed: %v", err)
	}
	if status != domain.ShippingInProgress {
		t.Errorf("expected in_progress, got %s", status)
	}

	// Each call is a fresh read, not a cached value.
	shipping.statuses["shipping-1"] = domain.ShippingDelivered
	status, err = shipment.CheckShippingStatus(context.Background())
	if err != nil {
		t.Fatalf("CheckShippingStatus failed: %v", err)
	}
	if status != domain.ShippingDelivered {
		t.Errorf("expected delivered, got %s", status)
	}
}
