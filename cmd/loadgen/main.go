// Command loadgen exercises the order-placement core under contention: N
// concurrent orders race for a single product with limited stock. Exactly
// stock-many orders must win.
package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rl1809/eshop/internal/adapter/queue"
	"github.com/rl1809/eshop/internal/adapter/shipping"
	"github.com/rl1809/eshop/internal/adapter/storage"
	"github.com/rl1809/eshop/internal/core/domain"
	"github.com/rl1809/eshop/internal/core/service"
)

const (
	initialStock  = 20
	totalRequests = 50
	queueSize     = 100
)

func main() {
	ctx := context.Background()

	pub := queue.NewChannelPublisher(queueSize)
	shippingService := shipping.NewService(storage.NewMemoryAdapter(), pub, nil)

	// Drain the shipping queue in background
	go func() {
		for shippingID := range pub.Queue() {
			if err := shippingService.ProcessShipping(ctx, shippingID); err != nil {
				log.Printf("process shipping %s: %v", shippingID, err)
			}
		}
	}()

	product, err := domain.NewProduct("hot-item", 1999, initialStock)
	if err != nil {
		log.Fatalf("create product: %v", err)
	}
	shippingType := shippingService.ListAvailableShippingType()[0]

	var successCount atomic.Int32
	var failCount atomic.Int32

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			cart := domain.NewShoppingCart()
			if err := cart.AddProduct(product, 1); err != nil {
				failCount.Add(1)
				return
			}

			order := service.NewOrder(cart, shippingService)
			if _, err := order.PlaceOrder(ctx, shippingType, time.Time{}); err != nil {
				failCount.Add(1)
				return
			}
			successCount.Add(1)
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)
	pub.Close()

	success := successCount.Load()
	fail := failCount.Load()

	fmt.Println("========== LOAD TEST RESULTS ==========")
	fmt.Printf("Initial Stock:    %d\n", initialStock)
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Failed:           %d\n", fail)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("=======================================")

	if success == int32(initialStock) && fail == int32(totalRequests-initialStock) {
		fmt.Printf("PASS: Exactly %d orders succeeded, %d failed\n", initialStock, totalRequests-initialStock)
	} else {
		fmt.Printf("FAIL: Expected %d success/%d fail, got %d/%d\n",
			initialStock, totalRequests-initialStock, success, fail)
	}

	if remaining := product.Available(); remaining == 0 {
		fmt.Println("PASS: Stock depleted to 0")
	} else {
		fmt.Printf("FAIL: Expected stock 0, got %d\n", remaining)
	}
}
