package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/rl1809/eshop/internal/core/domain"
	"github.com/rl1809/eshop/internal/port"
)

const mysqlDuplicateEntry = 1062

// MySQLAdapter persists shipment records in a shippings table. The unique
// key on order_id makes creation idempotent under concurrency.
//
// Expected schema:
//
//	CREATE TABLE shippings (
//	    id            VARCHAR(64)  PRIMARY KEY,
//	    order_id      VARCHAR(128) NOT NULL UNIQUE,
//	    shipping_type VARCHAR(32)  NOT NULL,
//	    product_ids   TEXT         NOT NULL,
//	    status        VARCHAR(16)  NOT NULL,
//	    due_date      DATETIME(6)  NOT NULL,
//	    created_at    DATETIME(6)  NOT NULL,
//	    updated_at    DATETIME(6)  NOT NULL
//	);
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) Create(ctx context.Context, rec domain.Shipping) (domain.Shipping, bool, error) {
	productIDs, err := json.Marshal(rec.ProductIDs)
	if err != nil {
		return domain.Shipping{}, false, fmt.Errorf("marshal product ids: %w", err)
	}

	_, err = m.db.ExecContext(ctx, `
		INSERT INTO shippings (id, order_id, shipping_type, product_ids, status, due_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.OrderID, rec.ShippingType, productIDs, rec.Status,
		rec.DueDate, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			existing, err := m.getByOrderID(ctx, rec.OrderID)
			if err != nil {
				return domain.Shipping{}, false, err
			}
			return existing, false, nil
		}
		return domain.Shipping{}, false, fmt.Errorf("insert shipping: %w", err)
	}

	return rec, true, nil
}

func (m *MySQLAdapter) Get(ctx context.Context, shippingID string) (domain.Shipping, error) {
	return m.scanShipping(m.db.QueryRowContext(ctx, `
		SELECT id, order_id, shipping_type, product_ids, status, due_date, created_at, updated_at
		FROM shippings WHERE id = ?`, shippingID,
	))
}

func (m *MySQLAdapter) UpdateStatus(ctx context.Context, shippingID string, status domain.ShippingStatus) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE shippings SET status = ?, updated_at = NOW(6) WHERE id = ?`,
		status, shippingID,
	)
	if err != nil {
		return fmt.Errorf("update shipping status: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return port.ErrShippingNotFound
	}
	return nil
}

func (m *MySQLAdapter) getByOrderID(ctx context.Context, orderID string) (domain.Shipping, error) {
	return m.scanShipping(m.db.QueryRowContext(ctx, `
		SELECT id, order_id, shipping_type, product_ids, status, due_date, created_at, updated_at
		FROM shippings WHERE order_id = ?`, orderID,
	))
}

func (m *MySQLAdapter) scanShipping(row *sql.Row) (domain.Shipping, error) {
	var rec domain.Shipping
	var rawProductIDs []byte

	err := row.Scan(&rec.ID, &rec.OrderID, &rec.ShippingType, &rawProductIDs,
		&rec.Status, &rec.DueDate, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Shipping{}, port.ErrShippingNotFound
	}
	if err != nil {
		return domain.Shipping{}, fmt.Errorf("query shipping: %w", err)
	}

	if err := json.Unmarshal(rawProductIDs, &rec.ProductIDs); err != nil {
		return domain.Shipping{}, fmt.Errorf("unmarshal product ids: %w", err)
	}
	return rec, nil
}
