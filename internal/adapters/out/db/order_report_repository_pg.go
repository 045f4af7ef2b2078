// internal/adapters/out/db/order_report_repository_pg.go
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"remarket/internal/application/usecase"
	orderdom "remarket/internal/domain/order"
)

// OrderReportRepositoryPG mirrors paid orders into Postgres for
// reporting. Firestore stays the source of truth; this table only
// feeds offline analytics, so writes are idempotent and best-effort.
type OrderReportRepositoryPG struct {
	DB *sql.DB
}

func NewOrderReportRepositoryPG(db *sql.DB) *OrderReportRepositoryPG {
	return &OrderReportRepositoryPG{DB: db}
}

// Compile-time check
var _ usecase.PaidOrderReporter = (*OrderReportRepositoryPG)(nil)

// EnsureSchema creates the reporting table when missing.
func (r *OrderReportRepositoryPG) EnsureSchema(ctx context.Context) error {
	if r.DB == nil {
		return errors.New("pg: db is nil")
	}
	_, err := r.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS paid_orders (
			id             TEXT PRIMARY KEY,
			user_id        TEXT NOT NULL,
			items          JSONB NOT NULL,
			items_price    DOUBLE PRECISION NOT NULL,
			shipping_price DOUBLE PRECISION NOT NULL,
			tax_price      DOUBLE PRECISION NOT NULL,
			total_amount   DOUBLE PRECISION NOT NULL,
			paid_at        TIMESTAMPTZ,
			created_at     TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("pg: ensure paid_orders schema: %w", err)
	}
	return nil
}

// RecordPaidOrder inserts the paid order once; re-delivered webhooks
// hit the conflict clause and change nothing.
func (r *OrderReportRepositoryPG) RecordPaidOrder(ctx context.Context, o orderdom.Order) error {
	if r.DB == nil {
		return errors.New("pg: db is nil")
	}

	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("pg: marshal order items: %w", err)
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO paid_orders
			(id, user_id, items, items_price, shipping_price, tax_price, total_amount, paid_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING`,
		o.ID,
		o.UserID,
		items,
		o.ItemsPrice,
		o.ShippingPrice,
		o.TaxPrice,
		o.TotalAmount,
		o.PaidAt,
		o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("pg: record paid order %s: %w", o.ID, err)
	}
	return nil
}
