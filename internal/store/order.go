package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prodline/internal/model"
)

type OrderStore struct {
	pool *pgxpool.Pool
}

func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

// GetByNo looks up a work order by exact order number. No fuzzy matching,
// no case normalization.
func (s *OrderStore) GetByNo(ctx context.Context, orderNo string) (*model.Order, error) {
	var o model.Order
	err := s.pool.QueryRow(ctx,
		`SELECT order_no, item_name, item_no, order_qty FROM orders WHERE order_no = $1`,
		orderNo,
	).Scan(&o.OrderNo, &o.ItemName, &o.ItemNo, &o.OrderQty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &o, nil
}
