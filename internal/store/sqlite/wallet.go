package sqlite

import (
	"context"
	"fmt"

	"github.com/vovakirdan/sweatmarket-server/internal/store"
)

// ==== WalletStore implementation ====

// AddTx records a ledger entry and applies amount to the user's coins in one transaction.
func (s *SQLiteStore) AddTx(ctx context.Context, userID, amount int64, kind, note string) (*store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	result, err := tx.ExecContext(ctx, `UPDATE users SET coins = coins + ? WHERE id = ?`, amount, userID)
	if err != nil {
		return nil, mapError(err, "update coins")
	}
	if affected, err := result.RowsAffected(); err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	} else if affected == 0 {
		return nil, fmt.Errorf("update coins: %w", store.ErrNotFound)
	}

	createdAt := s.timestamp()
	result, err = tx.ExecContext(ctx, `
		INSERT INTO txs (user_id, amount, kind, note, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, userID, amount, kind, note, createdAt)
	if err != nil {
		return nil, mapError(err, "insert tx")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &store.Tx{
		ID:        id,
		UserID:    userID,
		Amount:    amount,
		Kind:      kind,
		Note:      note,
		CreatedAt: createdAt,
	}, nil
}

// ListTxs returns ledger entries of a user newest first.
func (s *SQLiteStore) ListTxs(ctx context.Context, userID int64) ([]*store.Tx, error) {
	query := `
		SELECT id, user_id, amount, kind, note, created_at
		FROM txs
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query txs: %w", err)
	}
	defer rows.Close()

	txs := make([]*store.Tx, 0)
	for rows.Next() {
		var t store.Tx
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.Kind, &t.Note, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tx: %w", err)
		}
		t.CreatedAt = t.CreatedAt.UTC()
		txs = append(txs, &t)
	}
	return txs, rows.Err()
}

// CreateOrder places a resting order on the book.
func (s *SQLiteStore) CreateOrder(ctx context.Context, userID int64, side store.OrderSide, price, amount int64) (*store.Order, error) {
	query := `
		INSERT INTO orders (user_id, side, price, amount, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	createdAt := s.timestamp()
	result, err := s.db.ExecContext(ctx, query, userID, string(side), price, amount, createdAt)
	if err != nil {
		return nil, mapError(err, "insert order")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return &store.Order{
		ID:        id,
		UserID:    userID,
		Side:      side,
		Price:     price,
		Amount:    amount,
		CreatedAt: createdAt,
	}, nil
}

// ListOrders returns orders of one side, best price first:
// highest bid for buys, lowest ask for sells.
func (s *SQLiteStore) ListOrders(ctx context.Context, side store.OrderSide) ([]*store.Order, error) {
	direction := "ASC"
	if side == store.OrderSideBuy {
		direction = "DESC"
	}
	query := `
		SELECT id, user_id, side, price, amount, created_at
		FROM orders
		WHERE side = ?
		ORDER BY price ` + direction + `, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, string(side))
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*store.Order, 0)
	for rows.Next() {
		var (
			o       store.Order
			sideStr string
		)
		if err := rows.Scan(&o.ID, &o.UserID, &sideStr, &o.Price, &o.Amount, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Side = store.OrderSide(sideStr)
		o.CreatedAt = o.CreatedAt.UTC()
		orders = append(orders, &o)
	}
	return orders, rows.Err()
}
