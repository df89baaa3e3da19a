package workorder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shopfloor/pkg/platform/sentinel"
)

// Postgres persists work orders in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const workOrderColumns = `work_order_id, product_id, quantity, status, scheduled_date, created_at, completed_at`

func (s *Postgres) GetAll(ctx context.Context) ([]*WorkOrder, error) {
	return s.query(ctx,
		`SELECT `+workOrderColumns+` FROM work_orders ORDER BY created_at, work_order_id`)
}

func (s *Postgres) GetByID(ctx context.Context, id string) (*WorkOrder, error) {
	var w WorkOrder
	err := s.db.QueryRowContext(ctx,
		`SELECT `+workOrderColumns+` FROM work_orders WHERE work_order_id = $1`, id,
	).Scan(&w.ID, &w.ProductID, &w.Quantity, &w.Status, &w.ScheduledDate, &w.CreatedAt, &w.CompletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get work order: %w", err)
	}
	return &w, nil
}

func (s *Postgres) GetByStatus(ctx context.Context, status Status) ([]*WorkOrder, error) {
	return s.query(ctx,
		`SELECT `+workOrderColumns+` FROM work_orders WHERE status = $1 ORDER BY created_at, work_order_id`,
		status)
}

func (s *Postgres) Create(ctx context.Context, w *WorkOrder) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO work_orders (`+workOrderColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		w.ID, w.ProductID, w.Quantity, w.Status, w.ScheduledDate, w.CreatedAt, w.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert work order: %w", err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, w *WorkOrder) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE work_orders
		 SET quantity = $1, status = $2, scheduled_date = $3, completed_at = $4
		 WHERE work_order_id = $5`,
		w.Quantity, w.Status, w.ScheduledDate, w.CompletedAt, w.ID,
	)
	if err != nil {
		return fmt.Errorf("update work order: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM work_orders WHERE work_order_id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete work order: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *Postgres) query(ctx context.Context, query string, args ...any) ([]*WorkOrder, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list work orders: %w", err)
	}
	defer rows.Close()

	out := make([]*WorkOrder, 0)
	for rows.Next() {
		var w WorkOrder
		if err := rows.Scan(&w.ID, &w.ProductID, &w.Quantity, &w.Status, &w.ScheduledDate, &w.CreatedAt, &w.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan work order: %w", err)
		}
		out = append(out, &w)
	}
	return out, rows.Err()
}
