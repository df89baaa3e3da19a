package quality

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"shopfloor/pkg/platform/sentinel"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Postgres persists quality checks in PostgreSQL. The one-check-per-work-order
// invariant is backed by a unique index on work_order_id in addition to the
// service-level pre-check.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const qualityCheckColumns = `qc_id, work_order_id, product_id, inspection_date, total_qty, accepted_qty, rejected_qty, success_rate, result, remarks, created_at`

func (s *Postgres) GetAll(ctx context.Context) ([]*QualityCheck, error) {
	return s.query(ctx,
		`SELECT `+qualityCheckColumns+` FROM quality_checks ORDER BY created_at, qc_id`)
}

func (s *Postgres) GetByID(ctx context.Context, id string) (*QualityCheck, error) {
	return s.queryOne(ctx,
		`SELECT `+qualityCheckColumns+` FROM quality_checks WHERE qc_id = $1`, id)
}

func (s *Postgres) GetByWorkOrderID(ctx context.Context, workOrderID string) (*QualityCheck, error) {
	return s.queryOne(ctx,
		`SELECT `+qualityCheckColumns+` FROM quality_checks WHERE work_order_id = $1`, workOrderID)
}

func (s *Postgres) ListByResult(ctx context.Context, result Result) ([]*QualityCheck, error) {
	return s.query(ctx,
		`SELECT `+qualityCheckColumns+` FROM quality_checks WHERE result = $1 ORDER BY created_at, qc_id`,
		result)
}

func (s *Postgres) Create(ctx context.Context, qc *QualityCheck) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO quality_checks (`+qualityCheckColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		qc.ID, qc.WorkOrderID, qc.ProductID, qc.InspectionDate, qc.TotalQty,
		qc.AcceptedQty, qc.RejectedQty, qc.SuccessRate, qc.Result, qc.Remarks, qc.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert quality check: %w", err)
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quality_checks WHERE qc_id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete quality check: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *Postgres) queryOne(ctx context.Context, query string, args ...any) (*QualityCheck, error) {
	var qc QualityCheck
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&qc.ID, &qc.WorkOrderID, &qc.ProductID, &qc.InspectionDate, &qc.TotalQty,
		&qc.AcceptedQty, &qc.RejectedQty, &qc.SuccessRate, &qc.Result, &qc.Remarks, &qc.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get quality check: %w", err)
	}
	return &qc, nil
}

func (s *Postgres) query(ctx context.Context, query string, args ...any) ([]*QualityCheck, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list quality checks: %w", err)
	}
	defer rows.Close()

	out := make([]*QualityCheck, 0)
	for rows.Next() {
		var qc QualityCheck
		if err := rows.Scan(
			&qc.ID, &qc.WorkOrderID, &qc.ProductID, &qc.InspectionDate, &qc.TotalQty,
			&qc.AcceptedQty, &qc.RejectedQty, &qc.SuccessRate, &qc.Result, &qc.Remarks, &qc.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan quality check: %w", err)
		}
		out = append(out, &qc)
	}
	return out, rows.Err()
}
