package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shopfloor/pkg/platform/sentinel"
)

// Postgres persists inventory records and material stock in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) GetAll(ctx context.Context) ([]*Record, error) {
	return s.queryRecords(ctx, `SELECT id, product_id, location, created_at FROM inventory_records ORDER BY id`)
}

func (s *Postgres) GetByID(ctx context.Context, id int64) (*Record, error) {
	var r Record
	err := s.db.QueryRowContext(ctx,
		`SELECT id, product_id, location, created_at FROM inventory_records WHERE id = $1`, id,
	).Scan(&r.ID, &r.ProductID, &r.Location, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get inventory record: %w", err)
	}

	mats, err := s.MaterialsByRecord(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	r.Materials = mats
	return &r, nil
}

func (s *Postgres) GetByProductID(ctx context.Context, productID int64) ([]*Record, error) {
	// Ascending record ID keeps "the first record" deterministic for allocation.
	return s.queryRecords(ctx,
		`SELECT id, product_id, location, created_at FROM inventory_records WHERE product_id = $1 ORDER BY id`,
		productID,
	)
}

func (s *Postgres) Create(ctx context.Context, r *Record) (*Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO inventory_records (product_id, location, created_at)
		 VALUES ($1, $2, $3) RETURNING id`,
		r.ProductID, r.Location, r.CreatedAt,
	).Scan(&r.ID)
	if err != nil {
		return nil, fmt.Errorf("insert inventory record: %w", err)
	}

	for i := range r.Materials {
		m := &r.Materials[i]
		m.RecordID = r.ID
		if m.AvailableQty < 0 {
			m.AvailableQty = 0
		}
		err = tx.QueryRowContext(ctx,
			`INSERT INTO material_stock (inventory_id, material_name, available_qty, threshold_qty, created_at)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			m.RecordID, m.MaterialName, m.AvailableQty, m.ThresholdQty, m.CreatedAt,
		).Scan(&m.ID)
		if err != nil {
			return nil, fmt.Errorf("insert material stock: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return r, nil
}

func (s *Postgres) Update(ctx context.Context, r *Record) (*Record, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE inventory_records SET location = $1 WHERE id = $2`,
		r.Location, r.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update inventory record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, sentinel.ErrNotFound
	}
	return s.GetByID(ctx, r.ID)
}

func (s *Postgres) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM inventory_records WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete inventory record: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *Postgres) MaterialsByRecord(ctx context.Context, recordID int64) ([]MaterialStock, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, inventory_id, material_name, available_qty, threshold_qty, created_at
		 FROM material_stock WHERE inventory_id = $1 ORDER BY id`, recordID,
	)
	if err != nil {
		return nil, fmt.Errorf("list material stock: %w", err)
	}
	defer rows.Close()
	return scanMaterials(rows)
}

func (s *Postgres) GetMaterialByID(ctx context.Context, materialID int64) (*MaterialStock, error) {
	var m MaterialStock
	err := s.db.QueryRowContext(ctx,
		`SELECT id, inventory_id, material_name, available_qty, threshold_qty, created_at
		 FROM material_stock WHERE id = $1`, materialID,
	).Scan(&m.ID, &m.RecordID, &m.MaterialName, &m.AvailableQty, &m.ThresholdQty, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get material stock: %w", err)
	}
	return &m, nil
}

func (s *Postgres) CreateMaterial(ctx context.Context, m *MaterialStock) (*MaterialStock, error) {
	if m.AvailableQty < 0 {
		m.AvailableQty = 0
	}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO material_stock (inventory_id, material_name, available_qty, threshold_qty, created_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		m.RecordID, m.MaterialName, m.AvailableQty, m.ThresholdQty, m.CreatedAt,
	).Scan(&m.ID)
	if err != nil {
		return nil, fmt.Errorf("insert material stock: %w", err)
	}
	return m, nil
}

func (s *Postgres) UpdateMaterial(ctx context.Context, m *MaterialStock) (*MaterialStock, error) {
	if m.AvailableQty < 0 {
		m.AvailableQty = 0
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE material_stock SET material_name = $1, available_qty = $2, threshold_qty = $3 WHERE id = $4`,
		m.MaterialName, m.AvailableQty, m.ThresholdQty, m.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update material stock: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, sentinel.ErrNotFound
	}
	return m, nil
}

func (s *Postgres) DeleteMaterial(ctx context.Context, materialID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM material_stock WHERE id = $1`, materialID)
	if err != nil {
		return false, fmt.Errorf("delete material stock: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *Postgres) LowStock(ctx context.Context) ([]MaterialStock, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, inventory_id, material_name, available_qty, threshold_qty, created_at
		 FROM material_stock WHERE available_qty < threshold_qty ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	defer rows.Close()
	return scanMaterials(rows)
}

// Allocate deducts every requirement inside one transaction. Each deduction is
// a conditional update that only matches when enough stock remains, so a
// concurrent allocation that drained the row makes this one roll back instead
// of going negative.
func (s *Postgres) Allocate(ctx context.Context, recordID int64, reqs []Requirement) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM inventory_records WHERE id = $1)`, recordID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("check inventory record: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}

	for _, req := range reqs {
		res, err := tx.ExecContext(ctx,
			`UPDATE material_stock
			 SET available_qty = available_qty - $1
			 WHERE inventory_id = $2 AND material_name = $3 AND available_qty >= $1`,
			req.Quantity, recordID, req.MaterialName,
		)
		if err != nil {
			return fmt.Errorf("deduct material stock: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			available := 0
			_ = tx.QueryRowContext(ctx,
				`SELECT available_qty FROM material_stock WHERE inventory_id = $1 AND material_name = $2`,
				recordID, req.MaterialName,
			).Scan(&available)
			return &InsufficientStockError{MaterialName: req.MaterialName, Required: req.Quantity, Available: available}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Postgres) queryRecords(ctx context.Context, query string, args ...any) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list inventory records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.ProductID, &r.Location, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan inventory record: %w", err)
		}
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inventory records: %w", err)
	}

	for _, r := range records {
		mats, err := s.MaterialsByRecord(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		r.Materials = mats
	}
	return records, nil
}

func scanMaterials(rows *sql.Rows) ([]MaterialStock, error) {
	mats := make([]MaterialStock, 0)
	for rows.Next() {
		var m MaterialStock
		if err := rows.Scan(&m.ID, &m.RecordID, &m.MaterialName, &m.AvailableQty, &m.ThresholdQty, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan material stock: %w", err)
		}
		mats = append(mats, m)
	}
	return mats, rows.Err()
}
