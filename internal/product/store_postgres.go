package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shopfloor/pkg/platform/sentinel"
)

// Postgres persists products and BOM lines in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) GetAll(ctx context.Context, search string) ([]*Product, error) {
	query := `SELECT id, name, category, status, created_at FROM products`
	args := []any{}
	if search != "" {
		query += ` WHERE name ILIKE '%' || $1 || '%'`
		args = append(args, search)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Status, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	for _, p := range products {
		boms, err := s.BOMsByProduct(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		p.BOMs = boms
	}
	return products, nil
}

func (s *Postgres) GetByID(ctx context.Context, id int64) (*Product, error) {
	var p Product
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, category, status, created_at FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Category, &p.Status, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	boms, err := s.BOMsByProduct(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.BOMs = boms
	return &p, nil
}

func (s *Postgres) Create(ctx context.Context, p *Product) (*Product, error) {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO products (name, category, status, created_at)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		p.Name, p.Category, p.Status, p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

func (s *Postgres) Update(ctx context.Context, p *Product) (*Product, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE products SET name = $1, category = $2, status = $3 WHERE id = $4`,
		p.Name, p.Category, p.Status, p.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, sentinel.ErrNotFound
	}
	return s.GetByID(ctx, p.ID)
}

func (s *Postgres) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete product: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *Postgres) BOMsByProduct(ctx context.Context, productID int64) ([]BOMLine, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, product_id, material_name, quantity_per_unit, created_at
		 FROM bom_lines WHERE product_id = $1 ORDER BY id`, productID,
	)
	if err != nil {
		return nil, fmt.Errorf("list bom lines: %w", err)
	}
	defer rows.Close()

	lines := make([]BOMLine, 0)
	for rows.Next() {
		var l BOMLine
		if err := rows.Scan(&l.ID, &l.ProductID, &l.MaterialName, &l.QuantityPerUnit, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan bom line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (s *Postgres) BOMByID(ctx context.Context, bomID int64) (*BOMLine, error) {
	var l BOMLine
	err := s.db.QueryRowContext(ctx,
		`SELECT id, product_id, material_name, quantity_per_unit, created_at
		 FROM bom_lines WHERE id = $1`, bomID,
	).Scan(&l.ID, &l.ProductID, &l.MaterialName, &l.QuantityPerUnit, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get bom line: %w", err)
	}
	return &l, nil
}

func (s *Postgres) CreateBOM(ctx context.Context, line *BOMLine) (*BOMLine, error) {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO bom_lines (product_id, material_name, quantity_per_unit, created_at)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		line.ProductID, line.MaterialName, line.QuantityPerUnit, line.CreatedAt,
	).Scan(&line.ID)
	if err != nil {
		return nil, fmt.Errorf("insert bom line: %w", err)
	}
	return line, nil
}

func (s *Postgres) UpdateBOM(ctx context.Context, line *BOMLine) (*BOMLine, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE bom_lines SET material_name = $1, quantity_per_unit = $2 WHERE id = $3`,
		line.MaterialName, line.QuantityPerUnit, line.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update bom line: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, sentinel.ErrNotFound
	}
	return line, nil
}

func (s *Postgres) DeleteBOM(ctx context.Context, bomID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bom_lines WHERE id = $1`, bomID)
	if err != nil {
		return false, fmt.Errorf("delete bom line: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *Postgres) DeleteAllBOMsForProduct(ctx context.Context, productID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM bom_lines WHERE product_id = $1`, productID)
	if err != nil {
		return fmt.Errorf("delete bom lines for product: %w", err)
	}
	return nil
}
