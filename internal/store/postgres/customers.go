package postgres

import (
	"context"

	"pizzapos/internal/domain"
	"pizzapos/internal/store"
)

const customerColumns = `
	c.id, c.nombre, c.telefono,
	COALESCE(c.direccion, '') AS direccion,
	COALESCE(c.notas, '') AS notas,
	c.created_at`

type customerRow struct {
	domain.Customer
	Sales int `db:"sale_count"`
}

func (r customerRow) toDomain() domain.Customer {
	c := r.Customer
	sales := r.Sales
	c.SaleCount = &sales
	return c
}

func (s *Store) CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	created, err := insertCustomer(ctx, s.db, customer)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Store) CreateCustomers(ctx context.Context, customers []domain.Customer) ([]domain.Customer, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	created := make([]domain.Customer, 0, len(customers))
	for _, c := range customers {
		row, err := insertCustomer(ctx, tx, c)
		if err != nil {
			return nil, err
		}
		created = append(created, row)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return created, nil
}

func insertCustomer(ctx context.Context, q queryer, customer domain.Customer) (domain.Customer, error) {
	var created domain.Customer
	err := q.GetContext(ctx, &created, `
		INSERT INTO clientes AS c (nombre, telefono, direccion, notas, created_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, now()))
		RETURNING `+customerColumns,
		customer.Name, customer.Phone, nullIfEmpty(customer.Address), nullIfEmpty(customer.Notes), nullTime(customer.CreatedAt))
	return created, mapError(err)
}

func (s *Store) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	var row customerRow
	err := s.db.GetContext(ctx, &row, `
		SELECT `+customerColumns+`,
			(SELECT COUNT(*) FROM ventas v WHERE v.cliente_id = c.id) AS sale_count
		FROM clientes c
		WHERE c.id = $1
	`, id)
	if err != nil {
		return nil, mapError(err)
	}
	customer := row.toDomain()
	return &customer, nil
}

func (s *Store) FindCustomersByPhone(ctx context.Context, phones []string) ([]domain.Customer, error) {
	customers := make([]domain.Customer, 0)
	err := s.db.SelectContext(ctx, &customers, `
		SELECT `+customerColumns+`
		FROM clientes c
		WHERE c.telefono = ANY($1)
		ORDER BY c.id
	`, phones)
	return customers, err
}

func (s *Store) ListCustomers(ctx context.Context, q store.CustomerQuery) ([]domain.Customer, int, error) {
	pattern := likePattern(q.Search)
	where := `WHERE ($1 = '' OR c.nombre ILIKE $2 OR c.telefono ILIKE $2 OR c.direccion ILIKE $2)`

	var total int
	if err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM clientes c `+where, q.Search, pattern); err != nil {
		return nil, 0, err
	}

	rows := make([]customerRow, 0)
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+customerColumns+`,
			(SELECT COUNT(*) FROM ventas v WHERE v.cliente_id = c.id) AS sale_count
		FROM clientes c
		`+where+`
		ORDER BY c.id DESC
		LIMIT NULLIF($3::int, 0) OFFSET $4
	`, q.Search, pattern, q.Limit, q.Offset)
	if err != nil {
		return nil, 0, err
	}

	customers := make([]domain.Customer, 0, len(rows))
	for _, row := range rows {
		customers = append(customers, row.toDomain())
	}
	return customers, total, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	var updated domain.Customer
	err := s.db.GetContext(ctx, &updated, `
		UPDATE clientes AS c
		SET nombre = $2, telefono = $3, direccion = $4, notas = $5
		WHERE c.id = $1
		RETURNING `+customerColumns,
		customer.ID, customer.Name, customer.Phone, nullIfEmpty(customer.Address), nullIfEmpty(customer.Notes))
	if err != nil {
		return nil, mapError(err)
	}
	return &updated, nil
}

func (s *Store) DeleteCustomer(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM clientes WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	return affectedOne(res)
}

func (s *Store) CountCustomers(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM clientes`)
	return n, err
}

func (s *Store) CountCustomerSales(ctx context.Context, id int64) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM ventas WHERE cliente_id = $1`, id)
	return n, err
}
