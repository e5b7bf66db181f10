package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"pizzapos/internal/domain"
)

func (s *Store) SalesTotals(ctx context.Context, filter domain.SaleFilter) (domain.SalesTotals, error) {
	where, args := saleWhere(filter)

	var row struct {
		Total decimal.Decimal `db:"total"`
		Count int             `db:"count"`
	}
	err := s.db.GetContext(ctx, &row, `
		SELECT COALESCE(SUM(v.total), 0) AS total, COUNT(*) AS count
		FROM ventas v `+where, args...)
	if err != nil {
		return domain.SalesTotals{}, err
	}
	return domain.SalesTotals{Total: row.Total, Count: row.Count}, nil
}

func (s *Store) SalesByTimestamp(ctx context.Context, filter domain.SaleFilter, limit int) ([]domain.SalesBucket, error) {
	where, args := saleWhere(filter)
	query := fmt.Sprintf(`
		SELECT v.created_at AS date, SUM(v.total) AS total, COUNT(*) AS count
		FROM ventas v
		%s
		GROUP BY v.created_at
		ORDER BY v.created_at DESC
		LIMIT NULLIF($%d::int, 0)
	`, where, len(args)+1)

	buckets := make([]domain.SalesBucket, 0)
	err := s.db.SelectContext(ctx, &buckets, query, append(args, limit)...)
	return buckets, err
}

func (s *Store) TopProducts(ctx context.Context, filter domain.SaleFilter, limit int) ([]domain.ProductSales, error) {
	where, args := saleWhere(filter)
	query := fmt.Sprintf(`
		SELECT p.id, p.nombre, p.precio_base,
			SUM(vi.cantidad) AS cantidad_vendida,
			SUM(vi.subtotal) AS total_generado
		FROM venta_items vi
		JOIN ventas v ON v.id = vi.venta_id
		JOIN productos p ON p.id = vi.producto_id
		%s
		GROUP BY p.id, p.nombre, p.precio_base
		ORDER BY cantidad_vendida DESC, p.id ASC
		LIMIT NULLIF($%d::int, 0)
	`, where, len(args)+1)

	var rows []struct {
		domain.ProductSummary
		Quantity int64           `db:"cantidad_vendida"`
		Revenue  decimal.Decimal `db:"total_generado"`
	}
	if err := s.db.SelectContext(ctx, &rows, query, append(args, limit)...); err != nil {
		return nil, err
	}

	result := make([]domain.ProductSales, 0, len(rows))
	for _, row := range rows {
		result = append(result, domain.ProductSales{Product: row.ProductSummary, Quantity: row.Quantity, Revenue: row.Revenue})
	}
	return result, nil
}

func (s *Store) TopCustomers(ctx context.Context, filter domain.SaleFilter, limit int) ([]domain.CustomerSales, error) {
	where, args := saleWhere(filter)
	query := fmt.Sprintf(`
		SELECT c.id, c.nombre, c.telefono,
			COUNT(*) AS cantidad_compras,
			SUM(v.total) AS total_gastado
		FROM ventas v
		JOIN clientes c ON c.id = v.cliente_id
		%s
		GROUP BY c.id, c.nombre, c.telefono
		ORDER BY cantidad_compras DESC, c.id ASC
		LIMIT NULLIF($%d::int, 0)
	`, where, len(args)+1)

	var rows []struct {
		domain.CustomerSummary
		Purchases int             `db:"cantidad_compras"`
		Spent     decimal.Decimal `db:"total_gastado"`
	}
	if err := s.db.SelectContext(ctx, &rows, query, append(args, limit)...); err != nil {
		return nil, err
	}

	result := make([]domain.CustomerSales, 0, len(rows))
	for _, row := range rows {
		result = append(result, domain.CustomerSales{Customer: row.CustomerSummary, Purchases: row.Purchases, Spent: row.Spent})
	}
	return result, nil
}

func (s *Store) SalesByPaymentMethod(ctx context.Context, filter domain.SaleFilter) ([]domain.PaymentMethodSales, error) {
	where, args := saleWhere(filter)

	var rows []struct {
		domain.PaymentMethodSummary
		Count   int             `db:"cantidad_ventas"`
		Revenue decimal.Decimal `db:"total_generado"`
	}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT m.id, m.nombre,
			COUNT(*) AS cantidad_ventas,
			SUM(v.total) AS total_generado
		FROM ventas v
		JOIN metodos_pago m ON m.id = v.metodo_pago_id
		`+where+`
		GROUP BY m.id, m.nombre
		ORDER BY total_generado DESC, m.id ASC
	`, args...)
	if err != nil {
		return nil, err
	}

	result := make([]domain.PaymentMethodSales, 0, len(rows))
	for _, row := range rows {
		result = append(result, domain.PaymentMethodSales{PaymentMethod: row.PaymentMethodSummary, Count: row.Count, Revenue: row.Revenue})
	}
	return result, nil
}
