package postgres

import (
	"context"
	"fmt"
	"strings"

	"pizzapos/internal/domain"
	"pizzapos/internal/store"
)

const saleColumns = `
	v.id, v.cliente_id, v.metodo_pago_id,
	COALESCE(v.direccion_entrega, '') AS direccion_entrega,
	COALESCE(v.notas, '') AS notas,
	v.total, v.estado, v.created_at`

// saleWhere renders filter as a WHERE clause over the ventas alias v.
func saleWhere(filter domain.SaleFilter) (string, []any) {
	conds := make([]string, 0, 6)
	args := make([]any, 0, 6)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.From != nil {
		add("v.created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("v.created_at <= $%d", *filter.To)
	}
	if filter.Before != nil {
		add("v.created_at < $%d", *filter.Before)
	}
	if filter.CustomerID > 0 {
		add("v.cliente_id = $%d", filter.CustomerID)
	}
	if filter.PaymentMethodID > 0 {
		add("v.metodo_pago_id = $%d", filter.PaymentMethodID)
	}
	if filter.Status != "" {
		add("v.estado = $%d", string(filter.Status))
	}

	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func (s *Store) CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	err = tx.GetContext(ctx, &id, `
		INSERT INTO ventas (cliente_id, metodo_pago_id, direccion_entrega, notas, total, estado, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, now()))
		RETURNING id
	`, sale.CustomerID, sale.PaymentMethodID, nullIfEmpty(sale.DeliveryAddress), nullIfEmpty(sale.Notes),
		sale.Total, string(sale.Status), nullTime(sale.CreatedAt))
	if err != nil {
		return nil, mapError(err)
	}

	for _, item := range sale.Items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO venta_items (venta_id, producto_id, cantidad, precio_unitario, subtotal)
			VALUES ($1, $2, $3, $4, $5)
		`, id, item.ProductID, item.Quantity, item.UnitPrice, item.Subtotal)
		if err != nil {
			return nil, mapError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetSale(ctx, id, false)
}

func (s *Store) GetSale(ctx context.Context, id int64, withComposition bool) (*domain.Sale, error) {
	var sale domain.Sale
	err := s.db.GetContext(ctx, &sale, `SELECT `+saleColumns+` FROM ventas v WHERE v.id = $1`, id)
	if err != nil {
		return nil, mapError(err)
	}
	sales := []domain.Sale{sale}
	if err := s.expandSales(ctx, sales, withComposition); err != nil {
		return nil, err
	}
	return &sales[0], nil
}

func (s *Store) ListSales(ctx context.Context, filter domain.SaleFilter, offset int, limit int) ([]domain.Sale, int, error) {
	where, args := saleWhere(filter)

	var total int
	if err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM ventas v `+where, args...); err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := fmt.Sprintf(`
		SELECT %s
		FROM ventas v
		%s
		ORDER BY v.created_at DESC, v.id DESC
		LIMIT NULLIF($%d::int, 0) OFFSET $%d
	`, saleColumns, where, n+1, n+2)

	sales := make([]domain.Sale, 0)
	if err := s.db.SelectContext(ctx, &sales, query, append(args, limit, offset)...); err != nil {
		return nil, 0, err
	}
	if err := s.expandSales(ctx, sales, false); err != nil {
		return nil, 0, err
	}
	return sales, total, nil
}

func (s *Store) VoidSale(ctx context.Context, id int64) (*domain.Sale, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE ventas SET estado = $2
		WHERE id = $1 AND estado <> $2
	`, id, string(domain.SaleStatusCancelled))
	if err != nil {
		return nil, err
	}
	if err := affectedOne(res); err != nil {
		var exists bool
		if err := s.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM ventas WHERE id = $1)`, id); err != nil {
			return nil, err
		}
		if exists {
			return nil, store.ErrAlreadyVoided
		}
		return nil, store.ErrNotFound
	}
	return s.GetSale(ctx, id, false)
}

// expandSales attaches customer, payment method and items with one query per relation.
func (s *Store) expandSales(ctx context.Context, sales []domain.Sale, withComposition bool) error {
	if len(sales) == 0 {
		return nil
	}
	saleIDs := make([]int64, 0, len(sales))
	customerIDs := make([]int64, 0, len(sales))
	methodIDs := make([]int64, 0, len(sales))
	for _, sale := range sales {
		saleIDs = append(saleIDs, sale.ID)
		customerIDs = append(customerIDs, sale.CustomerID)
		methodIDs = append(methodIDs, sale.PaymentMethodID)
	}

	customers := make([]domain.CustomerSummary, 0)
	if err := s.db.SelectContext(ctx, &customers, `
		SELECT id, nombre, telefono FROM clientes WHERE id = ANY($1)
	`, customerIDs); err != nil {
		return err
	}
	customerByID := make(map[int64]domain.CustomerSummary, len(customers))
	for _, c := range customers {
		customerByID[c.ID] = c
	}

	methods := make([]domain.PaymentMethodSummary, 0)
	if err := s.db.SelectContext(ctx, &methods, `
		SELECT id, nombre FROM metodos_pago WHERE id = ANY($1)
	`, methodIDs); err != nil {
		return err
	}
	methodByID := make(map[int64]domain.PaymentMethodSummary, len(methods))
	for _, m := range methods {
		methodByID[m.ID] = m
	}

	items := make([]domain.SaleItem, 0)
	if err := s.db.SelectContext(ctx, &items, `
		SELECT id, venta_id, producto_id, cantidad, precio_unitario, subtotal
		FROM venta_items
		WHERE venta_id = ANY($1)
		ORDER BY venta_id, id
	`, saleIDs); err != nil {
		return err
	}
	productIDs := make([]int64, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
	}
	products, err := s.loadProducts(ctx, s.db, productIDs, withComposition)
	if err != nil {
		return err
	}

	itemsBySale := make(map[int64][]domain.SaleItem, len(sales))
	for _, item := range items {
		if p, ok := products[item.ProductID]; ok {
			item.Product = &p
		}
		itemsBySale[item.SaleID] = append(itemsBySale[item.SaleID], item)
	}

	for i := range sales {
		if c, ok := customerByID[sales[i].CustomerID]; ok {
			sales[i].Customer = &c
		}
		if m, ok := methodByID[sales[i].PaymentMethodID]; ok {
			sales[i].PaymentMethod = &m
		}
		saleItems := itemsBySale[sales[i].ID]
		if saleItems == nil {
			saleItems = []domain.SaleItem{}
		}
		sales[i].Items = saleItems
	}
	return nil
}
