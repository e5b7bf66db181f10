package postgres

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"pizzapos/internal/domain"
	"pizzapos/internal/store"
)

const ingredientColumns = `i.id, i.nombre, i.costo_unitario, i.created_at`

type ingredientRow struct {
	domain.Ingredient
	Products int `db:"product_count"`
}

func (s *Store) CreateIngredient(ctx context.Context, ingredient domain.Ingredient) (*domain.Ingredient, error) {
	created, err := insertIngredient(ctx, s.db, ingredient)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Store) CreateIngredients(ctx context.Context, ingredients []domain.Ingredient) ([]domain.Ingredient, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	created := make([]domain.Ingredient, 0, len(ingredients))
	for _, in := range ingredients {
		row, err := insertIngredient(ctx, tx, in)
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

func insertIngredient(ctx context.Context, q queryer, ingredient domain.Ingredient) (domain.Ingredient, error) {
	var created domain.Ingredient
	err := q.GetContext(ctx, &created, `
		INSERT INTO ingredientes AS i (nombre, costo_unitario, created_at)
		VALUES ($1, $2, COALESCE($3, now()))
		RETURNING `+ingredientColumns,
		ingredient.Name, ingredient.UnitCost, nullTime(ingredient.CreatedAt))
	return created, mapError(err)
}

func (s *Store) GetIngredient(ctx context.Context, id int64) (*domain.Ingredient, error) {
	var ingredient domain.Ingredient
	err := s.db.GetContext(ctx, &ingredient, `SELECT `+ingredientColumns+` FROM ingredientes i WHERE i.id = $1`, id)
	if err != nil {
		return nil, mapError(err)
	}

	products := make([]domain.ProductSummary, 0)
	err = s.db.SelectContext(ctx, &products, `
		SELECT p.id, p.nombre, p.precio_base
		FROM productos_ingredientes pi
		JOIN productos p ON p.id = pi.producto_id
		WHERE pi.ingrediente_id = $1
		ORDER BY p.nombre, p.id
	`, id)
	if err != nil {
		return nil, err
	}
	count := len(products)
	ingredient.Products = products
	ingredient.ProductCount = &count
	return &ingredient, nil
}

func (s *Store) FindIngredientsByName(ctx context.Context, names []string) ([]domain.Ingredient, error) {
	ingredients := make([]domain.Ingredient, 0)
	err := s.db.SelectContext(ctx, &ingredients, `
		SELECT `+ingredientColumns+` FROM ingredientes i WHERE i.nombre = ANY($1) ORDER BY i.id
	`, names)
	return ingredients, err
}

func (s *Store) GetIngredientsByIDs(ctx context.Context, ids []int64) (map[int64]domain.Ingredient, error) {
	ingredients := make([]domain.Ingredient, 0, len(ids))
	err := s.db.SelectContext(ctx, &ingredients, `
		SELECT `+ingredientColumns+` FROM ingredientes i WHERE i.id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	found := make(map[int64]domain.Ingredient, len(ingredients))
	for _, in := range ingredients {
		found[in.ID] = in
	}
	return found, nil
}

func (s *Store) ListIngredients(ctx context.Context, q store.IngredientQuery) ([]domain.Ingredient, int, error) {
	var total int
	if err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM ingredientes`); err != nil {
		return nil, 0, err
	}

	orderBy := `i.nombre ASC, i.id ASC`
	if q.OrderBy == store.IngredientsByCost {
		orderBy = `i.costo_unitario DESC, i.id ASC`
	}

	rows := make([]ingredientRow, 0)
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+ingredientColumns+`,
			(SELECT COUNT(*) FROM productos_ingredientes pi WHERE pi.ingrediente_id = i.id) AS product_count
		FROM ingredientes i
		ORDER BY `+orderBy+`
		LIMIT NULLIF($1::int, 0) OFFSET $2
	`, q.Limit, q.Offset)
	if err != nil {
		return nil, 0, err
	}

	ingredients := make([]domain.Ingredient, 0, len(rows))
	for _, row := range rows {
		in := row.Ingredient
		count := row.Products
		in.ProductCount = &count
		ingredients = append(ingredients, in)
	}
	return ingredients, total, nil
}

func (s *Store) UpdateIngredient(ctx context.Context, ingredient domain.Ingredient) (*domain.Ingredient, error) {
	var updated domain.Ingredient
	err := s.db.GetContext(ctx, &updated, `
		UPDATE ingredientes AS i
		SET nombre = $2, costo_unitario = $3
		WHERE i.id = $1
		RETURNING `+ingredientColumns,
		ingredient.ID, ingredient.Name, ingredient.UnitCost)
	if err != nil {
		return nil, mapError(err)
	}
	return &updated, nil
}

func (s *Store) DeleteIngredient(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM ingredientes WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	return affectedOne(res)
}

func (s *Store) CountIngredientUsage(ctx context.Context, id int64) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM productos_ingredientes WHERE ingrediente_id = $1`, id)
	return n, err
}

const productColumns = `p.id, p.nombre, COALESCE(p.descripcion, '') AS descripcion, p.precio_base, p.activo, p.created_at`

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	id, err := insertProduct(ctx, tx, product)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, id)
}

func (s *Store) CreateProducts(ctx context.Context, products []domain.Product) ([]domain.Product, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	ids := make([]int64, 0, len(products))
	for _, p := range products {
		id, err := insertProduct(ctx, tx, p)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	byID, err := s.loadProducts(ctx, s.db, ids, true)
	if err != nil {
		return nil, err
	}
	created := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		created = append(created, byID[id])
	}
	return created, nil
}

func insertProduct(ctx context.Context, q queryer, product domain.Product) (int64, error) {
	var id int64
	err := q.GetContext(ctx, &id, `
		INSERT INTO productos (nombre, descripcion, precio_base, activo, created_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, now()))
		RETURNING id
	`, product.Name, nullIfEmpty(product.Description), product.BasePrice, product.Active, nullTime(product.CreatedAt))
	if err != nil {
		return 0, mapError(err)
	}
	if err := insertLinks(ctx, q, id, product.Ingredients); err != nil {
		return 0, err
	}
	return id, nil
}

func insertLinks(ctx context.Context, q queryer, productID int64, links []domain.ProductIngredient) error {
	for _, link := range links {
		_, err := q.ExecContext(ctx, `
			INSERT INTO productos_ingredientes (producto_id, ingrediente_id, cantidad)
			VALUES ($1, $2, $3)
		`, productID, link.IngredientID, link.Quantity)
		if err != nil {
			return mapError(err)
		}
	}
	return nil
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	byID, err := s.loadProducts(ctx, s.db, []int64{id}, true)
	if err != nil {
		return nil, err
	}
	product, ok := byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &product, nil
}

func (s *Store) GetProductsByIDs(ctx context.Context, ids []int64) (map[int64]domain.Product, error) {
	return s.loadProducts(ctx, s.db, ids, false)
}

// loadProducts fetches products by id, optionally with their composition in one extra query.
func (s *Store) loadProducts(ctx context.Context, q queryer, ids []int64, withComposition bool) (map[int64]domain.Product, error) {
	products := make([]domain.Product, 0, len(ids))
	err := q.SelectContext(ctx, &products, `SELECT `+productColumns+` FROM productos p WHERE p.id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	if withComposition {
		if err := attachComposition(ctx, q, products); err != nil {
			return nil, err
		}
	}
	byID := make(map[int64]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID, nil
}

type linkRow struct {
	ProductID    int64           `db:"producto_id"`
	IngredientID int64           `db:"ingrediente_id"`
	Quantity     decimal.Decimal `db:"cantidad"`
	Name         string          `db:"nombre"`
	UnitCost     decimal.Decimal `db:"costo_unitario"`
	IngredientAt time.Time       `db:"created_at"`
}

func attachComposition(ctx context.Context, q queryer, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}

	rows := make([]linkRow, 0)
	err := q.SelectContext(ctx, &rows, `
		SELECT pi.producto_id, pi.ingrediente_id, pi.cantidad, i.nombre, i.costo_unitario, i.created_at
		FROM productos_ingredientes pi
		JOIN ingredientes i ON i.id = pi.ingrediente_id
		WHERE pi.producto_id = ANY($1)
		ORDER BY pi.producto_id, pi.ingrediente_id
	`, ids)
	if err != nil {
		return err
	}

	byProduct := make(map[int64][]domain.ProductIngredient, len(products))
	for _, row := range rows {
		byProduct[row.ProductID] = append(byProduct[row.ProductID], domain.ProductIngredient{
			ProductID:    row.ProductID,
			IngredientID: row.IngredientID,
			Quantity:     row.Quantity,
			Ingredient: &domain.Ingredient{
				ID:        row.IngredientID,
				Name:      row.Name,
				UnitCost:  row.UnitCost,
				CreatedAt: row.IngredientAt,
			},
		})
	}
	for i := range products {
		links := byProduct[products[i].ID]
		if links == nil {
			links = []domain.ProductIngredient{}
		}
		products[i].Ingredients = links
	}
	return nil
}

func (s *Store) ListProducts(ctx context.Context, q store.ProductQuery) ([]domain.Product, int, error) {
	var active any
	if q.Active != nil {
		active = *q.Active
	}
	where := `WHERE ($1::boolean IS NULL OR p.activo = $1)`

	var total int
	if err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM productos p `+where, active); err != nil {
		return nil, 0, err
	}

	products := make([]domain.Product, 0)
	err := s.db.SelectContext(ctx, &products, `
		SELECT `+productColumns+`
		FROM productos p
		`+where+`
		ORDER BY p.nombre ASC, p.id ASC
		LIMIT NULLIF($2::int, 0) OFFSET $3
	`, active, q.Limit, q.Offset)
	if err != nil {
		return nil, 0, err
	}
	if err := attachComposition(ctx, s.db, products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE productos
		SET nombre = $2, descripcion = $3, precio_base = $4, activo = $5
		WHERE id = $1
	`, product.ID, product.Name, nullIfEmpty(product.Description), product.BasePrice, product.Active)
	if err != nil {
		return nil, mapError(err)
	}
	if err := affectedOne(res); err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, product.ID)
}

func (s *Store) ReplaceProductIngredients(ctx context.Context, productID int64, links []domain.ProductIngredient) (*domain.Product, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var exists bool
	if err := tx.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM productos WHERE id = $1 FOR UPDATE)`, productID); err != nil {
		return nil, err
	}
	if !exists {
		return nil, store.ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM productos_ingredientes WHERE producto_id = $1`, productID); err != nil {
		return nil, err
	}
	if err := insertLinks(ctx, tx, productID, links); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, productID)
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM productos WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	return affectedOne(res)
}

func (s *Store) CountProductSaleItems(ctx context.Context, id int64) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM venta_items WHERE producto_id = $1`, id)
	return n, err
}

const paymentMethodColumns = `m.id, m.nombre, m.activo, m.created_at`

type paymentMethodRow struct {
	domain.PaymentMethod
	Sales int `db:"sale_count"`
}

func (r paymentMethodRow) toDomain() domain.PaymentMethod {
	m := r.PaymentMethod
	sales := r.Sales
	m.SaleCount = &sales
	return m
}

func (s *Store) CreatePaymentMethod(ctx context.Context, method domain.PaymentMethod) (*domain.PaymentMethod, error) {
	var created domain.PaymentMethod
	err := s.db.GetContext(ctx, &created, `
		INSERT INTO metodos_pago AS m (nombre, activo, created_at)
		VALUES ($1, $2, COALESCE($3, now()))
		RETURNING `+paymentMethodColumns,
		method.Name, method.Active, nullTime(method.CreatedAt))
	if err != nil {
		return nil, mapError(err)
	}
	return &created, nil
}

func (s *Store) GetPaymentMethod(ctx context.Context, id int64) (*domain.PaymentMethod, error) {
	var row paymentMethodRow
	err := s.db.GetContext(ctx, &row, `
		SELECT `+paymentMethodColumns+`,
			(SELECT COUNT(*) FROM ventas v WHERE v.metodo_pago_id = m.id) AS sale_count
		FROM metodos_pago m
		WHERE m.id = $1
	`, id)
	if err != nil {
		return nil, mapError(err)
	}
	method := row.toDomain()
	return &method, nil
}

func (s *Store) FindPaymentMethodByName(ctx context.Context, name string) (*domain.PaymentMethod, error) {
	var method domain.PaymentMethod
	err := s.db.GetContext(ctx, &method, `SELECT `+paymentMethodColumns+` FROM metodos_pago m WHERE m.nombre = $1`, name)
	if err != nil {
		return nil, mapError(err)
	}
	return &method, nil
}

func (s *Store) ListPaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error) {
	rows := make([]paymentMethodRow, 0)
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+paymentMethodColumns+`,
			(SELECT COUNT(*) FROM ventas v WHERE v.metodo_pago_id = m.id) AS sale_count
		FROM metodos_pago m
		ORDER BY m.nombre ASC, m.id ASC
	`)
	if err != nil {
		return nil, err
	}
	methods := make([]domain.PaymentMethod, 0, len(rows))
	for _, row := range rows {
		methods = append(methods, row.toDomain())
	}
	return methods, nil
}

func (s *Store) UpdatePaymentMethod(ctx context.Context, method domain.PaymentMethod) (*domain.PaymentMethod, error) {
	var updated domain.PaymentMethod
	err := s.db.GetContext(ctx, &updated, `
		UPDATE metodos_pago AS m
		SET nombre = $2, activo = $3
		WHERE m.id = $1
		RETURNING `+paymentMethodColumns,
		method.ID, method.Name, method.Active)
	if err != nil {
		return nil, mapError(err)
	}
	return &updated, nil
}

func (s *Store) DeletePaymentMethod(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM metodos_pago WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	return affectedOne(res)
}

func (s *Store) CountPaymentMethodSales(ctx context.Context, id int64) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM ventas WHERE metodo_pago_id = $1`, id)
	return n, err
}
