package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pizzapos/internal/domain"
	"pizzapos/internal/store"
)

var _ store.Repository = (*Store)(nil)

func newIntegrationStore(t *testing.T) *Store {
	t.Helper()
	databaseURL := os.Getenv("PIZZAPOS_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set PIZZAPOS_TEST_DATABASE_URL to run postgres integration tests")
	}

	s, err := New(context.Background(), databaseURL, Options{MaxOpenConns: 4})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate())
	return s
}

func TestSaleLifecycle(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()
	stamp := time.Now().UnixNano()

	customer, err := s.CreateCustomer(ctx, domain.Customer{Name: "Cliente IT", Phone: fmt.Sprintf("it-%d", stamp)})
	require.NoError(t, err)
	method, err := s.CreatePaymentMethod(ctx, domain.PaymentMethod{Name: fmt.Sprintf("Metodo IT %d", stamp), Active: true})
	require.NoError(t, err)
	ingredient, err := s.CreateIngredient(ctx, domain.Ingredient{Name: fmt.Sprintf("Ingrediente IT %d", stamp), UnitCost: decimal.RequireFromString("1.5")})
	require.NoError(t, err)
	product, err := s.CreateProduct(ctx, domain.Product{
		Name:      "Pizza IT",
		BasePrice: decimal.NewFromInt(12),
		Active:    true,
		Ingredients: []domain.ProductIngredient{
			{IngredientID: ingredient.ID, Quantity: decimal.NewFromInt(2)},
		},
	})
	require.NoError(t, err)
	require.Len(t, product.Ingredients, 1)

	var saleID int64
	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM ventas WHERE id = $1`, saleID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM productos WHERE id = $1`, product.ID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM ingredientes WHERE id = $1`, ingredient.ID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM metodos_pago WHERE id = $1`, method.ID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM clientes WHERE id = $1`, customer.ID)
	})

	sale, err := s.CreateSale(ctx, domain.Sale{
		CustomerID:      customer.ID,
		PaymentMethodID: method.ID,
		Total:           decimal.NewFromInt(24),
		Status:          domain.SaleStatusCompleted,
		Items: []domain.SaleItem{
			{ProductID: product.ID, Quantity: 2, UnitPrice: decimal.NewFromInt(12), Subtotal: decimal.NewFromInt(24)},
		},
	})
	require.NoError(t, err)
	saleID = sale.ID
	require.NotNil(t, sale.Customer)
	require.Len(t, sale.Items, 1)
	assert.Equal(t, "Pizza IT", sale.Items[0].Product.Name)

	full, err := s.GetSale(ctx, sale.ID, true)
	require.NoError(t, err)
	require.Len(t, full.Items[0].Product.Ingredients, 1)

	listed, total, err := s.ListSales(ctx, domain.SaleFilter{CustomerID: customer.ID}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, listed, 1)

	byMethod, err := s.SalesByPaymentMethod(ctx, domain.SaleFilter{PaymentMethodID: method.ID, Status: domain.SaleStatusCompleted})
	require.NoError(t, err)
	require.Len(t, byMethod, 1)
	assert.True(t, byMethod[0].Revenue.Equal(decimal.NewFromInt(24)))

	assert.ErrorIs(t, s.DeleteIngredient(ctx, ingredient.ID), store.ErrReferenced)

	voided, err := s.VoidSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SaleStatusCancelled, voided.Status)

	_, err = s.VoidSale(ctx, sale.ID)
	assert.ErrorIs(t, err, store.ErrAlreadyVoided)
}

func TestDuplicatePhoneRejected(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()
	phone := fmt.Sprintf("dup-%d", time.Now().UnixNano())

	created, err := s.CreateCustomer(ctx, domain.Customer{Name: "Uno", Phone: phone})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.DeleteCustomer(ctx, created.ID) })

	_, err = s.CreateCustomers(ctx, []domain.Customer{
		{Name: "Dos", Phone: phone + "-b"},
		{Name: "Tres", Phone: phone},
	})
	require.ErrorIs(t, err, store.ErrDuplicate)

	found, err := s.FindCustomersByPhone(ctx, []string{phone + "-b"})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestNormalizeSaleStatusMigration(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()
	stamp := time.Now().UnixNano()

	upSQL, err := migrations.ReadFile("migrations/0002_normalize_sale_status.up.sql")
	require.NoError(t, err)

	// Replays the migration over legacy rows inside a transaction that is
	// always rolled back.
	tx, err := s.db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `ALTER TABLE ventas DROP CONSTRAINT ventas_estado_check`)
	require.NoError(t, err)

	var customerID, methodID int64
	require.NoError(t, tx.GetContext(ctx, &customerID,
		`INSERT INTO clientes (nombre, telefono) VALUES ('Legado', $1) RETURNING id`, fmt.Sprintf("legacy-%d", stamp)))
	require.NoError(t, tx.GetContext(ctx, &methodID,
		`INSERT INTO metodos_pago (nombre) VALUES ($1) RETURNING id`, fmt.Sprintf("Legado %d", stamp)))

	legacy := map[string]string{
		" Completado ": "completada",
		"Completada":   "completada",
		"anulada\t":    "cancelado",
		"CANCELLED":    "cancelado",
		"pendiente":    "cancelado",
	}
	ids := make(map[string]int64, len(legacy))
	for raw := range legacy {
		var id int64
		require.NoError(t, tx.GetContext(ctx, &id, `
			INSERT INTO ventas (cliente_id, metodo_pago_id, total, estado)
			VALUES ($1, $2, 10, $3) RETURNING id
		`, customerID, methodID, raw))
		ids[raw] = id
	}

	_, err = tx.ExecContext(ctx, string(upSQL))
	require.NoError(t, err)

	for raw, want := range legacy {
		var got string
		require.NoError(t, tx.GetContext(ctx, &got, `SELECT estado FROM ventas WHERE id = $1`, ids[raw]))
		assert.Equal(t, want, got, "legacy status %q", raw)
	}
}
