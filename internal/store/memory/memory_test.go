package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pizzapos/internal/domain"
	"pizzapos/internal/store"
)

var _ store.Repository = (*Store)(nil)

func TestNewSeededHasCatalogue(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	methods, err := s.ListPaymentMethods(ctx)
	require.NoError(t, err)
	assert.Len(t, methods, 3)

	products, total, err := s.ListProducts(ctx, store.ProductQuery{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	for _, p := range products {
		assert.NotEmpty(t, p.Ingredients, p.Name)
	}
}

func TestCreateCustomersIsAllOrNothing(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.CreateCustomer(ctx, domain.Customer{Name: "Ana", Phone: "55510001"})
	require.NoError(t, err)

	_, err = s.CreateCustomers(ctx, []domain.Customer{
		{Name: "Luis", Phone: "55510002"},
		{Name: "Eva", Phone: "55510001"},
	})
	require.ErrorIs(t, err, store.ErrDuplicate)

	n, err := s.CountCustomers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestListCustomersSearchesAndPages(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, c := range []domain.Customer{
		{Name: "Ana Pérez", Phone: "55510001", Address: "Calle Sol 1"},
		{Name: "Luis Gómez", Phone: "55510002"},
		{Name: "Eva Ruiz", Phone: "55510003", Address: "Avenida Sol 9"},
	} {
		_, err := s.CreateCustomer(ctx, c)
		require.NoError(t, err)
	}

	found, total, err := s.ListCustomers(ctx, store.CustomerQuery{Search: "sol"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, found, 2)
	assert.Equal(t, "Eva Ruiz", found[0].Name)

	paged, total, err := s.ListCustomers(ctx, store.CustomerQuery{Offset: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, paged, 1)
	assert.Equal(t, "Ana Pérez", paged[0].Name)
}

func TestVoidSaleOnlyOnce(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()
	customer, err := s.CreateCustomer(ctx, domain.Customer{Name: "Ana", Phone: "55510001"})
	require.NoError(t, err)

	sale, err := s.CreateSale(ctx, domain.Sale{
		CustomerID:      customer.ID,
		PaymentMethodID: 1,
		Total:           decimal.NewFromInt(24),
		Status:          domain.SaleStatusCompleted,
		Items: []domain.SaleItem{
			{ProductID: 1, Quantity: 2, UnitPrice: decimal.NewFromInt(12), Subtotal: decimal.NewFromInt(24)},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, sale.Customer)
	assert.Equal(t, "Ana", sale.Customer.Name)

	voided, err := s.VoidSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SaleStatusCancelled, voided.Status)

	_, err = s.VoidSale(ctx, sale.ID)
	assert.ErrorIs(t, err, store.ErrAlreadyVoided)

	_, err = s.VoidSale(ctx, 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteBlockedByReferences(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	assert.ErrorIs(t, s.DeleteIngredient(ctx, 1), store.ErrReferenced)

	customer, err := s.CreateCustomer(ctx, domain.Customer{Name: "Ana", Phone: "55510001"})
	require.NoError(t, err)
	_, err = s.CreateSale(ctx, domain.Sale{
		CustomerID:      customer.ID,
		PaymentMethodID: 2,
		Total:           decimal.NewFromInt(15),
		Status:          domain.SaleStatusCompleted,
		Items:           []domain.SaleItem{{ProductID: 2, Quantity: 1, UnitPrice: decimal.NewFromInt(15), Subtotal: decimal.NewFromInt(15)}},
	})
	require.NoError(t, err)

	assert.ErrorIs(t, s.DeleteCustomer(ctx, customer.ID), store.ErrReferenced)
	assert.ErrorIs(t, s.DeleteProduct(ctx, 2), store.ErrReferenced)
	assert.ErrorIs(t, s.DeletePaymentMethod(ctx, 2), store.ErrReferenced)
	assert.NoError(t, s.DeleteProduct(ctx, 3))
}

func TestTopProductsOrdersByQuantityThenID(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	s := NewSeeded().WithClock(func() time.Time { return now })
	ctx := context.Background()
	customer, err := s.CreateCustomer(ctx, domain.Customer{Name: "Ana", Phone: "55510001"})
	require.NoError(t, err)

	item := func(productID int64, qty int64) domain.SaleItem {
		price := decimal.NewFromInt(10)
		return domain.SaleItem{ProductID: productID, Quantity: qty, UnitPrice: price, Subtotal: price.Mul(decimal.NewFromInt(qty))}
	}
	for _, items := range [][]domain.SaleItem{
		{item(3, 2), item(1, 1)},
		{item(2, 2), item(1, 1)},
	} {
		_, err := s.CreateSale(ctx, domain.Sale{
			CustomerID: customer.ID, PaymentMethodID: 1, Total: decimal.NewFromInt(30),
			Status: domain.SaleStatusCompleted, Items: items,
		})
		require.NoError(t, err)
	}

	top, err := s.TopProducts(ctx, domain.SaleFilter{Status: domain.SaleStatusCompleted}, 10)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{top[0].Product.ID, top[1].Product.ID, top[2].Product.ID})
	assert.Equal(t, "Pizza Margarita", top[0].Product.Name)
	assert.True(t, top[0].Revenue.Equal(decimal.NewFromInt(20)))

	buckets, err := s.SalesByTimestamp(ctx, domain.SaleFilter{}, 30)
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, 2, buckets[0].Count)
}
