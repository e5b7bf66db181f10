package service

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pizzapos/internal/apperr"
	"pizzapos/internal/domain"
	"pizzapos/internal/store/memory"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func newTestService(t *testing.T) (*Service, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)}
	repo := memory.NewSeeded().WithClock(clock.Now)
	return New(repo, WithClock(clock.Now), WithLocation(time.UTC)), clock
}

func requireStatus(t *testing.T, err error, want int) {
	t.Helper()
	require.Error(t, err)
	got, known := apperr.Status(err)
	require.True(t, known, "unexpected error: %v", err)
	assert.Equal(t, want, got, apperr.Message(err))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mustCustomer(t *testing.T, svc *Service, phone string) *domain.Customer {
	t.Helper()
	c, err := svc.CreateCustomer(context.Background(), domain.CustomerCreateRequest{Name: "Cliente " + phone, Phone: phone})
	require.NoError(t, err)
	return c
}

func TestCreateCustomerValidatesInput(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateCustomer(context.Background(), domain.CustomerCreateRequest{Name: "A", Phone: "123"})
	requireStatus(t, err, http.StatusBadRequest)
	assert.Contains(t, apperr.Message(err), "nombre")
	assert.Contains(t, apperr.Message(err), "telefono")
}

func TestCustomerPhoneIsUnique(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	ana := mustCustomer(t, svc, "55510001")
	luis := mustCustomer(t, svc, "55510002")

	_, err := svc.CreateCustomer(ctx, domain.CustomerCreateRequest{Name: "Otra Ana", Phone: "55510001"})
	requireStatus(t, err, http.StatusBadRequest)

	taken := ana.Phone
	_, err = svc.UpdateCustomer(ctx, luis.ID, domain.CustomerUpdateRequest{Phone: &taken})
	requireStatus(t, err, http.StatusBadRequest)

	own := ana.Phone
	name := "Ana María"
	updated, err := svc.UpdateCustomer(ctx, ana.ID, domain.CustomerUpdateRequest{Name: &name, Phone: &own})
	require.NoError(t, err)
	assert.Equal(t, "Ana María", updated.Name)
}

func TestCreateCustomersRejectsWholePayload(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	mustCustomer(t, svc, "55510001")

	_, err := svc.CreateCustomers(ctx, []domain.CustomerCreateRequest{
		{Name: "Luis", Phone: "55510002"},
		{Name: "Eva", Phone: "55510002"},
	})
	requireStatus(t, err, http.StatusBadRequest)

	_, err = svc.CreateCustomers(ctx, []domain.CustomerCreateRequest{
		{Name: "Luis", Phone: "55510003"},
		{Name: "Eva", Phone: "55510001"},
	})
	requireStatus(t, err, http.StatusBadRequest)
	assert.Contains(t, apperr.Message(err), "55510001")

	_, page, err := svc.ListCustomers(ctx, "", NewPage(1, 10))
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
}

func TestListCustomersPaginates(t *testing.T) {
	svc, _ := newTestService(t)
	for i := range 25 {
		mustCustomer(t, svc, fmt.Sprintf("5550%04d", i))
	}

	customers, page, err := svc.ListCustomers(context.Background(), "", NewPage(2, 10))
	require.NoError(t, err)
	assert.Len(t, customers, 10)
	assert.Equal(t, domain.Pagination{Total: 25, Page: 2, Limit: 10, TotalPages: 3}, page)

	_, page, err = svc.ListCustomers(context.Background(), "", NewPage(0, 500))
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 100, page.Limit)
}

func TestSearchCustomersRequiresQuery(t *testing.T) {
	svc, _ := newTestService(t)
	mustCustomer(t, svc, "55510001")

	_, err := svc.SearchCustomers(context.Background(), "  ")
	requireStatus(t, err, http.StatusBadRequest)

	found, err := svc.SearchCustomers(context.Background(), "5551")
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestIngredientNameIsUnique(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateIngredient(ctx, domain.IngredientCreateRequest{Name: "Masa", UnitCost: dec("2")})
	requireStatus(t, err, http.StatusBadRequest)

	_, err = svc.CreateIngredient(ctx, domain.IngredientCreateRequest{Name: "Aceitunas", UnitCost: dec("0")})
	requireStatus(t, err, http.StatusBadRequest)
	assert.Contains(t, apperr.Message(err), "costoUnitario")

	created, err := svc.CreateIngredient(ctx, domain.IngredientCreateRequest{Name: "Aceitunas", UnitCost: dec("0.75")})
	require.NoError(t, err)

	same := "Aceitunas"
	_, err = svc.UpdateIngredient(ctx, created.ID, domain.IngredientUpdateRequest{Name: &same})
	require.NoError(t, err)

	taken := "Masa"
	_, err = svc.UpdateIngredient(ctx, created.ID, domain.IngredientUpdateRequest{Name: &taken})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestEstimateProductCost(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.CreateIngredient(ctx, domain.IngredientCreateRequest{Name: "Queso azul", UnitCost: dec("3.0")})
	require.NoError(t, err)
	b, err := svc.CreateIngredient(ctx, domain.IngredientCreateRequest{Name: "Trufa", UnitCost: dec("5.0")})
	require.NoError(t, err)

	product, err := svc.CreateProduct(ctx, domain.ProductCreateRequest{
		Name:      "Pizza Gourmet",
		BasePrice: dec("15"),
		Ingredients: []domain.ProductIngredientInput{
			{IngredientID: a.ID, Quantity: dec("2")},
			{IngredientID: b.ID, Quantity: dec("1")},
		},
	})
	require.NoError(t, err)
	assert.True(t, product.Active)

	estimate, err := svc.EstimateProductCost(ctx, product.ID)
	require.NoError(t, err)
	assert.True(t, estimate.EstimatedCost.Equal(dec("11")), estimate.EstimatedCost.String())
	assert.True(t, estimate.Margin.Equal(dec("4")), estimate.Margin.String())
	assert.True(t, estimate.MarginPercent.Equal(dec("26.67")), estimate.MarginPercent.String())
	require.Len(t, estimate.Ingredients, 2)
	assert.Equal(t, "Queso azul", estimate.Ingredients[0].Name)
	assert.True(t, estimate.Ingredients[0].TotalCost.Equal(dec("6")))

	_, err = svc.EstimateProductCost(ctx, 999)
	requireStatus(t, err, http.StatusNotFound)
}

func TestReplaceProductIngredients(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	req := func(ids ...int64) domain.ProductIngredientsRequest {
		var r domain.ProductIngredientsRequest
		for _, id := range ids {
			r.Ingredients = append(r.Ingredients, domain.ProductIngredientInput{IngredientID: id, Quantity: dec("1")})
		}
		return r
	}

	_, err := svc.ReplaceProductIngredients(ctx, 999, req(1))
	requireStatus(t, err, http.StatusNotFound)

	_, err = svc.ReplaceProductIngredients(ctx, 1, req(1, 42))
	requireStatus(t, err, http.StatusBadRequest)
	assert.Contains(t, apperr.Message(err), "42")

	_, err = svc.ReplaceProductIngredients(ctx, 1, req(1, 1))
	requireStatus(t, err, http.StatusBadRequest)

	_, err = svc.ReplaceProductIngredients(ctx, 1, domain.ProductIngredientsRequest{})
	requireStatus(t, err, http.StatusBadRequest)

	product, err := svc.ReplaceProductIngredients(ctx, 1, req(1, 7))
	require.NoError(t, err)
	require.Len(t, product.Ingredients, 2)
	assert.Equal(t, int64(7), product.Ingredients[1].IngredientID)
}

func TestCreateProductsChecksIngredients(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateProducts(ctx, []domain.ProductCreateRequest{
		{Name: "Pizza Uno", BasePrice: dec("10")},
		{Name: "Pizza Dos", BasePrice: dec("11"), Ingredients: []domain.ProductIngredientInput{{IngredientID: 99, Quantity: dec("1")}}},
	})
	requireStatus(t, err, http.StatusBadRequest)

	_, page, err := svc.ListProducts(ctx, nil, NewPage(1, 10))
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
}

func TestPaymentMethodNameIsUnique(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreatePaymentMethod(ctx, domain.PaymentMethodCreateRequest{Name: "Efectivo"})
	requireStatus(t, err, http.StatusBadRequest)

	inactive := false
	created, err := svc.CreatePaymentMethod(ctx, domain.PaymentMethodCreateRequest{Name: "Bizum", Active: &inactive})
	require.NoError(t, err)
	assert.False(t, created.Active)

	taken := "Tarjeta"
	_, err = svc.UpdatePaymentMethod(ctx, created.ID, domain.PaymentMethodUpdateRequest{Name: &taken})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestDeleteBlockedByReferences(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	customer := mustCustomer(t, svc, "55510001")

	_, err := svc.CreateSale(ctx, domain.SaleCreateRequest{
		CustomerID:      customer.ID,
		PaymentMethodID: 2,
		Items:           []domain.SaleItemInput{{ProductID: 2, Quantity: 1, UnitPrice: dec("15")}},
	})
	require.NoError(t, err)

	requireStatus(t, svc.DeleteCustomer(ctx, customer.ID), http.StatusBadRequest)
	requireStatus(t, svc.DeletePaymentMethod(ctx, 2), http.StatusBadRequest)
	requireStatus(t, svc.DeleteProduct(ctx, 2), http.StatusBadRequest)
	requireStatus(t, svc.DeleteIngredient(ctx, 1), http.StatusBadRequest)

	_, err = svc.GetCustomer(ctx, customer.ID)
	assert.NoError(t, err)
	_, err = svc.GetPaymentMethod(ctx, 2)
	assert.NoError(t, err)
	_, err = svc.GetProduct(ctx, 2)
	assert.NoError(t, err)
	_, err = svc.GetIngredient(ctx, 1)
	assert.NoError(t, err)

	requireStatus(t, svc.DeleteCustomer(ctx, 999), http.StatusNotFound)
	assert.NoError(t, svc.DeletePaymentMethod(ctx, 3))
}
