package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pizzapos/internal/apperr"
	"pizzapos/internal/domain"
)

func TestCreateSaleComputesTotals(t *testing.T) {
	svc, clock := newTestService(t)
	customer := mustCustomer(t, svc, "55510001")

	sale, err := svc.CreateSale(context.Background(), domain.SaleCreateRequest{
		CustomerID:      customer.ID,
		PaymentMethodID: 1,
		DeliveryAddress: "Calle Mayor 3",
		Items: []domain.SaleItemInput{
			{ProductID: 1, Quantity: 2, UnitPrice: dec("12.50")},
			{ProductID: 2, Quantity: 1, UnitPrice: dec("15")},
			{ProductID: 1, Quantity: 3, UnitPrice: dec("0.10")},
		},
	})
	require.NoError(t, err)

	assert.True(t, sale.Total.Equal(dec("40.30")), sale.Total.String())
	assert.Equal(t, domain.SaleStatusCompleted, sale.Status)
	assert.True(t, sale.CreatedAt.Equal(clock.now))
	require.Len(t, sale.Items, 3)
	assert.True(t, sale.Items[0].Subtotal.Equal(dec("25")))
	assert.True(t, sale.Items[2].Subtotal.Equal(dec("0.30")))
	require.NotNil(t, sale.Customer)
	require.NotNil(t, sale.PaymentMethod)
	assert.Equal(t, "Efectivo", sale.PaymentMethod.Name)
	assert.Equal(t, "Pizza Margarita", sale.Items[0].Product.Name)
}

func TestCreateSaleMissingReferencesPersistsNothing(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	customer := mustCustomer(t, svc, "55510001")

	for name, req := range map[string]domain.SaleCreateRequest{
		"customer":       {CustomerID: 99, PaymentMethodID: 1, Items: []domain.SaleItemInput{{ProductID: 1, Quantity: 1, UnitPrice: dec("12")}}},
		"payment method": {CustomerID: customer.ID, PaymentMethodID: 99, Items: []domain.SaleItemInput{{ProductID: 1, Quantity: 1, UnitPrice: dec("12")}}},
		"product": {CustomerID: customer.ID, PaymentMethodID: 1, Items: []domain.SaleItemInput{
			{ProductID: 1, Quantity: 1, UnitPrice: dec("12")},
			{ProductID: 77, Quantity: 1, UnitPrice: dec("12")},
		}},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateSale(ctx, req)
			requireStatus(t, err, http.StatusNotFound)
		})
	}

	_, page, err := svc.ListSales(ctx, SaleQuery{})
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
}

func TestCreateSaleRejectsInvalidItems(t *testing.T) {
	svc, _ := newTestService(t)
	customer := mustCustomer(t, svc, "55510001")

	_, err := svc.CreateSale(context.Background(), domain.SaleCreateRequest{CustomerID: customer.ID, PaymentMethodID: 1})
	requireStatus(t, err, http.StatusBadRequest)

	_, err = svc.CreateSale(context.Background(), domain.SaleCreateRequest{
		CustomerID: customer.ID, PaymentMethodID: 1,
		Items: []domain.SaleItemInput{{ProductID: 1, Quantity: 0, UnitPrice: dec("12")}},
	})
	requireStatus(t, err, http.StatusBadRequest)
	assert.Contains(t, apperr.Message(err), "items[0].cantidad")
}

func TestVoidSaleTwiceFails(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	customer := mustCustomer(t, svc, "55510001")
	sale, err := svc.CreateSale(ctx, domain.SaleCreateRequest{
		CustomerID: customer.ID, PaymentMethodID: 1,
		Items: []domain.SaleItemInput{{ProductID: 1, Quantity: 1, UnitPrice: dec("12")}},
	})
	require.NoError(t, err)

	voided, err := svc.VoidSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SaleStatusCancelled, voided.Status)

	_, err = svc.VoidSale(ctx, sale.ID)
	requireStatus(t, err, http.StatusBadRequest)

	again, err := svc.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SaleStatusCancelled, again.Status)

	_, err = svc.VoidSale(ctx, 999)
	requireStatus(t, err, http.StatusNotFound)
}

func TestGetSaleIncludesComposition(t *testing.T) {
	svc, _ := newTestService(t)
	customer := mustCustomer(t, svc, "55510001")
	sale, err := svc.CreateSale(context.Background(), domain.SaleCreateRequest{
		CustomerID: customer.ID, PaymentMethodID: 1,
		Items: []domain.SaleItemInput{{ProductID: 2, Quantity: 1, UnitPrice: dec("15")}},
	})
	require.NoError(t, err)

	full, err := svc.GetSale(context.Background(), sale.ID)
	require.NoError(t, err)
	require.Len(t, full.Items, 1)
	assert.Len(t, full.Items[0].Product.Ingredients, 4)
}

func TestCreateSalesBatchCollectsFailures(t *testing.T) {
	svc, _ := newTestService(t)
	customer := mustCustomer(t, svc, "55510001")
	valid := domain.SaleCreateRequest{
		CustomerID: customer.ID, PaymentMethodID: 1,
		Items: []domain.SaleItemInput{{ProductID: 1, Quantity: 1, UnitPrice: dec("12")}},
	}
	invalid := valid
	invalid.Items = []domain.SaleItemInput{{ProductID: 404, Quantity: 1, UnitPrice: dec("12")}}

	result, err := svc.CreateSalesBatch(context.Background(), []domain.SaleCreateRequest{valid, invalid, valid})
	require.NoError(t, err)
	assert.Len(t, result.Succeeded, 2)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, int64(404), result.Failed[0].Input.Items[0].ProductID)
	assert.Contains(t, result.Failed[0].Error, "404")
	assert.Less(t, result.Succeeded[0].ID, result.Succeeded[1].ID)

	_, err = svc.CreateSalesBatch(context.Background(), nil)
	requireStatus(t, err, http.StatusBadRequest)
}

func TestListSalesFilters(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()
	ana := mustCustomer(t, svc, "55510001")
	luis := mustCustomer(t, svc, "55510002")

	create := func(customerID int64, methodID int64, at time.Time) *domain.Sale {
		clock.now = at
		sale, err := svc.CreateSale(ctx, domain.SaleCreateRequest{
			CustomerID: customerID, PaymentMethodID: methodID,
			Items: []domain.SaleItemInput{{ProductID: 1, Quantity: 1, UnitPrice: dec("12")}},
		})
		require.NoError(t, err)
		return sale
	}
	first := create(ana.ID, 1, time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC))
	create(luis.ID, 2, time.Date(2026, 10, 15, 23, 30, 0, 0, time.UTC))
	last := create(ana.ID, 2, time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC))
	_, err := svc.VoidSale(ctx, first.ID)
	require.NoError(t, err)

	sales, page, err := svc.ListSales(ctx, SaleQuery{CustomerID: ana.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, last.ID, sales[0].ID)

	_, page, err = svc.ListSales(ctx, SaleQuery{From: "2026-10-14", To: "2026-10-15"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	_, page, err = svc.ListSales(ctx, SaleQuery{PaymentMethodID: 2, Status: "Completada"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	_, page, err = svc.ListSales(ctx, SaleQuery{Status: "anulada"})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	_, _, err = svc.ListSales(ctx, SaleQuery{Status: "pendiente"})
	requireStatus(t, err, http.StatusBadRequest)

	_, _, err = svc.ListSales(ctx, SaleQuery{From: "ayer"})
	requireStatus(t, err, http.StatusBadRequest)

	_, _, err = svc.ListSales(ctx, SaleQuery{From: "2026-10-16", To: "2026-10-01"})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestCustomerHistoryCountsCompletedSales(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	customer := mustCustomer(t, svc, "55510001")
	for _, price := range []string{"12", "18"} {
		_, err := svc.CreateSale(ctx, domain.SaleCreateRequest{
			CustomerID: customer.ID, PaymentMethodID: 1,
			Items: []domain.SaleItemInput{{ProductID: 1, Quantity: 1, UnitPrice: dec(price)}},
		})
		require.NoError(t, err)
	}
	voided, err := svc.CreateSale(ctx, domain.SaleCreateRequest{
		CustomerID: customer.ID, PaymentMethodID: 1,
		Items: []domain.SaleItemInput{{ProductID: 1, Quantity: 1, UnitPrice: dec("100")}},
	})
	require.NoError(t, err)
	_, err = svc.VoidSale(ctx, voided.ID)
	require.NoError(t, err)

	history, err := svc.CustomerHistory(ctx, customer.ID)
	require.NoError(t, err)
	assert.Len(t, history.Sales, 3)
	assert.Equal(t, 2, history.Stats.Purchases)
	assert.True(t, history.Stats.TotalSpent.Equal(dec("30")))
	assert.True(t, history.Stats.AverageTicket.Equal(dec("15")))

	detail, err := svc.GetCustomer(ctx, customer.ID)
	require.NoError(t, err)
	assert.Len(t, detail.RecentSales, 3)
	require.NotNil(t, detail.SaleCount)
	assert.Equal(t, 3, *detail.SaleCount)
}
