package httpapi

import (
	"fmt"
	"net/http"

	"pizzapos/internal/domain"
	"pizzapos/internal/service"
)

func (a *API) handleCreateSale(w http.ResponseWriter, r *http.Request) {
	var req domain.SaleCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	sale, err := a.service.CreateSale(r.Context(), req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, map[string]any{"venta": sale})
}

func (a *API) handleCreateSales(w http.ResponseWriter, r *http.Request) {
	var reqs []domain.SaleCreateRequest
	if err := decodeJSON(r, &reqs); err != nil {
		a.writeError(w, r, err)
		return
	}

	result, err := a.service.CreateSalesBatch(r.Context(), reqs)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{
		Status:  "success",
		Data:    result,
		Message: fmt.Sprintf("%d ventas creadas, %d fallidas", len(result.Succeeded), len(result.Failed)),
	})
}

func (a *API) handleListSales(w http.ResponseWriter, r *http.Request) {
	customerID, err := queryInt(r, "clienteId")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	methodID, err := queryInt(r, "metodoPagoId")
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	sales, pagination, err := a.service.ListSales(r.Context(), service.SaleQuery{
		From:            q.Get("fechaInicio"),
		To:              q.Get("fechaFin"),
		CustomerID:      customerID,
		PaymentMethodID: methodID,
		Status:          q.Get("estado"),
		Page:            pageFrom(r),
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"ventas": sales, "pagination": pagination})
}

func (a *API) handleGetSale(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	sale, err := a.service.GetSale(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"venta": sale})
}

func (a *API) handleVoidSale(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	sale, err := a.service.VoidSale(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"venta": sale})
}
