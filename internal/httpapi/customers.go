package httpapi

import (
	"net/http"

	"pizzapos/internal/domain"
)

func (a *API) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req domain.CustomerCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	customer, err := a.service.CreateCustomer(r.Context(), req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, map[string]any{"cliente": customer})
}

func (a *API) handleCreateCustomers(w http.ResponseWriter, r *http.Request) {
	var reqs []domain.CustomerCreateRequest
	if err := decodeJSON(r, &reqs); err != nil {
		a.writeError(w, r, err)
		return
	}

	customers, err := a.service.CreateCustomers(r.Context(), reqs)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, map[string]any{"clientes": customers, "total": len(customers)})
}

func (a *API) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, pagination, err := a.service.ListCustomers(r.Context(), r.URL.Query().Get("buscar"), pageFrom(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"clientes": customers, "pagination": pagination})
}

func (a *API) handleSearchCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := a.service.SearchCustomers(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"clientes": customers})
}

func (a *API) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	customer, err := a.service.GetCustomer(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"cliente": customer})
}

func (a *API) handleCustomerHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	history, err := a.service.CustomerHistory(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, history)
}

func (a *API) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	var req domain.CustomerUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	customer, err := a.service.UpdateCustomer(r.Context(), id, req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"cliente": customer})
}

func (a *API) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := a.service.DeleteCustomer(r.Context(), id); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "customer deleted")
}
