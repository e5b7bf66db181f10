package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"pizzapos/internal/domain"
)

func (a *API) handleCreateIngredient(w http.ResponseWriter, r *http.Request) {
	var req domain.IngredientCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	ingredient, err := a.service.CreateIngredient(r.Context(), req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, map[string]any{"ingrediente": ingredient})
}

func (a *API) handleCreateIngredients(w http.ResponseWriter, r *http.Request) {
	var reqs []domain.IngredientCreateRequest
	if err := decodeJSON(r, &reqs); err != nil {
		a.writeError(w, r, err)
		return
	}

	ingredients, err := a.service.CreateIngredients(r.Context(), reqs)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, map[string]any{"ingredientes": ingredients, "total": len(ingredients)})
}

func (a *API) handleListIngredients(w http.ResponseWriter, r *http.Request) {
	ingredients, pagination, err := a.service.ListIngredients(r.Context(), r.URL.Query().Get("orderBy"), pageFrom(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"ingredientes": ingredients, "pagination": pagination})
}

func (a *API) handleGetIngredient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	ingredient, err := a.service.GetIngredient(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"ingrediente": ingredient})
}

func (a *API) handleUpdateIngredient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	var req domain.IngredientUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	ingredient, err := a.service.UpdateIngredient(r.Context(), id, req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"ingrediente": ingredient})
}

func (a *API) handleDeleteIngredient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := a.service.DeleteIngredient(r.Context(), id); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "ingredient deleted")
}

func (a *API) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req domain.ProductCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	product, err := a.service.CreateProduct(r.Context(), req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, map[string]any{"producto": product})
}

func (a *API) handleCreateProducts(w http.ResponseWriter, r *http.Request) {
	var reqs []domain.ProductCreateRequest
	if err := decodeJSON(r, &reqs); err != nil {
		a.writeError(w, r, err)
		return
	}

	products, err := a.service.CreateProducts(r.Context(), reqs)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, map[string]any{"productos": products, "total": len(products)})
}

func (a *API) handleListProducts(w http.ResponseWriter, r *http.Request) {
	var active *bool
	if raw := strings.TrimSpace(r.URL.Query().Get("activo")); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			active = &v
		}
	}

	products, pagination, err := a.service.ListProducts(r.Context(), active, pageFrom(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"productos": products, "pagination": pagination})
}

func (a *API) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	product, err := a.service.GetProduct(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"producto": product})
}

func (a *API) handleProductCost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	estimate, err := a.service.EstimateProductCost(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, estimate)
}

func (a *API) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	var req domain.ProductUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	product, err := a.service.UpdateProduct(r.Context(), id, req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"producto": product})
}

// handleReplaceProductIngredients serves both PUT and PATCH; either replaces
// the whole composition.
func (a *API) handleReplaceProductIngredients(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	var req domain.ProductIngredientsRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	product, err := a.service.ReplaceProductIngredients(r.Context(), id, req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"producto": product})
}

func (a *API) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := a.service.DeleteProduct(r.Context(), id); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "product deleted")
}

func (a *API) handleCreatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req domain.PaymentMethodCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	method, err := a.service.CreatePaymentMethod(r.Context(), req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, map[string]any{"metodoPago": method})
}

func (a *API) handleListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := a.service.ListPaymentMethods(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"metodosPago": methods})
}

func (a *API) handleGetPaymentMethod(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	method, err := a.service.GetPaymentMethod(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"metodoPago": method})
}

func (a *API) handleUpdatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	var req domain.PaymentMethodUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	method, err := a.service.UpdatePaymentMethod(r.Context(), id, req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"metodoPago": method})
}

func (a *API) handleDeletePaymentMethod(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := a.service.DeletePaymentMethod(r.Context(), id); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "payment method deleted")
}
