package httpapi

import "net/http"

func (a *API) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	stats, err := a.service.DashboardStats(r.Context(), q.Get("fechaInicio"), q.Get("fechaFin"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, stats)
}

func (a *API) handleTodaySales(w http.ResponseWriter, r *http.Request) {
	today, err := a.service.TodaySales(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, today)
}

func (a *API) handleSalesByMonth(w http.ResponseWriter, r *http.Request) {
	// An unparsable meses falls back to the default window.
	n, _ := queryInt(r, "meses")
	months, err := a.service.SalesByMonth(r.Context(), int(n))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, months)
}
