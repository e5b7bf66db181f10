package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"pizzapos/internal/apperr"
	"pizzapos/internal/service"
	"pizzapos/internal/store"
	"pizzapos/internal/xid"
)

const (
	roleAdmin   = "admin"
	roleCashier = "cashier"

	maxBodyBytes = 1 << 20
)

type Options struct {
	AllowedOrigin string
	// Development includes internal error messages and stacks in 500 responses.
	Development bool
	Logger      logrus.FieldLogger
}

type API struct {
	service       *service.Service
	auth          *AuthManager
	allowedOrigin string
	development   bool
	loginLimiter  *attemptLimiter
	log           logrus.FieldLogger
}

// New builds the HTTP API over svc. A nil auth leaves every route open.
func New(svc *service.Service, auth *AuthManager, opts Options) *API {
	origin := strings.TrimSpace(opts.AllowedOrigin)
	if origin == "" {
		origin = "*"
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &API{
		service:       svc,
		auth:          auth,
		allowedOrigin: origin,
		development:   opts.Development,
		loginLimiter:  newAttemptLimiter(5, time.Minute),
		log:           log,
	}
}

type attemptLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string][]time.Time
}

func newAttemptLimiter(max int, window time.Duration) *attemptLimiter {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &attemptLimiter{max: max, window: window, entries: make(map[string][]time.Time)}
}

func (l *attemptLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := time.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	history := l.entries[key]
	kept := make([]time.Time, 0, len(history)+1)
	for _, ts := range history {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.entries[key] = kept
		return false
	}
	l.entries[key] = append(kept, now)
	return true
}

func clientKey(r *http.Request) string {
	host := strings.TrimSpace(r.RemoteAddr)
	if host == "" {
		return "unknown"
	}
	if addr, err := netip.ParseAddrPort(host); err == nil {
		return addr.Addr().String()
	}
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		return host[:idx]
	}
	return host
}

func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()
	staff := func(h http.HandlerFunc) http.HandlerFunc { return a.requireRole(h, roleCashier, roleAdmin) }
	admin := func(h http.HandlerFunc) http.HandlerFunc { return a.requireRole(h, roleAdmin) }

	mux.HandleFunc("GET /healthz", a.handleHealth)
	mux.HandleFunc("GET /{$}", a.handleIndex)
	mux.HandleFunc("GET /api", a.handleIndex)

	if a.auth != nil {
		mux.HandleFunc("POST /api/auth/login", a.handleLogin)
		mux.HandleFunc("GET /api/usuarios", admin(a.handleListUsers))
		mux.HandleFunc("POST /api/usuarios", admin(a.handleCreateUser))
	}

	mux.HandleFunc("POST /api/clientes", admin(a.handleCreateCustomer))
	mux.HandleFunc("POST /api/clientes/bulk", admin(a.handleCreateCustomers))
	mux.HandleFunc("GET /api/clientes", staff(a.handleListCustomers))
	mux.HandleFunc("GET /api/clientes/buscar", staff(a.handleSearchCustomers))
	mux.HandleFunc("GET /api/clientes/{id}", staff(a.handleGetCustomer))
	mux.HandleFunc("GET /api/clientes/{id}/ventas", staff(a.handleCustomerHistory))
	mux.HandleFunc("PUT /api/clientes/{id}", admin(a.handleUpdateCustomer))
	mux.HandleFunc("DELETE /api/clientes/{id}", admin(a.handleDeleteCustomer))

	mux.HandleFunc("POST /api/ingredientes", admin(a.handleCreateIngredient))
	mux.HandleFunc("POST /api/ingredientes/bulk", admin(a.handleCreateIngredients))
	mux.HandleFunc("GET /api/ingredientes", staff(a.handleListIngredients))
	mux.HandleFunc("GET /api/ingredientes/{id}", staff(a.handleGetIngredient))
	mux.HandleFunc("PUT /api/ingredientes/{id}", admin(a.handleUpdateIngredient))
	mux.HandleFunc("DELETE /api/ingredientes/{id}", admin(a.handleDeleteIngredient))

	mux.HandleFunc("POST /api/productos", admin(a.handleCreateProduct))
	mux.HandleFunc("POST /api/productos/bulk", admin(a.handleCreateProducts))
	mux.HandleFunc("GET /api/productos", staff(a.handleListProducts))
	mux.HandleFunc("GET /api/productos/{id}", staff(a.handleGetProduct))
	mux.HandleFunc("GET /api/productos/{id}/costo", staff(a.handleProductCost))
	mux.HandleFunc("PUT /api/productos/{id}", admin(a.handleUpdateProduct))
	mux.HandleFunc("PUT /api/productos/{id}/ingredientes", admin(a.handleReplaceProductIngredients))
	mux.HandleFunc("PATCH /api/productos/{id}/ingredientes", admin(a.handleReplaceProductIngredients))
	mux.HandleFunc("DELETE /api/productos/{id}", admin(a.handleDeleteProduct))

	mux.HandleFunc("POST /api/metodos-pago", admin(a.handleCreatePaymentMethod))
	mux.HandleFunc("GET /api/metodos-pago", staff(a.handleListPaymentMethods))
	mux.HandleFunc("GET /api/metodos-pago/{id}", staff(a.handleGetPaymentMethod))
	mux.HandleFunc("PUT /api/metodos-pago/{id}", admin(a.handleUpdatePaymentMethod))
	mux.HandleFunc("DELETE /api/metodos-pago/{id}", admin(a.handleDeletePaymentMethod))

	mux.HandleFunc("POST /api/ventas", staff(a.handleCreateSale))
	mux.HandleFunc("POST /api/ventas/bulk", staff(a.handleCreateSales))
	mux.HandleFunc("GET /api/ventas", staff(a.handleListSales))
	mux.HandleFunc("GET /api/ventas/{id}", staff(a.handleGetSale))
	mux.HandleFunc("PATCH /api/ventas/{id}/anular", admin(a.handleVoidSale))

	mux.HandleFunc("GET /api/dashboard/estadisticas", staff(a.handleDashboardStats))
	mux.HandleFunc("GET /api/dashboard/ventas-del-dia", staff(a.handleTodaySales))
	mux.HandleFunc("GET /api/dashboard/ventas-por-mes", staff(a.handleSalesByMonth))

	mux.HandleFunc("/", a.handleNotFound)

	return a.withMiddleware(mux)
}

// requireRole rejects requests without a valid bearer token for one of roles.
// With authentication disabled it returns next unchanged.
func (a *API) requireRole(next http.HandlerFunc, roles ...string) http.HandlerFunc {
	if a.auth == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		authorization := strings.TrimSpace(r.Header.Get("Authorization"))
		if !strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
			writeFail(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		token := strings.TrimSpace(authorization[len("Bearer "):])
		actor, err := a.auth.ParseToken(token)
		if err != nil {
			writeFail(w, http.StatusUnauthorized, err.Error())
			return
		}

		if len(roles) > 0 && !isRoleAllowed(actor.Role, roles) {
			writeFail(w, http.StatusForbidden, "forbidden role")
			return
		}

		next(w, r.WithContext(service.WithActor(r.Context(), actor)))
	}
}

func isRoleAllowed(role string, allowed []string) bool {
	for _, allow := range allowed {
		if role == allow {
			return true
		}
	}
	return false
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": "pizzapos sales API",
		"endpoints": map[string]string{
			"clientes":     "/api/clientes",
			"ingredientes": "/api/ingredientes",
			"productos":    "/api/productos",
			"metodosPago":  "/api/metodos-pago",
			"ventas":       "/api/ventas",
			"dashboard":    "/api/dashboard",
		},
	})
}

func (a *API) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeFail(w, http.StatusNotFound, fmt.Sprintf("route %s not found", r.URL.Path))
}

type requestIDKey struct{}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

func (a *API) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startedAt := time.Now()

		requestID := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if !xid.Valid(requestID) {
			requestID = xid.New("req")
		}

		w.Header().Set("X-Request-ID", requestID)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")
		w.Header().Set("Vary", "Origin")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if r.Method == http.MethodPost || r.Method == http.MethodPatch || r.Method == http.MethodPut {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		}

		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, requestID)))

		a.log.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.status,
			"bytes":      rec.bytes,
			"duration":   time.Since(startedAt).String(),
			"request_id": requestID,
		}).Info("request")
	})
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return err
		case errors.Is(err, io.EOF):
			return apperr.Validation("request body is required")
		}
		return apperr.Validation("invalid request body: " + err.Error())
	}
	if decoder.More() {
		return apperr.Validation("request body must hold a single JSON value")
	}
	return nil
}

func parsePositiveLimit(raw string, fallback int, max int) int {
	limit := fallback
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" {
		if parsed, err := strconv.Atoi(trimmed); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if max > 0 && limit > max {
		return max
	}
	return limit
}

func pageFrom(r *http.Request) service.Page {
	q := r.URL.Query()
	return service.NewPage(parsePositiveLimit(q.Get("page"), 1, 0), parsePositiveLimit(q.Get("limit"), 10, 100))
}

// queryInt reads an optional integer query parameter. Absent is 0.
func queryInt(r *http.Request, key string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperr.Validation(fmt.Sprintf("%s must be an integer, got %q", key, raw))
	}
	return n, nil
}

func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation(fmt.Sprintf("invalid id %q", raw))
	}
	return id, nil
}

type envelope struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Stack   string `json:"stack,omitempty"`
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Status: "success", Data: data})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Status: "success", Message: message})
}

func writeFail(w http.ResponseWriter, status int, message string) {
	kind := "fail"
	if status >= 500 {
		kind = "error"
	}
	writeJSON(w, status, envelope{Status: kind, Message: message})
}

// errorStatus maps err to the response status and client message. The bool is
// false for errors the client must not see the details of.
func errorStatus(err error) (int, string, bool) {
	if status, known := apperr.Status(err); known {
		return status, apperr.Message(err), true
	}
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "request body too large", true
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "resource not found", true
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusBadRequest, "a record with that data already exists", true
	case errors.Is(err, store.ErrReferenced):
		return http.StatusBadRequest, "record is referenced by other records", true
	}
	return http.StatusInternalServerError, "internal server error", false
}

func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message, known := errorStatus(err)
	if known {
		writeFail(w, status, message)
		return
	}

	err = apperr.Wrap(err)
	a.log.WithError(err).WithField("request_id", requestIDFrom(r.Context())).Error("unexpected error")
	if a.development {
		writeJSON(w, status, envelope{Status: "error", Message: err.Error(), Stack: apperr.Stack(err)})
		return
	}
	writeFail(w, status, message)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
