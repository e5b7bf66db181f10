package memory

import (
	"cmp"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"pizzapos/internal/domain"
)

// Store is a Repository kept entirely in process memory. Every method holds
// the store lock for its whole duration, so multi-row writes are atomic.
type Store struct {
	mu sync.RWMutex

	customers      map[int64]domain.Customer
	ingredients    map[int64]domain.Ingredient
	products       map[int64]domain.Product
	links          map[int64][]domain.ProductIngredient
	paymentMethods map[int64]domain.PaymentMethod
	sales          map[int64]domain.Sale
	users          map[string]domain.UserAccount

	nextCustomerID      int64
	nextIngredientID    int64
	nextProductID       int64
	nextPaymentMethodID int64
	nextSaleID          int64
	nextSaleItemID      int64

	now func() time.Time
}

func New() *Store {
	return &Store{
		customers:      make(map[int64]domain.Customer),
		ingredients:    make(map[int64]domain.Ingredient),
		products:       make(map[int64]domain.Product),
		links:          make(map[int64][]domain.ProductIngredient),
		paymentMethods: make(map[int64]domain.PaymentMethod),
		sales:          make(map[int64]domain.Sale),
		users:          make(map[string]domain.UserAccount),
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// NewSeeded returns a store with a small pizzeria catalogue and the dev
// user accounts, for running the server without a database.
func NewSeeded() *Store {
	s := New()

	for _, name := range []string{"Efectivo", "Tarjeta", "Transferencia"} {
		s.nextPaymentMethodID++
		s.paymentMethods[s.nextPaymentMethodID] = domain.PaymentMethod{
			ID: s.nextPaymentMethodID, Name: name, Active: true, CreatedAt: s.now(),
		}
	}

	ingredientIDs := make(map[string]int64)
	for _, seed := range []struct {
		name string
		cost string
	}{
		{"Masa", "1.50"},
		{"Salsa de tomate", "0.80"},
		{"Mozzarella", "2.50"},
		{"Pepperoni", "3.00"},
		{"Jamón", "2.80"},
		{"Piña", "1.00"},
		{"Champiñones", "1.20"},
	} {
		s.nextIngredientID++
		s.ingredients[s.nextIngredientID] = domain.Ingredient{
			ID: s.nextIngredientID, Name: seed.name, UnitCost: decimal.RequireFromString(seed.cost), CreatedAt: s.now(),
		}
		ingredientIDs[seed.name] = s.nextIngredientID
	}

	for _, seed := range []struct {
		name        string
		description string
		price       string
		composition map[string]string
	}{
		{"Pizza Margarita", "Tomate, mozzarella y albahaca", "12.00", map[string]string{"Masa": "1", "Salsa de tomate": "1", "Mozzarella": "1.5"}},
		{"Pizza Pepperoni", "Clásica con pepperoni", "15.00", map[string]string{"Masa": "1", "Salsa de tomate": "1", "Mozzarella": "1.5", "Pepperoni": "1"}},
		{"Pizza Hawaiana", "Jamón y piña", "14.00", map[string]string{"Masa": "1", "Salsa de tomate": "1", "Mozzarella": "1", "Jamón": "1", "Piña": "1"}},
	} {
		s.nextProductID++
		id := s.nextProductID
		s.products[id] = domain.Product{
			ID: id, Name: seed.name, Description: seed.description, BasePrice: decimal.RequireFromString(seed.price), Active: true, CreatedAt: s.now(),
		}
		for ingredient, qty := range seed.composition {
			s.links[id] = append(s.links[id], domain.ProductIngredient{
				ProductID: id, IngredientID: ingredientIDs[ingredient], Quantity: decimal.RequireFromString(qty),
			})
		}
		sortLinks(s.links[id])
	}

	s.users = seedUsers()
	return s
}

// WithClock replaces the clock used to stamp records created without a timestamp.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

// seedUsers builds the dev/demo accounts. Passwords come from
// SEED_ADMIN_PASSWORD and SEED_CASHIER_PASSWORD, falling back to defaults
// with a warning.
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	cashierPwd := envOr("SEED_CASHIER_PASSWORD", "cashier123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_CASHIER_PASSWORD") == "" {
		logrus.Warn("memory store: using default dev credentials, set SEED_ADMIN_PASSWORD and SEED_CASHIER_PASSWORD to override")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"admin", adminPwd, "admin"},
		{"cajero", cashierPwd, "cashier"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			logrus.WithError(err).WithField("username", u.username).Fatal("memory store: failed to hash seed password")
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (s *Store) stamp(t time.Time) time.Time {
	if t.IsZero() {
		return s.now()
	}
	return t
}

func sortLinks(links []domain.ProductIngredient) {
	slices.SortFunc(links, func(a, b domain.ProductIngredient) int {
		return cmp.Compare(a.IngredientID, b.IngredientID)
	})
}

func page[T any](items []T, offset int, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

func containsFold(haystack string, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func intPtr(v int) *int {
	return &v
}
