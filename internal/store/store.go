package store

import (
	"context"
	"errors"

	"pizzapos/internal/domain"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicate     = errors.New("duplicate record")
	ErrReferenced    = errors.New("reference constraint violated")
	ErrAlreadyVoided = errors.New("sale already voided")
)

type CustomerQuery struct {
	Search string
	Offset int
	// Limit 0 returns every match.
	Limit int
}

type IngredientOrder string

const (
	IngredientsByName IngredientOrder = "nombre"
	IngredientsByCost IngredientOrder = "costo"
)

type IngredientQuery struct {
	OrderBy IngredientOrder
	Offset  int
	Limit   int
}

type ProductQuery struct {
	Active *bool
	Offset int
	Limit  int
}

type Repository interface {
	CustomerRepository
	CatalogRepository
	SaleRepository
	ReportRepository
	UserRepository
}

type CustomerRepository interface {
	CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error)
	// CreateCustomers inserts every customer or none.
	CreateCustomers(ctx context.Context, customers []domain.Customer) ([]domain.Customer, error)
	GetCustomer(ctx context.Context, id int64) (*domain.Customer, error)
	FindCustomersByPhone(ctx context.Context, phones []string) ([]domain.Customer, error)
	ListCustomers(ctx context.Context, q CustomerQuery) ([]domain.Customer, int, error)
	UpdateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error)
	DeleteCustomer(ctx context.Context, id int64) error
	CountCustomers(ctx context.Context) (int, error)
	CountCustomerSales(ctx context.Context, id int64) (int, error)
}

type CatalogRepository interface {
	CreateIngredient(ctx context.Context, ingredient domain.Ingredient) (*domain.Ingredient, error)
	CreateIngredients(ctx context.Context, ingredients []domain.Ingredient) ([]domain.Ingredient, error)
	GetIngredient(ctx context.Context, id int64) (*domain.Ingredient, error)
	FindIngredientsByName(ctx context.Context, names []string) ([]domain.Ingredient, error)
	GetIngredientsByIDs(ctx context.Context, ids []int64) (map[int64]domain.Ingredient, error)
	ListIngredients(ctx context.Context, q IngredientQuery) ([]domain.Ingredient, int, error)
	UpdateIngredient(ctx context.Context, ingredient domain.Ingredient) (*domain.Ingredient, error)
	DeleteIngredient(ctx context.Context, id int64) error
	CountIngredientUsage(ctx context.Context, id int64) (int, error)

	// CreateProduct writes the product and its composition atomically.
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	CreateProducts(ctx context.Context, products []domain.Product) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	GetProductsByIDs(ctx context.Context, ids []int64) (map[int64]domain.Product, error)
	ListProducts(ctx context.Context, q ProductQuery) ([]domain.Product, int, error)
	UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	ReplaceProductIngredients(ctx context.Context, productID int64, links []domain.ProductIngredient) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	CountProductSaleItems(ctx context.Context, id int64) (int, error)

	CreatePaymentMethod(ctx context.Context, method domain.PaymentMethod) (*domain.PaymentMethod, error)
	GetPaymentMethod(ctx context.Context, id int64) (*domain.PaymentMethod, error)
	FindPaymentMethodByName(ctx context.Context, name string) (*domain.PaymentMethod, error)
	ListPaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error)
	UpdatePaymentMethod(ctx context.Context, method domain.PaymentMethod) (*domain.PaymentMethod, error)
	DeletePaymentMethod(ctx context.Context, id int64) error
	CountPaymentMethodSales(ctx context.Context, id int64) (int, error)
}

type SaleRepository interface {
	// CreateSale writes the sale and its items atomically and returns the stored sale.
	CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error)
	// GetSale expands customer, payment method and products; withComposition adds
	// each product's ingredients.
	GetSale(ctx context.Context, id int64, withComposition bool) (*domain.Sale, error)
	// ListSales returns sales newest first. Limit 0 returns every match.
	ListSales(ctx context.Context, filter domain.SaleFilter, offset int, limit int) ([]domain.Sale, int, error)
	// VoidSale flips a sale to cancelled, failing with ErrAlreadyVoided when it already is.
	VoidSale(ctx context.Context, id int64) (*domain.Sale, error)
}

type ReportRepository interface {
	SalesTotals(ctx context.Context, filter domain.SaleFilter) (domain.SalesTotals, error)
	// SalesByTimestamp groups by exact creation timestamp, newest first.
	SalesByTimestamp(ctx context.Context, filter domain.SaleFilter, limit int) ([]domain.SalesBucket, error)
	TopProducts(ctx context.Context, filter domain.SaleFilter, limit int) ([]domain.ProductSales, error)
	TopCustomers(ctx context.Context, filter domain.SaleFilter, limit int) ([]domain.CustomerSales, error)
	SalesByPaymentMethod(ctx context.Context, filter domain.SaleFilter) ([]domain.PaymentMethodSales, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
