package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Money goes over the wire as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type Customer struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"nombre" db:"nombre"`
	Phone     string    `json:"telefono" db:"telefono"`
	Address   string    `json:"direccion,omitempty" db:"direccion"`
	Notes     string    `json:"notas,omitempty" db:"notas"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	SaleCount *int      `json:"cantidadVentas,omitempty" db:"-"`
}

type CustomerSummary struct {
	ID    int64  `json:"id" db:"id"`
	Name  string `json:"nombre" db:"nombre"`
	Phone string `json:"telefono" db:"telefono"`
}

type CustomerCreateRequest struct {
	Name    string `json:"nombre" validate:"required,min=2"`
	Phone   string `json:"telefono" validate:"required,min=8"`
	Address string `json:"direccion,omitempty"`
	Notes   string `json:"notas,omitempty"`
}

type CustomerUpdateRequest struct {
	Name    *string `json:"nombre,omitempty" validate:"omitempty,min=2"`
	Phone   *string `json:"telefono,omitempty" validate:"omitempty,min=8"`
	Address *string `json:"direccion,omitempty"`
	Notes   *string `json:"notas,omitempty"`
}

type CustomerDetail struct {
	Customer
	RecentSales []Sale `json:"ventas"`
}

type CustomerStats struct {
	TotalSpent    decimal.Decimal `json:"totalGastado"`
	Purchases     int             `json:"cantidadCompras"`
	AverageTicket decimal.Decimal `json:"ticketPromedio"`
}

type CustomerHistory struct {
	Customer Customer      `json:"cliente"`
	Sales    []Sale        `json:"ventas"`
	Stats    CustomerStats `json:"estadisticas"`
}

type Ingredient struct {
	ID           int64            `json:"id" db:"id"`
	Name         string           `json:"nombre" db:"nombre"`
	UnitCost     decimal.Decimal  `json:"costoUnitario" db:"costo_unitario"`
	CreatedAt    time.Time        `json:"createdAt" db:"created_at"`
	ProductCount *int             `json:"cantidadProductos,omitempty" db:"-"`
	Products     []ProductSummary `json:"productos,omitempty" db:"-"`
}

type IngredientCreateRequest struct {
	Name     string          `json:"nombre" validate:"required,min=2"`
	UnitCost decimal.Decimal `json:"costoUnitario" validate:"gt=0"`
}

type IngredientUpdateRequest struct {
	Name     *string          `json:"nombre,omitempty" validate:"omitempty,min=2"`
	UnitCost *decimal.Decimal `json:"costoUnitario,omitempty" validate:"omitempty,gt=0"`
}

type Product struct {
	ID          int64               `json:"id" db:"id"`
	Name        string              `json:"nombre" db:"nombre"`
	Description string              `json:"descripcion,omitempty" db:"descripcion"`
	BasePrice   decimal.Decimal     `json:"precioBase" db:"precio_base"`
	Active      bool                `json:"activo" db:"activo"`
	CreatedAt   time.Time           `json:"createdAt" db:"created_at"`
	Ingredients []ProductIngredient `json:"ingredientes,omitempty" db:"-"`
}

type ProductSummary struct {
	ID        int64           `json:"id" db:"id"`
	Name      string          `json:"nombre" db:"nombre"`
	BasePrice decimal.Decimal `json:"precioBase" db:"precio_base"`
}

// ProductIngredient is the quantity of one ingredient consumed per unit of product.
type ProductIngredient struct {
	ProductID    int64           `json:"productoId" db:"producto_id"`
	IngredientID int64           `json:"ingredienteId" db:"ingrediente_id"`
	Quantity     decimal.Decimal `json:"cantidad" db:"cantidad"`
	Ingredient   *Ingredient     `json:"ingrediente,omitempty" db:"-"`
}

type ProductIngredientInput struct {
	IngredientID int64           `json:"ingredienteId" validate:"required,gt=0"`
	Quantity     decimal.Decimal `json:"cantidad" validate:"gt=0"`
}

type ProductCreateRequest struct {
	Name        string                   `json:"nombre" validate:"required,min=2"`
	Description string                   `json:"descripcion,omitempty"`
	BasePrice   decimal.Decimal          `json:"precioBase" validate:"gt=0"`
	Active      *bool                    `json:"activo,omitempty"`
	Ingredients []ProductIngredientInput `json:"ingredientes,omitempty" validate:"omitempty,dive"`
}

type ProductUpdateRequest struct {
	Name        *string          `json:"nombre,omitempty" validate:"omitempty,min=2"`
	Description *string          `json:"descripcion,omitempty"`
	BasePrice   *decimal.Decimal `json:"precioBase,omitempty" validate:"omitempty,gt=0"`
	Active      *bool            `json:"activo,omitempty"`
}

type ProductIngredientsRequest struct {
	Ingredients []ProductIngredientInput `json:"ingredientes" validate:"required,min=1,dive"`
}

type IngredientCost struct {
	Name      string          `json:"nombre"`
	Quantity  decimal.Decimal `json:"cantidad"`
	UnitCost  decimal.Decimal `json:"costoUnitario"`
	TotalCost decimal.Decimal `json:"costoTotal"`
}

type ProductCostEstimate struct {
	Product       ProductSummary   `json:"producto"`
	EstimatedCost decimal.Decimal  `json:"costoEstimado"`
	Margin        decimal.Decimal  `json:"margenGanancia"`
	MarginPercent decimal.Decimal  `json:"porcentajeMargen"`
	Ingredients   []IngredientCost `json:"ingredientes"`
}

type PaymentMethod struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"nombre" db:"nombre"`
	Active    bool      `json:"activo" db:"activo"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	SaleCount *int      `json:"cantidadVentas,omitempty" db:"-"`
}

type PaymentMethodSummary struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"nombre" db:"nombre"`
}

type PaymentMethodCreateRequest struct {
	Name   string `json:"nombre" validate:"required,min=2"`
	Active *bool  `json:"activo,omitempty"`
}

type PaymentMethodUpdateRequest struct {
	Name   *string `json:"nombre,omitempty" validate:"omitempty,min=2"`
	Active *bool   `json:"activo,omitempty"`
}

type Sale struct {
	ID              int64                 `json:"id" db:"id"`
	CustomerID      int64                 `json:"clienteId" db:"cliente_id"`
	PaymentMethodID int64                 `json:"metodoPagoId" db:"metodo_pago_id"`
	DeliveryAddress string                `json:"direccionEntrega,omitempty" db:"direccion_entrega"`
	Notes           string                `json:"notas,omitempty" db:"notas"`
	Total           decimal.Decimal       `json:"total" db:"total"`
	Status          SaleStatus            `json:"estado" db:"estado"`
	CreatedAt       time.Time             `json:"createdAt" db:"created_at"`
	Customer        *CustomerSummary      `json:"cliente,omitempty" db:"-"`
	PaymentMethod   *PaymentMethodSummary `json:"metodoPago,omitempty" db:"-"`
	Items           []SaleItem            `json:"items" db:"-"`
}

type SaleItem struct {
	ID        int64           `json:"id" db:"id"`
	SaleID    int64           `json:"ventaId" db:"venta_id"`
	ProductID int64           `json:"productoId" db:"producto_id"`
	Quantity  int64           `json:"cantidad" db:"cantidad"`
	UnitPrice decimal.Decimal `json:"precioUnitario" db:"precio_unitario"`
	Subtotal  decimal.Decimal `json:"subtotal" db:"subtotal"`
	Product   *Product        `json:"producto,omitempty" db:"-"`
}

type SaleItemInput struct {
	ProductID int64           `json:"productoId" validate:"required,gt=0"`
	Quantity  int64           `json:"cantidad" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"precioUnitario" validate:"gt=0"`
}

type SaleCreateRequest struct {
	CustomerID      int64           `json:"clienteId" validate:"required,gt=0"`
	PaymentMethodID int64           `json:"metodoPagoId" validate:"required,gt=0"`
	DeliveryAddress string          `json:"direccionEntrega,omitempty"`
	Notes           string          `json:"notas,omitempty"`
	Items           []SaleItemInput `json:"items" validate:"required,min=1,dive"`
}

type SaleBatchFailure struct {
	Input SaleCreateRequest `json:"data"`
	Error string            `json:"error"`
}

type SaleBatchResult struct {
	Succeeded []Sale             `json:"exitosas"`
	Failed    []SaleBatchFailure `json:"fallidas"`
}

type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expiresAt"`
}

type Actor struct {
	Username string
	Role     string
}

type CashierCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CashierUser struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string    `db:"username"`
	Password  string    `db:"password"`
	Role      string    `db:"role"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
}
