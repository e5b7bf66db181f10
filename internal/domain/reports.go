package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type SalesTotals struct {
	Total decimal.Decimal
	Count int
}

type SalesBucket struct {
	Date  time.Time       `json:"fecha"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"cantidad"`
}

type ProductSales struct {
	Product  ProductSummary  `json:"producto"`
	Quantity int64           `json:"cantidadVendida"`
	Revenue  decimal.Decimal `json:"totalGenerado"`
}

type CustomerSales struct {
	Customer  CustomerSummary `json:"cliente"`
	Purchases int             `json:"cantidadCompras"`
	Spent     decimal.Decimal `json:"totalGastado"`
}

type PaymentMethodSales struct {
	PaymentMethod PaymentMethodSummary `json:"metodoPago"`
	Count         int                  `json:"cantidadVentas"`
	Revenue       decimal.Decimal      `json:"totalGenerado"`
}

type DashboardSummary struct {
	MonthTotal         decimal.Decimal `json:"ventasMes"`
	MonthCount         int             `json:"cantidadVentasMes"`
	PreviousMonthTotal decimal.Decimal `json:"ventasMesAnterior"`
	MonthDeltaPercent  float64         `json:"diferenciaVsMesAnterior"`
	TodayTotal         decimal.Decimal `json:"ventasHoy"`
	TodayCount         int             `json:"cantidadVentasHoy"`
	MonthAgoTotal      decimal.Decimal `json:"ventasHoyHaceUnMes"`
	DayDeltaPercent    float64         `json:"diferenciaVsHaceUnMes"`
	TotalCustomers     int             `json:"totalClientes"`
	TotalSales         decimal.Decimal `json:"totalVentas"`
	SalesCount         int             `json:"cantidadVentas"`
	AverageSale        decimal.Decimal `json:"promedioVenta"`
}

type DashboardStats struct {
	Summary         DashboardSummary     `json:"resumen"`
	SalesByDay      []SalesBucket        `json:"ventasPorDia"`
	TopProducts     []ProductSales       `json:"productosMasVendidos"`
	TopCustomers    []CustomerSales      `json:"clientesMasFrecuentes"`
	ByPaymentMethod []PaymentMethodSales `json:"ventasPorMetodoPago"`
}

type TodaySales struct {
	Date  time.Time       `json:"fecha"`
	Count int             `json:"cantidadVentas"`
	Total decimal.Decimal `json:"totalDelDia"`
	Sales []Sale          `json:"ventas"`
}

type MonthlySales struct {
	Month     string          `json:"mes"`
	MonthLong string          `json:"mesCompleto"`
	Count     int             `json:"cantidadVentas"`
	Total     decimal.Decimal `json:"montoTotal"`
}
