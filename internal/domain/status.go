package domain

import (
	"fmt"
	"strings"
	"time"
)

type SaleStatus string

const (
	SaleStatusCompleted SaleStatus = "completada"
	SaleStatusCancelled SaleStatus = "cancelado"
)

// ParseSaleStatus normalises the spellings historically written for a sale
// state into one canonical value.
func ParseSaleStatus(raw string) (SaleStatus, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "completada", "completado", "completed":
		return SaleStatusCompleted, nil
	case "cancelado", "cancelada", "cancelled", "canceled", "anulada", "anulado":
		return SaleStatusCancelled, nil
	}
	return "", fmt.Errorf("unknown sale status %q", raw)
}

func (s SaleStatus) Completed() bool {
	return s == SaleStatusCompleted
}

func (s SaleStatus) Cancelled() bool {
	return s == SaleStatusCancelled
}

// SaleFilter selects sales for listing and reporting. Zero fields do not filter.
// From and To are inclusive, Before is exclusive.
type SaleFilter struct {
	From            *time.Time
	To              *time.Time
	Before          *time.Time
	CustomerID      int64
	PaymentMethodID int64
	Status          SaleStatus
}

func (f SaleFilter) Matches(sale Sale) bool {
	if f.From != nil && sale.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && sale.CreatedAt.After(*f.To) {
		return false
	}
	if f.Before != nil && !sale.CreatedAt.Before(*f.Before) {
		return false
	}
	if f.CustomerID > 0 && sale.CustomerID != f.CustomerID {
		return false
	}
	if f.PaymentMethodID > 0 && sale.PaymentMethodID != f.PaymentMethodID {
		return false
	}
	if f.Status != "" && sale.Status != f.Status {
		return false
	}
	return true
}

// Completed returns a copy restricted to completed sales.
func (f SaleFilter) Completed() SaleFilter {
	f.Status = SaleStatusCompleted
	return f
}

// Between returns a completed-sales filter for the half-open window [from, before).
func Between(from time.Time, before time.Time) SaleFilter {
	return SaleFilter{From: &from, Before: &before, Status: SaleStatusCompleted}
}
