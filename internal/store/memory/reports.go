package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/shopspring/decimal"

	"pizzapos/internal/domain"
)

func (s *Store) SalesTotals(_ context.Context, filter domain.SaleFilter) (domain.SalesTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := domain.SalesTotals{Total: decimal.Zero}
	for _, sale := range s.sales {
		if !filter.Matches(sale) {
			continue
		}
		totals.Total = totals.Total.Add(sale.Total)
		totals.Count++
	}
	return totals, nil
}

func (s *Store) SalesByTimestamp(_ context.Context, filter domain.SaleFilter, limit int) ([]domain.SalesBucket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byInstant := make(map[int64]*domain.SalesBucket)
	for _, sale := range s.sales {
		if !filter.Matches(sale) {
			continue
		}
		key := sale.CreatedAt.UnixNano()
		bucket, ok := byInstant[key]
		if !ok {
			bucket = &domain.SalesBucket{Date: sale.CreatedAt, Total: decimal.Zero}
			byInstant[key] = bucket
		}
		bucket.Total = bucket.Total.Add(sale.Total)
		bucket.Count++
	}

	buckets := make([]domain.SalesBucket, 0, len(byInstant))
	for _, b := range byInstant {
		buckets = append(buckets, *b)
	}
	slices.SortFunc(buckets, func(a, b domain.SalesBucket) int { return b.Date.Compare(a.Date) })
	return page(buckets, 0, limit), nil
}

func (s *Store) TopProducts(_ context.Context, filter domain.SaleFilter, limit int) ([]domain.ProductSales, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byProduct := make(map[int64]*domain.ProductSales)
	for _, sale := range s.sales {
		if !filter.Matches(sale) {
			continue
		}
		for _, item := range sale.Items {
			row, ok := byProduct[item.ProductID]
			if !ok {
				row = &domain.ProductSales{Product: domain.ProductSummary{ID: item.ProductID}, Revenue: decimal.Zero}
				byProduct[item.ProductID] = row
			}
			row.Quantity += item.Quantity
			row.Revenue = row.Revenue.Add(item.Subtotal)
		}
	}

	rows := make([]domain.ProductSales, 0, len(byProduct))
	for _, row := range byProduct {
		if p, ok := s.products[row.Product.ID]; ok {
			row.Product = domain.ProductSummary{ID: p.ID, Name: p.Name, BasePrice: p.BasePrice}
		}
		rows = append(rows, *row)
	}
	slices.SortFunc(rows, func(a, b domain.ProductSales) int {
		return cmp.Or(cmp.Compare(b.Quantity, a.Quantity), cmp.Compare(a.Product.ID, b.Product.ID))
	})
	return page(rows, 0, limit), nil
}

func (s *Store) TopCustomers(_ context.Context, filter domain.SaleFilter, limit int) ([]domain.CustomerSales, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byCustomer := make(map[int64]*domain.CustomerSales)
	for _, sale := range s.sales {
		if !filter.Matches(sale) {
			continue
		}
		row, ok := byCustomer[sale.CustomerID]
		if !ok {
			row = &domain.CustomerSales{Customer: domain.CustomerSummary{ID: sale.CustomerID}, Spent: decimal.Zero}
			byCustomer[sale.CustomerID] = row
		}
		row.Purchases++
		row.Spent = row.Spent.Add(sale.Total)
	}

	rows := make([]domain.CustomerSales, 0, len(byCustomer))
	for _, row := range byCustomer {
		if c, ok := s.customers[row.Customer.ID]; ok {
			row.Customer = domain.CustomerSummary{ID: c.ID, Name: c.Name, Phone: c.Phone}
		}
		rows = append(rows, *row)
	}
	slices.SortFunc(rows, func(a, b domain.CustomerSales) int {
		return cmp.Or(cmp.Compare(b.Purchases, a.Purchases), cmp.Compare(a.Customer.ID, b.Customer.ID))
	})
	return page(rows, 0, limit), nil
}

func (s *Store) SalesByPaymentMethod(_ context.Context, filter domain.SaleFilter) ([]domain.PaymentMethodSales, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byMethod := make(map[int64]*domain.PaymentMethodSales)
	for _, sale := range s.sales {
		if !filter.Matches(sale) {
			continue
		}
		row, ok := byMethod[sale.PaymentMethodID]
		if !ok {
			row = &domain.PaymentMethodSales{PaymentMethod: domain.PaymentMethodSummary{ID: sale.PaymentMethodID}, Revenue: decimal.Zero}
			byMethod[sale.PaymentMethodID] = row
		}
		row.Count++
		row.Revenue = row.Revenue.Add(sale.Total)
	}

	rows := make([]domain.PaymentMethodSales, 0, len(byMethod))
	for _, row := range byMethod {
		if m, ok := s.paymentMethods[row.PaymentMethod.ID]; ok {
			row.PaymentMethod = domain.PaymentMethodSummary{ID: m.ID, Name: m.Name}
		}
		rows = append(rows, *row)
	}
	slices.SortFunc(rows, func(a, b domain.PaymentMethodSales) int {
		return cmp.Or(b.Revenue.Cmp(a.Revenue), cmp.Compare(a.PaymentMethod.ID, b.PaymentMethod.ID))
	})
	return rows, nil
}
