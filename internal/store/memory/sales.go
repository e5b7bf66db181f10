package memory

import (
	"cmp"
	"context"
	"slices"

	"pizzapos/internal/domain"
	"pizzapos/internal/store"
)

func (s *Store) CreateSale(_ context.Context, sale domain.Sale) (*domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[sale.CustomerID]; !ok {
		return nil, store.ErrReferenced
	}
	if _, ok := s.paymentMethods[sale.PaymentMethodID]; !ok {
		return nil, store.ErrReferenced
	}
	for _, item := range sale.Items {
		if _, ok := s.products[item.ProductID]; !ok {
			return nil, store.ErrReferenced
		}
	}

	s.nextSaleID++
	sale.ID = s.nextSaleID
	sale.CreatedAt = s.stamp(sale.CreatedAt)
	sale.Customer = nil
	sale.PaymentMethod = nil

	items := make([]domain.SaleItem, 0, len(sale.Items))
	for _, item := range sale.Items {
		s.nextSaleItemID++
		item.ID = s.nextSaleItemID
		item.SaleID = sale.ID
		item.Product = nil
		items = append(items, item)
	}
	sale.Items = items
	s.sales[sale.ID] = sale

	created := s.expandSale(sale, false)
	return &created, nil
}

func (s *Store) GetSale(_ context.Context, id int64, withComposition bool) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, ok := s.sales[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	expanded := s.expandSale(sale, withComposition)
	return &expanded, nil
}

func (s *Store) ListSales(_ context.Context, filter domain.SaleFilter, offset int, limit int) ([]domain.Sale, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.matchingSales(filter)
	paged := page(matched, offset, limit)
	result := make([]domain.Sale, 0, len(paged))
	for _, sale := range paged {
		result = append(result, s.expandSale(sale, false))
	}
	return result, len(matched), nil
}

func (s *Store) VoidSale(_ context.Context, id int64) (*domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sale, ok := s.sales[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if sale.Status.Cancelled() {
		return nil, store.ErrAlreadyVoided
	}
	sale.Status = domain.SaleStatusCancelled
	s.sales[id] = sale

	expanded := s.expandSale(sale, false)
	return &expanded, nil
}

// matchingSales returns the sales selected by filter, newest first.
func (s *Store) matchingSales(filter domain.SaleFilter) []domain.Sale {
	matched := make([]domain.Sale, 0, len(s.sales))
	for _, sale := range s.sales {
		if filter.Matches(sale) {
			matched = append(matched, sale)
		}
	}
	slices.SortFunc(matched, func(a, b domain.Sale) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(b.ID, a.ID))
	})
	return matched
}

func (s *Store) expandSale(sale domain.Sale, withComposition bool) domain.Sale {
	if c, ok := s.customers[sale.CustomerID]; ok {
		sale.Customer = &domain.CustomerSummary{ID: c.ID, Name: c.Name, Phone: c.Phone}
	}
	if m, ok := s.paymentMethods[sale.PaymentMethodID]; ok {
		sale.PaymentMethod = &domain.PaymentMethodSummary{ID: m.ID, Name: m.Name}
	}
	items := make([]domain.SaleItem, 0, len(sale.Items))
	for _, item := range sale.Items {
		if p, ok := s.products[item.ProductID]; ok {
			expanded := s.expandProduct(p, withComposition)
			item.Product = &expanded
		}
		items = append(items, item)
	}
	sale.Items = items
	return sale
}
