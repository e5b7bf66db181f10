package memory

import (
	"cmp"
	"context"
	"slices"

	"pizzapos/internal/domain"
	"pizzapos/internal/store"
)

func (s *Store) CreateCustomer(_ context.Context, customer domain.Customer) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phoneTaken(customer.Phone, 0) {
		return nil, store.ErrDuplicate
	}
	created := s.insertCustomer(customer)
	return &created, nil
}

func (s *Store) CreateCustomers(_ context.Context, customers []domain.Customer) ([]domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(customers))
	for _, c := range customers {
		if _, dup := seen[c.Phone]; dup || s.phoneTaken(c.Phone, 0) {
			return nil, store.ErrDuplicate
		}
		seen[c.Phone] = struct{}{}
	}

	created := make([]domain.Customer, 0, len(customers))
	for _, c := range customers {
		created = append(created, s.insertCustomer(c))
	}
	return created, nil
}

func (s *Store) insertCustomer(customer domain.Customer) domain.Customer {
	s.nextCustomerID++
	customer.ID = s.nextCustomerID
	customer.CreatedAt = s.stamp(customer.CreatedAt)
	customer.SaleCount = nil
	s.customers[customer.ID] = customer
	return customer
}

func (s *Store) phoneTaken(phone string, exceptID int64) bool {
	for _, c := range s.customers {
		if c.Phone == phone && c.ID != exceptID {
			return true
		}
	}
	return false
}

func (s *Store) GetCustomer(_ context.Context, id int64) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customer, ok := s.customers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	customer.SaleCount = intPtr(s.customerSaleCount(id))
	return &customer, nil
}

func (s *Store) FindCustomersByPhone(_ context.Context, phones []string) ([]domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]struct{}, len(phones))
	for _, p := range phones {
		wanted[p] = struct{}{}
	}
	found := make([]domain.Customer, 0)
	for _, c := range s.customers {
		if _, ok := wanted[c.Phone]; ok {
			found = append(found, c)
		}
	}
	slices.SortFunc(found, func(a, b domain.Customer) int { return cmp.Compare(a.ID, b.ID) })
	return found, nil
}

func (s *Store) ListCustomers(_ context.Context, q store.CustomerQuery) ([]domain.Customer, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]domain.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		if q.Search != "" && !containsFold(c.Name, q.Search) && !containsFold(c.Phone, q.Search) && !containsFold(c.Address, q.Search) {
			continue
		}
		c.SaleCount = intPtr(s.customerSaleCount(c.ID))
		matched = append(matched, c)
	}
	slices.SortFunc(matched, func(a, b domain.Customer) int { return cmp.Compare(b.ID, a.ID) })
	return page(matched, q.Offset, q.Limit), len(matched), nil
}

func (s *Store) UpdateCustomer(_ context.Context, customer domain.Customer) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.customers[customer.ID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if s.phoneTaken(customer.Phone, customer.ID) {
		return nil, store.ErrDuplicate
	}
	customer.CreatedAt = existing.CreatedAt
	customer.SaleCount = nil
	s.customers[customer.ID] = customer
	return &customer, nil
}

func (s *Store) DeleteCustomer(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[id]; !ok {
		return store.ErrNotFound
	}
	if s.customerSaleCount(id) > 0 {
		return store.ErrReferenced
	}
	delete(s.customers, id)
	return nil
}

func (s *Store) CountCustomers(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.customers), nil
}

func (s *Store) CountCustomerSales(_ context.Context, id int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.customerSaleCount(id), nil
}

func (s *Store) customerSaleCount(id int64) int {
	n := 0
	for _, sale := range s.sales {
		if sale.CustomerID == id {
			n++
		}
	}
	return n
}
