package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"pizzapos/internal/apperr"
	"pizzapos/internal/domain"
	"pizzapos/internal/store"
)

const recentCustomerSales = 5

func (s *Service) CreateCustomer(ctx context.Context, req domain.CustomerCreateRequest) (*domain.Customer, error) {
	req = trimCustomer(req)
	if err := s.check(req); err != nil {
		return nil, err
	}
	taken, err := s.repo.FindCustomersByPhone(ctx, []string{req.Phone})
	if err != nil {
		return nil, err
	}
	if len(taken) > 0 {
		return nil, apperr.BusinessRule("a customer with that phone already exists")
	}

	created, err := s.repo.CreateCustomer(ctx, domain.Customer{
		Name:      req.Name,
		Phone:     req.Phone,
		Address:   req.Address,
		Notes:     req.Notes,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, storeErr(err, "customer")
	}
	s.invalidateDashboard(ctx)
	return created, nil
}

// CreateCustomers inserts the whole payload or nothing. Phones are checked
// against each other and against existing customers before writing.
func (s *Service) CreateCustomers(ctx context.Context, reqs []domain.CustomerCreateRequest) ([]domain.Customer, error) {
	for i := range reqs {
		reqs[i] = trimCustomer(reqs[i])
	}
	if err := checkEach(s, reqs, "customer"); err != nil {
		return nil, err
	}

	phones := make([]string, 0, len(reqs))
	seen := make(map[string]struct{}, len(reqs))
	for _, req := range reqs {
		if _, dup := seen[req.Phone]; dup {
			return nil, apperr.BusinessRulef("phone %s appears more than once in the request", req.Phone)
		}
		seen[req.Phone] = struct{}{}
		phones = append(phones, req.Phone)
	}

	taken, err := s.repo.FindCustomersByPhone(ctx, phones)
	if err != nil {
		return nil, err
	}
	if len(taken) > 0 {
		clashing := make([]string, 0, len(taken))
		for _, c := range taken {
			clashing = append(clashing, c.Phone)
		}
		return nil, apperr.BusinessRulef("phones already registered: %s", strings.Join(clashing, ", "))
	}

	now := s.now().UTC()
	customers := make([]domain.Customer, 0, len(reqs))
	for _, req := range reqs {
		customers = append(customers, domain.Customer{
			Name: req.Name, Phone: req.Phone, Address: req.Address, Notes: req.Notes, CreatedAt: now,
		})
	}
	created, err := s.repo.CreateCustomers(ctx, customers)
	if err != nil {
		return nil, storeErr(err, "customer")
	}
	s.invalidateDashboard(ctx)
	return created, nil
}

func (s *Service) ListCustomers(ctx context.Context, search string, page Page) ([]domain.Customer, domain.Pagination, error) {
	page = page.normalized()
	customers, total, err := s.repo.ListCustomers(ctx, store.CustomerQuery{
		Search: strings.TrimSpace(search),
		Offset: page.Offset(),
		Limit:  page.Limit,
	})
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return customers, page.Of(total), nil
}

// SearchCustomers returns every customer whose name, phone or address contains q.
func (s *Service) SearchCustomers(ctx context.Context, q string) ([]domain.Customer, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperr.Validation("q is required")
	}
	customers, _, err := s.repo.ListCustomers(ctx, store.CustomerQuery{Search: q})
	return customers, err
}

func (s *Service) GetCustomer(ctx context.Context, id int64) (*domain.CustomerDetail, error) {
	customer, err := s.repo.GetCustomer(ctx, id)
	if err != nil {
		return nil, notFound(err, "customer")
	}
	recent, _, err := s.repo.ListSales(ctx, domain.SaleFilter{CustomerID: id}, 0, recentCustomerSales)
	if err != nil {
		return nil, err
	}
	return &domain.CustomerDetail{Customer: *customer, RecentSales: recent}, nil
}

// CustomerHistory lists every sale of a customer. Stats count completed sales only.
func (s *Service) CustomerHistory(ctx context.Context, id int64) (*domain.CustomerHistory, error) {
	customer, err := s.repo.GetCustomer(ctx, id)
	if err != nil {
		return nil, notFound(err, "customer")
	}
	sales, _, err := s.repo.ListSales(ctx, domain.SaleFilter{CustomerID: id}, 0, 0)
	if err != nil {
		return nil, err
	}

	stats := domain.CustomerStats{TotalSpent: decimal.Zero, AverageTicket: decimal.Zero}
	for _, sale := range sales {
		if !sale.Status.Completed() {
			continue
		}
		stats.TotalSpent = stats.TotalSpent.Add(sale.Total)
		stats.Purchases++
	}
	stats.AverageTicket = average(stats.TotalSpent, stats.Purchases)

	return &domain.CustomerHistory{Customer: *customer, Sales: sales, Stats: stats}, nil
}

func (s *Service) UpdateCustomer(ctx context.Context, id int64, req domain.CustomerUpdateRequest) (*domain.Customer, error) {
	trimPtr(req.Name)
	trimPtr(req.Phone)
	if err := s.check(req); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetCustomer(ctx, id)
	if err != nil {
		return nil, notFound(err, "customer")
	}

	updated := *existing
	if req.Name != nil {
		updated.Name = *req.Name
	}
	if req.Phone != nil && *req.Phone != existing.Phone {
		taken, err := s.repo.FindCustomersByPhone(ctx, []string{*req.Phone})
		if err != nil {
			return nil, err
		}
		for _, c := range taken {
			if c.ID != id {
				return nil, apperr.BusinessRule("another customer already uses that phone")
			}
		}
		updated.Phone = *req.Phone
	}
	if req.Address != nil {
		updated.Address = strings.TrimSpace(*req.Address)
	}
	if req.Notes != nil {
		updated.Notes = strings.TrimSpace(*req.Notes)
	}

	saved, err := s.repo.UpdateCustomer(ctx, updated)
	if err != nil {
		return nil, storeErr(err, "customer")
	}
	s.invalidateDashboard(ctx)
	return saved, nil
}

func (s *Service) DeleteCustomer(ctx context.Context, id int64) error {
	if _, err := s.repo.GetCustomer(ctx, id); err != nil {
		return notFound(err, "customer")
	}
	sales, err := s.repo.CountCustomerSales(ctx, id)
	if err != nil {
		return err
	}
	if sales > 0 {
		return apperr.BusinessRulef("cannot delete a customer with %d registered sale(s)", sales)
	}
	if err := s.repo.DeleteCustomer(ctx, id); err != nil {
		return storeErr(err, "customer")
	}
	s.invalidateDashboard(ctx)
	return nil
}

func trimCustomer(req domain.CustomerCreateRequest) domain.CustomerCreateRequest {
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Address = strings.TrimSpace(req.Address)
	req.Notes = strings.TrimSpace(req.Notes)
	return req
}

func trimPtr(v *string) {
	if v != nil {
		*v = strings.TrimSpace(*v)
	}
}

func average(total decimal.Decimal, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(count))).Round(2)
}
