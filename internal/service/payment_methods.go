package service

import (
	"context"
	"errors"
	"strings"

	"pizzapos/internal/apperr"
	"pizzapos/internal/domain"
	"pizzapos/internal/store"
)

func (s *Service) CreatePaymentMethod(ctx context.Context, req domain.PaymentMethodCreateRequest) (*domain.PaymentMethod, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.check(req); err != nil {
		return nil, err
	}
	if err := s.paymentMethodNameFree(ctx, req.Name, 0); err != nil {
		return nil, err
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	created, err := s.repo.CreatePaymentMethod(ctx, domain.PaymentMethod{Name: req.Name, Active: active, CreatedAt: s.now().UTC()})
	if err != nil {
		return nil, storeErr(err, "payment method")
	}
	return created, nil
}

func (s *Service) paymentMethodNameFree(ctx context.Context, name string, exceptID int64) error {
	existing, err := s.repo.FindPaymentMethodByName(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != exceptID {
		return apperr.BusinessRulef("a payment method named %q already exists", name)
	}
	return nil
}

func (s *Service) ListPaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error) {
	return s.repo.ListPaymentMethods(ctx)
}

func (s *Service) GetPaymentMethod(ctx context.Context, id int64) (*domain.PaymentMethod, error) {
	method, err := s.repo.GetPaymentMethod(ctx, id)
	if err != nil {
		return nil, notFound(err, "payment method")
	}
	return method, nil
}

func (s *Service) UpdatePaymentMethod(ctx context.Context, id int64, req domain.PaymentMethodUpdateRequest) (*domain.PaymentMethod, error) {
	trimPtr(req.Name)
	if err := s.check(req); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetPaymentMethod(ctx, id)
	if err != nil {
		return nil, notFound(err, "payment method")
	}

	updated := *existing
	if req.Name != nil && *req.Name != existing.Name {
		if err := s.paymentMethodNameFree(ctx, *req.Name, id); err != nil {
			return nil, err
		}
		updated.Name = *req.Name
	}
	if req.Active != nil {
		updated.Active = *req.Active
	}

	saved, err := s.repo.UpdatePaymentMethod(ctx, updated)
	if err != nil {
		return nil, storeErr(err, "payment method")
	}
	s.invalidateDashboard(ctx)
	return saved, nil
}

func (s *Service) DeletePaymentMethod(ctx context.Context, id int64) error {
	if _, err := s.repo.GetPaymentMethod(ctx, id); err != nil {
		return notFound(err, "payment method")
	}
	sales, err := s.repo.CountPaymentMethodSales(ctx, id)
	if err != nil {
		return err
	}
	if sales > 0 {
		return apperr.BusinessRulef("cannot delete a payment method used by %d sale(s)", sales)
	}
	if err := s.repo.DeletePaymentMethod(ctx, id); err != nil {
		return storeErr(err, "payment method")
	}
	s.invalidateDashboard(ctx)
	return nil
}
