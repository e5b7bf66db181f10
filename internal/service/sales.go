package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"pizzapos/internal/apperr"
	"pizzapos/internal/domain"
	"pizzapos/internal/store"
)

// SaleQuery holds the raw listing filters as received from a client.
type SaleQuery struct {
	From            string
	To              string
	CustomerID      int64
	PaymentMethodID int64
	Status          string
	Page            Page
}

func (s *Service) CreateSale(ctx context.Context, req domain.SaleCreateRequest) (*domain.Sale, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	sale, err := s.createSale(ctx, req)
	if err != nil {
		return nil, err
	}
	s.invalidateDashboard(ctx)
	return sale, nil
}

func (s *Service) createSale(ctx context.Context, req domain.SaleCreateRequest) (*domain.Sale, error) {
	if _, err := s.repo.GetCustomer(ctx, req.CustomerID); err != nil {
		return nil, notFound(err, "customer")
	}
	if _, err := s.repo.GetPaymentMethod(ctx, req.PaymentMethodID); err != nil {
		return nil, notFound(err, "payment method")
	}

	ids := make([]int64, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if missing := missingIDs(ids, func(id int64) bool { _, ok := products[id]; return ok }); len(missing) > 0 {
		return nil, apperr.NotFound(fmt.Sprintf("products not found: %s", joinIDs(missing)))
	}

	total := decimal.Zero
	items := make([]domain.SaleItem, 0, len(req.Items))
	for _, in := range req.Items {
		subtotal := in.UnitPrice.Mul(decimal.NewFromInt(in.Quantity))
		total = total.Add(subtotal)
		items = append(items, domain.SaleItem{
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			UnitPrice: in.UnitPrice,
			Subtotal:  subtotal,
		})
	}

	created, err := s.repo.CreateSale(ctx, domain.Sale{
		CustomerID:      req.CustomerID,
		PaymentMethodID: req.PaymentMethodID,
		DeliveryAddress: req.DeliveryAddress,
		Notes:           req.Notes,
		Total:           total,
		Status:          domain.SaleStatusCompleted,
		CreatedAt:       s.now().UTC(),
		Items:           items,
	})
	if errors.Is(err, store.ErrReferenced) {
		return nil, apperr.NotFound("a customer, payment method or product referenced by the sale no longer exists")
	}
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	return created, nil
}

// CreateSalesBatch creates each sale independently, in input order. One
// failing sale never stops the others.
func (s *Service) CreateSalesBatch(ctx context.Context, reqs []domain.SaleCreateRequest) (domain.SaleBatchResult, error) {
	if len(reqs) == 0 {
		return domain.SaleBatchResult{}, apperr.Validation("at least one sale is required")
	}

	result := domain.SaleBatchResult{
		Succeeded: make([]domain.Sale, 0, len(reqs)),
		Failed:    make([]domain.SaleBatchFailure, 0),
	}
	for i, req := range reqs {
		sale, err := s.batchSale(ctx, req)
		if err != nil {
			result.Failed = append(result.Failed, domain.SaleBatchFailure{Input: req, Error: batchMessage(err)})
			s.log.WithError(err).WithField("index", i).Debug("batch sale rejected")
			continue
		}
		result.Succeeded = append(result.Succeeded, *sale)
	}
	if len(result.Succeeded) > 0 {
		s.invalidateDashboard(ctx)
	}
	return result, nil
}

func (s *Service) batchSale(ctx context.Context, req domain.SaleCreateRequest) (*domain.Sale, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	return s.createSale(ctx, req)
}

func batchMessage(err error) string {
	if _, known := apperr.Status(err); known {
		return apperr.Message(err)
	}
	return "internal server error"
}

func (s *Service) ListSales(ctx context.Context, q SaleQuery) ([]domain.Sale, domain.Pagination, error) {
	filter, err := s.saleFilter(q)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	page := q.Page.normalized()
	sales, total, err := s.repo.ListSales(ctx, filter, page.Offset(), page.Limit)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return sales, page.Of(total), nil
}

func (s *Service) saleFilter(q SaleQuery) (domain.SaleFilter, error) {
	from, to, err := s.parseRange(q.From, q.To)
	if err != nil {
		return domain.SaleFilter{}, err
	}
	filter := domain.SaleFilter{From: from, To: to, CustomerID: q.CustomerID, PaymentMethodID: q.PaymentMethodID}
	if q.Status != "" {
		status, err := domain.ParseSaleStatus(q.Status)
		if err != nil {
			return domain.SaleFilter{}, apperr.Validation(fmt.Sprintf("estado must be one of %s or %s", domain.SaleStatusCompleted, domain.SaleStatusCancelled))
		}
		filter.Status = status
	}
	return filter, nil
}

// GetSale returns a sale with its products' ingredient composition.
func (s *Service) GetSale(ctx context.Context, id int64) (*domain.Sale, error) {
	sale, err := s.repo.GetSale(ctx, id, true)
	if err != nil {
		return nil, notFound(err, "sale")
	}
	return sale, nil
}

func (s *Service) VoidSale(ctx context.Context, id int64) (*domain.Sale, error) {
	sale, err := s.repo.VoidSale(ctx, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, apperr.NotFound("sale not found")
	case errors.Is(err, store.ErrAlreadyVoided):
		return nil, apperr.BusinessRule("sale is already voided")
	case err != nil:
		return nil, apperr.Wrap(err)
	}

	entry := s.log.WithField("sale_id", id)
	if actor, ok := ActorFromContext(ctx); ok {
		entry = entry.WithField("actor", actor.Username)
	}
	entry.Info("sale voided")

	s.invalidateDashboard(ctx)
	return sale, nil
}

func (s *Service) invalidateDashboard(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.WithError(err).Warn("dashboard cache invalidation failed")
	}
}
