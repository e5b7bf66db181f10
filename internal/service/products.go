package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pizzapos/internal/apperr"
	"pizzapos/internal/domain"
	"pizzapos/internal/store"
)

var hundred = decimal.NewFromInt(100)

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (*domain.Product, error) {
	req = trimProduct(req)
	if err := s.check(req); err != nil {
		return nil, err
	}
	links, err := s.compositionLinks(ctx, req.Ingredients)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.CreateProduct(ctx, newProduct(req, links, s.now().UTC()))
	if err != nil {
		return nil, storeErr(err, "product")
	}
	return created, nil
}

// CreateProducts writes every product and its composition in one transaction.
func (s *Service) CreateProducts(ctx context.Context, reqs []domain.ProductCreateRequest) ([]domain.Product, error) {
	for i := range reqs {
		reqs[i] = trimProduct(reqs[i])
	}
	if err := checkEach(s, reqs, "product"); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	products := make([]domain.Product, 0, len(reqs))
	for i, req := range reqs {
		links, err := s.compositionLinks(ctx, req.Ingredients)
		if err != nil {
			return nil, apperr.BusinessRulef("product %d (%s): %s", i+1, req.Name, apperr.Message(err))
		}
		products = append(products, newProduct(req, links, now))
	}
	created, err := s.repo.CreateProducts(ctx, products)
	if err != nil {
		return nil, storeErr(err, "product")
	}
	return created, nil
}

func newProduct(req domain.ProductCreateRequest, links []domain.ProductIngredient, now time.Time) domain.Product {
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return domain.Product{
		Name:        req.Name,
		Description: req.Description,
		BasePrice:   req.BasePrice,
		Active:      active,
		CreatedAt:   now,
		Ingredients: links,
	}
}

// compositionLinks turns composition input into links after checking that
// every ingredient exists and none repeats.
func (s *Service) compositionLinks(ctx context.Context, inputs []domain.ProductIngredientInput) ([]domain.ProductIngredient, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	ids := make([]int64, 0, len(inputs))
	seen := make(map[int64]struct{}, len(inputs))
	for _, in := range inputs {
		if _, dup := seen[in.IngredientID]; dup {
			return nil, apperr.BusinessRulef("ingredient %d is listed more than once", in.IngredientID)
		}
		seen[in.IngredientID] = struct{}{}
		ids = append(ids, in.IngredientID)
	}

	found, err := s.repo.GetIngredientsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if missing := missingIDs(ids, func(id int64) bool { _, ok := found[id]; return ok }); len(missing) > 0 {
		return nil, apperr.BusinessRulef("ingredients not found: %s", joinIDs(missing))
	}

	links := make([]domain.ProductIngredient, 0, len(inputs))
	for _, in := range inputs {
		links = append(links, domain.ProductIngredient{IngredientID: in.IngredientID, Quantity: in.Quantity})
	}
	return links, nil
}

func (s *Service) ListProducts(ctx context.Context, active *bool, page Page) ([]domain.Product, domain.Pagination, error) {
	page = page.normalized()
	products, total, err := s.repo.ListProducts(ctx, store.ProductQuery{Active: active, Offset: page.Offset(), Limit: page.Limit})
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return products, page.Of(total), nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound(err, "product")
	}
	return product, nil
}

// EstimateProductCost prices a product's current composition against
// current ingredient costs.
func (s *Service) EstimateProductCost(ctx context.Context, id int64) (*domain.ProductCostEstimate, error) {
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound(err, "product")
	}

	estimate := domain.ProductCostEstimate{
		Product:     domain.ProductSummary{ID: product.ID, Name: product.Name, BasePrice: product.BasePrice},
		Ingredients: make([]domain.IngredientCost, 0, len(product.Ingredients)),
	}
	cost := decimal.Zero
	for _, link := range product.Ingredients {
		line := domain.IngredientCost{Quantity: link.Quantity, UnitCost: decimal.Zero}
		if link.Ingredient != nil {
			line.Name = link.Ingredient.Name
			line.UnitCost = link.Ingredient.UnitCost
		}
		line.TotalCost = link.Quantity.Mul(line.UnitCost)
		cost = cost.Add(line.TotalCost)
		estimate.Ingredients = append(estimate.Ingredients, line)
	}

	estimate.EstimatedCost = cost
	estimate.Margin = product.BasePrice.Sub(cost)
	estimate.MarginPercent = decimal.Zero
	if product.BasePrice.IsPositive() {
		estimate.MarginPercent = estimate.Margin.Div(product.BasePrice).Mul(hundred).Round(2)
	}
	return &estimate, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, req domain.ProductUpdateRequest) (*domain.Product, error) {
	trimPtr(req.Name)
	trimPtr(req.Description)
	if err := s.check(req); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound(err, "product")
	}

	updated := *existing
	if req.Name != nil {
		updated.Name = *req.Name
	}
	if req.Description != nil {
		updated.Description = *req.Description
	}
	if req.BasePrice != nil {
		updated.BasePrice = *req.BasePrice
	}
	if req.Active != nil {
		updated.Active = *req.Active
	}

	saved, err := s.repo.UpdateProduct(ctx, updated)
	if err != nil {
		return nil, storeErr(err, "product")
	}
	s.invalidateDashboard(ctx)
	return saved, nil
}

// ReplaceProductIngredients swaps the whole composition of a product.
func (s *Service) ReplaceProductIngredients(ctx context.Context, id int64, req domain.ProductIngredientsRequest) (*domain.Product, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetProduct(ctx, id); err != nil {
		return nil, notFound(err, "product")
	}
	links, err := s.compositionLinks(ctx, req.Ingredients)
	if err != nil {
		return nil, err
	}
	product, err := s.repo.ReplaceProductIngredients(ctx, id, links)
	if err != nil {
		return nil, storeErr(err, "product")
	}
	return product, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	if _, err := s.repo.GetProduct(ctx, id); err != nil {
		return notFound(err, "product")
	}
	items, err := s.repo.CountProductSaleItems(ctx, id)
	if err != nil {
		return err
	}
	if items > 0 {
		return apperr.BusinessRulef("cannot delete a product present in %d sale item(s)", items)
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return storeErr(err, "product")
	}
	s.invalidateDashboard(ctx)
	return nil
}

func trimProduct(req domain.ProductCreateRequest) domain.ProductCreateRequest {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	return req
}

func missingIDs(ids []int64, present func(int64) bool) []int64 {
	var missing []int64
	for _, id := range ids {
		if !present(id) && !slices.Contains(missing, id) {
			missing = append(missing, id)
		}
	}
	return missing
}

func joinIDs(ids []int64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprint(id))
	}
	return strings.Join(parts, ", ")
}
