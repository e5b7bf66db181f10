package service

import (
	"context"
	"strings"

	"pizzapos/internal/apperr"
	"pizzapos/internal/domain"
	"pizzapos/internal/store"
)

func (s *Service) CreateIngredient(ctx context.Context, req domain.IngredientCreateRequest) (*domain.Ingredient, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.check(req); err != nil {
		return nil, err
	}
	if err := s.ingredientNamesFree(ctx, []string{req.Name}, 0); err != nil {
		return nil, err
	}
	created, err := s.repo.CreateIngredient(ctx, domain.Ingredient{Name: req.Name, UnitCost: req.UnitCost, CreatedAt: s.now().UTC()})
	if err != nil {
		return nil, storeErr(err, "ingredient")
	}
	return created, nil
}

func (s *Service) CreateIngredients(ctx context.Context, reqs []domain.IngredientCreateRequest) ([]domain.Ingredient, error) {
	for i := range reqs {
		reqs[i].Name = strings.TrimSpace(reqs[i].Name)
	}
	if err := checkEach(s, reqs, "ingredient"); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(reqs))
	seen := make(map[string]struct{}, len(reqs))
	for _, req := range reqs {
		if _, dup := seen[req.Name]; dup {
			return nil, apperr.BusinessRulef("ingredient %q appears more than once in the request", req.Name)
		}
		seen[req.Name] = struct{}{}
		names = append(names, req.Name)
	}
	if err := s.ingredientNamesFree(ctx, names, 0); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	ingredients := make([]domain.Ingredient, 0, len(reqs))
	for _, req := range reqs {
		ingredients = append(ingredients, domain.Ingredient{Name: req.Name, UnitCost: req.UnitCost, CreatedAt: now})
	}
	created, err := s.repo.CreateIngredients(ctx, ingredients)
	if err != nil {
		return nil, storeErr(err, "ingredient")
	}
	return created, nil
}

// ingredientNamesFree fails when any of names belongs to an ingredient other than exceptID.
func (s *Service) ingredientNamesFree(ctx context.Context, names []string, exceptID int64) error {
	taken, err := s.repo.FindIngredientsByName(ctx, names)
	if err != nil {
		return err
	}
	clashing := make([]string, 0, len(taken))
	for _, in := range taken {
		if in.ID != exceptID {
			clashing = append(clashing, in.Name)
		}
	}
	if len(clashing) == 1 {
		return apperr.BusinessRulef("an ingredient named %q already exists", clashing[0])
	}
	if len(clashing) > 1 {
		return apperr.BusinessRulef("ingredients already exist: %s", strings.Join(clashing, ", "))
	}
	return nil
}

// ListIngredients pages ingredients by name, or by unit cost (highest first)
// when orderBy is "costo".
func (s *Service) ListIngredients(ctx context.Context, orderBy string, page Page) ([]domain.Ingredient, domain.Pagination, error) {
	page = page.normalized()
	order := store.IngredientsByName
	if store.IngredientOrder(strings.TrimSpace(orderBy)) == store.IngredientsByCost {
		order = store.IngredientsByCost
	}
	ingredients, total, err := s.repo.ListIngredients(ctx, store.IngredientQuery{
		OrderBy: order,
		Offset:  page.Offset(),
		Limit:   page.Limit,
	})
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return ingredients, page.Of(total), nil
}

func (s *Service) GetIngredient(ctx context.Context, id int64) (*domain.Ingredient, error) {
	in, err := s.repo.GetIngredient(ctx, id)
	if err != nil {
		return nil, notFound(err, "ingredient")
	}
	return in, nil
}

func (s *Service) UpdateIngredient(ctx context.Context, id int64, req domain.IngredientUpdateRequest) (*domain.Ingredient, error) {
	trimPtr(req.Name)
	if err := s.check(req); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetIngredient(ctx, id)
	if err != nil {
		return nil, notFound(err, "ingredient")
	}

	updated := *existing
	if req.Name != nil && *req.Name != existing.Name {
		if err := s.ingredientNamesFree(ctx, []string{*req.Name}, id); err != nil {
			return nil, err
		}
		updated.Name = *req.Name
	}
	if req.UnitCost != nil {
		updated.UnitCost = *req.UnitCost
	}

	saved, err := s.repo.UpdateIngredient(ctx, updated)
	if err != nil {
		return nil, storeErr(err, "ingredient")
	}
	return saved, nil
}

func (s *Service) DeleteIngredient(ctx context.Context, id int64) error {
	if _, err := s.repo.GetIngredient(ctx, id); err != nil {
		return notFound(err, "ingredient")
	}
	used, err := s.repo.CountIngredientUsage(ctx, id)
	if err != nil {
		return err
	}
	if used > 0 {
		return apperr.BusinessRulef("cannot delete an ingredient used by %d product(s)", used)
	}
	return storeErr(s.repo.DeleteIngredient(ctx, id), "ingredient")
}
