package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"pizzapos/internal/domain"
	"pizzapos/internal/store"
)

func (s *Store) CreateIngredient(_ context.Context, ingredient domain.Ingredient) (*domain.Ingredient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ingredientNameTaken(ingredient.Name, 0) {
		return nil, store.ErrDuplicate
	}
	created := s.insertIngredient(ingredient)
	return &created, nil
}

func (s *Store) CreateIngredients(_ context.Context, ingredients []domain.Ingredient) ([]domain.Ingredient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(ingredients))
	for _, in := range ingredients {
		if _, dup := seen[in.Name]; dup || s.ingredientNameTaken(in.Name, 0) {
			return nil, store.ErrDuplicate
		}
		seen[in.Name] = struct{}{}
	}

	created := make([]domain.Ingredient, 0, len(ingredients))
	for _, in := range ingredients {
		created = append(created, s.insertIngredient(in))
	}
	return created, nil
}

func (s *Store) insertIngredient(ingredient domain.Ingredient) domain.Ingredient {
	s.nextIngredientID++
	ingredient.ID = s.nextIngredientID
	ingredient.CreatedAt = s.stamp(ingredient.CreatedAt)
	ingredient.ProductCount = nil
	ingredient.Products = nil
	s.ingredients[ingredient.ID] = ingredient
	return ingredient
}

func (s *Store) ingredientNameTaken(name string, exceptID int64) bool {
	for _, in := range s.ingredients {
		if in.Name == name && in.ID != exceptID {
			return true
		}
	}
	return false
}

func (s *Store) GetIngredient(_ context.Context, id int64) (*domain.Ingredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ingredient, ok := s.ingredients[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	products := make([]domain.ProductSummary, 0)
	for productID, links := range s.links {
		for _, link := range links {
			if link.IngredientID == id {
				p := s.products[productID]
				products = append(products, domain.ProductSummary{ID: p.ID, Name: p.Name, BasePrice: p.BasePrice})
				break
			}
		}
	}
	slices.SortFunc(products, func(a, b domain.ProductSummary) int {
		return cmp.Or(strings.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	ingredient.Products = products
	ingredient.ProductCount = intPtr(len(products))
	return &ingredient, nil
}

func (s *Store) FindIngredientsByName(_ context.Context, names []string) ([]domain.Ingredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[n] = struct{}{}
	}
	found := make([]domain.Ingredient, 0)
	for _, in := range s.ingredients {
		if _, ok := wanted[in.Name]; ok {
			found = append(found, in)
		}
	}
	slices.SortFunc(found, func(a, b domain.Ingredient) int { return cmp.Compare(a.ID, b.ID) })
	return found, nil
}

func (s *Store) GetIngredientsByIDs(_ context.Context, ids []int64) (map[int64]domain.Ingredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found := make(map[int64]domain.Ingredient, len(ids))
	for _, id := range ids {
		if in, ok := s.ingredients[id]; ok {
			found[id] = in
		}
	}
	return found, nil
}

func (s *Store) ListIngredients(_ context.Context, q store.IngredientQuery) ([]domain.Ingredient, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]domain.Ingredient, 0, len(s.ingredients))
	for _, in := range s.ingredients {
		in.ProductCount = intPtr(s.ingredientUsage(in.ID))
		all = append(all, in)
	}
	slices.SortFunc(all, func(a, b domain.Ingredient) int {
		if q.OrderBy == store.IngredientsByCost {
			return cmp.Or(b.UnitCost.Cmp(a.UnitCost), cmp.Compare(a.ID, b.ID))
		}
		return cmp.Or(strings.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return page(all, q.Offset, q.Limit), len(all), nil
}

func (s *Store) UpdateIngredient(_ context.Context, ingredient domain.Ingredient) (*domain.Ingredient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.ingredients[ingredient.ID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if s.ingredientNameTaken(ingredient.Name, ingredient.ID) {
		return nil, store.ErrDuplicate
	}
	ingredient.CreatedAt = existing.CreatedAt
	ingredient.ProductCount = nil
	ingredient.Products = nil
	s.ingredients[ingredient.ID] = ingredient
	return &ingredient, nil
}

func (s *Store) DeleteIngredient(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ingredients[id]; !ok {
		return store.ErrNotFound
	}
	if s.ingredientUsage(id) > 0 {
		return store.ErrReferenced
	}
	delete(s.ingredients, id)
	return nil
}

func (s *Store) CountIngredientUsage(_ context.Context, id int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ingredientUsage(id), nil
}

func (s *Store) ingredientUsage(id int64) int {
	n := 0
	for _, links := range s.links {
		for _, link := range links {
			if link.IngredientID == id {
				n++
			}
		}
	}
	return n
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkLinks(product.Ingredients); err != nil {
		return nil, err
	}
	created := s.insertProduct(product)
	return &created, nil
}

func (s *Store) CreateProducts(_ context.Context, products []domain.Product) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range products {
		if err := s.checkLinks(p.Ingredients); err != nil {
			return nil, err
		}
	}
	created := make([]domain.Product, 0, len(products))
	for _, p := range products {
		created = append(created, s.insertProduct(p))
	}
	return created, nil
}

func (s *Store) insertProduct(product domain.Product) domain.Product {
	s.nextProductID++
	product.ID = s.nextProductID
	product.CreatedAt = s.stamp(product.CreatedAt)
	links := product.Ingredients
	product.Ingredients = nil
	s.products[product.ID] = product
	s.setLinks(product.ID, links)
	return s.expandProduct(product, true)
}

// checkLinks mirrors the foreign key and unique constraints on composition rows.
func (s *Store) checkLinks(links []domain.ProductIngredient) error {
	seen := make(map[int64]struct{}, len(links))
	for _, link := range links {
		if _, ok := s.ingredients[link.IngredientID]; !ok {
			return store.ErrReferenced
		}
		if _, dup := seen[link.IngredientID]; dup {
			return store.ErrDuplicate
		}
		seen[link.IngredientID] = struct{}{}
	}
	return nil
}

func (s *Store) setLinks(productID int64, links []domain.ProductIngredient) {
	if len(links) == 0 {
		delete(s.links, productID)
		return
	}
	stored := make([]domain.ProductIngredient, 0, len(links))
	for _, link := range links {
		stored = append(stored, domain.ProductIngredient{
			ProductID:    productID,
			IngredientID: link.IngredientID,
			Quantity:     link.Quantity,
		})
	}
	sortLinks(stored)
	s.links[productID] = stored
}

func (s *Store) expandProduct(product domain.Product, withComposition bool) domain.Product {
	product.Ingredients = nil
	if !withComposition {
		return product
	}
	links := s.links[product.ID]
	product.Ingredients = make([]domain.ProductIngredient, 0, len(links))
	for _, link := range links {
		in := s.ingredients[link.IngredientID]
		in.ProductCount = nil
		in.Products = nil
		link.Ingredient = &in
		product.Ingredients = append(product.Ingredients, link)
	}
	return product
}

func (s *Store) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	expanded := s.expandProduct(product, true)
	return &expanded, nil
}

func (s *Store) GetProductsByIDs(_ context.Context, ids []int64) (map[int64]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found := make(map[int64]domain.Product, len(ids))
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			found[id] = s.expandProduct(p, false)
		}
	}
	return found, nil
}

func (s *Store) ListProducts(_ context.Context, q store.ProductQuery) ([]domain.Product, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if q.Active != nil && p.Active != *q.Active {
			continue
		}
		matched = append(matched, p)
	}
	slices.SortFunc(matched, func(a, b domain.Product) int {
		return cmp.Or(strings.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	paged := page(matched, q.Offset, q.Limit)
	result := make([]domain.Product, 0, len(paged))
	for _, p := range paged {
		result = append(result, s.expandProduct(p, true))
	}
	return result, len(matched), nil
}

func (s *Store) UpdateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.products[product.ID]
	if !ok {
		return nil, store.ErrNotFound
	}
	product.CreatedAt = existing.CreatedAt
	product.Ingredients = nil
	s.products[product.ID] = product
	expanded := s.expandProduct(product, true)
	return &expanded, nil
}

func (s *Store) ReplaceProductIngredients(_ context.Context, productID int64, links []domain.ProductIngredient) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[productID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if err := s.checkLinks(links); err != nil {
		return nil, err
	}
	s.setLinks(productID, links)
	expanded := s.expandProduct(product, true)
	return &expanded, nil
}

func (s *Store) DeleteProduct(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return store.ErrNotFound
	}
	if s.productSaleItems(id) > 0 {
		return store.ErrReferenced
	}
	delete(s.links, id)
	delete(s.products, id)
	return nil
}

func (s *Store) CountProductSaleItems(_ context.Context, id int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.productSaleItems(id), nil
}

func (s *Store) productSaleItems(id int64) int {
	n := 0
	for _, sale := range s.sales {
		for _, item := range sale.Items {
			if item.ProductID == id {
				n++
			}
		}
	}
	return n
}

func (s *Store) CreatePaymentMethod(_ context.Context, method domain.PaymentMethod) (*domain.PaymentMethod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.paymentMethodNameTaken(method.Name, 0) {
		return nil, store.ErrDuplicate
	}
	s.nextPaymentMethodID++
	method.ID = s.nextPaymentMethodID
	method.CreatedAt = s.stamp(method.CreatedAt)
	method.SaleCount = nil
	s.paymentMethods[method.ID] = method
	return &method, nil
}

func (s *Store) paymentMethodNameTaken(name string, exceptID int64) bool {
	for _, m := range s.paymentMethods {
		if m.Name == name && m.ID != exceptID {
			return true
		}
	}
	return false
}

func (s *Store) GetPaymentMethod(_ context.Context, id int64) (*domain.PaymentMethod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	method, ok := s.paymentMethods[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	method.SaleCount = intPtr(s.paymentMethodSales(id))
	return &method, nil
}

func (s *Store) FindPaymentMethodByName(_ context.Context, name string) (*domain.PaymentMethod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.paymentMethods {
		if m.Name == name {
			found := m
			return &found, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListPaymentMethods(_ context.Context) ([]domain.PaymentMethod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	methods := make([]domain.PaymentMethod, 0, len(s.paymentMethods))
	for _, m := range s.paymentMethods {
		m.SaleCount = intPtr(s.paymentMethodSales(m.ID))
		methods = append(methods, m)
	}
	slices.SortFunc(methods, func(a, b domain.PaymentMethod) int {
		return cmp.Or(strings.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return methods, nil
}

func (s *Store) UpdatePaymentMethod(_ context.Context, method domain.PaymentMethod) (*domain.PaymentMethod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.paymentMethods[method.ID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if s.paymentMethodNameTaken(method.Name, method.ID) {
		return nil, store.ErrDuplicate
	}
	method.CreatedAt = existing.CreatedAt
	method.SaleCount = nil
	s.paymentMethods[method.ID] = method
	return &method, nil
}

func (s *Store) DeletePaymentMethod(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.paymentMethods[id]; !ok {
		return store.ErrNotFound
	}
	if s.paymentMethodSales(id) > 0 {
		return store.ErrReferenced
	}
	delete(s.paymentMethods, id)
	return nil
}

func (s *Store) CountPaymentMethodSales(_ context.Context, id int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.paymentMethodSales(id), nil
}

func (s *Store) paymentMethodSales(id int64) int {
	n := 0
	for _, sale := range s.sales {
		if sale.PaymentMethodID == id {
			n++
		}
	}
	return n
}
