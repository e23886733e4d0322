package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shop-api/internal/domain"
	"shop-api/internal/repository"
	"shop-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// In-memory repositories backing real services for handler tests

type memCategoryRepo struct {
	categories  []*domain.Category
	productRepo *memProductRepo
}

func (m *memCategoryRepo) Create(ctx context.Context, category *domain.Category) error {
	category.ID = uuid.New()
	category.CreatedAt = time.Now()
	category.Products = []domain.Product{}
	stored := *category
	m.categories = append(m.categories, &stored)
	return nil
}

func (m *memCategoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	for _, c := range m.categories {
		if c.ID == id {
			copied := *c
			return &copied, nil
		}
	}
	return nil, repository.ErrCategoryNotFound
}

func (m *memCategoryRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Category, error) {
	found := []domain.Category{}
	for _, id := range ids {
		for _, c := range m.categories {
			if c.ID == id {
				found = append(found, *c)
			}
		}
	}
	return found, nil
}

func (m *memCategoryRepo) List(ctx context.Context, limit, offset int) ([]*domain.Category, error) {
	if offset >= len(m.categories) {
		return []*domain.Category{}, nil
	}
	end := offset + limit
	if end > len(m.categories) {
		end = len(m.categories)
	}

	page := []*domain.Category{}
	for _, c := range m.categories[offset:end] {
		copied := *c
		copied.Products = []domain.Product{}
		if m.productRepo != nil {
			for _, p := range m.productRepo.products {
				for _, cid := range m.productRepo.associations[p.ID] {
					if cid == c.ID {
						copied.Products = append(copied.Products, *p)
					}
				}
			}
		}
		page = append(page, &copied)
	}
	return page, nil
}

type memProductRepo struct {
	categoryRepo *memCategoryRepo
	products     []*domain.Product
	associations map[uuid.UUID][]uuid.UUID
}

func newMemProductRepo(categoryRepo *memCategoryRepo) *memProductRepo {
	return &memProductRepo{
		categoryRepo: categoryRepo,
		associations: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (m *memProductRepo) Create(ctx context.Context, product *domain.Product) error {
	product.ID = uuid.New()
	product.CreatedAt = time.Now()
	product.Categories = []domain.Category{}
	stored := *product
	m.products = append(m.products, &stored)
	return nil
}

func (m *memProductRepo) Update(ctx context.Context, product *domain.Product) error {
	for _, p := range m.products {
		if p.ID == product.ID {
			p.Title = product.Title
			p.Price = product.Price
			p.Rating = product.Rating
			p.Description = product.Description
			return nil
		}
	}
	return repository.ErrProductNotFound
}

func (m *memProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	kept := m.products[:0]
	for _, p := range m.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	m.products = kept
	delete(m.associations, id)
	return nil
}

func (m *memProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	for _, p := range m.products {
		if p.ID == id {
			copied := *p
			copied.Categories, _ = m.categoryRepo.FindByIDs(ctx, m.associations[id])
			return &copied, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *memProductRepo) List(ctx context.Context, query repository.ProductListQuery, limit, offset int, orderings []repository.Ordering) ([]*domain.Product, error) {
	matched := []*domain.Product{}
	for _, p := range m.products {
		if query.CategoryID != nil {
			associated := false
			for _, cid := range m.associations[p.ID] {
				if cid == *query.CategoryID {
					associated = true
					break
				}
			}
			if !associated {
				continue
			}
		}
		copied := *p
		copied.Categories, _ = m.categoryRepo.FindByIDs(ctx, m.associations[p.ID])
		matched = append(matched, &copied)
	}

	if offset >= len(matched) {
		return []*domain.Product{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (m *memProductRepo) ReplaceCategories(ctx context.Context, productID uuid.UUID, categoryIDs []uuid.UUID) error {
	m.associations[productID] = append([]uuid.UUID{}, categoryIDs...)
	return nil
}

func newTestRouter() (chi.Router, *memProductRepo, *memCategoryRepo) {
	categoryRepo := &memCategoryRepo{}
	productRepo := newMemProductRepo(categoryRepo)
	categoryRepo.productRepo = productRepo
	logger := zap.NewNop()

	productHandler := NewProductHandler(service.NewProductService(productRepo, categoryRepo), logger)
	categoryHandler := NewCategoryHandler(service.NewCategoryService(categoryRepo), logger)

	router := chi.NewRouter()
	productHandler.RegisterRoutes(router)
	categoryHandler.RegisterRoutes(router)

	return router, productRepo, categoryRepo
}

func doJSON(router chi.Router, method, path string, payload interface{}) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		json.NewEncoder(&body).Encode(payload)
	}

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestProperty_OutOfRangeRatingIsRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("a rating outside [1,10] never reaches the store", prop.ForAll(
		func(rating int) bool {
			if rating >= 1 && rating <= 10 {
				return true // only out-of-range inputs are interesting
			}

			router, productRepo, _ := newTestRouter()

			w := doJSON(router, http.MethodPost, "/api/v1/product/", map[string]interface{}{
				"title":      "Suspicious",
				"price":      9.99,
				"rating":     rating,
				"categories": []string{},
			})

			if w.Code != http.StatusBadRequest {
				t.Logf("FAIL: rating %d: expected 400, got %d", rating, w.Code)
				return false
			}
			if len(productRepo.products) != 0 {
				t.Logf("FAIL: rating %d: product was persisted", rating)
				return false
			}

			return true
		},
		gen.IntRange(-100, 100),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestCreateProduct_ResolvesCategories(t *testing.T) {
	router, _, categoryRepo := newTestRouter()

	category := &domain.Category{Title: "Games"}
	if err := categoryRepo.Create(context.Background(), category); err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}

	w := doJSON(router, http.MethodPost, "/api/v1/product/", map[string]interface{}{
		"title":      "Chess set",
		"price":      25.00,
		"rating":     9,
		"categories": []string{category.ID.String(), uuid.NewString()},
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp ProductResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(resp.Categories) != 1 || resp.Categories[0].Title != "Games" {
		t.Fatalf("expected only the known category resolved, got %v", resp.Categories)
	}
}

func TestDeleteProduct_AlwaysAcknowledges(t *testing.T) {
	router, productRepo, _ := newTestRouter()

	product := &domain.Product{Title: "Here today", Price: decimal.NewFromInt(1), Rating: 1}
	if err := productRepo.Create(context.Background(), product); err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}

	for _, id := range []uuid.UUID{product.ID, uuid.New()} {
		w := doJSON(router, http.MethodDelete, "/api/v1/product/", map[string]string{"id": id.String()})

		if w.Code != http.StatusOK {
			t.Fatalf("delete of %s: expected 200, got %d", id, w.Code)
		}

		var resp map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp["msg"] != "Successfully deleted." {
			t.Errorf("unexpected acknowledgement: %q", resp["msg"])
		}
	}
}

func TestUpdateProduct_UnknownIDReturns404(t *testing.T) {
	router, _, _ := newTestRouter()

	w := doJSON(router, http.MethodPut, "/api/v1/product/", map[string]interface{}{
		"id":         uuid.NewString(),
		"title":      "Nobody",
		"price":      3.00,
		"rating":     3,
		"categories": []string{},
	})

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUpdateProduct_ReplacesCategorySet(t *testing.T) {
	router, _, categoryRepo := newTestRouter()
	ctx := context.Background()

	c1 := &domain.Category{Title: "Old one"}
	c2 := &domain.Category{Title: "Old two"}
	c3 := &domain.Category{Title: "New"}
	for _, c := range []*domain.Category{c1, c2, c3} {
		if err := categoryRepo.Create(ctx, c); err != nil {
			t.Fatalf("failed to seed category: %v", err)
		}
	}

	w := doJSON(router, http.MethodPost, "/api/v1/product/", map[string]interface{}{
		"title":      "Relabel me",
		"price":      10.00,
		"rating":     5,
		"categories": []string{c1.ID.String(), c2.ID.String()},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", w.Code)
	}

	var created ProductResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode created product: %v", err)
	}
	if len(created.Categories) != 2 {
		t.Fatalf("expected 2 categories on create, got %d", len(created.Categories))
	}

	w = doJSON(router, http.MethodPut, "/api/v1/product/", map[string]interface{}{
		"id":         created.ID,
		"title":      "Relabeled",
		"price":      10.00,
		"rating":     5,
		"categories": []string{c3.ID.String()},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var updated ProductResponse
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("failed to decode updated product: %v", err)
	}
	if len(updated.Categories) != 1 || updated.Categories[0].Title != "New" {
		t.Fatalf("expected the replacement set {New}, got %v", updated.Categories)
	}
}

func TestGetProduct_MissingRespondsNull(t *testing.T) {
	router, _, _ := newTestRouter()

	w := doJSON(router, http.MethodGet, "/api/v1/product/"+uuid.NewString(), nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body := bytes.TrimSpace(w.Body.Bytes()); string(body) != "null" {
		t.Fatalf("expected a null body, got %q", body)
	}
}

func TestGetProduct_InvalidIDReturns400(t *testing.T) {
	router, _, _ := newTestRouter()

	w := doJSON(router, http.MethodGet, "/api/v1/product/not-a-uuid", nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestListProducts_SizeIsClampedToBounds(t *testing.T) {
	router, productRepo, _ := newTestRouter()
	ctx := context.Background()

	for i := 0; i < 30; i++ {
		product := &domain.Product{Title: fmt.Sprintf("Item %d", i), Price: decimal.NewFromInt(int64(i)), Rating: 5}
		if err := productRepo.Create(ctx, product); err != nil {
			t.Fatalf("failed to seed product: %v", err)
		}
	}

	// size below the minimum is raised to 10
	w := doJSON(router, http.MethodGet, "/api/v1/product/?page=1&size=3", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp ProductListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Data) != 10 {
		t.Fatalf("expected the clamped page of 10 rows, got %d", len(resp.Data))
	}
	if resp.Links.Next == nil || *resp.Links.Next != 2 {
		t.Fatalf("expected next page hint of 2, got %v", resp.Links.Next)
	}
	if resp.Links.Prev != nil {
		t.Fatalf("expected no prev on the first page, got %v", *resp.Links.Prev)
	}
}

func TestListProducts_InvalidCategoryFilterReturns400(t *testing.T) {
	router, _, _ := newTestRouter()

	w := doJSON(router, http.MethodGet, "/api/v1/product/?sort_by_category=garbage", nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
