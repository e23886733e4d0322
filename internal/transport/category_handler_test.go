package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"shop-api/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestCreateCategory_Returns201WithEmptyProducts(t *testing.T) {
	router, _, _ := newTestRouter()

	w := doJSON(router, http.MethodPost, "/api/v1/category/", map[string]string{"title": "Books"})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp CategoryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Title != "Books" {
		t.Errorf("expected title to round-trip, got %q", resp.Title)
	}
	if resp.ID == "" {
		t.Error("expected a generated id")
	}
	if resp.Products == nil || len(resp.Products) != 0 {
		t.Error("expected an empty products list, not null")
	}
}

func TestCreateCategory_MissingTitleIsRejected(t *testing.T) {
	router, _, categoryRepo := newTestRouter()

	w := doJSON(router, http.MethodPost, "/api/v1/category/", map[string]string{})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if len(categoryRepo.categories) != 0 {
		t.Error("invalid category must not be persisted")
	}
}

func TestListCategories_IncludesAssociatedProducts(t *testing.T) {
	router, productRepo, categoryRepo := newTestRouter()
	ctx := context.Background()

	category := &domain.Category{Title: "Stocked"}
	if err := categoryRepo.Create(ctx, category); err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}

	product := &domain.Product{Title: "Shelf item", Price: decimal.NewFromFloat(2.50), Rating: 4}
	if err := productRepo.Create(ctx, product); err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	if err := productRepo.ReplaceCategories(ctx, product.ID, []uuid.UUID{category.ID}); err != nil {
		t.Fatalf("failed to associate: %v", err)
	}

	w := doJSON(router, http.MethodGet, "/api/v1/category/?page=1&size=10", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp CategoryListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(resp.Data) != 1 {
		t.Fatalf("expected 1 category, got %d", len(resp.Data))
	}
	if len(resp.Data[0].Products) != 1 || resp.Data[0].Products[0].Title != "Shelf item" {
		t.Fatalf("expected the associated product nested in the category, got %v", resp.Data[0].Products)
	}
	if resp.Links.Prev != nil {
		t.Error("expected no prev link on the first page")
	}
	if resp.Links.Next != nil {
		t.Error("expected no next link on a partial page")
	}
}
