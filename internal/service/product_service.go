package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shop-api/internal/domain"
	"shop-api/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidRating = errors.New("rating must be between 1 and 10")
)

// ProductFields are the scalar fields of a product supplied on create/update
type ProductFields struct {
	Title       string
	Price       decimal.Decimal
	Rating      int
	Description *string
}

// ListProductsInput carries the query options of a product listing.
// OrderByPrice and OrderByRating are the raw sort expressions: the bare
// column name sorts ascending, a leading minus sign sorts descending.
type ListProductsInput struct {
	Page          int
	Size          int
	CategoryID    *uuid.UUID
	OrderByPrice  string
	OrderByRating string
}

// ProductPage is one page of products plus navigation links
type ProductPage struct {
	Links PaginationLinks   `json:"links"`
	Data  []*domain.Product `json:"data"`
}

// ProductService defines the interface for product business logic
type ProductService interface {
	Create(ctx context.Context, fields ProductFields, categoryIDs []uuid.UUID) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, in ListProductsInput) (*ProductPage, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, fields ProductFields, categoryIDs []uuid.UUID) (*domain.Product, error)
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewProductService creates a new instance of ProductService
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

// Create persists a new product and, when category ids are given, assigns
// the resolved categories as its association set. Ids that match no existing
// category are dropped without error.
func (s *productService) Create(ctx context.Context, fields ProductFields, categoryIDs []uuid.UUID) (*domain.Product, error) {
	if !domain.ValidRating(fields.Rating) {
		return nil, ErrInvalidRating
	}

	product := &domain.Product{
		Title:       fields.Title,
		Price:       fields.Price,
		Rating:      fields.Rating,
		Description: fields.Description,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	if len(categoryIDs) > 0 {
		categories, err := s.resolveCategories(ctx, categoryIDs)
		if err != nil {
			return nil, err
		}

		if err := s.productRepo.ReplaceCategories(ctx, product.ID, categoryIDList(categories)); err != nil {
			return nil, fmt.Errorf("failed to assign product categories: %w", err)
		}

		product.Categories = categories
	}

	return product, nil
}

// Delete removes a product by id. Deleting an id that matches no row still
// succeeds; association rows cascade away with the product.
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return nil
}

// List returns one page of products, optionally restricted to a category and
// ordered by price and/or rating, price first.
func (s *productService) List(ctx context.Context, in ListProductsInput) (*ProductPage, error) {
	page := NormalizePage(in.Page)
	size := NormalizeSize(in.Size)

	orderings := []repository.Ordering{}
	if in.OrderByPrice != "" {
		orderings = append(orderings, parseOrdering("price", in.OrderByPrice))
	}
	if in.OrderByRating != "" {
		orderings = append(orderings, parseOrdering("rating", in.OrderByRating))
	}

	query := repository.ProductListQuery{CategoryID: in.CategoryID}

	data, err := s.productRepo.List(ctx, query, size, pageOffset(page, size), orderings)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return &ProductPage{
		Links: pageLinks(page, size, len(data)),
		Data:  data,
	}, nil
}

// GetByID fetches a product by id, or repository.ErrProductNotFound
func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

// Update replaces the product's scalar fields and, when category ids are
// given, its entire association set. When the id matches no row the update
// fails with repository.ErrProductNotFound before any association change.
func (s *productService) Update(ctx context.Context, id uuid.UUID, fields ProductFields, categoryIDs []uuid.UUID) (*domain.Product, error) {
	if !domain.ValidRating(fields.Rating) {
		return nil, ErrInvalidRating
	}

	product := &domain.Product{
		ID:          id,
		Title:       fields.Title,
		Price:       fields.Price,
		Rating:      fields.Rating,
		Description: fields.Description,
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	if len(categoryIDs) > 0 {
		categories, err := s.resolveCategories(ctx, categoryIDs)
		if err != nil {
			return nil, err
		}

		if err := s.productRepo.ReplaceCategories(ctx, id, categoryIDList(categories)); err != nil {
			return nil, fmt.Errorf("failed to replace product categories: %w", err)
		}
	}

	updated, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload updated product: %w", err)
	}

	return updated, nil
}

// resolveCategories maps category ids to existing categories, silently
// skipping unknown ids
func (s *productService) resolveCategories(ctx context.Context, ids []uuid.UUID) ([]domain.Category, error) {
	categories, err := s.categoryRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve categories: %w", err)
	}

	return categories, nil
}

// parseOrdering translates a sort expression into an Ordering on column.
// A leading minus sign means descending; anything else means ascending.
func parseOrdering(column, expr string) repository.Ordering {
	direction := repository.SortAsc
	if strings.HasPrefix(expr, "-") {
		direction = repository.SortDesc
	}

	return repository.Ordering{Column: column, Direction: direction}
}

func categoryIDList(categories []domain.Category) []uuid.UUID {
	ids := make([]uuid.UUID, len(categories))
	for i, c := range categories {
		ids[i] = c.ID
	}
	return ids
}
