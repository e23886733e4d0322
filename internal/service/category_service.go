package service

import (
	"context"
	"fmt"

	"shop-api/internal/domain"
	"shop-api/internal/repository"
)

// CategoryPage is one page of categories plus navigation links
type CategoryPage struct {
	Links PaginationLinks    `json:"links"`
	Data  []*domain.Category `json:"data"`
}

// CategoryService defines the interface for category business logic
type CategoryService interface {
	Create(ctx context.Context, title string) (*domain.Category, error)
	List(ctx context.Context, page, size int) (*CategoryPage, error)
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
}

// NewCategoryService creates a new instance of CategoryService
func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

// Create persists a new category
func (s *categoryService) Create(ctx context.Context, title string) (*domain.Category, error) {
	category := &domain.Category{Title: title}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return category, nil
}

// List returns one page of categories with prev/next navigation hints
func (s *categoryService) List(ctx context.Context, page, size int) (*CategoryPage, error) {
	page = NormalizePage(page)
	size = NormalizeSize(size)

	data, err := s.categoryRepo.List(ctx, size, pageOffset(page, size))
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	return &CategoryPage{
		Links: pageLinks(page, size, len(data)),
		Data:  data,
	}, nil
}
