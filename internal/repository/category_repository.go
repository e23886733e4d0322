package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shop-api/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
)

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Category, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Category, error)
}

type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// Create inserts a new category. The id and created_at are generated by the
// database and written back into the passed entity.
func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO categories (title)
		VALUES ($1)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query, category.Title).Scan(&category.ID, &category.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	if category.Products == nil {
		category.Products = []domain.Product{}
	}

	return nil
}

// FindByID retrieves a category by ID using parameterized queries
func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	query := `
		SELECT id, title, created_at
		FROM categories
		WHERE id = $1
	`

	category := &domain.Category{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&category.ID,
		&category.Title,
		&category.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category by ID: %w", err)
	}

	if err := r.loadProducts(ctx, []*domain.Category{category}); err != nil {
		return nil, err
	}

	return category, nil
}

// FindByIDs retrieves the categories whose ids appear in the given list.
// Ids that match no row are simply absent from the result; the caller
// decides whether that matters.
func (r *categoryRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Category, error) {
	if len(ids) == 0 {
		return []domain.Category{}, nil
	}

	query := fmt.Sprintf(`
		SELECT id, title, created_at
		FROM categories
		WHERE id IN (%s)
	`, placeholders(1, len(ids)))

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find categories by ids: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		category := domain.Category{Products: []domain.Product{}}
		if err := rows.Scan(&category.ID, &category.Title, &category.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// List retrieves a page of categories with their associated products loaded
func (r *categoryRepository) List(ctx context.Context, limit, offset int) ([]*domain.Category, error) {
	query := `
		SELECT id, title, created_at
		FROM categories
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []*domain.Category{}
	for rows.Next() {
		category := &domain.Category{}
		if err := rows.Scan(&category.ID, &category.Title, &category.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	if err := r.loadProducts(ctx, categories); err != nil {
		return nil, err
	}

	return categories, nil
}

// loadProducts attaches the associated products to each listed category
func (r *categoryRepository) loadProducts(ctx context.Context, categories []*domain.Category) error {
	for _, c := range categories {
		c.Products = []domain.Product{}
	}
	if len(categories) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*domain.Category, len(categories))
	args := make([]interface{}, len(categories))
	for i, c := range categories {
		byID[c.ID] = c
		args[i] = c.ID
	}

	query := fmt.Sprintf(`
		SELECT pc.category_id, p.id, p.title, p.price, p.rating, p.description, p.created_at
		FROM products p
		JOIN product_categories pc ON pc.product_id = p.id
		WHERE pc.category_id IN (%s)
	`, placeholders(1, len(categories)))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to load category products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var categoryID uuid.UUID
		product := domain.Product{}
		err := rows.Scan(
			&categoryID,
			&product.ID,
			&product.Title,
			&product.Price,
			&product.Rating,
			&product.Description,
			&product.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to scan category product: %w", err)
		}

		if category, ok := byID[categoryID]; ok {
			category.Products = append(category.Products, product)
		}
	}

	if err = rows.Err(); err != nil {
		return fmt.Errorf("error iterating category products: %w", err)
	}

	return nil
}
