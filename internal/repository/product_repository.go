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
	ErrProductNotFound = errors.New("product not found")
)

// productSortColumns are the columns a List call may order by
var productSortColumns = map[string]bool{
	"title":      true,
	"price":      true,
	"rating":     true,
	"created_at": true,
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, query ProductListQuery, limit, offset int, orderings []Ordering) ([]*domain.Product, error)
	ReplaceCategories(ctx context.Context, productID uuid.UUID, categoryIDs []uuid.UUID) error
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create inserts a new product. The id and created_at are generated by the
// database and written back into the passed entity.
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (title, price, rating, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		product.Title,
		product.Price,
		product.Rating,
		product.Description,
	).Scan(&product.ID, &product.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	if product.Categories == nil {
		product.Categories = []domain.Category{}
	}

	return nil
}

// Update replaces the scalar fields of the product identified by its id.
// Returns ErrProductNotFound when no row matched.
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET title = $2, price = $3, rating = $4, description = $5
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Title,
		product.Price,
		product.Rating,
		product.Description,
	)

	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete removes a product. Deleting an id that matches no row is not an
// error; association rows go away through the ON DELETE CASCADE constraint.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM products WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return nil
}

// FindByID retrieves a product by ID with its categories loaded
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `
		SELECT id, title, price, rating, description, created_at
		FROM products
		WHERE id = $1
	`

	product := &domain.Product{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.Title,
		&product.Price,
		&product.Rating,
		&product.Description,
		&product.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	if err := r.loadCategories(ctx, []*domain.Product{product}); err != nil {
		return nil, err
	}

	return product, nil
}

// List retrieves a page of products. When the query names a category, rows
// are restricted through the association table; orderings are applied in
// sequence before LIMIT/OFFSET, so pagination is only stable across pages
// when the caller supplies a full ordering.
func (r *productRepository) List(ctx context.Context, q ProductListQuery, limit, offset int, orderings []Ordering) ([]*domain.Product, error) {
	args := []interface{}{}
	argIndex := 1

	join := ""
	whereClause := ""
	if q.CategoryID != nil {
		join = "JOIN product_categories pc ON pc.product_id = p.id"
		whereClause = fmt.Sprintf("WHERE pc.category_id = $%d", argIndex)
		args = append(args, *q.CategoryID)
		argIndex++
	}

	query := fmt.Sprintf(`
		SELECT p.id, p.title, p.price, p.rating, p.description, p.created_at
		FROM products p
		%s
		%s
		%s
		LIMIT $%d OFFSET $%d
	`, join, whereClause, orderClause(orderings, productSortColumns), argIndex, argIndex+1)

	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product := &domain.Product{}
		err := rows.Scan(
			&product.ID,
			&product.Title,
			&product.Price,
			&product.Rating,
			&product.Description,
			&product.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	if err := r.loadCategories(ctx, products); err != nil {
		return nil, err
	}

	return products, nil
}

// ReplaceCategories swaps the product's entire association set for the given
// category ids inside one transaction. An empty id list clears the set.
func (r *productRepository) ReplaceCategories(ctx context.Context, productID uuid.UUID, categoryIDs []uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM product_categories WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("failed to clear product categories: %w", err)
	}

	for _, categoryID := range categoryIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO product_categories (category_id, product_id) VALUES ($1, $2)`,
			categoryID, productID,
		)
		if err != nil {
			return fmt.Errorf("failed to associate category %s: %w", categoryID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit category replacement: %w", err)
	}

	return nil
}

// loadCategories attaches the associated categories to each listed product
func (r *productRepository) loadCategories(ctx context.Context, products []*domain.Product) error {
	for _, p := range products {
		p.Categories = []domain.Category{}
	}
	if len(products) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*domain.Product, len(products))
	args := make([]interface{}, len(products))
	for i, p := range products {
		byID[p.ID] = p
		args[i] = p.ID
	}

	query := fmt.Sprintf(`
		SELECT pc.product_id, c.id, c.title, c.created_at
		FROM categories c
		JOIN product_categories pc ON pc.category_id = c.id
		WHERE pc.product_id IN (%s)
	`, placeholders(1, len(products)))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to load product categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var productID uuid.UUID
		category := domain.Category{}
		if err := rows.Scan(&productID, &category.ID, &category.Title, &category.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan product category: %w", err)
		}

		if product, ok := byID[productID]; ok {
			product.Categories = append(product.Categories, category)
		}
	}

	if err = rows.Err(); err != nil {
		return fmt.Errorf("error iterating product categories: %w", err)
	}

	return nil
}
