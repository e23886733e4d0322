package transport

import (
	"errors"
	"net/http"

	"shop-api/internal/domain"
	"shop-api/internal/middleware"
	"shop-api/internal/repository"
	"shop-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateProductRequest represents the product creation payload
type CreateProductRequest struct {
	Title       string          `json:"title" validate:"required,max=100"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	Rating      int             `json:"rating" validate:"required,gte=1,lte=10"`
	Description *string         `json:"description"`
	Categories  []uuid.UUID     `json:"categories"`
}

// UpdateProductRequest represents the product update payload
type UpdateProductRequest struct {
	ID          uuid.UUID       `json:"id" validate:"required"`
	Title       string          `json:"title" validate:"required,max=100"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	Rating      int             `json:"rating" validate:"required,gte=1,lte=10"`
	Description *string         `json:"description"`
	Categories  []uuid.UUID     `json:"categories"`
}

// DeleteProductRequest represents the product deletion payload
type DeleteProductRequest struct {
	ID uuid.UUID `json:"id" validate:"required"`
}

// ProductResponse represents a product with its associated categories
type ProductResponse struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Price       decimal.Decimal   `json:"price"`
	Rating      int               `json:"rating"`
	Description *string           `json:"description"`
	Categories  []CategorySummary `json:"categories"`
}

// CategorySummary is the shape of a category nested inside a product response
type CategorySummary struct {
	Title string `json:"title"`
}

// ProductListResponse represents one page of products
type ProductListResponse struct {
	Links service.PaginationLinks `json:"links"`
	Data  []ProductResponse       `json:"data"`
}

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/product", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Delete("/", h.Delete)
		r.Get("/", h.List)
		r.Get("/{productID}", h.GetByID)
		r.Put("/", h.Update)
	})
}

// Create handles product creation
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.productService.Create(r.Context(), ProductFieldsFromRequest(req.Title, req.Price, req.Rating, req.Description), req.Categories)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRating) {
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		h.logger.Error("Product creation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, toProductResponse(product))
}

// Delete handles product deletion. The response acknowledges success even
// when the id matched no row.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req DeleteProductRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Delete validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.productService.Delete(r.Context(), req.ID); err != nil {
		h.logger.Error("Product deletion failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", req.ID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"msg": "Successfully deleted."})
}

// List handles paginated product listing with optional category filtering
// and price/rating ordering
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	page, size := parsePagination(r)

	in := service.ListProductsInput{
		Page:          page,
		Size:          size,
		OrderByPrice:  r.URL.Query().Get("order_by_price"),
		OrderByRating: r.URL.Query().Get("order_by_rating"),
	}

	if raw := r.URL.Query().Get("sort_by_category"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid sort_by_category id")
			return
		}
		in.CategoryID = &categoryID
	}

	result, err := h.productService.List(r.Context(), in)
	if err != nil {
		h.logger.Error("Product listing failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	response := ProductListResponse{
		Links: result.Links,
		Data:  make([]ProductResponse, 0, len(result.Data)),
	}
	for _, product := range result.Data {
		response.Data = append(response.Data, toProductResponse(product))
	}

	middleware.RespondWithJSON(w, http.StatusOK, response)
}

// GetByID handles fetching a single product. A missing product responds
// 200 with a null body, matching the listing API's empty-result behavior.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := h.productService.GetByID(r.Context(), productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithJSON(w, http.StatusOK, nil)
			return
		}

		h.logger.Error("Product fetch failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to fetch product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toProductResponse(product))
}

// Update handles full product updates, including association replacement
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateProductRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Update validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.productService.Update(r.Context(), req.ID, ProductFieldsFromRequest(req.Title, req.Price, req.Rating, req.Description), req.Categories)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		if errors.Is(err, service.ErrInvalidRating) {
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		h.logger.Error("Product update failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update product")
		return
	}

	h.logger.Info("Product updated", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, toProductResponse(product))
}

// ProductFieldsFromRequest bundles scalar product fields for the service layer
func ProductFieldsFromRequest(title string, price decimal.Decimal, rating int, description *string) service.ProductFields {
	return service.ProductFields{
		Title:       title,
		Price:       price,
		Rating:      rating,
		Description: description,
	}
}

func toProductResponse(product *domain.Product) ProductResponse {
	categories := make([]CategorySummary, 0, len(product.Categories))
	for _, c := range product.Categories {
		categories = append(categories, CategorySummary{Title: c.Title})
	}

	return ProductResponse{
		ID:          product.ID.String(),
		Title:       product.Title,
		Price:       product.Price,
		Rating:      product.Rating,
		Description: product.Description,
		Categories:  categories,
	}
}
