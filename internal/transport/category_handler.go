package transport

import (
	"net/http"
	"strconv"

	"shop-api/internal/domain"
	"shop-api/internal/middleware"
	"shop-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateCategoryRequest represents the category creation payload
type CreateCategoryRequest struct {
	Title string `json:"title" validate:"required,max=100"`
}

// CategoryResponse represents a category with its associated products
type CategoryResponse struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Products []ProductSummary `json:"products"`
}

// ProductSummary is the shape of a product nested inside a category response
type ProductSummary struct {
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Rating      int             `json:"rating"`
	Description *string         `json:"description"`
}

// CategoryListResponse represents one page of categories
type CategoryListResponse struct {
	Links service.PaginationLinks `json:"links"`
	Data  []CategoryResponse      `json:"data"`
}

// CategoryHandler handles HTTP requests for category operations
type CategoryHandler struct {
	categoryService service.CategoryService
	logger          *zap.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService service.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

// RegisterRoutes registers all category routes
func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/category", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
	})
}

// Create handles category creation
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Category validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.categoryService.Create(r.Context(), req.Title)
	if err != nil {
		h.logger.Error("Category creation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create category")
		return
	}

	h.logger.Info("Category created", zap.String("category_id", category.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, toCategoryResponse(category))
}

// List handles paginated category listing
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	page, size := parsePagination(r)

	result, err := h.categoryService.List(r.Context(), page, size)
	if err != nil {
		h.logger.Error("Category listing failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}

	response := CategoryListResponse{
		Links: result.Links,
		Data:  make([]CategoryResponse, 0, len(result.Data)),
	}
	for _, category := range result.Data {
		response.Data = append(response.Data, toCategoryResponse(category))
	}

	middleware.RespondWithJSON(w, http.StatusOK, response)
}

// parsePagination reads page/size query parameters, falling back to and
// clamping into the documented bounds (page >= 1, size in [10, 50])
func parsePagination(r *http.Request) (page, size int) {
	page = service.DefaultPage
	if raw := r.URL.Query().Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			page = parsed
		}
	}

	size = service.DefaultSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			size = parsed
		}
	}

	return service.NormalizePage(page), service.NormalizeSize(size)
}

func toCategoryResponse(category *domain.Category) CategoryResponse {
	products := make([]ProductSummary, 0, len(category.Products))
	for _, p := range category.Products {
		products = append(products, ProductSummary{
			Title:       p.Title,
			Price:       p.Price,
			Rating:      p.Rating,
			Description: p.Description,
		})
	}

	return CategoryResponse{
		ID:       category.ID.String(),
		Title:    category.Title,
		Products: products,
	}
}
