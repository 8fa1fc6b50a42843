package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"catalog-service/internal/catalog"
	"catalog-service/internal/config"
	"catalog-service/internal/models"
	"catalog-service/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CatalogHandler struct {
	aggregates *catalog.AggregateService
	products   *repository.ProductRepository
	cfg        *config.Config
	logger     *logrus.Entry
}

func NewCatalogHandler(aggregates *catalog.AggregateService, products *repository.ProductRepository, cfg *config.Config, logger *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{
		aggregates: aggregates,
		products:   products,
		cfg:        cfg,
		logger:     logger.WithField("component", "handlers.catalog"),
	}
}

// GetCategories returns the category navigation strip: each category with its
// live product count and a representative image, served through the TTL cache
// GET /api/v1/storefront/categories?supplier=
func (h *CatalogHandler) GetCategories(c *gin.Context) {
	supplier := c.Query("supplier")

	categories, err := h.aggregates.CategoriesWithImage(c.Request.Context(), supplier)
	if err != nil {
		h.logger.WithError(err).Error("failed to load category aggregates")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INTERNAL_ERROR",
				Message: "Failed to load categories",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.CategoryListResponse{
		Success: true,
		Data:    categories,
	})
}

// GetProducts returns a filtered, paginated product list
// GET /api/v1/storefront/products
func (h *CatalogHandler) GetProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(h.cfg.DefaultPageSize)))
	if limit < 1 {
		limit = h.cfg.DefaultPageSize
	}
	if limit > h.cfg.MaxPageSize {
		limit = h.cfg.MaxPageSize
	}

	filters := repository.ProductFilters{
		ActiveOnly: true,
		Search:     c.Query("search"),
	}
	if categoryID := c.Query("categoryId"); categoryID != "" {
		filters.CategoryID = &categoryID
	}
	if supplier := c.Query("supplier"); supplier != "" {
		filters.Supplier = &supplier
	}
	if featured := c.Query("featured"); featured != "" {
		isFeatured := featured == "true"
		filters.Featured = &isFeatured
	}

	products, total, err := h.products.List(c.Request.Context(), filters, limit, (page-1)*limit)
	if err != nil {
		h.logger.WithError(err).Error("failed to list products")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INTERNAL_ERROR",
				Message: "Failed to load products",
			},
		})
		return
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	c.JSON(http.StatusOK, models.ProductListResponse{
		Success: true,
		Data:    products,
		Pagination: &models.PaginationInfo{
			Page:        page,
			Limit:       limit,
			Total:       total,
			TotalPages:  totalPages,
			HasNext:     page < totalPages,
			HasPrevious: page > 1,
		},
	})
}

// GetProduct returns one product by slug
// GET /api/v1/storefront/products/:slug
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.products.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "NOT_FOUND",
					Message: "Product not found",
				},
			})
			return
		}
		h.logger.WithError(err).Error("failed to load product")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INTERNAL_ERROR",
				Message: "Failed to load product",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": product})
}

// HealthCheck responds to liveness and readiness probes
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "catalog-service"})
}
