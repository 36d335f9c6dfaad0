package controller

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/service"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

const (
	defaultNewArrivals = 8
	defaultFeatured    = 8
	maxListLimit       = 50
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

type ProductRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Price       float64  `json:"price" binding:"gte=0"`
	CategoryID  string   `json:"category_id" binding:"required"`
	ImageURLs   []string `json:"image_urls"`
	Sizes       []string `json:"sizes"`
	Colors      []string `json:"colors"`
	Stock       int      `json:"stock" binding:"gte=0"`
	IsFeatured  bool     `json:"is_featured"`
}

func (r ProductRequest) input() service.ProductInput {
	return service.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		CategoryID:  r.CategoryID,
		ImageURLs:   r.ImageURLs,
		Sizes:       r.Sizes,
		Colors:      r.Colors,
		Stock:       r.Stock,
		IsFeatured:  r.IsFeatured,
	}
}

// ListProducts returns the filtered catalog
// GET /api/v1/products?category=&min_price=&max_price=&q=&sort=
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	query := service.ProductQuery{
		Search: c.Query("q"),
		Sort:   c.Query("sort"),
	}
	if category := strings.TrimSpace(c.Query("category")); category != "" {
		query.CategoryID = &category
	}

	var ok bool
	if query.MinPrice, ok = priceParam(c, "min_price"); !ok {
		return
	}
	if query.MaxPrice, ok = priceParam(c, "max_price"); !ok {
		return
	}

	result, err := ctrl.productService.List(c.Request.Context(), query)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSort) {
			apperrors.BadRequest(c, apperrors.ProductInvalidSort, "sort must be one of latest, price_asc, price_desc")
			return
		}
		log.Error("Failed to list products", err)
		apperrors.InternalError(c, "Failed to load products")
		return
	}

	body := gin.H{
		"products":     productsOrEmpty(result.Products),
		"count":        result.Total,
		"price_bounds": result.Bounds,
		"empty":        result.Empty,
	}
	if result.Empty {
		body["message"] = "No products match these filters"
	}
	c.JSON(http.StatusOK, body)
}

// Suggestions returns a short list of products matching q
// GET /api/v1/products/suggestions?q=
func (ctrl *ProductController) Suggestions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	products, err := ctrl.productService.Suggestions(c.Request.Context(), c.Query("q"), clampLimit(limit, 0))
	if err != nil {
		apperrors.InternalError(c, "Failed to load suggestions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": productsOrEmpty(products), "count": len(products)})
}

// GET /api/v1/products/featured
func (ctrl *ProductController) Featured(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	products, err := ctrl.productService.Featured(clampLimit(limit, defaultFeatured))
	if err != nil {
		apperrors.InternalError(c, "Failed to load featured products")
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": productsOrEmpty(products), "count": len(products)})
}

// GET /api/v1/products/new-arrivals
func (ctrl *ProductController) NewArrivals(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	products, err := ctrl.productService.NewArrivals(clampLimit(limit, defaultNewArrivals))
	if err != nil {
		apperrors.InternalError(c, "Failed to load new arrivals")
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": productsOrEmpty(products), "count": len(products)})
}

// GetProductByID
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	product, err := ctrl.productService.GetByID(c.Param("id"))
	if err != nil {
		respondProductError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// CreateProduct
// POST /api/v1/admin/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	product, err := ctrl.productService.Create(req.input())
	if err != nil {
		respondProductError(c, err)
		return
	}

	middleware.GetLoggerFromContext(c).Info("Product created", map[string]interface{}{
		"product_id": product.ID,
	})
	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// UpdateProduct
// PUT /api/v1/admin/products/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	product, err := ctrl.productService.Update(c.Param("id"), req.input())
	if err != nil {
		respondProductError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// DeleteProduct
// DELETE /api/v1/admin/products/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	if err := ctrl.productService.Delete(c.Param("id")); err != nil {
		respondProductError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

func respondProductError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
	case errors.Is(err, service.ErrCategoryNotFound):
		apperrors.BadRequest(c, apperrors.CategoryNotFound, "Category does not exist")
	case errors.Is(err, service.ErrInvalidProduct):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Name is required and price and stock must not be negative")
	default:
		middleware.GetLoggerFromContext(c).Error("Product request failed", err)
		apperrors.RespondWithParsedError(c, err, "product")
	}
}

// priceParam parses an optional non-negative price query parameter.
func priceParam(c *gin.Context, name string) (*float64, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidRange, name+" must be a non-negative number")
		return nil, false
	}
	return &v, true
}

func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

// productsOrEmpty keeps JSON arrays non-null.
func productsOrEmpty(products []model.Product) []model.Product {
	if products == nil {
		return []model.Product{}
	}
	return products
}
