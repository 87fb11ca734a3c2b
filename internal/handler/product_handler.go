package handler

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"stock-service/internal/model"
	"stock-service/internal/tenant"
	"stock-service/pkg/logger"
	"stock-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// defaultPageSize bounds product listings when the client sends no limit
const defaultPageSize = 10

// ProductRequest defines the structure for product creation/update requests
type ProductRequest struct {
	Name          string  `json:"name" validate:"required"`
	Description   string  `json:"description"`
	ImageURL      string  `json:"image_url"`
	Unit          string  `json:"unit"`
	Reference     *string `json:"reference"`
	CategoryID    uint    `json:"category_id"`
	SubCategoryID *uint   `json:"sub_category_id"`
	Email         string  `json:"email"`
}

// ProductResponse is a product with the category names the tables render
type ProductResponse struct {
	model.Product
	CategoryName    string `json:"category_name"`
	SubCategoryName string `json:"sub_category_name,omitempty"`
}

// ProductListResponse is one page of products
type ProductListResponse struct {
	Products   []ProductResponse `json:"products"`
	TotalCount int64             `json:"total_count"`
	TotalPages int               `json:"total_pages"`
}

// ProductHandler serves the product endpoints
type ProductHandler struct {
	db      *gorm.DB
	tenants *tenant.Resolver
}

// NewProductHandler creates the handler
func NewProductHandler(db *gorm.DB, tenants *tenant.Resolver) *ProductHandler {
	return &ProductHandler{db: db, tenants: tenants}
}

func toProductResponse(product model.Product) ProductResponse {
	resp := ProductResponse{Product: product, CategoryName: "Uncategorized"}
	if product.Category != nil {
		resp.CategoryName = product.Category.Name
	}
	if product.SubCategory != nil {
		resp.SubCategoryName = product.SubCategory.Name
	}
	return resp
}

// List retrieves one page of the tenant's products with optional search and
// category filters
func (h *ProductHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)

	entreprise, ok := resolveTenant(c, h.tenants, tenantEmail(c))
	if !ok {
		return nil
	}

	query := h.db.Model(&model.Product{}).Where("entreprise_id = ?", entreprise.ID)

	// Case-insensitive name-or-reference substring search
	if search := c.QueryParam("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(reference) LIKE ?", pattern, pattern)
	}
	if categoryID := c.QueryParam("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if subCategoryID := c.QueryParam("sub_category_id"); subCategoryID != "" {
		query = query.Where("sub_category_id = ?", subCategoryID)
	}
	if reference := c.QueryParam("reference"); reference != "" {
		query = query.Where("reference LIKE ?", "%"+reference+"%")
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		log.Error("Failed to count products",
			zap.Uint("entreprise_id", entreprise.ID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve products"})
	}

	limit := defaultPageSize
	if raw := c.QueryParam("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	offset := 0
	if raw := c.QueryParam("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	var products []model.Product
	result := query.
		Preload("Category").
		Preload("SubCategory").
		Order("name asc").
		Limit(limit).
		Offset(offset).
		Find(&products)
	if result.Error != nil {
		log.Error("Failed to list products",
			zap.Uint("entreprise_id", entreprise.ID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve products"})
	}

	responses := make([]ProductResponse, 0, len(products))
	for _, product := range products {
		responses = append(responses, toProductResponse(product))
	}

	log.Info("Products retrieved successfully",
		zap.Int("count", len(responses)),
		zap.Int64("total_count", totalCount),
		zap.Uint("entreprise_id", entreprise.ID))
	return c.JSON(http.StatusOK, ProductListResponse{
		Products:   responses,
		TotalCount: totalCount,
		TotalPages: int(math.Ceil(float64(totalCount) / float64(limit))),
	})
}

// Get retrieves a single product by ID
func (h *ProductHandler) Get(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	entreprise, ok := resolveTenant(c, h.tenants, tenantEmail(c))
	if !ok {
		return nil
	}

	var product model.Product
	result := h.db.
		Preload("Category").
		Preload("SubCategory").
		Where("id = ? AND entreprise_id = ?", id, entreprise.ID).
		First(&product)
	if result.Error != nil {
		log.Error("Product not found",
			zap.String("product_id", id),
			zap.Uint("entreprise_id", entreprise.ID),
			zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	}

	log.Info("Product retrieved successfully",
		zap.String("product_id", id),
		zap.String("product_name", product.Name))
	return c.JSON(http.StatusOK, toProductResponse(product))
}

// Create adds a new product. Stock starts at zero: the initial replenishment
// goes through the ledger so it leaves an IN transaction.
func (h *ProductHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Name == "" || req.CategoryID == 0 {
		log.Warn("Missing product name or category")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and category_id are required"})
	}

	entreprise, ok := resolveTenant(c, h.tenants, requestEmail(c, req.Email))
	if !ok {
		return nil
	}

	// The category must belong to the same tenant
	var category model.Category
	if err := h.db.Where("id = ? AND entreprise_id = ?", req.CategoryID, entreprise.ID).First(&category).Error; err != nil {
		log.Error("Category not found for product",
			zap.Uint("category_id", req.CategoryID),
			zap.Uint("entreprise_id", entreprise.ID),
			zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Category not found"})
	}

	product := model.Product{
		Name:          req.Name,
		Description:   req.Description,
		ImageURL:      req.ImageURL,
		Unit:          req.Unit,
		Reference:     req.Reference,
		CategoryID:    req.CategoryID,
		SubCategoryID: req.SubCategoryID,
		EntrepriseID:  entreprise.ID,
	}

	result := h.db.Create(&product)
	if result.Error != nil {
		log.Error("Failed to create product",
			zap.String("name", req.Name),
			zap.Uint("entreprise_id", entreprise.ID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create product"})
	}

	prometheus.RecordCatalogOperation("product", "create")
	log.Info("Product created successfully",
		zap.Uint("product_id", product.ID),
		zap.String("name", product.Name),
		zap.Uint("entreprise_id", product.EntrepriseID))
	return c.JSON(http.StatusCreated, product)
}

// Update updates the descriptive fields of an existing product. Quantity is
// deliberately not updatable here: stock changes only flow through the ledger.
func (h *ProductHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data",
			zap.String("product_id", id),
			zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Name == "" {
		log.Warn("Missing product name", zap.String("product_id", id))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	entreprise, ok := resolveTenant(c, h.tenants, requestEmail(c, req.Email))
	if !ok {
		return nil
	}

	var product model.Product
	result := h.db.Where("id = ? AND entreprise_id = ?", id, entreprise.ID).First(&product)
	if result.Error != nil {
		log.Error("Product not found for update",
			zap.String("product_id", id),
			zap.Uint("entreprise_id", entreprise.ID),
			zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	}

	product.Name = req.Name
	product.Description = req.Description
	product.ImageURL = req.ImageURL
	product.SubCategoryID = req.SubCategoryID
	product.Reference = req.Reference

	result = h.db.Save(&product)
	if result.Error != nil {
		log.Error("Failed to update product",
			zap.String("product_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update product"})
	}

	prometheus.RecordCatalogOperation("product", "update")
	log.Info("Product updated successfully",
		zap.String("product_id", id),
		zap.String("name", product.Name),
		zap.Uint("entreprise_id", product.EntrepriseID))
	return c.JSON(http.StatusOK, product)
}

// Delete removes a product
func (h *ProductHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	entreprise, ok := resolveTenant(c, h.tenants, tenantEmail(c))
	if !ok {
		return nil
	}

	result := h.db.Where("entreprise_id = ?", entreprise.ID).Delete(&model.Product{}, id)
	if result.Error != nil {
		log.Error("Failed to delete product",
			zap.String("product_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete product"})
	}
	if result.RowsAffected == 0 {
		log.Warn("Product not found for deletion",
			zap.String("product_id", id),
			zap.Uint("entreprise_id", entreprise.ID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	}

	prometheus.RecordCatalogOperation("product", "delete")
	log.Info("Product deleted successfully",
		zap.String("product_id", id),
		zap.Uint("entreprise_id", entreprise.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "Product deleted successfully"})
}
