package handler

import (
	"net/http"

	"stock-service/internal/model"
	"stock-service/internal/tenant"
	"stock-service/pkg/logger"
	"stock-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SubCategoryRequest defines the structure for sub-category creation/update requests
type SubCategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	CategoryID  uint   `json:"category_id"`
	Email       string `json:"email"`
}

// SubCategoryHandler serves the sub-category endpoints
type SubCategoryHandler struct {
	db      *gorm.DB
	tenants *tenant.Resolver
}

// NewSubCategoryHandler creates the handler
func NewSubCategoryHandler(db *gorm.DB, tenants *tenant.Resolver) *SubCategoryHandler {
	return &SubCategoryHandler{db: db, tenants: tenants}
}

// List retrieves the tenant's sub-categories with their parent category and
// product count, optionally filtered by category
func (h *SubCategoryHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)

	entreprise, ok := resolveTenant(c, h.tenants, tenantEmail(c))
	if !ok {
		return nil
	}

	query := h.db.Where("entreprise_id = ?", entreprise.ID)
	if categoryID := c.QueryParam("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}

	var subCategories []model.SubCategory
	result := query.Preload("Category").Order("name asc").Find(&subCategories)
	if result.Error != nil {
		log.Error("Failed to retrieve sub-categories",
			zap.Uint("entreprise_id", entreprise.ID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve sub-categories"})
	}

	_, subCategoryCounts, err := productCounts(h.db, entreprise.ID)
	if err != nil {
		log.Error("Failed to count products",
			zap.Uint("entreprise_id", entreprise.ID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to count products"})
	}

	nodes := make([]SubCategoryNode, 0, len(subCategories))
	for _, sub := range subCategories {
		nodes = append(nodes, SubCategoryNode{
			SubCategory:  sub,
			ProductCount: subCategoryCounts[sub.ID],
		})
	}

	log.Info("Sub-categories retrieved successfully",
		zap.Int("count", len(nodes)),
		zap.Uint("entreprise_id", entreprise.ID))
	return c.JSON(http.StatusOK, nodes)
}

// Create adds a new sub-category under one of the tenant's categories
func (h *SubCategoryHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)

	var req SubCategoryRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Name == "" || req.CategoryID == 0 {
		log.Warn("Missing sub-category name or category")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and category_id are required"})
	}

	entreprise, ok := resolveTenant(c, h.tenants, requestEmail(c, req.Email))
	if !ok {
		return nil
	}

	// The parent category must belong to the same tenant
	var category model.Category
	if err := h.db.Where("id = ? AND entreprise_id = ?", req.CategoryID, entreprise.ID).First(&category).Error; err != nil {
		log.Error("Parent category not found",
			zap.Uint("category_id", req.CategoryID),
			zap.Uint("entreprise_id", entreprise.ID),
			zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Category not found"})
	}

	subCategory := model.SubCategory{
		Name:         req.Name,
		Description:  req.Description,
		CategoryID:   req.CategoryID,
		EntrepriseID: entreprise.ID,
	}

	result := h.db.Create(&subCategory)
	if result.Error != nil {
		log.Error("Failed to create sub-category",
			zap.String("name", req.Name),
			zap.Uint("entreprise_id", entreprise.ID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create sub-category"})
	}

	prometheus.RecordCatalogOperation("sub_category", "create")
	log.Info("Sub-category created successfully",
		zap.Uint("sub_category_id", subCategory.ID),
		zap.String("name", subCategory.Name),
		zap.Uint("entreprise_id", subCategory.EntrepriseID))
	return c.JSON(http.StatusCreated, subCategory)
}

// Update updates an existing sub-category
func (h *SubCategoryHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var req SubCategoryRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data",
			zap.String("sub_category_id", id),
			zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Name == "" {
		log.Warn("Missing sub-category name", zap.String("sub_category_id", id))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	entreprise, ok := resolveTenant(c, h.tenants, requestEmail(c, req.Email))
	if !ok {
		return nil
	}

	var subCategory model.SubCategory
	result := h.db.Where("id = ? AND entreprise_id = ?", id, entreprise.ID).First(&subCategory)
	if result.Error != nil {
		log.Error("Sub-category not found for update",
			zap.String("sub_category_id", id),
			zap.Uint("entreprise_id", entreprise.ID),
			zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Sub-category not found"})
	}

	subCategory.Name = req.Name
	subCategory.Description = req.Description

	result = h.db.Save(&subCategory)
	if result.Error != nil {
		log.Error("Failed to update sub-category",
			zap.String("sub_category_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update sub-category"})
	}

	prometheus.RecordCatalogOperation("sub_category", "update")
	log.Info("Sub-category updated successfully",
		zap.String("sub_category_id", id),
		zap.String("name", subCategory.Name),
		zap.Uint("entreprise_id", subCategory.EntrepriseID))
	return c.JSON(http.StatusOK, subCategory)
}

// Delete removes a sub-category
func (h *SubCategoryHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	entreprise, ok := resolveTenant(c, h.tenants, tenantEmail(c))
	if !ok {
		return nil
	}

	result := h.db.Where("entreprise_id = ?", entreprise.ID).Delete(&model.SubCategory{}, id)
	if result.Error != nil {
		log.Error("Failed to delete sub-category",
			zap.String("sub_category_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete sub-category"})
	}
	if result.RowsAffected == 0 {
		log.Warn("Sub-category not found for deletion",
			zap.String("sub_category_id", id),
			zap.Uint("entreprise_id", entreprise.ID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Sub-category not found"})
	}

	prometheus.RecordCatalogOperation("sub_category", "delete")
	log.Info("Sub-category deleted successfully",
		zap.String("sub_category_id", id),
		zap.Uint("entreprise_id", entreprise.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "Sub-category deleted successfully"})
}
