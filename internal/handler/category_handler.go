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

// CategoryRequest defines the structure for category creation/update requests
type CategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Email       string `json:"email"`
}

// SubCategoryNode is a sub-category with its product count
type SubCategoryNode struct {
	model.SubCategory
	ProductCount int64 `json:"product_count"`
}

// CategoryNode is a category with its sub-categories and product count
type CategoryNode struct {
	model.Category
	SubCategories []SubCategoryNode `json:"sub_categories"`
	ProductCount  int64             `json:"product_count"`
}

// CategoryHandler serves the category endpoints
type CategoryHandler struct {
	db      *gorm.DB
	tenants *tenant.Resolver
}

// NewCategoryHandler creates the handler
func NewCategoryHandler(db *gorm.DB, tenants *tenant.Resolver) *CategoryHandler {
	return &CategoryHandler{db: db, tenants: tenants}
}

// List retrieves all categories of the tenant, sorted by name
func (h *CategoryHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)

	entreprise, ok := resolveTenant(c, h.tenants, tenantEmail(c))
	if !ok {
		return nil
	}

	var categories []model.Category
	result := h.db.Where("entreprise_id = ?", entreprise.ID).Order("name asc").Find(&categories)
	if result.Error != nil {
		log.Error("Failed to retrieve categories",
			zap.Uint("entreprise_id", entreprise.ID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve categories"})
	}

	log.Info("Categories retrieved successfully",
		zap.Int("count", len(categories)),
		zap.Uint("entreprise_id", entreprise.ID))
	return c.JSON(http.StatusOK, categories)
}

// Tree retrieves categories with their sub-categories and product counts,
// the shape the dashboard chart renders.
func (h *CategoryHandler) Tree(c echo.Context) error {
	log := logger.FromEcho(c)

	entreprise, ok := resolveTenant(c, h.tenants, tenantEmail(c))
	if !ok {
		return nil
	}

	var categories []model.Category
	if err := h.db.Where("entreprise_id = ?", entreprise.ID).Order("name asc").Find(&categories).Error; err != nil {
		log.Error("Failed to retrieve categories",
			zap.Uint("entreprise_id", entreprise.ID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve categories"})
	}

	var subCategories []model.SubCategory
	if err := h.db.Where("entreprise_id = ?", entreprise.ID).Order("name asc").Find(&subCategories).Error; err != nil {
		log.Error("Failed to retrieve sub-categories",
			zap.Uint("entreprise_id", entreprise.ID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve sub-categories"})
	}

	categoryCounts, subCategoryCounts, err := productCounts(h.db, entreprise.ID)
	if err != nil {
		log.Error("Failed to count products",
			zap.Uint("entreprise_id", entreprise.ID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to count products"})
	}

	subsByCategory := make(map[uint][]SubCategoryNode)
	for _, sub := range subCategories {
		subsByCategory[sub.CategoryID] = append(subsByCategory[sub.CategoryID], SubCategoryNode{
			SubCategory:  sub,
			ProductCount: subCategoryCounts[sub.ID],
		})
	}

	tree := make([]CategoryNode, 0, len(categories))
	for _, category := range categories {
		subs := subsByCategory[category.ID]
		if subs == nil {
			subs = []SubCategoryNode{}
		}
		tree = append(tree, CategoryNode{
			Category:      category,
			SubCategories: subs,
			ProductCount:  categoryCounts[category.ID],
		})
	}

	log.Info("Category tree retrieved successfully",
		zap.Int("count", len(tree)),
		zap.Uint("entreprise_id", entreprise.ID))
	return c.JSON(http.StatusOK, tree)
}

// Get retrieves a specific category by ID
func (h *CategoryHandler) Get(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	entreprise, ok := resolveTenant(c, h.tenants, tenantEmail(c))
	if !ok {
		return nil
	}

	var category model.Category
	result := h.db.Where("id = ? AND entreprise_id = ?", id, entreprise.ID).First(&category)
	if result.Error != nil {
		log.Error("Category not found or does not belong to entreprise",
			zap.String("category_id", id),
			zap.Uint("entreprise_id", entreprise.ID),
			zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Category not found"})
	}

	return c.JSON(http.StatusOK, category)
}

// Create adds a new category
func (h *CategoryHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Name == "" {
		log.Warn("Missing category name")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	entreprise, ok := resolveTenant(c, h.tenants, requestEmail(c, req.Email))
	if !ok {
		return nil
	}

	category := model.Category{
		Name:         req.Name,
		Description:  req.Description,
		EntrepriseID: entreprise.ID,
	}

	result := h.db.Create(&category)
	if result.Error != nil {
		log.Error("Failed to create category",
			zap.String("name", req.Name),
			zap.Uint("entreprise_id", entreprise.ID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create category"})
	}

	prometheus.RecordCatalogOperation("category", "create")
	log.Info("Category created successfully",
		zap.Uint("category_id", category.ID),
		zap.String("name", category.Name),
		zap.Uint("entreprise_id", category.EntrepriseID))
	return c.JSON(http.StatusCreated, category)
}

// Update updates an existing category
func (h *CategoryHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data",
			zap.String("category_id", id),
			zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Name == "" {
		log.Warn("Missing category name", zap.String("category_id", id))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	entreprise, ok := resolveTenant(c, h.tenants, requestEmail(c, req.Email))
	if !ok {
		return nil
	}

	var category model.Category
	result := h.db.Where("id = ? AND entreprise_id = ?", id, entreprise.ID).First(&category)
	if result.Error != nil {
		log.Error("Category not found for update",
			zap.String("category_id", id),
			zap.Uint("entreprise_id", entreprise.ID),
			zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Category not found"})
	}

	category.Name = req.Name
	category.Description = req.Description

	result = h.db.Save(&category)
	if result.Error != nil {
		log.Error("Failed to update category",
			zap.String("category_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update category"})
	}

	prometheus.RecordCatalogOperation("category", "update")
	log.Info("Category updated successfully",
		zap.String("category_id", id),
		zap.String("name", category.Name),
		zap.Uint("entreprise_id", category.EntrepriseID))
	return c.JSON(http.StatusOK, category)
}

// Delete removes a category
func (h *CategoryHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	entreprise, ok := resolveTenant(c, h.tenants, tenantEmail(c))
	if !ok {
		return nil
	}

	result := h.db.Where("entreprise_id = ?", entreprise.ID).Delete(&model.Category{}, id)
	if result.Error != nil {
		log.Error("Failed to delete category",
			zap.String("category_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete category"})
	}
	if result.RowsAffected == 0 {
		log.Warn("Category not found for deletion",
			zap.String("category_id", id),
			zap.Uint("entreprise_id", entreprise.ID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Category not found"})
	}

	prometheus.RecordCatalogOperation("category", "delete")
	log.Info("Category deleted successfully",
		zap.String("category_id", id),
		zap.Uint("entreprise_id", entreprise.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "Category deleted successfully"})
}

// productCounts returns per-category and per-sub-category product counts for
// a tenant.
func productCounts(db *gorm.DB, entrepriseID uint) (map[uint]int64, map[uint]int64, error) {
	type row struct {
		GroupID uint
		Total   int64
	}

	var byCategory []row
	if err := db.Model(&model.Product{}).
		Select("category_id as group_id, count(*) as total").
		Where("entreprise_id = ?", entrepriseID).
		Group("category_id").
		Scan(&byCategory).Error; err != nil {
		return nil, nil, err
	}

	var bySubCategory []row
	if err := db.Model(&model.Product{}).
		Select("sub_category_id as group_id, count(*) as total").
		Where("entreprise_id = ? AND sub_category_id IS NOT NULL", entrepriseID).
		Group("sub_category_id").
		Scan(&bySubCategory).Error; err != nil {
		return nil, nil, err
	}

	categoryCounts := make(map[uint]int64, len(byCategory))
	for _, r := range byCategory {
		categoryCounts[r.GroupID] = r.Total
	}
	subCategoryCounts := make(map[uint]int64, len(bySubCategory))
	for _, r := range bySubCategory {
		subCategoryCounts[r.GroupID] = r.Total
	}
	return categoryCounts, subCategoryCounts, nil
}
