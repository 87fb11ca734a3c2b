package handler

import (
	"net/http"

	"stock-service/internal/model"
	"stock-service/internal/tenant"
	"stock-service/pkg/config"
	"stock-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OverviewStats are the dashboard headline counts
type OverviewStats struct {
	TotalProducts     int64 `json:"total_products"`
	TotalCategories   int64 `json:"total_categories"`
	TotalTransactions int64 `json:"total_transactions"`
}

// ChartSlice is one slice of the category distribution chart
type ChartSlice struct {
	Name          string `json:"name"`
	Value         int64  `json:"value"`
	SubCategories []struct {
		Name  string `json:"name"`
		Value int64  `json:"value"`
	} `json:"sub_categories,omitempty"`
}

// CriticalProduct is a low or out-of-stock product line
type CriticalProduct struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	Quantity        int    `json:"quantity"`
	CategoryName    string `json:"category_name"`
	SubCategoryName string `json:"sub_category_name,omitempty"`
	ImageURL        string `json:"image_url,omitempty"`
	Reference       string `json:"reference,omitempty"`
}

// StockSummary partitions the tenant's products by stock level
type StockSummary struct {
	InStockCount     int               `json:"in_stock_count"`
	LowStockCount    int               `json:"low_stock_count"`
	OutOfStockCount  int               `json:"out_of_stock_count"`
	CriticalProducts []CriticalProduct `json:"critical_products"`
}

// StatsHandler serves advisory dashboard statistics. Per the propagation
// policy these reads degrade to zero values on storage failure instead of
// propagating: they are display-only, never transactional.
type StatsHandler struct {
	db        *gorm.DB
	tenants   *tenant.Resolver
	threshold int
}

// NewStatsHandler creates the handler
func NewStatsHandler(db *gorm.DB, tenants *tenant.Resolver, cfg *config.StockConfig) *StatsHandler {
	return &StatsHandler{db: db, tenants: tenants, threshold: cfg.LowStockThreshold}
}

// Overview returns the headline counts for the tenant
func (h *StatsHandler) Overview(c echo.Context) error {
	log := logger.FromEcho(c)

	entreprise, ok := resolveTenant(c, h.tenants, tenantEmail(c))
	if !ok {
		return nil
	}

	var stats OverviewStats
	if err := h.db.Model(&model.Product{}).Where("entreprise_id = ?", entreprise.ID).Count(&stats.TotalProducts).Error; err != nil {
		log.Warn("Failed to count products for overview, returning zeros",
			zap.Uint("entreprise_id", entreprise.ID),
			zap.Error(err))
		return c.JSON(http.StatusOK, OverviewStats{})
	}
	if err := h.db.Model(&model.Category{}).Where("entreprise_id = ?", entreprise.ID).Count(&stats.TotalCategories).Error; err != nil {
		log.Warn("Failed to count categories for overview, returning zeros",
			zap.Uint("entreprise_id", entreprise.ID),
			zap.Error(err))
		return c.JSON(http.StatusOK, OverviewStats{})
	}
	if err := h.db.Model(&model.StockTransaction{}).Where("entreprise_id = ?", entreprise.ID).Count(&stats.TotalTransactions).Error; err != nil {
		log.Warn("Failed to count transactions for overview, returning zeros",
			zap.Uint("entreprise_id", entreprise.ID),
			zap.Error(err))
		return c.JSON(http.StatusOK, OverviewStats{})
	}

	return c.JSON(http.StatusOK, stats)
}

// Distribution returns product counts per category and sub-category
func (h *StatsHandler) Distribution(c echo.Context) error {
	log := logger.FromEcho(c)

	entreprise, ok := resolveTenant(c, h.tenants, tenantEmail(c))
	if !ok {
		return nil
	}

	var categories []model.Category
	if err := h.db.Where("entreprise_id = ?", entreprise.ID).Order("name asc").Find(&categories).Error; err != nil {
		log.Warn("Failed to load categories for distribution, returning empty",
			zap.Uint("entreprise_id", entreprise.ID),
			zap.Error(err))
		return c.JSON(http.StatusOK, []ChartSlice{})
	}
	var subCategories []model.SubCategory
	if err := h.db.Where("entreprise_id = ?", entreprise.ID).Order("name asc").Find(&subCategories).Error; err != nil {
		log.Warn("Failed to load sub-categories for distribution, returning empty",
			zap.Uint("entreprise_id", entreprise.ID),
			zap.Error(err))
		return c.JSON(http.StatusOK, []ChartSlice{})
	}

	categoryCounts, subCategoryCounts, err := productCounts(h.db, entreprise.ID)
	if err != nil {
		log.Warn("Failed to count products for distribution, returning empty",
			zap.Uint("entreprise_id", entreprise.ID),
			zap.Error(err))
		return c.JSON(http.StatusOK, []ChartSlice{})
	}

	subsByCategory := make(map[uint][]model.SubCategory)
	for _, sub := range subCategories {
		subsByCategory[sub.CategoryID] = append(subsByCategory[sub.CategoryID], sub)
	}

	slices := make([]ChartSlice, 0, len(categories))
	for _, category := range categories {
		slice := ChartSlice{Name: category.Name, Value: categoryCounts[category.ID]}
		for _, sub := range subsByCategory[category.ID] {
			slice.SubCategories = append(slice.SubCategories, struct {
				Name  string `json:"name"`
				Value int64  `json:"value"`
			}{Name: sub.Name, Value: subCategoryCounts[sub.ID]})
		}
		slices = append(slices, slice)
	}

	return c.JSON(http.StatusOK, slices)
}

// Summary partitions products into in-stock, low-stock and out-of-stock and
// lists the critical ones
func (h *StatsHandler) Summary(c echo.Context) error {
	log := logger.FromEcho(c)

	entreprise, ok := resolveTenant(c, h.tenants, tenantEmail(c))
	if !ok {
		return nil
	}

	var products []model.Product
	if err := h.db.
		Preload("Category").
		Preload("SubCategory").
		Where("entreprise_id = ?", entreprise.ID).
		Find(&products).Error; err != nil {
		log.Warn("Failed to load products for summary, returning zeros",
			zap.Uint("entreprise_id", entreprise.ID),
			zap.Error(err))
		return c.JSON(http.StatusOK, StockSummary{CriticalProducts: []CriticalProduct{}})
	}

	summary := StockSummary{CriticalProducts: []CriticalProduct{}}
	for _, product := range products {
		switch {
		case product.Quantity > h.threshold:
			summary.InStockCount++
			continue
		case product.Quantity > 0:
			summary.LowStockCount++
		default:
			summary.OutOfStockCount++
		}

		critical := CriticalProduct{
			ID:           product.ID,
			Name:         product.Name,
			Quantity:     product.Quantity,
			CategoryName: "Uncategorized",
			ImageURL:     product.ImageURL,
		}
		if product.Category != nil {
			critical.CategoryName = product.Category.Name
		}
		if product.SubCategory != nil {
			critical.SubCategoryName = product.SubCategory.Name
		}
		if product.Reference != nil {
			critical.Reference = *product.Reference
		}
		summary.CriticalProducts = append(summary.CriticalProducts, critical)
	}

	return c.JSON(http.StatusOK, summary)
}
