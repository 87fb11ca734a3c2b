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

// DestinationRequest defines the structure for destination creation requests
type DestinationRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Email       string `json:"email"`
}

// DestinationResponse is a destination with the number of transactions
// attributed to it
type DestinationResponse struct {
	model.Destination
	TransactionCount int64 `json:"transaction_count"`
}

// DestinationHandler serves the destination endpoints
type DestinationHandler struct {
	db      *gorm.DB
	tenants *tenant.Resolver
}

// NewDestinationHandler creates the handler
func NewDestinationHandler(db *gorm.DB, tenants *tenant.Resolver) *DestinationHandler {
	return &DestinationHandler{db: db, tenants: tenants}
}

// List retrieves the tenant's destinations with their transaction counts,
// sorted by name
func (h *DestinationHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)

	entreprise, ok := resolveTenant(c, h.tenants, tenantEmail(c))
	if !ok {
		return nil
	}

	var destinations []model.Destination
	result := h.db.Where("entreprise_id = ?", entreprise.ID).Order("name asc").Find(&destinations)
	if result.Error != nil {
		log.Error("Failed to retrieve destinations",
			zap.Uint("entreprise_id", entreprise.ID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve destinations"})
	}

	type row struct {
		DestinationID uint
		Total         int64
	}
	var counts []row
	if err := h.db.Model(&model.StockTransaction{}).
		Select("destination_id, count(*) as total").
		Where("entreprise_id = ? AND destination_id IS NOT NULL", entreprise.ID).
		Group("destination_id").
		Scan(&counts).Error; err != nil {
		log.Error("Failed to count destination transactions",
			zap.Uint("entreprise_id", entreprise.ID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve destinations"})
	}
	countByID := make(map[uint]int64, len(counts))
	for _, r := range counts {
		countByID[r.DestinationID] = r.Total
	}

	responses := make([]DestinationResponse, 0, len(destinations))
	for _, destination := range destinations {
		responses = append(responses, DestinationResponse{
			Destination:      destination,
			TransactionCount: countByID[destination.ID],
		})
	}

	log.Info("Destinations retrieved successfully",
		zap.Int("count", len(responses)),
		zap.Uint("entreprise_id", entreprise.ID))
	return c.JSON(http.StatusOK, responses)
}

// Create adds a new destination
func (h *DestinationHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)

	var req DestinationRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Name == "" {
		log.Warn("Missing destination name")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	entreprise, ok := resolveTenant(c, h.tenants, requestEmail(c, req.Email))
	if !ok {
		return nil
	}

	destination := model.Destination{
		Name:         req.Name,
		Description:  req.Description,
		EntrepriseID: entreprise.ID,
	}

	result := h.db.Create(&destination)
	if result.Error != nil {
		log.Error("Failed to create destination",
			zap.String("name", req.Name),
			zap.Uint("entreprise_id", entreprise.ID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create destination"})
	}

	prometheus.RecordCatalogOperation("destination", "create")
	log.Info("Destination created successfully",
		zap.Uint("destination_id", destination.ID),
		zap.String("name", destination.Name),
		zap.Uint("entreprise_id", destination.EntrepriseID))
	return c.JSON(http.StatusCreated, DestinationResponse{Destination: destination})
}
