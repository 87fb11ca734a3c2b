package handler

import (
	"net/http"
	"strconv"
	"time"

	"stock-service/internal/model"
	"stock-service/internal/tenant"
	"stock-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TransactionResponse is a stock transaction enriched with the product and
// destination details the history table renders
type TransactionResponse struct {
	ID            uint               `json:"id"`
	Type          string             `json:"type"`
	Quantity      int                `json:"quantity"`
	ProductID     uint               `json:"product_id"`
	EntrepriseID  uint               `json:"entreprise_id"`
	DestinationID *uint              `json:"destination_id,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	ProductName   string             `json:"product_name"`
	ImageURL      string             `json:"image_url,omitempty"`
	Unit          string             `json:"unit,omitempty"`
	CategoryName  string             `json:"category_name"`
	Destination   *model.Destination `json:"destination,omitempty"`
}

// TransactionHandler serves the read-only transaction history. There are no
// mutation endpoints: transaction rows are written exclusively by the ledger.
type TransactionHandler struct {
	db      *gorm.DB
	tenants *tenant.Resolver
}

// NewTransactionHandler creates the handler
func NewTransactionHandler(db *gorm.DB, tenants *tenant.Resolver) *TransactionHandler {
	return &TransactionHandler{db: db, tenants: tenants}
}

// List retrieves the tenant's transactions, newest first, with optional
// product, type, date range and limit filters
func (h *TransactionHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)

	entreprise, ok := resolveTenant(c, h.tenants, tenantEmail(c))
	if !ok {
		return nil
	}

	query := h.db.Where("entreprise_id = ?", entreprise.ID)

	if productID := c.QueryParam("product_id"); productID != "" {
		query = query.Where("product_id = ?", productID)
	}
	if movementType := c.QueryParam("type"); movementType != "" {
		if movementType != model.TransactionIn && movementType != model.TransactionOut {
			log.Warn("Invalid transaction type filter", zap.String("type", movementType))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "type must be IN or OUT"})
		}
		query = query.Where("type = ?", movementType)
	}
	if from := c.QueryParam("from"); from != "" {
		parsed, err := time.Parse(time.RFC3339, from)
		if err != nil {
			log.Warn("Invalid from parameter", zap.String("from", from), zap.Error(err))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "from must be an RFC3339 timestamp"})
		}
		query = query.Where("created_at >= ?", parsed)
	}
	if to := c.QueryParam("to"); to != "" {
		parsed, err := time.Parse(time.RFC3339, to)
		if err != nil {
			log.Warn("Invalid to parameter", zap.String("to", to), zap.Error(err))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must be an RFC3339 timestamp"})
		}
		query = query.Where("created_at <= ?", parsed)
	}
	if raw := c.QueryParam("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			query = query.Limit(parsed)
		}
	}

	var transactions []model.StockTransaction
	result := query.
		Preload("Product").
		Preload("Product.Category").
		Preload("Destination").
		Order("created_at desc").
		Find(&transactions)
	if result.Error != nil {
		log.Error("Failed to retrieve transactions",
			zap.Uint("entreprise_id", entreprise.ID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve transactions"})
	}

	responses := make([]TransactionResponse, 0, len(transactions))
	for _, tx := range transactions {
		resp := TransactionResponse{
			ID:            tx.ID,
			Type:          tx.Type,
			Quantity:      tx.Quantity,
			ProductID:     tx.ProductID,
			EntrepriseID:  tx.EntrepriseID,
			DestinationID: tx.DestinationID,
			CreatedAt:     tx.CreatedAt,
			Destination:   tx.Destination,
		}
		if tx.Product != nil {
			resp.ProductName = tx.Product.Name
			resp.ImageURL = tx.Product.ImageURL
			resp.Unit = tx.Product.Unit
			if tx.Product.Category != nil {
				resp.CategoryName = tx.Product.Category.Name
			}
		}
		responses = append(responses, resp)
	}

	log.Info("Transactions retrieved successfully",
		zap.Int("count", len(responses)),
		zap.Uint("entreprise_id", entreprise.ID))
	return c.JSON(http.StatusOK, responses)
}
