package handler

import (
	"errors"
	"net/http"
	"strconv"

	"stock-service/internal/ledger"
	"stock-service/internal/tenant"
	"stock-service/pkg/logger"
	"stock-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ReplenishRequest defines the structure for inbound stock movements
type ReplenishRequest struct {
	ProductID uint   `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
	Email     string `json:"email"`
}

// DeductRequest defines the structure for outbound stock movements
type DeductRequest struct {
	Items         []ledger.OrderItem `json:"items" validate:"required"`
	DestinationID *uint              `json:"destination_id"`
	Email         string             `json:"email"`
}

// StockHandler exposes the ledger operations over HTTP
type StockHandler struct {
	ledger  *ledger.Ledger
	tenants *tenant.Resolver
}

// NewStockHandler creates the handler
func NewStockHandler(l *ledger.Ledger, tenants *tenant.Resolver) *StockHandler {
	return &StockHandler{ledger: l, tenants: tenants}
}

// Replenish records an inbound stock movement
func (h *StockHandler) Replenish(c echo.Context) error {
	log := logger.FromEcho(c)

	var req ReplenishRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	entreprise, ok := resolveTenant(c, h.tenants, requestEmail(c, req.Email))
	if !ok {
		return nil
	}

	product, err := h.ledger.Replenish(c.Request().Context(), entreprise.ID, req.ProductID, req.Quantity)
	if err != nil {
		prometheus.RecordStockOperation("replenish", "failure")
		return h.writeLedgerError(c, "replenish", entreprise.ID, err)
	}

	prometheus.RecordStockOperation("replenish", "success")
	prometheus.UpdateProductInventory(strconv.FormatUint(uint64(product.ID), 10), product.Name, float64(product.Quantity))
	log.Info("Stock replenished",
		zap.Uint("product_id", product.ID),
		zap.Int("quantity", req.Quantity),
		zap.Int("new_quantity", product.Quantity),
		zap.Uint("entreprise_id", entreprise.ID))
	return c.JSON(http.StatusOK, product)
}

// Deduct records an outbound stock movement for a batch of order items
func (h *StockHandler) Deduct(c echo.Context) error {
	log := logger.FromEcho(c)

	var req DeductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	entreprise, ok := resolveTenant(c, h.tenants, requestEmail(c, req.Email))
	if !ok {
		return nil
	}

	products, err := h.ledger.Deduct(c.Request().Context(), entreprise.ID, req.Items, req.DestinationID)
	if err != nil {
		prometheus.RecordStockOperation("deduct", "failure")
		return h.writeLedgerError(c, "deduct", entreprise.ID, err)
	}

	prometheus.RecordStockOperation("deduct", "success")
	for _, product := range products {
		prometheus.UpdateProductInventory(strconv.FormatUint(uint64(product.ID), 10), product.Name, float64(product.Quantity))
	}
	log.Info("Stock deducted",
		zap.Int("items", len(req.Items)),
		zap.Uint("entreprise_id", entreprise.ID))
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// writeLedgerError maps the ledger error taxonomy to HTTP responses. Write
// failures are never silently degraded.
func (h *StockHandler) writeLedgerError(c echo.Context, operation string, entrepriseID uint, err error) error {
	log := logger.FromEcho(c)

	var notFound *ledger.ProductNotFoundError
	var insufficient *ledger.InsufficientStockError
	switch {
	case errors.Is(err, ledger.ErrInvalidQuantity), errors.Is(err, ledger.ErrNoItems):
		log.Warn("Ledger operation rejected",
			zap.String("operation", operation),
			zap.Uint("entreprise_id", entrepriseID),
			zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.As(err, &notFound):
		log.Warn("Ledger operation on unknown product",
			zap.String("operation", operation),
			zap.Uint("entreprise_id", entrepriseID),
			zap.Uints("product_ids", notFound.ProductIDs))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error":       err.Error(),
			"product_ids": notFound.ProductIDs,
		})
	case errors.As(err, &insufficient):
		log.Warn("Ledger operation rejected for insufficient stock",
			zap.String("operation", operation),
			zap.Uint("entreprise_id", entrepriseID),
			zap.Int("shortfalls", len(insufficient.Shortfalls)))
		return c.JSON(http.StatusConflict, echo.Map{
			"error":      err.Error(),
			"shortfalls": insufficient.Shortfalls,
		})
	default:
		log.Error("Ledger operation failed",
			zap.String("operation", operation),
			zap.Uint("entreprise_id", entrepriseID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Stock operation failed"})
	}
}
