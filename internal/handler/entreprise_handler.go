package handler

import (
	"net/http"

	"stock-service/internal/tenant"
	"stock-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// EntrepriseRequest defines the structure for the lazy tenant upsert
type EntrepriseRequest struct {
	Email string `json:"email" validate:"required"`
	Name  string `json:"name"`
}

// EntrepriseHandler serves the tenant endpoints
type EntrepriseHandler struct {
	tenants *tenant.Resolver
}

// NewEntrepriseHandler creates the handler
func NewEntrepriseHandler(tenants *tenant.Resolver) *EntrepriseHandler {
	return &EntrepriseHandler{tenants: tenants}
}

// Ensure creates the entreprise on first authenticated contact if it does
// not exist yet, and returns the row either way.
func (h *EntrepriseHandler) Ensure(c echo.Context) error {
	log := logger.FromEcho(c)

	var req EntrepriseRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Email == "" {
		log.Warn("Missing email in entreprise request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email is required"})
	}

	entreprise, err := h.tenants.Ensure(req.Email, req.Name)
	if err != nil {
		log.Error("Failed to ensure entreprise",
			zap.String("email", req.Email),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create entreprise"})
	}

	log.Info("Entreprise resolved",
		zap.Uint("entreprise_id", entreprise.ID),
		zap.String("email", entreprise.Email))
	return c.JSON(http.StatusOK, entreprise)
}

// Get returns the entreprise for the given email
func (h *EntrepriseHandler) Get(c echo.Context) error {
	log := logger.FromEcho(c)

	entreprise, ok := resolveTenant(c, h.tenants, tenantEmail(c))
	if !ok {
		return nil
	}

	log.Info("Entreprise retrieved",
		zap.Uint("entreprise_id", entreprise.ID),
		zap.String("email", entreprise.Email))
	return c.JSON(http.StatusOK, entreprise)
}
