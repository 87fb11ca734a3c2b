package handler

import (
	"errors"
	"net/http"

	"stock-service/internal/model"
	"stock-service/internal/tenant"

	"github.com/labstack/echo/v4"
)

// tenantEmail returns the tenant identity for the request: the email claim
// extracted by the auth middleware when a token was presented, otherwise the
// explicit email parameter the web client sends.
func tenantEmail(c echo.Context) string {
	if email, ok := c.Get("email").(string); ok && email != "" {
		return email
	}
	return c.QueryParam("email")
}

// requestEmail is tenantEmail with a body-supplied fallback for POST/PUT
// requests whose payload carries the email field.
func requestEmail(c echo.Context, bodyEmail string) string {
	if email := tenantEmail(c); email != "" {
		return email
	}
	return bodyEmail
}

// resolveTenant resolves the request's tenant or writes the error response.
// The returned bool reports whether the handler may continue.
func resolveTenant(c echo.Context, tenants *tenant.Resolver, email string) (*model.Entreprise, bool) {
	if email == "" {
		c.JSON(http.StatusBadRequest, echo.Map{"error": "email is required"})
		return nil, false
	}
	entreprise, err := tenants.ByEmail(email)
	if err != nil {
		if errors.Is(err, tenant.ErrEntrepriseNotFound) {
			c.JSON(http.StatusNotFound, echo.Map{"error": "Entreprise not found"})
		} else {
			c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to resolve entreprise"})
		}
		return nil, false
	}
	return entreprise, true
}
