package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sgeneral-iua/portal-sg/internal/dashboard"
)

// GetDashboard godoc
// @Summary Panel del usuario
// @Description Perfil, menú de acciones y solicitudes del usuario. Si la API falla se devuelve el menú por defecto con degraded=true.
// @Tags dashboard
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dashboard.Dashboard
// @Failure 401 {object} models.ErrorResponse
// @Router /dashboard [get]
func (h *Handler) GetDashboard(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dashboard.Build(c.Request.Context(), h.api, session, h.logger))
}
