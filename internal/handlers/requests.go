package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sgeneral-iua/portal-sg/internal/middleware"
	"github.com/sgeneral-iua/portal-sg/internal/requests"
	"github.com/sgeneral-iua/portal-sg/internal/utils"
	"go.uber.org/zap"
)

// CreateRequestBody selects the title to request
type CreateRequestBody struct {
	TitleID int64 `json:"titleId" binding:"required,gt=0" label:"Título"`
}

// AvailableTitles godoc
// @Summary Títulos disponibles
// @Description Títulos que la Secretaría registró como disponibles para iniciar una solicitud. Un fallo de la API se informa en fetchError.
// @Tags requests
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} requests.TitleList
// @Failure 401 {object} models.ErrorResponse
// @Router /titles/available [get]
func (h *Handler) AvailableTitles(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.requests.Available(c.Request.Context(), session))
}

// CreateRequest godoc
// @Summary Generar solicitud
// @Description Genera la solicitud para un título disponible. El campo next indica la pantalla siguiente.
// @Tags requests
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body CreateRequestBody true "Título a solicitar"
// @Success 201 {object} requests.Created
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse "El título no tiene tipo de solicitud"
// @Failure 502 {object} models.ErrorResponse
// @Router /requests [post]
func (h *Handler) CreateRequest(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}
	var body CreateRequestBody
	if !bindJSON(c, &body) {
		return
	}

	created, err := h.requests.Create(c.Request.Context(), session, body.TitleID)
	if err != nil {
		status := upstreamStatus(err)
		switch {
		case errors.Is(err, requests.ErrMissingRequestType):
			status = http.StatusUnprocessableEntity
		case errors.Is(err, requests.ErrTitleNotAvailable), errors.Is(err, requests.ErrTitlesNotLoaded):
			status = http.StatusConflict
		}
		errorJSON(c, status, requests.ErrorMessage(err))
		return
	}

	if err := utils.LogRequestCreated(c.Request.Context(), utils.GetAuditContextFromGin(c), created.Request.IDRequest, body.TitleID); err != nil {
		h.logger.Warn("failed to audit request creation", zap.Error(err))
	}
	middleware.MarkAudited(c)
	c.JSON(http.StatusCreated, created)
}
