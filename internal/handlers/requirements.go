package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sgeneral-iua/portal-sg/internal/middleware"
	"github.com/sgeneral-iua/portal-sg/internal/models"
	"github.com/sgeneral-iua/portal-sg/internal/requirements"
	"github.com/sgeneral-iua/portal-sg/internal/utils"
	"go.uber.org/zap"
)

// ReviewBody is a reviewer's decision on one requirement
type ReviewBody struct {
	NextStatusID int64   `json:"nextStatusId" binding:"required,oneof=3 4" label:"Decisión"`
	Comment      *string `json:"comment"`
}

// CommentBody is the reviewer's draft comment
type CommentBody struct {
	Comment string `json:"comment" binding:"max=2000" label:"Comentario"`
}

// requirementsFor returns the session's controller for a request, loading it
// when absent or when refresh is set. Failed loads are not kept so the next
// call retries.
func (h *Handler) requirementsFor(c *gin.Context, session *models.Session, requestID int64, refresh bool) *requirements.Controller {
	if !refresh {
		if ctrl, ok := h.registry.Get(session.ID, requestID); ok {
			return ctrl
		}
	}
	viewer := requirements.Viewer{
		UserID:   session.UserID,
		Token:    session.AccessToken,
		Reviewer: session.IsReviewer(h.reviewerThreshold),
	}
	ctrl := requirements.Load(c.Request.Context(), h.api, viewer, requestID, h.logger)
	if ctrl.View().FetchError == nil {
		h.registry.Put(session.ID, ctrl)
	}
	return ctrl
}

// requirementTarget resolves the session, request and item of an item route
func (h *Handler) requirementTarget(c *gin.Context) (*models.Session, *requirements.Controller, int64, bool) {
	session, ok := currentSession(c)
	if !ok {
		return nil, nil, 0, false
	}
	requestID, ok := pathID(c, "requestId")
	if !ok {
		return nil, nil, 0, false
	}
	instanceID, ok := pathID(c, "instanceId")
	if !ok {
		return nil, nil, 0, false
	}
	ctrl := h.requirementsFor(c, session, requestID, false)
	if view := ctrl.View(); view.FetchError != nil {
		errorJSON(c, http.StatusBadGateway, *view.FetchError)
		return nil, nil, 0, false
	}
	return session, ctrl, instanceID, true
}

// requirementStatus maps a controller error to an HTTP status. ok is false
// for errors that leave no item to render.
func requirementStatus(err error) (status int, ok bool) {
	switch {
	case errors.Is(err, requirements.ErrItemNotFound):
		return http.StatusNotFound, false
	case errors.Is(err, requirements.ErrNoFile):
		return http.StatusNotFound, false
	case errors.Is(err, requirements.ErrNotReviewer):
		return http.StatusForbidden, false
	case errors.Is(err, requirements.ErrUploadDisabled):
		return http.StatusForbidden, false
	case errors.Is(err, requirements.ErrItemBusy):
		return http.StatusConflict, false
	case errors.Is(err, requirements.ErrReviewNotAllowed):
		return http.StatusConflict, false
	case errors.Is(err, requirements.ErrEmptyResponse):
		return http.StatusBadGateway, true
	}
	return upstreamStatus(err), true
}

var requirementMessages = map[error]string{
	requirements.ErrItemNotFound:     "El requisito no existe en esta solicitud.",
	requirements.ErrNoFile:           "El requisito no tiene un documento cargado.",
	requirements.ErrNotReviewer:      "Solo un revisor puede realizar esta acción.",
	requirements.ErrUploadDisabled:   "No se puede cargar un documento para este requisito.",
	requirements.ErrItemBusy:         "Ya hay una operación en curso para este requisito.",
	requirements.ErrReviewNotAllowed: "El requisito no admite esta decisión.",
}

func requirementMessage(err error) string {
	for sentinel, msg := range requirementMessages {
		if errors.Is(err, sentinel) {
			return msg
		}
	}
	return err.Error()
}

// respondItem answers with the item after an action. Remote failures keep the
// item's previous record and carry the message in errorMessage.
func respondItem(c *gin.Context, ctrl *requirements.Controller, instanceID int64, opErr error) {
	status := http.StatusOK
	if opErr != nil {
		var ok bool
		status, ok = requirementStatus(opErr)
		if !ok {
			errorJSON(c, status, requirementMessage(opErr))
			return
		}
	}
	item, err := ctrl.Item(instanceID)
	if err != nil {
		errorJSON(c, http.StatusNotFound, requirementMessage(err))
		return
	}
	c.JSON(status, item)
}

// ListRequirements godoc
// @Summary Requisitos de una solicitud
// @Description Lista los requisitos visibles para la sesión con las acciones habilitadas. Los requisitos administrativos solo se muestran a revisores. Un fallo de la API se informa en fetchError.
// @Tags requirements
// @Produce json
// @Security ApiKeyAuth
// @Param requestId path int true "Solicitud"
// @Param refresh query bool false "Volver a consultar la API"
// @Success 200 {object} requirements.View
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /requests/{requestId}/requirements [get]
func (h *Handler) ListRequirements(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}
	requestID, ok := pathID(c, "requestId")
	if !ok {
		return
	}
	ctrl := h.requirementsFor(c, session, requestID, c.Query("refresh") == "true")
	c.JSON(http.StatusOK, ctrl.View())
}

// UploadRequirement godoc
// @Summary Cargar documento
// @Description Envía el documento de un requisito y lo marca como completado
// @Tags requirements
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param requestId path int true "Solicitud"
// @Param instanceId path int true "Requisito"
// @Param file formData file true "Documento"
// @Success 200 {object} requirements.ItemView
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 413 {object} models.ErrorResponse
// @Failure 502 {object} requirements.ItemView
// @Router /requests/{requestId}/requirements/{instanceId}/file [post]
func (h *Handler) UploadRequirement(c *gin.Context) {
	session, ctrl, instanceID, ok := h.requirementTarget(c)
	if !ok {
		return
	}

	// Multipart framing needs some room over the file itself
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.uploadMaxBytes+64<<10)
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			errorJSON(c, http.StatusRequestEntityTooLarge, "El archivo supera el tamaño permitido.")
			return
		}
		errorJSON(c, http.StatusBadRequest, "Seleccioná un archivo.")
		return
	}
	if header.Size > h.uploadMaxBytes {
		errorJSON(c, http.StatusRequestEntityTooLarge, "El archivo supera el tamaño permitido.")
		return
	}
	f, err := header.Open()
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "No pudimos leer el archivo.")
		return
	}
	content, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "No pudimos leer el archivo.")
		return
	}

	file := models.UploadFile{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     content,
	}
	opErr := ctrl.Upload(c.Request.Context(), instanceID, file)
	if opErr == nil {
		auditCtx := utils.GetAuditContextFromGin(c)
		if err := utils.LogRequirementUpload(c.Request.Context(), auditCtx, ctrl.RequestID(), instanceID, file.FileName); err != nil {
			h.logger.Warn("failed to audit requirement upload", zap.Error(err))
		}
		middleware.MarkAudited(c)
	} else {
		h.logger.Debug("requirement upload refused or failed",
			zap.String("session_id", session.ID),
			zap.Int64("instance_id", instanceID),
			zap.Error(opErr))
	}
	respondItem(c, ctrl, instanceID, opErr)
}

// DownloadRequirement godoc
// @Summary Descargar documento
// @Description Descarga el documento cargado para un requisito
// @Tags requirements
// @Produce octet-stream
// @Security ApiKeyAuth
// @Param requestId path int true "Solicitud"
// @Param instanceId path int true "Requisito"
// @Success 200 {file} file
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 502 {object} requirements.ItemView
// @Router /requests/{requestId}/requirements/{instanceId}/file [get]
func (h *Handler) DownloadRequirement(c *gin.Context) {
	_, ctrl, instanceID, ok := h.requirementTarget(c)
	if !ok {
		return
	}
	blob, err := ctrl.Download(c.Request.Context(), instanceID)
	if err != nil {
		respondItem(c, ctrl, instanceID, err)
		return
	}
	auditCtx := utils.GetAuditContextFromGin(c)
	if err := utils.LogRequirementDownload(c.Request.Context(), auditCtx, ctrl.RequestID(), instanceID); err != nil {
		h.logger.Warn("failed to audit requirement download", zap.Error(err))
	}
	sendFile(c, blob, requirements.DownloadFileName(instanceID))
}

// ReviewRequirement godoc
// @Summary Aceptar o rechazar un requisito
// @Description Registra la decisión del revisor. nextStatusId 3 acepta y 4 rechaza; sin comment se envía el comentario guardado.
// @Tags requirements
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param requestId path int true "Solicitud"
// @Param instanceId path int true "Requisito"
// @Param review body ReviewBody true "Decisión"
// @Success 200 {object} requirements.ItemView
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 502 {object} requirements.ItemView
// @Router /requests/{requestId}/requirements/{instanceId}/review [post]
func (h *Handler) ReviewRequirement(c *gin.Context) {
	_, ctrl, instanceID, ok := h.requirementTarget(c)
	if !ok {
		return
	}
	var body ReviewBody
	if !bindJSON(c, &body) {
		return
	}

	var oldStatus int64
	if record, err := ctrl.Record(instanceID); err == nil {
		oldStatus = record.StatusID()
	}
	opErr := ctrl.Review(c.Request.Context(), instanceID, body.NextStatusID, body.Comment)
	if opErr == nil {
		auditCtx := utils.GetAuditContextFromGin(c)
		if err := utils.LogRequirementReview(c.Request.Context(), auditCtx, ctrl.RequestID(), instanceID, oldStatus, body.NextStatusID); err != nil {
			h.logger.Warn("failed to audit requirement review", zap.Error(err))
		}
		middleware.MarkAudited(c)
	}
	respondItem(c, ctrl, instanceID, opErr)
}

// SetRequirementComment godoc
// @Summary Guardar comentario de revisión
// @Description Guarda el comentario que acompañará la próxima decisión sobre el requisito
// @Tags requirements
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param requestId path int true "Solicitud"
// @Param instanceId path int true "Requisito"
// @Param comment body CommentBody true "Comentario"
// @Success 200 {object} requirements.ItemView
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /requests/{requestId}/requirements/{instanceId}/comment [put]
func (h *Handler) SetRequirementComment(c *gin.Context) {
	_, ctrl, instanceID, ok := h.requirementTarget(c)
	if !ok {
		return
	}
	var body CommentBody
	if !bindJSON(c, &body) {
		return
	}
	respondItem(c, ctrl, instanceID, ctrl.SetComment(instanceID, body.Comment))
}
