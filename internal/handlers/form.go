package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sgeneral-iua/portal-sg/internal/apiclient"
	"github.com/sgeneral-iua/portal-sg/internal/catalog"
	"github.com/sgeneral-iua/portal-sg/internal/middleware"
	"github.com/sgeneral-iua/portal-sg/internal/models"
	"github.com/sgeneral-iua/portal-sg/internal/utils"
	"github.com/sgeneral-iua/portal-sg/internal/wizard"
	"go.uber.org/zap"
)

const wizardLock = "wizard"

// locations returns the session's location catalog
func (h *Handler) locations(session *models.Session) *catalog.Cache {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		ttl = h.sessions.TTL()
	}
	store := catalog.NewRedisStore(h.sessions.KV(), session.ID, ttl)
	return catalog.New(store, h.api, session.AccessToken, h.logger)
}

// wizardController restores the session's form. On first use, or when
// refresh is set, the form is opened from the API and opened is true.
func (h *Handler) wizardController(c *gin.Context, session *models.Session, refresh bool) (wc *wizard.Controller, opened bool, err error) {
	ctx := c.Request.Context()

	var state *wizard.State
	if !refresh {
		saved, found, err := h.snapshots.Load(ctx, session.ID)
		if err != nil {
			return nil, false, err
		}
		if found {
			state = saved
		}
	}
	if state == nil {
		state = wizard.Open(ctx, h.api, session.AccessToken, session.UserID, h.logger)
		opened = true
	}

	auditCtx := utils.GetAuditContextFromGin(c)
	return wizard.NewController(state, wizard.Deps{
		Gateway:   h.api,
		Locations: h.locations(session),
		Sink:      wizard.NewSessionPDFSink(h.sessions, session.ID),
		Token:     session.AccessToken,
		Logger:    h.logger,
		OnSaved: func(ctx context.Context, step string, payload models.UpdateFormPayload) {
			if err := utils.LogFormUpdate(ctx, auditCtx, step, nil, auditablePayload(payload)); err != nil {
				h.logger.Warn("failed to audit form save", zap.Error(err))
			}
		},
	}), opened, nil
}

// auditablePayload drops the contact and document values from the audit copy
func auditablePayload(p models.UpdateFormPayload) models.UpdateFormPayload {
	masked := "********"
	p.Person.DocumentNumber = masked
	if p.Contact != nil {
		contact := *p.Contact
		contact.MobilePhone = &masked
		contact.EmailAddress = &masked
		p.Contact = &contact
	}
	return p
}

// withWizard runs fn under the session's wizard lock, persists the
// resulting state and answers with its view
func (h *Handler) withWizard(c *gin.Context, fn func(ctx context.Context, wc *wizard.Controller) error) {
	session, ok := currentSession(c)
	if !ok {
		return
	}
	release, ok := h.lockSession(c, session.ID, wizardLock)
	if !ok {
		return
	}
	defer release()

	wc, _, err := h.wizardController(c, session, false)
	if err != nil {
		h.logger.Error("failed to restore form", zap.String("session_id", session.ID), zap.Error(err))
		errorJSON(c, http.StatusServiceUnavailable, "Session store unavailable")
		return
	}

	opErr := fn(c.Request.Context(), wc)

	if err := h.snapshots.Save(c.Request.Context(), session.ID, wc.Snapshot()); err != nil {
		h.logger.Error("failed to persist form", zap.String("session_id", session.ID), zap.Error(err))
		errorJSON(c, http.StatusServiceUnavailable, "Session store unavailable")
		return
	}
	middleware.MarkAudited(c)
	c.JSON(wizardStatus(opErr), wc.View())
}

// wizardStatus maps an operation error to the status sent with the view.
// The view always carries the user-facing message.
func wizardStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, wizard.ErrInvalid):
		return http.StatusUnprocessableEntity
	case errors.Is(err, wizard.ErrBusy), errors.Is(err, wizard.ErrCompleted):
		return http.StatusConflict
	case errors.Is(err, wizard.ErrUnknownLocation), errors.Is(err, wizard.ErrUnknownGraduateType):
		return http.StatusBadRequest
	case errors.Is(err, wizard.ErrNoLocations):
		return http.StatusInternalServerError
	default:
		return upstreamStatus(err)
	}
}

// GetForm godoc
// @Summary Formulario de datos personales
// @Description Estado actual del asistente de cuatro pasos. Se abre desde la API la primera vez o cuando refresh=true.
// @Tags form
// @Produce json
// @Security ApiKeyAuth
// @Param refresh query bool false "Volver a cargar el formulario desde la API"
// @Success 200 {object} wizard.View
// @Failure 401 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /form [get]
func (h *Handler) GetForm(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}
	refresh, _ := strconv.ParseBool(c.Query("refresh"))

	// Reading never races a save: the snapshot is taken under the lock
	release, ok := h.lockSession(c, session.ID, wizardLock)
	if !ok {
		return
	}
	defer release()

	wc, opened, err := h.wizardController(c, session, refresh)
	if err != nil {
		h.logger.Error("failed to restore form", zap.String("session_id", session.ID), zap.Error(err))
		errorJSON(c, http.StatusServiceUnavailable, "Session store unavailable")
		return
	}
	if opened {
		if err := h.snapshots.Save(c.Request.Context(), session.ID, wc.Snapshot()); err != nil {
			h.logger.Error("failed to persist form", zap.String("session_id", session.ID), zap.Error(err))
			errorJSON(c, http.StatusServiceUnavailable, "Session store unavailable")
			return
		}
	}
	c.JSON(http.StatusOK, wc.View())
}

// PatchDraft godoc
// @Summary Editar campos del formulario
// @Description Aplica cambios parciales sin validarlos ni enviarlos a la API. Las claves ausentes no se modifican; null o "" vacían el campo. País, provincia y ciudad se aplican en cascada.
// @Tags form
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param draft body wizard.Draft true "Cambios"
// @Success 200 {object} wizard.View
// @Failure 400 {object} wizard.View
// @Failure 409 {object} models.ErrorResponse
// @Failure 502 {object} wizard.View
// @Router /form/draft [patch]
func (h *Handler) PatchDraft(c *gin.Context) {
	var draft wizard.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		errorJSON(c, http.StatusBadRequest, "El cuerpo de la solicitud no es válido.")
		return
	}
	h.withWizard(c, func(ctx context.Context, wc *wizard.Controller) error {
		return wc.ApplyDraft(ctx, draft)
	})
}

// GoToStep godoc
// @Summary Ir a un paso
// @Description Cambia de paso sin guardar. El índice se ajusta al rango válido.
// @Tags form
// @Produce json
// @Security ApiKeyAuth
// @Param index path int true "Índice del paso (0 a 3)"
// @Success 200 {object} wizard.View
// @Failure 400 {object} models.ErrorResponse
// @Router /form/steps/{index} [post]
func (h *Handler) GoToStep(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid index")
		return
	}
	h.withWizard(c, func(_ context.Context, wc *wizard.Controller) error {
		wc.GoToStep(index)
		return nil
	})
}

// SaveStep godoc
// @Summary Guardar el formulario
// @Description Valida y guarda los cuatro bloques sin avanzar de paso
// @Tags form
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} wizard.View
// @Failure 409 {object} wizard.View
// @Failure 422 {object} wizard.View "Datos inválidos"
// @Failure 502 {object} wizard.View
// @Router /form/save [post]
func (h *Handler) SaveStep(c *gin.Context) {
	h.withWizard(c, func(ctx context.Context, wc *wizard.Controller) error {
		return wc.SaveCurrentStep(ctx)
	})
}

// NextStep godoc
// @Summary Guardar y avanzar
// @Description Guarda y pasa al paso siguiente. En el último paso genera el PDF y marca el formulario como completo.
// @Tags form
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} wizard.View
// @Failure 409 {object} wizard.View "Formulario completo u operación en curso"
// @Failure 422 {object} wizard.View "Datos inválidos"
// @Failure 502 {object} wizard.View
// @Router /form/next [post]
func (h *Handler) NextStep(c *gin.Context) {
	h.withWizard(c, func(ctx context.Context, wc *wizard.Controller) error {
		wasCompleted := wc.Snapshot().Completed
		err := wc.Next(ctx)
		if err == nil && !wasCompleted && wc.Snapshot().Completed {
			if auditErr := utils.LogFormPDF(ctx, utils.GetAuditContextFromGin(c)); auditErr != nil {
				h.logger.Warn("failed to audit form PDF", zap.Error(auditErr))
			}
		}
		return err
	})
}

// PreviousStep godoc
// @Summary Volver al paso anterior
// @Description Retrocede un paso sin guardar ni validar
// @Tags form
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} wizard.View
// @Router /form/previous [post]
func (h *Handler) PreviousStep(c *gin.Context) {
	h.withWizard(c, func(_ context.Context, wc *wizard.Controller) error {
		wc.Previous()
		return nil
	})
}

// DownloadFormPDF godoc
// @Summary Descargar el PDF del formulario
// @Description Devuelve el último PDF generado al completar el formulario
// @Tags form
// @Produce application/pdf
// @Security ApiKeyAuth
// @Success 200 {file} binary
// @Failure 404 {object} models.ErrorResponse
// @Router /form/pdf [get]
func (h *Handler) DownloadFormPDF(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}
	blob, found, err := h.snapshots.LoadPDF(c.Request.Context(), session.ID)
	if err != nil {
		h.logger.Error("failed to load form PDF", zap.String("session_id", session.ID), zap.Error(err))
		errorJSON(c, http.StatusServiceUnavailable, "Session store unavailable")
		return
	}
	if !found {
		errorJSON(c, http.StatusNotFound, "Todavía no generaste el PDF del formulario.")
		return
	}
	sendFile(c, blob, wizard.PDFFileName(session.UserID))
}

// Countries godoc
// @Summary Países
// @Tags locations
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.Country
// @Failure 502 {object} models.ErrorResponse
// @Router /locations/countries [get]
func (h *Handler) Countries(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}
	countries, err := h.locations(session).Countries(c.Request.Context())
	if err != nil {
		errorJSON(c, upstreamStatus(err), apiclient.MessageOr(err, msgLocationsFailed))
		return
	}
	c.JSON(http.StatusOK, nonNil(countries))
}

// Provinces godoc
// @Summary Provincias de un país
// @Tags locations
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Id del país"
// @Success 200 {array} models.Province
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /locations/countries/{id}/provinces [get]
func (h *Handler) Provinces(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}
	countryID, ok := pathID(c, "id")
	if !ok {
		return
	}
	provinces, err := h.locations(session).Provinces(c.Request.Context(), countryID)
	if err != nil {
		errorJSON(c, upstreamStatus(err), apiclient.MessageOr(err, msgLocationsFailed))
		return
	}
	c.JSON(http.StatusOK, nonNil(provinces))
}

// Cities godoc
// @Summary Ciudades de una provincia
// @Tags locations
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Id de la provincia"
// @Success 200 {array} models.City
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /locations/provinces/{id}/cities [get]
func (h *Handler) Cities(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}
	provinceID, ok := pathID(c, "id")
	if !ok {
		return
	}
	cities, err := h.locations(session).Cities(c.Request.Context(), provinceID)
	if err != nil {
		errorJSON(c, upstreamStatus(err), apiclient.MessageOr(err, msgLocationsFailed))
		return
	}
	c.JSON(http.StatusOK, nonNil(cities))
}

const msgLocationsFailed = "No pudimos cargar las ubicaciones. Intentá nuevamente."

// nonNil renders empty lists as [] instead of null
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
