// Package handlers exposes the portal operations over HTTP under /v1
package handlers

import (
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sgeneral-iua/portal-sg/internal/auth"
	"github.com/sgeneral-iua/portal-sg/internal/catalog"
	"github.com/sgeneral-iua/portal-sg/internal/dashboard"
	"github.com/sgeneral-iua/portal-sg/internal/logging"
	"github.com/sgeneral-iua/portal-sg/internal/middleware"
	"github.com/sgeneral-iua/portal-sg/internal/models"
	"github.com/sgeneral-iua/portal-sg/internal/requests"
	"github.com/sgeneral-iua/portal-sg/internal/requirements"
	"github.com/sgeneral-iua/portal-sg/internal/session"
	"github.com/sgeneral-iua/portal-sg/internal/utils"
	"github.com/sgeneral-iua/portal-sg/internal/wizard"
	"go.uber.org/zap"
)

// RemoteAPI is everything the handlers ask of the Secretaría API
type RemoteAPI interface {
	dashboard.Gateway
	wizard.Gateway
	requirements.Gateway
	catalog.Fetcher
}

// Deps are the collaborators of a Handler
type Deps struct {
	API               RemoteAPI
	Sessions          *session.Store
	Auth              *auth.Service
	Requests          *requests.Service
	Registry          *requirements.Registry
	ReviewerThreshold int64
	UploadMaxBytes    int64
	Logger            *logging.SafeLogger
}

// Handler serves the /v1 routes
type Handler struct {
	api               RemoteAPI
	sessions          *session.Store
	auth              *auth.Service
	requests          *requests.Service
	snapshots         *wizard.SnapshotStore
	registry          *requirements.Registry
	reviewerThreshold int64
	uploadMaxBytes    int64
	logger            *logging.SafeLogger
}

// New creates a Handler
func New(d Deps) *Handler {
	if d.UploadMaxBytes <= 0 {
		d.UploadMaxBytes = 10 << 20
	}
	return &Handler{
		api:               d.API,
		sessions:          d.Sessions,
		auth:              d.Auth,
		requests:          d.Requests,
		snapshots:         wizard.NewSnapshotStore(d.Sessions),
		registry:          d.Registry,
		reviewerThreshold: d.ReviewerThreshold,
		uploadMaxBytes:    d.UploadMaxBytes,
		logger:            d.Logger.Named("handlers"),
	}
}

// errorJSON aborts with the portal error body
func errorJSON(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{Error: message})
}

// bindJSON binds the body into dst and answers 400 with the field messages
// when it does not validate
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		result := utils.FromValidationError(err, dst)
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ValidationErrorResponse{
			Error:  "Revisá los datos ingresados.",
			Fields: result.Fields(),
		})
		return false
	}
	return true
}

// currentSession returns the session set by the auth middleware. Routes that
// call it always run behind SessionAuth.
func currentSession(c *gin.Context) (*models.Session, bool) {
	s, ok := middleware.SessionFromContext(c)
	if !ok {
		errorJSON(c, http.StatusUnauthorized, "Session not found")
	}
	return s, ok
}

// pathID parses a positive numeric route parameter
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		errorJSON(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// lockSession takes a session-scoped busy flag, answering 409 when taken
func (h *Handler) lockSession(c *gin.Context, sid, name string) (func(), bool) {
	release, err := h.sessions.Lock(c.Request.Context(), sid, name)
	if err != nil {
		if errors.Is(err, session.ErrBusy) {
			errorJSON(c, http.StatusConflict, "Ya hay una operación en curso.")
		} else {
			h.logger.Error("failed to take session lock", zap.String("session_id", sid), zap.Error(err))
			errorJSON(c, http.StatusServiceUnavailable, "Session store unavailable")
		}
		return nil, false
	}
	return release, true
}

func sendFile(c *gin.Context, blob *models.FileBlob, fallbackName string) {
	name := blob.FileName
	if name == "" {
		name = fallbackName
	}
	contentType := blob.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	c.Data(http.StatusOK, contentType, blob.Content)
}
