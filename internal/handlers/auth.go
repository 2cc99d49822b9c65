package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sgeneral-iua/portal-sg/internal/apiclient"
	"github.com/sgeneral-iua/portal-sg/internal/auth"
	"github.com/sgeneral-iua/portal-sg/internal/middleware"
	"github.com/sgeneral-iua/portal-sg/internal/models"
	"github.com/sgeneral-iua/portal-sg/internal/utils"
	"go.uber.org/zap"
)

// credentials is the login body. Missing fields are answered with the same
// generic message as wrong ones.
type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login godoc
// @Summary Iniciar sesión
// @Description Valida las credenciales contra la API de la Secretaría y abre una sesión del portal
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body models.LoginRequest true "Usuario y contraseña"
// @Success 200 {object} models.TokenResponse
// @Failure 401 {object} models.ErrorResponse "Usuario o contraseña inválidos."
// @Failure 429 {object} models.ErrorResponse "Demasiados intentos"
// @Failure 500 {object} models.ErrorResponse
// @Router /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var in credentials
	if err := c.ShouldBindJSON(&in); err != nil {
		errorJSON(c, http.StatusUnauthorized, auth.MsgInvalidCredentials)
		return
	}

	resp, session, err := h.auth.Login(c.Request.Context(), in.Username, in.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		errorJSON(c, http.StatusUnauthorized, auth.MsgInvalidCredentials)
		return
	case errors.Is(err, auth.ErrTooManyAttempts):
		errorJSON(c, http.StatusTooManyRequests, auth.MsgTooManyAttempts)
		return
	case err != nil:
		errorJSON(c, http.StatusInternalServerError, auth.MsgLoginFailed)
		return
	}

	c.Set(models.SessionContextKey, session)
	if err := utils.LogLogin(c.Request.Context(), utils.GetAuditContextFromGin(c)); err != nil {
		h.logger.Warn("failed to audit login", zap.Error(err))
	}
	middleware.MarkAudited(c)
	c.JSON(http.StatusOK, resp)
}

// Logout godoc
// @Summary Cerrar sesión
// @Description Descarta la sesión y todo el estado asociado (formulario, requisitos, catálogos)
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.MessageResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}

	auditCtx := utils.GetAuditContextFromGin(c)
	if err := h.auth.Logout(c.Request.Context(), session.ID); err != nil {
		h.logger.Error("failed to close session", zap.String("session_id", session.ID), zap.Error(err))
		errorJSON(c, http.StatusInternalServerError, "No pudimos cerrar la sesión. Intentá nuevamente.")
		return
	}

	if err := utils.LogLogout(c.Request.Context(), auditCtx); err != nil {
		h.logger.Warn("failed to audit logout", zap.Error(err))
	}
	middleware.MarkAudited(c)
	c.JSON(http.StatusOK, models.MessageResponse{Message: "Sesión cerrada."})
}

// Register godoc
// @Summary Registrar usuario
// @Description Reenvía el alta de cuenta a la API de la Secretaría y devuelve su respuesta sin cambios
// @Tags auth
// @Accept json
// @Produce json
// @Param account body models.RegisterRequest true "Datos de la cuenta"
// @Success 201 {object} object
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var in models.RegisterRequest
	if !bindJSON(c, &in) {
		return
	}

	out, err := h.auth.Register(c.Request.Context(), in)
	if err != nil {
		errorJSON(c, upstreamStatus(err), apiclient.MessageOr(err, auth.MsgRegisterFailed))
		return
	}
	if len(out) == 0 {
		c.Status(http.StatusCreated)
		return
	}
	c.Data(http.StatusCreated, "application/json; charset=utf-8", out)
}

// ForgotPassword godoc
// @Summary Solicitar enlace de restablecimiento
// @Description Pide a la API que envíe un enlace de restablecimiento. La respuesta es la misma exista o no el usuario.
// @Tags auth
// @Accept json
// @Produce json
// @Param identifier body models.ForgotPasswordRequest true "Correo o usuario"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ValidationErrorResponse
// @Router /auth/forgot-password [post]
func (h *Handler) ForgotPassword(c *gin.Context) {
	var in models.ForgotPasswordRequest
	if !bindJSON(c, &in) {
		return
	}
	if err := h.auth.ForgotPassword(c.Request.Context(), in.Identifier); err != nil {
		errorJSON(c, http.StatusBadRequest, "Ingresá tu correo o usuario.")
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{Message: auth.MsgResetLinkSent})
}

// ResetPassword godoc
// @Summary Restablecer contraseña
// @Description Define una nueva contraseña con el token recibido por correo
// @Tags auth
// @Accept json
// @Produce json
// @Param reset body models.ResetPasswordRequest true "Token y nueva contraseña"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse "Verificá el token y que las contraseñas coincidan (mínimo 8 caracteres)."
// @Failure 502 {object} models.ErrorResponse
// @Router /auth/reset-password [post]
func (h *Handler) ResetPassword(c *gin.Context) {
	var in models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		errorJSON(c, http.StatusBadRequest, auth.MsgResetInvalid)
		return
	}

	err := h.auth.ResetPassword(c.Request.Context(), in)
	switch {
	case errors.Is(err, auth.ErrResetInvalid):
		errorJSON(c, http.StatusBadRequest, auth.MsgResetInvalid)
		return
	case err != nil:
		errorJSON(c, upstreamStatus(err), apiclient.MessageOr(err, auth.MsgResetFailed))
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{Message: auth.MsgPasswordUpdated})
}

// upstreamStatus keeps 4xx answers of the API and reports everything else
// as a bad gateway
func upstreamStatus(err error) int {
	if status := apiclient.StatusCode(err); status >= 400 && status < 500 {
		return status
	}
	return http.StatusBadGateway
}
