// Package auth signs portal users in and out and proxies the account flows
// (registration, forgot and reset password) to the remote API.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/sgeneral-iua/portal-sg/internal/apiclient"
	"github.com/sgeneral-iua/portal-sg/internal/logging"
	"github.com/sgeneral-iua/portal-sg/internal/models"
	"github.com/sgeneral-iua/portal-sg/internal/observability"
	"github.com/sgeneral-iua/portal-sg/internal/utils"
	"go.uber.org/zap"
)

// User-facing messages
const (
	MsgInvalidCredentials = "Usuario o contraseña inválidos."
	MsgTooManyAttempts    = "Demasiados intentos. Esperá un minuto e intentá nuevamente."
	MsgLoginFailed        = "No pudimos iniciar sesión. Intentá nuevamente."
	MsgRegisterFailed     = "No pudimos completar el registro."
	MsgResetLinkSent      = "Si tu correo está registrado, te enviamos un enlace para restablecer tu contraseña."
	MsgResetInvalid       = "Verificá el token y que las contraseñas coincidan (mínimo 8 caracteres)."
	MsgResetFailed        = "No pudimos actualizar tu contraseña."
	MsgPasswordUpdated    = "Tu contraseña fue actualizada."
)

// MinPasswordLength applies to password resets
const MinPasswordLength = 8

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyAttempts    = errors.New("too many login attempts")
	ErrResetInvalid       = errors.New("invalid password reset form")
)

// Gateway is the part of the remote API the account flows use
type Gateway interface {
	Login(ctx context.Context, username, password string) (*models.LoginResponse, error)
	Register(ctx context.Context, in models.RegisterRequest) (json.RawMessage, error)
	ForgotPassword(ctx context.Context, identifier string) error
	ResetPassword(ctx context.Context, in models.ResetPasswordPayload) error
}

// Sessions opens and discards portal sessions
type Sessions interface {
	Create(ctx context.Context, login *models.LoginResponse) (*models.Session, string, error)
	Delete(ctx context.Context, sid string) error
}

// ControllerDropper forgets in-process state owned by a session
type ControllerDropper interface {
	DropSession(sid string) int
}

// Service implements the account flows
type Service struct {
	gateway  Gateway
	sessions Sessions
	dropper  ControllerDropper
	limiter  *LoginLimiter
	logger   *logging.SafeLogger
}

// NewService wires the account flows. dropper and limiter may be nil.
func NewService(gateway Gateway, sessions Sessions, dropper ControllerDropper, limiter *LoginLimiter, logger *logging.SafeLogger) *Service {
	return &Service{
		gateway:  gateway,
		sessions: sessions,
		dropper:  dropper,
		limiter:  limiter,
		logger:   logger.Named("auth"),
	}
}

// Login validates the credentials against the remote API and opens a
// session. Any remote failure is reported as ErrInvalidCredentials so no
// detail reaches the browser.
func (s *Service) Login(ctx context.Context, username, password string) (*models.TokenResponse, *models.Session, error) {
	ctx, span := utils.TraceBusinessLogic(ctx, "auth_login")
	defer span.End()

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, nil, ErrInvalidCredentials
	}
	if !s.limiter.Allow(username) {
		return nil, nil, ErrTooManyAttempts
	}

	login, err := s.gateway.Login(ctx, username, password)
	if err != nil || login == nil || login.Token == "" {
		s.logger.Warn("login rejected",
			zap.String("username", username),
			zap.Int("api_status", apiclient.StatusCode(err)),
			zap.Error(err))
		return nil, nil, ErrInvalidCredentials
	}

	session, token, err := s.sessions.Create(ctx, login)
	if err != nil {
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"user_id": login.User.ID})
		s.logger.Error("failed to open session", zap.Int64("user_id", login.User.ID), zap.Error(err))
		return nil, nil, err
	}
	s.limiter.Reset(username)

	return &models.TokenResponse{
		Token:     token,
		ExpiresAt: session.ExpiresAt.Unix(),
		User:      session.User(),
	}, session, nil
}

// Logout discards the session, its Redis keys and its requirement controllers
func (s *Service) Logout(ctx context.Context, sid string) error {
	if err := s.sessions.Delete(ctx, sid); err != nil {
		return err
	}
	if s.dropper != nil {
		if dropped := s.dropper.DropSession(sid); dropped > 0 {
			s.logger.Debug("dropped requirement controllers",
				zap.String("session_id", sid),
				zap.Int("count", dropped))
		}
	}
	return nil
}

// Register forwards a new account to the remote API and returns its answer
func (s *Service) Register(ctx context.Context, in models.RegisterRequest) (json.RawMessage, error) {
	out, err := s.gateway.Register(ctx, in)
	if err != nil {
		s.logger.Warn("registration failed",
			zap.String("username", in.Username),
			zap.String("email", observability.MaskEmail(in.EmailAddress)),
			zap.String("document_number", observability.MaskDocument(in.DocumentNumber)),
			zap.Error(err))
		return nil, err
	}
	return out, nil
}

// ForgotPassword asks the API for a reset link. The caller always answers
// with MsgResetLinkSent, so failures are only logged.
func (s *Service) ForgotPassword(ctx context.Context, identifier string) error {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return ErrResetInvalid
	}
	if err := s.gateway.ForgotPassword(ctx, identifier); err != nil {
		s.logger.Warn("forgot password request failed",
			zap.String("identifier", maskIdentifier(identifier)),
			zap.Int("api_status", apiclient.StatusCode(err)),
			zap.Error(err))
	}
	return nil
}

// maskIdentifier masks the identifier only when it is an email; usernames
// are logged as typed.
func maskIdentifier(identifier string) string {
	if strings.Contains(identifier, "@") {
		return observability.MaskEmail(identifier)
	}
	return identifier
}

// ValidateReset checks the reset form before anything is sent
func ValidateReset(in models.ResetPasswordRequest) error {
	if strings.TrimSpace(in.Token) == "" ||
		len([]rune(in.Password)) < MinPasswordLength ||
		in.Password != in.ConfirmPassword {
		return ErrResetInvalid
	}
	return nil
}

// ResetPassword sets a new password with a reset token
func (s *Service) ResetPassword(ctx context.Context, in models.ResetPasswordRequest) error {
	if err := ValidateReset(in); err != nil {
		return err
	}
	err := s.gateway.ResetPassword(ctx, models.ResetPasswordPayload{
		Token:    strings.TrimSpace(in.Token),
		Password: in.Password,
	})
	if err != nil {
		s.logger.Warn("password reset failed",
			zap.String("token", observability.MaskToken(in.Token)),
			zap.Error(err))
		return err
	}
	return nil
}

// ErrorMessage maps a flow error to the message shown to the user
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return MsgInvalidCredentials
	case errors.Is(err, ErrTooManyAttempts):
		return MsgTooManyAttempts
	case errors.Is(err, ErrResetInvalid):
		return MsgResetInvalid
	default:
		return MsgLoginFailed
	}
}
