// Package requests lists the titles a graduate can request and generates the
// request for one of them.
package requests

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sgeneral-iua/portal-sg/internal/apiclient"
	"github.com/sgeneral-iua/portal-sg/internal/logging"
	"github.com/sgeneral-iua/portal-sg/internal/models"
	"github.com/sgeneral-iua/portal-sg/internal/redisclient"
	"github.com/sgeneral-iua/portal-sg/internal/session"
	"github.com/sgeneral-iua/portal-sg/internal/utils"
	"go.uber.org/zap"
)

// User-facing messages
const (
	MsgTitlesFailed       = "No fue posible obtener los títulos disponibles. Intentá nuevamente más tarde."
	MsgMissingRequestType = "El título no tiene asociado un tipo de solicitud. Contactá a la Secretaría para revisar la configuración."
	MsgCreateFailed       = "No se pudo generar la solicitud. Intentá nuevamente."
	MsgUnexpected         = "Respuesta inesperada del servidor. Intentá nuevamente."
	MsgTitleNotAvailable  = "El título seleccionado ya no está disponible para solicitar."
	MsgTitlesNotLoaded    = "Actualizá la lista de títulos disponibles e intentá nuevamente."
)

// FormPath is where the browser goes once the request exists
const FormPath = "/requests/form"

var (
	// ErrMissingRequestType is returned for titles without a request type.
	// No request is sent to the API in that case.
	ErrMissingRequestType = errors.New("title has no request type")
	// ErrTitleNotAvailable is returned for titles not offered to the user
	ErrTitleNotAvailable = errors.New("title not available")
	// ErrTitlesNotLoaded is returned when the session has no title list to
	// create from, e.g. after it expired or a request was just created
	ErrTitlesNotLoaded = errors.New("available titles not loaded")
	// ErrEmptyResponse is returned when the API creates nothing
	ErrEmptyResponse = errors.New("empty response from API")
)

// Gateway is the part of the remote API this package needs
type Gateway interface {
	AvailableTitles(ctx context.Context, token string, userID int64) ([]models.AvailableTitle, error)
	CreateRequest(ctx context.Context, token string, payload models.CreateRequestPayload) (*models.RequestCreationResponse, error)
}

// TitleList is the body of GET /v1/titles/available
type TitleList struct {
	Titles     []models.AvailableTitle `json:"titles"`
	FetchError *string                 `json:"fetchError"`
}

// Created is the body of a successful POST /v1/requests
type Created struct {
	Request *models.RequestCreationResponse `json:"request"`
	Next    string                          `json:"next"`
}

// Service lists titles and creates requests. The last list shown to a
// session is kept under session:<sid>:titles; a creation only accepts titles
// from that list and never fetches it again.
type Service struct {
	gateway Gateway
	kv      redisclient.KV
	logger  *logging.SafeLogger
}

// NewService creates a Service. A nil kv keeps the lists in process.
func NewService(gateway Gateway, kv redisclient.KV, logger *logging.SafeLogger) *Service {
	if kv == nil {
		kv = redisclient.NewMemoryClient()
	}
	return &Service{gateway: gateway, kv: kv, logger: logger.Named("requests")}
}

// remaining is the session's time left, or zero for sessions without expiry
func remaining(sess *models.Session) time.Duration {
	if sess.ExpiresAt.IsZero() {
		return 0
	}
	if ttl := time.Until(sess.ExpiresAt); ttl > 0 {
		return ttl
	}
	return time.Second
}

func titlesKey(sid string) string {
	return session.ScopedKey(sid, "titles")
}

// Available fetches the titles pending a request. A failed fetch returns an
// empty list with FetchError set.
func (s *Service) Available(ctx context.Context, sess *models.Session) *TitleList {
	titles, err := s.fetch(ctx, sess)
	if err != nil {
		msg := MsgTitlesFailed
		return &TitleList{Titles: []models.AvailableTitle{}, FetchError: &msg}
	}
	return &TitleList{Titles: titles}
}

func (s *Service) fetch(ctx context.Context, sess *models.Session) ([]models.AvailableTitle, error) {
	titles, err := s.gateway.AvailableTitles(ctx, sess.AccessToken, sess.UserID)
	if err != nil {
		s.logger.Warn("failed to load available titles",
			zap.Int64("user_id", sess.UserID),
			zap.Error(err))
		return nil, err
	}
	if titles == nil {
		titles = []models.AvailableTitle{}
	}
	if err := session.PutJSON(ctx, s.kv, titlesKey(sess.ID), titles, remaining(sess)); err != nil {
		s.logger.Warn("failed to cache available titles", zap.Error(err))
	}
	return titles, nil
}

// lookup finds a title in the list last shown to the session
func (s *Service) lookup(ctx context.Context, sess *models.Session, titleID int64) (*models.AvailableTitle, error) {
	var titles []models.AvailableTitle
	found, err := session.GetJSON(ctx, s.kv, titlesKey(sess.ID), &titles)
	if err != nil {
		s.logger.Warn("failed to read cached titles", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrTitlesNotLoaded, err)
	}
	if !found {
		return nil, ErrTitlesNotLoaded
	}

	for i := range titles {
		if titles[i].IDTitle == titleID {
			return &titles[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrTitleNotAvailable, titleID)
}

// Create generates a request for titleID on behalf of the session user
func (s *Service) Create(ctx context.Context, sess *models.Session, titleID int64) (*Created, error) {
	ctx, span := utils.TraceBusinessLogic(ctx, "request_create")
	defer span.End()

	title, err := s.lookup(ctx, sess, titleID)
	if err != nil {
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"title.id": titleID})
		return nil, err
	}
	if title.RequestTypeID == nil || *title.RequestTypeID == 0 {
		s.logger.Error("title without request type",
			zap.Int64("title_id", titleID))
		return nil, fmt.Errorf("%w: title %d", ErrMissingRequestType, titleID)
	}

	created, err := s.gateway.CreateRequest(ctx, sess.AccessToken, models.CreateRequestPayload{
		IDUser:        sess.UserID,
		IDTitle:       title.IDTitle,
		IDRequestType: *title.RequestTypeID,
	})
	if err == nil && created == nil {
		err = ErrEmptyResponse
	}
	if err != nil {
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"title.id": titleID})
		s.logger.Warn("request creation failed",
			zap.Int64("user_id", sess.UserID),
			zap.Int64("title_id", titleID),
			zap.Error(err))
		return nil, fmt.Errorf("create request for title %d: %w", titleID, err)
	}

	// The title leaves the pending list once requested
	_ = s.kv.Del(ctx, titlesKey(sess.ID)).Err()
	return &Created{Request: created, Next: FormPath}, nil
}

// ErrorMessage maps a Create error to the text shown to the user
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrMissingRequestType):
		return MsgMissingRequestType
	case errors.Is(err, ErrTitleNotAvailable):
		return MsgTitleNotAvailable
	case errors.Is(err, ErrTitlesNotLoaded):
		return MsgTitlesNotLoaded
	case errors.Is(err, ErrEmptyResponse):
		return MsgUnexpected
	default:
		return apiclient.MessageOr(err, MsgCreateFailed)
	}
}
