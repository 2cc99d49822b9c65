// Package session keeps server-side portal sessions in Redis. Everything a
// session owns lives under session:<id>, so sign-out can drop it in one sweep.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sgeneral-iua/portal-sg/internal/logging"
	"github.com/sgeneral-iua/portal-sg/internal/models"
	"github.com/sgeneral-iua/portal-sg/internal/observability"
	"github.com/sgeneral-iua/portal-sg/internal/redisclient"
	"github.com/sgeneral-iua/portal-sg/internal/utils"
	"go.uber.org/zap"
)

const keyPrefix = "session:"

// Key returns the Redis key of the session record
func Key(sid string) string {
	return keyPrefix + sid
}

// ScopedKey returns a key owned by the session, e.g. session:<sid>:wizard
func ScopedKey(sid string, parts ...string) string {
	return Key(sid) + ":" + strings.Join(parts, ":")
}

// Store creates, loads and destroys sessions
type Store struct {
	kv         redisclient.KV
	ttl        time.Duration
	signingKey []byte
	logger     *logging.SafeLogger
	now        func() time.Time
}

// NewStore creates a session store. The signing key is required.
func NewStore(kv redisclient.KV, ttl time.Duration, signingKey string, logger *logging.SafeLogger) (*Store, error) {
	if kv == nil {
		return nil, errors.New("session store requires a key-value client")
	}
	if signingKey == "" {
		return nil, errors.New("session signing key is required")
	}
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &Store{
		kv:         kv,
		ttl:        ttl,
		signingKey: []byte(signingKey),
		logger:     logger.Named("session"),
		now:        time.Now,
	}, nil
}

// TTL returns the lifetime of new sessions
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// KV exposes the underlying client for session-scoped stores
func (s *Store) KV() redisclient.KV {
	return s.kv
}

// Create opens a session for a successful remote login and returns it with
// the signed portal token.
func (s *Store) Create(ctx context.Context, login *models.LoginResponse) (*models.Session, string, error) {
	if login == nil || login.Token == "" {
		return nil, "", errors.New("login response carries no token")
	}

	now := s.now().UTC()
	session := &models.Session{
		ID:             uuid.NewString(),
		UserID:         login.User.ID,
		Username:       login.User.Username,
		RoleID:         login.User.RoleID,
		PersonID:       login.User.PersonID,
		FirstName:      login.User.FirstName,
		LastName:       login.User.LastName,
		DocumentNumber: login.User.DocumentNumber,
		AccessToken:    login.Token,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.ttl),
	}

	if err := s.PutJSON(ctx, Key(session.ID), session); err != nil {
		return nil, "", fmt.Errorf("failed to store session: %w", err)
	}

	token, err := s.issueToken(session)
	if err != nil {
		_ = s.kv.Del(ctx, Key(session.ID)).Err()
		return nil, "", err
	}

	observability.ActiveSessions.Inc()
	s.logger.Info("session created",
		zap.Int64("user_id", session.UserID),
		zap.String("session_id", session.ID))
	return session, token, nil
}

// Get loads a session by id
func (s *Store) Get(ctx context.Context, sid string) (*models.Session, error) {
	var session models.Session
	found, err := s.GetJSON(ctx, Key(sid), &session)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if !found {
		return nil, models.ErrSessionNotFound
	}
	if !session.ExpiresAt.IsZero() && s.now().After(session.ExpiresAt) {
		return nil, models.ErrSessionExpired
	}
	return &session, nil
}

// Authenticate validates a portal token and loads its session
func (s *Store) Authenticate(ctx context.Context, token string) (*models.Session, error) {
	claims, err := s.ParseToken(token)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, claims.SessionID)
}

// Delete removes the session and every key it owns
func (s *Store) Delete(ctx context.Context, sid string) error {
	ctx, span := utils.TraceBusinessLogic(ctx, "session_delete")
	defer span.End()

	keys, err := s.kv.ScanKeys(ctx, ScopedKey(sid, "*"))
	if err != nil {
		utils.RecordErrorInSpan(span, err, nil)
		return fmt.Errorf("failed to list session keys: %w", err)
	}
	keys = append(keys, Key(sid))

	removed, err := s.kv.Del(ctx, keys...).Result()
	if err != nil {
		utils.RecordErrorInSpan(span, err, nil)
		return fmt.Errorf("failed to delete session: %w", err)
	}

	if removed > 0 {
		observability.ActiveSessions.Dec()
	}
	s.logger.Info("session deleted",
		zap.String("session_id", sid),
		zap.Int64("keys_removed", removed))
	return nil
}

// PutJSON stores v under key with the session TTL
func (s *Store) PutJSON(ctx context.Context, key string, v interface{}) error {
	return PutJSON(ctx, s.kv, key, v, s.ttl)
}

// GetJSON loads key into v. found is false when the key does not exist.
func (s *Store) GetJSON(ctx context.Context, key string, v interface{}) (found bool, err error) {
	return GetJSON(ctx, s.kv, key, v)
}

// PutJSON stores v as JSON under key
func PutJSON(ctx context.Context, kv redisclient.KV, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return kv.Set(ctx, key, data, ttl).Err()
}

// GetJSON decodes the JSON value under key into v
func GetJSON(ctx context.Context, kv redisclient.KV, key string, v interface{}) (bool, error) {
	data, err := kv.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}
