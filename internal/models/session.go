package models

import "time"

// SessionContextKey is the gin context key holding the authenticated *Session
const SessionContextKey = "portal_session"

// Session is the server-side state of a signed-in portal user. It lives in
// Redis under session:<id> and is discarded at sign-out.
type Session struct {
	ID             string    `json:"id"`
	UserID         int64     `json:"userId"`
	Username       string    `json:"username"`
	RoleID         *int64    `json:"roleId"`
	PersonID       *int64    `json:"personId"`
	FirstName      *string   `json:"firstName"`
	LastName       *string   `json:"lastName"`
	DocumentNumber *string   `json:"documentNumber"`
	AccessToken    string    `json:"accessToken"`
	CreatedAt      time.Time `json:"createdAt"`
	ExpiresAt      time.Time `json:"expiresAt"`
}

// IsReviewer reports whether the session's role meets the reviewer threshold.
// A session without a role is never a reviewer.
func (s *Session) IsReviewer(threshold int64) bool {
	return s != nil && s.RoleID != nil && *s.RoleID >= threshold
}

// User returns the view of the session that is safe to send to the browser
func (s *Session) User() SessionUser {
	return SessionUser{
		ID:             s.UserID,
		Username:       s.Username,
		RoleID:         s.RoleID,
		PersonID:       s.PersonID,
		FirstName:      s.FirstName,
		LastName:       s.LastName,
		DocumentNumber: s.DocumentNumber,
	}
}

// SessionUser is the public part of a session; it never carries the API token
type SessionUser struct {
	ID             int64   `json:"id"`
	Username       string  `json:"username"`
	RoleID         *int64  `json:"roleId"`
	PersonID       *int64  `json:"personId"`
	FirstName      *string `json:"firstName"`
	LastName       *string `json:"lastName"`
	DocumentNumber *string `json:"documentNumber"`
}
