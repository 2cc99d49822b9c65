package models

import "github.com/golang-jwt/jwt/v5"

// PortalClaims are the claims of the token handed to the browser after login.
// The token only points at the server-side session; the remote API token
// never leaves the portal.
type PortalClaims struct {
	SessionID string `json:"sid"`
	RoleID    *int64 `json:"role,omitempty"`
	jwt.RegisteredClaims
}
