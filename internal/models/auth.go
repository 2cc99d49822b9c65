package models

// LoginRequest carries the portal credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// APIUser is the user profile returned by the remote login
type APIUser struct {
	ID             int64         `json:"id"`
	Username       string        `json:"username"`
	AccountType    *string       `json:"accountType"`
	RoleID         *int64        `json:"roleId"`
	PersonID       *int64        `json:"personId"`
	FirstName      *string       `json:"firstName"`
	LastName       *string       `json:"lastName"`
	DocumentNumber *string       `json:"documentNumber"`
	BirthDate      *string       `json:"birthDate"`
	NationalityID  *int64        `json:"nationalityId"`
	BirthCityID    *int64        `json:"birthCityId"`
	EmailAddress   *string       `json:"emailAddress"`
	MobilePhone    *string       `json:"mobilePhone"`
	GraduateType   *GraduateType `json:"graduateType"`
	MilitaryRankID *int64        `json:"militaryRankId"`
}

// LoginResponse is the body of a successful remote login
type LoginResponse struct {
	Token string  `json:"token"`
	User  APIUser `json:"user"`
}

// RegisterRequest is forwarded to POST /api/users/register
type RegisterRequest struct {
	Username       string `json:"username" binding:"required,min=3"`
	Password       string `json:"password" binding:"required,min=8"`
	EmailAddress   string `json:"emailAddress" binding:"required,email"`
	FirstName      string `json:"firstName" binding:"required"`
	LastName       string `json:"lastName" binding:"required"`
	DocumentNumber string `json:"documentNumber" binding:"required,numeric,min=7,max=9"`
}

// ForgotPasswordRequest asks the API to mail a reset link
type ForgotPasswordRequest struct {
	Identifier string `json:"identifier" binding:"required"`
}

// ResetPasswordRequest is the portal-side reset form
type ResetPasswordRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ResetPasswordPayload is forwarded to the API once the form checks pass
type ResetPasswordPayload struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// TokenResponse is returned by POST /v1/auth/login
type TokenResponse struct {
	Token     string      `json:"token"`
	ExpiresAt int64       `json:"expiresAt"`
	User      SessionUser `json:"user"`
}
