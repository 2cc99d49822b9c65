package observability

import (
	"strings"

	"github.com/sgeneral-iua/portal-sg/internal/logging"
)

// Logger returns the global safe logger instance
func Logger() *logging.SafeLogger {
	return logging.Logger
}

// MaskDocument masks a national document number for logging, keeping the
// last three digits.
func MaskDocument(doc string) string {
	doc = strings.TrimSpace(doc)
	if len(doc) < 4 {
		return "********"
	}
	return strings.Repeat("*", len(doc)-3) + doc[len(doc)-3:]
}

// MaskToken keeps only the first six characters of a bearer or reset token.
func MaskToken(token string) string {
	if len(token) <= 6 {
		return "******"
	}
	return token[:6] + "..."
}

// MaskEmail hides the local part of an email address except its first letter.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}

// MaskSensitiveData masks sensitive fields in a map
func MaskSensitiveData(data map[string]interface{}) map[string]interface{} {
	sensitiveFields := []string{"password", "confirmPassword", "token", "documentNumber", "mobilePhone", "emailAddress"}
	masked := make(map[string]interface{}, len(data))

	for k, v := range data {
		if contains(sensitiveFields, k) {
			masked[k] = "********"
		} else {
			masked[k] = v
		}
	}

	return masked
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
