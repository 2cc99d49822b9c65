package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sgeneral-iua/portal-sg/internal/observability"
	"github.com/sgeneral-iua/portal-sg/internal/utils"
	"go.uber.org/zap"
)

// AuditedKey is set by handlers that already wrote a specific audit event
const AuditedKey = "audited"

const maxAuditedBody = 1000

// MarkAudited tells AuditMiddleware not to log the request again
func MarkAudited(c *gin.Context) {
	c.Set(AuditedKey, true)
}

// AuditMiddleware logs successful write requests that no handler audited
func AuditMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method

		// Only audit write operations
		if method != "POST" && method != "PUT" && method != "DELETE" && method != "PATCH" {
			c.Next()
			return
		}

		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/v1/health") || strings.HasPrefix(path, "/metrics") {
			c.Next()
			return
		}

		// Credentials and files never reach the audit log
		var bodyBytes []byte
		if c.Request.Body != nil && auditableBody(c, path) {
			bodyBytes, _ = io.ReadAll(io.LimitReader(c.Request.Body, maxAuditedBody+1))
			c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(bodyBytes), c.Request.Body))
		}

		c.Next()

		if c.GetBool(AuditedKey) {
			return
		}
		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}

		metadata := map[string]string{
			"endpoint":        path,
			"method":          method,
			"response_status": strconv.Itoa(status),
		}
		if body := maskedBody(bodyBytes); body != "" {
			metadata["request_body"] = body
		}

		// The session is only known after the auth middleware ran
		auditCtx := utils.GetAuditContextFromGin(c)
		if err := utils.LogAuditEvent(c.Request.Context(), auditCtx, mapHTTPMethodToAction(method), extractResourceFromPath(path), extractResourceID(c), nil, nil, metadata); err != nil {
			observability.Logger().Warn("failed to log audit event",
				zap.Error(err),
				zap.String("endpoint", path),
				zap.String("method", method),
			)
		}
	}
}

func auditableBody(c *gin.Context, path string) bool {
	if strings.HasPrefix(path, "/v1/auth/") {
		return false
	}
	return strings.HasPrefix(c.ContentType(), "application/json")
}

// maskedBody renders a JSON body with sensitive fields masked
func maskedBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > maxAuditedBody {
		return "(truncated)"
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}
	masked, err := json.Marshal(observability.MaskSensitiveData(fields))
	if err != nil {
		return ""
	}
	return string(masked)
}

// mapHTTPMethodToAction maps HTTP methods to audit actions
func mapHTTPMethodToAction(method string) string {
	switch method {
	case "POST":
		return utils.AuditActionCreate
	case "PUT", "PATCH":
		return utils.AuditActionUpdate
	case "DELETE":
		return utils.AuditActionDelete
	default:
		return utils.AuditActionUpdate
	}
}

// extractResourceFromPath extracts the resource type from the request path
func extractResourceFromPath(path string) string {
	path = strings.TrimPrefix(path, "/v1/")

	switch {
	case strings.HasPrefix(path, "requests/") && strings.Contains(path, "/requirements"):
		return utils.AuditResourceRequirement
	case strings.HasPrefix(path, "requests"):
		return utils.AuditResourceRequest
	case strings.HasPrefix(path, "form/pdf"):
		return utils.AuditResourceFormPDF
	case strings.HasPrefix(path, "form"):
		return utils.AuditResourceForm
	case strings.HasPrefix(path, "auth/"):
		return utils.AuditResourceSession
	}

	if parts := strings.Split(path, "/"); parts[0] != "" {
		return parts[0]
	}
	return "unknown"
}

// extractResourceID prefers the most specific route parameter
func extractResourceID(c *gin.Context) string {
	for _, name := range []string{"instanceId", "requestId", "index", "id"} {
		if id := c.Param(name); id != "" {
			return id
		}
	}
	if session, ok := SessionFromContext(c); ok {
		return strconv.FormatInt(session.UserID, 10)
	}
	return ""
}
