package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
)

func TestRequestTiming_SetsStartTimeAndSpan(t *testing.T) {
	router := gin.New()
	router.Use(RequestTiming())

	var (
		startTime time.Time
		hasSpan   bool
	)
	router.GET("/test", func(c *gin.Context) {
		startTime, _ = c.Value(RequestStartKey).(time.Time)
		hasSpan = trace.SpanFromContext(c.Request.Context()) != nil
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, startTime.IsZero())
	assert.True(t, hasSpan)
}

func TestRequestTiming_StatusCodes(t *testing.T) {
	router := gin.New()
	router.Use(RequestTiming())
	router.GET("/fail", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	for _, path := range []string{"/fail", "/unknown"} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			assert.NotEqual(t, http.StatusOK, w.Code)
		})
	}
}
