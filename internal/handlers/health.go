package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sgeneral-iua/portal-sg/internal/config"
	"github.com/sgeneral-iua/portal-sg/internal/utils"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// HealthResponse reports the status of the portal's backing services
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// HealthCheck godoc
// @Summary Estado del servicio
// @Description Verifica la conexión con el almacén de sesiones y, si está configurada, con la base de auditoría
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse "Todos los servicios están operativos"
// @Failure 503 {object} HealthResponse "Uno o más servicios no responden"
// @Router /health [get]
func (h *Handler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	health := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Services:  make(map[string]string),
	}

	_, redisSpan := utils.TraceExternalService(ctx, "redis", "ping")
	if err := h.sessions.KV().Ping(ctx).Err(); err != nil {
		utils.RecordErrorInSpan(redisSpan, err, map[string]interface{}{"service.name": "redis"})
		health.Status = "unhealthy"
		health.Services["redis"] = "unhealthy"
	} else {
		health.Services["redis"] = "healthy"
	}
	redisSpan.End()

	// Audit storage is optional; its absence only degrades auditing
	if config.MongoDB != nil {
		_, mongoSpan := utils.TraceExternalService(ctx, "mongodb", "ping")
		if err := config.MongoDB.Client().Ping(ctx, readpref.Primary()); err != nil {
			utils.RecordErrorInSpan(mongoSpan, err, map[string]interface{}{"service.name": "mongodb"})
			health.Services["mongodb"] = "unhealthy"
		} else {
			health.Services["mongodb"] = "healthy"
		}
		mongoSpan.End()
	}

	if health.Status == "healthy" {
		c.JSON(http.StatusOK, health)
		return
	}
	c.JSON(http.StatusServiceUnavailable, health)
}
