package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/cache"
	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/dto"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	pingDB func() error
	redis  *cache.Client
}

// NewHealthHandler takes the database ping so it can be checked without a
// live connection in tests. redis may be nil.
func NewHealthHandler(pingDB func() error, redis *cache.Client) *HealthHandler {
	return &HealthHandler{pingDB: pingDB, redis: redis}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := h.pingDB(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	status := "ok"
	redisStatus := h.redis.Health(c.UserContext())
	if dbStatus != "ok" || (redisStatus != "ok" && redisStatus != "disabled") {
		status = "degraded"
	}

	return c.JSON(dto.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Redis:     redisStatus,
	})
}
