package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports liveness and the state of the backing stores.  It
// always answers 200 so load balancers can tell "up but degraded" from "down".
type HealthHandler struct {
	DB      Pinger
	Redis   *redis.Client
	Env     string
	Started time.Time
}

func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	db := "disconnected"
	if h.DB != nil && h.DB.PingContext(ctx) == nil {
		db = "connected"
	}
	rds := "disabled"
	if h.Redis != nil {
		rds = "disconnected"
		if h.Redis.Ping(ctx).Err() == nil {
			rds = "connected"
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":      "success",
		"message":     "Server is running",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"uptime":      time.Since(h.Started).Seconds(),
		"environment": h.Env,
		"database":    db,
		"redis":       rds,
	})
}

// Welcome is served at the root path.
func Welcome(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Welcome to the Industry Portal API",
		"version": "1.0.0",
		"health":  "/health",
	})
}
