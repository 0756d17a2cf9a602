package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/studentdash/roster-backend/internal/response"
)

const healthTimeout = 2 * time.Second

// Pinger is a backing service the health check probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// SystemHandler reports process health.
type SystemHandler struct {
	deps       map[string]Pinger
	workspaces func() int
	startTime  time.Time
	log        zerolog.Logger
}

// NewSystemHandler creates a SystemHandler probing deps by name.
func NewSystemHandler(deps map[string]Pinger, workspaces func() int, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		deps:       deps,
		workspaces: workspaces,
		startTime:  time.Now(),
		log:        log.With().Str("component", "system_handler").Logger(),
	}
}

// Health godoc
// GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	status := "ok"
	checks := make(map[string]string, len(h.deps))
	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			h.log.Warn().Err(err).Str("dependency", name).Msg("Health check failed")
			checks[name] = "down"
			status = "degraded"
			continue
		}
		checks[name] = "up"
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	response.Success(c, code, gin.H{
		"status":     status,
		"checks":     checks,
		"workspaces": h.workspaces(),
		"uptime":     time.Since(h.startTime).Round(time.Second).String(),
	})
}
