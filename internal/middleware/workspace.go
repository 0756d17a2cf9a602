package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/studentdash/roster-backend/internal/coordinator"
	"github.com/studentdash/roster-backend/internal/response"
	"github.com/studentdash/roster-backend/internal/workspace"
)

const (
	// HeaderClientID carries the workspace ID between client and server.
	HeaderClientID = "X-Client-ID"
	// ContextKeyWorkspace is the Gin context key for the resolved workspace.
	ContextKeyWorkspace = "workspace"
)

// ResolveWorkspace attaches the caller's workspace to the context, opening a
// new one when the client ID is missing or unknown. A bearer token sent with
// the opening request is used to restore the session.
func ResolveWorkspace(registry *workspace.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.GetHeader(HeaderClientID)
		if clientID == "" {
			clientID = c.Query("client_id")
		}

		ws, _ := registry.Acquire(clientID, bearerToken(c))

		c.Set(ContextKeyWorkspace, ws)
		c.Set(response.ContextKeyWorkspaceID, ws.ID)
		c.Header(HeaderClientID, ws.ID)
		c.Next()
	}
}

// GetWorkspace retrieves the workspace resolved by ResolveWorkspace.
func GetWorkspace(c *gin.Context) *workspace.Workspace {
	val, exists := c.Get(ContextKeyWorkspace)
	if !exists {
		return nil
	}
	ws, ok := val.(*workspace.Workspace)
	if !ok {
		return nil
	}
	return ws
}

// RequireSession guards routes that need a signed-in user. While the session
// is still initializing it waits up to wait for the provider to report.
func RequireSession(wait time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws := GetWorkspace(c)
		if ws == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionRequired)
			return
		}

		decision := coordinator.Guard(ws.Session.Snapshot())
		if decision == coordinator.GuardWait {
			ctx, cancel := context.WithTimeout(c.Request.Context(), wait)
			_ = ws.Session.WaitReady(ctx)
			cancel()
			decision = coordinator.Guard(ws.Session.Snapshot())
		}

		switch decision {
		case coordinator.GuardWait:
			response.AbortFail(c, http.StatusServiceUnavailable, response.ErrSessionPending)
		case coordinator.GuardRedirectLogin:
			response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionRequired)
		default:
			c.Next()
		}
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	// Fallback for WebSocket upgrades which cannot send headers from browsers.
	return c.Query("token")
}
