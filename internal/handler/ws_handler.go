package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/studentdash/roster-backend/internal/coordinator"
	"github.com/studentdash/roster-backend/internal/middleware"
	"github.com/studentdash/roster-backend/internal/model"
	ws "github.com/studentdash/roster-backend/internal/websocket"
	"github.com/studentdash/roster-backend/internal/workspace"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler pushes workspace read models to the dashboard.
type WSHandler struct {
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// WorkspaceStream godoc
// WS /ws/v1/workspace/stream?client_id=...
// Sends a snapshot on connect and after every roster or session change.
// Accepts set_filter, refresh and ping actions.
func (h *WSHandler) WorkspaceStream(c *gin.Context) {
	wsp := middleware.GetWorkspace(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, http.Header{middleware.HeaderClientID: {wsp.ID}})
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("workspace_id", wsp.ID).Logger()
	wsLog.Info().Msg("Dashboard connected")

	// Bursts of changes collapse into one pending snapshot.
	changed := make(chan struct{}, 1)
	signal := func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}
	stopRoster := wsp.Roster.Watch(signal)
	defer stopRoster()
	stopSession := wsp.Session.Watch(signal)
	defer stopSession()

	quit := make(chan struct{})
	defer close(quit)
	actions := make(chan ws.RequestPayload)
	readErr := make(chan error, 1)
	go readActions(conn, wsp.Touch, actions, readErr, quit)

	if err := ws.WriteTyped(conn, snapshotOf(wsp)); err != nil {
		return
	}

	ping := time.NewTicker(ws.PingPeriod)
	defer ping.Stop()

	// This loop is the only writer on conn.
	for {
		select {
		case <-wsp.Context().Done():
			ws.WriteError(conn, "workspace closed")
			return

		case err := <-readErr:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return

		case <-changed:
			wsp.Touch()
			if err := ws.WriteTyped(conn, snapshotOf(wsp)); err != nil {
				return
			}

		case msg := <-actions:
			wsp.Touch()
			if err := h.handleAction(conn, wsp, msg); err != nil {
				return
			}

		case <-ping.C:
			if err := ws.WritePing(conn); err != nil {
				return
			}
		}
	}
}

func (h *WSHandler) handleAction(conn *websocket.Conn, wsp *workspace.Workspace, msg ws.RequestPayload) error {
	switch msg.Action {
	case ws.ActionSetFilter:
		if strings.TrimSpace(msg.Course) == "" {
			return ws.WriteError(conn, "course is required")
		}
		wsp.Roster.SetFilter(model.CourseFilter(msg.Course))
		return nil
	case ws.ActionRefresh:
		// Outcome arrives as snapshots.
		go func() { _ = wsp.Roster.Refresh(wsp.Context()) }()
		return nil
	case ws.ActionPing:
		return ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
	default:
		h.log.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
		return ws.WriteError(conn, "unknown action: "+string(msg.Action))
	}
}

// readActions feeds client actions to the writer loop. A pong counts as
// activity, so an idle but connected dashboard is not reaped.
func readActions(conn *websocket.Conn, touch func(), out chan<- ws.RequestPayload, errc chan<- error, quit <-chan struct{}) {
	ws.KeepAlive(conn, touch)
	for {
		var msg ws.RequestPayload
		if err := ws.ReadJSON(conn, &msg); err != nil {
			errc <- err
			return
		}
		select {
		case out <- msg:
		case <-quit:
			return
		}
	}
}

func snapshotOf(wsp *workspace.Workspace) ws.SnapshotResponse {
	session := wsp.Session.Snapshot()
	return ws.SnapshotResponse{
		Event:       ws.EventSnapshot,
		WorkspaceID: wsp.ID,
		Roster:      wsp.Roster.Snapshot(),
		Session:     session,
		Guard:       coordinator.Guard(session).String(),
	}
}
