package websocket

import "github.com/studentdash/roster-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionSetFilter Action = "set_filter"
	ActionRefresh   Action = "refresh"
	ActionPing      Action = "ping"
)

// RequestPayload is any client message. Course is only read by set_filter.
type RequestPayload struct {
	Action Action `json:"action"`
	Course string `json:"course,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventSnapshot Event = "snapshot"
	EventError    Event = "error"
	EventPong     Event = "pong"
)

// SnapshotResponse carries both read models of a workspace.
type SnapshotResponse struct {
	Event       Event                 `json:"event"`
	WorkspaceID string                `json:"workspace_id"`
	Roster      model.RosterSnapshot  `json:"roster"`
	Session     model.SessionSnapshot `json:"session"`
	Guard       string                `json:"guard"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
