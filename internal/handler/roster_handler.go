package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studentdash/roster-backend/internal/coordinator"
	"github.com/studentdash/roster-backend/internal/middleware"
	"github.com/studentdash/roster-backend/internal/model"
	"github.com/studentdash/roster-backend/internal/response"
	"github.com/studentdash/roster-backend/internal/validator"
	"github.com/studentdash/roster-backend/internal/workspace"
)

// RosterHandler exposes the roster coordinator of the caller's workspace.
type RosterHandler struct {
	registry *workspace.Registry
}

// NewRosterHandler creates a new RosterHandler.
func NewRosterHandler(registry *workspace.Registry) *RosterHandler {
	return &RosterHandler{registry: registry}
}

// GetRoster godoc
// GET /api/v1/roster
// Returns the roster read model: all students, the filtered view, the filter and the load status.
func (h *RosterHandler) GetRoster(c *gin.Context) {
	ws := middleware.GetWorkspace(c)
	response.Success(c, http.StatusOK, ws.Roster.Snapshot())
}

// Refresh godoc
// POST /api/v1/roster/refresh?wait=false
// Reloads the roster from the data provider. With wait=false the call returns
// 202 immediately and the outcome is observable through the read model.
func (h *RosterHandler) Refresh(c *gin.Context) {
	ws := middleware.GetWorkspace(c)

	// The load belongs to the workspace, not to this request.
	if c.Query("wait") == "false" {
		go func() { _ = ws.Roster.Refresh(ws.Context()) }()
		response.Success(c, http.StatusAccepted, ws.Roster.Snapshot())
		return
	}

	if err := ws.Roster.Refresh(ws.Context()); err != nil {
		response.FailWithMessage(c, http.StatusBadGateway, response.ErrFetchFailed, ws.Roster.Snapshot().LastError)
		return
	}
	response.Success(c, http.StatusOK, ws.Roster.Snapshot())
}

// SetFilter godoc
// PUT /api/v1/roster/filter
// Selects the course shown by the filtered view ("all" for every course).
func (h *RosterHandler) SetFilter(c *gin.Context) {
	var req model.SetFilterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	ws := middleware.GetWorkspace(c)
	ws.Roster.SetFilter(model.CourseFilter(req.Course))
	response.Success(c, http.StatusOK, ws.Roster.Snapshot())
}

// AddStudent godoc
// POST /api/v1/students
// Validates the draft and adds the student through the data provider.
func (h *RosterHandler) AddStudent(c *gin.Context) {
	var draft model.StudentDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload, validator.TranslateErrors(err))
		return
	}

	ws := middleware.GetWorkspace(c)
	student, err := ws.Roster.AddStudent(c.Request.Context(), draft)
	if err != nil {
		var ve *coordinator.ValidationError
		if errors.As(err, &ve) {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, ve.Fields)
			return
		}
		response.Fail(c, http.StatusBadGateway, response.ErrAddFailed)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"student": student})
}

// GetStudent godoc
// GET /api/v1/students/:id
// Returns one student of the workspace roster.
func (h *RosterHandler) GetStudent(c *gin.Context) {
	ws := middleware.GetWorkspace(c)
	student, ok := ws.Roster.Find(c.Param("id"))
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"student": student})
}

// CloseWorkspace godoc
// DELETE /api/v1/workspace
// Tears the caller's workspace down.
func (h *RosterHandler) CloseWorkspace(c *gin.Context) {
	ws := middleware.GetWorkspace(c)
	if !h.registry.Release(ws.ID) {
		response.Fail(c, http.StatusNotFound, response.ErrWorkspaceNotFound)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "workspace closed"})
}
