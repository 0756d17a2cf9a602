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
)

// AuthHandler exposes the session coordinator of the caller's workspace.
type AuthHandler struct{}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// GetSession godoc
// GET /api/v1/session
// Returns the session read model of the workspace.
func (h *AuthHandler) GetSession(c *gin.Context) {
	ws := middleware.GetWorkspace(c)
	snapshot := ws.Session.Snapshot()

	response.Success(c, http.StatusOK, gin.H{
		"session":      snapshot.Session,
		"initializing": snapshot.Initializing,
		"guard":        coordinator.Guard(snapshot).String(),
	})
}

// Login godoc
// POST /api/v1/auth/login
// Signs the workspace in with email + password.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.CredentialsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	ws := middleware.GetWorkspace(c)
	if err := ws.Session.Login(c.Request.Context(), req.Email, req.Password); err != nil {
		failAuth(c, err)
		return
	}

	response.Success(c, http.StatusOK, ws.Session.Snapshot())
}

// Register godoc
// POST /api/v1/auth/register
// Creates an account and signs the workspace in with it.
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.CredentialsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	ws := middleware.GetWorkspace(c)
	if err := ws.Session.Register(c.Request.Context(), req.Email, req.Password); err != nil {
		failAuth(c, err)
		return
	}

	response.Success(c, http.StatusCreated, ws.Session.Snapshot())
}

// Logout godoc
// POST /api/v1/auth/logout
// Ends the workspace's session.
func (h *AuthHandler) Logout(c *gin.Context) {
	ws := middleware.GetWorkspace(c)
	if err := ws.Session.Logout(c.Request.Context()); err != nil {
		response.Fail(c, http.StatusBadGateway, response.ErrAuthFailed)
		return
	}

	response.Success(c, http.StatusOK, ws.Session.Snapshot())
}

func failAuth(c *gin.Context, err error) {
	switch {
	case errors.Is(err, coordinator.ErrInvalidCredentials):
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
	case errors.Is(err, coordinator.ErrEmailAlreadyInUse):
		response.Fail(c, http.StatusConflict, response.ErrEmailAlreadyInUse)
	default:
		response.Fail(c, http.StatusBadGateway, response.ErrAuthFailed)
	}
}
