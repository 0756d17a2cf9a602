package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrEmailAlreadyInUse  ErrCode = "EMAIL_ALREADY_IN_USE"
	ErrSessionRequired    ErrCode = "SESSION_REQUIRED"
	ErrSessionPending     ErrCode = "SESSION_PENDING"
	ErrAuthFailed         ErrCode = "AUTH_FAILED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound          ErrCode = "NOT_FOUND"
	ErrWorkspaceNotFound ErrCode = "WORKSPACE_NOT_FOUND"

	// ─── Roster ────────────────────────────────────────────────────────
	ErrFetchFailed ErrCode = "FETCH_FAILED"
	ErrAddFailed   ErrCode = "ADD_STUDENT_FAILED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Invalid email or password"
	case ErrEmailAlreadyInUse:
		return "Email is already in use"
	case ErrSessionRequired:
		return "Please log in to continue"
	case ErrSessionPending:
		return "Session is still being restored, try again shortly"
	case ErrAuthFailed:
		return "Authentication failed"

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed, please check your input"
	case ErrInvalidPayload:
		return "Invalid request payload"

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found"
	case ErrWorkspaceNotFound:
		return "Workspace not found"

	// ─── Roster ────────────────────────────────────────────────────────
	case ErrFetchFailed:
		return "Failed to fetch students"
	case ErrAddFailed:
		return "Failed to add student"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests, please try again later"

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Internal server error"
	default:
		return "An unexpected error occurred"
	}
}
