package coordinator

import "github.com/studentdash/roster-backend/internal/model"

// GuardDecision is the routing outcome for a protected route.
type GuardDecision int

const (
	// GuardWait means the identity provider has not reported yet.
	GuardWait GuardDecision = iota
	// GuardRedirectLogin means nobody is signed in.
	GuardRedirectLogin
	// GuardAllow means a session is present.
	GuardAllow
)

func (d GuardDecision) String() string {
	switch d {
	case GuardWait:
		return "wait"
	case GuardRedirectLogin:
		return "redirect_login"
	case GuardAllow:
		return "allow"
	default:
		return "unknown"
	}
}

// Guard decides access to a protected route from the session read model alone.
func Guard(s model.SessionSnapshot) GuardDecision {
	if s.Initializing {
		return GuardWait
	}
	if s.Session == nil {
		return GuardRedirectLogin
	}
	return GuardAllow
}
