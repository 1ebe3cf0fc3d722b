package auth

import "budgetmate-backend/internal/models"

// Decision: what to do with a request for a gated view.
type Decision int

const (
	Render Decision = iota
	RedirectToLogin
	RedirectToHome
)

func (d Decision) String() string {
	switch d {
	case Render:
		return "render"
	case RedirectToLogin:
		return "redirect_to_login"
	case RedirectToHome:
		return "redirect_to_home"
	}
	return "unknown"
}

// Decide gates a view on session presence and role membership.
// No session wins over everything else. A nil allowed set means any
// authenticated role may pass; an unset role counts as "user".
// Pure function, no side effects.
func Decide(hasSession bool, role models.UserRole, allowed []models.UserRole) Decision {
	if !hasSession {
		return RedirectToLogin
	}
	if allowed == nil {
		return Render
	}
	if role == "" {
		role = models.RoleUser
	}
	for _, r := range allowed {
		if r == role {
			return Render
		}
	}
	return RedirectToHome
}
