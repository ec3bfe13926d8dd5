// Package router gates navigation between the client's views. The guard is a
// pure function of the route class and the session state; Router applies it
// on every navigation and follows the resulting redirects.
package router

// RouteClass says whether a view requires the absence or the presence of a
// session.
type RouteClass int

const (
	// PublicOnly views (login, register) are for anonymous users only.
	PublicOnly RouteClass = iota
	// Protected views (dashboard) require a session.
	Protected
)

func (c RouteClass) String() string {
	switch c {
	case PublicOnly:
		return "public-only"
	case Protected:
		return "protected"
	default:
		return "unknown"
	}
}

// Decision is the outcome of evaluating a navigation attempt.
type Decision int

const (
	Allow Decision = iota
	RedirectToLogin
	RedirectToDashboard
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "redirect-to-login"
	case RedirectToDashboard:
		return "redirect-to-dashboard"
	default:
		return "unknown"
	}
}

// Evaluate decides whether a view of the given class may be entered.
func Evaluate(class RouteClass, authenticated bool) Decision {
	switch class {
	case Protected:
		if authenticated {
			return Allow
		}
		return RedirectToLogin
	default:
		if authenticated {
			return RedirectToDashboard
		}
		return Allow
	}
}
