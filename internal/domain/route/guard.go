// Package route decides, for every navigation, whether a screen may render.
// Everything here is pure: no I/O, no clocks, no shared state.
package route

import (
	"strings"

	"github.com/tejinder0007/real-estate-frontend/internal/domain/auth"
)

// Screen paths.
const (
	PathHome     = "/"
	PathLogin    = "/login"
	PathRegister = "/register"
	PathAdmin    = "/admin"
	PathProperty = "/property/"
)

// Class is the access class a screen belongs to.
type Class int

const (
	ClassUnknown Class = iota
	ClassPublicOnly
	ClassUserProtected
	ClassAdminProtected
)

func (c Class) String() string {
	switch c {
	case ClassPublicOnly:
		return "public_only"
	case ClassUserProtected:
		return "user_protected"
	case ClassAdminProtected:
		return "admin_protected"
	default:
		return "unmatched"
	}
}

// Action is what the router should do with a navigation.
type Action int

const (
	ActionShowLoading Action = iota + 1
	ActionRender
	ActionRedirect
)

func (a Action) String() string {
	switch a {
	case ActionShowLoading:
		return "loading"
	case ActionRender:
		return "render"
	case ActionRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Decision is the guard's answer. Target is set only for ActionRedirect.
type Decision struct {
	Action Action
	Target string
}

var (
	loading = Decision{Action: ActionShowLoading}
	render  = Decision{Action: ActionRender}
)

func redirect(target string) Decision { return Decision{Action: ActionRedirect, Target: target} }

// Decide applies the access table for a known screen class.
func Decide(state auth.SessionState, class Class) Decision {
	if state.Resolving {
		return loading
	}

	id := state.Identity
	switch class {
	case ClassPublicOnly:
		if id.IsAnonymous() {
			return render
		}
		return redirect(PathHome)
	case ClassUserProtected:
		if id.IsAnonymous() {
			return redirect(PathLogin)
		}
		return render
	case ClassAdminProtected:
		switch id.Kind() {
		case auth.KindAdmin:
			return render
		case auth.KindUser:
			return redirect(PathHome)
		default:
			return redirect(PathLogin)
		}
	default:
		return Fallback(state)
	}
}

// Fallback handles navigations that match no screen.
func Fallback(state auth.SessionState) Decision {
	if state.Resolving {
		return loading
	}
	if state.Identity.IsAnonymous() {
		return redirect(PathLogin)
	}
	return redirect(PathHome)
}

// Classify maps a request path to its screen class. The boolean is false for
// paths that match no screen.
func Classify(path string) (Class, bool) {
	switch path {
	case PathLogin, PathRegister:
		return ClassPublicOnly, true
	case PathHome:
		return ClassUserProtected, true
	case PathAdmin:
		return ClassAdminProtected, true
	}
	if id, ok := strings.CutPrefix(path, PathProperty); ok && id != "" && !strings.Contains(id, "/") {
		return ClassUserProtected, true
	}
	return ClassUnknown, false
}

// Evaluate classifies path and decides on it, falling back for unmatched paths.
func Evaluate(state auth.SessionState, path string) Decision {
	class, ok := Classify(path)
	if !ok {
		return Fallback(state)
	}
	return Decide(state, class)
}

// Intent is a request to navigate somewhere. It carries no authority of its
// own: it must be evaluated like any other navigation.
type Intent struct {
	Target string
}

// ListingIntent returns the navigation intent toward the listing screen.
func ListingIntent() *Intent { return &Intent{Target: PathHome} }
