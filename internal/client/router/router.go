package router

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/clouddrive/internal/logging"
)

const (
	PathRoot      = "/"
	PathLogin     = "/login"
	PathRegister  = "/register"
	PathDashboard = "/dashboard"
)

// maxHops bounds redirect chains; the default table needs at most three.
const maxHops = 8

var (
	ErrRouteNotFound     = errors.New("route not found")
	ErrTooManyRedirects  = errors.New("too many redirects")
	errDuplicateRoute    = errors.New("duplicate route")
	errRedirectWithClass = errors.New("redirect route cannot be guarded")
)

// Route is one entry of the route table. A route with RedirectTo set is
// never entered itself; navigation continues at the target.
type Route struct {
	Path       string
	Name       string
	Class      RouteClass
	RedirectTo string
}

// SessionChecker reports whether a session is present.
type SessionChecker interface {
	IsAuthenticated(ctx context.Context) bool
}

// Observer is told about every completed route change.
type Observer func(ctx context.Context, from, to Route)

// DefaultRoutes is the navigation surface of the client.
func DefaultRoutes() []Route {
	return []Route{
		{Path: PathRoot, RedirectTo: PathDashboard},
		{Path: PathLogin, Name: "Login", Class: PublicOnly},
		{Path: PathRegister, Name: "Register", Class: PublicOnly},
		{Path: PathDashboard, Name: "Dashboard", Class: Protected},
	}
}

type Router struct {
	session   SessionChecker
	logger    logging.Logger
	routes    map[string]Route
	observers []Observer

	mu      sync.RWMutex
	current Route
}

type Option func(*Router)

func WithObserver(o Observer) Option {
	return func(r *Router) { r.observers = append(r.observers, o) }
}

func WithLogger(l logging.Logger) Option {
	return func(r *Router) { r.logger = l }
}

// New builds a router over routes. Paths must be unique.
func New(session SessionChecker, routes []Route, opts ...Option) (*Router, error) {
	r := &Router{
		session: session,
		logger:  logging.NewNop(),
		routes:  make(map[string]Route, len(routes)),
	}
	for _, rt := range routes {
		rt.Path = normalize(rt.Path)
		if _, dup := r.routes[rt.Path]; dup {
			return nil, fmt.Errorf("%w: %s", errDuplicateRoute, rt.Path)
		}
		if rt.RedirectTo != "" && rt.Class == Protected {
			return nil, fmt.Errorf("%w: %s", errRedirectWithClass, rt.Path)
		}
		r.routes[rt.Path] = rt
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// NewDefault builds a router over DefaultRoutes.
func NewDefault(session SessionChecker, opts ...Option) *Router {
	r, _ := New(session, DefaultRoutes(), opts...)
	return r
}

// Current returns the active route. The zero Route means nothing has been
// entered yet.
func (r *Router) Current() Route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Navigate evaluates the guard for path and every redirect it produces, and
// enters the first route that is allowed. The session is read at each hop.
func (r *Router) Navigate(ctx context.Context, path string) (Route, error) {
	target := normalize(path)

	for hop := 0; hop < maxHops; hop++ {
		rt, ok := r.routes[target]
		if !ok {
			return Route{}, fmt.Errorf("%w: %s", ErrRouteNotFound, target)
		}

		if rt.RedirectTo != "" {
			target = normalize(rt.RedirectTo)
			continue
		}

		decision := Evaluate(rt.Class, r.session.IsAuthenticated(ctx))
		r.logger.Debug(ctx, "route guard evaluated", "path", rt.Path, "class", rt.Class.String(), "decision", decision.String())

		switch decision {
		case RedirectToLogin:
			target = PathLogin
		case RedirectToDashboard:
			target = PathDashboard
		default:
			r.enter(ctx, rt)
			return rt, nil
		}
	}

	return Route{}, fmt.Errorf("%w: %s", ErrTooManyRedirects, path)
}

// Redirect navigates without returning an error to the caller; failures are
// logged. It is what the request pipeline uses to force the login view.
func (r *Router) Redirect(ctx context.Context, path string) {
	if _, err := r.Navigate(ctx, path); err != nil {
		r.logger.Error(ctx, "redirect failed", "path", path, "error", err.Error())
	}
}

func (r *Router) enter(ctx context.Context, rt Route) {
	r.mu.Lock()
	from := r.current
	r.current = rt
	r.mu.Unlock()

	if from.Path == rt.Path {
		return
	}
	for _, o := range r.observers {
		o(ctx, from, rt)
	}
}

func normalize(path string) string {
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = PathRoot
		}
	}
	return path
}
