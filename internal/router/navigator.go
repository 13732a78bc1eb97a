package router

import (
	"fmt"
	"log/slog"
	"sync"
)

// SessionState reports whether a user is signed in
type SessionState interface {
	Authenticated() bool
}

// Location is where the navigator currently points
type Location struct {
	Name     string            `json:"name"`
	View     string            `json:"view"`
	Path     string            `json:"path"`
	FullPath string            `json:"full_path"`
	Params   map[string]string `json:"params,omitempty"`
	Title    string            `json:"title"`
}

// Navigation describes one Push: the requested target, what the guard decided
// and where navigation ended up.
type Navigation struct {
	Requested string   `json:"requested"`
	Guard     Result   `json:"guard"`
	Location  Location `json:"location"`
}

// Navigator applies the guard to every navigation and tracks the current location
type Navigator struct {
	router  *Router
	session SessionState
	logger  *slog.Logger

	mu      sync.RWMutex
	current Location
}

// NewNavigator creates a navigator positioned at the home page
func NewNavigator(r *Router, session SessionState, logger *slog.Logger) *Navigator {
	if logger == nil {
		logger = slog.Default()
	}
	n := &Navigator{router: r, session: session, logger: logger}
	n.current = Location{Name: NameHome, Path: HomePath, FullPath: HomePath, Title: AppTitle}
	if m, err := r.Resolve(HomePath); err == nil {
		n.current = locationOf(m)
	}
	return n
}

// Router returns the underlying route table
func (n *Navigator) Router() *Router {
	return n.router
}

// Current returns the current location
func (n *Navigator) Current() Location {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.current
}

// Check resolves target and runs the guard without moving
func (n *Navigator) Check(target string) (Match, Result, error) {
	m, err := n.router.Resolve(target)
	if err != nil {
		return Match{}, Result{}, err
	}
	return m, Guard(m, n.authenticated()), nil
}

// Push navigates to target. A guard redirect is followed once; a second
// redirect is an error and leaves the location unchanged.
func (n *Navigator) Push(target string) (Navigation, error) {
	m, res, err := n.Check(target)
	if err != nil {
		return Navigation{}, err
	}

	nav := Navigation{Requested: target, Guard: res}
	if res.Decision != Allow {
		n.logger.Info("Navigation redirected",
			slog.String("target", m.FullPath),
			slog.String("decision", res.Action),
			slog.String("redirect", res.Redirect),
		)

		var next Result
		m, next, err = n.Check(res.Redirect)
		if err != nil {
			return Navigation{}, err
		}
		if next.Decision != Allow {
			return Navigation{}, fmt.Errorf("redirect loop navigating to %s via %s", target, res.Redirect)
		}
		res = next
	}

	loc := locationOf(m)
	loc.Title = res.Title
	nav.Location = loc

	n.mu.Lock()
	n.current = loc
	n.mu.Unlock()

	n.logger.Debug("Navigated", slog.String("path", loc.FullPath), slog.String("title", loc.Title))
	return nav, nil
}

func (n *Navigator) authenticated() bool {
	return n.session != nil && n.session.Authenticated()
}

func locationOf(m Match) Location {
	leaf := m.Leaf()
	return Location{
		Name:     leaf.Name,
		View:     leaf.View,
		Path:     m.Path,
		FullPath: m.FullPath,
		Params:   m.Params,
		Title:    Title(m.Chain),
	}
}
