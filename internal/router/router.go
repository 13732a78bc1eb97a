// Package router holds the storefront route table and the navigation guard
// that keeps guests out of account pages and signed-in users out of login.
package router

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
)

// ErrNoRoute is returned when no route matches and the table has no catch-all
var ErrNoRoute = errors.New("no route matches")

// Match is a resolved navigation target
type Match struct {
	// Chain lists the matched records from the outermost layout to the leaf
	Chain    []Route
	Params   map[string]string
	Query    url.Values
	Path     string
	FullPath string
}

// Leaf returns the innermost matched route
func (m Match) Leaf() Route {
	if len(m.Chain) == 0 {
		return Route{}
	}
	return m.Chain[len(m.Chain)-1]
}

type compiled struct {
	segments []string
	catchAll bool
	chain    []Route
}

// Router resolves paths against a route table
type Router struct {
	routes   []Route
	compiled []compiled
}

// New compiles routes; a nil table means DefaultRoutes
func New(routes []Route) *Router {
	if routes == nil {
		routes = DefaultRoutes()
	}

	r := &Router{routes: routes}
	var catchAll []compiled
	var walk func(prefix string, parents []Route, list []Route)
	walk = func(prefix string, parents []Route, list []Route) {
		for _, route := range list {
			full := joinPath(prefix, route.Path)
			chain := append(append([]Route(nil), parents...), route)

			if len(route.Children) > 0 {
				walk(full, chain, route.Children)
				continue
			}

			c := compiled{chain: chain}
			if route.Path == CatchAll {
				c.catchAll = true
				catchAll = append(catchAll, c)
				continue
			}
			c.segments = splitPath(full)
			r.compiled = append(r.compiled, c)
		}
	}
	walk("", nil, routes)
	r.compiled = append(r.compiled, catchAll...)
	return r
}

// Routes returns the route table
func (r *Router) Routes() []Route {
	return r.routes
}

// Resolve matches target, a path with an optional query string
func (r *Router) Resolve(target string) (Match, error) {
	u, err := url.Parse(target)
	if err != nil {
		return Match{}, fmt.Errorf("invalid navigation target %q: %w", target, err)
	}

	p := cleanPath(u.Path)
	m := Match{
		Query:    u.Query(),
		Path:     p,
		FullPath: p,
	}
	if u.RawQuery != "" {
		m.FullPath = p + "?" + u.RawQuery
	}

	segments := splitPath(p)
	for _, c := range r.compiled {
		if c.catchAll {
			m.Chain = c.chain
			m.Params = map[string]string{"path": p}
			return m, nil
		}
		if params, ok := matchSegments(c.segments, segments); ok {
			m.Chain = c.chain
			m.Params = params
			return m, nil
		}
	}
	return Match{}, fmt.Errorf("%w: %s", ErrNoRoute, p)
}

func matchSegments(pattern, segments []string) (map[string]string, bool) {
	if len(pattern) != len(segments) {
		return nil, false
	}

	params := map[string]string{}
	for i, seg := range pattern {
		if strings.HasPrefix(seg, ":") {
			if segments[i] == "" {
				return nil, false
			}
			params[seg[1:]] = segments[i]
			continue
		}
		if seg != segments[i] {
			return nil, false
		}
	}
	return params, true
}

func joinPath(prefix, p string) string {
	if strings.HasPrefix(p, "/") || p == CatchAll {
		return p
	}
	if p == "" {
		return cleanPath(prefix)
	}
	return cleanPath(prefix + "/" + p)
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	return path.Clean("/" + p)
}

func splitPath(p string) []string {
	trimmed := strings.Trim(p, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
