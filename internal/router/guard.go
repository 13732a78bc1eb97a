package router

import "net/url"

// AppTitle is the document title suffix
const AppTitle = "Storefront"

// Decision is the outcome of the navigation guard
type Decision int

const (
	Allow Decision = iota
	RedirectLogin
	RedirectHome
)

func (d Decision) String() string {
	switch d {
	case RedirectLogin:
		return "redirect_login"
	case RedirectHome:
		return "redirect_home"
	default:
		return "allow"
	}
}

// Result is what the guard decided for one navigation
type Result struct {
	Decision Decision `json:"-"`
	Action   string   `json:"decision"`
	Redirect string   `json:"redirect,omitempty"`
	Title    string   `json:"title"`
}

// Guard decides whether navigating to `to` is allowed given the session state.
// It is a pure function of the matched chain's metadata and authenticated.
func Guard(to Match, authenticated bool) Result {
	requiresAuth, requiresGuest := false, false
	for _, route := range to.Chain {
		requiresAuth = requiresAuth || route.Meta.RequiresAuth
		requiresGuest = requiresGuest || route.Meta.RequiresGuest
	}

	res := Result{Decision: Allow, Title: Title(to.Chain)}
	switch {
	case requiresAuth && !authenticated:
		res.Decision = RedirectLogin
		res.Redirect = LoginRedirect(to.FullPath)
	case requiresGuest && authenticated:
		res.Decision = RedirectHome
		res.Redirect = HomePath
	}
	res.Action = res.Decision.String()
	return res
}

// LoginRedirect builds the login location that returns to from after signing in.
// The login page itself gets no return target.
func LoginRedirect(from string) string {
	if from == "" || from == LoginPath || hasPathPrefix(from, LoginPath+"?") {
		return LoginPath
	}
	return LoginPath + "?" + url.Values{"redirect": {from}}.Encode()
}

// Title is "<title> - Storefront" for the innermost route with a title, or "Storefront"
func Title(chain []Route) string {
	for i := len(chain) - 1; i >= 0; i-- {
		if t := chain[i].Meta.Title; t != "" {
			return t + " - " + AppTitle
		}
	}
	return AppTitle
}

func hasPathPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
