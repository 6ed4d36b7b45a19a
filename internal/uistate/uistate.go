// Package uistate derives the navigation and theme classes of the page
// chrome from an explicit state value owned by the request handler.
package uistate

import (
	"net/http"
	"strings"
	"time"
)

// Theme is the colour scheme of the page chrome.
type Theme string

// Themes.
const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// ThemeCookie carries the user's theme choice between requests.
const ThemeCookie = "theme"

const (
	lightStylesheet = "https://cdn.jsdelivr.net/npm/bootstrap@5.3.0-alpha1/dist/css/bootstrap.min.css"
	darkStylesheet  = "https://cdn.replit.com/agent/bootstrap-agent-dark-theme.min.css"
)

// State is the chrome state for one rendered page.
type State struct {
	Theme       Theme  `json:"theme"`
	Path        string `json:"path"`
	SidebarOpen bool   `json:"sidebar_open"`
}

// ParseTheme falls back to Light for anything but "dark".
func ParseTheme(s string) Theme {
	if Theme(s) == Dark {
		return Dark
	}
	return Light
}

// FromRequest reads the theme cookie and the request path.
func FromRequest(r *http.Request) State {
	s := State{Theme: Light, Path: r.URL.Path}
	if c, err := r.Cookie(ThemeCookie); err == nil {
		s.Theme = ParseTheme(c.Value)
	}
	return s
}

// Toggle returns the state with the other theme.
func (s State) Toggle() State {
	if s.Theme == Dark {
		s.Theme = Light
	} else {
		s.Theme = Dark
	}
	return s
}

// ToggleSidebar returns the state with the mobile sidebar flipped.
func (s State) ToggleSidebar() State {
	s.SidebarOpen = !s.SidebarOpen
	return s
}

// HTMLTheme is the value of the root data-bs-theme attribute.
func (s State) HTMLTheme() string { return string(s.Theme) }

// StylesheetURL is the Bootstrap build for the theme.
func (s State) StylesheetURL() string {
	if s.Theme == Dark {
		return darkStylesheet
	}
	return lightStylesheet
}

// NavbarClasses returns the navbar colour classes.
func (s State) NavbarClasses() []string {
	if s.Theme == Dark {
		return []string{"navbar-dark", "bg-dark"}
	}
	return []string{"navbar-light", "bg-light"}
}

// SidebarClasses returns the sidebar classes.
func (s State) SidebarClasses() []string {
	out := []string{"sidebar"}
	if s.Theme == Light {
		out = append(out, "sidebar-light")
	}
	if s.SidebarOpen {
		out = append(out, "active")
	}
	return out
}

// ThemeIcons reports which of the light/dark toggle icons is hidden.
func (s State) ThemeIcons() (lightHidden, darkHidden bool) {
	return s.Theme == Light, s.Theme == Dark
}

// IsActiveNav reports whether a sidebar link points at path or one of its
// parents. The root link only matches itself.
func IsActiveNav(href, path string) bool {
	return href == path || (href != "/" && strings.HasPrefix(path, href))
}

// NavClasses returns the classes for a sidebar link.
func (s State) NavClasses(href string) []string {
	if IsActiveNav(href, s.Path) {
		return []string{"nav-link", "active"}
	}
	return []string{"nav-link"}
}

// Cookie builds the cookie persisting the state's theme.
func (s State) Cookie() *http.Cookie {
	return &http.Cookie{
		Name:     ThemeCookie,
		Value:    string(s.Theme),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
