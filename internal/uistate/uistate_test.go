package uistate

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromRequestDefaultsToLight(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/documents", nil)
	s := FromRequest(r)
	assert.Equal(t, Light, s.Theme)
	assert.Equal(t, "/documents", s.Path)
}

func TestFromRequestReadsCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: ThemeCookie, Value: "dark"})
	assert.Equal(t, Dark, FromRequest(r).Theme)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: ThemeCookie, Value: "sepia"})
	assert.Equal(t, Light, FromRequest(r).Theme)
}

func TestToggle(t *testing.T) {
	s := State{Theme: Light}
	d := s.Toggle()
	assert.Equal(t, Dark, d.Theme)
	assert.Equal(t, Light, s.Theme, "toggle must not mutate the receiver")
	assert.Equal(t, Light, d.Toggle().Theme)
}

func TestDerivedClasses(t *testing.T) {
	light := State{Theme: Light}
	dark := State{Theme: Dark, SidebarOpen: true}

	assert.Equal(t, []string{"navbar-light", "bg-light"}, light.NavbarClasses())
	assert.Equal(t, []string{"navbar-dark", "bg-dark"}, dark.NavbarClasses())
	assert.Equal(t, []string{"sidebar", "sidebar-light"}, light.SidebarClasses())
	assert.Equal(t, []string{"sidebar", "active"}, dark.SidebarClasses())
	assert.Equal(t, "dark", dark.HTMLTheme())
	assert.Contains(t, light.StylesheetURL(), "bootstrap.min.css")
	assert.NotEqual(t, light.StylesheetURL(), dark.StylesheetURL())

	lh, dh := light.ThemeIcons()
	assert.True(t, lh)
	assert.False(t, dh)
}

func TestIsActiveNav(t *testing.T) {
	tests := []struct {
		href, path string
		want       bool
	}{
		{"/", "/", true},
		{"/", "/documents", false},
		{"/documents", "/documents", true},
		{"/documents", "/documents/12", true},
		{"/workflow", "/documents", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsActiveNav(tt.href, tt.path), "%s vs %s", tt.href, tt.path)
	}
	s := State{Path: "/workflow/3"}
	assert.Equal(t, []string{"nav-link", "active"}, s.NavClasses("/workflow"))
	assert.Equal(t, []string{"nav-link"}, s.NavClasses("/documents"))
}

func TestCookie(t *testing.T) {
	c := State{Theme: Dark}.Cookie()
	assert.Equal(t, ThemeCookie, c.Name)
	assert.Equal(t, "dark", c.Value)
	assert.Equal(t, "/", c.Path)
}
