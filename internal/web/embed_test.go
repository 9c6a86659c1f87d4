package web

import (
	"bytes"
	"testing"
	"testing/fstest"
	"time"

	"github.com/hugh/go-portal/internal/store/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTemplates(t *testing.T) {
	tmpl, err := LoadTemplates()
	require.NoError(t, err)

	for _, name := range Pages {
		assert.True(t, tmpl.Has(name), "missing page %s", name)
	}
}

func TestTemplates_PagesDoNotShareBlocks(t *testing.T) {
	tmpl, err := LoadTemplates()
	require.NoError(t, err)

	var login, orgLogin bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&login, "authentication.html", map[string]any{"Title": "Sign in"}))
	require.NoError(t, tmpl.ExecuteTemplate(&orgLogin, "org_login.html", map[string]any{"Title": "Organization sign in"}))

	assert.Contains(t, login.String(), `action="/login"`)
	assert.NotContains(t, login.String(), `action="/org_login"`)
	assert.Contains(t, orgLogin.String(), `action="/org_login"`)
}

func TestTemplates_EscapesError(t *testing.T) {
	tmpl, err := LoadTemplates()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = tmpl.ExecuteTemplate(&buf, "authentication.html", map[string]any{
		"Title": "Sign in",
		"Error": "<script>alert(1)</script>",
	})
	require.NoError(t, err)

	assert.NotContains(t, buf.String(), "<script>")
	assert.Contains(t, buf.String(), "&lt;script&gt;")
}

func TestTemplates_HomeShowsUser(t *testing.T) {
	tmpl, err := LoadTemplates()
	require.NoError(t, err)

	user := &models.User{Name: "Alice", Surname: "Smith", Username: "alice"}
	user.CreatedAt = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	err = tmpl.ExecuteTemplate(&buf, "home.html", map[string]any{"Title": "Home", "User": user})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "alice")
	assert.Contains(t, buf.String(), "1 Mar 2024")
}

func TestLoadTemplates_MissingRequiredPage(t *testing.T) {
	fsys := fstest.MapFS{
		"templates/layouts/base.html": {Data: []byte(`{{block "content" .}}{{end}}`)},
		"templates/pages/home.html":   {Data: []byte(`{{define "content"}}home{{end}}`)},
		"templates/pages/unused.html": {Data: []byte(`{{define "content"}}unused{{end}}`)},
	}

	_, err := loadTemplates(fsys, []string{"home.html"})
	require.NoError(t, err)

	_, err = loadTemplates(fsys, []string{"home.html", "org_home.html"})
	assert.ErrorContains(t, err, "org_home.html")
}

func TestTemplates_Unknown(t *testing.T) {
	tmpl, err := LoadTemplates()
	require.NoError(t, err)

	var buf bytes.Buffer
	assert.Error(t, tmpl.ExecuteTemplate(&buf, "missing.html", nil))
}

func TestGetStaticFS(t *testing.T) {
	static, err := GetStaticFS()
	require.NoError(t, err)

	f, err := static.Open("css/style.css")
	require.NoError(t, err)
	f.Close()
}
