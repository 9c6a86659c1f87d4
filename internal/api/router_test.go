package api_test

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/hugh/go-portal/internal/api"
	"github.com/hugh/go-portal/internal/api/handlers"
	"github.com/hugh/go-portal/internal/auth"
	"github.com/hugh/go-portal/internal/testutil"
	"github.com/hugh/go-portal/internal/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

func newServer(t *testing.T) (*browser, *testutil.TestSetup) {
	t.Helper()

	setup := testutil.NewTestContext(t)
	tmpl, err := web.LoadTemplates()
	require.NoError(t, err)
	static, err := web.GetStaticFS()
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Store:          setup.Store,
		Logger:         setup.Logger,
		AuthService:    setup.AuthService,
		Sessions:       setup.Sessions,
		Templates:      tmpl,
		StaticFS:       static,
		MetricsEnabled: true,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &browser{
		t:    t,
		base: srv.URL,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}, setup
}

func (b *browser) get(path string) (*http.Response, string) {
	b.t.Helper()
	resp, err := b.client.Get(b.base + path)
	require.NoError(b.t, err)
	return resp, readBody(b.t, resp)
}

func (b *browser) post(path string, form url.Values) (*http.Response, string) {
	b.t.Helper()
	resp, err := b.client.PostForm(b.base+path, form)
	require.NoError(b.t, err)
	return resp, readBody(b.t, resp)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestRouter_UserFlow(t *testing.T) {
	b, _ := newServer(t)

	resp, _ := b.get("/check_session")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = b.post("/register", url.Values{
		"name":     {"Bob"},
		"surname":  {"Builder"},
		"username": {"bob"},
		"password": {testutil.TestPassword},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, _ = b.post("/login", url.Values{"username": {"bob"}, "password": {"nope-nope"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	_, body := b.get("/")
	assert.Contains(t, body, handlers.InvalidCredentialsMessage)
	_, body = b.get("/")
	assert.NotContains(t, body, handlers.InvalidCredentialsMessage)

	resp, _ = b.post("/login", url.Values{"username": {"bob"}, "password": {testutil.TestPassword}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/home", resp.Header.Get("Location"))

	resp, body = b.get("/home")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Welcome, Bob Builder")
	assert.Contains(t, resp.Header.Get("Cache-Control"), "no-store")

	resp, _ = b.get("/check_session")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// a user session does not open organization pages
	resp, _ = b.get("/org_home")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/org_login", resp.Header.Get("Location"))

	resp, _ = b.get("/logout")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	resp, _ = b.get("/home")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	resp, _ = b.get("/check_session")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_OrgFlow(t *testing.T) {
	b, _ := newServer(t)

	resp, _ := b.post("/org_register", url.Values{
		"name":     {"Acme Inc"},
		"address":  {"1 Main Street"},
		"phone":    {"+1 555 0100"},
		"email":    {"ops@acme.example"},
		"orgname":  {"acme"},
		"password": {testutil.TestPassword},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/org_login", resp.Header.Get("Location"))

	resp, _ = b.post("/org_login", url.Values{"orgname": {"ACME"}, "password": {testutil.TestPassword}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/org_home", resp.Header.Get("Location"))

	resp, body := b.get("/org_home")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Acme Inc")

	// an organization session does not open user pages
	resp, _ = b.get("/home")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, _ = b.get("/org_logout")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/org_login", resp.Header.Get("Location"))

	resp, _ = b.get("/org_home")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestRouter_FlashStaysOnItsLoginPage(t *testing.T) {
	b, setup := newServer(t)
	testutil.CreateTestUser(t, setup.AuthService, "bob")
	testutil.CreateTestOrg(t, setup.AuthService, "acme")

	resp, _ := b.post("/login", url.Values{"username": {"bob"}, "password": {"nope-nope"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, body := b.get("/org_login")
	assert.NotContains(t, body, handlers.InvalidCredentialsMessage)
	_, body = b.get("/")
	assert.Contains(t, body, handlers.InvalidCredentialsMessage)

	resp, _ = b.post("/org_login", url.Values{"orgname": {"acme"}, "password": {"nope-nope"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, body = b.get("/")
	assert.NotContains(t, body, handlers.InvalidCredentialsMessage)
	_, body = b.get("/org_login")
	assert.Contains(t, body, handlers.InvalidCredentialsMessage)
}

func TestRouter_SessionForUnknownIdentity(t *testing.T) {
	b, setup := newServer(t)

	cookie, err := setup.Sessions.Issue(auth.KindUser, "ghost")
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, b.base+"/home", nil)
	require.NoError(t, err)
	req.AddCookie(cookie)

	resp, err := b.client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	var cleared *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == auth.SessionCookieName {
			cleared = c
		}
	}
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)
}

func TestRouter_Infrastructure(t *testing.T) {
	b, _ := newServer(t)

	resp, body := b.get("/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"status":"healthy"`)

	resp, _ = b.get("/ready")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = b.get("/static/css/style.css")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(body, ".card"))

	// hit a page so the request counter has a series
	b.get("/guest_home")
	resp, body = b.get("/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "go_portal_http_requests_total")
}
