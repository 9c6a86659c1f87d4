package testutil

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/hugh/go-portal/internal/auth"
	"github.com/hugh/go-portal/internal/store"
	"github.com/hugh/go-portal/internal/store/models"
	"github.com/hugh/go-portal/pkg/config"
)

const (
	TestPassword      = "testpassword123"
	TestSessionSecret = "test-secret-key-for-testing"
)

// TestLogger discards everything.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SetupTestStore opens a store rooted in a fresh temp directory.
func SetupTestStore(t *testing.T) (*store.Store, *config.StorageConfig) {
	t.Helper()

	cfg := &config.StorageConfig{
		Root:      t.TempDir(),
		UsersDir:  "users",
		OrgsDir:   "organizations",
		CacheSize: 32,
	}

	st, err := store.Open(cfg, TestLogger())
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}

	return st, cfg
}

// CreateTestHasher uses the cheapest argon2id settings so tests stay fast.
func CreateTestHasher(t *testing.T) *auth.Hasher {
	t.Helper()

	hasher, err := auth.NewHasher(auth.Params{
		Memory:      1024,
		Iterations:  1,
		Parallelism: 1,
	})
	if err != nil {
		t.Fatalf("failed to create hasher: %v", err)
	}
	return hasher
}

func CreateTestSessions() *auth.SessionManager {
	return auth.NewSessionManager(TestSessionSecret, 30*time.Minute, false)
}

// CreateTestUser registers a user with TestPassword.
func CreateTestUser(t *testing.T, svc *auth.Service, username string) *models.User {
	t.Helper()

	user, err := svc.RegisterUser(context.Background(), auth.RegisterUserInput{
		Name:     "Test",
		Surname:  "User",
		Username: username,
		Email:    username + "@example.com",
		Password: TestPassword,
	})
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestOrg registers an organization with TestPassword.
func CreateTestOrg(t *testing.T, svc *auth.Service, orgname string) *models.Organization {
	t.Helper()

	org, err := svc.RegisterOrganization(context.Background(), auth.RegisterOrgInput{
		Name:     "Test Organization",
		Address:  "1 Main Street",
		Phone:    "+1 555 0100",
		Email:    orgname + "@example.com",
		Orgname:  orgname,
		Password: TestPassword,
	})
	if err != nil {
		t.Fatalf("failed to create test organization: %v", err)
	}
	return org
}

// FormRequest creates a request with a url-encoded form body.
func FormRequest(t *testing.T, method, path string, form url.Values) *http.Request {
	t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	return req
}

// SessionRequest creates a GET request carrying a session cookie for key.
func SessionRequest(t *testing.T, sessions *auth.SessionManager, path string, kind auth.Kind, key string) *http.Request {
	t.Helper()

	cookie, err := sessions.Issue(kind, key)
	if err != nil {
		t.Fatalf("failed to issue session: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.AddCookie(cookie)
	return req
}

// FindCookie returns the named cookie set on the response, or nil.
func FindCookie(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// AssertStatus checks if the response has the expected status code
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if rr.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, rr.Code, rr.Body.String())
	}
}

// TestContext creates a context with a timeout for tests
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// TestSetup holds all the common test dependencies
type TestSetup struct {
	Store       *store.Store
	StorageCfg  *config.StorageConfig
	Hasher      *auth.Hasher
	Sessions    *auth.SessionManager
	AuthService *auth.Service
	Logger      *slog.Logger
}

// NewTestContext wires a temp store, a cheap hasher, sessions and the
// auth service together.
func NewTestContext(t *testing.T) *TestSetup {
	t.Helper()

	st, cfg := SetupTestStore(t)
	hasher := CreateTestHasher(t)
	logger := TestLogger()

	return &TestSetup{
		Store:       st,
		StorageCfg:  cfg,
		Hasher:      hasher,
		Sessions:    CreateTestSessions(),
		AuthService: auth.NewService(st, hasher, logger),
		Logger:      logger,
	}
}
