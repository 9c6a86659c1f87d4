package auth

import (
	"context"
	"net/http"

	"github.com/hugh/go-portal/internal/store/models"
)

// Authenticator defines registration and credential checks for both
// account kinds.
type Authenticator interface {
	RegisterUser(ctx context.Context, input RegisterUserInput) (*models.User, error)
	RegisterOrganization(ctx context.Context, input RegisterOrgInput) (*models.Organization, error)
	LoginUser(ctx context.Context, username, password string) (*models.User, error)
	LoginOrganization(ctx context.Context, orgname, password string) (*models.Organization, error)
	CurrentUser(ctx context.Context, key string) (*models.User, error)
	CurrentOrganization(ctx context.Context, key string) (*models.Organization, error)
}

// Sessions defines the cookie operations the HTTP layer relies on.
type Sessions interface {
	Issue(kind Kind, key string) (*http.Cookie, error)
	Resolve(value string) (Identity, bool)
	ResolveRequest(r *http.Request, kind Kind) (Identity, bool)
	HasSession(r *http.Request) bool
	Revoke() *http.Cookie
	SetFlash(w http.ResponseWriter, kind Kind, message string)
	PopFlash(w http.ResponseWriter, r *http.Request, kind Kind) string
	ClearFlash(w http.ResponseWriter, kind Kind)
}

// Compile-time interface satisfaction checks
var (
	_ Authenticator = (*Service)(nil)
	_ Sessions      = (*SessionManager)(nil)
)
