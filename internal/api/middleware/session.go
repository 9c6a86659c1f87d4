package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hugh/go-portal/internal/auth"
	"github.com/hugh/go-portal/internal/store/models"
)

type contextKey string

const (
	UserKey         contextKey = "user"
	OrganizationKey contextKey = "organization"
)

// GenericErrorMessage is shown when a stored record cannot be read.
const GenericErrorMessage = "Something went wrong. Please try again."

// RequireUser resolves the session cookie to a stored user. Anonymous
// requests, and sessions whose user no longer exists, are sent to loginPath
// with the session cookie cleared.
func RequireUser(sessions auth.Sessions, authn auth.Authenticator, logger *slog.Logger, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := sessions.ResolveRequest(r, auth.KindUser)
			if !ok {
				handleAnonymous(w, r, sessions, loginPath)
				return
			}

			user, err := authn.CurrentUser(r.Context(), id.Key)
			if err != nil {
				handleLookupError(w, r, sessions, logger, loginPath, id, err)
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireOrganization is RequireUser for organization sessions.
func RequireOrganization(sessions auth.Sessions, authn auth.Authenticator, logger *slog.Logger, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := sessions.ResolveRequest(r, auth.KindOrganization)
			if !ok {
				handleAnonymous(w, r, sessions, loginPath)
				return
			}

			org, err := authn.CurrentOrganization(r.Context(), id.Key)
			if err != nil {
				handleLookupError(w, r, sessions, logger, loginPath, id, err)
				return
			}

			ctx := context.WithValue(r.Context(), OrganizationKey, org)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func handleAnonymous(w http.ResponseWriter, r *http.Request, sessions auth.Sessions, loginPath string) {
	http.SetCookie(w, sessions.Revoke())
	http.Redirect(w, r, loginPath, http.StatusSeeOther)
}

func handleLookupError(w http.ResponseWriter, r *http.Request, sessions auth.Sessions, logger *slog.Logger, loginPath string, id auth.Identity, err error) {
	if errors.Is(err, auth.ErrNotFound) {
		logger.Warn("session for unknown identity", "kind", id.Kind, "key", id.Key)
		handleAnonymous(w, r, sessions, loginPath)
		return
	}

	logger.Error("loading session identity", "kind", id.Kind, "key", id.Key, "error", err)
	sessions.SetFlash(w, id.Kind, GenericErrorMessage)
	http.Redirect(w, r, loginPath, http.StatusSeeOther)
}

// Helper functions to extract values from context
func GetUser(ctx context.Context) *models.User {
	if user, ok := ctx.Value(UserKey).(*models.User); ok {
		return user
	}
	return nil
}

func GetOrganization(ctx context.Context) *models.Organization {
	if org, ok := ctx.Value(OrganizationKey).(*models.Organization); ok {
		return org
	}
	return nil
}
