package auth

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	SessionCookieName  = "session_token"
	FlashCookieName    = "flash_error"
	OrgFlashCookieName = "org_flash_error"

	flashMaxAge = 60
	issuer      = "go-portal"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Kind tells which namespace a session identity belongs to.
type Kind string

const (
	KindUser         Kind = "user"
	KindOrganization Kind = "org"
)

// Identity is what a valid session cookie resolves to.
type Identity struct {
	Kind Kind
	Key  string
}

type SessionClaims struct {
	Kind Kind `json:"kind"`
	jwt.RegisteredClaims
}

// SessionManager issues and checks the session cookie. The cookie carries an
// HS256-signed token whose subject is the identity key, so the server can
// reject tampered or expired cookies on every request.
type SessionManager struct {
	secret []byte
	maxAge time.Duration
	secure bool
	now    func() time.Time
}

func NewSessionManager(secret string, maxAge time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		secret: []byte(secret),
		maxAge: maxAge,
		secure: secure,
		now:    time.Now,
	}
}

func (m *SessionManager) MaxAge() time.Duration {
	return m.maxAge
}

// Token signs a session token for key.
func (m *SessionManager) Token(kind Kind, key string) (string, error) {
	now := m.now()
	claims := SessionClaims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.maxAge)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   key,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Issue returns the cookie that starts a session for key.
func (m *SessionManager) Issue(kind Kind, key string) (*http.Cookie, error) {
	token, err := m.Token(kind, key)
	if err != nil {
		return nil, err
	}

	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(m.maxAge.Seconds()),
	}, nil
}

// Validate parses a session token and returns its claims.
func (m *SessionManager) Validate(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithIssuer(issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Resolve maps a cookie value back to an identity. Empty, tampered and
// expired values resolve to nothing.
func (m *SessionManager) Resolve(value string) (Identity, bool) {
	if value == "" {
		return Identity{}, false
	}

	claims, err := m.Validate(value)
	if err != nil {
		return Identity{}, false
	}

	return Identity{Kind: claims.Kind, Key: claims.Subject}, true
}

// ResolveRequest resolves the request's session cookie and requires it to
// belong to kind.
func (m *SessionManager) ResolveRequest(r *http.Request, kind Kind) (Identity, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return Identity{}, false
	}

	id, ok := m.Resolve(cookie.Value)
	if !ok || id.Kind != kind {
		return Identity{}, false
	}
	return id, true
}

// HasSession only reports whether a non-empty session cookie was sent.
func (m *SessionManager) HasSession(r *http.Request) bool {
	cookie, err := r.Cookie(SessionCookieName)
	return err == nil && cookie.Value != ""
}

// Revoke returns a cookie that makes the client drop its session.
func (m *SessionManager) Revoke() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	}
}

// FlashCookie names the flash cookie for kind. Users and organizations have
// separate login pages, so each gets its own message channel.
func FlashCookie(kind Kind) string {
	if kind == KindOrganization {
		return OrgFlashCookieName
	}
	return FlashCookieName
}

// SetFlash stores a one-time message to show after the next redirect.
func (m *SessionManager) SetFlash(w http.ResponseWriter, kind Kind, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookie(kind),
		Value:    url.QueryEscape(message),
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   flashMaxAge,
	})
}

// PopFlash returns the pending flash message, if any, and deletes it so it
// is shown only once.
func (m *SessionManager) PopFlash(w http.ResponseWriter, r *http.Request, kind Kind) string {
	cookie, err := r.Cookie(FlashCookie(kind))
	if err != nil || cookie.Value == "" {
		return ""
	}

	m.ClearFlash(w, kind)

	message, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return cookie.Value
	}
	return message
}

func (m *SessionManager) ClearFlash(w http.ResponseWriter, kind Kind) {
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookie(kind),
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
