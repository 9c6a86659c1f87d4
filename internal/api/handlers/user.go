package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hugh/go-portal/internal/api/dto"
	"github.com/hugh/go-portal/internal/api/middleware"
	"github.com/hugh/go-portal/internal/auth"
	"github.com/hugh/go-portal/internal/store"
)

// UserHandler serves the login, registration and home pages for
// individual users.
type UserHandler struct {
	auth     auth.Authenticator
	sessions auth.Sessions
	logger   *slog.Logger
	renderer
}

func NewUserHandler(authn auth.Authenticator, sessions auth.Sessions, templates Templates, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		auth:     authn,
		sessions: sessions,
		logger:   logger,
		renderer: renderer{templates: templates, logger: logger},
	}
}

// Landing renders the login page along with any pending flash error.
func (h *UserHandler) Landing(w http.ResponseWriter, r *http.Request) {
	msg := h.sessions.PopFlash(w, r, auth.KindUser)
	h.render(w, http.StatusOK, "authentication.html", PageData{
		Title: "Sign in",
		Error: msg,
	})
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	limitForm(w, r)
	form := dto.ParseLoginForm(r, "username")

	if errs := form.Validate(); len(errs) > 0 {
		h.sessions.SetFlash(w, auth.KindUser, InvalidCredentialsMessage)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	user, err := h.auth.LoginUser(r.Context(), form.Identity, form.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.sessions.SetFlash(w, auth.KindUser, InvalidCredentialsMessage)
		} else {
			h.logger.Error("user login failed", "error", err)
			h.sessions.SetFlash(w, auth.KindUser, GenericErrorMessage)
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	cookie, err := h.sessions.Issue(auth.KindUser, store.NormalizeKey(user.Username))
	if err != nil {
		h.logger.Error("issuing session", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, cookie)
	h.sessions.ClearFlash(w, auth.KindUser)
	http.Redirect(w, r, "/home", http.StatusSeeOther)
}

func (h *UserHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "register.html", PageData{Title: "Register"})
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	limitForm(w, r)
	form := dto.ParseRegisterUserForm(r)

	page := PageData{Title: "Register", Form: form.Values()}

	if errs := form.Validate(); len(errs) > 0 {
		page.Error = dto.FirstError(errs)
		h.render(w, http.StatusBadRequest, "register.html", page)
		return
	}

	_, err := h.auth.RegisterUser(r.Context(), auth.RegisterUserInput{
		Name:     form.Name,
		Surname:  form.Surname,
		Username: form.Username,
		Email:    form.Email,
		Password: form.Password,
	})

	switch {
	case err == nil:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	case errors.Is(err, auth.ErrIdentityExists):
		page.Error = UserExistsMessage
		h.render(w, http.StatusOK, "register.html", page)
	case errors.Is(err, auth.ErrInvalidIdentity):
		page.Error = "Username is not valid."
		h.render(w, http.StatusBadRequest, "register.html", page)
	default:
		h.logger.Error("user registration failed", "error", err)
		page.Error = GenericErrorMessage
		h.render(w, http.StatusInternalServerError, "register.html", page)
	}
}

func (h *UserHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "home.html", PageData{
		Title: "Home",
		User:  middleware.GetUser(r.Context()),
	})
}

func (h *UserHandler) GuestHome(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "guest_home.html", PageData{Title: "Welcome"})
}
