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

// OrgHandler mirrors UserHandler for organizations, on their own namespace.
type OrgHandler struct {
	auth     auth.Authenticator
	sessions auth.Sessions
	logger   *slog.Logger
	renderer
}

func NewOrgHandler(authn auth.Authenticator, sessions auth.Sessions, templates Templates, logger *slog.Logger) *OrgHandler {
	return &OrgHandler{
		auth:     authn,
		sessions: sessions,
		logger:   logger,
		renderer: renderer{templates: templates, logger: logger},
	}
}

func (h *OrgHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	msg := h.sessions.PopFlash(w, r, auth.KindOrganization)
	h.render(w, http.StatusOK, "org_login.html", PageData{
		Title: "Organization sign in",
		Error: msg,
	})
}

func (h *OrgHandler) Login(w http.ResponseWriter, r *http.Request) {
	limitForm(w, r)
	form := dto.ParseLoginForm(r, "orgname")

	if errs := form.Validate(); len(errs) > 0 {
		h.sessions.SetFlash(w, auth.KindOrganization, InvalidCredentialsMessage)
		http.Redirect(w, r, "/org_login", http.StatusSeeOther)
		return
	}

	org, err := h.auth.LoginOrganization(r.Context(), form.Identity, form.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.sessions.SetFlash(w, auth.KindOrganization, InvalidCredentialsMessage)
		} else {
			h.logger.Error("organization login failed", "error", err)
			h.sessions.SetFlash(w, auth.KindOrganization, GenericErrorMessage)
		}
		http.Redirect(w, r, "/org_login", http.StatusSeeOther)
		return
	}

	cookie, err := h.sessions.Issue(auth.KindOrganization, store.NormalizeKey(org.Orgname))
	if err != nil {
		h.logger.Error("issuing session", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, cookie)
	h.sessions.ClearFlash(w, auth.KindOrganization)
	http.Redirect(w, r, "/org_home", http.StatusSeeOther)
}

func (h *OrgHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "org_register.html", PageData{Title: "Register organization"})
}

func (h *OrgHandler) Register(w http.ResponseWriter, r *http.Request) {
	limitForm(w, r)
	form := dto.ParseRegisterOrgForm(r)

	page := PageData{Title: "Register organization", Form: form.Values()}

	if errs := form.Validate(); len(errs) > 0 {
		page.Error = dto.FirstError(errs)
		h.render(w, http.StatusBadRequest, "org_register.html", page)
		return
	}

	_, err := h.auth.RegisterOrganization(r.Context(), auth.RegisterOrgInput{
		Name:     form.Name,
		Address:  form.Address,
		Phone:    form.Phone,
		Email:    form.Email,
		Orgname:  form.Orgname,
		Password: form.Password,
	})

	switch {
	case err == nil:
		http.Redirect(w, r, "/org_login", http.StatusSeeOther)
	case errors.Is(err, auth.ErrIdentityExists):
		page.Error = OrgExistsMessage
		h.render(w, http.StatusOK, "org_register.html", page)
	case errors.Is(err, auth.ErrInvalidIdentity):
		page.Error = "Organization name is not valid."
		h.render(w, http.StatusBadRequest, "org_register.html", page)
	default:
		h.logger.Error("organization registration failed", "error", err)
		page.Error = GenericErrorMessage
		h.render(w, http.StatusInternalServerError, "org_register.html", page)
	}
}

func (h *OrgHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "org_home.html", PageData{
		Title: "Organization home",
		Org:   middleware.GetOrganization(r.Context()),
	})
}
