package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/hugh/go-portal/internal/api/middleware"
	"github.com/hugh/go-portal/internal/store/models"
)

const (
	// maxFormBytes caps the size of a posted form body.
	maxFormBytes = 64 << 10

	InvalidCredentialsMessage = "Invalid credentials. Please try again."
	GenericErrorMessage       = middleware.GenericErrorMessage
	UserExistsMessage         = "Username already exists. Please choose another."
	OrgExistsMessage          = "Organization already exists. Please choose another."
)

// PageData is the view model every page template receives.
type PageData struct {
	Title string
	Error string
	User  *models.User
	Org   *models.Organization
	Form  map[string]string
}

// Templates renders a named page.
type Templates interface {
	ExecuteTemplate(w io.Writer, name string, data any) error
}

type renderer struct {
	templates Templates
	logger    *slog.Logger
}

func (rd renderer) render(w http.ResponseWriter, status int, name string, data PageData) {
	if rd.templates == nil {
		http.Error(w, "Templates not loaded", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := rd.templates.ExecuteTemplate(&buf, name, data); err != nil {
		rd.logger.Error("rendering template", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func limitForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
