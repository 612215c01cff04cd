package handlers

import (
	"bytes"
	"log/slog"
	"net/http"

	"postboard/internal/models"
	"postboard/internal/session"
)

type pageData struct {
	Title     string
	Principal *session.Principal
	Flash     *session.Flash
	User      *models.User
	Next      string
}

// render executes the page into a buffer first so a template error never leaves
// a half-written response.
func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	if data.Principal == nil {
		if p, ok := session.PrincipalFrom(r.Context()); ok {
			data.Principal = &p
		}
	}
	if f, ok := h.Gate.PopFlash(w, r); ok {
		data.Flash = &f
	}

	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.Logger.ErrorContext(r.Context(), "template failed", slog.String("template", name), slog.Any("error", err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "index.html", pageData{Title: "Home"})
}

func (h *Handlers) SignUpPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "sign_up.html", pageData{Title: "Sign up"})
}

func (h *Handlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "login.html", pageData{
		Title: "Log in",
		Next:  safeNext(r.URL.Query().Get("next")),
	})
}

// MyProfile drops a session whose user no longer exists.
func (h *Handlers) MyProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.Gate.RequireAuthenticated(r)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	user, err := h.UserService.FindByID(r.Context(), p.ID())
	if err != nil {
		h.Logger.ErrorContext(r.Context(), "profile lookup failed", slog.Any("error", err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if user == nil {
		h.Gate.Logout(w)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	h.render(w, r, http.StatusOK, "my_profile.html", pageData{Title: "My profile", User: user})
}

func (h *Handlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if h.Health != nil {
		if err := h.Health.HealthCheck(r.Context()); err != nil {
			h.Logger.WarnContext(r.Context(), "health check failed", slog.Any("error", err))
			writeSuccess(w, map[string]string{"status": "unavailable"}, http.StatusServiceUnavailable)
			return
		}
	}

	writeSuccess(w, map[string]string{"status": "ok"}, http.StatusOK)
}
