package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"postboard/internal/models"
	"postboard/internal/service"
	"postboard/internal/session"
)

type SignUpForm struct {
	Username string `validate:"required,min=4,max=15"`
	Email    string `validate:"required,email,max=50"`
	Password string `validate:"required,min=8,max=60"`
}

type LoginForm struct {
	Username string `validate:"required,min=4,max=15"`
	Password string `validate:"required,min=8,max=60"`
}

var errNonStringField = errors.New("non-string field")

// untrimmed fields are passed on byte for byte; surrounding spaces are part of a password.
var untrimmed = map[string]bool{"password": true}

func normalize(name, value string) string {
	if untrimmed[name] {
		return value
	}
	return strings.TrimSpace(value)
}

// readFields pulls the named fields out of a form-encoded or JSON body. JSON values
// must be strings.
func readFields(r *http.Request, names ...string) (map[string]string, error) {
	fields := make(map[string]string, len(names))

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return nil, err
		}
		for _, name := range names {
			v, ok := body[name]
			if !ok || v == nil {
				continue
			}
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%s: %w", name, errNonStringField)
			}
			fields[name] = normalize(name, s)
		}
		return fields, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	for _, name := range names {
		fields[name] = normalize(name, r.PostFormValue(name))
	}
	return fields, nil
}

// validationMessage turns the first validator failure into a sentence for the user.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return service.ErrInvalidData.Message
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "email":
		return "Invalid email address"
	default:
		return service.ErrInvalidData.Message
	}
}

// redirectWithStatus sends the browser to location while keeping a non-302 status
// so that clients can tell a failed submission from a successful one.
func redirectWithStatus(w http.ResponseWriter, location string, status int) {
	w.Header().Set("Location", location)
	w.WriteHeader(status)
}

func (h *Handlers) SignUp(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(r, "username", "email", "password")
	if err != nil {
		h.Gate.SetFlash(w, "error", service.ErrInvalidData.Message)
		redirectWithStatus(w, "/sign_up", http.StatusBadRequest)
		return
	}

	form := SignUpForm{
		Username: fields["username"],
		Email:    fields["email"],
		Password: fields["password"],
	}

	if form.Username == "" || form.Email == "" || form.Password == "" {
		h.Gate.SetFlash(w, "error", service.ErrMissingData.Message)
		redirectWithStatus(w, "/sign_up", http.StatusBadRequest)
		return
	}

	if err := h.Validate.Struct(form); err != nil {
		h.Gate.SetFlash(w, "error", validationMessage(err))
		redirectWithStatus(w, "/sign_up", http.StatusBadRequest)
		return
	}

	_, err = h.UserService.Register(r.Context(), models.RegisterUserRequest{
		Username: form.Username,
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.Logger.ErrorContext(r.Context(), "sign up failed", slog.Any("error", err))
		}
		h.Gate.SetFlash(w, "error", messageFor(err))
		redirectWithStatus(w, "/sign_up", status)
		return
	}

	h.Gate.SetFlash(w, "success", "Account created, you can log in now")
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	back := "/login"
	next := safeNext(r.URL.Query().Get("next"))
	if next != "" {
		back = "/login?next=" + url.QueryEscape(next)
	}

	fields, err := readFields(r, "username", "password")
	if err != nil {
		h.Gate.SetFlash(w, "error", service.ErrInvalidData.Message)
		redirectWithStatus(w, back, http.StatusBadRequest)
		return
	}

	form := LoginForm{
		Username: fields["username"],
		Password: fields["password"],
	}

	if form.Username == "" || form.Password == "" {
		h.Gate.SetFlash(w, "error", service.ErrMissingData.Message)
		redirectWithStatus(w, back, http.StatusBadRequest)
		return
	}

	if err := h.Validate.Struct(form); err != nil {
		h.Gate.SetFlash(w, "error", validationMessage(err))
		redirectWithStatus(w, back, http.StatusConflict)
		return
	}

	user, err := h.AuthService.Authenticate(r.Context(), form.Username, form.Password)
	if err != nil {
		status := http.StatusConflict
		if service.KindOf(err) == service.KindInternal {
			status = http.StatusInternalServerError
			h.Logger.ErrorContext(r.Context(), "login failed", slog.Any("error", err))
		}
		h.Gate.SetFlash(w, "error", messageFor(err))
		redirectWithStatus(w, back, status)
		return
	}

	if err := h.Gate.Login(w, session.Principal{UserID: user.ID, Username: user.Username}, true); err != nil {
		h.Logger.ErrorContext(r.Context(), "session not established", slog.Any("error", err))
		WriteError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if next == "" {
		next = "/my_profile"
	}
	http.Redirect(w, r, next, http.StatusFound)
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.Gate.Logout(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

// safeNext only allows local absolute paths as a post-login target.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	return next
}
