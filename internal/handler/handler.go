package handlers

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"postboard/internal/logging"
	"postboard/internal/middleware"
	"postboard/internal/service"
	"postboard/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// HealthChecker reports whether the store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type Handlers struct {
	UserService service.UserService
	AuthService service.AuthService
	PostService service.PostService
	Gate        *session.Gate
	Health      HealthChecker
	Validate    *validator.Validate
	Logger      *slog.Logger
	templates   *template.Template
}

func NewHandlers(services *service.Service, gate *session.Gate, health HealthChecker, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = logging.Discard()
	}

	return &Handlers{
		UserService: services.User,
		AuthService: services.Auth,
		PostService: services.Post,
		Gate:        gate,
		Health:      health,
		Validate:    validator.New(),
		Logger:      logger,
		templates:   template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}
}

// Routes builds the full HTTP surface wrapped in the recover, logging and CORS middleware.
func (h *Handlers) Routes() http.Handler {
	r := mux.NewRouter()

	apiAuth := middleware.AuthMiddleware(h.Gate, middleware.DenyJSON)
	webAuth := middleware.AuthMiddleware(h.Gate, middleware.DenyRedirect)
	optionalAuth := middleware.OptionalAuthMiddleware(h.Gate)

	r.HandleFunc("/health", h.HealthHandler).Methods(http.MethodGet)

	// routes stay on the root router so a known path with the wrong method gets 405;
	// /api/users/all must be registered before /api/users/{username}
	r.Handle("/api/users/all", apiAuth(http.HandlerFunc(h.ListUsers))).Methods(http.MethodGet)
	r.HandleFunc("/api/users/add_user", h.AddUser).Methods(http.MethodPost)
	r.HandleFunc("/api/users/delete_user/{username}", h.DeleteUser).Methods(http.MethodGet)
	r.HandleFunc("/api/users/{username}", h.GetUser).Methods(http.MethodGet)

	r.HandleFunc("/api/posts/all", h.ListPosts).Methods(http.MethodGet)
	r.Handle("/api/posts/create_post", optionalAuth(http.HandlerFunc(h.CreatePost))).Methods(http.MethodPost)

	r.Handle("/", optionalAuth(http.HandlerFunc(h.Index))).Methods(http.MethodGet)
	r.HandleFunc("/sign_up", h.SignUpPage).Methods(http.MethodGet)
	r.HandleFunc("/sign_up", h.SignUp).Methods(http.MethodPost)
	r.HandleFunc("/login", h.LoginPage).Methods(http.MethodGet)
	r.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	r.Handle("/my_profile", webAuth(http.HandlerFunc(h.MyProfile))).Methods(http.MethodGet)
	r.Handle("/logout", webAuth(http.HandlerFunc(h.Logout))).Methods(http.MethodGet, http.MethodPost)

	return middleware.Chain(r,
		middleware.Recover(h.Logger),
		middleware.LoggingMiddleware(h.Logger),
		middleware.CORSMiddleware,
	)
}
