package handlers

import (
	"FileVault/internal/config"
	"FileVault/internal/middleware"
	"FileVault/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(
	userService *service.UserService,
	fileService *service.FileService,
	dashboardService *service.DashboardService,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	sessions := middleware.NewSessionManager(config.AuthSecret, config.SessionTTL, config.EnableHTTPS)

	r.Use(chimw.Recoverer)
	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithAuth(sessions))

	// Handlers
	userHandler := NewUserHandler(userService, sessions, logger)
	fileHandler := NewFileHandler(fileService, dashboardService, logger, config)

	// Public routes
	r.Get("/", userHandler.LoginPage)
	r.Post("/", userHandler.Login)
	r.Get("/register", userHandler.RegisterPage)
	r.Post("/register", userHandler.Register)
	r.Get("/forgot_password", userHandler.ForgotPasswordPage)
	r.Post("/forgot_password", userHandler.ForgotPassword)

	// Routes behind a session
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/logout", userHandler.Logout)
		r.Get("/change_password", userHandler.ChangePasswordPage)
		r.Post("/change_password", userHandler.ChangePassword)
		r.Get("/toggle_theme", userHandler.ToggleTheme)

		r.Get("/dashboard", fileHandler.Dashboard)
		r.Get("/myuploads", fileHandler.MyUploads)
		r.Post("/upload", fileHandler.Upload)
		r.Get("/download/{filename}", fileHandler.Download)
		r.Get("/delete/{filename}", fileHandler.Delete)
		r.Get("/toggle_lock/{filename}", fileHandler.ToggleLock)
	})

	return &Handler{Router: r}
}
