package handlers

import (
	"FileVault/internal/middleware"
	"FileVault/internal/model"
	"FileVault/internal/service"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// UserHandler обрабатывает вход, регистрацию, пароли и тему.
type UserHandler struct {
	UserService *service.UserService
	Sessions    *middleware.SessionManager
	Logger      *zap.SugaredLogger
}

func NewUserHandler(userService *service.UserService, sessions *middleware.SessionManager, logger *zap.SugaredLogger) *UserHandler {
	return &UserHandler{UserService: userService, Sessions: sessions, Logger: logger}
}

// statusFor сопоставляет категорию ошибки HTTP-статусу формы.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// formError перерисовывает форму с сообщением или отдаёт 500 для непредметных ошибок.
func (h *UserHandler) formError(w http.ResponseWriter, r *http.Request, tmpl string, page PageData, err error) {
	msg, ok := service.Message(err)
	if !ok {
		h.Logger.Errorw("form: service error", "path", r.URL.Path, "error", err)
		internalError(w)
		return
	}
	h.Logger.Warnw("form: rejected", "path", r.URL.Path, "reason", msg)
	page.Error = msg
	render(w, h.Logger, statusFor(err), tmpl, page)
}

func (h *UserHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	render(w, h.Logger, http.StatusOK, "login.html", PageData{Title: "Login", Theme: model.ThemeLight})
}

// Login проверяет учётные данные и выдаёт cookie сессии со светлой темой.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	user, err := h.UserService.Login(r.Context(), username, password)
	if err != nil {
		h.formError(w, r, "login.html", PageData{Title: "Login", Theme: model.ThemeLight}, err)
		return
	}

	if err := h.Sessions.Issue(w, model.Session{Username: user.Username, Theme: model.ThemeLight}); err != nil {
		h.Logger.Errorw("Login: failed to issue session", "user", user.Username, "error", err)
		internalError(w)
		return
	}
	h.Logger.Infow("user logged in", "user", user.Username)
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (h *UserHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	render(w, h.Logger, http.StatusOK, "register.html", PageData{Title: "Register", Theme: model.ThemeLight})
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	if _, err := h.UserService.Register(r.Context(), username, password); err != nil {
		h.formError(w, r, "register.html", PageData{Title: "Register", Theme: model.ThemeLight}, err)
		return
	}
	h.Logger.Infow("user registered", "user", username)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.Revoke(r)
	h.Sessions.Clear(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *UserHandler) ForgotPasswordPage(w http.ResponseWriter, r *http.Request) {
	render(w, h.Logger, http.StatusOK, "forgot_password.html", PageData{Title: "Forgot password", Theme: model.ThemeLight})
}

func (h *UserHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	page := PageData{Title: "Forgot password", Theme: model.ThemeLight}
	username := r.PostFormValue("username")

	if err := h.UserService.ResetPassword(r.Context(), username, r.PostFormValue("new")); err != nil {
		h.formError(w, r, "forgot_password.html", page, err)
		return
	}
	h.Logger.Infow("password reset", "user", username)
	page.Success = "Password reset successful"
	render(w, h.Logger, http.StatusOK, "forgot_password.html", page)
}

func (h *UserHandler) ChangePasswordPage(w http.ResponseWriter, r *http.Request) {
	s, ok := middleware.GetSessionFromContext(r.Context())
	render(w, h.Logger, http.StatusOK, "change_password.html", newPage("Change password", s, ok))
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	s, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	err := h.UserService.ChangePassword(r.Context(), s.Username,
		r.PostFormValue("old"), r.PostFormValue("new"), r.PostFormValue("confirm"))
	if err != nil {
		h.formError(w, r, "change_password.html", newPage("Change password", s, true), err)
		return
	}
	h.Logger.Infow("password changed", "user", s.Username)
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// ToggleTheme переключает тему и перевыпускает cookie сессии.
func (h *UserHandler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	s, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	s.Theme = s.ToggledTheme()
	if err := h.Sessions.Issue(w, s); err != nil {
		h.Logger.Errorw("ToggleTheme: failed to issue session", "user", s.Username, "error", err)
		internalError(w)
		return
	}
	// старая cookie с прежней темой больше не нужна
	h.Sessions.Revoke(r)
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}
