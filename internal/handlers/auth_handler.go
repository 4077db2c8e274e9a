package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/studentportal/webapp/internal/flash"
	"github.com/studentportal/webapp/internal/forms"
	"github.com/studentportal/webapp/internal/metrics"
	"github.com/studentportal/webapp/internal/models"
	"github.com/studentportal/webapp/internal/views"
	"go.uber.org/zap"
)

// AuthService is the interface that wraps registration and login business logic
type AuthService interface {
	// Method Register creates a new user account.
	//
	// "req" parameter holds the validated registration form.
	//
	// Returns models.ErrUsernameTaken or models.ErrEmailTaken when the account collides with an existing one.
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	// Method Login authenticates a user.
	//
	// "req" parameter holds the submitted credentials.
	//
	// Returns models.ErrInvalidCredentials for an unknown user or wrong password
	// and models.ErrAccountInactive for a deactivated account.
	Login(ctx context.Context, req *models.LoginRequest) (*models.User, error)
}

// SessionManager is the interface that wraps opening and closing sessions
type SessionManager interface {
	// Method Start opens a new session for the user and writes the session cookie.
	Start(ctx context.Context, w http.ResponseWriter, r *http.Request, user *models.User) (*models.Session, error)
	// Method Destroy deletes the session attached to the request and expires the cookie.
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// AuthHandler serves registration, login and logout
type AuthHandler struct {
	BaseHandler
	service  AuthService
	sessions SessionManager
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(svc AuthService, sessions SessionManager, renderer Renderer, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: BaseHandler{logger: logger, views: renderer},
		service:     svc,
		sessions:    sessions,
	}
}

// RegisterRoutes registers the auth routes
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/register", h.ShowRegister)
	r.Post("/register", h.Register)
	r.Get("/login", h.ShowLogin)
	r.Post("/login", h.Login)
	r.Get("/logout", h.Logout)
}

// ShowRegister handles GET /register
func (h *AuthHandler) ShowRegister(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, views.PageRegister, &views.Page{Title: "Sign Up"})
}

// Register handles POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}

	form := forms.NewRegisterForm(r)
	page := &views.Page{Title: "Sign Up", Form: form}

	if page.Errors = form.Validate(); page.Errors != nil {
		metrics.RecordRegistration(metrics.OutcomeInvalid)
		h.render(w, r, http.StatusOK, views.PageRegister, page)
		return
	}

	req := form.Request()
	_, err := h.service.Register(r.Context(), &req)
	switch {
	case err == nil:
		metrics.RecordRegistration(metrics.OutcomeSuccess)
		h.redirect(w, r, "/login", flash.Success, "Registration successful! Please log in.")
	case errors.Is(err, models.ErrUsernameTaken):
		metrics.RecordRegistration(metrics.OutcomeConflict)
		page.Flashes = []flash.Message{{Category: flash.Danger, Message: "Username already taken."}}
		h.render(w, r, http.StatusOK, views.PageRegister, page)
	case errors.Is(err, models.ErrEmailTaken):
		metrics.RecordRegistration(metrics.OutcomeConflict)
		page.Flashes = []flash.Message{{Category: flash.Danger, Message: "Email already registered."}}
		h.render(w, r, http.StatusOK, views.PageRegister, page)
	case errors.Is(err, models.ErrPasswordTooLong):
		metrics.RecordRegistration(metrics.OutcomeInvalid)
		page.Errors = forms.PasswordTooLong()
		h.render(w, r, http.StatusOK, views.PageRegister, page)
	default:
		metrics.RecordRegistration(metrics.OutcomeError)
		h.serverError(w, r, err)
	}
}

// ShowLogin handles GET /login
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, views.PageLogin, &views.Page{Title: "Log In"})
}

// Login handles POST /login.
// Admins land on the dashboard, everyone else on the projects page.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}

	form := forms.NewLoginForm(r)
	page := &views.Page{Title: "Log In", Form: form}

	if page.Errors = form.Validate(); page.Errors != nil {
		metrics.RecordLogin(metrics.OutcomeInvalid)
		h.render(w, r, http.StatusOK, views.PageLogin, page)
		return
	}

	req := form.Request()
	user, err := h.service.Login(r.Context(), &req)
	switch {
	case errors.Is(err, models.ErrInvalidCredentials):
		metrics.RecordLogin(metrics.OutcomeInvalid)
		page.Flashes = []flash.Message{{Category: flash.Danger, Message: "Invalid username or password."}}
		h.render(w, r, http.StatusOK, views.PageLogin, page)
		return
	case errors.Is(err, models.ErrAccountInactive):
		metrics.RecordLogin(metrics.OutcomeInactive)
		page.Flashes = []flash.Message{{Category: flash.Warning, Message: "Your account has been deactivated."}}
		h.render(w, r, http.StatusOK, views.PageLogin, page)
		return
	case err != nil:
		metrics.RecordLogin(metrics.OutcomeError)
		h.serverError(w, r, err)
		return
	}

	if _, err := h.sessions.Start(r.Context(), w, r, user); err != nil {
		metrics.RecordLogin(metrics.OutcomeError)
		h.serverError(w, r, err)
		return
	}
	metrics.RecordLogin(metrics.OutcomeSuccess)

	location := "/projects"
	if user.IsAdmin() {
		location = "/admin"
	}
	h.redirect(w, r, location, flash.Success, fmt.Sprintf("Welcome back, %s!", user.Username))
}

// Logout handles GET /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		h.logger.Error("failed to destroy session", zap.Error(err))
	}
	h.redirect(w, r, "/", flash.Info, "You have been logged out.")
}
