package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	authmw "github.com/studentportal/webapp/internal/auth/middleware"
	"github.com/studentportal/webapp/internal/flash"
	"github.com/studentportal/webapp/internal/models"
	"github.com/studentportal/webapp/internal/views"
	"go.uber.org/zap"
)

// AdminService is the interface that wraps the admin dashboard business logic
type AdminService interface {
	// Method ListUsers returns all users ordered by creation time, newest first.
	ListUsers(ctx context.Context) ([]models.User, error)
	// Method ToggleActive flips the active flag of a user and returns the updated record.
	//
	// "actorID" parameter is the id of the admin performing the action.
	// "targetID" parameter is the id of the user to update.
	//
	// Returns models.ErrUserNotFound for an unknown target and models.ErrSelfAction when actorID equals targetID.
	ToggleActive(ctx context.Context, actorID, targetID int) (*models.User, error)
	// Method DeleteUser removes a user and returns the removed record.
	//
	// Please reference ToggleActive method for more information about parameters and error values.
	DeleteUser(ctx context.Context, actorID, targetID int) (*models.User, error)
}

// SessionRevoker ends every session of a user
type SessionRevoker interface {
	Revoke(ctx context.Context, userID int) error
}

// AdminHandler serves the admin dashboard
type AdminHandler struct {
	BaseHandler
	service  AdminService
	sessions SessionRevoker
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(svc AdminService, sessions SessionRevoker, renderer Renderer, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler: BaseHandler{logger: logger, views: renderer},
		service:     svc,
		sessions:    sessions,
	}
}

// RegisterRoutes registers the admin routes behind the admin guard
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(authmw.Require(authmw.AdminRequired...))
		r.Get("/", h.Dashboard)
		r.Post("/toggle/{id:[0-9]+}", h.Toggle)
		r.Post("/delete/{id:[0-9]+}", h.Delete)
	})
}

// Dashboard handles GET /admin
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, views.PageAdmin, &views.Page{
		Title: "Admin Dashboard",
		Data:  views.AdminData{Users: users},
	})
}

// Toggle handles POST /admin/toggle/{id}
func (h *AdminHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	actorID, targetID, ok := h.ids(w, r)
	if !ok {
		return
	}

	user, err := h.service.ToggleActive(r.Context(), actorID, targetID)
	if err != nil {
		h.adminError(w, r, err, "You cannot deactivate your own account.")
		return
	}

	state := "activated"
	if !user.IsActive {
		state = "deactivated"
		h.revoke(r, user)
	}
	h.redirect(w, r, "/admin", flash.Success, fmt.Sprintf("User %s %s.", user.Username, state))
}

// Delete handles POST /admin/delete/{id}
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, targetID, ok := h.ids(w, r)
	if !ok {
		return
	}

	user, err := h.service.DeleteUser(r.Context(), actorID, targetID)
	if err != nil {
		h.adminError(w, r, err, "You cannot delete your own account.")
		return
	}
	h.revoke(r, user)

	h.redirect(w, r, "/admin", flash.Success, fmt.Sprintf("User %s deleted.", user.Username))
}

// revoke signs the user out everywhere.
// A failure is logged and the account change stands.
func (h *AdminHandler) revoke(r *http.Request, user *models.User) {
	if err := h.sessions.Revoke(r.Context(), user.ID); err != nil {
		h.logger.Error("Failed to revoke sessions",
			zap.Int("user_id", user.ID),
			zap.String("username", user.Username),
			zap.Error(err),
		)
	}
}

// ids returns the acting admin and the target user id from the request
func (h *AdminHandler) ids(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	sess, ok := authmw.GetSession(r.Context())
	if !ok {
		h.renderError(w, r, http.StatusForbidden)
		return 0, 0, false
	}

	targetID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.renderError(w, r, http.StatusNotFound)
		return 0, 0, false
	}
	return sess.UserID, targetID, true
}

// adminError maps an admin operation failure to a response
func (h *AdminHandler) adminError(w http.ResponseWriter, r *http.Request, err error, selfMessage string) {
	switch {
	case errors.Is(err, models.ErrSelfAction):
		h.redirect(w, r, "/admin", flash.Warning, selfMessage)
	case errors.Is(err, models.ErrUserNotFound):
		h.renderError(w, r, http.StatusNotFound)
	default:
		h.serverError(w, r, err)
	}
}
