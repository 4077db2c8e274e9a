package services

import (
	"context"
	"fmt"

	"github.com/studentportal/webapp/internal/models"
	"go.uber.org/zap"
)

// AdminUserRepository is the interface that wraps methods for User table data access used by the admin dashboard
type AdminUserRepository interface {
	// Method List retrieves all users, newest first.
	//
	// If some error occurs, the error will be returned together with "nil" value.
	List(ctx context.Context) ([]models.User, error)
	// Method GetByID retrieves a user by ID.
	//
	// "userID" parameter is used to retrieve a user by ID.
	//
	// If user with such ID does not exist, models.ErrUserNotFound will be returned together with "nil" value.
	GetByID(ctx context.Context, userID int) (*models.User, error)
	// Method SetActive sets the active flag of a user.
	//
	// "userID" parameter is used to identify the user to update.
	// "active" parameter is the new value of the flag.
	//
	// If user with such ID does not exist, models.ErrUserNotFound will be returned.
	SetActive(ctx context.Context, userID int, active bool) error
	// Method Delete deletes a user by ID.
	//
	// "userID" parameter is used to identify the user to delete.
	//
	// If user with such ID does not exist, models.ErrUserNotFound will be returned.
	Delete(ctx context.Context, userID int) error
}

// adminService implements the admin dashboard operations
type adminService struct {
	userRepo AdminUserRepository
	logger   *zap.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(userRepo AdminUserRepository, logger *zap.Logger) *adminService {
	return &adminService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// ListUsers returns all users ordered by creation time, newest first
func (s *adminService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.userRepo.List(ctx)
}

// ToggleActive flips the active flag of the target user and returns the updated user.
// An admin cannot toggle their own account.
func (s *adminService) ToggleActive(ctx context.Context, actorID, targetID int) (*models.User, error) {
	user, err := s.target(ctx, actorID, targetID)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.SetActive(ctx, user.ID, !user.IsActive); err != nil {
		return nil, err
	}
	user.IsActive = !user.IsActive

	s.logger.Info("user active flag changed",
		zap.Int("actorID", actorID),
		zap.Int("userID", user.ID),
		zap.Bool("active", user.IsActive),
	)
	return user, nil
}

// DeleteUser removes the target user and returns the removed record.
// An admin cannot delete their own account.
func (s *adminService) DeleteUser(ctx context.Context, actorID, targetID int) (*models.User, error) {
	user, err := s.target(ctx, actorID, targetID)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		return nil, err
	}

	s.logger.Info("user deleted", zap.Int("actorID", actorID), zap.Int("userID", user.ID))
	return user, nil
}

// target resolves the user an admin operation acts on.
// A missing user is reported before a self-target so unknown ids always yield not found.
func (s *adminService) target(ctx context.Context, actorID, targetID int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if user.ID == actorID {
		return nil, fmt.Errorf("user %d: %w", targetID, models.ErrSelfAction)
	}
	return user, nil
}
