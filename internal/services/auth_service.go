package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/studentportal/webapp/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository is the interface that wraps methods for User table data access used by registration and login
type UserRepository interface {
	// Method Create inserts a new user into the database.
	//
	// "user" parameter is used to create a new user. Its ID is set on success.
	//
	// If the username or email is already stored, models.ErrUserExists is returned.
	Create(ctx context.Context, user *models.User) error
	// Method GetByUsername retrieves a user by username.
	//
	// "username" parameter is used to retrieve a user by username.
	//
	// If user with such username does not exist, models.ErrUserNotFound will be returned together with "nil" value.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// Method ExistsByUsername checks if a user with such username exists.
	//
	// "username" parameter is used to check if a user with such username exists.
	//
	// If some error occurs during check, the error will be returned together with "false" value.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// Method ExistsByEmail checks if a user with such email exists.
	//
	// "email" parameter is used to check if a user with such email exists.
	//
	// If some error occurs during check, the error will be returned together with "false" value.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Method Count returns the number of stored users.
	//
	// If some error occurs, the error will be returned together with "0" value.
	Count(ctx context.Context) (int, error)
}

// authService implements registration and login
type authService struct {
	userRepo  UserRepository
	adminCode string
	hashCost  int
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService creates a new auth service.
//
// "adminCode" parameter is the shared secret granting the admin role at registration; empty disables it.
func NewAuthService(userRepo UserRepository, adminCode string, logger *zap.Logger) *authService {
	return &authService{
		userRepo:  userRepo,
		adminCode: adminCode,
		hashCost:  bcrypt.DefaultCost,
		logger:    logger,
		now:       time.Now,
	}
}

// dummyHash is compared against when the username is unknown, so both failure paths cost one bcrypt comparison
var dummyHash = sync.OnceValue(func() []byte {
	hash, _ := bcrypt.GenerateFromPassword([]byte("dummy-password"), bcrypt.DefaultCost)
	return hash
})

// Register creates a new user account.
// Returns models.ErrUsernameTaken or models.ErrEmailTaken when the account would collide with an existing one
// and models.ErrPasswordTooLong when the password exceeds the bcrypt input limit.
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	exists, err := s.userRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, models.ErrUsernameTaken
	}

	var email *string
	if req.Email != "" {
		exists, err = s.userRepo.ExistsByEmail(ctx, req.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if exists {
			return nil, models.ErrEmailTaken
		}
		email = &req.Email
	}

	role, err := s.decideRole(ctx, req.AdminCode)
	if err != nil {
		return nil, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, models.ErrPasswordTooLong
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		Email:        email,
		PasswordHash: string(passwordHash),
		Role:         role,
		IsActive:     true,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, models.ErrUserExists) {
			// Lost a race against a concurrent registration; the unique keys rejected the insert
			return nil, s.conflict(ctx, req.Username)
		}
		return nil, err
	}

	s.logger.Info("user registered", zap.Int("userID", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// decideRole returns admin for the very first account or a matching admin code, user otherwise.
// The count and the later insert are not atomic: two concurrent first registrations can both become admin.
func (s *authService) decideRole(ctx context.Context, adminCode string) (models.Role, error) {
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to count users: %w", err)
	}
	if count == 0 {
		return models.RoleAdmin, nil
	}
	if s.adminCode != "" && subtle.ConstantTimeCompare([]byte(adminCode), []byte(s.adminCode)) == 1 {
		return models.RoleAdmin, nil
	}
	return models.RoleUser, nil
}

// conflict tells which unique key rejected an insert
func (s *authService) conflict(ctx context.Context, username string) error {
	taken, err := s.userRepo.ExistsByUsername(ctx, username)
	if err == nil && !taken {
		return models.ErrEmailTaken
	}
	return models.ErrUsernameTaken
}

// Login authenticates a user.
// Unknown usernames and wrong passwords both yield models.ErrInvalidCredentials.
// models.ErrAccountInactive is only returned after the password has been verified.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(req.Password))
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, models.ErrAccountInactive
	}

	s.logger.Info("user logged in", zap.Int("userID", user.ID))
	return user, nil
}
