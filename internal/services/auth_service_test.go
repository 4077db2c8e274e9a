package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/studentportal/webapp/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
)

// mockUserRepository is a mock implementation of UserRepository and AdminUserRepository
type mockUserRepository struct {
	users map[int]*models.User
	order []int
	next  int

	createErr error
	getErr    error
	existsErr error
	countErr  error
	listErr   error
	updateErr error
	deleteErr error
	created   *models.User
}

func newMockUserRepository(users ...*models.User) *mockUserRepository {
	m := &mockUserRepository{users: make(map[int]*models.User), next: 1}
	for _, u := range users {
		m.put(u)
	}
	return m
}

func (m *mockUserRepository) put(u *models.User) {
	if u.ID == 0 {
		u.ID = m.next
	}
	if u.ID >= m.next {
		m.next = u.ID + 1
	}
	m.users[u.ID] = u
	m.order = append(m.order, u.ID)
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.put(user)
	m.created = user
	return nil
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (m *mockUserRepository) GetByID(ctx context.Context, userID int) (*models.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	u, ok := m.users[userID]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	for _, u := range m.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	for _, u := range m.users {
		if u.Email != nil && *u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepository) Count(ctx context.Context) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return len(m.users), nil
}

func (m *mockUserRepository) List(ctx context.Context) ([]models.User, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	users := make([]models.User, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		if u, ok := m.users[m.order[i]]; ok {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (m *mockUserRepository) SetActive(ctx context.Context, userID int, active bool) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	u, ok := m.users[userID]
	if !ok {
		return models.ErrUserNotFound
	}
	u.IsActive = active
	return nil
}

func (m *mockUserRepository) Delete(ctx context.Context, userID int) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.users[userID]; !ok {
		return models.ErrUserNotFound
	}
	delete(m.users, userID)
	return nil
}

func strPtr(s string) *string { return &s }

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func setupAuthService(t *testing.T, repo *mockUserRepository, adminCode string) *authService {
	t.Helper()
	svc := NewAuthService(repo, adminCode, zaptest.NewLogger(t))
	svc.hashCost = bcrypt.MinCost
	return svc
}

func TestNewAuthService(t *testing.T) {
	logger := zaptest.NewLogger(t)
	repo := newMockUserRepository()

	svc := NewAuthService(repo, "code", logger)

	assert.NotNil(t, svc)
	assert.Equal(t, repo, svc.userRepo)
	assert.Equal(t, "code", svc.adminCode)
	assert.Equal(t, bcrypt.DefaultCost, svc.hashCost)
	assert.Equal(t, logger, svc.logger)
}

func TestAuthService_Register(t *testing.T) {
	existing := func() *models.User {
		return &models.User{ID: 1, Username: "admin", Email: strPtr("admin@example.com"), Role: models.RoleAdmin, IsActive: true}
	}

	tests := []struct {
		name          string
		repo          *mockUserRepository
		adminCode     string
		req           models.RegisterRequest
		expectedError error
		expectAnyErr  bool
		expectedRole  models.Role
	}{
		{
			name:         "first user becomes admin without code",
			repo:         newMockUserRepository(),
			req:          models.RegisterRequest{Username: "first", Password: "secret1"},
			expectedRole: models.RoleAdmin,
		},
		{
			name:         "first user becomes admin even with wrong code",
			repo:         newMockUserRepository(),
			adminCode:    "letmein",
			req:          models.RegisterRequest{Username: "first", Password: "secret1", AdminCode: "nope"},
			expectedRole: models.RoleAdmin,
		},
		{
			name:         "later user without code is a user",
			repo:         newMockUserRepository(existing()),
			adminCode:    "letmein",
			req:          models.RegisterRequest{Username: "bob", Password: "secret1"},
			expectedRole: models.RoleUser,
		},
		{
			name:         "later user with matching code is an admin",
			repo:         newMockUserRepository(existing()),
			adminCode:    "letmein",
			req:          models.RegisterRequest{Username: "bob", Password: "secret1", AdminCode: "letmein"},
			expectedRole: models.RoleAdmin,
		},
		{
			name:         "later user with wrong code is a user",
			repo:         newMockUserRepository(existing()),
			adminCode:    "letmein",
			req:          models.RegisterRequest{Username: "bob", Password: "secret1", AdminCode: "letmein2"},
			expectedRole: models.RoleUser,
		},
		{
			name:         "empty configured code never matches",
			repo:         newMockUserRepository(existing()),
			req:          models.RegisterRequest{Username: "bob", Password: "secret1", AdminCode: ""},
			expectedRole: models.RoleUser,
		},
		{
			name:          "username taken",
			repo:          newMockUserRepository(existing()),
			req:           models.RegisterRequest{Username: "admin", Password: "secret1"},
			expectedError: models.ErrUsernameTaken,
		},
		{
			name:          "email taken",
			repo:          newMockUserRepository(existing()),
			req:           models.RegisterRequest{Username: "bob", Email: "admin@example.com", Password: "secret1"},
			expectedError: models.ErrEmailTaken,
		},
		{
			name: "insert rejected by unique key",
			repo: func() *mockUserRepository {
				r := newMockUserRepository(existing())
				r.createErr = models.ErrUserExists
				return r
			}(),
			req:           models.RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "secret1"},
			expectedError: models.ErrEmailTaken,
		},
		{
			name: "repository error on exists",
			repo: func() *mockUserRepository {
				r := newMockUserRepository()
				r.existsErr = errors.New("db down")
				return r
			}(),
			req:          models.RegisterRequest{Username: "bob", Password: "secret1"},
			expectAnyErr: true,
		},
		{
			name: "repository error on count",
			repo: func() *mockUserRepository {
				r := newMockUserRepository()
				r.countErr = errors.New("db down")
				return r
			}(),
			req:          models.RegisterRequest{Username: "bob", Password: "secret1"},
			expectAnyErr: true,
		},
		{
			name:          "password over the bcrypt limit",
			repo:          newMockUserRepository(existing()),
			req:           models.RegisterRequest{Username: "bob", Password: strings.Repeat("a", 73)},
			expectedError: models.ErrPasswordTooLong,
		},
		{
			name: "repository error on create",
			repo: func() *mockUserRepository {
				r := newMockUserRepository()
				r.createErr = errors.New("db down")
				return r
			}(),
			req:          models.RegisterRequest{Username: "bob", Password: "secret1"},
			expectAnyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := setupAuthService(t, tt.repo, tt.adminCode)
			before := len(tt.repo.users)

			user, err := svc.Register(context.Background(), &tt.req)

			if tt.expectedError != nil || tt.expectAnyErr {
				if tt.expectedError != nil {
					assert.ErrorIs(t, err, tt.expectedError)
				} else {
					assert.Error(t, err)
				}
				assert.Nil(t, user)
				assert.Len(t, tt.repo.users, before)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedRole, user.Role)
			assert.True(t, user.IsActive)
			assert.NotZero(t, user.ID)
			assert.False(t, user.CreatedAt.IsZero())
			assert.NotEqual(t, tt.req.Password, user.PasswordHash)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(tt.req.Password)))
		})
	}
}

func TestAuthService_Register_EmailOptional(t *testing.T) {
	repo := newMockUserRepository()
	svc := setupAuthService(t, repo, "")

	user, err := svc.Register(context.Background(), &models.RegisterRequest{Username: "nomail", Password: "secret1"})

	require.NoError(t, err)
	assert.Nil(t, user.Email)

	// a second account without email does not collide on the empty value
	user, err = svc.Register(context.Background(), &models.RegisterRequest{Username: "nomail2", Password: "secret1"})
	require.NoError(t, err)
	assert.Nil(t, user.Email)
}

func TestAuthService_Register_OnlyFirstUserIsAutoAdmin(t *testing.T) {
	repo := newMockUserRepository()
	svc := setupAuthService(t, repo, "letmein")
	ctx := context.Background()

	first, err := svc.Register(ctx, &models.RegisterRequest{Username: "first", Password: "secret1"})
	require.NoError(t, err)
	second, err := svc.Register(ctx, &models.RegisterRequest{Username: "second", Password: "secret1"})
	require.NoError(t, err)

	assert.Equal(t, models.RoleAdmin, first.Role)
	assert.Equal(t, models.RoleUser, second.Role)
}

func TestAuthService_Login(t *testing.T) {
	active := &models.User{ID: 1, Username: "alice", PasswordHash: hashPassword(t, "secret1"), Role: models.RoleAdmin, IsActive: true}
	inactive := &models.User{ID: 2, Username: "bob", PasswordHash: hashPassword(t, "secret2"), Role: models.RoleUser, IsActive: false}

	tests := []struct {
		name          string
		repo          *mockUserRepository
		req           models.LoginRequest
		expectedError error
		expectAnyErr  bool
		expectedRole  models.Role
	}{
		{
			name:         "success",
			repo:         newMockUserRepository(active, inactive),
			req:          models.LoginRequest{Username: "alice", Password: "secret1"},
			expectedRole: models.RoleAdmin,
		},
		{
			name:          "unknown user",
			repo:          newMockUserRepository(active, inactive),
			req:           models.LoginRequest{Username: "carol", Password: "secret1"},
			expectedError: models.ErrInvalidCredentials,
		},
		{
			name:          "wrong password",
			repo:          newMockUserRepository(active, inactive),
			req:           models.LoginRequest{Username: "alice", Password: "wrong"},
			expectedError: models.ErrInvalidCredentials,
		},
		{
			name:          "deactivated with correct password",
			repo:          newMockUserRepository(active, inactive),
			req:           models.LoginRequest{Username: "bob", Password: "secret2"},
			expectedError: models.ErrAccountInactive,
		},
		{
			name:          "deactivated with wrong password",
			repo:          newMockUserRepository(active, inactive),
			req:           models.LoginRequest{Username: "bob", Password: "wrong"},
			expectedError: models.ErrInvalidCredentials,
		},
		{
			name: "repository error",
			repo: func() *mockUserRepository {
				r := newMockUserRepository(active)
				r.getErr = errors.New("db down")
				return r
			}(),
			req:          models.LoginRequest{Username: "alice", Password: "secret1"},
			expectAnyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := setupAuthService(t, tt.repo, "")

			user, err := svc.Login(context.Background(), &tt.req)

			switch {
			case tt.expectedError != nil:
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			case tt.expectAnyErr:
				assert.Error(t, err)
				assert.NotErrorIs(t, err, models.ErrInvalidCredentials)
				assert.Nil(t, user)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.expectedRole, user.Role)
			}
		})
	}
}

func TestAuthService_Register_UsesClock(t *testing.T) {
	repo := newMockUserRepository()
	svc := setupAuthService(t, repo, "")
	fixed := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	user, err := svc.Register(context.Background(), &models.RegisterRequest{Username: "clock", Password: "secret1"})

	require.NoError(t, err)
	assert.Equal(t, fixed, user.CreatedAt)
}
