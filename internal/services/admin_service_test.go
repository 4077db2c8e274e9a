package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/studentportal/webapp/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func adminFixtures() *mockUserRepository {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return newMockUserRepository(
		&models.User{ID: 1, Username: "root", Role: models.RoleAdmin, IsActive: true, CreatedAt: base},
		&models.User{ID: 2, Username: "alice", Role: models.RoleUser, IsActive: true, CreatedAt: base.Add(time.Hour)},
		&models.User{ID: 3, Username: "bob", Role: models.RoleUser, IsActive: false, CreatedAt: base.Add(2 * time.Hour)},
	)
}

func TestNewAdminService(t *testing.T) {
	logger := zaptest.NewLogger(t)
	repo := newMockUserRepository()

	svc := NewAdminService(repo, logger)

	assert.NotNil(t, svc)
	assert.Equal(t, repo, svc.userRepo)
	assert.Equal(t, logger, svc.logger)
}

func TestAdminService_ListUsers(t *testing.T) {
	svc := NewAdminService(adminFixtures(), zaptest.NewLogger(t))

	users, err := svc.ListUsers(context.Background())

	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, []string{"bob", "alice", "root"}, []string{users[0].Username, users[1].Username, users[2].Username})
}

func TestAdminService_ToggleActive(t *testing.T) {
	tests := []struct {
		name           string
		actorID        int
		targetID       int
		setup          func(*mockUserRepository)
		expectedError  error
		expectAnyErr   bool
		expectedActive bool
	}{
		{
			name:           "deactivate active user",
			actorID:        1,
			targetID:       2,
			expectedActive: false,
		},
		{
			name:           "activate inactive user",
			actorID:        1,
			targetID:       3,
			expectedActive: true,
		},
		{
			name:          "self target",
			actorID:       1,
			targetID:      1,
			expectedError: models.ErrSelfAction,
		},
		{
			name:          "missing target",
			actorID:       1,
			targetID:      42,
			expectedError: models.ErrUserNotFound,
		},
		{
			name:     "update fails",
			actorID:  1,
			targetID: 2,
			setup: func(r *mockUserRepository) {
				r.updateErr = errors.New("db down")
			},
			expectAnyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := adminFixtures()
			if tt.setup != nil {
				tt.setup(repo)
			}
			svc := NewAdminService(repo, zaptest.NewLogger(t))
			snapshot := map[int]bool{}
			for id, u := range repo.users {
				snapshot[id] = u.IsActive
			}

			user, err := svc.ToggleActive(context.Background(), tt.actorID, tt.targetID)

			if tt.expectedError != nil || tt.expectAnyErr {
				if tt.expectedError != nil {
					assert.ErrorIs(t, err, tt.expectedError)
				} else {
					assert.Error(t, err)
				}
				assert.Nil(t, user)
				for id, u := range repo.users {
					assert.Equal(t, snapshot[id], u.IsActive, "user %d changed", id)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedActive, user.IsActive)
			assert.Equal(t, tt.expectedActive, repo.users[tt.targetID].IsActive)
		})
	}
}

func TestAdminService_DeleteUser(t *testing.T) {
	tests := []struct {
		name          string
		actorID       int
		targetID      int
		setup         func(*mockUserRepository)
		expectedError error
		expectAnyErr  bool
	}{
		{
			name:     "success",
			actorID:  1,
			targetID: 2,
		},
		{
			name:          "self target",
			actorID:       1,
			targetID:      1,
			expectedError: models.ErrSelfAction,
		},
		{
			name:          "missing target",
			actorID:       1,
			targetID:      42,
			expectedError: models.ErrUserNotFound,
		},
		{
			name:     "delete fails",
			actorID:  1,
			targetID: 2,
			setup: func(r *mockUserRepository) {
				r.deleteErr = errors.New("db down")
			},
			expectAnyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := adminFixtures()
			if tt.setup != nil {
				tt.setup(repo)
			}
			svc := NewAdminService(repo, zaptest.NewLogger(t))

			user, err := svc.DeleteUser(context.Background(), tt.actorID, tt.targetID)

			if tt.expectedError != nil || tt.expectAnyErr {
				if tt.expectedError != nil {
					assert.ErrorIs(t, err, tt.expectedError)
				} else {
					assert.Error(t, err)
				}
				assert.Nil(t, user)
				assert.Len(t, repo.users, 3)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "alice", user.Username)
			assert.Len(t, repo.users, 2)
			assert.NotContains(t, repo.users, tt.targetID)
		})
	}
}
