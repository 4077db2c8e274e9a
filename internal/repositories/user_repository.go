package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/studentportal/webapp/internal/models"
	"go.uber.org/zap"
)

// mysqlDuplicateEntry is the MySQL error number for a unique key violation
const mysqlDuplicateEntry = 1062

const userColumns = `id, username, email, password_hash, role, is_active, created_at`

// userRepository implements UserRepository on top of MySQL or SQLite
type userRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB, logger *zap.Logger) *userRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new user into the database and sets its ID
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, role, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		user.Username, user.Email, user.PasswordHash, user.Role, user.IsActive, user.CreatedAt)
	if err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("failed to create user %q: %w", user.Username, models.ErrUserExists)
		}
		r.logger.Error("failed to create user", zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	user.ID = int(id)
	return nil
}

// GetByID retrieves a user by primary key
func (r *userRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`

	user := &models.User{}
	if err := r.db.GetContext(ctx, user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("failed to get user by id", zap.Error(err), zap.Int("id", id))
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// GetByUsername retrieves a user by username
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`

	user := &models.User{}
	if err := r.db.GetContext(ctx, user, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("failed to get user by username", zap.Error(err), zap.String("username", username))
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return user, nil
}

// ExistsByUsername checks if a user exists with the given username
func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, username); err != nil {
		r.logger.Error("failed to check username existence", zap.Error(err), zap.String("username", username))
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}

	return exists, nil
}

// ExistsByEmail checks if a user exists with the given email
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		r.logger.Error("failed to check email existence", zap.Error(err), zap.String("email", email))
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}

	return exists, nil
}

// Count returns the number of stored users
func (r *userRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`); err != nil {
		r.logger.Error("failed to count users", zap.Error(err))
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// List returns all users, newest first
func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC, id DESC`

	users := []models.User{}
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		r.logger.Error("failed to list users", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

// SetActive updates the active flag of a user
func (r *userRepository) SetActive(ctx context.Context, id int, active bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET is_active = ? WHERE id = ?`, active, id)
	if err != nil {
		r.logger.Error("failed to update user active flag", zap.Error(err), zap.Int("id", id))
		return fmt.Errorf("failed to update user active flag: %w", err)
	}

	return expectOneRow(result, id)
}

// Delete removes a user by primary key
func (r *userRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("failed to delete user", zap.Error(err), zap.Int("id", id))
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return expectOneRow(result, id)
}

// expectOneRow maps a zero rows-affected result to ErrUserNotFound
func expectOneRow(result sql.Result, id int) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %d: %w", id, models.ErrUserNotFound)
	}
	return nil
}

// isDuplicateKey reports whether err is a unique constraint violation in MySQL or SQLite
func isDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlDuplicateEntry
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
