package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"watchhive/models"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrEmailTaken      = errors.New("email already registered")
)

// AccountRepository persists accounts and their profiles.
type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// CreateWithProfile inserts the account and its profile in one
// transaction, so a signup never leaves an account without a profile.
func (r *AccountRepository) CreateWithProfile(account models.Account, profile models.Profile) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin signup: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO accounts (id, email, password_hash, role, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		account.ID, account.Email, account.PasswordHash, account.Role, account.CreatedAt.UTC(), account.UpdatedAt.UTC(),
	); err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert account: %w", err)
	}

	if _, err := tx.Exec(
		`INSERT INTO profiles (user_id, display_name, avatar_color, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		profile.UserID, profile.DisplayName, profile.AvatarColor, profile.CreatedAt.UTC(), profile.UpdatedAt.UTC(),
	); err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit signup: %w", err)
	}
	return nil
}

// GetByEmail looks an account up by email, case-insensitively.
func (r *AccountRepository) GetByEmail(email string) (models.Account, error) {
	return r.getAccount(`SELECT id, email, password_hash, role, created_at, updated_at FROM accounts WHERE email = ?`, email)
}

// GetByID looks an account up by its id.
func (r *AccountRepository) GetByID(id string) (models.Account, error) {
	return r.getAccount(`SELECT id, email, password_hash, role, created_at, updated_at FROM accounts WHERE id = ?`, id)
}

func (r *AccountRepository) getAccount(query string, arg any) (models.Account, error) {
	var a models.Account
	err := r.db.QueryRow(query, arg).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Role, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, ErrAccountNotFound
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

// GetProfile returns the profile for a user id.
func (r *AccountRepository) GetProfile(userID string) (models.Profile, error) {
	var p models.Profile
	err := r.db.QueryRow(
		`SELECT user_id, display_name, avatar_color, created_at, updated_at FROM profiles WHERE user_id = ?`,
		userID,
	).Scan(&p.UserID, &p.DisplayName, &p.AvatarColor, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, ErrAccountNotFound
	}
	if err != nil {
		return models.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// UpdateProfile replaces the mutable profile fields.
func (r *AccountRepository) UpdateProfile(userID, displayName, avatarColor string, now time.Time) error {
	res, err := r.db.Exec(
		`UPDATE profiles SET display_name = ?, avatar_color = ?, updated_at = ? WHERE user_id = ?`,
		displayName, avatarColor, now.UTC(), userID,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// Delete removes an account. Foreign keys cascade the delete to the
// profile, progress, watched, watchlist and list rows.
func (r *AccountRepository) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
