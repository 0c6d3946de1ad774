// Package accounts handles signup, login and account lifecycle.
package accounts

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"watchhive/internal/database"
	"watchhive/models"
)

var (
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Service manages accounts and their profiles.
type Service struct {
	repo *database.AccountRepository
	now  func() time.Time
}

func NewService(repo *database.AccountRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// SignupRequest is the signup payload.
type SignupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

// Signup creates the account and its profile atomically; a failure at
// any point leaves no partial rows behind.
func (s *Service) Signup(req SignupRequest) (models.Account, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return models.Account{}, ErrEmailRequired
	}
	if len(req.Password) < 8 {
		return models.Account{}, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.Account{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	account := models.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = strings.SplitN(email, "@", 2)[0]
	}
	profile := models.Profile{
		UserID:      account.ID,
		DisplayName: displayName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.CreateWithProfile(account, profile); err != nil {
		return models.Account{}, err
	}
	return account, nil
}

// Login verifies the credentials and returns the account. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *Service) Login(email, password string) (models.Account, error) {
	account, err := s.repo.GetByEmail(strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, database.ErrAccountNotFound) {
			return models.Account{}, ErrInvalidCredentials
		}
		return models.Account{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return models.Account{}, ErrInvalidCredentials
	}
	return account, nil
}

// Get returns the account by id.
func (s *Service) Get(userID string) (models.Account, error) {
	return s.repo.GetByID(userID)
}

// Profile returns the profile for an account.
func (s *Service) Profile(userID string) (models.Profile, error) {
	return s.repo.GetProfile(userID)
}

// UpdateProfile changes the display fields of a profile.
func (s *Service) UpdateProfile(userID, displayName, avatarColor string) error {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return errors.New("display name is required")
	}
	return s.repo.UpdateProfile(userID, displayName, avatarColor, s.now())
}

// Delete removes the account; all owned rows cascade away with it.
func (s *Service) Delete(userID string) error {
	return s.repo.Delete(userID)
}
