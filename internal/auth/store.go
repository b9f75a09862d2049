package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("auth: user not found")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrUserDisabled       = errors.New("auth: user disabled")
)

// Store persists admin users. It also implements tenant.UserDirectory so the
// resolver can turn a numeric user id back into an email.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Authenticate verifies the email/password pair and returns the account.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*AdminUser, error) {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !u.Active {
		return nil, ErrUserDisabled
	}
	if !CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// GetByEmail loads an account by email, case-insensitively.
func (s *Store) GetByEmail(ctx context.Context, email string) (*AdminUser, error) {
	var u AdminUser
	err := s.db.WithContext(ctx).
		Where("lower(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID loads an account by id.
func (s *Store) GetByID(ctx context.Context, id int64) (*AdminUser, error) {
	var u AdminUser
	err := s.db.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// EmailByID implements tenant.UserDirectory.
func (s *Store) EmailByID(ctx context.Context, id int64) (string, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", nil
		}
		return "", err
	}
	return u.Email, nil
}

// RolesByID returns the roles behind a user id, nil when the account is gone.
func (s *Store) RolesByID(ctx context.Context, id int64) ([]string, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return u.Roles, nil
}

// Create inserts a new account with a lowercased email.
func (s *Store) Create(ctx context.Context, u *AdminUser) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return s.db.WithContext(ctx).Create(u).Error
}
