// Package accounts implements the email keyed user model on top of a store
// handle: creating users and superusers, password hashing and credential checks.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jon4hz/recipebox/internal/database"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password accepted by the sign-up API.
const MinPasswordLength = 5

// ErrInvalidCredentials is returned when an email/password pair does not match an active user.
var ErrInvalidCredentials = errors.New("unable to authenticate with provided credentials")

// hashCost is the bcrypt cost used for new password hashes.
var hashCost = bcrypt.DefaultCost

// ValidationError reports invalid input for a single field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Store is the part of database.DB the account functions need.
type Store interface {
	CreateUser(ctx context.Context, user *database.User) error
	GetUserByEmail(ctx context.Context, email string) (*database.User, error)
	UpdateLastLogin(ctx context.Context, id uint, at time.Time) error
}

// Option sets an extra field on a user before it is stored.
type Option func(u *database.User)

// WithName sets the display name.
func WithName(name string) Option {
	return func(u *database.User) {
		u.Name = strings.TrimSpace(name)
	}
}

// WithStaff marks the user as staff.
func WithStaff() Option {
	return func(u *database.User) {
		u.IsStaff = true
	}
}

// WithSuperuser marks the user as superuser.
func WithSuperuser() Option {
	return func(u *database.User) {
		u.IsSuperuser = true
	}
}

// WithActive overrides the active flag.
func WithActive(active bool) Option {
	return func(u *database.User) {
		u.IsActive = active
	}
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser stores a new active, non-staff user. The email is required and
// lower-cased; the password is kept only as a bcrypt hash. An empty password
// leaves the account without a usable password.
func CreateUser(ctx context.Context, store Store, email, password string, opts ...Option) (*database.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, &ValidationError{Field: "email", Message: "users must have an email address"}
	}

	user := &database.User{
		Email:    email,
		IsActive: true,
	}
	for _, opt := range opts {
		opt(user)
	}
	if err := SetPassword(user, password); err != nil {
		return nil, err
	}

	if _, err := store.GetUserByEmail(ctx, email); err == nil {
		return nil, &ValidationError{Field: "email", Message: "a user with this email already exists"}
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, &ValidationError{Field: "email", Message: "a user with this email already exists"}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// CreateSuperuser stores a new user with the staff and superuser flags set.
func CreateSuperuser(ctx context.Context, store Store, email, password string, opts ...Option) (*database.User, error) {
	if password == "" {
		return nil, &ValidationError{Field: "password", Message: "superusers must have a password"}
	}
	opts = append(opts, WithStaff(), WithSuperuser())
	return CreateUser(ctx, store, email, password, opts...)
}

// SetPassword replaces the stored hash. An empty password makes the account
// unusable for password logins.
func SetPassword(user *database.User, password string) error {
	if password == "" {
		user.PasswordHash = ""
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(user *database.User, password string) bool {
	if user == nil || user.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// CheckCredentials returns the active user matching email and password
// without writing anything.
func CheckCredentials(ctx context.Context, store Store, email, password string) (*database.User, error) {
	user, err := store.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !user.IsActive || !CheckPassword(user, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// RecordLogin stamps the login time on user. Only the last_login column is
// written.
func RecordLogin(ctx context.Context, store Store, user *database.User) error {
	now := time.Now()
	if err := store.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}
	user.LastLogin = &now
	return nil
}

// Authenticate checks the credentials and records the login.
func Authenticate(ctx context.Context, store Store, email, password string) (*database.User, error) {
	user, err := CheckCredentials(ctx, store, email, password)
	if err != nil {
		return nil, err
	}
	if err := RecordLogin(ctx, store, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ValidatePassword applies the sign-up password policy.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return &ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("ensure this field has at least %d characters", MinPasswordLength),
		}
	}
	return nil
}
