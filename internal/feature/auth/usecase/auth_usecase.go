package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"task_backend/internal/feature/auth/domain/entity"
	"task_backend/internal/platform/apperr"
)

const (
	// MinPasswordLength is the minimum number of characters in a password.
	MinPasswordLength = 6
	// MaxPasswordBytes is bcrypt's input limit.
	MaxPasswordBytes = 72
	// MaxNameLength is the maximum number of characters in a display name.
	MaxNameLength = 100
)

// emailPattern is deliberately loose: something@something.something without whitespace.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ErrPasswordTooLong is returned when a password exceeds MaxPasswordBytes.
var ErrPasswordTooLong = apperr.Validation(fmt.Sprintf("password must be at most %d bytes", MaxPasswordBytes))

// UserRepository abstracts the persistence layer for user entities.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type UserRepository interface {
	// Create persists a new user and sets its ID and timestamps.
	// It returns ErrEmailAlreadyExists if the email is taken.
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail retrieves a user by lower-cased email.
	// It returns ErrUserNotFound if the user does not exist.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID retrieves a user by ID.
	// It returns ErrUserNotFound if the user does not exist.
	FindByID(ctx context.Context, id string) (*entity.User, error)

	// UpdateName sets the user's name and returns the updated user.
	// It returns ErrUserNotFound if the user does not exist.
	UpdateName(ctx context.Context, id, name string) (*entity.User, error)
}

// JWTGenerator defines the interface for JWT token generation.
type JWTGenerator interface {
	// GenerateToken creates a signed token for the given user.
	GenerateToken(userID, email string) (string, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string
	User  *entity.User
}

// authUsecase implements authentication and profile business logic.
type authUsecase struct {
	users        UserRepository
	jwtGenerator JWTGenerator
	hasher       PasswordHasher

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthUsecase creates a new authUsecase.
func NewAuthUsecase(users UserRepository, jwtGenerator JWTGenerator, hasher PasswordHasher) *authUsecase {
	return &authUsecase{
		users:        users,
		jwtGenerator: jwtGenerator,
		hasher:       hasher,
	}
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validateRegistration checks registration input and returns the normalized name and email.
func validateRegistration(name, email, password string) (string, string, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	if name == "" || email == "" || strings.TrimSpace(password) == "" {
		return "", "", ErrAllFieldsRequired
	}
	if !emailPattern.MatchString(email) {
		return "", "", ErrInvalidEmail
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return "", "", ErrPasswordTooShort
	}
	if len(password) > MaxPasswordBytes {
		return "", "", ErrPasswordTooLong
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", "", ErrNameTooLong
	}
	return name, email, nil
}

// Register creates a user and returns a session token for it.
func (u *authUsecase) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	name, email, err := validateRegistration(name, email, password)
	if err != nil {
		return nil, err
	}

	// The unique index still guards against a concurrent registration slipping past this check.
	if _, err := u.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}

	hashed, err := u.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{Name: name, Email: email, PasswordHash: hashed}
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return u.issue(user)
}

// Login authenticates a user and returns a session token.
// A bcrypt comparison runs even when the user does not exist to blunt timing attacks.
func (u *authUsecase) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrLoginFieldsRequired
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	passwordHash := u.dummy()
	if user != nil {
		passwordHash = user.PasswordHash
	}

	ok := u.hasher.Verify(password, passwordHash)
	if user == nil || !ok {
		return nil, ErrInvalidCredentials
	}

	return u.issue(user)
}

// GetProfile returns the user identified by userID.
func (u *authUsecase) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	return u.users.FindByID(ctx, userID)
}

// UpdateProfile changes the user's display name.
func (u *authUsecase) UpdateProfile(ctx context.Context, userID, name string) (*entity.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return nil, ErrNameTooLong
	}
	return u.users.UpdateName(ctx, userID, name)
}

func (u *authUsecase) issue(user *entity.User) (*AuthResult, error) {
	token, err := u.jwtGenerator.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

// dummy returns a digest with the hasher's cost so unknown emails take as long as wrong passwords.
func (u *authUsecase) dummy() string {
	u.dummyOnce.Do(func() {
		h, err := u.hasher.Hash("timing-equalizer-password")
		if err != nil {
			h = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
		}
		u.dummyHash = h
	})
	return u.dummyHash
}
