package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task_backend/internal/feature/auth/domain/entity"
	"task_backend/internal/platform/password"
)

// mockUserRepository is a mock implementation of UserRepository.
type mockUserRepository struct {
	CreateFunc      func(ctx context.Context, user *entity.User) error
	FindByEmailFunc func(ctx context.Context, email string) (*entity.User, error)
	FindByIDFunc    func(ctx context.Context, id string) (*entity.User, error)
	UpdateNameFunc  func(ctx context.Context, id, name string) (*entity.User, error)
}

func (m *mockUserRepository) Create(ctx context.Context, user *entity.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	user.ID = "user-1"
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	// Default: not found
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) UpdateName(ctx context.Context, id, name string) (*entity.User, error) {
	if m.UpdateNameFunc != nil {
		return m.UpdateNameFunc(ctx, id, name)
	}
	return nil, ErrUserNotFound
}

// mockJWTGenerator is a mock implementation of JWTGenerator.
type mockJWTGenerator struct {
	GenerateTokenFunc func(userID, email string) (string, error)
}

func (m *mockJWTGenerator) GenerateToken(userID, email string) (string, error) {
	if m.GenerateTokenFunc != nil {
		return m.GenerateTokenFunc(userID, email)
	}
	return "mock-jwt-token", nil
}

// countingHasher wraps the real hasher and records Verify calls.
type countingHasher struct {
	*password.Hasher
	verifyCalls int
}

func (h *countingHasher) Verify(plain, digest string) bool {
	h.verifyCalls++
	return h.Hasher.Verify(plain, digest)
}

func newTestHasher() *countingHasher {
	// MinCost keeps the tests fast
	return &countingHasher{Hasher: password.NewHasher(4)}
}

func TestAuthUsecase_Register(t *testing.T) {
	t.Run("successful register normalizes input and hashes the password", func(t *testing.T) {
		hasher := newTestHasher()
		var stored *entity.User
		repo := &mockUserRepository{
			CreateFunc: func(_ context.Context, user *entity.User) error {
				user.ID = "u-42"
				stored = user
				return nil
			},
		}
		jwtGen := &mockJWTGenerator{
			GenerateTokenFunc: func(userID, email string) (string, error) {
				assert.Equal(t, "u-42", userID)
				assert.Equal(t, "alice@example.com", email)
				return "signed", nil
			},
		}
		uc := NewAuthUsecase(repo, jwtGen, hasher)

		res, err := uc.Register(context.Background(), "  Alice  ", " Alice@Example.COM ", "secret1")
		require.NoError(t, err)

		assert.Equal(t, "signed", res.Token)
		assert.Equal(t, "Alice", res.User.Name)
		assert.Equal(t, "alice@example.com", res.User.Email)
		require.NotNil(t, stored)
		assert.NotEqual(t, "secret1", stored.PasswordHash)
		assert.True(t, hasher.Hasher.Verify("secret1", stored.PasswordHash))
	})

	validationCases := []struct {
		name     string
		userName string
		email    string
		password string
		wantErr  error
	}{
		{"empty name", "   ", "a@b.co", "secret1", ErrAllFieldsRequired},
		{"empty email", "Alice", "", "secret1", ErrAllFieldsRequired},
		{"blank password", "Alice", "a@b.co", "      ", ErrAllFieldsRequired},
		{"email without domain dot", "Alice", "alice@example", "secret1", ErrInvalidEmail},
		{"email with space", "Alice", "al ice@example.com", "secret1", ErrInvalidEmail},
		{"short password", "Alice", "a@b.co", "12345", ErrPasswordTooShort},
		{"password over bcrypt limit", "Alice", "a@b.co", strings.Repeat("x", 73), ErrPasswordTooLong},
		{"name too long", strings.Repeat("n", 101), "a@b.co", "secret1", ErrNameTooLong},
	}
	for _, tc := range validationCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &mockUserRepository{
				CreateFunc: func(context.Context, *entity.User) error {
					t.Fatal("Create must not be called on invalid input")
					return nil
				},
			}
			uc := NewAuthUsecase(repo, &mockJWTGenerator{}, newTestHasher())

			_, err := uc.Register(context.Background(), tc.userName, tc.email, tc.password)

			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	t.Run("six characters is enough", func(t *testing.T) {
		uc := NewAuthUsecase(&mockUserRepository{}, &mockJWTGenerator{}, newTestHasher())

		_, err := uc.Register(context.Background(), "Alice", "a@b.co", "123456")

		assert.NoError(t, err)
	})

	t.Run("duplicate email found by lookup", func(t *testing.T) {
		repo := &mockUserRepository{
			FindByEmailFunc: func(_ context.Context, email string) (*entity.User, error) {
				return &entity.User{ID: "existing", Email: email}, nil
			},
		}
		uc := NewAuthUsecase(repo, &mockJWTGenerator{}, newTestHasher())

		_, err := uc.Register(context.Background(), "Alice", "ALICE@example.com", "secret1")

		assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	})

	t.Run("duplicate email caught by unique index", func(t *testing.T) {
		repo := &mockUserRepository{
			CreateFunc: func(context.Context, *entity.User) error {
				return ErrEmailAlreadyExists
			},
		}
		uc := NewAuthUsecase(repo, &mockJWTGenerator{}, newTestHasher())

		_, err := uc.Register(context.Background(), "Alice", "alice@example.com", "secret1")

		assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	})

	t.Run("lookup failure is wrapped", func(t *testing.T) {
		dbErr := errors.New("connection refused")
		repo := &mockUserRepository{
			FindByEmailFunc: func(context.Context, string) (*entity.User, error) {
				return nil, dbErr
			},
		}
		uc := NewAuthUsecase(repo, &mockJWTGenerator{}, newTestHasher())

		_, err := uc.Register(context.Background(), "Alice", "alice@example.com", "secret1")

		assert.ErrorIs(t, err, dbErr)
	})

	t.Run("token failure is wrapped", func(t *testing.T) {
		jwtErr := errors.New("sign failed")
		jwtGen := &mockJWTGenerator{
			GenerateTokenFunc: func(string, string) (string, error) { return "", jwtErr },
		}
		uc := NewAuthUsecase(&mockUserRepository{}, jwtGen, newTestHasher())

		_, err := uc.Register(context.Background(), "Alice", "alice@example.com", "secret1")

		assert.ErrorIs(t, err, jwtErr)
	})
}

func TestAuthUsecase_Login(t *testing.T) {
	hasher := newTestHasher()
	digest, err := hasher.Hash("secret1")
	require.NoError(t, err)

	existing := &entity.User{ID: "u-1", Name: "Alice", Email: "alice@example.com", PasswordHash: digest}
	repo := &mockUserRepository{
		FindByEmailFunc: func(_ context.Context, email string) (*entity.User, error) {
			if email == existing.Email {
				return existing, nil
			}
			return nil, ErrUserNotFound
		},
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"success with mixed-case email", "  ALICE@example.com ", "secret1", nil},
		{"wrong password", "alice@example.com", "wrong-pass", ErrInvalidCredentials},
		{"unknown email", "bob@example.com", "secret1", ErrInvalidCredentials},
		{"missing email", "", "secret1", ErrLoginFieldsRequired},
		{"missing password", "alice@example.com", "", ErrLoginFieldsRequired},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			uc := NewAuthUsecase(repo, &mockJWTGenerator{}, hasher)

			res, err := uc.Login(context.Background(), tc.email, tc.password)

			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, res)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "mock-jwt-token", res.Token)
			assert.Equal(t, "u-1", res.User.ID)
		})
	}

	t.Run("unknown email still runs a password comparison", func(t *testing.T) {
		h := newTestHasher()
		uc := NewAuthUsecase(repo, &mockJWTGenerator{}, h)

		_, err := uc.Login(context.Background(), "nobody@example.com", "secret1")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Equal(t, 1, h.verifyCalls)
	})

	t.Run("repository failure is not reported as bad credentials", func(t *testing.T) {
		dbErr := errors.New("timeout")
		failing := &mockUserRepository{
			FindByEmailFunc: func(context.Context, string) (*entity.User, error) { return nil, dbErr },
		}
		uc := NewAuthUsecase(failing, &mockJWTGenerator{}, hasher)

		_, err := uc.Login(context.Background(), "alice@example.com", "secret1")

		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthUsecase_GetProfile(t *testing.T) {
	repo := &mockUserRepository{
		FindByIDFunc: func(_ context.Context, id string) (*entity.User, error) {
			if id == "u-1" {
				return &entity.User{ID: "u-1", Name: "Alice"}, nil
			}
			return nil, ErrUserNotFound
		},
	}
	uc := NewAuthUsecase(repo, &mockJWTGenerator{}, newTestHasher())

	user, err := uc.GetProfile(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)

	_, err = uc.GetProfile(context.Background(), "deleted")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthUsecase_UpdateProfile(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantName string
		wantErr  error
	}{
		{"trims name", "  Alice B  ", "Alice B", nil},
		{"blank name", "   ", "", ErrNameRequired},
		{"too long", strings.Repeat("a", MaxNameLength+1), "", ErrNameTooLong},
		{"exactly max length", strings.Repeat("a", MaxNameLength), strings.Repeat("a", MaxNameLength), nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := &mockUserRepository{
				UpdateNameFunc: func(_ context.Context, id, name string) (*entity.User, error) {
					return &entity.User{ID: id, Name: name}, nil
				},
			}
			uc := NewAuthUsecase(repo, &mockJWTGenerator{}, newTestHasher())

			user, err := uc.UpdateProfile(context.Background(), "u-1", tc.input)

			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantName, user.Name)
		})
	}
}
