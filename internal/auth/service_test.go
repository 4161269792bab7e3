package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"busly/internal/shared/config"
	"busly/internal/users"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) CreateUser(ctx context.Context, user *users.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) GetUserByEmail(ctx context.Context, email string) (*users.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*users.User), args.Error(1)
}

func (m *mockUserRepo) GetUserByID(ctx context.Context, id string) (*users.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*users.User), args.Error(1)
}

func (m *mockUserRepo) UpdateUserPassword(ctx context.Context, userID, hashedPassword string) error {
	args := m.Called(ctx, userID, hashedPassword)
	return args.Error(0)
}

func (m *mockUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func testAuthConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:           "test-jwt-secret",
			JWTExpiresIn:     15 * time.Minute,
			RefreshExpiresIn: 24 * time.Hour,
		},
	}
}

func hashedTestPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("new user gets tokens and the default role", func(t *testing.T) {
		repo := new(mockUserRepo)
		svc := NewService(repo, testAuthConfig())

		repo.On("EmailExists", mock.Anything, "linh@example.com").Return(false, nil)
		repo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *users.User) bool {
			return u.Role == users.RoleUser && u.Email == "linh@example.com" && u.Password != "secret123"
		})).Return(nil)

		resp, err := svc.Register(ctx, &RegisterRequest{
			FirstName: "Linh",
			LastName:  "Nguyen",
			Email:     "linh@example.com",
			Password:  "secret123",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		repo.AssertExpectations(t)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		repo := new(mockUserRepo)
		svc := NewService(repo, testAuthConfig())
		repo.On("EmailExists", mock.Anything, "linh@example.com").Return(true, nil)

		_, err := svc.Register(ctx, &RegisterRequest{Email: "linh@example.com", Password: "secret123"})
		assert.ErrorIs(t, err, ErrUserAlreadyExists)
		repo.AssertNotCalled(t, "CreateUser")
	})

	t.Run("unknown role falls back to USER", func(t *testing.T) {
		repo := new(mockUserRepo)
		svc := NewService(repo, testAuthConfig())

		repo.On("EmailExists", mock.Anything, mock.Anything).Return(false, nil)
		repo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *users.User) bool {
			return u.Role == users.RoleUser
		})).Return(nil)

		_, err := svc.Register(ctx, &RegisterRequest{
			Email:    "minh@example.com",
			Password: "secret123",
			Role:     "superuser",
		})
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	user := &users.User{
		ID:    uuid.New(),
		Email: "linh@example.com",
		Role:  users.RoleUser,
	}

	t.Run("valid credentials", func(t *testing.T) {
		repo := new(mockUserRepo)
		svc := NewService(repo, testAuthConfig())
		stored := *user
		stored.Password = hashedTestPassword(t, "secret123")
		repo.On("GetUserByEmail", mock.Anything, "linh@example.com").Return(&stored, nil)

		resp, err := svc.Login(ctx, &LoginRequest{Email: "linh@example.com", Password: "secret123"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)

		claims, err := svc.ValidateToken(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), claims.UserID)
		assert.Equal(t, "access", claims.Type)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(mockUserRepo)
		svc := NewService(repo, testAuthConfig())
		stored := *user
		stored.Password = hashedTestPassword(t, "secret123")
		repo.On("GetUserByEmail", mock.Anything, "linh@example.com").Return(&stored, nil)

		_, err := svc.Login(ctx, &LoginRequest{Email: "linh@example.com", Password: "wrong"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email maps to invalid credentials", func(t *testing.T) {
		repo := new(mockUserRepo)
		svc := NewService(repo, testAuthConfig())
		repo.On("GetUserByEmail", mock.Anything, "ghost@example.com").Return(nil, ErrUserNotFound)

		_, err := svc.Login(ctx, &LoginRequest{Email: "ghost@example.com", Password: "secret123"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestValidateToken(t *testing.T) {
	t.Run("garbage token", func(t *testing.T) {
		svc := NewService(new(mockUserRepo), testAuthConfig())
		_, err := svc.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		cfg := testAuthConfig()
		cfg.JWT.JWTExpiresIn = -time.Minute
		repo := new(mockUserRepo)
		svc := NewService(repo, cfg)

		stored := &users.User{ID: uuid.New(), Email: "x@example.com", Role: users.RoleUser, Password: hashedTestPassword(t, "pw")}
		repo.On("GetUserByEmail", mock.Anything, "x@example.com").Return(stored, nil)

		resp, err := svc.Login(context.Background(), &LoginRequest{Email: "x@example.com", Password: "pw"})
		require.NoError(t, err)

		_, err = svc.ValidateToken(resp.AccessToken)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("access token cannot be used to refresh", func(t *testing.T) {
		repo := new(mockUserRepo)
		svc := NewService(repo, testAuthConfig())

		stored := &users.User{ID: uuid.New(), Email: "x@example.com", Role: users.RoleUser, Password: hashedTestPassword(t, "pw")}
		repo.On("GetUserByEmail", mock.Anything, "x@example.com").Return(stored, nil)

		resp, err := svc.Login(context.Background(), &LoginRequest{Email: "x@example.com", Password: "pw"})
		require.NoError(t, err)

		_, err = svc.RefreshToken(context.Background(), resp.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
