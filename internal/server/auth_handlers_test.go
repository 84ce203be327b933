package server

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"tangerine/internal/config"
	"tangerine/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByIDWithPosts(ctx context.Context, id uint, limit int) (*models.User, error) {
	args := m.Called(ctx, id, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.User), args.Error(1)
}

func newAuthHandlerApp(userRepo *MockUserRepository) (*fiber.App, *Server) {
	s := &Server{
		config:   &config.Config{JWTSecret: "test-secret-test-secret-test-secret"},
		userRepo: userRepo,
	}
	app := fiber.New()
	app.Post("/auth/signup", s.Signup)
	app.Post("/auth/login", s.Login)
	return app, s
}

func TestSignup(t *testing.T) {
	t.Run("missing fields", func(t *testing.T) {
		app, _ := newAuthHandlerApp(new(MockUserRepository))

		req := jsonRequest(t, http.MethodPost, "/auth/signup",
			map[string]string{"username": "pat"})
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("weak password", func(t *testing.T) {
		app, _ := newAuthHandlerApp(new(MockUserRepository))

		req := jsonRequest(t, http.MethodPost, "/auth/signup", map[string]string{
			"username": "pat",
			"email":    "pat@example.com",
			"password": "short",
		})
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		userRepo.On("GetByEmail", mock.Anything, "pat@example.com").
			Return(&models.User{ID: 1, Email: "pat@example.com"}, nil)
		app, _ := newAuthHandlerApp(userRepo)

		req := jsonRequest(t, http.MethodPost, "/auth/signup", map[string]string{
			"username": "pat",
			"email":    "pat@example.com",
			"password": "SecurePass12!@",
		})
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("success returns token", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		userRepo.On("GetByEmail", mock.Anything, "pat@example.com").Return(nil, nil)
		userRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).
			Run(func(args mock.Arguments) {
				args.Get(1).(*models.User).ID = 7
			}).Return(nil)
		app, _ := newAuthHandlerApp(userRepo)

		req := jsonRequest(t, http.MethodPost, "/auth/signup", map[string]string{
			"username": "pat",
			"email":    "pat@example.com",
			"password": "SecurePass12!@",
		})
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var body map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Contains(t, body, "token")
		assert.Contains(t, body, "user")
	})
}

func TestLogin(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("SecurePass12!@"), bcrypt.MinCost)
	require.NoError(t, err)

	t.Run("unknown email", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		userRepo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, nil)
		app, _ := newAuthHandlerApp(userRepo)

		req := jsonRequest(t, http.MethodPost, "/auth/login", map[string]string{
			"email":    "ghost@example.com",
			"password": "SecurePass12!@",
		})
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("wrong password", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		userRepo.On("GetByEmail", mock.Anything, "pat@example.com").
			Return(&models.User{ID: 7, Email: "pat@example.com", Password: string(hashed)}, nil)
		app, _ := newAuthHandlerApp(userRepo)

		req := jsonRequest(t, http.MethodPost, "/auth/login", map[string]string{
			"email":    "pat@example.com",
			"password": "WrongPass12!@",
		})
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("success returns token", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		userRepo.On("GetByEmail", mock.Anything, "pat@example.com").
			Return(&models.User{ID: 7, Username: "pat", Email: "pat@example.com", Password: string(hashed)}, nil)
		app, _ := newAuthHandlerApp(userRepo)

		req := jsonRequest(t, http.MethodPost, "/auth/login", map[string]string{
			"email":    "pat@example.com",
			"password": "SecurePass12!@",
		})
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Contains(t, body, "token")
	})
}
