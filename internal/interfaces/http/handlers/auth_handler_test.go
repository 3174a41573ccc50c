package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"heirloom.backend/internal/domain/entities"
	domainerrors "heirloom.backend/internal/domain/errors"
)

type authServiceStub struct {
	registerFn func(ctx context.Context, input *entities.CreateUserInput) (*entities.User, error)
	loginFn    func(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error)
	refreshFn  func(ctx context.Context, token string) (*entities.AuthResponse, error)
	getFn      func(ctx context.Context, id uuid.UUID) (*entities.User, error)
}

func (s *authServiceStub) Register(ctx context.Context, input *entities.CreateUserInput) (*entities.User, error) {
	return s.registerFn(ctx, input)
}
func (s *authServiceStub) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
	return s.loginFn(ctx, input)
}
func (s *authServiceStub) RefreshToken(ctx context.Context, token string) (*entities.AuthResponse, error) {
	return s.refreshFn(ctx, token)
}
func (s *authServiceStub) GetUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	return s.getFn(ctx, id)
}

func TestAuthHandler_Register(t *testing.T) {
	stub := &authServiceStub{
		registerFn: func(_ context.Context, input *entities.CreateUserInput) (*entities.User, error) {
			if input.Email == "taken@heirloom.test" {
				return nil, domainerrors.ErrAlreadyExists
			}
			return &entities.User{ID: uuid.New(), Email: input.Email, Name: input.Name}, nil
		},
	}
	h := NewAuthHandler(stub)
	r := newTestRouter()
	r.POST("/register", h.Register)

	w := doJSON(t, r, http.MethodPost, "/register", map[string]string{
		"email": "alice@heirloom.test", "name": "Alice", "password": "supersecret",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "alice@heirloom.test")
	assert.NotContains(t, w.Body.String(), "supersecret")

	w = doJSON(t, r, http.MethodPost, "/register", map[string]string{
		"email": "taken@heirloom.test", "name": "Bob", "password": "supersecret",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodPost, "/register", map[string]string{
		"email": "not-an-email", "name": "Bob", "password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, domainerrors.CodeInvalidInput, decodeBody(t, w)["code"])
}

func TestAuthHandler_LoginAndRefresh(t *testing.T) {
	stub := &authServiceStub{
		loginFn: func(_ context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
			if input.Password != "right-password" {
				return nil, domainerrors.ErrInvalidCredentials
			}
			return &entities.AuthResponse{AccessToken: "a", RefreshToken: "r"}, nil
		},
		refreshFn: func(_ context.Context, token string) (*entities.AuthResponse, error) {
			if token != "r" {
				return nil, domainerrors.ErrTokenExpired
			}
			return &entities.AuthResponse{AccessToken: "a2", RefreshToken: "r2"}, nil
		},
	}
	h := NewAuthHandler(stub)
	r := newTestRouter()
	r.POST("/login", h.Login)
	r.POST("/refresh", h.RefreshToken)

	w := doJSON(t, r, http.MethodPost, "/login", map[string]string{"email": "a@heirloom.test", "password": "right-password"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a", decodeBody(t, w)["accessToken"])

	w = doJSON(t, r, http.MethodPost, "/login", map[string]string{"email": "a@heirloom.test", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, domainerrors.CodeInvalidCredentials, decodeBody(t, w)["code"])

	w = doJSON(t, r, http.MethodPost, "/refresh", map[string]string{"refreshToken": "r"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "r2", decodeBody(t, w)["refreshToken"])

	w = doJSON(t, r, http.MethodPost, "/refresh", map[string]string{"refreshToken": "stale"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/refresh", "{}")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Me(t *testing.T) {
	userID := uuid.New()
	stub := &authServiceStub{
		getFn: func(_ context.Context, id uuid.UUID) (*entities.User, error) {
			return &entities.User{ID: id, Email: "me@heirloom.test"}, nil
		},
	}
	h := NewAuthHandler(stub)

	r := newTestRouter(withUser(userID, "me@heirloom.test", "USER"))
	r.GET("/me", h.Me)
	w := doJSON(t, r, http.MethodGet, "/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())

	anon := newTestRouter()
	anon.GET("/me", h.Me)
	w = doJSON(t, anon, http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
