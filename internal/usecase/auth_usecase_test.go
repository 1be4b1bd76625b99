package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"inventory-tracker/config"
	"inventory-tracker/internal/delivery/dto"
	"inventory-tracker/internal/repository"
	"inventory-tracker/pkg/jwt"

	"golang.org/x/crypto/bcrypt"
)

func newAuthUsecase(t *testing.T) AuthUsecase {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return NewAuthUsecase(
		newTestLogger(),
		config.AuthConfig{Username: "admin", PasswordHash: string(hash)},
		repository.NewMemorySessionRepository(),
		jwt.NewJWTService(config.JWTConfig{Secret: "secret", AccessExpiry: time.Hour}),
	)
}

func TestLoginAuthenticateLogout(t *testing.T) {
	uc := newAuthUsecase(t)
	ctx := context.Background()

	token, err := uc.Login(ctx, &dto.LoginRequest{Username: "admin", Password: "s3cret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token.AccessToken == "" || token.ExpiresIn != 3600 {
		t.Fatalf("unexpected token: %+v", token)
	}

	claims, err := uc.Authenticate(ctx, token.AccessToken)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if claims.Username != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if err := uc.Logout(ctx, claims.Username, claims.TokenID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := uc.Authenticate(ctx, token.AccessToken); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked, got %v", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	uc := newAuthUsecase(t)
	ctx := context.Background()

	for _, req := range []dto.LoginRequest{
		{Username: "admin", Password: "wrong"},
		{Username: "root", Password: "s3cret"},
	} {
		if _, err := uc.Login(ctx, &req); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials for %+v, got %v", req, err)
		}
	}
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	uc := newAuthUsecase(t)
	if _, err := uc.Authenticate(context.Background(), "not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
