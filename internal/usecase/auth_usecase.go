package usecase

import (
	"context"
	"crypto/subtle"
	"errors"

	"inventory-tracker/config"
	"inventory-tracker/internal/delivery/dto"
	"inventory-tracker/internal/domain/repository"
	"inventory-tracker/pkg/jwt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token has been revoked")
)

type AuthUsecase interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, username, tokenID string) error
	// Authenticate checks the signature and expiry of an access token and that its session is still live.
	Authenticate(ctx context.Context, token string) (*jwt.Claims, error)
}

type authUsecase struct {
	log         *logrus.Logger
	credentials config.AuthConfig
	sessionRepo repository.SessionRepository
	jwtService  *jwt.JWTService
}

func NewAuthUsecase(
	log *logrus.Logger,
	credentials config.AuthConfig,
	sessionRepo repository.SessionRepository,
	jwtService *jwt.JWTService,
) AuthUsecase {
	return &authUsecase{
		log:         log,
		credentials: credentials,
		sessionRepo: sessionRepo,
		jwtService:  jwtService,
	}
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// Verify password first so a wrong username costs the same as a wrong password
	passwordErr := bcrypt.CompareHashAndPassword([]byte(u.credentials.PasswordHash), []byte(req.Password))
	usernameOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(u.credentials.Username)) == 1
	if passwordErr != nil || !usernameOK {
		return nil, ErrInvalidCredentials
	}

	accessToken, tokenID, err := u.jwtService.GenerateAccessToken(req.Username)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	if err := u.sessionRepo.Save(ctx, req.Username, tokenID, u.jwtService.GetAccessExpiry()); err != nil {
		u.log.Warnf("Failed to store session: %+v", err)
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(u.jwtService.GetAccessExpiry().Seconds()),
	}, nil
}

func (u *authUsecase) Logout(ctx context.Context, username, tokenID string) error {
	if err := u.sessionRepo.Delete(ctx, username, tokenID); err != nil {
		u.log.Warnf("Failed to delete session: %+v", err)
		return err
	}
	return nil
}

func (u *authUsecase) Authenticate(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := u.jwtService.ValidateToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	exists, err := u.sessionRepo.Exists(ctx, claims.Username, claims.TokenID)
	if err != nil {
		u.log.Warnf("Failed to check session: %+v", err)
		return nil, err
	}
	if !exists {
		return nil, ErrTokenRevoked
	}

	return claims, nil
}
