package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/roster/internal/app/models/dto"
	"github.com/yigit/roster/internal/app/repositories"
	"github.com/yigit/roster/internal/pkg/apperrors"
	"github.com/yigit/roster/internal/pkg/auth"
)

// AuthService handles authentication operations
type AuthService struct {
	accountRepo repositories.IAccountRepository
	jwtService  *auth.JWTService
	logger      zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(accountRepo repositories.IAccountRepository, jwtService *auth.JWTService, logger zerolog.Logger) *AuthService {
	return &AuthService{
		accountRepo: accountRepo,
		jwtService:  jwtService,
		logger:      logger,
	}
}

// Login verifies the credentials and issues an access token.
// Unknown usernames and wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	if req == nil || strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return nil, apperrors.NewValidationError("Username and password are required")
	}

	account, err := s.accountRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			s.logger.Debug().Str("username", req.Username).Msg("Login attempt for unknown account")
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(account.PasswordHash, req.Password) {
		s.logger.Debug().Str("username", req.Username).Msg("Login attempt with wrong password")
		return nil, apperrors.ErrInvalidCredentials
	}

	token, expiresIn, err := s.jwtService.GenerateToken(account)
	if err != nil {
		s.logger.Error().Err(err).Str("accountID", account.ID).Msg("Failed to sign access token")
		return nil, err
	}

	s.logger.Info().Str("accountID", account.ID).Msg("Account logged in")
	return &dto.TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: expiresIn,
	}, nil
}
