package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/e4rthen/storefront-backend/internal/app/model"
	"github.com/e4rthen/storefront-backend/internal/app/repository"
	"github.com/e4rthen/storefront-backend/internal/auth"
	apperrors "github.com/e4rthen/storefront-backend/internal/errors"
	"github.com/e4rthen/storefront-backend/pkg/logger"
	"github.com/e4rthen/storefront-backend/pkg/util"
	"gorm.io/gorm"
)

// TokenRevoker stores revoked refresh token ids. A nil revoker disables
// revocation.
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*model.User, error)
	Login(ctx context.Context, credential, password string) (*model.User, *util.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, refreshToken string) error
	GetMe(ctx context.Context, identity auth.Identity) (*model.User, error)
}

type authService struct {
	db            *gorm.DB
	userRepo      repository.UserRepository
	cartRepo      repository.CartRepository
	revoker       TokenRevoker
	jwtSecret     string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewAuthService(
	database *gorm.DB,
	userRepo repository.UserRepository,
	cartRepo repository.CartRepository,
	revoker TokenRevoker,
	jwtSecret string,
	accessExpiry, refreshExpiry time.Duration,
) AuthService {
	return &authService{
		db:            database,
		userRepo:      userRepo,
		cartRepo:      cartRepo,
		revoker:       revoker,
		jwtSecret:     jwtSecret,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

// Register creates the user together with an empty cart.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)

	logger.Info("Attempting user registration", map[string]interface{}{
		"username": username,
	})

	if username == "" || !validEmail(email) || len([]rune(input.Password)) < util.MinPasswordLength {
		return nil, ErrInvalidRegistration
	}

	if exists, err := s.userRepo.ExistsByUsername(ctx, username); err != nil {
		return nil, apperrors.Internal("check username", err)
	} else if exists {
		logger.Warn("Registration failed: username already exists", map[string]interface{}{
			"username": username,
		})
		return nil, ErrUsernameExists
	}
	if exists, err := s.userRepo.ExistsByEmail(ctx, email); err != nil {
		return nil, apperrors.Internal("check email", err)
	} else if exists {
		logger.Warn("Registration failed: email already exists", map[string]interface{}{
			"username": username,
		})
		return nil, ErrEmailExists
	}

	hashedPassword, err := util.HashPassword(input.Password)
	if err != nil {
		return nil, apperrors.Internal("hash password", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         model.RoleUser,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}
		return s.cartRepo.WithTx(tx).Create(ctx, &model.Cart{UserID: user.ID})
	})
	if err != nil {
		// a concurrent registration can still hit the unique index
		return nil, apperrors.ParseError(err, "user")
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id":  user.ID,
		"username": user.Username,
	})
	return user, nil
}

// Login accepts a username or an email as credential. An email must map to
// exactly one account.
func (s *authService) Login(ctx context.Context, credential, password string) (*model.User, *util.TokenPair, error) {
	credential = strings.TrimSpace(credential)
	logger.Info("Login attempt", map[string]interface{}{
		"credential": credential,
	})

	username := credential
	if strings.Contains(credential, "@") {
		users, err := s.userRepo.FindAllByEmail(ctx, credential)
		if err != nil {
			return nil, nil, apperrors.Internal("find users by email", err)
		}
		switch len(users) {
		case 0:
			logger.Warn("Login failed: no account for email")
			return nil, nil, ErrInvalidCredentials
		case 1:
			username = users[0].Username
		default:
			logger.Error("Login failed: email shared by several accounts", ErrAmbiguousEmail, map[string]interface{}{
				"accounts": len(users),
			})
			return nil, nil, ErrAmbiguousEmail
		}
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Warn("Login failed: user not found", map[string]interface{}{
			"username": username,
		})
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, apperrors.Internal("find user", err)
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := util.GenerateTokenPair(user.ID, user.Username, user.Email, s.jwtSecret, s.accessExpiry, s.refreshExpiry)
	if err != nil {
		return nil, nil, apperrors.Internal("generate tokens", err)
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
	})
	return user, tokens, nil
}

// Refresh issues a new access token for a valid, unrevoked refresh token.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.parseRefreshToken(refreshToken)
	if err != nil {
		return "", err
	}

	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return "", apperrors.Internal("check token revocation", err)
		}
		if revoked {
			logger.Warn("Refresh rejected: token revoked", map[string]interface{}{
				"user_id": claims.UserID,
			})
			return "", ErrTokenRevoked
		}
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrTokenInvalid
	}
	if err != nil {
		return "", apperrors.Internal("find user", err)
	}

	access, err := util.GenerateAccessToken(user.ID, user.Username, user.Email, s.jwtSecret, s.accessExpiry)
	if err != nil {
		return "", apperrors.Internal("generate access token", err)
	}
	return access, nil
}

// Logout revokes the refresh token until it expires. Expired tokens need no
// revocation.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.parseRefreshToken(refreshToken)
	if errors.Is(err, ErrTokenExpired) {
		return nil
	}
	if err != nil {
		return err
	}

	if s.revoker == nil {
		logger.Debug("Token revocation disabled, logout is a no-op")
		return nil
	}

	if err := s.revoker.Revoke(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
		return apperrors.Internal("revoke token", err)
	}

	logger.Info("User logged out", map[string]interface{}{
		"user_id": claims.UserID,
	})
	return nil
}

func (s *authService) GetMe(ctx context.Context, identity auth.Identity) (*model.User, error) {
	if !identity.Authenticated() {
		return nil, ErrUnauthenticated
	}
	user, err := s.userRepo.FindByID(ctx, identity.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, apperrors.Internal("find user", err)
	}
	return user, nil
}

func (s *authService) parseRefreshToken(token string) (*util.Claims, error) {
	claims, err := util.ValidateToken(token, s.jwtSecret)
	if errors.Is(err, util.ErrExpiredToken) {
		return nil, ErrTokenExpired
	}
	if err != nil {
		return nil, ErrTokenInvalid
	}
	if claims.TokenType != util.TokenTypeRefresh {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
