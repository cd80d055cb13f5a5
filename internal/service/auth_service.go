package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"qr-attendance/backend/config"
	"qr-attendance/backend/internal/dto"
	"qr-attendance/backend/internal/model"
	"qr-attendance/backend/internal/repository"
	"qr-attendance/backend/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrPasswordTooShort   = errors.New("new password must be at least 6 characters")
)

const minPasswordLength = 6

// TokenBlacklist revokes tokens before they expire.
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// AuthService authentication business interface.
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	Profile(ctx context.Context, userID string) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error
	HashPassword(password string) (*dto.HashPasswordResponse, error)
	EnsureBootstrapAdmin(ctx context.Context) error
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService creates an AuthService. blacklist may be nil, in which case
// logout only ends the session client-side.
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. load the account
	user, err := s.repo.User.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("lookup user failed", zap.Error(err))
		return nil, err
	}

	// 2. verify the password (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 3. issue the token
	token, err := s.jwtMgr.GenerateToken(user.ID, user.Username, user.Name, user.Role)
	if err != nil {
		s.logger.Error("generate token failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("user logged in", zap.String("username", user.Username), zap.String("role", user.Role))

	return &dto.TokenResponse{
		Token:     token,
		ExpiresIn: int(s.jwtMgr.TTL().Seconds()),
		User:      toUserResponse(user),
	}, nil
}

// ────────────────────── Logout ──────────────────────

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.blacklist == nil || jti == "" {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, jti, time.Until(expiresAt)); err != nil {
		s.logger.Error("blacklist token failed", zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Profile ──────────────────────

func (s *authService) Profile(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("get user failed", zap.String("id", userID), zap.Error(err))
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// ────────────────────── ChangePassword ──────────────────────

func (s *authService) ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error {
	if len(req.NewPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}

	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("get user failed", zap.String("id", userID), zap.Error(err))
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return err
	}

	if err := s.repo.User.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		s.logger.Error("update password failed", zap.String("id", userID), zap.Error(err))
		return err
	}

	s.logger.Info("password changed", zap.String("username", user.Username))
	return nil
}

// ────────────────────── HashPassword ──────────────────────

func (s *authService) HashPassword(password string) (*dto.HashPasswordResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &dto.HashPasswordResponse{HashedPassword: string(hash)}, nil
}

// ────────────────────── EnsureBootstrapAdmin ──────────────────────

// EnsureBootstrapAdmin creates the configured admin when no account exists.
// Without a configured password nothing is created.
func (s *authService) EnsureBootstrapAdmin(ctx context.Context) error {
	bs := s.cfg.Auth.Bootstrap
	if bs.Username == "" || bs.Password == "" {
		return nil
	}

	n, err := s.repo.User.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(bs.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	name := bs.Name
	if name == "" {
		name = bs.Username
	}
	admin := &model.User{
		Username:     bs.Username,
		Name:         name,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
	}
	if err := s.repo.User.Create(ctx, admin); err != nil {
		return err
	}

	s.logger.Info("bootstrap admin created", zap.String("username", admin.Username))
	return nil
}

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Role:     u.Role,
	}
}
