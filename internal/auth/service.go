package auth

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strconv"
	"time"

	errors "github.com/frahmantamala/fintrack/internal"
)

type UserRepository interface {
	GetCredentialsByEmail(ctx context.Context, email string) (*Credentials, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, name, email, passwordHash string) (*User, error)
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}

// LoginHook runs after a successful login; the recurring service implements it
// to catch up on obligations that came due while the user was away.
type LoginHook interface {
	ProcessForUser(ctx context.Context, userID int64, now time.Time) error
}

type ServiceAPI interface {
	SignUp(ctx context.Context, dto SignUpDTO) (*AuthTokens, error)
	Login(ctx context.Context, dto LoginDTO) (*AuthTokens, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	GetUser(ctx context.Context, id int64) (*User, error)
}

// Service is the main auth service with dependencies
type Service struct {
	userRepo       UserRepository
	tokenGenerator TokenGenerator
	bcryptCost     int
	loginHook      LoginHook
	logger         *slog.Logger
}

// NewService creates a new auth service
func NewService(userRepo UserRepository, tokenGen TokenGenerator, bcryptCost int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		userRepo:       userRepo,
		tokenGenerator: tokenGen,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

// SetLoginHook installs the hook when enabled is true and clears it otherwise.
func (s *Service) SetLoginHook(hook LoginHook, enabled bool) {
	if !enabled {
		s.loginHook = nil
		return
	}
	s.loginHook = hook
}

func (s *Service) SignUp(ctx context.Context, dto SignUpDTO) (*AuthTokens, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.EmailExists(ctx, dto.Email)
	if err != nil {
		return nil, errors.NewInternalError("failed to check email", err)
	}
	if exists {
		return nil, errors.ErrEmailTaken
	}

	hash, err := HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, errors.NewInternalError("failed to hash password", err)
	}

	user, err := s.userRepo.Create(ctx, dto.Name, dto.Email, hash)
	if err != nil {
		if stderrors.Is(err, errors.ErrEmailTaken) {
			return nil, errors.ErrEmailTaken
		}
		return nil, errors.NewInternalError("failed to create user", err)
	}

	s.logger.Info("user signed up", "user_id", user.ID, "email", user.Email)
	return s.issue(user)
}

// Login validates credentials and returns tokens
func (s *Service) Login(ctx context.Context, dto LoginDTO) (*AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	creds, err := s.userRepo.GetCredentialsByEmail(ctx, dto.Email)
	if err != nil || creds == nil {
		return nil, ErrInvalidCredentials
	}

	if err := VerifyPassword(creds.PasswordHash, dto.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !creds.IsActive {
		return nil, ErrUserInactive
	}

	now := time.Now()
	if err := s.userRepo.TouchLastLogin(ctx, creds.ID, now); err != nil {
		s.logger.Warn("failed to update last login", "user_id", creds.ID, "error", err)
	}

	if s.loginHook != nil {
		if err := s.loginHook.ProcessForUser(ctx, creds.ID, now); err != nil {
			s.logger.Error("login hook failed", "user_id", creds.ID, "error", err)
		}
	}

	user := creds.User
	return s.issue(&user)
}

// RefreshTokens validates refresh token and returns new tokens
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (*AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	id, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return s.issue(user)
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateToken(tokenString)
}

func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, errors.ErrUserNotFound) {
			return nil, err
		}
		return nil, errors.NewInternalError("failed to load user", err)
	}
	return user, nil
}

func (s *Service) issue(user *User) (*AuthTokens, error) {
	uid := strconv.FormatInt(user.ID, 10)

	accessToken, err := s.tokenGenerator.GenerateAccessToken(uid, user.Email, user.Role)
	if err != nil {
		return nil, errors.NewInternalError("failed to generate access token", err)
	}

	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(uid, user.Email, user.Role)
	if err != nil {
		return nil, errors.NewInternalError("failed to generate refresh token", err)
	}

	return &AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.tokenGenerator.AccessTTL().Seconds()),
		User:         user,
	}, nil
}
