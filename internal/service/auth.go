package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/templui/authd/internal/metrics"
	"github.com/templui/authd/internal/model"
	"github.com/templui/authd/internal/repository"
	"github.com/templui/authd/internal/validation"
)

var (
	ErrMissingField     = validation.ErrMissingField
	ErrPersistence      = errors.New("persistence error")
	ErrUserNotFound     = errors.New("a user with those details does not exist")
	ErrBadCredentials   = errors.New("the provided password is incorrect")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// maxCustomExpiry is the largest session lifetime, in seconds, that fits in a time.Duration.
const maxCustomExpiry = int64(math.MaxInt64 / int64(time.Second))

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
	// CustomExpiry overrides the session lifetime, in seconds. Zero keeps the default.
	CustomExpiry int64 `json:"custom_expiry"`
}

type LoginResult struct {
	UserID      string
	Username    string
	AccessToken string
	ExpiresAt   time.Time
}

type ResetPasswordInput struct {
	Token     string `json:"token"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

type AuthService struct {
	userRepository           repository.UserRepository
	hasher                   *PasswordHasher
	tokens                   *TokenCodec
	notifier                 NotificationSink
	appURL                   string
	appName                  string
	jwtExpiry                time.Duration
	tokenEmailVerifyExpiry   time.Duration
	tokenPasswordResetExpiry time.Duration
	now                      func() time.Time
}

func NewAuthService(
	userRepository repository.UserRepository,
	hasher *PasswordHasher,
	tokens *TokenCodec,
	notifier NotificationSink,
	appURL string,
	appName string,
	jwtExpiry time.Duration,
	tokenEmailVerifyExpiry time.Duration,
	tokenPasswordResetExpiry time.Duration,
) *AuthService {
	return &AuthService{
		userRepository:           userRepository,
		hasher:                   hasher,
		tokens:                   tokens,
		notifier:                 notifier,
		appURL:                   strings.TrimRight(appURL, "/"),
		appName:                  appName,
		jwtExpiry:                jwtExpiry,
		tokenEmailVerifyExpiry:   tokenEmailVerifyExpiry,
		tokenPasswordResetExpiry: tokenPasswordResetExpiry,
		now:                      time.Now,
	}
}

// Register creates an unverified user and sends the verification email.
// A failed send is logged; the user stays created.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (user *model.User, err error) {
	defer func() { metrics.RecordFlow(metrics.FlowRegister, err) }()

	err = validation.Required(&in, &in.Username, &in.Email, &in.Password)
	if err != nil {
		return nil, err
	}

	passwordHash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user = &model.User{
		ID:            uuid.New().String(),
		Username:      in.Username,
		Email:         in.Email,
		PasswordHash:  passwordHash,
		EmailVerified: false,
		CreatedAt:     s.now().UTC(),
	}

	err = s.userRepository.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.Username)

	s.sendVerificationEmail(ctx, user)

	return user, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (result *LoginResult, err error) {
	defer func() { metrics.RecordFlow(metrics.FlowLogin, err) }()

	err = validation.Required(&in, &in.Identifier, &in.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.lookup(ctx, in.Identifier)
	if err != nil {
		return nil, err
	}

	if !user.HasPassword() || !s.hasher.Verify(in.Password, user.PasswordHash) {
		slog.Info("login rejected", "reason", "bad credentials", "user_id", user.ID)
		return nil, ErrBadCredentials
	}

	lifetime := s.jwtExpiry
	if in.CustomExpiry > 0 {
		lifetime = time.Duration(min(in.CustomExpiry, maxCustomExpiry)) * time.Second
	}

	expiresAt := s.now().Add(lifetime)
	accessToken, err := s.tokens.Encode(model.TokenClaims{
		Type:      model.TokenTypeAccess,
		UserID:    user.ID,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("user logged in", "user_id", user.ID)

	return &LoginResult{
		UserID:      user.ID,
		Username:    user.Username,
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
	}, nil
}

// Authenticate resolves an access token to its user id without touching the store.
func (s *AuthService) Authenticate(accessToken string) (string, error) {
	claims, err := s.tokens.DecodeAs(accessToken, model.TokenTypeAccess)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepository.ByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return user, nil
}

// VerifyEmail marks the token's user as verified. Replaying an unexpired
// token is harmless.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (user *model.User, err error) {
	defer func() { metrics.RecordFlow(metrics.FlowVerifyEmail, err) }()

	claims, err := s.tokens.DecodeAs(token, model.TokenTypeVerifyEmail)
	if err != nil {
		return nil, err
	}

	user, err = s.userByToken(ctx, claims)
	if err != nil {
		return nil, err
	}

	if user.EmailVerified {
		slog.Debug("email already verified", "user_id", user.ID)
		return user, nil
	}

	user.EmailVerified = true
	err = s.userRepository.Update(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	slog.Info("email verified", "user_id", user.ID)
	return user, nil
}

// RequestPasswordReset sends a reset link to the user matching identifier.
// Unknown identifiers are reported as ErrUserNotFound.
func (s *AuthService) RequestPasswordReset(ctx context.Context, identifier string) (err error) {
	defer func() { metrics.RecordFlow(metrics.FlowResetRequest, err) }()

	if identifier == "" {
		return &validation.MissingFieldError{Fields: []string{"identifier"}}
	}

	user, err := s.lookup(ctx, identifier)
	if err != nil {
		return err
	}

	s.sendPasswordResetEmail(ctx, user)
	return nil
}

// ResetPassword sets a new password for the token's user. Reset tokens are
// not single-use and already issued access tokens remain valid.
func (s *AuthService) ResetPassword(ctx context.Context, in ResetPasswordInput) (err error) {
	defer func() { metrics.RecordFlow(metrics.FlowResetPassword, err) }()

	if in.Password != in.Password2 {
		return ErrPasswordMismatch
	}

	err = validation.Required(&in, &in.Password)
	if err != nil {
		return err
	}

	claims, err := s.tokens.DecodeAs(in.Token, model.TokenTypeResetPassword)
	if err != nil {
		return err
	}

	user, err := s.userByToken(ctx, claims)
	if err != nil {
		return err
	}

	passwordHash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return err
	}

	user.PasswordHash = passwordHash
	err = s.userRepository.Update(ctx, user)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	slog.Info("password reset", "user_id", user.ID)
	return nil
}

func (s *AuthService) lookup(ctx context.Context, identifier string) (*model.User, error) {
	user, err := s.userRepository.ByIdentifier(ctx, identifier)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return user, nil
}

// userByToken loads the token's subject. A vanished user makes the token invalid.
func (s *AuthService) userByToken(ctx context.Context, claims *model.TokenClaims) (*model.User, error) {
	user, err := s.userRepository.ByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		slog.Debug("token rejected", "reason", "user not found", "user_id", claims.UserID)
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return user, nil
}

func (s *AuthService) issueToken(tokenType, userID string, lifetime time.Duration) (string, error) {
	return s.tokens.Encode(model.TokenClaims{
		Type:      tokenType,
		UserID:    userID,
		ExpiresAt: s.now().Add(lifetime),
	})
}

func (s *AuthService) sendVerificationEmail(ctx context.Context, user *model.User) {
	token, err := s.issueToken(model.TokenTypeVerifyEmail, user.ID, s.tokenEmailVerifyExpiry)
	if err != nil {
		slog.Error("failed to issue verification token", "error", err, "user_id", user.ID)
		return
	}

	verifyURL := fmt.Sprintf("%s/auth/verify-email/%s", s.appURL, token)
	email, err := verifyEmailTemplate(user.Email, user.Username, verifyURL, s.appName, s.tokenEmailVerifyExpiry)
	if err == nil {
		err = s.notifier.Send(ctx, email)
	}
	metrics.RecordEmail(model.TokenTypeVerifyEmail, err)
	if err != nil {
		slog.Warn("failed to send verification email", "error", err, "user_id", user.ID)
	}
}

func (s *AuthService) sendPasswordResetEmail(ctx context.Context, user *model.User) {
	token, err := s.issueToken(model.TokenTypeResetPassword, user.ID, s.tokenPasswordResetExpiry)
	if err != nil {
		slog.Error("failed to issue password reset token", "error", err, "user_id", user.ID)
		return
	}

	resetURL := fmt.Sprintf("%s/auth/reset-password/%s", s.appURL, token)
	email, err := resetPasswordEmailTemplate(user.Email, user.Username, resetURL, s.appName, s.tokenPasswordResetExpiry)
	if err == nil {
		err = s.notifier.Send(ctx, email)
	}
	metrics.RecordEmail(model.TokenTypeResetPassword, err)
	if err != nil {
		slog.Warn("failed to send password reset email", "error", err, "user_id", user.ID)
	}
}
