package services

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/chunkrecall/trainer/internal/auth"
	"github.com/chunkrecall/trainer/internal/errors"
	"github.com/chunkrecall/trainer/internal/logger"
	"github.com/chunkrecall/trainer/internal/models"
	"github.com/chunkrecall/trainer/internal/repository"
)

// DefaultSessionTTL is how long a login lasts without a configured value.
const DefaultSessionTTL = 30 * 24 * time.Hour

// IdentityProvider checks email and password credentials.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (auth.Identity, error)
}

// AuthService handles login sessions
type AuthService interface {
	Login(ctx context.Context, email, password string) (*models.Session, *models.User, error)
	Session(ctx context.Context, token string) (*models.Session, *models.User, error)
	Logout(ctx context.Context, token string) error
	SetAPIKey(ctx context.Context, token, apiKey string) error
	SweepExpired(ctx context.Context) (int, error)
}

type authService struct {
	provider    IdentityProvider
	allowList   auth.AllowList
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	ttl         time.Duration
	clock       Clock
}

// NewAuthService creates a new AuthService
func NewAuthService(
	provider IdentityProvider,
	allowList auth.AllowList,
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	ttl time.Duration,
	clock Clock,
) AuthService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &authService{
		provider:    provider,
		allowList:   allowList,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		ttl:         ttl,
		clock:       clock,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.Session, *models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("auth_service")

	email = strings.TrimSpace(email)
	if email == "" {
		return nil, nil, errors.NewValidationError("email", "cannot be empty")
	}
	if password == "" {
		return nil, nil, errors.NewValidationError("password", "cannot be empty")
	}

	identity, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		switch {
		case stderrors.Is(err, auth.ErrInvalidCredentials):
			return nil, nil, errors.NewUnauthorizedError("invalid email or password").Wrap(err)
		case stderrors.Is(err, auth.ErrUserDisabled):
			return nil, nil, errors.NewForbiddenError("this account has been disabled").Wrap(err)
		case stderrors.Is(err, auth.ErrTooManyAttempts):
			return nil, nil, errors.NewUnauthorizedError("too many attempts, try again later").Wrap(err)
		}
		log.Error("sign-in failed: %v", err)
		return nil, nil, errors.NewUnavailableError("authentication", err)
	}
	if identity.Email == "" {
		identity.Email = email
	}

	if !s.allowList.Allowed(identity.Email) {
		log.Warn("user %s is not on the allow list", identity.Email)
		return nil, nil, errors.NewForbiddenError("your email is not authorized for this application")
	}

	user, err := s.userRepo.Upsert(ctx, identity.UID, identity.Email, identity.DisplayName)
	if err != nil {
		log.Error("failed to upsert user: %v", err)
		return nil, nil, errors.NewInternalError(err)
	}

	now := s.clock.now()
	if err := s.userRepo.TouchLogin(ctx, user.ID, now); err != nil {
		log.Warn("failed to record login time: %v", err)
	}

	session := models.Session{
		Token:     auth.NewSessionToken(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		log.Error("failed to create session: %v", err)
		return nil, nil, errors.NewInternalError(err)
	}
	log.Info("user %s signed in", user.Email)
	return &session, user, nil
}

func (s *authService) Session(ctx context.Context, token string) (*models.Session, *models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("auth_service")

	if !auth.ValidSessionToken(token) {
		return nil, nil, errors.NewUnauthorizedError("not signed in")
	}
	session, err := s.sessionRepo.Get(ctx, token)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, nil, errors.NewUnauthorizedError("not signed in")
		}
		log.Error("failed to load session: %v", err)
		return nil, nil, errors.NewInternalError(err)
	}
	if session.Expired(s.clock.now()) {
		if err := s.sessionRepo.Delete(ctx, token); err != nil {
			log.Warn("failed to delete expired session: %v", err)
		}
		return nil, nil, errors.NewUnauthorizedError("session expired")
	}

	user, err := s.userRepo.Get(ctx, session.UserID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, nil, errors.NewUnauthorizedError("not signed in")
		}
		log.Error("failed to load session user: %v", err)
		return nil, nil, errors.NewInternalError(err)
	}
	return session, user, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	log := logger.FromContext(ctx).WithPrefix("auth_service")
	if token == "" {
		return nil
	}
	if err := s.sessionRepo.Delete(ctx, token); err != nil && !stderrors.Is(err, repository.ErrNotFound) {
		log.Error("failed to delete session: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

// SetAPIKey stores the learner's own OpenAI key on the session. An empty key
// falls back to the server's key.
func (s *authService) SetAPIKey(ctx context.Context, token, apiKey string) error {
	log := logger.FromContext(ctx).WithPrefix("auth_service")

	if err := s.sessionRepo.SetAPIKey(ctx, token, strings.TrimSpace(apiKey)); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return errors.NewUnauthorizedError("not signed in")
		}
		log.Error("failed to store api key: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

func (s *authService) SweepExpired(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("auth_service")

	n, err := s.sessionRepo.DeleteExpired(ctx, s.clock.now())
	if err != nil {
		log.Error("failed to delete expired sessions: %v", err)
		return 0, errors.NewInternalError(err)
	}
	if n > 0 {
		log.Info("deleted %d expired sessions", n)
	}
	return n, nil
}
