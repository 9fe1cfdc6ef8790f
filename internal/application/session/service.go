package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-insurance-api/internal/domain"
	"github.com/go-insurance-api/internal/infrastructure/google"
	"github.com/go-insurance-api/internal/pkg/id"
	"github.com/go-insurance-api/internal/pkg/token"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	// Username also accepts the account email.
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LoginResult bundles what the transport layer needs to answer a login.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	Session      *domain.Session
	User         *domain.User
}

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	LoginWithGoogle(ctx context.Context, req GoogleLoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error)
	Refresh(ctx context.Context, req RefreshRequest) (*LoginResult, error)
}

type userStore interface {
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type sessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Update(ctx context.Context, sessionID string, updates map[string]interface{}) error
	GetByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error)
	RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiry int64) error
}

type tokenSigner interface {
	Sign(userID, role, sessionID string) (string, error)
}

type googleVerifier interface {
	Verify(ctx context.Context, idToken string) (*google.Payload, error)
}

type service struct {
	userRepo       userStore
	sessionRepo    sessionStore
	signer         tokenSigner
	googleVerifier googleVerifier
	refreshExpiry  time.Duration
}

type ServiceDeps struct {
	UserRepo       userStore
	SessionRepo    sessionStore
	Signer         tokenSigner
	GoogleVerifier googleVerifier
	RefreshExpiry  time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		userRepo:       deps.UserRepo,
		sessionRepo:    deps.SessionRepo,
		signer:         deps.Signer,
		googleVerifier: deps.GoogleVerifier,
		refreshExpiry:  deps.RefreshExpiry,
	}
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	u, err := s.userRepo.GetByUsername(ctx, req.Username)
	if errors.Is(err, domain.ErrNotFound) {
		u, err = s.userRepo.GetByEmail(ctx, req.Username)
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	if !u.Enable {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	return s.openSession(ctx, u)
}

// LoginWithGoogle verifies the Google ID token and signs the user in,
// creating a consumer account on first sight of a verified address.
func (s *service) LoginWithGoogle(ctx context.Context, req GoogleLoginRequest) (*LoginResult, error) {
	payload, err := s.googleVerifier.Verify(ctx, req.IDToken)
	if err != nil {
		return nil, err
	}
	if !payload.EmailVerified {
		return nil, fmt.Errorf("google account email not verified: %w", domain.ErrUnauthorized)
	}

	u, err := s.userRepo.GetByEmail(ctx, payload.Email)
	if errors.Is(err, domain.ErrNotFound) {
		now := time.Now()
		u = &domain.User{
			UserID:       id.New(),
			Username:     payload.Email,
			Email:        payload.Email,
			Role:         domain.RoleConsumer,
			FirstName:    payload.FirstName,
			LastName:     payload.LastName,
			AuthProvider: "google",
			GoogleSub:    payload.Sub,
			Enable:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.userRepo.Put(ctx, u); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}
	if !u.Enable {
		return nil, fmt.Errorf("account disabled: %w", domain.ErrUnauthorized)
	}
	return s.openSession(ctx, u)
}

func (s *service) openSession(ctx context.Context, u *domain.User) (*LoginResult, error) {
	refresh, err := token.NewRefreshToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sess := &domain.Session{
		SessionID:        id.New(),
		UserID:           u.UserID,
		Enable:           true,
		RefreshToken:     refresh,
		RefreshExpiresAt: now.Add(s.refreshExpiry).Unix(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.sessionRepo.Put(ctx, sess); err != nil {
		return nil, err
	}

	access, err := s.signer.Sign(u.UserID, u.Role, sess.SessionID)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	sess.User = u
	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		Session:      sess,
		User:         u,
	}, nil
}

func (s *service) Logout(ctx context.Context, sessionID string) error {
	if _, err := s.sessionRepo.Get(ctx, sessionID); err != nil {
		return err
	}
	return s.sessionRepo.Update(ctx, sessionID, map[string]interface{}{
		"enable":     false,
		"updated_at": time.Now().Format(time.RFC3339Nano),
	})
}

func (s *service) GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Enable {
		return nil, fmt.Errorf("session closed: %w", domain.ErrUnauthorized)
	}
	u, err := s.userRepo.Get(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	sess.User = u
	return sess, nil
}

// Refresh rotates the refresh token: the presented token is invalidated and a
// new one issued, so a stolen token is single-use at most.
func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*LoginResult, error) {
	sess, err := s.sessionRepo.GetByRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("unknown refresh token: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	if !sess.Enable {
		return nil, fmt.Errorf("session closed: %w", domain.ErrUnauthorized)
	}
	if time.Now().Unix() > sess.RefreshExpiresAt {
		return nil, fmt.Errorf("refresh token expired: %w", domain.ErrUnauthorized)
	}

	u, err := s.userRepo.Get(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if !u.Enable {
		return nil, fmt.Errorf("account disabled: %w", domain.ErrUnauthorized)
	}

	newRefresh, err := token.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	newExpiry := time.Now().Add(s.refreshExpiry).Unix()
	if err := s.sessionRepo.RotateRefreshToken(ctx, sess.SessionID, newRefresh, newExpiry); err != nil {
		return nil, err
	}

	access, err := s.signer.Sign(u.UserID, u.Role, sess.SessionID)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	sess.RefreshToken = newRefresh
	sess.RefreshExpiresAt = newExpiry
	sess.User = u
	return &LoginResult{
		AccessToken:  access,
		RefreshToken: newRefresh,
		Session:      sess,
		User:         u,
	}, nil
}
