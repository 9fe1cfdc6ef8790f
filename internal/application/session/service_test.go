package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-insurance-api/internal/domain"
	"github.com/go-insurance-api/internal/infrastructure/google"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Put(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSessionStore struct{ mock.Mock }

func (m *mockSessionStore) Put(ctx context.Context, s *domain.Session) error {
	return m.Called(ctx, s).Error(0)
}
func (m *mockSessionStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	args := m.Called(ctx, sessionID)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSessionStore) Update(ctx context.Context, sessionID string, updates map[string]interface{}) error {
	return m.Called(ctx, sessionID, updates).Error(0)
}
func (m *mockSessionStore) GetByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error) {
	args := m.Called(ctx, refreshToken)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSessionStore) RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiry int64) error {
	return m.Called(ctx, sessionID, newToken, newExpiry).Error(0)
}

type mockSigner struct{ mock.Mock }

func (m *mockSigner) Sign(userID, role, sessionID string) (string, error) {
	args := m.Called(userID, role, sessionID)
	return args.String(0), args.Error(1)
}

type mockGoogleVerifier struct{ mock.Mock }

func (m *mockGoogleVerifier) Verify(ctx context.Context, idToken string) (*google.Payload, error) {
	args := m.Called(ctx, idToken)
	if p, _ := args.Get(0).(*google.Payload); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func activeUser(t *testing.T) *domain.User {
	return &domain.User{
		UserID:       "u1",
		Username:     "jdoe",
		Email:        "jdoe@example.com",
		PasswordHash: hashOf(t, "hunter2hunter2"),
		Role:         domain.RoleConsumer,
		Enable:       true,
	}
}

func newTestService(users *mockUserStore, sessions *mockSessionStore, signer *mockSigner, gv *mockGoogleVerifier) Service {
	deps := ServiceDeps{
		UserRepo:      users,
		SessionRepo:   sessions,
		Signer:        signer,
		RefreshExpiry: 30 * 24 * time.Hour,
	}
	if gv != nil {
		deps.GoogleVerifier = gv
	}
	return NewService(deps)
}

func TestLogin_HappyPath(t *testing.T) {
	users := &mockUserStore{}
	sessions := &mockSessionStore{}
	signer := &mockSigner{}

	users.On("GetByUsername", mock.Anything, "jdoe").Return(activeUser(t), nil)

	var stored *domain.Session
	sessions.On("Put", mock.Anything, mock.AnythingOfType("*domain.Session")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.Session) }).
		Return(nil)
	signer.On("Sign", "u1", domain.RoleConsumer, mock.Anything).Return("signed-jwt", nil)

	svc := newTestService(users, sessions, signer, nil)
	res, err := svc.Login(context.Background(), LoginRequest{Username: "jdoe", Password: "hunter2hunter2"})

	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "signed-jwt", res.AccessToken)
	assert.Equal(t, stored.RefreshToken, res.RefreshToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.True(t, stored.Enable)
	assert.Equal(t, "u1", stored.UserID)
}

func TestLogin_ByEmail_Fallback(t *testing.T) {
	users := &mockUserStore{}
	sessions := &mockSessionStore{}
	signer := &mockSigner{}

	users.On("GetByUsername", mock.Anything, "jdoe@example.com").Return(nil, domain.ErrNotFound)
	users.On("GetByEmail", mock.Anything, "jdoe@example.com").Return(activeUser(t), nil)
	sessions.On("Put", mock.Anything, mock.Anything).Return(nil)
	signer.On("Sign", "u1", domain.RoleConsumer, mock.Anything).Return("signed-jwt", nil)

	svc := newTestService(users, sessions, signer, nil)
	_, err := svc.Login(context.Background(), LoginRequest{Username: "jdoe@example.com", Password: "hunter2hunter2"})

	require.NoError(t, err)
}

func TestLogin_WrongPassword_Unauthorized(t *testing.T) {
	users := &mockUserStore{}
	sessions := &mockSessionStore{}

	users.On("GetByUsername", mock.Anything, "jdoe").Return(activeUser(t), nil)

	svc := newTestService(users, sessions, &mockSigner{}, nil)
	_, err := svc.Login(context.Background(), LoginRequest{Username: "jdoe", Password: "wrong"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	sessions.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestLogin_UnknownUser_Unauthorized(t *testing.T) {
	users := &mockUserStore{}
	users.On("GetByUsername", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)
	users.On("GetByEmail", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)

	svc := newTestService(users, &mockSessionStore{}, &mockSigner{}, nil)
	_, err := svc.Login(context.Background(), LoginRequest{Username: "ghost", Password: "whatever"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLoginWithGoogle_NewUser_CreatedAsConsumer(t *testing.T) {
	users := &mockUserStore{}
	sessions := &mockSessionStore{}
	signer := &mockSigner{}
	gv := &mockGoogleVerifier{}

	gv.On("Verify", mock.Anything, "google-token").Return(&google.Payload{
		Sub:           "sub-1",
		Email:         "new@example.com",
		EmailVerified: true,
		FirstName:     "New",
		LastName:      "User",
	}, nil)
	users.On("GetByEmail", mock.Anything, "new@example.com").Return(nil, domain.ErrNotFound)

	var created *domain.User
	users.On("Put", mock.Anything, mock.AnythingOfType("*domain.User")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*domain.User) }).
		Return(nil)
	sessions.On("Put", mock.Anything, mock.Anything).Return(nil)
	signer.On("Sign", mock.Anything, domain.RoleConsumer, mock.Anything).Return("signed-jwt", nil)

	svc := newTestService(users, sessions, signer, gv)
	res, err := svc.LoginWithGoogle(context.Background(), GoogleLoginRequest{IDToken: "google-token"})

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, domain.RoleConsumer, created.Role)
	assert.Equal(t, "google", created.AuthProvider)
	assert.Equal(t, "sub-1", created.GoogleSub)
	assert.Equal(t, "signed-jwt", res.AccessToken)
}

func TestLoginWithGoogle_UnverifiedEmail_Rejected(t *testing.T) {
	gv := &mockGoogleVerifier{}
	gv.On("Verify", mock.Anything, "google-token").Return(&google.Payload{
		Email:         "new@example.com",
		EmailVerified: false,
	}, nil)

	svc := newTestService(&mockUserStore{}, &mockSessionStore{}, &mockSigner{}, gv)
	_, err := svc.LoginWithGoogle(context.Background(), GoogleLoginRequest{IDToken: "google-token"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestRefresh_RotatesToken(t *testing.T) {
	users := &mockUserStore{}
	sessions := &mockSessionStore{}
	signer := &mockSigner{}

	sess := &domain.Session{
		SessionID:        "s1",
		UserID:           "u1",
		Enable:           true,
		RefreshToken:     "old-token",
		RefreshExpiresAt: time.Now().Add(time.Hour).Unix(),
	}
	sessions.On("GetByRefreshToken", mock.Anything, "old-token").Return(sess, nil)
	users.On("Get", mock.Anything, "u1").Return(activeUser(t), nil)

	var rotatedTo string
	sessions.On("RotateRefreshToken", mock.Anything, "s1", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { rotatedTo = args.String(2) }).
		Return(nil)
	signer.On("Sign", "u1", domain.RoleConsumer, "s1").Return("new-jwt", nil)

	svc := newTestService(users, sessions, signer, nil)
	res, err := svc.Refresh(context.Background(), RefreshRequest{RefreshToken: "old-token"})

	require.NoError(t, err)
	assert.Equal(t, "new-jwt", res.AccessToken)
	assert.Equal(t, rotatedTo, res.RefreshToken)
	assert.NotEqual(t, "old-token", res.RefreshToken)
}

func TestRefresh_ExpiredToken_Unauthorized(t *testing.T) {
	sessions := &mockSessionStore{}
	sessions.On("GetByRefreshToken", mock.Anything, "old-token").Return(&domain.Session{
		SessionID:        "s1",
		UserID:           "u1",
		Enable:           true,
		RefreshToken:     "old-token",
		RefreshExpiresAt: time.Now().Add(-time.Minute).Unix(),
	}, nil)

	svc := newTestService(&mockUserStore{}, sessions, &mockSigner{}, nil)
	_, err := svc.Refresh(context.Background(), RefreshRequest{RefreshToken: "old-token"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	sessions.AssertNotCalled(t, "RotateRefreshToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRefresh_ClosedSession_Unauthorized(t *testing.T) {
	sessions := &mockSessionStore{}
	sessions.On("GetByRefreshToken", mock.Anything, "old-token").Return(&domain.Session{
		SessionID:        "s1",
		Enable:           false,
		RefreshExpiresAt: time.Now().Add(time.Hour).Unix(),
	}, nil)

	svc := newTestService(&mockUserStore{}, sessions, &mockSigner{}, nil)
	_, err := svc.Refresh(context.Background(), RefreshRequest{RefreshToken: "old-token"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLogout_DisablesSession(t *testing.T) {
	sessions := &mockSessionStore{}
	sessions.On("Get", mock.Anything, "s1").Return(&domain.Session{SessionID: "s1", Enable: true}, nil)
	sessions.On("Update", mock.Anything, "s1", mock.MatchedBy(func(m map[string]interface{}) bool {
		enable, ok := m["enable"].(bool)
		return ok && !enable
	})).Return(nil)

	svc := newTestService(&mockUserStore{}, sessions, &mockSigner{}, nil)
	require.NoError(t, svc.Logout(context.Background(), "s1"))
	sessions.AssertExpectations(t)
}
