package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-insurance-api/internal/application/ticket"
	"github.com/go-insurance-api/internal/domain"
	jwtinfra "github.com/go-insurance-api/internal/infrastructure/jwt"
	"github.com/go-insurance-api/internal/transport/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTicketService struct{ mock.Mock }

func (m *mockTicketService) Raise(ctx context.Context, creatorID string, req ticket.RaiseRequest) (string, error) {
	args := m.Called(ctx, creatorID, req)
	return args.String(0), args.Error(1)
}
func (m *mockTicketService) Verify(ctx context.Context, req ticket.VerifyRequest) (*domain.Ticket, error) {
	args := m.Called(ctx, req)
	if t, _ := args.Get(0).(*domain.Ticket); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockTicketService) Get(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	args := m.Called(ctx, ticketID)
	if t, _ := args.Get(0).(*domain.Ticket); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockTicketService) ListByStatus(ctx context.Context, status string) ([]domain.Ticket, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]domain.Ticket), args.Error(1)
}
func (m *mockTicketService) ListMine(ctx context.Context, userID string) ([]domain.Ticket, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Ticket), args.Error(1)
}
func (m *mockTicketService) Decide(ctx context.Context, reviewerID, ticketID string, req ticket.DecideRequest) (*domain.Ticket, error) {
	args := m.Called(ctx, reviewerID, ticketID, req)
	if t, _ := args.Get(0).(*domain.Ticket); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func authedRequest(method, target string, body []byte, userID, role string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	claims := &jwtinfra.Claims{UserID: userID, Role: role}
	ctx := context.WithValue(req.Context(), middleware.ClaimsKey, claims)
	return req.WithContext(ctx)
}

func raiseBody(t *testing.T, mutate func(map[string]interface{})) []byte {
	t.Helper()
	m := map[string]interface{}{
		"name":        "Jordan Doe",
		"email":       "jordan@example.com",
		"phoneNumber": "5551234567",
		"subject":     "Address change",
		"description": "Please update my address.",
		"pdfUrl":      "https://x/doc.pdf",
	}
	if mutate != nil {
		mutate(m)
	}
	b, err := json.Marshal(m)
	require.NoError(t, err)
	return b
}

func TestRaise_OK(t *testing.T) {
	svc := &mockTicketService{}
	svc.On("Raise", mock.Anything, "u1", mock.AnythingOfType("ticket.RaiseRequest")).Return("p123", nil)
	h := NewTicketHandler(svc)

	req := authedRequest(http.MethodPost, "/Ticket/raiseticket", raiseBody(t, nil), "u1", "consumer")
	rr := httptest.NewRecorder()
	h.Raise(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var env RaiseTicketEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.Equal(t, "p123", env.PendingTicketID)
	assert.Contains(t, env.Message, "jordan@example.com")
}

func TestRaise_NoClaims_Unauthorized(t *testing.T) {
	h := NewTicketHandler(&mockTicketService{})

	req := httptest.NewRequest(http.MethodPost, "/Ticket/raiseticket", bytes.NewReader(raiseBody(t, nil)))
	rr := httptest.NewRecorder()
	h.Raise(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRaise_MissingPDFURL_BadRequest(t *testing.T) {
	svc := &mockTicketService{}
	svc.On("Raise", mock.Anything, "u1", mock.Anything).
		Return("", domain.ErrBadRequest)
	h := NewTicketHandler(svc)

	body := raiseBody(t, func(m map[string]interface{}) { delete(m, "pdfUrl") })
	req := authedRequest(http.MethodPost, "/Ticket/raiseticket", body, "u1", "consumer")
	rr := httptest.NewRecorder()
	h.Raise(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRaise_MailerDown_InternalError(t *testing.T) {
	svc := &mockTicketService{}
	svc.On("Raise", mock.Anything, "u1", mock.Anything).
		Return("", domain.ErrNotificationFailed)
	h := NewTicketHandler(svc)

	req := authedRequest(http.MethodPost, "/Ticket/raiseticket", raiseBody(t, nil), "u1", "consumer")
	rr := httptest.NewRecorder()
	h.Raise(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	var env MessageEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.Equal(t, "internal server error", env.Error)
}

func verifyBody(t *testing.T) []byte {
	t.Helper()
	b, err := json.Marshal(map[string]string{
		"pendingTicketId": "p1",
		"email":           "jordan@example.com",
		"otp":             "654321",
	})
	require.NoError(t, err)
	return b
}

func TestVerify_Created(t *testing.T) {
	svc := &mockTicketService{}
	svc.On("Verify", mock.Anything, mock.AnythingOfType("ticket.VerifyRequest")).
		Return(&domain.Ticket{TicketID: "p1", Status: domain.TicketStatusPending}, nil)
	h := NewTicketHandler(svc)

	req := authedRequest(http.MethodPost, "/Ticket/verify", verifyBody(t), "u1", "consumer")
	rr := httptest.NewRecorder()
	h.Verify(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	var env TicketEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.NotNil(t, env.Ticket)
	assert.Equal(t, "p1", env.Ticket.TicketID)
	assert.Equal(t, "ticket created", env.Message)
}

func TestVerify_StatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"mismatch", domain.ErrVerificationFailed, http.StatusBadRequest},
		{"expired", domain.ErrExpired, http.StatusBadRequest},
		{"unknown id", domain.ErrNotFound, http.StatusNotFound},
		{"already promoted", domain.ErrConflict, http.StatusConflict},
		{"storage down", errors.New("dynamo unavailable"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockTicketService{}
			svc.On("Verify", mock.Anything, mock.Anything).Return(nil, tc.err)
			h := NewTicketHandler(svc)

			req := authedRequest(http.MethodPost, "/Ticket/verify", verifyBody(t), "u1", "consumer")
			rr := httptest.NewRecorder()
			h.Verify(rr, req)

			assert.Equal(t, tc.want, rr.Code)
		})
	}
}

func TestVerify_MissingField_RejectedBeforeService(t *testing.T) {
	svc := &mockTicketService{}
	h := NewTicketHandler(svc)

	b, err := json.Marshal(map[string]string{"email": "jordan@example.com", "otp": "654321"})
	require.NoError(t, err)
	req := authedRequest(http.MethodPost, "/Ticket/verify", b, "u1", "consumer")
	rr := httptest.NewRecorder()
	h.Verify(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
}

func TestDecide_OK(t *testing.T) {
	svc := &mockTicketService{}
	decided := &domain.Ticket{TicketID: "t1", Status: domain.TicketStatusApproved}
	svc.On("Decide", mock.Anything, "rev1", mock.Anything, mock.AnythingOfType("ticket.DecideRequest")).
		Return(decided, nil)
	h := NewTicketHandler(svc)

	b, err := json.Marshal(map[string]string{"action": "approve", "note": "ok"})
	require.NoError(t, err)
	req := authedRequest(http.MethodPost, "/Ticket/t1/decision", b, "rev1", "producer")
	rr := httptest.NewRecorder()
	h.Decide(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var env TicketEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.Equal(t, domain.TicketStatusApproved, env.Ticket.Status)
}

func TestDecide_InvalidAction_RejectedBeforeService(t *testing.T) {
	svc := &mockTicketService{}
	h := NewTicketHandler(svc)

	b, err := json.Marshal(map[string]string{"action": "escalate"})
	require.NoError(t, err)
	req := authedRequest(http.MethodPost, "/Ticket/t1/decision", b, "rev1", "producer")
	rr := httptest.NewRecorder()
	h.Decide(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "Decide", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
