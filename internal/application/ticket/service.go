package ticket

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-insurance-api/internal/domain"
	"github.com/go-insurance-api/internal/infrastructure/smtp"
	"github.com/go-insurance-api/internal/infrastructure/sns"
	"github.com/go-insurance-api/internal/pkg/clock"
	"github.com/go-insurance-api/internal/pkg/id"
	"github.com/go-insurance-api/internal/pkg/otp"
)

// RaiseRequest carries the fields a consumer submits when raising a ticket.
// PDFURL has no validate tag: its absence is a distinct precondition failure
// checked in the service, before any code is generated or sent.
type RaiseRequest struct {
	Name           string  `json:"name" validate:"required"`
	Email          string  `json:"email" validate:"required,email"`
	PhoneNumber    string  `json:"phoneNumber" validate:"required"`
	Subject        string  `json:"subject" validate:"required"`
	Description    string  `json:"description" validate:"required"`
	PDFURL         string  `json:"pdfUrl"`
	NewName        *string `json:"newName"`
	NewAddress     *string `json:"newAddress"`
	NewPhoneNumber *string `json:"newPhoneNumber"`
}

type VerifyRequest struct {
	PendingTicketID string `json:"pendingTicketId" validate:"required"`
	Email           string `json:"email" validate:"required"`
	OTP             string `json:"otp" validate:"required"`
}

type DecideRequest struct {
	Action string `json:"action" validate:"required,oneof=approve reject"`
	Note   string `json:"note"`
}

type Service interface {
	// Raise stages a pending ticket and emails a one-time confirmation code
	// to the submitted contact address. The code never appears in the return
	// value; only the pending record's id does.
	Raise(ctx context.Context, creatorID string, req RaiseRequest) (pendingTicketID string, err error)
	// Verify promotes a pending ticket into a permanent one when the
	// submitted email and code both match and the code has not expired.
	Verify(ctx context.Context, req VerifyRequest) (*domain.Ticket, error)
	Get(ctx context.Context, ticketID string) (*domain.Ticket, error)
	ListByStatus(ctx context.Context, status string) ([]domain.Ticket, error)
	ListMine(ctx context.Context, userID string) ([]domain.Ticket, error)
	Decide(ctx context.Context, reviewerID, ticketID string, req DecideRequest) (*domain.Ticket, error)
}

type pendingStore interface {
	Put(ctx context.Context, p *domain.PendingTicket) error
	Get(ctx context.Context, pendingTicketID string) (*domain.PendingTicket, error)
	Delete(ctx context.Context, pendingTicketID string) error
}

type ticketStore interface {
	PutIfAbsent(ctx context.Context, t *domain.Ticket) error
	Get(ctx context.Context, ticketID string) (*domain.Ticket, error)
	ListByStatus(ctx context.Context, status string) ([]domain.Ticket, error)
	ListByCreator(ctx context.Context, userID string) ([]domain.Ticket, error)
	Update(ctx context.Context, ticketID string, updates map[string]interface{}) error
}

type notificationStore interface {
	Put(ctx context.Context, n *domain.Notification) error
}

type service struct {
	pendingRepo      pendingStore
	ticketRepo       ticketStore
	notificationRepo notificationStore
	mailer           smtp.Mailer
	smsSender        sns.SMSSender
	clk              clock.Clock
	otpTTL           time.Duration
}

type ServiceDeps struct {
	PendingRepo      pendingStore
	TicketRepo       ticketStore
	NotificationRepo notificationStore
	Mailer           smtp.Mailer
	SMSSender        sns.SMSSender
	Clock            clock.Clock
	OTPTTL           time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		pendingRepo:      deps.PendingRepo,
		ticketRepo:       deps.TicketRepo,
		notificationRepo: deps.NotificationRepo,
		mailer:           deps.Mailer,
		smsSender:        deps.SMSSender,
		clk:              deps.Clock,
		otpTTL:           deps.OTPTTL,
	}
}

func (s *service) Raise(ctx context.Context, creatorID string, req RaiseRequest) (string, error) {
	if creatorID == "" {
		return "", fmt.Errorf("missing caller identity: %w", domain.ErrUnauthorized)
	}
	if req.PDFURL == "" {
		return "", fmt.Errorf("proof document (pdfUrl) is required: %w", domain.ErrBadRequest)
	}

	code, err := otp.New()
	if err != nil {
		return "", err
	}

	// The code is emailed before the pending record is written, so a send
	// failure leaves no record behind. The cost: a crash between send and
	// persist strands a code the user received but cannot redeem; recovery
	// is raising the ticket again.
	subject := "Your ticket confirmation code"
	body := fmt.Sprintf("Your one-time confirmation code is %s. It expires in %d minutes.", code, int(s.otpTTL.Minutes()))
	if err := s.mailer.SendEmail(req.Email, subject, body); err != nil {
		return "", fmt.Errorf("send confirmation code: %w", domain.ErrNotificationFailed)
	}

	issued := s.clk.Now()
	p := &domain.PendingTicket{
		PendingTicketID: id.New(),
		TicketPayload: domain.TicketPayload{
			Name:           req.Name,
			Email:          req.Email,
			PhoneNumber:    req.PhoneNumber,
			Subject:        req.Subject,
			Description:    req.Description,
			PDFURL:         req.PDFURL,
			NewName:        req.NewName,
			NewAddress:     req.NewAddress,
			NewPhoneNumber: req.NewPhoneNumber,
			CreatedBy:      creatorID,
		},
		ContactEmail: req.Email,
		OTPCode:      code,
		IssuedAt:     issued,
		ExpiresAt:    issued.Add(s.otpTTL).Unix(),
	}
	if err := s.pendingRepo.Put(ctx, p); err != nil {
		return "", err
	}
	return p.PendingTicketID, nil
}

func (s *service) Verify(ctx context.Context, req VerifyRequest) (*domain.Ticket, error) {
	if req.PendingTicketID == "" || req.Email == "" || req.OTP == "" {
		return nil, fmt.Errorf("pendingTicketId, email and otp are required: %w", domain.ErrBadRequest)
	}

	p, err := s.pendingRepo.Get(ctx, req.PendingTicketID)
	if err != nil {
		return nil, err
	}

	// Exact string equality on both fields; the error does not say which one
	// was wrong. A mismatch leaves the record untouched, so the client can
	// retry until the code expires.
	if req.Email != p.ContactEmail || req.OTP != p.OTPCode {
		return nil, fmt.Errorf("email or code does not match: %w", domain.ErrVerificationFailed)
	}
	if s.clk.Now().Unix() > p.ExpiresAt {
		return nil, fmt.Errorf("confirmation code expired: %w", domain.ErrExpired)
	}

	t := &domain.Ticket{
		TicketID:      p.PendingTicketID,
		TicketPayload: p.TicketPayload,
		Status:        domain.TicketStatusPending,
		CreatedAt:     s.clk.Now(),
	}
	// On failure the pending record is kept, so the client may retry the
	// verification without requesting a new code.
	if err := s.ticketRepo.PutIfAbsent(ctx, t); err != nil {
		return nil, err
	}

	// The permanent ticket already exists at this point; a stranded pending
	// record is acceptable residue and the TTL index will reap it.
	if err := s.pendingRepo.Delete(ctx, p.PendingTicketID); err != nil {
		slog.Warn("failed to delete pending ticket after promotion", "pending_ticket_id", p.PendingTicketID, "err", err)
	}
	return t, nil
}

func (s *service) Get(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	return s.ticketRepo.Get(ctx, ticketID)
}

func (s *service) ListByStatus(ctx context.Context, status string) ([]domain.Ticket, error) {
	switch status {
	case "", domain.TicketStatusPending, domain.TicketStatusApproved, domain.TicketStatusRejected:
	default:
		return nil, fmt.Errorf("unknown status %q: %w", status, domain.ErrBadRequest)
	}
	return s.ticketRepo.ListByStatus(ctx, status)
}

func (s *service) ListMine(ctx context.Context, userID string) ([]domain.Ticket, error) {
	return s.ticketRepo.ListByCreator(ctx, userID)
}

func (s *service) Decide(ctx context.Context, reviewerID, ticketID string, req DecideRequest) (*domain.Ticket, error) {
	var status string
	switch req.Action {
	case "approve":
		status = domain.TicketStatusApproved
	case "reject":
		status = domain.TicketStatusRejected
	default:
		return nil, fmt.Errorf("action must be approve or reject: %w", domain.ErrBadRequest)
	}

	t, err := s.ticketRepo.Get(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if t.Status != domain.TicketStatusPending {
		return nil, fmt.Errorf("ticket already %s: %w", t.Status, domain.ErrConflict)
	}

	now := s.clk.Now()
	updates := map[string]interface{}{
		"status":        status,
		"decided_by":    reviewerID,
		"decided_at":    now.Format(time.RFC3339),
		"decision_note": req.Note,
	}
	if err := s.ticketRepo.Update(ctx, ticketID, updates); err != nil {
		return nil, err
	}

	t.Status = status
	t.DecidedBy = &reviewerID
	t.DecidedAt = &now
	if req.Note != "" {
		t.DecisionNote = &req.Note
	}

	s.notifyDecision(ctx, t)
	return t, nil
}

// notifyDecision is best-effort: the decision is already recorded, so
// notification failures are logged and swallowed.
func (s *service) notifyDecision(ctx context.Context, t *domain.Ticket) {
	title := fmt.Sprintf("Your ticket %q was %s", t.Subject, t.Status)
	body := title + "."
	if t.DecisionNote != nil {
		body = fmt.Sprintf("%s Reviewer note: %s", body, *t.DecisionNote)
	}

	n := &domain.Notification{
		NotificationID: id.New(),
		UserID:         t.CreatedBy,
		TicketID:       t.TicketID,
		Title:          title,
		Body:           body,
		CreatedAt:      s.clk.Now(),
	}
	if err := s.notificationRepo.Put(ctx, n); err != nil {
		slog.Warn("failed to store decision notification", "ticket_id", t.TicketID, "err", err)
	}
	if err := s.mailer.SendEmail(t.Email, title, body); err != nil {
		slog.Warn("failed to email decision notice", "ticket_id", t.TicketID, "err", err)
	}
	if s.smsSender != nil && t.PhoneNumber != "" {
		if err := s.smsSender.SendSMS(ctx, t.PhoneNumber, title); err != nil {
			slog.Warn("failed to SMS decision notice", "ticket_id", t.TicketID, "err", err)
		}
	}
}
