package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-insurance-api/internal/application/ticket"
	"github.com/go-insurance-api/internal/domain"
	"github.com/go-insurance-api/internal/pkg/validate"
	"github.com/go-insurance-api/internal/transport/http/middleware"
)

type TicketHandler struct {
	svc ticket.Service
}

func NewTicketHandler(svc ticket.Service) *TicketHandler {
	return &TicketHandler{svc: svc}
}

// RaiseTicketEnvelope answers a successful raise. The confirmation code is
// never part of the response; it travels by email only.
type RaiseTicketEnvelope struct {
	Message         string `json:"message"`
	PendingTicketID string `json:"pendingTicketId"`
}

// TicketEnvelope answers a successful verification or review.
type TicketEnvelope struct {
	Message string         `json:"message,omitempty"`
	Ticket  *domain.Ticket `json:"ticket,omitempty"`
}

// Raise handles POST /Ticket/raiseticket.
func (h *TicketHandler) Raise(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ticket.RaiseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	pendingID, err := h.svc.Raise(r.Context(), claims.UserID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RaiseTicketEnvelope{
		Message:         "confirmation code sent to " + req.Email,
		PendingTicketID: pendingID,
	})
}

// Verify handles POST /Ticket/verify.
func (h *TicketHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req ticket.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := h.svc.Verify(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, TicketEnvelope{
		Message: "ticket created",
		Ticket:  t,
	})
}

// List handles GET /Ticket?status= for reviewers.
func (h *TicketHandler) List(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.svc.ListByStatus(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tickets)
}

// ListMine handles GET /Ticket/mine.
func (h *TicketHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	tickets, err := h.svc.ListMine(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tickets)
}

// Get handles GET /Ticket/{id}.
func (h *TicketHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Decide handles POST /Ticket/{id}/decision for reviewers.
func (h *TicketHandler) Decide(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ticket.DecideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := h.svc.Decide(r.Context(), claims.UserID, chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TicketEnvelope{
		Message: "ticket " + t.Status,
		Ticket:  t,
	})
}
