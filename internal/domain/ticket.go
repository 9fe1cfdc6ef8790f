package domain

import "time"

// Ticket statuses. A ticket starts as "pending" and is moved to "approved"
// or "rejected" by a producer or admin during review.
const (
	TicketStatusPending  = "pending"
	TicketStatusApproved = "approved"
	TicketStatusRejected = "rejected"
)

// TicketPayload holds the fields a consumer submits when raising a support
// ticket. The same set is staged on a PendingTicket and copied verbatim onto
// the permanent Ticket at promotion time.
//
// NewName, NewAddress and NewPhoneNumber are optional change-request fields;
// nil means the field was not part of the request.
type TicketPayload struct {
	Name           string  `json:"name" dynamodbav:"name"`
	Email          string  `json:"email" dynamodbav:"email"`
	PhoneNumber    string  `json:"phoneNumber" dynamodbav:"phone_number"`
	Subject        string  `json:"subject" dynamodbav:"subject"`
	Description    string  `json:"description" dynamodbav:"description"`
	PDFURL         string  `json:"pdfUrl" dynamodbav:"pdf_url"`
	NewName        *string `json:"newName,omitempty" dynamodbav:"new_name"`
	NewAddress     *string `json:"newAddress,omitempty" dynamodbav:"new_address"`
	NewPhoneNumber *string `json:"newPhoneNumber,omitempty" dynamodbav:"new_phone_number"`
	CreatedBy      string  `json:"createdBy" dynamodbav:"created_by"`
}

// PendingTicket is a staged ticket awaiting confirmation of the contact
// email via a one-time code.
//
// ContactEmail is copied from the payload at creation and used for the
// verification match, so the payload cannot be tampered with between the
// two steps. ExpiresAt is a Unix timestamp used as the DynamoDB TTL
// attribute; it is set once to IssuedAt plus the configured window and
// never extended.
type PendingTicket struct {
	PendingTicketID string `json:"id" dynamodbav:"pending_ticket_id"`
	TicketPayload
	ContactEmail string    `json:"-" dynamodbav:"contact_email"`
	OTPCode      string    `json:"-" dynamodbav:"otp_code"`
	IssuedAt     time.Time `json:"issued_at" dynamodbav:"issued_at"`
	ExpiresAt    int64     `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
}

// Ticket is the permanent record created when a pending ticket is confirmed.
// Its id equals the pending ticket's id, which makes promotion idempotent.
type Ticket struct {
	TicketID string `json:"id" dynamodbav:"ticket_id"`
	TicketPayload
	Status       string     `json:"status" dynamodbav:"status"`
	DecisionNote *string    `json:"decisionNote,omitempty" dynamodbav:"decision_note"`
	DecidedBy    *string    `json:"decidedBy,omitempty" dynamodbav:"decided_by"`
	DecidedAt    *time.Time `json:"decidedAt,omitempty" dynamodbav:"decided_at"`
	CreatedAt    time.Time  `json:"createdAt" dynamodbav:"created_at"`
}
