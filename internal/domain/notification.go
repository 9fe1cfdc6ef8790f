package domain

import "time"

// Notification is an in-app message shown to a user, currently produced by
// ticket review decisions.
type Notification struct {
	NotificationID string    `json:"id" dynamodbav:"notification_id"`
	UserID         string    `json:"user_id" dynamodbav:"user_id"`
	TicketID       string    `json:"ticket_id,omitempty" dynamodbav:"ticket_id"`
	Title          string    `json:"title" dynamodbav:"title"`
	Body           string    `json:"body" dynamodbav:"body"`
	Readed         bool      `json:"readed" dynamodbav:"readed"`
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at"`
}
