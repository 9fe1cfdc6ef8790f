package domain

import "time"

// Purchase records a consumer buying a policy. The policy title and premium
// are denormalized at purchase time so later policy edits don't rewrite
// purchase history.
type Purchase struct {
	PurchaseID  string    `json:"id" dynamodbav:"purchase_id"`
	PolicyID    string    `json:"policy_id" dynamodbav:"policy_id"`
	UserID      string    `json:"user_id" dynamodbav:"user_id"`
	PolicyTitle string    `json:"policy_title" dynamodbav:"policy_title"`
	PremiumPaid float64   `json:"premium_paid" dynamodbav:"premium_paid"`
	PurchasedAt time.Time `json:"purchased_at" dynamodbav:"purchased_at"`
}
