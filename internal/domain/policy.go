package domain

import "time"

// Policy is an insurance product created by a producer and purchasable by
// consumers.
type Policy struct {
	PolicyID       string    `json:"id" dynamodbav:"policy_id"`
	Title          string    `json:"title" dynamodbav:"title"`
	Description    string    `json:"description" dynamodbav:"description"`
	Category       string    `json:"category" dynamodbav:"category"`
	Premium        float64   `json:"premium" dynamodbav:"premium"`
	CoverageAmount float64   `json:"coverage_amount" dynamodbav:"coverage_amount"`
	DurationMonths int       `json:"duration_months" dynamodbav:"duration_months"`
	ImageURL       string    `json:"image_url,omitempty" dynamodbav:"image_url"`
	CreatedBy      string    `json:"created_by" dynamodbav:"created_by"`
	Enable         bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt      time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreatePolicyRequest struct {
	Title          string  `json:"title" validate:"required"`
	Description    string  `json:"description" validate:"required"`
	Category       string  `json:"category" validate:"required"`
	Premium        float64 `json:"premium" validate:"required,gt=0"`
	CoverageAmount float64 `json:"coverage_amount" validate:"required,gt=0"`
	DurationMonths int     `json:"duration_months" validate:"required,gt=0"`
	ImageURL       string  `json:"image_url"`
}

type UpdatePolicyRequest struct {
	Title          *string  `json:"title"`
	Description    *string  `json:"description"`
	Category       *string  `json:"category"`
	Premium        *float64 `json:"premium" validate:"omitempty,gt=0"`
	CoverageAmount *float64 `json:"coverage_amount" validate:"omitempty,gt=0"`
	DurationMonths *int     `json:"duration_months" validate:"omitempty,gt=0"`
	ImageURL       *string  `json:"image_url"`
}
