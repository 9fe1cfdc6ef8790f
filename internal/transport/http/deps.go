package http

import (
	"github.com/go-insurance-api/internal/infrastructure/dynamo"
	"github.com/go-insurance-api/internal/infrastructure/google"
	jwtinfra "github.com/go-insurance-api/internal/infrastructure/jwt"
	s3infra "github.com/go-insurance-api/internal/infrastructure/s3"
	"github.com/go-insurance-api/internal/infrastructure/smtp"
	"github.com/go-insurance-api/internal/infrastructure/sns"
	"github.com/go-insurance-api/internal/pkg/clock"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo          *dynamo.UserRepo
	SessionRepo       *dynamo.SessionRepo
	PolicyRepo        *dynamo.PolicyRepo
	PurchaseRepo      *dynamo.PurchaseRepo
	TicketRepo        *dynamo.TicketRepo
	PendingTicketRepo *dynamo.PendingTicketRepo
	NotificationRepo  *dynamo.NotificationRepo
	FileRepo          *dynamo.FileRepo
	S3Store           *s3infra.Store
	Mailer            smtp.Mailer
	SMSSender         sns.SMSSender
	JWTProvider       *jwtinfra.Provider
	GoogleVerifier    *google.Verifier
	Clock             clock.Clock
}
