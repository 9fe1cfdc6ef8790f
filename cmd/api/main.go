package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-insurance-api/internal/config"
	"github.com/go-insurance-api/internal/infrastructure/dynamo"
	"github.com/go-insurance-api/internal/infrastructure/google"
	jwtinfra "github.com/go-insurance-api/internal/infrastructure/jwt"
	s3infra "github.com/go-insurance-api/internal/infrastructure/s3"
	"github.com/go-insurance-api/internal/infrastructure/smtp"
	"github.com/go-insurance-api/internal/infrastructure/sns"
	"github.com/go-insurance-api/internal/pkg/clock"
	transporthttp "github.com/go-insurance-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// JWT keys are mandatory: every route except login, register and refresh
	// sits behind the auth middleware.
	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		log.Fatalf("JWT provider: %v", err)
	}

	// S3 store for proof documents.
	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)

	// SMTP mailer carries confirmation codes and decision notices.
	mailer := smtp.NewMailer(cfg)

	// SNS SMS sender (optional, decision notices degrade to email only).
	var smsSender sns.SMSSender
	if sender, err := sns.NewSender(cfg); err == nil {
		smsSender = sender
	} else {
		log.Printf("WARN: SNS sender not available: %v", err)
	}

	// Google sign-in (optional, the route is only mounted when configured).
	var googleVerifier *google.Verifier
	if cfg.GoogleClientID != "" {
		googleVerifier = google.NewVerifier(cfg.GoogleClientID)
	} else {
		log.Println("WARN: GOOGLE_CLIENT_ID not set, Google sign-in disabled")
	}

	deps := &transporthttp.Deps{
		UserRepo:          dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		SessionRepo:       dynamo.NewSessionRepo(dynamoClient, cfg.DynamoTables.Sessions),
		PolicyRepo:        dynamo.NewPolicyRepo(dynamoClient, cfg.DynamoTables.Policies),
		PurchaseRepo:      dynamo.NewPurchaseRepo(dynamoClient, cfg.DynamoTables.Purchases),
		TicketRepo:        dynamo.NewTicketRepo(dynamoClient, cfg.DynamoTables.Tickets),
		PendingTicketRepo: dynamo.NewPendingTicketRepo(dynamoClient, cfg.DynamoTables.PendingTickets),
		NotificationRepo:  dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications),
		FileRepo:          dynamo.NewFileRepo(dynamoClient, cfg.DynamoTables.Files),
		S3Store:           s3Store,
		Mailer:            mailer,
		SMSSender:         smsSender,
		JWTProvider:       jwtProvider,
		GoogleVerifier:    googleVerifier,
		Clock:             clock.NewSystem(),
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
