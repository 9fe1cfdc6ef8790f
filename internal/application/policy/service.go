package policy

import (
	"context"
	"fmt"
	"time"

	"github.com/go-insurance-api/internal/domain"
	"github.com/go-insurance-api/internal/pkg/id"
)

type Service interface {
	Create(ctx context.Context, creatorID string, req domain.CreatePolicyRequest) (*domain.Policy, error)
	List(ctx context.Context) ([]domain.Policy, error)
	ListMine(ctx context.Context, creatorID string) ([]domain.Policy, error)
	Get(ctx context.Context, policyID string) (*domain.Policy, error)
	Update(ctx context.Context, callerID, policyID string, req domain.UpdatePolicyRequest) (*domain.Policy, error)
	Delete(ctx context.Context, callerID, policyID string) error
	Purchase(ctx context.Context, userID, policyID string) (*domain.Purchase, error)
	ListPurchases(ctx context.Context, userID string) ([]domain.Purchase, error)
}

type policyStore interface {
	Put(ctx context.Context, p *domain.Policy) error
	Get(ctx context.Context, policyID string) (*domain.Policy, error)
	List(ctx context.Context) ([]domain.Policy, error)
	ListByCreator(ctx context.Context, userID string) ([]domain.Policy, error)
	Update(ctx context.Context, policyID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, policyID string) error
}

type purchaseStore interface {
	Put(ctx context.Context, p *domain.Purchase) error
	ListByUser(ctx context.Context, userID string) ([]domain.Purchase, error)
}

type service struct {
	policyRepo   policyStore
	purchaseRepo purchaseStore
}

func NewService(policyRepo policyStore, purchaseRepo purchaseStore) Service {
	return &service{policyRepo: policyRepo, purchaseRepo: purchaseRepo}
}

func (s *service) Create(ctx context.Context, creatorID string, req domain.CreatePolicyRequest) (*domain.Policy, error) {
	if creatorID == "" {
		return nil, fmt.Errorf("missing caller identity: %w", domain.ErrUnauthorized)
	}
	now := time.Now()
	p := &domain.Policy{
		PolicyID:       id.New(),
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Premium:        req.Premium,
		CoverageAmount: req.CoverageAmount,
		DurationMonths: req.DurationMonths,
		ImageURL:       req.ImageURL,
		CreatedBy:      creatorID,
		Enable:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.policyRepo.Put(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) List(ctx context.Context) ([]domain.Policy, error) {
	return s.policyRepo.List(ctx)
}

func (s *service) ListMine(ctx context.Context, creatorID string) ([]domain.Policy, error) {
	return s.policyRepo.ListByCreator(ctx, creatorID)
}

func (s *service) Get(ctx context.Context, policyID string) (*domain.Policy, error) {
	p, err := s.policyRepo.Get(ctx, policyID)
	if err != nil {
		return nil, err
	}
	if !p.Enable {
		return nil, fmt.Errorf("policy %s: %w", policyID, domain.ErrNotFound)
	}
	return p, nil
}

// Update applies the non-nil fields of req. Only the producer that created
// the policy may edit it.
func (s *service) Update(ctx context.Context, callerID, policyID string, req domain.UpdatePolicyRequest) (*domain.Policy, error) {
	p, err := s.Get(ctx, policyID)
	if err != nil {
		return nil, err
	}
	if p.CreatedBy != callerID {
		return nil, fmt.Errorf("policy belongs to another producer: %w", domain.ErrForbidden)
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
		p.Title = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
		p.Description = *req.Description
	}
	if req.Category != nil {
		updates["category"] = *req.Category
		p.Category = *req.Category
	}
	if req.Premium != nil {
		updates["premium"] = *req.Premium
		p.Premium = *req.Premium
	}
	if req.CoverageAmount != nil {
		updates["coverage_amount"] = *req.CoverageAmount
		p.CoverageAmount = *req.CoverageAmount
	}
	if req.DurationMonths != nil {
		updates["duration_months"] = *req.DurationMonths
		p.DurationMonths = *req.DurationMonths
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
		p.ImageURL = *req.ImageURL
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update: %w", domain.ErrBadRequest)
	}

	now := time.Now()
	updates["updated_at"] = now.Format(time.RFC3339Nano)
	if err := s.policyRepo.Update(ctx, policyID, updates); err != nil {
		return nil, err
	}
	p.UpdatedAt = now
	return p, nil
}

func (s *service) Delete(ctx context.Context, callerID, policyID string) error {
	p, err := s.Get(ctx, policyID)
	if err != nil {
		return err
	}
	if p.CreatedBy != callerID {
		return fmt.Errorf("policy belongs to another producer: %w", domain.ErrForbidden)
	}
	return s.policyRepo.SoftDelete(ctx, policyID)
}

// Purchase snapshots the policy title and premium onto the purchase record.
func (s *service) Purchase(ctx context.Context, userID, policyID string) (*domain.Purchase, error) {
	if userID == "" {
		return nil, fmt.Errorf("missing caller identity: %w", domain.ErrUnauthorized)
	}
	p, err := s.Get(ctx, policyID)
	if err != nil {
		return nil, err
	}
	pu := &domain.Purchase{
		PurchaseID:  id.New(),
		PolicyID:    p.PolicyID,
		UserID:      userID,
		PolicyTitle: p.Title,
		PremiumPaid: p.Premium,
		PurchasedAt: time.Now(),
	}
	if err := s.purchaseRepo.Put(ctx, pu); err != nil {
		return nil, err
	}
	return pu, nil
}

func (s *service) ListPurchases(ctx context.Context, userID string) ([]domain.Purchase, error) {
	return s.purchaseRepo.ListByUser(ctx, userID)
}
