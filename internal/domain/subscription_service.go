package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type SubscriptionService struct {
	repo     SubscriptionRepository
	payments PaymentProvider
}

func NewSubscriptionService(repo SubscriptionRepository, payments PaymentProvider) *SubscriptionService {
	return &SubscriptionService{
		repo:     repo,
		payments: payments,
	}
}

func (s *SubscriptionService) GetPlans(ctx context.Context) ([]*Plan, error) {
	return s.repo.GetPlans(ctx)
}

// Subscribe charges the user for a plan and records the subscription. One
// active subscription per user.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID, planID uuid.UUID) (*Subscription, error) {
	plan, err := s.repo.GetPlanByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetActiveSubscription(ctx, userID); err == nil {
		return nil, ErrAlreadySubscribed
	} else if !errors.Is(err, ErrSubscriptionNotFound) {
		return nil, err
	}

	paymentID, err := s.payments.Charge(ctx, userID, plan)
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().AddDate(0, 0, plan.PeriodDays)
	return s.repo.CreateSubscription(ctx, userID, planID, paymentID, expiresAt)
}

func (s *SubscriptionService) Current(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	return s.repo.GetActiveSubscription(ctx, userID)
}

func (s *SubscriptionService) Cancel(ctx context.Context, userID uuid.UUID) error {
	sub, err := s.repo.GetActiveSubscription(ctx, userID)
	if err != nil {
		return err
	}
	return s.repo.CancelSubscription(ctx, sub.ID)
}
