package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Plan is a paid subscription tier.
type Plan struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	PriceCents   int       `json:"price_cents"`
	Currency     string    `json:"currency"`
	PeriodDays   int       `json:"period_days"`
	MarkQuota    int       `json:"mark_quota"`
	RadiusBoostM int       `json:"radius_boost_m"`
}

type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionCanceled SubscriptionStatus = "canceled"
	SubscriptionExpired  SubscriptionStatus = "expired"
)

// Subscription links a user to a plan for a billing period.
type Subscription struct {
	ID        uuid.UUID          `json:"id"`
	UserID    uuid.UUID          `json:"user_id"`
	PlanID    uuid.UUID          `json:"plan_id"`
	Status    SubscriptionStatus `json:"status"`
	PaymentID *string            `json:"payment_id,omitempty"`
	StartedAt time.Time          `json:"started_at"`
	ExpiresAt time.Time          `json:"expires_at"`
	Plan      *Plan              `json:"plan,omitempty"`
}

type SubscriptionRepository interface {
	GetPlans(ctx context.Context) ([]*Plan, error)
	GetPlanByID(ctx context.Context, id uuid.UUID) (*Plan, error)
	CreateSubscription(ctx context.Context, userID, planID uuid.UUID, paymentID string, expiresAt time.Time) (*Subscription, error)
	GetActiveSubscription(ctx context.Context, userID uuid.UUID) (*Subscription, error)
	CancelSubscription(ctx context.Context, id uuid.UUID) error
}

// PaymentProvider is the external billing collaborator. Gateway specifics
// live behind this interface.
type PaymentProvider interface {
	// Charge captures payment for a plan and returns the provider's
	// transaction reference.
	Charge(ctx context.Context, userID uuid.UUID, plan *Plan) (string, error)
}
