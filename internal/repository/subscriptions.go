package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/markpoint/backend/internal/domain"
)

const planColumns = `id, name, price_cents, currency, period_days, mark_quota, radius_boost_m`

// GetPlans returns all plans ordered by price
func (r *PostgresRepository) GetPlans(ctx context.Context) ([]*domain.Plan, error) {
	rows, err := r.db.Query(ctx, `SELECT `+planColumns+` FROM plans ORDER BY price_cents`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []*domain.Plan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}

// GetPlanByID retrieves a plan
func (r *PostgresRepository) GetPlanByID(ctx context.Context, id uuid.UUID) (*domain.Plan, error) {
	plan, err := scanPlan(r.db.QueryRow(ctx, `SELECT `+planColumns+` FROM plans WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

// CreateSubscription activates a subscription for a user
func (r *PostgresRepository) CreateSubscription(ctx context.Context, userID, planID uuid.UUID, paymentID string, expiresAt time.Time) (*domain.Subscription, error) {
	query := `
		INSERT INTO subscriptions (user_id, plan_id, status, payment_id, expires_at)
		VALUES ($1, $2, 'active', $3, $4)
		RETURNING id, user_id, plan_id, status, payment_id, started_at, expires_at
	`
	var s domain.Subscription
	err := r.db.QueryRow(ctx, query, userID, planID, paymentID, expiresAt).
		Scan(&s.ID, &s.UserID, &s.PlanID, &s.Status, &s.PaymentID, &s.StartedAt, &s.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetActiveSubscription returns a user's current active subscription with its plan
func (r *PostgresRepository) GetActiveSubscription(ctx context.Context, userID uuid.UUID) (*domain.Subscription, error) {
	query := `
		SELECT s.id, s.user_id, s.plan_id, s.status, s.payment_id, s.started_at, s.expires_at,
		       p.id, p.name, p.price_cents, p.currency, p.period_days, p.mark_quota, p.radius_boost_m
		FROM subscriptions s
		JOIN plans p ON p.id = s.plan_id
		WHERE s.user_id = $1 AND s.status = 'active' AND s.expires_at > NOW()
		ORDER BY s.started_at DESC
		LIMIT 1
	`
	var s domain.Subscription
	var plan domain.Plan
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&s.ID, &s.UserID, &s.PlanID, &s.Status, &s.PaymentID, &s.StartedAt, &s.ExpiresAt,
		&plan.ID, &plan.Name, &plan.PriceCents, &plan.Currency, &plan.PeriodDays, &plan.MarkQuota, &plan.RadiusBoostM,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSubscriptionNotFound
		}
		return nil, err
	}
	s.Plan = &plan
	return &s, nil
}

// CancelSubscription marks a subscription canceled
func (r *PostgresRepository) CancelSubscription(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE subscriptions SET status = 'canceled' WHERE id = $1`, id)
	return err
}

func scanPlan(row pgx.Row) (*domain.Plan, error) {
	var p domain.Plan
	err := row.Scan(&p.ID, &p.Name, &p.PriceCents, &p.Currency, &p.PeriodDays, &p.MarkQuota, &p.RadiusBoostM)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
