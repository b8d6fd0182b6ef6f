package billing

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/markpoint/backend/internal/domain"
)

// SandboxProvider approves every charge and issues a synthetic transaction
// reference. It stands in for a real gateway in development and tests.
type SandboxProvider struct {
	logger *zap.Logger
}

func NewSandboxProvider(logger *zap.Logger) *SandboxProvider {
	return &SandboxProvider{logger: logger}
}

// Charge always succeeds
func (p *SandboxProvider) Charge(ctx context.Context, userID uuid.UUID, plan *domain.Plan) (string, error) {
	txnID := "sandbox_" + uuid.New().String()
	p.logger.Info("sandbox charge approved",
		zap.String("user_id", userID.String()),
		zap.String("plan", plan.Name),
		zap.Int("amount_cents", plan.PriceCents),
		zap.String("currency", plan.Currency),
		zap.String("txn_id", txnID),
	)
	return txnID, nil
}
