package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/markpoint/backend/internal/domain"
)

// PostgresRepository implements the domain repository interfaces (users,
// marks, categories, comments, chat, subscriptions, notifications) over one
// pgx pool.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, email, name, avatar_url, google_id, email_verified, is_active, created_at, updated_at`

// CreateUser creates a new user
func (r *PostgresRepository) CreateUser(ctx context.Context, params domain.CreateUserParams) (*domain.User, error) {
	query := `
		INSERT INTO users (email, password_hash, name, avatar_url, google_id, email_verified)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns

	row := r.db.QueryRow(ctx, query,
		params.Email,
		params.PasswordHash,
		params.Name,
		params.AvatarURL,
		params.GoogleID,
		params.EmailVerified,
	)

	return scanUser(row)
}

// GetUserByID retrieves a user by ID
func (r *PostgresRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND is_active = TRUE`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

// GetUserByEmail retrieves a user by email
func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND is_active = TRUE`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

// GetUserByGoogleID retrieves a user by Google ID
func (r *PostgresRepository) GetUserByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE google_id = $1 AND is_active = TRUE`
	return scanUser(r.db.QueryRow(ctx, query, googleID))
}

// GetUserWithPassword retrieves a user with password hash for verification
func (r *PostgresRepository) GetUserWithPassword(ctx context.Context, email string) (*domain.User, string, error) {
	query := `
		SELECT ` + userColumns + `, password_hash
		FROM users WHERE email = $1 AND is_active = TRUE
	`
	row := r.db.QueryRow(ctx, query, email)

	var user domain.User
	var passwordHash *string
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.AvatarURL,
		&user.GoogleID,
		&user.EmailVerified,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
		&passwordHash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", domain.ErrUserNotFound
		}
		return nil, "", err
	}

	hash := ""
	if passwordHash != nil {
		hash = *passwordHash
	}

	return &user, hash, nil
}

// UserExistsByEmail checks if a user exists by email
func (r *PostgresRepository) UserExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

// CreateRefreshToken creates a new refresh token
func (r *PostgresRepository) CreateRefreshToken(ctx context.Context, params domain.CreateRefreshTokenParams) (*domain.RefreshToken, error) {
	query := `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, token_hash, expires_at, revoked, revoked_at, created_at
	`
	row := r.db.QueryRow(ctx, query, params.UserID, params.TokenHash, params.ExpiresAt)
	return scanRefreshToken(row)
}

// GetRefreshTokenByHash retrieves a live refresh token by hash
func (r *PostgresRepository) GetRefreshTokenByHash(ctx context.Context, hash string) (*domain.RefreshToken, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, revoked, revoked_at, created_at
		FROM refresh_tokens
		WHERE token_hash = $1 AND revoked = FALSE AND expires_at > NOW()
	`
	return scanRefreshToken(r.db.QueryRow(ctx, query, hash))
}

// RevokeRefreshTokenByHash revokes a refresh token by hash
func (r *PostgresRepository) RevokeRefreshTokenByHash(ctx context.Context, hash string) error {
	_, err := r.db.Exec(ctx, `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = NOW() WHERE token_hash = $1`, hash)
	return err
}

// RevokeUserRefreshTokens revokes all refresh tokens for a user
func (r *PostgresRepository) RevokeUserRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = NOW() WHERE user_id = $1`, userID)
	return err
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.AvatarURL,
		&user.GoogleID,
		&user.EmailVerified,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func scanRefreshToken(row pgx.Row) (*domain.RefreshToken, error) {
	var token domain.RefreshToken
	err := row.Scan(
		&token.ID,
		&token.UserID,
		&token.TokenHash,
		&token.ExpiresAt,
		&token.Revoked,
		&token.RevokedAt,
		&token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTokenRevoked
		}
		return nil, err
	}
	return &token, nil
}

// RunMaintenance drops expired tokens and recomputes mark end flags. The
// is_ended column is materialized so the hot read path never evaluates the
// time window itself.
func (r *PostgresRepository) RunMaintenance(ctx context.Context) error {
	queries := []string{
		`DELETE FROM refresh_tokens WHERE expires_at < NOW() OR (revoked = TRUE AND revoked_at < NOW() - INTERVAL '7 days')`,
		`UPDATE marks SET is_ended = TRUE WHERE is_ended = FALSE AND end_at < NOW()`,
		`UPDATE subscriptions SET status = 'expired' WHERE status = 'active' AND expires_at < NOW()`,
	}

	for _, query := range queries {
		if _, err := r.db.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// StartMaintenanceWorker starts a background worker for periodic cleanup
func (r *PostgresRepository) StartMaintenanceWorker(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = r.RunMaintenance(ctx)
			}
		}
	}()
}
