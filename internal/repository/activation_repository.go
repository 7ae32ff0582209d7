package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/bitminesocial/mining-service/internal/domain"
	"github.com/bitminesocial/mining-service/pkg/database"
	"github.com/google/uuid"
)

// activationRepository implements ActivationRepository interface
type activationRepository struct {
	db *database.Postgres
}

// NewActivationRepository creates a new activation repository
func NewActivationRepository(db *database.Postgres) ActivationRepository {
	return &activationRepository{db: db}
}

// Create records one activation or upgrade
func (r *activationRepository) Create(ctx context.Context, activation *domain.Activation) error {
	query := `
		INSERT INTO activations (id, user_id, amount_usd, license_key, activated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if activation.ID == "" {
		activation.ID = uuid.New().String()
	}
	if activation.ActivatedAt.IsZero() {
		activation.ActivatedAt = time.Now()
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		activation.ID,
		activation.UserID,
		activation.AmountUsd,
		activation.LicenseKey,
		activation.ActivatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to record activation: %w", err)
	}

	return nil
}

// ListByUserID returns a user's activation history, newest first
func (r *activationRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Activation, error) {
	query := `
		SELECT id, user_id, amount_usd, license_key, activated_at
		FROM activations
		WHERE user_id = $1
		ORDER BY activated_at DESC
	`

	rows, err := r.db.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activations: %w", err)
	}
	defer rows.Close()

	var activations []domain.Activation
	for rows.Next() {
		var a domain.Activation
		if err := rows.Scan(&a.ID, &a.UserID, &a.AmountUsd, &a.LicenseKey, &a.ActivatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activation: %w", err)
		}
		activations = append(activations, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activations: %w", err)
	}

	return activations, nil
}
