package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/sylistock-api/internal/domain"
	"github.com/jhoicas/sylistock-api/internal/domain/entity"
	"github.com/jhoicas/sylistock-api/internal/domain/repository"
)

var (
	_ repository.MerchantRepository     = (*MerchantRepo)(nil)
	_ repository.VerificationRepository = (*VerificationRepo)(nil)
)

// MerchantRepo perfiles de comerciante sobre PostgreSQL.
type MerchantRepo struct {
	q Querier
}

// NewMerchantRepository construye el adaptador.
func NewMerchantRepository(q Querier) *MerchantRepo {
	return &MerchantRepo{q: q}
}

func (r *MerchantRepo) Create(ctx context.Context, m *entity.MerchantProfile) error {
	query := `
		INSERT INTO merchant_profiles (id, user_id, business_name, location, bankability_score, business_age_days, alert_threshold, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.UserID, m.BusinessName, m.Location, m.BankabilityScore, m.BusinessAgeDays, m.AlertThreshold, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert merchant: %w", err)
	}
	return nil
}

func (r *MerchantRepo) GetByID(ctx context.Context, id string) (*entity.MerchantProfile, error) {
	query := `
		SELECT id, user_id, business_name, location, bankability_score, business_age_days, alert_threshold, created_at, updated_at
		FROM merchant_profiles WHERE id = $1`
	var m entity.MerchantProfile
	err := r.q.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.UserID, &m.BusinessName, &m.Location, &m.BankabilityScore, &m.BusinessAgeDays, &m.AlertThreshold, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		// un id con formato inválido no puede existir
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get merchant: %w", err)
	}
	return &m, nil
}

func (r *MerchantRepo) UpdateScore(ctx context.Context, merchantID string, score decimal.Decimal) error {
	return r.exec(ctx, "update score",
		`UPDATE merchant_profiles SET bankability_score = $2, updated_at = now() WHERE id = $1`,
		merchantID, score)
}

func (r *MerchantRepo) UpdateAlertThreshold(ctx context.Context, merchantID string, threshold int64) error {
	return r.exec(ctx, "update alert threshold",
		`UPDATE merchant_profiles SET alert_threshold = $2, updated_at = now() WHERE id = $1`,
		merchantID, threshold)
}

func (r *MerchantRepo) exec(ctx context.Context, op, query string, args ...any) error {
	cmd, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		if isInvalidText(err) {
			return domain.ErrMerchantNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrMerchantNotFound
	}
	return nil
}

// VerificationRepo lectura de la tabla de verificaciones KYC (escrita por otro servicio).
type VerificationRepo struct {
	q Querier
}

// NewVerificationRepository construye el adaptador.
func NewVerificationRepository(q Querier) *VerificationRepo {
	return &VerificationRepo{q: q}
}

func (r *VerificationRepo) Latest(ctx context.Context, merchantID string) (*entity.Verification, error) {
	query := `
		SELECT merchant_id, status, submitted_at
		FROM verifications WHERE merchant_id = $1
		ORDER BY submitted_at DESC
		LIMIT 1`
	var v entity.Verification
	err := r.q.QueryRow(ctx, query, merchantID).Scan(&v.MerchantID, &v.Status, &v.SubmittedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest verification: %w", err)
	}
	return &v, nil
}
