package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/sylistock-api/internal/domain/entity"
)

// MerchantRepository puerto para perfiles de comerciante.
type MerchantRepository interface {
	Create(ctx context.Context, merchant *entity.MerchantProfile) error
	GetByID(ctx context.Context, id string) (*entity.MerchantProfile, error)
	// UpdateScore reemplaza el puntaje (último en escribir gana).
	UpdateScore(ctx context.Context, merchantID string, score decimal.Decimal) error
	UpdateAlertThreshold(ctx context.Context, merchantID string, threshold int64) error
}
