package repository

import (
	"context"

	"github.com/jhoicas/sylistock-api/internal/domain/entity"
)

// VerificationRepository lectura del estado KYC; el CRUD de KYC vive fuera de este servicio.
type VerificationRepository interface {
	// Latest devuelve la verificación más reciente por fecha de envío, o nil si no hay ninguna.
	Latest(ctx context.Context, merchantID string) (*entity.Verification, error)
}
