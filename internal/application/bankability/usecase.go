package bankability

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/sylistock-api/internal/application/ledger"
	"github.com/jhoicas/sylistock-api/internal/domain"
	"github.com/jhoicas/sylistock-api/internal/domain/entity"
	"github.com/jhoicas/sylistock-api/internal/domain/repository"
	"github.com/jhoicas/sylistock-api/internal/domain/scoring"
	"github.com/jhoicas/sylistock-api/pkg/logger"
)

var _ ledger.ScoreTrigger = (*UseCase)(nil)

// DefaultActivityWindowDays ventana de actividad reciente para el factor de actividad.
const DefaultActivityWindowDays = 30

// Config parámetros del recálculo.
type Config struct {
	ActivityWindowDays int
	Now                func() time.Time
}

// UseCase recalcula y persiste el puntaje de bancabilidad de un comerciante.
type UseCase struct {
	merchants     repository.MerchantRepository
	verifications repository.VerificationRepository
	logs          repository.InventoryLogRepository
	stock         repository.StockItemRepository
	cfg           Config
	log           *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	merchants repository.MerchantRepository,
	verifications repository.VerificationRepository,
	logs repository.InventoryLogRepository,
	stock repository.StockItemRepository,
	cfg Config,
	log *logger.Logger,
) *UseCase {
	if cfg.ActivityWindowDays <= 0 {
		cfg.ActivityWindowDays = DefaultActivityWindowDays
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &UseCase{
		merchants:     merchants,
		verifications: verifications,
		logs:          logs,
		stock:         stock,
		cfg:           cfg,
		log:           log.Component("bankability"),
	}
}

// Result puntaje recalculado con sus entradas.
type Result struct {
	MerchantID string
	Inputs     scoring.Inputs
	Breakdown  scoring.Breakdown
	ComputedAt time.Time
}

// Recompute lee las señales del comerciante, calcula el puntaje y lo persiste.
// Cualquier fallo se devuelve envuelto en ErrRecomputationFailed y el puntaje anterior queda intacto.
func (uc *UseCase) Recompute(ctx context.Context, merchantID string) (*Result, error) {
	res, err := uc.recompute(ctx, merchantID)
	if err != nil {
		uc.log.Warn().Err(err).Str("merchant_id", merchantID).Msg("falló el recálculo del puntaje")
		return nil, fmt.Errorf("%w: %w", domain.ErrRecomputationFailed, err)
	}
	uc.log.Debug().
		Str("merchant_id", merchantID).
		Str("score", res.Breakdown.Total.StringFixed(2)).
		Msg("puntaje recalculado")
	return res, nil
}

// Trigger adapta Recompute al puerto del motor de movimientos.
func (uc *UseCase) Trigger(ctx context.Context, merchantID string) error {
	_, err := uc.Recompute(ctx, merchantID)
	return err
}

// Get devuelve el perfil con el último puntaje persistido.
func (uc *UseCase) Get(ctx context.Context, merchantID string) (*entity.MerchantProfile, error) {
	m, err := uc.merchants.GetByID(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrMerchantNotFound
	}
	return m, nil
}

func (uc *UseCase) recompute(ctx context.Context, merchantID string) (*Result, error) {
	merchant, err := uc.merchants.GetByID(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	if merchant == nil {
		return nil, domain.ErrMerchantNotFound
	}

	now := uc.cfg.Now().UTC()
	since := now.AddDate(0, 0, -uc.cfg.ActivityWindowDays)

	var (
		verification *entity.Verification
		recent       int
		counts       repository.StockCounts
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := uc.verifications.Latest(gctx, merchant.ID)
		verification = v
		return err
	})
	g.Go(func() error {
		n, err := uc.logs.CountSince(gctx, merchant.ID, since)
		recent = n
		return err
	})
	g.Go(func() error {
		c, err := uc.stock.Count(gctx, merchant.ID, merchant.AlertThreshold)
		counts = c
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	in := scoring.Inputs{
		RecentLogCount:  recent,
		BusinessAgeDays: merchant.BusinessAgeDays,
		TotalItems:      counts.Total,
		LowStockItems:   counts.Low,
	}
	if verification != nil {
		in.VerificationStatus = verification.Status
	}
	breakdown := scoring.Compute(in)

	if err := uc.merchants.UpdateScore(ctx, merchant.ID, breakdown.Total); err != nil {
		return nil, err
	}
	return &Result{
		MerchantID: merchant.ID,
		Inputs:     in,
		Breakdown:  breakdown,
		ComputedAt: now,
	}, nil
}
