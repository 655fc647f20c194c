package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/sylistock-api/internal/domain"
	"github.com/jhoicas/sylistock-api/internal/domain/entity"
	"github.com/jhoicas/sylistock-api/internal/domain/repository"
	"github.com/jhoicas/sylistock-api/pkg/logger"
)

// UnknownBarcodePolicy qué hacer si el código de barras no está en el catálogo.
type UnknownBarcodePolicy string

const (
	RejectUnknown     UnknownBarcodePolicy = "reject"
	AutoCreateUnknown UnknownBarcodePolicy = "auto_create"
)

// Config parámetros del motor; se pasan al construirlo, sin estado global.
type Config struct {
	OnUnknownBarcode UnknownBarcodePolicy
	// Now reloj del servidor para la marca de tiempo de los movimientos (nil = time.Now).
	Now func() time.Time
}

// UseCase aplica movimientos de stock de forma transaccional: bloqueo exclusivo por
// (comerciante, producto), validación de cantidad no negativa, registro de auditoría y Commit/Rollback.
type UseCase struct {
	txRunner  TxRunner
	merchants repository.MerchantRepository
	trigger   ScoreTrigger
	cfg       Config
	log       *logger.Logger
}

// NewUseCase construye el motor. trigger puede ser nil (sin recálculo).
func NewUseCase(
	txRunner TxRunner,
	merchants repository.MerchantRepository,
	trigger ScoreTrigger,
	cfg Config,
	log *logger.Logger,
) *UseCase {
	if cfg.OnUnknownBarcode == "" {
		cfg.OnUnknownBarcode = RejectUnknown
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &UseCase{
		txRunner:  txRunner,
		merchants: merchants,
		trigger:   trigger,
		cfg:       cfg,
		log:       log.Component("ledger"),
	}
}

// MovementInput entrada de un movimiento. Delta con signo: positivo entra, negativo sale.
type MovementInput struct {
	MerchantID string
	Barcode    string
	Delta      int64
	Action     string
	Source     string
	DeviceID   string
	Reason     string

	// ProductTemplate nombre/descripción a usar si el producto se crea en este movimiento.
	ProductTemplate *entity.Product
	// AutoCreate crea el producto desconocido sin importar la política configurada.
	AutoCreate bool
	// Precios opcionales que se fijan junto con el movimiento (importación).
	CostPrice *decimal.Decimal
	SalePrice *decimal.Decimal

	// SetQuantity fija la cantidad absoluta (conteo físico). Delta se ignora: se calcula como
	// SetQuantity - actual con la fila ya bloqueada, y el movimiento se registra como ADJ.
	SetQuantity *int64
}

// MovementResult resultado de un movimiento confirmado.
type MovementResult struct {
	NewQuantity    int64
	Product        *entity.Product
	StockItem      *entity.StockItem
	Log            *entity.InventoryLog
	ProductCreated bool
	// Unchanged conteo igual a la cantidad actual: no hubo movimiento ni registro (Log nil).
	Unchanged bool
	// Warning no nil si el recálculo del puntaje falló; el movimiento igual quedó confirmado.
	Warning error
}

// ApplyStockMovement valida la entrada, resuelve producto y stock, toma el bloqueo de fila,
// aplica el delta y registra el movimiento en una sola transacción.
// Errores: ErrInvalidInput, ErrMerchantNotFound, ErrProductNotFound, ErrInsufficientStock, ErrLockTimeout.
func (uc *UseCase) ApplyStockMovement(ctx context.Context, in MovementInput) (*MovementResult, error) {
	in, err := normalize(in)
	if err != nil {
		return nil, err
	}

	merchant, err := uc.merchants.GetByID(ctx, in.MerchantID)
	if err != nil {
		return nil, err
	}
	if merchant == nil {
		return nil, domain.ErrMerchantNotFound
	}

	now := uc.cfg.Now().UTC()
	res := &MovementResult{}

	err = uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		stockRepo repository.StockItemRepository,
		logRepo repository.InventoryLogRepository,
	) error {
		product, created, err := uc.resolveProduct(ctx, productRepo, in, now)
		if err != nil {
			return err
		}

		// Bloquea la fila (comerciante, producto) hasta el Commit/Rollback.
		item, err := stockRepo.LockOrCreate(ctx, merchant.ID, product.ID, now)
		if err != nil {
			return err
		}

		delta, reason := in.Delta, in.Reason
		if in.SetQuantity != nil {
			delta = *in.SetQuantity - item.Quantity
			if delta == 0 {
				// sin movimiento; los precios enviados igual se guardan
				if in.CostPrice != nil || in.SalePrice != nil {
					applyPrices(item, in, now)
					if err := stockRepo.Save(ctx, item); err != nil {
						return err
					}
				}
				res.NewQuantity = item.Quantity
				res.Product = product
				res.StockItem = item
				res.ProductCreated = created
				res.Unchanged = true
				return nil
			}
			if reason == "" {
				reason = fmt.Sprintf("conteo físico: %d -> %d", item.Quantity, *in.SetQuantity)
			}
		}

		newQty := item.Quantity + delta
		if newQty < 0 {
			return fmt.Errorf("%w: disponible %d, solicitado %d", domain.ErrInsufficientStock, item.Quantity, -delta)
		}
		item.Quantity = newQty
		applyPrices(item, in, now)
		if err := stockRepo.Save(ctx, item); err != nil {
			return err
		}

		entry := &entity.InventoryLog{
			ID:              uuid.New().String(),
			MerchantID:      merchant.ID,
			ProductID:       product.ID,
			Action:          in.Action,
			QuantityChanged: delta,
			Source:          in.Source,
			DeviceID:        in.DeviceID,
			Reason:          reason,
			Timestamp:       now,
		}
		if err := logRepo.Append(ctx, entry); err != nil {
			return err
		}

		res.NewQuantity = newQty
		res.Product = product
		res.StockItem = item
		res.Log = entry
		res.ProductCreated = created
		return nil
	})
	if err != nil {
		if !isBusinessError(err) {
			uc.log.Error().Err(err).
				Str("merchant_id", in.MerchantID).
				Str("barcode", in.Barcode).
				Msg("movimiento de stock revertido")
		}
		return nil, err
	}

	if res.Unchanged {
		uc.log.Debug().
			Str("merchant_id", merchant.ID).
			Str("barcode", in.Barcode).
			Int64("quantity", res.NewQuantity).
			Msg("conteo sin cambios")
		return res, nil
	}

	uc.log.Debug().
		Str("merchant_id", merchant.ID).
		Str("barcode", in.Barcode).
		Int64("delta", res.Log.QuantityChanged).
		Int64("new_quantity", res.NewQuantity).
		Str("source", in.Source).
		Str("device_id", in.DeviceID).
		Msg("movimiento de stock confirmado")

	// El movimiento ya es un hecho durable; el puntaje es un resumen derivado.
	if uc.trigger != nil {
		if terr := uc.trigger.Trigger(ctx, merchant.ID); terr != nil {
			if !errors.Is(terr, domain.ErrRecomputationFailed) {
				terr = fmt.Errorf("%w: %w", domain.ErrRecomputationFailed, terr)
			}
			uc.log.Warn().Err(terr).Str("merchant_id", merchant.ID).Msg("recálculo de puntaje pendiente")
			res.Warning = terr
		}
	}
	return res, nil
}

// ProcessScan un escaneo individual: IN suma 1, OUT resta 1.
func (uc *UseCase) ProcessScan(ctx context.Context, merchantID, barcode, action, source, deviceID string) (*MovementResult, error) {
	a, ok := entity.ParseAction(action)
	if !ok || a == entity.ActionADJ {
		return nil, fmt.Errorf("%w: acción de escaneo debe ser IN u OUT", domain.ErrInvalidInput)
	}
	delta := int64(1)
	if a == entity.ActionOUT {
		delta = -1
	}
	return uc.ApplyStockMovement(ctx, MovementInput{
		MerchantID: merchantID,
		Barcode:    barcode,
		Delta:      delta,
		Action:     a,
		Source:     source,
		DeviceID:   deviceID,
	})
}

func (uc *UseCase) resolveProduct(
	ctx context.Context,
	productRepo repository.ProductRepository,
	in MovementInput,
	now time.Time,
) (*entity.Product, bool, error) {
	product, err := productRepo.GetByBarcode(ctx, in.Barcode)
	if err != nil {
		return nil, false, err
	}
	if product != nil {
		return product, false, nil
	}
	if uc.cfg.OnUnknownBarcode != AutoCreateUnknown && !in.AutoCreate {
		return nil, false, fmt.Errorf("%w: %s", domain.ErrProductNotFound, in.Barcode)
	}

	candidate := entity.PlaceholderProduct(in.Barcode)
	if t := in.ProductTemplate; t != nil && strings.TrimSpace(t.Name) != "" {
		candidate.Name = strings.TrimSpace(t.Name)
		candidate.Description = t.Description
	}
	candidate.ID = uuid.New().String()
	candidate.CreatedAt = now
	return productRepo.GetOrCreate(ctx, candidate)
}

func applyPrices(item *entity.StockItem, in MovementInput, now time.Time) {
	if in.CostPrice != nil {
		item.CostPrice = *in.CostPrice
	}
	if in.SalePrice != nil {
		item.SalePrice = *in.SalePrice
	}
	item.UpdatedAt = now
}

// normalize valida y normaliza la entrada sin tocar almacenamiento.
func normalize(in MovementInput) (MovementInput, error) {
	in.MerchantID = strings.TrimSpace(in.MerchantID)
	in.Barcode = strings.TrimSpace(in.Barcode)
	in.DeviceID = strings.TrimSpace(in.DeviceID)

	if in.MerchantID == "" {
		return in, fmt.Errorf("%w: merchant_id requerido", domain.ErrInvalidInput)
	}
	if in.Barcode == "" {
		return in, fmt.Errorf("%w: barcode requerido", domain.ErrInvalidInput)
	}
	if in.SetQuantity != nil {
		if *in.SetQuantity < 0 {
			return in, fmt.Errorf("%w: la cantidad contada no puede ser negativa", domain.ErrInvalidInput)
		}
		if in.Action == "" {
			in.Action = entity.ActionADJ
		}
		in.Delta = 0
	} else if in.Delta == 0 {
		return in, fmt.Errorf("%w: la cantidad no puede ser cero", domain.ErrInvalidInput)
	}
	if in.DeviceID == "" {
		return in, fmt.Errorf("%w: device_id requerido", domain.ErrInvalidInput)
	}
	if (in.CostPrice != nil && in.CostPrice.IsNegative()) || (in.SalePrice != nil && in.SalePrice.IsNegative()) {
		return in, fmt.Errorf("%w: los precios no pueden ser negativos", domain.ErrInvalidInput)
	}
	action, ok := entity.ParseAction(in.Action)
	if !ok {
		return in, fmt.Errorf("%w: acción desconocida %q", domain.ErrInvalidInput, in.Action)
	}
	source, ok := entity.ParseSource(in.Source)
	if !ok {
		return in, fmt.Errorf("%w: origen desconocido %q", domain.ErrInvalidInput, in.Source)
	}
	if in.SetQuantity != nil && action != entity.ActionADJ {
		return in, fmt.Errorf("%w: un conteo se registra como ADJ", domain.ErrInvalidInput)
	}
	if action == entity.ActionIN && in.Delta < 0 {
		return in, fmt.Errorf("%w: IN requiere cantidad positiva", domain.ErrInvalidInput)
	}
	if action == entity.ActionOUT && in.Delta > 0 {
		return in, fmt.Errorf("%w: OUT requiere cantidad negativa", domain.ErrInvalidInput)
	}
	in.Action = action
	in.Source = source
	return in, nil
}

func isBusinessError(err error) bool {
	return errors.Is(err, domain.ErrInsufficientStock) ||
		errors.Is(err, domain.ErrProductNotFound) ||
		errors.Is(err, domain.ErrInvalidInput)
}
