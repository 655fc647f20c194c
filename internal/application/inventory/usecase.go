package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/sylistock-api/internal/application/dto"
	"github.com/jhoicas/sylistock-api/internal/application/ledger"
	"github.com/jhoicas/sylistock-api/internal/domain"
	"github.com/jhoicas/sylistock-api/internal/domain/entity"
	"github.com/jhoicas/sylistock-api/internal/domain/repository"
	"github.com/jhoicas/sylistock-api/pkg/logger"
)

// UseCase operaciones sobre el inventario que no mueven cantidades: precios, umbral de alerta y listado.
type UseCase struct {
	products  repository.ProductRepository
	stock     repository.StockItemRepository
	merchants repository.MerchantRepository
	trigger   ledger.ScoreTrigger
	now       func() time.Time
	log       *logger.Logger
}

// NewUseCase construye el caso de uso. trigger puede ser nil.
func NewUseCase(
	products repository.ProductRepository,
	stock repository.StockItemRepository,
	merchants repository.MerchantRepository,
	trigger ledger.ScoreTrigger,
	log *logger.Logger,
) *UseCase {
	if log == nil {
		log = logger.NewNop()
	}
	return &UseCase{
		products:  products,
		stock:     stock,
		merchants: merchants,
		trigger:   trigger,
		now:       time.Now,
		log:       log.Component("inventory"),
	}
}

// UpdatePrices fija costo y/o precio de venta de un ítem existente. La cantidad no cambia.
func (uc *UseCase) UpdatePrices(ctx context.Context, merchantID, barcode string, in dto.UpdatePricesRequest) (*dto.StockItemResponse, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, fmt.Errorf("%w: barcode requerido", domain.ErrInvalidInput)
	}
	if in.CostPrice == nil && in.SalePrice == nil {
		return nil, fmt.Errorf("%w: indique cost_price o sale_price", domain.ErrInvalidInput)
	}
	if (in.CostPrice != nil && in.CostPrice.IsNegative()) || (in.SalePrice != nil && in.SalePrice.IsNegative()) {
		return nil, fmt.Errorf("%w: los precios no pueden ser negativos", domain.ErrInvalidInput)
	}

	product, err := uc.products.GetByBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}

	item, err := uc.stock.UpdatePrices(ctx, merchantID, product.ID, in.CostPrice, in.SalePrice, uc.now().UTC())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrStockItemNotFound
	}
	item.Product = product
	resp := ToStockItemResponse(item)
	return &resp, nil
}

// SetAlertThreshold persiste el umbral de stock bajo y recalcula el puntaje (la salud de stock depende de él).
// Un fallo de recálculo no revierte el umbral; se devuelve como advertencia.
func (uc *UseCase) SetAlertThreshold(ctx context.Context, merchantID string, threshold int64) (warning error, err error) {
	if threshold < 0 {
		return nil, fmt.Errorf("%w: el umbral no puede ser negativo", domain.ErrInvalidInput)
	}
	if err := uc.merchants.UpdateAlertThreshold(ctx, merchantID, threshold); err != nil {
		return nil, err
	}
	uc.log.Info().Str("merchant_id", merchantID).Int64("threshold", threshold).Msg("umbral de alerta actualizado")

	if uc.trigger != nil {
		if terr := uc.trigger.Trigger(ctx, merchantID); terr != nil {
			uc.log.Warn().Err(terr).Str("merchant_id", merchantID).Msg("recálculo de puntaje pendiente")
			return terr, nil
		}
	}
	return nil, nil
}

// ListStock inventario completo del comerciante.
func (uc *UseCase) ListStock(ctx context.Context, merchantID string) ([]dto.StockItemResponse, error) {
	items, err := uc.stock.ListByMerchant(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, ToStockItemResponse(it))
	}
	return out, nil
}

// ToStockItemResponse mapea la entidad al DTO.
func ToStockItemResponse(it *entity.StockItem) dto.StockItemResponse {
	r := dto.StockItemResponse{
		ProductID: it.ProductID,
		Quantity:  it.Quantity,
		CostPrice: it.CostPrice,
		SalePrice: it.SalePrice,
		UpdatedAt: it.UpdatedAt,
	}
	if it.Product != nil {
		r.Barcode = it.Product.Barcode
		r.ProductName = it.Product.Name
	}
	return r
}
