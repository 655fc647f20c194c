package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/sylistock-api/internal/domain"
	"github.com/jhoicas/sylistock-api/internal/domain/entity"
)

// CountRow cantidad contada físicamente para un código de barras.
type CountRow struct {
	Barcode   string
	Quantity  int64
	CostPrice *decimal.Decimal
	SalePrice *decimal.Decimal
}

// CountResult resumen de una corrección masiva por conteo.
type CountResult struct {
	Updated   int        `json:"updated"`
	Unchanged int        `json:"unchanged"`
	Skipped   int        `json:"skipped"`
	Errors    []RowError `json:"errors,omitempty"`
	Warning   error      `json:"-"`
}

// SetCounts fija la cantidad de cada fila al valor contado. Cada fila es un ajuste ADJ
// independiente con delta = contado - actual, leído con la fila bloqueada.
// Un conteo igual al actual no registra movimiento. Un error en una fila no detiene las demás.
func (uc *UseCase) SetCounts(ctx context.Context, merchantID, deviceID string, rows []CountRow) (*CountResult, error) {
	if strings.TrimSpace(merchantID) == "" {
		return nil, fmt.Errorf("%w: merchant_id requerido", domain.ErrInvalidInput)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sin filas para ajustar", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(deviceID) == "" {
		deviceID = "bulk-count"
	}

	res := &CountResult{}
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		target := row.Quantity
		out, err := uc.ApplyStockMovement(ctx, MovementInput{
			MerchantID:  merchantID,
			Barcode:     row.Barcode,
			Action:      entity.ActionADJ,
			Source:      entity.SourceBulkImport,
			DeviceID:    deviceID,
			CostPrice:   row.CostPrice,
			SalePrice:   row.SalePrice,
			SetQuantity: &target,
		})
		if err != nil {
			res.Skipped++
			res.Errors = append(res.Errors, RowError{Row: i + 1, Barcode: row.Barcode, Error: err.Error()})
			if errors.Is(err, domain.ErrMerchantNotFound) {
				return res, err
			}
			continue
		}
		if out.Unchanged {
			res.Unchanged++
			continue
		}
		res.Updated++
		if out.Warning != nil {
			res.Warning = out.Warning
		}
	}

	uc.log.Info().
		Str("merchant_id", merchantID).
		Int("updated", res.Updated).
		Int("unchanged", res.Unchanged).
		Int("skipped", res.Skipped).
		Msg("corrección por conteo finalizada")
	return res, nil
}
