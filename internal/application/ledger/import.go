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

// ImportRow fila ya parseada de una importación masiva.
type ImportRow struct {
	Barcode     string
	Name        string
	Description string
	Quantity    int64
	CostPrice   *decimal.Decimal
	SalePrice   *decimal.Decimal
}

// RowError error de una fila; Row es 1-based.
type RowError struct {
	Row     int    `json:"row"`
	Barcode string `json:"barcode"`
	Error   string `json:"error"`
}

// ImportResult resumen de la importación.
type ImportResult struct {
	Imported int        `json:"imported"`
	Skipped  int        `json:"skipped"`
	Errors   []RowError `json:"errors,omitempty"`
	// Warning último fallo de recálculo de puntaje, si lo hubo.
	Warning error `json:"-"`
}

// ImportRows aplica cada fila como un movimiento independiente con origen BULK_IMPORT.
// Las filas con cantidad positiva entran como IN y las negativas como ADJ.
// Un error en una fila no detiene las demás.
func (uc *UseCase) ImportRows(ctx context.Context, merchantID, deviceID string, rows []ImportRow) (*ImportResult, error) {
	if strings.TrimSpace(merchantID) == "" {
		return nil, fmt.Errorf("%w: merchant_id requerido", domain.ErrInvalidInput)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sin filas para importar", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(deviceID) == "" {
		deviceID = "bulk-import"
	}

	res := &ImportResult{}
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		out, err := uc.importRow(ctx, merchantID, deviceID, row)
		if err != nil {
			res.Skipped++
			res.Errors = append(res.Errors, RowError{Row: i + 1, Barcode: row.Barcode, Error: err.Error()})
			if errors.Is(err, domain.ErrMerchantNotFound) {
				// sin comerciante ninguna fila puede aplicarse
				return res, err
			}
			continue
		}
		res.Imported++
		if out.Warning != nil {
			res.Warning = out.Warning
		}
	}

	uc.log.Info().
		Str("merchant_id", merchantID).
		Int("imported", res.Imported).
		Int("skipped", res.Skipped).
		Msg("importación masiva finalizada")
	return res, nil
}

func (uc *UseCase) importRow(ctx context.Context, merchantID, deviceID string, row ImportRow) (*MovementResult, error) {
	action := entity.ActionIN
	if row.Quantity < 0 {
		action = entity.ActionADJ
	}

	in := MovementInput{
		MerchantID: merchantID,
		Barcode:    row.Barcode,
		Delta:      row.Quantity,
		Action:     action,
		Source:     entity.SourceBulkImport,
		DeviceID:   deviceID,
		Reason:     "importación masiva",
		ProductTemplate: &entity.Product{
			Name:        row.Name,
			Description: row.Description,
		},
		AutoCreate: true,
		CostPrice:  row.CostPrice,
		SalePrice:  row.SalePrice,
	}
	return uc.ApplyStockMovement(ctx, in)
}
