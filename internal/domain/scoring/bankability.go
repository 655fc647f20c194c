package scoring

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/sylistock-api/internal/domain/entity"
)

// Topes por factor. La suma de los topes es exactamente 100.
var (
	MaxVerification = decimal.NewFromInt(30)
	MaxActivity     = decimal.NewFromInt(30)
	MaxBusinessAge  = decimal.NewFromInt(20)
	MaxStockHealth  = decimal.NewFromInt(20)
	MaxScore        = decimal.NewFromInt(100)
)

// Inputs señales del comerciante que alimentan el puntaje.
type Inputs struct {
	VerificationStatus string // "" si no hay verificación
	RecentLogCount     int    // movimientos en la ventana reciente
	BusinessAgeDays    int
	TotalItems         int
	LowStockItems      int
}

// Breakdown puntaje por factor y total (0-100, 2 decimales).
type Breakdown struct {
	Verification decimal.Decimal `json:"verification"`
	Activity     decimal.Decimal `json:"activity"`
	BusinessAge  decimal.Decimal `json:"business_age"`
	StockHealth  decimal.Decimal `json:"stock_health"`
	Total        decimal.Decimal `json:"total"`
}

// Compute calcula el puntaje de bancabilidad (servicio de dominio, determinista y sin I/O).
func Compute(in Inputs) Breakdown {
	b := Breakdown{
		Verification: VerificationPoints(in.VerificationStatus),
		Activity:     ActivityPoints(in.RecentLogCount),
		BusinessAge:  BusinessAgePoints(in.BusinessAgeDays),
		StockHealth:  StockHealthPoints(in.TotalItems, in.LowStockItems),
	}
	total := b.Verification.Add(b.Activity).Add(b.BusinessAge).Add(b.StockHealth)
	b.Total = clamp(total, decimal.Zero, MaxScore).Round(2)
	return b
}

// VerificationPoints aprobado 30, en curso/en revisión 15, cualquier otro estado 0.
func VerificationPoints(status string) decimal.Decimal {
	switch status {
	case entity.VerificationApproved:
		return MaxVerification
	case entity.VerificationInProgress, entity.VerificationInReview:
		return decimal.NewFromInt(15)
	}
	return decimal.Zero
}

// ActivityPoints según cantidad de movimientos recientes: >=100 → 30, >=50 → 20, >=10 → 10.
func ActivityPoints(recentLogs int) decimal.Decimal {
	switch {
	case recentLogs >= 100:
		return MaxActivity
	case recentLogs >= 50:
		return decimal.NewFromInt(20)
	case recentLogs >= 10:
		return decimal.NewFromInt(10)
	}
	return decimal.Zero
}

// BusinessAgePoints según antigüedad en días: >365 → 20, >180 → 15, >30 → 10.
func BusinessAgePoints(days int) decimal.Decimal {
	switch {
	case days > 365:
		return MaxBusinessAge
	case days > 180:
		return decimal.NewFromInt(15)
	case days > 30:
		return decimal.NewFromInt(10)
	}
	return decimal.Zero
}

// StockHealthPoints = round((1 - low/total) * 20, 2); 0 si el comerciante no tiene ítems.
// El factor se calcula en float64 y se redondea sobre su valor binario exacto (mitad a par),
// así 4000 ítems con 3 bajos dan 19.98 y no 19.99.
func StockHealthPoints(total, low int) decimal.Decimal {
	if total <= 0 {
		return decimal.Zero
	}
	if low < 0 {
		low = 0
	}
	if low > total {
		low = total
	}
	ratio := 1 - float64(low)/float64(total)
	return decimal.RequireFromString(strconv.FormatFloat(ratio*MaxStockHealth.InexactFloat64(), 'f', 2, 64))
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}
