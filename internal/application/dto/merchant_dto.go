package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AlertThresholdRequest body de PUT /api/merchants/me/alert-threshold.
type AlertThresholdRequest struct {
	Threshold *int64 `json:"threshold"`
}

// MerchantResponse perfil con el último puntaje persistido.
type MerchantResponse struct {
	ID               string          `json:"id"`
	BusinessName     string          `json:"business_name"`
	Location         string          `json:"location,omitempty"`
	BankabilityScore decimal.Decimal `json:"bankability_score"`
	BusinessAgeDays  int             `json:"business_age_days"`
	AlertThreshold   int64           `json:"alert_threshold"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ScoreBreakdownDTO puntaje por factor.
type ScoreBreakdownDTO struct {
	Verification decimal.Decimal `json:"verification"`
	Activity     decimal.Decimal `json:"activity"`
	BusinessAge  decimal.Decimal `json:"business_age"`
	StockHealth  decimal.Decimal `json:"stock_health"`
	Total        decimal.Decimal `json:"total"`
}

// ScoreResponse resultado de POST /api/merchants/me/score/recompute.
type ScoreResponse struct {
	MerchantID string            `json:"merchant_id"`
	Score      decimal.Decimal   `json:"score"`
	Breakdown  ScoreBreakdownDTO `json:"breakdown"`
	ComputedAt time.Time         `json:"computed_at"`
}
