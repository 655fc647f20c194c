package entity

import "time"

// Estados de una verificación KYC.
const (
	VerificationPending    = "pending"
	VerificationInProgress = "in_progress"
	VerificationInReview   = "in_review"
	VerificationApproved   = "approved"
	VerificationRejected   = "rejected"
	VerificationExpired    = "expired"
	VerificationSuspended  = "suspended"
)

// Verification proyección de solo lectura de la última verificación KYC de un comerciante.
type Verification struct {
	MerchantID  string
	Status      string
	SubmittedAt time.Time
}
