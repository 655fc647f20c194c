package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/sylistock-api/internal/domain"
	"github.com/jhoicas/sylistock-api/internal/domain/entity"
	"github.com/jhoicas/sylistock-api/internal/domain/repository"
)

var (
	_ repository.MerchantRepository     = (*MerchantRepo)(nil)
	_ repository.VerificationRepository = (*VerificationRepo)(nil)
)

// MerchantRepo perfiles de comerciante en memoria.
type MerchantRepo struct {
	s *Store
}

func (r *MerchantRepo) Create(ctx context.Context, merchant *entity.MerchantProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.merchants[merchant.ID]; ok {
		return domain.ErrDuplicate
	}
	c := *merchant
	r.s.merchants[merchant.ID] = &c
	return nil
}

func (r *MerchantRepo) GetByID(ctx context.Context, id string) (*entity.MerchantProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.merchants[id]
	if !ok {
		return nil, nil
	}
	c := *m
	return &c, nil
}

func (r *MerchantRepo) UpdateScore(ctx context.Context, merchantID string, score decimal.Decimal) error {
	return r.update(merchantID, func(m *entity.MerchantProfile) { m.BankabilityScore = score })
}

func (r *MerchantRepo) UpdateAlertThreshold(ctx context.Context, merchantID string, threshold int64) error {
	return r.update(merchantID, func(m *entity.MerchantProfile) { m.AlertThreshold = threshold })
}

func (r *MerchantRepo) update(merchantID string, fn func(*entity.MerchantProfile)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.merchants[merchantID]
	if !ok {
		return domain.ErrMerchantNotFound
	}
	fn(m)
	m.UpdatedAt = time.Now().UTC()
	return nil
}

// VerificationRepo proyección KYC en memoria.
type VerificationRepo struct {
	s *Store
}

// Add registra una verificación (el flujo KYC vive fuera de este servicio).
func (r *VerificationRepo) Add(ctx context.Context, v *entity.Verification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *v
	r.s.verifications[v.MerchantID] = append(r.s.verifications[v.MerchantID], &c)
	return nil
}

func (r *VerificationRepo) Latest(ctx context.Context, merchantID string) (*entity.Verification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	vs := r.s.verifications[merchantID]
	if len(vs) == 0 {
		return nil, nil
	}
	sorted := make([]*entity.Verification, len(vs))
	copy(sorted, vs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].SubmittedAt.After(sorted[j].SubmittedAt) })
	c := *sorted[0]
	return &c, nil
}
