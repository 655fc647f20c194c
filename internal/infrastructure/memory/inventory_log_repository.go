package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/sylistock-api/internal/domain/entity"
	"github.com/jhoicas/sylistock-api/internal/domain/repository"
)

var _ repository.InventoryLogRepository = (*InventoryLogRepo)(nil)

// InventoryLogRepo registro de movimientos en memoria (solo inserción).
type InventoryLogRepo struct {
	s  *Store
	tx *tx
}

func (r *InventoryLogRepo) Append(ctx context.Context, log *entity.InventoryLog) error {
	if r.tx != nil {
		r.tx.logs = append(r.tx.logs, copyLog(log))
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.logs = append(r.s.logs, copyLog(log))
	return nil
}

// ListByMerchant más reciente primero; limit <= 0 devuelve todos.
func (r *InventoryLogRepo) ListByMerchant(ctx context.Context, merchantID string, limit int) ([]*entity.InventoryLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*entity.InventoryLog
	for i := len(r.s.logs) - 1; i >= 0; i-- {
		l := r.s.logs[i]
		if l.MerchantID != merchantID {
			continue
		}
		c := copyLog(l)
		c.Product = copyProduct(r.s.products[l.ProductID])
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *InventoryLogRepo) CountSince(ctx context.Context, merchantID string, since time.Time) (int, error) {
	n := 0
	r.each(merchantID, func(l *entity.InventoryLog) {
		if !l.Timestamp.Before(since) {
			n++
		}
	})
	return n, nil
}

func (r *InventoryLogRepo) CountByProduct(ctx context.Context, merchantID, productID string) (int, error) {
	n := 0
	r.each(merchantID, func(l *entity.InventoryLog) {
		if l.ProductID == productID {
			n++
		}
	})
	return n, nil
}

func (r *InventoryLogRepo) CountBySourceSince(ctx context.Context, merchantID string, since time.Time) (map[string]int, int, error) {
	bySource := make(map[string]int)
	scans := 0
	r.each(merchantID, func(l *entity.InventoryLog) {
		if l.Timestamp.Before(since) {
			return
		}
		bySource[l.Source]++
		if l.Action == entity.ActionIN || l.Action == entity.ActionOUT {
			scans++
		}
	})
	return bySource, scans, nil
}

func (r *InventoryLogRepo) ListByActionSince(ctx context.Context, merchantID, action string, since time.Time) ([]*entity.InventoryLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*entity.InventoryLog
	for i := len(r.s.logs) - 1; i >= 0; i-- {
		l := r.s.logs[i]
		if l.MerchantID != merchantID || l.Action != action || l.Timestamp.Before(since) {
			continue
		}
		c := copyLog(l)
		c.Product = copyProduct(r.s.products[l.ProductID])
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

// each recorre los registros confirmados y, dentro de una tx, también los pendientes.
func (r *InventoryLogRepo) each(merchantID string, fn func(*entity.InventoryLog)) {
	r.s.mu.RLock()
	for _, l := range r.s.logs {
		if l.MerchantID == merchantID {
			fn(l)
		}
	}
	r.s.mu.RUnlock()
	if r.tx != nil {
		for _, l := range r.tx.logs {
			if l.MerchantID == merchantID {
				fn(l)
			}
		}
	}
}
