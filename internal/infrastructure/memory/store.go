package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/sylistock-api/internal/application/ledger"
	"github.com/jhoicas/sylistock-api/internal/domain"
	"github.com/jhoicas/sylistock-api/internal/domain/entity"
	"github.com/jhoicas/sylistock-api/internal/domain/repository"
)

var _ ledger.TxRunner = (*Store)(nil)

// errNoTx uso de un método que solo es válido dentro de Run.
var errNoTx = errors.New("memory: operación requiere transacción")

// Store almacén en memoria de un solo proceso. Implementa los mismos puertos que el adaptador
// PostgreSQL: las escrituras de una transacción se acumulan y se aplican juntas en el commit,
// y los bloqueos de fila se mantienen hasta el fin de la transacción.
type Store struct {
	mu            sync.RWMutex
	products      map[string]*entity.Product
	barcodes      map[string]string
	items         map[string]*entity.StockItem
	logs          []*entity.InventoryLog
	merchants     map[string]*entity.MerchantProfile
	verifications map[string][]*entity.Verification

	rowLocks     *KeyedMutex
	barcodeLocks *KeyedMutex
	lockTimeout  time.Duration
}

// Option configura el Store.
type Option func(*Store)

// WithLockTimeout límite de espera por un bloqueo de fila (0 = sin límite).
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) { s.lockTimeout = d }
}

// New crea un almacén vacío.
func New(opts ...Option) *Store {
	s := &Store{
		products:      make(map[string]*entity.Product),
		barcodes:      make(map[string]string),
		items:         make(map[string]*entity.StockItem),
		merchants:     make(map[string]*entity.MerchantProfile),
		verifications: make(map[string][]*entity.Verification),
		rowLocks:      NewKeyedMutex(),
		barcodeLocks:  NewKeyedMutex(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Products repositorio de catálogo fuera de transacción.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// StockItems repositorio de stock fuera de transacción (lecturas y precios).
func (s *Store) StockItems() *StockItemRepo { return &StockItemRepo{s: s} }

// Logs repositorio del registro de movimientos fuera de transacción.
func (s *Store) Logs() *InventoryLogRepo { return &InventoryLogRepo{s: s} }

// Merchants repositorio de perfiles.
func (s *Store) Merchants() *MerchantRepo { return &MerchantRepo{s: s} }

// Verifications proyección KYC.
func (s *Store) Verifications() *VerificationRepo { return &VerificationRepo{s: s} }

// Run ejecuta fn con repos atados a una transacción. Si fn falla nada de lo escrito se aplica.
func (s *Store) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	stockRepo repository.StockItemRepository,
	logRepo repository.InventoryLogRepository,
) error) error {
	t := newTx()
	defer t.release()

	if err := fn(&ProductRepo{s: s, tx: t}, &StockItemRepo{s: s, tx: t}, &InventoryLogRepo{s: s, tx: t}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	s.commit(t)
	return nil
}

func (s *Store) commit(t *tx) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range t.products {
		s.products[p.ID] = p
		s.barcodes[p.Barcode] = p.ID
	}
	for k, it := range t.items {
		s.items[k] = it
	}
	s.logs = append(s.logs, t.logs...)
}

// lock toma el bloqueo aplicando lockTimeout. Un vencimiento propio se reporta como ErrLockTimeout;
// la cancelación del contexto del llamador se devuelve tal cual.
func (s *Store) lock(ctx context.Context, km *KeyedMutex, key string) (func(), error) {
	lctx := ctx
	if s.lockTimeout > 0 {
		var cancel context.CancelFunc
		lctx, cancel = context.WithTimeout(ctx, s.lockTimeout)
		defer cancel()
	}
	unlock, err := km.Lock(lctx, key)
	if err != nil {
		if ctx.Err() == nil {
			return nil, domain.ErrLockTimeout
		}
		return nil, ctx.Err()
	}
	return unlock, nil
}

// tx escrituras pendientes y bloqueos tomados por una transacción.
type tx struct {
	products []*entity.Product
	items    map[string]*entity.StockItem
	logs     []*entity.InventoryLog
	held     map[string]bool
	unlocks  []func()
}

func newTx() *tx {
	return &tx{
		items: make(map[string]*entity.StockItem),
		held:  make(map[string]bool),
	}
}

func (t *tx) hold(key string, unlock func()) {
	t.held[key] = true
	t.unlocks = append(t.unlocks, unlock)
}

func (t *tx) release() {
	for i := len(t.unlocks) - 1; i >= 0; i-- {
		t.unlocks[i]()
	}
	t.unlocks = nil
}

func (t *tx) productByBarcode(barcode string) *entity.Product {
	if t == nil {
		return nil
	}
	for _, p := range t.products {
		if p.Barcode == barcode {
			return p
		}
	}
	return nil
}

func stockKey(merchantID, productID string) string {
	return merchantID + "/" + productID
}

func copyProduct(p *entity.Product) *entity.Product {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func copyItem(it *entity.StockItem) *entity.StockItem {
	if it == nil {
		return nil
	}
	c := *it
	c.Product = nil
	return &c
}

func copyLog(l *entity.InventoryLog) *entity.InventoryLog {
	c := *l
	c.Product = nil
	return &c
}
