package repository

import (
	"context"

	"github.com/jhoicas/sylistock-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia del catálogo (DIP).
// Los métodos Get devuelven (nil, nil) cuando el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error)
	// GetOrCreate devuelve el producto con ese código o inserta product; created indica cuál ocurrió.
	// Es seguro frente a escaneos concurrentes del mismo código.
	GetOrCreate(ctx context.Context, product *entity.Product) (found *entity.Product, created bool, err error)
}
