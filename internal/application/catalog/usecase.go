package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/sylistock-api/internal/application/dto"
	"github.com/jhoicas/sylistock-api/internal/domain"
	"github.com/jhoicas/sylistock-api/internal/domain/entity"
	"github.com/jhoicas/sylistock-api/internal/domain/repository"
)

// UseCase registro y consulta del catálogo global de productos.
type UseCase struct {
	repo repository.ProductRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(repo repository.ProductRepository) *UseCase {
	return &UseCase{repo: repo}
}

// Register crea un producto; ErrDuplicate si el código de barras ya existe.
func (uc *UseCase) Register(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	barcode := strings.TrimSpace(in.Barcode)
	name := strings.TrimSpace(in.Name)
	if barcode == "" || name == "" {
		return nil, fmt.Errorf("%w: barcode y name son requeridos", domain.ErrInvalidInput)
	}
	existing, err := uc.repo.GetByBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	product := &entity.Product{
		ID:          uuid.New().String(),
		Barcode:     barcode,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   time.Now().UTC(),
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByBarcode ErrProductNotFound si no existe.
func (uc *UseCase) GetByBarcode(ctx context.Context, barcode string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByBarcode(ctx, strings.TrimSpace(barcode))
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	return toProductResponse(product), nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:          p.ID,
		Barcode:     p.Barcode,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
	}
}
