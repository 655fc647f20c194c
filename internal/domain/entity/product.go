package entity

import (
	"fmt"
	"time"
)

// Product es la entrada del catálogo global, compartida por todos los comerciantes.
// Se identifica por código de barras único y no se elimina en el flujo normal.
type Product struct {
	ID          string
	Barcode     string
	Name        string
	Description string
	CreatedAt   time.Time
}

// PlaceholderProduct construye el producto que se crea al escanear un código desconocido.
func PlaceholderProduct(barcode string) *Product {
	return &Product{
		Barcode:     barcode,
		Name:        fmt.Sprintf("Product %s", barcode),
		Description: fmt.Sprintf("Auto-created from scan %s", barcode),
	}
}
