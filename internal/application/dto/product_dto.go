package dto

import "time"

// CreateProductRequest body de POST /api/products.
type CreateProductRequest struct {
	Barcode     string `json:"barcode"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ProductResponse producto del catálogo global.
type ProductResponse struct {
	ID          string    `json:"id"`
	Barcode     string    `json:"barcode"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
