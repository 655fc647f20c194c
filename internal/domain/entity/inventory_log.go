package entity

import (
	"strings"
	"time"
)

// Tipos de acción de un movimiento.
const (
	ActionIN  = "IN"  // reposición
	ActionOUT = "OUT" // venta
	ActionADJ = "ADJ" // ajuste (daño, pérdida, conteo)
)

// Origen del movimiento (clase de dispositivo o canal).
const (
	SourceZebra      = "ZEBRA"       // lector láser Zebra
	SourcePhone      = "PHONE"       // cámara del teléfono
	SourceManual     = "MANUAL"      // ingreso manual
	SourceBulkImport = "BULK_IMPORT" // importación masiva
)

// InventoryLog registro inmutable de un movimiento; base del puntaje y de los reportes.
type InventoryLog struct {
	ID              string
	MerchantID      string
	ProductID       string
	Action          string
	QuantityChanged int64 // +10 reposición, -1 venta
	Source          string
	DeviceID        string // serial o UUID del dispositivo
	Reason          string
	Timestamp       time.Time

	// Product se llena solo en consultas de historial.
	Product *Product
}

// ParseAction normaliza y valida la acción. ok=false si no es IN, OUT ni ADJ.
func ParseAction(s string) (string, bool) {
	switch a := strings.ToUpper(strings.TrimSpace(s)); a {
	case ActionIN, ActionOUT, ActionADJ:
		return a, true
	}
	return "", false
}

// ParseSource normaliza y valida el origen.
func ParseSource(s string) (string, bool) {
	switch src := strings.ToUpper(strings.TrimSpace(s)); src {
	case SourceZebra, SourcePhone, SourceManual, SourceBulkImport:
		return src, true
	}
	return "", false
}

// Sources lista los orígenes conocidos en orden estable.
func Sources() []string {
	return []string{SourceZebra, SourcePhone, SourceManual, SourceBulkImport}
}
