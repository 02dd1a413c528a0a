package entity

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// Vehicle vehículo del inventario de una empresa. La placa es única dentro de la empresa.
type Vehicle struct {
	ID        string
	CompanyID string
	Plate     string // siempre en mayúsculas
	Mileage   int
	Model     string
	Brand     string
	Price     *decimal.Decimal // opcional
	Notes     string
	Photos    []string // referencias del blob store, en orden de carga
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Límites que admite el almacenamiento (INTEGER y NUMERIC(14,2)).
const MaxMileage = math.MaxInt32

var MaxPrice = decimal.RequireFromString("999999999999.99")

// NormalizePlate aplica el formato canónico de placa (sin espacios, mayúsculas, NFC).
func NormalizePlate(plate string) string {
	return strings.ToUpper(norm.NFC.String(strings.TrimSpace(plate)))
}

// Clone devuelve una copia independiente.
func (v *Vehicle) Clone() *Vehicle {
	if v == nil {
		return nil
	}
	cp := *v
	cp.Photos = slices.Clone(v.Photos)
	if v.Price != nil {
		p := *v.Price
		cp.Price = &p
	}
	return &cp
}
