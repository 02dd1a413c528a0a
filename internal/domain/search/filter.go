package search

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Filter predicado de búsqueda sobre T. Un filtro inactivo (valor vacío o nulo) no excluye
// ningún registro. Match y SQL deben expresar exactamente el mismo predicado.
type Filter[T any] interface {
	Active() bool
	Match(item T) bool
	SQL(args *Args) string
}

// Args acumula los parámetros posicionales ($1, $2, ...) de la consulta SQL.
type Args struct {
	values []any
}

// Add registra un valor y devuelve su placeholder.
func (a *Args) Add(v any) string {
	a.values = append(a.values, v)
	return "$" + strconv.Itoa(len(a.values))
}

// Values parámetros en orden.
func (a *Args) Values() []any { return a.values }

// Fold normaliza texto para comparaciones sin distinguir mayúsculas (NFC + minúsculas).
// cases.Caser guarda estado: se crea uno por llamada.
func Fold(s string) string {
	return cases.Lower(language.Und).String(norm.NFC.String(s))
}

// Contains búsqueda por subcadena sin distinguir mayúsculas. Valor en blanco = sin restricción.
type Contains[T any] struct {
	Column string
	Value  string
	Field  func(T) string
}

func (f Contains[T]) needle() string { return Fold(strings.TrimSpace(f.Value)) }

func (f Contains[T]) Active() bool { return strings.TrimSpace(f.Value) != "" }

func (f Contains[T]) Match(item T) bool {
	return strings.Contains(Fold(f.Field(item)), f.needle())
}

func (f Contains[T]) SQL(args *Args) string {
	return "strpos(lower(COALESCE(" + f.Column + ", '')), " + args.Add(f.needle()) + ") > 0"
}

// Equal igualdad exacta; Value nil = sin restricción.
type Equal[T any, V comparable] struct {
	Column string
	Value  *V
	Field  func(T) V
}

func (f Equal[T, V]) Active() bool { return f.Value != nil }

func (f Equal[T, V]) Match(item T) bool { return f.Field(item) == *f.Value }

func (f Equal[T, V]) SQL(args *Args) string {
	return f.Column + " = " + args.Add(*f.Value)
}

// IntRange rango inclusivo; cada extremo es opcional. Con el filtro activo, un valor nulo no coincide.
type IntRange[T any] struct {
	Column string
	Min    *int
	Max    *int
	Field  func(T) (int, bool)
}

func (f IntRange[T]) Active() bool { return f.Min != nil || f.Max != nil }

func (f IntRange[T]) Match(item T) bool {
	v, ok := f.Field(item)
	if !ok {
		return false
	}
	if f.Min != nil && v < *f.Min {
		return false
	}
	if f.Max != nil && v > *f.Max {
		return false
	}
	return true
}

func (f IntRange[T]) SQL(args *Args) string {
	return rangeSQL(f.Column, args, f.Min, f.Max)
}

// DecimalRange rango inclusivo sobre valores decimales.
type DecimalRange[T any] struct {
	Column string
	Min    *decimal.Decimal
	Max    *decimal.Decimal
	Field  func(T) *decimal.Decimal
}

func (f DecimalRange[T]) Active() bool { return f.Min != nil || f.Max != nil }

func (f DecimalRange[T]) Match(item T) bool {
	v := f.Field(item)
	if v == nil {
		return false
	}
	if f.Min != nil && v.LessThan(*f.Min) {
		return false
	}
	if f.Max != nil && v.GreaterThan(*f.Max) {
		return false
	}
	return true
}

func (f DecimalRange[T]) SQL(args *Args) string {
	return rangeSQL(f.Column, args, f.Min, f.Max)
}

// TimeRange rango inclusivo de instantes.
type TimeRange[T any] struct {
	Column string
	From   *time.Time
	To     *time.Time
	Field  func(T) time.Time
}

func (f TimeRange[T]) Active() bool { return f.From != nil || f.To != nil }

func (f TimeRange[T]) Match(item T) bool {
	v := f.Field(item)
	if f.From != nil && v.Before(*f.From) {
		return false
	}
	if f.To != nil && v.After(*f.To) {
		return false
	}
	return true
}

func (f TimeRange[T]) SQL(args *Args) string {
	return rangeSQL(f.Column, args, f.From, f.To)
}

func rangeSQL[V any](column string, args *Args, lo, hi *V) string {
	var parts []string
	if lo != nil {
		parts = append(parts, column+" >= "+args.Add(*lo))
	}
	if hi != nil {
		parts = append(parts, column+" <= "+args.Add(*hi))
	}
	return strings.Join(parts, " AND ")
}
