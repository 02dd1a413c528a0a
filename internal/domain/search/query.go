package search

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"
)

// Direction sentido del ordenamiento.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// ParseDirection: cualquier valor distinto de ASC (sin distinguir mayúsculas) es DESC.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Asc)) {
		return Asc
	}
	return Desc
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// NormalizePage: página negativa → 0; tamaño <= 0 → DefaultPageSize; tamaño > MaxPageSize → MaxPageSize.
func NormalizePage(page, size int) (int, int) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

// SortKey clave de ordenamiento permitida: nombre público, expresión SQL y comparador equivalente.
type SortKey[T any] struct {
	Name    string
	Column  string
	Compare func(a, b T) int
}

// TextKey ordena por texto sin distinguir mayúsculas, byte a byte sobre la forma normalizada.
func TextKey[T any](name, column string, field func(T) string) SortKey[T] {
	return SortKey[T]{
		Name:   name,
		Column: `lower(COALESCE(` + column + `, '')) COLLATE "C"`,
		Compare: func(a, b T) int {
			return strings.Compare(Fold(field(a)), Fold(field(b)))
		},
	}
}

// OrderedKey ordena por un valor comparable (números, fechas como UnixMicro, etc.).
func OrderedKey[T any, V cmp.Ordered](name, column string, field func(T) V) SortKey[T] {
	return SortKey[T]{
		Name:   name,
		Column: column,
		Compare: func(a, b T) int {
			return cmp.Compare(field(a), field(b))
		},
	}
}

// Schema describe cómo se ordena un tipo de entidad: lista blanca de claves, clave por
// defecto y desempate por id ascendente.
type Schema[T any] struct {
	id       func(T) string
	idColumn string
	fallback SortKey[T]
	keys     map[string]SortKey[T]
}

// NewSchema crea el esquema; fallback se usa cuando la clave pedida no está en la lista blanca.
func NewSchema[T any](id func(T) string, idColumn string, fallback SortKey[T], keys ...SortKey[T]) *Schema[T] {
	s := &Schema[T]{id: id, idColumn: idColumn, fallback: fallback, keys: map[string]SortKey[T]{}}
	s.keys[strings.ToLower(fallback.Name)] = fallback
	for _, k := range keys {
		s.keys[strings.ToLower(k.Name)] = k
	}
	return s
}

// Key busca la clave sin distinguir mayúsculas; si no existe devuelve la clave por defecto.
func (s *Schema[T]) Key(name string) SortKey[T] {
	if k, ok := s.keys[strings.ToLower(strings.TrimSpace(name))]; ok {
		return k
	}
	return s.fallback
}

// Keys nombres permitidos.
func (s *Schema[T]) Keys() []string {
	names := make([]string, 0, len(s.keys))
	for _, k := range s.keys {
		names = append(names, k.Name)
	}
	slices.Sort(names)
	return names
}

// Query construye una consulta normalizada.
func (s *Schema[T]) Query(sortBy string, dir Direction, page, size int, filters ...Filter[T]) Query[T] {
	page, size = NormalizePage(page, size)
	key, known := s.keys[strings.ToLower(strings.TrimSpace(sortBy))]
	if !known {
		// clave vacía o fuera de la lista blanca: fecha de registro descendente
		key, dir = s.fallback, Desc
	}
	if dir != Asc {
		dir = Desc
	}
	return Query[T]{
		schema:  s,
		filters: filters,
		sort:    key,
		dir:     dir,
		page:    page,
		size:    size,
	}
}

// Query especificación de búsqueda: conjunción de filtros, orden y página.
// Se evalúa igual en memoria (Apply) o traducida a SQL (Where/OrderBy/Limit/Offset).
type Query[T any] struct {
	schema  *Schema[T]
	filters []Filter[T]
	sort    SortKey[T]
	dir     Direction
	page    int
	size    int
}

func (q Query[T]) SortKey() string      { return q.sort.Name }
func (q Query[T]) Direction() Direction { return q.dir }
func (q Query[T]) Page() int            { return q.page }
func (q Query[T]) Size() int            { return q.size }

// Match indica si el elemento cumple todos los filtros activos.
func (q Query[T]) Match(item T) bool {
	for _, f := range q.filters {
		if f.Active() && !f.Match(item) {
			return false
		}
	}
	return true
}

// Compare orden total: clave pedida en el sentido pedido, luego id ascendente en ambos sentidos.
// Una Query sin esquema (valor cero) no ordena.
func (q Query[T]) Compare(a, b T) int {
	var c int
	if q.sort.Compare != nil {
		c = q.sort.Compare(a, b)
	}
	if q.dir == Desc {
		c = -c
	}
	if c != 0 || q.schema == nil {
		return c
	}
	return strings.Compare(q.schema.id(a), q.schema.id(b))
}

// Apply filtra, ordena y pagina una colección en memoria. No modifica items.
func (q Query[T]) Apply(items []T) Result[T] {
	matched := make([]T, 0, len(items))
	for _, it := range items {
		if q.Match(it) {
			matched = append(matched, it)
		}
	}
	slices.SortStableFunc(matched, q.Compare)

	var content []T
	if off, ok := q.offset(); ok && off < len(matched) {
		end := min(off+q.size, len(matched))
		content = matched[off:end]
	}
	return q.Result(content, len(matched))
}

// Result arma el resultado de una página ya obtenida.
func (q Query[T]) Result(items []T, total int) Result[T] {
	if items == nil {
		items = []T{}
	}
	return Result[T]{Items: items, Total: total, Page: q.page, Size: q.size}
}

// Where condición SQL con los filtros activos ("" si no hay ninguno).
func (q Query[T]) Where(args *Args) string {
	var parts []string
	for _, f := range q.filters {
		if !f.Active() {
			continue
		}
		if cond := f.SQL(args); cond != "" {
			parts = append(parts, "("+cond+")")
		}
	}
	return strings.Join(parts, " AND ")
}

// OrderBy cláusula ORDER BY equivalente a Compare.
func (q Query[T]) OrderBy() string {
	if q.schema == nil {
		return ""
	}
	return fmt.Sprintf("%s %s, %s ASC", q.sort.Column, q.dir, q.schema.idColumn)
}

// Limit tamaño de página.
func (q Query[T]) Limit() int { return q.size }

// Offset desplazamiento de la página; satura en MaxInt si page*size desborda.
func (q Query[T]) Offset() int {
	off, ok := q.offset()
	if !ok {
		return math.MaxInt
	}
	return off
}

func (q Query[T]) offset() (int, bool) {
	if q.size <= 0 || q.page <= 0 {
		return 0, true
	}
	if q.page > math.MaxInt/q.size {
		return 0, false
	}
	return q.page * q.size, true
}

// Result página de resultados junto con el total previo a paginar.
type Result[T any] struct {
	Items []T
	Total int
	Page  int
	Size  int
}

// TotalPages ceil(Total/Size).
func (r Result[T]) TotalPages() int {
	if r.Size <= 0 {
		return 0
	}
	return (r.Total + r.Size - 1) / r.Size
}

// Map convierte los elementos conservando los metadatos de paginación.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	out := make([]U, 0, len(r.Items))
	for _, it := range r.Items {
		out = append(out, fn(it))
	}
	return Result[U]{Items: out, Total: r.Total, Page: r.Page, Size: r.Size}
}
