package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/internal/domain/search"
)

// Querier lo que necesitan los repositorios: lo cumplen *pgxpool.Pool y pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isForeignKeyViolation 23503: la fila referenciada desapareció en paralelo.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// isOutOfRange 22P02 (texto inválido para el tipo) o 22003 (valor numérico fuera de rango).
func isOutOfRange(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && (pgErr.Code == "22P02" || pgErr.Code == "22003")
}

// isUUID los ids son UUID; cualquier otro texto no identifica ninguna fila.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// wrapWrite traduce las violaciones de integridad a errores de dominio.
func wrapWrite(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %s: registro duplicado", domain.ErrConflict, op)
	case isForeignKeyViolation(err):
		return fmt.Errorf("%w: %s: referencia inexistente", domain.ErrConflict, op)
	case isOutOfRange(err):
		return fmt.Errorf("%w: %s: valor fuera de rango", domain.ErrValidation, op)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// expectRow devuelve ErrNotFound si el UPDATE no tocó filas.
func expectRow(tag pgconn.CommandTag, err error, op, id string) error {
	if err != nil {
		return wrapWrite(err, op)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s %s", domain.ErrNotFound, op, id)
	}
	return nil
}

// collect recorre rows aplicando scan a cada fila.
func collect[T any](rows pgx.Rows, scan func(scanner) (T, error)) ([]T, error) {
	defer rows.Close()
	out := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// tenantScope restringe una búsqueda a las filas de una empresa.
type tenantScope struct {
	column string
	value  string
}

// paginate ejecuta la búsqueda de q sobre table: count total y página ordenada.
func paginate[T any](ctx context.Context, db Querier, table, columns string, scope *tenantScope,
	q search.Query[T], scan func(scanner) (T, error)) (search.Result[T], error) {
	var args search.Args
	var conds []string
	if scope != nil {
		conds = append(conds, scope.column+" = "+args.Add(scope.value))
	}
	if w := q.Where(&args); w != "" {
		conds = append(conds, w)
	}
	where := "TRUE"
	if len(conds) > 0 {
		where = strings.Join(conds, " AND ")
	}

	var total int
	if err := db.QueryRow(ctx, "SELECT count(*) FROM "+table+" WHERE "+where, args.Values()...).Scan(&total); err != nil {
		return search.Result[T]{}, fmt.Errorf("count %s: %w", table, err)
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY %s LIMIT %s OFFSET %s",
		columns, table, where, q.OrderBy(), args.Add(q.Limit()), args.Add(q.Offset()))
	rows, err := db.Query(ctx, query, args.Values()...)
	if err != nil {
		return search.Result[T]{}, fmt.Errorf("search %s: %w", table, err)
	}
	items, err := collect(rows, scan)
	if err != nil {
		return search.Result[T]{}, fmt.Errorf("scan %s: %w", table, err)
	}
	return q.Result(items, total), nil
}
