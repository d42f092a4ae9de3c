package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"retailops/internal/core/apperror"
	"retailops/internal/core/id"
	"retailops/internal/domain"
)

// Postgres error codes the repositories translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Builder returns a squirrel builder with PostgreSQL placeholder format.
func Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Table provides the common CRUD statements for one table whose rows map onto T
// through "db" tags. Repositories embed it and add their own queries.
type Table[T any] struct {
	txm     *TxManager
	name    string
	entity  string
	columns []string
}

// NewTable creates a table helper. entity is the name used in NotFound and
// Duplicate errors.
func NewTable[T any](txm *TxManager, name, entity string) *Table[T] {
	return &Table[T]{
		txm:     txm,
		name:    name,
		entity:  entity,
		columns: ExtractDBColumns[T](),
	}
}

// Name returns the table name.
func (t *Table[T]) Name() string { return t.name }

// Columns returns the mapped column names.
func (t *Table[T]) Columns() []string { return t.columns }

// Querier returns the transaction from ctx or the pool.
func (t *Table[T]) Querier(ctx context.Context) Querier {
	return t.txm.GetQuerier(ctx)
}

// RunInTransaction runs fn in the surrounding transaction or a new one. Header
// and child rows written together go through it.
func (t *Table[T]) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return t.txm.RunInTransaction(ctx, fn)
}

// Select starts a SELECT of all mapped columns.
func (t *Table[T]) Select() squirrel.SelectBuilder {
	return Builder().Select(t.columns...).From(t.name)
}

// Insert writes v using its "db" tags.
func (t *Table[T]) Insert(ctx context.Context, v *T) error {
	data := StructToMap(v)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in %T", v)
	}

	sql, args, err := Builder().Insert(t.name).SetMap(data).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := t.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return t.mapError("insert", err)
	}
	return nil
}

// Update rewrites every mapped column of the row except id and created_at.
func (t *Table[T]) Update(ctx context.Context, rowID id.ID, v *T) error {
	data := StructToMap(v)
	delete(data, "id")
	delete(data, "created_at")
	return t.UpdateColumns(ctx, rowID, data)
}

// UpdateColumns sets the given columns on one row.
func (t *Table[T]) UpdateColumns(ctx context.Context, rowID id.ID, data map[string]any) error {
	sql, args, err := Builder().
		Update(t.name).
		SetMap(data).
		Where(squirrel.Eq{"id": rowID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := t.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return t.mapError("update", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(t.entity, rowID.String())
	}
	return nil
}

// Delete removes one row.
func (t *Table[T]) Delete(ctx context.Context, rowID id.ID) error {
	sql, args, err := Builder().Delete(t.name).Where(squirrel.Eq{"id": rowID}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := t.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return t.mapError("delete", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(t.entity, rowID.String())
	}
	return nil
}

// GetByID loads one row, optionally locking it until the transaction ends.
func (t *Table[T]) GetByID(ctx context.Context, rowID id.ID, forUpdate bool) (*T, error) {
	return t.Get(ctx, t.ByID(rowID, forUpdate), rowID.String())
}

// ByID selects one row by primary key. With forUpdate the row stays locked
// until the surrounding transaction ends.
func (t *Table[T]) ByID(rowID id.ID, forUpdate bool) squirrel.SelectBuilder {
	q := t.Select().Where(squirrel.Eq{"id": rowID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}
	return q
}

// Get runs q expecting exactly one row. key is reported in the NotFound error.
func (t *Table[T]) Get(ctx context.Context, q squirrel.SelectBuilder, key string) (*T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	v := new(T)
	if err := pgxscan.Get(ctx, t.Querier(ctx), v, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(t.entity, key)
		}
		return nil, apperror.NewDatabase("get "+t.entity, err)
	}
	return v, nil
}

// All runs q and scans every row.
func (t *Table[T]) All(ctx context.Context, q squirrel.SelectBuilder) ([]*T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []*T
	if err := pgxscan.Select(ctx, t.Querier(ctx), &rows, sql, args...); err != nil {
		return nil, apperror.NewDatabase("list "+t.entity, err)
	}
	return rows, nil
}

// Page counts the rows matched by q, then returns one ordered page of them.
// Search is matched case-insensitively against searchCols.
func (t *Table[T]) Page(
	ctx context.Context,
	q squirrel.SelectBuilder,
	f domain.ListFilter,
	defaultOrder string,
	searchCols ...string,
) (domain.ListResult[*T], error) {
	f.Normalize()
	result := domain.ListResult[*T]{Limit: f.Limit, Offset: f.Offset, Items: []*T{}}

	q = applySearch(q, f.Search, searchCols)

	countSQL, countArgs, err := Builder().Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}
	if err := t.Querier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, apperror.NewDatabase("count "+t.entity, err)
	}

	orderBy, err := t.parseOrderBy(f.OrderBy, defaultOrder)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy).Limit(uint64(f.Limit)).Offset(uint64(f.Offset))

	items, err := t.All(ctx, q)
	if err != nil {
		return result, err
	}
	if items != nil {
		result.Items = items
	}
	return result, nil
}

// applySearch matches search case-insensitively against any of cols.
func applySearch(q squirrel.SelectBuilder, search string, cols []string) squirrel.SelectBuilder {
	if search == "" || len(cols) == 0 {
		return q
	}
	or := squirrel.Or{}
	for _, col := range cols {
		or = append(or, squirrel.ILike{col: "%" + search + "%"})
	}
	return q.Where(or)
}

// parseOrderBy accepts "col", "+col" or "-col" for any mapped column.
func (t *Table[T]) parseOrderBy(orderBy, defaultOrder string) (string, error) {
	orderBy = strings.TrimSpace(orderBy)
	if orderBy == "" {
		return defaultOrder, nil
	}

	direction := "ASC"
	field := orderBy
	if strings.HasPrefix(orderBy, "-") {
		direction = "DESC"
		field = strings.TrimPrefix(orderBy, "-")
	} else if strings.HasPrefix(orderBy, "+") {
		field = strings.TrimPrefix(orderBy, "+")
	}

	for _, col := range t.columns {
		if col == field {
			return field + " " + direction + ", id " + direction, nil
		}
	}
	return "", apperror.NewValidation("invalid orderBy").WithDetail("orderBy", orderBy)
}

func (t *Table[T]) mapError(op string, err error) error {
	return MapError(t.entity, op, err)
}

// MapError translates constraint violations into AppErrors and wraps the rest
// as database errors.
func MapError(entity, op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperror.NewDuplicate(entity, pgErr.ConstraintName, pgErr.Detail).WithCause(err)
		case pgForeignKeyViolation:
			return apperror.NewConflict(entity+" is referenced by other records").
				WithDetail("constraint", pgErr.ConstraintName).
				WithCause(err)
		}
	}
	return apperror.NewDatabase(op+" "+entity, err)
}
