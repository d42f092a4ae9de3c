// Package document_repo provides PostgreSQL implementations for document
// repositories: sales orders, purchase orders and bills. Each document has a
// header table and a lines table keyed by (document_id, line_no).
package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"retailops/internal/core/id"
	"retailops/internal/infrastructure/storage/postgres"
)

// lineRow wraps a line with the document it belongs to, for batch loading.
// Line columns are selected as "line.<column>" so scany fills the nested struct.
type lineRow[L any] struct {
	DocumentID id.ID `db:"document_id"`
	Line       L     `db:"line"`
}

// insertLines writes all lines of one document in a single statement.
func insertLines[L any](ctx context.Context, q postgres.Querier, table string, docID id.ID, lines []L) error {
	if len(lines) == 0 {
		return nil
	}

	cols := postgres.ExtractDBColumns[L]()
	ins := postgres.Builder().Insert(table).Columns(append([]string{"document_id"}, cols...)...)
	for i := range lines {
		data := postgres.StructToMap(&lines[i])
		values := make([]any, 0, len(cols)+1)
		values = append(values, docID)
		for _, col := range cols {
			values = append(values, data[col])
		}
		ins = ins.Values(values...)
	}

	sql, args, err := ins.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}
	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError("document line", "insert", err)
	}
	return nil
}

// loadLines reads the lines of every given document, grouped by document and
// ordered by line_no.
func loadLines[L any](ctx context.Context, q postgres.Querier, table string, docIDs []id.ID) (map[id.ID][]L, error) {
	out := make(map[id.ID][]L, len(docIDs))
	if len(docIDs) == 0 {
		return out, nil
	}

	sql, args, err := linesQuery[L](table, docIDs).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lines query: %w", err)
	}

	var rows []lineRow[L]
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, postgres.MapError("document line", "list", err)
	}
	for _, row := range rows {
		out[row.DocumentID] = append(out[row.DocumentID], row.Line)
	}
	return out, nil
}

// linesQuery selects line columns as "line.<column>" so scany fills lineRow.Line.
func linesQuery[L any](table string, docIDs []id.ID) squirrel.SelectBuilder {
	cols := []string{"document_id"}
	for _, col := range postgres.ExtractDBColumns[L]() {
		cols = append(cols, fmt.Sprintf(`%s AS "line.%s"`, col, col))
	}
	return postgres.Builder().
		Select(cols...).
		From(table).
		Where(squirrel.Eq{"document_id": docIDs}).
		OrderBy("document_id", "line_no")
}

// idsOf collects document IDs.
func idsOf[T any](docs []*T, getID func(*T) id.ID) []id.ID {
	ids := make([]id.ID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, getID(d))
	}
	return ids
}
