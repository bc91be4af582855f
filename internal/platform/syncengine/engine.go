package syncengine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/avolkov/linesync/internal/platform/logging"
	qb "github.com/avolkov/linesync/internal/platform/querybuilder"
)

// chunk statements so a single INSERT never approaches the Postgres
// placeholder ceiling (65535).
const maxRowsPerStatement = 500

// Table describes a synchronized table: natural-key columns, the compared
// payload columns, and an optional modification-timestamp column that is
// bumped only when a payload column actually changed.
type Table struct {
	Name            string
	Key             []string
	Compare         []string
	TimestampColumn string
}

func (t Table) columns() []string {
	cols := make([]string, 0, len(t.Key)+len(t.Compare)+1)
	cols = append(cols, t.Key...)
	cols = append(cols, t.Compare...)
	if t.TimestampColumn != "" {
		cols = append(cols, t.TimestampColumn)
	}
	return cols
}

func (t Table) validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("table name is required")
	}
	if len(t.Key) == 0 {
		return fmt.Errorf("table %s: key columns are required", t.Name)
	}
	return nil
}

// Row maps column names to values. Every key and compare column of the target
// table must be present; the timestamp column is filled in by the engine.
type Row map[string]any

// Engine commits rows through three idempotent operations. Each call runs in
// its own transaction; in dry-run mode the transaction is rolled back after
// executing, so reported counts are real but nothing commits.
type Engine struct {
	db     *sqlx.DB
	logger *logging.Logger
	dryRun bool
	now    func() time.Time
}

type Option func(*Engine)

func WithDryRun(dryRun bool) Option {
	return func(e *Engine) { e.dryRun = dryRun }
}

func WithLogger(logger *logging.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func New(db *sqlx.DB, opts ...Option) *Engine {
	e := &Engine{
		db:     db,
		logger: logging.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) DryRun() bool { return e.dryRun }

// UpsertIfChanged inserts new rows and updates existing ones only when at
// least one compare column differs, bumping the timestamp column on real
// changes only. Returns the count of rows actually inserted or updated.
func (e *Engine) UpsertIfChanged(ctx context.Context, tbl Table, rows []Row) (int, error) {
	if err := tbl.validate(); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	now := e.now().UTC()
	total := 0
	err := e.inTx(ctx, func(tx *sqlx.Tx) error {
		for _, chunk := range chunkRows(rows) {
			query, args, err := buildUpsertIfChanged(tbl, chunk, now)
			if err != nil {
				return err
			}
			affected, err := execCount(ctx, tx, query, args)
			if err != nil {
				return fmt.Errorf("upsert %s: %w", tbl.Name, err)
			}
			total += affected
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// InsertNewOnly inserts rows whose key does not exist yet; conflicting rows
// are left untouched, not compared. This is what keeps automation strictly
// additive over human-curated data.
func (e *Engine) InsertNewOnly(ctx context.Context, tbl Table, rows []Row) (int, error) {
	if err := tbl.validate(); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	now := e.now().UTC()
	total := 0
	err := e.inTx(ctx, func(tx *sqlx.Tx) error {
		for _, chunk := range chunkRows(rows) {
			query, args, err := buildInsertNewOnly(tbl, chunk, now)
			if err != nil {
				return err
			}
			affected, err := execCount(ctx, tx, query, args)
			if err != nil {
				return fmt.Errorf("insert into %s: %w", tbl.Name, err)
			}
			total += affected
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// DeleteComplement deletes every row matching scope whose key tuple is not in
// keep. An empty keep set deletes the whole scope: an empty selection means
// nothing should remain, and the caller is responsible for not arriving here
// with an accidentally-empty selection.
func (e *Engine) DeleteComplement(ctx context.Context, tbl Table, keep [][]any, scope ...qb.Condition) (int, error) {
	if err := tbl.validate(); err != nil {
		return 0, err
	}
	if len(scope) == 0 {
		return 0, fmt.Errorf("delete from %s: scope conditions are required", tbl.Name)
	}
	for i, tuple := range keep {
		if len(tuple) != len(tbl.Key) {
			return 0, fmt.Errorf("delete from %s: keep tuple %d has %d values, expected %d", tbl.Name, i, len(tuple), len(tbl.Key))
		}
	}

	conditions := append(append([]qb.Condition(nil), scope...), qb.NotInTuples(tbl.Key, keep))
	query, args, err := qb.DeleteFrom(tbl.Name).Where(conditions...).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build delete from %s: %w", tbl.Name, err)
	}

	total := 0
	err = e.inTx(ctx, func(tx *sqlx.Tx) error {
		affected, err := execCount(ctx, tx, query, args)
		if err != nil {
			return fmt.Errorf("delete from %s: %w", tbl.Name, err)
		}
		total = affected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (e *Engine) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := e.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if e.dryRun {
		if err := tx.Rollback(); err != nil {
			return fmt.Errorf("rollback dry-run tx: %w", err)
		}
		return nil
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func execCount(ctx context.Context, tx *sqlx.Tx, query string, args []any) (int, error) {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read affected rows: %w", err)
	}
	return int(affected), nil
}

func buildUpsertIfChanged(tbl Table, rows []Row, now time.Time) (string, []any, error) {
	builder := qb.InsertInto(tbl.Name).Columns(tbl.columns()...)
	for i, row := range rows {
		values, err := rowValues(tbl, row, now)
		if err != nil {
			return "", nil, fmt.Errorf("row %d: %w", i, err)
		}
		builder.Values(values...)
	}
	builder.Suffix(upsertSuffix(tbl))
	return builder.ToSQL()
}

func buildInsertNewOnly(tbl Table, rows []Row, now time.Time) (string, []any, error) {
	builder := qb.InsertInto(tbl.Name).Columns(tbl.columns()...)
	for i, row := range rows {
		values, err := rowValues(tbl, row, now)
		if err != nil {
			return "", nil, fmt.Errorf("row %d: %w", i, err)
		}
		builder.Values(values...)
	}
	builder.Suffix(fmt.Sprintf("ON CONFLICT (%s) DO NOTHING", strings.Join(tbl.Key, ", ")))
	return builder.ToSQL()
}

// upsertSuffix builds the conflict clause: update payload columns and the
// timestamp, gated on at least one payload column being distinct so unchanged
// rows keep their modification timestamp.
func upsertSuffix(tbl Table) string {
	var buf strings.Builder
	buf.WriteString("ON CONFLICT (")
	buf.WriteString(strings.Join(tbl.Key, ", "))
	buf.WriteString(")")

	if len(tbl.Compare) == 0 {
		buf.WriteString(" DO NOTHING")
		return buf.String()
	}

	buf.WriteString(" DO UPDATE SET ")
	for i, col := range tbl.Compare {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(col)
		buf.WriteString(" = EXCLUDED.")
		buf.WriteString(col)
	}
	if tbl.TimestampColumn != "" {
		buf.WriteString(", ")
		buf.WriteString(tbl.TimestampColumn)
		buf.WriteString(" = EXCLUDED.")
		buf.WriteString(tbl.TimestampColumn)
	}

	buf.WriteString(" WHERE ")
	for i, col := range tbl.Compare {
		if i > 0 {
			buf.WriteString(" OR ")
		}
		buf.WriteString(tbl.Name)
		buf.WriteString(".")
		buf.WriteString(col)
		buf.WriteString(" IS DISTINCT FROM EXCLUDED.")
		buf.WriteString(col)
	}
	return buf.String()
}

func rowValues(tbl Table, row Row, now time.Time) ([]any, error) {
	values := make([]any, 0, len(tbl.Key)+len(tbl.Compare)+1)
	for _, col := range tbl.Key {
		v, ok := row[col]
		if !ok {
			return nil, fmt.Errorf("missing key column %q", col)
		}
		values = append(values, v)
	}
	for _, col := range tbl.Compare {
		v, ok := row[col]
		if !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
		values = append(values, v)
	}
	if tbl.TimestampColumn != "" {
		values = append(values, now)
	}
	return values, nil
}

func chunkRows(rows []Row) [][]Row {
	if len(rows) <= maxRowsPerStatement {
		return [][]Row{rows}
	}
	out := make([][]Row, 0, len(rows)/maxRowsPerStatement+1)
	for start := 0; start < len(rows); start += maxRowsPerStatement {
		end := start + maxRowsPerStatement
		if end > len(rows) {
			end = len(rows)
		}
		out = append(out, rows[start:end])
	}
	return out
}
