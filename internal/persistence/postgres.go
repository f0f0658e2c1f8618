package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx driver
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"gpem17-evo/pkg/statslog"
)

var tableNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

var _ Sink = (*PostgresSink)(nil)

// PostgresSink copies best-stats rows into <table> and run completions into
// <table>_runs.
type PostgresSink struct {
	conn  sqlx.SqlConn
	table string
}

// NewPostgresConn opens a go-zero SqlConn over the pgx stdlib driver.
func NewPostgresConn(dsn string) sqlx.SqlConn {
	return sqlx.NewSqlConn("pgx", dsn)
}

// NewPostgresSink validates the table name, which is interpolated into SQL.
func NewPostgresSink(conn sqlx.SqlConn, table string) (*PostgresSink, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("persistence: invalid table name %q", table)
	}
	return &PostgresSink{conn: conn, table: table}, nil
}

// rowColumns are the table columns after run_id and run_name, in schema order.
func rowColumns() []string {
	fields := statslog.Fields()
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.String()
	}
	return cols
}

func insertRowStatement(table string) string {
	cols := append([]string{"run_id", "run_name"}, rowColumns()...)
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
}

func upsertRunStatement(table string) string {
	return fmt.Sprintf(`INSERT INTO %s_runs (run_id, run_name, dir, seed, tag, started_at, final_generation, finished_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
ON CONFLICT (run_id) DO UPDATE SET final_generation = EXCLUDED.final_generation, finished_at = EXCLUDED.finished_at`, table)
}

// rowArgs converts a record into statement arguments. The "invalid"
// cost_per_parcel marker maps to NULL.
func rowArgs(run RunInfo, rec statslog.Record) ([]any, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	args := []any{run.ID, run.Name}
	for _, f := range statslog.Fields() {
		v := rec[f]
		if f == statslog.FieldCostPerParcel {
			if s, ok := v.(string); ok && s == statslog.InvalidCostPerParcel {
				v = sql.NullFloat64{}
			}
		}
		args = append(args, v)
	}
	return args, nil
}

func (p *PostgresSink) RecordRows(ctx context.Context, run RunInfo, generation int, rows []statslog.Record) error {
	if len(rows) == 0 {
		return nil
	}
	stmt := insertRowStatement(p.table)
	return p.conn.TransactCtx(ctx, func(ctx context.Context, session sqlx.Session) error {
		for i, rec := range rows {
			args, err := rowArgs(run, rec)
			if err != nil {
				return fmt.Errorf("generation %d row %d: %w", generation, i, err)
			}
			if _, err := session.ExecCtx(ctx, stmt, args...); err != nil {
				return fmt.Errorf("insert generation %d row %d: %w", generation, i, err)
			}
		}
		return nil
	})
}

func (p *PostgresSink) RecordCompletion(ctx context.Context, run RunInfo, finalGeneration int) error {
	_, err := p.conn.ExecCtx(ctx, upsertRunStatement(p.table),
		run.ID, run.Name, run.Dir, run.Seed, run.Tag, run.StartedAt, finalGeneration)
	if err != nil {
		return fmt.Errorf("upsert run %s: %w", run.Name, err)
	}
	return nil
}
