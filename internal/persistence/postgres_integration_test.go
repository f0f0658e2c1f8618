//go:build integration
// +build integration

package persistence

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gpem17-evo/pkg/statslog"
)

const createStatsTable = `CREATE TABLE IF NOT EXISTS %s (
	run_id TEXT NOT NULL,
	run_name TEXT NOT NULL,
	generation INT NOT NULL,
	cost_per_parcel DOUBLE PRECISION,
	cost DOUBLE PRECISION NOT NULL,
	travel_time DOUBLE PRECISION NOT NULL,
	tardiness DOUBLE PRECISION NOT NULL,
	over_time DOUBLE PRECISION NOT NULL,
	is_valid BOOLEAN NOT NULL,
	scenario_id TEXT NOT NULL,
	random_seed BIGINT NOT NULL,
	num_vehicles INT NOT NULL,
	num_orders INT NOT NULL,
	num_reauctions INT NOT NULL,
	num_unsuc_reauctions INT NOT NULL,
	num_failed_reauctions INT NOT NULL
)`

const createRunsTable = `CREATE TABLE IF NOT EXISTS %s_runs (
	run_id TEXT PRIMARY KEY,
	run_name TEXT NOT NULL,
	dir TEXT NOT NULL,
	seed BIGINT NOT NULL,
	tag TEXT NOT NULL,
	started_at TIMESTAMPTZ NOT NULL,
	final_generation INT NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
)`

func TestPostgresSink_RoundTrip(t *testing.T) {
	dsn := os.Getenv("GPEM_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("GPEM_TEST_POSTGRES_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	table := fmt.Sprintf("best_stats_it_%d", time.Now().UnixNano())
	conn := NewPostgresConn(dsn)
	_, err := conn.ExecCtx(ctx, fmt.Sprintf(createStatsTable, table))
	require.NoError(t, err)
	_, err = conn.ExecCtx(ctx, fmt.Sprintf(createRunsTable, table))
	require.NoError(t, err)
	defer func() {
		_, _ = conn.ExecCtx(context.Background(), fmt.Sprintf("DROP TABLE %s", table))
		_, _ = conn.ExecCtx(context.Background(), fmt.Sprintf("DROP TABLE %s_runs", table))
	}()

	sink, err := NewPostgresSink(conn, table)
	require.NoError(t, err)

	run := testRun
	run.StartedAt = time.Now()
	require.NoError(t, sink.RecordRows(ctx, run, 1, []statslog.Record{record(true, 4), record(false, 2)}))
	require.NoError(t, sink.RecordCompletion(ctx, run, 1))

	var count int
	require.NoError(t, conn.QueryRowCtx(ctx, &count, fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE cost_per_parcel IS NULL", table)))
	require.Equal(t, 1, count)
}
