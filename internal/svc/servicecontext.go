package svc

import (
	"log"
	"strings"

	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"gpem17-evo/internal/cache"
	"gpem17-evo/internal/config"
	"gpem17-evo/internal/persistence"
	"gpem17-evo/internal/recorder"
	"gpem17-evo/pkg/expdir"
)

type ServiceContext struct {
	Config config.Config

	Layout   *expdir.Layout
	Sink     persistence.Sink
	Archiver *persistence.Archiver

	// Optional stores, injected only when configured.
	DBConn sqlx.SqlConn
	Redis  *redis.Redis
}

func NewServiceContext(c config.Config) *ServiceContext {
	svc := &ServiceContext{
		Config: c,
		Layout: expdir.New(c.ResultsRoot),
	}

	// Test environments never reach external stores.
	if c.IsTestEnv() {
		if c.Postgres.DSN != "" || strings.TrimSpace(c.Redis.Host) != "" || c.Archive.Enabled() {
			log.Printf("env=%s: postgres, redis and archive mirrors disabled", c.Env)
		}
		svc.Sink = persistence.NewNoopSink()
		return svc
	}

	var sinks persistence.MultiSink

	if c.Postgres.DSN != "" {
		conn := persistence.NewPostgresConn(c.Postgres.DSN)
		sink, err := persistence.NewPostgresSink(conn, c.Postgres.Table)
		if err != nil {
			log.Fatalf("failed to init postgres mirror: %v", err)
		}
		svc.DBConn = conn
		sinks = append(sinks, sink)
	}

	if strings.TrimSpace(c.Redis.Host) != "" {
		rds := redis.MustNewRedis(c.Redis)
		svc.Redis = rds
		sinks = append(sinks, persistence.NewStatusSink(rds, cache.NewTTLSet(c.TTL)))
	}

	if c.Archive.Enabled() {
		archiver, err := persistence.NewMinIOArchiver(c.Archive)
		if err != nil {
			log.Fatalf("failed to init run archiver: %v", err)
		}
		svc.Archiver = archiver
	}

	if len(sinks) == 0 {
		svc.Sink = persistence.NewNoopSink()
	} else {
		svc.Sink = sinks
	}
	return svc
}

// NewRecorder returns a Recorder for one run, wired to the configured mirrors.
func (s *ServiceContext) NewRecorder(allowMissingOutput bool) *recorder.Recorder {
	opts := recorder.Options{
		Layout:             s.Layout,
		Catalog:            s.Config.Catalog(),
		ConfigSource:       s.Config.ConfigSource,
		Barrier:            s.Config.Barrier,
		AllowMissingOutput: allowMissingOutput,
		Sink:               s.Sink,
	}
	if s.Archiver != nil {
		opts.Archiver = s.Archiver
	}
	return recorder.New(opts)
}
