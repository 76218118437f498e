package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/syssam/daoism"
	"github.com/syssam/daoism/config"
	"github.com/syssam/daoism/dialect/sql"
	"github.com/syssam/daoism/orm"
	"github.com/syssam/daoism/sequence"
)

// env is the state shared by the commands of one invocation.
type env struct {
	log   *slog.Logger
	drv   *sql.Driver
	stats *sql.StatsDriver
	reg   *daoism.Registry
	out   io.Writer
}

// open connects to the data source and registers a DAO for every
// description of the ORM directory.
func open(cfg config.Config, stdout, stderr io.Writer) (*env, error) {
	log := cfg.Log.Logger(stderr)
	descs, err := orm.LoadDir(cfg.ORMDir)
	if err != nil {
		return nil, err
	}
	drv, err := sql.Open(cfg.DataSource.Dialect, cfg.DataSource.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DataSource.Dialect, err)
	}
	opts := []sql.StatsOption{}
	if cfg.SlowQuery > 0 {
		opts = append(opts, sql.WithSlowThreshold(cfg.SlowQuery), sql.WithSlowQueryLog(log))
	}
	stats := sql.NewStatsDriver(drv, opts...)
	exec := sql.NewExecutor(stats)

	base := daoism.Config{
		Dialect:       cfg.DataSource.Dialect,
		CaseSensitive: cfg.CaseSensitive,
		Executor:      exec,
		Sequence:      sequence.NewSQL(exec, cfg.DataSource.Dialect),
		Logger:        log,
	}
	if cfg.CacheTTL > 0 {
		base.Cache = daoism.NewMemoryCache()
		base.CacheTTL = cfg.CacheTTL
	}
	reg := daoism.NewRegistry()
	reg.Describe(base, descs...)
	log.Debug("descriptions loaded", "dir", cfg.ORMDir, "count", len(descs))
	return &env{log: log, drv: drv, stats: stats, reg: reg, out: stdout}, nil
}

// dao returns the DAO registered as name.
func (e *env) dao(name string) (*daoism.DAO, error) {
	return e.reg.DAO(name)
}

// daos returns the DAOs registered as names, or every DAO when names is
// empty.
func (e *env) daos(names []string) ([]*daoism.DAO, error) {
	if len(names) == 0 {
		names = e.reg.Names()
	}
	var (
		out  []*daoism.DAO
		errs []error
	)
	for _, name := range names {
		d, err := e.dao(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, d)
	}
	return out, errors.Join(errs...)
}

func (e *env) close() {
	e.log.Debug("statement stats", "stats", e.stats.Stats().Snapshot().String())
	if err := e.drv.Close(); err != nil {
		e.log.Error("closing database", "err", err)
	}
}
