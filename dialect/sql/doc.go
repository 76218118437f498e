// Package sql wraps database/sql for the engine.
//
// A Driver adapts a *sql.DB (or a transaction) to the dialect.Driver
// interface. An Executor runs built statements through any
// dialect.ExecQuerier and returns rows as column-keyed maps, generated keys
// and affected row counts:
//
//	drv, err := sql.Open("sqlite", "file:app.db")
//	if err != nil {
//		return err
//	}
//	exec := sql.NewExecutor(drv)
//	rows, err := exec.Query(ctx, `SELECT "ID" FROM "USERS"`, nil)
//
// # Statistics
//
// StatsDriver counts queries, statements, errors and slow statements:
//
//	sd := sql.NewStatsDriver(drv,
//		sql.WithSlowThreshold(200*time.Millisecond),
//		sql.WithSlowQueryLog(logger),
//	)
//	exec := sql.NewExecutor(sd)
//
// # Placeholders
//
// Statements are passed to the driver unchanged. The statement package
// renders "?" for MySQL and SQLite and "$n" for PostgreSQL.
package sql
