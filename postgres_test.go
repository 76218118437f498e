package daoism_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/daoism"
	"github.com/syssam/daoism/dialect"
	"github.com/syssam/daoism/dialect/sql"
	"github.com/syssam/daoism/orm"
	"github.com/syssam/daoism/sequence"
)

func itemsDescription() *orm.Description {
	return &orm.Description{
		Table: "ITEMS",
		Properties: []*orm.Property{
			{Name: "id", Type: orm.Integer, ID: true},
			{Name: "sku", Type: orm.Varchar, Mandatory: true, Unique: true},
			{Name: "inStock", Type: orm.Boolean},
		},
	}
}

func mockDAO(t *testing.T, cfg daoism.Config) (*daoism.DAO, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	exec := sql.NewExecutor(sql.OpenDB(dialect.Postgres, db))
	if cfg.Description == nil {
		cfg.Description = itemsDescription()
	}
	cfg.Dialect = dialect.Postgres
	cfg.Executor = exec
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	d, err := daoism.New(cfg)
	require.NoError(t, err)
	return d, mock
}

const (
	uniqueSKU  = `SELECT "sku" FROM "ITEMS" WHERE "sku" = $1`
	insertItem = `INSERT INTO "ITEMS" ("sku", "in_stock") VALUES ($1, $2) RETURNING "id"`
	deleteItem = `DELETE FROM "ITEMS" WHERE "id" = $1`
)

func TestPostgresInsert(t *testing.T) {
	ctx := context.Background()

	t.Run("Returning", func(t *testing.T) {
		d, mock := mockDAO(t, daoism.Config{})
		mock.ExpectQuery(uniqueSKU).WithArgs("A-1").WillReturnRows(sqlmock.NewRows([]string{"sku"}))
		mock.ExpectQuery(insertItem).WithArgs("A-1", true).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))
		e := daoism.NewEntity(daoism.Values{"sku": "A-1", "inStock": 1})
		id, err := d.InsertOne(ctx, e)
		require.NoError(t, err)
		assert.Equal(t, int64(5), id)
		assert.Equal(t, int64(5), e.Get("id"))
	})

	t.Run("UniqueChecked", func(t *testing.T) {
		d, mock := mockDAO(t, daoism.Config{})
		mock.ExpectQuery(uniqueSKU).WithArgs("A-1").WillReturnRows(sqlmock.NewRows([]string{"sku"}).AddRow("A-1"))
		_, err := d.Insert(ctx, daoism.NewEntity(daoism.Values{"sku": "A-1"}))
		assert.True(t, daoism.IsConstraintError(err))
	})

	t.Run("UniqueViolation", func(t *testing.T) {
		d, mock := mockDAO(t, daoism.Config{})
		mock.ExpectQuery(uniqueSKU).WithArgs("A-1").WillReturnRows(sqlmock.NewRows([]string{"sku"}))
		mock.ExpectQuery(insertItem).WithArgs("A-1", false).WillReturnError(&pq.Error{Code: "23505"})
		_, err := d.Insert(ctx, daoism.NewEntity(daoism.Values{"sku": "A-1"}))
		require.True(t, daoism.IsConstraintError(err))
		var pqErr *pq.Error
		assert.True(t, errors.As(err, &pqErr))
	})

	t.Run("CompensatingDelete", func(t *testing.T) {
		fail := errors.New("listener failed")
		d, mock := mockDAO(t, daoism.Config{Hooks: daoism.Hooks{
			AfterInsert: func(context.Context, *daoism.Entity, daoism.Record) error { return fail },
		}})
		mock.ExpectQuery(uniqueSKU).WithArgs("A-1").WillReturnRows(sqlmock.NewRows([]string{"sku"}))
		mock.ExpectQuery(insertItem).WithArgs("A-1", false).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))
		mock.ExpectExec(deleteItem).WithArgs(int64(5)).WillReturnResult(sqlmock.NewResult(0, 1))
		_, err := d.Insert(ctx, daoism.NewEntity(daoism.Values{"sku": "A-1"}))
		assert.ErrorIs(t, err, fail)
	})

	t.Run("Sequence", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		require.NoError(t, err)
		defer db.Close()
		exec := sql.NewExecutor(sql.OpenDB(dialect.Postgres, db))
		desc := itemsDescription()
		desc.Properties[0].AutoIncrement = true
		d, err := daoism.New(daoism.Config{
			Description: desc,
			Dialect:     dialect.Postgres,
			Executor:    exec,
			Sequence:    sequence.NewSQL(exec, dialect.Postgres),
			Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		})
		require.NoError(t, err)

		mock.ExpectQuery(uniqueSKU).WithArgs("A-1").WillReturnRows(sqlmock.NewRows([]string{"sku"}))
		mock.ExpectQuery(`SELECT COUNT(*) AS "COUNT" FROM "ITEMS"`).WillReturnRows(sqlmock.NewRows([]string{"COUNT"}).AddRow(int64(3)))
		mock.ExpectExec(`CREATE SEQUENCE IF NOT EXISTS "ITEMS_ID" START WITH 4`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT nextval($1) AS "VALUE"`).WithArgs(`"ITEMS_ID"`).WillReturnRows(sqlmock.NewRows([]string{"VALUE"}).AddRow(int64(4)))
		mock.ExpectExec(`INSERT INTO "ITEMS" ("id", "sku", "in_stock") VALUES ($1, $2, $3)`).WithArgs(int64(4), "A-1", false).WillReturnResult(sqlmock.NewResult(0, 1))
		id, err := d.InsertOne(ctx, daoism.NewEntity(daoism.Values{"sku": "A-1"}))
		require.NoError(t, err)
		assert.Equal(t, int64(4), id)

		mock.ExpectExec(`DROP TABLE "ITEMS"`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DROP SEQUENCE IF EXISTS "ITEMS_ID"`).WillReturnError(errors.New("permission denied"))
		_, err = d.DropTable(ctx, true)
		assert.ErrorContains(t, err, "sequence: drop ITEMS_ID")
		assert.ErrorContains(t, err, "permission denied")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresRead(t *testing.T) {
	ctx := context.Background()

	t.Run("Find", func(t *testing.T) {
		d, mock := mockDAO(t, daoism.Config{})
		mock.ExpectQuery(`SELECT "id", "sku", "in_stock" FROM "ITEMS" WHERE "id" = $1`).
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "sku", "in_stock"}).AddRow(int64(5), []byte("A-1"), true))
		e, err := d.Find(ctx, "5")
		require.NoError(t, err)
		assert.Equal(t, daoism.Values{"id": int64(5), "sku": "A-1", "inStock": true}, e.Values)
	})

	t.Run("Count", func(t *testing.T) {
		d, mock := mockDAO(t, daoism.Config{})
		mock.ExpectQuery(`SELECT COUNT(*) AS "COUNT" FROM "ITEMS"`).
			WillReturnRows(sqlmock.NewRows([]string{"COUNT"}).AddRow([]byte("7")))
		n, err := d.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 7, n)
	})

	t.Run("ContainsWildcard", func(t *testing.T) {
		d, mock := mockDAO(t, daoism.Config{})
		mock.ExpectQuery(`SELECT "id", "sku", "in_stock" FROM "ITEMS" WHERE "sku" LIKE $1 AND "in_stock" = $2`).
			WithArgs("%A-%", true).
			WillReturnRows(sqlmock.NewRows([]string{"id", "sku", "in_stock"}))
		list, err := d.List(ctx, daoism.ListSettings{
			Filter: &daoism.Filter{Contains: map[string]any{"sku": "A-"}},
			Where:  map[string]any{"inStock": "yes"},
		})
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("ExistsTable", func(t *testing.T) {
		d, mock := mockDAO(t, daoism.Config{})
		mock.ExpectQuery(`SELECT COUNT(*) AS "COUNT" FROM "ITEMS"`).WillReturnError(&pq.Error{Code: "42P01"})
		assert.False(t, d.ExistsTable(ctx))
		mock.ExpectQuery(`SELECT COUNT(*) AS "COUNT" FROM "ITEMS"`).WillReturnError(errors.New("connection refused"))
		assert.False(t, d.ExistsTable(ctx))
		mock.ExpectQuery(`SELECT COUNT(*) AS "COUNT" FROM "ITEMS"`).WillReturnRows(sqlmock.NewRows([]string{"COUNT"}).AddRow(0))
		assert.True(t, d.ExistsTable(ctx))
	})
}
