package sequence

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/daoism/dialect"
	"github.com/syssam/daoism/dialect/sql"
)

func mock(t *testing.T, name string) (*sql.Executor, sqlmock.Sqlmock) {
	t.Helper()
	db, m, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sql.NewExecutor(sql.OpenDB(name, db)), m
}

func TestSQLTable(t *testing.T) {
	exec, m := mock(t, dialect.SQLite)
	m.ExpectExec(`CREATE TABLE IF NOT EXISTS "DAOISM_SEQUENCES" ("SEQUENCE_NAME" VARCHAR(255) NOT NULL PRIMARY KEY, "SEQUENCE_VALUE" BIGINT NOT NULL)`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	m.ExpectQuery(`SELECT "SEQUENCE_VALUE" FROM "DAOISM_SEQUENCES" WHERE "SEQUENCE_NAME" = ?`).
		WithArgs("USERS_ID").
		WillReturnRows(sqlmock.NewRows([]string{"SEQUENCE_VALUE"}))
	m.ExpectQuery(`SELECT COUNT(*) AS "COUNT" FROM "USERS"`).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT"}).AddRow(int64(2)))
	m.ExpectExec(`INSERT INTO "DAOISM_SEQUENCES" ("SEQUENCE_NAME", "SEQUENCE_VALUE") VALUES (?, ?)`).
		WithArgs("USERS_ID", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	m.ExpectQuery(`SELECT "SEQUENCE_VALUE" FROM "DAOISM_SEQUENCES" WHERE "SEQUENCE_NAME" = ?`).
		WithArgs("USERS_ID").
		WillReturnRows(sqlmock.NewRows([]string{"SEQUENCE_VALUE"}).AddRow(int64(3)))
	m.ExpectExec(`UPDATE "DAOISM_SEQUENCES" SET "SEQUENCE_VALUE" = ? WHERE "SEQUENCE_NAME" = ?`).
		WithArgs(int64(4), "USERS_ID").
		WillReturnResult(sqlmock.NewResult(0, 1))
	m.ExpectExec(`DELETE FROM "DAOISM_SEQUENCES" WHERE "SEQUENCE_NAME" = ?`).
		WithArgs("USERS_ID").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ctx := context.Background()
	gen := NewSQL(exec, dialect.SQLite)
	v, err := gen.Nextval(ctx, "USERS_ID", "USERS")
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)
	v, err = gen.Nextval(ctx, "USERS_ID", "USERS")
	require.NoError(t, err)
	assert.Equal(t, int64(4), v)
	require.NoError(t, gen.Drop(ctx, "USERS_ID"))
	require.NoError(t, m.ExpectationsWereMet())
}

func TestSQLTableMySQL(t *testing.T) {
	exec, m := mock(t, dialect.MySQL)
	m.ExpectExec("CREATE TABLE IF NOT EXISTS `SEQ` (`SEQUENCE_NAME` VARCHAR(255) NOT NULL PRIMARY KEY, `SEQUENCE_VALUE` BIGINT NOT NULL)").
		WillReturnResult(sqlmock.NewResult(0, 0))
	m.ExpectQuery("SELECT `SEQUENCE_VALUE` FROM `SEQ` WHERE `SEQUENCE_NAME` = ?").
		WithArgs("ORDERS_ID").
		WillReturnRows(sqlmock.NewRows([]string{"SEQUENCE_VALUE"}).AddRow([]byte("41")))
	m.ExpectExec("UPDATE `SEQ` SET `SEQUENCE_VALUE` = ? WHERE `SEQUENCE_NAME` = ?").
		WithArgs(int64(42), "ORDERS_ID").
		WillReturnResult(sqlmock.NewResult(0, 1))

	v, err := NewSQL(exec, "mariadb", WithTable("SEQ")).Nextval(context.Background(), "ORDERS_ID", "")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
	require.NoError(t, m.ExpectationsWereMet())
}

func TestSQLNative(t *testing.T) {
	exec, m := mock(t, dialect.Postgres)
	m.ExpectQuery(`SELECT COUNT(*) AS "COUNT" FROM "USERS"`).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT"}).AddRow(int64(0)))
	m.ExpectExec(`CREATE SEQUENCE IF NOT EXISTS "USERS_ID" START WITH 1`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	m.ExpectQuery(`SELECT nextval($1) AS "VALUE"`).
		WithArgs(`"USERS_ID"`).
		WillReturnRows(sqlmock.NewRows([]string{"VALUE"}).AddRow(int64(1)))
	m.ExpectQuery(`SELECT nextval($1) AS "VALUE"`).
		WithArgs(`"USERS_ID"`).
		WillReturnRows(sqlmock.NewRows([]string{"VALUE"}).AddRow(int64(2)))
	m.ExpectExec(`DROP SEQUENCE IF EXISTS "USERS_ID"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ctx := context.Background()
	gen := NewSQL(exec, dialect.Postgres)
	for _, want := range []int64{1, 2} {
		v, err := gen.Nextval(ctx, "USERS_ID", "USERS")
		require.NoError(t, err)
		assert.Equal(t, want, v)
	}
	require.NoError(t, gen.Drop(ctx, "USERS_ID"))
	require.NoError(t, m.ExpectationsWereMet())
}

func TestSQLErrors(t *testing.T) {
	exec, m := mock(t, dialect.Postgres)
	m.ExpectExec(`DROP SEQUENCE IF EXISTS "USERS_ID"`).WillReturnError(errors.New("permission denied"))

	gen := NewSQL(exec, dialect.Postgres)
	err := gen.Drop(context.Background(), "USERS_ID")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")

	_, err = gen.Nextval(context.Background(), "", "USERS")
	require.Error(t, err)
}

func TestUUID(t *testing.T) {
	t.Parallel()
	var gen Generator = UUID{}
	v, err := gen.Nextval(context.Background(), "ignored", "")
	require.NoError(t, err)
	_, err = uuid.Parse(v.(string))
	require.NoError(t, err)
	w, err := gen.Nextval(context.Background(), "ignored", "")
	require.NoError(t, err)
	assert.NotEqual(t, v, w)
	assert.NoError(t, gen.Drop(context.Background(), "ignored"))
}
