package daoism

import (
	"context"

	"github.com/syssam/daoism/dialect/sql/sqlgraph"
)

const (
	opExistsTable = "existsTable"
	opCreateTable = "createTable"
	opDropTable   = "dropTable"
)

// ExistsTable reports whether the table can be counted. Any failure, not only
// a missing table, reports false; the failure is logged with its class.
func (d *DAO) ExistsTable(ctx context.Context) bool {
	if _, err := d.execute(ctx, opExistsTable, d.builder.Count(), nil); err != nil {
		d.log.DebugContext(ctx, "table not available", "class", sqlgraph.Classify(err), "err", err)
		return false
	}
	return true
}

// CreateTable creates the table.
func (d *DAO) CreateTable(ctx context.Context) (*DAO, error) {
	d.log.DebugContext(ctx, "creating table")
	if _, err := d.execute(ctx, opCreateTable, d.builder.CreateTable(), nil); err != nil {
		d.log.ErrorContext(ctx, "creating table failed", "err", err)
		return nil, err
	}
	return d, nil
}

// DropTable drops the table and, when dropIDSequence is set, the sequence
// feeding its primary key.
func (d *DAO) DropTable(ctx context.Context, dropIDSequence bool) (*DAO, error) {
	d.log.DebugContext(ctx, "dropping table", "sequence", dropIDSequence)
	if _, err := d.execute(ctx, opDropTable, d.builder.DropTable(), nil); err != nil {
		d.log.ErrorContext(ctx, "dropping table failed", "err", err)
		return nil, err
	}
	d.evictAll(ctx)
	if dropIDSequence && d.seq != nil {
		if err := d.seq.Drop(ctx, d.SequenceName()); err != nil {
			d.log.ErrorContext(ctx, "dropping sequence failed", "sequence", d.SequenceName(), "err", err)
			return nil, err
		}
	}
	return d, nil
}
