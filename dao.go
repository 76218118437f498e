// Package daoism maps declarative table descriptions to entity persistence:
// validated inserts with inline association children, updates, cascading
// removes, finds and filtered lists, association traversal and table
// management.
//
// A DAO is bound to one orm.Description. It renders statements with a
// StatementBuilder, binds and coerces parameters by the declared property
// types and runs the statements through an Executor:
//
//	drv, _ := sql.Open("sqlite", "file:app.db")
//	users, err := daoism.New(daoism.Config{
//		Description: desc,
//		Dialect:     dialect.SQLite,
//		Executor:    sql.NewExecutor(drv),
//	})
//	id, err := users.InsertOne(ctx, daoism.NewEntity(daoism.Values{"email": "a@x.com"}))
//	u, err := users.Find(ctx, id)
package daoism

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/syssam/daoism/dialect"
	"github.com/syssam/daoism/orm"
	"github.com/syssam/daoism/sequence"
	"github.com/syssam/daoism/statement"
)

// StatementBuilder renders the statements of one description. The statement
// package provides the default implementation.
type StatementBuilder interface {
	ORM() *orm.Description
	Find(selection []string) statement.Statement
	List(settings ListSettings) statement.Statement
	Count() statement.Statement
	Insert(values map[string]any) statement.Statement
	Update(values map[string]any) statement.Statement
	Delete(key string) statement.Statement
	CreateTable() statement.Statement
	DropTable() statement.Statement
	UniqueCheck(p *orm.Property) statement.Statement
}

// Config configures a DAO.
type Config struct {
	// Description is the table description. It is initialized by New and,
	// on PostgreSQL without CaseSensitive, copied with lower-cased columns.
	// Ignored when Builder is set.
	Description *orm.Description
	// Dialect selects the statements of the default builder.
	Dialect string
	// CaseSensitive keeps column names as declared on PostgreSQL.
	CaseSensitive bool
	// Builder overrides the default statement builder.
	Builder StatementBuilder
	// Executor runs the statements. Required.
	Executor Executor
	// Sequence draws auto-increment primary keys.
	Sequence sequence.Generator
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	Hooks  Hooks
	// Registry resolves the target and join DAOs of associations.
	Registry *Registry
	// Cache, when set, serves finds by primary key.
	Cache    Cache
	CacheTTL time.Duration
	// JoinTarget names the property of join rows holding the target key,
	// making the DAO usable as the join DAO of MANY_TO_MANY associations.
	// Defaults to Description.JoinTarget.
	JoinTarget string
}

// DAO is the persistence engine for one description.
type DAO struct {
	orm        *orm.Description
	builder    StatementBuilder
	exec       Executor
	seq        sequence.Generator
	log        *slog.Logger
	hooks      Hooks
	registry   *Registry
	cache      Cache
	cacheTTL   time.Duration
	table      string
	joinTarget string
}

// New returns a DAO for the configuration.
func New(cfg Config) (*DAO, error) {
	builder := cfg.Builder
	if builder == nil {
		if cfg.Description == nil {
			return nil, fmt.Errorf("%w: daoism: config without description or builder", ErrInvalidArgument)
		}
		desc := cfg.Description
		if err := desc.Init(); err != nil {
			return nil, err
		}
		if dialect.Normalize(cfg.Dialect) == dialect.Postgres && !cfg.CaseSensitive {
			desc = desc.Clone()
			desc.FoldColumns()
		}
		builder = statement.New(desc, cfg.Dialect)
	}
	desc := builder.ORM()
	if desc == nil || desc.PrimaryKey() == nil {
		return nil, fmt.Errorf("%w: daoism: description without primary key", ErrInvalidArgument)
	}
	if cfg.Executor == nil {
		return nil, fmt.Errorf("%w: daoism: %s: config without executor", ErrInvalidArgument, desc.Table)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	joinTarget := cfg.JoinTarget
	if joinTarget == "" {
		joinTarget = desc.JoinTarget
	}
	if joinTarget != "" && desc.Property(joinTarget) == nil {
		return nil, fmt.Errorf("%w: daoism: %s: join target %q is not a property", ErrInvalidArgument, desc.Table, joinTarget)
	}
	return &DAO{
		orm:        desc,
		builder:    builder,
		exec:       cfg.Executor,
		seq:        cfg.Sequence,
		log:        logger.With("component", "db.dao", "table", desc.Table),
		hooks:      cfg.Hooks,
		registry:   cfg.Registry,
		cache:      cfg.Cache,
		cacheTTL:   cfg.CacheTTL,
		table:      desc.Table,
		joinTarget: joinTarget,
	}, nil
}

// ORM returns the description the DAO is bound to.
func (d *DAO) ORM() *orm.Description { return d.orm }

// Name returns the registry name of the description.
func (d *DAO) Name() string { return d.orm.Name }

// Table returns the table name.
func (d *DAO) Table() string { return d.table }

// Builder returns the statement builder.
func (d *DAO) Builder() StatementBuilder { return d.builder }

// SequenceName returns the name of the sequence feeding the primary key:
// the table name and the upper-cased primary key name joined by "_".
func (d *DAO) SequenceName() string {
	return d.table + "_" + strings.ToUpper(d.orm.PrimaryKey().Name)
}

func (d *DAO) pk() *orm.Property { return d.orm.PrimaryKey() }

// target returns the DAO an association points to.
func (d *DAO) target(a *orm.Association) (*DAO, error) {
	if a.Target == "" {
		return d, nil
	}
	return d.resolve(a.Target)
}

// dependentTarget resolves the target DAO of an association whose join key
// is held by the target rows. A join key the target does not declare is an
// error: listing dependents by it would match every row.
func (d *DAO) dependentTarget(op string, a *orm.Association) (*DAO, error) {
	target, err := d.target(a)
	if err != nil {
		return nil, err
	}
	if target.orm.Property(a.JoinKey) == nil {
		return nil, NewArgumentError(d.table, op, "association %s: %s has no property %q", a.Name, target.table, a.JoinKey)
	}
	return target, nil
}

func (d *DAO) resolve(name string) (*DAO, error) {
	if d.registry == nil {
		return nil, fmt.Errorf("%w: daoism: %s: no registry to resolve %q", ErrInvalidArgument, d.table, name)
	}
	return d.registry.DAO(name)
}

// nextID draws the next primary key value from the sequence generator.
func (d *DAO) nextID(ctx context.Context) (any, error) {
	if d.seq == nil {
		return nil, errors.New("daoism: auto-increment primary key without a sequence generator")
	}
	return d.seq.Nextval(ctx, d.SequenceName(), d.table)
}
