package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"maps"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/syssam/daoism"
	"github.com/syssam/daoism/statement"
)

// command is one subcommand. setup declares its flags and returns the
// function running it with the remaining arguments.
type command struct {
	summary string
	usage   string
	setup   func(fs *flag.FlagSet) func(ctx context.Context, e *env, args []string) error
}

var commands = map[string]command{
	"status": {
		summary: "report whether each table exists and its row count",
		setup: func(fs *flag.FlagSet) func(context.Context, *env, []string) error {
			limit := fs.Int("parallel", 4, "maximum concurrent checks")
			return func(ctx context.Context, e *env, _ []string) error {
				return status(ctx, e, *limit)
			}
		},
	},
	"create": {
		summary: "create tables",
		usage:   "[name...]",
		setup: func(*flag.FlagSet) func(context.Context, *env, []string) error {
			return create
		},
	},
	"drop": {
		summary: "drop tables",
		usage:   "[-sequence] [name...]",
		setup: func(fs *flag.FlagSet) func(context.Context, *env, []string) error {
			seq := fs.Bool("sequence", false, "also drop the sequences feeding the primary keys")
			return func(ctx context.Context, e *env, args []string) error {
				return drop(ctx, e, args, *seq)
			}
		},
	},
	"count": {
		summary: "print the row count of a table",
		usage:   "<name>",
		setup: func(*flag.FlagSet) func(context.Context, *env, []string) error {
			return count
		},
	},
	"find": {
		summary: "print the entity with a primary key",
		usage:   "[-select props] [-expand assocs] <name> <id>",
		setup: func(fs *flag.FlagSet) func(context.Context, *env, []string) error {
			sel := fs.String("select", "", "comma separated properties to select")
			exp := fs.String("expand", "", "comma separated associations to expand")
			return func(ctx context.Context, e *env, args []string) error {
				return find(ctx, e, args, statement.ParseList(*sel), statement.ParseList(*exp))
			}
		},
	},
	"list": {
		summary: "print the entities matching the list settings",
		usage:   "[flags] <name>",
		setup: func(fs *flag.FlagSet) func(context.Context, *env, []string) error {
			var (
				filter = fs.String("filter", "", "YAML filter, e.g. '{contains: {name: an}}'")
				where  = fs.String("where", "", "YAML equality conditions, e.g. '{active: true}'")
				sel    = fs.String("select", "", "comma separated properties to select")
				exp    = fs.String("expand", "", "comma separated associations to expand")
				sortBy = fs.String("sort", "", "comma separated properties to sort by")
				order  = fs.String("order", "", "asc or desc")
				limit  = fs.Int("limit", 0, "maximum number of entities")
				offset = fs.Int("offset", 0, "number of entities to skip")
			)
			return func(ctx context.Context, e *env, args []string) error {
				settings := daoism.ListSettings{
					Select: statement.ParseList(*sel),
					Expand: statement.ParseList(*exp),
					Sort:   statement.ParseList(*sortBy),
					Order:  *order,
					Limit:  *limit,
					Offset: *offset,
				}
				if *filter != "" {
					settings.Filter = &daoism.Filter{}
					if err := decode(*filter, settings.Filter); err != nil {
						return fmt.Errorf("filter: %w", err)
					}
				}
				if *where != "" {
					if err := decode(*where, &settings.Where); err != nil {
						return fmt.Errorf("where: %w", err)
					}
				}
				return list(ctx, e, args, settings)
			}
		},
	},
	"insert": {
		summary: "insert entities given as YAML mappings and print their keys",
		usage:   "<name> <entity>...",
		setup: func(*flag.FlagSet) func(context.Context, *env, []string) error {
			return insert
		},
	},
	"remove": {
		summary: "remove entities and their dependents",
		usage:   "<name> <id>...",
		setup: func(*flag.FlagSet) func(context.Context, *env, []string) error {
			return remove
		},
	},
}

var errUsage = errors.New("wrong number of arguments")

func status(ctx context.Context, e *env, limit int) error {
	statuses, err := e.reg.ExistsTables(ctx, limit)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTABLE\tEXISTS\tROWS")
	for _, st := range statuses {
		rows := "-"
		if st.Exists {
			rows = fmt.Sprint(st.Count)
		}
		fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", st.Name, st.Table, st.Exists, rows)
	}
	return w.Flush()
}

func create(ctx context.Context, e *env, names []string) error {
	daos, err := e.daos(names)
	if err != nil {
		return err
	}
	for _, d := range daos {
		if d.ExistsTable(ctx) {
			fmt.Fprintf(e.out, "exists %s (%s)\n", d.Name(), d.Table())
			continue
		}
		if _, err := d.CreateTable(ctx); err != nil {
			return err
		}
		fmt.Fprintf(e.out, "created %s (%s)\n", d.Name(), d.Table())
	}
	return nil
}

func drop(ctx context.Context, e *env, names []string, sequence bool) error {
	daos, err := e.daos(names)
	if err != nil {
		return err
	}
	for _, d := range daos {
		if !d.ExistsTable(ctx) {
			continue
		}
		if _, err := d.DropTable(ctx, sequence); err != nil {
			return err
		}
		fmt.Fprintf(e.out, "dropped %s (%s)\n", d.Name(), d.Table())
	}
	return nil
}

func count(ctx context.Context, e *env, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	d, err := e.dao(args[0])
	if err != nil {
		return err
	}
	n, err := d.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(e.out, n)
	return nil
}

func find(ctx context.Context, e *env, args, selection, expand []string) error {
	if len(args) != 2 {
		return errUsage
	}
	d, err := e.dao(args[0])
	if err != nil {
		return err
	}
	ent, err := d.Find(ctx, args[1], daoism.WithSelect(selection...), daoism.WithExpand(expand...))
	if err != nil {
		return err
	}
	if ent == nil {
		return &daoism.NotFoundError{Table: d.Table(), ID: args[1]}
	}
	return e.print(render(ent))
}

func list(ctx context.Context, e *env, args []string, settings daoism.ListSettings) error {
	if len(args) != 1 {
		return errUsage
	}
	d, err := e.dao(args[0])
	if err != nil {
		return err
	}
	entities, err := d.List(ctx, settings)
	if err != nil {
		return err
	}
	out := make([]map[string]any, 0, len(entities))
	for _, ent := range entities {
		out = append(out, render(ent))
	}
	return e.print(out)
}

func insert(ctx context.Context, e *env, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	d, err := e.dao(args[0])
	if err != nil {
		return err
	}
	entities := make([]*daoism.Entity, 0, len(args)-1)
	for _, arg := range args[1:] {
		var m map[string]any
		if err := decode(arg, &m); err != nil {
			return fmt.Errorf("entity %q: %w", arg, err)
		}
		ent, err := e.entity(d, m)
		if err != nil {
			return err
		}
		entities = append(entities, ent)
	}
	ids, err := d.Insert(ctx, entities...)
	if err != nil {
		return err
	}
	return e.print(ids)
}

func remove(ctx context.Context, e *env, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	d, err := e.dao(args[0])
	if err != nil {
		return err
	}
	ids := make([]any, 0, len(args)-1)
	for _, id := range args[1:] {
		ids = append(ids, id)
	}
	if err := d.Remove(ctx, ids...); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "removed %d\n", len(ids))
	return nil
}

// entity builds an entity of d from a decoded mapping. Keys naming an
// association hold the inline children as a list of mappings.
func (e *env) entity(d *daoism.DAO, m map[string]any) (*daoism.Entity, error) {
	ent := daoism.NewEntity(nil)
	for k, v := range m {
		a := d.ORM().Association(k)
		if a == nil {
			ent.Set(k, v)
			continue
		}
		items, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("association %q: expected a list of entities", k)
		}
		target := d
		if a.Target != "" {
			var err error
			if target, err = e.dao(a.Target); err != nil {
				return nil, err
			}
		}
		children := make([]*daoism.Entity, 0, len(items))
		for _, item := range items {
			cm, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("association %q: expected a list of entities", k)
			}
			child, err := e.entity(target, cm)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		ent.SetEdge(k, children)
	}
	return ent, nil
}

// decode decodes one YAML document, rejecting unknown keys of structs.
func decode(s string, v any) error {
	dec := yaml.NewDecoder(strings.NewReader(s))
	dec.KnownFields(true)
	return dec.Decode(v)
}

// render flattens an entity and its edges into one mapping.
func render(ent *daoism.Entity) map[string]any {
	m := make(map[string]any, len(ent.Values)+len(ent.Edges))
	maps.Copy(m, ent.Values)
	for name, edge := range ent.Edges {
		items := make([]map[string]any, 0, len(edge))
		for _, child := range edge {
			items = append(items, render(child))
		}
		m[name] = items
	}
	return m
}

func (e *env) print(v any) error {
	enc := yaml.NewEncoder(e.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
