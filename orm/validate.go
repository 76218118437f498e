package orm

import (
	"errors"
	"fmt"
)

// ValidationError reports one problem in a description.
type ValidationError struct {
	Table    string
	Property string
	Message  string
}

func (e *ValidationError) Error() string {
	if e.Property != "" {
		return fmt.Sprintf("orm: %s.%s: %s", e.Table, e.Property, e.Message)
	}
	return fmt.Sprintf("orm: %s: %s", e.Table, e.Message)
}

// Validate checks the structural invariants of the description: a table
// name, exactly one primary key, unique property and association names, and
// well-formed associations. All problems are reported together.
func (d *Description) Validate() error {
	var errs []error
	fail := func(prop, format string, args ...any) {
		errs = append(errs, &ValidationError{Table: d.Table, Property: prop, Message: fmt.Sprintf(format, args...)})
	}
	if d.Table == "" {
		fail("", "missing table name")
	}
	var pks int
	seen := make(map[string]struct{}, len(d.Properties))
	for _, p := range d.Properties {
		if p.Name == "" {
			fail("", "property without a name")
			continue
		}
		if _, ok := seen[p.Name]; ok {
			fail(p.Name, "duplicate property name")
		}
		seen[p.Name] = struct{}{}
		if p.ID {
			pks++
		}
		if p.AutoIncrement && !p.ID {
			fail(p.Name, "only the primary key can be auto-incremented")
		}
	}
	switch {
	case pks == 0:
		fail("", "no primary key declared")
	case pks > 1:
		fail("", "%d primary keys declared, expected exactly one", pks)
	}
	names := make(map[string]struct{}, len(d.Associations))
	for _, a := range d.Associations {
		if _, ok := names[a.Name]; ok {
			fail(a.Name, "duplicate association name")
		}
		names[a.Name] = struct{}{}
		if _, ok := seen[a.Name]; ok {
			fail(a.Name, "association name shadows a property")
		}
		if !a.Type.Valid() {
			fail(a.Name, "unknown association type %q", a.Type)
		}
		if a.JoinKey == "" {
			fail(a.Name, "association without a join key")
		}
		if a.Type == ManyToMany && a.Join == "" {
			fail(a.Name, "many-to-many association without a join DAO")
		}
		if a.Key != "" && d.Property(a.Key) == nil {
			fail(a.Name, "association key %q is not a property", a.Key)
		}
	}
	if d.JoinTarget != "" && d.Property(d.JoinTarget) == nil {
		fail("", "join target %q is not a property", d.JoinTarget)
	}
	return errors.Join(errs...)
}
