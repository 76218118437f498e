package daoism

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/syssam/daoism/orm"
)

// Factory builds the DAO registered under a name. It receives the registry so
// that the DAO can resolve its associations.
type Factory func(r *Registry) (*DAO, error)

// Registry resolves the target and join DAOs of associations by name. DAOs
// are built on first use and shared afterwards.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	daos      map[string]*DAO
	group     singleflight.Group
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		daos:      make(map[string]*DAO),
	}
}

// Register adds a factory under name, replacing any previous registration.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
	delete(r.daos, name)
}

// Add registers an already built DAO under its description name.
func (r *Registry) Add(d *DAO) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.daos[d.Name()] = d
	delete(r.factories, d.Name())
}

// Describe registers one DAO per description, each built from base with the
// description and this registry.
func (r *Registry) Describe(base Config, descs ...*orm.Description) {
	for _, desc := range descs {
		cfg := base
		cfg.Description = desc
		cfg.Builder = nil
		cfg.Registry = r
		if desc.Name == "" {
			desc.Name = strings.ToLower(desc.Table)
		}
		r.Register(desc.Name, func(*Registry) (*DAO, error) {
			return New(cfg)
		})
	}
}

// DAO returns the DAO registered under name.
func (r *Registry) DAO(name string) (*DAO, error) {
	r.mu.RLock()
	d, ok := r.daos[name]
	f := r.factories[name]
	r.mu.RUnlock()
	if ok {
		return d, nil
	}
	if f == nil {
		return nil, fmt.Errorf("%w: daoism: no dao registered as %q", ErrInvalidArgument, name)
	}
	v, err, _ := r.group.Do(name, func() (any, error) {
		r.mu.RLock()
		d, ok := r.daos[name]
		r.mu.RUnlock()
		if ok {
			return d, nil
		}
		d, err := f(r)
		if err != nil {
			return nil, fmt.Errorf("daoism: building dao %q: %w", name, err)
		}
		r.mu.Lock()
		r.daos[name] = d
		r.mu.Unlock()
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*DAO), nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories)+len(r.daos))
	for name := range r.factories {
		names = append(names, name)
	}
	for name := range r.daos {
		if _, ok := r.factories[name]; !ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// TableStatus is the result of ExistsTables for one DAO.
type TableStatus struct {
	Name   string
	Table  string
	Exists bool
	Count  int
}

// ExistsTables checks the tables of every registered DAO concurrently and
// counts the rows of the existing ones. At most limit checks run at once; a
// limit below one means no limit.
func (r *Registry) ExistsTables(ctx context.Context, limit int) ([]TableStatus, error) {
	names := r.Names()
	statuses := make([]TableStatus, len(names))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			d, err := r.DAO(name)
			if err != nil {
				return err
			}
			st := TableStatus{Name: name, Table: d.Table(), Exists: d.ExistsTable(ctx)}
			if st.Exists {
				if st.Count, err = d.Count(ctx); err != nil {
					return err
				}
			}
			statuses[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return statuses, nil
}
