// Package dataloader reorders batch-loaded values to the order of the keys
// they were requested with.
//
// A batch load fetches every requested key with one statement, which returns
// rows in storage order. OrderByKeys restores the request order:
//
//	targets, _ := dao.List(ctx, daoism.ListSettings{Filter: &daoism.Filter{Equals: map[string]any{"id": ids}}})
//	ordered, errs := dataloader.OrderByKeys(ids, targets, func(e *daoism.Entity) any { return e.Values["id"] })
package dataloader

import (
	"errors"
)

// ErrNotFound is reported for a key without a loaded value.
var ErrNotFound = errors.New("dataloader: entity not found")

// KeyFunc extracts the key of a value.
type KeyFunc[K comparable, V any] func(V) K

// OrderByKeys returns one value per key, in key order. A key without a value
// gets the zero value and ErrNotFound at its index. Repeated keys repeat the
// value.
func OrderByKeys[K comparable, V any](keys []K, values []V, keyFn KeyFunc[K, V]) ([]V, []error) {
	lookup := make(map[K]V, len(values))
	for _, v := range values {
		lookup[keyFn(v)] = v
	}
	result := make([]V, len(keys))
	errs := make([]error, len(keys))
	for i, key := range keys {
		if v, ok := lookup[key]; ok {
			result[i] = v
		} else {
			errs[i] = ErrNotFound
		}
	}
	return result, errs
}

// Found returns the values OrderByKeys resolved, dropping the missing ones.
func Found[V any](values []V, errs []error) []V {
	out := make([]V, 0, len(values))
	for i, v := range values {
		if i < len(errs) && errs[i] != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}
