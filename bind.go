package daoism

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/syssam/daoism/orm"
	"github.com/syssam/daoism/statement"
)

// Coerce converts v to the form bound for a parameter of the declared type.
// Integer types are bound as int64 and floating point types as float64;
// BOOLEAN is bound as the string "true" or "false" by the truthiness of v;
// UUID values are bound in canonical string form. Other types pass through.
// nil stays nil except for BOOLEAN, which binds "false".
func Coerce(typ string, v any) (any, error) {
	typ = strings.ToUpper(typ)
	switch {
	case typ == orm.Boolean:
		if truthy(v) {
			return "true", nil
		}
		return "false", nil
	case v == nil:
		return nil, nil
	case orm.IsInteger(typ):
		return parseInt(v)
	case orm.IsFloat(typ):
		return parseFloat(v)
	case typ == orm.UUID:
		return parseUUID(v)
	}
	return v, nil
}

func parseInt(v any) (int64, error) {
	if s, ok := text(v); ok {
		s = strings.TrimSpace(s)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("%w: cannot parse %q as integer", ErrInvalidArgument, s)
		}
		return int64(f), nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return int64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("%w: cannot parse %v as integer", ErrInvalidArgument, f)
		}
		return int64(f), nil
	}
	return 0, fmt.Errorf("%w: cannot parse %T as integer", ErrInvalidArgument, v)
}

func parseFloat(v any) (float64, error) {
	if s, ok := text(v); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: cannot parse %q as float", ErrInvalidArgument, s)
		}
		return f, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	}
	return 0, fmt.Errorf("%w: cannot parse %T as float", ErrInvalidArgument, v)
}

func parseUUID(v any) (string, error) {
	switch v := v.(type) {
	case uuid.UUID:
		return v.String(), nil
	case [16]byte:
		return uuid.UUID(v).String(), nil
	}
	s, ok := text(v)
	if !ok {
		return "", fmt.Errorf("%w: cannot parse %T as uuid", ErrInvalidArgument, v)
	}
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("%w: cannot parse %q as uuid: %v", ErrInvalidArgument, s, err)
	}
	return id.String(), nil
}

// text returns the textual form of string-like values.
func text(v any) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	case json.Number:
		return v.String(), true
	case fmt.Stringer:
		return v.String(), true
	}
	return "", false
}

func truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "", "false", "0":
			return false
		}
		return true
	case []byte:
		return truthy(string(v))
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

// bind derives the bindings of st from src. src is one of:
//
//   - ListSettings or *Filter: filter conditions bound operator by operator,
//     then Where values bound by property name;
//   - Values or map[string]any: values bound by property name;
//   - Record: values bound by column name;
//   - []any: values bound by position;
//   - any other value: a single positional value.
//
// Parameters of select statements without a value are skipped.
func (d *DAO) bind(op string, st statement.Statement, src any) ([]Binding, error) {
	query := st.Build()
	if strings.TrimSpace(query) == "" {
		return nil, NewArgumentError(d.table, op, "sql from statement builder is invalid [%s]", query)
	}
	var (
		filter     *Filter
		named      map[string]any
		record     Record
		positional []any
	)
	switch s := src.(type) {
	case nil:
	case ListSettings:
		filter, named = s.Filter, s.Where
	case *ListSettings:
		if s != nil {
			filter, named = s.Filter, s.Where
		}
	case *Filter:
		filter = s
	case Values:
		named = s
	case map[string]any:
		named = s
	case Record:
		record = s
	case []any:
		positional = s
	default:
		positional = []any{s}
	}

	params := st.Parameters()
	bindings := make([]Binding, 0, len(params))
	add := func(p statement.Parameter, v any) error {
		cv, err := Coerce(p.Type, v)
		if err != nil {
			return NewArgumentError(d.table, op, "parameter %s: %v", p.Name, err)
		}
		bindings = append(bindings, Binding{Type: p.Type, Value: cv})
		return nil
	}
	for _, c := range filter.Conditions() {
		added := make(map[string]bool)
		for _, p := range params {
			if p.Operator != c.Operator || added[p.Name] {
				continue
			}
			v, ok := c.Values[p.Name]
			if !ok {
				continue
			}
			added[p.Name] = true
			if vs, ok := statement.Spread(v); ok && (c.Operator == statement.OpEquals || c.Operator == statement.OpNotEquals) {
				for _, v := range vs {
					if err := add(p, v); err != nil {
						return nil, err
					}
				}
				continue
			}
			if err := add(p, v); err != nil {
				return nil, err
			}
		}
	}

	isSelect := keyword(query) == "select"
	var i int
	for _, p := range params {
		if p.Operator != "" {
			continue
		}
		var v any
		switch {
		case positional != nil:
			if i < len(positional) {
				v = positional[i]
			}
		case record != nil:
			v = record[p.Column]
		case named != nil:
			v = named[p.Name]
		}
		i++
		if v == nil && isSelect {
			continue
		}
		d.log.Debug("binding parameter", "index", len(bindings)+1, "name", p.Name)
		if err := add(p, v); err != nil {
			return nil, err
		}
	}
	return bindings, nil
}
