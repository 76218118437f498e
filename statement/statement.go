package statement

import (
	"reflect"
	"strings"
)

// Filter operator names, in the order their conditions are rendered and bound.
const (
	OpEquals             = "equals"
	OpNotEquals          = "notEquals"
	OpContains           = "contains"
	OpGreaterThan        = "greaterThan"
	OpLessThan           = "lessThan"
	OpGreaterThanOrEqual = "greaterThanOrEqual"
	OpLessThanOrEqual    = "lessThanOrEqual"
)

// Parameter is one declared statement parameter.
type Parameter struct {
	// Name is the property name.
	Name string
	// Column is the storage column of the property.
	Column string
	// Type is the declared column type.
	Type string
	// Operator is the filter operator the parameter belongs to, empty for
	// parameters bound by name, column or position.
	Operator string
}

// Binding is the value bound to one placeholder, with the declared type of
// its parameter.
type Binding struct {
	Type  string
	Value any
}

// Statement is a built, parameterized SQL statement.
type Statement interface {
	Build() string
	Parameters() []Parameter
}

type stmt struct {
	sql    string
	params []Parameter
}

func (s *stmt) Build() string           { return s.sql }
func (s *stmt) Parameters() []Parameter { return s.params }
func (s *stmt) String() string          { return s.sql }

// Raw returns a Statement for hand-written SQL.
func Raw(sql string, params ...Parameter) Statement {
	return &stmt{sql: sql, params: params}
}

// Filter holds per-operator conditions keyed by property name.
type Filter struct {
	Equals             map[string]any `json:"equals,omitempty" yaml:"equals,omitempty"`
	NotEquals          map[string]any `json:"notEquals,omitempty" yaml:"notEquals,omitempty"`
	Contains           map[string]any `json:"contains,omitempty" yaml:"contains,omitempty"`
	GreaterThan        map[string]any `json:"greaterThan,omitempty" yaml:"greaterThan,omitempty"`
	LessThan           map[string]any `json:"lessThan,omitempty" yaml:"lessThan,omitempty"`
	GreaterThanOrEqual map[string]any `json:"greaterThanOrEqual,omitempty" yaml:"greaterThanOrEqual,omitempty"`
	LessThanOrEqual    map[string]any `json:"lessThanOrEqual,omitempty" yaml:"lessThanOrEqual,omitempty"`
}

// Condition is one operator of a Filter with its values.
type Condition struct {
	Operator string
	Values   map[string]any
}

// Conditions returns the non-empty operators of f in rendering order.
func (f *Filter) Conditions() []Condition {
	if f == nil {
		return nil
	}
	all := []Condition{
		{OpEquals, f.Equals},
		{OpNotEquals, f.NotEquals},
		{OpContains, f.Contains},
		{OpGreaterThan, f.GreaterThan},
		{OpLessThan, f.LessThan},
		{OpGreaterThanOrEqual, f.GreaterThanOrEqual},
		{OpLessThanOrEqual, f.LessThanOrEqual},
	}
	conds := all[:0]
	for _, c := range all {
		if len(c.Values) > 0 {
			conds = append(conds, c)
		}
	}
	return conds
}

// Clone returns a copy of f whose operator maps can be modified without
// affecting f.
func (f *Filter) Clone() *Filter {
	if f == nil {
		return nil
	}
	return &Filter{
		Equals:             cloneMap(f.Equals),
		NotEquals:          cloneMap(f.NotEquals),
		Contains:           cloneMap(f.Contains),
		GreaterThan:        cloneMap(f.GreaterThan),
		LessThan:           cloneMap(f.LessThan),
		GreaterThanOrEqual: cloneMap(f.GreaterThanOrEqual),
		LessThanOrEqual:    cloneMap(f.LessThanOrEqual),
	}
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	c := make(map[string]any, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// ListSettings are the options of a list statement.
type ListSettings struct {
	// Expand names associations to resolve for every listed entity.
	Expand []string `json:"$expand,omitempty" yaml:"expand,omitempty"`
	// Select restricts the selected properties.
	Select []string `json:"$select,omitempty" yaml:"select,omitempty"`
	Filter *Filter  `json:"$filter,omitempty" yaml:"filter,omitempty"`
	// Where holds plain equality conditions keyed by property name.
	Where map[string]any `json:"where,omitempty" yaml:"where,omitempty"`
	// Sort lists the properties to order by.
	Sort []string `json:"$sort,omitempty" yaml:"sort,omitempty"`
	// Order is "asc" (default) or "desc".
	Order  string `json:"$order,omitempty" yaml:"order,omitempty"`
	Limit  int    `json:"$limit,omitempty" yaml:"limit,omitempty"`
	Offset int    `json:"$offset,omitempty" yaml:"offset,omitempty"`
}

// ParseList splits comma-delimited names into an ordered list, trimming
// blanks and dropping empty entries.
func ParseList(names ...string) []string {
	var out []string
	for _, s := range names {
		for _, n := range strings.Split(s, ",") {
			if n = strings.TrimSpace(n); n != "" {
				out = append(out, n)
			}
		}
	}
	return out
}

// Spread reports whether v is a slice or array (other than []byte) and
// returns its elements.
func Spread(v any) ([]any, bool) {
	switch v := v.(type) {
	case nil, []byte:
		return nil, false
	case []any:
		return v, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
