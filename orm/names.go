package orm

import (
	"strings"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ColumnName derives the default column name of a property: the property
// name in upper snake case ("firstName" becomes "FIRST_NAME").
func ColumnName(name string) string {
	return strings.ToUpper(inflect.Underscore(name))
}

var lower = cases.Lower(language.Und)

// FoldColumns lower-cases every column name. It is applied to descriptions
// used against PostgreSQL when names are not case-sensitive, since unquoted
// identifiers are folded to lower case there.
func (d *Description) FoldColumns() {
	for _, p := range d.Properties {
		p.Column = lower.String(p.Column)
	}
}
