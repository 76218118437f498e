// Package statement renders the parameterized SQL statements the DAO engine
// executes for one orm.Description.
//
// A Statement exposes its SQL text and the ordered list of parameters its
// placeholders stand for. Placeholders follow the dialect: "?" for MySQL and
// SQLite, "$n" for PostgreSQL. Slice values under the Equals and NotEquals
// filter operators are rendered as IN lists with one placeholder per element
// while the parameter is declared once; binders expand the slice in place.
//
//	b := statement.New(users, dialect.Postgres)
//	st := b.List(statement.ListSettings{
//	    Filter: &statement.Filter{Equals: map[string]any{"status": []any{"new", "open"}}},
//	    Limit:  10,
//	})
//	st.Build()      // SELECT ... WHERE "STATUS" IN ($1, $2) LIMIT 10
//	st.Parameters() // [{Name: status ...}]
package statement
