// Package field provides fluent builders for the properties of a table
// description.
//
// Property names are domain names; columns default to their upper snake case:
//
//	field.Int64("userId")    // column USER_ID
//	field.String("email")    // column EMAIL
//
// # Property Types
//
//	field.String("name")      // VARCHAR
//	field.Char("code", 2)     // CHAR(2)
//	field.Text("bio")         // TEXT
//	field.Int("count")        // INTEGER
//	field.Int64("total")      // BIGINT
//	field.Float64("price")    // DOUBLE
//	field.Bool("active")      // BOOLEAN
//	field.Time("createdAt")   // TIMESTAMP
//	field.UUID("id")          // UUID
//	field.Bytes("data")       // BLOB
//
// # Property Options
//
//	field.Int("id").AutoIncrement()        // primary key from the sequence generator
//	field.String("email").
//	    Required().                        // mandatory on insert and update
//	    Unique().                          // checked before insert
//	    MaxLen(320).                       // column length
//	    Column("MAIL")                     // storage column
//	field.Time("createdAt").Immutable()    // written on insert only
//
// # Conversions
//
// Defaults and converters run when entities are written and read:
//
//	field.String("status").Default("active")
//	field.Time("createdAt").DefaultFunc(func() any { return time.Now().UTC() })
//	field.String("tags").
//	    DBValue(func(v any, _ map[string]any) any { return strings.Join(v.([]string), ",") }).
//	    Value(func(raw any) any { return strings.Split(raw.(string), ",") })
package field
