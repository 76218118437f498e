// Package schema builds table descriptions in Go instead of YAML.
//
// The builders of the subpackages produce the properties and associations:
//
//   - [field]: properties
//   - [edge]: associations
//   - [mixin]: property sets shared by several tables
//
// # Quick Start
//
//	users := schema.New("USERS").
//	    Mixin(mixin.ID{}, mixin.Time{}).
//	    Fields(
//	        field.String("email").Required().Unique().MaxLen(320),
//	        field.String("name"),
//	        field.Bool("active").Default(true),
//	    ).
//	    Edges(
//	        edge.To("posts", "posts").Field("userId"),
//	        edge.To("groups", "groups").Through("memberships").Field("userId"),
//	    )
//
//	desc, err := users.Description()
//	if err != nil {
//	    return err
//	}
//	dao, err := daoism.New(daoism.Config{Description: desc, Executor: exec})
//
// Description fills in columns and the registry name and validates the
// result the same way a YAML description is validated.
package schema
