// Package orm holds the declarative table descriptions the DAO engine works from.
//
// A Description names one table, its properties (one of which is the primary
// key) and the associations to other descriptions:
//
//	users := &orm.Description{
//	    Table: "USERS",
//	    Properties: []*orm.Property{
//	        {Name: "id", Type: orm.Integer, ID: true},
//	        {Name: "email", Type: orm.Varchar, Mandatory: true, Unique: true},
//	    },
//	    Associations: []*orm.Association{
//	        {Name: "orders", Type: orm.OneToMany, JoinKey: "userId", Target: "orders"},
//	    },
//	}
//	if err := users.Init(); err != nil {
//	    log.Fatal(err)
//	}
//
// Descriptions can also be loaded from YAML files with Load, LoadFile and LoadDir.
package orm
