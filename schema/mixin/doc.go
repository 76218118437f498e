// Package mixin provides property sets shared by several tables.
//
//	schema.New("USERS").Mixin(mixin.ID{}, mixin.Time{})
//
// Custom mixins implement schema.Mixin:
//
//	type Audit struct{}
//
//	func (Audit) Fields() []*field.Builder {
//	    return []*field.Builder{
//	        field.String("createdBy").Immutable(),
//	        field.String("updatedBy"),
//	    }
//	}
package mixin
