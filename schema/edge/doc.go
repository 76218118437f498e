// Package edge provides fluent builders for the associations of a table
// description.
//
//	// ONE_TO_MANY: POSTS.USER_ID holds the user key
//	edge.To("posts", "posts").Field("userId")
//
//	// ONE_TO_ONE
//	edge.To("profile", "profiles").Field("userId").Unique()
//
//	// MANY_TO_ONE: the post holds the user key in userId
//	edge.From("author", "users").Field("userId")
//
//	// MANY_TO_MANY joined by the rows of the memberships DAO
//	edge.To("groups", "groups").Through("memberships").Field("userId")
//
// Target and join names are registry names. Defaults restricts the listed
// entities:
//
//	edge.To("drafts", "posts").Field("userId").Defaults(map[string]any{"state": "draft"})
package edge
