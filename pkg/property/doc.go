// Package property reads and writes named attributes on arbitrary document
// values without knowing their concrete type.
//
// The lookups work on structs, pointers to structs and string-keyed maps.
// Struct attributes match either the Go field name or the name in the field's
// json tag, so a field declared as
//
//	ID string `json:"id"`
//
// is found as "ID", "id" or " Id " (the last two only with normalization).
//
// Nothing in this package returns an error or panics on a missing attribute:
// absent attributes, nil pointers and type mismatches all degrade to
// "not found" for reads and to a no-op for writes. That keeps heterogeneous
// document shapes usable by the same code path.
//
// Types that know their own identifier should implement Identifiable;
// Identifier and WithIdentifier prefer it over reflection.
//
// # Usage
//
//	type Product struct {
//		ID   string `json:"id"`
//		Name string `json:"name"`
//	}
//
//	p := property.Set(Product{Name: "desk"}, "id", "p-1")
//	v, ok := property.Get(p, "Id") // "p-1", true
//
//	id, ok := property.Identifier(p) // "p-1", true
package property
