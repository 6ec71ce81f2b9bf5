// Package codec packs and unpacks the fixed-width values exchanged with a
// command device.
//
// Every value on the wire is little-endian with no padding or length prefix:
// a primitive occupies exactly its Kind's width, and a composite is the
// concatenation of its fields in declared order. Sizes are therefore known
// ahead of time, which is what lets a reader block for exactly the number of
// bytes a reply carries.
//
// Three serializer shapes implement Serializer:
//
//   - Primitive[T] for a single scalar (U8, I32, F32, Bool, ...)
//   - Struct for a dynamic tuple of kinds encoded from []any
//   - Record[T] for a Go struct whose exported fields are all scalars
package codec
