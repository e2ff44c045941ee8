package transform

import "github.com/roach88/idlsdk/internal/idl"

// Rule rewrites the fields of a single object node.
// It receives a fresh shallow copy owned by the walk and may Set or Delete
// fields freely; any child it replaces is walked afterwards.
type Rule func(obj *idl.Object)

// Walk returns a copy of v with rule applied pre-order at every object node.
//
//   - Arrays map Walk over each element into a new array, preserving order.
//   - Objects are shallow-copied, rule runs on the copy, then every value of
//     the copy is walked and stored back under the same key.
//   - Scalars are returned unchanged.
func Walk(v idl.Value, rule Rule) idl.Value {
	switch val := v.(type) {
	case idl.Array:
		out := make(idl.Array, len(val))
		for i, elem := range val {
			out[i] = Walk(elem, rule)
		}
		return out
	case *idl.Object:
		if val == nil {
			return val
		}
		out := val.Clone()
		rule(out)
		for _, k := range out.Keys() {
			child, _ := out.Get(k)
			out.Set(k, Walk(child, rule))
		}
		return out
	default:
		return v
	}
}
