package transform

import "github.com/roach88/idlsdk/internal/idl"

// SimplifyReferences collapses named type references.
//
// For every field whose value is an object carrying a "defined" object with
// a non-empty string "name", the "defined" field is replaced by that name:
//
//	{"type": {"defined": {"name": "HouseConfig", "generics": []}}}
//	    -> {"type": {"defined": "HouseConfig"}}
//
// The match is on field values, whatever the field is called, at any depth.
// The document root and array elements are never candidates themselves;
// their fields are.
func SimplifyReferences(doc idl.Value) idl.Value {
	out, _ := simplifyReferences(doc)
	return out
}

func simplifyReferences(doc idl.Value) (idl.Value, int) {
	rewrites := 0
	out := Walk(doc, func(obj *idl.Object) {
		for _, k := range obj.Keys() {
			ref, ok := obj.GetObject(k)
			if !ok {
				continue
			}
			defined, ok := ref.GetObject("defined")
			if !ok {
				continue
			}
			name, ok := defined.GetString("name")
			if !ok || name == "" {
				continue
			}
			collapsed := ref.Clone()
			collapsed.Set("defined", idl.String(name))
			obj.Set(k, collapsed)
			rewrites++
		}
	})
	return out, rewrites
}
