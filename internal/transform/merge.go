package transform

import (
	"fmt"

	"github.com/roach88/idlsdk/internal/idl"
)

// MergeTypesIntoAccounts copies the fields of each type definition into the
// account definition of the same name.
//
// The lookup is built from "types" with "name" stripped; when two types share
// a name the later one wins. Each account whose name is in the lookup gains
// the type's fields it does not already have. The account's own fields win
// on collision and nested values are replaced wholesale, never deep-merged.
// Accounts without a matching type pass through. "types" stays in the output.
// An empty name never matches: such types are left out of the lookup and
// such accounts pass through.
//
// If "types" or "accounts" is absent (or null) the document is returned
// unchanged. When present, both must be arrays of objects with a string
// "name"; otherwise a *ShapeError is returned.
func MergeTypesIntoAccounts(doc idl.Value) (idl.Value, error) {
	out, _, err := mergeTypesIntoAccounts(doc)
	return out, err
}

// CheckShape verifies the preconditions of MergeTypesIntoAccounts without
// rewriting anything.
func CheckShape(doc idl.Value) error {
	_, _, err := collectDefinitions(doc)
	return err
}

// definition is a named entry of "types" or "accounts".
type definition struct {
	name string
	obj  *idl.Object
}

func mergeTypesIntoAccounts(doc idl.Value) (idl.Value, int, error) {
	types, accounts, err := collectDefinitions(doc)
	if err != nil {
		return nil, 0, err
	}

	// Output never shares nodes with the input, even on the no-op path
	out := copyTree(doc)
	if types == nil || accounts == nil {
		return out, 0, nil
	}

	props := make(map[string]*idl.Object, len(types))
	for _, def := range types {
		if def.name == "" {
			continue
		}
		fields := def.obj.Clone()
		fields.Delete("name")
		props[def.name] = fields
	}

	merged := make(idl.Array, len(accounts))
	count := 0
	for i, acc := range accounts {
		account := copyTree(acc.obj).(*idl.Object)
		fields, ok := props[acc.name]
		if ok && acc.name != "" {
			for k, v := range fields.All() {
				if !account.Has(k) {
					account.Set(k, copyTree(v))
				}
			}
			count++
		}
		merged[i] = account
	}

	root := out.(*idl.Object)
	root.Set("accounts", merged)
	return root, count, nil
}

// collectDefinitions extracts "types" and "accounts" from the document root.
// Both slices are nil when either field is absent or null, in which case
// neither is inspected.
func collectDefinitions(doc idl.Value) (types, accounts []definition, err error) {
	root, ok := doc.(*idl.Object)
	if !ok || root == nil {
		return nil, nil, nil
	}
	if !present(root, "types") || !present(root, "accounts") {
		return nil, nil, nil
	}

	types, err = definitionsAt(root, "types")
	if err != nil {
		return nil, nil, err
	}
	accounts, err = definitionsAt(root, "accounts")
	if err != nil {
		return nil, nil, err
	}
	return types, accounts, nil
}

func present(root *idl.Object, field string) bool {
	v, ok := root.Get(field)
	if !ok {
		return false
	}
	_, isNull := v.(idl.Null)
	return !isNull
}

func definitionsAt(root *idl.Object, field string) ([]definition, error) {
	v, _ := root.Get(field)
	arr, ok := v.(idl.Array)
	if !ok {
		return nil, newShapeError(field, "expected array, got %s", idl.Kind(v))
	}

	defs := make([]definition, 0, len(arr))
	for i, elem := range arr {
		path := fmt.Sprintf("%s[%d]", field, i)
		obj, ok := elem.(*idl.Object)
		if !ok || obj == nil {
			return nil, newShapeError(path, "expected object, got %s", idl.Kind(elem))
		}
		nameVal, ok := obj.Get("name")
		if !ok {
			return nil, newShapeError(path+".name", "missing required field")
		}
		name, ok := nameVal.(idl.String)
		if !ok {
			return nil, newShapeError(path+".name", "expected string, got %s", idl.Kind(nameVal))
		}
		defs = append(defs, definition{name: string(name), obj: obj})
	}
	return defs, nil
}

// copyTree returns a deep copy of v.
func copyTree(v idl.Value) idl.Value {
	return Walk(v, func(*idl.Object) {})
}
