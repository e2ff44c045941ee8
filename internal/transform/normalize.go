package transform

import "github.com/roach88/idlsdk/internal/idl"

// Type tags rewritten by NormalizeReferences.
const (
	TagPubkey    = "pubkey"
	TagPublicKey = "publicKey"
)

// NormalizeReferences renames the "pubkey" type tag to "publicKey".
//
// At every object node two forms are rewritten:
//
//	{"type": "pubkey"}                 -> {"type": "publicKey"}
//	{"type": {"option": "pubkey"}}     -> {"type": {"option": "publicKey"}}
//
// Only a field literally named "type" is inspected. A "pubkey" string under
// any other key, or nested deeper inside the option wrapper, is left alone.
func NormalizeReferences(doc idl.Value) idl.Value {
	out, _ := normalizeReferences(doc)
	return out
}

func normalizeReferences(doc idl.Value) (idl.Value, int) {
	rewrites := 0
	out := Walk(doc, func(obj *idl.Object) {
		typ, ok := obj.Get("type")
		if !ok {
			return
		}
		switch t := typ.(type) {
		case idl.String:
			if t == TagPubkey {
				obj.Set("type", idl.String(TagPublicKey))
				rewrites++
			}
		case *idl.Object:
			if option, ok := t.GetString("option"); ok && option == TagPubkey {
				wrapper := t.Clone()
				wrapper.Set("option", idl.String(TagPublicKey))
				obj.Set("type", wrapper)
				rewrites++
			}
		}
	})
	return out, rewrites
}
