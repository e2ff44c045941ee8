// Package transform rewrites an Anchor IDL document into the shape the
// TypeScript SDK generator expects.
//
// The rewrite is three passes run strictly in sequence:
//
//	NormalizeReferences     "pubkey" type tags become "publicKey"
//	SimplifyReferences      {defined: {name: X}} collapses to {defined: X}
//	MergeTypesIntoAccounts  accounts absorb the fields of the same-named type
//
// The first two passes are built on Walk, a copy-on-walk traversal that
// applies a Rule to a fresh shallow copy of every object node before
// descending into its fields. The input document is never modified, and no
// object or array node is shared between input and output.
//
// All passes are pure functions of their input; Transform may be called
// concurrently on independent documents.
package transform
