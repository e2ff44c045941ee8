// Package idl provides the JSON value model used by the IDL rewriting pipeline.
//
// This package contains the value types and their codecs only. All other
// internal packages import idl; idl imports nothing internal.
//
// Key design constraints:
//   - Objects preserve key insertion order through decode, rewrite and encode
//   - Numbers keep their exact decimal text (no float64 round-trip)
//   - Values are treated as immutable by the passes; every rewrite builds
//     fresh Array and *Object nodes
package idl
