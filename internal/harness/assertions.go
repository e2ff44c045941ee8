package harness

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/idlsdk/internal/idl"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Path     string // Document path the assertion addressed
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion %s at %q failed: expected %s, got %s", e.Type, e.Path, e.Expected, e.Actual)
}

// EvaluateAssertions checks every assertion against doc and returns the
// failure messages in assertion order.
func EvaluateAssertions(doc idl.Value, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluateAssertion(doc, a); err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

func evaluateAssertion(doc idl.Value, a Assertion) error {
	found, lookupErr := Lookup(doc, a.Path)

	switch a.Type {
	case AssertPresent:
		if lookupErr != nil {
			return &AssertionError{Type: a.Type, Path: a.Path, Expected: "a value", Actual: lookupErr.Error()}
		}
		return nil

	case AssertAbsent:
		if lookupErr == nil {
			return &AssertionError{Type: a.Type, Path: a.Path, Expected: "no value", Actual: render(found)}
		}
		return nil

	case AssertEquals:
		want, err := idl.FromAny(a.Value)
		if err != nil {
			return fmt.Errorf("converting expected value: %w", err)
		}
		if lookupErr != nil {
			return &AssertionError{Type: a.Type, Path: a.Path, Expected: render(want), Actual: lookupErr.Error()}
		}
		if !idl.Equal(want, found) {
			return &AssertionError{Type: a.Type, Path: a.Path, Expected: render(want), Actual: render(found)}
		}
		return nil

	case AssertCount:
		if lookupErr != nil {
			return &AssertionError{Type: a.Type, Path: a.Path, Expected: fmt.Sprintf("%d element(s)", a.Count), Actual: lookupErr.Error()}
		}
		arr, ok := found.(idl.Array)
		if !ok {
			return &AssertionError{Type: a.Type, Path: a.Path, Expected: "an array", Actual: idl.Kind(found)}
		}
		if len(arr) != a.Count {
			return &AssertionError{Type: a.Type, Path: a.Path, Expected: fmt.Sprintf("%d element(s)", a.Count), Actual: fmt.Sprintf("%d element(s)", len(arr))}
		}
		return nil

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// Lookup resolves a dot-separated path against doc.
// Segments index objects by key and arrays by decimal position.
func Lookup(doc idl.Value, path string) (idl.Value, error) {
	if path == "" {
		return doc, nil
	}

	current := doc
	for i, segment := range strings.Split(path, ".") {
		switch node := current.(type) {
		case *idl.Object:
			next, ok := node.Get(segment)
			if !ok {
				return nil, fmt.Errorf("no field %q at segment %d", segment, i)
			}
			current = next
		case idl.Array:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, fmt.Errorf("no index %q at segment %d (length %d)", segment, i, len(node))
			}
			current = node[idx]
		default:
			return nil, fmt.Errorf("cannot descend into %s at segment %d", idl.Kind(current), i)
		}
	}
	return current, nil
}

// render produces a compact JSON rendering for messages.
func render(v idl.Value) string {
	data, err := idl.Marshal(v)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return string(data)
}
