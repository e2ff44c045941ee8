package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/idlsdk/internal/idl"
)

// GoldenDir is the directory, relative to a scenarios directory, that holds
// golden files.
const GoldenDir = "golden"

// GoldenBytes renders a result's output the way it is stored in golden
// files: the same two-space indented JSON the transform command writes.
func GoldenBytes(result *Result) ([]byte, error) {
	return idl.MarshalIndent(result.Output, "", "  ")
}

// GoldenPath returns the golden file for a scenario inside scenariosDir.
func GoldenPath(scenariosDir, scenarioName string) string {
	return filepath.Join(scenariosDir, GoldenDir, scenarioName+".golden")
}

// CompareGolden checks the rendered output against the golden file at path.
func CompareGolden(result *Result, path string) error {
	actual, err := GoldenBytes(result)
	if err != nil {
		return err
	}

	expected, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read golden file: %w", err)
	}

	if !bytes.Equal(actual, expected) {
		return fmt.Errorf("output does not match golden file %s (run with --update to regenerate)", path)
	}
	return nil
}

// UpdateGolden writes the rendered output to the golden file at path.
func UpdateGolden(result *Result, path string) error {
	actual, err := GoldenBytes(result)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, actual, 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// RunWithGolden executes a scenario and compares the output against a golden
// file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if output doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	actual, err := GoldenBytes(result)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, actual)

	return result, nil
}
