package harness

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/roach88/idlsdk/internal/idl"
	"github.com/roach88/idlsdk/internal/transform"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Output is the transformed document.
	Output idl.Value `json:"-"`

	// Report counts the rewrites the pipeline performed.
	Report transform.Report `json:"report"`

	// InputHash and OutputHash identify the documents (idl.DocumentHash).
	InputHash  string `json:"input_hash"`
	OutputHash string `json:"output_hash"`

	// Errors contains assertion failure messages.
	Errors []string `json:"errors,omitempty"`
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}

// Run executes a scenario: it reads the input, runs the pipeline and
// evaluates the assertions.
//
// A returned error means the scenario could not execute (unreadable input,
// malformed JSON, invalid IDL shape). Assertion failures are reported in
// Result.Errors instead.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger is like Run but sends pipeline diagnostics to logger.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	data, err := os.ReadFile(scenario.Input)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	doc, err := idl.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse input %s: %w", scenario.Input, err)
	}

	out, err := transform.NewPipeline(transform.WithLogger(logger)).Run(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to transform: %w", err)
	}

	inputHash, err := idl.DocumentHash(doc)
	if err != nil {
		return nil, err
	}
	outputHash, err := idl.DocumentHash(out.Output)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Pass:       true,
		Output:     out.Output,
		Report:     out.Report,
		InputHash:  inputHash,
		OutputHash: outputHash,
	}

	for _, msg := range EvaluateAssertions(out.Output, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}
