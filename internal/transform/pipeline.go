package transform

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/idlsdk/internal/idl"
)

// Report counts the rewrites performed by one pipeline run.
type Report struct {
	NormalizedTags int `json:"normalized_tags"`
	SimplifiedRefs int `json:"simplified_refs"`
	MergedAccounts int `json:"merged_accounts"`
}

// Result is the output of a pipeline run.
type Result struct {
	Output idl.Value
	Report Report
}

// Pipeline runs the three passes in order and logs per-pass progress.
type Pipeline struct {
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for per-pass diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPipeline creates a Pipeline. Without WithLogger it logs nothing.
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run applies NormalizeReferences, SimplifyReferences and
// MergeTypesIntoAccounts to doc. Each pass consumes the previous pass's
// complete output. doc is not modified.
func (p *Pipeline) Run(doc idl.Value) (*Result, error) {
	var report Report

	normalized, n := normalizeReferences(doc)
	report.NormalizedTags = n
	p.logger.Debug("pass complete", "pass", "normalize", "rewrites", n)

	simplified, n := simplifyReferences(normalized)
	report.SimplifiedRefs = n
	p.logger.Debug("pass complete", "pass", "simplify", "rewrites", n)

	merged, n, err := mergeTypesIntoAccounts(simplified)
	if err != nil {
		p.logger.Error("merge failed", "error", err)
		return nil, fmt.Errorf("merge types into accounts: %w", err)
	}
	report.MergedAccounts = n
	p.logger.Debug("pass complete", "pass", "merge", "merged_accounts", n)

	p.logger.Info("transform complete",
		"normalized_tags", report.NormalizedTags,
		"simplified_refs", report.SimplifiedRefs,
		"merged_accounts", report.MergedAccounts,
	)

	return &Result{Output: merged, Report: report}, nil
}

// Transform is MergeTypesIntoAccounts(SimplifyReferences(NormalizeReferences(doc))).
func Transform(doc idl.Value) (idl.Value, error) {
	result, err := NewPipeline().Run(doc)
	if err != nil {
		return nil, err
	}
	return result.Output, nil
}
