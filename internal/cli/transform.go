package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/idlsdk/internal/config"
	"github.com/roach88/idlsdk/internal/idl"
	"github.com/roach88/idlsdk/internal/store"
	"github.com/roach88/idlsdk/internal/transform"
)

// TransformOptions holds flags for the transform command.
// Non-empty flags override the config file and environment.
type TransformOptions struct {
	*RootOptions
	Input     string
	OutputDir string
	Name      string
	Database  string
}

// TransformSummary is the payload reported after a successful transform.
type TransformSummary struct {
	RunID      string           `json:"run_id"`
	Input      string           `json:"input"`
	Output     string           `json:"output"`
	InputHash  string           `json:"input_hash"`
	OutputHash string           `json:"output_hash"`
	Report     transform.Report `json:"report"`
	Recorded   bool             `json:"recorded"`

	// PreviousRun is the last recorded run for the same input document.
	PreviousRun string `json:"previous_run,omitempty"`
}

// NewTransformCommand creates the transform command.
func NewTransformCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TransformOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Rewrite an IDL file for SDK generation",
		Long: `Read an Anchor IDL JSON file, rewrite it and write the result.

The output directory is created if missing and the file is replaced
atomically, so a failed run leaves no partial output.

With --db the database is opened before the output is written, so an
unusable database leaves nothing on disk. If recording fails after the
write, the output stays in place and the command exits 2.

Exit codes:
  0 - Output written
  1 - Input violates the merge precondition (nothing written)
  2 - Command error (missing input, malformed JSON, write or database error)

Examples:
  idlsdk transform
  idlsdk transform --input ./target/idl/clubhouse.json --output-dir ./sdk
  idlsdk transform --db ./idlsdk.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransform(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "IDL JSON file (default "+config.DefaultInput+")")
	cmd.Flags().StringVarP(&opts.OutputDir, "output-dir", "o", "", "output directory (default "+config.DefaultOutputDir+")")
	cmd.Flags().StringVar(&opts.Name, "name", "", "output file name (default: input file name)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")

	return cmd
}

func runTransform(ctx context.Context, opts *TransformOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}

	formatter := newFormatter(opts.RootOptions, cmd)
	formatter.TraceID = store.NewRunID()

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfigInvalid, err.Error(), nil)
	}
	applyTransformFlags(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfigInvalid, err.Error(), nil)
	}

	logger := newLogger(opts.RootOptions, formatter.GetErrWriter()).With("run_id", formatter.TraceID)
	logger.Debug("config resolved", "input", cfg.Input, "output", cfg.OutputPath(), "db", cfg.DB)

	doc, err := readDocument(cfg.Input)
	if err != nil {
		return failInput(formatter, cfg.Input, err)
	}

	result, err := transform.NewPipeline(transform.WithLogger(logger)).Run(doc)
	if err != nil {
		var shapeErr *transform.ShapeError
		if errors.As(err, &shapeErr) {
			return formatter.Fail(ExitFailure, ErrCodeInvalidShape, shapeErr.Error(), map[string]string{"path": shapeErr.Path})
		}
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	data, err := renderOutput(result.Output, cfg.Indent)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("encoding output: %v", err), nil)
	}

	summary := TransformSummary{
		RunID:  formatter.TraceID,
		Input:  cfg.Input,
		Output: cfg.OutputPath(),
		Report: result.Report,
	}
	if summary.InputHash, err = idl.DocumentHash(doc); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	if summary.OutputHash, err = idl.DocumentHash(result.Output); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	// The database is opened before writing so an unusable --db leaves no output.
	var history *store.Store
	if cfg.DB != "" {
		history, summary.PreviousRun, err = openHistory(ctx, cfg.DB, summary.InputHash)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, err.Error(), nil)
		}
		defer history.Close()
	}

	if err := writeFileAtomic(summary.Output, data); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, err.Error(), nil)
	}
	logger.Info("output written", "path", summary.Output, "bytes", len(data))

	if history != nil {
		if err := recordRun(ctx, history, summary); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, err.Error(), map[string]string{"output": summary.Output})
		}
		summary.Recorded = true
		logger.Debug("run recorded", "db", cfg.DB, "previous_run", summary.PreviousRun)
	}

	return formatter.Success(summary, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Wrote %s\n", summary.Output)
		fmt.Fprintf(w, "  normalized tags:  %d\n", summary.Report.NormalizedTags)
		fmt.Fprintf(w, "  simplified refs:  %d\n", summary.Report.SimplifiedRefs)
		fmt.Fprintf(w, "  merged accounts:  %d\n", summary.Report.MergedAccounts)
		fmt.Fprintf(w, "  input hash:       %s\n", summary.InputHash)
		fmt.Fprintf(w, "  output hash:      %s\n", summary.OutputHash)
		if summary.Recorded {
			fmt.Fprintf(w, "  run:              %s\n", summary.RunID)
		}
		if summary.PreviousRun != "" {
			fmt.Fprintf(w, "  previous run:     %s\n", summary.PreviousRun)
		}
	})
}

func applyTransformFlags(cfg *config.Config, opts *TransformOptions) {
	if opts.Input != "" {
		cfg.Input = opts.Input
	}
	if opts.OutputDir != "" {
		cfg.OutputDir = opts.OutputDir
	}
	if opts.Name != "" {
		cfg.OutputName = opts.Name
	}
	if opts.Database != "" {
		cfg.DB = opts.Database
	}
}

// readDocument reads and decodes the IDL file at path.
func readDocument(path string) (idl.Value, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := idl.Decode(f)
	if err != nil {
		return nil, &parseError{path: path, err: err}
	}
	return doc, nil
}

type parseError struct {
	path string
	err  error
}

func (e *parseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.path, e.err)
}

func (e *parseError) Unwrap() error {
	return e.err
}

// failInput maps a readDocument error onto an error code.
func failInput(formatter *OutputFormatter, path string, err error) error {
	var pe *parseError
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("input not found: %s", path), nil)
	case errors.As(err, &pe):
		return formatter.Fail(ExitCommandError, ErrCodeParseFailed, pe.Error(), nil)
	default:
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("reading input: %v", err), nil)
	}
}

// renderOutput encodes the document with indent spaces per level.
// Zero indent produces compact JSON.
func renderOutput(doc idl.Value, indent int) ([]byte, error) {
	if indent == 0 {
		return idl.Marshal(doc)
	}
	return idl.MarshalIndent(doc, "", strings.Repeat(" ", indent))
}

// writeFileAtomic creates the parent directory and replaces path with data
// through a temporary file in the same directory.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing output: %w", err)
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("writing output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// openHistory opens the run database and returns the id of the last run
// recorded for inputHash, if any.
func openHistory(ctx context.Context, dbPath, inputHash string) (*store.Store, string, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open database: %w", err)
	}

	prev, err := st.LatestRunForInput(ctx, inputHash)
	switch {
	case err == nil:
		return st, prev.ID, nil
	case errors.Is(err, store.ErrRunNotFound):
		return st, "", nil
	default:
		st.Close()
		return nil, "", err
	}
}

func recordRun(ctx context.Context, st *store.Store, summary TransformSummary) error {
	_, err := st.RecordRun(ctx, store.Run{
		ID:             summary.RunID,
		InputPath:      summary.Input,
		OutputPath:     summary.Output,
		InputHash:      summary.InputHash,
		OutputHash:     summary.OutputHash,
		NormalizedTags: summary.Report.NormalizedTags,
		SimplifiedRefs: summary.Report.SimplifiedRefs,
		MergedAccounts: summary.Report.MergedAccounts,
	})
	return err
}
