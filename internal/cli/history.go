package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/idlsdk/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
	RunID    string // optional - show a single run
}

// HistoryResult holds the runs listed by the history command.
type HistoryResult struct {
	Runs  []store.Run `json:"runs"`
	Total int         `json:"total"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded transform runs",
		Long: `List transform runs recorded with "idlsdk transform --db", newest first.

Examples:
  idlsdk history --db ./idlsdk.db
  idlsdk history --db ./idlsdk.db --limit 5
  idlsdk history --db ./idlsdk.db --run 0190a5c4-...
  idlsdk history --db ./idlsdk.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs to list (0 for all)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show a single run by id")

	return cmd
}

func runHistory(ctx context.Context, opts *HistoryOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	// Opening creates the file; history must not invent a database.
	if _, err := os.Stat(opts.Database); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("database not found: %s", opts.Database), nil)
	}
	if opts.Limit < 0 {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "limit must be non-negative", nil)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, fmt.Sprintf("failed to open database: %v", err), nil)
	}
	defer st.Close()

	var runs []store.Run
	if opts.RunID != "" {
		run, err := st.GetRun(ctx, opts.RunID)
		if errors.Is(err, store.ErrRunNotFound) {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("run not found: %s", opts.RunID), nil)
		}
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, err.Error(), nil)
		}
		runs = []store.Run{run}
	} else {
		runs, err = st.ListRuns(ctx, opts.Limit)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, err.Error(), nil)
		}
	}

	result := HistoryResult{Runs: runs, Total: len(runs)}
	return formatter.Success(result, func(w io.Writer) {
		outputHistoryText(w, result, opts.Verbose)
	})
}

// outputHistoryText outputs the run list as text.
func outputHistoryText(w io.Writer, result HistoryResult, verbose bool) {
	if result.Total == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	for _, run := range result.Runs {
		fmt.Fprintf(w, "[%d] %s %s -> %s\n", run.Seq, truncateID(run.ID), run.InputPath, run.OutputPath)
		fmt.Fprintf(w, "     tags=%d refs=%d accounts=%d\n", run.NormalizedTags, run.SimplifiedRefs, run.MergedAccounts)
		if verbose {
			fmt.Fprintf(w, "     ID:     %s\n", run.ID)
			fmt.Fprintf(w, "     input:  %s\n", run.InputHash)
			fmt.Fprintf(w, "     output: %s\n", run.OutputHash)
		}
	}
}

// truncateID truncates a long ID for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}
