package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/idlsdk/internal/idl"
	"github.com/roach88/idlsdk/internal/transform"
)

// CheckSummary describes an IDL file that passed the check.
type CheckSummary struct {
	File     string `json:"file"`
	Hash     string `json:"hash"`
	Types    int    `json:"types"`
	Accounts int    `json:"accounts"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Check that an IDL file can be transformed",
		Long: `Decode an IDL JSON file and verify the shape the account merge relies on:
when both "types" and "accounts" are present, each must be an array of
objects carrying a string "name". Nothing is written.

Exit codes:
  0 - File can be transformed
  1 - Shape violation
  2 - Command error (file not found, malformed JSON)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runCheck(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	doc, err := readDocument(path)
	if err != nil {
		return failInput(formatter, path, err)
	}

	if err := transform.CheckShape(doc); err != nil {
		var shapeErr *transform.ShapeError
		if errors.As(err, &shapeErr) {
			return formatter.Fail(ExitFailure, ErrCodeInvalidShape, shapeErr.Error(), map[string]string{"path": shapeErr.Path})
		}
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	hash, err := idl.DocumentHash(doc)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	summary := CheckSummary{
		File:     path,
		Hash:     hash,
		Types:    arrayLen(doc, "types"),
		Accounts: arrayLen(doc, "accounts"),
	}
	formatter.VerboseLog("hash %s", summary.Hash)

	return formatter.Success(summary, func(w io.Writer) {
		fmt.Fprintf(w, "✓ %s: %d type(s), %d account(s)\n", summary.File, summary.Types, summary.Accounts)
	})
}

// arrayLen returns the length of the top-level array field, or 0.
func arrayLen(doc idl.Value, field string) int {
	root, ok := doc.(*idl.Object)
	if !ok {
		return 0
	}
	v, _ := root.Get(field)
	arr, _ := v.(idl.Array)
	return len(arr)
}
