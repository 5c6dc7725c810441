package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumenlearn/codetape/internal/rank"
)

// CompareOptions holds flags for the compare command.
type CompareOptions struct {
	*RootOptions
}

// NewCompareCommand creates the compare command.
func NewCompareCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompareOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compare <tape-a> <tape-b>",
		Short: "Score two attempts at the same challenge against each other",
		Long: `Compare two tapes of the same challenge head to head and declare a
winner: success beats failure, then faster wins with a half-second tie
tolerance.

Exit codes:
  0 - Comparison computed
  1 - Tapes are for different challenges, or corrupt
  2 - Command error (file not found, etc.)

Examples:
  codetape compare alice.tape bob.tape
  codetape compare alice.tape bob.tape --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(opts, cmd, args[0], args[1])
		},
	}
	return cmd
}

func runCompare(opts *CompareOptions, cmd *cobra.Command, pathA, pathB string) error {
	a, err := LoadTape(pathA)
	if err != nil {
		return err
	}
	b, err := LoadTape(pathB)
	if err != nil {
		return err
	}

	metrics, err := rank.Compare(a, b)
	if err != nil {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
		if ferr := formatter.Error(ErrorCode(err), err.Error(), nil); ferr != nil {
			return ferr
		}
		return WrapExitError(ExitFailure, "comparison rejected", err)
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return formatter.JSON(metrics)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s vs %s\n", metrics.PlayerA, metrics.PlayerB)
	fmt.Fprintf(w, "  Time diff:    %+.1fs\n", metrics.TimeDiff)
	fmt.Fprintf(w, "  Events:       %+d\n", metrics.EventCountDiff)
	fmt.Fprintf(w, "  Keystrokes:   %+d\n", metrics.KeystrokeCountDiff)
	fmt.Fprintf(w, "  Hints:        %+d\n", metrics.HintsDiff)
	fmt.Fprintf(w, "  Similarity:   %.2f\n", metrics.ApproachSimilarity)
	switch metrics.Winner {
	case rank.WinnerA:
		fmt.Fprintf(w, "Winner: %s\n", metrics.PlayerA)
	case rank.WinnerB:
		fmt.Fprintf(w, "Winner: %s\n", metrics.PlayerB)
	default:
		fmt.Fprintln(w, "Winner: tie")
	}
	return nil
}
