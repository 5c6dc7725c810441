package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumenlearn/codetape/internal/diff"
	"github.com/lumenlearn/codetape/internal/tape"
)

// DiffOptions holds flags for the diff command.
type DiffOptions struct {
	*RootOptions
	From string
	To   string
}

// NewDiffCommand creates the diff command.
func NewDiffCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DiffOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "diff <tape> [<tape>]",
		Short: "Diff two checkpoints of one tape, or two whole tapes",
		Long: `With one tape, diff the states at two checkpoints (--from/--to; --to
defaults to the final event). With two tapes, compare the whole sessions:
timing, code similarity, and detected solving patterns.

Exit codes:
  0 - Diff computed
  1 - Unknown checkpoint or corrupt tape
  2 - Command error (file not found, etc.)

Examples:
  codetape diff session.tape --from start --to solved
  codetape diff mine.tape theirs.tape --format json`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 {
				return runApproachDiff(opts, cmd, args[0], args[1])
			}
			return runStateDiff(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.From, "from", "", "checkpoint to diff from (single-tape mode, required)")
	cmd.Flags().StringVar(&opts.To, "to", "", "checkpoint to diff to (defaults to the final event)")
	return cmd
}

func runStateDiff(opts *DiffOptions, cmd *cobra.Command, path string) error {
	rec, err := LoadTape(path)
	if err != nil {
		return err
	}
	if len(rec.Events) == 0 {
		return NewExitError(ExitFailure, "tape has no events")
	}
	if opts.From == "" {
		return NewExitError(ExitCommandError, "--from is required when diffing one tape")
	}

	from, err := eventAtCheckpoint(rec, opts.From)
	if err != nil {
		return err
	}
	to := rec.Events[len(rec.Events)-1]
	if opts.To != "" {
		if to, err = eventAtCheckpoint(rec, opts.To); err != nil {
			return err
		}
	}

	d := diff.DiffStates(from, to)
	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return formatter.JSON(d)
	}
	fmt.Fprint(cmd.OutOrStdout(), d.Render())
	return nil
}

func runApproachDiff(opts *DiffOptions, cmd *cobra.Command, pathA, pathB string) error {
	a, err := LoadTape(pathA)
	if err != nil {
		return err
	}
	b, err := LoadTape(pathB)
	if err != nil {
		return err
	}

	d := diff.CompareApproaches(a, b)
	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return formatter.JSON(d)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Approach comparison: %s vs %s\n", a.Meta.ID, b.Meta.ID)
	fmt.Fprintf(w, "  Time diff:    %+.1fs\n", d.TimeDiff)
	fmt.Fprintf(w, "  Similarity:   %.2f\n", d.Similarity)
	fmt.Fprintf(w, "  Line diff:    %+d\n", d.LineCountDiff)
	fmt.Fprintf(w, "  Patterns:     %s vs %s\n", d.PatternA, d.PatternB)
	fmt.Fprintf(w, "  Events:       %+d\n", d.EventCountDiff)
	fmt.Fprintf(w, "  Keystrokes:   %+d\n", d.KeystrokeCountDiff)
	if d.Recommended == diff.RecommendTie {
		fmt.Fprintln(w, "  Recommended:  tie")
	} else {
		fmt.Fprintf(w, "  Recommended:  %s\n", d.Recommended)
	}
	return nil
}

func eventAtCheckpoint(rec *tape.Recording, name string) (tape.RecordedEvent, error) {
	idx, ok := rec.CheckpointIndex(name)
	if !ok {
		return tape.RecordedEvent{}, WrapExitError(ExitFailure, "unknown checkpoint",
			tape.NewValidationError("unknown checkpoint", name, rec.CheckpointNames()))
	}
	return rec.Events[idx], nil
}
