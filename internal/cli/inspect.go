package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumenlearn/codetape/internal/diff"
	"github.com/lumenlearn/codetape/internal/tape"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
}

// InspectResult holds the metadata summary of one tape.
type InspectResult struct {
	ID          string            `json:"id"`
	PlayerID    string            `json:"player_id"`
	ChallengeID string            `json:"challenge_id"`
	CreatedAt   string            `json:"created_at"`
	Duration    float64           `json:"duration"`
	Success     bool              `json:"success"`
	Events      int               `json:"events"`
	Keystrokes  int               `json:"keystrokes"`
	TestRuns    int               `json:"test_runs"`
	HintsUsed   int               `json:"hints_used"`
	Pattern     string            `json:"pattern"`
	Checkpoints []tape.Checkpoint `json:"checkpoints,omitempty"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect <tape>",
		Short: "Show metadata and statistics for a recorded session",
		Long: `Inspect a tape file: metadata, event statistics, detected solving
pattern, and checkpoints.

Exit codes:
  0 - Tape inspected
  1 - Tape is corrupt or invalid
  2 - Command error (file not found, etc.)

Examples:
  codetape inspect session.tape
  codetape inspect session.json --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(opts, cmd, args[0])
		},
	}
	return cmd
}

func runInspect(opts *InspectOptions, cmd *cobra.Command, path string) error {
	rec, err := LoadTape(path)
	if err != nil {
		return err
	}

	result := InspectResult{
		ID:          rec.Meta.ID,
		PlayerID:    rec.Meta.PlayerID,
		ChallengeID: rec.Meta.ChallengeID,
		CreatedAt:   rec.Meta.CreatedAt.Format("2006-01-02 15:04:05 MST"),
		Duration:    rec.Meta.Duration,
		Success:     rec.Meta.Success,
		Events:      len(rec.Events),
		Keystrokes:  rec.KeystrokeCount(),
		TestRuns:    rec.TestRunCount(),
		HintsUsed:   rec.HintsUsed(),
		Pattern:     diff.DetectPattern(rec),
		Checkpoints: rec.CheckpointList(),
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return formatter.JSON(result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Tape: %s\n", result.ID)
	fmt.Fprintf(w, "  Player:    %s\n", result.PlayerID)
	fmt.Fprintf(w, "  Challenge: %s\n", result.ChallengeID)
	fmt.Fprintf(w, "  Created:   %s\n", result.CreatedAt)
	fmt.Fprintf(w, "  Duration:  %.1fs\n", result.Duration)
	fmt.Fprintf(w, "  Success:   %v\n", result.Success)
	fmt.Fprintf(w, "  Events:    %d (%d keystrokes, %d test runs)\n",
		result.Events, result.Keystrokes, result.TestRuns)
	fmt.Fprintf(w, "  Hints:     %d\n", result.HintsUsed)
	fmt.Fprintf(w, "  Pattern:   %s\n", result.Pattern)
	if len(result.Checkpoints) > 0 {
		fmt.Fprintln(w, "  Checkpoints:")
		for _, cp := range result.Checkpoints {
			fmt.Fprintf(w, "    %-20s @ %.1fs (event %d)\n",
				cp.Name, rec.Events[cp.Index].Timestamp, cp.Index)
		}
	}
	return nil
}
