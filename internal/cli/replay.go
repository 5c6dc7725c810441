package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lumenlearn/codetape/internal/replay"
	"github.com/lumenlearn/codetape/internal/tape"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Speed  float64
	NoWait bool
	From   string // optional checkpoint to start from
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <tape>",
		Short: "Replay a recorded session event by event",
		Long: `Replay a tape, printing each event as it is applied. Events are spaced
by their recorded gaps scaled by --speed; --no-wait prints everything
immediately.

Exit codes:
  0 - Replay finished
  1 - Tape is corrupt or the start checkpoint is unknown
  2 - Command error (file not found, etc.)

Examples:
  codetape replay session.tape
  codetape replay session.tape --speed 4
  codetape replay session.tape --no-wait --from halfway`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd, args[0])
		},
	}

	cmd.Flags().Float64Var(&opts.Speed, "speed", 0, "playback speed factor 0.1-10 (default from config)")
	cmd.Flags().BoolVar(&opts.NoWait, "no-wait", false, "apply all events immediately")
	cmd.Flags().StringVar(&opts.From, "from", "", "start from a named checkpoint")
	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command, path string) error {
	rec, err := LoadTape(path)
	if err != nil {
		return err
	}

	// Trim the log when starting from a checkpoint; the events slice is a
	// view, the recording itself is never mutated on disk.
	if opts.From != "" {
		idx, ok := rec.CheckpointIndex(opts.From)
		if !ok {
			return WrapExitError(ExitFailure, "unknown checkpoint",
				tape.NewValidationError("unknown checkpoint", opts.From, rec.CheckpointNames()))
		}
		trimmed := *rec
		trimmed.Events = rec.Events[idx:]
		trimmed.Checkpoints = nil
		trimmed.Meta.Duration = trimmed.Duration()
		rec = &trimmed
	}

	speed := opts.Speed
	if speed == 0 {
		speed = opts.Config.DefaultSpeed
	}

	var playerOpts []replay.PlayerOption
	if opts.NoWait {
		playerOpts = append(playerOpts, replay.WithSleepFunc(
			func(ctx context.Context, d time.Duration) error { return ctx.Err() },
		))
	}

	w := cmd.OutOrStdout()
	player := replay.NewPlayer(rec, playerOpts...)
	err = player.Play(cmd.Context(), speed, func(ev tape.RecordedEvent) {
		fmt.Fprintf(w, "%8.2fs  %-18s tests %d/%d\n",
			ev.Timestamp, ev.Event.Kind, ev.Snapshot.TestsPassed, ev.Snapshot.TestsTotal)
	})
	if err != nil {
		return WrapExitError(ExitFailure, "replay aborted", err)
	}

	fmt.Fprintf(w, "Replayed %d event(s) at %.1fx\n", len(rec.Events), player.Speed())
	return nil
}
