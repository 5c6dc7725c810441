package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumenlearn/codetape/internal/archive"
	"github.com/lumenlearn/codetape/internal/codec"
)

// SaveOptions holds flags for the save command.
type SaveOptions struct {
	*RootOptions
	Archive string
}

// NewSaveCommand creates the save command.
func NewSaveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SaveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "save <tape>...",
		Short: "Store tapes in the archive",
		Long: `Decode each tape and store it in the SQLite archive. A tape whose
content is already archived is skipped.

Exit codes:
  0 - All tapes stored or already present
  1 - A tape is corrupt or invalid
  2 - Command error (file not found, unreadable archive, etc.)

Examples:
  codetape save session.tape
  codetape save *.tape --archive ./tapes.db`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSave(opts, cmd, args)
		},
	}

	cmd.Flags().StringVar(&opts.Archive, "archive", "", "archive database path (default from config)")
	return cmd
}

func runSave(opts *SaveOptions, cmd *cobra.Command, paths []string) error {
	a, err := openArchive(opts.RootOptions, opts.Archive)
	if err != nil {
		return err
	}
	defer a.Close()

	w := cmd.OutOrStdout()
	for _, path := range paths {
		rec, err := LoadTape(path)
		if err != nil {
			return err
		}
		inserted, err := a.Save(cmd.Context(), rec)
		if err != nil {
			return WrapExitError(ExitFailure, fmt.Sprintf("failed to store %s", path), err)
		}
		if inserted {
			fmt.Fprintf(w, "Stored %s as %s\n", path, rec.Meta.ID)
		} else {
			fmt.Fprintf(w, "Skipped %s (already archived)\n", path)
		}
	}
	return nil
}

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Archive   string
	Challenge string
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived tapes",
		Long: `List the tapes stored in the archive, newest first, optionally
filtered by challenge.

Exit codes:
  0 - Listed
  2 - Command error (unreadable archive, etc.)

Examples:
  codetape list
  codetape list --challenge challenge-fizzbuzz --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Archive, "archive", "", "archive database path (default from config)")
	cmd.Flags().StringVar(&opts.Challenge, "challenge", "", "only tapes for this challenge")
	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	a, err := openArchive(opts.RootOptions, opts.Archive)
	if err != nil {
		return err
	}
	defer a.Close()

	summaries, err := a.List(cmd.Context(), opts.Challenge)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list archive", err)
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return formatter.JSON(summaries)
	}

	w := cmd.OutOrStdout()
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No tapes archived.")
		return nil
	}
	for _, s := range summaries {
		status := " "
		if s.Success {
			status = "✓"
		}
		fmt.Fprintf(w, "%s %-20s %-12s %-24s %7.1fs  %s\n",
			status, s.ID, s.PlayerID, s.ChallengeID, s.Duration, s.Path)
	}
	return nil
}

// BoardOptions holds flags for the board command.
type BoardOptions struct {
	*RootOptions
	Archive string
	Top     int
	Player  string
}

// NewBoardCommand creates the board command.
func NewBoardCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BoardOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "board <challenge>",
		Short: "Show the leaderboard for a challenge",
		Long: `Rank every archived successful attempt at a challenge by completion
time, hints as tiebreak.

Exit codes:
  0 - Board computed
  1 - --player has no ranked attempt
  2 - Command error (unreadable archive, etc.)

Examples:
  codetape board challenge-fizzbuzz
  codetape board challenge-fizzbuzz --top 3
  codetape board challenge-fizzbuzz --player alice`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoard(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Archive, "archive", "", "archive database path (default from config)")
	cmd.Flags().IntVar(&opts.Top, "top", 10, "number of entries to show")
	cmd.Flags().StringVar(&opts.Player, "player", "", "show one player's best rank")
	return cmd
}

func runBoard(opts *BoardOptions, cmd *cobra.Command, challengeID string) error {
	a, err := openArchive(opts.RootOptions, opts.Archive)
	if err != nil {
		return err
	}
	defer a.Close()

	board, err := a.Leaderboard(cmd.Context(), challengeID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build leaderboard", err)
	}

	w := cmd.OutOrStdout()
	if opts.Player != "" {
		entry, ok := board.PlayerRank(opts.Player)
		if !ok {
			return NewExitError(ExitFailure,
				fmt.Sprintf("player %q has no ranked attempt at %s", opts.Player, challengeID))
		}
		if opts.Format == "json" {
			formatter := &OutputFormatter{Format: opts.Format, Writer: w}
			return formatter.JSON(entry)
		}
		fmt.Fprintf(w, "#%d %s  %.1fs  %d hint(s)  %s\n",
			entry.Rank, entry.PlayerID, entry.Time, entry.HintsUsed, entry.Path)
		return nil
	}

	top := board.TopN(opts.Top)
	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: w}
		return formatter.JSON(top)
	}
	if len(top) == 0 {
		fmt.Fprintf(w, "No successful attempts at %s.\n", challengeID)
		return nil
	}
	fmt.Fprintf(w, "Leaderboard: %s\n", challengeID)
	for _, e := range top {
		fmt.Fprintf(w, "  #%-3d %-12s %7.1fs  %d hint(s)  %s\n",
			e.Rank, e.PlayerID, e.Time, e.HintsUsed, e.Path)
	}
	return nil
}

// openArchive opens the archive at the flag path, falling back to config.
func openArchive(opts *RootOptions, flagPath string) (*archive.Archive, error) {
	path := flagPath
	if path == "" {
		path = opts.Config.ArchivePath
	}
	a, err := archive.Open(path, archive.WithEncodeOptions(codec.Options{
		DeltaThreshold: opts.Config.DeltaThreshold,
	}))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open archive", err)
	}
	return a, nil
}
