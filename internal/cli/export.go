package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumenlearn/codetape/internal/codec"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Encoding string
	Compress bool
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <in> <out>",
		Short: "Re-encode a tape between canonical and compact formats",
		Long: `Read a tape in any supported encoding and write it out in the requested
one. Canonical is self-describing JSON; compact is delta-encoded binary.

Exit codes:
  0 - Tape exported
  1 - Input tape is corrupt
  2 - Command error (file not found, unknown encoding, etc.)

Examples:
  codetape export session.json session.tape --encoding compact
  codetape export session.tape session.json --encoding canonical --compress=false`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd, args[0], args[1])
		},
	}

	cmd.Flags().StringVar(&opts.Encoding, "encoding", "compact", "output encoding (canonical|compact)")
	cmd.Flags().BoolVar(&opts.Compress, "compress", false, "zstd-compress the output")
	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command, in, out string) error {
	rec, err := LoadTape(in)
	if err != nil {
		return err
	}

	compress := opts.Compress
	if !cmd.Flags().Changed("compress") {
		compress = opts.Config.Compress && opts.Encoding == "compact"
	}

	enc := codec.Options{DeltaThreshold: opts.Config.DeltaThreshold}
	if err := WriteTape(out, rec, opts.Encoding, compress, enc); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d event(s) to %s (%s)\n",
		len(rec.Events), out, opts.Encoding)
	return nil
}
