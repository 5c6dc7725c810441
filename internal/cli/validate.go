package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumenlearn/codetape/internal/codec"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
}

// ValidateResult holds the validation outcome for one tape.
type ValidateResult struct {
	Path        string `json:"path"`
	Events      int    `json:"events"`
	Checkpoints int    `json:"checkpoints"`
	Fingerprint string `json:"fingerprint"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <tape>...",
		Short: "Verify tape integrity and schema conformance",
		Long: `Decode each tape, check its structural invariants (monotonic
timestamps, known event kinds, checkpoint bounds), and validate its
canonical form against the document schema.

Exit codes:
  0 - All tapes valid
  1 - At least one tape failed validation
  2 - Command error (file not found, etc.)

Examples:
  codetape validate session.tape
  codetape validate *.tape --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, cmd, args)
		},
	}
	return cmd
}

func runValidate(opts *ValidateOptions, cmd *cobra.Command, paths []string) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	var results []ValidateResult
	for _, path := range paths {
		result, err := validateTape(path)
		if err != nil {
			if ferr := formatter.Error(ErrorCode(err), fmt.Sprintf("%s: %v", path, err), nil); ferr != nil {
				return ferr
			}
			return WrapExitError(ExitFailure, fmt.Sprintf("validation failed for %s", path), err)
		}
		results = append(results, result)
		formatter.VerboseLog("validated %s: %d event(s)", path, result.Events)
	}

	if opts.Format == "json" {
		return formatter.JSON(results)
	}
	for _, r := range results {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: %d event(s), %d checkpoint(s), fingerprint %s\n",
			r.Path, r.Events, r.Checkpoints, r.Fingerprint[:12])
	}
	return nil
}

// validateTape decodes a tape and checks it twice: the decoder enforces the
// structural invariants, then the re-encoded canonical form is checked
// against the document schema.
func validateTape(path string) (ValidateResult, error) {
	rec, err := LoadTape(path)
	if err != nil {
		return ValidateResult{}, err
	}

	canonical, err := codec.EncodeCanonical(rec)
	if err != nil {
		return ValidateResult{}, err
	}
	if err := codec.ValidateCanonical(canonical); err != nil {
		return ValidateResult{}, err
	}

	fp, err := codec.Fingerprint(rec)
	if err != nil {
		return ValidateResult{}, err
	}
	return ValidateResult{
		Path:        path,
		Events:      len(rec.Events),
		Checkpoints: len(rec.Checkpoints),
		Fingerprint: fp,
	}, nil
}
