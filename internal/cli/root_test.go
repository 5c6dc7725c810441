package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenlearn/codetape/internal/codec"
	"github.com/lumenlearn/codetape/internal/tape"
	"github.com/lumenlearn/codetape/internal/testutil"
)

// runCommand executes the CLI with the given args and returns stdout.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// writeFixtureTape encodes a fixture recording to a temp file.
func writeFixtureTape(t *testing.T, name string, opts testutil.FixtureOptions, compact bool) (string, *tape.Recording) {
	t.Helper()
	rec := testutil.BuildRecording(t, opts)

	var data []byte
	var err error
	if compact {
		data, err = codec.EncodeCompact(rec, codec.Options{})
	} else {
		data, err = codec.EncodeCanonical(rec)
	}
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path, rec
}

func TestRootCommand_RejectsInvalidFormat(t *testing.T) {
	_, err := runCommand(t, "--format", "xml", "inspect", "whatever.tape")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "boom")))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeValidation, ErrorCode(tape.NewValidationError("bad", "x", nil)))
	assert.Equal(t, ErrCodeIntegrity, ErrorCode(&tape.IntegrityError{Message: "bad magic"}))
	assert.Equal(t, ErrCodeRange, ErrorCode(&tape.RangeError{Index: 9, Length: 3}))
	assert.Equal(t, ErrCodeMisuse, ErrorCode(&tape.MisuseError{Op: "Play", State: "finished"}))
	assert.Equal(t, ErrCodeGeneric, ErrorCode(assert.AnError))
}
