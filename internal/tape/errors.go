package tape

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports a request that is well-formed but wrong for the
// data it targets: duplicate or unknown checkpoint names, mismatched
// challenge ids, a checkpoint on an empty log.
//
// Available carries the valid alternatives (e.g. existing checkpoint names)
// so tooling can surface them without a second lookup.
type ValidationError struct {
	Message   string
	Name      string   // offending name/id, if any
	Available []string // valid alternatives, sorted
}

func (e *ValidationError) Error() string {
	msg := e.Message
	if e.Name != "" {
		msg = fmt.Sprintf("%s: %q", msg, e.Name)
	}
	if len(e.Available) > 0 {
		msg = fmt.Sprintf("%s (available: %s)", msg, strings.Join(e.Available, ", "))
	}
	return msg
}

// NewValidationError creates a ValidationError with sorted alternatives.
func NewValidationError(message, name string, available []string) *ValidationError {
	sorted := append([]string(nil), available...)
	sort.Strings(sorted)
	return &ValidationError{Message: message, Name: name, Available: sorted}
}

// IntegrityError reports a corrupt or unsupported encoded recording: bad
// magic bytes, unknown format version, truncated payload, broken invariants
// after decode. Decoding fails the whole load; partial recovery would break
// the monotonic-timestamp and checkpoint-index invariants replay depends on.
type IntegrityError struct {
	Message string
	Err     error
}

func (e *IntegrityError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("integrity: %s: %v", e.Message, e.Err)
	}
	return "integrity: " + e.Message
}

func (e *IntegrityError) Unwrap() error { return e.Err }

// RangeError reports an out-of-bounds event index.
type RangeError struct {
	Index  int
	Length int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("index %d out of range [0, %d)", e.Index, e.Length)
}

// MisuseError reports a recording API call made out of lifecycle order,
// e.g. Record before Start or Checkpoint after Stop.
type MisuseError struct {
	Op    string // the operation attempted
	State string // the recorder state it found
}

func (e *MisuseError) Error() string {
	return fmt.Sprintf("%s called while recorder is %s", e.Op, e.State)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsIntegrity reports whether err is (or wraps) an IntegrityError.
func IsIntegrity(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie)
}

// IsRange reports whether err is (or wraps) a RangeError.
func IsRange(err error) bool {
	var re *RangeError
	return errors.As(err, &re)
}

// IsMisuse reports whether err is (or wraps) a MisuseError.
func IsMisuse(err error) bool {
	var me *MisuseError
	return errors.As(err, &me)
}
