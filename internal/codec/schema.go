package codec

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/lumenlearn/codetape/internal/tape"
)

//go:embed schema.cue
var schemaCUE string

// ValidateCanonical checks a canonical document against the embedded CUE
// schema without decoding it into a Recording. Structural violations (wrong
// field types, mastery levels outside 0-4, negative counts) come back as a
// single ValidationError carrying the CUE diagnostics.
//
// This is a stricter, shape-level complement to DecodeCanonical's invariant
// checks; the CLI validate command runs both.
func ValidateCanonical(data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	docSchema := schema.LookupPath(cue.ParsePath("#Document"))
	if err := docSchema.Err(); err != nil {
		return fmt.Errorf("lookup document schema: %w", err)
	}

	// JSON is a subset of CUE, so the document compiles directly.
	doc := ctx.CompileBytes(data, cue.Filename("recording.json"))
	if err := doc.Err(); err != nil {
		return &tape.IntegrityError{Message: "document is not valid JSON", Err: err}
	}

	unified := docSchema.Unify(doc)
	if err := unified.Validate(cue.Concrete(true), cue.Final()); err != nil {
		return tape.NewValidationError(fmt.Sprintf("document does not match canonical schema: %v", err), "", nil)
	}
	return nil
}
