package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/lumenlearn/codetape/internal/tape"
)

// CanonicalFormat is the self-describing format tag of canonical documents.
const CanonicalFormat = "codetape.canonical"

// CanonicalVersion tracks the canonical document layout:
// 1 - Initial layout
const CanonicalVersion = 1

// canonicalDoc is the on-disk shape of the canonical encoding. Version is
// the document layout, SchemaVersion the logical recording content; the two
// advance independently.
type canonicalDoc struct {
	Format        string               `json:"format"`
	Version       int                  `json:"version"`
	SchemaVersion int                  `json:"schema_version"`
	Metadata      tape.Metadata        `json:"metadata"`
	Events        []tape.RecordedEvent `json:"events"`
	Checkpoints   map[string]int       `json:"checkpoints,omitempty"`
}

// EncodeCanonical serializes r as an indented JSON document. Output is
// deterministic: struct fields keep declaration order and Go's encoder
// writes map keys sorted.
func EncodeCanonical(r *tape.Recording) ([]byte, error) {
	doc := canonicalDoc{
		Format:        CanonicalFormat,
		Version:       CanonicalVersion,
		SchemaVersion: r.SchemaVersion,
		Metadata:      r.Meta,
		Events:        r.Events,
		Checkpoints:   r.Checkpoints,
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false) // code text stays readable in the document
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode canonical: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeCanonical parses a canonical document and validates every log
// invariant before returning. Any violation fails the whole load.
func DecodeCanonical(data []byte) (*tape.Recording, error) {
	var doc canonicalDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &tape.IntegrityError{Message: "malformed canonical document", Err: err}
	}
	if doc.Format != CanonicalFormat {
		return nil, &tape.IntegrityError{Message: fmt.Sprintf("not a canonical recording document (format %q)", doc.Format)}
	}
	if doc.Version != CanonicalVersion {
		return nil, &tape.IntegrityError{Message: fmt.Sprintf("unsupported canonical version %d (want %d)", doc.Version, CanonicalVersion)}
	}
	if doc.SchemaVersion != tape.SchemaVersion {
		return nil, &tape.IntegrityError{Message: fmt.Sprintf("unsupported schema version %d (want %d)", doc.SchemaVersion, tape.SchemaVersion)}
	}

	rec := &tape.Recording{
		SchemaVersion: doc.SchemaVersion,
		Meta:          doc.Metadata,
		Events:        doc.Events,
		Checkpoints:   doc.Checkpoints,
	}
	if err := rec.Validate(); err != nil {
		return nil, &tape.IntegrityError{Message: "canonical document violates log invariants", Err: err}
	}
	return rec, nil
}
