package codec

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/text/unicode/norm"

	"github.com/lumenlearn/codetape/internal/tape"
)

// Fingerprint returns a content-addressed identity for a recording: the
// SHA-256 of its canonical encoding with NFC-normalized code text. Two
// recordings of the same session fingerprint identically even when their
// code strings differ only in Unicode composition form, which happens when
// different editors produced the keystrokes.
//
// The archive uses fingerprints to detect duplicate imports.
func Fingerprint(r *tape.Recording) (string, error) {
	normalized := normalizeRecording(r)
	data, err := EncodeCanonical(normalized)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// normalizeRecording copies r with all code text in NFC. The metadata ID is
// blanked so the fingerprint identifies content, not the assigned id.
func normalizeRecording(r *tape.Recording) *tape.Recording {
	out := &tape.Recording{
		SchemaVersion: r.SchemaVersion,
		Meta:          r.Meta,
		Checkpoints:   r.Checkpoints,
	}
	out.Meta.ID = ""
	out.Meta.FinalCode = norm.NFC.String(r.Meta.FinalCode)

	out.Events = make([]tape.RecordedEvent, len(r.Events))
	for i, ev := range r.Events {
		cp := ev
		cp.Snapshot.Code = norm.NFC.String(ev.Snapshot.Code)
		out.Events[i] = cp
	}
	return out
}
