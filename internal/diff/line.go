package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineDiff lists the lines present in only one of two code texts.
type LineDiff struct {
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
}

// Empty reports whether the two texts had identical lines.
func (d LineDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

// DiffLines compares two code texts line by line. Lines only in before are
// Removed, lines only in after are Added, in document order.
func DiffLines(before, after string) LineDiff {
	dmp := diffmatchpatch.New()
	beforeRunes, afterRunes, lines := dmp.DiffLinesToRunes(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMainRunes(beforeRunes, afterRunes, false), lines)

	var out LineDiff
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			out.Added = append(out.Added, splitLines(d.Text)...)
		case diffmatchpatch.DiffDelete:
			out.Removed = append(out.Removed, splitLines(d.Text)...)
		}
	}
	return out
}

// Similarity returns a 0.0-1.0 sequence-match ratio between two code texts:
// twice the matched character count over the total length. Identical texts
// score 1.0. Symmetric in its arguments.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if len(a)+len(b) == 0 {
		return 1.0
	}
	// Canonical argument order keeps the ratio symmetric; the underlying
	// match is not guaranteed to be direction-independent.
	if a > b {
		a, b = b, a
	}
	dmp := diffmatchpatch.New()
	matched := 0
	for _, d := range dmp.DiffMain(a, b, false) {
		if d.Type == diffmatchpatch.DiffEqual {
			matched += len(d.Text)
		}
	}
	return 2.0 * float64(matched) / float64(len(a)+len(b))
}

// CountLines counts non-empty-terminated lines in a code text. Empty text is
// zero lines; a trailing newline does not add one.
func CountLines(code string) int {
	if code == "" {
		return 0
	}
	n := strings.Count(code, "\n")
	if !strings.HasSuffix(code, "\n") {
		n++
	}
	return n
}

func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
