// Package diff computes the three comparison layers over recorded sessions:
// textual line diffs between two code texts, structural diffs between two
// parsed code inventories, and whole-recording approach comparisons.
//
// # Critical Patterns
//
// CP-1 Neutral structure: diffs never touch a syntax tree. The only
// structural view is tape.StructuralSummary, produced by a parser adapter
// outside this package. A summary that failed to parse yields a diagnostic
// diff flagged Unparseable instead of an error.
//
// CP-2 Deterministic rendering: StateDiff.Render is byte-stable for equal
// inputs. Map-backed sections are emitted in sorted key order.
package diff
