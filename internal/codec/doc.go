// Package codec encodes and decodes recordings.
//
// Two encodings carry the same logical content:
//
//   - Canonical: a self-describing JSON document with a version field, full
//     snapshot per event. Interchange and debugging format.
//   - Compact: a binary format with a fixed header (magic + version + record
//     count) and length-prefixed CBOR records. Consecutive snapshots are
//     stored as changed-field deltas when the delta is small enough.
//
// Either encoding may be wrapped in zstd compression; Compress/Decompress
// are orthogonal to the logical content.
//
// Decoding is all-or-nothing. A bad magic, unsupported version, truncated
// payload, unknown event kind, or broken log invariant fails the entire load
// with an IntegrityError; partial recovery would hand replay a log whose
// ordering and checkpoint invariants no longer hold.
package codec
