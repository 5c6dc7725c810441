// Package archive provides durable storage for finalized recordings.
// Uses SQLite with WAL mode for concurrent read access; recording bodies
// are stored as compressed compact blobs next to queryable metadata
// columns.
//
// # Critical Patterns
//
// CP-1 Content dedupe: every stored recording carries a content
// fingerprint (id-independent). Saving a byte-different copy of the same
// session is a silent no-op.
//
// CP-2 Whole-load integrity: a blob that fails to decode fails the whole
// load. The archive never returns a partially decoded recording.
package archive
