package archive

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lumenlearn/codetape/internal/codec"
	"github.com/lumenlearn/codetape/internal/diff"
	"github.com/lumenlearn/codetape/internal/rank"
	"github.com/lumenlearn/codetape/internal/tape"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Initial schema
const currentSchemaVersion = 1

// Archive stores finalized recordings in a SQLite database.
type Archive struct {
	db  *sql.DB
	enc codec.Options
}

// Option configures an Archive at Open time.
type Option func(*Archive)

// WithEncodeOptions sets the compact encoder options Save uses for stored
// bodies.
func WithEncodeOptions(enc codec.Options) Option {
	return func(a *Archive) { a.enc = enc }
}

// Summary is the queryable metadata of one stored recording.
type Summary struct {
	ID          string    `json:"id"`
	PlayerID    string    `json:"player_id"`
	ChallengeID string    `json:"challenge_id"`
	CreatedAt   time.Time `json:"created_at"`
	Duration    float64   `json:"duration"`
	Success     bool      `json:"success"`
	HintsUsed   int       `json:"hints_used"`
	Path        string    `json:"path"`
}

// Open creates or opens an archive database at the given path.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
func Open(path string, opts ...Option) (*Archive, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	a := &Archive{db: db}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// Save stores one finalized recording: metadata in columns, the body as a
// compressed compact blob. Returns whether a new row was inserted; saving
// content the archive already holds is a silent no-op (CP-1).
func (a *Archive) Save(ctx context.Context, rec *tape.Recording) (inserted bool, err error) {
	if err := rec.Validate(); err != nil {
		return false, &tape.IntegrityError{Message: "refusing to store invalid recording", Err: err}
	}

	fp, err := codec.Fingerprint(rec)
	if err != nil {
		return false, fmt.Errorf("save recording: %w", err)
	}
	compact, err := codec.EncodeCompact(rec, a.enc)
	if err != nil {
		return false, fmt.Errorf("save recording: %w", err)
	}
	body, err := codec.Compress(compact)
	if err != nil {
		return false, fmt.Errorf("save recording: %w", err)
	}

	result, err := a.db.ExecContext(ctx, `
		INSERT INTO recordings
		(id, player_id, challenge_id, created_at, duration, success, hints_used, path, fingerprint, body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(fingerprint) DO NOTHING
	`,
		rec.Meta.ID,
		rec.Meta.PlayerID,
		rec.Meta.ChallengeID,
		rec.Meta.CreatedAt.UTC().Format(time.RFC3339Nano),
		rec.Meta.Duration,
		rec.Meta.Success,
		rec.HintsUsed(),
		diff.DetectPattern(rec),
		fp,
		body,
	)
	if err != nil {
		return false, fmt.Errorf("save recording: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("save recording: rows affected: %w", err)
	}
	return rows > 0, nil
}

// Load fetches one recording by id and decodes it in full.
func (a *Archive) Load(ctx context.Context, id string) (*tape.Recording, error) {
	var body []byte
	err := a.db.QueryRowContext(ctx,
		`SELECT body FROM recordings WHERE id = ?`, id,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, tape.NewValidationError("unknown recording", id, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("load recording: %w", err)
	}

	if codec.IsCompressed(body) {
		if body, err = codec.Decompress(body); err != nil {
			return nil, err
		}
	}
	return codec.DecodeCompact(body)
}

// List returns the stored summaries for one challenge, newest first.
// An empty challengeID lists everything.
func (a *Archive) List(ctx context.Context, challengeID string) ([]Summary, error) {
	query := `
		SELECT id, player_id, challenge_id, created_at, duration, success, hints_used, path
		FROM recordings
	`
	var args []any
	if challengeID != "" {
		query += ` WHERE challenge_id = ?`
		args = append(args, challengeID)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recordings: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		var createdAt string
		if err := rows.Scan(&s.ID, &s.PlayerID, &s.ChallengeID, &createdAt,
			&s.Duration, &s.Success, &s.HintsUsed, &s.Path); err != nil {
			return nil, fmt.Errorf("list recordings: scan: %w", err)
		}
		if s.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("list recordings: created_at: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list recordings: %w", err)
	}
	return out, nil
}

// Leaderboard builds the ranked board for one challenge from every stored
// successful attempt.
func (a *Archive) Leaderboard(ctx context.Context, challengeID string) (*rank.Leaderboard, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id FROM recordings
		WHERE challenge_id = ? AND success = 1
		ORDER BY duration, hints_used, id
	`, challengeID)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("leaderboard: scan: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}

	board := rank.NewLeaderboard(challengeID)
	for _, id := range ids {
		rec, err := a.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := board.Add(rec); err != nil {
			return nil, err
		}
	}
	return board, nil
}

// Delete removes one stored recording. Deleting an unknown id is an error.
func (a *Archive) Delete(ctx context.Context, id string) error {
	result, err := a.db.ExecContext(ctx, `DELETE FROM recordings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete recording: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete recording: rows affected: %w", err)
	}
	if rows == 0 {
		return tape.NewValidationError("unknown recording", id, nil)
	}
	return nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates tables if they don't exist. Idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}
