package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/lumenlearn/codetape/internal/tape"
)

// Magic identifies compact recording files.
var Magic = [4]byte{'C', 'T', 'P', 'E'}

// CompactVersion tracks the compact binary layout:
// 1 - Initial layout (CBOR payloads, uvarint length prefixes)
const CompactVersion uint32 = 1

// DefaultDeltaThreshold is the delta-vs-full size cutoff: a delta is stored
// only when its serialized size is below this fraction of the full
// snapshot's. A policy knob, not a correctness requirement.
const DefaultDeltaThreshold = 0.30

// Options tunes the compact encoder.
type Options struct {
	// DeltaThreshold overrides DefaultDeltaThreshold when > 0.
	DeltaThreshold float64
}

func (o Options) threshold() float64 {
	if o.DeltaThreshold > 0 {
		return o.DeltaThreshold
	}
	return DefaultDeltaThreshold
}

// Record encoding tags.
const (
	recFull  = "full"
	recDelta = "delta"
)

// compactRecord is one length-prefixed event record. Exactly one of Full or
// Delta is set, according to Enc.
type compactRecord struct {
	Timestamp float64             `cbor:"t"`
	Event     tape.Event          `cbor:"e"`
	Enc       string              `cbor:"enc"`
	Full      *tape.StateSnapshot `cbor:"full,omitempty"`
	Delta     *snapshotDelta      `cbor:"delta,omitempty"`
}

// compactMeta carries the recording metadata plus the schema version of the
// logical content (distinct from the binary layout version in the header).
type compactMeta struct {
	SchemaVersion int           `cbor:"schema_version"`
	Meta          tape.Metadata `cbor:"metadata"`
}

// encMode is the deterministic CBOR encoder: sorted map keys, RFC 3339
// nanosecond time so CreatedAt survives the round trip exactly.
var encMode cbor.EncMode

// decMode rejects unknown fields lazily (extra fields are ignored; content
// is verified by Recording.Validate after assembly).
var decMode cbor.DecMode

func init() {
	eopts := cbor.CanonicalEncOptions()
	eopts.Time = cbor.TimeRFC3339Nano
	em, err := eopts.EncMode()
	if err != nil {
		panic(err)
	}
	encMode = em

	dm, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(err)
	}
	decMode = dm
}

// EncodeCompact serializes r into the compact binary format. Snapshot i > 0
// is stored as a delta against snapshot i-1 when the delta is smaller than
// the configured fraction of the full encoding.
func EncodeCompact(r *tape.Recording, opts Options) ([]byte, error) {
	var buf bytes.Buffer

	buf.Write(Magic[:])
	if err := binary.Write(&buf, binary.BigEndian, CompactVersion); err != nil {
		return nil, fmt.Errorf("encode compact header: %w", err)
	}
	if err := binary.Write(&buf, binary.BigEndian, uint32(len(r.Events))); err != nil {
		return nil, fmt.Errorf("encode compact header: %w", err)
	}

	metaBytes, err := encMode.Marshal(compactMeta{SchemaVersion: r.SchemaVersion, Meta: r.Meta})
	if err != nil {
		return nil, fmt.Errorf("encode compact metadata: %w", err)
	}
	writeBlock(&buf, metaBytes)

	threshold := opts.threshold()
	for i, ev := range r.Events {
		rec := compactRecord{Timestamp: ev.Timestamp, Event: ev.Event}

		snap := ev.Snapshot
		fullBytes, err := encMode.Marshal(&snap)
		if err != nil {
			return nil, fmt.Errorf("encode compact event %d: %w", i, err)
		}

		stored := false
		if i > 0 {
			delta := computeDelta(r.Events[i-1].Snapshot, snap)
			deltaBytes, err := encMode.Marshal(&delta)
			if err != nil {
				return nil, fmt.Errorf("encode compact event %d delta: %w", i, err)
			}
			if float64(len(deltaBytes)) < threshold*float64(len(fullBytes)) {
				rec.Enc = recDelta
				rec.Delta = &delta
				stored = true
			}
		}
		if !stored {
			rec.Enc = recFull
			rec.Full = &snap
		}

		recBytes, err := encMode.Marshal(&rec)
		if err != nil {
			return nil, fmt.Errorf("encode compact event %d: %w", i, err)
		}
		writeBlock(&buf, recBytes)
	}

	cpBytes, err := encMode.Marshal(r.Checkpoints)
	if err != nil {
		return nil, fmt.Errorf("encode compact checkpoints: %w", err)
	}
	writeBlock(&buf, cpBytes)

	return buf.Bytes(), nil
}

// DecodeCompact parses the compact format, replaying deltas forward from the
// nearest preceding full snapshot. Any header mismatch or truncation fails
// fast with an IntegrityError.
func DecodeCompact(data []byte) (*tape.Recording, error) {
	rd := bytes.NewReader(data)

	var magic [4]byte
	if _, err := io.ReadFull(rd, magic[:]); err != nil {
		return nil, &tape.IntegrityError{Message: "truncated header", Err: err}
	}
	if magic != Magic {
		return nil, &tape.IntegrityError{Message: fmt.Sprintf("bad magic %q", magic[:])}
	}

	var version, count uint32
	if err := binary.Read(rd, binary.BigEndian, &version); err != nil {
		return nil, &tape.IntegrityError{Message: "truncated header", Err: err}
	}
	if version != CompactVersion {
		return nil, &tape.IntegrityError{Message: fmt.Sprintf("unsupported compact version %d (want %d)", version, CompactVersion)}
	}
	if err := binary.Read(rd, binary.BigEndian, &count); err != nil {
		return nil, &tape.IntegrityError{Message: "truncated header", Err: err}
	}
	// Every record costs at least one byte, so a claimed count beyond the
	// remaining input is corrupt. Checked before the count sizes anything.
	if uint64(count) > uint64(rd.Len()) {
		return nil, &tape.IntegrityError{Message: fmt.Sprintf("record count %d exceeds remaining %d bytes", count, rd.Len())}
	}

	metaBytes, err := readBlock(rd)
	if err != nil {
		return nil, &tape.IntegrityError{Message: "corrupt metadata block", Err: err}
	}
	var cm compactMeta
	if err := decMode.Unmarshal(metaBytes, &cm); err != nil {
		return nil, &tape.IntegrityError{Message: "corrupt metadata block", Err: err}
	}

	events := make([]tape.RecordedEvent, 0, count)
	var prev tape.StateSnapshot
	for i := uint32(0); i < count; i++ {
		recBytes, err := readBlock(rd)
		if err != nil {
			return nil, &tape.IntegrityError{Message: fmt.Sprintf("corrupt event record %d", i), Err: err}
		}
		var rec compactRecord
		if err := decMode.Unmarshal(recBytes, &rec); err != nil {
			return nil, &tape.IntegrityError{Message: fmt.Sprintf("corrupt event record %d", i), Err: err}
		}

		var snap tape.StateSnapshot
		switch rec.Enc {
		case recFull:
			if rec.Full == nil {
				return nil, &tape.IntegrityError{Message: fmt.Sprintf("event record %d tagged full without snapshot", i)}
			}
			snap = *rec.Full
		case recDelta:
			if i == 0 {
				return nil, &tape.IntegrityError{Message: "first event record cannot be a delta"}
			}
			if rec.Delta == nil {
				return nil, &tape.IntegrityError{Message: fmt.Sprintf("event record %d tagged delta without payload", i)}
			}
			snap = applyDelta(prev, *rec.Delta)
		default:
			return nil, &tape.IntegrityError{Message: fmt.Sprintf("event record %d has unknown encoding tag %q", i, rec.Enc)}
		}

		events = append(events, tape.RecordedEvent{Timestamp: rec.Timestamp, Event: rec.Event, Snapshot: snap})
		prev = snap
	}

	cpBytes, err := readBlock(rd)
	if err != nil {
		return nil, &tape.IntegrityError{Message: "corrupt checkpoint block", Err: err}
	}
	var checkpoints map[string]int
	if err := decMode.Unmarshal(cpBytes, &checkpoints); err != nil {
		return nil, &tape.IntegrityError{Message: "corrupt checkpoint block", Err: err}
	}

	out := &tape.Recording{
		SchemaVersion: cm.SchemaVersion,
		Meta:          cm.Meta,
		Events:        events,
		Checkpoints:   checkpoints,
	}
	if out.SchemaVersion != tape.SchemaVersion {
		return nil, &tape.IntegrityError{Message: fmt.Sprintf("unsupported schema version %d (want %d)", out.SchemaVersion, tape.SchemaVersion)}
	}
	if err := out.Validate(); err != nil {
		return nil, &tape.IntegrityError{Message: "compact payload violates log invariants", Err: err}
	}
	return out, nil
}

// writeBlock appends a uvarint length prefix followed by data.
func writeBlock(buf *bytes.Buffer, data []byte) {
	var lenBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(lenBuf[:], uint64(len(data)))
	buf.Write(lenBuf[:n])
	buf.Write(data)
}

// readBlock reads one length-prefixed block.
func readBlock(rd *bytes.Reader) ([]byte, error) {
	length, err := binary.ReadUvarint(rd)
	if err != nil {
		return nil, fmt.Errorf("read block length: %w", err)
	}
	if length > uint64(rd.Len()) {
		return nil, fmt.Errorf("block length %d exceeds remaining %d bytes", length, rd.Len())
	}
	data := make([]byte, length)
	if _, err := io.ReadFull(rd, data); err != nil {
		return nil, fmt.Errorf("read block body: %w", err)
	}
	return data, nil
}
