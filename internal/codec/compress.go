package codec

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/lumenlearn/codetape/internal/tape"
)

// Compress wraps an encoded recording in a zstd stream. Orthogonal to the
// logical encoding: Decompress(Compress(b)) == b for any payload.
func Compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("init zstd writer: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}

// Decompress reverses Compress. A payload that is not a zstd stream is an
// IntegrityError.
func Decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("init zstd reader: %w", err)
	}
	defer dec.Close()

	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, &tape.IntegrityError{Message: "not a zstd stream", Err: err}
	}
	return out, nil
}

// IsCompressed sniffs the zstd frame magic (0x28 0xB5 0x2F 0xFD).
func IsCompressed(data []byte) bool {
	return len(data) >= 4 &&
		data[0] == 0x28 && data[1] == 0xB5 && data[2] == 0x2F && data[3] == 0xFD
}
