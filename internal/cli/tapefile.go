package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/lumenlearn/codetape/internal/codec"
	"github.com/lumenlearn/codetape/internal/tape"
)

// LoadTape reads a recording from disk, sniffing the encoding: zstd-wrapped
// payloads are decompressed first, then the compact magic selects between
// the compact and canonical decoders.
func LoadTape(path string) (*tape.Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to read tape", err)
	}

	if codec.IsCompressed(data) {
		if data, err = codec.Decompress(data); err != nil {
			return nil, WrapExitError(ExitFailure, "failed to decompress tape", err)
		}
	}

	var rec *tape.Recording
	if bytes.HasPrefix(data, codec.Magic[:]) {
		rec, err = codec.DecodeCompact(data)
	} else {
		rec, err = codec.DecodeCanonical(data)
	}
	if err != nil {
		return nil, WrapExitError(ExitFailure, fmt.Sprintf("failed to decode %s", path), err)
	}
	return rec, nil
}

// WriteTape encodes a recording to disk in the named encoding, optionally
// zstd compressed. enc tunes the compact encoder and is ignored for
// canonical output.
func WriteTape(path string, rec *tape.Recording, encoding string, compress bool, enc codec.Options) error {
	var data []byte
	var err error
	switch encoding {
	case "canonical":
		data, err = codec.EncodeCanonical(rec)
	case "compact":
		data, err = codec.EncodeCompact(rec, enc)
	default:
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown encoding %q (canonical|compact)", encoding))
	}
	if err != nil {
		return WrapExitError(ExitFailure, "failed to encode tape", err)
	}

	if compress {
		if data, err = codec.Compress(data); err != nil {
			return WrapExitError(ExitFailure, "failed to compress tape", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return WrapExitError(ExitCommandError, "failed to write tape", err)
	}
	return nil
}
