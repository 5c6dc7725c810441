package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenlearn/codetape/internal/tape"
	"github.com/lumenlearn/codetape/internal/testutil"
)

func TestCompress_RoundTrip(t *testing.T) {
	rec := testutil.BuildRecording(t, testutil.FixtureOptions{Steps: 20, Succeed: true})

	for name, encode := range map[string]func() ([]byte, error){
		"canonical": func() ([]byte, error) { return EncodeCanonical(rec) },
		"compact":   func() ([]byte, error) { return EncodeCompact(rec, Options{}) },
	} {
		t.Run(name, func(t *testing.T) {
			data, err := encode()
			require.NoError(t, err)

			packed, err := Compress(data)
			require.NoError(t, err)
			assert.True(t, IsCompressed(packed))
			assert.False(t, IsCompressed(data))

			unpacked, err := Decompress(packed)
			require.NoError(t, err)
			assert.Equal(t, data, unpacked)
		})
	}
}

func TestCompress_ShrinksRepetitiveLog(t *testing.T) {
	// Near-duplicate snapshots dominate a session log; the wrapper should
	// actually pay for itself on the canonical encoding.
	rec := testutil.BuildRecording(t, testutil.FixtureOptions{Steps: 50})

	data, err := EncodeCanonical(rec)
	require.NoError(t, err)

	packed, err := Compress(data)
	require.NoError(t, err)
	assert.Less(t, len(packed), len(data)/2)
}

func TestDecompress_RejectsGarbage(t *testing.T) {
	_, err := Decompress([]byte("definitely not a zstd stream"))
	require.Error(t, err)
	assert.True(t, tape.IsIntegrity(err))
}

func TestFingerprint_StableAndIDIndependent(t *testing.T) {
	a := goldenRecording()
	b := goldenRecording()
	b.Meta.ID = "rec-other-id"

	fpA, err := Fingerprint(a)
	require.NoError(t, err)
	fpB, err := Fingerprint(b)
	require.NoError(t, err)

	assert.Len(t, fpA, 64)
	assert.Equal(t, fpA, fpB, "assigned id must not affect the fingerprint")
}

func TestFingerprint_NormalizesUnicodeComposition(t *testing.T) {
	// "é" as a precomposed rune vs "e" + combining acute.
	a := goldenRecording()
	a.Events[0].Snapshot.Code = "caf\u00e9 = 1\n"
	b := goldenRecording()
	b.Events[0].Snapshot.Code = "cafe\u0301 = 1\n"

	fpA, err := Fingerprint(a)
	require.NoError(t, err)
	fpB, err := Fingerprint(b)
	require.NoError(t, err)
	assert.Equal(t, fpA, fpB)
}

func TestFingerprint_DiffersOnContent(t *testing.T) {
	a := goldenRecording()
	b := goldenRecording()
	b.Events[1].Snapshot.TestsPassed = 1
	b.Meta.Success = false

	fpA, err := Fingerprint(a)
	require.NoError(t, err)
	fpB, err := Fingerprint(b)
	require.NoError(t, err)
	assert.NotEqual(t, fpA, fpB)
}
