package winnow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWinnow_TextbookExample runs the canonical SIGMOD'03 input
// "adorunrunrunadorunrun" with noise=5, guarantee=9 (windows of 5
// hashes) and checks that emitted offsets strictly increase.
func TestWinnow_TextbookExample(t *testing.T) {
	text := "adorunrunrunadorunrun"
	kinds := []byte(text)

	fps := Winnow(kinds, 5, 9)
	require.NotEmpty(t, fps)

	for i := 1; i < len(fps); i++ {
		assert.Greater(t, fps[i].Offset, fps[i-1].Offset, "offsets must strictly increase")
	}
}

func TestWinnow_ShortStreamEmitsNothing(t *testing.T) {
	kinds := []byte{1, 2, 3}
	fps := Winnow(kinds, 40, 80)
	assert.Empty(t, fps)
}

func TestWinnow_EmptyStream(t *testing.T) {
	assert.Empty(t, Winnow(nil, 40, 80))
	assert.Empty(t, AllFingerprints(nil, 40))
}

func TestWinnow_IdenticalStreamsProduceIdenticalFingerprints(t *testing.T) {
	kinds := make([]byte, 200)
	for i := range kinds {
		kinds[i] = byte(i % 17)
	}
	a := Winnow(kinds, 10, 20)
	b := Winnow(kinds, 10, 20)
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i], b[i])
	}
}

func TestWinnow_NoConsecutiveDuplicateOffsets(t *testing.T) {
	kinds := make([]byte, 500)
	for i := range kinds {
		kinds[i] = byte((i*37 + 11) % 251)
	}
	fps := Winnow(kinds, 8, 16)
	for i := 1; i < len(fps); i++ {
		assert.NotEqual(t, fps[i-1].Offset, fps[i].Offset)
	}
}

func TestAllFingerprints_EmitsOnePerPosition(t *testing.T) {
	kinds := make([]byte, 50)
	for i := range kinds {
		kinds[i] = byte(i)
	}
	fps := AllFingerprints(kinds, 10)
	assert.Len(t, fps, 41)
	for i, fp := range fps {
		assert.Equal(t, i, fp.Offset)
	}
}

func TestRollingChecksum_MatchesDirectComputation(t *testing.T) {
	kinds := []byte{10, 20, 30, 40, 50, 60, 70}
	noise := 3
	got := rollingChecksums(kinds, noise)
	require.Len(t, got, len(kinds)-noise+1)

	for start := range got {
		var a, b uint32
		for i := start; i < start+noise; i++ {
			a = (a + uint32(kinds[i])) % adlerMod
			b = (b + a) % adlerMod
		}
		want := (b << 16) | a
		assert.Equal(t, want, got[start], "mismatch at offset %d", start)
	}
}
