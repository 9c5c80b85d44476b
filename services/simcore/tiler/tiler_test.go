package tiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parthenon-labs/simscan/services/simcore/token"
)

func TestRun_IdenticalStreamsProduceOneTileSpanningWholeInput(t *testing.T) {
	a := make([]byte, 60)
	for i := range a {
		a[i] = byte(i % 5)
	}
	b := append([]byte(nil), a...)

	tiles := Run(a, b, 10, 5)
	require.NotEmpty(t, tiles)
	assert.Equal(t, len(a), tiles[0].Length)
	assert.Equal(t, 0, tiles[0].PatternIndex)
	assert.Equal(t, 0, tiles[0].TextIndex)
}

func TestRun_NoOverlap(t *testing.T) {
	a := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20}
	b := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20}
	tiles := Run(a, b, 4, 4)
	coveredA := make(map[int]bool)
	coveredB := make(map[int]bool)
	for _, tl := range tiles {
		for i := tl.PatternIndex; i < tl.PatternIndex+tl.Length; i++ {
			assert.False(t, coveredA[i], "position %d in A covered twice", i)
			coveredA[i] = true
		}
		for i := tl.TextIndex; i < tl.TextIndex+tl.Length; i++ {
			assert.False(t, coveredB[i], "position %d in B covered twice", i)
			coveredB[i] = true
		}
	}
}

func TestRun_NonIncreasingLengthOrder(t *testing.T) {
	a := []byte("abcdefghijABCDEFGHIJ0123456789abcdefghijklmnop")
	b := []byte("xxxxabcdefghijABCDEFGHIJyyyy0123456789zzzzzzzz")
	tiles := Run([]byte(a), []byte(b), 8, 4)
	for i := 1; i < len(tiles); i++ {
		assert.GreaterOrEqual(t, tiles[i-1].Length, tiles[i].Length)
	}
}

func TestRun_TooShortInputsYieldNothing(t *testing.T) {
	a := []byte{1, 2, 3}
	b := []byte{1, 2, 3}
	assert.Empty(t, Run(a, b, 40, 20))
}

func TestRun_EmptyInputs(t *testing.T) {
	assert.Empty(t, Run(nil, []byte{1, 2, 3}, 2, 1))
	assert.Empty(t, Run([]byte{1, 2, 3}, nil, 2, 1))
}

func makeKindRun(n int, start byte) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = start + byte(i)
	}
	return out
}

func TestSubtractTemplate_FullyCoveredDropsTile(t *testing.T) {
	tiles := []Tile{{PatternIndex: 5, TextIndex: 0, Length: 10}}
	templateTiles := []Tile{{PatternIndex: 0, TextIndex: 0, Length: 30}}
	got := SubtractTemplate(tiles, templateTiles, left)
	assert.Empty(t, got)
}

func TestSubtractTemplate_HeadClipped(t *testing.T) {
	tiles := []Tile{{PatternIndex: 10, TextIndex: 100, Length: 20}} // range [10,29]
	templateTiles := []Tile{{PatternIndex: 0, TextIndex: 0, Length: 15}} // range [0,14]
	got := SubtractTemplate(tiles, templateTiles, left)
	require.Len(t, got, 1)
	assert.Equal(t, 15, got[0].PatternIndex)
	assert.Equal(t, 105, got[0].TextIndex)
	assert.Equal(t, 15, got[0].Length)
}

func TestSubtractTemplate_TailClipped(t *testing.T) {
	tiles := []Tile{{PatternIndex: 0, TextIndex: 100, Length: 20}} // range [0,19]
	templateTiles := []Tile{{PatternIndex: 15, TextIndex: 0, Length: 20}} // range [15,34]
	got := SubtractTemplate(tiles, templateTiles, left)
	require.Len(t, got, 1)
	assert.Equal(t, 0, got[0].PatternIndex)
	assert.Equal(t, 100, got[0].TextIndex)
	assert.Equal(t, 15, got[0].Length) // diff = 19-15+1 = 5, length 20-5=15
}

func TestSubtractTemplate_SplitsIntoTwo(t *testing.T) {
	tiles := []Tile{{PatternIndex: 0, TextIndex: 100, Length: 30}} // range [0,29]
	templateTiles := []Tile{{PatternIndex: 10, TextIndex: 0, Length: 10}} // range [10,19]
	got := SubtractTemplate(tiles, templateTiles, left)
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].PatternIndex)
	assert.Equal(t, 10, got[0].Length)
	assert.Equal(t, 20, got[1].PatternIndex)
	assert.Equal(t, 120, got[1].TextIndex)
	assert.Equal(t, 10, got[1].Length)
}

func TestSubtractTemplate_DisjointUnchanged(t *testing.T) {
	tiles := []Tile{{PatternIndex: 0, TextIndex: 100, Length: 5}}
	templateTiles := []Tile{{PatternIndex: 100, TextIndex: 0, Length: 5}}
	got := SubtractTemplate(tiles, templateTiles, left)
	require.Len(t, got, 1)
	assert.Equal(t, tiles[0], got[0])
}

func tok(line uint32) token.Token { return token.Token{Line: line, Column: 1, Kind: 1, Spelling: "x"} }

func TestApplyLineDisjointness_DropsOverlappingLine(t *testing.T) {
	tokensLeft := []token.Token{tok(1), tok(1), tok(2), tok(2)}
	tokensRight := []token.Token{tok(1), tok(1), tok(2), tok(2)}

	tiles := []Tile{
		{PatternIndex: 0, TextIndex: 0, Length: 2}, // lines 1-1 both sides
		{PatternIndex: 1, TextIndex: 1, Length: 2}, // overlaps line 1 on both sides (position 1 -> line1)
	}
	blocks := ApplyLineDisjointness(tiles, tokensLeft, tokensRight)
	require.Len(t, blocks, 1)
	assert.Equal(t, 0, blocks[0].LeftLineFrom)
}

func TestApplyLineDisjointness_EmptyTokensYieldsNoBlocks(t *testing.T) {
	assert.Empty(t, ApplyLineDisjointness([]Tile{{Length: 1}}, nil, []token.Token{tok(1)}))
}
