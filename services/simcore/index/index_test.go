package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parthenon-labs/simscan/services/simcore/winnow"
)

func fp(hash uint64, offset int) winnow.Fingerprint {
	return winnow.Fingerprint{Hash: hash, Offset: offset}
}

func TestBuild_TemplateSubtractionRemovesWholeList(t *testing.T) {
	docs := [][]winnow.Fingerprint{
		{fp(1, 0), fp(2, 1)},
		{fp(1, 0), fp(3, 1)},
	}
	idx := Build(docs, []winnow.Fingerprint{fp(1, 0)})

	assert.Empty(t, idx.Postings(1))
	assert.Len(t, idx.Postings(2), 1)
	assert.Len(t, idx.Postings(3), 1)
}

func TestBuild_NoTemplateKeepsEverything(t *testing.T) {
	docs := [][]winnow.Fingerprint{
		{fp(1, 0)},
		{fp(1, 0)},
	}
	idx := Build(docs, nil)
	assert.Len(t, idx.Postings(1), 2)
}

func TestRankPairs_ScoresSharedFingerprints(t *testing.T) {
	docs := [][]winnow.Fingerprint{
		{fp(1, 0), fp(2, 0)},
		{fp(1, 0)},
		{fp(2, 0)},
	}
	idx := Build(docs, nil)
	pairs := idx.RankPairs(3, 200)
	require.NotEmpty(t, pairs)

	byKey := map[[2]int]int{}
	for _, p := range pairs {
		byKey[[2]int{p.Left, p.Right}] = p.Score
	}
	assert.Equal(t, 1, byKey[[2]int{0, 1}])
	assert.Equal(t, 1, byKey[[2]int{0, 2}])
	assert.Equal(t, 0, byKey[[2]int{1, 2}])
}

func TestRankPairs_PostingCapDiscardsCommonHash(t *testing.T) {
	var docs [][]winnow.Fingerprint
	for i := 0; i < PostingCap+2; i++ {
		docs = append(docs, []winnow.Fingerprint{fp(42, 0)})
	}
	idx := Build(docs, nil)
	pairs := idx.RankPairs(len(docs), 200)
	assert.Empty(t, pairs, "a hash with more than PostingCap postings must not contribute any score")
}

func TestRankPairs_TopKTruncates(t *testing.T) {
	docs := [][]winnow.Fingerprint{
		{fp(1, 0)},
		{fp(1, 0)},
		{fp(1, 0)},
	}
	idx := Build(docs, nil)
	pairs := idx.RankPairs(3, 1)
	assert.Len(t, pairs, 1)
}

func TestRankPairs_DeterministicOrdering(t *testing.T) {
	docs := [][]winnow.Fingerprint{
		{fp(1, 0), fp(2, 0)},
		{fp(1, 0), fp(2, 0)},
		{fp(1, 0)},
	}
	idx := Build(docs, nil)
	a := idx.RankPairs(3, 200)
	b := idx.RankPairs(3, 200)
	assert.Equal(t, a, b)
}

func TestRankPairs_SparseMatrixAboveThreshold(t *testing.T) {
	numDocs := denseThreshold + 10
	docs := make([][]winnow.Fingerprint, numDocs)
	docs[0] = []winnow.Fingerprint{fp(7, 0)}
	docs[1] = []winnow.Fingerprint{fp(7, 0)}
	for i := 2; i < numDocs; i++ {
		docs[i] = nil
	}
	idx := Build(docs, nil)
	pairs := idx.RankPairs(numDocs, 200)
	require.Len(t, pairs, 1)
	assert.Equal(t, Pair{Left: 0, Right: 1, Score: 1}, pairs[0])
}
