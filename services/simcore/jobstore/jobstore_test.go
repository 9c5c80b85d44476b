package jobstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parthenon-labs/simscan/services/simcore/coordinate"
)

func TestSaveAndLoad(t *testing.T) {
	store, err := Open("")
	require.NoError(t, err)
	defer store.Close()

	result := &coordinate.WorkResult{
		Matches: []coordinate.PairMatch{
			{LeftDoc: 0, RightDoc: 1, LeftRate: 100, RightRate: 100, LinesMatched: 10},
		},
	}

	slug, err := store.Save(result)
	require.NoError(t, err)
	assert.NotEmpty(t, slug)

	loaded, err := store.Load(slug)
	require.NoError(t, err)
	assert.Equal(t, result, loaded)
}

func TestLoad_NotFound(t *testing.T) {
	store, err := Open("")
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Load("does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)
}
