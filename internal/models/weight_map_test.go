package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightMapTopKeys(t *testing.T) {
	m := WeightMap{"mumbai": 20, "pune": 20, "delhi": 5, "goa": 1}

	// Ties break alphabetically so the ordering is stable.
	assert.Equal(t, []string{"mumbai", "pune", "delhi"}, m.TopKeys(3))
	assert.Equal(t, []string{"mumbai"}, m.TopKeys(1))
	assert.Len(t, m.TopKeys(10), 4)
	assert.Nil(t, m.TopKeys(0))
	assert.Nil(t, WeightMap{}.TopKeys(3))
}

func TestWeightMapScanLegacyValues(t *testing.T) {
	// Rows written before the preference tables existed may hold NULL or
	// empty strings; both load as an empty map.
	var m WeightMap
	require.NoError(t, m.Scan(nil))
	assert.NotNil(t, m)
	assert.Empty(t, m)

	require.NoError(t, m.Scan("null"))
	assert.Empty(t, m)

	require.NoError(t, m.Scan([]byte(`{"mumbai": 7}`)))
	assert.Equal(t, 7, m["mumbai"])

	assert.Error(t, m.Scan(42))
}
