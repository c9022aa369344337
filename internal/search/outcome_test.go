package search

import (
	"encoding/json"
	"testing"

	"github.com/cloo-solutions/searchbench/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_ZeroValueIsNotFound(t *testing.T) {
	var idx Index

	_, found := idx.Get()
	assert.False(t, found)
	assert.Equal(t, NotFound, idx)
	assert.Equal(t, "not found", idx.String())
}

func TestIndex_FoundZeroIsDistinctFromNotFound(t *testing.T) {
	idx := Found(0)

	pos, found := idx.Get()
	assert.True(t, found)
	assert.Equal(t, 0, pos)
	assert.NotEqual(t, NotFound, idx)
}

func TestOutcome_JSON(t *testing.T) {
	data, err := json.Marshal(Binary([]uint64{1, 3, 5}, 9))
	require.NoError(t, err)
	assert.JSONEq(t, `{"algorithm":"binary","index":null,"comparisons":8,"length":3}`, string(data))

	data, err = json.Marshal(Binary([]uint64{1, 3, 5}, 1))
	require.NoError(t, err)

	var out Outcome
	require.NoError(t, json.Unmarshal(data, &out))
	idx, found := out.Index.Get()
	assert.True(t, found)
	assert.Equal(t, 0, idx)
}

func TestIndex_UnmarshalRejectsNegative(t *testing.T) {
	var idx Index
	assert.Error(t, json.Unmarshal([]byte("-1"), &idx))
}

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		input   string
		want    Algorithm
		wantErr bool
	}{
		{"binary", AlgorithmBinary, false},
		{" Interp ", AlgorithmInterpolation, false},
		{"hybrid", AlgorithmInterpolatedBinary, false},
		{"interpolated-binary", AlgorithmInterpolatedBinary, false},
		{"linear", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAlgorithm(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrUnknownAlgorithm)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAlgorithm_Labels(t *testing.T) {
	assert.Equal(t, "Binary search", AlgorithmBinary.Label())
	assert.Equal(t, "Interpolation search", AlgorithmInterpolation.Label())
	assert.Equal(t, "Interpolated binary search", AlgorithmInterpolatedBinary.Label())
	assert.Equal(t, "Interpolated binary", AlgorithmInterpolatedBinary.ShortLabel())

	_, err := Algorithm("nope").Func()
	assert.ErrorIs(t, err, domain.ErrUnknownAlgorithm)
}
