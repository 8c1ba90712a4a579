package collate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamedEssam/tinychain/pkg/collate"
	"github.com/MuhamedEssam/tinychain/pkg/types"
)

func TestCollator_RejectsUnsupportedColumnType(t *testing.T) {
	_, err := collate.New([]types.NumberType{types.Float64})
	require.Error(t, err)
}

func TestCollator_LexicographicMultiColumn(t *testing.T) {
	c, err := collate.New([]types.NumberType{types.Int32, types.String})
	require.NoError(t, err)

	a := collate.Key{int32(1), "b"}
	b := collate.Key{int32(1), "c"}
	assert.True(t, c.Less(a, b))
	assert.False(t, c.Less(b, a))

	x := collate.Key{int32(2), "a"}
	assert.True(t, c.Less(a, x), "second column should not matter once the first differs")
}

func TestCollator_BisectAndBisectLeft(t *testing.T) {
	c, err := collate.New([]types.NumberType{types.Int64})
	require.NoError(t, err)

	keys := []collate.Key{{int64(1)}, {int64(3)}, {int64(3)}, {int64(5)}}

	assert.Equal(t, 1, c.BisectLeft(keys, collate.Key{int64(3)}))
	assert.Equal(t, 3, c.Bisect(keys, collate.Key{int64(3)}))
	assert.Equal(t, 0, c.BisectLeft(keys, collate.Key{int64(0)}))
	assert.Equal(t, 4, c.Bisect(keys, collate.Key{int64(5)}))
}

func TestCollator_UnequalLengthKeys(t *testing.T) {
	c, err := collate.New([]types.NumberType{types.Int32, types.Int32})
	require.NoError(t, err)

	short := collate.Key{int32(1)}
	long := collate.Key{int32(1), int32(2)}
	assert.True(t, c.Less(short, long))
}
