package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDs(t *testing.T) {
	ids, err := IDs("3-5", "1, 4,9,")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4, 5, 1, 9}, ids)

	ids, err = IDs("", "")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRange_Invalid(t *testing.T) {
	for _, rng := range []string{"5", "5-1", "a-3", "0-2", "1-2000"} {
		_, err := Range(rng)
		assert.Error(t, err, rng)
	}
}

func TestList_Invalid(t *testing.T) {
	_, err := List("1,x")
	assert.Error(t, err)
	_, err = List("-3")
	assert.Error(t, err)
}

func TestExclude(t *testing.T) {
	ids := []int{1, 2, 3, 4, 5}

	out, err := Exclude(ids, "2-3", "5")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4}, out)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids)
}
