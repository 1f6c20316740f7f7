package pirates

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPickAndTake(t *testing.T) {
	r := newRand(3)
	list := []int{1, 2, 3, 4, 5}

	var got []int
	for len(list) > 0 {
		before := len(list)
		v := PickAndTake(r, &list)
		assert.Len(t, list, before-1)
		assert.NotContains(t, list, v)
		got = append(got, v)
	}
	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5}, got)
}

func TestSeededRandIsDeterministic(t *testing.T) {
	a, b := newRand(11), newRand(11)
	list := []string{"a", "b", "c", "d", "e", "f"}
	for range 20 {
		assert.Equal(t, Pick(a, list), Pick(b, list))
	}
}
