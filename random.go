package pirates

import (
	"math/rand/v2"
	"time"
)

// newRand returns a random source seeded with seed, or with the clock if seed is 0.
func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Pick returns a uniformly random element of list. list must not be empty.
func Pick[T any](r *rand.Rand, list []T) T {
	return list[r.IntN(len(list))]
}

// PickAndTake removes and returns a uniformly random element of list.
// list must not be empty. The order of the remaining elements is preserved.
func PickAndTake[T any](r *rand.Rand, list *[]T) T {
	l := *list
	i := r.IntN(len(l))
	v := l[i]
	*list = append(l[:i], l[i+1:]...)
	return v
}
