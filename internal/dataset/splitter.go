package dataset

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
)

// ErrEmptyPool is returned when there are no pairs to split.
var ErrEmptyPool = errors.New("pool is empty: no image/label pairs were admitted")

// Split is a partition of the pool into training and validation subsets.
type Split struct {
	Train []Pair
	Val   []Pair
}

// ValCount returns the validation subset size for a pool of n pairs:
// max(1, floor(n*ratio)).
func ValCount(n int, ratio float64) int {
	return max(1, int(math.Floor(float64(n)*ratio)))
}

// Shuffle returns a shuffled copy of pairs. The generator is built locally
// from seed, so the permutation depends only on the input order and the seed.
func Shuffle(pairs []Pair, seed uint64) []Pair {
	shuffled := slices.Clone(pairs)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}

// SplitPool shuffles pairs once and assigns the first ValCount pairs to
// validation and the rest to training.
//
// Augmented variants are shuffled independently of their source image, so a
// seed image and its variants may end up on both sides of the boundary.
//
// # Errors
//
//   - Returns ErrEmptyPool if pairs is empty
//   - Returns error if ratio is not strictly between 0 and 1
func SplitPool(pairs []Pair, ratio float64, seed uint64) (Split, error) {
	if len(pairs) == 0 {
		return Split{}, ErrEmptyPool
	}
	if !(ratio > 0 && ratio < 1) {
		return Split{}, fmt.Errorf("validation ratio must be between 0 and 1, got %v", ratio)
	}

	shuffled := Shuffle(pairs, seed)
	n := ValCount(len(shuffled), ratio)
	return Split{
		Train: shuffled[n:],
		Val:   shuffled[:n],
	}, nil
}
