package dataset

import (
	"errors"
	"fmt"
	"slices"
)

// ErrDuplicateName is returned by Pool.Add when a pair's provenance name is
// already taken.
var ErrDuplicateName = errors.New("duplicate provenance name")

// Source identifies where a pair came from.
type Source int

const (
	SourceSeed          Source = iota // hand-annotated seed set
	SourceAugmented                   // cascade variant of a seed image
	SourceExternalTrain               // external set, train subtree
	SourceExternalVal                 // external set, val subtree
)

func (s Source) String() string {
	switch s {
	case SourceSeed:
		return "seed"
	case SourceAugmented:
		return "augmented"
	case SourceExternalTrain:
		return "external-train"
	case SourceExternalVal:
		return "external-val"
	default:
		return fmt.Sprintf("Source(%d)", int(s))
	}
}

// Pair is one image with its label file.
//
// Name is the provenance name the pair is materialized under. Label contents
// are never read; the file is copied byte-for-byte.
type Pair struct {
	Image  string
	Label  string
	Name   string
	Source Source

	// Origin is the provenance name of the seed pair an augmented pair was
	// derived from. Empty for other sources.
	Origin string
}

// Pool is the ordered set of pairs of one build. Names are unique.
type Pool struct {
	pairs []Pair
	names map[string]struct{}
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{names: make(map[string]struct{})}
}

// Add appends pair, rejecting it with ErrDuplicateName if its name is taken.
func (p *Pool) Add(pair Pair) error {
	if _, ok := p.names[pair.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateName, pair.Name)
	}
	p.names[pair.Name] = struct{}{}
	p.pairs = append(p.pairs, pair)
	return nil
}

// Len returns the number of pairs in the pool.
func (p *Pool) Len() int {
	return len(p.pairs)
}

// Pairs returns a copy of the pool's pairs in insertion order.
func (p *Pool) Pairs() []Pair {
	return slices.Clone(p.pairs)
}

// Count returns the number of pairs from src.
func (p *Pool) Count(src Source) int {
	n := 0
	for _, pair := range p.pairs {
		if pair.Source == src {
			n++
		}
	}
	return n
}
