/*
Package multivote merges the probability or confidence vectors of the
members of an ensemble into one distribution.

A List is a per-request accumulator: it is not safe for concurrent use,
and callers scoring records in parallel must give every request its own
List or synchronize access to a shared one themselves.
*/
package multivote

import (
	"fmt"
	"math"
)

// Precision is the number of decimals combined values are rounded to.
const Precision = 5

// VoteError represents an error combining votes
type VoteError string

func (ve VoteError) Error() string {
	return string(ve)
}

const (
	// ErrEmpty is returned when combining a list with no vectors
	ErrEmpty = VoteError("cannot combine an empty list of votes")
	// ErrLengthMismatch is returned when vectors of a list differ in length
	ErrLengthMismatch = VoteError("votes have different lengths")
	// ErrZeroTotal is returned when normalizing votes that add up to zero
	ErrZeroTotal = VoteError("cannot normalize votes adding up to zero")
	// ErrInvalidArgument is returned when a list is built from something
	// that is not a list of vectors
	ErrInvalidArgument = VoteError("invalid argument")
)

/*
List accumulates one vector per ensemble member.
*/
type List struct {
	vectors [][]float64
}

/*
New takes the initial vectors and returns a List holding them.
*/
func New(vectors ...[]float64) *List {
	return &List{vectors: append([][]float64(nil), vectors...)}
}

/*
Parse takes a decoded JSON value that should be a list of numeric lists
and returns a List with them. Any other value fails with an error
wrapping ErrInvalidArgument that names the received value.
*/
func Parse(v interface{}) (*List, error) {
	items, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: expected a list of vectors to create a vote list, found %v instead", ErrInvalidArgument, v)
	}
	l := &List{}
	for i, item := range items {
		values, ok := item.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: vote %d is not a vector: %v", ErrInvalidArgument, i, item)
		}
		vector := make([]float64, len(values))
		for j, value := range values {
			f, ok := value.(float64)
			if !ok {
				return nil, fmt.Errorf("%w: vote %d has a non numeric component %v", ErrInvalidArgument, i, value)
			}
			vector[j] = f
		}
		l.Append(vector)
	}
	return l, nil
}

// Append adds a member vector to the list.
func (l *List) Append(vector []float64) {
	l.vectors = append(l.vectors, vector)
}

// Len returns the number of member vectors in the list.
func (l *List) Len() int {
	return len(l.vectors)
}

// Vectors returns the member vectors of the list.
func (l *List) Vectors() [][]float64 {
	return l.vectors
}

// SourceKind tells which of its two forms a Source holds.
type SourceKind int

const (
	// SourceVectors is a Source holding raw vectors
	SourceVectors SourceKind = iota
	// SourceList is a Source holding another List
	SourceList
)

/*
Source is the input of Extend: either raw vectors or another List,
told apart by Kind.
*/
type Source struct {
	Kind    SourceKind
	vectors [][]float64
	list    *List
}

// Vectors returns a Source holding the given raw vectors.
func Vectors(vectors ...[]float64) Source {
	return Source{Kind: SourceVectors, vectors: vectors}
}

// FromList returns a Source holding another List.
func FromList(l *List) Source {
	return Source{Kind: SourceList, list: l}
}

/*
Extend appends every vector of the source to the list. When the source
holds another List its vectors are appended one by one.
*/
func (l *List) Extend(s Source) {
	switch s.Kind {
	case SourceVectors:
		l.vectors = append(l.vectors, s.vectors...)
	case SourceList:
		if s.list != nil {
			l.vectors = append(l.vectors, s.list.vectors...)
		}
	}
}

/*
Combine adds up the member vectors element by element and divides each
component by the grand total of all components when normalize is true,
yielding a distribution that adds up to 1, or by the number of members
otherwise, yielding their average. Components are rounded to Precision
decimals.

Combining an empty list fails with ErrEmpty, and members whose length
differs from the first member's fail with ErrLengthMismatch. Normalizing
votes whose components add up to zero fails with ErrZeroTotal.
*/
func (l *List) Combine(normalize bool) ([]float64, error) {
	if len(l.vectors) == 0 {
		return nil, ErrEmpty
	}
	size := len(l.vectors[0])
	y := make([]float64, size)
	for i, v := range l.vectors {
		if len(v) != size {
			return nil, fmt.Errorf("%w: vote %d has %d components, expected %d", ErrLengthMismatch, i, len(v), size)
		}
		for j, component := range v {
			y[j] += component
		}
	}
	divisor := float64(len(l.vectors))
	if normalize {
		divisor = 0
		for _, component := range y {
			divisor += component
		}
		if divisor == 0 {
			return nil, ErrZeroTotal
		}
	}
	for j := range y {
		y[j] = round(y[j]/divisor, Precision)
	}
	return y, nil
}

func round(v float64, decimals int) float64 {
	shift := math.Pow(10, float64(decimals))
	return math.Round(v*shift) / shift
}
