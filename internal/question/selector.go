package question

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
)

// ErrNotFound is returned when no record matches a selector.
var ErrNotFound = errors.New("question not found")

// SelectMode chooses how a record is picked.
type SelectMode int

const (
	SelectNumber SelectMode = iota
	SelectRandom
)

// Selector picks one record from a questions file.
type Selector struct {
	Mode   SelectMode
	Number int // used when Mode is SelectNumber
}

// ByNumber selects the first record with the given question number.
func ByNumber(n int) Selector { return Selector{Mode: SelectNumber, Number: n} }

// Random selects a record uniformly at random.
func Random() Selector { return Selector{Mode: SelectRandom} }

// ParseSelector accepts "random" or a question number.
func ParseSelector(s string) (Selector, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "random") {
		return Random(), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return Selector{}, fmt.Errorf("invalid question selector %q: want a question number or \"random\"", s)
	}
	return ByNumber(n), nil
}

func (s Selector) String() string {
	if s.Mode == SelectRandom {
		return "random"
	}
	return strconv.Itoa(s.Number)
}

// Select returns the record chosen by sel. Number selection scans in order
// and returns the first match. rng may be nil to use the global source.
func Select(records []Record, sel Selector, rng *rand.Rand) (Record, error) {
	switch sel.Mode {
	case SelectRandom:
		if len(records) == 0 {
			return Record{}, fmt.Errorf("%w: no questions to choose from", ErrNotFound)
		}
		var i int
		if rng != nil {
			i = rng.IntN(len(records))
		} else {
			i = rand.IntN(len(records))
		}
		return records[i], nil
	case SelectNumber:
		for _, r := range records {
			if r.Number == sel.Number {
				return r, nil
			}
		}
		return Record{}, fmt.Errorf("%w: could not locate question number %d", ErrNotFound, sel.Number)
	default:
		return Record{}, fmt.Errorf("unknown selection mode %d", sel.Mode)
	}
}
