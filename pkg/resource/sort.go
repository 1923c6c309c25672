package resource

import (
	"cmp"
	"slices"
	"strconv"
)

// SortRelevance keeps the order the API returned results in.
const SortRelevance = "relevance"

// Sorted returns the entities of kind ordered by the named attribute.
//
// With by == [SortRelevance] (or empty) the API order is kept when
// descending is true and reversed otherwise, since the API lists the most
// relevant results first. Any other name sorts by that attribute: numerically
// when both values parse as numbers, as strings otherwise. Entities without
// the attribute always sort last. The sort is stable.
func (s *Store) Sorted(kind Kind, by string, descending bool) []Resource {
	rs := s.Collection(kind)
	if by == "" || by == SortRelevance {
		if !descending {
			slices.Reverse(rs)
		}
		return rs
	}
	slices.SortStableFunc(rs, func(a, b Resource) int {
		av, aok := a.Attributes().String(by)
		bv, bok := b.Attributes().String(by)
		switch {
		case !aok && !bok:
			return 0
		case !aok:
			return 1
		case !bok:
			return -1
		}
		c := compareValues(av, bv)
		if descending {
			return -c
		}
		return c
	})
	return rs
}

func compareValues(a, b string) int {
	af, aerr := strconv.ParseFloat(a, 64)
	bf, berr := strconv.ParseFloat(b, 64)
	if aerr == nil && berr == nil {
		return cmp.Compare(af, bf)
	}
	return cmp.Compare(a, b)
}
