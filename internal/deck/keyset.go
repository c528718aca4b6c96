package deck

import "sort"

// KeySet is a set of physical key identifiers. Key ids are small
// non-negative integers, stable for the lifetime of the device.
type KeySet map[int]struct{}

// Keys builds a KeySet from the given ids.
func Keys(ids ...int) KeySet {
	s := make(KeySet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether the set contains the key.
func (s KeySet) Has(key int) bool {
	_, ok := s[key]
	return ok
}

// Union returns a new set with the members of both sets.
func (s KeySet) Union(other KeySet) KeySet {
	out := make(KeySet, len(s)+len(other))
	for k := range s {
		out[k] = struct{}{}
	}
	for k := range other {
		out[k] = struct{}{}
	}
	return out
}

// Diff returns the keys in s that are not in other.
func (s KeySet) Diff(other KeySet) KeySet {
	out := KeySet{}
	for k := range s {
		if !other.Has(k) {
			out[k] = struct{}{}
		}
	}
	return out
}

// Sorted returns the members in ascending order.
func (s KeySet) Sorted() []int {
	out := make([]int, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
