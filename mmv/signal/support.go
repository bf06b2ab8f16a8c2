package signal

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Support is a set of row indices. Order carries no meaning; use Equal to
// compare two supports.
type Support []int

// Len returns the number of indices in s.
func (s Support) Len() int { return len(s) }

// Sorted returns a sorted copy of s.
func (s Support) Sorted() Support {
	out := slices.Clone(s)
	slices.Sort(out)
	return out
}

// Contains reports whether idx is in s.
func (s Support) Contains(idx int) bool {
	return slices.Contains(s, idx)
}

// Equal reports set equality between s and other.
func (s Support) Equal(other Support) bool {
	if len(s) != len(other) {
		return false
	}
	a, b := s.Sorted(), other.Sorted()
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Validate checks that s holds exactly k distinct indices in [0, n).
func (s Support) Validate(n, k int) error {
	if len(s) != k {
		return fmt.Errorf("signal: support has %d indices, want %d", len(s), k)
	}
	seen := make(map[int]struct{}, len(s))
	for _, idx := range s {
		if idx < 0 || idx >= n {
			return fmt.Errorf("signal: support index %d out of range [0,%d)", idx, n)
		}
		if _, dup := seen[idx]; dup {
			return fmt.Errorf("signal: duplicate support index %d", idx)
		}
		seen[idx] = struct{}{}
	}
	return nil
}

// String renders the sorted indices, e.g. "{3 17 42}".
func (s Support) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, idx := range s.Sorted() {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.Itoa(idx))
	}
	b.WriteByte('}')
	return b.String()
}
