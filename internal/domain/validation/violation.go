package validation

import (
	"sort"

	"github.com/mdm/backend/internal/domain/reference"
)

// Kind classifies a violation. Role-driven violations carry the constraint
// kind of the failed rule; structural and typed-value checks use the
// additional kinds below.
type Kind string

const (
	KindRequired  Kind = Kind(reference.ConstraintRequired)
	KindPattern   Kind = Kind(reference.ConstraintPattern)
	KindReference Kind = Kind(reference.ConstraintReference)
	KindMaxSize   Kind = Kind(reference.ConstraintMaxSize)
	KindMinValue  Kind = Kind(reference.ConstraintMinValue)
	KindMaxValue  Kind = Kind(reference.ConstraintMaxValue)

	// KindNotAllowed marks a field that is populated but not valid for the
	// shape it appears in, such as a box number on a street address.
	KindNotAllowed Kind = "NOT_ALLOWED"
	// KindValueKind marks a typed value whose active slot does not match the
	// value kind its type definition declares.
	KindValueKind Kind = "VALUE_KIND"
	// KindUnitType marks a unit that is unknown or belongs to a different
	// unit family than the type definition declares.
	KindUnitType Kind = "UNIT_TYPE"
	// KindDateRange marks a pair of dates in the wrong order.
	KindDateRange Kind = "DATE_RANGE"
	// KindDuplicate marks a repeated entry where the collection requires
	// uniqueness per type code.
	KindDuplicate Kind = "DUPLICATE"
)

// Violation is one business-rule failure, identified by the path of the
// offending field and the kind of rule it broke.
type Violation struct {
	Path string `json:"path"`
	Kind Kind   `json:"kind"`
}

// Set accumulates violations, deduplicating on (path, kind). The zero value
// is not usable; construct with NewSet.
type Set struct {
	index map[Violation]struct{}
	order []Violation
}

func NewSet() *Set {
	return &Set{index: make(map[Violation]struct{})}
}

// Add records the violation; re-adding an identical one is a no-op.
func (s *Set) Add(path string, kind Kind) {
	v := Violation{Path: path, Kind: kind}
	if _, seen := s.index[v]; seen {
		return
	}
	s.index[v] = struct{}{}
	s.order = append(s.order, v)
}

// Merge folds another set into this one.
func (s *Set) Merge(other *Set) {
	if other == nil {
		return
	}
	for _, v := range other.order {
		s.Add(v.Path, v.Kind)
	}
}

// Has reports whether the exact (path, kind) pair is present.
func (s *Set) Has(path string, kind Kind) bool {
	_, ok := s.index[Violation{Path: path, Kind: kind}]
	return ok
}

// Len returns the number of distinct violations.
func (s *Set) Len() int {
	return len(s.order)
}

// IsEmpty reports whether validation passed.
func (s *Set) IsEmpty() bool {
	return len(s.order) == 0
}

// CountKind returns how many violations carry the given kind.
func (s *Set) CountKind(kind Kind) int {
	n := 0
	for _, v := range s.order {
		if v.Kind == kind {
			n++
		}
	}
	return n
}

// Violations returns the set sorted by path then kind, for stable output.
func (s *Set) Violations() []Violation {
	out := make([]Violation, len(s.order))
	copy(out, s.order)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}
