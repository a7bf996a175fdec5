package sections

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// Sorted returns a copy of secs ordered by position. Ties keep input order.
func Sorted(secs []Section) []Section {
	out := slices.Clone(secs)
	slices.SortStableFunc(out, func(a, b Section) int { return a.Position - b.Position })
	return out
}

// IDs returns the section IDs of secs in slice order.
func IDs(secs []Section) []uuid.UUID {
	out := make([]uuid.UUID, len(secs))
	for i, s := range secs {
		out[i] = s.ID
	}
	return out
}

// Compact renumbers secs to positions 0..n-1 following their current order.
func Compact(secs []Section) []Section {
	out := Sorted(secs)
	for i := range out {
		out[i].Position = i
	}
	return out
}

// ApplyOrder arranges current to match ids, which must name every section of
// current exactly once. It reports whether any position changed.
func ApplyOrder(current []Section, ids []uuid.UUID) ([]Section, bool, error) {
	if len(ids) != len(current) {
		return nil, false, fmt.Errorf("%w: want %d ids, got %d", ErrOrderMismatch, len(current), len(ids))
	}
	index := make(map[uuid.UUID]Section, len(current))
	for _, s := range current {
		index[s.ID] = s
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]Section, len(ids))
	changed := false
	for pos, id := range ids {
		sec, ok := index[id]
		if !ok {
			return nil, false, fmt.Errorf("%w: unknown section %s", ErrOrderMismatch, id)
		}
		if _, dup := seen[id]; dup {
			return nil, false, fmt.Errorf("%w: duplicate section %s", ErrOrderMismatch, id)
		}
		seen[id] = struct{}{}
		if sec.Position != pos {
			changed = true
		}
		sec.Position = pos
		out[pos] = sec
	}
	return out, changed, nil
}

// MoveID returns ids with id moved to index to. Moving an item onto its own
// index returns an unchanged copy.
func MoveID(ids []uuid.UUID, id uuid.UUID, to int) ([]uuid.UUID, error) {
	from := slices.Index(ids, id)
	if from < 0 {
		return nil, ErrSectionNotFound
	}
	if to < 0 || to >= len(ids) {
		return nil, fmt.Errorf("%w: %d not in [0,%d)", ErrInvalidPosition, to, len(ids))
	}
	out := slices.Clone(ids)
	if from == to {
		return out, nil
	}
	out = slices.Delete(out, from, from+1)
	out = slices.Insert(out, to, id)
	return out, nil
}
