package sections

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func newIDs(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
	}
	return ids
}

func TestMoveID(t *testing.T) {
	ids := newIDs(4)
	a, b, c, d := ids[0], ids[1], ids[2], ids[3]

	tests := []struct {
		name string
		id   uuid.UUID
		to   int
		want []uuid.UUID
	}{
		{"onto itself", b, 1, []uuid.UUID{a, b, c, d}},
		{"down", a, 2, []uuid.UUID{b, c, a, d}},
		{"up", d, 0, []uuid.UUID{d, a, b, c}},
		{"to tail", b, 3, []uuid.UUID{a, c, d, b}},
	}
	for _, tt := range tests {
		got, err := MoveID(ids, tt.id, tt.to)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("%s: (-want +got)\n%s", tt.name, diff)
		}
	}
	if diff := cmp.Diff([]uuid.UUID{a, b, c, d}, ids); diff != "" {
		t.Errorf("input mutated: %s", diff)
	}
}

func TestMoveIDErrors(t *testing.T) {
	ids := newIDs(2)
	if _, err := MoveID(ids, uuid.New(), 0); !errors.Is(err, ErrSectionNotFound) {
		t.Errorf("unknown id: got %v", err)
	}
	if _, err := MoveID(ids, ids[0], 2); !errors.Is(err, ErrInvalidPosition) {
		t.Errorf("out of range: got %v", err)
	}
	if _, err := MoveID(ids, ids[0], -1); !errors.Is(err, ErrInvalidPosition) {
		t.Errorf("negative: got %v", err)
	}
}

func TestApplyOrder(t *testing.T) {
	ids := newIDs(3)
	current := []Section{{ID: ids[0], Position: 0}, {ID: ids[1], Position: 1}, {ID: ids[2], Position: 2}}

	got, changed, err := ApplyOrder(current, []uuid.UUID{ids[2], ids[0], ids[1]})
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Error("expected change")
	}
	for i, s := range got {
		if s.Position != i {
			t.Errorf("position %d = %d", i, s.Position)
		}
	}
	if got[0].ID != ids[2] {
		t.Errorf("first = %s, want %s", got[0].ID, ids[2])
	}

	_, changed, err = ApplyOrder(current, ids)
	if err != nil || changed {
		t.Errorf("identical order: changed=%v err=%v", changed, err)
	}

	bad := [][]uuid.UUID{
		ids[:2],
		{ids[0], ids[0], ids[1]},
		{ids[0], ids[1], uuid.New()},
	}
	for _, b := range bad {
		if _, _, err := ApplyOrder(current, b); !errors.Is(err, ErrOrderMismatch) {
			t.Errorf("ApplyOrder(%v) err = %v, want ErrOrderMismatch", b, err)
		}
	}
}

func TestCompactClosesGaps(t *testing.T) {
	ids := newIDs(3)
	got := Compact([]Section{{ID: ids[0], Position: 4}, {ID: ids[1], Position: 0}, {ID: ids[2], Position: 2}})
	want := []uuid.UUID{ids[1], ids[2], ids[0]}
	if diff := cmp.Diff(want, IDs(got)); diff != "" {
		t.Errorf("(-want +got)\n%s", diff)
	}
	for i, s := range got {
		if s.Position != i {
			t.Errorf("position %d = %d", i, s.Position)
		}
	}
}
