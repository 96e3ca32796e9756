package imgplace

import (
	"testing"

	"github.com/kk-code-lab/mdview/internal/doc"
)

func TestOverlaps(t *testing.T) {
	a := Placement{Col: 0, Row: 0, Cols: 4, Rows: 2}
	tests := []struct {
		name string
		b    Placement
		want bool
	}{
		{"same", a, true},
		{"right neighbour", Placement{Col: 4, Row: 0, Cols: 2, Rows: 2}, false},
		{"below", Placement{Col: 0, Row: 2, Cols: 4, Rows: 1}, false},
		{"corner", Placement{Col: 3, Row: 1, Cols: 2, Rows: 2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Overlaps(tt.b); got != tt.want {
				t.Fatalf("Overlaps = %v, want %v", got, tt.want)
			}
			if got := tt.b.Overlaps(a); got != tt.want {
				t.Fatalf("Overlaps not symmetric")
			}
		})
	}
}

func TestSortPlacements(t *testing.T) {
	ps := []Placement{
		{Handle: "c", Row: 3, Col: 0},
		{Handle: "b", Row: 1, Col: 5},
		{Handle: "a", Row: 1, Col: 2},
	}
	SortPlacements(ps)
	if ps[0].Handle != "a" || ps[1].Handle != "b" || ps[2].Handle != "c" {
		t.Fatalf("unexpected order: %+v", ps)
	}
}

func TestTrackerReportsEvictions(t *testing.T) {
	tr := NewTracker()
	if ev := tr.Update([]Placement{{Handle: "a"}, {Handle: "b"}}); len(ev) != 0 {
		t.Fatalf("first paint evicted %v", ev)
	}
	ev := tr.Update([]Placement{{Handle: "b"}, {Handle: "c"}})
	if len(ev) != 1 || ev[0] != "a" {
		t.Fatalf("evicted = %v, want [a]", ev)
	}
	on := tr.OnScreen()
	if len(on) != 2 || on[0] != "b" || on[1] != "c" {
		t.Fatalf("on screen = %v", on)
	}
	ev = tr.Reset()
	if len(ev) != 2 || ev[0] != doc.ImageHandle("b") {
		t.Fatalf("reset evicted = %v", ev)
	}
}
