package history

import "testing"

func TestAppendOrder(t *testing.T) {
	var h History
	h = h.Append(Exchange{Input: "a", Output: "1"})
	h = h.Append(Exchange{Input: "b", Output: "2"})
	h = h.Append(Exchange{Input: "a", Output: "1"})

	if h.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", h.Len())
	}
	entries := h.Entries()
	if entries[0].Input != "a" || entries[1].Input != "b" || entries[2].Input != "a" {
		t.Errorf("unexpected order: %+v", entries)
	}
	last, ok := h.Last()
	if !ok || last.Output != "1" {
		t.Errorf("Last() = %+v, %v", last, ok)
	}
}

func TestEmptyLast(t *testing.T) {
	var h History
	if _, ok := h.Last(); ok {
		t.Error("expected no last entry on empty history")
	}
	if h.Len() != 0 {
		t.Errorf("Len() = %d, want 0", h.Len())
	}
}

func TestAppendDoesNotAlias(t *testing.T) {
	base := History{}.Append(Exchange{Input: "x"}).Append(Exchange{Input: "y"})
	left := base.Append(Exchange{Input: "left"})
	right := base.Append(Exchange{Input: "right"})

	if base.Len() != 2 {
		t.Errorf("base grew to %d", base.Len())
	}
	if l, _ := left.Last(); l.Input != "left" {
		t.Errorf("left last = %q, want %q", l.Input, "left")
	}
	if r, _ := right.Last(); r.Input != "right" {
		t.Errorf("right last = %q, want %q", r.Input, "right")
	}
}

func TestEntriesIsCopy(t *testing.T) {
	h := History{}.Append(Exchange{Input: "x", Output: "y"})
	entries := h.Entries()
	entries[0].Output = "mutated"
	if last, _ := h.Last(); last.Output != "y" {
		t.Errorf("history was mutated through Entries(): %q", last.Output)
	}
}
