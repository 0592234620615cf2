package jobs

import (
	"errors"
	"testing"
)

// cycle builds a -> b -> c with c failing back to a and a failing onto itself.
func cycle() *Node {
	a, b, c := NewNode("a"), NewNode("b"), NewNode("c")
	a.Link(b, a)
	b.Link(c, b)
	c.Link(nil, a)
	return a
}

func TestFindByName_CyclicGraph(t *testing.T) {
	start := cycle()

	got, err := FindByName(start, "c")
	if err != nil {
		t.Fatalf("FindByName(c): %v", err)
	}
	if got.Name() != "c" {
		t.Fatalf("expected job c, got %q", got.Name())
	}

	_, err = FindByName(start, "missing")
	if !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestFindByName_StartAndNil(t *testing.T) {
	start := cycle()
	got, err := FindByName(start, "a")
	if err != nil || got != Job(start) {
		t.Fatalf("expected start job, got %v %v", got, err)
	}
	if _, err := FindByName(nil, "a"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound for nil start, got %v", err)
	}
	var typedNil *Node
	if _, err := FindByName(typedNil, "a"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound for typed nil start, got %v", err)
	}
}

func TestFindByName_FirstDequeuedWins(t *testing.T) {
	// start fails to "dup#1" and succeeds to "mid", which leads to "dup#2".
	// Both carry the name "dup"; the failure branch is dequeued first.
	start := NewNode("start")
	first := NewNode("dup")
	mid := NewNode("mid")
	second := NewNode("dup")
	start.Link(mid, first)
	mid.Link(second, nil)

	got, err := FindByName(start, "dup")
	if err != nil {
		t.Fatalf("FindByName: %v", err)
	}
	if got != Job(first) {
		t.Fatalf("expected first dequeued duplicate")
	}
	dups := DuplicateNames(start)
	if len(dups) != 1 || dups[0] != "dup" {
		t.Fatalf("expected duplicate name reported, got %v", dups)
	}
}

func TestReachable_Order(t *testing.T) {
	got := Reachable(cycle())
	var names []string
	for _, j := range got {
		names = append(names, j.Name())
	}
	want := []string{"a", "b", "c"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
	if dups := DuplicateNames(cycle()); len(dups) != 0 {
		t.Fatalf("expected no duplicates, got %v", dups)
	}
}

// taggedJob is a value-type Job whose slice field makes it unhashable.
type taggedJob struct {
	name string
	tags []string
	next *taggedJob
}

func (j taggedJob) Name() string { return j.name }

func (j taggedJob) NextSuccess() Job {
	if j.next == nil {
		return nil
	}
	return *j.next
}

func (j taggedJob) NextFailure() Job { return nil }

func TestDuplicateNames_UnhashableJobs(t *testing.T) {
	c := &taggedJob{name: "c", tags: []string{"last"}}
	b := &taggedJob{name: "b", tags: []string{"mid"}, next: c}
	a := taggedJob{name: "a", tags: []string{"first"}, next: b}
	c.next = &a

	if got, err := FindByName(a, "c"); err != nil || got.Name() != "c" {
		t.Fatalf("expected job c, got %v %v", got, err)
	}
	if dups := DuplicateNames(a); len(dups) != 0 {
		t.Fatalf("expected no duplicates, got %v", dups)
	}

	// Pointer nodes are still told apart by identity.
	start := NewNode("start")
	first, second := NewNode("dup"), NewNode("dup")
	start.Link(first, second)
	if dups := DuplicateNames(start); len(dups) != 1 || dups[0] != "dup" {
		t.Fatalf("expected dup reported, got %v", dups)
	}
}
