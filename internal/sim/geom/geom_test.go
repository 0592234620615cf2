package geom

import "testing"

func TestFootprint_ReflectsTiles(t *testing.T) {
	tiles := []RelativePoint{Rel(-1, -1), Rel(2, 0), Rel(0, 1), Rel(0, 1)}
	f := NewFootprint(tiles)

	if f.Len() != 3 {
		t.Fatalf("expected 3 distinct cells, got %d", f.Len())
	}
	if f.Width() != 4 || f.Height() != 3 {
		t.Fatalf("unexpected size %dx%d", f.Width(), f.Height())
	}
	for _, p := range tiles {
		if !f.Contains(p.DX, p.DY) {
			t.Fatalf("expected %v set", p)
		}
	}
	if f.Contains(0, 0) || f.Contains(5, 5) || f.Contains(-2, -1) {
		t.Fatalf("unexpected cell set")
	}
	minX, minY, maxX, maxY := f.Bounds()
	if minX != -1 || minY != -1 || maxX != 2 || maxY != 1 {
		t.Fatalf("bounds mismatch: %d %d %d %d", minX, minY, maxX, maxY)
	}
}

func TestFootprint_WithCenter(t *testing.T) {
	f := NewFootprint([]RelativePoint{Rel(2, 2), Rel(3, 2)})
	c := f.WithCenter()
	if f.Contains(0, 0) {
		t.Fatalf("original must stay untouched")
	}
	if !c.Contains(0, 0) || !c.Contains(2, 2) || !c.Contains(3, 2) {
		t.Fatalf("center copy missing cells: %v", c.Points())
	}
	if c.Len() != 3 {
		t.Fatalf("expected 3 cells, got %d", c.Len())
	}
	if again := c.WithCenter(); again != c {
		t.Fatalf("expected no copy when center already set")
	}
}

func TestFootprint_Empty(t *testing.T) {
	f := NewFootprint(nil)
	if f.Len() != 0 || f.Contains(0, 0) || len(f.Points()) != 0 {
		t.Fatalf("expected empty footprint")
	}
	if !f.WithCenter().Contains(0, 0) {
		t.Fatalf("expected center cell")
	}
}

func TestPointSet_Intersect(t *testing.T) {
	a := NewPointSet([]RelativePoint{Rel(0, 0), Rel(1, 0), Rel(0, 1)})
	b := NewPointSet([]RelativePoint{Rel(0, 1), Rel(1, 0), Rel(5, 5)})
	got := a.Intersect(b)
	if len(got) != 2 || got[0] != Rel(1, 0) || got[1] != Rel(0, 1) {
		t.Fatalf("unexpected intersection %v", got)
	}
}

func TestGridDistance(t *testing.T) {
	cases := []struct {
		a, b Point
		want int
	}{
		{Point{0, 0}, Point{0, 0}, 0},
		{Point{0, 0}, Point{3, 3}, 3},
		{Point{0, 0}, Point{3, 1}, 3},
		{Point{0, 0}, Point{2, -2}, 4},
		{Point{5, 5}, Point{4, 7}, 3},
	}
	for _, c := range cases {
		if got := GridDistance(c.a, c.b); got != c.want {
			t.Fatalf("GridDistance(%v,%v)=%d want %d", c.a, c.b, got, c.want)
		}
	}
}
