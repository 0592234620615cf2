package geom

import (
	bitmap "github.com/boljen/go-bitmap"
)

// Footprint is a bit-mask over the bounding box of a set of relative tiles.
// Bit (dx-minX) + (dy-minY)*width is set iff the tile belongs to the footprint.
type Footprint struct {
	minX, minY    int
	width, height int
	count         int
	bits          bitmap.Bitmap
}

func NewFootprint(tiles []RelativePoint) *Footprint {
	f := &Footprint{}
	if len(tiles) == 0 {
		f.bits = bitmap.New(0)
		return f
	}
	minX, minY := tiles[0].DX, tiles[0].DY
	maxX, maxY := minX, minY
	for _, t := range tiles[1:] {
		minX = min(minX, t.DX)
		minY = min(minY, t.DY)
		maxX = max(maxX, t.DX)
		maxY = max(maxY, t.DY)
	}
	f.minX, f.minY = minX, minY
	f.width = maxX - minX + 1
	f.height = maxY - minY + 1
	f.bits = bitmap.New(f.width * f.height)
	for _, t := range tiles {
		i := f.index(t.DX, t.DY)
		if !f.bits.Get(i) {
			f.bits.Set(i, true)
			f.count++
		}
	}
	return f
}

// WithCenter returns a copy that additionally covers the 1x1 anchor cell (0,0).
// Mines use it so the anchor is reserved even when the definition does not
// protect it.
func (f *Footprint) WithCenter() *Footprint {
	if f.Contains(0, 0) {
		return f
	}
	return NewFootprint(append(f.Points(), RelativePoint{}))
}

func (f *Footprint) index(dx, dy int) int {
	return (dx - f.minX) + (dy-f.minY)*f.width
}

func (f *Footprint) inBounds(dx, dy int) bool {
	return dx >= f.minX && dx < f.minX+f.width && dy >= f.minY && dy < f.minY+f.height
}

func (f *Footprint) Contains(dx, dy int) bool {
	if f == nil || !f.inBounds(dx, dy) {
		return false
	}
	return f.bits.Get(f.index(dx, dy))
}

// Bounds returns the inclusive bounding box. An empty footprint reports zeros.
func (f *Footprint) Bounds() (minX, minY, maxX, maxY int) {
	if f.width == 0 {
		return 0, 0, 0, 0
	}
	return f.minX, f.minY, f.minX + f.width - 1, f.minY + f.height - 1
}

func (f *Footprint) Width() int  { return f.width }
func (f *Footprint) Height() int { return f.height }
func (f *Footprint) Len() int    { return f.count }

// Points lists the set cells row-major.
func (f *Footprint) Points() []RelativePoint {
	out := make([]RelativePoint, 0, f.count)
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			if f.bits.Get(x + y*f.width) {
				out = append(out, RelativePoint{DX: x + f.minX, DY: y + f.minY})
			}
		}
	}
	return out
}
