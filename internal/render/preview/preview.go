// Package preview draws the tile layout of a building as a PNG: blocked and
// protected tiles, the door and the stack positions.
package preview

import (
	"image"
	"image/color"
	"io"

	"github.com/fogleman/gg"
	"golang.org/x/image/colornames"

	"github.com/Da-Krause/settlers-remake/internal/sim/catalogs"
	"github.com/Da-Krause/settlers-remake/internal/sim/geom"
)

// Scheme defines how each tile role is coloured.
type Scheme struct {
	Background color.Color
	Protected  color.Color
	Blocked    color.Color
	Door       color.Color
	Stack      color.Color
	Grid       color.Color
}

func DefaultScheme() *Scheme {
	return &Scheme{
		Background: colornames.White,
		Protected:  colornames.Wheat,
		Blocked:    colornames.Firebrick,
		Door:       colornames.Royalblue,
		Stack:      colornames.Gold,
		Grid:       colornames.Lightgray,
	}
}

type Options struct {
	// Cell is the edge length of one tile in pixels.
	Cell   int
	Scheme *Scheme
}

func (o Options) normalized() Options {
	if o.Cell <= 0 {
		o.Cell = 16
	}
	if o.Scheme == nil {
		o.Scheme = DefaultScheme()
	}
	return o
}

// Layout maps building offsets to pixel cells. One empty tile of margin
// surrounds the building.
type Layout struct {
	Cell       int
	MinX, MinY int
	Cols, Rows int
}

func NewLayout(info *catalogs.BuildingInfo, cell int) Layout {
	minX, minY, maxX, maxY := 0, 0, 0, 0
	for _, p := range info.Area() {
		minX, minY = min(minX, p.DX), min(minY, p.DY)
		maxX, maxY = max(maxX, p.DX), max(maxY, p.DY)
	}
	return Layout{
		Cell: cell,
		MinX: minX - 1,
		MinY: minY - 1,
		Cols: maxX - minX + 3,
		Rows: maxY - minY + 3,
	}
}

// Origin is the top-left pixel of the cell for offset p.
func (l Layout) Origin(p geom.RelativePoint) image.Point {
	return image.Pt((p.DX-l.MinX)*l.Cell, (p.DY-l.MinY)*l.Cell)
}

// Center is the middle pixel of the cell for offset p.
func (l Layout) Center(p geom.RelativePoint) image.Point {
	return l.Origin(p).Add(image.Pt(l.Cell/2, l.Cell/2))
}

func (l Layout) Size() image.Point { return image.Pt(l.Cols*l.Cell, l.Rows*l.Cell) }

// Render draws info and returns the image with its layout.
func Render(info *catalogs.BuildingInfo, opts Options) (image.Image, Layout) {
	opts = opts.normalized()
	l := NewLayout(info, opts.Cell)
	size := l.Size()

	ctx := gg.NewContext(size.X, size.Y)
	ctx.SetColor(opts.Scheme.Background)
	ctx.Clear()

	fill := func(p geom.RelativePoint, c color.Color) {
		o := l.Origin(p)
		ctx.SetColor(c)
		ctx.DrawRectangle(float64(o.X), float64(o.Y), float64(l.Cell), float64(l.Cell))
		ctx.Fill()
	}
	for _, p := range info.Protected {
		fill(p, opts.Scheme.Protected)
	}
	for _, p := range info.Blocked {
		fill(p, opts.Scheme.Blocked)
	}
	for _, s := range info.AllStacks() {
		fill(s.At, opts.Scheme.Stack)
	}
	fill(info.Door, opts.Scheme.Door)

	ctx.SetColor(opts.Scheme.Grid)
	ctx.SetLineWidth(1)
	for c := 0; c <= l.Cols; c++ {
		x := float64(c * l.Cell)
		ctx.DrawLine(x, 0, x, float64(size.Y))
	}
	for r := 0; r <= l.Rows; r++ {
		y := float64(r * l.Cell)
		ctx.DrawLine(0, y, float64(size.X), y)
	}
	ctx.Stroke()

	return ctx.Image(), l
}

func WritePNG(w io.Writer, info *catalogs.BuildingInfo, opts Options) error {
	img, _ := Render(info, opts)
	return gg.NewContextForImage(img).EncodePNG(w)
}

func SavePNG(path string, info *catalogs.BuildingInfo, opts Options) error {
	img, _ := Render(info, opts)
	return gg.SavePNG(path, img)
}
