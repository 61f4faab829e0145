package render

import (
	"image/color"

	"github.com/paulmach/orb"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/samirrijal/ndfdanim/internal/pkg/contour"
)

var (
	landColor  = color.White
	waterColor = color.RGBA{R: 0, G: 255, B: 255, A: 255}
	riverColor = color.RGBA{B: 255, A: 255}

	coastStyle    = draw.LineStyle{Color: color.Black, Width: vg.Points(1)}
	riverStyle    = draw.LineStyle{Color: riverColor, Width: vg.Points(0.5)}
	boundaryStyle = draw.LineStyle{Color: color.Black, Width: vg.Points(0.5)}
)

// basemapLayer draws clipped basemap shapes.
type basemapLayer struct {
	shapes []Shape
}

func (l *basemapLayer) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	toVG := func(ps []orb.Point) []vg.Point {
		out := make([]vg.Point, len(ps))
		for i, p := range ps {
			out[i] = vg.Point{X: trX(p[0]), Y: trY(p[1])}
		}
		return out
	}

	for _, s := range l.shapes {
		for _, poly := range s.Polygons {
			for i, ring := range poly {
				pts := c.ClipPolygonXY(toVG(ring))
				if len(pts) < 3 {
					continue
				}
				switch {
				case s.Kind == LayerLake && i == 0:
					c.FillPolygon(waterColor, pts)
				case s.Kind == LayerLake:
					c.FillPolygon(landColor, pts)
				}
				c.StrokeLines(styleFor(s.Kind), c.ClipLinesXY(toVG(ring))...)
			}
		}
		for _, ls := range s.Lines {
			c.StrokeLines(styleFor(s.Kind), c.ClipLinesXY(toVG(ls))...)
		}
	}
}

func styleFor(kind LayerKind) draw.LineStyle {
	switch kind {
	case LayerCoastline:
		return coastStyle
	case LayerLake, LayerRiver:
		return riverStyle
	default:
		return boundaryStyle
	}
}

// bandLayer fills each interpolated grid cell with the color of its band.
type bandLayer struct {
	grid   *contour.Grid
	levels []float64
	colors []color.Color
}

func (l *bandLayer) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	g := l.grid
	w, h := g.CellSize()

	for r := 0; r < g.Rows; r++ {
		y0 := g.Window.MinY + float64(r)*h
		for col := 0; col < g.Cols; col++ {
			b := contour.Band(g.At(col, r), l.levels)
			if b < 0 {
				continue
			}
			x0 := g.Window.MinX + float64(col)*w
			pts := c.ClipPolygonXY([]vg.Point{
				{X: trX(x0), Y: trY(y0)},
				{X: trX(x0 + w), Y: trY(y0)},
				{X: trX(x0 + w), Y: trY(y0 + h)},
				{X: trX(x0), Y: trY(y0 + h)},
			})
			if len(pts) >= 3 {
				c.FillPolygon(l.colors[b], pts)
			}
		}
	}
}

// bandColors samples the color map at the midpoint of each band.
func bandColors(cmap palette.ColorMap, levels []float64) []color.Color {
	out := make([]color.Color, len(levels)-1)
	for i := range out {
		clr, err := cmap.At((levels[i] + levels[i+1]) / 2)
		if err != nil {
			clr = color.Transparent
		}
		out[i] = clr
	}
	return out
}
