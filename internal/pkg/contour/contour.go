// Package contour turns scattered samples into banded surfaces on a shared
// set of levels.
package contour

import (
	"fmt"
	"math"
	"sort"

	"github.com/fogleman/delaunay"
	"gonum.org/v1/gonum/floats"

	"github.com/samirrijal/ndfdanim/internal/core/domain"
)

// DefaultLevelCount is the number of level boundaries used for every frame.
const DefaultLevelCount = 25

// ErrDegenerate is returned when samples are too sparse or collinear to
// triangulate.
var ErrDegenerate = fmt.Errorf("degenerate sample set: %w", domain.ErrContourFailed)

// Levels returns n linearly spaced boundaries from lo to hi inclusive.
func Levels(lo, hi float64, n int) []float64 {
	if n < 2 {
		n = 2
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// Band returns the index i with levels[i] <= v < levels[i+1]. The top
// boundary belongs to the last band. Values outside the levels, and NaN,
// return -1.
func Band(v float64, levels []float64) int {
	n := len(levels)
	if n < 2 || math.IsNaN(v) || v < levels[0] || v > levels[n-1] {
		return -1
	}
	i := sort.SearchFloat64s(levels, v)
	if i < n && levels[i] == v {
		if i == n-1 {
			return n - 2
		}
		return i
	}
	return i - 1
}

// Window is a planar rectangle in meters.
type Window struct {
	MinX, MaxX, MinY, MaxY float64
}

// Grid holds interpolated values at regular cell centers. Cells outside the
// samples' convex hull are NaN.
type Grid struct {
	Window Window
	Cols   int
	Rows   int
	Values []float64
}

// CellSize returns the width and height of one cell.
func (g *Grid) CellSize() (float64, float64) {
	return (g.Window.MaxX - g.Window.MinX) / float64(g.Cols),
		(g.Window.MaxY - g.Window.MinY) / float64(g.Rows)
}

// At returns the value of cell (c, r); row 0 is the southern edge.
func (g *Grid) At(c, r int) float64 {
	return g.Values[r*g.Cols+c]
}

func (g *Grid) center(c, r int) (float64, float64) {
	w, h := g.CellSize()
	return g.Window.MinX + (float64(c)+0.5)*w, g.Window.MinY + (float64(r)+0.5)*h
}

// cell returns the cell containing (x, y), or false outside the window.
func (g *Grid) cell(x, y float64) (int, int, bool) {
	w, h := g.CellSize()
	c := int(math.Floor((x - g.Window.MinX) / w))
	r := int(math.Floor((y - g.Window.MinY) / h))
	if c < 0 || c >= g.Cols || r < 0 || r >= g.Rows {
		return 0, 0, false
	}
	return c, r, true
}

// Interpolate triangulates the points and linearly interpolates values onto a
// cols x rows grid covering window.
func Interpolate(points []domain.PlanarPoint, values []float64, window Window, cols, rows int) (*Grid, error) {
	if len(points) != len(values) {
		return nil, fmt.Errorf("points and values differ in length (%d vs %d)", len(points), len(values))
	}
	if cols <= 0 || rows <= 0 || window.MaxX <= window.MinX || window.MaxY <= window.MinY {
		return nil, fmt.Errorf("invalid grid %dx%d over %+v", cols, rows, window)
	}

	pts, vals := dedupe(points, values)
	if len(pts) < 3 {
		return nil, fmt.Errorf("%d distinct points: %w", len(pts), ErrDegenerate)
	}

	tri, err := delaunay.Triangulate(pts)
	if err != nil {
		return nil, fmt.Errorf("triangulate: %v: %w", err, ErrDegenerate)
	}
	if len(tri.Triangles) == 0 {
		return nil, ErrDegenerate
	}

	g := &Grid{Window: window, Cols: cols, Rows: rows, Values: make([]float64, cols*rows)}
	for i := range g.Values {
		g.Values[i] = math.NaN()
	}

	w, h := g.CellSize()
	filled := 0
	for t := 0; t+2 < len(tri.Triangles); t += 3 {
		ia, ib, ic := tri.Triangles[t], tri.Triangles[t+1], tri.Triangles[t+2]
		a, b, c := tri.Points[ia], tri.Points[ib], tri.Points[ic]

		d := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
		if math.Abs(d) < 1e-9 {
			continue
		}

		c0 := clampIndex(int(math.Floor((math.Min(a.X, math.Min(b.X, c.X))-window.MinX)/w)), cols)
		c1 := clampIndex(int(math.Ceil((math.Max(a.X, math.Max(b.X, c.X))-window.MinX)/w)), cols)
		r0 := clampIndex(int(math.Floor((math.Min(a.Y, math.Min(b.Y, c.Y))-window.MinY)/h)), rows)
		r1 := clampIndex(int(math.Ceil((math.Max(a.Y, math.Max(b.Y, c.Y))-window.MinY)/h)), rows)

		covered := 0
		for r := r0; r <= r1; r++ {
			for col := c0; col <= c1; col++ {
				px, py := g.center(col, r)
				l1 := ((b.Y-c.Y)*(px-c.X) + (c.X-b.X)*(py-c.Y)) / d
				l2 := ((c.Y-a.Y)*(px-c.X) + (a.X-c.X)*(py-c.Y)) / d
				l3 := 1 - l1 - l2
				if l1 < -1e-9 || l2 < -1e-9 || l3 < -1e-9 {
					continue
				}
				covered++
				if math.IsNaN(g.Values[r*cols+col]) {
					filled++
				}
				g.Values[r*cols+col] = l1*vals[ia] + l2*vals[ib] + l3*vals[ic]
			}
		}

		// A thin triangle can fall between cell centers. Give it the cell
		// holding its centroid so it still shows up.
		if covered == 0 {
			col, r, ok := g.cell((a.X+b.X+c.X)/3, (a.Y+b.Y+c.Y)/3)
			if ok && math.IsNaN(g.Values[r*cols+col]) {
				g.Values[r*cols+col] = (vals[ia] + vals[ib] + vals[ic]) / 3
				filled++
			}
		}
	}
	if filled == 0 {
		return nil, ErrDegenerate
	}
	return g, nil
}

func dedupe(points []domain.PlanarPoint, values []float64) ([]delaunay.Point, []float64) {
	seen := make(map[domain.PlanarPoint]bool, len(points))
	pts := make([]delaunay.Point, 0, len(points))
	vals := make([]float64, 0, len(values))
	for i, p := range points {
		if seen[p] {
			continue
		}
		seen[p] = true
		pts = append(pts, delaunay.Point{X: p.X, Y: p.Y})
		vals = append(vals, values[i])
	}
	return pts, vals
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
