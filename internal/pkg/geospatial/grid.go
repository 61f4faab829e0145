package geospatial

import (
	"math"

	"github.com/samirrijal/ndfdanim/internal/core/domain"
)

// RegionToGridBounds converts a center point and square extent into grid
// cell bounds. Each bound is rounded independently and nothing is clamped:
// regions outside the grid pass through and the query engine returns no
// rows for them.
func (l *Lambert) RegionToGridBounds(region domain.QueryRegion, cellSize float64) domain.GridBounds {
	c := l.ToPlanar(region.Center)
	x := int(math.Round(c.X / cellSize))
	y := int(math.Round(c.Y / cellSize))
	off := CellOffset(region.ExtentKm)

	return domain.GridBounds{
		MinX: x - off,
		MaxX: x + off,
		MinY: y - off,
		MaxY: y + off,
	}
}

// CellOffset is the number of cells added on each side of the center cell
// for a square extent in kilometers.
func CellOffset(extentKm float64) int {
	return int(math.Round(extentKm / kmPerCellOffset / 2))
}

// GridCell returns the nearest grid cell to p.
func (l *Lambert) GridCell(p domain.GeoPoint, cellSize float64) (int, int) {
	c := l.ToPlanar(p)
	return int(math.Round(c.X / cellSize)), int(math.Round(c.Y / cellSize))
}
