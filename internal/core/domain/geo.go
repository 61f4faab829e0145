package domain

// GeoPoint represents a geographic coordinate in degrees.
type GeoPoint struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// PlanarPoint is a position in meters under the NDFD projection, relative
// to the grid origin. Only the projection engine produces these.
type PlanarPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// QueryRegion is a square area centered on a point.
type QueryRegion struct {
	Center   GeoPoint `json:"center"`
	ExtentKm float64  `json:"extent_km"`
}

// GridBounds is an inclusive range of NDFD grid cells.
type GridBounds struct {
	MinX int `json:"min_x"`
	MaxX int `json:"max_x"`
	MinY int `json:"min_y"`
	MaxY int `json:"max_y"`
}

// Extent is a geographic bounding box.
type Extent struct {
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
}

// Include grows the extent to cover p.
func (e *Extent) Include(p GeoPoint) {
	if p.Lon < e.MinLon {
		e.MinLon = p.Lon
	}
	if p.Lon > e.MaxLon {
		e.MaxLon = p.Lon
	}
	if p.Lat < e.MinLat {
		e.MinLat = p.Lat
	}
	if p.Lat > e.MaxLat {
		e.MaxLat = p.Lat
	}
}

// Contains reports whether p lies inside the extent, edges included.
func (e Extent) Contains(p GeoPoint) bool {
	return p.Lon >= e.MinLon && p.Lon <= e.MaxLon && p.Lat >= e.MinLat && p.Lat <= e.MaxLat
}
