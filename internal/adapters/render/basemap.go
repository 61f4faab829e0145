// Package render draws forecast frames: basemap, filled contour bands and
// per-sample value labels, with a color legend shared by every frame.
package render

import (
	"errors"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/ndfdanim/internal/core/domain"
	"github.com/samirrijal/ndfdanim/internal/pkg/contour"
	"github.com/samirrijal/ndfdanim/internal/pkg/geospatial"
)

// LayerKind selects how a basemap feature is drawn. It is read from the
// feature's "layer" property.
type LayerKind string

const (
	LayerCoastline LayerKind = "coastline"
	LayerLake      LayerKind = "lake"
	LayerRiver     LayerKind = "river"
	LayerBoundary  LayerKind = "boundary"
)

// Shape is one projected basemap feature. Coordinates are planar meters.
type Shape struct {
	Kind     LayerKind
	Lines    []orb.LineString
	Polygons []orb.Polygon
	Bounds   orb.Bound
}

// Basemap holds static map features projected once at load time.
type Basemap struct {
	shapes []Shape
}

// LoadBasemap reads a GeoJSON FeatureCollection.
func LoadBasemap(path string, proj *geospatial.Lambert) (*Basemap, error) {
	if path == "" {
		return nil, errors.New("basemap path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read basemap: %w", err)
	}
	return ParseBasemap(data, proj)
}

// ParseBasemap decodes and projects a GeoJSON FeatureCollection.
func ParseBasemap(data []byte, proj *geospatial.Lambert) (*Basemap, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode basemap: %w", err)
	}

	b := &Basemap{}
	for _, f := range fc.Features {
		kind := LayerKind(f.Properties.MustString("layer", string(LayerBoundary)))
		s, ok := project(kind, f.Geometry, proj)
		if ok {
			b.shapes = append(b.shapes, s)
		}
	}
	return b, nil
}

// Len returns the number of features.
func (b *Basemap) Len() int {
	return len(b.shapes)
}

// Clip returns the shapes whose bounds intersect the window.
func (b *Basemap) Clip(w contour.Window) []Shape {
	win := orb.Bound{Min: orb.Point{w.MinX, w.MinY}, Max: orb.Point{w.MaxX, w.MaxY}}
	var out []Shape
	for _, s := range b.shapes {
		if s.Bounds.Intersects(win) {
			out = append(out, s)
		}
	}
	return out
}

func project(kind LayerKind, g orb.Geometry, proj *geospatial.Lambert) (Shape, bool) {
	s := Shape{Kind: kind}
	switch geom := g.(type) {
	case orb.LineString:
		s.Lines = append(s.Lines, projectLine(geom, proj))
	case orb.MultiLineString:
		for _, ls := range geom {
			s.Lines = append(s.Lines, projectLine(ls, proj))
		}
	case orb.Polygon:
		s.Polygons = append(s.Polygons, projectPolygon(geom, proj))
	case orb.MultiPolygon:
		for _, poly := range geom {
			s.Polygons = append(s.Polygons, projectPolygon(poly, proj))
		}
	default:
		return Shape{}, false
	}

	first := true
	extend := func(ps []orb.Point) {
		for _, p := range ps {
			if first {
				s.Bounds = orb.Bound{Min: p, Max: p}
				first = false
				continue
			}
			s.Bounds = s.Bounds.Extend(p)
		}
	}
	for _, ls := range s.Lines {
		extend(ls)
	}
	for _, poly := range s.Polygons {
		for _, r := range poly {
			extend(r)
		}
	}
	return s, !first
}

func projectLine(ls orb.LineString, proj *geospatial.Lambert) orb.LineString {
	out := make(orb.LineString, len(ls))
	for i, p := range ls {
		out[i] = toOrb(proj.ToPlanar(domain.GeoPoint{Lon: p.Lon(), Lat: p.Lat()}))
	}
	return out
}

func projectPolygon(poly orb.Polygon, proj *geospatial.Lambert) orb.Polygon {
	out := make(orb.Polygon, 0, len(poly))
	for _, r := range poly {
		pr := make(orb.Ring, len(r))
		for i, p := range r {
			pr[i] = toOrb(proj.ToPlanar(domain.GeoPoint{Lon: p.Lon(), Lat: p.Lat()}))
		}
		out = append(out, pr)
	}
	return out
}

func toOrb(p domain.PlanarPoint) orb.Point {
	return orb.Point{p.X, p.Y}
}
