package geospatial

import (
	"math"
	"testing"

	"github.com/samirrijal/ndfdanim/internal/core/domain"
)

func TestOriginProjectsToZero(t *testing.T) {
	p := NDFD.ToPlanar(domain.GeoPoint{Lon: OriginLon, Lat: OriginLat})
	if math.Abs(p.X) > 1e-6 || math.Abs(p.Y) > 1e-6 {
		t.Fatalf("expected origin at (0,0), got (%f,%f)", p.X, p.Y)
	}
}

func TestEquivalentLongitudes(t *testing.T) {
	a := NDFD.ToPlanar(domain.GeoPoint{Lon: -75, Lat: 42})
	b := NDFD.ToPlanar(domain.GeoPoint{Lon: 285, Lat: 42})
	if math.Abs(a.X-b.X) > 1e-6 || math.Abs(a.Y-b.Y) > 1e-6 {
		t.Errorf("-75 and 285 should project identically: %v vs %v", a, b)
	}
}

func TestCentralMeridianIsVertical(t *testing.T) {
	a := NDFD.ToPlanar(domain.GeoPoint{Lon: -95, Lat: 30})
	b := NDFD.ToPlanar(domain.GeoPoint{Lon: -95, Lat: 48})
	if math.Abs(a.X-b.X) > 1e-6 {
		t.Errorf("expected equal x on the central meridian, got %f and %f", a.X, b.X)
	}
	if b.Y <= a.Y {
		t.Errorf("expected y to grow northward, got %f then %f", a.Y, b.Y)
	}
}

func TestRoundTrip(t *testing.T) {
	for lon := -125.0; lon <= -60; lon += 2.5 {
		for lat := 20.0; lat <= 52; lat += 2 {
			in := domain.GeoPoint{Lon: lon, Lat: lat}
			out := NDFD.ToGeo(NDFD.ToPlanar(in))
			if math.Abs(out.Lon-in.Lon) > 1e-6 || math.Abs(out.Lat-in.Lat) > 1e-6 {
				t.Fatalf("round trip of %v gave %v", in, out)
			}
		}
	}
}

func TestRoundTripSecantCone(t *testing.T) {
	l := NewLambert(EarthRadius, -96, 23, 29.5, 45.5, domain.GeoPoint{Lon: -96, Lat: 23})
	in := domain.GeoPoint{Lon: -80.25, Lat: 38.5}
	out := l.ToGeo(l.ToPlanar(in))
	if math.Abs(out.Lon-in.Lon) > 1e-6 || math.Abs(out.Lat-in.Lat) > 1e-6 {
		t.Fatalf("round trip of %v gave %v", in, out)
	}
}

func TestProject(t *testing.T) {
	pts := []domain.GeoPoint{{Lon: -75, Lat: 42}, {Lon: -122, Lat: 37}}
	got := NDFD.Project(pts)
	if len(got) != 2 {
		t.Fatalf("expected 2 points, got %d", len(got))
	}
	if got[0] != NDFD.ToPlanar(pts[0]) {
		t.Errorf("batch projection disagrees with ToPlanar")
	}
}
