package geospatial

import (
	"testing"

	"github.com/samirrijal/ndfdanim/internal/core/domain"
)

func TestRegionToGridBounds_UpstateNewYork(t *testing.T) {
	region := domain.QueryRegion{Center: domain.GeoPoint{Lon: -75, Lat: 42}, ExtentKm: 50}
	got := NDFD.RegionToGridBounds(region, NDFDCellSize)
	want := domain.GridBounds{MinX: 1758, MaxX: 1778, MinY: 900, MaxY: 920}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestRegionToGridBounds_Symmetric(t *testing.T) {
	centers := []domain.GeoPoint{
		{Lon: -75, Lat: 42}, {Lon: -122.4, Lat: 37.8}, {Lon: -97.1, Lat: 49.2}, {Lon: -81.7, Lat: 24.6},
	}
	for _, c := range centers {
		for _, km := range []float64{5, 12.5, 50, 76, 300} {
			b := NDFD.RegionToGridBounds(domain.QueryRegion{Center: c, ExtentKm: km}, NDFDCellSize)
			cx, cy := NDFD.GridCell(c, NDFDCellSize)
			if b.MaxX-cx != cx-b.MinX {
				t.Errorf("x not symmetric for %v/%v: %+v around %d", c, km, b, cx)
			}
			if b.MaxY-cy != cy-b.MinY {
				t.Errorf("y not symmetric for %v/%v: %+v around %d", c, km, b, cy)
			}
		}
	}
}

func TestRegionToGridBounds_NoClamp(t *testing.T) {
	// Far outside CONUS; bounds are passed through as computed.
	region := domain.QueryRegion{Center: domain.GeoPoint{Lon: 150, Lat: -30}, ExtentKm: 10}
	b := NDFD.RegionToGridBounds(region, NDFDCellSize)
	if b.MaxX-b.MinX != 2*CellOffset(10) {
		t.Errorf("expected width %d, got %+v", 2*CellOffset(10), b)
	}
}

func TestCellOffset(t *testing.T) {
	cases := map[float64]int{50: 10, 75: 15, 100: 20, 2: 0, 6: 1}
	for km, want := range cases {
		if got := CellOffset(km); got != want {
			t.Errorf("CellOffset(%v) = %d, want %d", km, got, want)
		}
	}
}
