// Package geospatial implements the fixed NDFD CONUS map projection and the
// grid arithmetic built on it.
package geospatial

import (
	"math"

	"github.com/samirrijal/ndfdanim/internal/core/domain"
)

// NDFD CONUS projection parameters.
const (
	EarthRadius     = 6371200.0
	CentralLon      = 265.0
	CentralLat      = 25.0
	StandardLat1    = 25.0
	StandardLat2    = 25.0
	OriginLon       = 238.445999
	OriginLat       = 20.191999
	NDFDCellSize    = 2539.703
	kmPerCellOffset = 2.5
)

// NDFD is the projection every component shares.
var NDFD = NewLambert(EarthRadius, CentralLon, CentralLat, StandardLat1, StandardLat2,
	domain.GeoPoint{Lon: OriginLon, Lat: OriginLat})

// Lambert is a spherical Lambert conformal conic projection whose planar
// coordinates are relative to a fixed origin point.
type Lambert struct {
	radius  float64
	lon0    float64
	n       float64
	f       float64
	rho0    float64
	offsetX float64
	offsetY float64
}

// NewLambert builds a projection. Angles are in degrees.
func NewLambert(radius, lon0, lat0, lat1, lat2 float64, origin domain.GeoPoint) *Lambert {
	phi0, phi1, phi2 := toRad(lat0), toRad(lat1), toRad(lat2)

	var n float64
	if math.Abs(phi1-phi2) < 1e-12 {
		n = math.Sin(phi1)
	} else {
		n = math.Log(math.Cos(phi1)/math.Cos(phi2)) /
			math.Log(math.Tan(math.Pi/4+phi2/2)/math.Tan(math.Pi/4+phi1/2))
	}
	f := math.Cos(phi1) * math.Pow(math.Tan(math.Pi/4+phi1/2), n) / n

	l := &Lambert{radius: radius, lon0: toRad(lon0), n: n, f: f}
	l.rho0 = l.rho(phi0)
	l.offsetX, l.offsetY = l.forward(origin)
	return l
}

// ToPlanar projects a geographic point.
func (l *Lambert) ToPlanar(p domain.GeoPoint) domain.PlanarPoint {
	x, y := l.forward(p)
	return domain.PlanarPoint{X: x - l.offsetX, Y: y - l.offsetY}
}

// ToGeo inverts ToPlanar. Longitudes come back in [-180, 180).
func (l *Lambert) ToGeo(p domain.PlanarPoint) domain.GeoPoint {
	x := p.X + l.offsetX
	y := l.rho0 - (p.Y + l.offsetY)

	rho := math.Copysign(math.Hypot(x, y), l.n)
	theta := math.Atan2(x, y)
	if l.n < 0 {
		theta = math.Atan2(-x, -y)
	}

	phi := 2*math.Atan(math.Pow(l.radius*l.f/rho, 1/l.n)) - math.Pi/2
	lam := l.lon0 + theta/l.n

	return domain.GeoPoint{Lon: normalizeLon(toDeg(lam)), Lat: toDeg(phi)}
}

// Project converts a batch of points.
func (l *Lambert) Project(points []domain.GeoPoint) []domain.PlanarPoint {
	out := make([]domain.PlanarPoint, len(points))
	for i, p := range points {
		out[i] = l.ToPlanar(p)
	}
	return out
}

func (l *Lambert) forward(p domain.GeoPoint) (float64, float64) {
	dLon := math.Remainder(toRad(p.Lon)-l.lon0, 2*math.Pi)
	rho := l.rho(toRad(p.Lat))
	theta := l.n * dLon
	return rho * math.Sin(theta), l.rho0 - rho*math.Cos(theta)
}

func (l *Lambert) rho(phi float64) float64 {
	return l.radius * l.f / math.Pow(math.Tan(math.Pi/4+phi/2), l.n)
}

func normalizeLon(deg float64) float64 {
	deg = math.Mod(deg+180, 360)
	if deg < 0 {
		deg += 360
	}
	return deg - 180
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
