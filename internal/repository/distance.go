package repository

import "math"

const (
	earthRadiusKm = 6371.0
	kmPerDegree   = 111.045
)

// GeoRadius selects cars within RadiusKm of a point.
type GeoRadius struct {
	Lat      float64
	Lon      float64
	RadiusKm float64
}

// boundingBox returns the lat/lon ranges enclosing the circle. lonOK is false
// near the poles or the antimeridian, where a longitude range cannot be used.
func (g GeoRadius) boundingBox() (minLat, maxLat, minLon, maxLon float64, lonOK bool) {
	dLat := g.RadiusKm / kmPerDegree
	minLat, maxLat = g.Lat-dLat, g.Lat+dLat

	cos := math.Cos(g.Lat * math.Pi / 180)
	if cos < 1e-6 {
		return minLat, maxLat, 0, 0, false
	}
	dLon := g.RadiusKm / (kmPerDegree * cos)
	minLon, maxLon = g.Lon-dLon, g.Lon+dLon
	if minLon < -180 || maxLon > 180 {
		return minLat, maxLat, 0, 0, false
	}
	return minLat, maxLat, minLon, maxLon, true
}

func (g GeoRadius) contains(lat, lon float64) bool {
	return haversineDistanceKm(g.Lat, g.Lon, lat, lon) <= g.RadiusKm
}

func haversineDistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}
