// Package geo provides great-circle distance and coarse spatial bucketing
// for candidate restriction during matching and aggregation.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusKM is the mean earth radius used by the haversine formula.
const EarthRadiusKM = 6371.0

// HaversineKM returns the great-circle distance in kilometers between two
// coordinates.
func HaversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	const deg = math.Pi / 180

	dLat := (lat2 - lat1) * deg
	dLon := (lon2 - lon1) * deg

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*deg)*math.Cos(lat2*deg)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * EarthRadiusKM * math.Asin(math.Min(1, math.Sqrt(a)))
}

// Cell is a coarse spatial bucket on a fixed-degree grid.
type Cell struct {
	X, Y int
}

// CellOf maps a coordinate onto the grid with the given cell size in degrees.
func CellOf(lat, lon, cellDeg float64) Cell {
	return Cell{
		X: int(math.Floor(lon / cellDeg)),
		Y: int(math.Floor(lat / cellDeg)),
	}
}

// Key returns a stable string key for the cell.
func (c Cell) Key() string {
	return fmt.Sprintf("%d:%d", c.X, c.Y)
}

// Neighborhood returns the cell and its eight neighbors. Pairs near a cell
// boundary are caught by comparing against neighboring buckets as well.
func (c Cell) Neighborhood() []Cell {
	out := make([]Cell, 0, 9)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			out = append(out, Cell{X: c.X + dx, Y: c.Y + dy})
		}
	}
	return out
}
