package donor

import (
	"math"
	"sort"
)

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between a and b.
func HaversineKm(a, b Location) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// SortByDistance stably orders items by distance from ref. loc returns the
// item's location, or nil when it has none; those sort last in their
// original order.
func SortByDistance[T any](items []T, ref Location, loc func(T) *Location) {
	sort.SliceStable(items, func(i, j int) bool {
		li, lj := loc(items[i]), loc(items[j])
		switch {
		case li == nil:
			return false
		case lj == nil:
			return true
		}
		return HaversineKm(ref, *li) < HaversineKm(ref, *lj)
	})
}
