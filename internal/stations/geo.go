package stations

import (
	"math"
	"sort"

	"alertaja/internal/models"
)

// earthRadiusKm 地球平均半径
const earthRadiusKm = 6371.0

// DistanceKm 两点间大圆距离（haversine）
func DistanceKm(a, b models.Coordinates) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// hasCoordinates 自定义站点坐标未知时为 0,0
func hasCoordinates(s models.SafeStation) bool {
	return s.Latitude != 0 || s.Longitude != 0
}

// Nearest 按距离排序取前 n 个，坐标未知的站点排在最后
func Nearest(stations []models.SafeStation, from models.Coordinates, n int) []models.SafeStation {
	sorted := make([]models.SafeStation, len(stations))
	copy(sorted, stations)

	sort.SliceStable(sorted, func(i, j int) bool {
		ki, kj := hasCoordinates(sorted[i]), hasCoordinates(sorted[j])
		if ki != kj {
			return ki
		}
		if !ki {
			return false
		}
		return DistanceKm(from, coordsOf(sorted[i])) < DistanceKm(from, coordsOf(sorted[j]))
	})

	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// FilterByType 按类型过滤，类型为空返回全部
func FilterByType(stations []models.SafeStation, t models.StationType) []models.SafeStation {
	if t == "" {
		return stations
	}
	out := make([]models.SafeStation, 0, len(stations))
	for _, s := range stations {
		if s.Type == t {
			out = append(out, s)
		}
	}
	return out
}

func coordsOf(s models.SafeStation) models.Coordinates {
	return models.Coordinates{Latitude: s.Latitude, Longitude: s.Longitude}
}
