package viewmodel

import (
	"github.com/rileyhilliard/storelens/internal/errors"
)

// EncodeBand encodes a confidence interval as two overlay series. The upper
// series fills down to the lower one; the lower series has no stroke, no
// points and no legend entry, so only the shaded band between them shows.
// The returned slice is ordered upper, lower.
func EncodeBand(lower, upper []float64) ([]Series, error) {
	if len(lower) != len(upper) {
		return nil, errors.Schemaf("band bounds differ in length: lower has %d points, upper has %d", len(lower), len(upper))
	}
	for i := range lower {
		if lower[i] > upper[i] {
			return nil, errors.Schemaf("inverted band at point %d: lower %g > upper %g", i, lower[i], upper[i])
		}
	}

	return []Series{
		{
			ID:         SeriesUpper,
			Name:       "Confidence Band",
			Values:     clone(upper),
			Fill:       FillToSeries,
			FillTarget: SeriesLower,
			Weight:     1,
			ShowPoints: false,
			InLegend:   true,
			Dashed:     true,
		},
		{
			ID:         SeriesLower,
			Name:       "Lower Bound",
			Values:     clone(lower),
			Weight:     0,
			ShowPoints: false,
			InLegend:   false,
		},
	}, nil
}

// Point is a vertex in label-index/value space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BandPolygon returns the closed outline of the band for renderers without
// fill-between support: upper bound left to right, then lower bound right to
// left. X is the label index.
func BandPolygon(lower, upper []float64) ([]Point, error) {
	if _, err := EncodeBand(lower, upper); err != nil {
		return nil, err
	}
	n := len(upper)
	poly := make([]Point, 0, 2*n)
	for i := 0; i < n; i++ {
		poly = append(poly, Point{X: float64(i), Y: upper[i]})
	}
	for i := n - 1; i >= 0; i-- {
		poly = append(poly, Point{X: float64(i), Y: lower[i]})
	}
	return poly, nil
}

// Contains reports whether (x, y) lies inside the polygon, using even-odd ray casting.
func Contains(poly []Point, x, y float64) bool {
	inside := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > y) != (b.Y > y) && x < (b.X-a.X)*(y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
