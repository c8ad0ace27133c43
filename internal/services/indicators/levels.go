package indicators

import (
	"sort"

	"StockSage/internal/domain/models"
)

const (
	pivotWindow      = 20
	clusterThreshold = 0.02
	maxLevels        = 3
)

// Levels extracts support/resistance zones from pivot highs/lows: local
// extrema over a centered window are clustered within a 2% tolerance and
// each cluster's average becomes a level. At most three levels on each
// side of the current price are returned, nearest first.
func Levels(s *models.Series) *models.PriceLevels {
	if s.Empty() || len(s.Bars) < pivotWindow {
		return &models.PriceLevels{}
	}

	var pivotHighs, pivotLows []float64
	half := pivotWindow / 2
	for i := half; i < len(s.Bars)-half; i++ {
		hi, lo := true, true
		for j := i - half; j <= i+half; j++ {
			if s.Bars[j].High > s.Bars[i].High {
				hi = false
			}
			if s.Bars[j].Low < s.Bars[i].Low {
				lo = false
			}
		}
		if hi {
			pivotHighs = append(pivotHighs, s.Bars[i].High)
		}
		if lo {
			pivotLows = append(pivotLows, s.Bars[i].Low)
		}
	}

	price := s.Last().Close
	resistance := clusterAverages(pivotHighs)
	support := clusterAverages(pivotLows)

	var above, below []float64
	for _, lv := range resistance {
		if lv > price {
			above = append(above, lv)
		}
	}
	for _, lv := range support {
		if lv < price {
			below = append(below, lv)
		}
	}
	sort.Float64s(above)
	sort.Sort(sort.Reverse(sort.Float64Slice(below)))
	if len(above) > maxLevels {
		above = above[:maxLevels]
	}
	if len(below) > maxLevels {
		below = below[:maxLevels]
	}
	return &models.PriceLevels{Resistance: above, Support: below}
}

// clusterAverages groups sorted points whose pairwise gap stays within
// the cluster threshold and averages each group.
func clusterAverages(points []float64) []float64 {
	if len(points) == 0 {
		return nil
	}
	sorted := append([]float64(nil), points...)
	sort.Float64s(sorted)

	var out []float64
	sum, count := sorted[0], 1.0
	last := sorted[0]
	for _, p := range sorted[1:] {
		if p <= last*(1+clusterThreshold) {
			sum += p
			count++
			last = p
			continue
		}
		out = append(out, sum/count)
		sum, count, last = p, 1, p
	}
	out = append(out, sum/count)
	return out
}
