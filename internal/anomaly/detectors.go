// Package anomaly implements statistical outlier detection over numeric
// series fetched from the search backend.
package anomaly

import (
	"fmt"
	"math"
	"sort"
)

// Default detector parameters.
const (
	DefaultZScoreThreshold = 3.0
	DefaultIQRFactor       = 1.5
	DefaultPercentile      = 95.0
	DefaultChangeThreshold = 0.5 // 50% change between adjacent points
)

// Anomaly flags one series point.
type Anomaly struct {
	Index    int     `json:"index"`
	Value    float64 `json:"value"`
	Score    float64 `json:"score"`
	Expected float64 `json:"expected"`
}

// Detector names accepted by the tools.
const (
	DetectorZScore       = "zscore"
	DetectorIQR          = "iqr"
	DetectorPercentile   = "percentile"
	DetectorRateOfChange = "rate_of_change"
)

// Detect dispatches to the named detector. A non-positive threshold selects
// the detector's default.
func Detect(detector string, values []float64, threshold float64) ([]Anomaly, error) {
	switch detector {
	case DetectorZScore, "":
		return ZScore(values, threshold), nil
	case DetectorIQR:
		return IQR(values, threshold), nil
	case DetectorPercentile:
		return PercentileThreshold(values, threshold), nil
	case DetectorRateOfChange:
		return RateOfChange(values, threshold), nil
	default:
		return nil, fmt.Errorf("unknown detector %q (want zscore, iqr, percentile or rate_of_change)", detector)
	}
}

// ZScore flags points whose distance from the mean exceeds threshold
// standard deviations.
func ZScore(values []float64, threshold float64) []Anomaly {
	if threshold <= 0 {
		threshold = DefaultZScoreThreshold
	}
	if len(values) < 2 {
		return nil
	}

	m := mean(values)
	sd := stddev(values, m)
	if sd == 0 {
		return nil
	}

	var anomalies []Anomaly
	for i, v := range values {
		z := math.Abs(v-m) / sd
		if z > threshold {
			anomalies = append(anomalies, Anomaly{Index: i, Value: v, Score: z, Expected: m})
		}
	}
	return anomalies
}

// IQR flags points outside [Q1 - k*IQR, Q3 + k*IQR].
func IQR(values []float64, k float64) []Anomaly {
	if k <= 0 {
		k = DefaultIQRFactor
	}
	if len(values) < 4 {
		return nil
	}

	q1 := percentile(values, 25)
	q3 := percentile(values, 75)
	iqr := q3 - q1
	lower := q1 - k*iqr
	upper := q3 + k*iqr

	var anomalies []Anomaly
	for i, v := range values {
		if v < lower || v > upper {
			score := 0.0
			if iqr > 0 {
				if v > upper {
					score = (v - upper) / iqr
				} else {
					score = (lower - v) / iqr
				}
			}
			anomalies = append(anomalies, Anomaly{Index: i, Value: v, Score: score, Expected: (q1 + q3) / 2})
		}
	}
	return anomalies
}

// PercentileThreshold flags points above the pct percentile of the series.
func PercentileThreshold(values []float64, pct float64) []Anomaly {
	if pct <= 0 || pct >= 100 {
		pct = DefaultPercentile
	}
	if len(values) < 2 {
		return nil
	}

	cutoff := percentile(values, pct)
	var anomalies []Anomaly
	for i, v := range values {
		if v > cutoff {
			score := 0.0
			if cutoff != 0 {
				score = v / cutoff
			}
			anomalies = append(anomalies, Anomaly{Index: i, Value: v, Score: score, Expected: cutoff})
		}
	}
	return anomalies
}

// RateOfChange flags points whose relative change from the previous point
// exceeds the threshold fraction.
func RateOfChange(values []float64, threshold float64) []Anomaly {
	if threshold <= 0 {
		threshold = DefaultChangeThreshold
	}
	if len(values) < 2 {
		return nil
	}

	var anomalies []Anomaly
	for i := 1; i < len(values); i++ {
		prev := values[i-1]
		if prev == 0 {
			continue
		}
		change := math.Abs(values[i]-prev) / math.Abs(prev)
		if change > threshold {
			anomalies = append(anomalies, Anomaly{Index: i, Value: values[i], Score: change, Expected: prev})
		}
	}
	return anomalies
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64, m float64) float64 {
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// percentile uses linear interpolation between closest ranks.
func percentile(values []float64, pct float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	rank := pct / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
