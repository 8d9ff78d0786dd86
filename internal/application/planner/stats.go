package planner

import (
	"math"
	"sort"
)

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sample is one value shared by count attendees.
type sample struct {
	value float64
	count int
}

func totalCount(samples []sample) int64 {
	var n int64
	for _, s := range samples {
		if s.count > 0 {
			n += int64(s.count)
		}
	}
	return n
}

func weightedSum(samples []sample) float64 {
	var sum float64
	for _, s := range samples {
		if s.count > 0 {
			sum += s.value * float64(s.count)
		}
	}
	return sum
}

func weightedMean(samples []sample) float64 {
	n := totalCount(samples)
	if n == 0 {
		return 0
	}
	return weightedSum(samples) / float64(n)
}

// weightedStdDev is the sample standard deviation (n-1 denominator) over all
// attendees, 0 for fewer than two.
func weightedStdDev(samples []sample) float64 {
	n := totalCount(samples)
	if n < 2 {
		return 0
	}
	m := weightedMean(samples)
	var sq float64
	for _, s := range samples {
		if s.count > 0 {
			d := s.value - m
			sq += d * d * float64(s.count)
		}
	}
	return math.Sqrt(sq / float64(n-1))
}

func weightedMedian(samples []sample) float64 {
	n := totalCount(samples)
	if n == 0 {
		return 0
	}

	sorted := make([]sample, 0, len(samples))
	for _, s := range samples {
		if s.count > 0 {
			sorted = append(sorted, s)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].value < sorted[j].value })

	if n%2 == 1 {
		return nth(sorted, n/2)
	}
	return (nth(sorted, n/2-1) + nth(sorted, n/2)) / 2
}

// nth returns the value at zero-based position i of the expanded sorted sequence.
func nth(sorted []sample, i int64) float64 {
	for _, s := range sorted {
		if i < int64(s.count) {
			return s.value
		}
		i -= int64(s.count)
	}
	return sorted[len(sorted)-1].value
}

func weightedMinMax(samples []sample) (float64, float64) {
	var (
		lo, hi float64
		seen   bool
	)
	for _, s := range samples {
		if s.count <= 0 {
			continue
		}
		if !seen || s.value < lo {
			lo = s.value
		}
		if !seen || s.value > hi {
			hi = s.value
		}
		seen = true
	}
	return lo, hi
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
