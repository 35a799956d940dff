package util

import (
	"math"
)

// SafeDivide returns num/den, or nil when the denominator is zero. A nil
// result means "undefined", which downstream arithmetic treats as a zero
// contribution; it is never an error and never a literal zero rate.
func SafeDivide(num, den float64) *float64 {
	if den == 0 {
		return nil
	}
	v := num / den
	return &v
}

// Coalesce returns the pointed-to value, or def when the pointer is nil.
func Coalesce(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// Float64Ptr is a literal helper for optional values.
func Float64Ptr(v float64) *float64 {
	return &v
}

// StdDev is the population standard deviation of the samples. An empty or
// single-sample input yields 0: zero observed variability is zero
// uncertainty, not missing data.
func StdDev(samples []float64) float64 {
	n := float64(len(samples))
	if n < 2 {
		return 0
	}

	var sum float64
	for _, s := range samples {
		sum += s
	}
	mean := sum / n

	var sqSum float64
	for _, s := range samples {
		d := s - mean
		sqSum += d * d
	}
	return math.Sqrt(sqSum / n)
}

// DayOverDayDeltas converts a cumulative curve into daily increments.
func DayOverDayDeltas(cumulative []float64) []float64 {
	if len(cumulative) < 2 {
		return nil
	}
	deltas := make([]float64, 0, len(cumulative)-1)
	for i := 1; i < len(cumulative); i++ {
		deltas = append(deltas, cumulative[i]-cumulative[i-1])
	}
	return deltas
}

func MaxFloat64(a float64, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func MinFloat64(a float64, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// FloatRoundOffWithPrecision rounds value to the given decimal places.
func FloatRoundOffWithPrecision(value float64, precision int) float64 {
	pow := math.Pow(10, float64(precision))
	return math.Round(value*pow) / pow
}
