package formulas

import (
	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean, 0 for an empty series
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev returns the sample standard deviation, 0 for an empty series
func StdDev(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// CalculateReturns converts a price series into period-over-period
// percentage returns. A zero previous price contributes a zero return
// rather than dividing by it.
func CalculateReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		prev := prices[i-1]
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (prices[i]-prev)/prev)
	}

	return returns
}

// Correlation returns the Pearson correlation coefficient of two
// equal-length series, 0 for empty or mismatched inputs.
func Correlation(x, y []float64) float64 {
	if len(x) == 0 || len(y) != len(x) {
		return 0
	}
	return stat.Correlation(x, y, nil)
}
