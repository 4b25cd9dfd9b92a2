// Package formulas provides the technical indicator and statistics
// primitives used by the technicals module.
package formulas

import (
	"math"

	"github.com/markcheno/go-talib"
)

// CalculateRSI returns the current Relative Strength Index over the
// given period (typically 14), or nil when the series is too short.
// RSI needs length+1 closes for the first reading.
func CalculateRSI(closes []float64, length int) *float64 {
	if len(closes) < length+1 {
		return nil
	}
	return lastValid(talib.Rsi(closes, length))
}

// CalculateSMA returns the current Simple Moving Average over the given
// period, or nil when the series is too short.
func CalculateSMA(closes []float64, length int) *float64 {
	if len(closes) < length {
		return nil
	}
	return lastValid(talib.Sma(closes, length))
}

// CalculateEMA returns the current Exponential Moving Average. Series
// shorter than the period fall back to the plain mean, so callers
// always get a smoothed value once any data exists.
func CalculateEMA(closes []float64, length int) *float64 {
	if len(closes) == 0 {
		return nil
	}

	if len(closes) < length {
		mean := Mean(closes)
		return &mean
	}

	if ema := lastValid(talib.Ema(closes, length)); ema != nil {
		return ema
	}

	mean := Mean(closes[len(closes)-length:])
	return &mean
}

// lastValid returns a pointer to the final element of an indicator
// series, nil when the series is empty or ends in talib's NaN padding.
func lastValid(series []float64) *float64 {
	if len(series) == 0 {
		return nil
	}
	v := series[len(series)-1]
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
