package stats

import (
	"math"

	"github.com/sartorproj/salescast/timeseries"
)

// NDiffs determines the number of first differences required for
// stationarity, using the KPSS test by default ("adf" selects ADF).
func NDiffs(series *timeseries.Series, maxD int, testType string) int {
	if maxD <= 0 {
		maxD = 2
	}
	if testType == "" {
		testType = "kpss"
	}

	current := series
	for d := 0; d < maxD; d++ {
		isStationary := false

		if testType == "adf" {
			if result := ADF(current, 0); result != nil && result.IsStationary {
				isStationary = true
			}
		} else {
			if result := KPSS(current, "c", 0); result != nil && result.IsStationary {
				isStationary = true
			}
		}

		if isStationary {
			return d
		}

		current = current.Diff()
		if current.Len() < 10 {
			return d
		}
	}

	return maxD
}

// NSDiffs determines the number of seasonal differences required using
// the seasonal strength measure: F_S >= 0.64 suggests one seasonal
// difference.
func NSDiffs(series *timeseries.Series, period int, maxD int) int {
	if maxD <= 0 {
		maxD = 1
	}
	if period <= 1 || series.Len() < 2*period {
		return 0
	}

	current := series
	for d := 0; d < maxD; d++ {
		if SeasonalStrength(current, period) < 0.64 {
			return d
		}

		current = current.SeasonalDiff(period)
		if current.Len() < 2*period {
			return d
		}
	}

	return maxD
}

// SeasonalStrength calculates F_S = max(0, 1 - Var(R)/Var(S+R)) from a
// classical decomposition, where S is the seasonal component and R the
// residual.
func SeasonalStrength(series *timeseries.Series, period int) float64 {
	if series.Len() < 2*period {
		return 0
	}

	decomp := Decompose(series, period, "additive")
	if decomp == nil {
		return 0
	}

	varR := varianceIgnoringNaN(decomp.Residual.Values)

	seasonalPlusResid := make([]float64, len(decomp.Seasonal.Values))
	for i := range seasonalPlusResid {
		if math.IsNaN(decomp.Seasonal.Values[i]) || math.IsNaN(decomp.Residual.Values[i]) {
			seasonalPlusResid[i] = math.NaN()
		} else {
			seasonalPlusResid[i] = decomp.Seasonal.Values[i] + decomp.Residual.Values[i]
		}
	}
	varSR := varianceIgnoringNaN(seasonalPlusResid)

	if varSR == 0 {
		return 0
	}

	strength := 1 - varR/varSR
	if strength < 0 {
		strength = 0
	}
	return strength
}

func varianceIgnoringNaN(data []float64) float64 {
	valid := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}

	n := len(valid)
	if n < 2 {
		return 0
	}

	sum := 0.0
	for _, v := range valid {
		sum += v
	}
	mean := sum / float64(n)

	sumSq := 0.0
	for _, v := range valid {
		diff := v - mean
		sumSq += diff * diff
	}

	return sumSq / float64(n-1)
}

// InformationCriteria bundles the criteria used for model selection.
type InformationCriteria struct {
	AIC    float64
	AICc   float64
	BIC    float64
	LogLik float64
}

// CalculateIC calculates AIC, AICc and BIC from a Gaussian
// log-likelihood, observation count and parameter count.
func CalculateIC(logLik float64, nObs int, nParams int) *InformationCriteria {
	k := float64(nParams)
	n := float64(nObs)

	aic := -2*logLik + 2*k
	bic := -2*logLik + k*math.Log(n)

	aicc := math.Inf(1)
	if n-k-1 > 0 {
		aicc = aic + 2*k*(k+1)/(n-k-1)
	}

	return &InformationCriteria{AIC: aic, AICc: aicc, BIC: bic, LogLik: logLik}
}
