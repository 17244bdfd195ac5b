package stats

import (
	"math"

	"github.com/sartorproj/salescast/timeseries"
)

// LjungBoxResult represents the result of a Ljung-Box test.
type LjungBoxResult struct {
	Statistic float64
	PValue    float64
	Lags      int
	DOF       int
}

// LjungBox tests residuals for autocorrelation up to the given lag.
// The null hypothesis is no autocorrelation; p < 0.05 indicates the
// model left structure in the residuals. fitdf is the number of
// parameters estimated by the model.
func LjungBox(series *timeseries.Series, lags, fitdf int) *LjungBoxResult {
	n := series.Len()
	if n < 10 || lags < 1 {
		return nil
	}

	if lags >= n {
		lags = n - 1
	}

	acf := ACF(series, lags)
	if acf == nil {
		return nil
	}

	q := 0.0
	for k := 1; k <= lags; k++ {
		q += (acf[k] * acf[k]) / float64(n-k)
	}
	q *= float64(n * (n + 2))

	dof := lags - fitdf
	if dof < 1 {
		dof = 1
	}

	pValue := 1 - chiSquaredCDF(q, dof)

	return &LjungBoxResult{Statistic: q, PValue: pValue, Lags: lags, DOF: dof}
}

// chiSquaredCDF calculates the CDF of the chi-squared distribution with
// k degrees of freedom.
func chiSquaredCDF(x float64, k int) float64 {
	if x < 0 {
		return 0
	}
	return lowerIncompleteGamma(float64(k)/2, x/2) / gammaFn(float64(k)/2)
}

// gammaFn calculates the gamma function using the Lanczos approximation.
func gammaFn(z float64) float64 {
	if z < 0.5 {
		return math.Pi / (math.Sin(math.Pi*z) * gammaFn(1-z))
	}

	z--
	g := 7
	c := []float64{
		0.99999999999980993,
		676.5203681218851,
		-1259.1392167224028,
		771.32342877765313,
		-176.61502916214059,
		12.507343278686905,
		-0.13857109526572012,
		9.9843695780195716e-6,
		1.5056327351493116e-7,
	}

	x := c[0]
	for i := 1; i < g+2; i++ {
		x += c[i] / (z + float64(i))
	}

	t := z + float64(g) + 0.5
	return math.Sqrt(2*math.Pi) * math.Pow(t, z+0.5) * math.Exp(-t) * x
}

// lowerIncompleteGamma calculates the lower incomplete gamma function.
func lowerIncompleteGamma(a, x float64) float64 {
	if x < 0 || a <= 0 {
		return 0
	}

	if x < a+1 {
		return gammaIncSeries(a, x)
	}
	return gammaFn(a) - gammaIncCF(a, x)
}

func gammaIncSeries(a, x float64) float64 {
	if x == 0 {
		return 0
	}

	maxIter := 200
	eps := 1e-10

	ap := a
	sum := 1.0 / a
	del := sum

	for n := 1; n < maxIter; n++ {
		ap++
		del *= x / ap
		sum += del
		if math.Abs(del) < math.Abs(sum)*eps {
			break
		}
	}

	return sum * math.Exp(-x+a*math.Log(x)-math.Log(gammaFn(a)))
}

func gammaIncCF(a, x float64) float64 {
	maxIter := 200
	eps := 1e-10
	fpmin := 1e-30

	b := x + 1 - a
	c := 1.0 / fpmin
	d := 1.0 / b
	h := d

	for i := 1; i < maxIter; i++ {
		an := -float64(i) * (float64(i) - a)
		b += 2
		d = an*d + b
		if math.Abs(d) < fpmin {
			d = fpmin
		}
		c = b + an/c
		if math.Abs(c) < fpmin {
			c = fpmin
		}
		d = 1.0 / d
		del := d * c
		h *= del
		if math.Abs(del-1) < eps {
			break
		}
	}

	return math.Exp(-x+a*math.Log(x)-math.Log(gammaFn(a))) * h
}
