package mvt

// EstimateDerivatives approximates the instantaneous rate of change at every sample
// using finite differences with unit spacing. With exactly two samples both
// estimates equal the single secant slope. Returns nil for fewer than two samples.
func EstimateDerivatives(samples []Sample) []DerivativeEstimate {
	n := len(samples)
	if n < MinSamples {
		return nil
	}

	estimates := make([]DerivativeEstimate, n)

	if n == 2 {
		slope := samples[1].Value - samples[0].Value
		estimates[0] = DerivativeEstimate{SampleIndex: 0, Value: slope, Scheme: SchemeSecant}
		estimates[1] = DerivativeEstimate{SampleIndex: 1, Value: slope, Scheme: SchemeSecant}
		return estimates
	}

	estimates[0] = DerivativeEstimate{
		SampleIndex: 0,
		Value:       samples[1].Value - samples[0].Value,
		Scheme:      SchemeForward,
	}
	estimates[n-1] = DerivativeEstimate{
		SampleIndex: n - 1,
		Value:       samples[n-1].Value - samples[n-2].Value,
		Scheme:      SchemeBackward,
	}
	for i := 1; i < n-1; i++ {
		estimates[i] = DerivativeEstimate{
			SampleIndex: i,
			Value:       (samples[i+1].Value - samples[i-1].Value) / 2,
			Scheme:      SchemeCentral,
		}
	}

	return estimates
}
