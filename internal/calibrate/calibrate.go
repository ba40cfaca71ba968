package calibrate

import "math"

// Renormalize scales a probability map so its values sum to 1.
// A zero-sum map returns the uniform distribution instead of dividing by zero.
func Renormalize(probs map[string]float64) map[string]float64 {
	n := len(probs)
	if n == 0 {
		return map[string]float64{}
	}

	sum := 0.0
	for _, p := range probs {
		sum += p
	}

	out := make(map[string]float64, n)
	if sum == 0 {
		uniform := 1.0 / float64(n)
		for k := range probs {
			out[k] = uniform
		}
		return out
	}
	for k, p := range probs {
		out[k] = p / sum
	}
	return out
}

// TemperatureScale raises each probability to the power 1/t and renormalizes.
// t < 1 sharpens the distribution toward its mode, t > 1 flattens it.
// t <= 0 and t == 1 are no-ops, guarding against invalid exponents.
func TemperatureScale(probs map[string]float64, t float64) map[string]float64 {
	if t <= 0 || t == 1 {
		return probs
	}

	scaled := make(map[string]float64, len(probs))
	for k, p := range probs {
		if p <= 0 {
			scaled[k] = 0
			continue
		}
		scaled[k] = math.Pow(p, 1.0/t)
	}
	return Renormalize(scaled)
}

// EntropyUncertainty maps a probability distribution to [0,1] via normalized
// Shannon entropy: 0 means one option holds all the mass, 1 means uniform.
// Terms with p <= 0 contribute nothing, and a single-category distribution
// returns 0 (its maximum entropy is 0).
func EntropyUncertainty(probs map[string]float64) float64 {
	n := len(probs)
	if n <= 1 {
		return 0
	}

	h := 0.0
	for _, p := range probs {
		if p <= 0 {
			continue
		}
		h -= p * math.Log(p)
	}

	hmax := math.Log(float64(n))
	if hmax == 0 {
		return 0
	}
	return clamp(h / hmax)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
