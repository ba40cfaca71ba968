package calibrate

import (
	"math"
	"testing"
)

const tolerance = 1e-9

func sumValues(probs map[string]float64) float64 {
	s := 0.0
	for _, p := range probs {
		s += p
	}
	return s
}

func TestRenormalize_SumsToOne(t *testing.T) {
	tests := []struct {
		name  string
		probs map[string]float64
	}{
		{"already normalized", map[string]float64{"a": 0.6, "b": 0.4}},
		{"over one", map[string]float64{"a": 0.7, "b": 0.5}},
		{"under one", map[string]float64{"a": 0.2, "b": 0.1, "c": 0.1}},
		{"single key", map[string]float64{"a": 42.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Renormalize(tt.probs)
			if s := sumValues(got); math.Abs(s-1.0) > tolerance {
				t.Errorf("sum after renormalize = %v, want 1.0", s)
			}
		})
	}
}

func TestRenormalize_Idempotent(t *testing.T) {
	probs := map[string]float64{"a": 0.7, "b": 0.5, "c": 0.3}

	once := Renormalize(probs)
	twice := Renormalize(once)

	for k := range once {
		if math.Abs(once[k]-twice[k]) > tolerance {
			t.Errorf("renormalize not idempotent for %q: %v vs %v", k, once[k], twice[k])
		}
	}
}

func TestRenormalize_ZeroSumFallsBackToUniform(t *testing.T) {
	got := Renormalize(map[string]float64{"a": 0, "b": 0, "c": 0})

	want := 1.0 / 3.0
	for k, p := range got {
		if math.Abs(p-want) > tolerance {
			t.Errorf("probs[%q] = %v, want %v", k, p, want)
		}
	}
}

func TestRenormalize_Empty(t *testing.T) {
	got := Renormalize(map[string]float64{})
	if len(got) != 0 {
		t.Errorf("expected empty map, got %v", got)
	}
}

func TestTemperatureScale_NoOpBoundaries(t *testing.T) {
	probs := map[string]float64{"a": 0.6, "b": 0.4}

	for _, temp := range []float64{1.0, 0.0, -2.5} {
		got := TemperatureScale(probs, temp)
		for k := range probs {
			if got[k] != probs[k] {
				t.Errorf("T=%v: probs[%q] = %v, want unchanged %v", temp, k, got[k], probs[k])
			}
		}
	}
}

func TestTemperatureScale_Sharpens(t *testing.T) {
	probs := map[string]float64{"a": 0.6, "b": 0.4}

	got := TemperatureScale(probs, 0.5)

	if got["a"] <= 0.6 {
		t.Errorf("T=0.5 should sharpen the larger option: got a=%v, want > 0.6", got["a"])
	}
	if s := sumValues(got); math.Abs(s-1.0) > tolerance {
		t.Errorf("sum after scaling = %v, want 1.0", s)
	}
}

func TestTemperatureScale_Flattens(t *testing.T) {
	probs := map[string]float64{"a": 0.6, "b": 0.4}

	got := TemperatureScale(probs, 2.0)

	if got["a"] >= 0.6 {
		t.Errorf("T=2.0 should flatten: got a=%v, want < 0.6", got["a"])
	}
	if s := sumValues(got); math.Abs(s-1.0) > tolerance {
		t.Errorf("sum after scaling = %v, want 1.0", s)
	}
}

func TestTemperatureScale_ZeroEntriesStayZero(t *testing.T) {
	got := TemperatureScale(map[string]float64{"a": 1.0, "b": 0.0}, 0.5)

	if got["b"] != 0 {
		t.Errorf("zero probability should stay zero, got %v", got["b"])
	}
	if math.Abs(got["a"]-1.0) > tolerance {
		t.Errorf("expected a=1.0, got %v", got["a"])
	}
}

func TestEntropyUncertainty_Bounds(t *testing.T) {
	tests := []struct {
		name  string
		probs map[string]float64
		want  float64
	}{
		{"single outcome", map[string]float64{"a": 1.0}, 0.0},
		{"one option holds all mass", map[string]float64{"a": 1.0, "b": 0.0}, 0.0},
		{"uniform over two", map[string]float64{"a": 0.5, "b": 0.5}, 1.0},
		{"uniform over four", map[string]float64{"a": 0.25, "b": 0.25, "c": 0.25, "d": 0.25}, 1.0},
		{"empty", map[string]float64{}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EntropyUncertainty(tt.probs)
			if math.Abs(got-tt.want) > tolerance {
				t.Errorf("EntropyUncertainty(%v) = %v, want %v", tt.probs, got, tt.want)
			}
		})
	}
}

func TestEntropyUncertainty_Monotonicity(t *testing.T) {
	// A more uniform distribution over the same option set must be at least
	// as uncertain as a more peaked one.
	peaked := map[string]float64{"a": 0.9, "b": 0.05, "c": 0.05}
	middle := map[string]float64{"a": 0.6, "b": 0.2, "c": 0.2}
	uniform := map[string]float64{"a": 1.0 / 3, "b": 1.0 / 3, "c": 1.0 / 3}

	up := EntropyUncertainty(peaked)
	um := EntropyUncertainty(middle)
	uu := EntropyUncertainty(uniform)

	if !(up < um && um < uu) {
		t.Errorf("expected %v < %v < %v", up, um, uu)
	}
	if math.Abs(uu-1.0) > tolerance {
		t.Errorf("uniform uncertainty = %v, want 1.0", uu)
	}
}

func TestEntropyUncertainty_InRange(t *testing.T) {
	tests := []map[string]float64{
		{"a": 0.7, "b": 0.3},
		{"a": 0.99, "b": 0.005, "c": 0.005},
		{"a": 0.4, "b": 0.3, "c": 0.2, "d": 0.1},
	}

	for _, probs := range tests {
		got := EntropyUncertainty(probs)
		if got < 0 || got > 1 {
			t.Errorf("EntropyUncertainty(%v) = %v, out of [0,1]", probs, got)
		}
	}
}
