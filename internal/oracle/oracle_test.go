package oracle

import (
	"context"
	"math"
	"reflect"
	"testing"
)

func TestValidatePrediction_Valid(t *testing.T) {
	p := &DecisionPrediction{
		Prediction: "A",
		Probs:      map[string]float64{"A": 0.7, "B": 0.3},
	}

	if err := ValidatePrediction(p, []string{"A", "B"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidatePrediction_OutOfSetPrediction(t *testing.T) {
	p := &DecisionPrediction{
		Prediction: "C",
		Probs:      map[string]float64{"A": 0.7, "B": 0.3},
	}

	if err := ValidatePrediction(p, []string{"A", "B"}); err == nil {
		t.Error("expected error for prediction outside the option set")
	}
}

func TestValidatePrediction_MissingProbKey(t *testing.T) {
	p := &DecisionPrediction{
		Prediction: "A",
		Probs:      map[string]float64{"A": 1.0},
	}

	if err := ValidatePrediction(p, []string{"A", "B"}); err == nil {
		t.Error("expected error for missing probability key")
	}
}

func TestValidatePrediction_ExtraProbKey(t *testing.T) {
	p := &DecisionPrediction{
		Prediction: "A",
		Probs:      map[string]float64{"A": 0.5, "B": 0.3, "C": 0.2},
	}

	if err := ValidatePrediction(p, []string{"A", "B"}); err == nil {
		t.Error("expected error for extra probability key")
	}
}

func TestMock_PredictDecision_Deterministic(t *testing.T) {
	m := NewMock()
	req := PredictionRequest{Question: "stay or go?", Options: []string{"stay", "go"}}

	first, err := m.PredictDecision(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := m.PredictDecision(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("mock predictions should be deterministic")
	}
}

func TestMock_PredictDecision_FavorsFirstOption(t *testing.T) {
	m := NewMock()

	tests := []struct {
		name    string
		options []string
	}{
		{"two options", []string{"a", "b"}},
		{"three options", []string{"a", "b", "c"}},
		{"five options", []string{"a", "b", "c", "d", "e"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.PredictDecision(context.Background(), PredictionRequest{Options: tt.options})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got.Prediction != tt.options[0] {
				t.Errorf("prediction = %q, want first option %q", got.Prediction, tt.options[0])
			}
			if err := ValidatePrediction(got, tt.options); err != nil {
				t.Errorf("mock violates its own contract: %v", err)
			}

			sum := 0.0
			for _, p := range got.Probs {
				sum += p
			}
			if math.Abs(sum-1.0) > 1e-9 {
				t.Errorf("probs sum = %v, want 1.0", sum)
			}
			for _, opt := range tt.options[1:] {
				if got.Probs[tt.options[0]] <= got.Probs[opt] {
					t.Errorf("first option should dominate: %v vs %v", got.Probs[tt.options[0]], got.Probs[opt])
				}
			}
		})
	}
}

func TestMock_PredictDecision_NoOptions(t *testing.T) {
	m := NewMock()

	if _, err := m.PredictDecision(context.Background(), PredictionRequest{}); err == nil {
		t.Error("expected error for empty option list")
	}
}

func TestMock_SimulateOptions_CoversEveryOption(t *testing.T) {
	m := NewMock()
	options := []string{"stay", "go", "wait"}

	scenarios, err := m.SimulateOptions(context.Background(), "", "stay or go?", options)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(scenarios) != len(options) {
		t.Fatalf("expected %d scenarios, got %d", len(options), len(scenarios))
	}
	for _, opt := range options {
		if _, ok := scenarios[opt]; !ok {
			t.Errorf("missing scenario for option %q", opt)
		}
	}
}
