package oracle

import (
	"context"
	"fmt"
)

// Mock is the deterministic offline oracle used when no API key is
// configured. Predictions favor the first option at 2/(n+1), with the rest
// split evenly, so the pipeline stays exercisable without network access.
type Mock struct{}

func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) PredictDecision(_ context.Context, req PredictionRequest) (*DecisionPrediction, error) {
	if len(req.Options) == 0 {
		return nil, fmt.Errorf("predict decision: no options submitted")
	}

	n := len(req.Options)
	probs := make(map[string]float64, n)
	first := 2.0 / float64(n+1)
	rest := 0.0
	if n > 1 {
		rest = (1.0 - first) / float64(n-1)
	}
	for i, opt := range req.Options {
		if i == 0 {
			probs[opt] = first
		} else {
			probs[opt] = rest
		}
	}

	return &DecisionPrediction{
		Prediction:  req.Options[0],
		Probs:       probs,
		Rationale:   "Offline twin: leaning toward the first option based on your stated priorities.",
		Factors:     []string{"offline mode", "no live model available"},
		Uncertainty: 0.5,
	}, nil
}

func (m *Mock) SimulateOptions(_ context.Context, _, _ string, options []string) (map[string]SimulationScenario, error) {
	scenarios := make(map[string]SimulationScenario, len(options))
	for i, opt := range options {
		delta := 2 - i
		if delta < -2 {
			delta = -2
		}
		scenarios[opt] = SimulationScenario{
			Happiness:     delta,
			Money:         0,
			Relationships: 0,
			Freedom:       delta,
			Growth:        1,
			Risks:         []string{"offline projection, not personalized"},
			Notes:         fmt.Sprintf("Offline scenario for %q.", opt),
		}
	}
	return scenarios, nil
}

func (m *Mock) SimulateTimeline(_ context.Context, _, _ string, option string) (*TimelineSimulation, error) {
	return &TimelineSimulation{
		Option: option,
		Points: []TimelinePoint{
			{YearOffset: 0, Headline: "You commit to the path", Detail: fmt.Sprintf("Offline projection for %q.", option)},
			{YearOffset: 1, Headline: "The routine settles in", Detail: "Offline projection."},
			{YearOffset: 3, Headline: "The choice compounds", Detail: "Offline projection."},
		},
		Outlook: "Offline twin: steady as she goes.",
	}, nil
}

func (m *Mock) RunWhatIf(_ context.Context, _, _, question string) (*WhatIfResult, error) {
	return &WhatIfResult{
		Metrics: WhatIfMetrics{
			Happiness:     MetricPair{Current: 6, Alternate: 6},
			Money:         MetricPair{Current: 5, Alternate: 5},
			Relationships: MetricPair{Current: 6, Alternate: 6},
			Freedom:       MetricPair{Current: 5, Alternate: 6},
			Growth:        MetricPair{Current: 5, Alternate: 6},
		},
		Summary: fmt.Sprintf("Offline twin: %q would nudge things, not upend them.", question),
	}, nil
}

func (m *Mock) ExtractRelationships(_ context.Context, _ string) ([]RelationshipExtraction, error) {
	return nil, nil
}
