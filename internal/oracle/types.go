package oracle

// PredictionRequest carries everything the oracle needs to answer one
// decision question as the user's digital twin.
type PredictionRequest struct {
	CorePack         string
	RelevancePack    string
	Question         string
	Options          []string
	ParticipantCount int
}

// DecisionPrediction is the calibrated outcome attached to a decision.
// Probs holds one entry per submitted option and sums to 1.
type DecisionPrediction struct {
	Prediction  string             `json:"prediction"`
	Probs       map[string]float64 `json:"probs"`
	Rationale   string             `json:"rationale"`
	Factors     []string           `json:"factors"`
	Uncertainty float64            `json:"uncertainty"`
}

// SimulationScenario projects one option's life-metric deltas.
type SimulationScenario struct {
	Happiness     int      `json:"happiness"`
	Money         int      `json:"money"`
	Relationships int      `json:"relationships"`
	Freedom       int      `json:"freedom"`
	Growth        int      `json:"growth"`
	Risks         []string `json:"risks"`
	Notes         string   `json:"notes"`
}

// TimelinePoint is one milestone in a simulated trajectory.
type TimelinePoint struct {
	YearOffset int    `json:"year_offset"`
	Headline   string `json:"headline"`
	Detail     string `json:"detail"`
}

// TimelineSimulation is a multi-year trajectory for a single option.
type TimelineSimulation struct {
	Option  string          `json:"option"`
	Points  []TimelinePoint `json:"points"`
	Outlook string          `json:"outlook"`
}

// MetricPair compares a life metric between the current path and the
// counterfactual one. Values are on a 0-10 scale.
type MetricPair struct {
	Current   float64 `json:"current"`
	Alternate float64 `json:"alternate"`
}

// WhatIfMetrics covers the five life metrics of a counterfactual.
type WhatIfMetrics struct {
	Happiness     MetricPair `json:"happiness"`
	Money         MetricPair `json:"money"`
	Relationships MetricPair `json:"relationships"`
	Freedom       MetricPair `json:"freedom"`
	Growth        MetricPair `json:"growth"`
}

// WhatIfResult is the computed answer to a what-if question.
type WhatIfResult struct {
	Metrics WhatIfMetrics `json:"metrics"`
	Summary string        `json:"summary"`
}

// RelationshipExtraction is one person pulled out of free text.
type RelationshipExtraction struct {
	Name             string  `json:"name"`
	RelType          string  `json:"rel_type"`
	YearsKnown       int     `json:"years_known"`
	ContactFrequency string  `json:"contact_frequency"`
	Influence        float64 `json:"influence"`
}

// Wire shapes for strict JSON-schema responses. OpenAI strict mode rejects
// free-form maps, so probabilities and scenarios travel as arrays and are
// converted after parsing.

type optionProbability struct {
	Option      string  `json:"option"`
	Probability float64 `json:"probability"`
}

type predictionResponse struct {
	Prediction    string              `json:"prediction"`
	Probabilities []optionProbability `json:"probabilities"`
	Rationale     string              `json:"rationale"`
	Factors       []string            `json:"factors"`
	Uncertainty   float64             `json:"uncertainty"`
}

type optionScenario struct {
	Option        string   `json:"option"`
	Happiness     int      `json:"happiness"`
	Money         int      `json:"money"`
	Relationships int      `json:"relationships"`
	Freedom       int      `json:"freedom"`
	Growth        int      `json:"growth"`
	Risks         []string `json:"risks"`
	Notes         string   `json:"notes"`
}

type simulationResponse struct {
	Scenarios []optionScenario `json:"scenarios"`
}

type extractionResponse struct {
	Relationships []RelationshipExtraction `json:"relationships"`
}
