package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jd-hilo/unreal/internal/llm"
)

// Oracle is the LLM-backed collaborator that answers as the user's digital
// twin. Client talks to the live API; Mock serves development without
// credentials.
type Oracle interface {
	PredictDecision(ctx context.Context, req PredictionRequest) (*DecisionPrediction, error)
	SimulateOptions(ctx context.Context, corePack, question string, options []string) (map[string]SimulationScenario, error)
	SimulateTimeline(ctx context.Context, corePack, question, option string) (*TimelineSimulation, error)
	RunWhatIf(ctx context.Context, corePack, relevancePack, question string) (*WhatIfResult, error)
	ExtractRelationships(ctx context.Context, text string) ([]RelationshipExtraction, error)
}

var (
	predictionSchema = llm.GenerateSchema[predictionResponse]()
	simulationSchema = llm.GenerateSchema[simulationResponse]()
	timelineSchema   = llm.GenerateSchema[TimelineSimulation]()
	whatIfSchema     = llm.GenerateSchema[WhatIfResult]()
	extractionSchema = llm.GenerateSchema[extractionResponse]()
)

type Client struct {
	llm    *llm.Client
	logger *slog.Logger
}

func NewClient(l *llm.Client, logger *slog.Logger) *Client {
	return &Client{llm: l, logger: logger}
}

func (c *Client) PredictDecision(ctx context.Context, req PredictionRequest) (*DecisionPrediction, error) {
	optionsJSON, err := json.Marshal(req.Options)
	if err != nil {
		return nil, fmt.Errorf("marshal options: %w", err)
	}

	participantLine := ""
	if req.ParticipantCount > 0 {
		participantLine = fmt.Sprintf("\nThis decision involves %d other people besides me.\n", req.ParticipantCount)
	}

	input := fmt.Sprintf(predictionUserPrompt,
		req.CorePack, req.RelevancePack, req.Question, string(optionsJSON), participantLine)

	c.logger.Info("requesting decision prediction",
		"question_len", len(req.Question),
		"options", len(req.Options),
		"core_pack_len", len(req.CorePack),
		"relevance_pack_len", len(req.RelevancePack),
	)

	var resp predictionResponse
	if err := c.llm.CompleteJSON(ctx, predictionSystemPrompt, input, "DecisionPrediction", predictionSchema, 1500, &resp); err != nil {
		return nil, fmt.Errorf("predict decision: %w", err)
	}

	probs := make(map[string]float64, len(resp.Probabilities))
	for _, op := range resp.Probabilities {
		probs[op.Option] = op.Probability
	}

	return &DecisionPrediction{
		Prediction:  resp.Prediction,
		Probs:       probs,
		Rationale:   resp.Rationale,
		Factors:     resp.Factors,
		Uncertainty: resp.Uncertainty,
	}, nil
}

func (c *Client) SimulateOptions(ctx context.Context, corePack, question string, options []string) (map[string]SimulationScenario, error) {
	input := fmt.Sprintf(simulationUserPrompt, corePack, question, bulletList(options))

	var resp simulationResponse
	if err := c.llm.CompleteJSON(ctx, simulationSystemPrompt, input, "OptionSimulation", simulationSchema, 2500, &resp); err != nil {
		return nil, fmt.Errorf("simulate options: %w", err)
	}

	scenarios := make(map[string]SimulationScenario, len(resp.Scenarios))
	for _, s := range resp.Scenarios {
		scenarios[s.Option] = SimulationScenario{
			Happiness:     s.Happiness,
			Money:         s.Money,
			Relationships: s.Relationships,
			Freedom:       s.Freedom,
			Growth:        s.Growth,
			Risks:         s.Risks,
			Notes:         s.Notes,
		}
	}

	for _, opt := range options {
		if _, ok := scenarios[opt]; !ok {
			return nil, fmt.Errorf("simulate options: no scenario returned for option %q", opt)
		}
	}
	return scenarios, nil
}

func (c *Client) SimulateTimeline(ctx context.Context, corePack, question, option string) (*TimelineSimulation, error) {
	input := fmt.Sprintf(timelineUserPrompt, corePack, question, option)

	var resp TimelineSimulation
	if err := c.llm.CompleteJSON(ctx, timelineSystemPrompt, input, "TimelineSimulation", timelineSchema, 2000, &resp); err != nil {
		return nil, fmt.Errorf("simulate timeline: %w", err)
	}
	resp.Option = option
	return &resp, nil
}

func (c *Client) RunWhatIf(ctx context.Context, corePack, relevancePack, question string) (*WhatIfResult, error) {
	input := fmt.Sprintf(whatIfUserPrompt, corePack, relevancePack, question)

	var resp WhatIfResult
	if err := c.llm.CompleteJSON(ctx, whatIfSystemPrompt, input, "WhatIfResult", whatIfSchema, 1500, &resp); err != nil {
		return nil, fmt.Errorf("run what-if: %w", err)
	}
	return &resp, nil
}

func (c *Client) ExtractRelationships(ctx context.Context, text string) ([]RelationshipExtraction, error) {
	input := fmt.Sprintf(extractionUserPrompt, text)

	var resp extractionResponse
	if err := c.llm.CompleteJSON(ctx, extractionSystemPrompt, input, "RelationshipExtraction", extractionSchema, 1500, &resp); err != nil {
		return nil, fmt.Errorf("extract relationships: %w", err)
	}

	c.logger.Info("extracted relationships", "count", len(resp.Relationships))
	return resp.Relationships, nil
}

// ValidatePrediction enforces the oracle contract: the chosen prediction must
// be one of the submitted options and the probability keys must equal the
// option set exactly. Violations are data errors that fail the pipeline.
func ValidatePrediction(p *DecisionPrediction, options []string) error {
	optSet := make(map[string]bool, len(options))
	for _, opt := range options {
		optSet[opt] = true
	}

	if !optSet[p.Prediction] {
		return fmt.Errorf("prediction %q is not one of the submitted options", p.Prediction)
	}

	for k := range p.Probs {
		if !optSet[k] {
			return fmt.Errorf("probability map has extra key %q", k)
		}
	}
	for _, opt := range options {
		if _, ok := p.Probs[opt]; !ok {
			return fmt.Errorf("probability map is missing option %q", opt)
		}
	}
	return nil
}

func bulletList(items []string) string {
	var b strings.Builder
	for _, it := range items {
		b.WriteString("- ")
		b.WriteString(it)
		b.WriteString("\n")
	}
	return b.String()
}
