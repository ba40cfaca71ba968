// Package pipeline sequences a decision prediction: context packs -> oracle
// -> validation -> calibration -> persistence, with lifecycle events and a
// failed terminal state on any unrecoverable step.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jd-hilo/unreal/internal/calibrate"
	"github.com/jd-hilo/unreal/internal/events"
	"github.com/jd-hilo/unreal/internal/oracle"
	"github.com/jd-hilo/unreal/internal/pack"
)

// ErrPredictionInFlight is returned when a second run is requested for a
// decision whose prediction is still being computed. At most one pipeline
// run per decision is in flight at a time.
var ErrPredictionInFlight = errors.New("a prediction for this decision is already in flight")

// Store is the slice of the persistence collaborator the pipeline writes to.
type Store interface {
	MarkDecisionPending(ctx context.Context, id uuid.UUID) error
	UpdateDecisionPrediction(ctx context.Context, id uuid.UUID, prediction *oracle.DecisionPrediction) error
	MarkDecisionFailed(ctx context.Context, id uuid.UUID, reason string) error
	UpdateDecisionEmbedding(ctx context.Context, id uuid.UUID, embedding []float64) error
}

// Packs builds the two context documents.
type Packs interface {
	BuildCorePack(ctx context.Context, userID uuid.UUID) (string, error)
	BuildRelevancePack(ctx context.Context, userID uuid.UUID, question string) (string, error)
}

// Predictor is the oracle operation the pipeline needs.
type Predictor interface {
	PredictDecision(ctx context.Context, req oracle.PredictionRequest) (*oracle.DecisionPrediction, error)
}

// Publisher emits lifecycle events. May be nil when NATS is not configured.
type Publisher interface {
	Publish(subject string, data any) error
}

type Runner struct {
	store       Store
	packs       Packs
	oracle      Predictor
	embedder    pack.Embedder
	events      Publisher
	temperature float64
	logger      *slog.Logger

	mu       sync.Mutex
	inflight map[uuid.UUID]bool
}

func New(s Store, p Packs, o Predictor, embedder pack.Embedder, pub Publisher, temperature float64, logger *slog.Logger) *Runner {
	return &Runner{
		store:       s,
		packs:       p,
		oracle:      o,
		embedder:    embedder,
		events:      pub,
		temperature: temperature,
		logger:      logger,
		inflight:    make(map[uuid.UUID]bool),
	}
}

// Run executes the full prediction pipeline for one decision and returns the
// calibrated prediction. The runner owns every status transition: a rejected
// run touches nothing, an accepted one moves the decision to pending before
// any other work, and on failure the decision lands in the failed state with
// the reason recorded.
func (r *Runner) Run(ctx context.Context, userID, decisionID uuid.UUID, question string, options []string, participantCount int) (*oracle.DecisionPrediction, error) {
	if !r.acquire(decisionID) {
		return nil, ErrPredictionInFlight
	}
	defer r.release(decisionID)

	if err := r.store.MarkDecisionPending(ctx, decisionID); err != nil {
		return nil, r.fail(ctx, decisionID, fmt.Errorf("mark pending: %w", err))
	}

	r.logger.Info("running decision pipeline",
		"decision_id", decisionID,
		"user_id", userID,
		"options", len(options),
	)

	corePack, err := r.packs.BuildCorePack(ctx, userID)
	if err != nil {
		return nil, r.fail(ctx, decisionID, fmt.Errorf("build core pack: %w", err))
	}
	relevancePack, err := r.packs.BuildRelevancePack(ctx, userID, question)
	if err != nil {
		return nil, r.fail(ctx, decisionID, fmt.Errorf("build relevance pack: %w", err))
	}

	corePack = pack.TruncateToTokenLimit(corePack, pack.CorePackTokenLimit)
	relevancePack = pack.TruncateToTokenLimit(relevancePack, pack.RelevancePackTokenLimit)

	// Embedding the decision text is best-effort: it feeds future
	// similarity lookups, not this prediction.
	r.attachEmbedding(ctx, decisionID, question, options)

	raw, err := r.oracle.PredictDecision(ctx, oracle.PredictionRequest{
		CorePack:         corePack,
		RelevancePack:    relevancePack,
		Question:         question,
		Options:          options,
		ParticipantCount: participantCount,
	})
	if err != nil {
		return nil, r.fail(ctx, decisionID, fmt.Errorf("oracle: %w", err))
	}

	if err := oracle.ValidatePrediction(raw, options); err != nil {
		r.logger.Error("oracle returned malformed prediction",
			"decision_id", decisionID,
			"prediction", raw.Prediction,
			"error", err,
		)
		return nil, r.fail(ctx, decisionID, fmt.Errorf("invalid oracle output: %w", err))
	}

	probs := calibrate.Renormalize(raw.Probs)
	probs = calibrate.TemperatureScale(probs, r.temperature)
	raw.Probs = probs
	// The oracle's self-reported uncertainty is discarded in favor of the
	// entropy of the final distribution.
	raw.Uncertainty = calibrate.EntropyUncertainty(probs)

	if err := r.store.UpdateDecisionPrediction(ctx, decisionID, raw); err != nil {
		return nil, r.fail(ctx, decisionID, fmt.Errorf("persist prediction: %w", err))
	}

	r.publish(events.SubjectDecisionPredicted, map[string]any{
		"decision_id": decisionID.String(),
		"user_id":     userID.String(),
		"prediction":  raw.Prediction,
		"uncertainty": raw.Uncertainty,
	})

	r.logger.Info("decision pipeline completed",
		"decision_id", decisionID,
		"prediction", raw.Prediction,
		"uncertainty", raw.Uncertainty,
	)
	return raw, nil
}

func (r *Runner) acquire(decisionID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inflight[decisionID] {
		return false
	}
	r.inflight[decisionID] = true
	return true
}

func (r *Runner) release(decisionID uuid.UUID) {
	r.mu.Lock()
	delete(r.inflight, decisionID)
	r.mu.Unlock()
}

func (r *Runner) attachEmbedding(ctx context.Context, decisionID uuid.UUID, question string, options []string) {
	if r.embedder == nil {
		return
	}
	embedding, err := r.embedder.Embed(ctx, question+"\n"+strings.Join(options, "\n"))
	if err != nil {
		r.logger.Warn("decision embedding failed", "decision_id", decisionID, "error", err)
		return
	}
	if err := r.store.UpdateDecisionEmbedding(ctx, decisionID, embedding); err != nil {
		r.logger.Warn("storing decision embedding failed", "decision_id", decisionID, "error", err)
	}
}

func (r *Runner) fail(ctx context.Context, decisionID uuid.UUID, cause error) error {
	if err := r.store.MarkDecisionFailed(ctx, decisionID, cause.Error()); err != nil {
		r.logger.Error("failed to mark decision failed", "decision_id", decisionID, "error", err)
	}
	r.publish(events.SubjectDecisionFailed, map[string]any{
		"decision_id": decisionID.String(),
		"reason":      cause.Error(),
	})
	return cause
}

func (r *Runner) publish(subject string, data any) {
	if r.events == nil {
		return
	}
	if err := r.events.Publish(subject, data); err != nil {
		r.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}
