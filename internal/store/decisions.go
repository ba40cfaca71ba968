package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jd-hilo/unreal/internal/oracle"
)

// Decision status lifecycle: draft -> pending -> completed | failed.
const (
	StatusDraft     = "draft"
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

type Decision struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	Question         string
	Options          []string
	Status           string
	ErrorReason      string
	ParticipantCount int
	Prediction       *oracle.DecisionPrediction
	CreatedAt        time.Time
	PredictedAt      *time.Time
}

// CreateDecision inserts a new decision. Drafts stay out of the pipeline
// until submitted; everything else starts pending.
func (s *Store) CreateDecision(ctx context.Context, userID uuid.UUID, question string, options []string, participantCount int, draft bool) (uuid.UUID, error) {
	optionsJSON, err := json.Marshal(options)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode options: %w", err)
	}

	status := StatusPending
	if draft {
		status = StatusDraft
	}

	id := uuid.New()
	_, err = s.pool.Exec(ctx, `
		INSERT INTO decisions (id, user_id, question, options, status, participant_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())`,
		id, userID, question, optionsJSON, status, participantCount,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert decision: %w", err)
	}
	return id, nil
}

func (s *Store) GetDecision(ctx context.Context, id uuid.UUID) (*Decision, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, question, options, status, COALESCE(error_reason, ''), participant_count, prediction, created_at, predicted_at
		FROM decisions
		WHERE id = $1`,
		id,
	)
	d, err := scanDecision(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get decision: %w", err)
	}
	return d, nil
}

// GetRecentDecisions returns the user's most recently completed decisions,
// newest first.
func (s *Store) GetRecentDecisions(ctx context.Context, userID uuid.UUID, limit int) ([]Decision, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, question, options, status, COALESCE(error_reason, ''), participant_count, prediction, created_at, predicted_at
		FROM decisions
		WHERE user_id = $1 AND status = 'completed'
		ORDER BY predicted_at DESC
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent decisions: %w", err)
	}
	defer rows.Close()
	return collectDecisions(rows)
}

// SimilarDecisions returns completed decisions ranked by cosine similarity of
// their stored embedding to the query vector. Rows without an embedding are
// skipped; callers fall back to recency when nothing comes back.
func (s *Store) SimilarDecisions(ctx context.Context, userID uuid.UUID, queryEmbedding []float64, limit int) ([]Decision, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, question, options, status, COALESCE(error_reason, ''), participant_count, prediction, created_at, predicted_at
		FROM decisions
		WHERE user_id = $1 AND status = 'completed' AND embedding IS NOT NULL
		ORDER BY embedding <=> $2
		LIMIT $3`,
		userID, pgVector(queryEmbedding), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query similar decisions: %w", err)
	}
	defer rows.Close()
	return collectDecisions(rows)
}

// MarkDecisionPending promotes a draft (or resets a completed decision being
// regenerated) into the pipeline.
func (s *Store) MarkDecisionPending(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE decisions SET status = 'pending', error_reason = NULL
		WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("mark decision pending: %w", err)
	}
	return nil
}

// UpdateDecisionPrediction attaches the calibrated prediction and completes
// the decision.
func (s *Store) UpdateDecisionPrediction(ctx context.Context, id uuid.UUID, prediction *oracle.DecisionPrediction) error {
	predJSON, err := json.Marshal(prediction)
	if err != nil {
		return fmt.Errorf("encode prediction: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		UPDATE decisions
		SET prediction = $1, status = 'completed', error_reason = NULL, predicted_at = now()
		WHERE id = $2`,
		predJSON, id,
	)
	if err != nil {
		return fmt.Errorf("update decision prediction: %w", err)
	}
	return nil
}

// MarkDecisionFailed moves a decision to the failed terminal state with the
// reason the pipeline gave up.
func (s *Store) MarkDecisionFailed(ctx context.Context, id uuid.UUID, reason string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE decisions SET status = 'failed', error_reason = $1
		WHERE id = $2`,
		reason, id,
	)
	if err != nil {
		return fmt.Errorf("mark decision failed: %w", err)
	}
	return nil
}

// UpdateDecisionEmbedding stores the question+options embedding. Best-effort
// from the pipeline's point of view; callers swallow failures.
func (s *Store) UpdateDecisionEmbedding(ctx context.Context, id uuid.UUID, embedding []float64) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE decisions SET embedding = $1
		WHERE id = $2`,
		pgVector(embedding), id,
	)
	if err != nil {
		return fmt.Errorf("update decision embedding: %w", err)
	}
	return nil
}

func scanDecision(row pgx.Row) (*Decision, error) {
	var d Decision
	var optionsJSON, predJSON []byte
	err := row.Scan(&d.ID, &d.UserID, &d.Question, &optionsJSON, &d.Status, &d.ErrorReason, &d.ParticipantCount, &predJSON, &d.CreatedAt, &d.PredictedAt)
	if err != nil {
		return nil, err
	}

	if len(optionsJSON) > 0 {
		if err := json.Unmarshal(optionsJSON, &d.Options); err != nil {
			return nil, fmt.Errorf("decode options: %w", err)
		}
	}
	if len(predJSON) > 0 {
		var pred oracle.DecisionPrediction
		if err := json.Unmarshal(predJSON, &pred); err != nil {
			return nil, fmt.Errorf("decode prediction: %w", err)
		}
		d.Prediction = &pred
	}
	return &d, nil
}

func collectDecisions(rows pgx.Rows) ([]Decision, error) {
	var out []Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}
