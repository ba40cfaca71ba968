package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jd-hilo/unreal/internal/oracle"
)

// CreateWhatIf persists a counterfactual question together with its computed
// metrics and narrative summary.
func (s *Store) CreateWhatIf(ctx context.Context, userID uuid.UUID, question string, result *oracle.WhatIfResult) (uuid.UUID, error) {
	metricsJSON, err := json.Marshal(result.Metrics)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode metrics: %w", err)
	}

	id := uuid.New()
	_, err = s.pool.Exec(ctx, `
		INSERT INTO whatifs (id, user_id, question, metrics, summary, created_at)
		VALUES ($1, $2, $3, $4, $5, now())`,
		id, userID, question, metricsJSON, result.Summary,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert whatif: %w", err)
	}
	return id, nil
}
