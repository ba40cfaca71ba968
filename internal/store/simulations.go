package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jd-hilo/unreal/internal/oracle"
)

// CreateSimulation persists the per-option scenario map for a decision.
func (s *Store) CreateSimulation(ctx context.Context, decisionID uuid.UUID, scenarios map[string]oracle.SimulationScenario) (uuid.UUID, error) {
	scenariosJSON, err := json.Marshal(scenarios)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode scenarios: %w", err)
	}

	id := uuid.New()
	_, err = s.pool.Exec(ctx, `
		INSERT INTO simulations (id, decision_id, scenarios, created_at)
		VALUES ($1, $2, $3, now())`,
		id, decisionID, scenariosJSON,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert simulation: %w", err)
	}
	return id, nil
}
