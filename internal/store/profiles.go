package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Profile is the per-user aggregate built up by onboarding. Core holds
// free-form identity facts keyed by field name (age_range, city, role,
// employment_type, motivation, ...).
type Profile struct {
	UserID           uuid.UUID
	Core             map[string]string
	Values           []string
	NarrativeSummary string
	UpdatedAt        time.Time
}

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

func (s *Store) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT user_id, core, value_tags, COALESCE(narrative_summary, ''), updated_at
		FROM profiles
		WHERE user_id = $1`,
		userID,
	)

	var p Profile
	var coreJSON, valuesJSON []byte
	err := row.Scan(&p.UserID, &coreJSON, &valuesJSON, &p.NarrativeSummary, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	if len(coreJSON) > 0 {
		if err := json.Unmarshal(coreJSON, &p.Core); err != nil {
			return nil, fmt.Errorf("decode profile core: %w", err)
		}
	}
	if len(valuesJSON) > 0 {
		if err := json.Unmarshal(valuesJSON, &p.Values); err != nil {
			return nil, fmt.Errorf("decode profile values: %w", err)
		}
	}
	return &p, nil
}

// UpsertProfile creates the profile on first onboarding write and merges the
// given core facts and value tags on every later one.
func (s *Store) UpsertProfile(ctx context.Context, userID uuid.UUID, core map[string]string, values []string) error {
	coreJSON, err := json.Marshal(core)
	if err != nil {
		return fmt.Errorf("encode core: %w", err)
	}
	valuesJSON, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode values: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO profiles (user_id, core, value_tags, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id)
		DO UPDATE SET
			core = profiles.core || $2,
			value_tags = $3,
			updated_at = now()`,
		userID, coreJSON, valuesJSON,
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// SetNarrative stores the narrative summary and its embedding. A nil
// embedding clears the vector.
func (s *Store) SetNarrative(ctx context.Context, userID uuid.UUID, summary string, embedding []float64) error {
	var vec any
	if embedding != nil {
		vec = pgVector(embedding)
	}
	_, err := s.pool.Exec(ctx, `
		UPDATE profiles
		SET narrative_summary = $1, narrative_embedding = $2, updated_at = now()
		WHERE user_id = $3`,
		summary, vec, userID,
	)
	if err != nil {
		return fmt.Errorf("set narrative: %w", err)
	}
	return nil
}
