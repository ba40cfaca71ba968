package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Relationship is a person in the user's life with a weight on how much they
// sway the user's decisions. Influence lives in [0,1].
type Relationship struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	Name             string
	RelType          string
	YearsKnown       int
	ContactFrequency string
	Influence        float64
	CreatedAt        time.Time
}

// GetRelationships returns the user's relationships ordered by influence
// descending.
func (s *Store) GetRelationships(ctx context.Context, userID uuid.UUID) ([]Relationship, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, name, rel_type, years_known, COALESCE(contact_frequency, ''), influence, created_at
		FROM relationships
		WHERE user_id = $1
		ORDER BY influence DESC, created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query relationships: %w", err)
	}
	defer rows.Close()

	var out []Relationship
	for rows.Next() {
		var r Relationship
		if err := rows.Scan(&r.ID, &r.UserID, &r.Name, &r.RelType, &r.YearsKnown, &r.ContactFrequency, &r.Influence, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan relationship: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

func (s *Store) CreateRelationship(ctx context.Context, userID uuid.UUID, name, relType string, yearsKnown int, contactFrequency string, influence float64) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO relationships (id, user_id, name, rel_type, years_known, contact_frequency, influence, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())`,
		id, userID, name, relType, yearsKnown, contactFrequency, influence,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert relationship: %w", err)
	}
	return id, nil
}

func (s *Store) DeleteRelationship(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM relationships WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete relationship: %w", err)
	}
	return nil
}
