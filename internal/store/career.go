package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CareerEntry is one job in the user's history. EndedOn is nil for the
// current role. Satisfaction is 1-5.
type CareerEntry struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Title        string
	Company      string
	StartedOn    time.Time
	EndedOn      *time.Time
	Satisfaction int
}

// GetCareerEntries returns the user's career history, most recent start
// first.
func (s *Store) GetCareerEntries(ctx context.Context, userID uuid.UUID) ([]CareerEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, title, COALESCE(company, ''), started_on, ended_on, satisfaction
		FROM career_entries
		WHERE user_id = $1
		ORDER BY started_on DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query career entries: %w", err)
	}
	defer rows.Close()

	var out []CareerEntry
	for rows.Next() {
		var e CareerEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Title, &e.Company, &e.StartedOn, &e.EndedOn, &e.Satisfaction); err != nil {
			return nil, fmt.Errorf("scan career entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

func (s *Store) CreateCareerEntry(ctx context.Context, userID uuid.UUID, title, company string, startedOn time.Time, endedOn *time.Time, satisfaction int) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO career_entries (id, user_id, title, company, started_on, ended_on, satisfaction)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, userID, title, company, startedOn, endedOn, satisfaction,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert career entry: %w", err)
	}
	return id, nil
}
