package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JournalEntry is one mood check-in. Mood is 1-10.
type JournalEntry struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Content   string
	Mood      int
	CreatedAt time.Time
}

// GetJournals returns the user's most recent journal entries, newest first.
func (s *Store) GetJournals(ctx context.Context, userID uuid.UUID, limit int) ([]JournalEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, content, mood, created_at
		FROM journal_entries
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query journals: %w", err)
	}
	defer rows.Close()

	var out []JournalEntry
	for rows.Next() {
		var j JournalEntry
		if err := rows.Scan(&j.ID, &j.UserID, &j.Content, &j.Mood, &j.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan journal: %w", err)
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

func (s *Store) CreateJournal(ctx context.Context, userID uuid.UUID, content string, mood int) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO journal_entries (id, user_id, content, mood, created_at)
		VALUES ($1, $2, $3, $4, now())`,
		id, userID, content, mood,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert journal: %w", err)
	}
	return id, nil
}
