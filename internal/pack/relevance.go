package pack

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jd-hilo/unreal/internal/store"
)

const (
	recentDecisionLimit = 5
	journalScanLimit    = 20
	moodWindow          = 7 * 24 * time.Hour
	journalSnippetChars = 100
)

// BuildRelevancePack renders the per-question document: profile narrative,
// past decisions (similarity-ranked when the question embeds cleanly,
// recency-ordered otherwise), and the recent mood trend. Each section is
// omitted entirely when its source has no data.
func (b *Builder) BuildRelevancePack(ctx context.Context, userID uuid.UUID, question string) (string, error) {
	var sections []string

	profile, err := b.store.GetProfile(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("build relevance pack: %w", err)
	}
	if profile != nil && profile.NarrativeSummary != "" {
		sections = append(sections, "PROFILE NARRATIVE:\n"+profile.NarrativeSummary)
	}

	decisions, err := b.relevantDecisions(ctx, userID, question)
	if err != nil {
		return "", fmt.Errorf("build relevance pack: %w", err)
	}
	if s := decisionsSection(decisions); s != "" {
		sections = append(sections, s)
	}

	journals, err := b.store.GetJournals(ctx, userID, journalScanLimit)
	if err != nil {
		return "", fmt.Errorf("build relevance pack: %w", err)
	}
	if s := moodSection(journals, time.Now()); s != "" {
		sections = append(sections, s)
	}

	return strings.Join(sections, "\n\n"), nil
}

// relevantDecisions prefers vector-similarity ranking over the question
// embedding and degrades to recency whenever embedding is unavailable.
func (b *Builder) relevantDecisions(ctx context.Context, userID uuid.UUID, question string) ([]store.Decision, error) {
	if b.embedder != nil {
		embedding, err := b.embedder.Embed(ctx, question)
		if err != nil {
			b.logger.Warn("question embedding failed, falling back to recency", "error", err)
		} else {
			similar, err := b.store.SimilarDecisions(ctx, userID, embedding, recentDecisionLimit)
			if err != nil {
				return nil, err
			}
			if len(similar) > 0 {
				return similar, nil
			}
		}
	}
	return b.store.GetRecentDecisions(ctx, userID, recentDecisionLimit)
}

func decisionsSection(decisions []store.Decision) string {
	if len(decisions) == 0 {
		return ""
	}

	var lines []string
	for _, d := range decisions {
		if d.Prediction == nil {
			continue
		}
		confidence := 1.0 - d.Prediction.Uncertainty
		lines = append(lines, fmt.Sprintf("- %q -> chose %q (confidence %.2f)", d.Question, d.Prediction.Prediction, confidence))
	}
	if len(lines) == 0 {
		return ""
	}
	return "RECENT DECISIONS:\n" + strings.Join(lines, "\n")
}

func moodSection(journals []store.JournalEntry, now time.Time) string {
	if len(journals) == 0 {
		return ""
	}

	var lines []string
	sum, count := 0, 0
	cutoff := now.Add(-moodWindow)
	for _, j := range journals {
		if j.CreatedAt.After(cutoff) {
			sum += j.Mood
			count++
		}
	}
	if count > 0 {
		lines = append(lines, fmt.Sprintf("- 7-day average mood: %.1f/10", float64(sum)/float64(count)))
	}

	latest := journals[0].Content
	if len(latest) > journalSnippetChars {
		latest = cutAtRuneBoundary(latest, journalSnippetChars) + "..."
	}
	lines = append(lines, fmt.Sprintf("- Latest entry: %q", latest))

	return "RECENT MOOD TREND:\n" + strings.Join(lines, "\n")
}
