package pack

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jd-hilo/unreal/internal/oracle"
	"github.com/jd-hilo/unreal/internal/store"
)

type fakeReader struct {
	profile       *store.Profile
	relationships []store.Relationship
	career        []store.CareerEntry
	recent        []store.Decision
	similar       []store.Decision
	journals      []store.JournalEntry

	similarCalled bool
	recentCalled  bool
}

func (f *fakeReader) GetProfile(_ context.Context, _ uuid.UUID) (*store.Profile, error) {
	if f.profile == nil {
		return nil, store.ErrNotFound
	}
	return f.profile, nil
}

func (f *fakeReader) GetRelationships(_ context.Context, _ uuid.UUID) ([]store.Relationship, error) {
	return f.relationships, nil
}

func (f *fakeReader) GetCareerEntries(_ context.Context, _ uuid.UUID) ([]store.CareerEntry, error) {
	return f.career, nil
}

func (f *fakeReader) GetRecentDecisions(_ context.Context, _ uuid.UUID, _ int) ([]store.Decision, error) {
	f.recentCalled = true
	return f.recent, nil
}

func (f *fakeReader) SimilarDecisions(_ context.Context, _ uuid.UUID, _ []float64, _ int) ([]store.Decision, error) {
	f.similarCalled = true
	return f.similar, nil
}

func (f *fakeReader) GetJournals(_ context.Context, _ uuid.UUID, _ int) ([]store.JournalEntry, error) {
	return f.journals, nil
}

type fakeEmbedder struct {
	vec []float64
	err error
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float64, error) {
	return f.vec, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fullProfile() *store.Profile {
	return &store.Profile{
		UserID: uuid.New(),
		Core: map[string]string{
			"age_range":       "25-34",
			"city":            "Austin",
			"role":            "Product designer",
			"employment_type": "full-time",
			"motivation":      "building things that last",
		},
		Values:           []string{"autonomy", "craft", "family", "health", "curiosity", "sixth value"},
		NarrativeSummary: "A designer weighing stability against independence.",
	}
}

func TestBuildCorePack_NoProfile(t *testing.T) {
	b := NewBuilder(&fakeReader{}, nil, testLogger())

	got, err := b.BuildCorePack(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != NoProfilePlaceholder {
		t.Errorf("got %q, want placeholder", got)
	}
}

func TestBuildCorePack_FullRender(t *testing.T) {
	ended := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	r := &fakeReader{
		profile: fullProfile(),
		relationships: []store.Relationship{
			{Name: "Maya", RelType: "partner", YearsKnown: 6, ContactFrequency: "daily", Influence: 0.9},
			{Name: "Sam", RelType: "mentor", Influence: 0.6},
		},
		career: []store.CareerEntry{
			{Title: "Product designer", Company: "Ramp", StartedOn: time.Date(2021, 4, 1, 0, 0, 0, 0, time.UTC), Satisfaction: 4},
			{Title: "Design intern", StartedOn: time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC), EndedOn: &ended},
		},
	}
	b := NewBuilder(r, nil, testLogger())

	got, err := b.BuildCorePack(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"IDENTITY:",
		"- Age: 25-34",
		"- Location: Austin",
		"- Role: Product designer (full-time)",
		"CORE VALUES: autonomy, craft, family, health, curiosity",
		"KEY RELATIONSHIPS:",
		"- Maya, partner, 6y, daily, influence: 0.9",
		"- Sam, mentor, influence: 0.6",
		"CAREER SUMMARY:",
		"- Product designer at Ramp (2021 - present) satisfaction: 4/5",
		"- Design intern (2019 - 2021)",
		"What drives them: building things that last",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("core pack missing %q:\n%s", want, got)
		}
	}

	// Only the first five values make the cut.
	if strings.Contains(got, "sixth value") {
		t.Errorf("core pack should cap values at five:\n%s", got)
	}
}

func TestBuildCorePack_OmitsEmptySections(t *testing.T) {
	r := &fakeReader{profile: fullProfile()}
	b := NewBuilder(r, nil, testLogger())

	got, err := b.BuildCorePack(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(got, "KEY RELATIONSHIPS") {
		t.Errorf("expected KEY RELATIONSHIPS header omitted:\n%s", got)
	}
	if strings.Contains(got, "CAREER SUMMARY") {
		t.Errorf("expected CAREER SUMMARY header omitted:\n%s", got)
	}
}

func TestBuildCorePack_Deterministic(t *testing.T) {
	r := &fakeReader{
		profile: fullProfile(),
		relationships: []store.Relationship{
			{Name: "Maya", RelType: "partner", Influence: 0.9},
		},
	}
	b := NewBuilder(r, nil, testLogger())

	first, err := b.BuildCorePack(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := b.BuildCorePack(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Error("core pack should be deterministic given the same records")
	}
}

func completedDecision(question, chosen string, uncertainty float64) store.Decision {
	return store.Decision{
		ID:       uuid.New(),
		Question: question,
		Status:   store.StatusCompleted,
		Prediction: &oracle.DecisionPrediction{
			Prediction:  chosen,
			Probs:       map[string]float64{chosen: 1},
			Uncertainty: uncertainty,
		},
	}
}

func TestBuildRelevancePack_AllSections(t *testing.T) {
	r := &fakeReader{
		profile: fullProfile(),
		recent: []store.Decision{
			completedDecision("take the job?", "yes", 0.28),
		},
		journals: []store.JournalEntry{
			{Content: strings.Repeat("x", 150), Mood: 7, CreatedAt: time.Now().Add(-2 * time.Hour)},
			{Content: "older", Mood: 5, CreatedAt: time.Now().Add(-3 * 24 * time.Hour)},
		},
	}
	b := NewBuilder(r, nil, testLogger())

	got, err := b.BuildRelevancePack(context.Background(), uuid.New(), "should I move?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(got, "PROFILE NARRATIVE:") {
		t.Errorf("missing narrative section:\n%s", got)
	}
	if !strings.Contains(got, `- "take the job?" -> chose "yes" (confidence 0.72)`) {
		t.Errorf("missing decision line:\n%s", got)
	}
	if !strings.Contains(got, "- 7-day average mood: 6.0/10") {
		t.Errorf("missing mood average:\n%s", got)
	}
	// Latest entry snippet is capped at 100 chars plus ellipsis.
	if !strings.Contains(got, strings.Repeat("x", 100)+"...") {
		t.Errorf("missing truncated journal snippet:\n%s", got)
	}
	if strings.Contains(got, strings.Repeat("x", 101)) {
		t.Errorf("journal snippet not truncated:\n%s", got)
	}
}

func TestBuildRelevancePack_OmitsMissingSections(t *testing.T) {
	b := NewBuilder(&fakeReader{}, nil, testLogger())

	got, err := b.BuildRelevancePack(context.Background(), uuid.New(), "should I move?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, header := range []string{"PROFILE NARRATIVE", "RECENT DECISIONS", "RECENT MOOD TREND"} {
		if strings.Contains(got, header) {
			t.Errorf("expected %s omitted for empty sources:\n%s", header, got)
		}
	}
}

func TestBuildRelevancePack_PrefersSimilarity(t *testing.T) {
	r := &fakeReader{
		similar: []store.Decision{completedDecision("similar one", "a", 0.1)},
		recent:  []store.Decision{completedDecision("recent one", "b", 0.1)},
	}
	b := NewBuilder(r, &fakeEmbedder{vec: []float64{0.1, 0.2}}, testLogger())

	got, err := b.BuildRelevancePack(context.Background(), uuid.New(), "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !r.similarCalled {
		t.Error("expected similarity lookup when embedding succeeds")
	}
	if !strings.Contains(got, "similar one") || strings.Contains(got, "recent one") {
		t.Errorf("expected similarity-ranked decisions:\n%s", got)
	}
}

func TestBuildRelevancePack_EmbeddingFailureFallsBack(t *testing.T) {
	r := &fakeReader{
		recent: []store.Decision{completedDecision("recent one", "b", 0.1)},
	}
	b := NewBuilder(r, &fakeEmbedder{err: fmt.Errorf("quota exceeded")}, testLogger())

	got, err := b.BuildRelevancePack(context.Background(), uuid.New(), "q")
	if err != nil {
		t.Fatalf("embedding failure must be non-fatal, got: %v", err)
	}

	if r.similarCalled {
		t.Error("similarity lookup should be skipped when embedding fails")
	}
	if !r.recentCalled || !strings.Contains(got, "recent one") {
		t.Errorf("expected recency fallback:\n%s", got)
	}
}

func TestEstimateTokenCount(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"abcd", 1},
		{"abcde", 2},
		{strings.Repeat("a", 400), 100},
	}

	for _, tt := range tests {
		if got := EstimateTokenCount(tt.text); got != tt.want {
			t.Errorf("EstimateTokenCount(%d chars) = %d, want %d", len(tt.text), got, tt.want)
		}
	}
}

func TestTruncateToTokenLimit(t *testing.T) {
	text := strings.Repeat("a", 100)

	if got := TruncateToTokenLimit(text, 25); got != text {
		t.Errorf("text at the limit should pass through unchanged")
	}

	got := TruncateToTokenLimit(text, 10)
	if want := strings.Repeat("a", 40) + "..."; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	if got := TruncateToTokenLimit(text, 0); got != "" {
		t.Errorf("non-positive limit should truncate to empty, got %q", got)
	}
}

func TestTruncateToTokenLimit_RuneBoundary(t *testing.T) {
	// 50 three-byte runes = 150 bytes. A 10-token cap cuts at byte 40, which
	// lands mid-rune and must back off to byte 39 (13 whole runes).
	text := strings.Repeat("日", 50)

	got := TruncateToTokenLimit(text, 10)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated text is not valid UTF-8: %q", got)
	}
	if want := strings.Repeat("日", 13) + "..."; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestBuildRelevancePack_MultibyteJournalSnippet(t *testing.T) {
	r := &fakeReader{
		journals: []store.JournalEntry{
			{Content: strings.Repeat("日", 60), Mood: 6, CreatedAt: time.Now().Add(-time.Hour)},
		},
	}
	b := NewBuilder(r, nil, testLogger())

	got, err := b.BuildRelevancePack(context.Background(), uuid.New(), "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !utf8.ValidString(got) {
		t.Fatalf("pack contains invalid UTF-8:\n%s", got)
	}
	// 100 bytes lands mid-rune; the snippet backs off to 33 whole runes.
	if !strings.Contains(got, strings.Repeat("日", 33)+"...") {
		t.Errorf("expected rune-safe snippet:\n%s", got)
	}
	if strings.Contains(got, strings.Repeat("日", 34)) {
		t.Errorf("journal snippet not truncated:\n%s", got)
	}
}
