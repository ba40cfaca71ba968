// Package pack assembles the plain-text context documents fed to the oracle:
// a durable core pack describing who the user is, and a per-question
// relevance pack describing what matters right now.
package pack

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jd-hilo/unreal/internal/store"
)

// Reader is the slice of the persistence collaborator the builder needs.
type Reader interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*store.Profile, error)
	GetRelationships(ctx context.Context, userID uuid.UUID) ([]store.Relationship, error)
	GetCareerEntries(ctx context.Context, userID uuid.UUID) ([]store.CareerEntry, error)
	GetRecentDecisions(ctx context.Context, userID uuid.UUID, limit int) ([]store.Decision, error)
	SimilarDecisions(ctx context.Context, userID uuid.UUID, queryEmbedding []float64, limit int) ([]store.Decision, error)
	GetJournals(ctx context.Context, userID uuid.UUID, limit int) ([]store.JournalEntry, error)
}

// Embedder computes text embeddings. Embedding is best-effort throughout the
// builder: a nil Embedder or a failed call degrades to recency ordering.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

type Builder struct {
	store    Reader
	embedder Embedder
	logger   *slog.Logger
}

func NewBuilder(r Reader, e Embedder, logger *slog.Logger) *Builder {
	return &Builder{store: r, embedder: e, logger: logger}
}
