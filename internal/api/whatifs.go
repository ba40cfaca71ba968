package api

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/jd-hilo/unreal/internal/events"
	"github.com/jd-hilo/unreal/internal/pack"
)

type whatIfRequest struct {
	UserID   string `json:"user_id"`
	Question string `json:"question"`
}

// createWhatIf handles POST /api/v1/whatifs
func (s *Server) createWhatIf(w http.ResponseWriter, r *http.Request) {
	var req whatIfRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "user_id must be a valid UUID")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	corePack, err := s.packs.BuildCorePack(r.Context(), userID)
	if err != nil {
		s.logger.Error("build core pack failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build context")
		return
	}
	relevancePack, err := s.packs.BuildRelevancePack(r.Context(), userID, req.Question)
	if err != nil {
		s.logger.Error("build relevance pack failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build context")
		return
	}

	// Same caps the prediction pipeline applies.
	corePack = pack.TruncateToTokenLimit(corePack, pack.CorePackTokenLimit)
	relevancePack = pack.TruncateToTokenLimit(relevancePack, pack.RelevancePackTokenLimit)

	result, err := s.oracle.RunWhatIf(r.Context(), corePack, relevancePack, req.Question)
	if err != nil {
		s.logger.Error("what-if failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("what-if failed: %v", err))
		return
	}

	id, err := s.db.CreateWhatIf(r.Context(), userID, req.Question, result)
	if err != nil {
		s.logger.Error("store what-if failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store what-if")
		return
	}

	s.publish(events.SubjectWhatIfCompleted, map[string]string{
		"whatif_id": id.String(),
		"user_id":   userID.String(),
	})

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":      id.String(),
		"metrics": result.Metrics,
		"summary": result.Summary,
	})
}

type extractRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

// extractRelationships handles POST /api/v1/relationships/extract. The oracle
// pulls structured relationships out of free text and each one is persisted.
func (s *Server) extractRelationships(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "user_id must be a valid UUID")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	extracted, err := s.oracle.ExtractRelationships(r.Context(), req.Text)
	if err != nil {
		s.logger.Error("relationship extraction failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("extraction failed: %v", err))
		return
	}

	stored := 0
	for _, rel := range extracted {
		if rel.Name == "" {
			continue
		}
		if _, err := s.db.CreateRelationship(r.Context(), userID, rel.Name, rel.RelType, rel.YearsKnown, rel.ContactFrequency, rel.Influence); err != nil {
			s.logger.Error("store relationship failed", "user_id", userID, "name", rel.Name, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to store relationships")
			return
		}
		stored++
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"relationships": extracted,
		"count":         stored,
	})
}
