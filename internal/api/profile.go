package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type upsertProfileRequest struct {
	UserID string            `json:"user_id"`
	Core   map[string]string `json:"core"`
	Values []string          `json:"values"`
}

// upsertProfile handles PUT /api/v1/profile. Core facts merge into the
// existing profile; values replace wholesale.
func (s *Server) upsertProfile(w http.ResponseWriter, r *http.Request) {
	var req upsertProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "user_id must be a valid UUID")
		return
	}
	if len(req.Core) == 0 && len(req.Values) == 0 {
		writeError(w, http.StatusBadRequest, "core or values is required")
		return
	}

	if err := s.db.UpsertProfile(r.Context(), userID, req.Core, req.Values); err != nil {
		s.logger.Error("upsert profile failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store profile")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"user_id": userID.String()})
}

type narrativeRequest struct {
	UserID  string `json:"user_id"`
	Summary string `json:"summary"`
}

// setNarrative handles PUT /api/v1/profile/narrative. The summary is embedded
// best-effort so relevance lookups can use it later.
func (s *Server) setNarrative(w http.ResponseWriter, r *http.Request) {
	var req narrativeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "user_id must be a valid UUID")
		return
	}
	if req.Summary == "" {
		writeError(w, http.StatusBadRequest, "summary is required")
		return
	}

	var embedding []float64
	if s.embedder != nil {
		embedding, err = s.embedder.Embed(r.Context(), req.Summary)
		if err != nil {
			s.logger.Warn("narrative embedding failed", "user_id", userID, "error", err)
			embedding = nil
		}
	}

	if err := s.db.SetNarrative(r.Context(), userID, req.Summary, embedding); err != nil {
		s.logger.Error("set narrative failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store narrative")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"user_id": userID.String()})
}

type journalRequest struct {
	UserID  string `json:"user_id"`
	Content string `json:"content"`
	Mood    int    `json:"mood"`
}

// createJournal handles POST /api/v1/journals
func (s *Server) createJournal(w http.ResponseWriter, r *http.Request) {
	var req journalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "user_id must be a valid UUID")
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}
	if req.Mood < 1 || req.Mood > 10 {
		writeError(w, http.StatusBadRequest, "mood must be between 1 and 10")
		return
	}

	id, err := s.db.CreateJournal(r.Context(), userID, req.Content, req.Mood)
	if err != nil {
		s.logger.Error("create journal failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store journal entry")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id.String()})
}

type careerRequest struct {
	UserID       string  `json:"user_id"`
	Title        string  `json:"title"`
	Company      string  `json:"company"`
	StartedOn    string  `json:"started_on"`
	EndedOn      *string `json:"ended_on,omitempty"`
	Satisfaction int     `json:"satisfaction"`
}

// createCareerEntry handles POST /api/v1/career
func (s *Server) createCareerEntry(w http.ResponseWriter, r *http.Request) {
	var req careerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "user_id must be a valid UUID")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	startedOn, err := time.Parse("2006-01-02", req.StartedOn)
	if err != nil {
		writeError(w, http.StatusBadRequest, "started_on must be YYYY-MM-DD")
		return
	}
	var endedOn *time.Time
	if req.EndedOn != nil {
		t, err := time.Parse("2006-01-02", *req.EndedOn)
		if err != nil {
			writeError(w, http.StatusBadRequest, "ended_on must be YYYY-MM-DD")
			return
		}
		endedOn = &t
	}
	if req.Satisfaction < 0 || req.Satisfaction > 5 {
		writeError(w, http.StatusBadRequest, "satisfaction must be between 0 and 5")
		return
	}

	id, err := s.db.CreateCareerEntry(r.Context(), userID, req.Title, req.Company, startedOn, endedOn, req.Satisfaction)
	if err != nil {
		s.logger.Error("create career entry failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store career entry")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id.String()})
}

// deleteRelationship handles DELETE /api/v1/relationships/{id}
func (s *Server) deleteRelationship(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be a valid UUID")
		return
	}

	if err := s.db.DeleteRelationship(r.Context(), id); err != nil {
		s.logger.Error("delete relationship failed", "relationship_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete relationship")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
