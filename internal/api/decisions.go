package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jd-hilo/unreal/internal/events"
	"github.com/jd-hilo/unreal/internal/oracle"
	"github.com/jd-hilo/unreal/internal/pipeline"
	"github.com/jd-hilo/unreal/internal/store"
)

type createDecisionRequest struct {
	UserID           string   `json:"user_id"`
	Question         string   `json:"question"`
	Options          []string `json:"options"`
	ParticipantCount int      `json:"participant_count"`
	Draft            bool     `json:"draft"`
}

type decisionResponse struct {
	ID               string                     `json:"id"`
	UserID           string                     `json:"user_id"`
	Question         string                     `json:"question"`
	Options          []string                   `json:"options"`
	Status           string                     `json:"status"`
	ErrorReason      string                     `json:"error_reason,omitempty"`
	ParticipantCount int                        `json:"participant_count"`
	Prediction       *oracle.DecisionPrediction `json:"prediction,omitempty"`
	CreatedAt        time.Time                  `json:"created_at"`
	PredictedAt      *time.Time                 `json:"predicted_at,omitempty"`
}

func toDecisionResponse(d *store.Decision) decisionResponse {
	return decisionResponse{
		ID:               d.ID.String(),
		UserID:           d.UserID.String(),
		Question:         d.Question,
		Options:          d.Options,
		Status:           d.Status,
		ErrorReason:      d.ErrorReason,
		ParticipantCount: d.ParticipantCount,
		Prediction:       d.Prediction,
		CreatedAt:        d.CreatedAt,
		PredictedAt:      d.PredictedAt,
	}
}

// createDecision handles POST /api/v1/decisions
func (s *Server) createDecision(w http.ResponseWriter, r *http.Request) {
	var req createDecisionRequest
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
	if len(req.Options) < 2 {
		writeError(w, http.StatusBadRequest, "at least two options are required")
		return
	}

	id, err := s.db.CreateDecision(r.Context(), userID, req.Question, req.Options, req.ParticipantCount, req.Draft)
	if err != nil {
		s.logger.Error("create decision failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create decision")
		return
	}

	status := store.StatusPending
	if req.Draft {
		status = store.StatusDraft
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"id":     id.String(),
		"status": status,
	})
}

// getDecision handles GET /api/v1/decisions/{id}
func (s *Server) getDecision(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be a valid UUID")
		return
	}

	d, err := s.db.GetDecision(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "decision not found")
		return
	}
	if err != nil {
		s.logger.Error("get decision failed", "decision_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load decision")
		return
	}

	writeJSON(w, http.StatusOK, toDecisionResponse(d))
}

// predictDecision handles POST /api/v1/decisions/{id}/predict
func (s *Server) predictDecision(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be a valid UUID")
		return
	}

	d, err := s.db.GetDecision(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "decision not found")
		return
	}
	if err != nil {
		s.logger.Error("get decision failed", "decision_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load decision")
		return
	}

	// The runner owns the status transitions, including the move to pending;
	// a 409 here means no row was touched.
	prediction, err := s.runner.Run(r.Context(), d.UserID, d.ID, d.Question, d.Options, d.ParticipantCount)
	if errors.Is(err, pipeline.ErrPredictionInFlight) {
		writeError(w, http.StatusConflict, "a prediction for this decision is already in flight")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("prediction failed: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"decision_id": id.String(),
		"prediction":  prediction,
	})
}

// simulateDecision handles POST /api/v1/decisions/{id}/simulate
func (s *Server) simulateDecision(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be a valid UUID")
		return
	}

	d, err := s.db.GetDecision(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "decision not found")
		return
	}
	if err != nil {
		s.logger.Error("get decision failed", "decision_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load decision")
		return
	}

	corePack, err := s.packs.BuildCorePack(r.Context(), d.UserID)
	if err != nil {
		s.logger.Error("build core pack failed", "user_id", d.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build context")
		return
	}

	scenarios, err := s.oracle.SimulateOptions(r.Context(), corePack, d.Question, d.Options)
	if err != nil {
		s.logger.Error("simulation failed", "decision_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("simulation failed: %v", err))
		return
	}

	simID, err := s.db.CreateSimulation(r.Context(), id, scenarios)
	if err != nil {
		s.logger.Error("store simulation failed", "decision_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store simulation")
		return
	}

	s.publish(events.SubjectSimulationCompleted, map[string]string{
		"simulation_id": simID.String(),
		"decision_id":   id.String(),
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"id":        simID.String(),
		"scenarios": scenarios,
	})
}

type timelineRequest struct {
	Option string `json:"option"`
}

// simulateTimeline handles POST /api/v1/decisions/{id}/timeline
func (s *Server) simulateTimeline(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be a valid UUID")
		return
	}

	var req timelineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	d, err := s.db.GetDecision(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "decision not found")
		return
	}
	if err != nil {
		s.logger.Error("get decision failed", "decision_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load decision")
		return
	}

	if !containsOption(d.Options, req.Option) {
		writeError(w, http.StatusBadRequest, "option must be one of the decision's options")
		return
	}

	corePack, err := s.packs.BuildCorePack(r.Context(), d.UserID)
	if err != nil {
		s.logger.Error("build core pack failed", "user_id", d.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build context")
		return
	}

	timeline, err := s.oracle.SimulateTimeline(r.Context(), corePack, d.Question, req.Option)
	if err != nil {
		s.logger.Error("timeline simulation failed", "decision_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("timeline simulation failed: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, timeline)
}

func containsOption(options []string, option string) bool {
	for _, o := range options {
		if o == option {
			return true
		}
	}
	return false
}
