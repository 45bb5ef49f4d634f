// Package http exposes the writing coach over a REST API.
package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/application/command"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/assessment"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/curriculum"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// maxBodyBytes caps request bodies. Submissions top out at a few hundred
// words, so this is generous.
const maxBodyBytes = 1 << 20

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSONError(w, http.StatusNotFound, "not_found", "Unknown endpoint")
		return
	}

	info := map[string]interface{}{
		"name":    "Writing Coach API",
		"version": "v1",
		"endpoints": map[string]string{
			"health":   "/health",
			"children": "/api/v1/children",
			"sessions": "/api/v1/children/{id}/sessions",
			"report":   "/api/v1/children/{id}/report",
		},
	}

	writeJSON(w, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"uptime":  s.Uptime().String(),
		"version": "v1",
	})
}

// handleReady handles the readiness probe endpoint (for Kubernetes).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	for _, checker := range s.deps.HealthCheckers {
		if err := checker.Check(r.Context()); err != nil {
			s.logger.Warn("readiness check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": err.Error(),
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// CHILD HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type createChildRequest struct {
	Name             string   `json:"name"`
	Age              int      `json:"age"`
	Interests        []string `json:"interests"`
	ParentPIN        string   `json:"parent_pin"`
	WeeklyLessonGoal int      `json:"weekly_lesson_goal"`
}

type createChildResponse struct {
	ChildID      string            `json:"child_id"`
	Tier         int               `json:"tier"`
	CurriculumID string            `json:"curriculum_id"`
	Weeks        []curriculum.Week `json:"weeks"`
}

// handleCreateChild handles POST /api/v1/children
func (s *Server) handleCreateChild(w http.ResponseWriter, r *http.Request) {
	var req createChildRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.CreateChild.Handle(r.Context(), command.CreateChildCommand{
		Name:             req.Name,
		Age:              req.Age,
		Interests:        req.Interests,
		ParentPIN:        req.ParentPIN,
		WeeklyLessonGoal: req.WeeklyLessonGoal,
	})
	if err != nil {
		s.writeDomainError(w, r, "create child", err)
		return
	}

	writeJSON(w, http.StatusCreated, createChildResponse{
		ChildID:      result.ChildID,
		Tier:         result.Tier,
		CurriculumID: result.CurriculumID,
		Weeks:        result.Weeks,
	})
}

// handleProgressReport handles GET /api/v1/children/{id}/report
func (s *Server) handleProgressReport(w http.ResponseWriter, r *http.Request) {
	childID := r.PathValue("id")
	if childID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Child ID is required")
		return
	}

	report, err := s.deps.ProgressReport.Handle(r.Context(), childID)
	if err != nil {
		s.writeDomainError(w, r, "progress report", err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type startSessionRequest struct {
	LessonID string `json:"lesson_id"`
}

type startSessionResponse struct {
	SessionID    string `json:"session_id"`
	Phase        string `json:"phase"`
	CoachMessage string `json:"coach_message"`
	Resumed      bool   `json:"resumed"`
}

// handleStartSession handles POST /api/v1/children/{id}/sessions
func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	cmd := command.StartSessionCommand{
		ChildID:  r.PathValue("id"),
		LessonID: req.LessonID,
	}
	if err := cmd.Validate(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := s.deps.StartSession.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, r, "start session", err)
		return
	}

	status := http.StatusCreated
	if result.Resumed {
		status = http.StatusOK
	}

	writeJSON(w, status, startSessionResponse{
		SessionID:    result.SessionID,
		Phase:        result.Phase,
		CoachMessage: result.CoachMessage,
		Resumed:      result.Resumed,
	})
}

type processTurnRequest struct {
	Message string `json:"message"`
}

type processTurnResponse struct {
	CoachMessage    string `json:"coach_message"`
	Phase           string `json:"phase"`
	PhaseAdvanced   bool   `json:"phase_advanced"`
	WritingPrompt   string `json:"writing_prompt,omitempty"`
	ExpectsResponse bool   `json:"expects_response"`
	HintsGiven      int    `json:"hints_given"`
}

// handleProcessTurn handles POST /api/v1/sessions/{id}/messages
func (s *Server) handleProcessTurn(w http.ResponseWriter, r *http.Request) {
	var req processTurnRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	cmd := command.ProcessTurnCommand{
		SessionID: r.PathValue("id"),
		Message:   req.Message,
	}
	if err := cmd.Validate(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := s.deps.ProcessTurn.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, r, "process turn", err)
		return
	}

	writeJSON(w, http.StatusOK, processTurnResponse{
		CoachMessage:    result.CoachMessage,
		Phase:           result.Phase,
		PhaseAdvanced:   result.PhaseAdvanced,
		WritingPrompt:   result.WritingPrompt,
		ExpectsResponse: result.ExpectsResponse,
		HintsGiven:      result.HintsGiven,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// ASSESSMENT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type submitAssessmentRequest struct {
	Text         string `json:"text"`
	TimeSpentSec int    `json:"time_spent_sec"`
}

type assessmentResponse struct {
	AssessmentID       string              `json:"assessment_id"`
	SubmissionID       string              `json:"submission_id"`
	Scores             map[string]float64  `json:"scores"`
	OverallScore       float64             `json:"overall_score"`
	Feedback           assessment.Feedback `json:"feedback"`
	WordCount          int                 `json:"word_count"`
	Passing            bool                `json:"passing"`
	LessonStatus       string              `json:"lesson_status"`
	Phase              string              `json:"phase"`
	RevisionsRemaining int                 `json:"revisions_remaining"`
	NewBadges          []string            `json:"new_badges,omitempty"`

	PreviousScores       map[string]float64 `json:"previous_scores,omitempty"`
	PreviousOverallScore float64            `json:"previous_overall_score,omitempty"`
}

// handleSubmitAssessment handles POST /api/v1/sessions/{id}/assessment
func (s *Server) handleSubmitAssessment(w http.ResponseWriter, r *http.Request) {
	var req submitAssessmentRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	cmd := command.SubmitAssessmentCommand{
		SessionID:    r.PathValue("id"),
		Text:         req.Text,
		TimeSpentSec: req.TimeSpentSec,
	}
	if err := cmd.Validate(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := s.deps.SubmitAssessment.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, r, "submit assessment", err)
		return
	}

	if result.Gate != nil {
		s.writeGateRejection(w, result.Gate)
		return
	}

	writeJSON(w, http.StatusOK, assessmentResponse{
		AssessmentID:       result.AssessmentID,
		SubmissionID:       result.SubmissionID,
		Scores:             result.Scores,
		OverallScore:       result.OverallScore,
		Feedback:           result.Feedback,
		WordCount:          result.WordCount,
		Passing:            result.Passing,
		LessonStatus:       result.LessonStatus,
		Phase:              result.Phase,
		RevisionsRemaining: result.RevisionsRemaining,
		NewBadges:          result.NewBadges,
	})
}

// handleReviseAssessment handles POST /api/v1/sessions/{id}/revision
func (s *Server) handleReviseAssessment(w http.ResponseWriter, r *http.Request) {
	var req submitAssessmentRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	cmd := command.ReviseAssessmentCommand{
		SessionID:    r.PathValue("id"),
		Text:         req.Text,
		TimeSpentSec: req.TimeSpentSec,
	}
	if err := cmd.Validate(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := s.deps.ReviseAssessment.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, r, "revise assessment", err)
		return
	}

	if result.Gate != nil {
		s.writeGateRejection(w, result.Gate)
		return
	}

	writeJSON(w, http.StatusOK, assessmentResponse{
		AssessmentID:         result.AssessmentID,
		SubmissionID:         result.SubmissionID,
		Scores:               result.Scores,
		OverallScore:         result.OverallScore,
		Feedback:             result.Feedback,
		WordCount:            result.WordCount,
		Passing:              result.Passing,
		LessonStatus:         result.LessonStatus,
		Phase:                result.Phase,
		RevisionsRemaining:   result.RevisionsRemaining,
		NewBadges:            result.NewBadges,
		PreviousScores:       result.PreviousScores,
		PreviousOverallScore: result.PreviousOverallScore,
	})
}

// writeGateRejection writes a quality gate rejection. The submission was
// understood but not accepted, so 422 with the structured gate result.
func (s *Server) writeGateRejection(w http.ResponseWriter, gate *assessment.GateResult) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnprocessableEntity)

	response := JSONResponse{
		Success: false,
		Data:    gate,
		Error: &APIError{
			Code:    gate.Error,
			Message: gate.Message,
		},
	}

	_ = json.NewEncoder(w).Encode(response)
}

// ══════════════════════════════════════════════════════════════════════════════
// CURRICULUM HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type reviseCurriculumRequest struct {
	ParentPIN   string `json:"parent_pin"`
	Reason      string `json:"reason"`
	Description string `json:"description"`
}

type reviseCurriculumResponse struct {
	CurriculumID string            `json:"curriculum_id"`
	RevisionID   string            `json:"revision_id"`
	WeeksChanged int               `json:"weeks_changed"`
	Weeks        []curriculum.Week `json:"weeks"`
	UsedFallback bool              `json:"used_fallback"`
}

// handleReviseCurriculum handles POST /api/v1/children/{id}/curriculum/revisions
func (s *Server) handleReviseCurriculum(w http.ResponseWriter, r *http.Request) {
	var req reviseCurriculumRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	cmd := command.ReviseCurriculumCommand{
		ChildID:     r.PathValue("id"),
		ParentPIN:   req.ParentPIN,
		Reason:      req.Reason,
		Description: req.Description,
	}
	if err := cmd.Validate(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := s.deps.ReviseCurriculum.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, r, "revise curriculum", err)
		return
	}

	writeJSON(w, http.StatusOK, reviseCurriculumResponse{
		CurriculumID: result.CurriculumID,
		RevisionID:   result.RevisionID,
		WeeksChanged: result.WeeksChanged,
		Weeks:        result.Weeks,
		UsedFallback: result.UsedFallback,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST AND ERROR HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// decodeBody decodes a JSON request body into dst. On failure it writes
// the 400 itself and returns false.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	defer r.Body.Close()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to read request body")
		return false
	}

	if err := json.Unmarshal(body, dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return false
	}

	return true
}

// writeDomainError maps an application error onto an HTTP status.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, command.ErrInvalidPIN):
		writeJSONError(w, http.StatusForbidden, "invalid_pin", "Parent PIN does not match")

	case errors.Is(err, shared.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())

	case errors.Is(err, shared.ErrInvalidState),
		errors.Is(err, shared.ErrStateTransition),
		errors.Is(err, shared.ErrLimitReached),
		errors.Is(err, shared.ErrConcurrentModification):
		writeJSONError(w, http.StatusConflict, "conflict", err.Error())

	case errors.Is(err, shared.ErrValidation),
		errors.Is(err, shared.ErrInvalidID),
		errors.Is(err, shared.ErrInvalidInput),
		errors.Is(err, shared.ErrEmptyValue),
		errors.Is(err, shared.ErrValueOutOfRange),
		errors.Is(err, shared.ErrInvalidEntity):
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())

	case errors.Is(err, shared.ErrServiceUnavailable):
		writeJSONError(w, http.StatusServiceUnavailable, "service_unavailable", "The coach is temporarily unavailable, please try again")

	case errors.Is(err, shared.ErrExternalService),
		errors.Is(err, shared.ErrMalformedResponse):
		writeJSONError(w, http.StatusBadGateway, "upstream_error", "The coach could not complete the request")

	default:
		s.logger.Error("request failed",
			"op", op,
			"error", err,
			"request_id", getRequestID(r.Context()),
		)
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
