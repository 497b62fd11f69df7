package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campusworks/advisor-backend/internal/logger"
	"github.com/campusworks/advisor-backend/internal/recstore"
	"github.com/campusworks/advisor-backend/internal/services"
)

type RecommendationHandler struct {
	log    *logger.Logger
	recSvc services.RecommendationService
}

func NewRecommendationHandler(log *logger.Logger, recSvc services.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{
		log:    log.With("handler", "RecommendationHandler"),
		recSvc: recSvc,
	}
}

func studentIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_student_id", fmt.Errorf("invalid student id: %w", err))
		return uuid.Nil, false
	}
	return id, true
}

// GET /api/students/:id/recommendations
func (h *RecommendationHandler) Get(c *gin.Context) {
	studentID, ok := studentIDParam(c)
	if !ok {
		return
	}

	set, err := h.recSvc.Get(c.Request.Context(), nil, studentID)
	if err != nil {
		h.log.Error("Get recommendations failed", "error", err, "student_id", studentID)
		RespondError(c, http.StatusInternalServerError, "store_error", err)
		return
	}
	if set == nil {
		RespondError(c, http.StatusNotFound, "not_loaded", errors.New("no recommendations computed yet"))
		return
	}
	RespondOK(c, set)
}

// POST /api/students/:id/recommendations/refresh
func (h *RecommendationHandler) Refresh(c *gin.Context) {
	studentID, ok := studentIDParam(c)
	if !ok {
		return
	}

	set, err := h.recSvc.Refresh(c.Request.Context(), nil, studentID)
	if err != nil {
		if errors.Is(err, services.ErrInsufficientData) {
			RespondError(c, http.StatusUnprocessableEntity, "insufficient_data", err)
			return
		}
		h.log.Error("Refresh recommendations failed", "error", err, "student_id", studentID)
		RespondError(c, http.StatusInternalServerError, "refresh_failed", err)
		return
	}
	RespondOK(c, set)
}

type proposeRequest struct {
	CourseCodes []string `json:"course_codes" binding:"required"`
}

// POST /api/students/:id/recommendations/pending
func (h *RecommendationHandler) Propose(c *gin.Context) {
	studentID, ok := studentIDParam(c)
	if !ok {
		return
	}

	var req proposeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	set, err := h.recSvc.ProposeCourses(c.Request.Context(), nil, studentID, req.CourseCodes)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrConflictingProposal):
			RespondError(c, http.StatusConflict, "conflicting_proposal", err)
		case errors.Is(err, services.ErrInvalidProposal):
			RespondError(c, http.StatusUnprocessableEntity, "invalid_proposal", err)
		case errors.Is(err, services.ErrInsufficientData):
			RespondError(c, http.StatusUnprocessableEntity, "insufficient_data", err)
		default:
			h.log.Error("Propose recommendations failed", "error", err, "student_id", studentID)
			RespondError(c, http.StatusInternalServerError, "propose_failed", err)
		}
		return
	}
	RespondOK(c, set)
}

// POST /api/students/:id/recommendations/pending/apply
func (h *RecommendationHandler) ApplyPending(c *gin.Context) {
	studentID, ok := studentIDParam(c)
	if !ok {
		return
	}

	set, err := h.recSvc.ApplyPendingUpdate(c.Request.Context(), studentID)
	if err != nil {
		if errors.Is(err, recstore.ErrNoPendingUpdate) {
			// Benign: nothing to promote, state unchanged.
			RespondOK(c, gin.H{"applied": false})
			return
		}
		h.log.Error("Apply pending update failed", "error", err, "student_id", studentID)
		RespondError(c, http.StatusInternalServerError, "apply_failed", err)
		return
	}
	RespondOK(c, gin.H{"applied": true, "recommendations": set})
}
