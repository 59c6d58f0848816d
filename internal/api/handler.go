package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kurihiro0119/hamster-timesheets/internal/domain"
	apperrors "github.com/kurihiro0119/hamster-timesheets/internal/errors"
	"github.com/kurihiro0119/hamster-timesheets/internal/storage"
	"github.com/kurihiro0119/hamster-timesheets/internal/submitter"
	"github.com/kurihiro0119/hamster-timesheets/internal/timecalc"
)

// Handler handles API requests
type Handler struct {
	submitter *submitter.Submitter
	storage   storage.Storage
	now       func() time.Time
}

// NewHandler creates a new API handler.
// store may be nil, in which case the batch endpoints answer 404.
func NewHandler(sub *submitter.Submitter, store storage.Storage) *Handler {
	return &Handler{
		submitter: sub,
		storage:   store,
		now:       time.Now,
	}
}

// BatchDetail is a journaled batch with its submitted lines
type BatchDetail struct {
	Batch       *domain.SubmissionBatch `json:"batch"`
	Submissions []domain.Submission     `json:"submissions"`
}

// PreviewTimesheet returns the aggregated entries for a window
// GET /api/v1/timesheets/preview
func (h *Handler) PreviewTimesheet(c *gin.Context) {
	timeRange, err := timecalc.ParseWindow(c.Query("start"), c.Query("end"), h.now())
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.submitter.Preview(c.Request.Context(), timeRange)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": nonNil(result.Submissions),
	})
}

// SubmitTimesheet aggregates a window and sends it to the billing service
// POST /api/v1/timesheets/submit
func (h *Handler) SubmitTimesheet(c *gin.Context) {
	timeRange, err := timecalc.ParseWindow(c.Query("start"), c.Query("end"), h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	dryRun, err := strconv.ParseBool(c.DefaultQuery("dry_run", "false"))
	if err != nil {
		respondError(c, apperrors.NewBadRequestError("dry_run must be a boolean"))
		return
	}

	result, err := h.submitter.Run(c.Request.Context(), timeRange, submitter.Options{DryRun: dryRun})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": result,
	})
}

// ListBatches returns the most recent submit runs
// GET /api/v1/batches
func (h *Handler) ListBatches(c *gin.Context) {
	if h.storage == nil {
		respondError(c, apperrors.NewNotFoundError("batch journal"))
		return
	}

	batches, err := h.storage.ListBatches(c.Request.Context(), parseIntQuery(c, "limit", storage.DefaultListLimit))
	if err != nil {
		respondError(c, err)
		return
	}
	if batches == nil {
		batches = []*domain.SubmissionBatch{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data": batches,
	})
}

// GetBatch returns one batch with its submitted lines
// GET /api/v1/batches/:id
func (h *Handler) GetBatch(c *gin.Context) {
	if h.storage == nil {
		respondError(c, apperrors.NewNotFoundError("batch journal"))
		return
	}
	id := c.Param("id")
	ctx := c.Request.Context()

	batch, err := h.storage.GetBatch(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	subs, err := h.storage.GetSubmissions(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": BatchDetail{Batch: batch, Submissions: nonNil(subs)},
	})
}

// HealthCheck returns the health status of the API
// GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

func parseIntQuery(c *gin.Context, key string, defaultValue int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil && v > 0 {
		return v
	}
	return defaultValue
}

func nonNil(subs []domain.Submission) []domain.Submission {
	if subs == nil {
		return []domain.Submission{}
	}
	return subs
}

// respondError sends an error response
func respondError(c *gin.Context, err error) {
	code := apperrors.CodeOf(err)
	status := http.StatusInternalServerError
	switch code {
	case apperrors.ErrCodeNotFound:
		status = http.StatusNotFound
	case apperrors.ErrCodeUnauthorized:
		status = http.StatusUnauthorized
	case apperrors.ErrCodeBadRequest, apperrors.ErrCodeMalformedRecord, apperrors.ErrCodeValidationFailed:
		status = http.StatusBadRequest
	case apperrors.ErrCodeRateLimited:
		status = http.StatusTooManyRequests
	case apperrors.ErrCodeUpstream:
		status = http.StatusBadGateway
	case "":
		code = apperrors.ErrCodeInternal
	}

	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": err.Error(),
		},
	})
}
