// ABOUTME: Handlers for sessions, results, reviews, derived views and spreadsheet sync.
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/harperreed/study/internal/importer"
	"github.com/harperreed/study/internal/models"
	"github.com/harperreed/study/internal/storage"
	"github.com/harperreed/study/internal/tracker"
)

// DefaultHistoryDays is the performance history window when ?days is absent.
const DefaultHistoryDays = 30

type resultRequest struct {
	TaskID  int64 `json:"task_id"`
	Correct int   `json:"correct"`
	Total   int   `json:"total"`
}

type reviewStatusRequest struct {
	Status models.ReviewStatus `json:"status"`
}

func (h *handler) dashboardSummary(c *gin.Context) {
	summary, err := h.svc.DashboardSummary(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *handler) saveSession(c *gin.Context) {
	var in tracker.SessionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	session, err := h.svc.SaveSession(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "session saved", "id": session.ID})
}

func (h *handler) sessionHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	history, err := h.svc.SessionHistory(c.Request.Context(), limit)
	if err != nil {
		fail(c, err)
		return
	}
	if history == nil {
		history = []models.StudySessionEntry{}
	}
	c.JSON(http.StatusOK, history)
}

func (h *handler) recordResult(c *gin.Context) {
	var req resultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	result, err := h.svc.RecordResult(c.Request.Context(), req.TaskID, req.Correct, req.Total)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *handler) listReviews(c *gin.Context) {
	var filter storage.ReviewFilter
	var err error
	if filter.From, err = models.ParseDate(c.Query("from")); err != nil {
		badRequest(c, err)
		return
	}
	if filter.To, err = models.ParseDate(c.Query("to")); err != nil {
		badRequest(c, err)
		return
	}
	if raw := c.Query("status"); raw != "" {
		status := models.ReviewStatus(raw)
		filter.Status = &status
	}
	reviews, err := h.svc.Reviews(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *handler) createReview(c *gin.Context) {
	var in tracker.ReviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	review, err := h.svc.CreateReview(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (h *handler) setReviewStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req reviewStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.svc.SetReviewStatus(c.Request.Context(), id, req.Status); err != nil {
		fail(c, err)
		return
	}
	message(c, http.StatusOK, "review updated")
}

func (h *handler) evolution(c *gin.Context) {
	rows, err := h.svc.Evolution(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	if rows == nil {
		rows = []models.EvolutionRow{}
	}
	c.JSON(http.StatusOK, rows)
}

func (h *handler) performanceHistory(c *gin.Context) {
	days := DefaultHistoryDays
	if raw := c.Query("days"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, errors.New("invalid days"))
			return
		}
		days = v
	}
	subjectID, ok := queryInt64(c, "discipline_id")
	if !ok {
		return
	}
	rows, err := h.svc.PerformanceHistory(c.Request.Context(), days, subjectID)
	if err != nil {
		fail(c, err)
		return
	}
	if rows == nil {
		rows = []models.PerformanceHistoryRow{}
	}
	c.JSON(http.StatusOK, rows)
}

// sync imports the uploaded workbook (multipart field "file") or, without an
// upload, the configured spreadsheet.
func (h *handler) sync(c *gin.Context) {
	opts := importer.Options{Location: h.opts.Location}

	var (
		rows []storage.ImportRow
		err  error
	)
	if fh, ferr := c.FormFile("file"); ferr == nil {
		f, oerr := fh.Open()
		if oerr != nil {
			badRequest(c, oerr)
			return
		}
		defer f.Close()
		rows, err = importer.Read(f, opts)
	} else {
		if h.opts.Spreadsheet == "" {
			badRequest(c, errors.New("no spreadsheet uploaded or configured"))
			return
		}
		rows, err = importer.ReadFile(h.opts.Spreadsheet, opts)
	}
	if err != nil {
		h.log.Warn("spreadsheet read failed", "error", err)
		if errors.Is(err, importer.ErrMissingColumn) {
			fail(c, err)
			return
		}
		respondError(c, http.StatusUnprocessableEntity, "unreadable_spreadsheet", err)
		return
	}

	summary, err := h.svc.Import(c.Request.Context(), rows)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "sync complete", "summary": summary})
}
