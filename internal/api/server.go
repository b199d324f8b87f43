// ABOUTME: gin router exposing the tracker service under /api.
// ABOUTME: Optionally serves the web client build from a static directory.
package api

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harperreed/study/internal/logging"
	"github.com/harperreed/study/internal/tracker"
)

// Options configures the router.
type Options struct {
	CORSOrigins []string
	// StaticDir, when set, is served for every non-API path with index.html fallback.
	StaticDir string
	// Spreadsheet is the workbook read by POST /api/sync when no file is uploaded.
	Spreadsheet string
	// Location interprets spreadsheet dates.
	Location *time.Location
}

type handler struct {
	svc  *tracker.Service
	log  *logging.Logger
	opts Options
}

// NewRouter builds the HTTP engine.
func NewRouter(svc *tracker.Service, log *logging.Logger, opts Options) *gin.Engine {
	if log == nil {
		log = logging.Nop()
	}
	h := &handler{svc: svc, log: log, opts: opts}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(CORS(opts.CORSOrigins))

	r.GET("/healthcheck", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	api := r.Group("/api")
	{
		api.GET("/dashboard/summary", h.dashboardSummary)

		api.GET("/trilhas", h.listTracks)
		api.GET("/trilhas/:id/tasks", h.trackTasks)

		api.GET("/disciplines", h.listSubjects)
		api.POST("/disciplines", h.createSubject)
		api.PUT("/disciplines/:id", h.updateSubject)
		api.DELETE("/disciplines/:id", h.deleteSubject)
		api.GET("/disciplines/:id/topics", h.listTopics)
		api.POST("/disciplines/:id/topics", h.createTopic)
		api.PUT("/topics/:id", h.updateTopic)
		api.DELETE("/topics/:id", h.deleteTopic)

		api.GET("/tasks", h.listTasks)
		api.POST("/tasks", h.createTask)
		api.GET("/tasks/:id", h.getTask)
		api.PUT("/tasks/:id", h.updateTask)
		api.DELETE("/tasks/:id", h.deleteTask)
		api.POST("/tasks/:id/complete", h.completeTask)

		api.POST("/sessions/save", h.saveSession)
		api.GET("/sessions/history", h.sessionHistory)
		api.POST("/results", h.recordResult)

		api.GET("/reviews", h.listReviews)
		api.POST("/reviews", h.createReview)
		api.PUT("/reviews/:id", h.setReviewStatus)

		api.GET("/evolution", h.evolution)
		api.GET("/performance/history", h.performanceHistory)

		api.GET("/goals", h.listGoals)
		api.POST("/goals", h.createGoal)
		api.GET("/goals/progress", h.goalsProgress)
		api.GET("/goals/:id", h.getGoal)
		api.PUT("/goals/:id", h.updateGoal)
		api.PUT("/goals/:id/status", h.setGoalStatus)
		api.DELETE("/goals/:id", h.deleteGoal)

		api.GET("/notifications", h.listNotifications)
		api.GET("/notifications/unread", h.unreadNotifications)
		api.POST("/notifications/mark-read", h.markNotificationsRead)
		api.POST("/notifications/check", h.checkNotifications)

		api.POST("/sync", h.sync)
	}

	if opts.StaticDir != "" {
		r.NoRoute(staticFallback(opts.StaticDir))
	}
	return r
}

// staticFallback serves files from dir, falling back to index.html so client-side
// routes resolve. Unknown /api paths still get a JSON 404.
func staticFallback(dir string) gin.HandlerFunc {
	index := filepath.Join(dir, "index.html")
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") || c.Request.Method != http.MethodGet {
			respondError(c, http.StatusNotFound, "not_found", errors.New("route not found"))
			return
		}
		rel := filepath.FromSlash(filepath.Clean("/" + c.Request.URL.Path))
		path := filepath.Join(dir, rel)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			c.File(path)
			return
		}
		c.File(index)
	}
}
