// ABOUTME: Handlers for goals and notifications.
package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/harperreed/study/internal/models"
	"github.com/harperreed/study/internal/tracker"
)

type goalStatusRequest struct {
	Status models.GoalStatus `json:"status"`
}

// markReadRequest accepts the web client's "ids" and the older "notification_ids".
type markReadRequest struct {
	IDs             []int64 `json:"ids"`
	NotificationIDs []int64 `json:"notification_ids"`
}

func (r markReadRequest) all() []int64 {
	return append(append([]int64{}, r.IDs...), r.NotificationIDs...)
}

type checkRequest struct {
	Recompute bool `json:"recompute"`
}

func goalStatusQuery(c *gin.Context) *models.GoalStatus {
	raw := c.Query("status")
	if raw == "" {
		return nil
	}
	status := models.GoalStatus(raw)
	return &status
}

func (h *handler) listGoals(c *gin.Context) {
	goals, err := h.svc.Goals(c.Request.Context(), goalStatusQuery(c))
	if err != nil {
		fail(c, err)
		return
	}
	if goals == nil {
		goals = []models.Goal{}
	}
	c.JSON(http.StatusOK, goals)
}

func (h *handler) goalsProgress(c *gin.Context) {
	progress, err := h.svc.GoalsProgress(c.Request.Context(), goalStatusQuery(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (h *handler) getGoal(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	goal, err := h.svc.Goal(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, goal)
}

func (h *handler) createGoal(c *gin.Context) {
	var in tracker.GoalInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	goal, err := h.svc.CreateGoal(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, goal)
}

func (h *handler) updateGoal(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in tracker.GoalInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	goal, err := h.svc.UpdateGoal(c.Request.Context(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, goal)
}

func (h *handler) setGoalStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req goalStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	goal, err := h.svc.SetGoalStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, goal)
}

func (h *handler) deleteGoal(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteGoal(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	message(c, http.StatusOK, "goal deleted")
}

func (h *handler) listNotifications(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	notifications, err := h.svc.Notifications(c.Request.Context(), limit)
	if err != nil {
		fail(c, err)
		return
	}
	respondNotifications(c, notifications)
}

func (h *handler) unreadNotifications(c *gin.Context) {
	notifications, err := h.svc.UnreadNotifications(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respondNotifications(c, notifications)
}

func respondNotifications(c *gin.Context, notifications []models.Notification) {
	if notifications == nil {
		notifications = []models.Notification{}
	}
	c.JSON(http.StatusOK, notifications)
}

func (h *handler) markNotificationsRead(c *gin.Context) {
	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	marked, err := h.svc.MarkNotificationsRead(c.Request.Context(), req.all())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked": marked})
}

// checkNotifications runs the rules on demand. The body is optional.
func (h *handler) checkNotifications(c *gin.Context) {
	var req checkRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	created, err := h.svc.CheckNotifications(c.Request.Context(), req.Recompute)
	if err != nil {
		h.log.Warn("notification check finished with errors", "error", err)
	}
	if created == nil {
		created = []models.Notification{}
	}
	c.JSON(http.StatusOK, gin.H{"created": created, "count": len(created)})
}
