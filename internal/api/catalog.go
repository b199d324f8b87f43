// ABOUTME: Handlers for disciplines, topics, tracks and tasks.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harperreed/study/internal/models"
	"github.com/harperreed/study/internal/tracker"
)

type nameRequest struct {
	Name string `json:"name"`
}

type topicRequest struct {
	Name      string `json:"name"`
	SubjectID int64  `json:"discipline_id"`
}

func (h *handler) listSubjects(c *gin.Context) {
	subjects, err := h.svc.Subjects(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	if subjects == nil {
		subjects = []models.Subject{}
	}
	c.JSON(http.StatusOK, subjects)
}

func (h *handler) createSubject(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	subject, err := h.svc.CreateSubject(c.Request.Context(), req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, subject)
}

func (h *handler) updateSubject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	subject, err := h.svc.UpdateSubject(c.Request.Context(), id, req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, subject)
}

func (h *handler) deleteSubject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteSubject(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	message(c, http.StatusOK, "discipline deleted")
}

func (h *handler) listTopics(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	topics, err := h.svc.Topics(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if topics == nil {
		topics = []models.Topic{}
	}
	c.JSON(http.StatusOK, topics)
}

func (h *handler) createTopic(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	topic, err := h.svc.CreateTopic(c.Request.Context(), id, req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, topic)
}

func (h *handler) updateTopic(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req topicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	topic, err := h.svc.UpdateTopic(c.Request.Context(), id, req.Name, req.SubjectID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, topic)
}

func (h *handler) deleteTopic(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteTopic(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	message(c, http.StatusOK, "topic deleted")
}

func (h *handler) listTracks(c *gin.Context) {
	tracks, err := h.svc.Tracks(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	if tracks == nil {
		tracks = []models.Track{}
	}
	c.JSON(http.StatusOK, tracks)
}

func (h *handler) trackTasks(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	tasks, err := h.svc.TrackTasks(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	respondTasks(c, tasks)
}

func (h *handler) listTasks(c *gin.Context) {
	var status *models.TaskStatus
	if raw := c.Query("status"); raw != "" {
		s := models.TaskStatus(raw)
		status = &s
	}
	tasks, err := h.svc.Tasks(c.Request.Context(), status)
	if err != nil {
		fail(c, err)
		return
	}
	respondTasks(c, tasks)
}

func respondTasks(c *gin.Context, tasks []models.Task) {
	if tasks == nil {
		tasks = []models.Task{}
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *handler) getTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	task, err := h.svc.Task(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *handler) createTask(c *gin.Context) {
	var in tracker.TaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	task, err := h.svc.CreateTask(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *handler) updateTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in tracker.TaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	task, err := h.svc.UpdateTask(c.Request.Context(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *handler) completeTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	task, err := h.svc.CompleteTask(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *handler) deleteTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteTask(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	message(c, http.StatusOK, "task deleted")
}
