// ABOUTME: HTTP tests for the API router against a real SQLite store and event pipeline.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/harperreed/study/internal/events"
	"github.com/harperreed/study/internal/evolution"
	"github.com/harperreed/study/internal/importer"
	"github.com/harperreed/study/internal/models"
	"github.com/harperreed/study/internal/rules"
	"github.com/harperreed/study/internal/storage"
	"github.com/harperreed/study/internal/tracker"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, opts Options) http.Handler {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "study.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	dispatcher := events.NewDispatcher(
		evolution.NewEngine(db, time.UTC, nil),
		rules.NewEngine(db, time.UTC, nil),
		nil,
	)
	svc := tracker.New(db, dispatcher, time.UTC, nil)
	return NewRouter(svc, nil, opts)
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env ErrorEnvelope
	decode(t, rec, &env)
	return env.Error.Code
}

func TestHealthcheckAndRequestID(t *testing.T) {
	h := newTestRouter(t, Options{})

	rec := do(t, h, http.MethodGet, "/healthcheck", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-Id"))
}

func TestDisciplineLifecycle(t *testing.T) {
	h := newTestRouter(t, Options{})

	rec := do(t, h, http.MethodPost, "/api/disciplines", map[string]string{"name": "Math"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var subject models.Subject
	decode(t, rec, &subject)

	rec = do(t, h, http.MethodPost, "/api/disciplines", map[string]string{"name": "Math"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", errorCode(t, rec))

	rec = do(t, h, http.MethodPost, "/api/disciplines", map[string]string{"name": " "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, fmt.Sprintf("/api/disciplines/%d/topics", subject.ID), map[string]string{"name": "Fractions"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodGet, fmt.Sprintf("/api/disciplines/%d/topics", subject.ID), nil)
	var topics []models.Topic
	decode(t, rec, &topics)
	require.Len(t, topics, 1)
	assert.Equal(t, "Fractions", topics[0].Name)

	rec = do(t, h, http.MethodPut, fmt.Sprintf("/api/disciplines/%d", subject.ID), map[string]string{"name": "Mathematics"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodDelete, fmt.Sprintf("/api/disciplines/%d", subject.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodDelete, fmt.Sprintf("/api/disciplines/%d", subject.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", errorCode(t, rec))
}

func TestResultUpdatesEvolution(t *testing.T) {
	h := newTestRouter(t, Options{})

	rec := do(t, h, http.MethodPost, "/api/disciplines", map[string]string{"name": "Math"})
	var subject models.Subject
	decode(t, rec, &subject)

	rec = do(t, h, http.MethodPost, "/api/tasks", map[string]interface{}{
		"title":         "Fractions",
		"discipline_id": subject.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var task models.Task
	decode(t, rec, &task)
	assert.Equal(t, models.TaskPending, task.Status)

	rec = do(t, h, http.MethodPost, "/api/results", map[string]interface{}{"task_id": task.ID, "correct": 11, "total": 10})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_input", errorCode(t, rec))

	rec = do(t, h, http.MethodPost, "/api/results", map[string]interface{}{"task_id": task.ID, "correct": 7, "total": 10})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/sessions/save", map[string]interface{}{
		"task_id":          task.ID,
		"start":            time.Now().Add(-time.Hour).UTC().Format(time.RFC3339),
		"duration_minutes": 30,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/evolution", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rows []models.EvolutionRow
	decode(t, rec, &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, 10, rows[0].ExercisesDone)
	assert.Equal(t, 7, rows[0].TotalCorrect)
	assert.InDelta(t, 70.0, rows[0].AveragePerformance, 0.001)
	assert.Equal(t, 30, rows[0].TotalMinutes)

	rec = do(t, h, http.MethodGet, "/api/performance/history?days=7", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var history []models.PerformanceHistoryRow
	decode(t, rec, &history)
	assert.Len(t, history, 1)

	rec = do(t, h, http.MethodGet, "/api/sessions/history", nil)
	var sessions []models.StudySessionEntry
	decode(t, rec, &sessions)
	require.Len(t, sessions, 1)
	assert.Equal(t, "Fractions", sessions[0].TaskTitle)

	rec = do(t, h, http.MethodGet, "/api/dashboard/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary tracker.DashboardSummary
	decode(t, rec, &summary)
	require.Len(t, summary.HoursByDiscipline, 1)
	assert.InDelta(t, 0.5, summary.HoursByDiscipline[0].TotalHours, 0.001)

	rec = do(t, h, http.MethodPost, fmt.Sprintf("/api/tasks/%d/complete", task.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &task)
	assert.Equal(t, models.TaskCompleted, task.Status)
	require.NotNil(t, task.ActualMinutes)
	assert.Equal(t, 30, *task.ActualMinutes)
}

func TestGoalsAndNotifications(t *testing.T) {
	h := newTestRouter(t, Options{})

	rec := do(t, h, http.MethodPost, "/api/disciplines", map[string]string{"name": "Math"})
	var subject models.Subject
	decode(t, rec, &subject)
	rec = do(t, h, http.MethodPost, "/api/tasks", map[string]interface{}{"title": "Drill", "discipline_id": subject.ID})
	var task models.Task
	decode(t, rec, &task)

	today := models.DateOf(time.Now(), time.UTC)
	rec = do(t, h, http.MethodPost, "/api/goals", map[string]interface{}{
		"discipline_id": subject.ID,
		"type":          "exercises_completed",
		"target_value":  5,
		"start_date":    today.AddDays(-1).String(),
		"end_date":      today.AddDays(10).String(),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var goal models.Goal
	decode(t, rec, &goal)

	rec = do(t, h, http.MethodPost, "/api/results", map[string]interface{}{"task_id": task.ID, "correct": 6, "total": 6})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/goals/progress", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var progress []models.GoalProgress
	decode(t, rec, &progress)
	require.Len(t, progress, 1)
	assert.Equal(t, models.GoalCompleted, progress[0].Status)
	assert.InDelta(t, 120.0, progress[0].ProgressPercent, 0.001)

	rec = do(t, h, http.MethodGet, "/api/notifications/unread", nil)
	var unread []models.Notification
	decode(t, rec, &unread)
	require.NotEmpty(t, unread)

	ids := make([]int64, 0, len(unread))
	for _, n := range unread {
		ids = append(ids, n.ID)
	}
	rec = do(t, h, http.MethodPost, "/api/notifications/mark-read", map[string]interface{}{"notification_ids": ids})
	require.Equal(t, http.StatusOK, rec.Code)
	var marked struct {
		Marked int64 `json:"marked"`
	}
	decode(t, rec, &marked)
	assert.Equal(t, int64(len(ids)), marked.Marked)

	rec = do(t, h, http.MethodGet, "/api/notifications/unread", nil)
	decode(t, rec, &unread)
	assert.Empty(t, unread)

	rec = do(t, h, http.MethodPost, "/api/notifications/mark-read", map[string]interface{}{"notification_ids": []int64{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/notifications/check", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var check struct {
		Created []models.Notification `json:"created"`
		Count   int                   `json:"count"`
	}
	decode(t, rec, &check)
	assert.Zero(t, check.Count, "a repeated check creates nothing new")
	assert.NotNil(t, check.Created)
}

func TestBadPathID(t *testing.T) {
	h := newTestRouter(t, Options{})
	rec := do(t, h, http.MethodGet, "/api/tasks/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", errorCode(t, rec))
}

func TestSyncUpload(t *testing.T) {
	h := newTestRouter(t, Options{})

	f := excelize.NewFile()
	defer f.Close()
	_, err := f.NewSheet(importer.SheetName)
	require.NoError(t, err)
	header := []interface{}{importer.ColSubject, importer.ColTaskID, importer.ColTitle, importer.ColTrack,
		importer.ColEffective, importer.ColTotalQuestions, importer.ColTotalCorrect}
	row := []interface{}{"History", 1, "Empires", "Week 1", "1:00", 10, 9}
	require.NoError(t, f.SetSheetRow(importer.SheetName, "A3", &header))
	require.NoError(t, f.SetSheetRow(importer.SheetName, "A4", &row))
	xlsx, err := f.WriteToBuffer()
	require.NoError(t, err)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "plano.xlsx")
	require.NoError(t, err)
	_, err = part.Write(xlsx.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/sync", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Summary storage.ImportSummary `json:"summary"`
	}
	decode(t, rec, &resp)
	assert.Equal(t, 1, resp.Summary.TasksAdded)
	assert.Equal(t, 1, resp.Summary.SessionsAdded)
	assert.Equal(t, 1, resp.Summary.ResultsAdded)

	rec = do(t, h, http.MethodGet, "/api/trilhas", nil)
	var tracks []models.Track
	decode(t, rec, &tracks)
	require.Len(t, tracks, 1)
	assert.Equal(t, models.TrackPending, tracks[0].Status)

	rec = do(t, h, http.MethodGet, "/api/evolution", nil)
	var rows []models.EvolutionRow
	decode(t, rec, &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, 60, rows[0].TotalMinutes)
}

func TestSyncWithoutSpreadsheet(t *testing.T) {
	h := newTestRouter(t, Options{})
	rec := do(t, h, http.MethodPost, "/api/sync", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStaticFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0600))
	h := newTestRouter(t, Options{StaticDir: dir})

	rec := do(t, h, http.MethodGet, "/app.js", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "console.log")

	rec = do(t, h, http.MethodGet, "/goals/42", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "app")

	rec = do(t, h, http.MethodGet, "/api/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newTestRouter(t, Options{CORSOrigins: []string{"http://localhost:5173"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/evolution", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestZeroOptionsAllowAnyOrigin(t *testing.T) {
	h := newTestRouter(t, Options{})

	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

// The web client posts {"ids": [...]} and charts history by accuracy and
// study_time_minutes.
func TestWebClientShapes(t *testing.T) {
	h := newTestRouter(t, Options{})

	rec := do(t, h, http.MethodPost, "/api/disciplines", map[string]string{"name": "Math"})
	var subject models.Subject
	decode(t, rec, &subject)
	rec = do(t, h, http.MethodPost, "/api/tasks", map[string]interface{}{"title": "Drill", "discipline_id": subject.ID})
	var task models.Task
	decode(t, rec, &task)
	rec = do(t, h, http.MethodPost, "/api/results", map[string]interface{}{"task_id": task.ID, "correct": 2, "total": 10})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/performance/history?days=30", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var history []map[string]interface{}
	decode(t, rec, &history)
	require.Len(t, history, 1)
	assert.Contains(t, history[0], "date")
	assert.Contains(t, history[0], "study_time_minutes")
	require.Contains(t, history[0], "accuracy")
	assert.InDelta(t, 20.0, history[0]["accuracy"], 0.001)

	rec = do(t, h, http.MethodGet, "/api/notifications/unread", nil)
	var unread []models.Notification
	decode(t, rec, &unread)
	require.NotEmpty(t, unread)
	ids := make([]int64, 0, len(unread))
	for _, n := range unread {
		ids = append(ids, n.ID)
	}

	rec = do(t, h, http.MethodPost, "/api/notifications/mark-read", map[string]interface{}{"ids": ids})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var marked struct {
		Marked int64 `json:"marked"`
	}
	decode(t, rec, &marked)
	assert.Equal(t, int64(len(ids)), marked.Marked)

	rec = do(t, h, http.MethodGet, "/api/notifications/unread", nil)
	decode(t, rec, &unread)
	assert.Empty(t, unread)

	rec = do(t, h, http.MethodPost, "/api/notifications/mark-read", map[string]interface{}{"ids": []int64{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
