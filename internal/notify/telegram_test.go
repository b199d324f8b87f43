// ABOUTME: Tests for the Telegram sink against a fake Bot API server.
package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/study/internal/models"
)

func fakeBotAPI(t *testing.T) (*httptest.Server, func() []map[string]string) {
	t.Helper()
	var (
		mu   sync.Mutex
		sent []map[string]string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"study","username":"study_bot"}}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			assert.NoError(t, r.ParseForm())
			mu.Lock()
			sent = append(sent, map[string]string{
				"chat_id":    r.PostForm.Get("chat_id"),
				"text":       r.PostForm.Get("text"),
				"parse_mode": r.PostForm.Get("parse_mode"),
			})
			mu.Unlock()
			_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"}}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, func() []map[string]string {
		mu.Lock()
		defer mu.Unlock()
		return append([]map[string]string(nil), sent...)
	}
}

func TestTelegramDeliver(t *testing.T) {
	srv, sent := fakeBotAPI(t)

	tg, err := NewTelegramWithEndpoint("token", 42, srv.URL+"/bot%s/%s")
	require.NoError(t, err)

	n := models.NewNotification(models.NotificationPerformance, models.PriorityHigh,
		"Needs attention: Math & Logic", "Average 55.0% <60%")
	require.NoError(t, tg.Deliver(context.Background(), *n))

	msgs := sent()
	require.Len(t, msgs, 1)
	assert.Equal(t, "42", msgs[0]["chat_id"])
	assert.Equal(t, "HTML", msgs[0]["parse_mode"])
	assert.Contains(t, msgs[0]["text"], "<b>Needs attention: Math &amp; Logic</b>")
	assert.Contains(t, msgs[0]["text"], "&lt;60%")
}

func TestFormatHTMLIcons(t *testing.T) {
	tests := []struct {
		kind     models.NotificationKind
		priority models.Priority
		want     string
	}{
		{models.NotificationAchievement, models.PriorityNormal, "🏆"},
		{models.NotificationGoal, models.PriorityNormal, "🎯"},
		{models.NotificationReview, models.PriorityLow, "📚"},
		{models.NotificationGoal, models.PriorityHigh, "⚠️"},
	}
	for _, tt := range tests {
		n := models.NewNotification(tt.kind, tt.priority, "t", "m")
		assert.True(t, strings.HasPrefix(FormatHTML(*n), tt.want), "%s/%s", tt.kind, tt.priority)
	}
}

func TestSinkFunc(t *testing.T) {
	var got string
	var s Sink = SinkFunc(func(_ context.Context, n models.Notification) error {
		got = n.Title
		return nil
	})
	require.NoError(t, s.Deliver(context.Background(), models.Notification{Title: "hello"}))
	assert.Equal(t, "hello", got)
}
