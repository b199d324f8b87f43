// ABOUTME: Tests for the event dispatcher ordering, recompute skipping and sink delivery.
package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/study/internal/evolution"
	"github.com/harperreed/study/internal/models"
	"github.com/harperreed/study/internal/notify"
)

type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, s)
}

type fakeEngine struct {
	rec *recorder
	err error
}

func (f *fakeEngine) Recompute(context.Context) (*evolution.Snapshot, error) {
	f.rec.add("recompute")
	if f.err != nil {
		return nil, f.err
	}
	return &evolution.Snapshot{Facts: &models.Facts{}}, nil
}

type fakeRules struct {
	rec     *recorder
	created []models.Notification
	err     error
	facts   []*models.Facts
}

func (f *fakeRules) Evaluate(_ context.Context, ev Event, facts *models.Facts) ([]models.Notification, error) {
	f.rec.add("evaluate:" + string(ev.Kind()))
	f.facts = append(f.facts, facts)
	return f.created, f.err
}

func TestPublishOrder(t *testing.T) {
	rec := &recorder{}
	rules := &fakeRules{rec: rec, created: []models.Notification{{ID: 1, Title: "hi"}}}
	var delivered []string
	sink := notify.SinkFunc(func(_ context.Context, n models.Notification) error {
		rec.add("deliver:" + n.Title)
		delivered = append(delivered, n.Title)
		return nil
	})

	d := NewDispatcher(&fakeEngine{rec: rec}, rules, nil, sink)
	out, err := d.Publish(context.Background(), ResultRecorded{})
	require.NoError(t, err)

	assert.Equal(t, []string{"recompute", "evaluate:result_recorded", "deliver:hi"}, rec.calls)
	assert.NotNil(t, out.Snapshot)
	assert.Len(t, out.Notifications, 1)
	require.Len(t, rules.facts, 1)
	assert.NotNil(t, rules.facts[0], "evaluation should reuse the recomputed facts")
}

func TestCheckWithoutRecompute(t *testing.T) {
	rec := &recorder{}
	rules := &fakeRules{rec: rec}
	d := NewDispatcher(&fakeEngine{rec: rec}, rules, nil)

	_, err := d.Publish(context.Background(), CheckRequested{Reason: "manual"})
	require.NoError(t, err)
	assert.Equal(t, []string{"evaluate:check_requested"}, rec.calls)
	assert.Nil(t, rules.facts[0])

	rec.calls = nil
	_, err = d.Publish(context.Background(), CheckRequested{Reason: "startup", Recompute: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"recompute", "evaluate:check_requested"}, rec.calls)
}

func TestRecomputeFailureStopsPass(t *testing.T) {
	rec := &recorder{}
	d := NewDispatcher(&fakeEngine{rec: rec, err: errors.New("locked")}, &fakeRules{rec: rec}, nil)

	out, err := d.Publish(context.Background(), SessionSaved{})
	require.Error(t, err)
	assert.Nil(t, out)
	assert.Equal(t, []string{"recompute"}, rec.calls)
}

func TestEvaluationErrorsStillDeliver(t *testing.T) {
	rec := &recorder{}
	rules := &fakeRules{rec: rec, created: []models.Notification{{ID: 3, Title: "kept"}}, err: errors.New("goal 9: bad")}
	failing := notify.SinkFunc(func(context.Context, models.Notification) error { return errors.New("offline") })
	var got []int64
	ok := notify.SinkFunc(func(_ context.Context, n models.Notification) error {
		got = append(got, n.ID)
		return nil
	})

	d := NewDispatcher(&fakeEngine{rec: rec}, rules, nil, failing, ok)
	out, err := d.Publish(context.Background(), GoalChanged{})
	require.Error(t, err)
	require.NotNil(t, out)
	assert.Len(t, out.Notifications, 1)
	assert.Equal(t, []int64{3}, got, "one failing sink must not block the others")
}

func TestPublishSerializes(t *testing.T) {
	rec := &recorder{}
	d := NewDispatcher(&fakeEngine{rec: rec}, &fakeRules{rec: rec}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = d.Publish(context.Background(), TaskCompleted{})
		}()
	}
	wg.Wait()

	require.Len(t, rec.calls, 16)
	for i := 0; i < len(rec.calls); i += 2 {
		assert.Equal(t, "recompute", rec.calls[i])
		assert.Equal(t, "evaluate:task_completed", rec.calls[i+1])
	}
}
