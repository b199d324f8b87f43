// ABOUTME: Performance pass over the last 30 days of results, per subject and per topic.
package rules

import (
	"fmt"
	"sort"

	"github.com/harperreed/study/internal/models"
	"github.com/harperreed/study/internal/storage"
)

const (
	titleNeedsAttention = "Needs attention"
	titleExcellent      = "Excellent performance"
	titleTopicReview    = "Topic needs review"
)

type average struct {
	sum   float64
	count int
}

func (a *average) add(v float64) { a.sum += v; a.count++ }

func (a average) value() float64 {
	if a.count == 0 {
		return 0
	}
	return a.sum / float64(a.count)
}

func (e *Engine) performancePass(p *pass) {
	since := p.now.Add(-PerformanceWindow)
	tasks := p.facts.TaskIndex()

	subjects := make(map[int64]*average)
	topicsOfTask := make(map[int64][]int64)
	for _, l := range p.facts.TaskTopics {
		topicsOfTask[l.TaskID] = append(topicsOfTask[l.TaskID], l.TopicID)
	}
	topics := make(map[int64]*average)

	for _, r := range p.facts.Results {
		if r.CreatedAt.Before(since) {
			continue
		}
		t, ok := tasks[r.TaskID]
		if !ok {
			continue
		}
		if subjects[t.SubjectID] == nil {
			subjects[t.SubjectID] = &average{}
		}
		subjects[t.SubjectID].add(r.Percent)
		for _, topicID := range topicsOfTask[t.ID] {
			if topics[topicID] == nil {
				topics[topicID] = &average{}
			}
			topics[topicID].add(r.Percent)
		}
	}

	names := p.facts.SubjectNames()
	for _, id := range sortedKeys(subjects) {
		avg := subjects[id].value()
		e.isolate(p, "subject", id, func() error {
			return e.checkSubject(p, id, names[id], avg)
		})
	}

	topicNames := make(map[int64]string, len(p.facts.Topics))
	for _, t := range p.facts.Topics {
		topicNames[t.ID] = t.Name
	}
	for _, id := range sortedKeys(topics) {
		avg := topics[id]
		if avg.count < TopicMinResults || avg.value() >= LowAverage {
			continue
		}
		e.isolate(p, "topic", id, func() error {
			n := models.NewNotification(models.NotificationPerformance, models.PriorityHigh,
				fmt.Sprintf("%s: %s", titleTopicReview, topicNames[id]),
				fmt.Sprintf("Average of %.1f%% over %d results in the last 30 days. Schedule a review.",
					avg.value(), avg.count)).
				WithRelated(models.RelatedTopic, id)
			return e.emit(p, n, storage.NotificationMatch{
				TitleContains: titleTopicReview,
				Since:         within(p, AlertDedupWindow),
			})
		})
	}
}

func (e *Engine) checkSubject(p *pass, id int64, name string, avg float64) error {
	var n *models.Notification
	var title string
	switch {
	case avg < LowAverage:
		title = titleNeedsAttention
		n = models.NewNotification(models.NotificationPerformance, models.PriorityHigh,
			fmt.Sprintf("%s: %s", title, name),
			fmt.Sprintf("Average performance in %s over the last 30 days is %.1f%%.", name, avg))
	case avg > HighAverage:
		title = titleExcellent
		n = models.NewNotification(models.NotificationPerformance, models.PriorityNormal,
			fmt.Sprintf("%s: %s", title, name),
			fmt.Sprintf("Average performance in %s over the last 30 days is %.1f%%. Keep it up!", name, avg))
	default:
		return nil
	}
	n.WithRelated(models.RelatedSubject, id)
	return e.emit(p, n, storage.NotificationMatch{
		TitleContains: title,
		Since:         within(p, AlertDedupWindow),
	})
}

func sortedKeys(m map[int64]*average) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
