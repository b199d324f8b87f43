// ABOUTME: Review-due pass: one reminder per pending review scheduled today or earlier.
package rules

import (
	"fmt"

	"github.com/harperreed/study/internal/models"
	"github.com/harperreed/study/internal/storage"
)

const titleReviewDue = "Review due"

func (e *Engine) reviewPass(p *pass) {
	pending := models.ReviewPending
	due, err := e.store.ListReviews(p.ctx, storage.ReviewFilter{To: p.today, Status: &pending})
	if err != nil {
		e.isolate(p, "reviews", "due", func() error { return err })
		return
	}
	for i := range due {
		r := due[i]
		e.isolate(p, "review", r.ID, func() error {
			priority := models.PriorityNormal
			when := "today"
			if r.ScheduledFor.Before(p.today) {
				priority = models.PriorityHigh
				when = fmt.Sprintf("since %s", r.ScheduledFor)
			}
			n := models.NewNotification(models.NotificationReview, priority,
				fmt.Sprintf("%s: %s", titleReviewDue, r.TaskTitle),
				fmt.Sprintf("Review of %s (%s) is due %s.", r.TaskTitle, r.SubjectName, when)).
				WithRelated(models.RelatedReview, r.ID)
			return e.emit(p, n, storage.NotificationMatch{TitleContains: titleReviewDue})
		})
	}
}
