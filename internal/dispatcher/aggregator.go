package dispatcher

import (
	"time"

	"github.com/example/hwnotify/pkg/models"
)

// outstandingTasks loads the user's incomplete tasks under the configured
// aggregation policy.
func (d *Dispatcher) outstandingTasks(userID string, now time.Time) ([]models.HomeworkTask, error) {
	if d.policy == PolicyDueWindow {
		return d.tasks.IncompleteDueBefore(userID, now.Add(d.dueWindow))
	}
	return d.tasks.IncompleteByUser(userID)
}

// distinctSubjects extracts each subject once, in first-seen order.
func distinctSubjects(tasks []models.HomeworkTask) []string {
	seen := make(map[string]bool, len(tasks))
	var subjects []string
	for _, task := range tasks {
		if seen[task.Subject] {
			continue
		}
		seen[task.Subject] = true
		subjects = append(subjects, task.Subject)
	}
	return subjects
}
