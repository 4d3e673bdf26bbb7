package database

import (
	"fmt"
	"time"

	"github.com/example/hwnotify/pkg/models"
)

// TaskRepository handles database operations for homework tasks
type TaskRepository struct{}

// NewTaskRepository creates a new repository instance
func NewTaskRepository() *TaskRepository {
	return &TaskRepository{}
}

const taskColumns = `id, user_id, subject, title, completed, due_at, created_at, updated_at`

// Create inserts a new task
func (r *TaskRepository) Create(task *models.HomeworkTask) error {
	query := DB.Rebind(`
		INSERT INTO tasks (id, user_id, subject, title, completed, due_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	_, err := DB.Exec(query, task.ID, task.UserID, task.Subject, task.Title, task.Completed, task.DueAt)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// IncompleteByUser returns all of a user's outstanding tasks regardless of due
// date. This is the default aggregation: the reminder is "what's still open".
func (r *TaskRepository) IncompleteByUser(userID string) ([]models.HomeworkTask, error) {
	query := DB.Rebind("SELECT " + taskColumns + " FROM tasks WHERE user_id = ? AND completed = FALSE")
	return r.queryTasks(query, userID)
}

// IncompleteDueBefore returns a user's outstanding tasks due before the given
// instant. Used by the due-window aggregation policy.
func (r *TaskRepository) IncompleteDueBefore(userID string, until time.Time) ([]models.HomeworkTask, error) {
	query := DB.Rebind("SELECT " + taskColumns + " FROM tasks WHERE user_id = ? AND completed = FALSE AND due_at <= ?")
	return r.queryTasks(query, userID, until)
}

// SetCompleted flips the completion flag for a task
func (r *TaskRepository) SetCompleted(userID, taskID string, completed bool) error {
	query := DB.Rebind("UPDATE tasks SET completed = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND user_id = ?")
	if _, err := DB.Exec(query, completed, taskID, userID); err != nil {
		return fmt.Errorf("failed to update task completion: %w", err)
	}
	return nil
}

// Delete removes a task
func (r *TaskRepository) Delete(userID, taskID string) error {
	query := DB.Rebind("DELETE FROM tasks WHERE id = ? AND user_id = ?")
	_, err := DB.Exec(query, taskID, userID)
	return err
}

func (r *TaskRepository) queryTasks(query string, args ...interface{}) ([]models.HomeworkTask, error) {
	rows, err := DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.HomeworkTask
	for rows.Next() {
		var task models.HomeworkTask
		err := rows.Scan(
			&task.ID,
			&task.UserID,
			&task.Subject,
			&task.Title,
			&task.Completed,
			&task.DueAt,
			&task.CreatedAt,
			&task.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}
