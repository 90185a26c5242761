package entities

import (
	"strings"
	"time"
)

type TaskStatus string
type Priority string

const (
	TaskStatusNotStarted      TaskStatus = "not_started"
	TaskStatusInProgress      TaskStatus = "in_progress"
	TaskStatusWaitingOnClient TaskStatus = "waiting_on_client"
	TaskStatusCompleted       TaskStatus = "completed"

	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type Task struct {
	TaskID      string
	ClientID    string
	AssigneeID  string
	Title       string
	Description string
	Status      TaskStatus
	Priority    Priority
	DueDate     time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// WithStatus applies a status change. CompletedAt is set if and only if the
// new status is Completed. Any state is reachable from any other.
func (t Task) WithStatus(status TaskStatus, now time.Time) Task {
	t.Status = status
	if status == TaskStatusCompleted {
		completedAt := now.UTC()
		t.CompletedAt = &completedAt
	} else {
		t.CompletedAt = nil
	}
	t.UpdatedAt = now.UTC()
	return t
}

func (t Task) AssignedTo(employeeID string) bool {
	employeeID = strings.TrimSpace(employeeID)
	return employeeID != "" && t.AssigneeID == employeeID
}

// IsOpen matches the dashboard definition of open work.
func (t Task) IsOpen() bool {
	return t.Status == TaskStatusNotStarted || t.Status == TaskStatusInProgress
}

// ParseTaskStatus accepts canonical values and the labels shown in the office UI.
func ParseTaskStatus(raw string) (TaskStatus, bool) {
	switch normalizeLabel(raw) {
	case "not_started":
		return TaskStatusNotStarted, true
	case "in_progress":
		return TaskStatusInProgress, true
	case "waiting_on_client", "waiting_for_client":
		return TaskStatusWaitingOnClient, true
	case "completed":
		return TaskStatusCompleted, true
	default:
		return "", false
	}
}

func ParsePriority(raw string) (Priority, bool) {
	switch normalizeLabel(raw) {
	case "low":
		return PriorityLow, true
	case "", "medium":
		return PriorityMedium, true
	case "high":
		return PriorityHigh, true
	default:
		return "", false
	}
}

func normalizeLabel(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	value = strings.ReplaceAll(value, "-", "_")
	return strings.ReplaceAll(value, " ", "_")
}
