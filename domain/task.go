package domain

import "time"

// TaskStatus is the workflow state of a task.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "TODO"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskInReview   TaskStatus = "IN_REVIEW"
	// TaskReview is an alternate backend spelling of TaskInReview.
	TaskReview    TaskStatus = "REVIEW"
	TaskBlocked   TaskStatus = "BLOCKED"
	TaskDone      TaskStatus = "DONE"
	TaskCancelled TaskStatus = "CANCELLED"
)

// Task is a single board item. Subtasks carry a ParentTaskID.
type Task struct {
	ID                   int64         `json:"id"`
	Title                string        `json:"title"`
	Description          string        `json:"description,omitempty"`
	Status               TaskStatus    `json:"status"`
	Priority             string        `json:"priority,omitempty"`
	ProcessID            int64         `json:"processId,omitempty"`
	ProjectID            int64         `json:"projectId,omitempty"`
	ParentTaskID         *int64        `json:"parentTaskId,omitempty"`
	Assignees            []UserSummary `json:"assignees,omitempty"`
	DueDate              *time.Time    `json:"dueDate,omitempty"`
	StartDate            *time.Time    `json:"startDate,omitempty"`
	CompletedAt          *time.Time    `json:"completedAt,omitempty"`
	Position             int           `json:"position"`
	Tags                 []string      `json:"tags,omitempty"`
	CompletionPercentage *int          `json:"completionPercentage,omitempty"`
	SubtaskCount         int           `json:"subtaskCount,omitempty"`
	IsOverdue            bool          `json:"isOverdue,omitempty"`
}

// TopLevel reports whether t is not a subtask.
func (t Task) TopLevel() bool {
	return t.ParentTaskID == nil
}

// TaskInput is the body of task create and update requests.
type TaskInput struct {
	Title          string     `json:"title,omitempty"`
	Description    string     `json:"description,omitempty"`
	Status         TaskStatus `json:"status,omitempty"`
	Priority       string     `json:"priority,omitempty"`
	ProcessID      int64      `json:"processId,omitempty"`
	AssigneeIDs    []int64    `json:"assigneeIds,omitempty"`
	DueDate        *time.Time `json:"dueDate,omitempty"`
	StartDate      *time.Time `json:"startDate,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
	EstimatedHours *int       `json:"estimatedHours,omitempty"`
	ParentTaskID   *int64     `json:"parentTaskId,omitempty"`
}

// TaskMove relocates a task to another column.
type TaskMove struct {
	TargetProcessID int64 `json:"targetProcessId" validate:"required"`
	Position        int   `json:"position"`
}
