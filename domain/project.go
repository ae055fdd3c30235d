package domain

import "time"

// ProjectStatus is the status label of a project. Backend spellings outside
// the known set are carried through unchanged.
type ProjectStatus string

const (
	ProjectActive     ProjectStatus = "ACTIVE"
	ProjectOnHold     ProjectStatus = "ON_HOLD"
	ProjectCompleted  ProjectStatus = "COMPLETED"
	ProjectDone       ProjectStatus = "DONE"
	ProjectCancelled  ProjectStatus = "CANCELLED"
	ProjectArchived   ProjectStatus = "ARCHIVED"
	ProjectInProgress ProjectStatus = "IN_PROGRESS"
)

// Project is the upstream project detail, including its Kanban columns.
type Project struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Color       string        `json:"color,omitempty"`
	Status      ProjectStatus `json:"status,omitempty"`
	Deadline    *time.Time    `json:"deadline,omitempty"`
	Archived    bool          `json:"archived"`
	CreatedBy   *UserSummary  `json:"createdBy,omitempty"`
	Members     []UserSummary `json:"members,omitempty"`
	Processes   []Process     `json:"processes,omitempty"`
	CreatedAt   *time.Time    `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time    `json:"updatedAt,omitempty"`
}

// Process is a Kanban column grouping tasks within a project.
type Process struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Position    int    `json:"position"`
	TaskLimit   *int   `json:"taskLimit,omitempty"`
	IsCompleted bool   `json:"isCompleted,omitempty"`
	ProjectID   int64  `json:"projectId,omitempty"`
	Tasks       []Task `json:"tasks,omitempty"`
}

// ProjectView is a project decorated with its derived display fields.
type ProjectView struct {
	Project
	Progress   int           `json:"progress"`
	ViewStatus ProjectStatus `json:"viewStatus"`
}

// NewProjectView derives the display fields of p for viewerID.
func NewProjectView(p Project, viewerID int64) ProjectView {
	v := DeriveProjectView(p, viewerID)
	return ProjectView{Project: p, Progress: v.Progress, ViewStatus: v.ViewStatus}
}

// ProjectInput is the body of project create and update requests.
type ProjectInput struct {
	Name        string        `json:"name,omitempty" validate:"required,max=100"`
	Description string        `json:"description,omitempty"`
	Color       string        `json:"color,omitempty"`
	Deadline    *time.Time    `json:"deadline,omitempty"`
	Status      ProjectStatus `json:"status,omitempty"`
	MemberIDs   []int64       `json:"memberIds,omitempty"`
}

// ProcessInput is the body of process create and update requests.
type ProcessInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Position    *int   `json:"position,omitempty"`
	TaskLimit   *int   `json:"taskLimit,omitempty"`
	IsCompleted *bool  `json:"isCompleted,omitempty"`
}
