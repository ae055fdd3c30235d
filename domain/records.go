package domain

import "time"

// Comment is a note left on a task.
type Comment struct {
	ID        int64        `json:"id"`
	TaskID    int64        `json:"taskId,omitempty"`
	Content   string       `json:"content"`
	Author    *UserSummary `json:"author,omitempty"`
	CreatedAt *time.Time   `json:"createdAt,omitempty"`
	UpdatedAt *time.Time   `json:"updatedAt,omitempty"`
}

// Attachment is a file attached to a task.
type Attachment struct {
	ID          int64        `json:"id"`
	TaskID      int64        `json:"taskId,omitempty"`
	FileName    string       `json:"fileName"`
	ContentType string       `json:"contentType,omitempty"`
	FileSize    int64        `json:"fileSize,omitempty"`
	Description string       `json:"description,omitempty"`
	UploadedBy  *UserSummary `json:"uploadedBy,omitempty"`
	CreatedAt   *time.Time   `json:"createdAt,omitempty"`
}

// ChatMessage is a message in a project's chat.
type ChatMessage struct {
	ID        int64              `json:"id"`
	ProjectID int64              `json:"projectId,omitempty"`
	Content   string             `json:"content"`
	Sender    *UserSummary       `json:"sender,omitempty"`
	ParentID  *int64             `json:"parentMessageId,omitempty"`
	Pinned    bool               `json:"pinned,omitempty"`
	Reactions map[string][]int64 `json:"reactions,omitempty"`
	CreatedAt *time.Time         `json:"createdAt,omitempty"`
}

// ChatMessageInput is the body of a chat send.
type ChatMessageInput struct {
	Content  string `json:"content" validate:"required"`
	ParentID *int64 `json:"parentMessageId,omitempty"`
}

// DirectMessage is a one-to-one message between two users.
type DirectMessage struct {
	ID        int64        `json:"id"`
	Sender    *UserSummary `json:"sender,omitempty"`
	Recipient *UserSummary `json:"recipient,omitempty"`
	Content   string       `json:"content"`
	Read      bool         `json:"read,omitempty"`
	CreatedAt *time.Time   `json:"createdAt,omitempty"`
}

// DirectMessageInput is the body of a direct message send.
type DirectMessageInput struct {
	RecipientID int64  `json:"recipientId" validate:"required"`
	Content     string `json:"content" validate:"required"`
}

// Notification is an in-app notification.
type Notification struct {
	ID          int64      `json:"id"`
	Type        string     `json:"type"`
	Title       string     `json:"title,omitempty"`
	Message     string     `json:"message,omitempty"`
	Read        bool       `json:"read"`
	Archived    bool       `json:"archived,omitempty"`
	ReferenceID *int64     `json:"referenceId,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

// NotificationSettings are the viewer's delivery preferences.
type NotificationSettings struct {
	EmailEnabled      bool `json:"emailEnabled"`
	PushEnabled       bool `json:"pushEnabled"`
	InAppEnabled      bool `json:"inAppEnabled"`
	DoNotDisturb      bool `json:"doNotDisturbEnabled"`
	DoNotDisturbStart *int `json:"doNotDisturbStartHour,omitempty"`
	DoNotDisturbEnd   *int `json:"doNotDisturbEndHour,omitempty"`
}

// Invitation is a pending request to join a project.
type Invitation struct {
	ID           int64        `json:"id"`
	ProjectID    int64        `json:"projectId"`
	ProjectName  string       `json:"projectName,omitempty"`
	InvitedEmail string       `json:"invitedEmail,omitempty"`
	InvitedBy    *UserSummary `json:"invitedBy,omitempty"`
	Status       string       `json:"status"`
	CreatedAt    *time.Time   `json:"createdAt,omitempty"`
}

// InvitationReply answers an invitation with ACCEPTED or REJECTED.
type InvitationReply struct {
	Status string `json:"status" validate:"required,oneof=ACCEPTED REJECTED"`
}

// MemberInvite is the body of a project invitation.
type MemberInvite struct {
	InvitedEmail string `json:"invitedEmail" validate:"required,email"`
}

// Plan is a purchasable subscription plan.
type Plan struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       float64  `json:"price"`
	MaxMembers  *int     `json:"maxMembers,omitempty"`
	MaxProjects *int     `json:"maxProjects,omitempty"`
	Features    []string `json:"features,omitempty"`
	Popular     bool     `json:"popular,omitempty"`
}

// Subscription is the viewer's current plan contract.
type Subscription struct {
	ID        int64      `json:"id"`
	Plan      *Plan      `json:"plan,omitempty"`
	Status    string     `json:"status"`
	AutoRenew bool       `json:"autoRenew"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

// SubscriptionUsage summarises seats and projects consumed against a plan.
type SubscriptionUsage struct {
	ProjectsUsed  int  `json:"projectsUsed"`
	ProjectsLimit *int `json:"projectsLimit,omitempty"`
	MembersUsed   int  `json:"membersUsed"`
	MembersLimit  *int `json:"membersLimit,omitempty"`
}

// SubscriptionRequest contracts or changes a plan.
type SubscriptionRequest struct {
	PlanID    int64 `json:"planId" validate:"required"`
	AutoRenew *bool `json:"autoRenew,omitempty"`
}

// CancelRequest cancels the current subscription.
type CancelRequest struct {
	Reason    string `json:"reason,omitempty"`
	Immediate bool   `json:"immediate,omitempty"`
}

// Reminder is a scheduled nudge for the viewer.
type Reminder struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	TaskID      *int64     `json:"taskId,omitempty"`
	RemindAt    *time.Time `json:"remindAt,omitempty"`
	Frequency   string     `json:"frequency,omitempty"`
	Status      string     `json:"status,omitempty"`
}

// ReminderInput is the body of a reminder create.
type ReminderInput struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description,omitempty"`
	TaskID      *int64     `json:"taskId,omitempty"`
	RemindAt    *time.Time `json:"remindAt" validate:"required"`
	Frequency   string     `json:"frequency,omitempty" validate:"omitempty,oneof=ONCE DAILY WEEKLY MONTHLY"`
}

// ActivityEntry is one line of a project's activity timeline.
type ActivityEntry struct {
	ID          int64        `json:"id"`
	Action      string       `json:"action"`
	EntityType  string       `json:"entityType,omitempty"`
	EntityID    *int64       `json:"entityId,omitempty"`
	Description string       `json:"description,omitempty"`
	User        *UserSummary `json:"user,omitempty"`
	CreatedAt   *time.Time   `json:"createdAt,omitempty"`
}

// ExportJob tracks an asynchronous export.
type ExportJob struct {
	ID          int64      `json:"id"`
	Type        string     `json:"type"`
	Format      string     `json:"format"`
	Status      string     `json:"status"`
	ReferenceID *int64     `json:"referenceId,omitempty"`
	FileName    string     `json:"fileName,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// ExportRequest asks for a project export.
type ExportRequest struct {
	Type   string `json:"type" validate:"required"`
	Format string `json:"format" validate:"required,oneof=CSV EXCEL PDF JSON"`
}

// Report is an admin report payload whose shape is owned upstream.
type Report map[string]any
