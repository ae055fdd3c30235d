// Package query names cached upstream reads and the mutations that make them
// stale.
package query

import (
	"strconv"
	"strings"
)

// Resource identifies a family of cached reads.
type Resource string

const (
	Projects             Resource = "projects"
	Project              Resource = "project"
	Tasks                Resource = "tasks"
	Subtasks             Resource = "subtasks"
	Processes            Resource = "processes"
	Comments             Resource = "comments"
	Attachments          Resource = "attachments"
	Chat                 Resource = "chat"
	PinnedMessages       Resource = "pinnedMessages"
	DirectMessages       Resource = "directMessages"
	Conversations        Resource = "conversations"
	Notifications        Resource = "notifications"
	UnreadCount          Resource = "unreadCount"
	Invitations          Resource = "invitations"
	Subscription         Resource = "subscription"
	SubscriptionUsage    Resource = "subscriptionUsage"
	Plans                Resource = "plans"
	Reminders            Resource = "reminders"
	Reports              Resource = "reports"
	Users                Resource = "users"
	CurrentUser          Resource = "currentUser"
	Activity             Resource = "activity"
	Exports              Resource = "exports"
	NotificationSettings Resource = "notificationSettings"
)

// Resources lists every resource.
func Resources() []Resource {
	return []Resource{
		Projects, Project, Tasks, Subtasks, Processes, Comments, Attachments,
		Chat, PinnedMessages, DirectMessages, Conversations, Notifications,
		UnreadCount, Invitations, Subscription, SubscriptionUsage, Plans,
		Reminders, Reports, Users, CurrentUser, Activity, Exports,
		NotificationSettings,
	}
}

type scopeKind int

const (
	scopeNone scopeKind = iota
	scopeProject
	scopeTask
	scopeProjectTask
	scopePeer
)

func (r Resource) kind() scopeKind {
	switch r {
	case Project, Tasks, Processes, Chat, PinnedMessages, Activity:
		return scopeProject
	case Comments, Attachments:
		return scopeTask
	case Subtasks:
		return scopeProjectTask
	case DirectMessages:
		return scopePeer
	default:
		return scopeNone
	}
}

// Scope narrows a resource to one project, task or conversation peer. Only the
// fields the resource is keyed by are used.
type Scope struct {
	ProjectID int64
	TaskID    int64
	PeerID    int64
}

// Key addresses one cached read. Variant distinguishes filtered reads of the
// same scope, e.g. a status filter.
type Key struct {
	Resource Resource
	Scope    Scope
	Variant  string
}

// Wildcard reports whether the key lacks a scope field its resource is keyed
// by. A wildcard key stands for every scope of the resource.
func (k Key) Wildcard() bool {
	s := k.Scope
	switch k.Resource.kind() {
	case scopeProject:
		return s.ProjectID == 0
	case scopeTask:
		return s.TaskID == 0
	case scopeProjectTask:
		return s.ProjectID == 0 || s.TaskID == 0
	case scopePeer:
		return s.PeerID == 0
	default:
		return false
	}
}

// base renders the resource and scope without the variant.
func (k Key) base() string {
	var b strings.Builder
	b.WriteString(string(k.Resource))
	s := k.Scope
	switch k.Resource.kind() {
	case scopeProject:
		b.WriteString(":p" + strconv.FormatInt(s.ProjectID, 10))
	case scopeTask:
		b.WriteString(":t" + strconv.FormatInt(s.TaskID, 10))
	case scopeProjectTask:
		b.WriteString(":p" + strconv.FormatInt(s.ProjectID, 10))
		b.WriteString(":t" + strconv.FormatInt(s.TaskID, 10))
	case scopePeer:
		b.WriteString(":u" + strconv.FormatInt(s.PeerID, 10))
	}
	return b.String()
}

func (k Key) String() string {
	if k.Variant == "" {
		return k.base()
	}
	return k.base() + "?" + k.Variant
}

// covers reports whether rendered, a String() of some key of the same
// resource, falls under k.
func (k Key) covers(rendered string) bool {
	if k.Resource.kind() == scopeProjectTask && k.Scope.ProjectID != 0 && k.Scope.TaskID == 0 {
		// every task of one project
		return strings.HasPrefix(rendered, string(k.Resource)+":p"+strconv.FormatInt(k.Scope.ProjectID, 10)+":")
	}
	if k.Wildcard() {
		return true
	}
	base := k.base()
	if k.Variant != "" {
		return rendered == k.String()
	}
	return rendered == base || strings.HasPrefix(rendered, base+"?")
}
