package query

// Mutation names a write against the upstream.
type Mutation string

const (
	ProjectCreate       Mutation = "project.create"
	ProjectUpdate       Mutation = "project.update"
	ProjectStatusUpdate Mutation = "project.status"
	ProjectArchive      Mutation = "project.archive"
	ProjectUnarchive    Mutation = "project.unarchive"
	ProjectDelete       Mutation = "project.delete"
	ProjectMemberAdd    Mutation = "project.member.add"
	ProjectMemberRemove Mutation = "project.member.remove"
	ProjectInvite       Mutation = "project.invite"

	ProcessCreate   Mutation = "process.create"
	ProcessUpdate   Mutation = "process.update"
	ProcessReorder  Mutation = "process.reorder"
	ProcessDelete   Mutation = "process.delete"
	ProcessDefaults Mutation = "process.defaults"

	TaskCreate    Mutation = "task.create"
	TaskUpdate    Mutation = "task.update"
	TaskMove      Mutation = "task.move"
	TaskDelete    Mutation = "task.delete"
	TaskAssign    Mutation = "task.assign"
	TaskUnassign  Mutation = "task.unassign"
	SubtaskCreate Mutation = "subtask.create"
	SubtaskUpdate Mutation = "subtask.update"

	CommentCreate    Mutation = "comment.create"
	CommentDelete    Mutation = "comment.delete"
	AttachmentUpload Mutation = "attachment.upload"
	AttachmentUpdate Mutation = "attachment.update"
	AttachmentDelete Mutation = "attachment.delete"

	ChatSend    Mutation = "chat.send"
	ChatReact   Mutation = "chat.react"
	ChatUnreact Mutation = "chat.unreact"
	ChatPin     Mutation = "chat.pin"
	ChatUnpin   Mutation = "chat.unpin"

	DirectMessageSend Mutation = "dm.send"

	NotificationRead    Mutation = "notification.read"
	NotificationReadAll Mutation = "notification.readAll"
	NotificationArchive Mutation = "notification.archive"
	NotificationDelete  Mutation = "notification.delete"

	InvitationRespond Mutation = "invitation.respond"

	SubscriptionCreate     Mutation = "subscription.create"
	SubscriptionChange     Mutation = "subscription.change"
	SubscriptionCancel     Mutation = "subscription.cancel"
	SubscriptionReactivate Mutation = "subscription.reactivate"

	ReminderCreate  Mutation = "reminder.create"
	ReminderForTask Mutation = "reminder.forTask"
	ReminderSnooze  Mutation = "reminder.snooze"
	ReminderDismiss Mutation = "reminder.dismiss"
	ReminderDelete  Mutation = "reminder.delete"

	UserUpdate         Mutation = "user.update"
	UserPasswordChange Mutation = "user.password"
	UserRolesAssign    Mutation = "user.roles"
	UserDelete         Mutation = "user.delete"
	UserActivate       Mutation = "user.activate"

	ExportProject  Mutation = "export.project"
	ExportUserData Mutation = "export.userData"
	ExportDelete   Mutation = "export.delete"

	SettingsUpdate Mutation = "settings.update"
	SettingsReset  Mutation = "settings.reset"
)

// Target is one resource made stale by a mutation. A scoped target is stale
// only for the mutation's scope; otherwise every scope is.
type Target struct {
	Resource Resource
	Scoped   bool
}

func scoped(r Resource) Target { return Target{Resource: r, Scoped: true} }
func all(r Resource) Target    { return Target{Resource: r} }

// Graph maps each mutation to the resources it makes stale.
type Graph map[Mutation][]Target

var (
	projectEdges  = []Target{all(Projects), scoped(Project)}
	taskEdges     = []Target{scoped(Tasks), scoped(Subtasks), scoped(Project), all(Projects), scoped(Activity)}
	subtaskEdges  = []Target{scoped(Subtasks), scoped(Tasks), scoped(Project), all(Projects), scoped(Activity)}
	processEdges  = []Target{scoped(Processes), scoped(Project), all(Projects)}
	chatEdges     = []Target{scoped(Chat), scoped(PinnedMessages)}
	notifyEdges   = []Target{all(Notifications), all(UnreadCount)}
	subEdges      = []Target{all(Subscription), all(SubscriptionUsage)}
	reminderEdges = []Target{all(Reminders)}
	userEdges     = []Target{all(Users), all(CurrentUser)}
	exportEdges   = []Target{all(Exports)}
	settingsEdges = []Target{all(NotificationSettings)}
)

// DefaultGraph returns the invalidation graph of the upstream API. Project
// reads are decorated with a status derived from their tasks, so every task
// write also makes the project and the project list stale.
func DefaultGraph() Graph {
	return Graph{
		ProjectCreate:       {all(Projects), all(Notifications), all(UnreadCount), all(SubscriptionUsage)},
		ProjectUpdate:       projectEdges,
		ProjectStatusUpdate: projectEdges,
		ProjectArchive:      projectEdges,
		ProjectUnarchive:    projectEdges,
		ProjectDelete:       {all(Projects), scoped(Project), all(SubscriptionUsage)},
		ProjectMemberAdd:    {scoped(Project), all(Projects)},
		ProjectMemberRemove: {scoped(Project), all(Projects)},
		ProjectInvite:       {scoped(Project)},

		ProcessCreate:   processEdges,
		ProcessUpdate:   processEdges,
		ProcessReorder:  processEdges,
		ProcessDelete:   processEdges,
		ProcessDefaults: processEdges,

		TaskCreate:    taskEdges,
		TaskUpdate:    taskEdges,
		TaskMove:      taskEdges,
		TaskDelete:    taskEdges,
		TaskAssign:    taskEdges,
		TaskUnassign:  taskEdges,
		SubtaskCreate: subtaskEdges,
		SubtaskUpdate: subtaskEdges,

		CommentCreate:    {scoped(Comments)},
		CommentDelete:    {scoped(Comments)},
		AttachmentUpload: {scoped(Attachments)},
		AttachmentUpdate: {scoped(Attachments)},
		AttachmentDelete: {scoped(Attachments)},

		ChatSend:    chatEdges,
		ChatReact:   chatEdges,
		ChatUnreact: chatEdges,
		ChatPin:     chatEdges,
		ChatUnpin:   chatEdges,

		DirectMessageSend: {scoped(DirectMessages), all(Conversations)},

		NotificationRead:    notifyEdges,
		NotificationReadAll: notifyEdges,
		NotificationArchive: notifyEdges,
		NotificationDelete:  notifyEdges,

		InvitationRespond: {all(Invitations), all(Projects), all(Notifications), all(UnreadCount)},

		SubscriptionCreate:     subEdges,
		SubscriptionChange:     subEdges,
		SubscriptionCancel:     subEdges,
		SubscriptionReactivate: subEdges,

		ReminderCreate:  reminderEdges,
		ReminderForTask: reminderEdges,
		ReminderSnooze:  reminderEdges,
		ReminderDismiss: reminderEdges,
		ReminderDelete:  reminderEdges,

		UserUpdate:         userEdges,
		UserPasswordChange: nil,
		UserRolesAssign:    userEdges,
		UserDelete:         userEdges,
		UserActivate:       userEdges,

		ExportProject:  exportEdges,
		ExportUserData: exportEdges,
		ExportDelete:   exportEdges,

		SettingsUpdate: settingsEdges,
		SettingsReset:  settingsEdges,
	}
}

// Targets returns the resources m makes stale. Unknown mutations make
// nothing stale.
func (g Graph) Targets(m Mutation) []Target {
	return append([]Target(nil), g[m]...)
}

// Keys resolves the targets of m against scope. Whole-resource targets, and
// scoped targets whose scope is incomplete, come back as wildcard keys.
func (g Graph) Keys(m Mutation, scope Scope) []Key {
	targets := g[m]
	keys := make([]Key, 0, len(targets))
	for _, t := range targets {
		if t.Scoped {
			keys = append(keys, Key{Resource: t.Resource, Scope: scope})
			continue
		}
		keys = append(keys, Key{Resource: t.Resource})
	}
	return keys
}
