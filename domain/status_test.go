package domain

import (
	"reflect"
	"testing"
)

const (
	creatorID = int64(7)
	viewerID  = int64(9)
)

func parent(id int64) *int64 { return &id }

func topLevel(statuses ...TaskStatus) []Task {
	tasks := make([]Task, len(statuses))
	for i, s := range statuses {
		tasks[i] = Task{ID: int64(i + 1), Status: s}
	}
	return tasks
}

func projectWith(status ProjectStatus, columns ...[]Task) Project {
	p := Project{ID: 1, Name: "Launch", Status: status, CreatedBy: &UserSummary{ID: creatorID}}
	for i, tasks := range columns {
		p.Processes = append(p.Processes, Process{ID: int64(i + 1), Name: "col", Tasks: tasks})
	}
	return p
}

func TestDeriveProjectView(t *testing.T) {
	tests := []struct {
		name    string
		project Project
		viewer  int64
		want    View
	}{
		{
			name:    "archived seen by creator",
			project: Project{Archived: true, Status: ProjectActive, CreatedBy: &UserSummary{ID: creatorID}},
			viewer:  creatorID,
			want:    View{Progress: 0, ViewStatus: ProjectArchived},
		},
		{
			name:    "archived seen by member",
			project: Project{Archived: true, Status: ProjectActive, CreatedBy: &UserSummary{ID: creatorID}},
			viewer:  viewerID,
			want:    View{Progress: 0, ViewStatus: ProjectCancelled},
		},
		{
			name:    "archived without creator",
			project: Project{Archived: true},
			viewer:  0,
			want:    View{Progress: 0, ViewStatus: ProjectCancelled},
		},
		{
			name:    "archived wins over finished tasks",
			project: func() Project { p := projectWith(ProjectActive, topLevel(TaskDone)); p.Archived = true; return p }(),
			viewer:  creatorID,
			want:    View{Progress: 0, ViewStatus: ProjectArchived},
		},
		{
			name:    "empty processes keep persisted status",
			project: Project{Status: ProjectOnHold, Processes: []Process{}},
			viewer:  viewerID,
			want:    View{Progress: 0, ViewStatus: ProjectOnHold},
		},
		{
			name:    "absent processes keep persisted status",
			project: Project{Status: ProjectOnHold},
			viewer:  viewerID,
			want:    View{Progress: 0, ViewStatus: ProjectOnHold},
		},
		{
			name:    "absent processes and status fall back to active",
			project: Project{},
			viewer:  viewerID,
			want:    View{Progress: 0, ViewStatus: ProjectActive},
		},
		{
			name: "only subtasks keep persisted status",
			project: projectWith(ProjectOnHold, []Task{
				{ID: 1, Status: TaskDone, ParentTaskID: parent(10)},
				{ID: 2, Status: TaskTodo, ParentTaskID: parent(10)},
			}),
			viewer: viewerID,
			want:   View{Progress: 0, ViewStatus: ProjectOnHold},
		},
		{
			name:    "only subtasks and no status fall back to active",
			project: projectWith("", []Task{{ID: 1, Status: TaskDone, ParentTaskID: parent(10)}}),
			viewer:  viewerID,
			want:    View{Progress: 0, ViewStatus: ProjectActive},
		},
		{
			name:    "processes without tasks",
			project: projectWith(ProjectCompleted, nil, nil),
			viewer:  viewerID,
			want:    View{Progress: 0, ViewStatus: ProjectCompleted},
		},
		{
			name:    "all done",
			project: projectWith(ProjectActive, topLevel(TaskDone, TaskDone), topLevel(TaskDone, TaskDone)),
			viewer:  viewerID,
			want:    View{Progress: 100, ViewStatus: ProjectDone},
		},
		{
			name:    "one of four done",
			project: projectWith(ProjectActive, topLevel(TaskDone, TaskTodo, TaskTodo, TaskTodo)),
			viewer:  viewerID,
			want:    View{Progress: 25, ViewStatus: ProjectInProgress},
		},
		{
			name:    "in review without done",
			project: projectWith(ProjectActive, topLevel(TaskInReview, TaskTodo, TaskTodo)),
			viewer:  viewerID,
			want:    View{Progress: 0, ViewStatus: ProjectInProgress},
		},
		{
			name:    "review spelling counts as in review",
			project: projectWith(ProjectActive, topLevel(TaskReview, TaskTodo)),
			viewer:  viewerID,
			want:    View{Progress: 0, ViewStatus: ProjectInProgress},
		},
		{
			name:    "all todo",
			project: projectWith(ProjectOnHold, topLevel(TaskTodo, TaskTodo, TaskTodo)),
			viewer:  viewerID,
			want:    View{Progress: 0, ViewStatus: ProjectActive},
		},
		{
			name:    "unrecognised statuses keep persisted status",
			project: projectWith(ProjectOnHold, topLevel(TaskBlocked, TaskCancelled)),
			viewer:  viewerID,
			want:    View{Progress: 0, ViewStatus: ProjectOnHold},
		},
		{
			name:    "unrecognised statuses without status fall back to active",
			project: projectWith("", topLevel(TaskBlocked, TaskCancelled)),
			viewer:  viewerID,
			want:    View{Progress: 0, ViewStatus: ProjectActive},
		},
		{
			name:    "blocked and todo mix",
			project: projectWith(ProjectCancelled, topLevel(TaskBlocked, TaskTodo)),
			viewer:  viewerID,
			want:    View{Progress: 0, ViewStatus: ProjectCancelled},
		},
		{
			name:    "progress rounds down",
			project: projectWith(ProjectActive, topLevel(TaskDone, TaskTodo, TaskTodo)),
			viewer:  viewerID,
			want:    View{Progress: 33, ViewStatus: ProjectInProgress},
		},
		{
			name:    "two of three done",
			project: projectWith(ProjectActive, topLevel(TaskDone, TaskDone, TaskBlocked)),
			viewer:  viewerID,
			want:    View{Progress: 66, ViewStatus: ProjectInProgress},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveProjectView(tt.project, tt.viewer)
			if got != tt.want {
				t.Fatalf("DeriveProjectView() = %+v, want %+v", got, tt.want)
			}
			if got.Progress < 0 || got.Progress > 100 {
				t.Fatalf("progress out of range: %d", got.Progress)
			}
			if got.ViewStatus == "" {
				t.Fatalf("empty view status")
			}
		})
	}
}

func TestDeriveProjectViewIsRepeatable(t *testing.T) {
	p := projectWith(ProjectActive, topLevel(TaskDone, TaskInProgress), topLevel(TaskTodo))
	before := cloneProject(p)

	first := DeriveProjectView(p, viewerID)
	second := DeriveProjectView(p, viewerID)
	if first != second {
		t.Fatalf("results differ: %+v vs %+v", first, second)
	}
	if !reflect.DeepEqual(p, before) {
		t.Fatalf("project was mutated")
	}
}

func TestDeriveProjectViewIgnoresSubtasks(t *testing.T) {
	base := projectWith(ProjectActive, topLevel(TaskDone, TaskTodo, TaskTodo, TaskTodo))
	want := DeriveProjectView(base, viewerID)

	for n := 1; n <= 5; n++ {
		withSubtasks := cloneProject(base)
		for i := 0; i < n; i++ {
			withSubtasks.Processes[0].Tasks = append(withSubtasks.Processes[0].Tasks,
				Task{ID: int64(100 + i), Status: TaskDone, ParentTaskID: parent(1)})
		}
		withSubtasks.Processes = append(withSubtasks.Processes, Process{
			ID:    99,
			Tasks: []Task{{ID: 200, Status: TaskInReview, ParentTaskID: parent(2)}},
		})
		if got := DeriveProjectView(withSubtasks, viewerID); got != want {
			t.Fatalf("with %d subtasks: got %+v, want %+v", n, got, want)
		}
	}
}

func TestPersistedStatusFor(t *testing.T) {
	tests := []struct {
		derived ProjectStatus
		current ProjectStatus
		want    ProjectStatus
	}{
		{ProjectDone, ProjectActive, ProjectCompleted},
		{ProjectActive, ProjectOnHold, ProjectActive},
		{ProjectOnHold, ProjectActive, ProjectOnHold},
		{ProjectInProgress, ProjectActive, ProjectActive},
		{ProjectInProgress, ProjectCompleted, ProjectCompleted},
		{ProjectArchived, ProjectCancelled, ProjectCancelled},
	}
	for _, tt := range tests {
		if got := PersistedStatusFor(tt.derived, tt.current); got != tt.want {
			t.Fatalf("PersistedStatusFor(%s, %s) = %s, want %s", tt.derived, tt.current, got, tt.want)
		}
	}
}

func TestNewProjectView(t *testing.T) {
	p := projectWith(ProjectActive, topLevel(TaskDone, TaskTodo))
	v := NewProjectView(p, viewerID)
	if v.Progress != 50 || v.ViewStatus != ProjectInProgress {
		t.Fatalf("unexpected view: %d %s", v.Progress, v.ViewStatus)
	}
	if v.Name != "Launch" || v.Status != ProjectActive {
		t.Fatalf("project fields not carried: %+v", v.Project)
	}
}

func cloneProject(p Project) Project {
	out := p
	out.Processes = make([]Process, len(p.Processes))
	for i, proc := range p.Processes {
		proc.Tasks = append([]Task(nil), proc.Tasks...)
		out.Processes[i] = proc
	}
	return out
}
