package query

import (
	"reflect"
	"testing"
)

func TestKeyString(t *testing.T) {
	cases := []struct {
		key  Key
		want string
	}{
		{Key{Resource: Projects}, "projects"},
		{Key{Resource: Projects, Scope: Scope{ProjectID: 3}}, "projects"},
		{Key{Resource: Tasks, Scope: Scope{ProjectID: 3, TaskID: 8}}, "tasks:p3"},
		{Key{Resource: Comments, Scope: Scope{ProjectID: 3, TaskID: 8}}, "comments:t8"},
		{Key{Resource: Subtasks, Scope: Scope{ProjectID: 3, TaskID: 8}}, "subtasks:p3:t8"},
		{Key{Resource: DirectMessages, Scope: Scope{PeerID: 5}}, "directMessages:u5"},
		{Key{Resource: Reminders, Variant: "status=PENDING"}, "reminders?status=PENDING"},
	}
	for _, tc := range cases {
		if got := tc.key.String(); got != tc.want {
			t.Fatalf("%#v: got %q, want %q", tc.key, got, tc.want)
		}
	}
}

func TestKeyWildcard(t *testing.T) {
	cases := []struct {
		key  Key
		want bool
	}{
		{Key{Resource: Projects}, false},
		{Key{Resource: Tasks}, true},
		{Key{Resource: Tasks, Scope: Scope{ProjectID: 1}}, false},
		{Key{Resource: Subtasks, Scope: Scope{ProjectID: 1}}, true},
		{Key{Resource: Comments, Scope: Scope{TaskID: 2}}, false},
		{Key{Resource: DirectMessages}, true},
	}
	for _, tc := range cases {
		if got := tc.key.Wildcard(); got != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.key, got, tc.want)
		}
	}
}

func TestKeyCovers(t *testing.T) {
	tasks := Key{Resource: Tasks, Scope: Scope{ProjectID: 3}}
	if !tasks.covers("tasks:p3") || !tasks.covers("tasks:p3?keyword=x") {
		t.Fatalf("scoped key should cover its own scope and variants")
	}
	if tasks.covers("tasks:p33") || tasks.covers("tasks:p4") {
		t.Fatalf("scoped key should not cover other scopes")
	}
	if !(Key{Resource: Tasks}).covers("tasks:p4") {
		t.Fatalf("wildcard key should cover every scope")
	}
	projectSubtasks := Key{Resource: Subtasks, Scope: Scope{ProjectID: 3}}
	if !projectSubtasks.covers("subtasks:p3:t8") || !projectSubtasks.covers("subtasks:p3:t9") {
		t.Fatalf("project subtask key should cover every task of the project")
	}
	if projectSubtasks.covers("subtasks:p33:t8") || projectSubtasks.covers("subtasks:p4:t8") {
		t.Fatalf("project subtask key should not cover other projects")
	}
	filtered := Key{Resource: Reminders, Variant: "status=PENDING"}
	if filtered.covers("reminders") {
		t.Fatalf("variant key should cover only itself")
	}
}

func TestGraphTaskMutationsReachProjectViews(t *testing.T) {
	g := DefaultGraph()
	scope := Scope{ProjectID: 3, TaskID: 8}

	for _, m := range []Mutation{TaskCreate, TaskUpdate, TaskMove, TaskDelete, SubtaskCreate, SubtaskUpdate} {
		got := map[string]bool{}
		for _, k := range g.Keys(m, scope) {
			got[k.String()] = true
		}
		for _, want := range []string{"tasks:p3", "subtasks:p3:t8", "project:p3", "projects"} {
			if !got[want] {
				t.Fatalf("%s: missing %s in %v", m, want, got)
			}
		}
	}
}

func TestGraphKeys(t *testing.T) {
	g := DefaultGraph()
	cases := []struct {
		m     Mutation
		scope Scope
		want  []Key
	}{
		{
			m:     ProjectArchive,
			scope: Scope{ProjectID: 4},
			want:  []Key{{Resource: Projects}, {Resource: Project, Scope: Scope{ProjectID: 4}}},
		},
		{
			m:    NotificationRead,
			want: []Key{{Resource: Notifications}, {Resource: UnreadCount}},
		},
		{
			m:    InvitationRespond,
			want: []Key{{Resource: Invitations}, {Resource: Projects}, {Resource: Notifications}, {Resource: UnreadCount}},
		},
		{
			m:     CommentCreate,
			scope: Scope{ProjectID: 1, TaskID: 2},
			want:  []Key{{Resource: Comments, Scope: Scope{ProjectID: 1, TaskID: 2}}},
		},
		{
			m:    SubscriptionChange,
			want: []Key{{Resource: Subscription}, {Resource: SubscriptionUsage}},
		},
		{
			m:    UserPasswordChange,
			want: []Key{},
		},
		{
			m:    Mutation("unknown"),
			want: []Key{},
		},
	}
	for _, tc := range cases {
		got := g.Keys(tc.m, tc.scope)
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%s: got %#v, want %#v", tc.m, got, tc.want)
		}
	}
}

func TestGraphTargetsIsACopy(t *testing.T) {
	g := DefaultGraph()
	targets := g.Targets(ChatSend)
	targets[0] = all(Users)
	if g.Targets(ChatSend)[0].Resource != Chat {
		t.Fatalf("Targets must not expose the graph's backing slice")
	}
}

func TestEveryMutationTargetsKnownResources(t *testing.T) {
	known := map[Resource]bool{}
	for _, r := range Resources() {
		known[r] = true
	}
	for m, targets := range DefaultGraph() {
		for _, target := range targets {
			if !known[target.Resource] {
				t.Fatalf("%s targets unknown resource %q", m, target.Resource)
			}
		}
	}
}
