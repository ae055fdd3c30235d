package views

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/bytedance/sonic"
	"github.com/golang-jwt/jwt/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"

	"taskboard/backend"
	"taskboard/domain"
	"taskboard/query"
	"taskboard/session"
)

type route struct {
	status int
	body   any
}

// fakeUpstream answers "METHOD /path" with canned responses and counts calls.
type fakeUpstream struct {
	mu     sync.Mutex
	routes map[string]route
	calls  map[string]int
	bodies map[string]string
}

func newFakeUpstream(t *testing.T) (*fakeUpstream, *httptest.Server) {
	t.Helper()
	f := &fakeUpstream{routes: map[string]route{}, calls: map[string]int{}, bodies: map[string]string{}}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeUpstream) on(method, path string, status int, body any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = route{status: status, body: body}
}

func (f *fakeUpstream) count(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method+" "+path]
}

func (f *fakeUpstream) lastBody(method, path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[method+" "+path]
}

func (f *fakeUpstream) serve(w http.ResponseWriter, r *http.Request) {
	id := r.Method + " " + r.URL.Path
	data, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.calls[id]++
	f.bodies[id] = string(data)
	rt, ok := f.routes[id]
	f.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rt.status)
	if rt.body != nil {
		out, _ := sonic.Marshal(rt.body)
		_, _ = w.Write(out)
	}
}

type fixture struct {
	svc      *Service
	upstream *fakeUpstream
	sessions *session.RedisStore
	redis    *miniredis.Miniredis
	sess     *session.Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	up, srv := newFakeUpstream(t)

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger, _ := test.NewNullLogger()
	store := session.NewRedisStore(client, time.Hour)
	cache := query.NewCache(client, time.Minute, query.DefaultGraph(), logger)
	svc := New(backend.New(srv.URL, srv.Client(), logger), cache, store, logger)

	sess := &session.Session{Subject: "kim", AccessToken: "tok", User: domain.User{ID: 7, Email: "kim@example.com"}}
	if err := store.Save(context.Background(), sess); err != nil {
		t.Fatalf("save session: %v", err)
	}
	return &fixture{svc: svc, upstream: up, sessions: store, redis: mr, sess: sess}
}

func doneProject(id int64, status domain.ProjectStatus) domain.Project {
	return domain.Project{
		ID:        id,
		Name:      "Launch",
		Status:    status,
		CreatedBy: &domain.UserSummary{ID: 7},
		Processes: []domain.Process{{ID: 1, Tasks: []domain.Task{
			{ID: 10, Status: domain.TaskDone},
			{ID: 11, Status: domain.TaskDone},
		}}},
	}
}

func TestProjectsAreDerivedAndCached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.upstream.on(http.MethodGet, "/projects", http.StatusOK, []domain.Project{
		doneProject(1, domain.ProjectActive),
		{ID: 2, Archived: true, CreatedBy: &domain.UserSummary{ID: 99}},
	})

	for i := 0; i < 2; i++ {
		views, err := f.svc.Projects(ctx, f.sess)
		if err != nil {
			t.Fatalf("projects: %v", err)
		}
		if len(views) != 2 {
			t.Fatalf("expected 2 projects, got %d", len(views))
		}
		if views[0].Progress != 100 || views[0].ViewStatus != domain.ProjectDone {
			t.Fatalf("unexpected view for project 1: %+v", views[0])
		}
		if views[1].ViewStatus != domain.ProjectCancelled {
			t.Fatalf("archived project of another creator should read CANCELLED, got %s", views[1].ViewStatus)
		}
	}
	if n := f.upstream.count(http.MethodGet, "/projects"); n != 1 {
		t.Fatalf("expected 1 upstream call, got %d", n)
	}
}

func TestTaskMutationInvalidatesProjects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.upstream.on(http.MethodGet, "/projects", http.StatusOK, []domain.Project{doneProject(1, domain.ProjectActive)})
	f.upstream.on(http.MethodGet, "/projects/1/tasks", http.StatusOK, []domain.Task{{ID: 10}})
	f.upstream.on(http.MethodPost, "/projects/1/tasks/10/move", http.StatusOK, domain.Task{ID: 10, Status: domain.TaskDone})

	if _, err := f.svc.Projects(ctx, f.sess); err != nil {
		t.Fatalf("projects: %v", err)
	}
	if _, err := f.svc.Tasks(ctx, f.sess, 1); err != nil {
		t.Fatalf("tasks: %v", err)
	}
	if _, err := f.svc.MoveTask(ctx, f.sess, 1, 10, domain.TaskMove{TargetProcessID: 2}); err != nil {
		t.Fatalf("move: %v", err)
	}
	if _, err := f.svc.Projects(ctx, f.sess); err != nil {
		t.Fatalf("projects after move: %v", err)
	}
	if _, err := f.svc.Tasks(ctx, f.sess, 1); err != nil {
		t.Fatalf("tasks after move: %v", err)
	}

	if n := f.upstream.count(http.MethodGet, "/projects"); n != 2 {
		t.Fatalf("expected projects refetch after move, got %d calls", n)
	}
	if n := f.upstream.count(http.MethodGet, "/projects/1/tasks"); n != 2 {
		t.Fatalf("expected tasks refetch after move, got %d calls", n)
	}
}

func TestFailedMutationKeepsCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.upstream.on(http.MethodGet, "/projects/1/tasks", http.StatusOK, []domain.Task{{ID: 10}})
	f.upstream.on(http.MethodPost, "/projects/1/tasks", http.StatusBadRequest, map[string]string{"message": "title required"})

	if _, err := f.svc.Tasks(ctx, f.sess, 1); err != nil {
		t.Fatalf("tasks: %v", err)
	}
	_, err := f.svc.CreateTask(ctx, f.sess, 1, domain.TaskInput{})
	if backend.StatusCode(err) != http.StatusBadRequest {
		t.Fatalf("expected upstream 400 to pass through, got %v", err)
	}
	if _, err := f.svc.Tasks(ctx, f.sess, 1); err != nil {
		t.Fatalf("tasks: %v", err)
	}
	if n := f.upstream.count(http.MethodGet, "/projects/1/tasks"); n != 1 {
		t.Fatalf("failed mutation must not invalidate, got %d calls", n)
	}
}

func TestCreateTaskWithParentIsSubtask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	parent := int64(10)
	f.upstream.on(http.MethodGet, "/projects/1/tasks/10/subtasks", http.StatusOK, []domain.Task{})
	f.upstream.on(http.MethodPost, "/projects/1/tasks", http.StatusCreated, domain.Task{ID: 12, ParentTaskID: &parent})

	if _, err := f.svc.Subtasks(ctx, f.sess, 1, 10); err != nil {
		t.Fatalf("subtasks: %v", err)
	}
	if _, err := f.svc.CreateTask(ctx, f.sess, 1, domain.TaskInput{Title: "child", ParentTaskID: &parent}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.svc.Subtasks(ctx, f.sess, 1, 10); err != nil {
		t.Fatalf("subtasks: %v", err)
	}
	if n := f.upstream.count(http.MethodGet, "/projects/1/tasks/10/subtasks"); n != 2 {
		t.Fatalf("expected subtasks refetch, got %d calls", n)
	}
}

func TestDeleteSubtaskRefreshesParentList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	parent := int64(10)
	f.upstream.on(http.MethodGet, "/projects/1/tasks/10/subtasks", http.StatusOK, []domain.Task{{ID: 12, ParentTaskID: &parent}})
	f.upstream.on(http.MethodGet, "/projects/2/tasks/20/subtasks", http.StatusOK, []domain.Task{})
	f.upstream.on(http.MethodDelete, "/projects/1/tasks/12", http.StatusNoContent, nil)

	for i := 0; i < 2; i++ {
		if _, err := f.svc.Subtasks(ctx, f.sess, 1, 10); err != nil {
			t.Fatalf("subtasks: %v", err)
		}
		if _, err := f.svc.Subtasks(ctx, f.sess, 2, 20); err != nil {
			t.Fatalf("subtasks: %v", err)
		}
		if i == 0 {
			if err := f.svc.DeleteTask(ctx, f.sess, 1, 12); err != nil {
				t.Fatalf("delete: %v", err)
			}
		}
	}
	if n := f.upstream.count(http.MethodGet, "/projects/1/tasks/10/subtasks"); n != 2 {
		t.Fatalf("expected parent subtask list refetch, got %d calls", n)
	}
	if n := f.upstream.count(http.MethodGet, "/projects/2/tasks/20/subtasks"); n != 1 {
		t.Fatalf("other project's subtask list should stay cached, got %d calls", n)
	}
}

func TestUnauthorizedClearsSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.upstream.on(http.MethodGet, "/plans", http.StatusOK, []domain.Plan{{ID: 1}})
	f.upstream.on(http.MethodGet, "/projects", http.StatusUnauthorized, map[string]string{"message": "token expired"})

	if _, err := f.svc.Plans(ctx, f.sess); err != nil {
		t.Fatalf("plans: %v", err)
	}
	_, err := f.svc.Projects(ctx, f.sess)
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if !backend.IsUnauthorized(err) {
		t.Fatalf("expected upstream error to stay reachable, got %v", err)
	}
	if _, err := f.sessions.Load(ctx, "kim"); !errors.Is(err, session.ErrNoSession) {
		t.Fatalf("expected session cleared, got %v", err)
	}
	if f.redis.Exists("query:kim:plans") {
		t.Fatalf("expected cached reads purged")
	}
}

func TestInviteMemberSeatLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.upstream.on(http.MethodPost, "/projects/1/invite", http.StatusForbidden, map[string]string{"message": "Member limit reached"})
	_, err := f.svc.InviteMember(ctx, f.sess, 1, domain.MemberInvite{InvitedEmail: "a@b.c"})
	if !errors.Is(err, ErrSeatLimit) {
		t.Fatalf("expected ErrSeatLimit, got %v", err)
	}
	var apiErr *backend.Error
	if !errors.As(err, &apiErr) || apiErr.Message != "Member limit reached" {
		t.Fatalf("expected upstream message to stay reachable, got %v", err)
	}

	f.upstream.on(http.MethodPost, "/projects/1/invite", http.StatusConflict, map[string]string{"message": "already a member"})
	_, err = f.svc.InviteMember(ctx, f.sess, 1, domain.MemberInvite{InvitedEmail: "a@b.c"})
	if errors.Is(err, ErrSeatLimit) || backend.StatusCode(err) != http.StatusConflict {
		t.Fatalf("expected other failures unchanged, got %v", err)
	}
}

func TestSyncStatusPersistsMappedStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.upstream.on(http.MethodGet, "/projects/1", http.StatusOK, doneProject(1, domain.ProjectActive))
	completed := doneProject(1, domain.ProjectCompleted)
	f.upstream.on(http.MethodPut, "/projects/1", http.StatusOK, completed)

	view, changed, err := f.svc.SyncStatus(ctx, f.sess, 1)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if !changed {
		t.Fatalf("expected status write")
	}
	if view.Status != domain.ProjectCompleted || view.ViewStatus != domain.ProjectDone {
		t.Fatalf("unexpected view: %+v", view)
	}
	var body map[string]any
	if err := sonic.UnmarshalString(f.upstream.lastBody(http.MethodPut, "/projects/1"), &body); err != nil {
		t.Fatalf("decode update body: %v", err)
	}
	if len(body) != 1 || body["status"] != "COMPLETED" {
		t.Fatalf("expected status-only update, got %v", body)
	}
}

func TestSyncStatusSkipsUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := doneProject(1, domain.ProjectOnHold)
	p.Processes[0].Tasks[1].Status = domain.TaskInProgress
	f.upstream.on(http.MethodGet, "/projects/1", http.StatusOK, p)

	view, changed, err := f.svc.SyncStatus(ctx, f.sess, 1)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if changed {
		t.Fatalf("IN_PROGRESS keeps the persisted status, expected no write")
	}
	if view.ViewStatus != domain.ProjectInProgress || view.Progress != 50 {
		t.Fatalf("unexpected view: %+v", view)
	}
	if n := f.upstream.count(http.MethodPut, "/projects/1"); n != 0 {
		t.Fatalf("expected no update, got %d", n)
	}
}

func signedToken(t *testing.T, subject string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: subject}).SignedString([]byte("upstream"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func TestLoginStoresSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	token := signedToken(t, "lee@example.com")
	f.upstream.on(http.MethodPost, "/auth/login", http.StatusOK, domain.AuthResponse{Token: token, User: domain.User{ID: 3, Email: "lee@example.com"}})

	sess, err := f.svc.Login(ctx, domain.Credentials{Email: "lee@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if sess.Subject != "lee@example.com" || sess.ViewerID() != 3 {
		t.Fatalf("unexpected session: %+v", sess)
	}
	stored, err := f.sessions.Load(ctx, "lee@example.com")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if stored.Token() != token {
		t.Fatalf("stored token mismatch")
	}
}

func TestLoginFailurePassesThrough(t *testing.T) {
	f := newFixture(t)
	f.upstream.on(http.MethodPost, "/auth/login", http.StatusUnauthorized, map[string]string{"message": "Bad credentials"})

	_, err := f.svc.Login(context.Background(), domain.Credentials{Email: "x@y.z", Password: "no"})
	if !backend.IsUnauthorized(err) || errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected raw upstream 401, got %v", err)
	}
}

func TestResume(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.upstream.on(http.MethodGet, "/auth/me", http.StatusOK, domain.User{ID: 7, Email: "kim@example.com", FirstName: "Kim"})

	sess, err := f.svc.Resume(ctx, "kim", "tok")
	if err != nil || sess.ViewerID() != 7 {
		t.Fatalf("resume stored: %+v %v", sess, err)
	}
	if n := f.upstream.count(http.MethodGet, "/auth/me"); n != 0 {
		t.Fatalf("stored session should not hit upstream, got %d", n)
	}

	sess, err = f.svc.Resume(ctx, "kim", "tok-2")
	if err != nil {
		t.Fatalf("resume with new token: %v", err)
	}
	if sess.Token() != "tok-2" || sess.User.FirstName != "Kim" {
		t.Fatalf("unexpected rebuilt session: %+v", sess)
	}
	if n := f.upstream.count(http.MethodGet, "/auth/me"); n != 1 {
		t.Fatalf("expected one profile fetch, got %d", n)
	}
}

func TestResumeRejectedToken(t *testing.T) {
	f := newFixture(t)
	f.upstream.on(http.MethodGet, "/auth/me", http.StatusUnauthorized, nil)

	if _, err := f.svc.Resume(context.Background(), "kim", "stale"); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if _, err := f.sessions.Load(context.Background(), "kim"); !errors.Is(err, session.ErrNoSession) {
		t.Fatalf("expected session cleared, got %v", err)
	}
}

func TestLogoutClearsSessionAndCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.upstream.on(http.MethodGet, "/plans", http.StatusOK, []domain.Plan{})
	if _, err := f.svc.Plans(ctx, f.sess); err != nil {
		t.Fatalf("plans: %v", err)
	}

	f.svc.Logout(ctx, f.sess)

	for _, k := range f.redis.Keys() {
		if !strings.HasPrefix(k, "query-gen:") {
			t.Fatalf("expected nothing cached for the viewer, got %v", f.redis.Keys())
		}
	}
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.upstream.on(http.MethodGet, "/projects", http.StatusOK, []domain.Project{doneProject(1, domain.ProjectActive)})
	f.upstream.on(http.MethodGet, "/notifications/unread/count", http.StatusOK, 4)
	f.upstream.on(http.MethodGet, "/reminders/today", http.StatusOK, []domain.Reminder{{ID: 1, Title: "standup"}})

	d, err := f.svc.Dashboard(ctx, f.sess)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if len(d.Projects) != 1 || d.UnreadCount != 4 || len(d.TodayReminders) != 1 {
		t.Fatalf("unexpected dashboard: %+v", d)
	}

	f.upstream.on(http.MethodGet, "/reminders/today", http.StatusInternalServerError, nil)
	f.redis.FlushAll()
	if _, err := f.svc.Dashboard(ctx, f.sess); backend.StatusCode(err) != http.StatusInternalServerError {
		t.Fatalf("expected dashboard failure, got %v", err)
	}
}

func TestNotificationReadInvalidatesUnreadCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.upstream.on(http.MethodGet, "/notifications/unread/count", http.StatusOK, 2)
	f.upstream.on(http.MethodPut, "/notifications/5/read", http.StatusOK, nil)

	if _, err := f.svc.UnreadCount(ctx, f.sess); err != nil {
		t.Fatalf("unread: %v", err)
	}
	if err := f.svc.MarkNotificationRead(ctx, f.sess, 5); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if _, err := f.svc.UnreadCount(ctx, f.sess); err != nil {
		t.Fatalf("unread: %v", err)
	}
	if n := f.upstream.count(http.MethodGet, "/notifications/unread/count"); n != 2 {
		t.Fatalf("expected refetch after mark read, got %d", n)
	}
}

func TestUpdateOwnProfileRefreshesSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.upstream.on(http.MethodPut, "/users/7", http.StatusOK, domain.User{ID: 7, Email: "kim@example.com", FirstName: "Kimberly"})

	if _, err := f.svc.UpdateUser(ctx, f.sess, 7, domain.UserUpdate{FirstName: "Kimberly"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	stored, err := f.sessions.Load(ctx, "kim")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if stored.User.FirstName != "Kimberly" {
		t.Fatalf("expected stored profile refreshed, got %+v", stored.User)
	}
}
