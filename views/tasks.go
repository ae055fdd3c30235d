package views

import (
	"context"
	"fmt"

	"taskboard/backend"
	"taskboard/domain"
	"taskboard/query"
	"taskboard/session"
)

func (s *Service) Tasks(ctx context.Context, sess *session.Session, projectID int64) ([]domain.Task, error) {
	key := query.Key{Resource: query.Tasks, Scope: projectScope(projectID)}
	return fetch(ctx, s, sess, key, func(ctx context.Context, api *backend.API) ([]domain.Task, error) {
		return api.Tasks.ListByProject(ctx, projectID)
	})
}

func (s *Service) Task(ctx context.Context, sess *session.Session, projectID, taskID int64) (domain.Task, error) {
	return pass(ctx, s, sess, func(ctx context.Context, api *backend.API) (domain.Task, error) {
		return api.Tasks.Get(ctx, projectID, taskID)
	})
}

func (s *Service) ProcessTasks(ctx context.Context, sess *session.Session, processID int64) ([]domain.Task, error) {
	return pass(ctx, s, sess, func(ctx context.Context, api *backend.API) ([]domain.Task, error) {
		return api.Tasks.ListByProcess(ctx, processID)
	})
}

func (s *Service) SearchTasks(ctx context.Context, sess *session.Session, projectID int64, keyword string) ([]domain.Task, error) {
	return pass(ctx, s, sess, func(ctx context.Context, api *backend.API) ([]domain.Task, error) {
		return api.Tasks.Search(ctx, projectID, keyword)
	})
}

func (s *Service) UpcomingTasks(ctx context.Context, sess *session.Session, projectID int64, days int) ([]domain.Task, error) {
	key := query.Key{Resource: query.Tasks, Scope: projectScope(projectID), Variant: fmt.Sprintf("upcoming=%d", days)}
	return fetch(ctx, s, sess, key, func(ctx context.Context, api *backend.API) ([]domain.Task, error) {
		return api.Tasks.Upcoming(ctx, projectID, days)
	})
}

func (s *Service) OverdueTasks(ctx context.Context, sess *session.Session, projectID int64) ([]domain.Task, error) {
	key := query.Key{Resource: query.Tasks, Scope: projectScope(projectID), Variant: "overdue"}
	return fetch(ctx, s, sess, key, func(ctx context.Context, api *backend.API) ([]domain.Task, error) {
		return api.Tasks.Overdue(ctx, projectID)
	})
}

// MyTasks lists the tasks assigned to the viewer across projects.
func (s *Service) MyTasks(ctx context.Context, sess *session.Session) ([]domain.Task, error) {
	return pass(ctx, s, sess, func(ctx context.Context, api *backend.API) ([]domain.Task, error) {
		return api.Tasks.Mine(ctx)
	})
}

// taskWrite runs a task mutation and also invalidates the subtask list of the
// written task's parent.
func (s *Service) taskWrite(ctx context.Context, sess *session.Session, m query.Mutation, projectID, taskID int64, write func(context.Context, *backend.API) (domain.Task, error)) (domain.Task, error) {
	t, err := mutate(ctx, s, sess, m, taskScope(projectID, taskID), write)
	if err != nil {
		return t, err
	}
	if t.ParentTaskID != nil && *t.ParentTaskID != taskID {
		s.cache.InvalidateKeys(ctx, sess.Subject, query.Key{Resource: query.Subtasks, Scope: taskScope(projectID, *t.ParentTaskID)})
	}
	return t, nil
}

// CreateTask creates a task. A parent task id makes it a subtask.
func (s *Service) CreateTask(ctx context.Context, sess *session.Session, projectID int64, in domain.TaskInput) (domain.Task, error) {
	if in.ParentTaskID != nil {
		return s.CreateSubtask(ctx, sess, projectID, *in.ParentTaskID, in)
	}
	return s.taskWrite(ctx, sess, query.TaskCreate, projectID, 0, func(ctx context.Context, api *backend.API) (domain.Task, error) {
		return api.Tasks.Create(ctx, projectID, in)
	})
}

func (s *Service) UpdateTask(ctx context.Context, sess *session.Session, projectID, taskID int64, in domain.TaskInput) (domain.Task, error) {
	return s.taskWrite(ctx, sess, query.TaskUpdate, projectID, taskID, func(ctx context.Context, api *backend.API) (domain.Task, error) {
		return api.Tasks.Update(ctx, projectID, taskID, in)
	})
}

// MoveTask relocates a task to another column of the same project.
func (s *Service) MoveTask(ctx context.Context, sess *session.Session, projectID, taskID int64, mv domain.TaskMove) (domain.Task, error) {
	return s.taskWrite(ctx, sess, query.TaskMove, projectID, taskID, func(ctx context.Context, api *backend.API) (domain.Task, error) {
		return api.Tasks.Move(ctx, projectID, taskID, mv)
	})
}

// DeleteTask deletes a task or subtask. The upstream answers with no body, so
// the parent is unknown and every subtask list of the project is dropped.
func (s *Service) DeleteTask(ctx context.Context, sess *session.Session, projectID, taskID int64) error {
	err := mutateErr(ctx, s, sess, query.TaskDelete, taskScope(projectID, taskID), func(ctx context.Context, api *backend.API) error {
		return api.Tasks.Delete(ctx, projectID, taskID)
	})
	if err != nil {
		return err
	}
	s.cache.InvalidateKeys(ctx, sess.Subject, query.Key{Resource: query.Subtasks, Scope: projectScope(projectID)})
	return nil
}

func (s *Service) AssignTask(ctx context.Context, sess *session.Session, projectID, taskID, userID int64) (domain.Task, error) {
	return s.taskWrite(ctx, sess, query.TaskAssign, projectID, taskID, func(ctx context.Context, api *backend.API) (domain.Task, error) {
		return api.Tasks.Assign(ctx, projectID, taskID, userID)
	})
}

func (s *Service) UnassignTask(ctx context.Context, sess *session.Session, projectID, taskID, userID int64) (domain.Task, error) {
	return s.taskWrite(ctx, sess, query.TaskUnassign, projectID, taskID, func(ctx context.Context, api *backend.API) (domain.Task, error) {
		return api.Tasks.Unassign(ctx, projectID, taskID, userID)
	})
}

func (s *Service) Subtasks(ctx context.Context, sess *session.Session, projectID, taskID int64) ([]domain.Task, error) {
	key := query.Key{Resource: query.Subtasks, Scope: taskScope(projectID, taskID)}
	return fetch(ctx, s, sess, key, func(ctx context.Context, api *backend.API) ([]domain.Task, error) {
		return api.Tasks.Subtasks(ctx, projectID, taskID)
	})
}

// CreateSubtask creates a task under parentID.
func (s *Service) CreateSubtask(ctx context.Context, sess *session.Session, projectID, parentID int64, in domain.TaskInput) (domain.Task, error) {
	in.ParentTaskID = &parentID
	return mutate(ctx, s, sess, query.SubtaskCreate, taskScope(projectID, parentID), func(ctx context.Context, api *backend.API) (domain.Task, error) {
		return api.Tasks.Create(ctx, projectID, in)
	})
}

// UpdateSubtask updates subtaskID, a child of parentID.
func (s *Service) UpdateSubtask(ctx context.Context, sess *session.Session, projectID, parentID, subtaskID int64, in domain.TaskInput) (domain.Task, error) {
	return mutate(ctx, s, sess, query.SubtaskUpdate, taskScope(projectID, parentID), func(ctx context.Context, api *backend.API) (domain.Task, error) {
		return api.Tasks.Update(ctx, projectID, subtaskID, in)
	})
}

func (s *Service) Processes(ctx context.Context, sess *session.Session, projectID int64) ([]domain.Process, error) {
	key := query.Key{Resource: query.Processes, Scope: projectScope(projectID)}
	return fetch(ctx, s, sess, key, func(ctx context.Context, api *backend.API) ([]domain.Process, error) {
		return api.Processes.List(ctx, projectID)
	})
}

func (s *Service) CreateProcess(ctx context.Context, sess *session.Session, projectID int64, in domain.ProcessInput) (domain.Process, error) {
	return mutate(ctx, s, sess, query.ProcessCreate, projectScope(projectID), func(ctx context.Context, api *backend.API) (domain.Process, error) {
		return api.Processes.Create(ctx, projectID, in)
	})
}

func (s *Service) UpdateProcess(ctx context.Context, sess *session.Session, projectID, processID int64, in domain.ProcessInput) (domain.Process, error) {
	return mutate(ctx, s, sess, query.ProcessUpdate, projectScope(projectID), func(ctx context.Context, api *backend.API) (domain.Process, error) {
		return api.Processes.Update(ctx, projectID, processID, in)
	})
}

func (s *Service) ReorderProcess(ctx context.Context, sess *session.Session, projectID, processID int64, newPosition int) ([]domain.Process, error) {
	return mutate(ctx, s, sess, query.ProcessReorder, projectScope(projectID), func(ctx context.Context, api *backend.API) ([]domain.Process, error) {
		return api.Processes.Reorder(ctx, projectID, processID, newPosition)
	})
}

func (s *Service) DeleteProcess(ctx context.Context, sess *session.Session, projectID, processID int64) error {
	return mutateErr(ctx, s, sess, query.ProcessDelete, projectScope(projectID), func(ctx context.Context, api *backend.API) error {
		return api.Processes.Delete(ctx, projectID, processID)
	})
}

// CreateDefaultProcesses seeds a new project with the standard columns.
func (s *Service) CreateDefaultProcesses(ctx context.Context, sess *session.Session, projectID int64) ([]domain.Process, error) {
	return mutate(ctx, s, sess, query.ProcessDefaults, projectScope(projectID), func(ctx context.Context, api *backend.API) ([]domain.Process, error) {
		return api.Processes.CreateDefaults(ctx, projectID)
	})
}
