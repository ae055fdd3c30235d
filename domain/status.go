package domain

// View holds the display fields derived from a project's task data.
type View struct {
	Progress   int
	ViewStatus ProjectStatus
}

// DeriveProjectView computes the progress percentage and display status of p
// as seen by viewerID. The persisted status is not kept in sync with task
// completion upstream, so the display fields are recomputed from the tasks.
// Only top-level tasks count; subtasks are ignored.
func DeriveProjectView(p Project, viewerID int64) View {
	if p.Archived {
		if p.CreatedBy != nil && p.CreatedBy.ID == viewerID {
			return View{ViewStatus: ProjectArchived}
		}
		return View{ViewStatus: ProjectCancelled}
	}

	fallback := View{ViewStatus: p.Status.orActive()}
	if len(p.Processes) == 0 {
		return fallback
	}

	var total, todo, inFlight, done int
	for _, proc := range p.Processes {
		for _, t := range proc.Tasks {
			if !t.TopLevel() {
				continue
			}
			total++
			switch t.Status {
			case TaskTodo:
				todo++
			case TaskInProgress, TaskInReview, TaskReview:
				inFlight++
			case TaskDone:
				done++
			}
		}
	}
	if total == 0 {
		return fallback
	}

	v := View{Progress: done * 100 / total}
	switch {
	case done == total:
		v.ViewStatus = ProjectDone
	case inFlight > 0 || done > 0:
		v.ViewStatus = ProjectInProgress
	case todo == total:
		v.ViewStatus = ProjectActive
	default:
		v.ViewStatus = fallback.ViewStatus
	}
	return v
}

// PersistedStatusFor maps a derived view status to the status written back
// upstream when a project is re-synchronised from its tasks. Derived labels
// without a persisted counterpart keep current.
func PersistedStatusFor(derived, current ProjectStatus) ProjectStatus {
	switch derived {
	case ProjectDone:
		return ProjectCompleted
	case ProjectOnHold:
		return ProjectOnHold
	case ProjectActive:
		return ProjectActive
	default:
		return current
	}
}

func (s ProjectStatus) orActive() ProjectStatus {
	if s == "" {
		return ProjectActive
	}
	return s
}
