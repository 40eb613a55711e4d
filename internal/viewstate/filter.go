package viewstate

import (
	"github.com/google/uuid"

	"github.com/phrazzld/taskflow-api/internal/domain"
)

// FilterAll disables the status or priority constraint.
const FilterAll = "all"

// Filter is the client-side task filter. Empty Status or Priority behave like
// FilterAll.
type Filter struct {
	Status   string
	Priority string
	Search   string
}

// DefaultFilter matches every task.
func DefaultFilter() Filter {
	return Filter{Status: FilterAll, Priority: FilterAll}
}

func (f Filter) matches(t *domain.Task) bool {
	if f.Status != "" && f.Status != FilterAll && string(t.Status) != f.Status {
		return false
	}
	if f.Priority != "" && f.Priority != FilterAll && string(t.Priority) != f.Priority {
		return false
	}
	return domain.MatchesSearch(t, f.Search)
}

// FilterTasks returns the tasks that satisfy f, in their original order. The
// result is always a new slice, empty rather than nil when nothing matches.
func FilterTasks(tasks []domain.Task, f Filter) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	for i := range tasks {
		if f.matches(&tasks[i]) {
			out = append(out, tasks[i])
		}
	}
	return out
}

// ApplyCreated returns prev with task prepended, matching the server's
// newest-first order.
func ApplyCreated(prev []domain.Task, task domain.Task) []domain.Task {
	out := make([]domain.Task, 0, len(prev)+1)
	out = append(out, task)
	return append(out, prev...)
}

// ApplyUpdated returns prev with the task sharing task.ID replaced. Tasks not
// in prev are ignored.
func ApplyUpdated(prev []domain.Task, task domain.Task) []domain.Task {
	out := make([]domain.Task, len(prev))
	for i, t := range prev {
		if t.ID == task.ID {
			out[i] = task
			continue
		}
		out[i] = t
	}
	return out
}

// ApplyDeleted returns prev without the task identified by id.
func ApplyDeleted(prev []domain.Task, id uuid.UUID) []domain.Task {
	out := make([]domain.Task, 0, len(prev))
	for _, t := range prev {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}
