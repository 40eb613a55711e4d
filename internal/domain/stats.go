package domain

// TaskStats aggregates an owner's tasks. Every status and priority is present
// in the maps, zero when no task has it.
type TaskStats struct {
	Total      int64                  `json:"total"`
	ByStatus   map[TaskStatus]int64   `json:"byStatus"`
	ByPriority map[TaskPriority]int64 `json:"byPriority"`
}

// NewTaskStats returns zero-filled statistics.
func NewTaskStats() TaskStats {
	s := TaskStats{
		ByStatus:   make(map[TaskStatus]int64, len(TaskStatuses)),
		ByPriority: make(map[TaskPriority]int64, len(TaskPriorities)),
	}
	for _, status := range TaskStatuses {
		s.ByStatus[status] = 0
	}
	for _, priority := range TaskPriorities {
		s.ByPriority[priority] = 0
	}
	return s
}

// Add counts n tasks with the given status and priority.
func (s *TaskStats) Add(status TaskStatus, priority TaskPriority, n int64) {
	s.Total += n
	s.ByStatus[status] += n
	s.ByPriority[priority] += n
}
