package domain

import (
	"strings"
)

// Pagination bounds for task listings.
const (
	DefaultPageNumber = 1
	DefaultPageLimit  = 10
	MaxPageLimit      = 100
)

// TaskFilter narrows a task listing. Nil Status/Priority and an empty Search
// match every task.
type TaskFilter struct {
	Status   *TaskStatus
	Priority *TaskPriority
	Search   string
}

// Validate checks the enumerated filter values.
func (f TaskFilter) Validate() error {
	verr := &ValidationError{}
	if f.Status != nil && !f.Status.Valid() {
		verr.Add("status", MsgInvalidStatus)
	}
	if f.Priority != nil && !f.Priority.Valid() {
		verr.Add("priority", MsgInvalidPriority)
	}
	return verr.OrNil()
}

// Matches reports whether t satisfies the filter: exact status and priority
// match and a case-insensitive substring match of Search against the title
// or description.
func (f TaskFilter) Matches(t *Task) bool {
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	return MatchesSearch(t, strings.TrimSpace(f.Search))
}

// MatchesSearch reports whether term occurs in the task's title or
// description, ignoring case. The term is matched as given, surrounding
// spaces included; an empty term matches everything.
func MatchesSearch(t *Task, term string) bool {
	term = strings.ToLower(term)
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Title), term) ||
		strings.Contains(strings.ToLower(t.Description), term)
}

// Page selects a window of an ordered listing. Number is 1-based.
type Page struct {
	Number int
	Limit  int
}

// DefaultPage returns the first page with the default limit.
func DefaultPage() Page {
	return Page{Number: DefaultPageNumber, Limit: DefaultPageLimit}
}

// NewPage validates a page request. Limits above MaxPageLimit are clamped.
func NewPage(number, limit int) (Page, error) {
	verr := &ValidationError{}
	if number < 1 {
		verr.Add("page", "Page must be a positive integer")
	}
	if limit < 1 {
		verr.Add("limit", "Limit must be a positive integer")
	}
	if err := verr.OrNil(); err != nil {
		return Page{}, err
	}

	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return Page{Number: number, Limit: limit}, nil
}

// Offset is the number of items preceding the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// Pages returns how many pages of p.Limit items hold total items.
func (p Page) Pages(total int64) int {
	if p.Limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}
