package viewstate

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/phrazzld/taskflow-api/internal/client"
	"github.com/phrazzld/taskflow-api/internal/domain"
)

// TaskAPI is the part of the client the task views need.
type TaskAPI interface {
	ListTasks(ctx context.Context, q client.ListQuery) (*client.TaskList, error)
	Stats(ctx context.Context) (*domain.TaskStats, error)
	CreateTask(ctx context.Context, task client.NewTask) (*domain.Task, error)
	UpdateTask(ctx context.Context, id uuid.UUID, update client.TaskUpdate) (*domain.Task, error)
	DeleteTask(ctx context.Context, id uuid.UUID) error
}

// ErrNotSignedIn is returned by views used without an authenticated session.
var ErrNotSignedIn = errors.New("not signed in")

// Board is the task list view: the tasks fetched from the server, the
// current filter and the derived visible list. Mutations go to the server
// first and the returned canonical task is reconciled into the list; on
// failure the board is left as it was.
//
// A Board is not safe for concurrent use.
type Board struct {
	api     TaskAPI
	session *Session

	tasks   []domain.Task
	filter  Filter
	visible []domain.Task
	total   int64
}

// NewBoard returns an empty board with the default filter.
func NewBoard(api TaskAPI, session *Session) *Board {
	return &Board{
		api:     api,
		session: session,
		tasks:   []domain.Task{},
		filter:  DefaultFilter(),
		visible: []domain.Task{},
	}
}

// Load replaces the board's tasks with the caller's newest tasks, up to the
// server's page limit.
func (b *Board) Load(ctx context.Context) error {
	if !b.session.Authenticated() {
		return ErrNotSignedIn
	}
	list, err := b.api.ListTasks(ctx, client.ListQuery{Limit: domain.MaxPageLimit})
	if err != nil {
		return err
	}
	b.total = list.Pagination.Total
	b.set(list.Tasks)
	return nil
}

// SetFilter changes the filter and recomputes the visible list.
func (b *Board) SetFilter(f Filter) {
	b.filter = f
	b.visible = FilterTasks(b.tasks, b.filter)
}

// Create adds a task on the server and prepends the stored copy.
func (b *Board) Create(ctx context.Context, task client.NewTask) (*domain.Task, error) {
	if !b.session.Authenticated() {
		return nil, ErrNotSignedIn
	}
	created, err := b.api.CreateTask(ctx, task)
	if err != nil {
		return nil, err
	}
	b.total++
	b.set(ApplyCreated(b.tasks, *created))
	return created, nil
}

// Update patches a task on the server and swaps in the stored copy.
func (b *Board) Update(ctx context.Context, id uuid.UUID, update client.TaskUpdate) (*domain.Task, error) {
	if !b.session.Authenticated() {
		return nil, ErrNotSignedIn
	}
	updated, err := b.api.UpdateTask(ctx, id, update)
	if err != nil {
		return nil, err
	}
	b.set(ApplyUpdated(b.tasks, *updated))
	return updated, nil
}

// Delete removes a task on the server and then from the board.
func (b *Board) Delete(ctx context.Context, id uuid.UUID) error {
	if !b.session.Authenticated() {
		return ErrNotSignedIn
	}
	if err := b.api.DeleteTask(ctx, id); err != nil {
		return err
	}
	if b.total > 0 {
		b.total--
	}
	b.set(ApplyDeleted(b.tasks, id))
	return nil
}

// Tasks returns every loaded task.
func (b *Board) Tasks() []domain.Task {
	return append([]domain.Task(nil), b.tasks...)
}

// Visible returns the loaded tasks that pass the current filter.
func (b *Board) Visible() []domain.Task {
	return append([]domain.Task{}, b.visible...)
}

// Filter returns the current filter.
func (b *Board) Filter() Filter {
	return b.filter
}

// Total is the server's count of the caller's tasks, which may exceed
// len(Tasks()) when the caller has more than one page.
func (b *Board) Total() int64 {
	return b.total
}

func (b *Board) set(tasks []domain.Task) {
	b.tasks = tasks
	b.visible = FilterTasks(b.tasks, b.filter)
}
