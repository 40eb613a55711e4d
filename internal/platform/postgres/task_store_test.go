package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var taskColumnNames = []string{
	"id", "user_id", "title", "description", "status", "priority", "due_date", "created_at", "updated_at",
}

func addTaskRow(rows *sqlmock.Rows, task *domain.Task) *sqlmock.Rows {
	var due interface{}
	if task.DueDate != nil {
		due = *task.DueDate
	}
	return rows.AddRow(
		task.ID.String(), task.UserID.String(), task.Title, task.Description,
		string(task.Status), string(task.Priority), due, task.CreatedAt, task.UpdatedAt,
	)
}

func newTestTask(t *testing.T, ownerID uuid.UUID, title string) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(ownerID, domain.TaskFields{Title: title}, time.Now())
	require.NoError(t, err)
	return task
}

func TestNewPostgresTaskStore_NilDBPanics(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { NewPostgresTaskStore(nil, nil) })
}

func TestPostgresTaskStore_Create(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	task := newTestTask(t, uuid.New(), "Write spec")
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tasks")).
		WithArgs(task.ID, task.UserID, "Write spec", "", "pending", "medium", nil, task.CreatedAt, task.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewPostgresTaskStore(db, nil).Create(context.Background(), task))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTaskStore_List(t *testing.T) {
	t.Parallel()

	t.Run("filters and paginates in one transaction", func(t *testing.T) {
		t.Parallel()
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		ownerID := uuid.New()
		completed := domain.StatusCompleted
		filter := domain.TaskFilter{Status: &completed, Search: "50%_off"}
		page := domain.Page{Number: 2, Limit: 1}
		task := newTestTask(t, ownerID, "50%_off sale")
		task.Status = domain.StatusCompleted

		where := `user_id = $1 AND status = $2 AND (title ILIKE $3 ESCAPE '\' OR description ILIKE $3 ESCAPE '\')`
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM tasks WHERE "+where)).
			WithArgs(ownerID, "completed", `%50\%\_off%`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE "+where+" ORDER BY created_at DESC, id DESC LIMIT $4 OFFSET $5")).
			WithArgs(ownerID, "completed", `%50\%\_off%`, 1, 1).
			WillReturnRows(addTaskRow(sqlmock.NewRows(taskColumnNames), task))
		mock.ExpectCommit()

		tasks, total, err := NewPostgresTaskStore(db, nil).List(context.Background(), ownerID, filter, page)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, tasks, 1)
		assert.Equal(t, task.ID, tasks[0].ID)
		assert.Equal(t, domain.StatusCompleted, tasks[0].Status)
		assert.Nil(t, tasks[0].DueDate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty result skips page query", func(t *testing.T) {
		t.Parallel()
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		ownerID := uuid.New()
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM tasks WHERE user_id = $1")).
			WithArgs(ownerID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectCommit()

		tasks, total, err := NewPostgresTaskStore(db, nil).List(context.Background(), ownerID, domain.TaskFilter{}, domain.DefaultPage())
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.NotNil(t, tasks)
		assert.Empty(t, tasks)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query failure rolls back", func(t *testing.T) {
		t.Parallel()
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		_, _, err = NewPostgresTaskStore(db, nil).List(context.Background(), uuid.New(), domain.TaskFilter{}, domain.DefaultPage())
		var storeErr *store.StoreError
		assert.ErrorAs(t, err, &storeErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresTaskStore_Get(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	ownerID := uuid.New()
	due := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	task := newTestTask(t, ownerID, "Mine")
	task.DueDate = &due

	query := regexp.QuoteMeta("FROM tasks WHERE id = $1 AND user_id = $2")
	mock.ExpectQuery(query).WithArgs(task.ID, ownerID).
		WillReturnRows(addTaskRow(sqlmock.NewRows(taskColumnNames), task))
	otherOwner := uuid.New()
	mock.ExpectQuery(query).WithArgs(task.ID, otherOwner).
		WillReturnRows(sqlmock.NewRows(taskColumnNames))

	s := NewPostgresTaskStore(db, nil)

	got, err := s.Get(context.Background(), ownerID, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DueDate)
	assert.True(t, due.Equal(*got.DueDate))

	_, err = s.Get(context.Background(), otherOwner, task.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound, "another owner's task must look missing")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTaskStore_Update(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	now := time.Now().UTC()

	t.Run("single atomic statement", func(t *testing.T) {
		t.Parallel()
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		task := newTestTask(t, ownerID, "Old")
		updated := *task
		updated.Title = "X"
		updated.UpdatedAt = now

		title := "X"
		mock.ExpectQuery(regexp.QuoteMeta(
			"UPDATE tasks SET title = $1, due_date = NULL, updated_at = $2 WHERE id = $3 AND user_id = $4 RETURNING",
		)).
			WithArgs("X", now, task.ID, ownerID).
			WillReturnRows(addTaskRow(sqlmock.NewRows(taskColumnNames), &updated))

		got, err := NewPostgresTaskStore(db, nil).Update(context.Background(), ownerID, task.ID,
			domain.TaskPatch{Title: &title, ClearDueDate: true}, now)
		require.NoError(t, err)
		assert.Equal(t, "X", got.Title)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		status := domain.StatusCompleted
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE tasks SET status = $1, updated_at = $2")).
			WillReturnRows(sqlmock.NewRows(taskColumnNames))

		_, err = NewPostgresTaskStore(db, nil).Update(context.Background(), ownerID, uuid.New(),
			domain.TaskPatch{Status: &status}, now)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})
}

func TestPostgresTaskStore_Delete(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	ownerID, taskID := uuid.New(), uuid.New()
	query := regexp.QuoteMeta("DELETE FROM tasks WHERE id = $1 AND user_id = $2")
	mock.ExpectExec(query).WithArgs(taskID, ownerID).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query).WithArgs(taskID, ownerID).WillReturnResult(sqlmock.NewResult(0, 0))

	s := NewPostgresTaskStore(db, nil)
	require.NoError(t, s.Delete(context.Background(), ownerID, taskID))
	assert.ErrorIs(t, s.Delete(context.Background(), ownerID, taskID), store.ErrTaskNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTaskStore_Stats(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	ownerID := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY status, priority")).
		WithArgs(ownerID).
		WillReturnRows(sqlmock.NewRows([]string{"status", "priority", "count"}).
			AddRow("pending", "high", 2).
			AddRow("completed", "low", 3))

	stats, err := NewPostgresTaskStore(db, nil).Stats(context.Background(), ownerID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.Total)
	assert.Equal(t, int64(2), stats.ByStatus[domain.StatusPending])
	assert.Equal(t, int64(0), stats.ByStatus[domain.StatusInProgress])
	assert.Equal(t, int64(3), stats.ByStatus[domain.StatusCompleted])
	assert.Equal(t, int64(2), stats.ByPriority[domain.PriorityHigh])
	assert.Equal(t, int64(0), stats.ByPriority[domain.PriorityMedium])
	assert.NoError(t, mock.ExpectationsWereMet())
}
