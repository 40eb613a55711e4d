package viewstate

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/phrazzld/taskflow-api/internal/client"
	"github.com/phrazzld/taskflow-api/internal/domain"
)

// RecentTaskCount is how many tasks the dashboard shows.
const RecentTaskCount = 5

// Dashboard is the landing view: task statistics and the newest tasks.
type Dashboard struct {
	User   domain.User
	Stats  domain.TaskStats
	Recent []domain.Task
}

// LoadDashboard fetches the statistics and the recent tasks concurrently.
// If either request fails the other is cancelled and the first error is
// returned.
func LoadDashboard(ctx context.Context, api TaskAPI, session *Session) (*Dashboard, error) {
	if !session.Authenticated() {
		return nil, ErrNotSignedIn
	}

	var (
		stats *domain.TaskStats
		list  *client.TaskList
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = api.Stats(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		list, err = api.ListTasks(gctx, client.ListQuery{Limit: RecentTaskCount})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	recent := list.Tasks
	if len(recent) > RecentTaskCount {
		recent = recent[:RecentTaskCount]
	}
	return &Dashboard{
		User:   session.User,
		Stats:  *stats,
		Recent: append([]domain.Task{}, recent...),
	}, nil
}

// Count returns the number of tasks with the given status.
func (d *Dashboard) Count(status domain.TaskStatus) int64 {
	return d.Stats.ByStatus[status]
}
