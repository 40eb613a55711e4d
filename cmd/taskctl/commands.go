package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"sort"

	"github.com/google/uuid"

	"github.com/phrazzld/taskflow-api/internal/client"
	"github.com/phrazzld/taskflow-api/internal/viewstate"
)

// cli is the state shared by every command.
type cli struct {
	client  *client.Client
	session *viewstate.Session
	out     io.Writer
}

// api returns the client authenticated as the current session.
func (c *cli) api() *client.Client {
	return c.session.Client(c.client)
}

type command struct {
	summary string
	run     func(ctx context.Context, c *cli, args []string) error
}

var commands = map[string]command{
	"register":  {summary: "create an account and print its token", run: runRegister},
	"login":     {summary: "sign in and print the session token", run: runLogin},
	"me":        {summary: "show the signed-in user", run: runMe},
	"profile":   {summary: "change your name and email", run: runProfile},
	"list":      {summary: "list tasks, filtered locally by status, priority and search", run: runList},
	"stats":     {summary: "show task counts by status and priority", run: runStats},
	"dashboard": {summary: "show stats and the most recent tasks", run: runDashboard},
	"create":    {summary: "create a task", run: runCreate},
	"update":    {summary: "update fields of a task: update [flags] <id>", run: runUpdate},
	"delete":    {summary: "delete a task: delete <id>", run: runDelete},
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// newFlagSet returns a flag set whose parse errors are reported as usage
// errors.
func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("taskctl "+name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return err
		}
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return nil
}

// taskID reads the single positional task id.
func taskID(fs *flag.FlagSet) (uuid.UUID, error) {
	if fs.NArg() != 1 {
		return uuid.Nil, fmt.Errorf("%w: expected exactly one task id", errUsage)
	}
	id, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid task id %q", errUsage, fs.Arg(0))
	}
	return id, nil
}

func runRegister(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet("register", c.out)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password, at least 6 characters")
	if err := parse(fs, args); err != nil {
		return err
	}

	res, err := c.client.Register(ctx, *name, *email, *password)
	if err != nil {
		return err
	}
	*c.session = *viewstate.NewSession(res)
	printToken(c.out, res.Token)
	renderUser(c.out, &res.User)
	return nil
}

func runLogin(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet("login", c.out)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	if err := parse(fs, args); err != nil {
		return err
	}

	res, err := c.client.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	*c.session = *viewstate.NewSession(res)
	printToken(c.out, res.Token)
	return nil
}

func runMe(ctx context.Context, c *cli, args []string) error {
	if err := parse(newFlagSet("me", c.out), args); err != nil {
		return err
	}
	if !c.session.Authenticated() {
		return viewstate.ErrNotSignedIn
	}
	user, err := c.api().Me(ctx)
	if err != nil {
		return err
	}
	c.session.User = *user
	renderUser(c.out, user)
	return nil
}

func runProfile(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet("profile", c.out)
	name := fs.String("name", "", "new display name")
	email := fs.String("email", "", "new email address")
	if err := parse(fs, args); err != nil {
		return err
	}

	user, err := viewstate.NewProfile(c.api(), c.session).Save(ctx, *name, *email)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Profile updated.")
	renderUser(c.out, user)
	return nil
}

func runList(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet("list", c.out)
	status := fs.String("status", viewstate.FilterAll, "pending, in-progress, completed or all")
	priority := fs.String("priority", viewstate.FilterAll, "low, medium, high or all")
	search := fs.String("search", "", "case-insensitive text in title or description")
	if err := parse(fs, args); err != nil {
		return err
	}

	board := viewstate.NewBoard(c.api(), c.session)
	if err := board.Load(ctx); err != nil {
		return err
	}
	board.SetFilter(viewstate.Filter{Status: *status, Priority: *priority, Search: *search})

	visible := board.Visible()
	renderTasks(c.out, visible)
	fmt.Fprintf(c.out, "%d of %d tasks\n", len(visible), board.Total())
	return nil
}

func runStats(ctx context.Context, c *cli, args []string) error {
	if err := parse(newFlagSet("stats", c.out), args); err != nil {
		return err
	}
	if !c.session.Authenticated() {
		return viewstate.ErrNotSignedIn
	}
	stats, err := c.api().Stats(ctx)
	if err != nil {
		return err
	}
	renderStats(c.out, stats)
	return nil
}

func runDashboard(ctx context.Context, c *cli, args []string) error {
	if err := parse(newFlagSet("dashboard", c.out), args); err != nil {
		return err
	}
	if c.session.Authenticated() && c.session.User.Name == "" {
		if user, err := c.api().Me(ctx); err == nil {
			c.session.User = *user
		}
	}

	dash, err := viewstate.LoadDashboard(ctx, c.api(), c.session)
	if err != nil {
		return err
	}
	if dash.User.Name != "" {
		fmt.Fprintf(c.out, "Welcome back, %s\n\n", dash.User.Name)
	}
	renderStats(c.out, &dash.Stats)
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "Recent tasks")
	renderTasks(c.out, dash.Recent)
	return nil
}

func runCreate(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet("create", c.out)
	title := fs.String("title", "", "task title")
	description := fs.String("description", "", "task description")
	status := fs.String("status", "", "initial status, default pending")
	priority := fs.String("priority", "", "priority, default medium")
	due := fs.String("due", "", "due date, YYYY-MM-DD or RFC 3339")
	if err := parse(fs, args); err != nil {
		return err
	}

	in := client.NewTask{
		Title:       *title,
		Description: *description,
		Status:      *status,
		Priority:    *priority,
	}
	if *due != "" {
		in.DueDate = due
	}

	task, err := viewstate.NewBoard(c.api(), c.session).Create(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Created task %s\n", task.ID)
	renderTask(c.out, task)
	return nil
}

func runUpdate(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet("update", c.out)
	title := fs.String("title", "", "new title")
	description := fs.String("description", "", "new description")
	status := fs.String("status", "", "new status")
	priority := fs.String("priority", "", "new priority")
	due := fs.String("due", "", "new due date, YYYY-MM-DD or RFC 3339")
	clearDue := fs.Bool("clear-due", false, "remove the due date")
	if err := parse(fs, args); err != nil {
		return err
	}
	id, err := taskID(fs)
	if err != nil {
		return err
	}

	// Only flags given on the command line are sent.
	var update client.TaskUpdate
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			update.Title = title
		case "description":
			update.Description = description
		case "status":
			update.Status = status
		case "priority":
			update.Priority = priority
		case "due":
			update.DueDate = due
		case "clear-due":
			update.ClearDueDate = *clearDue
		}
	})

	task, err := viewstate.NewBoard(c.api(), c.session).Update(ctx, id, update)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Task updated.")
	renderTask(c.out, task)
	return nil
}

func runDelete(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet("delete", c.out)
	if err := parse(fs, args); err != nil {
		return err
	}
	id, err := taskID(fs)
	if err != nil {
		return err
	}

	if err := viewstate.NewBoard(c.api(), c.session).Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Deleted task %s\n", id)
	return nil
}

func printToken(w io.Writer, token string) {
	fmt.Fprintf(w, "export TASKFLOW_TOKEN=%s\n", token)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
