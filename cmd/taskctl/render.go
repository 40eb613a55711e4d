package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/phrazzld/taskflow-api/internal/domain"
)

const dateLayout = "2006-01-02"

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	return table
}

func renderUser(w io.Writer, u *domain.User) {
	table := newTable(w, "Field", "Value")
	table.AppendBulk([][]string{
		{"ID", u.ID.String()},
		{"Name", u.Name},
		{"Email", u.Email},
		{"Member since", u.CreatedAt.Format(dateLayout)},
	})
	table.Render()
}

func renderTasks(w io.Writer, tasks []domain.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks.")
		return
	}
	table := newTable(w, "ID", "Title", "Status", "Priority", "Due", "Created")
	for i := range tasks {
		t := &tasks[i]
		table.Append([]string{
			t.ID.String(),
			t.Title,
			string(t.Status),
			string(t.Priority),
			formatDue(t),
			t.CreatedAt.Format(dateLayout),
		})
	}
	table.Render()
}

func renderTask(w io.Writer, t *domain.Task) {
	table := newTable(w, "Field", "Value")
	table.AppendBulk([][]string{
		{"ID", t.ID.String()},
		{"Title", t.Title},
		{"Description", t.Description},
		{"Status", string(t.Status)},
		{"Priority", string(t.Priority)},
		{"Due", formatDue(t)},
		{"Updated", t.UpdatedAt.Format("2006-01-02 15:04")},
	})
	table.Render()
}

func renderStats(w io.Writer, stats *domain.TaskStats) {
	table := newTable(w, "Group", "Value", "Tasks")
	table.Append([]string{"total", "", strconv.FormatInt(stats.Total, 10)})
	for _, s := range domain.TaskStatuses {
		table.Append([]string{"status", string(s), strconv.FormatInt(stats.ByStatus[s], 10)})
	}
	for _, p := range domain.TaskPriorities {
		table.Append([]string{"priority", string(p), strconv.FormatInt(stats.ByPriority[p], 10)})
	}
	table.Render()
}

func formatDue(t *domain.Task) string {
	if t.DueDate == nil {
		return "-"
	}
	return t.DueDate.Format(dateLayout)
}
