package tools

import (
	"fmt"
	"strings"
	"time"

	"github.com/ariadng/clickup-mcp/internal/core"
)

const (
	notSet = "Not set"
	none   = "None"

	// isoMillis matches the millisecond UTC timestamps hosts already parse.
	isoMillis = "2006-01-02T15:04:05.000Z07:00"
)

func statusText(task *core.Task) string {
	if task.Status == nil || task.Status.Status == "" {
		return notSet
	}
	return task.Status.Status
}

func priorityText(task *core.Task) string {
	if task.Priority == nil || task.Priority.Priority == "" {
		return notSet
	}
	return task.Priority.Priority
}

func assigneesText(users []core.User) string {
	if len(users) == 0 {
		return none
	}
	names := make([]string, 0, len(users))
	for _, user := range users {
		names = append(names, user.Username)
	}
	return strings.Join(names, ", ")
}

func dueText(task *core.Task) string {
	due, ok := task.Due()
	if !ok {
		return notSet
	}
	return due.UTC().Format(isoMillis)
}

func orNone(value string) string {
	if value == "" {
		return none
	}
	return value
}

// renderTaskSaved renders the confirmation for create_task and update_task.
func renderTaskSaved(task *core.Task, verb string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task \"%s\" %s successfully!\n\n", task.Name, verb)
	fmt.Fprintf(&b, "Task ID: %s\n", task.ID)
	fmt.Fprintf(&b, "URL: %s\n", task.URL)
	fmt.Fprintf(&b, "Status: %s\n", statusText(task))
	fmt.Fprintf(&b, "Priority: %s\n", priorityText(task))
	fmt.Fprintf(&b, "Assignees: %s", assigneesText(task.Assignees))
	return b.String()
}

func renderTasks(tasks []core.Task) string {
	entries := make([]string, 0, len(tasks))
	for i := range tasks {
		task := &tasks[i]
		entries = append(entries, fmt.Sprintf(
			"• %s (ID: %s)\n  Status: %s | Priority: %s\n  Assignees: %s\n  Due: %s\n  URL: %s",
			task.Name, task.ID,
			statusText(task), priorityText(task),
			assigneesText(task.Assignees),
			dueText(task),
			task.URL,
		))
	}
	return fmt.Sprintf("Found %d tasks:\n\n%s", len(tasks), strings.Join(entries, "\n\n"))
}

func renderTask(task *core.Task) string {
	tags := make([]string, 0, len(task.Tags))
	for _, tag := range task.Tags {
		tags = append(tags, tag.Name)
	}

	fields := make([]string, 0, len(task.CustomFields))
	for _, field := range task.CustomFields {
		fields = append(fields, fmt.Sprintf("%s: %v", field.Name, field.Value))
	}

	listName := ""
	if task.List != nil {
		listName = task.List.Name
	}

	var b strings.Builder
	b.WriteString("Task Details:\n\n")
	fmt.Fprintf(&b, "Name: %s\n", task.Name)
	fmt.Fprintf(&b, "ID: %s\n", task.ID)
	fmt.Fprintf(&b, "Description: %s\n", orNone(task.Description))
	fmt.Fprintf(&b, "Status: %s\n", statusText(task))
	fmt.Fprintf(&b, "Priority: %s\n", priorityText(task))
	fmt.Fprintf(&b, "Assignees: %s\n", assigneesText(task.Assignees))
	fmt.Fprintf(&b, "Tags: %s\n", orNone(strings.Join(tags, ", ")))
	fmt.Fprintf(&b, "Due Date: %s\n", dueText(task))
	fmt.Fprintf(&b, "List: %s\n", listName)
	fmt.Fprintf(&b, "URL: %s\n", task.URL)
	if len(task.Subtasks) > 0 {
		fmt.Fprintf(&b, "Subtasks: %d\n", len(task.Subtasks))
		for i := range task.Subtasks {
			sub := &task.Subtasks[i]
			fmt.Fprintf(&b, "  • %s (ID: %s) [%s]\n", sub.Name, sub.ID, statusText(sub))
		}
	}
	fmt.Fprintf(&b, "\nCustom Fields: %s", orNone(strings.Join(fields, ", ")))
	return b.String()
}

func renderWorkspaces(teams []core.Workspace) string {
	entries := make([]string, 0, len(teams))
	for _, team := range teams {
		entries = append(entries, fmt.Sprintf("• %s (ID: %s)\n  Members: %d\n  Color: %s",
			team.Name, team.ID, len(team.Members), team.Color))
	}
	return "Workspaces:\n\n" + strings.Join(entries, "\n\n")
}

func renderSpaces(spaces []core.Space) string {
	entries := make([]string, 0, len(spaces))
	for _, space := range spaces {
		entries = append(entries, fmt.Sprintf("• %s (ID: %s)\n  Private: %t\n  Statuses: %d",
			space.Name, space.ID, space.Private, len(space.Statuses)))
	}
	return "Spaces:\n\n" + strings.Join(entries, "\n\n")
}

func renderLists(lists []core.List) string {
	entries := make([]string, 0, len(lists))
	for _, list := range lists {
		spaceName := ""
		if list.Space != nil {
			spaceName = list.Space.Name
		}
		taskCount := list.TaskCount.String()
		if taskCount == "" {
			taskCount = "0"
		}
		entries = append(entries, fmt.Sprintf("• %s (ID: %s)\n  Space: %s\n  Task Count: %s\n  Archived: %t",
			list.Name, list.ID, spaceName, taskCount, list.Archived))
	}
	return "Lists:\n\n" + strings.Join(entries, "\n\n")
}

func renderUser(user *core.AuthorizedUser) string {
	weekStart := notSet
	if user.WeekStartDay != nil {
		switch *user.WeekStartDay {
		case 0:
			weekStart = time.Sunday.String()
		case 1:
			weekStart = time.Monday.String()
		default:
			weekStart = fmt.Sprintf("%d", *user.WeekStartDay)
		}
	}

	var b strings.Builder
	b.WriteString("Authorized User:\n\n")
	fmt.Fprintf(&b, "Username: %s\n", user.Username)
	fmt.Fprintf(&b, "Email: %s\n", user.Email)
	fmt.Fprintf(&b, "ID: %d\n", user.ID)
	fmt.Fprintf(&b, "Color: %s\n", user.Color)
	fmt.Fprintf(&b, "Timezone: %s\n", user.Timezone)
	fmt.Fprintf(&b, "Week Start: %s", weekStart)
	return b.String()
}
