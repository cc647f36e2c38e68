package core

import (
	"encoding/json"
	"strconv"
	"time"
)

// TaskStatus is the status block attached to a task.
type TaskStatus struct {
	ID     string `json:"id,omitempty"`
	Status string `json:"status"`
	Color  string `json:"color,omitempty"`
	Type   string `json:"type,omitempty"`
}

// TaskPriority is the priority block attached to a task. ClickUp sends null
// when a task has no priority.
type TaskPriority struct {
	ID       string `json:"id,omitempty"`
	Priority string `json:"priority"`
	Color    string `json:"color,omitempty"`
}

// User is a ClickUp member reference (assignee, creator, watcher).
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Color    string `json:"color,omitempty"`
}

// Tag is a task tag.
type Tag struct {
	Name  string `json:"name"`
	TagFg string `json:"tag_fg,omitempty"`
	TagBg string `json:"tag_bg,omitempty"`
}

// CustomField is a custom field value as returned on a task.
type CustomField struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Type  string `json:"type,omitempty"`
	Value any    `json:"value,omitempty"`
}

// TaskListRef identifies the list a task belongs to.
type TaskListRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Task is a ClickUp task.
type Task struct {
	ID           string        `json:"id"`
	CustomID     string        `json:"custom_id,omitempty"`
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	Status       *TaskStatus   `json:"status,omitempty"`
	Priority     *TaskPriority `json:"priority,omitempty"`
	Assignees    []User        `json:"assignees,omitempty"`
	Tags         []Tag         `json:"tags,omitempty"`
	DueDate      string        `json:"due_date,omitempty"`
	StartDate    string        `json:"start_date,omitempty"`
	List         *TaskListRef  `json:"list,omitempty"`
	URL          string        `json:"url,omitempty"`
	CustomFields []CustomField `json:"custom_fields,omitempty"`
	Subtasks     []Task        `json:"subtasks,omitempty"`
}

// Due returns the parsed due date. ClickUp encodes timestamps as strings of
// Unix milliseconds.
func (t *Task) Due() (time.Time, bool) {
	if t == nil {
		return time.Time{}, false
	}
	return parseMillis(t.DueDate)
}

// TasksResponse is the envelope returned by GET /list/{id}/task.
type TasksResponse struct {
	Tasks    []Task `json:"tasks"`
	LastPage bool   `json:"last_page,omitempty"`
}

// WorkspaceMember wraps a member user entry.
type WorkspaceMember struct {
	User User `json:"user"`
}

// Workspace is a ClickUp team (workspace).
type Workspace struct {
	ID      string            `json:"id"`
	Name    string            `json:"name"`
	Color   string            `json:"color,omitempty"`
	Avatar  string            `json:"avatar,omitempty"`
	Members []WorkspaceMember `json:"members,omitempty"`
}

// WorkspacesResponse is the envelope returned by GET /team.
type WorkspacesResponse struct {
	Teams []Workspace `json:"teams"`
}

// SpaceStatus is a status defined on a space.
type SpaceStatus struct {
	ID     string `json:"id,omitempty"`
	Status string `json:"status"`
	Type   string `json:"type,omitempty"`
	Color  string `json:"color,omitempty"`
}

// Space is a ClickUp space.
type Space struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Private  bool          `json:"private"`
	Color    string        `json:"color,omitempty"`
	Avatar   string        `json:"avatar,omitempty"`
	Statuses []SpaceStatus `json:"statuses,omitempty"`
	Archived bool          `json:"archived,omitempty"`
}

// SpacesResponse is the envelope returned by GET /team/{id}/space.
type SpacesResponse struct {
	Spaces []Space `json:"spaces"`
}

// ListFolderRef identifies the folder a list lives in.
type ListFolderRef struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Hidden bool   `json:"hidden,omitempty"`
}

// ListSpaceRef identifies the space a list lives in.
type ListSpaceRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// List is a ClickUp list (task container).
type List struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	OrderIndex json.Number    `json:"orderindex,omitempty"`
	TaskCount  json.Number    `json:"task_count,omitempty"`
	DueDate    string         `json:"due_date,omitempty"`
	StartDate  string         `json:"start_date,omitempty"`
	Folder     *ListFolderRef `json:"folder,omitempty"`
	Space      *ListSpaceRef  `json:"space,omitempty"`
	Archived   bool           `json:"archived"`
}

// ListsResponse is the envelope returned by GET /space/{id}/list and
// GET /folder/{id}/list.
type ListsResponse struct {
	Lists []List `json:"lists"`
}

// AuthorizedUser is the account that owns the API key.
type AuthorizedUser struct {
	ID                int64  `json:"id"`
	Username          string `json:"username"`
	Email             string `json:"email"`
	Color             string `json:"color,omitempty"`
	ProfilePicture    string `json:"profilePicture,omitempty"`
	Initials          string `json:"initials,omitempty"`
	WeekStartDay      *int   `json:"week_start_day,omitempty"`
	GlobalFontSupport bool   `json:"global_font_support,omitempty"`
	Timezone          string `json:"timezone,omitempty"`
}

func parseMillis(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms).UTC(), true
}
