package clickup

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/ariadng/clickup-mcp/internal/core"
)

// CustomFieldValue sets a custom field on task creation.
type CustomFieldValue struct {
	ID    string `json:"id" mapstructure:"id"`
	Value any    `json:"value" mapstructure:"value"`
}

// CreateTaskRequest is the body of POST /list/{list_id}/task.
type CreateTaskRequest struct {
	Name         string             `json:"name"`
	Description  string             `json:"description,omitempty"`
	Assignees    []int64            `json:"assignees,omitempty"`
	Priority     *int               `json:"priority,omitempty"`
	DueDate      *int64             `json:"due_date,omitempty"`
	Status       string             `json:"status,omitempty"`
	Tags         []string           `json:"tags,omitempty"`
	CustomFields []CustomFieldValue `json:"custom_fields,omitempty"`
}

// Nullable is a field that can be left out, set to a value, or cleared with
// an explicit null.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// Some returns a Nullable holding v.
func Some[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

// Null returns a Nullable that serializes as null.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

// UpdateTaskRequest is the body of PUT /task/{task_id}. Only set fields are
// sent; Priority and DueDate may be cleared with Null.
type UpdateTaskRequest struct {
	Name            *string
	Description     *string
	Status          *string
	Priority        Nullable[int]
	DueDate         Nullable[int64]
	AddAssignees    []int64
	RemoveAssignees []int64
}

// MarshalJSON emits the ClickUp update shape.
func (r UpdateTaskRequest) MarshalJSON() ([]byte, error) {
	body := make(map[string]any)
	if r.Name != nil {
		body["name"] = *r.Name
	}
	if r.Description != nil {
		body["description"] = *r.Description
	}
	if r.Status != nil {
		body["status"] = *r.Status
	}
	if r.Priority.Set {
		body["priority"] = r.Priority.Value
	}
	if r.DueDate.Set {
		body["due_date"] = r.DueDate.Value
	}
	if len(r.AddAssignees) > 0 || len(r.RemoveAssignees) > 0 {
		assignees := make(map[string][]int64)
		if len(r.AddAssignees) > 0 {
			assignees["add"] = r.AddAssignees
		}
		if len(r.RemoveAssignees) > 0 {
			assignees["rem"] = r.RemoveAssignees
		}
		body["assignees"] = assignees
	}
	return json.Marshal(body)
}

// Empty reports whether the request changes nothing.
func (r UpdateTaskRequest) Empty() bool {
	return r.Name == nil && r.Description == nil && r.Status == nil &&
		!r.Priority.Set && !r.DueDate.Set &&
		len(r.AddAssignees) == 0 && len(r.RemoveAssignees) == 0
}

// TasksQuery filters GET /list/{list_id}/task.
type TasksQuery struct {
	Page          int
	Assignees     []int64
	Statuses      []string
	DueDateGt     *int64
	DueDateLt     *int64
	IncludeClosed *bool
	Subtasks      *bool
}

// Values encodes the query the way ClickUp expects array filters.
func (q TasksQuery) Values() url.Values {
	values := url.Values{}
	values.Set("page", strconv.Itoa(q.Page))
	for _, id := range q.Assignees {
		values.Add("assignees[]", strconv.FormatInt(id, 10))
	}
	for _, status := range q.Statuses {
		values.Add("statuses[]", status)
	}
	if q.DueDateGt != nil {
		values.Set("due_date_gt", strconv.FormatInt(*q.DueDateGt, 10))
	}
	if q.DueDateLt != nil {
		values.Set("due_date_lt", strconv.FormatInt(*q.DueDateLt, 10))
	}
	if q.IncludeClosed != nil {
		values.Set("include_closed", strconv.FormatBool(*q.IncludeClosed))
	}
	if q.Subtasks != nil {
		values.Set("subtasks", strconv.FormatBool(*q.Subtasks))
	}
	return values
}

// CreateTask creates a task in a list.
//
// Delivery is at-least-once: if the request reaches ClickUp but the response
// is lost to a transport fault or 5xx, the retry sends it again and a
// duplicate task may be created.
func (c *Client) CreateTask(ctx context.Context, listID string, req CreateTaskRequest) (*core.Task, error) {
	var task core.Task
	err := c.do(ctx, request{
		op:     opCreateTask,
		params: map[string]string{"list_id": listID},
		body:   req,
	}, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// GetTasks returns one page of tasks in a list.
func (c *Client) GetTasks(ctx context.Context, listID string, query TasksQuery) (*core.TasksResponse, error) {
	var resp core.TasksResponse
	err := c.do(ctx, request{
		op:     opGetTasks,
		params: map[string]string{"list_id": listID},
		query:  query.Values(),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateTask applies a partial update to a task.
//
// Delivery is at-least-once; a retried update is applied again, which is
// harmless for absolute fields but repeats assignee add/remove operations.
func (c *Client) UpdateTask(ctx context.Context, taskID string, req UpdateTaskRequest) (*core.Task, error) {
	var task core.Task
	err := c.do(ctx, request{
		op:     opUpdateTask,
		params: map[string]string{"task_id": taskID},
		body:   req,
	}, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// GetTask returns a single task.
func (c *Client) GetTask(ctx context.Context, taskID string, includeSubtasks bool) (*core.Task, error) {
	var query url.Values
	if includeSubtasks {
		query = url.Values{"include_subtasks": {"true"}}
	}

	var task core.Task
	err := c.do(ctx, request{
		op:     opGetTask,
		params: map[string]string{"task_id": taskID},
		query:  query,
	}, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}
