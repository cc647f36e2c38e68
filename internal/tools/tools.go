package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ariadng/clickup-mcp/internal/core"
	"github.com/ariadng/clickup-mcp/internal/core/clickup"
	"github.com/ariadng/clickup-mcp/internal/core/engine"
	"github.com/ariadng/clickup-mcp/internal/metrics"
)

// API is the ClickUp surface the tools call. *clickup.Client implements it.
type API interface {
	CreateTask(ctx context.Context, listID string, req clickup.CreateTaskRequest) (*core.Task, error)
	GetTasks(ctx context.Context, listID string, query clickup.TasksQuery) (*core.TasksResponse, error)
	UpdateTask(ctx context.Context, taskID string, req clickup.UpdateTaskRequest) (*core.Task, error)
	GetTask(ctx context.Context, taskID string, includeSubtasks bool) (*core.Task, error)
	GetWorkspaces(ctx context.Context) ([]core.Workspace, error)
	GetSpaces(ctx context.Context, teamID string, archived bool) ([]core.Space, error)
	GetLists(ctx context.Context, query clickup.ListsQuery) ([]core.List, error)
	GetAuthorizedUser(ctx context.Context) (*core.AuthorizedUser, error)
}

var _ API = (*clickup.Client)(nil)

// Tool pairs a definition with its handler.
type Tool struct {
	Definition mcp.Tool
	Handle     server.ToolHandlerFunc
}

// Toolset serves the ClickUp tools over one API session.
type Toolset struct {
	api    API
	logger *logging.Logger
}

// New returns a Toolset. A nil logger disables tool logging.
func New(api API, logger *logging.Logger) *Toolset {
	return &Toolset{api: api, logger: logger}
}

type handlerFunc func(ctx context.Context, args map[string]any) (string, error)

// Tools returns every tool with its handler, in catalog order.
func (t *Toolset) Tools() []Tool {
	handlers := map[string]handlerFunc{
		CreateTask:        t.createTask,
		GetTasks:          t.getTasks,
		UpdateTask:        t.updateTask,
		GetTask:           t.getTask,
		GetWorkspaces:     t.getWorkspaces,
		GetSpaces:         t.getSpaces,
		GetLists:          t.getLists,
		GetAuthorizedUser: t.getAuthorizedUser,
	}

	defs := Definitions()
	out := make([]Tool, 0, len(defs))
	for _, def := range defs {
		out = append(out, Tool{Definition: def, Handle: t.wrap(def.Name, handlers[def.Name])})
	}
	return out
}

// Register adds every tool to s.
func (t *Toolset) Register(s *server.MCPServer) {
	for _, tool := range t.Tools() {
		s.AddTool(tool.Definition, tool.Handle)
	}
}

// wrap turns a handler into an MCP handler. Failures become error results
// carrying "<CODE>: <message>"; they are never returned as Go errors.
func (t *Toolset) wrap(name string, fn handlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		text, err := fn(ctx, req.GetArguments())
		elapsed := time.Since(start)

		if err != nil {
			classified := engine.DefaultClassifier.Classify(err)
			metrics.RecordToolCall(name, string(classified.Kind), elapsed)
			if t.logger != nil {
				t.logger.Error("Tool call failed",
					zap.String("tool", name),
					zap.String("kind", string(classified.Kind)),
					zap.Int("protocol_code", ProtocolCode(classified.Kind)),
					zap.Duration("duration", elapsed),
					zap.Error(classified))
			}
			return mcp.NewToolResultError(ErrorText(classified)), nil
		}

		metrics.RecordToolCall(name, "success", elapsed)
		return mcp.NewToolResultText(text), nil
	}
}

// ErrorText renders a classified failure as "<CODE>: <message>".
func ErrorText(err *engine.Error) string {
	message := err.Message
	if message == "" {
		message = err.Error()
	}
	return fmt.Sprintf("%s: %s", err.Kind, message)
}

// ProtocolCode maps a failure kind to its JSON-RPC error code.
func ProtocolCode(kind engine.Kind) int {
	switch kind {
	case engine.KindInvalidCredentials, engine.KindRateLimited, engine.KindNotFound:
		return mcp.INVALID_REQUEST
	case engine.KindValidationFailed:
		return mcp.INVALID_PARAMS
	default:
		return mcp.INTERNAL_ERROR
	}
}

func (t *Toolset) info(msg string, fields ...zap.Field) {
	if t.logger != nil {
		t.logger.Info(msg, fields...)
	}
}

type createTaskArgs struct {
	ListID       string                     `mapstructure:"list_id"`
	Name         string                     `mapstructure:"name"`
	Description  string                     `mapstructure:"description"`
	Assignees    []int64                    `mapstructure:"assignees"`
	Priority     *int                       `mapstructure:"priority"`
	DueDate      *int64                     `mapstructure:"due_date"`
	Status       string                     `mapstructure:"status"`
	Tags         []string                   `mapstructure:"tags"`
	CustomFields []clickup.CustomFieldValue `mapstructure:"custom_fields"`
}

func (t *Toolset) createTask(ctx context.Context, raw map[string]any) (string, error) {
	var in createTaskArgs
	args, err := decodeArgs(CreateTask, raw, &in)
	if err != nil {
		return "", err
	}

	check := problems{tool: CreateTask}
	check.require(args, "list_id", "name")
	check.priority(in.Priority)
	if err := check.err(); err != nil {
		return "", err
	}

	t.info("Creating task", zap.String("name", in.Name), zap.String("list_id", in.ListID))
	task, err := t.api.CreateTask(ctx, in.ListID, clickup.CreateTaskRequest{
		Name:         in.Name,
		Description:  in.Description,
		Assignees:    in.Assignees,
		Priority:     in.Priority,
		DueDate:      in.DueDate,
		Status:       in.Status,
		Tags:         in.Tags,
		CustomFields: in.CustomFields,
	})
	if err != nil {
		return "", err
	}
	return renderTaskSaved(task, "created"), nil
}

type getTasksArgs struct {
	ListID        string   `mapstructure:"list_id"`
	Page          int      `mapstructure:"page"`
	Assignees     []int64  `mapstructure:"assignees"`
	Statuses      []string `mapstructure:"statuses"`
	DueDateGt     *int64   `mapstructure:"due_date_gt"`
	DueDateLt     *int64   `mapstructure:"due_date_lt"`
	IncludeClosed *bool    `mapstructure:"include_closed"`
	Subtasks      *bool    `mapstructure:"subtasks"`
}

func (t *Toolset) getTasks(ctx context.Context, raw map[string]any) (string, error) {
	var in getTasksArgs
	args, err := decodeArgs(GetTasks, raw, &in)
	if err != nil {
		return "", err
	}

	check := problems{tool: GetTasks}
	check.require(args, "list_id")
	if in.Page < 0 {
		check.add("property page must not be negative")
	}
	if err := check.err(); err != nil {
		return "", err
	}

	t.info("Getting tasks", zap.String("list_id", in.ListID), zap.Int("page", in.Page))
	resp, err := t.api.GetTasks(ctx, in.ListID, clickup.TasksQuery{
		Page:          in.Page,
		Assignees:     in.Assignees,
		Statuses:      in.Statuses,
		DueDateGt:     in.DueDateGt,
		DueDateLt:     in.DueDateLt,
		IncludeClosed: in.IncludeClosed,
		Subtasks:      in.Subtasks,
	})
	if err != nil {
		return "", err
	}
	return renderTasks(resp.Tasks), nil
}

type updateTaskArgs struct {
	TaskID          string  `mapstructure:"task_id"`
	Name            *string `mapstructure:"name"`
	Description     *string `mapstructure:"description"`
	Status          *string `mapstructure:"status"`
	Priority        *int    `mapstructure:"priority"`
	DueDate         *int64  `mapstructure:"due_date"`
	AddAssignees    []int64 `mapstructure:"add_assignees"`
	RemoveAssignees []int64 `mapstructure:"remove_assignees"`
}

func (t *Toolset) updateTask(ctx context.Context, raw map[string]any) (string, error) {
	var in updateTaskArgs
	args, err := decodeArgs(UpdateTask, raw, &in)
	if err != nil {
		return "", err
	}

	check := problems{tool: UpdateTask}
	check.require(args, "task_id")
	check.priority(in.Priority)
	if err := check.err(); err != nil {
		return "", err
	}

	req := clickup.UpdateTaskRequest{
		Name:            in.Name,
		Description:     in.Description,
		Status:          in.Status,
		AddAssignees:    in.AddAssignees,
		RemoveAssignees: in.RemoveAssignees,
	}
	if present, null := nullable(args, "priority"); null {
		req.Priority = clickup.Null[int]()
	} else if present && in.Priority != nil {
		req.Priority = clickup.Some(*in.Priority)
	}
	if present, null := nullable(args, "due_date"); null {
		req.DueDate = clickup.Null[int64]()
	} else if present && in.DueDate != nil {
		req.DueDate = clickup.Some(*in.DueDate)
	}

	t.info("Updating task", zap.String("task_id", in.TaskID))
	task, err := t.api.UpdateTask(ctx, in.TaskID, req)
	if err != nil {
		return "", err
	}
	return renderTaskSaved(task, "updated"), nil
}

type getTaskArgs struct {
	TaskID          string `mapstructure:"task_id"`
	IncludeSubtasks bool   `mapstructure:"include_subtasks"`
}

func (t *Toolset) getTask(ctx context.Context, raw map[string]any) (string, error) {
	var in getTaskArgs
	args, err := decodeArgs(GetTask, raw, &in)
	if err != nil {
		return "", err
	}

	check := problems{tool: GetTask}
	check.require(args, "task_id")
	if err := check.err(); err != nil {
		return "", err
	}

	t.info("Getting task", zap.String("task_id", in.TaskID))
	task, err := t.api.GetTask(ctx, in.TaskID, in.IncludeSubtasks)
	if err != nil {
		return "", err
	}
	return renderTask(task), nil
}

func (t *Toolset) getWorkspaces(ctx context.Context, _ map[string]any) (string, error) {
	t.info("Getting workspaces")
	teams, err := t.api.GetWorkspaces(ctx)
	if err != nil {
		return "", err
	}
	return renderWorkspaces(teams), nil
}

type getSpacesArgs struct {
	TeamID   string `mapstructure:"team_id"`
	Archived bool   `mapstructure:"archived"`
}

func (t *Toolset) getSpaces(ctx context.Context, raw map[string]any) (string, error) {
	var in getSpacesArgs
	args, err := decodeArgs(GetSpaces, raw, &in)
	if err != nil {
		return "", err
	}

	check := problems{tool: GetSpaces}
	check.require(args, "team_id")
	if err := check.err(); err != nil {
		return "", err
	}

	t.info("Getting spaces", zap.String("team_id", in.TeamID), zap.Bool("archived", in.Archived))
	spaces, err := t.api.GetSpaces(ctx, in.TeamID, in.Archived)
	if err != nil {
		return "", err
	}
	return renderSpaces(spaces), nil
}

type getListsArgs struct {
	SpaceID  string `mapstructure:"space_id"`
	FolderID string `mapstructure:"folder_id"`
	Archived bool   `mapstructure:"archived"`
}

// getLists leaves the space/folder requirement to the client, which rejects
// it before any request is sent.
func (t *Toolset) getLists(ctx context.Context, raw map[string]any) (string, error) {
	var in getListsArgs
	if _, err := decodeArgs(GetLists, raw, &in); err != nil {
		return "", err
	}

	t.info("Getting lists", zap.String("space_id", in.SpaceID), zap.String("folder_id", in.FolderID))
	lists, err := t.api.GetLists(ctx, clickup.ListsQuery{
		SpaceID:  in.SpaceID,
		FolderID: in.FolderID,
		Archived: in.Archived,
	})
	if err != nil {
		return "", err
	}
	return renderLists(lists), nil
}

func (t *Toolset) getAuthorizedUser(ctx context.Context, _ map[string]any) (string, error) {
	t.info("Getting authorized user")
	user, err := t.api.GetAuthorizedUser(ctx)
	if err != nil {
		return "", err
	}
	return renderUser(user), nil
}
