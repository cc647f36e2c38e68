package tools

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool names exposed to hosts.
const (
	CreateTask        = "create_task"
	GetTasks          = "get_tasks"
	UpdateTask        = "update_task"
	GetTask           = "get_task"
	GetWorkspaces     = "get_workspaces"
	GetSpaces         = "get_spaces"
	GetLists          = "get_lists"
	GetAuthorizedUser = "get_authorized_user"
)

var (
	integerItems = mcp.Items(map[string]any{"type": "integer"})
	stringItems  = mcp.Items(map[string]any{"type": "string"})
)

// Definitions returns the tool catalog in registration order.
func Definitions() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool(CreateTask,
			mcp.WithDescription("Creates a new task in a specified ClickUp list. Use when users want to add new work items, convert ideas into actionable tasks, schedule future work, or break down projects into manageable pieces."),
			mcp.WithString("list_id", mcp.Required(), mcp.Description("The ID of the list where the task will be created")),
			mcp.WithString("name", mcp.Required(), mcp.Description("Task title/name (required)")),
			mcp.WithString("description", mcp.Description("Task description in plain text")),
			mcp.WithArray("assignees", integerItems, mcp.Description("Array of user IDs to assign the task")),
			mcp.WithNumber("priority", mcp.Min(1), mcp.Max(4), mcp.Description("Task priority: 1=Urgent, 2=High, 3=Normal, 4=Low")),
			mcp.WithNumber("due_date", mcp.Description("Due date as Unix timestamp in milliseconds")),
			mcp.WithString("status", mcp.Description("Task status (must match list's available statuses)")),
			mcp.WithArray("tags", stringItems, mcp.Description("Array of tag names")),
			mcp.WithArray("custom_fields",
				mcp.Items(map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":    map[string]any{"type": "string"},
						"value": map[string]any{"type": []string{"string", "number", "boolean", "object"}},
					},
				}),
				mcp.Description("Array of custom field objects"),
			),
		),
		mcp.NewTool(GetTasks,
			mcp.WithDescription("Retrieves tasks from a ClickUp list with filtering capabilities. Use for task overviews, daily summaries, workload analysis, or finding specific tasks."),
			mcp.WithString("list_id", mcp.Required(), mcp.Description("The ID of the list to get tasks from")),
			mcp.WithNumber("page", mcp.Min(0), mcp.Description("Page number for pagination (default: 0)")),
			mcp.WithArray("assignees", integerItems, mcp.Description("Filter by assignee user IDs")),
			mcp.WithArray("statuses", stringItems, mcp.Description("Filter by status names")),
			mcp.WithNumber("due_date_gt", mcp.Description("Filter due date greater than Unix timestamp")),
			mcp.WithNumber("due_date_lt", mcp.Description("Filter due date less than Unix timestamp")),
			mcp.WithBoolean("include_closed", mcp.Description("Include tasks with closed statuses")),
			mcp.WithBoolean("subtasks", mcp.Description("Include subtasks (default: false)")),
		),
		mcp.NewTool(UpdateTask,
			mcp.WithDescription("Updates an existing task properties. Use for status changes, reassignments, priority updates, or modifying due dates."),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("The ID of the task to update")),
			mcp.WithString("name", mcp.Description("New task title")),
			mcp.WithString("description", mcp.Description("New task description")),
			mcp.WithString("status", mcp.Description("New status (must be valid for the list)")),
			mcp.WithNumber("priority", mcp.Min(1), mcp.Max(4), mcp.Description("New priority: 1=Urgent, 2=High, 3=Normal, 4=Low, null=no priority")),
			mcp.WithNumber("due_date", mcp.Description("New due date as Unix timestamp in milliseconds, null to remove")),
			mcp.WithArray("add_assignees", integerItems, mcp.Description("Array of user IDs to add as assignees")),
			mcp.WithArray("remove_assignees", integerItems, mcp.Description("Array of user IDs to remove from assignees")),
		),
		mcp.NewTool(GetTask,
			mcp.WithDescription("Retrieves detailed information about a specific task including metadata, custom fields, and relationships. Use for comprehensive task analysis."),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("The ID of the task to retrieve")),
			mcp.WithBoolean("include_subtasks", mcp.Description("Include subtask details (default: false)")),
		),
		mcp.NewTool(GetWorkspaces,
			mcp.WithDescription("Retrieves all ClickUp workspaces accessible to the user. Use for workspace discovery and navigation."),
		),
		mcp.NewTool(GetSpaces,
			mcp.WithDescription("Retrieves spaces within a workspace. Use for navigating workspace structure and discovering projects/departments."),
			mcp.WithString("team_id", mcp.Required(), mcp.Description("The workspace (team) ID to get spaces from")),
			mcp.WithBoolean("archived", mcp.Description("Include archived spaces (default: false)")),
		),
		mcp.NewTool(GetLists,
			mcp.WithDescription("Retrieves lists within a space or folder. Use for discovering task containers and navigation."),
			mcp.WithString("space_id", mcp.Description("The space ID to get lists from (use this OR folder_id)")),
			mcp.WithString("folder_id", mcp.Description("The folder ID to get lists from (use this OR space_id)")),
			mcp.WithBoolean("archived", mcp.Description("Include archived lists (default: false)")),
		),
		mcp.NewTool(GetAuthorizedUser,
			mcp.WithDescription("Retrieves information about the currently authenticated user. Use for personalization and getting user context."),
		),
	}
}
