package tools

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariadng/clickup-mcp/internal/core/clickup"
	"github.com/ariadng/clickup-mcp/internal/core/engine"
)

const testAPIKey = "pk_123_ABCDEFGHIJKLMNOPQRSTUVWXYZ012345"

type fakeClickUp struct {
	server *httptest.Server
	calls  atomic.Int32

	lastMethod string
	lastPath   string
	lastQuery  string
	lastBody   map[string]any
}

func newFakeClickUp(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *fakeClickUp {
	t.Helper()
	fake := &fakeClickUp{}
	fake.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fake.calls.Add(1)
		fake.lastMethod = r.Method
		fake.lastPath = r.URL.Path
		fake.lastQuery = r.URL.RawQuery
		fake.lastBody = nil
		if body, _ := io.ReadAll(r.Body); len(body) > 0 {
			_ = json.Unmarshal(body, &fake.lastBody)
		}
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(fake.server.Close)
	return fake
}

func (f *fakeClickUp) toolset(t *testing.T) *Toolset {
	t.Helper()
	client := clickup.NewClient(clickup.Options{
		APIKey:     testAPIKey,
		BaseURL:    f.server.URL,
		HTTPClient: f.server.Client(),
		Sleep: func(ctx context.Context, d time.Duration) error {
			return ctx.Err()
		},
	})
	return New(client, nil)
}

func call(t *testing.T, ts *Toolset, name string, args map[string]any) (string, bool) {
	t.Helper()
	for _, tool := range ts.Tools() {
		if tool.Definition.Name != name {
			continue
		}
		req := mcp.CallToolRequest{}
		req.Params.Name = name
		req.Params.Arguments = args
		res, err := tool.Handle(context.Background(), req)
		require.NoError(t, err)
		require.NotNil(t, res)
		require.NotEmpty(t, res.Content)
		text, ok := res.Content[0].(mcp.TextContent)
		require.True(t, ok, "expected text content")
		return text.Text, res.IsError
	}
	t.Fatalf("tool %s not registered", name)
	return "", false
}

const taskJSON = `{"id":"abc","name":"Write docs","url":"https://app.clickup.com/t/abc",
"status":{"status":"in progress"},"priority":{"priority":"high"},
"assignees":[{"id":1,"username":"ada"},{"id":2,"username":"grace"}],
"tags":[{"name":"docs"}],"due_date":"1700000000000","list":{"id":"l1","name":"Backlog"},
"custom_fields":[{"id":"cf1","name":"Points","value":3}]}`

func TestDefinitionsCatalog(t *testing.T) {
	defs := Definitions()
	names := make([]string, 0, len(defs))
	for _, def := range defs {
		names = append(names, def.Name)
		assert.NotEmpty(t, def.Description, def.Name)
	}
	assert.Equal(t, []string{
		CreateTask, GetTasks, UpdateTask, GetTask,
		GetWorkspaces, GetSpaces, GetLists, GetAuthorizedUser,
	}, names)

	assert.ElementsMatch(t, []string{"list_id", "name"}, defs[0].InputSchema.Required)
	assert.ElementsMatch(t, []string{"task_id"}, defs[2].InputSchema.Required)
	assert.Empty(t, defs[6].InputSchema.Required)
}

func TestCreateTask(t *testing.T) {
	fake := newFakeClickUp(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(taskJSON))
	})

	text, isError := call(t, fake.toolset(t), CreateTask, map[string]any{
		"list_id":   " l1 ",
		"name":      "<b>Write docs</b>",
		"assignees": []any{float64(1), float64(2)},
		"priority":  float64(2),
		"due_date":  float64(1700000000000),
		"tags":      []any{"docs"},
		"custom_fields": []any{
			map[string]any{"id": "cf1", "value": float64(3)},
		},
	})

	require.False(t, isError, text)
	assert.Equal(t, http.MethodPost, fake.lastMethod)
	assert.Equal(t, "/list/l1/task", fake.lastPath)
	assert.Equal(t, "bWrite docs/b", fake.lastBody["name"])
	assert.Equal(t, float64(2), fake.lastBody["priority"])
	assert.Equal(t, []any{float64(1), float64(2)}, fake.lastBody["assignees"])
	assert.NotContains(t, fake.lastBody, "description")

	assert.True(t, strings.HasPrefix(text, `Task "Write docs" created successfully!`))
	assert.Contains(t, text, "Task ID: abc")
	assert.Contains(t, text, "Status: in progress")
	assert.Contains(t, text, "Priority: high")
	assert.Contains(t, text, "Assignees: ada, grace")
}

func TestCreateTask_Validation(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing name", map[string]any{"list_id": "l1"}, "missing required property: name"},
		{"blank list", map[string]any{"list_id": "  ", "name": "x"}, "property list_id must not be empty"},
		{"priority out of range", map[string]any{"list_id": "l1", "name": "x", "priority": float64(7)}, "priority must be one of"},
		{"fractional priority", map[string]any{"list_id": "l1", "name": "x", "priority": 1.5}, "invalid input for create_task"},
		{"wrong type", map[string]any{"list_id": "l1", "name": float64(3)}, "invalid input for create_task"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeClickUp(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(taskJSON))
			})

			text, isError := call(t, fake.toolset(t), CreateTask, tt.args)
			require.True(t, isError)
			assert.True(t, strings.HasPrefix(text, "VALIDATION_FAILED: "), text)
			assert.Contains(t, text, tt.want)
			assert.Equal(t, int32(0), fake.calls.Load())
		})
	}
}

func TestGetTasks(t *testing.T) {
	fake := newFakeClickUp(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tasks":[` + taskJSON + `,{"id":"def","name":"Ship"}]}`))
	})

	text, isError := call(t, fake.toolset(t), GetTasks, map[string]any{
		"list_id":        "l1",
		"statuses":       []any{"open"},
		"include_closed": true,
	})

	require.False(t, isError, text)
	assert.Equal(t, "/list/l1/task", fake.lastPath)
	assert.Contains(t, fake.lastQuery, "page=0")
	assert.Contains(t, fake.lastQuery, "include_closed=true")
	assert.True(t, strings.HasPrefix(text, "Found 2 tasks:"))
	assert.Contains(t, text, "• Write docs (ID: abc)")
	assert.Contains(t, text, "Due: 2023-11-14T22:13:20.000Z")
	assert.Contains(t, text, "• Ship (ID: def)\n  Status: Not set | Priority: Not set\n  Assignees: None\n  Due: Not set")
}

func TestUpdateTask_NullableFields(t *testing.T) {
	fake := newFakeClickUp(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(taskJSON))
	})
	ts := fake.toolset(t)

	text, isError := call(t, ts, UpdateTask, map[string]any{
		"task_id":       "abc",
		"priority":      nil,
		"due_date":      float64(1700000000000),
		"add_assignees": []any{float64(3)},
	})

	require.False(t, isError, text)
	assert.Equal(t, http.MethodPut, fake.lastMethod)
	assert.Equal(t, "/task/abc", fake.lastPath)
	require.Contains(t, fake.lastBody, "priority")
	assert.Nil(t, fake.lastBody["priority"])
	assert.Equal(t, float64(1700000000000), fake.lastBody["due_date"])
	assert.Equal(t, map[string]any{"add": []any{float64(3)}}, fake.lastBody["assignees"])
	assert.NotContains(t, fake.lastBody, "name")
	assert.True(t, strings.HasPrefix(text, `Task "Write docs" updated successfully!`))
}

func TestGetTask(t *testing.T) {
	fake := newFakeClickUp(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(taskJSON))
	})

	text, isError := call(t, fake.toolset(t), GetTask, map[string]any{
		"task_id":          "abc",
		"include_subtasks": true,
	})

	require.False(t, isError, text)
	assert.Equal(t, "include_subtasks=true", fake.lastQuery)
	assert.Contains(t, text, "Task Details:")
	assert.Contains(t, text, "Description: None")
	assert.Contains(t, text, "Tags: docs")
	assert.Contains(t, text, "List: Backlog")
	assert.Contains(t, text, "Custom Fields: Points: 3")
}

func TestHierarchyTools(t *testing.T) {
	fake := newFakeClickUp(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/team":
			_, _ = w.Write([]byte(`{"teams":[{"id":"t1","name":"Acme","color":"#fff","members":[{"user":{"id":1}}]}]}`))
		case "/team/t1/space":
			_, _ = w.Write([]byte(`{"spaces":[{"id":"s1","name":"Eng","private":true,"statuses":[{"status":"open"}]}]}`))
		case "/space/s1/list":
			_, _ = w.Write([]byte(`{"lists":[{"id":"l1","name":"Backlog","task_count":5,"space":{"id":"s1","name":"Eng"},"archived":false}]}`))
		case "/user":
			_, _ = w.Write([]byte(`{"user":{"id":42,"username":"ada","email":"ada@example.com","color":"#000","timezone":"UTC","week_start_day":0}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ts := fake.toolset(t)

	text, isError := call(t, ts, GetWorkspaces, nil)
	require.False(t, isError, text)
	assert.Equal(t, "Workspaces:\n\n• Acme (ID: t1)\n  Members: 1\n  Color: #fff", text)

	text, isError = call(t, ts, GetSpaces, map[string]any{"team_id": "t1"})
	require.False(t, isError, text)
	assert.Equal(t, "archived=false", fake.lastQuery)
	assert.Equal(t, "Spaces:\n\n• Eng (ID: s1)\n  Private: true\n  Statuses: 1", text)

	text, isError = call(t, ts, GetLists, map[string]any{"space_id": "s1", "folder_id": "f1"})
	require.False(t, isError, text)
	assert.Equal(t, "Lists:\n\n• Backlog (ID: l1)\n  Space: Eng\n  Task Count: 5\n  Archived: false", text)

	text, isError = call(t, ts, GetAuthorizedUser, map[string]any{})
	require.False(t, isError, text)
	assert.Contains(t, text, "Username: ada")
	assert.Contains(t, text, "ID: 42")
	assert.Contains(t, text, "Week Start: Sunday")
}

func TestGetLists_RequiresContainer(t *testing.T) {
	fake := newFakeClickUp(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"lists":[]}`))
	})

	text, isError := call(t, fake.toolset(t), GetLists, map[string]any{"archived": true})
	require.True(t, isError)
	assert.Equal(t, "VALIDATION_FAILED: either space_id or folder_id must be provided", text)
	assert.Equal(t, int32(0), fake.calls.Load())
}

func TestRemoteErrorsBecomeToolErrors(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   string
	}{
		{http.StatusUnauthorized, `{"err":"Token invalid","ECODE":"OAUTH_025"}`, "INVALID_CREDENTIALS: Token invalid"},
		{http.StatusNotFound, `{"err":"Task not found","ECODE":"ITEM_013"}`, "NOT_FOUND: Task not found"},
		{http.StatusBadRequest, `{"err":"Status is invalid","ECODE":"INPUT_005"}`, "VALIDATION_FAILED: Status is invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			fake := newFakeClickUp(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			text, isError := call(t, fake.toolset(t), GetTask, map[string]any{"task_id": "abc"})
			require.True(t, isError)
			assert.Equal(t, tt.want, text)
		})
	}
}

func TestProtocolCode(t *testing.T) {
	assert.Equal(t, mcp.INVALID_REQUEST, ProtocolCode(engine.KindInvalidCredentials))
	assert.Equal(t, mcp.INVALID_REQUEST, ProtocolCode(engine.KindRateLimited))
	assert.Equal(t, mcp.INVALID_REQUEST, ProtocolCode(engine.KindNotFound))
	assert.Equal(t, mcp.INVALID_PARAMS, ProtocolCode(engine.KindValidationFailed))
	assert.Equal(t, mcp.INTERNAL_ERROR, ProtocolCode(engine.KindNetworkOrServerFault))
	assert.Equal(t, mcp.INTERNAL_ERROR, ProtocolCode(engine.KindUnknown))
}

func TestSanitize(t *testing.T) {
	got := sanitize(map[string]any{
		"name": "  <script>hi</script> ",
		"tags": []any{" <a> ", "b"},
		"n":    float64(1),
	})
	assert.Equal(t, map[string]any{
		"name": "scripthi/script",
		"tags": []any{"a", "b"},
		"n":    float64(1),
	}, got)
}
