package clickup

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/ariadng/clickup-mcp/internal/core/engine"
)

// operation declares one remote call: a log label, an HTTP verb and a path
// template with {name} placeholders.
type operation struct {
	label  string
	method string
	path   string
}

var (
	opCreateTask        = operation{label: "createTask", method: http.MethodPost, path: "/list/{list_id}/task"}
	opGetTasks          = operation{label: "getTasks", method: http.MethodGet, path: "/list/{list_id}/task"}
	opUpdateTask        = operation{label: "updateTask", method: http.MethodPut, path: "/task/{task_id}"}
	opGetTask           = operation{label: "getTask", method: http.MethodGet, path: "/task/{task_id}"}
	opGetWorkspaces     = operation{label: "getWorkspaces", method: http.MethodGet, path: "/team"}
	opGetSpaces         = operation{label: "getSpaces", method: http.MethodGet, path: "/team/{team_id}/space"}
	opGetSpaceLists     = operation{label: "getLists", method: http.MethodGet, path: "/space/{space_id}/list"}
	opGetFolderLists    = operation{label: "getLists", method: http.MethodGet, path: "/folder/{folder_id}/list"}
	opGetAuthorizedUser = operation{label: "getAuthorizedUser", method: http.MethodGet, path: "/user"}
)

var operations = []operation{
	opCreateTask,
	opGetTasks,
	opUpdateTask,
	opGetTask,
	opGetWorkspaces,
	opGetSpaces,
	opGetSpaceLists,
	opGetFolderLists,
	opGetAuthorizedUser,
}

// Endpoint describes a remote call for catalogs and diagnostics.
type Endpoint struct {
	Label  string `json:"label"`
	Method string `json:"method"`
	Path   string `json:"path"`
}

// Endpoints returns every remote call the client can make.
func Endpoints() []Endpoint {
	out := make([]Endpoint, 0, len(operations))
	for _, op := range operations {
		out = append(out, Endpoint{Label: op.label, Method: op.method, Path: op.path})
	}
	return out
}

// resolve substitutes path parameters. Values are path-escaped; a missing or
// blank parameter is a caller error.
func (o operation) resolve(params map[string]string) (string, error) {
	var b strings.Builder
	rest := o.path
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		end += open

		name := rest[open+1 : end]
		value := strings.TrimSpace(params[name])
		if value == "" {
			return "", engine.Validation(o.label, "%s is required", name)
		}

		b.WriteString(rest[:open])
		b.WriteString(url.PathEscape(value))
		rest = rest[end+1:]
	}
}

func (o operation) mutates() bool {
	return o.method != http.MethodGet
}
