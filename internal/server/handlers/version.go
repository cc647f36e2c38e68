package handlers

import (
	"net/http"
	"runtime"
	"sync"

	"github.com/fulmenhq/gofulmen/crucible"
)

// Build metadata, injected from main via SetVersionInfo
var (
	AppName      = "clickup-mcp"
	AppVersion   = "dev"
	AppCommit    = "unknown"
	AppBuildDate = "unknown"
)

var (
	mcpMu   sync.RWMutex
	mcpInfo MCPInfo
)

// SetVersionInfo sets the version information for the handler
func SetVersionInfo(version, commit, buildDate string) {
	AppVersion = version
	AppCommit = commit
	AppBuildDate = buildDate
}

// SetMCPInfo records the MCP server name and tool catalog served on /sse.
func SetMCPInfo(serverName string, tools []string) {
	mcpMu.Lock()
	defer mcpMu.Unlock()
	mcpInfo = MCPInfo{ServerName: serverName, Tools: append([]string(nil), tools...)}
}

// VersionResponse is the /version body.
type VersionResponse struct {
	App          AppInfo     `json:"app"`
	MCP          *MCPInfo    `json:"mcp,omitempty"`
	Dependencies DepInfo     `json:"dependencies"`
	Runtime      RuntimeInfo `json:"runtime"`
}

type AppInfo struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Commit    string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version,omitempty"`
}

// MCPInfo describes the tool server mounted on the sse transport.
type MCPInfo struct {
	ServerName string   `json:"server_name"`
	Tools      []string `json:"tools"`
}

type DepInfo struct {
	Gofulmen string `json:"gofulmen"`
	Crucible string `json:"crucible"`
}

type RuntimeInfo struct {
	Platform      string `json:"platform"`
	NumCPU        int    `json:"num_cpu"`
	NumGoroutines int    `json:"num_goroutines"`
}

// VersionHandler reports build, tool server and runtime details.
func VersionHandler(w http.ResponseWriter, r *http.Request) {
	deps := crucible.GetVersion()
	resp := VersionResponse{
		App: AppInfo{
			Name:      AppName,
			Version:   AppVersion,
			Commit:    AppCommit,
			BuildDate: AppBuildDate,
			GoVersion: runtime.Version(),
		},
		Dependencies: DepInfo{Gofulmen: deps.Gofulmen, Crucible: deps.Crucible},
		Runtime: RuntimeInfo{
			Platform:      runtime.GOOS + "/" + runtime.GOARCH,
			NumCPU:        runtime.NumCPU(),
			NumGoroutines: runtime.NumGoroutine(),
		},
	}

	mcpMu.RLock()
	if mcpInfo.ServerName != "" {
		info := mcpInfo
		resp.MCP = &info
	}
	mcpMu.RUnlock()

	writeJSON(w, http.StatusOK, resp)
}
