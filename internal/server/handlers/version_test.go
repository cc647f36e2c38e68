package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func getVersion(t *testing.T) VersionResponse {
	t.Helper()
	rec := httptest.NewRecorder()
	VersionHandler(rec, httptest.NewRequest(http.MethodGet, "/version", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp VersionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestVersionHandlerIncludesBuildMetadata(t *testing.T) {
	SetVersionInfo("1.2.3", "abcd123", "2026-01-07T12:00:00Z")
	t.Cleanup(func() {
		SetVersionInfo("dev", "unknown", "unknown")
	})

	resp := getVersion(t)
	if resp.App.Name != "clickup-mcp" || resp.App.Version != "1.2.3" || resp.App.Commit != "abcd123" {
		t.Fatalf("unexpected app info: %+v", resp.App)
	}
	if resp.Dependencies.Gofulmen == "" || resp.Dependencies.Crucible == "" {
		t.Fatal("expected dependency versions to be populated")
	}
	if resp.MCP != nil {
		t.Fatalf("expected no mcp section before SetMCPInfo, got %+v", resp.MCP)
	}
}

func TestVersionHandlerIncludesToolCatalog(t *testing.T) {
	SetMCPInfo("clickup-mcp-server", []string{"create_task", "get_task"})
	t.Cleanup(func() { SetMCPInfo("", nil) })

	resp := getVersion(t)
	if resp.MCP == nil {
		t.Fatal("expected mcp section")
	}
	if resp.MCP.ServerName != "clickup-mcp-server" {
		t.Fatalf("expected server name clickup-mcp-server, got %s", resp.MCP.ServerName)
	}
	if len(resp.MCP.Tools) != 2 || resp.MCP.Tools[0] != "create_task" {
		t.Fatalf("unexpected tools: %v", resp.MCP.Tools)
	}
}
