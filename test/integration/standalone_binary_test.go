package integration

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// buildBinary compiles cmd/clickup-mcp into a temp dir outside the repo.
func buildBinary(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("standalone binary exec test is unix-focused")
	}

	goMod, err := exec.Command("go", "env", "GOMOD").Output()
	if err != nil {
		t.Fatalf("go env GOMOD: %v", err)
	}
	repoRoot := filepath.Dir(strings.TrimSpace(string(goMod)))

	binaryPath := filepath.Join(t.TempDir(), "clickup-mcp")
	build := exec.Command("go", "build", "-o", binaryPath, "./cmd/clickup-mcp")
	build.Dir = repoRoot
	build.Env = os.Environ()
	if out, err := build.CombinedOutput(); err != nil {
		t.Fatalf("go build: %v\n%s", err, string(out))
	}
	return binaryPath
}

// run executes the binary from an empty directory with a clean CLICKUP_*
// environment and an isolated XDG config home.
func run(t *testing.T, binary string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binary, args...)
	cmd.Dir = t.TempDir()

	env := []string{"XDG_CONFIG_HOME=" + t.TempDir(), "XDG_DATA_HOME=" + t.TempDir()}
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "CLICKUP_") || strings.HasPrefix(kv, "XDG_") {
			continue
		}
		env = append(env, kv)
	}
	cmd.Env = env

	out, err := cmd.CombinedOutput()
	return string(out), err
}

func TestStandaloneBinary(t *testing.T) {
	binary := buildBinary(t)

	out, err := run(t, binary, "version")
	if err != nil {
		t.Fatalf("version failed: %v\n%s", err, out)
	}
	if !strings.HasPrefix(out, "clickup-mcp ") {
		t.Fatalf("unexpected version output: %s", out)
	}

	if out, err := run(t, binary, "--help"); err != nil {
		t.Fatalf("--help failed: %v\n%s", err, out)
	}

	out, err = run(t, binary, "tools", "--output", "json")
	if err != nil {
		t.Fatalf("tools failed: %v\n%s", err, out)
	}
	for _, name := range []string{"create_task", "get_lists", "get_authorized_user"} {
		if !strings.Contains(out, name) {
			t.Fatalf("expected %s in tool catalog, got: %s", name, out)
		}
	}
}

func TestStandaloneBinaryRejectsMissingAPIKey(t *testing.T) {
	binary := buildBinary(t)

	out, err := run(t, binary, "serve")
	if err == nil {
		t.Fatalf("expected serve without an API key to fail\n%s", out)
	}
	if !strings.Contains(out, "clickup.api_key is required") {
		t.Fatalf("expected api key validation message, got: %s", out)
	}
}
