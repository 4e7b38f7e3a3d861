// The cmd/ package holds CLI integration tests that exercise the full stack:
// command parsing -> extension -> engine -> SQLite.
//
// Each test builds the binary once and runs it in a temp workspace with HOME
// pointed at a temp dir, so the global config and audit log never touch the
// real home directory.

package cmd

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	binaryPath string
	buildOnce  sync.Once
	buildErr   error
)

// buildBinary compiles the smartbar binary once for all tests.
func buildBinary(t *testing.T) string {
	t.Helper()

	buildOnce.Do(func() {
		tmpDir, err := os.MkdirTemp("", "smartbar-test-bin-*")
		if err != nil {
			buildErr = err
			return
		}

		binaryName := "smartbar"
		if os.PathSeparator == '\\' {
			binaryName = "smartbar.exe"
		}
		binaryPath = filepath.Join(tmpDir, binaryName)

		// Project root is the parent of cmd/
		projectRoot := filepath.Dir(mustGetwd())

		cmd := exec.Command("go", "build", "-o", binaryPath, ".")
		cmd.Dir = projectRoot
		if out, err := cmd.CombinedOutput(); err != nil {
			buildErr = &buildError{err: err, output: string(out)}
			return
		}
	})

	if buildErr != nil {
		t.Fatalf("failed to build binary: %v", buildErr)
	}
	return binaryPath
}

type buildError struct {
	err    error
	output string
}

func (e *buildError) Error() string {
	return e.err.Error() + "\n" + e.output
}

func mustGetwd() string {
	dir, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	return dir
}

// testEnv holds test environment state.
type testEnv struct {
	t      *testing.T
	dir    string
	home   string
	binary string
}

// newTestEnv creates a temp directory with an initialised workspace.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := newBareEnv(t)
	env.run("init")
	return env
}

// newBareEnv creates a temp directory without running init.
func newBareEnv(t *testing.T) *testEnv {
	t.Helper()
	return &testEnv{
		t:      t,
		dir:    t.TempDir(),
		home:   t.TempDir(),
		binary: buildBinary(t),
	}
}

// run executes smartbar with the given args and returns combined output.
func (e *testEnv) run(args ...string) string {
	e.t.Helper()
	out, err := e.runErr(args...)
	if err != nil {
		e.t.Fatalf("smartbar %v failed: %v\noutput: %s", args, err, out)
	}
	return out
}

// runErr executes smartbar and returns output and any error.
func (e *testEnv) runErr(args ...string) (string, error) {
	e.t.Helper()

	cmd := exec.Command(e.binary, args...)
	cmd.Dir = e.dir
	cmd.Env = e.environ()
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// runStdout executes smartbar and returns stdout only, for JSON parsing.
func (e *testEnv) runStdout(args ...string) string {
	e.t.Helper()

	cmd := exec.Command(e.binary, args...)
	cmd.Dir = e.dir
	cmd.Env = e.environ()
	out, err := cmd.Output()
	if err != nil {
		e.t.Fatalf("smartbar %v failed: %v\noutput: %s", args, err, out)
	}
	return string(out)
}

func (e *testEnv) environ() []string {
	var env []string
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "SMARTBAR_") || strings.HasPrefix(kv, "HOME=") || strings.HasPrefix(kv, "USERPROFILE=") {
			continue
		}
		env = append(env, kv)
	}
	return append(env, "HOME="+e.home, "USERPROFILE="+e.home)
}

// writeFile creates a file in the workspace directory.
func (e *testEnv) writeFile(name, data string) string {
	e.t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(e.t, os.WriteFile(path, []byte(data), 0644))
	return path
}

// json runs smartbar with -o json and decodes stdout into v.
func (e *testEnv) json(v any, args ...string) {
	e.t.Helper()
	out := e.runStdout(append(args, "-o", "json")...)
	require.NoError(e.t, json.Unmarshal([]byte(out), v), "output: %s", out)
}

// contains checks if output contains expected string.
func (e *testEnv) contains(output, expected string) {
	e.t.Helper()
	assert.Contains(e.t, output, expected)
}

// testFixture is a small site: an administrator, an author, a subscriber and
// content across every kind.
const testFixture = `
accounts:
  - {id: 1, login: admin, display_name: Site Admin, email: admin@example.com, role: administrator}
  - {id: 2, login: writer, display_name: Wendy Writer, email: wendy@example.com, role: author}
  - {id: 3, login: reader, display_name: Rob Reader, email: rob@example.com, role: subscriber}
entities:
  - {id: 10, kind: post, title: Annual Report, body: Results for the year, status: publish, author: 1, tags: [finance]}
  - {id: 11, kind: post, title: Draft Roadmap, body: Plans, status: draft, author: 1}
  - {id: 12, kind: page, title: About Us, body: Who we are, status: publish, author: 1}
  - {id: 13, kind: product, title: Blue Widget, body: A widget, status: publish, author: 1, meta: {_sku: BW-1, _price: "9.5"}}
  - {id: 14, kind: attachment, title: Annual Chart, mime_type: image/png, file_url: "https://example.com/chart.png", author: 2}
  - {id: 15, kind: post, title: Writer Notes, body: Notes, status: draft, author: 2}
`
