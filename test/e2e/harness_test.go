package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

const (
	startupTimeout = 10 * time.Second
	pollInterval   = 100 * time.Millisecond
)

// lockedBuffer is a thread-safe wrapper around bytes.Buffer.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (lb *lockedBuffer) Write(p []byte) (int, error) {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.buf.Write(p)
}

func (lb *lockedBuffer) String() string {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.buf.String()
}

// serverProc holds the running timerd subprocess and its output.
type serverProc struct {
	cmd     *exec.Cmd
	stdout  *lockedBuffer
	url     string
	control string
}

var (
	builtBinary string
	buildOnce   sync.Once
	buildErr    error
)

func getBinary(t *testing.T) string {
	t.Helper()
	buildOnce.Do(func() {
		dir, err := os.MkdirTemp("", "timerd-e2e-*")
		if err != nil {
			buildErr = err
			return
		}
		binary := filepath.Join(dir, "timerd")
		cmd := exec.Command("go", "build", "-o", binary, "./cmd/timerd")
		cmd.Dir = findRepoRoot(t)
		out, err := cmd.CombinedOutput()
		if err != nil {
			buildErr = fmt.Errorf("go build failed: %w\n%s", err, out)
			return
		}
		builtBinary = binary
	})
	if buildErr != nil {
		t.Fatal(buildErr)
	}
	return builtBinary
}

func findRepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find repo root")
		}
		dir = parent
	}
}

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("find free port: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()
	return addr
}

func startServer(t *testing.T, binary string) *serverProc {
	t.Helper()

	addr := freeAddr(t)
	dir := t.TempDir()
	control := "unix:" + filepath.Join(dir, "timerd.sock")

	stdout := &lockedBuffer{}
	cmd := exec.Command(binary)
	cmd.Env = append(os.Environ(),
		"TIMERD_LISTEN_ADDR="+addr,
		"TIMERD_CONTROL_ADDR="+control,
		"TIMERD_DB_PATH="+filepath.Join(dir, "test.db"),
		"TIMERD_LOG_LEVEL=info",
		"TIMERD_TICK_INTERVAL=20ms",
		"TIMERD_STATS_TIMEZONE=UTC",
	)
	cmd.Stdout = stdout
	cmd.Stderr = stdout

	if err := cmd.Start(); err != nil {
		t.Fatalf("start server: %v", err)
	}

	sp := &serverProc{
		cmd:     cmd,
		stdout:  stdout,
		url:     "http://" + addr,
		control: control,
	}

	t.Cleanup(func() {
		cmd.Process.Kill()
		cmd.Wait()
	})

	deadline := time.Now().Add(startupTimeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(sp.url + "/healthz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == 200 {
				return sp
			}
		}
		time.Sleep(pollInterval)
	}
	t.Fatalf("server did not become ready within %v\nstdout:\n%s", startupTimeout, stdout.String())
	return nil
}

// postJSON sends body to path and decodes the response into a map.
func (sp *serverProc) postJSON(t *testing.T, path, body string, wantStatus int) map[string]any {
	t.Helper()
	resp, err := http.Post(sp.url+path, "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	return decodeResponse(t, resp, wantStatus)
}

func (sp *serverProc) getJSON(t *testing.T, path string, wantStatus int) map[string]any {
	t.Helper()
	resp, err := http.Get(sp.url + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	return decodeResponse(t, resp, wantStatus)
}

func decodeResponse(t *testing.T, resp *http.Response, wantStatus int) map[string]any {
	t.Helper()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != wantStatus {
		t.Fatalf("status = %d, want %d\nbody: %s", resp.StatusCode, wantStatus, body)
	}
	var out map[string]any
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode response: %v\nbody: %s", err, body)
	}
	return out
}

// waitFor polls fn until it returns true or the timeout elapses.
func waitFor(t *testing.T, timeout time.Duration, what string, fn func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("timed out after %v waiting for %s", timeout, what)
}
