package tunnel

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
)

type fakeRunner struct {
	calls [][]string
	err   error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) error {
	f.calls = append(f.calls, append([]string{name}, args...))
	return f.err
}

func serverPort(t *testing.T, srv *httptest.Server) int {
	t.Helper()
	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("parse port: %v", err)
	}
	return port
}

func closedPort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	l.Close()
	return port
}

func TestPrepareSkipsSSHWhenPortOpen(t *testing.T) {
	var probed bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			probed = true
		}
		_, _ = w.Write([]byte("OK"))
	}))
	defer srv.Close()

	runner := &fakeRunner{}
	tun := New(Config{JumpHost: "adhoc10-sjc1", LocalPort: serverPort(t, srv)}, runner, nil, nil)

	if err := tun.Prepare(context.Background()); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if len(runner.calls) != 0 {
		t.Fatalf("ssh must not run when the port is open, got %v", runner.calls)
	}
	if !probed {
		t.Fatalf("health endpoint was not probed")
	}
}

func TestPrepareRunsSSHWhenPortClosed(t *testing.T) {
	port := closedPort(t)
	runner := &fakeRunner{}
	tun := New(Config{JumpHost: "adhoc10-sjc1", LocalPort: port}, runner, nil, nil)

	if err := tun.Prepare(context.Background()); err != nil {
		t.Fatalf("Prepare should tolerate a failing health probe: %v", err)
	}
	if len(runner.calls) != 1 {
		t.Fatalf("expected one ssh call, got %v", runner.calls)
	}
	want := "ssh -f adhoc10-sjc1 -L " + strconv.Itoa(port) + ":localhost:" + strconv.Itoa(port) + " -N"
	if got := strings.Join(runner.calls[0], " "); got != want {
		t.Fatalf("ssh command = %q, want %q", got, want)
	}
}

func TestPrepareReturnsSSHFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("exit status 255")}
	tun := New(Config{JumpHost: "adhoc10-sjc1", LocalPort: closedPort(t)}, runner, nil, nil)

	if err := tun.Prepare(context.Background()); err == nil {
		t.Fatalf("expected ssh failure to be returned")
	}
}

func TestSSHArgsUseRemoteHostAndPort(t *testing.T) {
	tun := New(Config{JumpHost: "compute368-sjc1", LocalPort: 7031, RemoteHost: "prestomaster05-sjc1", RemotePort: 8080}, &fakeRunner{}, nil, nil)
	got := strings.Join(tun.SSHArgs(), " ")
	if got != "-f compute368-sjc1 -L 7031:prestomaster05-sjc1:8080 -N" {
		t.Fatalf("unexpected args %q", got)
	}
}

func TestEstablishRequiresJumpHost(t *testing.T) {
	tun := New(Config{LocalPort: 1}, &fakeRunner{}, nil, nil)
	if err := tun.Establish(context.Background()); err == nil {
		t.Fatalf("expected error without jump host")
	}
}
