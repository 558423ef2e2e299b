package tunnel

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/Adda-Baaj/fdp-http-api/internal/logger"
	"github.com/Adda-Baaj/fdp-http-api/pkg/httpclient"
)

const dialTimeout = time.Second

// Config describes a local port forward through an SSH jump host.
type Config struct {
	JumpHost   string
	LocalPort  int
	RemoteHost string
	RemotePort int
}

// Runner executes an external command and waits for it to exit.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands with os/exec, inheriting stdout and stderr.
type ExecRunner struct{}

// Run starts name with args and waits for it to exit.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Tunnel makes sure the FDP port is reachable on localhost.
type Tunnel struct {
	cfg    Config
	runner Runner
	client httpclient.Client
	log    logger.Logger
	dial   func(ctx context.Context, network, addr string) (net.Conn, error)
}

// New builds a tunnel helper. Nil collaborators fall back to os/exec, a
// resty client and a no-op logger.
func New(cfg Config, runner Runner, client httpclient.Client, log logger.Logger) *Tunnel {
	if runner == nil {
		runner = ExecRunner{}
	}
	if client == nil {
		client = httpclient.NewRestyClient(10 * time.Second)
	}
	if strings.TrimSpace(cfg.RemoteHost) == "" {
		cfg.RemoteHost = "localhost"
	}
	if cfg.RemotePort <= 0 {
		cfg.RemotePort = cfg.LocalPort
	}
	d := &net.Dialer{Timeout: dialTimeout}
	return &Tunnel{
		cfg:    cfg,
		runner: runner,
		client: client,
		log:    logger.Ensure(log),
		dial:   d.DialContext,
	}
}

// IsOpen reports whether something accepts TCP connections on the local port.
func (t *Tunnel) IsOpen(ctx context.Context) bool {
	conn, err := t.dial(ctx, "tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(t.cfg.LocalPort)))
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// SSHArgs returns the arguments passed to ssh to open the forward in the background.
func (t *Tunnel) SSHArgs() []string {
	forward := fmt.Sprintf("%d:%s:%d", t.cfg.LocalPort, t.cfg.RemoteHost, t.cfg.RemotePort)
	return []string{"-f", t.cfg.JumpHost, "-L", forward, "-N"}
}

// Establish opens the forward with ssh.
func (t *Tunnel) Establish(ctx context.Context) error {
	if strings.TrimSpace(t.cfg.JumpHost) == "" {
		return fmt.Errorf("tunnel jump host is empty")
	}
	t.log.InfoObj("establishing tunnel", "tunnel", map[string]any{
		"jump_host":   t.cfg.JumpHost,
		"local_port":  t.cfg.LocalPort,
		"remote_host": t.cfg.RemoteHost,
		"remote_port": t.cfg.RemotePort,
	})
	if err := t.runner.Run(ctx, "ssh", t.SSHArgs()...); err != nil {
		return fmt.Errorf("run ssh: %w", err)
	}
	return nil
}

// Health probes GET /health on the local port.
func (t *Tunnel) Health(ctx context.Context) (int, string, error) {
	url := fmt.Sprintf("http://localhost:%d/health", t.cfg.LocalPort)
	resp, err := t.client.Get(ctx, url, nil)
	if err != nil {
		return 0, "", fmt.Errorf("health probe: %w", err)
	}
	return resp.StatusCode(), strings.TrimSpace(resp.String()), nil
}

// Prepare opens the tunnel when the port is closed, then probes service
// health. A failed probe is only logged.
func (t *Tunnel) Prepare(ctx context.Context) error {
	if !t.IsOpen(ctx) {
		if err := t.Establish(ctx); err != nil {
			return err
		}
	}

	status, body, err := t.Health(ctx)
	if err != nil {
		t.log.WarnObj("service health check failed", "error", err.Error())
		return nil
	}
	t.log.InfoObj("service health checked", "health", map[string]any{
		"status": status,
		"body":   body,
	})
	return nil
}
