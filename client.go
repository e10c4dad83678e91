package euronet

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/sync/cio"
	logp "github.com/charmbracelet/log"
	"github.com/j-keck/arping"
)

var log = logp.NewWithOptions(os.Stderr, logp.Options{
	ReportTimestamp: true,
	TimeFormat:      time.Kitchen,
	Prefix:          "euronet",
})

// SetLogLevel sets the level of the client, discovery and coordinator logs.
func SetLogLevel(level logp.Level) {
	log.SetLevel(level)
}

// DefaultTimeout bounds a single request, and a whole poll cycle.
const DefaultTimeout = 10 * time.Second

const (
	statusPath = "/status.xml"
	zonesPath  = "/ingressi-filari.html"
	maxBody    = 1 << 20
)

// Client talks to the panel embedded web server.
// It does a single attempt per call and never decodes anything.
type Client struct {
	http    *http.Client
	base    string
	user    string
	pass    string
	timeout time.Duration
}

func New(host, port, user, pass string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http: &http.Client{Timeout: timeout},
		base: "http://" + net.JoinHostPort(host, port),
		user: user,
		pass: pass,

		timeout: timeout,
	}
}

// SplitHostPort accepts both "host" and "host:port".
// An unparseable port falls back to the given default.
func SplitHostPort(hostport, port string) (string, string) {
	host, p, err := net.SplitHostPort(hostport)
	if err != nil {
		return strings.TrimSpace(hostport), port
	}
	if _, err := strconv.Atoi(p); err != nil {
		return host, port
	}
	return host, p
}

// Fetch posts the command to status.xml and returns the raw body.
func (c *Client) Fetch(ctx context.Context, cmd Command) (string, error) {
	log.Debug("fetch", "cmd", cmd)
	body, err := c.do(ctx, http.MethodPost, statusPath, strings.NewReader(string(cmd)))
	if err != nil {
		return "", &TransportError{Command: cmd, Err: err}
	}
	return body, nil
}

// Ping checks the credentials against the panel index page.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.do(ctx, http.MethodGet, "/", nil); err != nil {
		return &TransportError{Err: err}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (string, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return "", fmt.Errorf("could not create request: %w", err)
	}
	req.SetBasicAuth(c.user, c.pass)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden:
		return "", ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("unexpected status: %s", resp.Status)
	}

	bts, err := io.ReadAll(io.LimitReader(cio.TimeoutReader(resp.Body, c.timeout), maxBody))
	if err != nil {
		return "", fmt.Errorf("could not read response: %w", err)
	}
	return string(bts), nil
}

func MacAddress(ip string) (string, error) {
	hw, _, err := arping.Ping(net.ParseIP(ip))
	if err != nil {
		return "", fmt.Errorf("could not get the mac address: %w", err)
	}
	return hw.String(), nil
}
