package euronet

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(tb testing.TB, handler http.HandlerFunc) *Client {
	tb.Helper()
	srv := httptest.NewServer(handler)
	tb.Cleanup(srv.Close)
	host, port, err := net.SplitHostPort(strings.TrimPrefix(srv.URL, "http://"))
	require.NoError(tb, err)
	return New(host, port, "admin", "secret", time.Second)
}

func TestFetch(t *testing.T) {
	cli := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "admin" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.Method != http.MethodPost || r.URL.Path != "/status.xml" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		body, _ := io.ReadAll(r.Body)
		switch string(body) {
		case "Sta=":
			_, _ = io.WriteString(w, "<in_state>1%2</in_state>")
		case "Ing=0":
			_, _ = io.WriteString(w, "<in_state>1,2,</in_state>")
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})

	body, err := cli.Fetch(context.Background(), CommandStatus)
	require.NoError(t, err)
	require.Equal(t, "<in_state>1%2</in_state>", body)

	body, err = cli.Fetch(context.Background(), CommandZones)
	require.NoError(t, err)
	require.Equal(t, "<in_state>1,2,</in_state>", body)
}

func TestFetchErrors(t *testing.T) {
	t.Run("unauthorized", func(t *testing.T) {
		cli := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		_, err := cli.Fetch(context.Background(), CommandStatus)
		require.ErrorIs(t, err, ErrUnauthorized)

		var terr *TransportError
		require.ErrorAs(t, err, &terr)
		require.Equal(t, CommandStatus, terr.Command)
	})

	t.Run("server error", func(t *testing.T) {
		cli := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		_, err := cli.Fetch(context.Background(), CommandZones)
		require.ErrorContains(t, err, "500")
	})

	t.Run("timeout", func(t *testing.T) {
		cli := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
		})
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err := cli.Fetch(ctx, CommandStatus)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("connection refused", func(t *testing.T) {
		cli := New("127.0.0.1", "1", "admin", "secret", time.Second)
		_, err := cli.Fetch(context.Background(), CommandStatus)
		var terr *TransportError
		require.ErrorAs(t, err, &terr)
		require.False(t, errors.Is(err, ErrUnauthorized))
	})
}

func TestPing(t *testing.T) {
	cli := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if _, pass, _ := r.BasicAuth(); pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
		}
	})
	require.NoError(t, cli.Ping(context.Background()))

	cli.pass = "wrong"
	require.ErrorIs(t, cli.Ping(context.Background()), ErrUnauthorized)
}

func TestSplitHostPort(t *testing.T) {
	for in, want := range map[string][2]string{
		"192.168.1.10":      {"192.168.1.10", "80"},
		"192.168.1.10:8080": {"192.168.1.10", "8080"},
		"192.168.1.10:http": {"192.168.1.10", "80"},
		" euronet.lan ":     {"euronet.lan", "80"},
	} {
		host, port := SplitHostPort(in, "80")
		require.Equal(t, want, [2]string{host, port}, in)
	}
}

func TestLive(t *testing.T) {
	host := os.Getenv("EURONET_HOST")
	if host == "" {
		t.Skip("only works in my network")
	}
	h, p := SplitHostPort(host, "80")
	cli := New(h, p, os.Getenv("EURONET_USERNAME"), os.Getenv("EURONET_PASSWORD"), DefaultTimeout)

	body, err := cli.Fetch(context.Background(), CommandStatus)
	require.NoError(t, err)
	t.Logf("system: %v", DecodeSystem(body))
	t.Logf("gstate: %q", DecodeGState(body))

	body, err = cli.Fetch(context.Background(), CommandZones)
	require.NoError(t, err)
	t.Logf("ingressi: %v", DecodeIngressi(body))

	names, err := cli.ZoneNames(context.Background())
	require.NoError(t, err)
	t.Logf("zones: %v", names)
}
