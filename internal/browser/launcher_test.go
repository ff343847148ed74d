package browser

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"
)

func splitHostPort(t *testing.T, rawURL string) (string, int) {
	t.Helper()
	host, portStr, err := net.SplitHostPort(strings.TrimPrefix(rawURL, "http://"))
	if err != nil {
		t.Fatalf("split host port: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parse port: %v", err)
	}
	return host, port
}

func TestArgsEnableRemoteDebugging(t *testing.T) {
	l := NewLauncher(Config{CDPAddress: "127.0.0.1", CDPPort: 9333, ProfileDir: "/tmp/profile"})
	args := l.args()

	want := []string{"--remote-debugging-port=9333", "--remote-debugging-address=127.0.0.1", "--user-data-dir=/tmp/profile"}
	for i, w := range want {
		if args[i] != w {
			t.Fatalf("args[%d] = %q; want %q", i, args[i], w)
		}
	}
	if got := args[len(args)-1]; got != "about:blank" {
		t.Fatalf("start url = %q; want about:blank", got)
	}
}

func TestLaunchSkipsWhenPortInUse(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	host, port := splitHostPort(t, srv.URL)

	l := NewLauncher(Config{Binary: "/nonexistent/browser", CDPAddress: host, CDPPort: port})
	if err := l.Launch(context.Background()); err != nil {
		t.Fatalf("Launch() error = %v", err)
	}
	if l.Running() {
		t.Fatal("Running() = true; want false when reusing an existing browser")
	}
	l.Stop()
}

func TestWaitForCDPReady(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/json/version" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"webSocketDebuggerUrl":"ws://x"}`))
	}))
	defer srv.Close()
	host, port := splitHostPort(t, srv.URL)

	l := NewLauncher(Config{CDPAddress: host, CDPPort: port, ReadyTimeout: 2 * time.Second})
	if err := l.waitForCDP(context.Background()); err != nil {
		t.Fatalf("waitForCDP() error = %v", err)
	}
}

func TestWaitForCDPTimesOut(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	host, port := splitHostPort(t, "http://"+ln.Addr().String())
	_ = ln.Close()

	l := NewLauncher(Config{CDPAddress: host, CDPPort: port, ReadyTimeout: 300 * time.Millisecond})
	if err := l.waitForCDP(context.Background()); err == nil {
		t.Fatal("waitForCDP() error = nil; want timeout")
	}
}
