package ipc_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"audittray/internal/audit"
	"audittray/internal/ipc"
	"audittray/internal/logging"
)

type fakeController struct {
	clicks atomic.Int32
	notify error
}

func (f *fakeController) CheckNow() bool {
	f.clicks.Add(1)
	return true
}

func (f *fakeController) Status() ipc.StatusResponse {
	return ipc.StatusResponse{
		PID:          42,
		Checked:      true,
		CheckID:      "abc",
		CheckedAt:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Text:         "1 missing security update",
		Icon:         "alert",
		NeedsUpdates: true,
		Updates: []audit.Update{{
			Severity: audit.SeverityHigh,
			Package:  "openssl",
			Advisory: "AVG-1",
			Kind:     "arbitrary code execution",
			Text:     "High: openssl (arbitrary code execution)",
			Link:     "https://security.archlinux.org/AVG-1",
		}},
	}
}

func (f *fakeController) TestNotification(context.Context) error {
	return f.notify
}

func startServer(t *testing.T, ctl ipc.Controller) (*ipc.Server, *ipc.Client) {
	t.Helper()
	socket := filepath.Join(t.TempDir(), "audittray.sock")
	srv, err := ipc.NewServer(context.Background(), socket, ctl, logging.NewNop())
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC server test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(srv.Close)

	client, err := ipc.Dial(socket)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return srv, client
}

func TestIPCServerClient(t *testing.T) {
	ctl := &fakeController{}
	_, client := startServer(t, ctl)

	resp, err := client.CheckNow()
	if err != nil {
		t.Fatalf("CheckNow RPC failed: %v", err)
	}
	if !resp.Queued || ctl.clicks.Load() != 1 {
		t.Fatalf("expected one queued click, got queued=%v clicks=%d", resp.Queued, ctl.clicks.Load())
	}

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if status.PID != 42 || status.Icon != "alert" || !status.NeedsUpdates {
		t.Fatalf("unexpected status %+v", status)
	}
	if len(status.Updates) != 1 || status.Updates[0].Severity != audit.SeverityHigh || status.Updates[0].Package != "openssl" {
		t.Fatalf("updates did not survive the wire: %+v", status.Updates)
	}
	if !status.CheckedAt.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)) {
		t.Fatalf("unexpected checked_at %s", status.CheckedAt)
	}

	notify, err := client.TestNotification()
	if err != nil {
		t.Fatalf("TestNotification RPC failed: %v", err)
	}
	if !notify.Sent {
		t.Fatalf("expected sent, got %+v", notify)
	}
}

func TestIPCTestNotificationFailureIsReported(t *testing.T) {
	_, client := startServer(t, &fakeController{notify: errors.New("ntfy unreachable")})

	resp, err := client.TestNotification()
	if err != nil {
		t.Fatalf("TestNotification RPC failed: %v", err)
	}
	if resp.Sent || resp.Message != "ntfy unreachable" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestIPCServerCloseRemovesSocket(t *testing.T) {
	srv, _ := startServer(t, &fakeController{})
	srv.Close()
	if _, err := os.Stat(srv.Path()); !os.IsNotExist(err) {
		t.Fatalf("expected socket to be removed, stat err=%v", err)
	}
}

func TestNewServerRequiresController(t *testing.T) {
	if _, err := ipc.NewServer(context.Background(), filepath.Join(t.TempDir(), "s.sock"), nil, nil); err == nil {
		t.Fatal("expected error without controller")
	}
}
