package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"

	"audittray/internal/audit"
	"audittray/internal/status"
)

type fakeNotificationDaemon struct {
	dbus.BusObject
	methods []string
	calls   [][]interface{}
	nextID  uint32
	err     error
}

func (f *fakeNotificationDaemon) CallWithContext(_ context.Context, method string, _ dbus.Flags, args ...interface{}) *dbus.Call {
	f.methods = append(f.methods, method)
	f.calls = append(f.calls, args)
	if f.err != nil {
		return &dbus.Call{Err: f.err}
	}
	f.nextID++
	return &dbus.Call{Body: []interface{}{f.nextID}}
}

func TestDesktopServiceReplacesPreviousNotification(t *testing.T) {
	daemon := &fakeNotificationDaemon{}
	connects, releases := 0, 0
	svc := newDesktopService(func() (dbus.BusObject, func() error, error) {
		connects++
		return daemon, func() error { releases++; return nil }, nil
	})

	alert := status.New("a", time.Now(), audit.Success([]audit.Update{{Severity: audit.SeverityCritical, Package: "curl", Text: "Critical: curl (dos)"}}))
	if err := svc.NotifyStatus(context.Background(), alert); err != nil {
		t.Fatalf("first notify: %v", err)
	}
	if err := svc.NotifyStatus(context.Background(), status.New("b", time.Now(), audit.Success(nil))); err != nil {
		t.Fatalf("second notify: %v", err)
	}

	if connects != 1 {
		t.Fatalf("expected one bus connection, got %d", connects)
	}
	if len(daemon.calls) != 2 || daemon.methods[0] != "org.freedesktop.Notifications.Notify" {
		t.Fatalf("unexpected calls %v", daemon.methods)
	}

	first, second := daemon.calls[0], daemon.calls[1]
	if first[1].(uint32) != 0 || second[1].(uint32) != 1 {
		t.Fatalf("expected replaces_id 0 then 1, got %v then %v", first[1], second[1])
	}
	if first[2].(string) != "security-low" || second[2].(string) != "security-high" {
		t.Fatalf("unexpected icons %v / %v", first[2], second[2])
	}
	if first[4].(string) != "1 missing security update\nCritical: curl (dos)" {
		t.Fatalf("unexpected body %q", first[4])
	}
	hints := first[6].(map[string]dbus.Variant)
	if hints["urgency"].Value().(byte) != 2 {
		t.Fatalf("expected critical urgency, got %v", hints["urgency"])
	}

	if err := svc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if releases != 1 {
		t.Fatalf("expected connection release, got %d", releases)
	}
}

func TestDesktopServiceSurfacesErrors(t *testing.T) {
	connectErr := errors.New("no session bus")
	svc := newDesktopService(func() (dbus.BusObject, func() error, error) {
		return nil, nil, connectErr
	})
	if err := svc.TestNotification(context.Background()); !errors.Is(err, connectErr) {
		t.Fatalf("expected connect error, got %v", err)
	}

	daemon := &fakeNotificationDaemon{err: errors.New("service unknown")}
	svc = newDesktopService(func() (dbus.BusObject, func() error, error) {
		return daemon, func() error { return nil }, nil
	})
	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected call error")
	}
}

func TestDesktopServiceReconnectsAfterClosedBus(t *testing.T) {
	stale := &fakeNotificationDaemon{err: dbus.ErrClosed}
	fresh := &fakeNotificationDaemon{}
	daemons := []*fakeNotificationDaemon{stale, fresh}
	connects, releases := 0, 0
	svc := newDesktopService(func() (dbus.BusObject, func() error, error) {
		d := daemons[connects]
		connects++
		return d, func() error { releases++; return nil }, nil
	})

	if err := svc.TestNotification(context.Background()); !errors.Is(err, dbus.ErrClosed) {
		t.Fatalf("expected closed connection error, got %v", err)
	}
	if releases != 1 {
		t.Fatalf("expected the closed connection to be released, got %d", releases)
	}

	if err := svc.TestNotification(context.Background()); err != nil {
		t.Fatalf("notify after reconnect: %v", err)
	}
	if connects != 2 || len(fresh.calls) != 1 {
		t.Fatalf("expected a second connection to serve the call, connects=%d calls=%d", connects, len(fresh.calls))
	}
}

func TestDesktopServiceKeepsConnectionOnRemoteError(t *testing.T) {
	daemon := &fakeNotificationDaemon{err: dbus.Error{Name: "org.freedesktop.DBus.Error.ServiceUnknown"}}
	connects := 0
	svc := newDesktopService(func() (dbus.BusObject, func() error, error) {
		connects++
		return daemon, func() error { return nil }, nil
	})
	for range 2 {
		if err := svc.TestNotification(context.Background()); err == nil {
			t.Fatal("expected call error")
		}
	}
	if connects != 1 {
		t.Fatalf("expected the connection to be reused, got %d connects", connects)
	}
}
