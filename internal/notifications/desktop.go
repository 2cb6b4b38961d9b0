package notifications

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"

	"audittray/internal/status"
)

const (
	notificationsDest   = "org.freedesktop.Notifications"
	notificationsPath   = dbus.ObjectPath("/org/freedesktop/Notifications")
	notificationsNotify = notificationsDest + ".Notify"
	appName             = "audittray"
)

// busConnector returns the notification daemon object and a func that
// releases the connection.
type busConnector func() (dbus.BusObject, func() error, error)

func connectSessionBus() (dbus.BusObject, func() error, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, nil, fmt.Errorf("connect session bus: %w", err)
	}
	return conn.Object(notificationsDest, notificationsPath), conn.Close, nil
}

// desktopService replaces its previous notification so only the latest
// status stays on screen.
type desktopService struct {
	connect busConnector

	mu      sync.Mutex
	obj     dbus.BusObject
	release func() error
	lastID  uint32
}

func newDesktopService(connect busConnector) *desktopService {
	return &desktopService{connect: connect}
}

func (d *desktopService) NotifyStatus(ctx context.Context, st status.Status) error {
	return d.send(ctx, statusMessage(st))
}

func (d *desktopService) TestNotification(ctx context.Context) error {
	return d.send(ctx, testMessage())
}

func (d *desktopService) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropConnection()
}

// dropConnection forgets the cached bus object so the next send reconnects.
// Callers hold d.mu.
func (d *desktopService) dropConnection() error {
	d.obj = nil
	if d.release == nil {
		return nil
	}
	release := d.release
	d.release = nil
	return release()
}

func (d *desktopService) send(ctx context.Context, data message) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.obj == nil {
		obj, release, err := d.connect()
		if err != nil {
			return err
		}
		d.obj, d.release = obj, release
	}

	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(urgency(data.priority)),
	}
	call := d.obj.CallWithContext(ctx, notificationsNotify, 0,
		appName,
		d.lastID,
		desktopIcon(data.icon),
		data.title,
		data.body,
		[]string{},
		hints,
		int32(-1),
	)
	if call.Err != nil {
		if errors.Is(call.Err, dbus.ErrClosed) {
			_ = d.dropConnection()
		}
		return fmt.Errorf("send desktop notification: %w", call.Err)
	}
	var id uint32
	if err := call.Store(&id); err != nil {
		return fmt.Errorf("decode desktop notification id: %w", err)
	}
	d.lastID = id
	return nil
}

func urgency(priority string) byte {
	switch priority {
	case "low":
		return 0
	case "high":
		return 2
	default:
		return 1
	}
}

func desktopIcon(icon status.Icon) string {
	switch icon {
	case status.IconAlert:
		return "security-low"
	case status.IconCross:
		return "dialog-error"
	default:
		return "security-high"
	}
}
