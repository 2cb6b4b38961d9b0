package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"audittray/internal/audit"
	"audittray/internal/config"
	"audittray/internal/status"
)

const userAgent = "audittray/0.1.0"

// maxListedUpdates caps how many update lines a notification body carries.
const maxListedUpdates = 10

// Service defines the notification surface used by the daemon.
type Service interface {
	NotifyStatus(ctx context.Context, st status.Status) error
	TestNotification(ctx context.Context) error
	Close() error
}

// NewService builds a notification service from the configured transports.
// When nothing is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	var sinks []Service

	if topic := strings.TrimSpace(cfg.Notifications.NtfyTopic); topic != "" {
		timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		sinks = append(sinks, newNtfyService(topic, timeout))
	}
	if cfg.Notifications.Desktop {
		sinks = append(sinks, newDesktopService(connectSessionBus))
	}

	switch len(sinks) {
	case 0:
		return noopService{}
	case 1:
		return sinks[0]
	default:
		return multiService(sinks)
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
	icon     status.Icon
}

func statusMessage(st status.Status) message {
	msg := message{
		title: "Security updates",
		body:  st.Text,
		icon:  st.Icon,
	}
	switch st.Icon {
	case status.IconCheck:
		msg.tags = []string{"audittray", "white_check_mark"}
		msg.priority = "low"
	case status.IconAlert:
		msg.tags = []string{"audittray", "warning"}
		if hasUrgent(st.Result.Updates) {
			msg.priority = "high"
		}
	case status.IconCross:
		msg.title = "Security update check failed"
		msg.tags = []string{"audittray", "x"}
		msg.priority = "high"
	}

	if n := len(st.Result.Updates); n > 0 {
		var builder strings.Builder
		builder.WriteString(st.Text)
		for i, update := range st.Result.Updates {
			if i == maxListedUpdates {
				fmt.Fprintf(&builder, "\n… and %d more", n-maxListedUpdates)
				break
			}
			builder.WriteString("\n")
			builder.WriteString(update.Text)
		}
		msg.body = builder.String()
	}
	return msg
}

func hasUrgent(updates []audit.Update) bool {
	for _, update := range updates {
		if update.Severity.Urgent() {
			return true
		}
	}
	return false
}

func testMessage() message {
	return message{
		title:    "audittray - Test",
		body:     "Notification system test",
		tags:     []string{"audittray", "test"},
		priority: "low",
		icon:     status.IconCheck,
	}
}

type multiService []Service

func (m multiService) NotifyStatus(ctx context.Context, st status.Status) error {
	var result *multierror.Error
	for _, svc := range m {
		if err := svc.NotifyStatus(ctx, st); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (m multiService) TestNotification(ctx context.Context) error {
	var result *multierror.Error
	for _, svc := range m {
		if err := svc.TestNotification(ctx); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (m multiService) Close() error {
	var result *multierror.Error
	for _, svc := range m {
		if err := svc.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// NewNoop returns a Service that discards everything.
func NewNoop() Service {
	return noopService{}
}

type noopService struct{}

func (noopService) NotifyStatus(context.Context, status.Status) error { return nil }
func (noopService) TestNotification(context.Context) error            { return nil }
func (noopService) Close() error                                      { return nil }
