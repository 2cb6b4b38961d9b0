package notifications_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"audittray/internal/audit"
	"audittray/internal/config"
	"audittray/internal/notifications"
	"audittray/internal/status"
)

func TestNewServiceReturnsNoopWhenNothingConfigured(t *testing.T) {
	cfg := config.Default()
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyStatus(context.Background(), status.New("id", time.Now(), audit.Success(nil))); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("noop close: %v", err)
	}
}

func manyUpdates(n int, severity audit.Severity) []audit.Update {
	out := make([]audit.Update, n)
	for i := range out {
		pkg := fmt.Sprintf("pkg%02d", i)
		out[i] = audit.Update{Severity: severity, Package: pkg, Text: fmt.Sprintf("%s: %s (xss)", severity, pkg)}
	}
	return out
}

func TestNtfyServiceFormatsStatuses(t *testing.T) {
	tests := []struct {
		name           string
		result         audit.Result
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name:           "clean",
			result:         audit.Success(nil),
			expectTitle:    "Security updates",
			expectMessage:  "No missing security updates",
			expectTags:     "audittray,white_check_mark",
			expectPriority: "low",
		},
		{
			name:          "low severity",
			result:        audit.Success(manyUpdates(1, audit.SeverityLow)),
			expectTitle:   "Security updates",
			expectMessage: "1 missing security update\nLow: pkg00 (xss)",
			expectTags:    "audittray,warning",
		},
		{
			name:           "critical",
			result:         audit.Success(manyUpdates(2, audit.SeverityCritical)),
			expectTitle:    "Security updates",
			expectMessage:  "2 missing security updates\nCritical: pkg00 (xss)\nCritical: pkg01 (xss)",
			expectTags:     "audittray,warning",
			expectPriority: "high",
		},
		{
			name:           "error",
			result:         audit.Result{Err: "boom"},
			expectTitle:    "Security update check failed",
			expectMessage:  "ERROR: boom",
			expectTags:     "audittray,x",
			expectPriority: "high",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Errorf("read body: %v", err)
				}
				captured.body = string(body)
				_ = r.Body.Close()
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5

			svc := notifications.NewService(&cfg)
			defer svc.Close()
			if err := svc.NotifyStatus(context.Background(), status.New("id", time.Now(), tc.result)); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceTruncatesLongLists(t *testing.T) {
	var body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notifications.NewService(&cfg)
	defer svc.Close()

	if err := svc.NotifyStatus(context.Background(), status.New("id", time.Now(), audit.Success(manyUpdates(13, audit.SeverityMedium)))); err != nil {
		t.Fatalf("notify: %v", err)
	}
	lines := strings.Split(body, "\n")
	if len(lines) != 12 {
		t.Fatalf("expected summary, 10 updates and a trailer, got %d lines:\n%s", len(lines), body)
	}
	if lines[11] != "… and 3 more" {
		t.Fatalf("unexpected trailer %q", lines[11])
	}
}

func TestNtfyServiceReportsHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic is rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notifications.NewService(&cfg)
	defer svc.Close()

	err := svc.TestNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "429") || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("expected HTTP error with body, got %v", err)
	}
}
