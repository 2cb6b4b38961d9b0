package status_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"audittray/internal/audit"
	"audittray/internal/status"
)

func updates(n int) []audit.Update {
	out := make([]audit.Update, n)
	for i := range out {
		out[i] = audit.Update{Severity: audit.SeverityHigh, Package: "pkg"}
	}
	return out
}

func TestProject(t *testing.T) {
	tests := []struct {
		name     string
		result   audit.Result
		wantText string
		wantIcon status.Icon
	}{
		{"empty", audit.Success(nil), "No missing security updates", status.IconCheck},
		{"single", audit.Success(updates(1)), "1 missing security update", status.IconAlert},
		{"plural", audit.Success(updates(3)), "3 missing security updates", status.IconAlert},
		{"error", audit.Result{Err: "boom"}, "ERROR: boom", status.IconCross},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			text, icon := status.Project(tc.result)
			if text != tc.wantText || icon != tc.wantIcon {
				t.Fatalf("Project() = %q/%s, want %q/%s", text, icon, tc.wantText, tc.wantIcon)
			}
			again, againIcon := status.Project(tc.result)
			if again != text || againIcon != icon {
				t.Fatal("Project is not deterministic")
			}
		})
	}
}

func TestIconRoundTrip(t *testing.T) {
	for _, icon := range []status.Icon{status.IconCheck, status.IconAlert, status.IconCross} {
		parsed, err := status.ParseIcon(icon.String())
		if err != nil || parsed != icon {
			t.Fatalf("ParseIcon(%q) = %v, %v", icon.String(), parsed, err)
		}
	}
	if _, err := status.ParseIcon("warning"); err == nil {
		t.Fatal("expected error for unknown icon")
	}
}

func TestSameOutcomeIgnoresMetadata(t *testing.T) {
	a := status.New("a", time.Unix(1, 0), audit.Success(updates(2)))
	b := status.New("b", time.Unix(2, 0), audit.Success(updates(2)))
	if !a.SameOutcome(b) {
		t.Fatal("expected identical outcomes")
	}
	c := status.New("c", time.Unix(3, 0), audit.Result{Err: "boom"})
	if a.SameOutcome(c) {
		t.Fatal("expected different outcomes")
	}
	if !c.NeedsUpdates() {
		t.Fatal("error status should count as needing updates")
	}
}

func TestResolveIconDirFallsBackToDefault(t *testing.T) {
	root := t.TempDir()
	defaultDir := filepath.Join(root, "default")
	if err := os.MkdirAll(defaultDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(defaultDir, "check.svg"), []byte("<svg/>"), 0o644); err != nil {
		t.Fatal(err)
	}

	dir, ok := status.ResolveIconDir("dark", []string{filepath.Join(root, "missing"), root})
	if !ok || dir != defaultDir {
		t.Fatalf("ResolveIconDir() = %q, %v; want %q", dir, ok, defaultDir)
	}

	if _, ok := status.ResolveIconDir("dark", []string{filepath.Join(root, "missing")}); ok {
		t.Fatal("expected no theme to resolve")
	}
}
