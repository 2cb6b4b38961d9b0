package testsupport

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// WriteScript writes an executable /bin/sh script named name into dir and
// returns its path.
func WriteScript(t testing.TB, dir, name, body string) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", dir, err)
	}
	target := filepath.Join(dir, name)
	script := "#!/bin/sh\n" + strings.TrimSpace(body) + "\n"
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return target
}

// EchoScript returns a script body that prints payload on stdout and exits 0.
func EchoScript(payload string) string {
	return "cat <<'AUDIT_EOF'\n" + payload + "\nAUDIT_EOF"
}

// FailScript returns a script body that prints stderr and exits with code.
func FailScript(stderr string, code int) string {
	return "printf '%s\\n' '" + strings.ReplaceAll(stderr, "'", `'\''`) + "' >&2\nexit " + strconv.Itoa(code)
}

// SampleAdvisories is a realistic `arch-audit -u --json` report.
const SampleAdvisories = `[
  {"name": "AVG-2001", "packages": ["openssl", "lib32-openssl"], "status": "Fixed", "severity": "High", "type": "arbitrary code execution", "fixed": "3.1.2-1", "issues": ["CVE-2023-0001"]},
  {"name": "AVG-2002", "packages": ["curl"], "status": "Fixed", "severity": "Critical", "type": "denial of service", "fixed": "8.1.0-1", "issues": ["CVE-2023-0002"]},
  {"name": "AVG-2003", "packages": ["bash"], "status": "Fixed", "severity": "Low", "type": "information disclosure", "fixed": "5.2.0-1", "issues": []}
]`
