package audit

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"testing"
)

func TestParseAcceptsKindKey(t *testing.T) {
	updates, err := parseAdvisories([]byte(`[{"name":"AVG-7","severity":"medium","kind":"xss","packages":["php"]}]`), "https://x")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(updates) != 1 || updates[0].Severity != SeverityMedium || updates[0].Text != "Medium: php (xss)" {
		t.Fatalf("unexpected updates %+v", updates)
	}
}

func TestParseSortedAndCountPreserved(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	severities := []string{"Unknown", "Low", "Medium", "High", "Critical"}

	for round := 0; round < 50; round++ {
		var payload []map[string]any
		total := 0
		records := 1 + rng.IntN(8)
		for i := 0; i < records; i++ {
			pkgs := []string{}
			count := rng.IntN(4)
			for j := 0; j < count; j++ {
				pkgs = append(pkgs, fmt.Sprintf("pkg%d", rng.IntN(5)))
			}
			total += len(pkgs)
			payload = append(payload, map[string]any{
				"name":     fmt.Sprintf("AVG-%d", rng.IntN(100)),
				"severity": severities[rng.IntN(len(severities))],
				"type":     "unknown",
				"packages": pkgs,
			})
		}
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		updates, err := parseAdvisories(data, "https://x")
		if err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
		if len(updates) != total {
			t.Fatalf("round %d: expected %d updates, got %d", round, total, len(updates))
		}
		for i := 1; i < len(updates); i++ {
			prev, cur := updates[i-1], updates[i]
			if prev.Severity < cur.Severity {
				t.Fatalf("round %d: severity not descending at %d", round, i)
			}
			if prev.Severity == cur.Severity && prev.Package > cur.Package {
				t.Fatalf("round %d: packages not ascending at %d", round, i)
			}
		}
	}
}

func TestParseSeverity(t *testing.T) {
	cases := map[string]Severity{
		"Critical": SeverityCritical,
		"HIGH":     SeverityHigh,
		" medium ": SeverityMedium,
		"low":      SeverityLow,
		"Unknown":  SeverityUnknown,
	}
	for in, want := range cases {
		got, err := ParseSeverity(in)
		if err != nil || got != want {
			t.Fatalf("ParseSeverity(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseSeverity("severe"); err == nil {
		t.Fatal("expected error for unknown severity")
	}
}

func TestResultEqual(t *testing.T) {
	a := Success([]Update{{Severity: SeverityHigh, Package: "a"}})
	b := Success([]Update{{Severity: SeverityHigh, Package: "a"}})
	if !a.Equal(b) {
		t.Fatal("expected equal results")
	}
	if a.Equal(Success(nil)) {
		t.Fatal("expected different results")
	}
	if !Failure(nil).Failed() {
		t.Fatal("Failure(nil) should still be a failed result")
	}
}
