package audit

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Severity ranks advisory impact. Higher values are more severe.
type Severity int

const (
	SeverityUnknown Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

var severityNames = [...]string{
	SeverityUnknown:  "Unknown",
	SeverityLow:      "Low",
	SeverityMedium:   "Medium",
	SeverityHigh:     "High",
	SeverityCritical: "Critical",
}

var severityFold = cases.Fold()

func (s Severity) String() string {
	if s < SeverityUnknown || s > SeverityCritical {
		return fmt.Sprintf("Severity(%d)", int(s))
	}
	return severityNames[s]
}

// ParseSeverity accepts the severity names emitted by arch-audit, ignoring case.
func ParseSeverity(value string) (Severity, error) {
	folded := severityFold.String(strings.TrimSpace(value))
	for i, name := range severityNames {
		if severityFold.String(name) == folded {
			return Severity(i), nil
		}
	}
	return SeverityUnknown, fmt.Errorf("unknown severity %q", value)
}

// MarshalText renders the canonical severity name.
func (s Severity) MarshalText() ([]byte, error) {
	if s < SeverityUnknown || s > SeverityCritical {
		return nil, fmt.Errorf("invalid severity %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText parses a severity name.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Urgent reports whether the severity warrants an elevated notification priority.
func (s Severity) Urgent() bool {
	return s >= SeverityHigh
}
