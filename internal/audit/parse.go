package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// advisoryRecord mirrors one entry of `arch-audit --json`. Pointer fields
// distinguish missing keys from empty values. arch-audit names the
// classification "type"; "kind" is accepted as well.
type advisoryRecord struct {
	Name     *string   `json:"name"`
	Severity *string   `json:"severity"`
	Packages *[]string `json:"packages"`
	Kind     *string   `json:"kind"`
	Type     *string   `json:"type"`
}

func parseAdvisories(data []byte, advisoryBaseURL string) ([]Update, error) {
	var records *[]advisoryRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	if records == nil {
		return nil, errors.New("expected a JSON array of advisories, got null")
	}

	var updates []Update
	for idx, record := range *records {
		expanded, err := expandRecord(record, advisoryBaseURL)
		if err != nil {
			return nil, fmt.Errorf("advisory %d: %w", idx, err)
		}
		updates = append(updates, expanded...)
	}
	SortUpdates(updates)
	return updates, nil
}

func expandRecord(record advisoryRecord, advisoryBaseURL string) ([]Update, error) {
	if record.Name == nil || strings.TrimSpace(*record.Name) == "" {
		return nil, errors.New("missing name")
	}
	if record.Severity == nil {
		return nil, errors.New("missing severity")
	}
	if record.Packages == nil {
		return nil, errors.New("missing packages")
	}
	kind := record.Kind
	if kind == nil {
		kind = record.Type
	}
	if kind == nil {
		return nil, errors.New("missing kind")
	}
	severity, err := ParseSeverity(*record.Severity)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(*record.Name)
	link := advisoryBaseURL + "/" + url.PathEscape(name)
	updates := make([]Update, 0, len(*record.Packages))
	for _, pkg := range *record.Packages {
		updates = append(updates, Update{
			Severity: severity,
			Package:  pkg,
			Advisory: name,
			Kind:     *kind,
			Text:     fmt.Sprintf("%s: %s (%s)", severity, pkg, *kind),
			Link:     link,
		})
	}
	return updates, nil
}
