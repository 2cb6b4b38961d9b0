// Package status projects audit results into the text and icon a front-end
// renders.
package status

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"audittray/internal/audit"
)

// Icon selects one of the three tray icons.
type Icon int

const (
	IconCheck Icon = iota
	IconAlert
	IconCross
)

var iconNames = [...]string{
	IconCheck: "check",
	IconAlert: "alert",
	IconCross: "cross",
}

func (i Icon) String() string {
	if i < IconCheck || i > IconCross {
		return fmt.Sprintf("Icon(%d)", int(i))
	}
	return iconNames[i]
}

// ParseIcon maps an icon name back to its selector.
func ParseIcon(name string) (Icon, error) {
	for i, candidate := range iconNames {
		if candidate == name {
			return Icon(i), nil
		}
	}
	return IconCheck, fmt.Errorf("invalid icon name: %q", name)
}

// MarshalText renders the icon name.
func (i Icon) MarshalText() ([]byte, error) {
	if i < IconCheck || i > IconCross {
		return nil, fmt.Errorf("invalid icon %d", int(i))
	}
	return []byte(i.String()), nil
}

// UnmarshalText parses an icon name.
func (i *Icon) UnmarshalText(text []byte) error {
	parsed, err := ParseIcon(string(text))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// Project maps a result to its summary text and icon. It is pure.
func Project(result audit.Result) (string, Icon) {
	if result.Failed() {
		return "ERROR: " + result.Err, IconCross
	}
	switch n := len(result.Updates); n {
	case 0:
		return "No missing security updates", IconCheck
	case 1:
		return "1 missing security update", IconAlert
	default:
		return fmt.Sprintf("%d missing security updates", n), IconAlert
	}
}

// Status is what one completed check hands to the front-end.
type Status struct {
	CheckID   string       `json:"check_id"`
	CheckedAt time.Time    `json:"checked_at"`
	Result    audit.Result `json:"result"`
	Text      string       `json:"text"`
	Icon      Icon         `json:"icon"`
}

// New projects result and stamps it with the check metadata.
func New(checkID string, checkedAt time.Time, result audit.Result) Status {
	text, icon := Project(result)
	return Status{
		CheckID:   checkID,
		CheckedAt: checkedAt,
		Result:    result,
		Text:      text,
		Icon:      icon,
	}
}

// SameOutcome reports whether two statuses would render identically,
// ignoring check metadata.
func (s Status) SameOutcome(other Status) bool {
	return s.Text == other.Text && s.Icon == other.Icon && s.Result.Equal(other.Result)
}

// NeedsUpdates reports whether the status counts as missing updates.
func (s Status) NeedsUpdates() bool {
	return s.Result.NeedsUpdates()
}

// DefaultIconTheme is used when the configured theme is not installed.
const DefaultIconTheme = "default"

// DefaultIconRoots are searched in order for icon themes.
var DefaultIconRoots = []string{"./icons", "/usr/share/audittray/icons"}

// ResolveIconDir returns the first directory under roots that holds the theme
// (or the default theme) with a check.svg inside.
func ResolveIconDir(theme string, roots []string) (string, bool) {
	themes := []string{theme}
	if theme != DefaultIconTheme {
		themes = append(themes, DefaultIconTheme)
	}
	for _, root := range roots {
		for _, candidate := range themes {
			if candidate == "" {
				continue
			}
			dir, err := filepath.Abs(filepath.Join(root, candidate))
			if err != nil {
				continue
			}
			if info, err := os.Stat(filepath.Join(dir, IconCheck.String()+".svg")); err == nil && !info.IsDir() {
				return dir, true
			}
		}
	}
	return "", false
}
