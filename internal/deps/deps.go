// Package deps reports whether the external programs and paths audittray
// relies on are present.
package deps

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"audittray/internal/config"
)

// Requirement defines an external dependency audittray relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Path        string `json:"path,omitempty"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// Requirements lists the binaries the configuration depends on.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "arch-audit",
			Command:     cfg.Audit.Binary,
			Description: "Reports packages affected by security advisories",
		},
		{
			Name:        "pacman",
			Command:     "pacman",
			Description: "Runs the hook that signals package upgrades",
			Optional:    true,
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Path = resolved
		status.Available = true
		results = append(results, status)
	}
	return results
}

// CheckDirectory reports whether path exists and is a directory.
func CheckDirectory(name, path, description string, optional bool) Status {
	status := Status{
		Name:        name,
		Path:        path,
		Description: description,
		Optional:    optional,
	}
	info, err := os.Stat(path)
	switch {
	case err != nil:
		status.Detail = fmt.Sprintf("directory %q not available: %v", path, err)
	case !info.IsDir():
		status.Detail = fmt.Sprintf("%q is not a directory", path)
	default:
		status.Available = true
	}
	return status
}

// Check evaluates everything the configuration needs.
func Check(cfg *config.Config) []Status {
	results := CheckBinaries(Requirements(cfg))
	return append(results, CheckDirectory(
		"signal directory",
		cfg.Signal.Dir,
		"Watched for package-manager signals",
		true,
	))
}

// MissingRequired reports the names of unavailable required dependencies.
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status.Name)
		}
	}
	return missing
}
