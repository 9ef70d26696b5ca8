// Package discovery lists the models installed in the local Ollama
// daemon by shelling out to its CLI, the same source of truth the user
// sees when running `ollama list` by hand.
package discovery

import (
	"os/exec"
	"strings"

	"grimoire/internal/logging"
)

// FallbackModel is returned as the sole entry when listing fails.
const FallbackModel = "mistral:latest"

// runListCommand is replaced in tests.
var runListCommand = func() ([]byte, error) {
	return exec.Command("ollama", "list").Output()
}

// ListModels returns the installed model names in listing order.
// It never fails: any error degrades to a one-element fallback list,
// logged but not surfaced.
func ListModels() []string {
	out, err := runListCommand()
	if err != nil {
		logging.Error("ollama list failed", "error", err)
		return []string{FallbackModel}
	}
	models := ParseListOutput(string(out))
	if len(models) == 0 {
		logging.Error("ollama list produced no models, using fallback")
		return []string{FallbackModel}
	}
	return models
}

// ParseListOutput extracts model names from `ollama list` stdout.
// The format is line-oriented tabular text: an optional header line
// starting with NAME, then one row per model with the name as the
// first whitespace-delimited field, e.g.
//
//	NAME             ID            SIZE    MODIFIED
//	mistral:latest   1a09f42b4a67  4.1 GB  2 days ago
func ParseListOutput(out string) []string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) > 0 && strings.HasPrefix(lines[0], "NAME") {
		lines = lines[1:]
	}

	var models []string
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) > 0 {
			models = append(models, fields[0])
		}
	}
	return models
}

// Contains reports whether name is a member of the discovered set.
func Contains(models []string, name string) bool {
	for _, m := range models {
		if m == name {
			return true
		}
	}
	return false
}
