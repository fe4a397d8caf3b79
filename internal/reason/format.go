package reason

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kingrea/howl/internal/memory"
)

func formatKeyEvents(events []memory.KeyEvent) string {
	if len(events) == 0 {
		return "No key events recorded"
	}
	var lines []string
	for _, event := range events {
		lines = append(lines, fmt.Sprintf("- %s: %s (Players: %s)",
			capitalize(event.Type), event.Detail, strings.Join(event.Players, ", ")))
	}
	return strings.Join(lines, "\n")
}

// formatNotes renders the most recent three observations per player, players
// in sorted order so prompts are stable.
func formatNotes(notes map[string][]memory.Observation) string {
	if len(notes) == 0 {
		return "No behavioral observations recorded"
	}
	var lines []string
	for _, name := range sortedKeys(notes) {
		observations := notes[name]
		if len(observations) == 0 {
			continue
		}
		if len(observations) > 3 {
			observations = observations[len(observations)-3:]
		}
		lines = append(lines, name+":")
		for _, obs := range observations {
			lines = append(lines, "  - "+obs.Note)
		}
	}
	if len(lines) == 0 {
		return "No behavioral observations recorded"
	}
	return strings.Join(lines, "\n")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
