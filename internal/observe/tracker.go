package observe

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kingrea/howl/internal/memory"
)

var eliminationPattern = regexp.MustCompile(`(\w+) has been eliminated`)

// Tracker applies moderator announcements to the game clock and player
// statuses. Callers invoke it only for group messages sent by the moderator.
type Tracker struct {
	store *memory.Store
}

// NewTracker builds a tracker writing into the given store.
func NewTracker(store *memory.Store) *Tracker {
	return &Tracker{store: store}
}

// Track evaluates all announcement patterns against one moderator message.
// The checks are independent substring matches, not a state machine: a
// message naming an elimination and a phase change triggers both.
func (t *Tracker) Track(text string) {
	lower := strings.ToLower(text)

	if m := eliminationPattern.FindStringSubmatch(lower); m != nil {
		dead := m[1]
		t.store.MarkDead(dead)
		t.store.RecordKeyEvent("elimination", fmt.Sprintf("%s was eliminated", dead), []string{dead})
	}

	if strings.Contains(lower, "night phase") {
		t.store.BeginNight()
		t.store.RecordKeyEvent("phase_change", "Night phase began", nil)
	}
	if strings.Contains(lower, "day phase") {
		t.store.BeginDay()
		t.store.RecordKeyEvent("phase_change", "Day phase began", nil)
	}
}
