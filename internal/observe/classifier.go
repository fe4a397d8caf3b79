// internal/observe/classifier.go
//
// Pattern matching over public chat. The classifier never errors: a miss is
// "no update", and updates naming unknown players fall through the store's
// silent-ignore semantics. That keeps observation resilient to partial or
// late state, e.g. votes cast before the voter's first tracked message.

package observe

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kingrea/howl/internal/memory"
)

var votePattern = regexp.MustCompile(`vote (?:for )?(\w+)`)

// Classifier updates votes, suspicion scores and behavioral notes from
// free-text group messages.
type Classifier struct {
	store *memory.Store
}

// NewClassifier builds a classifier writing into the given store.
func NewClassifier(store *memory.Store) *Classifier {
	return &Classifier{store: store}
}

// Observe runs every rule against one group message. The rules are
// independent; a single message can trigger all of them.
func (c *Classifier) Observe(sender, text string) {
	lower := strings.ToLower(text)
	c.observeVote(sender, lower)
	c.observeAccusation(sender, lower)
	c.observeDefense(sender, lower)
}

// observeVote records "vote [for] <target>" declarations. The captured token
// is kept as matched, without validating it against known player names.
func (c *Classifier) observeVote(sender, lower string) {
	if !strings.Contains(lower, "vote") {
		return
	}
	m := votePattern.FindStringSubmatch(lower)
	if m == nil {
		return
	}
	target := m[1]
	c.store.RecordVote(sender, target)
	c.store.AddBehavioralNote(sender, fmt.Sprintf("Voted for %s", target))
}

// observeAccusation bumps the score of every living player named in an
// accusatory message. The note lands on the accuser, not the accused.
func (c *Classifier) observeAccusation(sender, lower string) {
	if !strings.Contains(lower, "suspicious") && !strings.Contains(lower, "wolf") {
		return
	}
	for _, player := range c.store.AliveOrdered() {
		if !strings.Contains(lower, strings.ToLower(player)) {
			continue
		}
		c.store.AdjustSuspicion(player, 0.2)
		c.store.AddBehavioralNote(sender, fmt.Sprintf("Accused %s of suspicious behavior", player))
	}
}

// observeDefense notes players talking about themselves defensively.
func (c *Classifier) observeDefense(sender, lower string) {
	if !strings.Contains(lower, strings.ToLower(sender)) {
		return
	}
	if !strings.Contains(lower, "not") && !strings.Contains(lower, "innocent") {
		return
	}
	c.store.AddBehavioralNote(sender, "Defensive behavior in response to accusations")
	c.store.AdjustSuspicion(sender, 0.1)
}
