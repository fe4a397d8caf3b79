package memory

import "fmt"

// Role and clock state for the agent itself.

// SetRole records the agent's actual role and notes the assignment in the
// reasoning log. The router assigns it exactly once.
func (s *Store) SetRole(role Role) {
	s.myRole = role
	s.RecordThought(fmt.Sprintf("Assigned role: %s", role))
}

// Role returns the agent's actual role.
func (s *Store) Role() Role { return s.myRole }

// SetClaimedRole records the role the agent has publicly claimed, which may
// differ from the actual one.
func (s *Store) SetClaimedRole(role Role) {
	s.claimedRole = role
	s.RecordThought(fmt.Sprintf("Publicly claimed to be a %s", role))
}

// ClaimedRole returns the publicly claimed role.
func (s *Store) ClaimedRole() Role { return s.claimedRole }

// BeginNight marks nightfall and advances the night counter.
func (s *Store) BeginNight() {
	s.isNight = true
	s.nightCount++
}

// BeginDay marks daybreak and advances the day counter.
func (s *Store) BeginDay() {
	s.isNight = false
	s.dayCount++
}

// Clock reports the day/night counters and whether it is currently night.
func (s *Store) Clock() (day, night int, isNight bool) {
	return s.dayCount, s.nightCount, s.isNight
}

// AddOwnClaim records a statement the agent itself made.
func (s *Store) AddOwnClaim(text, channel string) {
	s.self.Claims = append(s.self.Claims, Claim{Timestamp: s.clock(), Text: text, Channel: channel})
}

// SetTrust records a trust level for another player. Callers are expected to
// pass values in [0,1]; the store does not clamp.
func (s *Store) SetTrust(name string, trust float64) {
	s.self.Alliances[name] = trust
}

// MarkEnemy records a player as hostile with the reason.
func (s *Store) MarkEnemy(name, reason string) {
	s.self.Enemies[name] = reason
	s.RecordThought(fmt.Sprintf("Marked %s as enemy: %s", name, reason))
}

// SetStrategy updates the current strategy label.
func (s *Store) SetStrategy(strategy, reason string) {
	s.self.Strategy = strategy
	s.RecordThought(fmt.Sprintf("Changed strategy to %s: %s", strategy, reason))
}

// SetRevealedRole records that the agent has publicly revealed its role.
func (s *Store) SetRevealedRole(revealed bool) {
	s.self.RevealedRole = revealed
}

// RecordThought appends a timestamped entry to the reasoning log.
func (s *Store) RecordThought(reasoning string) {
	s.self.Thoughts = append(s.self.Thoughts, Thought{Timestamp: s.clock(), Reasoning: reasoning})
}

// RecordKeyEvent appends a timestamped game event.
func (s *Store) RecordKeyEvent(eventType, detail string, players []string) {
	s.self.KeyEvents = append(s.self.KeyEvents, KeyEvent{
		Timestamp: s.clock(),
		Type:      eventType,
		Detail:    detail,
		Players:   players,
	})
}

// AddBehavioralNote appends a timestamped observation about a player.
func (s *Store) AddBehavioralNote(name, note string) {
	s.self.BehavioralNotes[name] = append(s.self.BehavioralNotes[name], Observation{
		Timestamp: s.clock(),
		Note:      note,
	})
}

// RecordVoteJustification remembers why the agent voted the way it did.
func (s *Store) RecordVoteJustification(target, reason string) {
	s.self.VoteJustifications[target] = reason
}

// RecordInvestigation stores a seer investigation result.
func (s *Store) RecordInvestigation(target string, discovered Role) {
	s.self.Investigated[target] = discovered
}

// RecordProtection appends a player to the doctor's protection history.
func (s *Store) RecordProtection(target string) {
	s.self.ProtectedPlayers = append(s.self.ProtectedPlayers, target)
}

// AddPackMember records a known fellow werewolf.
func (s *Store) AddPackMember(name string) {
	s.self.PackMembers = append(s.self.PackMembers, name)
}

// Self returns a copy of the agent's own state. Maps and slices are copied
// shallowly; callers must not mutate the returned collections.
func (s *Store) Self() SelfState {
	out := s.self
	out.Alliances = copyMap(s.self.Alliances)
	out.Enemies = copyMap(s.self.Enemies)
	out.Investigated = copyMap(s.self.Investigated)
	out.VoteJustifications = copyMap(s.self.VoteJustifications)
	notes := make(map[string][]Observation, len(s.self.BehavioralNotes))
	for name, obs := range s.self.BehavioralNotes {
		notes[name] = append([]Observation(nil), obs...)
	}
	out.BehavioralNotes = notes
	out.Claims = append([]Claim(nil), s.self.Claims...)
	out.ProtectedPlayers = append([]string(nil), s.self.ProtectedPlayers...)
	out.PackMembers = append([]string(nil), s.self.PackMembers...)
	out.Thoughts = append([]Thought(nil), s.self.Thoughts...)
	out.KeyEvents = append([]KeyEvent(nil), s.self.KeyEvents...)
	return out
}

// LastKeyEvents returns up to n of the most recent key events, oldest first.
func (s *Store) LastKeyEvents(n int) []KeyEvent {
	events := s.self.KeyEvents
	if n > 0 && len(events) > n {
		events = events[len(events)-n:]
	}
	return append([]KeyEvent(nil), events...)
}

func copyMap[V any](in map[string]V) map[string]V {
	out := make(map[string]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
