package memory

// Snapshot is a JSON-ready view of the whole store, used by the status board
// and the journal. It is a copy; mutating it does not touch the store.
type Snapshot struct {
	SelfName    string    `json:"self_name"`
	Role        Role      `json:"role"`
	ClaimedRole Role      `json:"claimed_role"`
	DayCount    int       `json:"day_count"`
	NightCount  int       `json:"night_count"`
	IsNight     bool      `json:"is_night"`
	Players     []Player  `json:"players"`
	Self        SelfState `json:"self"`
}

// Snapshot exports the current state in registration order.
func (s *Store) Snapshot() Snapshot {
	snap := Snapshot{
		SelfName:    s.selfName,
		Role:        s.myRole,
		ClaimedRole: s.claimedRole,
		DayCount:    s.dayCount,
		NightCount:  s.nightCount,
		IsNight:     s.isNight,
		Self:        s.Self(),
	}
	for _, name := range s.order {
		p := *s.players[name]
		p.Claims = append([]Claim(nil), p.Claims...)
		p.VotesCast = append([]string(nil), p.VotesCast...)
		p.VotesReceived = append([]string(nil), p.VotesReceived...)
		snap.Players = append(snap.Players, p)
	}
	return snap
}
