// internal/memory/memory.go
//
// This package is the agent's game memory: one Store per agent instance,
// holding everything the agent knows about the other players and about
// itself. The Store is exclusively owned by the single message-handling
// path and performs no locking of its own; callers that share it across
// goroutines must serialize access (the bridge does this with a mutex).

package memory

import (
	"sort"
	"time"
)

// Role identifies a werewolf game role.
type Role string

const (
	RoleUnknown  Role = "unknown"
	RoleVillager Role = "villager"
	RoleWerewolf Role = "werewolf"
	RoleSeer     Role = "seer"
	RoleDoctor   Role = "doctor"
)

// Status marks whether a player is still in the game.
type Status string

const (
	StatusAlive Status = "alive"
	StatusDead  Status = "dead"
)

// Claim is a timestamped utterance attributed to a player, stored verbatim
// (post-sanitization) together with its source channel.
type Claim struct {
	Timestamp time.Time `json:"timestamp"`
	Text      string    `json:"text"`
	Channel   string    `json:"channel"`
}

// Player tracks everything observed about one other participant. Players are
// created on first observed message and never deleted; dead players remain
// queryable.
type Player struct {
	Name          string   `json:"name"`
	SuspectedRole Role     `json:"suspected_role"`
	Status        Status   `json:"status"`
	Claims        []Claim  `json:"claims"`
	VotesCast     []string `json:"votes_cast"`
	VotesReceived []string `json:"votes_received"`
	// SuspicionScore is an unbounded heuristic accumulator; higher means
	// more suspicious.
	SuspicionScore     float64 `json:"suspicion_score"`
	ProtectedByDoctor  bool    `json:"protected_by_doctor"`
	InvestigatedBySeer bool    `json:"investigated_by_seer"`
}

// KeyEvent records an important game event worth recalling in prompts.
type KeyEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
	Detail    string    `json:"detail"`
	Players   []string  `json:"players"`
}

// Thought is one entry in the agent's reasoning log.
type Thought struct {
	Timestamp time.Time `json:"timestamp"`
	Reasoning string    `json:"reasoning"`
}

// Observation is a timestamped behavioral note about a player.
type Observation struct {
	Timestamp time.Time `json:"timestamp"`
	Note      string    `json:"note"`
}

// SelfState holds the agent's own claims, relationships, role knowledge and
// reasoning history.
type SelfState struct {
	Claims             []Claim                  `json:"claims"`
	Alliances          map[string]float64       `json:"alliances"`
	Enemies            map[string]string        `json:"enemies"`
	Strategy           string                   `json:"strategy"`
	RevealedRole       bool                     `json:"revealed_role"`
	ProtectedPlayers   []string                 `json:"protected_players"`
	Investigated       map[string]Role          `json:"investigated"`
	PackMembers        []string                 `json:"pack_members"`
	Thoughts           []Thought                `json:"thoughts"`
	KeyEvents          []KeyEvent               `json:"key_events"`
	VoteJustifications map[string]string        `json:"vote_justifications"`
	BehavioralNotes    map[string][]Observation `json:"behavioral_notes"`
}

// Store is the entity store for one agent instance.
type Store struct {
	selfName string
	players  map[string]*Player
	order    []string // registration order, drives AliveOrdered and tie-breaks
	self     SelfState

	dayCount    int
	nightCount  int
	isNight     bool
	myRole      Role
	claimedRole Role

	clock func() time.Time
}

// StoreOption customizes Store construction.
type StoreOption func(*Store)

// WithClock lets tests control timestamps.
func WithClock(clock func() time.Time) StoreOption {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewStore creates an empty store for the named agent.
func NewStore(selfName string, opts ...StoreOption) *Store {
	s := &Store{
		selfName:    selfName,
		players:     map[string]*Player{},
		myRole:      RoleUnknown,
		claimedRole: RoleUnknown,
		self: SelfState{
			Alliances:          map[string]float64{},
			Enemies:            map[string]string{},
			Strategy:           "observe",
			Investigated:       map[string]Role{},
			VoteJustifications: map[string]string{},
			BehavioralNotes:    map[string][]Observation{},
		},
		clock: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// SelfName returns the agent's own name.
func (s *Store) SelfName() string { return s.selfName }

// RegisterPlayer starts tracking a participant. Registering the agent's own
// name or an already-known player is a no-op; the self entity lives in
// SelfState, never in the player map.
func (s *Store) RegisterPlayer(name string) {
	if name == s.selfName {
		return
	}
	if _, ok := s.players[name]; ok {
		return
	}
	s.players[name] = &Player{
		Name:          name,
		SuspectedRole: RoleUnknown,
		Status:        StatusAlive,
	}
	s.order = append(s.order, name)
}

// RecordClaim appends a claim to the named player. Claims are append-only;
// unknown players are silently ignored.
func (s *Store) RecordClaim(name, text, channel string) {
	p, ok := s.players[name]
	if !ok {
		return
	}
	p.Claims = append(p.Claims, Claim{Timestamp: s.clock(), Text: text, Channel: channel})
}

// RecordVote appends to the voter's cast list and the target's received list
// independently. The two halves are not transactional: whichever side is
// unknown is skipped without affecting the other.
func (s *Store) RecordVote(voter, target string) {
	if p, ok := s.players[voter]; ok {
		p.VotesCast = append(p.VotesCast, target)
	}
	if p, ok := s.players[target]; ok {
		p.VotesReceived = append(p.VotesReceived, voter)
	}
}

// MarkDead flips a player's status to dead.
func (s *Store) MarkDead(name string) {
	if p, ok := s.players[name]; ok {
		p.Status = StatusDead
	}
}

// AdjustSuspicion adds delta to a player's suspicion score.
func (s *Store) AdjustSuspicion(name string, delta float64) {
	if p, ok := s.players[name]; ok {
		p.SuspicionScore += delta
	}
}

// DoubleSuspicion doubles a player's suspicion score. This is the only
// multiplicative score update; a score of zero stays zero.
func (s *Store) DoubleSuspicion(name string) {
	if p, ok := s.players[name]; ok {
		p.SuspicionScore *= 2.0
	}
}

// SetSuspectedRole records what role the agent believes a player holds.
func (s *Store) SetSuspectedRole(name string, role Role) {
	if p, ok := s.players[name]; ok {
		p.SuspectedRole = role
	}
}

// Player returns a copy of the named player's state.
func (s *Store) Player(name string) (Player, bool) {
	p, ok := s.players[name]
	if !ok {
		return Player{}, false
	}
	return *p, true
}

// AliveOrdered returns the names of living players in registration order.
func (s *Store) AliveOrdered() []string {
	var alive []string
	for _, name := range s.order {
		if s.players[name].Status == StatusAlive {
			alive = append(alive, name)
		}
	}
	return alive
}

// TopSuspicious returns up to n living players ranked by suspicion score,
// highest first, ties broken by registration order. n <= 0 means 3.
func (s *Store) TopSuspicious(n int) []string {
	if n <= 0 {
		n = 3
	}
	alive := s.AliveOrdered()
	sort.SliceStable(alive, func(i, j int) bool {
		return s.players[alive[i]].SuspicionScore > s.players[alive[j]].SuspicionScore
	})
	if len(alive) > n {
		alive = alive[:n]
	}
	return alive
}

// PlayerClaims returns all claims recorded for a player.
func (s *Store) PlayerClaims(name string) []Claim {
	if p, ok := s.players[name]; ok {
		return append([]Claim(nil), p.Claims...)
	}
	return nil
}
