package memory

import (
	"testing"
	"time"
)

func newTestStore() *Store {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return NewStore("me", WithClock(func() time.Time { return now }))
}

func TestNewStoreStartsWithUnknownRoles(t *testing.T) {
	s := newTestStore()
	if got := s.Role(); got != RoleUnknown {
		t.Fatalf("fresh store role = %q, want %q", got, RoleUnknown)
	}
	if got := s.ClaimedRole(); got != RoleUnknown {
		t.Fatalf("fresh store claimed role = %q, want %q", got, RoleUnknown)
	}
}

func TestRegisterPlayerSkipsSelfAndDuplicates(t *testing.T) {
	s := newTestStore()
	s.RegisterPlayer("me")
	if _, ok := s.Player("me"); ok {
		t.Fatalf("self must never appear in the player map")
	}
	s.RegisterPlayer("alpha")
	s.AdjustSuspicion("alpha", 1.5)
	s.RegisterPlayer("alpha")
	p, ok := s.Player("alpha")
	if !ok {
		t.Fatalf("alpha not registered")
	}
	if p.SuspicionScore != 1.5 {
		t.Fatalf("re-registration reset state: score = %v", p.SuspicionScore)
	}
}

func TestRecordVoteHalvesAreIndependent(t *testing.T) {
	s := newTestStore()
	s.RegisterPlayer("voter")

	s.RecordVote("voter", "ghost")
	voter, _ := s.Player("voter")
	if got := len(voter.VotesCast); got != 1 {
		t.Fatalf("cast list length = %d, want 1", got)
	}

	s.RecordVote("ghost", "voter")
	voter, _ = s.Player("voter")
	if got := len(voter.VotesReceived); got != 1 {
		t.Fatalf("received list length = %d, want 1", got)
	}
	if _, ok := s.Player("ghost"); ok {
		t.Fatalf("unknown voter must not be created implicitly")
	}
}

func TestRecordClaimIgnoresUnknownPlayer(t *testing.T) {
	s := newTestStore()
	s.RecordClaim("nobody", "hello", "play-arena")
	if _, ok := s.Player("nobody"); ok {
		t.Fatalf("claim for unknown player must be dropped silently")
	}
}

func TestAliveOrderedPreservesRegistrationOrder(t *testing.T) {
	s := newTestStore()
	for _, name := range []string{"c", "a", "b"} {
		s.RegisterPlayer(name)
	}
	s.MarkDead("a")
	got := s.AliveOrdered()
	want := []string{"c", "b"}
	if len(got) != len(want) {
		t.Fatalf("AliveOrdered = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("AliveOrdered = %v, want %v", got, want)
		}
	}
}

func TestTopSuspiciousExcludesDeadAndBreaksTiesByOrder(t *testing.T) {
	s := newTestStore()
	for _, name := range []string{"p1", "p2", "p3", "p4"} {
		s.RegisterPlayer(name)
	}
	s.AdjustSuspicion("p2", 0.4)
	s.AdjustSuspicion("p3", 0.9)
	s.AdjustSuspicion("p4", 0.9)
	s.MarkDead("p3")

	got := s.TopSuspicious(3)
	want := []string{"p4", "p2", "p1"}
	if len(got) != len(want) {
		t.Fatalf("TopSuspicious = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("TopSuspicious = %v, want %v", got, want)
		}
	}

	// Default count is 3.
	if got := s.TopSuspicious(0); len(got) != 3 {
		t.Fatalf("TopSuspicious(0) returned %d names, want 3", len(got))
	}
}

func TestDoubleSuspicion(t *testing.T) {
	s := newTestStore()
	s.RegisterPlayer("zero")
	s.RegisterPlayer("half")
	s.AdjustSuspicion("half", 0.5)

	s.DoubleSuspicion("zero")
	s.DoubleSuspicion("half")

	if p, _ := s.Player("zero"); p.SuspicionScore != 0 {
		t.Fatalf("doubling a zero score must stay zero, got %v", p.SuspicionScore)
	}
	if p, _ := s.Player("half"); p.SuspicionScore != 1.0 {
		t.Fatalf("0.5 doubled = %v, want 1.0", p.SuspicionScore)
	}
}

func TestClockTransitions(t *testing.T) {
	s := newTestStore()
	s.BeginNight()
	s.BeginDay()
	s.BeginNight()
	day, night, isNight := s.Clock()
	if day != 1 || night != 2 || !isNight {
		t.Fatalf("clock = (%d, %d, %v), want (1, 2, true)", day, night, isNight)
	}
}

func TestSelfStateAccumulation(t *testing.T) {
	s := newTestStore()
	s.SetTrust("ally", 0.8)
	s.MarkEnemy("rival", "voted against me twice")
	s.AddBehavioralNote("rival", "aggressive in discussion")
	s.RecordKeyEvent("elimination", "p2 was eliminated", []string{"p2"})
	s.RecordInvestigation("rival", RoleWerewolf)
	s.RecordProtection("ally")
	s.AddPackMember("packmate")

	self := s.Self()
	if self.Alliances["ally"] != 0.8 {
		t.Fatalf("trust not recorded: %v", self.Alliances)
	}
	if self.Enemies["rival"] == "" {
		t.Fatalf("enemy reason not recorded")
	}
	if len(self.BehavioralNotes["rival"]) != 1 {
		t.Fatalf("behavioral note not recorded")
	}
	if self.Investigated["rival"] != RoleWerewolf {
		t.Fatalf("investigation not recorded")
	}
	if len(self.ProtectedPlayers) != 1 || len(self.PackMembers) != 1 {
		t.Fatalf("role action history not recorded")
	}

	// MarkEnemy and role assignment both leave reasoning entries.
	s.SetRole(RoleSeer)
	events := s.LastKeyEvents(3)
	if len(events) != 1 || events[0].Type != "elimination" {
		t.Fatalf("LastKeyEvents = %+v", events)
	}
	if s.Role() != RoleSeer {
		t.Fatalf("role = %s, want seer", s.Role())
	}
}

func TestSelfReturnsCopies(t *testing.T) {
	s := newTestStore()
	s.SetTrust("ally", 0.5)
	self := s.Self()
	self.Alliances["ally"] = 0.0
	if got := s.Self().Alliances["ally"]; got != 0.5 {
		t.Fatalf("Self must return a copy, store saw %v", got)
	}
}
