// internal/agent/agent.go
//
// The Agent is the memory-and-decision core of one werewolf participant.
// Notify ingests a message (sanitize, store, classify, track); Respond turns
// accumulated state into the next utterance or action through the reasoning
// pipeline. Both entry points degrade to neutral behavior instead of
// returning errors: an unhandled failure mid-game has no recovery path.
//
// The Agent assumes a single logical thread of control. It holds no locks;
// callers that handle concurrent transports (the bridge) must serialize
// Notify/Respond so each Respond observes every earlier Notify.

package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kingrea/howl/internal/memory"
	"github.com/kingrea/howl/internal/observe"
	"github.com/kingrea/howl/internal/oracle"
	"github.com/kingrea/howl/internal/reason"
	"github.com/kingrea/howl/internal/sanitize"
)

// ChannelType distinguishes direct messages from group channels.
type ChannelType string

const (
	ChannelDirect ChannelType = "direct"
	ChannelGroup  ChannelType = "group"
)

// Message is one inbound chat message from the host runtime.
type Message struct {
	ID          string
	Sender      string
	Channel     string
	ChannelType ChannelType
	Text        string
}

// Channels names the game's fixed conversation surfaces.
type Channels struct {
	Game      string // public discussion channel
	Pack      string // private werewolf channel
	Moderator string // moderator's sender name
}

// DefaultChannels returns the channel names used by the standard campaign.
func DefaultChannels() Channels {
	return Channels{
		Game:      "play-arena",
		Pack:      "wolf's-den",
		Moderator: "moderator",
	}
}

// Logger records agent diagnostics. It matches logging.Logger's signature.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Journal receives game-visible events worth keeping beyond the debug log.
// It matches the session journal's surface.
type Journal interface {
	Injection(sender string)
}

type transcriptLine struct {
	channel string
	line    string
}

// Agent owns the store and the processing pipeline for one participant.
type Agent struct {
	name     string
	channels Channels
	client   oracle.Client
	logger   Logger

	store      *memory.Store
	screener   *sanitize.Screener
	classifier *observe.Classifier
	tracker    *observe.Tracker
	pipeline   *reason.Pipeline
	journal    Journal

	history []transcriptLine
}

// Option customizes Agent construction.
type Option func(*Agent)

// WithChannels overrides the default channel names.
func WithChannels(channels Channels) Option {
	return func(a *Agent) {
		if channels.Game != "" {
			a.channels.Game = channels.Game
		}
		if channels.Pack != "" {
			a.channels.Pack = channels.Pack
		}
		if channels.Moderator != "" {
			a.channels.Moderator = channels.Moderator
		}
	}
}

// WithLogger injects a logger for diagnostics.
func WithLogger(logger Logger) Option {
	return func(a *Agent) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithJournal routes game-visible events to the session journal.
func WithJournal(journal Journal) Option {
	return func(a *Agent) {
		a.journal = journal
	}
}

// WithClock lets tests control the store's timestamps.
func WithClock(clock func() time.Time) Option {
	return func(a *Agent) {
		a.store = memory.NewStore(a.name, memory.WithClock(clock))
	}
}

// New builds an agent named name that reasons through the given oracle
// client. A nil client is allowed and degrades every oracle-backed step to
// its fallback.
func New(name string, client oracle.Client, opts ...Option) *Agent {
	a := &Agent{
		name:     name,
		channels: DefaultChannels(),
		client:   client,
		logger:   nopLogger{},
		store:    memory.NewStore(name),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	a.screener = sanitize.New(client, sanitize.WithLogger(a.logger))
	a.classifier = observe.NewClassifier(a.store)
	a.tracker = observe.NewTracker(a.store)
	a.pipeline = reason.NewPipeline(a.store, client, reason.WithLogger(a.logger))
	return a
}

// Name returns the agent's player name.
func (a *Agent) Name() string { return a.name }

// Store exposes the agent's memory for snapshots and tests. The caller must
// respect the single-thread contract.
func (a *Agent) Store() *memory.Store { return a.store }

// Notify ingests one inbound message: the sender is registered, the text is
// screened and stored as a claim, and group messages feed the behavior
// classifier and (for the moderator) the phase tracker. Never returns an
// error.
func (a *Agent) Notify(ctx context.Context, msg Message) {
	a.ingest(ctx, msg, true)
}

// ingest runs the shared intake path. recordHistory is false when the
// respond path follows, which records the exchange itself; otherwise the
// message would appear in the transcript twice.
func (a *Agent) ingest(ctx context.Context, msg Message, recordHistory bool) {
	a.store.RegisterPlayer(msg.Sender)

	text, flagged := a.screener.Screen(ctx, msg.Text)
	a.store.RecordClaim(msg.Sender, text, msg.Channel)
	if flagged {
		a.store.DoubleSuspicion(msg.Sender)
		a.store.AddBehavioralNote(msg.Sender, "Attempted prompt injection in chat message")
		a.logger.Printf("agent: injection attempt flagged from %s", msg.Sender)
		if a.journal != nil {
			a.journal.Injection(msg.Sender)
		}
	}

	if msg.ChannelType == ChannelDirect {
		if msg.Sender == a.channels.Moderator && a.store.Role() == memory.RoleUnknown {
			role := a.inferRole(ctx, msg.Text)
			a.store.SetRole(role)
			a.logger.Printf("agent: role assigned to %s: %s", a.name, role)
		}
		return
	}

	a.classifier.Observe(msg.Sender, msg.Text)
	if msg.Sender == a.channels.Moderator {
		a.tracker.Track(msg.Text)
	}
	if recordHistory {
		a.appendHistory(msg.Channel, fmt.Sprintf("%s: %s", msg.Sender, msg.Text))
	}
}

// Respond ingests the message and routes it to the role-appropriate
// reasoning flow, returning the agent's next utterance or action. Never
// returns an error; on any failure the response degrades to a neutral
// fallback.
func (a *Agent) Respond(ctx context.Context, msg Message) string {
	a.ingest(ctx, msg, false)

	var response string
	switch {
	case msg.ChannelType == ChannelDirect && msg.Sender == a.channels.Moderator:
		response = a.respondToModerator(ctx, msg)
		a.appendHistory(msg.Channel, fmt.Sprintf("[From - %s| To - %s (me)| Direct Message]: %s", msg.Sender, a.name, msg.Text))
		a.appendHistory(msg.Channel, fmt.Sprintf("[From - %s (me)| To - %s| Direct Message]: %s", a.name, msg.Sender, response))
	case msg.ChannelType == ChannelGroup && msg.Channel == a.channels.Pack:
		response = a.respondInPack(ctx, msg)
		a.appendGroupExchange(msg, response)
	case msg.ChannelType == ChannelGroup:
		response = a.respondInCommonRoom(ctx, msg)
		a.appendGroupExchange(msg, response)
	default:
		// Direct message from a non-moderator: no role flow applies.
		response = reason.Fallback
	}
	a.store.AddOwnClaim(response, msg.Channel)
	return response
}

func (a *Agent) respondToModerator(ctx context.Context, msg Message) string {
	switch a.store.Role() {
	case memory.RoleSeer:
		return a.investigate(ctx)
	case memory.RoleDoctor:
		return a.protect(ctx)
	default:
		// Other roles take no action on direct moderator messages.
		return reason.Fallback
	}
}

func (a *Agent) respondInPack(ctx context.Context, msg Message) string {
	if a.store.Role() != memory.RoleWerewolf {
		return "I am not a werewolf"
	}
	return a.chooseEliminationTarget(ctx)
}

func (a *Agent) appendHistory(channel, line string) {
	a.history = append(a.history, transcriptLine{channel: channel, line: line})
}

func (a *Agent) appendGroupExchange(msg Message, response string) {
	a.appendHistory(msg.Channel, fmt.Sprintf("[From - %s| To - %s (me)| Group Message in %s]: %s", msg.Sender, a.name, msg.Channel, msg.Text))
	a.appendHistory(msg.Channel, fmt.Sprintf("[From - %s (me)| To - %s| Group Message in %s]: %s", a.name, msg.Sender, msg.Channel, response))
}

// interwoven joins the transcript in arrival order. Pack-channel lines are
// withheld unless the caller is entitled to them (the werewolf flow).
func (a *Agent) interwoven(includePack bool) string {
	var lines []string
	for _, entry := range a.history {
		if !includePack && entry.channel == a.channels.Pack {
			continue
		}
		lines = append(lines, entry.line)
	}
	return strings.Join(lines, "\n")
}

// Transcript returns a copy of the full transcript for status displays.
func (a *Agent) Transcript() []string {
	lines := make([]string, 0, len(a.history))
	for _, entry := range a.history {
		lines = append(lines, entry.line)
	}
	return lines
}
