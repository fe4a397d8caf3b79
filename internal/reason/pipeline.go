// internal/reason/pipeline.go
//
// Two-stage "reason, then extract" generation. The first oracle call
// produces a free-form inner monologue over the compiled situation; the
// second reduces the monologue to a bare action. Neither stage ever
// propagates an error: a failed call yields the fixed neutral fallback and
// the pipeline carries on, because a bland action beats no action mid-game.

package reason

import (
	"context"
	"fmt"
	"strings"

	"github.com/kingrea/howl/internal/memory"
	"github.com/kingrea/howl/internal/oracle"
)

// Fallback is returned in place of either stage's output when the oracle
// call fails.
const Fallback = "I need more time to think about this."

const (
	completionTemperature = 0.7
	completionMaxTokens   = 500
)

// Logger records pipeline diagnostics. It matches logging.Logger's signature.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Pipeline drives the two-stage generation against the oracle, reading and
// writing the agent's memory.
type Pipeline struct {
	store  *memory.Store
	client oracle.Client
	logger Logger
}

// Option customizes Pipeline construction.
type Option func(*Pipeline)

// WithLogger injects a logger for swallowed oracle failures.
func WithLogger(logger Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPipeline builds a pipeline over the given store and oracle client.
func NewPipeline(store *memory.Store, client oracle.Client, opts ...Option) *Pipeline {
	p := &Pipeline{store: store, client: client, logger: nopLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Respond runs both stages. persona is the role prompt, situation the
// role-specific description of the immediate game state, guidance the
// role-specific questions, and actionType names what the extraction stage
// must produce ("investigation target", "discussion contribution or vote",
// ...). It returns the inner monologue and the trimmed final action; both
// are stored as timestamped reasoning entries.
func (p *Pipeline) Respond(ctx context.Context, persona, situation, guidance, actionType string) (monologue, action string) {
	block := p.compile(persona, situation, guidance)

	monologue = p.complete(ctx, block)
	p.store.RecordThought(monologue)

	extraction := fmt.Sprintf(`
Based on this analysis:
%s

And considering:
%s

Provide only your final %s in a clear, concise format.
Do not include explanations or additional text.`, monologue, block, actionType)

	action = strings.TrimSpace(p.complete(ctx, extraction))
	p.store.RecordThought(fmt.Sprintf("Final %s: %s", actionType, action))
	return monologue, action
}

// complete performs one oracle call, substituting the fallback on failure.
func (p *Pipeline) complete(ctx context.Context, prompt string) string {
	if p.client == nil {
		return Fallback
	}
	response, err := p.client.Complete(ctx, oracle.Request{
		Messages:    []oracle.Message{{Role: "user", Content: prompt}},
		Temperature: completionTemperature,
		MaxTokens:   completionMaxTokens,
	})
	if err != nil {
		p.logger.Printf("reason: oracle call failed, using fallback: %v", err)
		return Fallback
	}
	return response
}

// compile assembles the single situational block fed to the monologue stage:
// persona, clock, alive and most-suspicious players, alliance and enmity
// maps, the last three key events, recent behavioral notes, then the
// role-specific situation and guiding questions.
func (p *Pipeline) compile(persona, situation, guidance string) string {
	day, night, _ := p.store.Clock()
	self := p.store.Self()

	var alliances []string
	for _, name := range sortedKeys(self.Alliances) {
		alliances = append(alliances, fmt.Sprintf("%s(trust:%.1f)", name, self.Alliances[name]))
	}
	var enemies []string
	for _, name := range sortedKeys(self.Enemies) {
		enemies = append(enemies, fmt.Sprintf("%s(%s)", name, self.Enemies[name]))
	}

	return fmt.Sprintf(`
%s

Current Game State:
- Day: %d, Night: %d
- Alive Players: %s
- Most Suspicious Players: %s
- My Alliances: %s
- My Enemies: %s

Recent Events:
%s

Behavioral Observations:
%s

Game Situation:
%s

Consider carefully:
%s`,
		persona,
		day, night,
		strings.Join(p.store.AliveOrdered(), ", "),
		strings.Join(p.store.TopSuspicious(3), ", "),
		strings.Join(alliances, ", "),
		strings.Join(enemies, ", "),
		formatKeyEvents(p.store.LastKeyEvents(3)),
		formatNotes(self.BehavioralNotes),
		situation,
		guidance,
	)
}
