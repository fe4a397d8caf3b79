// internal/agent/flows.go
//
// Role-specific reasoning flows. Each flow compiles its own view of the
// game, runs the two-stage pipeline, records the resulting action into the
// matching self-state structure, and returns the action text.

package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kingrea/howl/internal/memory"
	"github.com/kingrea/howl/internal/reason"
)

const seerQuestions = `Think through your investigation choice:
1. Who remains uninvestigated among suspicious players?
2. Which player's role would provide the most valuable information?
3. How can you use this information to guide the village?
4. Should you reveal your role based on what you discover?`

const doctorQuestions = `Consider your protection choice:
1. Who faces the highest risk tonight?
2. Have you protected yourself recently?
3. Which players seem most valuable to the village?
4. How can you avoid predictable protection patterns?`

const packQuestions = `Plan your elimination target:
1. Who poses the biggest threat to the werewolves?
2. Which elimination would cause maximum confusion?
3. How can we coordinate with other wolves?
4. Which target would least expose our identities?`

const discussionQuestions = `Consider for your response:
1. What patterns have emerged in recent discussions?
2. Which players' behaviors seem most suspicious?
3. How can you contribute valuable insights?
4. What evidence supports your suspicions?
5. How should you position yourself in the discussion?`

// investigate produces the seer's nightly investigation target.
func (a *Agent) investigate(ctx context.Context) string {
	investigated := a.store.Self().Investigated
	var checks []string
	for _, name := range sortedNames(investigated) {
		checks = append(checks, fmt.Sprintf("Checked %s: %s", name, investigated[name]))
	}
	situation := fmt.Sprintf(`
Previous Investigations:
%s

Current Game State:
%s`, strings.Join(checks, "\n"), a.interwoven(false))

	_, action := a.pipeline.Respond(ctx, reason.Persona(memory.RoleSeer), situation, seerQuestions, "investigation target")
	// The discovered role arrives later from the moderator; record the
	// check as pending.
	a.store.RecordInvestigation(action, memory.RoleUnknown)
	return action
}

// protect produces the doctor's nightly protection target.
func (a *Agent) protect(ctx context.Context) string {
	protected := a.store.Self().ProtectedPlayers
	history := "None"
	if len(protected) > 0 {
		history = strings.Join(protected, ", ")
	}
	situation := fmt.Sprintf(`
Previous Protections:
%s

Current Game State:
%s`, history, a.interwoven(false))

	_, action := a.pipeline.Respond(ctx, reason.Persona(memory.RoleDoctor), situation, doctorQuestions, "protection target")
	a.store.RecordProtection(action)
	return action
}

// chooseEliminationTarget produces the werewolf's kill proposal for the pack
// channel. Pack history is included here and nowhere else.
func (a *Agent) chooseEliminationTarget(ctx context.Context) string {
	pack := a.store.Self().PackMembers
	known := "None"
	if len(pack) > 0 {
		known = strings.Join(pack, ", ")
	}
	situation := fmt.Sprintf(`
Pack Information:
Known werewolves: %s

Current Game State:
%s`, known, a.interwoven(true))

	_, target := a.pipeline.Respond(ctx, reason.Persona(memory.RoleWerewolf), situation, packQuestions, "elimination target")
	a.store.AddPackMember(target)
	return target
}

// respondInCommonRoom produces a discussion contribution or a vote for the
// public channel. The persona follows the agent's actual role.
func (a *Agent) respondInCommonRoom(ctx context.Context, msg Message) string {
	situation := fmt.Sprintf(`
Recent Game History:
%s`, a.interwoven(false))

	monologue, response := a.pipeline.Respond(ctx, reason.Persona(a.store.Role()), situation, discussionQuestions, "discussion contribution or vote")
	if strings.Contains(strings.ToLower(msg.Text), "vote") {
		a.store.RecordVoteJustification(response, monologue)
	}
	return response
}

// sortedNames keeps prompt ordering stable across runs.
func sortedNames(m map[string]memory.Role) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
