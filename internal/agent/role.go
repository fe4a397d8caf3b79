package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/kingrea/howl/internal/memory"
	"github.com/kingrea/howl/internal/oracle"
)

// inferRole classifies the moderator's role-assignment message through the
// oracle. Any failure or ambiguous answer defaults to villager; the caller
// makes the assignment exactly once, so a wrong default is permanent by
// design rather than retried.
func (a *Agent) inferRole(ctx context.Context, text string) memory.Role {
	if a.client == nil {
		return memory.RoleVillager
	}
	answer, err := a.client.Complete(ctx, oracle.Request{
		Messages: []oracle.Message{
			{
				Role:    "system",
				Content: fmt.Sprintf("The user is playing a game of werewolf as user %s, help the user with question with less than a line answer", a.name),
			},
			{
				Role:    "user",
				Content: fmt.Sprintf("You have got message from moderator here about my role in the werewolf game, here is the message -> '%s', what is your role? possible roles are 'werewolf','villager','doctor' and 'seer'. answer in a few words.", text),
			},
		},
	})
	if err != nil {
		a.logger.Printf("agent: role inference failed, defaulting to villager: %v", err)
		return memory.RoleVillager
	}
	return parseRoleGuess(answer)
}

func parseRoleGuess(answer string) memory.Role {
	lower := strings.ToLower(answer)
	switch {
	case strings.Contains(lower, "villager"):
		return memory.RoleVillager
	case strings.Contains(lower, "seer"):
		return memory.RoleSeer
	case strings.Contains(lower, "doctor"):
		return memory.RoleDoctor
	case strings.Contains(lower, "wolf"):
		return memory.RoleWerewolf
	default:
		return memory.RoleVillager
	}
}
