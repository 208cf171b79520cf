package story

import (
	"fmt"
	"strings"

	"github.com/vocaltales/storyteller/pkg/utils"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one role-tagged message of the conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// History is the ordered conversation of a single session. It is only ever
// appended to: a system turn first, then user and assistant turns alternating.
type History []Turn

func NewHistory(initialPrompt string) History {
	return History{{Role: RoleSystem, Content: initialPrompt}}
}

// Append returns a copy of h with t added, so a caller holding the previous
// value never sees a turn it did not commit.
func (h History) Append(t Turn) History {
	out := make(History, len(h), len(h)+1)
	copy(out, h)
	return append(out, t)
}

func (h History) Last() (Turn, bool) {
	if len(h) == 0 {
		return Turn{}, false
	}
	return h[len(h)-1], true
}

func (h History) Roles() []Role {
	roles := make([]Role, len(h))
	for i, t := range h {
		roles[i] = t.Role
	}
	return roles
}

func (h History) ToJson() string {
	return utils.ToJsonStr(h)
}

// String renders the conversation as "role: content" blocks.
func (h History) String() string {
	content := make([]string, 0, len(h))
	for _, t := range h {
		content = append(content, fmt.Sprintf("%s: %s", t.Role, strings.TrimSpace(t.Content)))
	}
	return strings.Join(content, "\n\n")
}
