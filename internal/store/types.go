// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Courier Contributors

package store

// Role identifies the sender of a turn in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one exchange unit in a conversation. Turns are immutable once
// created; the store never mutates a turn after it has been appended.
type Turn struct {
	Role Role
	Text string
}

// SystemTurn builds a system turn.
func SystemTurn(text string) Turn {
	return Turn{Role: RoleSystem, Text: text}
}

// UserTurn builds a user turn.
func UserTurn(text string) Turn {
	return Turn{Role: RoleUser, Text: text}
}

// AssistantTurn builds an assistant turn.
func AssistantTurn(text string) Turn {
	return Turn{Role: RoleAssistant, Text: text}
}
