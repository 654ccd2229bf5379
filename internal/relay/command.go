// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Courier Contributors

package relay

import "strings"

// CommandKind identifies one of the recognized bot commands.
type CommandKind int

const (
	KindHelp CommandKind = iota
	KindPrompt
	KindChat
	KindView
	KindClear
)

// Command is a parsed user command. Arg carries the trailing argument text
// for prompt and chat; it is empty for the argument-less commands.
type Command struct {
	Kind CommandKind
	Arg  string
}

// HelpText lists the supported commands.
const HelpText = `These commands are supported:
/help - display this text.
/prompt <text> - set the system prompt.
/chat <text> - chat with the model.
/view - view the chat history.
/clear - clear the chat history.`

// ParseCommand parses a slash command from a raw message body. Telegram
// clients append "@botname" to commands in group chats; a suffix matching
// botName (case-insensitive) is stripped before matching. The second return
// is false when the text is not a recognized command.
func ParseCommand(text, botName string) (Command, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return Command{}, false
	}

	name, arg, _ := strings.Cut(text[1:], " ")
	arg = strings.TrimSpace(arg)

	if at := strings.Index(name, "@"); at >= 0 {
		if botName == "" || !strings.EqualFold(name[at+1:], botName) {
			return Command{}, false
		}
		name = name[:at]
	}

	switch strings.ToLower(name) {
	case "help":
		return Command{Kind: KindHelp}, true
	case "prompt":
		return Command{Kind: KindPrompt, Arg: arg}, true
	case "chat":
		return Command{Kind: KindChat, Arg: arg}, true
	case "view":
		return Command{Kind: KindView}, true
	case "clear":
		return Command{Kind: KindClear}, true
	}

	return Command{}, false
}
