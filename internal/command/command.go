// Package command turns raw protocol lines into typed commands.
//
// The grammar is line-anchored and case-sensitive, one command per
// line. Parsing is total: every input maps to exactly one command, and
// anything that is not a recognized slash form, including malformed
// slash commands, falls through to Broadcast.
package command

import "regexp"

// Command is one parsed input line.
type Command interface {
	isCommand()
}

// Quit closes the session. Exact match on "/quit".
type Quit struct{}

// SetName claims a user name for the session.
type SetName struct {
	Name string
}

// DirectMessage sends Text to the named user only. Text is the rest of
// the line and may be empty.
type DirectMessage struct {
	To   string
	Text string
}

// Who asks for the online members of the root room. Exact match on
// "/who".
type Who struct{}

// Broadcast sends the whole line to every online member of the root
// room.
type Broadcast struct {
	Text string
}

func (Quit) isCommand()          {}
func (SetName) isCommand()       {}
func (DirectMessage) isCommand() {}
func (Who) isCommand()           {}
func (Broadcast) isCommand()     {}

var (
	nameRE = regexp.MustCompile(`^/name ([A-Za-z0-9_]{1,19})$`)
	msgRE  = regexp.MustCompile(`^/msg ([A-Za-z0-9_]{1,19}) (.*)$`)
)

// Parse classifies a single line. The line must already be stripped of
// its trailing newline and optional carriage return.
func Parse(line string) Command {
	if line == "/quit" {
		return Quit{}
	}
	if m := nameRE.FindStringSubmatch(line); m != nil {
		return SetName{Name: m[1]}
	}
	if m := msgRE.FindStringSubmatch(line); m != nil {
		return DirectMessage{To: m[1], Text: m[2]}
	}
	if line == "/who" {
		return Who{}
	}
	return Broadcast{Text: line}
}
