package parse

import "strings"

// HelpMessage is thrown (or saved, per Help.SaveMessage) when a help
// option's niladic handler runs. It implements error so it travels through
// the same channel as a parse failure; callers distinguish it with
// errors.As.
type HelpMessage struct {
	Text string
}

func (m *HelpMessage) Error() string { return m.Text }

// VersionMessage is thrown (or saved) when a version option resolves.
type VersionMessage struct {
	Version string
}

func (m *VersionMessage) Error() string { return m.Version }

// CompletionMessage is thrown when the parser reaches the completion
// index. Words is the ordered candidate list; an empty Words is legal and
// means "no completion."
type CompletionMessage struct {
	Words []string
}

func (m *CompletionMessage) Error() string { return strings.Join(m.Words, "\n") }
