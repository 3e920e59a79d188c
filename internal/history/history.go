// Package history records the exchanges of a chat session.
package history

import "slices"

// Exchange is one user input and the text shown in reply.
type Exchange struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// History is an append-only, oldest-first list of exchanges. The zero value
// is empty and ready to use. Values are safe to copy: Append never writes
// into storage visible through another History.
type History struct {
	entries []Exchange
}

// Append returns a History with e added at the end.
func (h History) Append(e Exchange) History {
	return History{entries: append(slices.Clip(h.entries), e)}
}

// Len returns the number of exchanges.
func (h History) Len() int {
	return len(h.entries)
}

// Entries returns a copy of the exchanges, oldest first.
func (h History) Entries() []Exchange {
	return slices.Clone(h.entries)
}

// Last returns the most recent exchange.
func (h History) Last() (Exchange, bool) {
	if len(h.entries) == 0 {
		return Exchange{}, false
	}
	return h.entries[len(h.entries)-1], true
}
