package cmd

import (
	"testing"

	"github.com/mai033/ai-chat-tool/internal/session"
)

func newTestForm(t *testing.T) *formApp {
	t.Helper()
	f := &formApp{serverURL: "http://127.0.0.1:5000"}
	f.ctrl = session.New(nil)
	f.build()
	t.Cleanup(f.stopProgressTicker)
	return f
}

func TestRenderDropsStaleSnapshot(t *testing.T) {
	f := newTestForm(t)

	f.render(session.State{Seq: 3, Loading: true, Model: "gpt-4o"})
	if got := f.form.GetButton(0).GetLabel(); got != "Sending..." {
		t.Fatalf("button label = %q, want %q", got, "Sending...")
	}

	f.render(session.State{Seq: 5, Model: "gpt-4o", Response: "done"})
	// A loading snapshot computed before the settle arrives late.
	f.render(session.State{Seq: 4, Loading: true, Model: "gpt-4o"})

	if f.last.Seq != 5 || f.last.Loading {
		t.Errorf("last = seq %d loading %v, want seq 5 not loading", f.last.Seq, f.last.Loading)
	}
	if got := f.form.GetButton(0).GetLabel(); got != "Submit" {
		t.Errorf("button label = %q, want %q", got, "Submit")
	}
}
