package session

import (
	"errors"
	"slices"

	"github.com/mai033/ai-chat-tool/internal/catalog"
	"github.com/mai033/ai-chat-tool/internal/history"
	"github.com/mai033/ai-chat-tool/pkg/api"
)

var (
	// ErrNoModelSelected blocks a submission made before a model was picked.
	ErrNoModelSelected = errors.New("please select a model")
	// ErrEmptyInput blocks a submission without user input.
	ErrEmptyInput = errors.New("user input is required")
	// ErrInFlight blocks a submission while another is outstanding.
	ErrInFlight = errors.New("a request is already in progress")
)

// Phase is the position of a submission in its lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRequesting
	PhaseSettling
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRequesting:
		return "requesting"
	case PhaseSettling:
		return "settling"
	default:
		return "unknown"
	}
}

// State is everything the form shows. Transition methods return a new
// State and never modify the receiver, so a State handed to a renderer stays
// valid while the session moves on.
type State struct {
	Models       []catalog.Option
	Model        string
	SystemPrompt string
	UserInput    string
	Response     string
	Loading      bool
	Phase        Phase
	History      history.History

	// Seq increases with every change committed by a Controller.
	Seq uint64

	// pending is the input of the outstanding request; the text field may
	// change while the request is in flight.
	pending string
}

// NewerThan reports whether s was committed after o.
func (s State) NewerThan(o State) bool {
	return s.Seq > o.Seq
}

// CatalogLoaded replaces the selectable models wholesale.
func (s State) CatalogLoaded(opts []catalog.Option) State {
	s.Models = slices.Clone(opts)
	return s
}

// Validate checks the preconditions of a submission.
func (s State) Validate() error {
	if s.Loading {
		return ErrInFlight
	}
	if s.Model == "" {
		return ErrNoModelSelected
	}
	if s.UserInput == "" {
		return ErrEmptyInput
	}
	return nil
}

// SubmitRequested moves an idle state to Requesting and returns the request
// to send. If validation fails the receiver is returned unchanged along with
// the error.
func (s State) SubmitRequested() (State, *api.ChatRequest, error) {
	if err := s.Validate(); err != nil {
		return s, nil, err
	}
	s.Phase = PhaseRequesting
	s.Loading = true
	s.Response = ""
	s.pending = s.UserInput
	return s, &api.ChatRequest{
		Model:        s.Model,
		SystemPrompt: s.SystemPrompt,
		UserInput:    s.UserInput,
	}, nil
}

// ResponseReceived settles a request that produced a backend body. The
// displayed text, success or backend error alike, is recorded in history.
func (s State) ResponseReceived(resp *api.ChatResponse) State {
	text := resp.Text()
	s.Phase = PhaseSettling
	s.Response = text
	s.History = s.History.Append(history.Exchange{Input: s.pending, Output: text})
	return s.settle()
}

// FailureReceived settles a request that never produced a usable body.
// History is left untouched.
func (s State) FailureReceived(err error) State {
	s.Phase = PhaseSettling
	s.Response = "Error: " + err.Error()
	return s.settle()
}

func (s State) settle() State {
	s.Loading = false
	s.Phase = PhaseIdle
	s.pending = ""
	return s
}
