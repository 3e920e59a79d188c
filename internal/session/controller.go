// Package session drives a chat form: it loads the model catalog, submits one
// request at a time and accumulates the exchanges of the session.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mai033/ai-chat-tool/internal/catalog"
	"github.com/mai033/ai-chat-tool/internal/logger"
	"github.com/mai033/ai-chat-tool/pkg/api"
)

// Backend is the part of the API client a session uses.
type Backend interface {
	ListModels(ctx context.Context) (*api.ModelListResponse, error)
	Chat(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error)
}

// Controller owns the State of one session. It is safe for concurrent use;
// the form calls it from its event loop and from the request goroutine.
type Controller struct {
	backend  Backend
	table    catalog.Table
	timeout  time.Duration
	observer func(State)

	mu     sync.Mutex
	state  State
	seq    uint64
	cancel context.CancelFunc
}

// Option configures a Controller.
type Option func(*Controller)

// WithTable sets the allow-list. Defaults to catalog.Default.
func WithTable(t catalog.Table) Option {
	return func(c *Controller) { c.table = t }
}

// WithTimeout bounds each chat request. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) { c.timeout = d }
}

// WithObserver registers fn to receive the state after every change. Calls
// are made outside the lock and may arrive out of order; compare Seq to keep
// the newest.
func WithObserver(fn func(State)) Option {
	return func(c *Controller) { c.observer = fn }
}

// New creates a Controller backed by backend.
func New(backend Backend, opts ...Option) *Controller {
	c := &Controller{
		backend: backend,
		table:   catalog.Default,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a snapshot of the session.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetModel selects a model identifier. Empty clears the selection.
func (c *Controller) SetModel(id string) {
	c.update(func(s State) State { s.Model = id; return s })
}

// SetSystemPrompt sets the optional system prompt.
func (c *Controller) SetSystemPrompt(text string) {
	c.update(func(s State) State { s.SystemPrompt = text; return s })
}

// SetUserInput sets the message to send.
func (c *Controller) SetUserInput(text string) {
	c.update(func(s State) State { s.UserInput = text; return s })
}

// LoadCatalog fetches the backend catalog and publishes the allowed models.
// Any failure is logged and replaced by the fallback list, so the returned
// set is never empty unless the backend lists no allowed model.
func (c *Controller) LoadCatalog(ctx context.Context) []catalog.Option {
	var opts []catalog.Option
	resp, err := c.backend.ListModels(ctx)
	if err != nil {
		logger.Warn("Error fetching models, using fallback list: %v", err)
		opts = c.table.Fallback()
	} else {
		opts = c.table.Filter(resp.Models)
		logger.Info("Catalog loaded: %d of %d models allowed", len(opts), len(resp.Models))
	}
	c.update(func(s State) State { return s.CatalogLoaded(opts) })
	return opts
}

// Submit sends the current form as one chat request and blocks until it
// settles. It returns an error only when the submission was rejected before
// any request was made; request failures are reported through the state's
// Response.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	next, req, err := c.state.SubmitRequested()
	if err != nil {
		c.mu.Unlock()
		logger.Debug("Submission rejected: %v", err)
		return err
	}
	var reqCtx context.Context
	var cancel context.CancelFunc
	if c.timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
	} else {
		reqCtx, cancel = context.WithCancel(ctx)
	}
	next = c.commit(next)
	c.cancel = cancel
	c.mu.Unlock()
	c.notify(next)

	logger.Info("Submitting to %s (%d chars)", req.Model, len(req.UserInput))

	settled := false
	defer func() {
		cancel()
		if !settled {
			c.settle(func(s State) State { return s.FailureReceived(errors.New("request aborted")) })
		}
	}()

	resp, err := c.backend.Chat(reqCtx, req)
	if err != nil {
		logger.Error("Chat request failed: %v", err)
		c.settle(func(s State) State { return s.FailureReceived(err) })
	} else {
		c.settle(func(s State) State { return s.ResponseReceived(resp) })
	}
	settled = true
	return nil
}

// Cancel aborts the in-flight request, if any, and reports whether there was one.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel == nil {
		return false
	}
	c.cancel()
	return true
}

func (c *Controller) settle(fn func(State) State) {
	c.mu.Lock()
	s := c.commit(fn(c.state))
	c.cancel = nil
	c.mu.Unlock()
	c.notify(s)
}

func (c *Controller) update(fn func(State) State) {
	c.mu.Lock()
	s := c.commit(fn(c.state))
	c.mu.Unlock()
	c.notify(s)
}

// commit stores s as the current state. Caller holds mu.
func (c *Controller) commit(s State) State {
	c.seq++
	s.Seq = c.seq
	c.state = s
	return s
}

func (c *Controller) notify(s State) {
	if c.observer != nil {
		c.observer(s)
	}
}
