package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/mai033/ai-chat-tool/internal/catalog"
	"github.com/mai033/ai-chat-tool/internal/logger"
	"github.com/mai033/ai-chat-tool/internal/session"
)

const noticePage = "notice"

// formApp is the interactive form. All widget access happens on the tview
// event loop; session state arrives through QueueUpdateDraw.
type formApp struct {
	app   *tview.Application
	pages *tview.Pages
	form  *tview.Form

	modelDrop   *tview.DropDown
	systemArea  *tview.TextArea
	inputArea   *tview.TextArea
	responseBox *tview.TextView
	historyBox  *tview.TextView
	statusBar   *tview.TextView

	ctrl      *session.Controller
	serverURL string
	ctx       context.Context

	// Event-loop state
	shownModels  []catalog.Option
	last         session.State
	ctrlCPending bool
	noticeOpen   bool

	mu             sync.Mutex
	loadingSince   time.Time
	progressTicker *time.Ticker
	progressStop   chan struct{}
}

func runForm(ctx context.Context) error {
	t := &formApp{serverURL: cfg.ServerURL, ctx: ctx}
	ctrl, err := newController(session.WithObserver(func(s session.State) {
		t.app.QueueUpdateDraw(func() { t.render(s) })
	}))
	if err != nil {
		return err
	}
	t.ctrl = ctrl
	t.build()

	go func() {
		opts := t.ctrl.LoadCatalog(ctx)
		logger.Debug("Form catalog: %d options", len(opts))
	}()

	logger.Info("Form started against %s", t.serverURL)
	defer t.stopProgressTicker()
	return t.app.SetRoot(t.pages, true).SetFocus(t.form).EnableMouse(true).Run()
}

func (t *formApp) build() {
	t.app = tview.NewApplication()

	t.modelDrop = tview.NewDropDown().
		SetLabel("Model ").
		SetTextOptions(" ", " ", "", "", "Loading models...").
		SetFieldWidth(50)

	t.systemArea = tview.NewTextArea().
		SetLabel("System Prompt (Optional) ").
		SetPlaceholder("You are a helpful assistant.").
		SetSize(3, 0)
	t.systemArea.SetChangedFunc(func() {
		t.ctrl.SetSystemPrompt(t.systemArea.GetText())
	})

	t.inputArea = tview.NewTextArea().
		SetLabel("User Input * ").
		SetSize(4, 0)
	t.inputArea.SetChangedFunc(func() {
		t.ctrl.SetUserInput(t.inputArea.GetText())
	})

	t.form = tview.NewForm().
		AddFormItem(t.modelDrop).
		AddFormItem(t.systemArea).
		AddFormItem(t.inputArea).
		AddButton("Submit", t.submit).
		SetButtonsAlign(tview.AlignCenter)
	t.form.SetBorder(true).SetTitle(" AI Chat Tool ")

	t.responseBox = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	t.responseBox.SetBorder(true).SetTitle(" Response ")

	t.historyBox = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	t.historyBox.SetBorder(true).SetTitle(" History ")

	t.statusBar = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)

	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(t.form, 15, 0, true).
		AddItem(t.responseBox, 0, 1, false).
		AddItem(t.historyBox, 0, 1, false).
		AddItem(t.statusBar, 1, 0, false)

	t.pages = tview.NewPages().AddPage("main", root, true, true)

	t.setupInputCapture()
	t.updateStatusBar()
}

// ── Input Capture ──────────────────────────────────────────────────────

func (t *formApp) setupInputCapture() {
	t.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() != tcell.KeyCtrlC {
			t.ctrlCPending = false
		}

		switch event.Key() {
		case tcell.KeyCtrlC:
			if t.last.Loading {
				if t.ctrl.Cancel() {
					t.setStatus("Cancelling...")
				}
				return nil
			}
			if t.ctrlCPending {
				t.app.Stop()
				return nil
			}
			t.ctrlCPending = true
			t.setStatus("Press Ctrl+C again to quit.")
			return nil

		case tcell.KeyCtrlD:
			t.app.Stop()
			return nil

		case tcell.KeyCtrlS:
			if !t.noticeOpen {
				t.submit()
			}
			return nil

		case tcell.KeyPgUp, tcell.KeyPgDn:
			delta := 10
			if event.Key() == tcell.KeyPgUp {
				delta = -10
			}
			row, col := t.historyBox.GetScrollOffset()
			t.historyBox.ScrollTo(max(row+delta, 0), col)
			return nil
		}

		return event
	})
}

// ── Submission ─────────────────────────────────────────────────────────

func (t *formApp) submit() {
	if t.last.Loading {
		return
	}
	if err := t.ctrl.State().Validate(); err != nil {
		t.showNotice(err)
		return
	}
	go func() {
		if err := t.ctrl.Submit(t.ctx); err != nil {
			t.app.QueueUpdateDraw(func() { t.showNotice(err) })
		}
	}()
}

func (t *formApp) showNotice(err error) {
	msg := err.Error()
	switch {
	case errors.Is(err, session.ErrNoModelSelected):
		msg = "Please select a model."
	case errors.Is(err, session.ErrEmptyInput):
		msg = "Please enter a message."
	}
	logger.Debug("Notice: %s", msg)

	modal := tview.NewModal().
		SetText(msg).
		AddButtons([]string{"OK"}).
		SetDoneFunc(func(int, string) {
			t.pages.RemovePage(noticePage)
			t.noticeOpen = false
			t.app.SetFocus(t.form)
		})
	t.noticeOpen = true
	t.pages.AddPage(noticePage, modal, false, true)
	t.app.SetFocus(modal)
}

// ── Rendering ──────────────────────────────────────────────────────────

func (t *formApp) render(s session.State) {
	// Observer calls race; an older snapshot must not overwrite a newer one.
	if !s.NewerThan(t.last) {
		return
	}
	if !sameOptions(t.shownModels, s.Models) {
		t.setModelOptions(s.Models, s.Model)
	}

	if s.Loading != t.last.Loading {
		if s.Loading {
			t.startProgressTicker()
		} else {
			t.stopProgressTicker()
		}
		if btn := t.form.GetButton(0); btn != nil {
			btn.SetDisabled(s.Loading)
			if s.Loading {
				btn.SetLabel("Sending...")
			} else {
				btn.SetLabel("Submit")
			}
		}
	}

	if s.Response != t.last.Response {
		if s.Response == "" {
			t.responseBox.SetText("")
		} else {
			_, _, width, _ := t.responseBox.GetInnerRect()
			t.responseBox.SetText(renderMarkdownTview(s.Response, max(width-2, 20)))
			t.responseBox.ScrollToBeginning()
		}
	}

	if s.History.Len() != t.last.History.Len() {
		t.historyBox.SetText(formatHistory(s.History.Entries()))
		t.historyBox.ScrollToEnd()
	}

	t.last = s
	t.updateStatusBar()
}

func (t *formApp) setModelOptions(opts []catalog.Option, selected string) {
	t.shownModels = opts
	labels := make([]string, len(opts))
	for i, o := range opts {
		labels[i] = o.Label
	}
	t.modelDrop.SetTextOptions(" ", " ", "", "", "Select Model")
	t.modelDrop.SetOptions(labels, func(_ string, index int) {
		if index < 0 || index >= len(opts) {
			t.ctrl.SetModel("")
			return
		}
		t.ctrl.SetModel(opts[index].Value)
	})
	t.modelDrop.SetCurrentOption(catalog.IndexOf(opts, selected))
}

func sameOptions(a, b []catalog.Option) bool {
	if len(a) != len(b) || (a == nil) != (b == nil) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (t *formApp) setStatus(text string) {
	t.statusBar.SetText(" [gray::-]" + tview.Escape(text) + "[-:-:-]")
}

func (t *formApp) updateStatusBar() {
	s := t.last
	if s.Loading {
		t.mu.Lock()
		elapsed := time.Since(t.loadingSince)
		t.mu.Unlock()
		t.setStatus(fmt.Sprintf("Waiting for %s... %ds | Ctrl+C cancel", s.Model, int(elapsed.Seconds())))
		return
	}

	parts := []string{truncate(t.serverURL, 40)}
	if s.Model != "" {
		parts = append(parts, s.Model)
	}
	parts = append(parts, fmt.Sprintf("%d exchanges", s.History.Len()))
	parts = append(parts, "Ctrl+S submit", "Ctrl+D quit")
	t.setStatus(strings.Join(parts, " | "))
}

func (t *formApp) startProgressTicker() {
	t.stopProgressTicker()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.loadingSince = time.Now()
	t.progressStop = make(chan struct{})
	t.progressTicker = time.NewTicker(time.Second)
	stop := t.progressStop
	ticker := t.progressTicker
	go func() {
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				t.app.QueueUpdateDraw(t.updateStatusBar)
			}
		}
	}()
}

func (t *formApp) stopProgressTicker() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.progressTicker != nil {
		t.progressTicker.Stop()
		t.progressTicker = nil
	}
	if t.progressStop != nil {
		close(t.progressStop)
		t.progressStop = nil
	}
}
