package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/tview"
	"golang.org/x/term"

	"github.com/mai033/ai-chat-tool/internal/history"
)

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func terminalWidth(f *os.File) int {
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

// renderMarkdown renders model output for an ANSI terminal. Plain text is
// returned unchanged if rendering fails.
func renderMarkdown(content string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}

// renderMarkdownTview renders model output as tview color tags.
func renderMarkdownTview(content string, width int) string {
	out := renderMarkdown(content, width)
	if out == content {
		return tview.Escape(content)
	}
	return tview.TranslateANSI(out)
}

// writeJSON pretty-prints v, highlighted when color is true.
func writeJSON(w io.Writer, v any, color bool) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if !color {
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	fmt.Fprintln(w, highlight("json", string(data)))
	return nil
}

// highlight colors source for a 256-color terminal.
func highlight(lang, source string) string {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Analyse(source)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		return source
	}
	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return source
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, styles.Get("monokai"), iterator); err != nil {
		return source
	}
	return buf.String()
}

// formatHistory renders exchanges as tview-tagged lines, oldest first.
func formatHistory(entries []history.Exchange) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "[::b]User:[::-] %s\n", tview.Escape(e.Input))
		fmt.Fprintf(&b, "[purple::b]Bot:[-::-] %s\n", tview.Escape(e.Output))
	}
	return b.String()
}

func truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	return runewidth.Truncate(s, max, "...")
}
