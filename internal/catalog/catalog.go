// Package catalog holds the allow-list of selectable models and turns a
// backend catalog into the options shown in the model picker.
//
// The allow-list and the fallback list are the same Table, so the two can
// never disagree about which identifiers exist.
package catalog

import (
	"strings"

	"github.com/mai033/ai-chat-tool/pkg/api"
)

// Provider identifies the vendor behind a model.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// Entry maps a model identifier to its provider.
type Entry struct {
	ID       string
	Provider Provider
}

// Option is a selectable model as presented to the user.
type Option struct {
	Value string
	Label string
}

// Table is an ordered allow-list. Its order is the fallback order.
type Table []Entry

// Default is the built-in allow-list.
var Default = Table{
	{ID: "gpt-4o", Provider: ProviderOpenAI},
	{ID: "gpt-4o-mini", Provider: ProviderOpenAI},
	{ID: "gpt-4", Provider: ProviderOpenAI},
	{ID: "gpt-3.5-turbo", Provider: ProviderOpenAI},
	{ID: "claude-3-5-sonnet-20241022", Provider: ProviderAnthropic},
	{ID: "claude-3-5-haiku-20241022", Provider: ProviderAnthropic},
}

// Label formats the display label for a model, e.g. "OPENAI - gpt-4o".
func Label(provider, id string) string {
	return strings.ToUpper(provider) + " - " + id
}

// Lookup returns the table entry for id.
func (t Table) Lookup(id string) (Entry, bool) {
	for _, e := range t {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Allows reports whether id is on the allow-list.
func (t Table) Allows(id string) bool {
	_, ok := t.Lookup(id)
	return ok
}

// Fallback returns the options used when the backend catalog is unavailable.
func (t Table) Fallback() []Option {
	opts := make([]Option, 0, len(t))
	for _, e := range t {
		opts = append(opts, Option{Value: e.ID, Label: Label(string(e.Provider), e.ID)})
	}
	return opts
}

// Filter keeps the catalog records that are on the allow-list, in catalog
// order. A record without a provider borrows the table's provider. Repeated
// identifiers keep their first occurrence.
func (t Table) Filter(records []api.ModelRecord) []Option {
	opts := make([]Option, 0, len(t))
	seen := make(map[string]bool, len(t))
	for _, r := range records {
		entry, ok := t.Lookup(r.ID)
		if !ok || seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		provider := r.Provider
		if provider == "" {
			provider = string(entry.Provider)
		}
		opts = append(opts, Option{Value: r.ID, Label: Label(provider, r.ID)})
	}
	return opts
}

// IndexOf returns the position of value in opts, or -1.
func IndexOf(opts []Option, value string) int {
	for i, o := range opts {
		if o.Value == value {
			return i
		}
	}
	return -1
}
