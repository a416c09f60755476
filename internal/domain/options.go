package domain

import "time"

// Language is a syntax-highlighting language option.
type Language string

// Expiry is a snippet lifetime option, e.g. "1h".
type Expiry string

// Option is a labelled choice offered by forms and the options API.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

var languages = []Option{
	{"Plaintext", "txt"},
	{"Bash", "bash"},
	{"CSS", "css"},
	{"Docker", "dockerfile"},
	{"Go", "go"},
	{"HTML", "html"},
	{"JavaScript", "javascript"},
	{"JSON", "json"},
	{"Lua", "lua"},
	{"Nix", "nix"},
	{"Python", "python"},
	{"Rust", "rust"},
	{"SQL", "sql"},
	{"TOML", "toml"},
	{"TypeScript", "typescript"},
	{"YAML", "yaml"},
}

var expiries = []struct {
	Option
	duration time.Duration
}{
	{Option{"One Minute", "1m"}, time.Minute},
	{Option{"One Hour", "1h"}, time.Hour},
	{Option{"One Day", "1d"}, 24 * time.Hour},
	{Option{"One Week", "1w"}, 7 * 24 * time.Hour},
	{Option{"One Month", "1mo"}, 30 * 24 * time.Hour},
}

const (
	DefaultLanguage Language = "txt"
	DefaultExpiry   Expiry   = "1d"
)

// Languages returns the supported languages in display order.
func Languages() []Option {
	out := make([]Option, len(languages))
	copy(out, languages)
	return out
}

// Expiries returns the supported expiries in display order.
func Expiries() []Option {
	out := make([]Option, len(expiries))
	for i, e := range expiries {
		out[i] = e.Option
	}
	return out
}

func (l Language) Valid() bool {
	for _, o := range languages {
		if o.Value == string(l) {
			return true
		}
	}
	return false
}

// Duration returns the lifetime of e and false for unknown expiries.
func (e Expiry) Duration() (time.Duration, bool) {
	for _, o := range expiries {
		if o.Value == string(e) {
			return o.duration, true
		}
	}
	return 0, false
}

// Values extracts the option values, e.g. for error messages.
func Values(options []Option) []string {
	out := make([]string, len(options))
	for i, o := range options {
		out[i] = o.Value
	}
	return out
}
