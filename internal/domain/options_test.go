package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLanguageValid(t *testing.T) {
	for _, l := range []Language{"txt", "go", "dockerfile", "yaml"} {
		assert.True(t, l.Valid(), l)
	}
	for _, l := range []Language{"", "Go", "cobol"} {
		assert.False(t, l.Valid(), l)
	}
}

func TestExpiryDuration(t *testing.T) {
	tests := map[Expiry]time.Duration{
		"1m":  time.Minute,
		"1h":  time.Hour,
		"1d":  24 * time.Hour,
		"1w":  7 * 24 * time.Hour,
		"1mo": 30 * 24 * time.Hour,
	}
	for e, want := range tests {
		got, ok := e.Duration()
		assert.True(t, ok, e)
		assert.Equal(t, want, got, e)
	}

	_, ok := Expiry("1y").Duration()
	assert.False(t, ok)
}

func TestOptionsAreCopies(t *testing.T) {
	langs := Languages()
	langs[0].Value = "mutated"
	assert.Equal(t, "txt", Languages()[0].Value)

	assert.Equal(t, []string{"1m", "1h", "1d", "1w", "1mo"}, Values(Expiries()))
	assert.Len(t, Languages(), 16)
}

func TestDefaultsAreValid(t *testing.T) {
	assert.True(t, DefaultLanguage.Valid())
	_, ok := DefaultExpiry.Duration()
	assert.True(t, ok)
}

func TestSnippetIsExpired(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := &Snippet{ExpiresAt: now.Add(time.Minute)}
	assert.False(t, s.IsExpired(now))
	assert.True(t, s.IsExpired(now.Add(time.Minute)))
	assert.True(t, s.IsExpired(now.Add(time.Hour)))
}
