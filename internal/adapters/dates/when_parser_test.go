package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRelativePhrase(t *testing.T) {
	p := NewWhenParser(nil)
	ref := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	results := p.Parse("please send it tomorrow", ref)
	require.NotEmpty(t, results)
	assert.True(t, results[0].Time.After(ref))
}

func TestParseAbsoluteDate(t *testing.T) {
	p := NewWhenParser(nil)
	ref := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	results := p.Parse("the contract expires on 2030-09-01", ref)
	require.NotEmpty(t, results)

	found := false
	for _, r := range results {
		if r.Time.Year() == 2030 && r.Time.Month() == time.September {
			found = true
		}
	}
	assert.True(t, found)
}

func TestParseNoDates(t *testing.T) {
	p := NewWhenParser(nil)

	results := p.Parse("nothing temporal in here", time.Now())
	assert.Empty(t, results)
}

func TestParseEmptyText(t *testing.T) {
	p := NewWhenParser(nil)
	assert.Empty(t, p.Parse("", time.Now()))
}
