// Package dates implements the DateParser port on top of the olebedev/when
// natural-language parser, with araddon/dateparse covering absolute date
// strings the rule engine does not.
package dates

import (
	"regexp"
	"time"

	"github.com/araddon/dateparse"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"go.uber.org/zap"

	"github.com/mikey/mail-priority/internal/core"
)

// maxMatchesPerText bounds how many phrases are pulled from one text so a
// pathological body cannot stall the analyzer
const maxMatchesPerText = 8

var absoluteDatePattern = regexp.MustCompile(
	`\b\d{4}-\d{2}-\d{2}(?:[T ]\d{2}:\d{2}(?::\d{2})?)?\b` +
		`|\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+\d{1,2}(?:,?\s+\d{4})?(?:\s+\d{1,2}(?::\d{2})?\s*(?:am|pm|AM|PM))?\b`)

// WhenParser finds date phrases in free text relative to a reference time
type WhenParser struct {
	parser *when.Parser
	logger *zap.Logger
}

// NewWhenParser creates a date parser with the English and common rule sets
func NewWhenParser(logger *zap.Logger) *WhenParser {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &WhenParser{parser: w, logger: logger}
}

// Parse returns every date candidate found in the text. Parser failures are
// swallowed: a date parser that cannot read a phrase is an absent signal,
// not an error.
func (p *WhenParser) Parse(text string, ref time.Time) []core.ParsedDate {
	var results []core.ParsedDate

	// when returns only the first match, so walk the text
	offset := 0
	for len(results) < maxMatchesPerText && offset < len(text) {
		r, err := p.parser.Parse(text[offset:], ref)
		if err != nil {
			p.logger.Debug("Date phrase parse failed", zap.Error(err))
			break
		}
		if r == nil {
			break
		}
		results = append(results, core.ParsedDate{
			Time: r.Time,
			Pos:  offset + r.Index,
			Text: r.Text,
		})
		advance := r.Index + len(r.Text)
		if advance <= 0 {
			break
		}
		offset += advance
	}

	// absolute date strings ("2026-09-01", "Sep 3, 2026 5pm")
	for _, loc := range absoluteDatePattern.FindAllStringIndex(text, maxMatchesPerText) {
		candidate := text[loc[0]:loc[1]]
		t, err := dateparse.ParseIn(candidate, ref.Location())
		if err != nil {
			continue
		}
		results = append(results, core.ParsedDate{
			Time: t,
			Pos:  loc[0],
			Text: candidate,
		})
	}

	return results
}
