// Package content analyzes a message's subject and body for questions,
// deadlines, urgency, action items and overall intent.
package content

import (
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/mail-priority/internal/core"
)

const (
	maxActionItems  = 5
	maxUrgencyLevel = 10
	urgentIntentBar = 5 // urgency level at which intent tips toward confirm/request
)

var (
	questionMarkPattern  = regexp.MustCompile(`\?`)
	auxVerbQuestion      = regexp.MustCompile(`(?i)\b(can|could|would|will|do|did|does|have|has|had|are|is|was|were|should|shall|may) (you|we|i)\b`)
	whSentenceStart      = regexp.MustCompile(`(?im)(?:^|[.!?]\s+)(what|when|where|who|why|how|which)\b`)
	implicitAskPatterns  = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bplease (confirm|advise|reply|respond|review)\b`),
		regexp.MustCompile(`(?i)\blet me know\b`),
		regexp.MustCompile(`(?i)\bwondering if\b`),
		regexp.MustCompile(`(?i)\b(feedback|thoughts) on\b`),
		regexp.MustCompile(`(?i)\bget back to (me|us)\b`),
	}

	deadlinePhrasePattern = regexp.MustCompile(`(?i)\b(?:by|before|until|due(?: by| on)?|deadline(?: is| of)?|expires?(?: on| at| by)?)[:\s]+([^.,;\n]{1,60})`)

	criticalUrgencyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\burgent(ly)?\b`),
		regexp.MustCompile(`(?i)\basap\b`),
		regexp.MustCompile(`(?i)\bimmediate(ly)?\b`),
		regexp.MustCompile(`(?i)\bemergency\b`),
		regexp.MustCompile(`(?i)\bcritical\b`),
		regexp.MustCompile(`(?i)\bright away\b`),
		regexp.MustCompile(`!{2,}`),
	}
	highUrgencyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bhigh priority\b`),
		regexp.MustCompile(`(?i)\bdeadline\b`),
		regexp.MustCompile(`(?i)\bexpedite\b`),
		regexp.MustCompile(`(?i)\btime[- ]sensitive\b`),
	}
	mediumUrgencyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bfollow[- ]?up\b`),
		regexp.MustCompile(`(?i)\breminder\b`),
		regexp.MustCompile(`(?i)\bpending\b`),
		regexp.MustCompile(`(?i)\bwaiting on\b`),
	}
	capsRunPattern = regexp.MustCompile(`(?:\b[A-Z]{2,}\b[ \t]+){2,}\b[A-Z]{2,}\b`)

	bulletLinePattern   = regexp.MustCompile(`^\s*[-*\x{2022}]\s+(.+)$`)
	numberedLinePattern = regexp.MustCompile(`^\s*\d+[.)]\s+(.+)$`)
	checkboxLinePattern = regexp.MustCompile(`^\s*\[[ xX]?\]\s*(.+)$`)
	todoLinePattern     = regexp.MustCompile(`(?i)^\s*todo:?\s*(.+)$`)

	actionVerbPattern = regexp.MustCompile(`(?i)\b(review|approve|submit|send|schedule|prepare|update|complete|sign|confirm|share|upload|finalize)\b`)
	sentenceSplit     = regexp.MustCompile(`[.!?\n]+`)

	shorthandReplacements = []struct {
		pattern *regexp.Regexp
		with    string
	}{
		{regexp.MustCompile(`(?i)\beod\b`), "today"},
		{regexp.MustCompile(`(?i)\bcob\b`), "today"},
		{regexp.MustCompile(`(?i)\bend of (the )?day\b`), "today"},
		{regexp.MustCompile(`(?i)\bend of (the )?week\b`), "friday"},
		{regexp.MustCompile(`(?i)\bby today\b`), "today"},
		{regexp.MustCompile(`(?i)\bby tomorrow\b`), "tomorrow"},
	}
)

// Analyzer performs content analysis over subject and body text
type Analyzer struct {
	dates  core.DateParser
	logger *zap.Logger
}

// NewAnalyzer creates a content analyzer using the given date-phrase parser
func NewAnalyzer(dates core.DateParser, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{dates: dates, logger: logger}
}

// Analyze runs the full content analysis relative to the given reference time
func (a *Analyzer) Analyze(subject, body string, now time.Time) core.ContentAnalysis {
	text := subject + "\n" + body

	analysis := core.ContentAnalysis{
		QuestionType: core.QuestionNone,
	}

	analysis.QuestionType = a.detectQuestion(text)
	analysis.HasQuestion = analysis.QuestionType != core.QuestionNone

	if deadline := a.extractDeadline(text, now); deadline != nil {
		analysis.Deadline = deadline
		minutes := int(deadline.Sub(now).Minutes())
		analysis.MinutesToDeadline = &minutes
	}

	analysis.UrgencyLevel, analysis.UrgencySignals = a.scoreUrgency(subject, text)
	analysis.ActionItems = a.extractActionItems(body)
	analysis.Intent = classifyIntent(analysis)

	return analysis
}

// detectQuestion reports how a question is asked, if at all
func (a *Analyzer) detectQuestion(text string) core.QuestionType {
	if questionMarkPattern.MatchString(text) ||
		auxVerbQuestion.MatchString(text) ||
		whSentenceStart.MatchString(text) {
		return core.QuestionDirect
	}
	for _, p := range implicitAskPatterns {
		if p.MatchString(text) {
			return core.QuestionImplicit
		}
	}
	return core.QuestionNone
}

// extractDeadline normalizes shorthand, parses both targeted deadline phrases
// and the full text, and keeps the earliest strictly-future date
func (a *Analyzer) extractDeadline(text string, now time.Time) *time.Time {
	normalized := text
	for _, r := range shorthandReplacements {
		normalized = r.pattern.ReplaceAllString(normalized, r.with)
	}

	var candidates []core.ParsedDate
	for _, m := range deadlinePhrasePattern.FindAllStringSubmatch(normalized, -1) {
		candidates = append(candidates, a.dates.Parse(m[1], now)...)
	}
	candidates = append(candidates, a.dates.Parse(normalized, now)...)

	var earliest *time.Time
	for _, c := range candidates {
		if !c.Time.After(now) {
			continue
		}
		if earliest == nil || c.Time.Before(*earliest) {
			t := c.Time
			earliest = &t
		}
	}
	return earliest
}

// scoreUrgency sums tiered keyword contributions, then clamps to the scale.
// Signals compound rather than first-match-wins.
func (a *Analyzer) scoreUrgency(subject, text string) (int, []string) {
	level := 0
	var signals []string

	for _, p := range criticalUrgencyPatterns {
		if m := p.FindString(text); m != "" {
			level += 5
			signals = append(signals, strings.ToLower(m))
		}
	}
	for _, p := range highUrgencyPatterns {
		if m := p.FindString(text); m != "" {
			level += 3
			signals = append(signals, strings.ToLower(m))
		}
	}
	for _, p := range mediumUrgencyPatterns {
		if m := p.FindString(text); m != "" {
			level += 1
			signals = append(signals, strings.ToLower(m))
		}
	}
	if capsRunPattern.MatchString(subject) {
		level += 2
		signals = append(signals, "capitalized subject run")
	}

	if level > maxUrgencyLevel {
		level = maxUrgencyLevel
	}
	return level, signals
}

// extractActionItems prefers line-anchored list markers and falls back to
// sentence-level action-verb detection. Items are deduplicated and capped.
func (a *Analyzer) extractActionItems(body string) []string {
	var items []string
	for _, line := range strings.Split(body, "\n") {
		for _, p := range []*regexp.Regexp{bulletLinePattern, numberedLinePattern, checkboxLinePattern, todoLinePattern} {
			if m := p.FindStringSubmatch(line); m != nil {
				items = append(items, strings.TrimSpace(m[1]))
				break
			}
		}
	}

	if len(items) == 0 {
		for _, sentence := range sentenceSplit.Split(body, -1) {
			sentence = strings.TrimSpace(sentence)
			if sentence == "" {
				continue
			}
			if actionVerbPattern.MatchString(sentence) {
				items = append(items, sentence)
			}
		}
	}

	return dedupe(items, maxActionItems)
}

// classifyIntent applies the ordered intent rules. The ordering is
// load-bearing: a deadline with high urgency must win over plain request
// signals.
func classifyIntent(analysis core.ContentAnalysis) core.Intent {
	hasDeadline := analysis.Deadline != nil
	urgent := analysis.UrgencyLevel >= urgentIntentBar

	switch {
	case hasDeadline && urgent:
		return core.IntentConfirm
	case analysis.HasQuestion || len(analysis.ActionItems) > 0 || urgent:
		return core.IntentRequest
	case hasDeadline:
		return core.IntentSchedule
	default:
		return core.IntentInform
	}
}

// dedupe removes case-insensitive duplicates, preserving order, up to max
func dedupe(items []string, max int) []string {
	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, strings.TrimSpace(item))
		if len(out) == max {
			break
		}
	}
	return out
}
