package content

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/mail-priority/internal/core"
)

// stubDates returns a fixed set of candidates regardless of input
type stubDates struct {
	candidates []core.ParsedDate
}

func (s *stubDates) Parse(string, time.Time) []core.ParsedDate {
	return s.candidates
}

func newTestAnalyzer(candidates ...core.ParsedDate) *Analyzer {
	return NewAnalyzer(&stubDates{candidates: candidates}, nil)
}

func TestDetectDirectQuestion(t *testing.T) {
	a := newTestAnalyzer()
	now := time.Now()

	byMark := a.Analyze("Quick check", "Did the deploy finish?", now)
	assert.True(t, byMark.HasQuestion)
	assert.Equal(t, core.QuestionDirect, byMark.QuestionType)

	byAuxVerb := a.Analyze("Review", "Could you take a look at the draft", now)
	assert.Equal(t, core.QuestionDirect, byAuxVerb.QuestionType)

	byWHWord := a.Analyze("Planning", "When is the budget locked", now)
	assert.Equal(t, core.QuestionDirect, byWHWord.QuestionType)
}

func TestDetectImplicitQuestion(t *testing.T) {
	a := newTestAnalyzer()

	result := a.Analyze("Receipt", "Please advise once the package arrives", time.Now())
	assert.True(t, result.HasQuestion)
	assert.Equal(t, core.QuestionImplicit, result.QuestionType)
}

func TestDetectNoQuestion(t *testing.T) {
	a := newTestAnalyzer()

	result := a.Analyze("FYI", "The report shipped this morning.", time.Now())
	assert.False(t, result.HasQuestion)
	assert.Equal(t, core.QuestionNone, result.QuestionType)
}

func TestDeadlineKeepsEarliestFutureDate(t *testing.T) {
	now := time.Now()
	a := newTestAnalyzer(
		core.ParsedDate{Time: now.Add(30 * time.Hour)},
		core.ParsedDate{Time: now.Add(2 * time.Hour)},
		core.ParsedDate{Time: now.Add(-1 * time.Hour)}, // past dates are discarded
	)

	result := a.Analyze("Heads up", "Need this by tomorrow", now)
	require.NotNil(t, result.Deadline)
	assert.Equal(t, now.Add(2*time.Hour).Unix(), result.Deadline.Unix())
	require.NotNil(t, result.MinutesToDeadline)
	assert.Equal(t, 120, *result.MinutesToDeadline)
}

func TestDeadlineAbsentWhenOnlyPastDates(t *testing.T) {
	now := time.Now()
	a := newTestAnalyzer(core.ParsedDate{Time: now.Add(-time.Hour)})

	result := a.Analyze("Recap", "We shipped it yesterday", now)
	assert.Nil(t, result.Deadline)
	assert.Nil(t, result.MinutesToDeadline)
}

func TestUrgencyCompoundsAndClamps(t *testing.T) {
	a := newTestAnalyzer()

	mild := a.Analyze("Note", "A gentle reminder about the pending item", time.Now())
	assert.Equal(t, 2, mild.UrgencyLevel)

	// multiple critical terms blow past the cap and clamp at 10
	severe := a.Analyze("Status", "URGENT!!! need this asap, deadline today", time.Now())
	assert.Equal(t, 10, severe.UrgencyLevel)
	assert.NotEmpty(t, severe.UrgencySignals)
}

func TestUrgencyCapitalizedSubjectRun(t *testing.T) {
	a := newTestAnalyzer()

	result := a.Analyze("PLEASE READ NOW", "nothing special here", time.Now())
	assert.Equal(t, 2, result.UrgencyLevel)
	assert.Contains(t, result.UrgencySignals, "capitalized subject run")
}

func TestActionItemsFromListMarkers(t *testing.T) {
	a := newTestAnalyzer()
	body := "- review the doc\n- review the doc\n1. sign the form\n[ ] upload slides\nTODO: send notes\n* share recording\n- book the room"

	result := a.Analyze("Tasks", body, time.Now())
	assert.Len(t, result.ActionItems, 5) // deduplicated, capped at 5
	assert.Equal(t, "review the doc", result.ActionItems[0])
}

func TestActionItemsSentenceFallback(t *testing.T) {
	a := newTestAnalyzer()

	result := a.Analyze("Next steps", "Happy to help. You still need to submit the expense report.", time.Now())
	require.Len(t, result.ActionItems, 1)
	assert.Contains(t, result.ActionItems[0], "submit the expense report")
}

func TestIntentConfirmWinsOverRequest(t *testing.T) {
	now := time.Now()
	a := newTestAnalyzer(core.ParsedDate{Time: now.Add(4 * time.Hour)})

	// deadline + high urgency + a question: rule 1 must win
	result := a.Analyze("Contract", "URGENT: can you sign by today asap?", now)
	assert.Equal(t, core.IntentConfirm, result.Intent)
}

func TestIntentRequest(t *testing.T) {
	a := newTestAnalyzer()

	result := a.Analyze("Draft", "Can you have a look at the draft?", time.Now())
	assert.Equal(t, core.IntentRequest, result.Intent)
}

func TestIntentSchedule(t *testing.T) {
	now := time.Now()
	a := newTestAnalyzer(core.ParsedDate{Time: now.Add(48 * time.Hour)})

	result := a.Analyze("Offsite", "See you there by friday", now)
	assert.Equal(t, core.IntentSchedule, result.Intent)
}

func TestIntentInform(t *testing.T) {
	a := newTestAnalyzer()

	result := a.Analyze("FYI", "The migration finished without issues.", time.Now())
	assert.Equal(t, core.IntentInform, result.Intent)
}
