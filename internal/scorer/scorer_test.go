package scorer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/mail-priority/internal/core"
)

func neutralFeatures() *core.MessageFeatures {
	return &core.MessageFeatures{ThreadLength: 1}
}

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func TestNeutralBaseline(t *testing.T) {
	s := NewScorer(DefaultConfig())
	result := s.Score(neutralFeatures(), time.Now())

	assert.GreaterOrEqual(t, result.Score, 40)
	assert.LessOrEqual(t, result.Score, 60)
	assert.Equal(t, core.CategoryNormal, result.Category)
}

func TestNewsletterAloneIsSpam(t *testing.T) {
	s := NewScorer(DefaultConfig())

	f := neutralFeatures()
	f.IsNewsletter = true

	result := s.Score(f, time.Now())
	assert.Less(t, result.Score, 30)
	assert.Equal(t, core.CategorySpam, result.Category)
	assert.Contains(t, result.FeatureWeights, "newsletter")
	assert.Equal(t, -30.0, result.FeatureWeights["newsletter"])
}

func TestOTPPenaltyAndConfidenceCap(t *testing.T) {
	s := NewScorer(DefaultConfig())

	f := neutralFeatures()
	f.OTPDetected = true
	f.OTPAgeMinutes = intPtr(3)

	result := s.Score(f, time.Now())
	assert.Less(t, result.Score, 30)
	assert.LessOrEqual(t, result.Confidence, 0.6)
}

func TestAutoGeneratedPenaltySkippedForCalendar(t *testing.T) {
	s := NewScorer(DefaultConfig())
	now := time.Now()

	f := neutralFeatures()
	f.IsAutoGenerated = true

	penalized := s.Score(f, now)
	assert.Equal(t, -20.0, penalized.FeatureWeights["autoGenerated"])

	f.HasCalendar = true
	spared := s.Score(f, now)
	assert.NotContains(t, spared.FeatureWeights, "autoGenerated")
}

func TestStrongRelationshipWithAsk(t *testing.T) {
	s := NewScorer(DefaultConfig())

	f := neutralFeatures()
	f.RelationshipScore = 0.9
	f.ExplicitAsk = true

	result := s.Score(f, time.Now())
	assert.GreaterOrEqual(t, result.Score, 85)
}

func TestImminentDeadlineIsUrgent(t *testing.T) {
	s := NewScorer(DefaultConfig())
	now := time.Now()

	f := neutralFeatures()
	f.Deadline = timePtr(now.Add(30 * time.Minute))
	f.MinutesToDeadline = intPtr(30)

	result := s.Score(f, now)
	assert.GreaterOrEqual(t, result.Score, 90)
	assert.Equal(t, core.CategoryUrgent, result.Category)
	assert.InDelta(t, 0.9, result.Confidence, 1e-9)
}

func TestCalendarOverrideFloorsAtImportant(t *testing.T) {
	s := NewScorer(DefaultConfig())
	now := time.Now()

	f := neutralFeatures()
	f.HasCalendar = true
	f.IsAutoGenerated = true // must not be penalized alongside the calendar flag
	f.CalendarStart = timePtr(now.Add(2 * time.Hour))

	result := s.Score(f, now)
	assert.GreaterOrEqual(t, result.Score, core.ImportantThreshold)
	assert.NotEqual(t, core.CategoryLow, result.Category)
	assert.NotEqual(t, core.CategorySpam, result.Category)
	assert.NotContains(t, result.FeatureWeights, "autoGenerated")
	assert.Contains(t, result.FeatureWeights, "calendarImminent")
	assert.InDelta(t, 0.95, result.Confidence, 1e-9)
}

func TestCalendarOverrideIgnoresPastAndFarEvents(t *testing.T) {
	s := NewScorer(DefaultConfig())
	now := time.Now()

	f := neutralFeatures()
	f.HasCalendar = true
	f.CalendarStart = timePtr(now.Add(-2 * time.Hour))
	result := s.Score(f, now)
	assert.NotContains(t, result.FeatureWeights, "calendarImminent")

	f.CalendarStart = timePtr(now.Add(72 * time.Hour))
	result = s.Score(f, now)
	assert.NotContains(t, result.FeatureWeights, "calendarImminent")
}

func TestUrgentDeadlineWithAskOverride(t *testing.T) {
	s := NewScorer(DefaultConfig())
	now := time.Now()

	// near deadline but no other signals: the override must lift the score
	f := neutralFeatures()
	f.IsNewsletter = true // drags the additive total down first
	f.Deadline = timePtr(now.Add(2 * time.Hour))
	f.MinutesToDeadline = intPtr(120)
	f.ExplicitAsk = true

	result := s.Score(f, now)
	assert.GreaterOrEqual(t, result.Score, 85)
	assert.InDelta(t, 0.7, result.Confidence, 1e-9)
	assert.Contains(t, result.FeatureWeights, "urgentDeadlineAsk")
}

func TestScoreAndConfidenceStayInRange(t *testing.T) {
	s := NewScorer(DefaultConfig())
	now := time.Now()

	everything := &core.MessageFeatures{
		RelationshipScore:    1.0,
		IsVIPSender:          true,
		ExplicitAsk:          true,
		Deadline:             timePtr(now.Add(10 * time.Minute)),
		MinutesToDeadline:    intPtr(10),
		ThreadYouOwe:         true,
		ThreadLength:         8,
		Intent:               core.IntentConfirm,
		ReplyNeedProbability: 1.0,
		HasCalendar:          true,
		CalendarStart:        timePtr(now.Add(time.Hour)),
	}
	nothing := &core.MessageFeatures{
		IsNewsletter:    true,
		IsAutoGenerated: true,
		OTPDetected:     true,
		Intent:          core.IntentInform,
		ThreadLength:    1,
	}

	for _, f := range []*core.MessageFeatures{everything, nothing, neutralFeatures()} {
		result := s.Score(f, now)
		assert.GreaterOrEqual(t, result.Score, 0)
		assert.LessOrEqual(t, result.Score, 100)
		assert.GreaterOrEqual(t, result.Confidence, 0.0)
		assert.LessOrEqual(t, result.Confidence, 1.0)
		assert.Equal(t, core.CategoryForScore(result.Score), result.Category)
	}
}

func TestIntentModifiers(t *testing.T) {
	s := NewScorer(DefaultConfig())
	now := time.Now()

	cases := []struct {
		intent  core.Intent
		feature string
		delta   float64
	}{
		{core.IntentConfirm, "intentConfirm", 10},
		{core.IntentRequest, "intentRequest", 5},
		{core.IntentInform, "intentInform", -5},
	}
	for _, tc := range cases {
		f := neutralFeatures()
		f.Intent = tc.intent
		result := s.Score(f, now)
		assert.Equal(t, tc.delta, result.FeatureWeights[tc.feature])
	}

	// schedule carries no points and must leave no trace in the weights
	f := neutralFeatures()
	f.Intent = core.IntentSchedule
	result := s.Score(f, now)
	assert.NotContains(t, result.FeatureWeights, "intentSchedule")

	// absent intent applies no modifier at all
	f = neutralFeatures()
	result = s.Score(f, now)
	for name := range result.FeatureWeights {
		assert.NotContains(t, name, "intent")
	}
}

func TestScoringIsIdempotent(t *testing.T) {
	s := NewScorer(DefaultConfig())
	now := time.Now()

	f := &core.MessageFeatures{
		RelationshipScore:    0.7,
		ExplicitAsk:          true,
		Intent:               core.IntentRequest,
		ThreadYouOwe:         true,
		ThreadLength:         4,
		ReplyNeedProbability: 0.8,
	}

	first := s.Score(f, now)
	second := s.Score(f, now)
	assert.Equal(t, first, second)
}

func TestCategoryThresholds(t *testing.T) {
	cases := []struct {
		score    int
		category core.Category
	}{
		{100, core.CategoryUrgent},
		{90, core.CategoryUrgent},
		{89, core.CategoryImportant},
		{70, core.CategoryImportant},
		{69, core.CategoryNormal},
		{50, core.CategoryNormal},
		{49, core.CategoryLow},
		{30, core.CategoryLow},
		{29, core.CategorySpam},
		{0, core.CategorySpam},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.category, core.CategoryForScore(tc.score), "score %d", tc.score)
	}
}

func TestReasoningAndContributors(t *testing.T) {
	s := NewScorer(DefaultConfig())

	f := neutralFeatures()
	f.IsNewsletter = true
	f.RelationshipScore = 0.4

	result := s.Score(f, time.Now())
	require.NotEmpty(t, result.Reasoning)

	top := TopContributors(result, 2)
	require.Len(t, top, 2)
	assert.Contains(t, top[0], "newsletter") // largest absolute contribution first

	explanation := Explain(result)
	assert.Contains(t, explanation, "top signals")
}
