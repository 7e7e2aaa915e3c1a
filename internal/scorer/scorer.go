// Package scorer applies the weighted linear priority model to a feature
// record and produces the final score, category, confidence and explanation.
package scorer

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/mikey/mail-priority/internal/core"
)

// Config holds the point weights and override thresholds of the model
type Config struct {
	BaseScore      float64
	BaseConfidence float64

	NewsletterPenalty    float64
	AutoGeneratedPenalty float64
	OTPPenalty           float64
	OTPConfidenceCap     float64

	RelationshipWeight    float64
	VIPBonus              float64
	ExplicitAskBonus      float64
	DeadlineBonus         float64
	ImminentDeadlineBonus float64
	ThreadOwedBonus       float64
	ReplyNeedWeight       float64
	ReplyNeedFloor        float64

	ImminentDeadlineMinutes int // deadline window that earns the extra bonus
	UrgentDeadlineMinutes   int // deadline window of the urgent-ask override
	CalendarWindowMinutes   int // event-start window of the calendar override

	ConfirmBonus   float64
	RequestBonus   float64
	ScheduleBonus  float64
	InformPenalty  float64
}

// DefaultConfig returns the standard model weights
func DefaultConfig() Config {
	return Config{
		BaseScore:      50,
		BaseConfidence: 0.8,

		NewsletterPenalty:    30,
		AutoGeneratedPenalty: 20,
		OTPPenalty:           35,
		OTPConfidenceCap:     0.6,

		RelationshipWeight:    30,
		VIPBonus:              15,
		ExplicitAskBonus:      20,
		DeadlineBonus:         15,
		ImminentDeadlineBonus: 25,
		ThreadOwedBonus:       20,
		ReplyNeedWeight:       25,
		ReplyNeedFloor:        0.5,

		ImminentDeadlineMinutes: 24 * 60,
		UrgentDeadlineMinutes:   6 * 60,
		CalendarWindowMinutes:   24 * 60,

		ConfirmBonus:  10,
		RequestBonus:  5,
		ScheduleBonus: 0,
		InformPenalty: 5,
	}
}

// adjustment is one named step of the linear model: a predicate, a signed
// point delta and a reason. Keeping the table declarative keeps the weights
// testable apart from the override logic.
type adjustment struct {
	feature string
	applies func(f *core.MessageFeatures) bool
	points  func(f *core.MessageFeatures) float64
	reason  func(f *core.MessageFeatures) string
}

// Scorer is the stateless priority scorer
type Scorer struct {
	cfg      Config
	negative []adjustment
	positive []adjustment
	intent   []adjustment
}

// NewScorer creates a priority scorer. A zero-valued config falls back to
// the defaults.
func NewScorer(cfg Config) *Scorer {
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	s := &Scorer{cfg: cfg}
	s.buildTables()
	return s
}

func (s *Scorer) buildTables() {
	cfg := s.cfg

	s.negative = []adjustment{
		{
			feature: "newsletter",
			applies: func(f *core.MessageFeatures) bool { return f.IsNewsletter },
			points:  func(*core.MessageFeatures) float64 { return -cfg.NewsletterPenalty },
			reason:  func(*core.MessageFeatures) string { return "bulk/newsletter mail" },
		},
		{
			// calendar invites are routinely auto-generated and must not be
			// penalized for it
			feature: "autoGenerated",
			applies: func(f *core.MessageFeatures) bool { return f.IsAutoGenerated && !f.HasCalendar },
			points:  func(*core.MessageFeatures) float64 { return -cfg.AutoGeneratedPenalty },
			reason:  func(*core.MessageFeatures) string { return "auto-generated message" },
		},
		{
			feature: "otp",
			applies: func(f *core.MessageFeatures) bool { return f.OTPDetected },
			points:  func(*core.MessageFeatures) float64 { return -cfg.OTPPenalty },
			reason:  func(*core.MessageFeatures) string { return "one-time code message" },
		},
	}

	s.positive = []adjustment{
		{
			feature: "relationship",
			applies: func(f *core.MessageFeatures) bool { return f.RelationshipScore > 0 },
			points:  func(f *core.MessageFeatures) float64 { return f.RelationshipScore * cfg.RelationshipWeight },
			reason: func(f *core.MessageFeatures) string {
				return fmt.Sprintf("sender relationship score %.2f", f.RelationshipScore)
			},
		},
		{
			feature: "vip",
			applies: func(f *core.MessageFeatures) bool { return f.IsVIPSender },
			points:  func(*core.MessageFeatures) float64 { return cfg.VIPBonus },
			reason:  func(*core.MessageFeatures) string { return "sender is a VIP" },
		},
		{
			feature: "explicitAsk",
			applies: func(f *core.MessageFeatures) bool { return f.ExplicitAsk },
			points:  func(*core.MessageFeatures) float64 { return cfg.ExplicitAskBonus },
			reason:  func(*core.MessageFeatures) string { return "message asks for something" },
		},
		{
			feature: "deadline",
			applies: func(f *core.MessageFeatures) bool { return f.Deadline != nil },
			points:  func(*core.MessageFeatures) float64 { return cfg.DeadlineBonus },
			reason:  func(*core.MessageFeatures) string { return "message mentions a deadline" },
		},
		{
			feature: "imminentDeadline",
			applies: func(f *core.MessageFeatures) bool {
				return f.MinutesToDeadline != nil && *f.MinutesToDeadline < cfg.ImminentDeadlineMinutes
			},
			points: func(*core.MessageFeatures) float64 { return cfg.ImminentDeadlineBonus },
			reason: func(f *core.MessageFeatures) string {
				return fmt.Sprintf("deadline within 24h (%d minutes away)", *f.MinutesToDeadline)
			},
		},
		{
			feature: "threadYouOwe",
			applies: func(f *core.MessageFeatures) bool { return f.ThreadYouOwe },
			points:  func(*core.MessageFeatures) float64 { return cfg.ThreadOwedBonus },
			reason:  func(*core.MessageFeatures) string { return "you owe a reply in this thread" },
		},
		{
			feature: "replyNeed",
			applies: func(f *core.MessageFeatures) bool { return f.ReplyNeedProbability > cfg.ReplyNeedFloor },
			points:  func(f *core.MessageFeatures) float64 { return f.ReplyNeedProbability * cfg.ReplyNeedWeight },
			reason: func(f *core.MessageFeatures) string {
				return fmt.Sprintf("likely needs a reply (%.0f%%)", f.ReplyNeedProbability*100)
			},
		},
	}

	s.intent = []adjustment{
		{
			feature: "intentConfirm",
			applies: func(f *core.MessageFeatures) bool { return f.Intent == core.IntentConfirm },
			points:  func(*core.MessageFeatures) float64 { return cfg.ConfirmBonus },
			reason:  func(*core.MessageFeatures) string { return "confirmation intent" },
		},
		{
			feature: "intentRequest",
			applies: func(f *core.MessageFeatures) bool { return f.Intent == core.IntentRequest },
			points:  func(*core.MessageFeatures) float64 { return cfg.RequestBonus },
			reason:  func(*core.MessageFeatures) string { return "request intent" },
		},
		{
			feature: "intentSchedule",
			applies: func(f *core.MessageFeatures) bool { return f.Intent == core.IntentSchedule },
			points:  func(*core.MessageFeatures) float64 { return cfg.ScheduleBonus },
			reason:  func(*core.MessageFeatures) string { return "scheduling intent" },
		},
		{
			feature: "intentInform",
			applies: func(f *core.MessageFeatures) bool { return f.Intent == core.IntentInform },
			points:  func(*core.MessageFeatures) float64 { return -cfg.InformPenalty },
			reason:  func(*core.MessageFeatures) string { return "informational intent" },
		},
	}
}

// Score runs the five model phases over a feature record. It is a pure
// function of the features and the reference time.
func (s *Scorer) Score(f *core.MessageFeatures, now time.Time) *core.PriorityScore {
	cfg := s.cfg
	score := cfg.BaseScore
	confidence := cfg.BaseConfidence
	reasoning := []string{}
	weights := make(map[string]float64)

	apply := func(table []adjustment) {
		for _, adj := range table {
			if !adj.applies(f) {
				continue
			}
			delta := adj.points(f)
			if delta == 0 {
				continue
			}
			score += delta
			weights[adj.feature] += delta
			reasoning = append(reasoning, fmt.Sprintf("%s (%+.0f)", adj.reason(f), delta))
		}
	}

	// phase 1: negative signals
	apply(s.negative)
	if f.OTPDetected && confidence > cfg.OTPConfidenceCap {
		confidence = cfg.OTPConfidenceCap
	}

	// phase 2: positive signals
	apply(s.positive)
	if f.MinutesToDeadline != nil && *f.MinutesToDeadline < cfg.ImminentDeadlineMinutes {
		confidence += 0.1
	}

	// phase 3: intent modifiers
	apply(s.intent)

	// phase 4: special-case overrides
	if f.HasCalendar && f.CalendarStart != nil {
		untilStart := f.CalendarStart.Sub(now)
		if untilStart > 0 && untilStart <= time.Duration(cfg.CalendarWindowMinutes)*time.Minute {
			if score < float64(core.ImportantThreshold) {
				delta := float64(core.ImportantThreshold) - score
				score = float64(core.ImportantThreshold)
				weights["calendarImminent"] += delta
			}
			confidence += 0.15
			reasoning = append(reasoning, fmt.Sprintf("calendar event starts in %.0f minutes", untilStart.Minutes()))
		}
	}
	if f.Deadline != nil && f.MinutesToDeadline != nil &&
		*f.MinutesToDeadline < cfg.UrgentDeadlineMinutes && f.ExplicitAsk {
		// coarse heuristic for security-style alerts: very near deadline
		// plus an explicit ask. Confidence is lowered since this is an
		// override, not a direct signal.
		const floor = 85
		if score < floor {
			delta := float64(floor) - score
			score = floor
			weights["urgentDeadlineAsk"] += delta
		}
		confidence = 0.7
		reasoning = append(reasoning, "urgent deadline with explicit ask")
	}

	// phase 5: finalize
	final := int(math.Round(score))
	if final < 0 {
		final = 0
	}
	if final > 100 {
		final = 100
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return &core.PriorityScore{
		Score:          final,
		Category:       core.CategoryForScore(final),
		Confidence:     confidence,
		Reasoning:      reasoning,
		FeatureWeights: weights,
	}
}

// TopContributors returns up to n feature names ordered by the absolute size
// of their contribution
func TopContributors(result *core.PriorityScore, n int) []string {
	type contribution struct {
		name  string
		value float64
	}
	contributions := make([]contribution, 0, len(result.FeatureWeights))
	for name, value := range result.FeatureWeights {
		contributions = append(contributions, contribution{name, value})
	}
	sort.Slice(contributions, func(i, j int) bool {
		ai, aj := math.Abs(contributions[i].value), math.Abs(contributions[j].value)
		if ai != aj {
			return ai > aj
		}
		return contributions[i].name < contributions[j].name
	})
	if n > len(contributions) {
		n = len(contributions)
	}
	names := make([]string, 0, n)
	for _, c := range contributions[:n] {
		names = append(names, fmt.Sprintf("%s (%+.1f)", c.name, c.value))
	}
	return names
}

// Explain assembles a plain-text explanation from the reasoning list and the
// top contributors
func Explain(result *core.PriorityScore) string {
	var b strings.Builder
	fmt.Fprintf(&b, "score %d (%s), confidence %.2f", result.Score, result.Category, result.Confidence)
	if top := TopContributors(result, 3); len(top) > 0 {
		fmt.Fprintf(&b, "; top signals: %s", strings.Join(top, ", "))
	}
	for _, r := range result.Reasoning {
		b.WriteString("\n  - ")
		b.WriteString(r)
	}
	return b.String()
}
