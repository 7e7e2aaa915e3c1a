// Package features merges gate outputs, the relationship score and content
// analysis into the canonical per-message feature record.
package features

import (
	"time"

	"go.uber.org/zap"

	"github.com/mikey/mail-priority/internal/content"
	"github.com/mikey/mail-priority/internal/core"
	"github.com/mikey/mail-priority/internal/gates"
	"github.com/mikey/mail-priority/internal/relationship"
)

// Extractor orchestrates the gates, relationship scorer and content analyzer.
// Missing optional upstream data degrades to absent signals, never errors.
type Extractor struct {
	bulk         *gates.BulkGate
	calendar     *gates.CalendarGate
	otp          *gates.OTPGate
	automation   *gates.AutomationGate
	relationship *relationship.Scorer
	analyzer     *content.Analyzer
	logger       *zap.Logger
}

// NewExtractor creates a feature extractor from its component parts
func NewExtractor(
	bulk *gates.BulkGate,
	calendar *gates.CalendarGate,
	otp *gates.OTPGate,
	automation *gates.AutomationGate,
	rel *relationship.Scorer,
	analyzer *content.Analyzer,
	logger *zap.Logger,
) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		bulk:         bulk,
		calendar:     calendar,
		otp:          otp,
		automation:   automation,
		relationship: rel,
		analyzer:     analyzer,
		logger:       logger,
	}
}

// Extract builds the feature record for a message. stats and thread may be
// nil; a nil stats is scored as an unknown sender.
func (e *Extractor) Extract(email *core.Email, stats *core.InteractionStats, thread *core.ThreadContext, manualVIP bool, now time.Time) *core.MessageFeatures {
	f := &core.MessageFeatures{
		ThreadLength: 1,
	}

	bulkResult := e.bulk.Evaluate(email)
	f.IsNewsletter = bulkResult.Matched
	f.HasListUnsubscribe = email.HasHeader("list-unsubscribe")
	f.HasListID = email.HasHeader("list-id")

	autoResult := e.automation.Evaluate(email)
	f.IsAutoGenerated = autoResult.Matched
	f.HasAutoSubmitted = email.HasHeader("auto-submitted")

	calendarResult := e.calendar.Evaluate(email)
	f.HasCalendar = calendarResult.Matched
	if f.HasCalendar {
		if event := e.calendar.ExtractEvent(email); event != nil {
			f.CalendarStart = event.Start
		}
	}

	otpResult := e.otp.Evaluate(email)
	f.OTPDetected = otpResult.Matched
	if f.OTPDetected {
		age := e.otp.AgeMinutes(email, now)
		f.OTPAgeMinutes = &age
	}

	rel := e.relationship.Score(stats, manualVIP, now)
	if stats.IsEmpty() {
		e.logger.Debug("No interaction history for sender, using neutral baseline",
			zap.String("sender", email.From))
	}
	f.RelationshipScore = rel.Score
	f.IsVIPSender = rel.IsVIP

	analysis := e.analyzer.Analyze(email.Subject, email.Body, now)
	f.ExplicitAsk = analysis.HasQuestion || len(analysis.ActionItems) > 0
	f.Deadline = analysis.Deadline
	f.MinutesToDeadline = analysis.MinutesToDeadline
	f.Intent = analysis.Intent

	e.applyThread(f, thread, now)
	f.ReplyNeedProbability = replyNeedProbability(f, analysis)

	return f
}

// applyThread fills the thread-context fields. The owed-reply flag only ever
// looks at messages before the one being scored, so a brand-new thread never
// counts as owed.
func (e *Extractor) applyThread(f *core.MessageFeatures, thread *core.ThreadContext, now time.Time) {
	if thread == nil {
		return
	}
	if thread.Length > 1 {
		f.ThreadLength = thread.Length
		f.ThreadYouOwe = !thread.LastFromMe
	}
	if !thread.LastMessageAt.IsZero() && !now.Before(thread.LastMessageAt) {
		minutes := int(now.Sub(thread.LastMessageAt).Minutes())
		f.ThreadRecencyMinutes = &minutes
	}
}

// replyNeedProbability blends explicit-ask, urgency and relationship signals
// into a standalone estimate of whether the message needs a reply. It is
// deliberately not the priority score.
func replyNeedProbability(f *core.MessageFeatures, analysis core.ContentAnalysis) float64 {
	p := 0.2
	if f.ExplicitAsk {
		p += 0.3
	}
	p += float64(analysis.UrgencyLevel) / float64(10) * 0.2
	p += f.RelationshipScore * 0.2
	if f.ThreadYouOwe {
		p += 0.1
	}
	if f.IsNewsletter || f.OTPDetected {
		p -= 0.3
	}

	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
