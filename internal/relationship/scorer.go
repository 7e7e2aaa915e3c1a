// Package relationship converts a sender's interaction history into a 0..1
// importance score.
package relationship

import (
	"math"
	"time"

	"github.com/mikey/mail-priority/internal/core"
)

// Config holds the component weights and curve parameters for the scorer.
// The five weights must sum to 1.0.
type Config struct {
	ReplyFrequencyWeight float64
	TwoWayWeight         float64
	RecencyWeight        float64
	VolumeWeight         float64
	ManualVIPWeight      float64

	RecencyDecayDays float64 // e-folding time of the recency component

	VolumeRampCount  int // received count at which volume reaches 1.0
	VolumeFlatCount  int // upper bound of the flat 1.0 band
	VolumeFadeToZero int // received count at which volume decays back to 0
}

// DefaultConfig returns the standard scorer configuration
func DefaultConfig() Config {
	return Config{
		ReplyFrequencyWeight: 0.35,
		TwoWayWeight:         0.25,
		RecencyWeight:        0.20,
		VolumeWeight:         0.10,
		ManualVIPWeight:      0.10,
		RecencyDecayDays:     90,
		VolumeRampCount:      5,
		VolumeFlatCount:      50,
		VolumeFadeToZero:     150,
	}
}

// neutralBaseline is returned for senders with no interaction history in
// either direction, so first-time senders are not penalized toward zero
const neutralBaseline = 0.5

// Scorer computes relationship scores from interaction stats
type Scorer struct {
	cfg Config
}

// NewScorer creates a relationship scorer. A zero-valued config falls back
// to the defaults.
func NewScorer(cfg Config) *Scorer {
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	return &Scorer{cfg: cfg}
}

// Score computes the relationship score for a sender. A sender with zero
// interactions in either direction bypasses the weighted sum and gets the
// neutral baseline.
func (s *Scorer) Score(stats *core.InteractionStats, manualVIP bool, now time.Time) core.RelationshipScore {
	if stats.IsEmpty() {
		return core.RelationshipScore{
			Score: neutralBaseline,
			IsVIP: manualVIP,
			Components: core.RelationshipComponents{
				ManualVIP: boolScore(manualVIP),
			},
		}
	}

	components := core.RelationshipComponents{
		ReplyFrequency:  s.replyFrequency(stats),
		TwoWayExchanges: s.twoWayExchanges(stats),
		Recency:         s.recency(stats, now),
		Volume:          s.volume(stats),
		ManualVIP:       boolScore(manualVIP),
	}

	score := components.ReplyFrequency*s.cfg.ReplyFrequencyWeight +
		components.TwoWayExchanges*s.cfg.TwoWayWeight +
		components.Recency*s.cfg.RecencyWeight +
		components.Volume*s.cfg.VolumeWeight +
		components.ManualVIP*s.cfg.ManualVIPWeight

	return core.RelationshipScore{
		Score:      clamp01(score),
		IsVIP:      manualVIP,
		Components: components,
	}
}

// replyFrequency peaks at a 50% user-reply ratio and decays linearly toward
// both extremes. Never replying and always replying are both treated as
// low-engagement signals.
func (s *Scorer) replyFrequency(stats *core.InteractionStats) float64 {
	if stats.EmailsReceived == 0 {
		return 0
	}
	ratio := float64(stats.UserReplies) / float64(stats.EmailsReceived)
	return math.Max(0, 1-2*math.Abs(ratio-0.5))
}

// twoWayExchanges is the bidirectional exchange ratio scaled so that a 50%
// exchange rate is already maximal
func (s *Scorer) twoWayExchanges(stats *core.InteractionStats) float64 {
	total := stats.EmailsReceived + stats.EmailsSent
	if total == 0 {
		return 0
	}
	return math.Min(1, 2*float64(stats.TwoWayExchanges)/float64(total))
}

// recency decays exponentially from the most recent contact
func (s *Scorer) recency(stats *core.InteractionStats, now time.Time) float64 {
	if stats.LastContact.IsZero() {
		return 0
	}
	days := now.Sub(stats.LastContact).Hours() / 24
	if days < 0 {
		days = 0
	}
	return math.Exp(-days / s.cfg.RecencyDecayDays)
}

// volume follows a sweet-spot curve: ramp up to the flat band, then decay so
// that newsletter-like over-volume reads as a negative signal
func (s *Scorer) volume(stats *core.InteractionStats) float64 {
	received := stats.EmailsReceived
	switch {
	case received <= 0:
		return 0
	case received < s.cfg.VolumeRampCount:
		return float64(received) / float64(s.cfg.VolumeRampCount)
	case received <= s.cfg.VolumeFlatCount:
		return 1.0
	case received < s.cfg.VolumeFadeToZero:
		span := float64(s.cfg.VolumeFadeToZero - s.cfg.VolumeFlatCount)
		return math.Max(0, 1-float64(received-s.cfg.VolumeFlatCount)/span)
	default:
		return 0
	}
}

func boolScore(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
