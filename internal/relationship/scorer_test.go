package relationship

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mikey/mail-priority/internal/core"
)

func TestUnknownSenderGetsNeutralBaseline(t *testing.T) {
	s := NewScorer(DefaultConfig())
	now := time.Now()

	result := s.Score(nil, false, now)
	assert.Equal(t, 0.5, result.Score)
	assert.False(t, result.IsVIP)

	result = s.Score(&core.InteractionStats{}, false, now)
	assert.Equal(t, 0.5, result.Score)
}

func TestReplyFrequencyPeaksAtHalf(t *testing.T) {
	s := NewScorer(DefaultConfig())
	now := time.Now()

	half := s.Score(&core.InteractionStats{EmailsReceived: 10, UserReplies: 5, LastContact: now}, false, now)
	assert.Equal(t, 1.0, half.Components.ReplyFrequency)

	never := s.Score(&core.InteractionStats{EmailsReceived: 10, LastContact: now}, false, now)
	assert.Equal(t, 0.0, never.Components.ReplyFrequency)

	// always replying reads the same as never replying
	always := s.Score(&core.InteractionStats{EmailsReceived: 10, UserReplies: 10, LastContact: now}, false, now)
	assert.Equal(t, never.Components.ReplyFrequency, always.Components.ReplyFrequency)
}

func TestTwoWayExchangeCapsAtHalfRate(t *testing.T) {
	s := NewScorer(DefaultConfig())
	now := time.Now()

	// 5 exchanges over 10 total messages is already maximal
	result := s.Score(&core.InteractionStats{EmailsReceived: 6, EmailsSent: 4, TwoWayExchanges: 5, LastContact: now}, false, now)
	assert.Equal(t, 1.0, result.Components.TwoWayExchanges)

	result = s.Score(&core.InteractionStats{EmailsReceived: 6, EmailsSent: 4, TwoWayExchanges: 2, LastContact: now}, false, now)
	assert.InDelta(t, 0.4, result.Components.TwoWayExchanges, 1e-9)
}

func TestRecencyDecays(t *testing.T) {
	s := NewScorer(DefaultConfig())
	now := time.Now()

	fresh := s.Score(&core.InteractionStats{EmailsReceived: 1, LastContact: now}, false, now)
	assert.InDelta(t, 1.0, fresh.Components.Recency, 1e-6)

	aged := s.Score(&core.InteractionStats{EmailsReceived: 1, LastContact: now.Add(-90 * 24 * time.Hour)}, false, now)
	assert.InDelta(t, math.Exp(-1), aged.Components.Recency, 1e-6)

	noContact := s.Score(&core.InteractionStats{EmailsReceived: 1}, false, now)
	assert.Equal(t, 0.0, noContact.Components.Recency)
}

func TestVolumeSweetSpotCurve(t *testing.T) {
	s := NewScorer(DefaultConfig())
	now := time.Now()

	volume := func(received int) float64 {
		r := s.Score(&core.InteractionStats{EmailsReceived: received, LastContact: now}, false, now)
		return r.Components.Volume
	}

	assert.InDelta(t, 0.6, volume(3), 1e-9)
	assert.Equal(t, 1.0, volume(5))
	assert.Equal(t, 1.0, volume(50))
	assert.InDelta(t, 0.5, volume(100), 1e-9)
	assert.Equal(t, 0.0, volume(200))
}

func TestManualVIPComponent(t *testing.T) {
	s := NewScorer(DefaultConfig())
	now := time.Now()
	stats := &core.InteractionStats{EmailsReceived: 10, UserReplies: 5, LastContact: now}

	plain := s.Score(stats, false, now)
	vip := s.Score(stats, true, now)

	assert.True(t, vip.IsVIP)
	assert.Equal(t, 1.0, vip.Components.ManualVIP)
	assert.InDelta(t, 0.10, vip.Score-plain.Score, 1e-9)
}

func TestWeightsSumToOne(t *testing.T) {
	cfg := DefaultConfig()
	sum := cfg.ReplyFrequencyWeight + cfg.TwoWayWeight + cfg.RecencyWeight + cfg.VolumeWeight + cfg.ManualVIPWeight
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestScoreStaysInRange(t *testing.T) {
	s := NewScorer(DefaultConfig())
	now := time.Now()

	// everything maxed out
	result := s.Score(&core.InteractionStats{
		EmailsReceived:  10,
		EmailsSent:      10,
		UserReplies:     5,
		SenderReplies:   5,
		TwoWayExchanges: 10,
		LastContact:     now,
	}, true, now)

	assert.LessOrEqual(t, result.Score, 1.0)
	assert.GreaterOrEqual(t, result.Score, 0.0)
}
