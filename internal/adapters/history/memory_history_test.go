package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/mail-priority/internal/core"
)

const (
	sender = "alice@example.com"
	user   = "me@corp.example"
)

func record(t *testing.T, h *MemoryHistory, direction string, isReply bool, occurredAt time.Time, latency *float64) {
	t.Helper()
	err := h.RecordMessage(context.Background(), &core.MessageLogEntry{
		SenderEmail:         sender,
		UserEmail:           user,
		Direction:           direction,
		IsReply:             isReply,
		ReplyLatencyMinutes: latency,
		OccurredAt:          occurredAt,
	})
	require.NoError(t, err)
}

func floatPtr(v float64) *float64 { return &v }

func TestGetStatsAggregates(t *testing.T) {
	h := NewMemoryHistory(nil, 0)
	now := time.Now()

	record(t, h, core.DirectionInbound, false, now.Add(-72*time.Hour), nil)
	record(t, h, core.DirectionOutbound, true, now.Add(-71*time.Hour), floatPtr(60))
	record(t, h, core.DirectionInbound, true, now.Add(-48*time.Hour), nil)
	record(t, h, core.DirectionOutbound, true, now.Add(-47*time.Hour), floatPtr(120))
	record(t, h, core.DirectionInbound, true, now.Add(-time.Hour), nil)

	stats, err := h.GetStats(context.Background(), sender, user)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.EmailsReceived)
	assert.Equal(t, 2, stats.EmailsSent)
	assert.Equal(t, 2, stats.UserReplies)
	assert.Equal(t, 2, stats.SenderReplies)
	assert.Equal(t, 2, stats.TwoWayExchanges)
	assert.InDelta(t, 90.0, stats.AvgReplyMinutes, 1e-9)
	assert.WithinDuration(t, now.Add(-72*time.Hour), stats.FirstContact, time.Second)
	assert.WithinDuration(t, now.Add(-time.Hour), stats.LastContact, time.Second)
}

func TestGetStatsLookbackWindow(t *testing.T) {
	h := NewMemoryHistory(nil, DefaultLookback)
	now := time.Now()

	// ~200 days old, outside the 180 day window
	record(t, h, core.DirectionInbound, false, now.Add(-200*24*time.Hour), nil)
	record(t, h, core.DirectionInbound, false, now.Add(-time.Hour), nil)

	stats, err := h.GetStats(context.Background(), sender, user)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.EmailsReceived)
}

func TestGetStatsUnknownSender(t *testing.T) {
	h := NewMemoryHistory(nil, 0)

	stats, err := h.GetStats(context.Background(), "stranger@example.com", user)
	require.NoError(t, err)
	assert.True(t, stats.IsEmpty())
}

func TestGetStatsKeyIsCaseInsensitive(t *testing.T) {
	h := NewMemoryHistory(nil, 0)
	record(t, h, core.DirectionInbound, false, time.Now(), nil)

	stats, err := h.GetStats(context.Background(), "ALICE@Example.com", "ME@corp.example")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.EmailsReceived)
}

func TestTwoWayExchangesBoundedByLaggingSide(t *testing.T) {
	h := NewMemoryHistory(nil, 0)
	now := time.Now()

	// the user replied three times but the sender only once
	for i := 0; i < 3; i++ {
		record(t, h, core.DirectionOutbound, true, now.Add(-time.Duration(i)*time.Hour), floatPtr(30))
	}
	record(t, h, core.DirectionInbound, true, now, nil)

	stats, err := h.GetStats(context.Background(), sender, user)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TwoWayExchanges)
}
