// Package history provides InteractionSource implementations backed by an
// in-memory map, SQLite or MySQL.
package history

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/mail-priority/internal/core"
)

// DefaultLookback bounds how far back interaction aggregates reach. Older
// interactions should not dominate the relationship score.
const DefaultLookback = 180 * 24 * time.Hour

// MemoryHistory is an in-memory InteractionSource, useful for the CLI and
// for tests
type MemoryHistory struct {
	mu       sync.RWMutex
	entries  map[string][]core.MessageLogEntry
	logger   *zap.Logger
	lookback time.Duration
}

// NewMemoryHistory creates a new in-memory interaction history
func NewMemoryHistory(logger *zap.Logger, lookback time.Duration) *MemoryHistory {
	if logger == nil {
		logger = zap.NewNop()
	}
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	return &MemoryHistory{
		entries:  make(map[string][]core.MessageLogEntry),
		logger:   logger,
		lookback: lookback,
	}
}

// RecordMessage appends one interaction to the log
func (h *MemoryHistory) RecordMessage(_ context.Context, entry *core.MessageLogEntry) error {
	key := historyKey(entry.SenderEmail, entry.UserEmail)
	h.mu.Lock()
	h.entries[key] = append(h.entries[key], *entry)
	h.mu.Unlock()
	return nil
}

// GetStats aggregates the recorded interactions within the lookback window
func (h *MemoryHistory) GetStats(_ context.Context, senderEmail, userEmail string) (*core.InteractionStats, error) {
	h.mu.RLock()
	entries := h.entries[historyKey(senderEmail, userEmail)]
	h.mu.RUnlock()

	cutoff := time.Now().Add(-h.lookback)
	stats := &core.InteractionStats{}
	var latencySum float64
	var latencyCount int

	for _, e := range entries {
		if e.OccurredAt.Before(cutoff) {
			continue
		}
		switch e.Direction {
		case core.DirectionInbound:
			stats.EmailsReceived++
			if e.IsReply {
				stats.SenderReplies++
			}
		case core.DirectionOutbound:
			stats.EmailsSent++
			if e.IsReply {
				stats.UserReplies++
				if e.ReplyLatencyMinutes != nil {
					latencySum += *e.ReplyLatencyMinutes
					latencyCount++
				}
			}
		}
		if stats.FirstContact.IsZero() || e.OccurredAt.Before(stats.FirstContact) {
			stats.FirstContact = e.OccurredAt
		}
		if e.OccurredAt.After(stats.LastContact) {
			stats.LastContact = e.OccurredAt
		}
	}

	stats.TwoWayExchanges = twoWayExchanges(stats.UserReplies, stats.SenderReplies)
	if latencyCount > 0 {
		stats.AvgReplyMinutes = latencySum / float64(latencyCount)
	}

	return stats, nil
}

// twoWayExchanges counts completed back-and-forth rounds: an exchange needs a
// reply in each direction, so the smaller reply count bounds it
func twoWayExchanges(userReplies, senderReplies int) int {
	if userReplies < senderReplies {
		return userReplies
	}
	return senderReplies
}

func historyKey(senderEmail, userEmail string) string {
	return strings.ToLower(senderEmail) + "|" + strings.ToLower(userEmail)
}
