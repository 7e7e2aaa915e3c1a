package core

import (
	"context"
	"errors"
	"time"
)

// ErrMessageNotFound is returned when a message id cannot be resolved
var ErrMessageNotFound = errors.New("message not found")

// ErrStatsNotFound is returned when no interaction history exists for a sender
var ErrStatsNotFound = errors.New("interaction stats not found")

// MessageSource supplies raw messages and their thread context
type MessageSource interface {
	// GetMessage retrieves a message by id
	GetMessage(ctx context.Context, messageID string) (*Email, error)

	// GetThread retrieves the thread context for a message
	GetThread(ctx context.Context, messageID string) (*ThreadContext, error)
}

// InteractionSource supplies interaction history aggregates for a sender,
// bounded to the store's lookback window
type InteractionSource interface {
	// GetStats retrieves the interaction stats between a sender and the user
	GetStats(ctx context.Context, senderEmail, userEmail string) (*InteractionStats, error)
}

// ParsedDate is one date candidate found by a date parser, with its position
// in the source text
type ParsedDate struct {
	Time time.Time
	Pos  int
	Text string
}

// DateParser finds date phrases in free text relative to a reference time
type DateParser interface {
	// Parse returns all date candidates found in the text
	Parse(text string, ref time.Time) []ParsedDate
}

// VIPChecker reports whether a sender is manually flagged as important
type VIPChecker interface {
	IsVIP(address string) bool
}

// FeatureExtractor merges gate, relationship, content and thread signals
// into one feature record
type FeatureExtractor interface {
	Extract(email *Email, stats *InteractionStats, thread *ThreadContext, manualVIP bool, now time.Time) *MessageFeatures
}

// Scorer turns a feature record into a priority score
type Scorer interface {
	Score(features *MessageFeatures, now time.Time) *PriorityScore
}
