package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Batch parallelism bounds. The hard cap keeps batch scoring from
// overwhelming the interaction history store.
const (
	DefaultBatchParallelism = 10
	MaxBatchParallelism     = 50
)

// BatchError is a per-message failure inside a batch run
type BatchError struct {
	MessageID string
	Err       error
}

// BatchResult carries the partial results of a batch run. A batch never
// fails as a whole; failed messages are reported in Errors.
type BatchResult struct {
	Results []*PriorityScore
	Errors  []BatchError
	Elapsed time.Duration
}

// TextPreprocessor normalizes body text before analysis
type TextPreprocessor interface {
	ProcessText(text string, maxSize int) string
}

// PriorityService is the scoring pipeline entry point for callers
type PriorityService struct {
	source      MessageSource
	history     InteractionSource
	extractor   FeatureExtractor
	scorer      Scorer
	vip         VIPChecker
	text        TextPreprocessor
	logger      *zap.Logger
	userEmail   string
	maxBodySize int
	now         func() time.Time
}

// NewPriorityService creates the scoring service
func NewPriorityService(
	source MessageSource,
	history InteractionSource,
	extractor FeatureExtractor,
	scorer Scorer,
	vip VIPChecker,
	text TextPreprocessor,
	logger *zap.Logger,
	userEmail string,
	maxBodySize int,
) *PriorityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PriorityService{
		source:      source,
		history:     history,
		extractor:   extractor,
		scorer:      scorer,
		vip:         vip,
		text:        text,
		logger:      logger,
		userEmail:   userEmail,
		maxBodySize: maxBodySize,
		now:         time.Now,
	}
}

// Score runs the full pipeline for one message
func (s *PriorityService) Score(ctx context.Context, messageID string) (*PriorityScore, error) {
	email, err := s.source.GetMessage(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to load message %s: %w", messageID, err)
	}

	now := s.now()

	// thread context and interaction history are both best-effort: a flaky
	// store degrades scoring quality, it never fails the message
	thread, err := s.source.GetThread(ctx, messageID)
	if err != nil {
		s.logger.Warn("Failed to load thread context, scoring without it",
			zap.String("message_id", messageID),
			zap.Error(err))
		thread = nil
	}

	stats, err := s.history.GetStats(ctx, email.From, s.userEmail)
	if err != nil {
		s.logger.Warn("Failed to load interaction stats, treating sender as unknown",
			zap.String("sender", email.From),
			zap.Error(err))
		stats = nil
	}

	manualVIP := s.vip != nil && s.vip.IsVIP(email.From)

	if s.text != nil && s.maxBodySize > 0 {
		processed := *email
		processed.Body = s.text.ProcessText(email.Body, s.maxBodySize)
		email = &processed
	}

	features := s.extractor.Extract(email, stats, thread, manualVIP, now)
	result := s.scorer.Score(features, now)
	result.MessageID = messageID
	result.ScoredAt = now
	result.ProcessingID = uuid.New().String()

	s.logger.Info("Scored message",
		zap.String("message_id", messageID),
		zap.Int("score", result.Score),
		zap.String("category", string(result.Category)),
		zap.Float64("confidence", result.Confidence))

	return result, nil
}

// ScoreMany scores a batch of messages concurrently. Parallelism is clamped
// to [1, MaxBatchParallelism]; a non-positive value selects the default.
// Per-message failures are collected, never fatal to the batch.
func (s *PriorityService) ScoreMany(ctx context.Context, messageIDs []string, parallelism int) *BatchResult {
	if parallelism <= 0 {
		parallelism = DefaultBatchParallelism
	}
	if parallelism > MaxBatchParallelism {
		parallelism = MaxBatchParallelism
	}

	start := s.now()
	results := make([]*PriorityScore, len(messageIDs))

	var mu sync.Mutex
	var batchErrors []BatchError

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, id := range messageIDs {
		i, id := i, id
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				mu.Lock()
				batchErrors = append(batchErrors, BatchError{MessageID: id, Err: err})
				mu.Unlock()
				return nil
			}
			result, err := s.Score(ctx, id)
			if err != nil {
				s.logger.Warn("Failed to score message in batch",
					zap.String("message_id", id),
					zap.Error(err))
				mu.Lock()
				batchErrors = append(batchErrors, BatchError{MessageID: id, Err: err})
				mu.Unlock()
				return nil
			}
			results[i] = result
			return nil
		})
	}
	// closures never return errors; failures are collected per message
	_ = g.Wait()

	compacted := make([]*PriorityScore, 0, len(messageIDs))
	for _, r := range results {
		if r != nil {
			compacted = append(compacted, r)
		}
	}

	batch := &BatchResult{
		Results: compacted,
		Errors:  batchErrors,
		Elapsed: s.now().Sub(start),
	}

	s.logger.Info("Scored message batch",
		zap.Int("requested", len(messageIDs)),
		zap.Int("scored", len(batch.Results)),
		zap.Int("failed", len(batch.Errors)),
		zap.Int("parallelism", parallelism),
		zap.Duration("elapsed", batch.Elapsed))

	return batch
}
