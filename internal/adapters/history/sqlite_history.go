package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/mikey/mail-priority/internal/core"
)

// SQLiteHistory is a SQLite-backed InteractionSource. It aggregates a
// message log on read and prunes rows past the lookback window in the
// background.
type SQLiteHistory struct {
	db        *sql.DB
	logger    *zap.Logger
	lookback  time.Duration
	pruneFreq time.Duration
	stopCh    chan struct{}
}

// NewSQLiteHistory opens (and if needed initializes) a SQLite interaction log
func NewSQLiteHistory(dbPath string, logger *zap.Logger, lookback, pruneFreq time.Duration) (*SQLiteHistory, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS message_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sender_email TEXT NOT NULL,
			user_email TEXT NOT NULL,
			direction TEXT NOT NULL CHECK (direction IN ('in', 'out')),
			is_reply BOOLEAN NOT NULL DEFAULT 0,
			reply_latency_minutes REAL,
			occurred_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create message_log table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_message_log_pair
		ON message_log(sender_email, user_email, occurred_at)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create message_log index: %w", err)
	}

	if lookback <= 0 {
		lookback = DefaultLookback
	}

	h := &SQLiteHistory{
		db:        db,
		logger:    logger,
		lookback:  lookback,
		pruneFreq: pruneFreq,
		stopCh:    make(chan struct{}),
	}

	if pruneFreq > 0 {
		go h.startPruneTask()
	}

	return h, nil
}

// RecordMessage appends one interaction to the log
func (h *SQLiteHistory) RecordMessage(ctx context.Context, entry *core.MessageLogEntry) error {
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO message_log (sender_email, user_email, direction, is_reply, reply_latency_minutes, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.SenderEmail, entry.UserEmail, entry.Direction, entry.IsReply, entry.ReplyLatencyMinutes, entry.OccurredAt.UTC().Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("failed to record message: %w", err)
	}
	return nil
}

// GetStats aggregates the interaction log for a sender within the lookback
// window
func (h *SQLiteHistory) GetStats(ctx context.Context, senderEmail, userEmail string) (*core.InteractionStats, error) {
	cutoff := time.Now().Add(-h.lookback).UTC().Format(time.RFC3339)

	var (
		received, sent, userReplies, senderReplies int
		firstContact, lastContact                  sql.NullString
		avgLatency                                 sql.NullFloat64
	)

	err := h.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN direction = 'in' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN direction = 'out' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN direction = 'out' AND is_reply THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN direction = 'in' AND is_reply THEN 1 ELSE 0 END), 0),
			MIN(occurred_at),
			MAX(occurred_at),
			AVG(CASE WHEN direction = 'out' AND is_reply THEN reply_latency_minutes END)
		FROM message_log
		WHERE sender_email = ? AND user_email = ? AND occurred_at > ?
	`, senderEmail, userEmail, cutoff).Scan(
		&received, &sent, &userReplies, &senderReplies,
		&firstContact, &lastContact, &avgLatency,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate interaction stats: %w", err)
	}

	stats := &core.InteractionStats{
		EmailsReceived:  received,
		EmailsSent:      sent,
		UserReplies:     userReplies,
		SenderReplies:   senderReplies,
		TwoWayExchanges: twoWayExchanges(userReplies, senderReplies),
	}
	if firstContact.Valid {
		if t, err := time.Parse(time.RFC3339, firstContact.String); err == nil {
			stats.FirstContact = t
		}
	}
	if lastContact.Valid {
		if t, err := time.Parse(time.RFC3339, lastContact.String); err == nil {
			stats.LastContact = t
		}
	}
	if avgLatency.Valid {
		stats.AvgReplyMinutes = avgLatency.Float64
	}

	return stats, nil
}

// Prune deletes log rows older than the lookback window
func (h *SQLiteHistory) Prune(ctx context.Context) error {
	cutoff := time.Now().Add(-h.lookback).UTC().Format(time.RFC3339)
	result, err := h.db.ExecContext(ctx, `DELETE FROM message_log WHERE occurred_at <= ?`, cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune message log: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		h.logger.Warn("Failed to get rows affected during prune", zap.Error(err))
	} else if rowsAffected > 0 {
		h.logger.Debug("Pruned aged-out interaction rows", zap.Int64("pruned", rowsAffected))
	}

	return nil
}

// startPruneTask runs Prune on the configured frequency until Stop is called
func (h *SQLiteHistory) startPruneTask() {
	ticker := time.NewTicker(h.pruneFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := h.Prune(context.Background()); err != nil {
				h.logger.Error("Failed to prune interaction log", zap.Error(err))
			}
		case <-h.stopCh:
			return
		}
	}
}

// Stop stops the background prune task and closes the database
func (h *SQLiteHistory) Stop() {
	close(h.stopCh)
	if err := h.db.Close(); err != nil {
		h.logger.Error("Failed to close SQLite database", zap.Error(err))
	}
}
