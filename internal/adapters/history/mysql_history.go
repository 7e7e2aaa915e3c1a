package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/mikey/mail-priority/internal/core"
)

// MySQLHistory is a MySQL-backed InteractionSource for hosted deployments
type MySQLHistory struct {
	db        *sql.DB
	logger    *zap.Logger
	lookback  time.Duration
	pruneFreq time.Duration
	stopCh    chan struct{}
}

// NewMySQLHistory connects to MySQL and initializes the interaction log
func NewMySQLHistory(dsn string, logger *zap.Logger, lookback, pruneFreq time.Duration) (*MySQLHistory, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS message_log (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			sender_email VARCHAR(255) NOT NULL,
			user_email VARCHAR(255) NOT NULL,
			direction ENUM('in', 'out') NOT NULL,
			is_reply BOOLEAN NOT NULL DEFAULT FALSE,
			reply_latency_minutes DOUBLE,
			occurred_at TIMESTAMP NOT NULL,
			INDEX idx_message_log_pair (sender_email, user_email, occurred_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create message_log table: %w", err)
	}

	if lookback <= 0 {
		lookback = DefaultLookback
	}

	h := &MySQLHistory{
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
func (h *MySQLHistory) RecordMessage(ctx context.Context, entry *core.MessageLogEntry) error {
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO message_log (sender_email, user_email, direction, is_reply, reply_latency_minutes, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.SenderEmail, entry.UserEmail, entry.Direction, entry.IsReply, entry.ReplyLatencyMinutes, entry.OccurredAt.UTC())

	if err != nil {
		return fmt.Errorf("failed to record message: %w", err)
	}
	return nil
}

// GetStats aggregates the interaction log for a sender within the lookback
// window
func (h *MySQLHistory) GetStats(ctx context.Context, senderEmail, userEmail string) (*core.InteractionStats, error) {
	cutoff := time.Now().Add(-h.lookback).UTC()

	var (
		received, sent, userReplies, senderReplies int
		firstContact, lastContact                  sql.NullTime
		avgLatency                                 sql.NullFloat64
	)

	err := h.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(direction = 'in'), 0),
			COALESCE(SUM(direction = 'out'), 0),
			COALESCE(SUM(direction = 'out' AND is_reply), 0),
			COALESCE(SUM(direction = 'in' AND is_reply), 0),
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
		stats.FirstContact = firstContact.Time
	}
	if lastContact.Valid {
		stats.LastContact = lastContact.Time
	}
	if avgLatency.Valid {
		stats.AvgReplyMinutes = avgLatency.Float64
	}

	return stats, nil
}

// Prune deletes log rows older than the lookback window
func (h *MySQLHistory) Prune(ctx context.Context) error {
	cutoff := time.Now().Add(-h.lookback).UTC()
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
func (h *MySQLHistory) startPruneTask() {
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
func (h *MySQLHistory) Stop() {
	close(h.stopCh)
	if err := h.db.Close(); err != nil {
		h.logger.Error("Failed to close MySQL connection", zap.Error(err))
	}
}
