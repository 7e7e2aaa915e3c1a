package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mikey/mail-priority/internal/adapters/history"
	"github.com/mikey/mail-priority/internal/config"
	"github.com/mikey/mail-priority/internal/core"
)

// HistoryFactory creates interaction history sources based on configuration
type HistoryFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewHistoryFactory creates a new history factory
func NewHistoryFactory(cfg *config.Config, logger *zap.Logger) *HistoryFactory {
	return &HistoryFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateInteractionSource creates an interaction source based on the
// configuration
func (f *HistoryFactory) CreateInteractionSource() (core.InteractionSource, error) {
	historyCfg := f.cfg.GetHistory()

	lookback, err := f.cfg.GetDuration("history.lookback")
	if err != nil {
		return nil, fmt.Errorf("invalid history lookback: %w", err)
	}
	pruneFreq, err := f.cfg.GetDuration("history.prune_frequency")
	if err != nil {
		return nil, fmt.Errorf("invalid history prune frequency: %w", err)
	}

	switch historyCfg.Type {
	case "memory":
		return history.NewMemoryHistory(f.logger, lookback), nil
	case "sqlite":
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(historyCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return history.NewSQLiteHistory(historyCfg.SQLitePath, f.logger, lookback, pruneFreq)
	case "mysql":
		return history.NewMySQLHistory(historyCfg.MySQLDSN, f.logger, lookback, pruneFreq)
	default:
		return nil, fmt.Errorf("unsupported history store type: %s", historyCfg.Type)
	}
}
