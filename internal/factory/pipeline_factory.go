package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/mail-priority/internal/adapters/dates"
	"github.com/mikey/mail-priority/internal/config"
	"github.com/mikey/mail-priority/internal/content"
	"github.com/mikey/mail-priority/internal/features"
	"github.com/mikey/mail-priority/internal/gates"
	"github.com/mikey/mail-priority/internal/relationship"
	"github.com/mikey/mail-priority/internal/scorer"
	"github.com/mikey/mail-priority/internal/utils"
	"github.com/mikey/mail-priority/internal/vip"
)

// PipelineFactory builds the scoring pipeline components from configuration
type PipelineFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewPipelineFactory creates a new pipeline factory
func NewPipelineFactory(cfg *config.Config, logger *zap.Logger) *PipelineFactory {
	return &PipelineFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateExtractor creates the feature extractor with all its gates and
// analyzers wired in
func (f *PipelineFactory) CreateExtractor() (*features.Extractor, error) {
	otpWindow, err := f.cfg.GetDuration("gates.otp.expiry_window")
	if err != nil {
		return nil, fmt.Errorf("invalid otp expiry window: %w", err)
	}

	relCfg := f.cfg.GetRelationship()
	relScorer := relationship.NewScorer(relationship.Config{
		ReplyFrequencyWeight: relCfg.ReplyFrequencyWeight,
		TwoWayWeight:         relCfg.TwoWayWeight,
		RecencyWeight:        relCfg.RecencyWeight,
		VolumeWeight:         relCfg.VolumeWeight,
		ManualVIPWeight:      relCfg.ManualVIPWeight,
		RecencyDecayDays:     relCfg.RecencyDecayDays,
		VolumeRampCount:      relationship.DefaultConfig().VolumeRampCount,
		VolumeFlatCount:      relationship.DefaultConfig().VolumeFlatCount,
		VolumeFadeToZero:     relationship.DefaultConfig().VolumeFadeToZero,
	})

	analyzer := content.NewAnalyzer(f.CreateDateParser(), f.logger)

	return features.NewExtractor(
		gates.NewBulkGate(),
		gates.NewCalendarGate(),
		gates.NewOTPGate(otpWindow),
		gates.NewAutomationGate(),
		relScorer,
		analyzer,
		f.logger,
	), nil
}

// CreateScorer creates the priority scorer
func (f *PipelineFactory) CreateScorer() *scorer.Scorer {
	return scorer.NewScorer(scorer.DefaultConfig())
}

// CreateDateParser creates the date-phrase parser
func (f *PipelineFactory) CreateDateParser() *dates.WhenParser {
	return dates.NewWhenParser(f.logger)
}

// CreateVIPChecker creates the manual VIP checker from the configured lists
func (f *PipelineFactory) CreateVIPChecker() *vip.Checker {
	vipCfg := f.cfg.GetVIP()
	return vip.NewChecker(vipCfg.Addresses, vipCfg.Domains, f.logger)
}

// CreateTextProcessor creates the body preprocessor
func (f *PipelineFactory) CreateTextProcessor() *utils.TextProcessor {
	return utils.NewTextProcessor(f.logger)
}
