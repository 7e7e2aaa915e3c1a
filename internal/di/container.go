package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/mail-priority/internal/adapters/dates"
	"github.com/mikey/mail-priority/internal/adapters/source"
	"github.com/mikey/mail-priority/internal/config"
	"github.com/mikey/mail-priority/internal/core"
	"github.com/mikey/mail-priority/internal/factory"
	"github.com/mikey/mail-priority/internal/features"
	"github.com/mikey/mail-priority/internal/logging"
	"github.com/mikey/mail-priority/internal/scorer"
	"github.com/mikey/mail-priority/internal/utils"
	"github.com/mikey/mail-priority/internal/vip"
)

// BuildContainer creates and configures a dependency injection container for
// a hosting service
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewHistoryFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewPipelineFactory); err != nil {
		return nil, err
	}

	// Register interaction history source
	if err := container.Provide(func(f *factory.HistoryFactory) (core.InteractionSource, error) {
		return f.CreateInteractionSource()
	}); err != nil {
		return nil, err
	}

	// Register a message source; hosting services typically replace this
	// with their own mail store
	if err := container.Provide(source.NewMemorySource); err != nil {
		return nil, err
	}
	if err := container.Provide(func(s *source.MemorySource) core.MessageSource { return s }); err != nil {
		return nil, err
	}

	// Register pipeline components
	if err := container.Provide(func(f *factory.PipelineFactory) (*features.Extractor, error) {
		return f.CreateExtractor()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.PipelineFactory) *scorer.Scorer {
		return f.CreateScorer()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.PipelineFactory) *dates.WhenParser {
		return f.CreateDateParser()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.PipelineFactory) *vip.Checker {
		return f.CreateVIPChecker()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.PipelineFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register the priority service
	if err := container.Provide(func(
		src core.MessageSource,
		history core.InteractionSource,
		extractor *features.Extractor,
		priorityScorer *scorer.Scorer,
		vipChecker *vip.Checker,
		text *utils.TextProcessor,
		cfg *config.Config,
		logger *zap.Logger,
	) *core.PriorityService {
		return core.NewPriorityService(
			src,
			history,
			extractor,
			priorityScorer,
			vipChecker,
			text,
			logger,
			cfg.GetUser().Address,
			cfg.GetScoring().MaxBodySize,
		)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
