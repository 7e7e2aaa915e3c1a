package di

import (
	"flag"
	"strings"

	"go.uber.org/dig"
	"go.uber.org/zap"

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

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Pipeline flags
	UserAddress string
	VIPList     string

	// History store flags
	HistoryType string
	SQLitePath  string
	MySQLDSN    string

	// Input flags
	InputFile  string
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	flag.StringVar(&flags.UserAddress, "user", "", "The mailbox owner's address")
	flag.StringVar(&flags.VIPList, "vip", "", "Comma-separated list of VIP addresses or domains")

	flag.StringVar(&flags.HistoryType, "history", "memory", "Interaction history store (memory, sqlite, mysql)")
	flag.StringVar(&flags.SQLitePath, "sqlite-path", "", "Path to the SQLite interaction history")
	flag.StringVar(&flags.MySQLDSN, "mysql-dsn", "", "DSN of the MySQL interaction history")

	flag.StringVar(&flags.InputFile, "file", "", "Input email file (use stdin if not specified)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	flag.Parse()
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container
// for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.NewFromFile(flags.ConfigFile)
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", flags.ConfigFile))
			return cfg, nil
		}

		// Create config from command line flags
		return createConfigFromFlags(flags), nil
	}); err != nil {
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

	// Register the in-memory message source the CLI loads the parsed
	// message into
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

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	v.Set("user.address", flags.UserAddress)
	v.Set("history.type", flags.HistoryType)
	if flags.SQLitePath != "" {
		v.Set("history.sqlite_path", flags.SQLitePath)
	}
	if flags.MySQLDSN != "" {
		v.Set("history.mysql_dsn", flags.MySQLDSN)
	}

	if flags.VIPList != "" {
		var addresses, domains []string
		for _, entry := range strings.Split(flags.VIPList, ",") {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				continue
			}
			if strings.Contains(entry, "@") {
				addresses = append(addresses, entry)
			} else {
				domains = append(domains, entry)
			}
		}
		v.Set("vip.addresses", addresses)
		v.Set("vip.domains", domains)
	}

	return config.NewFromViper(v)
}
