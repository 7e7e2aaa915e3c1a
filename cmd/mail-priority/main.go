package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/mail-priority/internal/adapters/source"
	"github.com/mikey/mail-priority/internal/core"
	"github.com/mikey/mail-priority/internal/di"
	"github.com/mikey/mail-priority/internal/scorer"
)

func main() {
	flags := di.ParseFlags()

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build container: %v\n", err)
		os.Exit(1)
	}

	err = container.Invoke(func(
		svc *core.PriorityService,
		src *source.MemorySource,
		logger *zap.Logger,
	) {
		defer logger.Sync()

		// Read email from file or stdin
		var emailReader io.Reader
		if flags.InputFile != "" {
			file, err := os.Open(flags.InputFile)
			if err != nil {
				logger.Fatal("Failed to open input file", zap.Error(err), zap.String("file", flags.InputFile))
			}
			defer file.Close()
			emailReader = file
			logger.Info("Reading email from file", zap.String("file", flags.InputFile))
		} else {
			emailReader = os.Stdin
			logger.Info("Reading email from stdin")
		}

		email, err := source.ParseMessage(bufio.NewReader(emailReader), "cli-message", time.Now())
		if err != nil {
			logger.Fatal("Failed to parse email", zap.Error(err))
		}
		src.Add(email, nil)

		// Print email summary
		fmt.Printf("\n=== Email Summary ===\n")
		fmt.Printf("From: %s\n", email.From)
		fmt.Printf("Subject: %s\n", email.Subject)
		fmt.Printf("Body length: %d bytes\n", len(email.Body))
		fmt.Printf("\n")

		startTime := time.Now()
		result, err := svc.Score(context.Background(), email.ID)
		if err != nil {
			logger.Fatal("Failed to score email", zap.Error(err))
		}
		duration := time.Since(startTime)

		// Print results
		fmt.Printf("=== Results ===\n")
		fmt.Printf("Priority score: %d\n", result.Score)
		fmt.Printf("Category: %s\n", result.Category)
		fmt.Printf("Confidence: %.2f\n", result.Confidence)
		if top := scorer.TopContributors(result, 5); len(top) > 0 {
			fmt.Printf("Top signals:\n")
			for _, signal := range top {
				fmt.Printf("  %s\n", signal)
			}
		}
		if len(result.Reasoning) > 0 {
			fmt.Printf("Reasoning:\n")
			for _, reason := range result.Reasoning {
				fmt.Printf("  - %s\n", reason)
			}
		}
		fmt.Printf("Processing time: %v\n", duration)
	})
	if err != nil {
		fmt.Printf("Failed to run: %v\n", err)
		os.Exit(1)
	}
}
