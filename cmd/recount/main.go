package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/parleyhq/parley/internal/database/dbretry"
	"github.com/parleyhq/parley/internal/setup"
	"github.com/sourcegraph/conc/pool"
	"github.com/uptrace/bun"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	app := &cli.Command{
		Name:  "recount",
		Usage: "Rebuild denormalized counters from ground truth",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Number of topics to resync concurrently",
				Value: 8,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return recount(ctx, int(c.Int("workers")))
		},
	}

	return app.Run(context.Background(), os.Args)
}

// recount walks every topic and resynchronizes its vote mirror, reply
// count and hotness from the ledger. Each topic runs in its own retried
// transaction, so a crash mid-pass leaves no topic half-updated.
func recount(ctx context.Context, workers int) error {
	app, err := setup.InitializeApp(ctx, false)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer app.Cleanup(ctx)

	topicIDs, err := app.DB.Model().Topic().GetAllTopicIDs(ctx, app.DB.DB())
	if err != nil {
		return err
	}

	app.Logger.Info("Starting recount",
		zap.Int("topics", len(topicIDs)),
		zap.Int("workers", workers))

	topicService := app.DB.Service().Topic()

	p := pool.New().WithContext(ctx).WithMaxGoroutines(workers)
	for _, topicID := range topicIDs {
		p.Go(func(ctx context.Context) error {
			return dbretry.Transaction(ctx, app.DB.DB(), func(ctx context.Context, tx bun.Tx) error {
				topic, err := app.DB.Model().Topic().GetTopic(ctx, tx, topicID)
				if err != nil {
					return err
				}
				return topicService.SyncCounts(ctx, tx, topic)
			})
		})
	}

	if err := p.Wait(); err != nil {
		return fmt.Errorf("recount failed: %w", err)
	}

	app.Logger.Info("Recount finished", zap.Int("topics", len(topicIDs)))

	return nil
}
