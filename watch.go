package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/slack-go/slack"
)

// RunSchedulerLoop re-runs the evaluation on a standard 5-field cron
// schedule (minute hour day-of-month month day-of-week). Blocks until the
// context is cancelled. A failed run is logged and the loop keeps going.
func RunSchedulerLoop(ctx context.Context, cfg Config, db *sql.DB, api *slack.Client) error {
	schedule := strings.TrimSpace(cfg.RunSchedule)
	if schedule == "" {
		return fmt.Errorf("run_schedule is not set")
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		return fmt.Errorf("invalid run_schedule '%s': %w", schedule, err)
	}
	log.Printf("Scheduled evaluation (cron: %s) model=%s", schedule, cfg.ModelName)

	for {
		now := time.Now()
		next := sched.Next(now)
		wait := next.Sub(now)
		log.Printf("Next run at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}

		if err := ExecuteRun(ctx, cfg, db, api); err != nil {
			log.Printf("Scheduled run error: %v", err)
		}
	}
}
