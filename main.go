package main

import (
	"context"
	"database/sql"
	"log"
	"os"

	"github.com/slack-go/slack"
	"github.com/spf13/cobra"
)

func openRunDB(cfg Config) *sql.DB {
	db, err := InitDB(cfg.DBPath)
	if err != nil {
		// A broken cache DB degrades to in-memory caching for this run.
		log.Printf("Failed to open %s (continuing without persistent cache): %v", cfg.DBPath, err)
		return nil
	}
	return db
}

func slackClientFor(cfg Config) *slack.Client {
	if cfg.SlackBotToken == "" {
		return nil
	}
	return slack.New(cfg.SlackBotToken)
}

func main() {
	root := &cobra.Command{
		Use:           "truthlayer",
		Short:         "Evidence-grounded verdict engine and model comparison tool",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate the configured benchmark once and write a results log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := LoadConfig()
			if err := validateForRun(cfg); err != nil {
				return err
			}
			db := openRunDB(cfg)
			if db != nil {
				defer db.Close()
			}
			return ExecuteRun(context.Background(), cfg, db, slackClientFor(cfg))
		},
	}

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run the evaluation on a cron schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := LoadConfig()
			if err := validateForRun(cfg); err != nil {
				return err
			}
			db := openRunDB(cfg)
			if db != nil {
				defer db.Close()
			}
			return RunSchedulerLoop(context.Background(), cfg, db, slackClientFor(cfg))
		},
	}

	var models []string
	var outDir string
	var pairwise bool
	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Summarize result logs with bootstrap CIs and pairwise McNemar tests",
		RunE: func(cmd *cobra.Command, args []string) error {
			cohorts, err := LoadCohorts(models)
			if err != nil {
				return err
			}
			return Analyze(cohorts, outDir, pairwise)
		},
	}
	analyzeCmd.Flags().StringSliceVar(&models, "models", nil, "paths to results_*.jsonl logs from different models")
	analyzeCmd.Flags().StringVar(&outDir, "outdir", "tables", "directory to write CSV summaries")
	analyzeCmd.Flags().BoolVar(&pairwise, "pairwise", false, "run McNemar pairwise across supplied models")
	analyzeCmd.MarkFlagRequired("models")

	root.AddCommand(runCmd, watchCmd, analyzeCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
