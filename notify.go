package main

import (
	"fmt"
	"log"

	"github.com/slack-go/slack"
)

// PostRunSummary posts a one-message run summary to the configured Slack
// channel. Notification failures are logged and ignored; they never fail a
// run.
func PostRunSummary(api *slack.Client, channelID string, stats RunStats) {
	if api == nil || channelID == "" {
		return
	}
	text := fmt.Sprintf(
		"Evaluation run complete: *%s* (%d items)\n"+
			"supported=%d contradicted=%d unverifiable=%d\n"+
			"exact=%.3f loose=%.3f soft=%.3f recall_any=%.3f",
		stats.Model, stats.N,
		stats.LabelCounts[LabelSupported],
		stats.LabelCounts[LabelContradicted],
		stats.LabelCounts[LabelUnverifiable],
		stats.Exact.Mean, stats.Loose.Mean, stats.Soft.Mean, stats.RecallAny.Mean,
	)
	if _, _, err := api.PostMessage(channelID, slack.MsgOptionText(text, false)); err != nil {
		log.Printf("slack post error channel=%s: %v", channelID, err)
	}
}
