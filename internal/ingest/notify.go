// AngelaMos | 2026
// notify.go

package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/byzip-v2/byzip-backend-v2/internal/httpclient"
)

type Notifier interface {
	Notify(ctx context.Context, run *RunResult) error
}

// SlackNotifier posts run summaries to an incoming webhook. With no webhook
// configured it does nothing.
type SlackNotifier struct {
	http       *httpclient.Client
	webhookURL string
	location   *time.Location
	logger     *slog.Logger
}

func NewSlackNotifier(client *httpclient.Client, webhookURL string, logger *slog.Logger) *SlackNotifier {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		loc = time.FixedZone("KST", 9*60*60)
	}
	return &SlackNotifier{
		http:       client,
		webhookURL: webhookURL,
		location:   loc,
		logger:     logger,
	}
}

type slackText struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

type slackBlock struct {
	Type     string      `json:"type"`
	Text     *slackText  `json:"text,omitempty"`
	Fields   []slackText `json:"fields,omitempty"`
	Elements []slackText `json:"elements,omitempty"`
}

type slackMessage struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

func (n *SlackNotifier) Notify(ctx context.Context, run *RunResult) error {
	if n.webhookURL == "" {
		n.logger.WarnContext(ctx, "slack webhook not configured, skipping notification")
		return nil
	}

	payload, err := json.Marshal(n.message(run))
	if err != nil {
		return fmt.Errorf("encode slack message: %w", err)
	}

	resp, err := n.http.Post(ctx, n.webhookURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("post slack message: %w", err)
	}
	if err := httpclient.CheckResponse(resp, "slack"); err != nil {
		return err
	}
	_ = resp.Body.Close()

	return nil
}

func (n *SlackNotifier) message(run *RunResult) slackMessage {
	title := "Housing ingestion completed"
	if !run.Success {
		title = "Housing ingestion finished with errors"
	}

	succeeded := 0
	for _, r := range run.Results {
		if r.Success {
			succeeded++
		}
	}

	blocks := []slackBlock{
		{Type: "header", Text: &slackText{Type: "plain_text", Text: title, Emoji: true}},
		{Type: "divider"},
		{Type: "section", Fields: []slackText{
			{Type: "mrkdwn", Text: fmt.Sprintf("*Saved:*\n%d", run.SavedCount())},
			{Type: "mrkdwn", Text: fmt.Sprintf("*Geocoding failures:*\n%d", run.GeocodingFailedCount())},
			{Type: "mrkdwn", Text: fmt.Sprintf("*Sources:*\n%d/%d succeeded", succeeded, len(run.Results))},
		}},
	}

	if run.Error != "" {
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: "*Error:* " + run.Error},
		})
	}

	for _, r := range run.Results {
		status := ":white_check_mark:"
		if !r.Success {
			status = ":x:"
		}

		var b strings.Builder
		fmt.Fprintf(&b, "%s *%s*\n• saved: %d\n• geocoding failures: %d",
			status, r.ServiceName, r.SavedCount, r.GeocodingFailedCount)
		if r.Error != "" {
			fmt.Fprintf(&b, "\n• error: %s", r.Error)
		}

		blocks = append(blocks,
			slackBlock{Type: "divider"},
			slackBlock{Type: "section", Text: &slackText{Type: "mrkdwn", Text: b.String()}},
		)
	}

	ranAt := run.FinishedAt
	if ranAt.IsZero() {
		ranAt = time.Now()
	}
	blocks = append(blocks,
		slackBlock{Type: "divider"},
		slackBlock{Type: "context", Elements: []slackText{{
			Type: "mrkdwn",
			Text: "Run time: " + ranAt.In(n.location).Format("2006-01-02 15:04:05 MST"),
		}}},
	)

	return slackMessage{Text: title, Blocks: blocks}
}
