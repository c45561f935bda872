package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ganit/pkg/domain/interfaces"
	"github.com/secmon-lab/ganit/pkg/service/slack"
	"github.com/urfave/cli/v3"
)

type Slack struct {
	botToken      string
	reviewChannel string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token (for review notifications)",
			Category:    "Slack",
			Destination: &x.botToken,
			Sources:     cli.EnvVars("GANIT_SLACK_BOT_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-review-channel",
			Usage:       "Slack channel ID that receives review requests",
			Category:    "Slack",
			Destination: &x.reviewChannel,
			Sources:     cli.EnvVars("GANIT_SLACK_REVIEW_CHANNEL"),
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.String("review-channel", x.reviewChannel),
	)
}

// IsConfigured checks if Slack review notifications are enabled
func (x *Slack) IsConfigured() bool {
	return x.botToken != "" && x.reviewChannel != ""
}

// Configure returns the review notifier, or nil when Slack is not configured
func (x *Slack) Configure() (interfaces.ReviewNotifier, error) {
	if x.botToken == "" && x.reviewChannel == "" {
		return nil, nil
	}
	if !x.IsConfigured() {
		return nil, goerr.New("both --slack-bot-token and --slack-review-channel are required for review notifications")
	}

	svc, err := slack.New(x.botToken)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize slack service")
	}
	notifier, err := slack.NewReviewNotifier(svc, x.reviewChannel)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize review notifier")
	}
	return notifier, nil
}
