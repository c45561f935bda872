package slack

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ganit/pkg/domain/interfaces"
	"github.com/secmon-lab/ganit/pkg/domain/model"
	"github.com/slack-go/slack"
)

// maxSectionTextBytes is the Slack limit for a section block text
const maxSectionTextBytes = 3000

// ReviewNotifier posts review requests for low-confidence runs to a Slack channel
type ReviewNotifier struct {
	svc       Service
	channelID string
}

var _ interfaces.ReviewNotifier = &ReviewNotifier{}

func NewReviewNotifier(svc Service, channelID string) (*ReviewNotifier, error) {
	if svc == nil {
		return nil, goerr.New("Slack service is required")
	}
	if channelID == "" {
		return nil, goerr.New("Slack review channel is required")
	}
	return &ReviewNotifier{svc: svc, channelID: channelID}, nil
}

func (n *ReviewNotifier) NotifyReview(ctx context.Context, run *model.Run) error {
	if run == nil {
		return goerr.New("run is required")
	}

	blocks := BuildReviewBlocks(run)
	fallback := fmt.Sprintf("Review required for run %s", run.ID)
	if _, err := n.svc.PostMessage(ctx, n.channelID, blocks, fallback); err != nil {
		return goerr.Wrap(err, "failed to notify review", goerr.V("run_id", run.ID))
	}
	return nil
}

// BuildReviewBlocks constructs the Block Kit message for a run that needs human review
func BuildReviewBlocks(run *model.Run) []slack.Block {
	blocks := []slack.Block{
		slack.NewHeaderBlock(
			slack.NewTextBlockObject(slack.PlainTextType, ":warning: Human review required", true, false),
		),
	}

	question := run.Input
	if run.Draft != nil {
		question = run.Draft.Question
	}
	blocks = append(blocks, markdownSection("*Question*\n"+quote(question)))

	answer := ""
	if run.Draft != nil {
		answer = run.Draft.Answer
	} else if run.Solution != nil {
		answer = run.Solution.FinalAnswer
	}
	if answer == "" {
		answer = "_(no answer)_"
	}
	blocks = append(blocks, markdownSection("*Proposed answer*\n"+quote(answer)))

	if run.Verification != nil && len(run.Verification.Issues) > 0 {
		lines := make([]string, len(run.Verification.Issues))
		for i, issue := range run.Verification.Issues {
			lines[i] = "• " + issue
		}
		blocks = append(blocks, markdownSection("*Issues*\n"+strings.Join(lines, "\n")))
	}

	contextParts := []string{fmt.Sprintf("Run: `%s`", run.ID)}
	if run.Parsed != nil {
		contextParts = append(contextParts, fmt.Sprintf("Topic: %s", run.Parsed.Topic))
	}
	if run.Route != nil {
		contextParts = append(contextParts, fmt.Sprintf("Route: %s", run.Route.RuleID))
	}
	if run.Verification != nil {
		contextParts = append(contextParts, fmt.Sprintf("Confidence: %.3f", run.Verification.Confidence))
	}
	blocks = append(blocks, slack.NewContextBlock("",
		slack.NewTextBlockObject(slack.MarkdownType, strings.Join(contextParts, "  |  "), false, false),
	))

	return blocks
}

func markdownSection(text string) *slack.SectionBlock {
	return slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, truncateToMaxBytes(text, maxSectionTextBytes), false, false),
		nil, nil,
	)
}

func quote(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = "> " + line
	}
	return strings.Join(lines, "\n")
}

// truncateToMaxBytes cuts s to at most maxBytes without splitting a UTF-8 sequence
func truncateToMaxBytes(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	const ellipsis = "…"
	limit := maxBytes - len(ellipsis)
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit] + ellipsis
}
