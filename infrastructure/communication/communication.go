package communication

import (
	"fmt"

	"github.com/slack-go/slack"
)

// Slack posts informational CRM events to a single channel. A nil *Slack is
// a valid no-op notifier, so main can skip wiring it when no token is
// configured.
type Slack struct {
	client    *slack.Client
	channelID string
}

func NewSlack(token, channelID string) *Slack {
	if token == "" || channelID == "" {
		return nil
	}
	return &Slack{client: slack.New(token), channelID: channelID}
}

func (s *Slack) Info(message string) error {
	if s == nil {
		return nil
	}
	_, _, err := s.client.PostMessage(
		s.channelID,
		slack.MsgOptionText(message, false),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		return fmt.Errorf("failed to post message to Slack: %w", err)
	}
	return nil
}

// FollowUpLogged announces a newly logged interaction. Failures are the
// caller's to log; they never fail the request.
func (s *Slack) FollowUpLogged(customerName string, followUpType string, content string) error {
	preview := content
	if len([]rune(preview)) > 80 {
		preview = string([]rune(preview)[:80]) + "…"
	}
	return s.Info(fmt.Sprintf("New %s follow-up for %s: %s", followUpType, customerName, preview))
}
