// Package roster resolves who currently counts as a mentor or an immigrant.
package roster

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"

	"deportbot/internal/config"
)

// Fetch limits. Slack caps a single page at 1000; neither channel is
// expected to get anywhere near that.
const (
	mentorFetchLimit    = 200
	immigrantFetchLimit = 1000
)

// MemberLister is the slice of the Slack API the roster needs.
// *slack.Client satisfies it.
type MemberLister interface {
	GetUsersInConversationContext(ctx context.Context, params *slack.GetUsersInConversationParameters) ([]string, string, error)
}

// Service answers role questions by querying live channel membership.
// Results are never cached: every authorization decision re-queries Slack.
type Service struct {
	api MemberLister
	cfg *config.Config
}

// NewService creates a new roster service with the Slack client injected
func NewService(api MemberLister, cfg *config.Config) *Service {
	return &Service{api: api, cfg: cfg}
}

// Mentors returns the current members of the mentor channel.
func (s *Service) Mentors(ctx context.Context) ([]string, error) {
	members, _, err := s.api.GetUsersInConversationContext(ctx, &slack.GetUsersInConversationParameters{
		ChannelID: s.cfg.MentorChannel,
		Limit:     mentorFetchLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list mentor channel members: %w", err)
	}
	return members, nil
}

// Immigrants returns the current members of the holding channel.
func (s *Service) Immigrants(ctx context.Context) ([]string, error) {
	members, _, err := s.api.GetUsersInConversationContext(ctx, &slack.GetUsersInConversationParameters{
		ChannelID: s.cfg.HoldingChannel,
		Limit:     immigrantFetchLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list holding channel members: %w", err)
	}
	return members, nil
}

// Contains reports whether user appears in members.
func Contains(members []string, user string) bool {
	for _, m := range members {
		if m == user {
			return true
		}
	}
	return false
}
