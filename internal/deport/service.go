// Package deport implements the peer-approved removal of interns from their
// private channels into the holding channel.
package deport

import (
	"context"
	"errors"
	"fmt"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"deportbot/internal/config"
	"deportbot/internal/ledger"
	"deportbot/internal/mention"
	"deportbot/internal/roster"
)

// Common errors
var (
	ErrNotMentor    = errors.New("actor is not a mentor")
	ErrNotImmigrant = errors.New("actor has never been through the holding channel")
	ErrNoTargets    = errors.New("no deportation targets mentioned")
)

// MentorTargetsError rejects a request that names mentors as targets. The
// whole request is refused; there is no partial deportation.
type MentorTargetsError struct {
	Targets []string
}

func (e *MentorTargetsError) Error() string {
	return fmt.Sprintf("targets include %d mentor(s)", len(e.Targets))
}

// ChannelLister enumerates a user's private channels. *slack.Client
// satisfies it.
type ChannelLister interface {
	GetConversationsForUserContext(ctx context.Context, params *slack.GetConversationsForUserParameters) ([]slack.Channel, string, error)
	InviteUsersToConversationContext(ctx context.Context, channelID string, users ...string) (*slack.Channel, error)
}

// Kicker removes a user from a channel. Removal from private channels
// requires a user-token client, so it is injected separately from the bot
// client.
type Kicker interface {
	KickUserFromConversationContext(ctx context.Context, channelID string, user string) error
}

// RoleSource answers mentor/immigrant membership questions.
// *roster.Service satisfies it.
type RoleSource interface {
	Mentors(ctx context.Context) ([]string, error)
	Immigrants(ctx context.Context) ([]string, error)
}

// Service holds the deportation business rules: who may request one, who may
// be targeted, and the relocation side effect once a request is approved.
type Service struct {
	api    ChannelLister
	kicker Kicker
	roles  RoleSource
	store  ledger.Store
	cfg    *config.Config
	logger *zap.Logger
}

// NewService creates a new deportation service
func NewService(api ChannelLister, kicker Kicker, roles RoleSource, store ledger.Store, cfg *config.Config, logger *zap.Logger) *Service {
	return &Service{api: api, kicker: kicker, roles: roles, store: store, cfg: cfg, logger: logger}
}

// ValidateRequest checks the actor's role and extracts the target users from
// the command text. Membership is read live; nothing is cached between the
// check and the action.
func (s *Service) ValidateRequest(ctx context.Context, actor, text string) ([]string, error) {
	mentors, err := s.roles.Mentors(ctx)
	if err != nil {
		return nil, err
	}
	if !roster.Contains(mentors, actor) {
		return nil, ErrNotMentor
	}

	if s.cfg.RequireDeporteeExperience {
		immigrants, err := s.roles.Immigrants(ctx)
		if err != nil {
			return nil, err
		}
		if !roster.Contains(immigrants, actor) {
			return nil, ErrNotImmigrant
		}
	}

	targets := mention.Extract(text).Users
	if len(targets) == 0 {
		return nil, ErrNoTargets
	}

	var mentorTargets []string
	for _, target := range targets {
		if roster.Contains(mentors, target) {
			mentorTargets = append(mentorTargets, target)
		}
	}
	if len(mentorTargets) > 0 {
		return nil, &MentorTargetsError{Targets: mentorTargets}
	}

	return targets, nil
}

// Relocate performs the removal side effect for one target: enumerate their
// private channels, kick them from each, remember the list in the ledger,
// and put them in the holding channel. The steps are not atomic; each
// failure past enumeration is logged and the rest proceed.
func (s *Service) Relocate(ctx context.Context, target string) ([]string, error) {
	channels, _, err := s.api.GetConversationsForUserContext(ctx, &slack.GetConversationsForUserParameters{
		UserID: target,
		Types:  []string{"private_channel"},
		Limit:  200,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list private channels for %s: %w", target, err)
	}

	var removed []string
	for _, ch := range channels {
		if ch.ID == s.cfg.HoldingChannel {
			continue
		}
		removed = append(removed, ch.ID)
		if err := s.kicker.KickUserFromConversationContext(ctx, ch.ID, target); err != nil {
			s.logger.Error("failed to kick user from channel",
				zap.String("user", target),
				zap.String("channel", ch.ID),
				zap.Error(err))
		}
	}

	// A lost ledger write must not undo removals that already happened.
	if err := s.store.Record(ctx, target, removed); err != nil {
		s.logger.Error("failed to record removal in ledger",
			zap.String("user", target),
			zap.Strings("channels", removed),
			zap.Error(err))
	}

	if _, err := s.api.InviteUsersToConversationContext(ctx, s.cfg.HoldingChannel, target); err != nil {
		s.logger.Error("failed to invite user to holding channel",
			zap.String("user", target),
			zap.Error(err))
	}

	return removed, nil
}
