// Package reinstate restores a deported intern to the channels recorded in
// the removal ledger.
package reinstate

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
	ErrWrongChannel = errors.New("reinstate must be issued from the holding channel")
	ErrNoTarget     = errors.New("no reinstatement target mentioned")
)

// MentorTargetsError rejects a request that names mentors as targets.
type MentorTargetsError struct {
	Targets []string
}

func (e *MentorTargetsError) Error() string {
	return fmt.Sprintf("targets include %d mentor(s)", len(e.Targets))
}

// NotImmigrantsError rejects targets that are not currently in the holding
// channel; you cannot reinstate someone who was never deported.
type NotImmigrantsError struct {
	Targets []string
}

func (e *NotImmigrantsError) Error() string {
	return fmt.Sprintf("%d target(s) are not immigrants", len(e.Targets))
}

// Inviter adds users to channels. *slack.Client satisfies it.
type Inviter interface {
	InviteUsersToConversationContext(ctx context.Context, channelID string, users ...string) (*slack.Channel, error)
}

// Kicker removes a user from a channel with the user-token client.
type Kicker interface {
	KickUserFromConversationContext(ctx context.Context, channelID string, user string) error
}

// RoleSource answers mentor/immigrant membership questions.
type RoleSource interface {
	Mentors(ctx context.Context) ([]string, error)
	Immigrants(ctx context.Context) ([]string, error)
}

// Service holds the reinstatement rules and the restore side effect.
type Service struct {
	api    Inviter
	kicker Kicker
	roles  RoleSource
	store  ledger.Store
	cfg    *config.Config
	logger *zap.Logger
}

// NewService creates a new reinstatement service
func NewService(api Inviter, kicker Kicker, roles RoleSource, store ledger.Store, cfg *config.Config, logger *zap.Logger) *Service {
	return &Service{api: api, kicker: kicker, roles: roles, store: store, cfg: cfg, logger: logger}
}

// ValidateRequest checks the actor, the channel the command came from, and
// the mentioned targets, and returns the single user to reinstate. When
// several users are mentioned only the first is acted on.
func (s *Service) ValidateRequest(ctx context.Context, actor, channel, text string) (string, error) {
	mentors, err := s.roles.Mentors(ctx)
	if err != nil {
		return "", err
	}
	if !roster.Contains(mentors, actor) {
		return "", ErrNotMentor
	}

	if channel != s.cfg.HoldingChannel {
		return "", ErrWrongChannel
	}

	targets := mention.Extract(text).Users
	if len(targets) == 0 {
		return "", ErrNoTarget
	}

	var mentorTargets []string
	for _, target := range targets {
		if roster.Contains(mentors, target) {
			mentorTargets = append(mentorTargets, target)
		}
	}
	if len(mentorTargets) > 0 {
		return "", &MentorTargetsError{Targets: mentorTargets}
	}

	immigrants, err := s.roles.Immigrants(ctx)
	if err != nil {
		return "", err
	}
	var outsiders []string
	for _, target := range targets {
		if !roster.Contains(immigrants, target) {
			outsiders = append(outsiders, target)
		}
	}
	if len(outsiders) > 0 {
		return "", &NotImmigrantsError{Targets: outsiders}
	}

	return targets[0], nil
}

// Execute restores target to every channel the ledger remembers, then
// removes them from the holding channel. Re-invites are independent; one
// failure does not block the rest. A missing ledger record fails the whole
// operation.
func (s *Service) Execute(ctx context.Context, target string) ([]string, error) {
	channels, err := s.store.RestoreChannels(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("failed to look up removal record for %s: %w", target, err)
	}

	for _, ch := range channels {
		if _, err := s.api.InviteUsersToConversationContext(ctx, ch, target); err != nil {
			s.logger.Error("failed to restore user to channel",
				zap.String("user", target),
				zap.String("channel", ch),
				zap.Error(err))
		}
	}

	if err := s.kicker.KickUserFromConversationContext(ctx, s.cfg.HoldingChannel, target); err != nil {
		s.logger.Error("failed to remove user from holding channel",
			zap.String("user", target),
			zap.Error(err))
	}

	return channels, nil
}
