package reinstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"deportbot/internal/config"
)

// CallbackConfirm identifies the reinstatement confirmation modal.
const CallbackConfirm = "confirm_reinstate"

const genericFailureText = "🔧 Oops! Something went wrong. Please try again."

// confirmMetadata rides in the confirmation modal's private_metadata.
type confirmMetadata struct {
	Channel string `json:"channel"`
	Target  string `json:"target"`
}

// Messenger is the messaging surface the handler posts through.
// *slack.Client satisfies it.
type Messenger interface {
	PostEphemeralContext(ctx context.Context, channelID, userID string, options ...slack.MsgOption) (string, error)
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
	OpenViewContext(ctx context.Context, triggerID string, view slack.ModalViewRequest) (*slack.ViewResponse, error)
}

// Handler owns the Slack-facing side of reinstatement: the slash command
// and the confirmation modal.
type Handler struct {
	service *Service
	api     Messenger
	cfg     *config.Config
	logger  *zap.Logger
}

// NewHandler creates a new reinstatement handler with service dependency injected
func NewHandler(service *Service, api Messenger, cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{service: service, api: api, cfg: cfg, logger: logger}
}

// Command handles the /reinstate slash command: validate and show the
// confirmation modal for the single target.
func (h *Handler) Command(ctx context.Context, cmd slack.SlashCommand) {
	target, err := h.service.ValidateRequest(ctx, cmd.UserID, cmd.ChannelID, cmd.Text)
	if err != nil {
		h.rejectCommand(ctx, cmd, err)
		return
	}

	md, _ := json.Marshal(confirmMetadata{Channel: cmd.ChannelID, Target: target})
	view := slack.ModalViewRequest{
		Type:            slack.VTModal,
		Title:           slack.NewTextBlockObject(slack.PlainTextType, "Confirm Reinstate", false, false),
		Close:           slack.NewTextBlockObject(slack.PlainTextType, "Cancel", false, false),
		Submit:          slack.NewTextBlockObject(slack.PlainTextType, "Reinstate", false, false),
		CallbackID:      CallbackConfirm,
		PrivateMetadata: string(md),
		Blocks: slack.Blocks{BlockSet: []slack.Block{
			slack.NewSectionBlock(
				slack.NewTextBlockObject(slack.MarkdownType,
					fmt.Sprintf("Are you sure you want to reinstate <@%s>?", target), false, false),
				nil, nil),
		}},
	}

	if _, err := h.api.OpenViewContext(ctx, cmd.TriggerID, view); err != nil {
		h.fail(ctx, cmd.ChannelID, cmd.UserID, "failed to open reinstate modal", err)
	}
}

// Confirm handles submission of the confirmation modal: run the restore,
// tell the target which channels they got back, and confirm to the actor.
func (h *Handler) Confirm(ctx context.Context, cb slack.InteractionCallback) {
	var md confirmMetadata
	if err := json.Unmarshal([]byte(cb.View.PrivateMetadata), &md); err != nil {
		h.fail(ctx, h.cfg.HoldingChannel, cb.User.ID, "failed to read reinstate modal state", err)
		return
	}

	channels, err := h.service.Execute(ctx, md.Target)
	if err != nil {
		// Covers the never-recorded case too; the actor just sees the
		// generic notice.
		h.fail(ctx, md.Channel, cb.User.ID, "failed to reinstate user", err)
		return
	}

	bullets := make([]string, len(channels))
	for i, ch := range channels {
		bullets[i] = fmt.Sprintf("• <#%s>", ch)
	}
	notice := "You have been reinstated to the following channels:\n" + strings.Join(bullets, "\n")
	if _, _, err := h.api.PostMessageContext(ctx, md.Target, slack.MsgOptionText(notice, false)); err != nil {
		h.logger.Error("failed to notify reinstated user",
			zap.String("user", md.Target),
			zap.Error(err))
	}

	h.ephemeral(ctx, md.Channel, cb.User.ID,
		fmt.Sprintf("✅ Successfully reinstated <@%s>", md.Target))
}

func (h *Handler) rejectCommand(ctx context.Context, cmd slack.SlashCommand, err error) {
	var mentorTargets *MentorTargetsError
	var outsiders *NotImmigrantsError
	switch {
	case errors.Is(err, ErrNotMentor):
		h.ephemeral(ctx, cmd.ChannelID, cmd.UserID, ":confused: You are not a mentor, mind your business")
	case errors.Is(err, ErrWrongChannel):
		h.ephemeral(ctx, cmd.ChannelID, cmd.UserID,
			fmt.Sprintf(":no_entry: You can only reinstate immigrants from <#%s>", h.cfg.HoldingChannel))
	case errors.Is(err, ErrNoTarget):
		h.ephemeral(ctx, cmd.ChannelID, cmd.UserID, "Please mention the user to reinstate")
	case errors.As(err, &mentorTargets):
		h.ephemeral(ctx, cmd.ChannelID, cmd.UserID,
			":no_entry: You cannot reinstate the following mentors!\n\n"+bulletUsers(mentorTargets.Targets))
	case errors.As(err, &outsiders):
		h.ephemeral(ctx, cmd.ChannelID, cmd.UserID,
			":no_entry: Cannot reinstate the following user(s) as they are not immigrants:\n"+bulletUsers(outsiders.Targets))
	default:
		h.fail(ctx, cmd.ChannelID, cmd.UserID, "failed to validate reinstate command", err)
	}
}

func (h *Handler) fail(ctx context.Context, channel, user, msg string, err error) {
	h.logger.Error(msg, zap.Error(err))
	h.ephemeral(ctx, channel, user, genericFailureText)
}

func (h *Handler) ephemeral(ctx context.Context, channel, user, text string) {
	if _, err := h.api.PostEphemeralContext(ctx, channel, user, slack.MsgOptionText(text, false)); err != nil {
		h.logger.Error("failed to post ephemeral notice",
			zap.String("channel", channel),
			zap.String("user", user),
			zap.Error(err))
	}
}

func bulletUsers(users []string) string {
	bullets := make([]string, len(users))
	for i, u := range users {
		bullets[i] = fmt.Sprintf("• <@%s>", u)
	}
	return strings.Join(bullets, "\n")
}
