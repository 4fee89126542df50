package deport

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"deportbot/internal/config"
)

const genericFailureText = "🔧 Oops! Something went wrong. Please try again."

// Messenger is the messaging surface the handler posts through.
// *slack.Client satisfies it.
type Messenger interface {
	PostEphemeralContext(ctx context.Context, channelID, userID string, options ...slack.MsgOption) (string, error)
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
	UpdateMessageContext(ctx context.Context, channelID, timestamp string, options ...slack.MsgOption) (string, string, string, error)
	OpenViewContext(ctx context.Context, triggerID string, view slack.ModalViewRequest) (*slack.ViewResponse, error)
}

// Handler owns the Slack-facing side of the deportation flow: the slash
// command, the confirmation modal, and the approve/decline buttons.
type Handler struct {
	service *Service
	api     Messenger
	cfg     *config.Config
	logger  *zap.Logger
}

// NewHandler creates a new deportation handler with service dependency injected
func NewHandler(service *Service, api Messenger, cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{service: service, api: api, cfg: cfg, logger: logger}
}

// Command handles the /deport slash command: validate the request and show
// the confirmation modal. Cancelling the modal has no side effects.
func (h *Handler) Command(ctx context.Context, cmd slack.SlashCommand) {
	targets, err := h.service.ValidateRequest(ctx, cmd.UserID, cmd.Text)
	if err != nil {
		h.rejectCommand(ctx, cmd, err)
		return
	}

	text := fmt.Sprintf(
		"Are you sure you want to deport the following intern(s) to <#%s>?\n\n%s\n\nApproval will be requested from <#%s>.",
		h.cfg.HoldingChannel, bulletUsers(targets), h.cfg.MentorChannel,
	)
	view := slack.ModalViewRequest{
		Type:            slack.VTModal,
		Title:           slack.NewTextBlockObject(slack.PlainTextType, "Confirm Deportation", false, false),
		Close:           slack.NewTextBlockObject(slack.PlainTextType, "Cancel", false, false),
		Submit:          slack.NewTextBlockObject(slack.PlainTextType, "Deport", false, false),
		CallbackID:      CallbackConfirm,
		PrivateMetadata: encodePayload(confirmMetadata{Channel: cmd.ChannelID, Targets: targets}),
		Blocks: slack.Blocks{BlockSet: []slack.Block{
			slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil),
		}},
	}

	if _, err := h.api.OpenViewContext(ctx, cmd.TriggerID, view); err != nil {
		h.fail(ctx, cmd.ChannelID, cmd.UserID, "failed to open deportation modal", err)
	}
}

// Confirm handles submission of the confirmation modal: post the approval
// request into the mentor channel with Approve/Decline buttons. The request
// state travels in the button values, not in the rendered text.
func (h *Handler) Confirm(ctx context.Context, cb slack.InteractionCallback) {
	md, err := decodeConfirmMetadata(cb.View.PrivateMetadata)
	if err != nil {
		h.failDM(ctx, cb.User.ID, "failed to read deportation modal state", err)
		return
	}

	payload := encodePayload(approvalPayload{
		ID:        uuid.NewString(),
		Requester: cb.User.ID,
		Targets:   md.Targets,
	})
	section := slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, approvalText(cb.User.ID, md.Targets, h.cfg.HoldingChannel), false, false),
		nil, nil,
	)
	approve := slack.NewButtonBlockElement(ActionApprove, payload,
		slack.NewTextBlockObject(slack.PlainTextType, "Approve", false, false)).WithStyle(slack.StylePrimary)
	decline := slack.NewButtonBlockElement(ActionDecline, payload,
		slack.NewTextBlockObject(slack.PlainTextType, "Decline", false, false)).WithStyle(slack.StyleDanger)
	actions := slack.NewActionBlock("deportation_decision", approve, decline)

	if _, _, err := h.api.PostMessageContext(ctx, h.cfg.MentorChannel,
		slack.MsgOptionBlocks(section, actions),
		slack.MsgOptionText("Deportation approval requested", false),
	); err != nil {
		h.fail(ctx, md.Channel, cb.User.ID, "failed to post approval request", err)
	}
}

// Approve handles an Approve click. Any mentor other than the requester may
// approve; the requester gets a private refusal and the message stays
// pending. On approval the message is resolved in place and each target is
// relocated independently.
func (h *Handler) Approve(ctx context.Context, cb slack.InteractionCallback, action *slack.BlockAction) {
	payload, err := decodeApprovalPayload(action.Value)
	if err != nil {
		h.fail(ctx, cb.Channel.ID, cb.User.ID, "failed to read approval payload", err)
		return
	}

	if cb.User.ID == payload.Requester {
		h.ephemeral(ctx, cb.Channel.ID, cb.User.ID, ":no_entry: You cannot approve your own deportation request")
		return
	}

	if err := h.resolveMessage(ctx, cb, payload,
		fmt.Sprintf(":white_check_mark: Approved by <@%s>", cb.User.ID),
		"Deportation request approved",
	); err != nil {
		h.fail(ctx, cb.Channel.ID, cb.User.ID, "failed to resolve approval message", err)
		return
	}

	for _, target := range payload.Targets {
		if _, err := h.service.Relocate(ctx, target); err != nil {
			h.logger.Error("failed to relocate target",
				zap.String("request_id", payload.ID),
				zap.String("target", target),
				zap.Error(err))
			continue
		}
		notice := fmt.Sprintf(
			"👮 You have been deported to <#%s> by <@%s>.\nPlease review the workspace rules and follow proper conduct guidelines to be reinstated.",
			h.cfg.HoldingChannel, payload.Requester,
		)
		if _, _, err := h.api.PostMessageContext(ctx, target, slack.MsgOptionText(notice, false)); err != nil {
			h.logger.Error("failed to notify deported user",
				zap.String("target", target),
				zap.Error(err))
		}
	}
}

// Decline handles a Decline click, by anyone. The message is resolved in
// place and nothing else happens.
func (h *Handler) Decline(ctx context.Context, cb slack.InteractionCallback, action *slack.BlockAction) {
	payload, err := decodeApprovalPayload(action.Value)
	if err != nil {
		h.fail(ctx, cb.Channel.ID, cb.User.ID, "failed to read decline payload", err)
		return
	}

	if err := h.resolveMessage(ctx, cb, payload,
		fmt.Sprintf(":x: Declined by <@%s>", cb.User.ID),
		"Deportation request declined",
	); err != nil {
		h.fail(ctx, cb.Channel.ID, cb.User.ID, "failed to resolve decline message", err)
	}
}

// resolveMessage rewrites the approval message with the decision annotation
// and without the buttons. The update removes the controls, so a decided
// request cannot normally be clicked again.
func (h *Handler) resolveMessage(ctx context.Context, cb slack.InteractionCallback, payload *approvalPayload, annotation, fallback string) error {
	text := approvalText(payload.Requester, payload.Targets, h.cfg.HoldingChannel) + "\n\n" + annotation
	section := slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil)

	_, _, _, err := h.api.UpdateMessageContext(ctx, cb.Channel.ID, cb.Message.Timestamp,
		slack.MsgOptionBlocks(section),
		slack.MsgOptionText(fallback, false),
	)
	return err
}

// rejectCommand maps a validation failure to its ephemeral notice. Unknown
// errors get the generic failure treatment.
func (h *Handler) rejectCommand(ctx context.Context, cmd slack.SlashCommand, err error) {
	var mentorTargets *MentorTargetsError
	switch {
	case errors.Is(err, ErrNotMentor):
		h.ephemeral(ctx, cmd.ChannelID, cmd.UserID, ":confused: You are not a mentor, mind your business")
	case errors.Is(err, ErrNotImmigrant):
		h.ephemeral(ctx, cmd.ChannelID, cmd.UserID,
			fmt.Sprintf(":thinking_face: You can't deport others when you haven't been to <#%s> yourself!", h.cfg.HoldingChannel))
	case errors.Is(err, ErrNoTargets):
		h.ephemeral(ctx, cmd.ChannelID, cmd.UserID,
			":confused: Please include at least one intern to deport.\nUsage: `/deport @intern1 @intern2`")
	case errors.As(err, &mentorTargets):
		h.ephemeral(ctx, cmd.ChannelID, cmd.UserID,
			":no_entry: You cannot deport the following mentors!\n\n"+bulletUsers(mentorTargets.Targets))
	default:
		h.fail(ctx, cmd.ChannelID, cmd.UserID, "failed to validate deport command", err)
	}
}

func (h *Handler) fail(ctx context.Context, channel, user, msg string, err error) {
	h.logger.Error(msg, zap.Error(err))
	h.ephemeral(ctx, channel, user, genericFailureText)
}

// failDM is for failures with no source channel to post an ephemeral in,
// like modal submissions; the notice goes to the actor's DM instead.
func (h *Handler) failDM(ctx context.Context, user, msg string, err error) {
	h.logger.Error(msg, zap.Error(err))
	if _, _, err := h.api.PostMessageContext(ctx, user, slack.MsgOptionText(genericFailureText, false)); err != nil {
		h.logger.Error("failed to send failure notice",
			zap.String("user", user),
			zap.Error(err))
	}
}

func (h *Handler) ephemeral(ctx context.Context, channel, user, text string) {
	if _, err := h.api.PostEphemeralContext(ctx, channel, user, slack.MsgOptionText(text, false)); err != nil {
		h.logger.Error("failed to post ephemeral notice",
			zap.String("channel", channel),
			zap.String("user", user),
			zap.Error(err))
	}
}

func approvalText(requester string, targets []string, holdingChannel string) string {
	return fmt.Sprintf(
		"<@%s> has requested to deport the following intern(s) to <#%s>:\n\n%s",
		requester, holdingChannel, bulletUsers(targets),
	)
}

func bulletUsers(users []string) string {
	bullets := make([]string, len(users))
	for i, u := range users {
		bullets[i] = fmt.Sprintf("• <@%s>", u)
	}
	return strings.Join(bullets, "\n")
}
