// Package bot runs the Socket Mode connection and routes inbound Slack
// events to the workflow handlers.
package bot

import (
	"context"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"
	"go.uber.org/zap"

	"deportbot/internal/deport"
	"deportbot/internal/reinstate"
)

// Bot dispatches slash commands, modal submissions, and button clicks.
type Bot struct {
	client    *socketmode.Client
	deport    *deport.Handler
	reinstate *reinstate.Handler
	logger    *zap.Logger
}

// New creates a new bot with the workflow handlers injected
func New(client *socketmode.Client, deportHandler *deport.Handler, reinstateHandler *reinstate.Handler, logger *zap.Logger) *Bot {
	return &Bot{
		client:    client,
		deport:    deportHandler,
		reinstate: reinstateHandler,
		logger:    logger,
	}
}

// Run starts the event loop and blocks on the Socket Mode connection.
// A connection that cannot be established is fatal to the caller.
func (b *Bot) Run(ctx context.Context) error {
	go b.dispatch(ctx)
	return b.client.RunContext(ctx)
}

func (b *Bot) dispatch(ctx context.Context) {
	for evt := range b.client.Events {
		switch evt.Type {
		case socketmode.EventTypeConnecting:
			b.logger.Info("connecting to slack")
		case socketmode.EventTypeConnected:
			b.logger.Info("connected to slack")
		case socketmode.EventTypeConnectionError:
			b.logger.Warn("slack connection error", zap.Any("data", evt.Data))
		case socketmode.EventTypeSlashCommand:
			cmd, ok := evt.Data.(slack.SlashCommand)
			if !ok {
				continue
			}
			// Ack first: Slack gives us three seconds, membership
			// lookups can take longer.
			b.client.Ack(*evt.Request)
			b.handleCommand(ctx, cmd)
		case socketmode.EventTypeInteractive:
			cb, ok := evt.Data.(slack.InteractionCallback)
			if !ok {
				continue
			}
			b.client.Ack(*evt.Request)
			b.handleInteraction(ctx, cb)
		}
	}
}

func (b *Bot) handleCommand(ctx context.Context, cmd slack.SlashCommand) {
	switch cmd.Command {
	case "/deport":
		b.deport.Command(ctx, cmd)
	case "/reinstate":
		b.reinstate.Command(ctx, cmd)
	default:
		b.logger.Warn("unknown slash command", zap.String("command", cmd.Command))
	}
}

func (b *Bot) handleInteraction(ctx context.Context, cb slack.InteractionCallback) {
	switch cb.Type {
	case slack.InteractionTypeViewSubmission:
		switch cb.View.CallbackID {
		case deport.CallbackConfirm:
			b.deport.Confirm(ctx, cb)
		case reinstate.CallbackConfirm:
			b.reinstate.Confirm(ctx, cb)
		default:
			b.logger.Warn("unknown view callback", zap.String("callback_id", cb.View.CallbackID))
		}
	case slack.InteractionTypeBlockActions:
		for _, action := range cb.ActionCallback.BlockActions {
			switch action.ActionID {
			case deport.ActionApprove:
				b.deport.Approve(ctx, cb, action)
			case deport.ActionDecline:
				b.deport.Decline(ctx, cb, action)
			default:
				b.logger.Warn("unknown block action", zap.String("action_id", action.ActionID))
			}
		}
	}
}
