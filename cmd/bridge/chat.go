package main

import (
	"context"
	"log/slog"

	"github.com/ludvigisaksen/PA-AI/core/config"
	"github.com/ludvigisaksen/PA-AI/internal/chat"
)

// chatGateway is a chat client with a live connection to manage.
type chatGateway interface {
	chat.Client
	Listen(ctx context.Context, handler chat.Handler)
	Open() error
	Close() error
}

func newDiscordGateway(token string) (chatGateway, error) {
	discord, err := chat.NewDiscord(token)
	if err != nil {
		return nil, err
	}
	return discord, nil
}

// startChat connects the chat platform and routes its messages to the
// handler built by handlerFor. It returns nil when chat is not configured or
// cannot connect; the bridge then keeps serving HTTP with the chat-driven
// flows off.
func startChat(ctx context.Context, cfg config.Config, dial func(token string) (chatGateway, error), handlerFor func(chat.Client) chat.Handler) chatGateway {
	if !cfg.ChatEnabled() {
		slog.WarnContext(ctx, "chat disabled, only the http surface is served")
		return nil
	}

	gateway, err := dial(cfg.Discord.Token)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create discord client, chat disabled", "error", err)
		return nil
	}

	gateway.Listen(ctx, handlerFor(gateway))

	if err := gateway.Open(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to discord, chat disabled", "error", err)
		if closeErr := gateway.Close(); closeErr != nil {
			slog.WarnContext(ctx, "discord close error", "error", closeErr)
		}
		return nil
	}

	slog.InfoContext(ctx, "discord connected",
		"input_channel", cfg.Discord.InputChannelID,
		"inbox_channel", cfg.Discord.InboxChannelID)
	return gateway
}
