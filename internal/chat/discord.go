package chat

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/bwmarrin/discordgo"

	"github.com/ludvigisaksen/PA-AI/common/logger"
)

// Discord implements Client over a discordgo session.
type Discord struct {
	session *discordgo.Session
}

func NewDiscord(token string) (*Discord, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent
	return &Discord{session: session}, nil
}

// Listen registers handler for new messages. Messages written by the bot
// itself are never delivered. Must be called before Open.
func (d *Discord) Listen(ctx context.Context, handler Handler) {
	d.session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Message == nil || m.Author == nil {
			return
		}
		if s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
			return
		}
		safeHandle(ctx, handler, fromDiscord(m.Message))
	})
}

func (d *Discord) Open() error {
	if err := d.session.Open(); err != nil {
		return fmt.Errorf("opening discord gateway: %w", err)
	}
	return nil
}

func (d *Discord) Close() error {
	return d.session.Close()
}

func (d *Discord) RecentMessages(ctx context.Context, channelID string, limit int) ([]Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	msgs, err := d.session.ChannelMessages(channelID, limit, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetching messages for channel %s: %w", channelID, err)
	}
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, fromDiscord(m))
	}
	return out, nil
}

func (d *Discord) Send(ctx context.Context, channelID, content string) (string, error) {
	var firstID string
	for i, chunk := range Split(content, MaxMessageLength) {
		msg, err := d.session.ChannelMessageSend(channelID, chunk, discordgo.WithContext(ctx))
		if err != nil {
			return firstID, fmt.Errorf("sending message part %d to channel %s: %w", i+1, channelID, err)
		}
		if i == 0 {
			firstID = msg.ID
		}
	}
	return firstID, nil
}

func fromDiscord(m *discordgo.Message) Message {
	msg := Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		Content:   m.Content,
		CreatedAt: m.Timestamp,
	}
	if m.Author != nil {
		msg.AuthorID = m.Author.ID
		msg.AuthorIsBot = m.Author.Bot
	}
	return msg
}

// safeHandle keeps a panicking handler from taking down the gateway loop.
func safeHandle(ctx context.Context, handler Handler, msg Message) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		ChannelID: logger.Ptr(msg.ChannelID),
		MessageID: logger.Ptr(msg.ID),
		AuthorID:  logger.Ptr(msg.AuthorID),
		Component: "pa.chat.discord",
	})
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic in message handler",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	handler(ctx, msg)
}
