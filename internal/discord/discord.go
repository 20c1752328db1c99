package discord

import "context"

type FileMessage struct {
	ChannelID string
	Content   string
	Filename  string
	FileBody  []byte
}

type Client interface {
	SendChannelMessage(ctx context.Context, channelID, content string) error
	SendChannelMessageWithFile(ctx context.Context, msg FileMessage) error
	// ChannelName returns "" when the channel cannot be resolved.
	ChannelName(channelID string) string
}
