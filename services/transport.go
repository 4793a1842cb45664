package services

// InboundMessage is one message event delivered by the chat transport.
type InboundMessage struct {
	ChannelID  string
	GuildID    string
	AuthorID   string
	AuthorName string
	Content    string
	FromBot    bool
}

// Messenger sends outbound text to a channel. The transport layer owns the
// connection; the core only pushes text through it.
type Messenger interface {
	Send(channelID, text string) error
}

// MessageSource lets the quiz engine watch a channel's inbound messages for
// the duration of a round. The returned cancel func must be called to drop
// the subscription.
type MessageSource interface {
	Subscribe(channelID string) (<-chan InboundMessage, func())
}

// GlobalGuildKey is the leaderboard bucket used when a duel runs outside any
// guild, e.g. in a direct message.
const GlobalGuildKey = "global"

// GuildKey derives the leaderboard bucket for a guild id.
func GuildKey(guildID string) string {
	if guildID == "" {
		return GlobalGuildKey
	}
	return guildID
}
