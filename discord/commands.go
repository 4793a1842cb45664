package discord

import (
	"context"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"nearbot/models"
	"nearbot/services"
	"nearbot/utils"
)

const helpText = "**Near Bot – Commands & Behavior**\n" +
	"\n" +
	"__Text commands:__\n" +
	"• `n <message>` — Talk to Near in this channel.\n" +
	"• `n eli5 <topic>` — Near explains the topic as if you were five years old.\n" +
	"• `n riddle` — Near gives a cryptic CS/AI riddle (answer in spoilers).\n" +
	"• `n speedduel` — A rapid-fire quiz duel. First correct answer takes each round.\n" +
	"• `n leaderboard` — Show this server's duel standings.\n" +
	"• `n help` — Show this help message.\n" +
	"\n" +
	"__Slash variants:__\n" +
	"• `/near <message>` — Talk to Near via slash command.\n" +
	"• `/eli5 <topic>` — ELI5-style explanation via slash command.\n" +
	"• `/leaderboard` — Duel standings via slash command.\n" +
	"\n" +
	"__Behavior:__\n" +
	"• Near keeps short-term memory per channel (last ~40 entries).\n" +
	"• He sees your display name.\n" +
	"• Long replies are split safely across multiple messages, including ```code``` blocks.\n" +
	"• Replies are serialized per channel so Near never talks over himself."

// onMessageCreate is the prefix command router. Every non-bot message is
// recorded as channel context first; unrecognized prefixes are ignored, not
// errored.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || (s.State.User != nil && m.Author.ID == s.State.User.ID) {
		if m.Author != nil {
			b.dispatch(b.inbound(m, true))
		}
		return
	}

	fromBot := m.Author.Bot
	b.dispatch(b.inbound(m, fromBot))
	if fromBot {
		return
	}

	displayName := authorDisplayName(m)
	b.memory.RecordContext(m.ChannelID, displayName, m.Content)

	prefix := strings.ToLower(b.cfg.Discord.Prefix)
	lower := strings.ToLower(m.Content)

	switch {
	case strings.HasPrefix(lower, prefix+"help"):
		b.sendChunked(m.ChannelID, m.Reference(), helpText)

	case strings.HasPrefix(lower, prefix+"riddle"):
		riddle := services.GenerateRiddle(context.Background(), b.llm)
		b.sendChunked(m.ChannelID, m.Reference(), riddle)
		// keep the riddle in memory so Near can reference it later
		b.memory.Append(m.ChannelID, models.RoleAssistant, riddle)

	case strings.HasPrefix(lower, prefix+"speedduel"):
		go func() {
			lock := b.locks.For(m.ChannelID)
			lock.Lock()
			defer lock.Unlock()
			b.duels.Run(context.Background(), m.ChannelID, m.GuildID)
		}()

	case strings.HasPrefix(lower, prefix+"leaderboard"):
		board := b.store.Format(services.GuildKey(m.GuildID), 10)
		b.sendChunked(m.ChannelID, m.Reference(), board)

	case strings.HasPrefix(lower, prefix+"eli5"):
		topic := strings.TrimSpace(strings.Trim(m.Content[len(prefix)+4:], " ,:-"))
		if topic == "" {
			b.sendChunked(m.ChannelID, m.Reference(), "What do you want me to explain simply? 🙂")
			return
		}
		b.answer(m, displayName, topic, []string{services.ELI5Directive})

	case strings.HasPrefix(lower, prefix):
		text := strings.TrimSpace(m.Content[len(prefix):])
		if text == "" {
			b.sendChunked(m.ChannelID, m.Reference(), "What do you want to ask? 🙂")
			return
		}
		b.answer(m, displayName, text, nil)
	}
}

// answer runs the locked generate-and-send sequence for one addressed
// message.
func (b *Bot) answer(m *discordgo.MessageCreate, displayName, text string, extraSystem []string) {
	lock := b.locks.For(m.ChannelID)
	lock.Lock()
	defer lock.Unlock()

	b.session.ChannelTyping(m.ChannelID)
	replyText := b.reply.Reply(context.Background(), m.ChannelID, displayName, text, extraSystem)
	b.sendChunked(m.ChannelID, m.Reference(), replyText)
}

func (b *Bot) inbound(m *discordgo.MessageCreate, fromBot bool) services.InboundMessage {
	return services.InboundMessage{
		ChannelID:  m.ChannelID,
		GuildID:    m.GuildID,
		AuthorID:   m.Author.ID,
		AuthorName: authorDisplayName(m),
		Content:    m.Content,
		FromBot:    fromBot,
	}
}

func authorDisplayName(m *discordgo.MessageCreate) string {
	if m.Member != nil && m.Member.Nick != "" {
		return m.Member.Nick
	}
	if m.Author.GlobalName != "" {
		return m.Author.GlobalName
	}
	return m.Author.Username
}

// --- slash commands ---

var slashCommands = []*discordgo.ApplicationCommand{
	{
		Name:        "near",
		Description: "Talk to Near about anything.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "prompt",
				Description: "What do you want to say to Near?",
				Required:    true,
			},
		},
	},
	{
		Name:        "eli5",
		Description: "Ask Near to explain something as if you were five years old.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "topic",
				Description: "What do you want Near to explain simply?",
				Required:    true,
			},
		},
	},
	{
		Name:        "leaderboard",
		Description: "Show this server's speed duel standings.",
	},
}

func (b *Bot) registerSlashCommands() error {
	for _, cmd := range slashCommands {
		if _, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, "", cmd); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data := i.ApplicationCommandData()
	switch data.Name {
	case "near":
		b.handleSlashReply(i, "/near", optionValue(data, "prompt"), nil)
	case "eli5":
		b.handleSlashReply(i, "/eli5", optionValue(data, "topic"), []string{services.ELI5Directive})
	case "leaderboard":
		board := b.store.Format(services.GuildKey(i.GuildID), 10)
		b.respond(i, board)
	}
}

// handleSlashReply mirrors the prefix-command flow for slash invocations:
// defer, record the invocation as context, generate under the channel lock,
// then deliver the chunks as followups.
func (b *Bot) handleSlashReply(i *discordgo.InteractionCreate, label, text string, extraSystem []string) {
	if text == "" {
		b.respond(i, "What do you want to ask? 🙂")
		return
	}

	displayName := interactionDisplayName(i)
	b.memory.RecordContext(i.ChannelID, displayName, label+" "+text)

	if err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		log.Printf("discord: slash ack failed: %v", err)
		return
	}

	go func() {
		lock := b.locks.For(i.ChannelID)
		lock.Lock()
		defer lock.Unlock()

		replyText := b.reply.Reply(context.Background(), i.ChannelID, displayName, text, extraSystem)
		chunks := utils.SplitMessage(replyText, utils.DefaultChunkLimit)
		for idx, chunk := range chunks {
			var err error
			if idx == 0 {
				_, err = b.session.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &chunk})
			} else {
				_, err = b.session.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{Content: chunk})
			}
			if err != nil {
				log.Printf("discord: slash send failed: %v", err)
				return
			}
		}
	}()
}

func (b *Bot) respond(i *discordgo.InteractionCreate, content string) {
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	})
	if err != nil {
		log.Printf("discord: interaction respond failed: %v", err)
	}
}

func optionValue(data discordgo.ApplicationCommandInteractionData, name string) string {
	for _, opt := range data.Options {
		if opt.Name == name {
			return strings.TrimSpace(opt.StringValue())
		}
	}
	return ""
}

func interactionDisplayName(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		if i.Member.Nick != "" {
			return i.Member.Nick
		}
		if i.Member.User.GlobalName != "" {
			return i.Member.User.GlobalName
		}
		return i.Member.User.Username
	}
	if i.User != nil {
		if i.User.GlobalName != "" {
			return i.User.GlobalName
		}
		return i.User.Username
	}
	return "someone"
}
