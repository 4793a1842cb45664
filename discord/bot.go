package discord

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/bwmarrin/discordgo"

	"nearbot/config"
	"nearbot/services"
	"nearbot/utils"
)

// Bot owns the Discord session and routes gateway events into the core
// services. It is also the core's chat transport: it implements
// services.Messenger and services.MessageSource.
type Bot struct {
	cfg     *config.Config
	session *discordgo.Session

	llm    services.LLMClient
	reply  *services.ReplyService
	duels  *services.DuelEngine
	store  *services.LeaderboardStore
	memory *services.Memory
	locks  *services.LockRegistry

	subMu       sync.Mutex
	subscribers map[string][]chan services.InboundMessage

	cancel context.CancelFunc
}

// New builds the bot and its duel engine around an existing session-free
// dependency set. The session is created here but not opened until Start.
func New(cfg *config.Config, llm services.LLMClient, store *services.LeaderboardStore, memory *services.Memory, locks *services.LockRegistry) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	b := &Bot{
		cfg:         cfg,
		session:     session,
		llm:         llm,
		reply:       services.NewReplyService(llm, memory),
		store:       store,
		memory:      memory,
		locks:       locks,
		subscribers: make(map[string][]chan services.InboundMessage),
	}
	b.duels = services.NewDuelEngine(llm, store, b, b, cfg.Discord.Prefix)
	return b, nil
}

// SetDuelEventSink forwards duel lifecycle events to the live feed.
func (b *Bot) SetDuelEventSink(sink services.EventSink) {
	b.duels.SetEventSink(sink)
}

// Start registers handlers and opens the gateway connection.
func (b *Bot) Start(ctx context.Context) error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(b.onInteractionCreate)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("discord open: %w", err)
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	go func() {
		<-sessionCtx.Done()
		b.session.Close()
	}()
	return nil
}

// Stop closes the gateway connection.
func (b *Bot) Stop() {
	if b.cancel != nil {
		b.cancel()
	}
	b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Printf("discord: logged in as %s#%s", s.State.User.Username, s.State.User.Discriminator)
	if err := b.registerSlashCommands(); err != nil {
		log.Printf("discord: register commands failed: %v", err)
	} else {
		log.Println("discord: slash commands synced")
	}
}

// Send implements services.Messenger.
func (b *Bot) Send(channelID, text string) error {
	_, err := b.session.ChannelMessageSend(channelID, text)
	return err
}

// Subscribe implements services.MessageSource: the returned channel sees
// every inbound message in the channel until cancel is called.
func (b *Bot) Subscribe(channelID string) (<-chan services.InboundMessage, func()) {
	ch := make(chan services.InboundMessage, 16)

	b.subMu.Lock()
	b.subscribers[channelID] = append(b.subscribers[channelID], ch)
	b.subMu.Unlock()

	cancel := func() {
		b.subMu.Lock()
		defer b.subMu.Unlock()
		subs := b.subscribers[channelID]
		for i, sub := range subs {
			if sub == ch {
				b.subscribers[channelID] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}
	return ch, cancel
}

// dispatch fans an inbound message out to duel subscribers. A full
// subscriber buffer drops the message rather than blocking the gateway
// handler.
func (b *Bot) dispatch(msg services.InboundMessage) {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	for _, sub := range b.subscribers[msg.ChannelID] {
		select {
		case sub <- msg:
		default:
		}
	}
}

// sendChunked splits long replies across messages. The first chunk goes out
// as a reply to the triggering message when a reference is given, matching
// how the bot answers in busy channels.
func (b *Bot) sendChunked(channelID string, ref *discordgo.MessageReference, text string) {
	first := true
	for _, chunk := range utils.SplitMessage(text, utils.DefaultChunkLimit) {
		var err error
		if first && ref != nil {
			_, err = b.session.ChannelMessageSendReply(channelID, chunk, ref)
		} else {
			_, err = b.session.ChannelMessageSend(channelID, chunk)
		}
		first = false
		if err != nil {
			log.Printf("discord: send failed: %v", err)
		}
	}
}
