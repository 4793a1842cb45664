package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"nearbot/models"
	"nearbot/utils"
)

// Timing for a duel round. The answer window re-arms whenever a message
// arrives, mirroring a fresh wait on every pass.
const (
	answerWindow  = 10 * time.Second
	winPause      = 3 * time.Second
	timeoutPause  = 2 * time.Second
	minKeywordLen = 3
)

// defaultRoundPlan is the difficulty sequence for a standard speed duel.
var defaultRoundPlan = []string{
	models.DifficultyEasy,
	models.DifficultyEasy,
	models.DifficultyMedium,
}

var difficultyInstructions = map[string]string{
	models.DifficultyEasy:   "Keep it beginner-friendly: one fundamental concept with a short, well-known answer.",
	models.DifficultyMedium: "Make it moderately tricky: it should require real understanding, not just recall.",
	models.DifficultyHard:   "Make it hard: touch on implementation details, theory, or a common misconception.",
	models.DifficultyExpert: "Make it expert-level: something only a specialist would answer quickly.",
}

const quizmasterPersona = "You are Near hosting a rapid-fire quiz about computer science, " +
	"machine learning, and artificial intelligence. You speak quietly and precisely."

const fallbackExplanation = "No further explanation is needed here."

// EventSink receives duel lifecycle events for the live feed. A nil sink is
// ignored.
type EventSink func(models.DuelEvent)

// DuelEngine runs the timed multi-round speed duel: question generation,
// answer collection, grading, and the final commit to the leaderboard.
type DuelEngine struct {
	llm       LLMClient
	store     *LeaderboardStore
	messenger Messenger
	source    MessageSource
	events    EventSink
	prefix    string

	// overridable in tests
	roundPlan []string
	window    time.Duration
	pause     func(time.Duration)
}

// NewDuelEngine wires a duel engine. prefix is the bot command prefix;
// messages starting with it are never treated as guesses.
func NewDuelEngine(llm LLMClient, store *LeaderboardStore, messenger Messenger, source MessageSource, prefix string) *DuelEngine {
	return &DuelEngine{
		llm:       llm,
		store:     store,
		messenger: messenger,
		source:    source,
		prefix:    strings.ToLower(prefix),
		roundPlan: defaultRoundPlan,
		window:    answerWindow,
		pause:     func(d time.Duration) { time.Sleep(d) },
	}
}

// SetEventSink attaches the live feed publisher.
func (e *DuelEngine) SetEventSink(sink EventSink) {
	e.events = sink
}

func (e *DuelEngine) publish(event models.DuelEvent) {
	if e.events != nil {
		event.Timestamp = time.Now()
		e.events(event)
	}
}

// Run plays one full duel in the channel. It blocks until the duel is done;
// the caller is expected to hold the channel lock so chat replies and duels
// never interleave. Nothing in a duel is fatal: provider failures skip the
// round and a timeout is just a normal transition.
func (e *DuelEngine) Run(ctx context.Context, channelID, guildID string) {
	duelID := uuid.NewString()
	scores := make(map[string]int)
	names := make(map[string]string)

	e.send(channelID, fmt.Sprintf(
		"**⚔️ Speed Duel!** %d questions. First correct answer takes each round. You have %d seconds per question...",
		len(e.roundPlan), int(e.window.Seconds())))
	e.publish(models.DuelEvent{Type: models.DuelEventStarted, DuelID: duelID, ChannelID: channelID})

	for i, difficulty := range e.roundPlan {
		question := e.generateQuestion(ctx, difficulty)
		if question.Prompt == "" {
			e.send(channelID, "The question did not arrive... we move on.")
			continue
		}

		e.send(channelID, fmt.Sprintf("**Round %d** (%s):\n%s", i+1, difficulty, question.Prompt))
		e.publish(models.DuelEvent{
			Type: models.DuelEventRound, DuelID: duelID, ChannelID: channelID,
			Round: i + 1, Difficulty: difficulty,
		})

		result := e.awaitAnswer(ctx, channelID, question, names)
		if result.WinnerID != "" {
			scores[result.WinnerID]++
			e.send(channelID, fmt.Sprintf("✅ **%s** got it! The answer was **%s**.\n%s",
				names[result.WinnerID], question.Answer, question.Explanation))
			e.publish(models.DuelEvent{
				Type: models.DuelEventRoundWon, DuelID: duelID, ChannelID: channelID,
				Round: i + 1, Winner: names[result.WinnerID],
			})
			e.pause(winPause)
		} else {
			reveal := "⏱️ Time's up."
			if question.Answer != "" {
				reveal = fmt.Sprintf("⏱️ Time's up. The answer was **%s**.\n%s", question.Answer, question.Explanation)
			}
			e.send(channelID, reveal)
			e.publish(models.DuelEvent{
				Type: models.DuelEventExpired, DuelID: duelID, ChannelID: channelID, Round: i + 1,
			})
			e.pause(timeoutPause)
		}

		if ctx.Err() != nil {
			return
		}
	}

	e.finalize(duelID, channelID, guildID, scores, names)
}

// finalize tallies the duel, commits XP, and renders the scoreboard. Every
// player tied at the top score is a winner; ties are common in three-round
// duels.
func (e *DuelEngine) finalize(duelID, channelID, guildID string, scores map[string]int, names map[string]string) {
	if len(scores) == 0 {
		e.send(channelID, "No one scored... the duel ends without a winner. *Near quietly packs away the cards.*")
		e.publish(models.DuelEvent{Type: models.DuelEventFinished, DuelID: duelID, ChannelID: channelID})
		return
	}

	maxPoints := 0
	for _, pts := range scores {
		if pts > maxPoints {
			maxPoints = pts
		}
	}

	// commit keyed by display name so the stored board reads naturally
	points := make(map[string]int, len(scores))
	var winners []string
	winnerScores := make(map[string]int, len(scores))
	for id, pts := range scores {
		points[names[id]] = pts
		winnerScores[names[id]] = pts
		if pts == maxPoints {
			winners = append(winners, names[id])
		}
	}
	e.store.Update(GuildKey(guildID), points, winners)

	type placed struct {
		name   string
		points int
	}
	ranking := make([]placed, 0, len(points))
	for name, pts := range points {
		ranking = append(ranking, placed{name, pts})
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].points != ranking[j].points {
			return ranking[i].points > ranking[j].points
		}
		return ranking[i].name < ranking[j].name
	})

	var sb strings.Builder
	sb.WriteString("**The duel is over.** Final scores:\n")
	for i, p := range ranking {
		sb.WriteString(fmt.Sprintf("%s **%s** — %d point(s). %s\n",
			rankMarker(i+1), p.name, p.points, flavorLine(i+1, p.points)))
	}
	e.send(channelID, strings.TrimRight(sb.String(), "\n"))

	e.publish(models.DuelEvent{
		Type: models.DuelEventFinished, DuelID: duelID, ChannelID: channelID,
		Winner: strings.Join(winners, ", "), Scores: winnerScores,
	})
}

// awaitAnswer watches the channel until someone answers correctly or the
// window lapses. Bot messages and command invocations are never guesses, and
// a wrong guess is silently ignored; the clock re-arms on every message so a
// lively channel keeps the round alive.
func (e *DuelEngine) awaitAnswer(ctx context.Context, channelID string, question models.QuizQuestion, names map[string]string) models.RoundResult {
	messages, cancel := e.source.Subscribe(channelID)
	defer cancel()

	timer := time.NewTimer(e.window)
	defer timer.Stop()

	for {
		select {
		case msg, ok := <-messages:
			if !ok {
				return models.RoundResult{}
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(e.window)

			if msg.FromBot || strings.HasPrefix(strings.ToLower(msg.Content), e.prefix) {
				continue
			}
			names[msg.AuthorID] = msg.AuthorName
			if IsCorrect(msg.Content, question.Answer) {
				return models.RoundResult{WinnerID: msg.AuthorID}
			}
		case <-timer.C:
			return models.RoundResult{}
		case <-ctx.Done():
			return models.RoundResult{}
		}
	}
}

// generateQuestion asks the model for one labeled question of the target
// difficulty and parses it best-effort. A response with no recognizable
// question line is used raw; a missing explanation gets a neutral
// placeholder. Only a provider failure leaves the prompt empty.
func (e *DuelEngine) generateQuestion(ctx context.Context, difficulty string) models.QuizQuestion {
	instruction, ok := difficultyInstructions[difficulty]
	if !ok {
		instruction = difficultyInstructions[models.DifficultyMedium]
	}

	request := fmt.Sprintf("Create ONE %s trivia question about computer science, machine learning, "+
		"or artificial intelligence. %s\n"+
		"Format exactly these three lines:\n"+
		"Question: <the question>\n"+
		"Answer: <a short canonical answer, a few words>\n"+
		"Explanation: <one sentence of explanation>", difficulty, instruction)

	completion, err := e.llm.Complete(ctx, []models.Turn{
		{Role: models.RoleSystem, Content: quizmasterPersona},
		{Role: models.RoleUser, Content: request},
	})
	if err != nil {
		log.Printf("speedduel: question generation failed: %v", err)
		return models.QuizQuestion{Difficulty: difficulty}
	}

	return ParseQuestion(completion.Text, difficulty)
}

// ParseQuestion extracts the labeled lines out of a free-text model
// response. Parsing is best-effort by design: degraded fields get documented
// defaults and the surrounding round always proceeds.
func ParseQuestion(raw, difficulty string) models.QuizQuestion {
	q := models.QuizQuestion{Difficulty: difficulty}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "Question:"):
			q.Prompt = strings.TrimSpace(strings.TrimPrefix(line, "Question:"))
		case strings.HasPrefix(line, "Answer:"):
			q.Answer = strings.TrimSpace(strings.TrimPrefix(line, "Answer:"))
		case strings.HasPrefix(line, "Explanation:"):
			q.Explanation = strings.TrimSpace(strings.TrimPrefix(line, "Explanation:"))
		}
	}

	if q.Prompt == "" {
		q.Prompt = strings.TrimSpace(raw)
	}
	if q.Explanation == "" {
		q.Explanation = fallbackExplanation
	}
	return q
}

// IsCorrect grades a freeform guess against the canonical answer. The test
// is deliberately lenient: case-insensitive, order-insensitive containment
// of every substantial keyword (3+ characters, split on whitespace and
// commas). Answers with no substantial keyword fall back to whole-answer
// containment. An empty canonical answer never matches.
func IsCorrect(guess, canonical string) bool {
	canonical = strings.ToLower(strings.TrimSpace(canonical))
	if canonical == "" {
		return false
	}
	guess = strings.ToLower(guess)

	tokens := strings.FieldsFunc(canonical, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})

	var keywords []string
	for _, tok := range tokens {
		if len(tok) >= minKeywordLen {
			keywords = append(keywords, tok)
		}
	}
	if len(keywords) == 0 {
		return strings.Contains(guess, canonical)
	}

	for _, kw := range keywords {
		if !strings.Contains(guess, kw) {
			return false
		}
	}
	return true
}

// flavorLine is Near's deterministic per-player comment, derived only from
// rank and points so it never needs a model call.
func flavorLine(rank, points int) string {
	switch {
	case rank == 1 && points >= 3:
		return "*A clean sweep. Near nods once, almost imperceptibly.*"
	case rank == 1:
		return "*Near stacks one last domino.* Adequate speed."
	case rank == 2 && points > 0:
		return "Close behind... a single hesitation was the difference."
	case points > 0:
		return "A respectable showing."
	default:
		return "Participation noted."
	}
}

func (e *DuelEngine) send(channelID, text string) {
	for _, chunk := range utils.SplitMessage(text, utils.DefaultChunkLimit) {
		if err := e.messenger.Send(channelID, chunk); err != nil {
			log.Printf("speedduel: send failed: %v", err)
		}
	}
}
