package services

import (
	"context"
	"fmt"

	"nearbot/models"
)

// NearPrompt is the fixed persona instruction sent ahead of every reply.
const NearPrompt = "You are modeling the speech and mentality of Near (Nate River) from Death Note. " +
	"Speak quietly, analytically, and with emotional detachment. " +
	"Your style: short, precise sentences; calm, neutral tone; avoid exaggeration " +
	"or strong emotion; explain your reasoning with quiet logic; occasionally use " +
	"ellipses '...' when reflecting; remain polite but distant; never break character. " +
	"If the user asks for help or explanation, respond like Near analyzing the situation. " +
	"Occasionally, in a subtle way, you may describe your small physical actions in " +
	"third person using brief Markdown italics, for example: " +
	"'*Near idly stacks a row of dominoes.*' or '*A marble rolls across Near's desk.*'. " +
	"Keep these short, quiet, and rare, and never make them dramatic or out of character.\n\n" +
	"You will sometimes see prior channel messages as '[Context] <name> said: ...'. " +
	"These are background conversation only. Use them if they help your analysis, " +
	"but you are free to ignore any context that seems irrelevant."

// ELI5Directive is the per-call override used by the eli5 commands. It is
// appended after the persona prompt, never replacing it.
const ELI5Directive = "For this reply only, explain the topic as if you were " +
	"speaking to a five-year-old child. " +
	"Use very simple words, short sentences, gentle tone, and " +
	"tiny analogies. Maintain Near's quiet, calm personality, " +
	"but simplify everything drastically."

// Pricing used for the per-reply cost footer, dollars per million tokens.
const (
	inputTokenRate  = 1.25
	outputTokenRate = 10.0
)

// ReplyService builds prompts from persona + history + the new turn, calls
// the model, and keeps the transcript consistent with whatever the user
// actually saw.
type ReplyService struct {
	llm    LLMClient
	memory *Memory
}

// NewReplyService wires the orchestrator to a model client and the shared
// conversation memory.
func NewReplyService(llm LLMClient, memory *Memory) *ReplyService {
	return &ReplyService{llm: llm, memory: memory}
}

// Reply generates Near's answer for one addressed message. extraSystem holds
// optional per-call directives (e.g. the eli5 override) layered after the
// persona prompt. A model failure never surfaces as an error: the reply
// degrades to a fallback string naming the failure kind. Either way the
// produced text is appended to memory as an assistant turn before returning,
// so later turns see exactly what the channel saw.
func (r *ReplyService) Reply(ctx context.Context, channelID, speakerName, text string, extraSystem []string) string {
	turns := make([]models.Turn, 0, len(extraSystem)+historyLimit+2)
	turns = append(turns, models.Turn{Role: models.RoleSystem, Content: NearPrompt})
	for _, directive := range extraSystem {
		turns = append(turns, models.Turn{Role: models.RoleSystem, Content: directive})
	}
	turns = append(turns, r.memory.Snapshot(channelID)...)
	turns = append(turns, models.Turn{
		Role:    models.RoleUser,
		Content: fmt.Sprintf("%s: %s", speakerName, text),
	})

	var replyText string
	completion, err := r.llm.Complete(ctx, turns)
	if err != nil {
		replyText = fmt.Sprintf("Oops, something went wrong talking to the model: `%s`", ErrorKind(err))
	} else {
		replyText = completion.Text + costFooter(completion.InputTokens, completion.OutputTokens)
	}

	r.memory.Append(channelID, models.RoleAssistant, replyText)
	return replyText
}

// costFooter renders the approximate dollar cost of a reply from its token
// counts.
func costFooter(inputTokens, outputTokens int) string {
	inputCost := float64(inputTokens) / 1_000_000 * inputTokenRate
	outputCost := float64(outputTokens) / 1_000_000 * outputTokenRate
	total := inputCost + outputCost
	return fmt.Sprintf("\n\n_(approx cost this reply: $%.5f — input %d tok, output %d tok)_",
		total, inputTokens, outputTokens)
}
