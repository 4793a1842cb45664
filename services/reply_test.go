package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"nearbot/models"
)

type fakeLLM struct {
	completion *models.Completion
	err        error
	calls      [][]models.Turn
}

func (f *fakeLLM) Complete(ctx context.Context, turns []models.Turn) (*models.Completion, error) {
	copied := make([]models.Turn, len(turns))
	copy(copied, turns)
	f.calls = append(f.calls, copied)
	if f.err != nil {
		return nil, f.err
	}
	return f.completion, nil
}

func TestReplyBuildsPromptInOrder(t *testing.T) {
	llm := &fakeLLM{completion: &models.Completion{Text: "Understood."}}
	memory := NewMemory()
	memory.RecordContext("chan1", "Am", "earlier chatter")

	svc := NewReplyService(llm, memory)
	svc.Reply(context.Background(), "chan1", "Am", "what is a monad?", nil)

	if len(llm.calls) != 1 {
		t.Fatalf("expected 1 model call, got %d", len(llm.calls))
	}
	turns := llm.calls[0]
	if turns[0].Role != models.RoleSystem || turns[0].Content != NearPrompt {
		t.Errorf("first turn must be the persona prompt")
	}
	if turns[1].Content != "[Context] Am said: earlier chatter" {
		t.Errorf("history snapshot missing or out of order: %q", turns[1].Content)
	}
	last := turns[len(turns)-1]
	if last.Role != models.RoleUser || last.Content != "Am: what is a monad?" {
		t.Errorf("unexpected final user turn: %+v", last)
	}
}

func TestReplyDirectiveAppendsToPersona(t *testing.T) {
	llm := &fakeLLM{completion: &models.Completion{Text: "Simply put..."}}
	svc := NewReplyService(llm, NewMemory())

	svc.Reply(context.Background(), "chan1", "Am", "gradient descent", []string{ELI5Directive})

	turns := llm.calls[0]
	if turns[0].Content != NearPrompt {
		t.Fatalf("persona prompt must stay first")
	}
	if turns[1].Role != models.RoleSystem || turns[1].Content != ELI5Directive {
		t.Errorf("eli5 directive must follow the persona prompt, got %+v", turns[1])
	}
}

func TestReplyAppendsCostFooter(t *testing.T) {
	llm := &fakeLLM{completion: &models.Completion{
		Text:         "The answer is 4.",
		InputTokens:  1_000_000,
		OutputTokens: 1_000_000,
	}}
	svc := NewReplyService(llm, NewMemory())

	out := svc.Reply(context.Background(), "chan1", "Am", "2+2?", nil)
	if !strings.HasPrefix(out, "The answer is 4.") {
		t.Errorf("reply text missing: %q", out)
	}
	// $1.25 input + $10.00 output at one million tokens each
	if !strings.Contains(out, "$11.25000") {
		t.Errorf("cost footer wrong: %q", out)
	}
	if !strings.Contains(out, "input 1000000 tok") || !strings.Contains(out, "output 1000000 tok") {
		t.Errorf("token counts missing from footer: %q", out)
	}
}

func TestReplyFallbackOnProviderError(t *testing.T) {
	llm := &fakeLLM{err: &ProviderError{Kind: "APIError", Err: errors.New("boom")}}
	memory := NewMemory()
	svc := NewReplyService(llm, memory)

	out := svc.Reply(context.Background(), "chan1", "Am", "hello", nil)
	if !strings.Contains(out, "`APIError`") {
		t.Errorf("fallback must name the failure kind: %q", out)
	}

	// the fallback is still recorded so later turns see what the user saw
	history := memory.Snapshot("chan1")
	last := history[len(history)-1]
	if last.Role != models.RoleAssistant || last.Content != out {
		t.Errorf("fallback not recorded as assistant turn: %+v", last)
	}
}

func TestReplyRecordsAssistantTurn(t *testing.T) {
	llm := &fakeLLM{completion: &models.Completion{Text: "Noted."}}
	memory := NewMemory()
	svc := NewReplyService(llm, memory)

	out := svc.Reply(context.Background(), "chan1", "Am", "hello", nil)

	history := memory.Snapshot("chan1")
	last := history[len(history)-1]
	if last.Role != models.RoleAssistant {
		t.Fatalf("expected assistant turn, got %q", last.Role)
	}
	if last.Content != out {
		t.Errorf("recorded turn differs from returned reply")
	}
}
