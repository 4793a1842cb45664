package utils

import (
	"strings"
	"testing"
)

func fencesBalanced(segment string) bool {
	open := false
	for _, line := range strings.Split(segment, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			open = !open
		}
	}
	return !open
}

func TestSplitMessageShortInput(t *testing.T) {
	parts := SplitMessage("hello there", 1900)
	if len(parts) != 1 {
		t.Fatalf("expected 1 part, got %d", len(parts))
	}
	if parts[0] != "hello there" {
		t.Errorf("unexpected part content: %q", parts[0])
	}
}

func TestSplitMessageEmptyInput(t *testing.T) {
	if parts := SplitMessage("", 1900); len(parts) != 0 {
		t.Errorf("expected no parts for empty input, got %v", parts)
	}
	if parts := SplitMessage("   \n  \n", 1900); len(parts) != 0 {
		t.Errorf("expected no parts for whitespace input, got %v", parts)
	}
}

func TestSplitMessageRespectsLimit(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 200; i++ {
		sb.WriteString("this is a fairly ordinary line of prose\n")
	}
	parts := SplitMessage(sb.String(), 500)
	if len(parts) < 2 {
		t.Fatalf("expected multiple parts, got %d", len(parts))
	}
	for i, p := range parts {
		if len(p) > 500 {
			t.Errorf("part %d exceeds limit: %d chars", i, len(p))
		}
	}
}

func TestSplitMessageClosesFencesAcrossBoundary(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("Some introduction.\n")
	sb.WriteString("```python\n")
	for i := 0; i < 100; i++ {
		sb.WriteString("print('a reasonably long line of code for padding')\n")
	}
	sb.WriteString("```\n")
	sb.WriteString("Closing remark.\n")

	parts := SplitMessage(sb.String(), 600)
	if len(parts) < 2 {
		t.Fatalf("expected the code block to be split, got %d part(s)", len(parts))
	}
	for i, p := range parts {
		if !fencesBalanced(p) {
			t.Errorf("part %d has an unterminated code fence:\n%s", i, p)
		}
	}

	// continuation chunks must reopen with the original language tag
	for _, p := range parts[1 : len(parts)-1] {
		if !strings.HasPrefix(p, "```python") {
			t.Errorf("continuation chunk does not reopen the python fence: %q", p[:20])
		}
	}
}

func TestSplitMessageUnterminatedFenceGetsClosed(t *testing.T) {
	parts := SplitMessage("```go\nfmt.Println(1)\n", 1900)
	if len(parts) != 1 {
		t.Fatalf("expected 1 part, got %d", len(parts))
	}
	if !fencesBalanced(parts[0]) {
		t.Errorf("trailing fence was not closed: %q", parts[0])
	}
}

func TestSplitMessageOversizedLineLeftIntact(t *testing.T) {
	long := strings.Repeat("x", 700)
	parts := SplitMessage("short\n"+long+"\nshort again", 100)
	found := false
	for _, p := range parts {
		if strings.Contains(p, long) {
			found = true
		}
	}
	if !found {
		t.Errorf("oversized line was broken apart")
	}
}

func TestSplitMessageFenceLineTriggeringSplit(t *testing.T) {
	// the opening fence itself pushes past the limit; it must land in the
	// new chunk and count as opening there
	pad := strings.Repeat("p", 97)
	text := pad + "\n```\ncode line\n```\n"
	parts := SplitMessage(text, 100)
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d: %v", len(parts), parts)
	}
	if parts[0] != pad {
		t.Errorf("first part should be just the padding, got %q", parts[0])
	}
	if !strings.HasPrefix(parts[1], "```") {
		t.Errorf("second part should start with the fence, got %q", parts[1])
	}
	for i, p := range parts {
		if !fencesBalanced(p) {
			t.Errorf("part %d unbalanced", i)
		}
	}
}
