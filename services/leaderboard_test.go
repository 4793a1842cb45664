package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func tempStore(t *testing.T) *LeaderboardStore {
	t.Helper()
	return NewLeaderboardStore(filepath.Join(t.TempDir(), "leaderboard.json"))
}

func TestUpdateXPArithmetic(t *testing.T) {
	s := tempStore(t)

	// 2 points as sole winner: 2*10 + 20 XP, 1 win, 1 game
	board := s.Update("G", map[string]int{"U": 2}, []string{"U"})

	entry := board["U"]
	if entry == nil {
		t.Fatal("expected an entry for U")
	}
	if entry.XP != 40 {
		t.Errorf("expected 40 XP, got %d", entry.XP)
	}
	if entry.Wins != 1 {
		t.Errorf("expected 1 win, got %d", entry.Wins)
	}
	if entry.Games != 1 {
		t.Errorf("expected 1 game, got %d", entry.Games)
	}
}

func TestUpdateTiedWinnersBothGetBonus(t *testing.T) {
	s := tempStore(t)

	board := s.Update("G", map[string]int{"A": 1, "B": 1}, []string{"A", "B"})
	for _, name := range []string{"A", "B"} {
		e := board[name]
		if e == nil {
			t.Fatalf("missing entry for %s", name)
		}
		if e.XP != 30 || e.Wins != 1 || e.Games != 1 {
			t.Errorf("%s: expected 30 XP / 1 win / 1 game, got %d/%d/%d", name, e.XP, e.Wins, e.Games)
		}
	}
}

func TestUpdateNonWinnerGetsNoBonus(t *testing.T) {
	s := tempStore(t)

	board := s.Update("G", map[string]int{"A": 2, "B": 1}, []string{"A"})
	if b := board["B"]; b.XP != 10 || b.Wins != 0 || b.Games != 1 {
		t.Errorf("B: expected 10 XP / 0 wins / 1 game, got %d/%d/%d", b.XP, b.Wins, b.Games)
	}
}

func TestUpdateAccumulatesAcrossDuels(t *testing.T) {
	s := tempStore(t)

	s.Update("G", map[string]int{"U": 1}, []string{"U"})
	board := s.Update("G", map[string]int{"U": 2}, nil)

	e := board["U"]
	if e.XP != 30+20 {
		t.Errorf("expected 50 XP after both duels, got %d", e.XP)
	}
	if e.Wins != 1 || e.Games != 2 {
		t.Errorf("expected 1 win / 2 games, got %d/%d", e.Wins, e.Games)
	}
}

func TestMissingFileIsEmptyBoard(t *testing.T) {
	s := NewLeaderboardStore(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if entries := s.Ranked("G", 10); len(entries) != 0 {
		t.Errorf("expected empty board, got %v", entries)
	}
}

func TestMalformedFileIsEmptyBoard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leaderboard.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewLeaderboardStore(path)
	if entries := s.Ranked("G", 10); len(entries) != 0 {
		t.Errorf("expected empty board for malformed file, got %v", entries)
	}
}

func TestUpdatePersistsAcrossStoreInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leaderboard.json")

	NewLeaderboardStore(path).Update("G", map[string]int{"U": 1}, []string{"U"})

	reopened := NewLeaderboardStore(path)
	entries := reopened.Ranked("G", 10)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry after reload, got %d", len(entries))
	}
	if entries[0].Name != "U" || entries[0].XP != 30 {
		t.Errorf("unexpected reloaded entry: %+v", entries[0])
	}
}

func TestRankedSortsByXPThenWins(t *testing.T) {
	s := tempStore(t)
	// low: 10 XP; high: 50 XP + win; mid: 30 XP + win; midNoWin: 30 XP, no win
	s.Update("G", map[string]int{"low": 1}, nil)
	s.Update("G", map[string]int{"high": 3}, []string{"high"})
	s.Update("G", map[string]int{"mid": 1}, []string{"mid"})
	s.Update("G", map[string]int{"midNoWin": 3}, nil)

	entries := s.Ranked("G", 10)
	order := make([]string, len(entries))
	for i, e := range entries {
		order[i] = e.Name
	}
	want := []string{"high", "mid", "midNoWin", "low"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("unexpected order: %v (want %v)", order, want)
		}
	}
	if entries[0].Rank != 1 || entries[3].Rank != 4 {
		t.Errorf("ranks not assigned in order: %+v", entries)
	}
}

func TestFormatEndToEnd(t *testing.T) {
	s := tempStore(t)

	// sole winner with 1 point: 30 XP, 1 win, 1 game
	s.Update("G", map[string]int{"U": 1}, []string{"U"})

	out := s.Format("G", 10)
	if !strings.Contains(out, "U") {
		t.Errorf("format output does not list U: %q", out)
	}
	if !strings.Contains(out, "30 XP") {
		t.Errorf("format output missing XP total: %q", out)
	}
	if !strings.Contains(out, "1 wins, 1 games") {
		t.Errorf("format output missing win/game counters: %q", out)
	}
	if !strings.Contains(out, "🥇") {
		t.Errorf("top entry should carry the gold medal: %q", out)
	}
}

func TestFormatEmptyBoard(t *testing.T) {
	s := tempStore(t)
	out := s.Format("nowhere", 10)
	if !strings.Contains(out, "empty") {
		t.Errorf("expected an empty-board message, got %q", out)
	}
}

func TestFormatLimitsToTopN(t *testing.T) {
	s := tempStore(t)
	points := map[string]int{}
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		points[name] = 1
	}
	s.Update("G", points, nil)

	out := s.Format("G", 3)
	lines := strings.Split(out, "\n")
	// header plus three entries
	if len(lines) != 4 {
		t.Errorf("expected 4 lines, got %d: %q", len(lines), out)
	}
}
