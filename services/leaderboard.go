package services

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"sync"

	"nearbot/models"
)

// XP rules applied after each duel.
const (
	xpPerPoint  = 10
	xpWinBonus  = 20
	defaultTopN = 10
)

// LeaderboardStore persists per-guild, per-player XP counters in a single
// JSON file. Every update is a whole-file load-modify-save; the store assumes
// one writer at a time, which holds because duels are already serialized per
// channel.
type LeaderboardStore struct {
	mu   sync.Mutex
	path string
}

// NewLeaderboardStore creates a store backed by the given file path.
func NewLeaderboardStore(path string) *LeaderboardStore {
	return &LeaderboardStore{path: path}
}

// load reads the whole record from disk. A missing or malformed file is an
// empty board, never an error.
func (s *LeaderboardStore) load() models.LeaderboardRecord {
	record := make(models.LeaderboardRecord)

	data, err := os.ReadFile(s.path)
	if err != nil {
		return record
	}
	if err := json.Unmarshal(data, &record); err != nil {
		log.Printf("leaderboard: ignoring malformed store file %s: %v", s.path, err)
		return make(models.LeaderboardRecord)
	}
	return record
}

// save writes the whole record back. Write failures are logged and dropped;
// the duel that produced them has already been announced.
func (s *LeaderboardStore) save(record models.LeaderboardRecord) {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		log.Printf("leaderboard: marshal failed: %v", err)
		return
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		log.Printf("leaderboard: write failed: %v", err)
	}
}

// Update applies one duel's results to a guild board and persists it. Every
// player who scored gets a game counted and 10 XP per point; winners also
// get a win and a flat 20 XP bonus. The updated guild board is returned.
func (s *LeaderboardStore) Update(guildKey string, points map[string]int, winners []string) models.GuildBoard {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.load()
	board := record[guildKey]
	if board == nil {
		board = make(models.GuildBoard)
		record[guildKey] = board
	}

	winnerSet := make(map[string]bool, len(winners))
	for _, w := range winners {
		winnerSet[w] = true
	}

	for player, pts := range points {
		if pts <= 0 {
			continue
		}
		entry := board[player]
		if entry == nil {
			entry = &models.ScoreEntry{}
			board[player] = entry
		}
		entry.Games++
		entry.XP += pts * xpPerPoint
		if winnerSet[player] {
			entry.Wins++
			entry.XP += xpWinBonus
		}
	}

	s.save(record)
	return board
}

// Ranked returns the guild board sorted by XP descending, wins breaking
// ties, capped at topN entries.
func (s *LeaderboardStore) Ranked(guildKey string, topN int) []models.RankedEntry {
	s.mu.Lock()
	record := s.load()
	s.mu.Unlock()

	if topN <= 0 {
		topN = defaultTopN
	}

	board := record[guildKey]
	entries := make([]models.RankedEntry, 0, len(board))
	for name, e := range board {
		entries = append(entries, models.RankedEntry{
			Name:  name,
			XP:    e.XP,
			Wins:  e.Wins,
			Games: e.Games,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].XP != entries[j].XP {
			return entries[i].XP > entries[j].XP
		}
		if entries[i].Wins != entries[j].Wins {
			return entries[i].Wins > entries[j].Wins
		}
		return entries[i].Name < entries[j].Name
	})
	if len(entries) > topN {
		entries = entries[:topN]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// Format renders the guild board as a Discord-ready scoreboard, medals for
// the top three and a generic marker after.
func (s *LeaderboardStore) Format(guildKey string, topN int) string {
	entries := s.Ranked(guildKey, topN)
	if len(entries) == 0 {
		return "The leaderboard is empty... no duels have been fought here yet."
	}

	var sb strings.Builder
	sb.WriteString("**🏆 Speed Duel Leaderboard**\n")
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("%s **%s** — %d XP (%d wins, %d games)\n",
			rankMarker(e.Rank), e.Name, e.XP, e.Wins, e.Games))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func rankMarker(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return "🎖️"
	}
}
