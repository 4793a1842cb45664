package models

import "time"

// Question difficulty tags used by the duel round plan.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
	DifficultyExpert = "expert"
)

// QuizQuestion is one generated duel question. It lives only for the round
// it is asked in.
type QuizQuestion struct {
	Prompt      string
	Answer      string
	Explanation string
	Difficulty  string
}

// RoundResult records who, if anyone, took a duel round.
type RoundResult struct {
	WinnerID string // empty when the round timed out
}

// Duel feed event types broadcast to websocket clients.
const (
	DuelEventStarted  = "duel_started"
	DuelEventRound    = "round_opened"
	DuelEventRoundWon = "round_won"
	DuelEventExpired  = "round_expired"
	DuelEventFinished = "duel_finished"
)

// DuelEvent is a duel lifecycle event for the live feed.
type DuelEvent struct {
	Type       string         `json:"type"`
	DuelID     string         `json:"duelId"`
	ChannelID  string         `json:"channelId"`
	Round      int            `json:"round,omitempty"`
	Difficulty string         `json:"difficulty,omitempty"`
	Winner     string         `json:"winner,omitempty"`
	Scores     map[string]int `json:"scores,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}
