package models

// ScoreEntry holds the persisted counters for one player in one guild.
type ScoreEntry struct {
	XP    int `json:"xp"`
	Wins  int `json:"wins"`
	Games int `json:"games"`
}

// GuildBoard maps a player key to their score entry.
type GuildBoard map[string]*ScoreEntry

// LeaderboardRecord is the full on-disk shape: guild key -> player key -> entry.
type LeaderboardRecord map[string]GuildBoard

// RankedEntry is a board entry resolved to a display position, used by the
// HTTP leaderboard surface.
type RankedEntry struct {
	Rank  int    `json:"rank"`
	Name  string `json:"name"`
	XP    int    `json:"xp"`
	Wins  int    `json:"wins"`
	Games int    `json:"games"`
}
