package services

import (
	"fmt"
	"sync"

	"nearbot/models"
)

// historyLimit caps the per-channel transcript. Older turns fall off the
// front; this is a cost cap, and dropping old context is an accepted
// trade-off.
const historyLimit = 40

// Memory is the per-channel rolling conversation transcript used to build
// model prompts.
type Memory struct {
	mu        sync.Mutex
	byChannel map[string][]models.Turn
}

// NewMemory creates an empty conversation memory.
func NewMemory() *Memory {
	return &Memory{byChannel: make(map[string][]models.Turn)}
}

// Append records one turn for a channel, evicting the oldest turns beyond
// the history limit.
func (m *Memory) Append(channelID, role, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	history := append(m.byChannel[channelID], models.Turn{Role: role, Content: content})
	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}
	m.byChannel[channelID] = history
}

// RecordContext records any channel message as background context. These are
// stored as system turns with a [Context] prefix so the model understands
// they are surrounding conversation, not direct instructions.
func (m *Memory) RecordContext(channelID, speakerName, text string) {
	m.Append(channelID, models.RoleSystem, fmt.Sprintf("[Context] %s said: %s", speakerName, text))
}

// Snapshot returns a copy of the channel's recent turns, oldest first.
func (m *Memory) Snapshot(channelID string) []models.Turn {
	m.mu.Lock()
	defer m.mu.Unlock()

	history := m.byChannel[channelID]
	out := make([]models.Turn, len(history))
	copy(out, history)
	return out
}
