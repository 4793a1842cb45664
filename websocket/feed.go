package websocket

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"nearbot/models"
)

// FeedClient represents a client connected to the live duel feed.
type FeedClient struct {
	Conn    *websocket.Conn
	writeMu sync.Mutex
}

// SafeWriteJSON safely writes JSON data to the client's connection.
func (fc *FeedClient) SafeWriteJSON(v interface{}) error {
	fc.writeMu.Lock()
	defer fc.writeMu.Unlock()
	return fc.Conn.WriteJSON(v)
}

// Global feed hub for broadcasting duel events to all connected clients.
var (
	feedClients = make(map[*FeedClient]bool)
	feedMutex   sync.RWMutex
)

// RegisterFeedClient registers a client for duel feed updates.
func RegisterFeedClient(client *FeedClient) {
	feedMutex.Lock()
	defer feedMutex.Unlock()
	feedClients[client] = true
	log.Printf("duel feed client registered. Total clients: %d", len(feedClients))
}

// UnregisterFeedClient removes a client from the feed.
func UnregisterFeedClient(client *FeedClient) {
	feedMutex.Lock()
	defer feedMutex.Unlock()
	delete(feedClients, client)
	client.Conn.Close()
	log.Printf("duel feed client unregistered. Total clients: %d", len(feedClients))
}

// BroadcastDuelEvent broadcasts a duel lifecycle event to all connected
// clients. It satisfies services.EventSink.
func BroadcastDuelEvent(event models.DuelEvent) {
	feedMutex.RLock()
	defer feedMutex.RUnlock()

	for client := range feedClients {
		if err := client.SafeWriteJSON(event); err != nil {
			log.Printf("error broadcasting duel event to client: %v", err)
			// drop the client if the write fails
			go UnregisterFeedClient(client)
		}
	}
}

// FeedClientCount returns the number of connected feed clients.
func FeedClientCount() int {
	feedMutex.RLock()
	defer feedMutex.RUnlock()
	return len(feedClients)
}
