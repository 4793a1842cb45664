package websocket

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// DuelFeedHandler upgrades the connection and keeps it registered on the
// feed hub until the client goes away. Clients only listen; anything they
// send is discarded.
func DuelFeedHandler(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("duel feed upgrade failed: %v", err)
		return
	}

	client := &FeedClient{Conn: conn}
	RegisterFeedClient(client)
	defer UnregisterFeedClient(client)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
