package http

import (
	"log"
	"net/http"
	"time"

	"quiz-grading-service/internal/app"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// WSHandler streams freshly graded attempts to admin dashboards.
type WSHandler struct {
	feed     *app.Feed
	upgrader websocket.Upgrader
}

func NewWSHandler(feed *app.Feed) *WSHandler {
	return &WSHandler{
		feed: feed,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type subscribedPayload struct {
	Subscribers int `json:"subscribers"`
}

// ServeWS upgrades the request and forwards every published attempt until
// the client disconnects. Clients only receive; inbound frames are discarded.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates, cancel := h.feed.Subscribe()
	defer cancel()

	// The reader only exists to notice disconnects and answer pings.
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := h.write(conn, outboundMessage[subscribedPayload]{
		Type:    "subscribed",
		Payload: subscribedPayload{Subscribers: h.feed.Subscribers()},
	}); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case attempt, ok := <-updates:
			if !ok {
				return
			}
			if err := h.write(conn, outboundMessage[attemptView]{Type: "attempt", Payload: newAttemptView(attempt)}); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-readerDone:
			return
		}
	}
}

func (h *WSHandler) write(conn *websocket.Conn, msg interface{}) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}
