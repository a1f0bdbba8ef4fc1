package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/fasthttp/websocket"
)

// Message types pushed to clients
const (
	TypeLikeChanged  = "likeChanged"
	TypeQuizzesAdded = "quizzesAdded"
)

// Conn is the part of a websocket connection the hub writes to
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Hub fans messages out to every connected client
type Hub struct {
	clients    map[Conn]bool
	broadcast  chan []byte
	register   chan Conn
	unregister chan Conn
	done       chan struct{}
	mutex      sync.RWMutex
	log        *slog.Logger
}

// Message is the envelope of every pushed message
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

// LikeChanged is pushed after a like toggle
type LikeChanged struct {
	QuizID string `json:"quizId"`
	Likes  int64  `json:"likes"`
}

// QuizzesAdded is pushed after an extraction saved new quizzes
type QuizzesAdded struct {
	Count     int    `json:"count"`
	CreatedBy string `json:"createdBy"`
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[Conn]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan Conn),
		unregister: make(chan Conn),
		done:       make(chan struct{}),
		log:        log.With("component", "hub"),
	}
}

// Run serves registrations and broadcasts until ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for client := range h.clients {
				client.Close()
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("websocket client connected", "total", total)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("websocket client disconnected", "total", total)

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					h.log.Warn("⚠️ websocket write failed, dropping client", "err", err)
					delete(h.clients, client)
					client.Close()
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Register adds conn. After Run has stopped the connection is closed instead.
func (h *Hub) Register(conn Conn) {
	select {
	case h.register <- conn:
	case <-h.done:
		conn.Close()
	}
}

func (h *Hub) Unregister(conn Conn) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// BroadcastLike announces a new like count
func (h *Hub) BroadcastLike(quizID string, likes int64) {
	h.BroadcastMessage(TypeLikeChanged, LikeChanged{QuizID: quizID, Likes: likes})
}

// BroadcastQuizzesAdded announces freshly extracted quizzes
func (h *Hub) BroadcastQuizzesAdded(count int, createdBy string) {
	h.BroadcastMessage(TypeQuizzesAdded, QuizzesAdded{Count: count, CreatedBy: createdBy})
}

// BroadcastMessage queues a message for every client. When the queue is full
// the message is dropped.
func (h *Hub) BroadcastMessage(msgType string, data interface{}) {
	msg := Message{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now().Format(time.RFC3339),
	}

	msgData, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("❌ error serializing message", "type", msgType, "err", err)
		return
	}

	select {
	case h.broadcast <- msgData:
	default:
		h.log.Warn("⚠️ broadcast queue full, message dropped", "type", msgType)
	}
}
