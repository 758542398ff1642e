package websocket

import (
	"sync"

	"go.uber.org/zap"

	"github.com/pablozamit/elo-pool/internal/models"
)

// Message types pushed to connected players.
const (
	TypeMatchPending  = "match.pending"
	TypeMatchResolved = "match.resolved"
)

// Hub keeps one connection per player and routes notifications to them.
type Hub struct {
	clients map[string]*Client
	mu      sync.RWMutex

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client

	logger *zap.Logger
}

// Message is the envelope sent to clients. An empty PlayerID broadcasts to
// everyone.
type Message struct {
	PlayerID string      `json:"-"`
	Type     string      `json:"type"`
	Payload  interface{} `json:"payload"`
}

// MatchEvent is the payload for match lifecycle messages.
type MatchEvent struct {
	MatchID         string             `json:"matchId"`
	Status          models.MatchStatus `json:"status"`
	Player1Username string             `json:"player1Username"`
	Player2Username string             `json:"player2Username"`
	MatchType       models.MatchType   `json:"matchType"`
	WinnerID        string             `json:"winnerId"`
}

func NewHub() *Hub {
	logger, _ := zap.NewProduction()
	return &Hub{
		clients:    make(map[string]*Client),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

// Run processes registration and message traffic. Call in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// Notify queues a message without blocking the caller.
func (h *Hub) Notify(message *Message) {
	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn("Notification dropped, broadcast buffer full",
			zap.String("playerId", message.PlayerID),
			zap.String("type", message.Type))
	}
}

// MatchSubmitted tells the non-submitting participant a result awaits their
// confirmation.
func (h *Hub) MatchSubmitted(match *models.Match) {
	h.Notify(&Message{
		PlayerID: match.Opponent(match.SubmittedBy),
		Type:     TypeMatchPending,
		Payload:  matchEvent(match),
	})
}

// MatchResolved tells both participants how the match ended.
func (h *Hub) MatchResolved(match *models.Match) {
	event := matchEvent(match)
	h.Notify(&Message{PlayerID: match.Player1ID, Type: TypeMatchResolved, Payload: event})
	h.Notify(&Message{PlayerID: match.Player2ID, Type: TypeMatchResolved, Payload: event})
}

func matchEvent(match *models.Match) MatchEvent {
	return MatchEvent{
		MatchID:         match.ID,
		Status:          match.Status,
		Player1Username: match.Player1Username,
		Player2Username: match.Player2Username,
		MatchType:       match.MatchType,
		WinnerID:        match.WinnerID,
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Replace an existing connection for the same player.
	if oldClient, exists := h.clients[client.playerID]; exists {
		close(oldClient.send)
		h.logger.Info("Replaced existing WebSocket connection",
			zap.String("playerId", client.playerID))
	}

	h.clients[client.playerID] = client
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, exists := h.clients[client.playerID]; exists && current == client {
		delete(h.clients, client.playerID)
		close(client.send)
	}
}

func (h *Hub) broadcastMessage(message *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if message.PlayerID != "" {
		if client, exists := h.clients[message.PlayerID]; exists {
			h.send(client, message)
		}
		return
	}

	for _, client := range h.clients {
		h.send(client, message)
	}
}

func (h *Hub) send(client *Client, message *Message) {
	select {
	case client.send <- message:
	default:
		// Slow consumer; drop the message rather than block the hub.
		h.logger.Warn("Dropped message for slow client",
			zap.String("playerId", client.playerID))
	}
}
