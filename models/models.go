package models

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client is one authenticated bidirectional event channel. The websocket
// write pump (or the WebRTC data channel pump) drains Send; the game core
// only ever pushes onto it.
type Client struct {
	ID       string          `json:"id"`
	Username string          `json:"username"`
	Conn     *websocket.Conn `json:"-"`
	Send     chan []byte     `json:"-"`
	JoinedAt time.Time       `json:"joined_at"`

	mu     sync.Mutex
	closed bool
}

// Emit queues a typed event without blocking. A client that cannot keep
// up gets its queue closed, which terminates its write pump; emits after
// that are dropped, so one stalled channel never faults the session that
// broadcasts to it.
func (c *Client) Emit(msgType string, data any) {
	message := map[string]any{
		"type": msgType,
		"data": data,
	}

	jsonData, _ := json.Marshal(message)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	select {
	case c.Send <- jsonData:
	default:
		close(c.Send)
		c.closed = true
	}
}

// GameObject is the per-entity slice of a gameState broadcast. Collectibles
// carry score -1 and health -1 so the renderer can tell them apart.
type GameObject struct {
	Name      string     `json:"name"`
	Position  [2]float64 `json:"position"`
	Score     int        `json:"score"`
	Sprite    string     `json:"sprite"`
	Health    float64    `json:"health"`
	Animation string     `json:"animation"`
	Direction string     `json:"direction"`
}

// GameStatePayload is broadcast to every channel in a session's group on
// each accepted tick.
type GameStatePayload struct {
	Status      string                `json:"status"`
	Message     string                `json:"message"`
	GameObjects map[string]GameObject `json:"game_objects"`
}

// JoinedPayload is sent once when a player is constructed or reattached.
type JoinedPayload struct {
	ConnectionID string `json:"connectionId"`
	PlayerID     string `json:"playerId"`
}

// CombatEvent is a fire-and-forget notification for client audio cues.
type CombatEvent struct {
	EntityID string `json:"entityId"`
	Sprite   string `json:"sprite"`
}
