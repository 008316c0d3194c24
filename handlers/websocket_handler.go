package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"arena-backend/auth"
	"arena-backend/constants"
	"arena-backend/game"
	"arena-backend/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

type WebSocketHandler struct {
	registry *game.Registry
}

func NewWebSocketHandler(registry *game.Registry) *WebSocketHandler {
	return &WebSocketHandler{registry: registry}
}

func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.ValidateToken(r.URL.Query().Get("token"))
	if err != nil {
		log.Printf("WebSocket auth error: %v", err)
		http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &models.Client{
		ID:       uuid.New().String(),
		Username: claims.Username,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		JoinedAt: time.Now(),
	}

	client.Emit(constants.MSG_CONNECTED, map[string]any{
		"connectionId": client.ID,
		"username":     client.Username,
	})
	client.Emit(constants.MSG_MESSAGE, "Hello from the server, authenticated!")

	go h.writePump(client)
	h.readPump(client)
}

func (h *WebSocketHandler) readPump(client *models.Client) {
	defer func() {
		h.registry.Disconnect(client.ID)
		client.Conn.Close()
	}()

	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetReadLimit(maxMessageSize)
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for %s: %v", client.Username, err)
			}
			break
		}

		var msg map[string]any
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("Error unmarshaling message from %s: %v", client.Username, err)
			continue
		}

		msgType, ok := msg["type"].(string)
		if !ok {
			log.Printf("Message from %s missing type field", client.Username)
			continue
		}

		DispatchMessage(h.registry, client, msgType, msg)
	}
}

// DispatchMessage routes one inbound event to the registry. The WebRTC
// data channel transport feeds the same entry point.
func DispatchMessage(registry *game.Registry, client *models.Client, msgType string, msg map[string]any) {
	switch msgType {
	case constants.MSG_JOIN_GAME:
		registry.Join(client)
	case constants.MSG_INPUT:
		if action, ok := msg["action"].(string); ok {
			registry.HandleInput(client.ID, action)
		}
	case constants.MSG_LEAVE:
		registry.Leave(client.ID)
	default:
		log.Printf("Unknown message type %q from %s", msgType, client.Username)
	}
}

func (h *WebSocketHandler) writePump(client *models.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := client.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages
			n := len(client.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-client.Send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
