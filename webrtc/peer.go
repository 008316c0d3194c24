package webrtc

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/pion/webrtc/v3"

	"arena-backend/models"
)

// MessageHandler receives inbound data channel events; the server routes
// them through the same dispatch as websocket messages.
type MessageHandler func(client *models.Client, msgType string, msg map[string]any)

type Peer struct {
	Connection  *webrtc.PeerConnection
	DataChannel *webrtc.DataChannel
	Client      *models.Client
}

// Manager owns the server side of every WebRTC data channel transport.
// A peer's data channel drains the same Client.Send queue the websocket
// write pump would, so the game core never knows which transport a
// player arrived on.
type Manager struct {
	peers   map[string]*Peer
	mutex   sync.RWMutex
	handler MessageHandler
	onClose func(clientID string)
}

func NewManager(handler MessageHandler, onClose func(clientID string)) *Manager {
	return &Manager{
		peers:   make(map[string]*Peer),
		handler: handler,
		onClose: onClose,
	}
}

// CreatePeer builds a peer connection for an authenticated client. The
// browser opens the "game" data channel; once it is up, the peer starts
// draining the client's send queue into it.
func (m *Manager) CreatePeer(client *models.Client) (*Peer, error) {
	conn, err := webrtc.NewPeerConnection(webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{URLs: []string{"stun:stun.l.google.com:19302"}},
		},
	})
	if err != nil {
		return nil, err
	}

	peer := &Peer{
		Connection: conn,
		Client:     client,
	}

	conn.OnICEConnectionStateChange(func(state webrtc.ICEConnectionState) {
		log.Printf("ICE connection state for %s: %s", client.Username, state.String())
		if state == webrtc.ICEConnectionStateDisconnected || state == webrtc.ICEConnectionStateFailed {
			m.RemovePeer(client.ID)
		}
	})

	conn.OnDataChannel(func(dc *webrtc.DataChannel) {
		peer.DataChannel = dc

		dc.OnOpen(func() {
			log.Printf("DataChannel opened for %s", client.Username)
			go m.writePump(peer)
		})

		dc.OnMessage(func(msg webrtc.DataChannelMessage) {
			m.onMessage(client, msg.Data)
		})

		dc.OnClose(func() {
			log.Printf("DataChannel closed for %s", client.Username)
			m.RemovePeer(client.ID)
		})
	})

	m.mutex.Lock()
	m.peers[client.ID] = peer
	m.mutex.Unlock()

	return peer, nil
}

// writePump drains the client's send queue into the data channel, the
// counterpart of the websocket write pump.
func (m *Manager) writePump(peer *Peer) {
	for message := range peer.Client.Send {
		if peer.DataChannel.ReadyState() != webrtc.DataChannelStateOpen {
			return
		}
		if err := peer.DataChannel.Send(message); err != nil {
			log.Printf("DataChannel send error for %s: %v", peer.Client.Username, err)
			return
		}
	}
}

func (m *Manager) onMessage(client *models.Client, data []byte) {
	var msg map[string]any
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("Error unmarshaling data channel message from %s: %v", client.Username, err)
		return
	}

	msgType, ok := msg["type"].(string)
	if !ok {
		return
	}

	m.handler(client, msgType, msg)
}

func (m *Manager) GetPeer(clientID string) (*Peer, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	peer, exists := m.peers[clientID]
	return peer, exists
}

func (m *Manager) RemovePeer(clientID string) {
	m.mutex.Lock()
	peer, exists := m.peers[clientID]
	if exists {
		if peer.Connection != nil {
			peer.Connection.Close()
		}
		delete(m.peers, clientID)
	}
	m.mutex.Unlock()

	if exists && m.onClose != nil {
		m.onClose(clientID)
	}
}
