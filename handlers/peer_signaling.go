package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	pion "github.com/pion/webrtc/v3"

	"arena-backend/auth"
	"arena-backend/models"
	"arena-backend/webrtc"
)

// PeerSignalingHandler negotiates the optional WebRTC data channel
// transport. The browser posts its SDP offer with a login token; the
// server answers and from then on the data channel carries the same
// typed events as the websocket.
type PeerSignalingHandler struct {
	manager *webrtc.Manager
}

func NewPeerSignalingHandler(manager *webrtc.Manager) *PeerSignalingHandler {
	return &PeerSignalingHandler{manager: manager}
}

type peerOfferRequest struct {
	Token string                  `json:"token"`
	Offer pion.SessionDescription `json:"offer"`
}

type iceCandidateRequest struct {
	ConnectionID string                `json:"connectionId"`
	Candidate    pion.ICECandidateInit `json:"candidate"`
}

// HandleOffer handles POST /webrtc/offer.
func (h *PeerSignalingHandler) HandleOffer(w http.ResponseWriter, r *http.Request) {
	enableCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req peerOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	claims, err := auth.ValidateToken(req.Token)
	if err != nil {
		http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
		return
	}

	client := &models.Client{
		ID:       uuid.New().String(),
		Username: claims.Username,
		Send:     make(chan []byte, 256),
		JoinedAt: time.Now(),
	}

	peer, err := h.manager.CreatePeer(client)
	if err != nil {
		log.Printf("Peer creation error for %s: %v", client.Username, err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	if err := peer.Connection.SetRemoteDescription(req.Offer); err != nil {
		http.Error(w, "Invalid offer", http.StatusBadRequest)
		h.manager.RemovePeer(client.ID)
		return
	}

	answer, err := peer.Connection.CreateAnswer(nil)
	if err != nil {
		log.Printf("Answer creation error for %s: %v", client.Username, err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		h.manager.RemovePeer(client.ID)
		return
	}
	if err := peer.Connection.SetLocalDescription(answer); err != nil {
		log.Printf("Local description error for %s: %v", client.Username, err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		h.manager.RemovePeer(client.ID)
		return
	}

	writeJSON(w, map[string]any{
		"connectionId": client.ID,
		"answer":       peer.Connection.LocalDescription(),
	})
}

// HandleICECandidate handles POST /webrtc/ice.
func (h *PeerSignalingHandler) HandleICECandidate(w http.ResponseWriter, r *http.Request) {
	enableCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req iceCandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	peer, exists := h.manager.GetPeer(req.ConnectionID)
	if !exists {
		http.Error(w, "Peer not found", http.StatusNotFound)
		return
	}

	if err := peer.Connection.AddICECandidate(req.Candidate); err != nil {
		log.Printf("ICE candidate error: %v", err)
		http.Error(w, "Invalid candidate", http.StatusBadRequest)
		return
	}

	writeJSON(w, map[string]string{"status": "ok"})
}
