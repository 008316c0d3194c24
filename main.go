package main

import (
	"log"
	"net/http"
	"time"

	"arena-backend/config"
	"arena-backend/game"
	"arena-backend/handlers"
	"arena-backend/models"
	"arena-backend/store"
	"arena-backend/webrtc"
)

func main() {
	cfg := config.Load("config.toml")

	userStore, err := store.Open(cfg.Store.Path)
	if err != nil {
		log.Fatalf("Failed to open user store: %v", err)
	}

	registry := game.NewRegistry(cfg.Game, userStore)

	webrtcManager := webrtc.NewManager(
		func(client *models.Client, msgType string, msg map[string]any) {
			handlers.DispatchMessage(registry, client, msgType, msg)
		},
		registry.Disconnect,
	)

	wsHandler := handlers.NewWebSocketHandler(registry)
	authHandler := handlers.NewAuthHandler(userStore, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	peerHandler := handlers.NewPeerSignalingHandler(webrtcManager)

	// Game channel
	http.Handle("/ws", wsHandler)

	// Credentials and scores
	http.HandleFunc("/api/createUser", authHandler.HandleCreateUser)
	http.HandleFunc("/api/authenticateUser", authHandler.HandleAuthenticateUser)
	http.HandleFunc("/api/userExists", authHandler.HandleUserExists)
	http.HandleFunc("/api/getScore", authHandler.HandleGetScore)
	http.HandleFunc("/api/getScores", authHandler.HandleGetScores)

	// Optional data channel transport
	http.HandleFunc("/webrtc/offer", peerHandler.HandleOffer)
	http.HandleFunc("/webrtc/ice", peerHandler.HandleICECandidate)

	log.Printf("Server starting on port %s", cfg.Server.Port)
	log.Printf("WebSocket endpoint: /ws")
	log.Fatal(http.ListenAndServe(":"+cfg.Server.Port, nil))
}
