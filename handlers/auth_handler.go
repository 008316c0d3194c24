package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"arena-backend/auth"
	"arena-backend/store"
)

// AuthHandler serves the credential endpoints the page calls before it
// opens the game channel: user creation, login (token issue) and scores.
type AuthHandler struct {
	store    *store.Store
	tokenTTL time.Duration
}

func NewAuthHandler(userStore *store.Store, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{store: userStore, tokenTTL: tokenTTL}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleCreateUser handles POST /api/createUser.
func (h *AuthHandler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	enableCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	if err := h.store.Create(req.Username, req.Password); err != nil {
		if errors.Is(err, store.ErrUserExists) {
			http.Error(w, "User already exists", http.StatusConflict)
			return
		}
		log.Printf("Create user error: %v", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"success": true})
}

// HandleAuthenticateUser handles POST /api/authenticateUser and returns a
// token for the websocket handshake.
func (h *AuthHandler) HandleAuthenticateUser(w http.ResponseWriter, r *http.Request) {
	enableCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	if err := h.store.Verify(req.Username, req.Password); err != nil {
		switch {
		case errors.Is(err, store.ErrUserNotFound):
			http.Error(w, "User not found", http.StatusNotFound)
		case errors.Is(err, store.ErrWrongPassword):
			http.Error(w, "Wrong password", http.StatusUnauthorized)
		default:
			log.Printf("Authenticate error: %v", err)
			http.Error(w, "Internal error", http.StatusInternalServerError)
		}
		return
	}

	token, err := auth.GenerateToken(req.Username, h.tokenTTL)
	if err != nil {
		log.Printf("Token generation error: %v", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"token": token})
}

// HandleUserExists handles GET /api/userExists?user=...
func (h *AuthHandler) HandleUserExists(w http.ResponseWriter, r *http.Request) {
	enableCORS(w)
	user := r.URL.Query().Get("user")
	if user == "" {
		http.Error(w, "Missing user argument", http.StatusBadRequest)
		return
	}

	writeJSON(w, map[string]any{"userExists": h.store.Exists(user)})
}

// HandleGetScore handles GET /api/getScore?user=...
func (h *AuthHandler) HandleGetScore(w http.ResponseWriter, r *http.Request) {
	enableCORS(w)
	user := r.URL.Query().Get("user")
	if user == "" {
		http.Error(w, "Missing user argument", http.StatusBadRequest)
		return
	}

	score, err := h.store.GetScore(user)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	writeJSON(w, map[string]any{"score": score})
}

// HandleGetScores handles GET /api/getScores, the leaderboard. Each user
// maps to an object wrapping the score, the shape the page renders.
func (h *AuthHandler) HandleGetScores(w http.ResponseWriter, r *http.Request) {
	enableCORS(w)

	out := make(map[string]map[string]int)
	for name, score := range h.store.Scores() {
		out[name] = map[string]int{"score": score}
	}
	writeJSON(w, out)
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return req, false
	}
	if req.Username == "" || req.Password == "" {
		http.Error(w, "Missing username or password", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func enableCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}
