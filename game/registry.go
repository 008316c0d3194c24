package game

import (
	"log"
	"sync"

	"arena-backend/config"
	"arena-backend/constants"
	"arena-backend/models"
)

// ScoreStore is the slice of the user store the registry needs for score
// write-back on session end.
type ScoreStore interface {
	GetScore(username string) (int, error)
	SetScore(username string, score int) error
}

// Registry assigns each authenticated channel to exactly one session and
// recycles ended sessions. All session list mutations go through its one
// mutex, never held across a broadcast.
type Registry struct {
	Mutex    sync.Mutex
	Sessions map[string]*Session
	order    []string // session creation order, scanned first-fit
	byConn   map[string]string
	cfg      config.GameConfig
	store    ScoreStore
}

func NewRegistry(cfg config.GameConfig, store ScoreStore) *Registry {
	return &Registry{
		Sessions: make(map[string]*Session),
		order:    make([]string, 0),
		byConn:   make(map[string]string),
		cfg:      cfg,
		store:    store,
	}
}

// Join maps a channel to a session. A reconnecting identity that still has
// a living player in some session gets rebound to it; otherwise the first
// waiting session with free capacity wins, and when none exists a new
// session is created. There is no ceiling on concurrent sessions.
func (r *Registry) Join(client *models.Client) *Session {
	r.Mutex.Lock()

	r.sweepEnded()

	if session := r.reattach(client); session != nil {
		r.byConn[client.ID] = session.ID
		r.Mutex.Unlock()
		client.Emit(constants.MSG_MESSAGE, "Welcome back, "+client.Username)
		return session
	}

	session := r.firstOpen()
	if session == nil {
		session = NewSession(r.cfg, r.sessionEnded)
		r.Sessions[session.ID] = session
		r.order = append(r.order, session.ID)
		log.Printf("Registry: created session %s", session.ID)
	}
	r.byConn[client.ID] = session.ID
	r.Mutex.Unlock()

	session.AddPlayer(client)
	client.Emit(constants.MSG_MESSAGE, "Joined game "+session.ID)
	return session
}

// sweepEnded drops ended sessions; they are never reused. Connection
// bindings into a dropped session go with it, otherwise they outlive the
// session until each channel disconnects. Caller holds the registry mutex.
func (r *Registry) sweepEnded() {
	kept := r.order[:0]
	for _, id := range r.order {
		session, ok := r.Sessions[id]
		if !ok {
			continue
		}
		if session.Ended() {
			delete(r.Sessions, id)
			for connID, sessionID := range r.byConn {
				if sessionID == id {
					delete(r.byConn, connID)
				}
			}
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept
}

// reattach finds a living player for this identity in a non-ended session
// and rebinds the new channel to it.
func (r *Registry) reattach(client *models.Client) *Session {
	for _, id := range r.order {
		session := r.Sessions[id]
		session.Mutex.Lock()
		oldConnID := ""
		for connID, p := range session.Players {
			if p.Name == client.Username && p.Alive() {
				oldConnID = connID
				break
			}
		}
		session.Mutex.Unlock()

		if oldConnID != "" {
			delete(r.byConn, oldConnID)
			if session.Reattach(oldConnID, client) != nil {
				return session
			}
		}
	}
	return nil
}

func (r *Registry) firstOpen() *Session {
	for _, id := range r.order {
		session := r.Sessions[id]
		session.Mutex.Lock()
		open := session.Status == constants.STATUS_WAITING && len(session.Players) < r.cfg.SessionCapacity
		session.Mutex.Unlock()
		if open {
			return session
		}
	}
	return nil
}

// HandleInput routes one action token to the joining client's session.
// Events for channels that never joined are dropped.
func (r *Registry) HandleInput(connID, action string) {
	r.Mutex.Lock()
	sessionID, ok := r.byConn[connID]
	session := r.Sessions[sessionID]
	r.Mutex.Unlock()

	if !ok || session == nil {
		return
	}
	session.ApplyInput(connID, action)
}

// Leave removes the channel's player from its session without closing the
// channel; the session keeps ticking for everyone else.
func (r *Registry) Leave(connID string) {
	r.Mutex.Lock()
	sessionID, ok := r.byConn[connID]
	session := r.Sessions[sessionID]
	delete(r.byConn, connID)
	r.Mutex.Unlock()

	if !ok || session == nil {
		return
	}
	session.RemovePlayer(connID)
}

// Disconnect is Leave plus whatever bookkeeping a dropped channel needs.
func (r *Registry) Disconnect(connID string) {
	r.Leave(connID)
}

// sessionEnded writes each player's score back to the user store, best
// score wins. One call per player.
func (r *Registry) sessionEnded(sessionID string, scores map[string]int) {
	if r.store == nil {
		return
	}
	for username, score := range scores {
		stored, err := r.store.GetScore(username)
		if err != nil {
			log.Printf("Registry: score lookup for %s failed: %v", username, err)
			continue
		}
		if score > stored {
			if err := r.store.SetScore(username, score); err != nil {
				log.Printf("Registry: score write-back for %s failed: %v", username, err)
			}
		}
	}
}
