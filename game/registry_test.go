package game

import (
	"testing"

	"arena-backend/constants"
)

type fakeStore struct {
	scores map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{scores: make(map[string]int)}
}

func (f *fakeStore) GetScore(username string) (int, error) {
	return f.scores[username], nil
}

func (f *fakeStore) SetScore(username string, score int) error {
	f.scores[username] = score
	return nil
}

func TestJoinCreatesSessionAndPlayer(t *testing.T) {
	r := NewRegistry(testConfig(), nil)
	client := newTestClient("alice")

	session := r.Join(client)
	if session == nil {
		t.Fatalf("expected a session")
	}
	if session.PlayerCount() != 1 {
		t.Fatalf("expected 1 player, got %d", session.PlayerCount())
	}
	if len(r.Sessions) != 1 {
		t.Fatalf("expected 1 registered session, got %d", len(r.Sessions))
	}
}

func TestJoinFillsSessionsToCapacity(t *testing.T) {
	cfg := testConfig()
	cfg.SessionCapacity = 4
	r := NewRegistry(cfg, nil)

	first := r.Join(newTestClient("p1"))
	for _, name := range []string{"p2", "p3", "p4"} {
		if got := r.Join(newTestClient(name)); got != first {
			t.Fatalf("expected %s to land in the first session", name)
		}
	}

	// Capacity reached: the fifth player gets a fresh session.
	fifth := r.Join(newTestClient("p5"))
	if fifth == first {
		t.Fatalf("expected a new session once capacity is reached")
	}
	if len(r.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(r.Sessions))
	}
}

func TestRejoinRebindsLivingPlayer(t *testing.T) {
	r := NewRegistry(testConfig(), nil)

	client := newTestClient("alice")
	session := r.Join(client)

	session.Mutex.Lock()
	player := session.Players[client.ID]
	player.Score = 42
	player.X, player.Y = 7, 9
	session.Mutex.Unlock()

	reconnect := newTestClient("alice")
	again := r.Join(reconnect)

	if again != session {
		t.Fatalf("expected reconnection to land in the original session")
	}
	session.Mutex.Lock()
	rebound := session.Players[reconnect.ID]
	session.Mutex.Unlock()
	if rebound == nil {
		t.Fatalf("expected player under the new connection id")
	}
	if rebound != player {
		t.Fatalf("expected the same player object, got a new one")
	}
	if rebound.Score != 42 || rebound.X != 7 || rebound.Y != 9 {
		t.Fatalf("reconnection lost state: score=%d pos=(%v,%v)", rebound.Score, rebound.X, rebound.Y)
	}
	if rebound.Client != reconnect {
		t.Fatalf("channel not rebound to the new connection")
	}
	if session.PlayerCount() != 1 {
		t.Fatalf("reconnection duplicated the player, count=%d", session.PlayerCount())
	}
}

func TestRejoinIgnoresDeadPlayer(t *testing.T) {
	r := NewRegistry(testConfig(), nil)

	client := newTestClient("alice")
	session := r.Join(client)

	session.Mutex.Lock()
	corpse := session.Players[client.ID]
	corpse.Health = 0
	session.Mutex.Unlock()

	reconnect := newTestClient("alice")
	again := r.Join(reconnect)

	// The corpse stays where it fell; the identity starts over with a
	// fresh player instead of rebinding.
	if again != session {
		t.Fatalf("expected the open session to take the new player")
	}
	session.Mutex.Lock()
	fresh := session.Players[reconnect.ID]
	session.Mutex.Unlock()
	if fresh == nil || fresh == corpse {
		t.Fatalf("expected a fresh player for a dead identity")
	}
}

func TestEndedSessionsAreSweptAndNeverReused(t *testing.T) {
	r := NewRegistry(testConfig(), nil)

	client := newTestClient("alice")
	session := r.Join(client)

	session.Mutex.Lock()
	session.Status = constants.STATUS_ENDED
	session.Mutex.Unlock()

	next := r.Join(newTestClient("bob"))
	if next == session {
		t.Fatalf("ended session was reused")
	}
	if _, ok := r.Sessions[session.ID]; ok {
		t.Fatalf("ended session not swept")
	}
}

func TestSweepDropsSessionConnectionBindings(t *testing.T) {
	r := NewRegistry(testConfig(), nil)

	client := newTestClient("alice")
	session := r.Join(client)

	session.Mutex.Lock()
	session.Status = constants.STATUS_ENDED
	session.Mutex.Unlock()

	// The next join sweeps the ended session; its connection bindings
	// must go with it, not linger until the channel disconnects.
	r.Join(newTestClient("bob"))

	r.Mutex.Lock()
	_, bound := r.byConn[client.ID]
	bindings := len(r.byConn)
	r.Mutex.Unlock()

	if bound {
		t.Fatalf("swept session left a stale connection binding")
	}
	if bindings != 1 {
		t.Fatalf("expected only the new binding, got %d", bindings)
	}
}

func TestLeaveRemovesPlayerWithoutEndingSession(t *testing.T) {
	r := NewRegistry(testConfig(), nil)

	alice := newTestClient("alice")
	bob := newTestClient("bob")
	session := r.Join(alice)
	r.Join(bob)

	r.Leave(alice.ID)

	if session.PlayerCount() != 1 {
		t.Fatalf("expected 1 player after leave, got %d", session.PlayerCount())
	}
	if session.Ended() {
		t.Fatalf("leave ended the session")
	}

	// Input from the departed channel is a no-op, not a fault.
	r.HandleInput(alice.ID, constants.ACTION_ATTACK)
}

func TestScoreWriteBackBestScoreWins(t *testing.T) {
	store := newFakeStore()
	store.scores["alice"] = 50
	store.scores["bob"] = 5

	r := NewRegistry(testConfig(), store)
	r.sessionEnded("session", map[string]int{
		"alice": 30, // below the stored best, must not regress
		"bob":   25,
	})

	if store.scores["alice"] != 50 {
		t.Fatalf("score regressed for alice: %d", store.scores["alice"])
	}
	if store.scores["bob"] != 25 {
		t.Fatalf("expected bob's score written back, got %d", store.scores["bob"])
	}
}
