package game

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"arena-backend/config"
	"arena-backend/constants"
	"arena-backend/models"
)

var testBase = time.Unix(1700000000, 0)

func testConfig() config.GameConfig {
	cfg := config.Default().Game
	cfg.WaitSeconds = 10
	cfg.PlaySeconds = 50
	cfg.TicksPerSecond = 30
	return cfg
}

func newTestClient(username string) *models.Client {
	return &models.Client{
		ID:       uuid.New().String(),
		Username: username,
		Send:     make(chan []byte, 256),
		JoinedAt: testBase,
	}
}

func drain(c *models.Client) int {
	n := 0
	for {
		select {
		case <-c.Send:
			n++
		default:
			return n
		}
	}
}

func newTestSession(cfg config.GameConfig) *Session {
	return newSession(cfg, func() time.Time { return testBase }, nil)
}

func TestTickGateAcceptsOnePerInterval(t *testing.T) {
	s := newTestSession(testConfig())
	client := newTestClient("alice")
	s.AddPlayer(client)
	drain(client)

	s.Tick(testBase)
	if got := drain(client); got != 1 {
		t.Fatalf("expected 1 broadcast after first tick, got %d", got)
	}
	first := s.LastTickAt

	// Well inside the 1000/TPS ms gate window: no mutation, no broadcast.
	s.Tick(testBase.Add(10 * time.Millisecond))
	if got := drain(client); got != 0 {
		t.Fatalf("expected no broadcast inside gate window, got %d", got)
	}
	if !s.LastTickAt.Equal(first) {
		t.Fatalf("gate window tick mutated LastTickAt")
	}

	s.Tick(testBase.Add(40 * time.Millisecond))
	if got := drain(client); got != 1 {
		t.Fatalf("expected 1 broadcast after gate elapsed, got %d", got)
	}
}

func TestLifecycleTimeline(t *testing.T) {
	s := newTestSession(testConfig())

	s.Tick(testBase.Add(5 * time.Second))
	if s.Status != constants.STATUS_WAITING {
		t.Fatalf("expected waiting at t=5s, got %s", s.Status)
	}
	if !strings.Contains(s.Message, "5") {
		t.Fatalf("expected message to reflect 5s remaining, got %q", s.Message)
	}

	s.Tick(testBase.Add(11 * time.Second))
	if s.Status != constants.STATUS_PLAYING {
		t.Fatalf("expected playing at t=11s, got %s", s.Status)
	}

	s.Tick(testBase.Add(61 * time.Second))
	if s.Status != constants.STATUS_ENDED {
		t.Fatalf("expected ended at t=61s, got %s", s.Status)
	}
}

func TestEndedIsTerminal(t *testing.T) {
	s := newTestSession(testConfig())
	client := newTestClient("alice")
	s.AddPlayer(client)
	drain(client)

	s.Tick(testBase.Add(61 * time.Second))
	if s.Status != constants.STATUS_ENDED {
		t.Fatalf("expected ended, got %s", s.Status)
	}
	if got := drain(client); got != 1 {
		t.Fatalf("expected exactly one final broadcast, got %d", got)
	}

	// Channels are detached and the loop is inert: further invocations
	// mutate nothing and broadcast nothing.
	last := s.LastTickAt
	s.Tick(testBase.Add(62 * time.Second))
	if got := drain(client); got != 0 {
		t.Fatalf("expected no broadcast after ended, got %d", got)
	}
	if !s.LastTickAt.Equal(last) {
		t.Fatalf("tick after ended mutated state")
	}
}

func playingSession(t *testing.T, cfg config.GameConfig) (*Session, *models.Client, time.Time) {
	t.Helper()
	s := newTestSession(cfg)
	client := newTestClient("alice")
	s.AddPlayer(client)
	drain(client)

	now := testBase.Add(time.Duration(cfg.WaitSeconds+1) * time.Second)
	s.Tick(now)
	if s.Status != constants.STATUS_PLAYING {
		t.Fatalf("expected playing, got %s", s.Status)
	}
	drain(client)
	return s, client, now
}

func TestAttackKillsEnemyAndCreditsWorthOnce(t *testing.T) {
	cfg := testConfig()
	s, client, now := playingSession(t, cfg)

	player := s.Players[client.ID]
	player.X, player.Y = 0, 0
	player.Range = 64
	player.Damage = 34

	enemy := NewEnemy(10, 10)
	enemy.Health = 100
	s.Enemies = []*Enemy{enemy}
	s.Collectibles = nil

	interval := s.tickInterval()
	for i := 0; i < 3; i++ {
		s.ApplyInput(client.ID, constants.ACTION_ATTACK)
		now = now.Add(interval)
		s.Tick(now)
	}

	if enemy.Health > 0 {
		t.Fatalf("expected enemy dead after 3 attack ticks, health=%v", enemy.Health)
	}
	if enemy.Animation != constants.ANIM_DEAD {
		t.Fatalf("expected dead animation, got %q", enemy.Animation)
	}
	if player.Score != enemy.Worth {
		t.Fatalf("expected score %d, got %d", enemy.Worth, player.Score)
	}

	// Attacking the corpse again must not re-credit: dead enemies are
	// excluded from targeting entirely.
	s.ApplyInput(client.ID, constants.ACTION_ATTACK)
	now = now.Add(interval)
	s.Tick(now)
	if player.Score != enemy.Worth {
		t.Fatalf("corpse attack re-credited score: got %d", player.Score)
	}
}

func TestDeadPlayerIsInertAndNeverTargeted(t *testing.T) {
	cfg := testConfig()
	s, client, now := playingSession(t, cfg)

	player := s.Players[client.ID]
	player.Health = 0
	player.Animation = constants.ANIM_DEAD

	enemy := NewEnemy(1, 1)
	s.Enemies = []*Enemy{enemy}
	s.Collectibles = nil

	s.ApplyInput(client.ID, constants.ACTION_MOVE_RIGHT)
	x := player.X

	now = now.Add(s.tickInterval())
	s.Tick(now)

	if player.X != x {
		t.Fatalf("dead player moved")
	}
	if player.Animation != constants.ANIM_DEAD {
		t.Fatalf("dead player animation changed to %q", player.Animation)
	}
	if enemy.Animation != constants.ANIM_IDLE {
		t.Fatalf("enemy targeted a dead player, animation %q", enemy.Animation)
	}
}

func TestIntentFlagsLastWriteWins(t *testing.T) {
	cfg := testConfig()
	s, client, now := playingSession(t, cfg)

	player := s.Players[client.ID]
	player.X, player.Y = 0, 0
	s.Enemies = nil
	s.Collectibles = nil

	// A burst of moves between ticks collapses to the last direction.
	s.ApplyInput(client.ID, constants.ACTION_MOVE_LEFT)
	s.ApplyInput(client.ID, constants.ACTION_MOVE_DOWN)
	s.ApplyInput(client.ID, constants.ACTION_MOVE_RIGHT)

	now = now.Add(s.tickInterval())
	s.Tick(now)

	if player.X != player.Speed || player.Y != 0 {
		t.Fatalf("expected displacement (%v,0), got (%v,%v)", player.Speed, player.X, player.Y)
	}
	if player.WantsToMove {
		t.Fatalf("move intent not consumed")
	}
}

func TestConsumedCollectibleOmittedFromBroadcast(t *testing.T) {
	cfg := testConfig()
	s, client, now := playingSession(t, cfg)

	player := s.Players[client.ID]
	player.X, player.Y = 0, 0
	s.Enemies = nil
	coin := NewCoin(5, 5)
	s.Collectibles = []*Collectible{coin}

	now = now.Add(s.tickInterval())
	s.Tick(now)

	if !coin.Consumed {
		t.Fatalf("expected coin consumed")
	}

	s.Mutex.Lock()
	state := s.buildState()
	s.Mutex.Unlock()
	if _, ok := state.GameObjects[coin.ID]; ok {
		t.Fatalf("consumed collectible still serialized")
	}
	obj, ok := state.GameObjects[player.ID]
	if !ok {
		t.Fatalf("player missing from broadcast")
	}
	if obj.Score != player.Score {
		t.Fatalf("expected serialized score %d, got %d", player.Score, obj.Score)
	}
}

func TestTickFaultEndsSessionAndReleasesLock(t *testing.T) {
	cfg := testConfig()
	now := testBase
	s := newSession(cfg, func() time.Time { return now }, nil)
	client := newTestClient("alice")
	s.AddPlayer(client)

	now = testBase.Add(time.Duration(cfg.WaitSeconds+1) * time.Second)
	s.Tick(now)
	if s.Status != constants.STATUS_PLAYING {
		t.Fatalf("expected playing, got %s", s.Status)
	}

	// A corrupt entity faults the next simulation step while the session
	// mutex is held. Recovery must still mark the session ended and leave
	// the mutex free.
	s.Enemies = append(s.Enemies, nil)
	now = now.Add(s.tickInterval())
	s.safeTick()

	if !s.Ended() {
		t.Fatalf("expected session ended after tick fault, status=%s", s.Status)
	}
	if !s.Mutex.TryLock() {
		t.Fatalf("session mutex still held after fault recovery")
	}
	s.Mutex.Unlock()
}

func TestOverflowedClientIsContained(t *testing.T) {
	cfg := testConfig()
	s, healthy, now := playingSession(t, cfg)

	slow := &models.Client{
		ID:       uuid.New().String(),
		Username: "bob",
		Send:     make(chan []byte, 1),
		JoinedAt: testBase,
	}
	s.AddPlayer(slow) // the joined event takes the only queue slot

	// The first broadcast overflows the slow queue, which closes it; the
	// ticks after that must drop its messages, not send on a closed
	// channel and take the session down with it.
	for i := 0; i < 3; i++ {
		now = now.Add(s.tickInterval())
		s.Tick(now)
	}

	if s.Ended() {
		t.Fatalf("one slow client ended the session")
	}
	if got := drain(healthy); got == 0 {
		t.Fatalf("healthy player stopped receiving broadcasts")
	}

	// A direct emit after overflow is a no-op too.
	slow.Emit(constants.MSG_MESSAGE, "ping")
}

func TestCollectibleSentinelFields(t *testing.T) {
	s := newTestSession(testConfig())
	s.Enemies = nil
	coin := NewCoin(5, 5)
	s.Collectibles = []*Collectible{coin}

	s.Mutex.Lock()
	state := s.buildState()
	s.Mutex.Unlock()

	obj, ok := state.GameObjects[coin.ID]
	if !ok {
		t.Fatalf("collectible missing from broadcast")
	}
	if obj.Score != -1 || obj.Health != -1 {
		t.Fatalf("expected score/health sentinels -1/-1, got %d/%v", obj.Score, obj.Health)
	}
}
