package game

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/segmentio/ksuid"

	"arena-backend/config"
	"arena-backend/constants"
	"arena-backend/models"
)

// Session is one isolated game instance: its own players, enemies,
// collectibles and lifecycle clock. Status only ever moves
// waiting -> playing -> ended; once ended the session is inert and the
// registry sweeps it away.
type Session struct {
	ID           string
	Status       string
	Message      string
	StartedAt    time.Time
	LastTickAt   time.Time
	Players      map[string]*Player // keyed by connection id
	Enemies      []*Enemy
	Collectibles []*Collectible

	Mutex   sync.Mutex
	cfg     config.GameConfig
	now     func() time.Time
	onEnded func(sessionID string, scores map[string]int)
	done    chan struct{}
}

// combatEvent queues a fire-and-forget notification produced while the
// session lock is held; the batch is flushed after the lock is released
// so a slow client can never stall the tick.
type combatEvent struct {
	msgType string
	payload models.CombatEvent
}

type combatEvents struct {
	pending []combatEvent
}

func (c *combatEvents) attacked(entityID, sprite string) {
	c.pending = append(c.pending, combatEvent{constants.MSG_ATTACK, models.CombatEvent{EntityID: entityID, Sprite: sprite}})
}

func (c *combatEvents) hit(entityID, sprite string) {
	c.pending = append(c.pending, combatEvent{constants.MSG_HIT, models.CombatEvent{EntityID: entityID, Sprite: sprite}})
}

func (c *combatEvents) died(entityID, sprite string) {
	c.pending = append(c.pending, combatEvent{constants.MSG_DEATH, models.CombatEvent{EntityID: entityID, Sprite: sprite}})
}

func newSession(cfg config.GameConfig, now func() time.Time, onEnded func(sessionID string, scores map[string]int)) *Session {
	s := &Session{
		ID:           ksuid.New().String(),
		Status:       constants.STATUS_WAITING,
		Message:      "Waiting for players",
		StartedAt:    now(),
		Players:      make(map[string]*Player),
		Enemies:      SpawnEnemies(cfg.EnemyCount, cfg.SpawnDeadzone, cfg.SpawnRadius),
		Collectibles: SpawnCollectibles(cfg.CoinCount, cfg.PotionCount, cfg.SpawnDeadzone, cfg.SpawnRadius),
		cfg:          cfg,
		now:          now,
		onEnded:      onEnded,
		done:         make(chan struct{}),
	}
	return s
}

// NewSession spawns the session's entities and starts its loop goroutine.
func NewSession(cfg config.GameConfig, onEnded func(sessionID string, scores map[string]int)) *Session {
	s := newSession(cfg, time.Now, onEnded)
	go s.run()
	return s
}

// run drives the session on a fast external ticker. Actual simulation
// rate is enforced inside Tick by the monotonic-clock gate. The ticker is
// stopped exactly once, when the session has ended.
func (s *Session) run() {
	ticker := time.NewTicker(constants.LOOP_INTERVAL)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.safeTick()
		case <-s.done:
			return
		}
	}
}

// safeTick contains a tick fault within this session: a panicking tick
// marks the session ended instead of leaving a zombie timer behind.
func (s *Session) safeTick() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Session %s tick panic: %v, ending session", s.ID, r)
			s.Mutex.Lock()
			if s.Status != constants.STATUS_ENDED {
				s.Status = constants.STATUS_ENDED
				s.Message = "Game over"
				close(s.done)
			}
			s.Mutex.Unlock()
		}
	}()
	s.Tick(s.now())
}

func (s *Session) tickInterval() time.Duration {
	return time.Second / time.Duration(s.cfg.TicksPerSecond)
}

func (s *Session) waitTime() time.Duration {
	return time.Duration(s.cfg.WaitSeconds) * time.Second
}

func (s *Session) totalTime() time.Duration {
	return time.Duration(s.cfg.WaitSeconds+s.cfg.PlaySeconds) * time.Second
}

// tickResult is what advance hands back for the post-unlock work: the
// broadcast payload plus, on the terminal tick, the final scores.
type tickResult struct {
	state   models.GameStatePayload
	clients []*models.Client
	events  *combatEvents
	ended   bool
	scores  map[string]int
}

// Tick advances the simulation if at least one simulation interval has
// elapsed since the last accepted tick. Invocations inside the gate
// window mutate nothing. Broadcasting and the end-of-session callback
// happen here, outside the session lock.
func (s *Session) Tick(now time.Time) {
	res := s.advance(now)
	if res == nil {
		return
	}

	broadcast(res.clients, constants.MSG_GAME_STATE, res.state)
	res.events.flush(res.clients)

	if res.ended && s.onEnded != nil {
		s.onEnded(s.ID, res.scores)
	}
}

// advance runs the locked portion of a tick. The unlock is deferred so a
// panic inside the simulation releases the mutex before safeTick's
// recover takes it to mark the session ended.
func (s *Session) advance(now time.Time) *tickResult {
	s.Mutex.Lock()
	defer s.Mutex.Unlock()

	if s.Status == constants.STATUS_ENDED {
		return nil
	}

	if now.Sub(s.LastTickAt) < s.tickInterval() {
		return nil
	}
	s.LastTickAt = now

	elapsed := now.Sub(s.StartedAt)

	if s.Status == constants.STATUS_WAITING && elapsed >= s.waitTime() {
		s.Status = constants.STATUS_PLAYING
	}

	if s.Status == constants.STATUS_PLAYING && elapsed >= s.totalTime() {
		return s.end()
	}

	events := &combatEvents{}

	switch s.Status {
	case constants.STATUS_WAITING:
		remaining := s.waitTime() - elapsed
		s.Message = fmt.Sprintf("Waiting for players... game starts in %ds", int(remaining.Seconds()))
	case constants.STATUS_PLAYING:
		remaining := s.totalTime() - elapsed
		s.Message = fmt.Sprintf("Time remaining: %ds", int(remaining.Seconds()))
		s.simulate(now, events)
	}

	return &tickResult{
		state:   s.buildState(),
		clients: s.clients(),
		events:  events,
	}
}

// simulate runs one accepted tick in deterministic order: players, then
// enemies, then collectibles, players sorted by connection id so a tick
// resolves identically for identical state. Dead entities are filtered
// out of every targeting computation, never re-selected.
func (s *Session) simulate(now time.Time, events *combatEvents) {
	players := s.playersInOrder()

	for _, p := range players {
		var inRange []*Enemy
		if p.WantsToAttack {
			for _, e := range s.Enemies {
				if e.Alive() && p.DistanceTo(&e.Entity) < p.Range {
					inRange = append(inRange, e)
				}
			}
		}
		p.Update(now, inRange, events)
	}

	for _, e := range s.Enemies {
		e.Update(now, nearestLivingPlayer(players, &e.Entity), events)
	}

	for _, c := range s.Collectibles {
		c.Update(nearestLivingPlayer(players, &c.Entity))
	}
}

func (s *Session) playersInOrder() []*Player {
	connIDs := make([]string, 0, len(s.Players))
	for connID := range s.Players {
		connIDs = append(connIDs, connID)
	}
	sort.Strings(connIDs)

	players := make([]*Player, 0, len(connIDs))
	for _, connID := range connIDs {
		players = append(players, s.Players[connID])
	}
	return players
}

func nearestLivingPlayer(players []*Player, from *Entity) *Player {
	var nearest *Player
	best := 0.0
	for _, p := range players {
		if !p.Alive() {
			continue
		}
		d := from.DistanceTo(&p.Entity)
		if nearest == nil || d < best {
			nearest = p
			best = d
		}
	}
	return nearest
}

// end performs the terminal transition: channels detached, loop stopped.
// Caller holds the lock; the final broadcast and score write-back happen
// in Tick once the lock is released.
func (s *Session) end() *tickResult {
	s.Status = constants.STATUS_ENDED
	s.Message = "Game over"

	res := &tickResult{
		state:   s.buildState(),
		clients: s.clients(),
		events:  &combatEvents{},
		ended:   true,
		scores:  make(map[string]int, len(s.Players)),
	}
	for _, p := range s.Players {
		res.scores[p.Name] = p.Score
		p.Client = nil
	}

	close(s.done)
	return res
}

func (s *Session) clients() []*models.Client {
	out := make([]*models.Client, 0, len(s.Players))
	for _, p := range s.Players {
		if p.Client != nil {
			out = append(out, p.Client)
		}
	}
	return out
}

func broadcast(clients []*models.Client, msgType string, data any) {
	for _, c := range clients {
		c.Emit(msgType, data)
	}
}

func (c *combatEvents) flush(clients []*models.Client) {
	for _, ev := range c.pending {
		broadcast(clients, ev.msgType, ev.payload)
	}
}

// buildState serializes the session for broadcast. Facing is derived here
// from the stored direction, consumed collectibles are omitted, and
// collectibles carry the score/health sentinels the renderer expects.
func (s *Session) buildState() models.GameStatePayload {
	objects := make(map[string]models.GameObject, len(s.Players)+len(s.Enemies)+len(s.Collectibles))

	for _, p := range s.Players {
		objects[p.ID] = models.GameObject{
			Name:      p.Name,
			Position:  [2]float64{p.X, p.Y},
			Score:     p.Score,
			Sprite:    p.Sprite,
			Health:    p.Health,
			Animation: p.Animation,
			Direction: p.Facing(),
		}
	}

	for _, e := range s.Enemies {
		objects[e.ID] = models.GameObject{
			Name:      e.Name,
			Position:  [2]float64{e.X, e.Y},
			Score:     0,
			Sprite:    e.Sprite,
			Health:    e.Health,
			Animation: e.Animation,
			Direction: e.Facing(),
		}
	}

	for _, c := range s.Collectibles {
		if c.Consumed {
			continue
		}
		objects[c.ID] = models.GameObject{
			Name:      c.Name,
			Position:  [2]float64{c.X, c.Y},
			Score:     -1,
			Sprite:    c.Sprite,
			Health:    -1,
			Animation: c.Animation,
			Direction: constants.FACING_LEFT,
		}
	}

	return models.GameStatePayload{
		Status:      s.Status,
		Message:     s.Message,
		GameObjects: objects,
	}
}

// AddPlayer constructs a player for the client and announces it.
func (s *Session) AddPlayer(client *models.Client) *Player {
	s.Mutex.Lock()
	player := NewPlayer(client)
	s.Players[client.ID] = player
	s.Mutex.Unlock()

	client.Emit(constants.MSG_JOINED, models.JoinedPayload{
		ConnectionID: client.ID,
		PlayerID:     player.ID,
	})
	return player
}

// Reattach rebinds a reconnecting channel to an existing living player,
// preserving position, health and score.
func (s *Session) Reattach(oldConnID string, client *models.Client) *Player {
	s.Mutex.Lock()
	player := s.Players[oldConnID]
	if player == nil {
		s.Mutex.Unlock()
		return nil
	}
	delete(s.Players, oldConnID)
	player.Client = client
	player.Name = client.Username
	s.Players[client.ID] = player
	s.Mutex.Unlock()

	client.Emit(constants.MSG_JOINED, models.JoinedPayload{
		ConnectionID: client.ID,
		PlayerID:     player.ID,
	})
	return player
}

// RemovePlayer drops a channel from the session without touching the
// session's timer; remaining players keep playing.
func (s *Session) RemovePlayer(connID string) {
	s.Mutex.Lock()
	delete(s.Players, connID)
	s.Mutex.Unlock()
}

// ApplyInput sets the player's intent flags from one action token.
// Unknown tokens and events for missing players are ignored with a log.
func (s *Session) ApplyInput(connID, action string) {
	s.Mutex.Lock()
	defer s.Mutex.Unlock()

	player, ok := s.Players[connID]
	if !ok {
		log.Printf("Session %s: input for unknown connection %s", s.ID, connID)
		return
	}
	if !player.ApplyAction(action) {
		log.Printf("Session %s: ignoring action %q from %s", s.ID, action, player.Name)
	}
}

// Ended reports whether the session reached its terminal state.
func (s *Session) Ended() bool {
	s.Mutex.Lock()
	defer s.Mutex.Unlock()
	return s.Status == constants.STATUS_ENDED
}

// PlayerCount is used by the matchmaker's capacity check.
func (s *Session) PlayerCount() int {
	s.Mutex.Lock()
	defer s.Mutex.Unlock()
	return len(s.Players)
}
