package constants

import "time"

const (
	// Session lifecycle defaults (overridable via config)
	TICKS_PER_SECOND = 30
	WAIT_TIME        = 10 * time.Second
	GAME_TIME        = 120 * time.Second
	LOOP_INTERVAL    = 10 * time.Millisecond
	SESSION_CAPACITY = 4

	// World tuning
	WORLD_RADIUS     = 1000.0
	SPAWN_DEADZONE   = 200.0
	ENEMY_COUNT      = 12
	COIN_COUNT       = 8
	POTION_COUNT     = 4
	PLAYER_SPAWN_MIN = 50.0
	PLAYER_SPAWN_MAX = 150.0

	// Message types (server -> client)
	MSG_CONNECTED  = "connected"
	MSG_MESSAGE    = "message"
	MSG_JOINED     = "joined"
	MSG_GAME_STATE = "gameState"
	MSG_ATTACK     = "attack"
	MSG_HIT        = "hit"
	MSG_DEATH      = "death"
	MSG_ERROR      = "error"

	// Message types (client -> server)
	MSG_JOIN_GAME = "joinGame"
	MSG_INPUT     = "input"
	MSG_LEAVE     = "leave"

	// Session status
	STATUS_WAITING = "waiting"
	STATUS_PLAYING = "playing"
	STATUS_ENDED   = "ended"

	// Animation names the rendering layer recognizes
	ANIM_IDLE       = "idle"
	ANIM_WALK       = "walk"
	ANIM_RUN        = "run"
	ANIM_ATTACK     = "attack"
	ANIM_HURT       = "hurt"
	ANIM_DEAD       = "dead"
	ANIM_JUMP       = "jump"
	ANIM_PROTECTION = "protection"

	// Facing
	FACING_LEFT  = "left"
	FACING_RIGHT = "right"
)

// Input action tokens
const (
	ACTION_MOVE_LEFT       = "move_left"
	ACTION_MOVE_RIGHT      = "move_right"
	ACTION_MOVE_UP         = "move_up"
	ACTION_MOVE_DOWN       = "move_down"
	ACTION_MOVE_UP_LEFT    = "move_up_left"
	ACTION_MOVE_UP_RIGHT   = "move_up_right"
	ACTION_MOVE_DOWN_LEFT  = "move_down_left"
	ACTION_MOVE_DOWN_RIGHT = "move_down_right"
	ACTION_ATTACK          = "attack"

	// Debug/cheat tokens, only honored while the player is alive
	CHEAT_INC_SPD   = "cheat_inc_spd"
	CHEAT_INC_HP    = "cheat_inc_hp"
	CHEAT_INC_DMG   = "cheat_inc_dmg"
	CHEAT_INC_RANGE = "cheat_inc_range"
	CHEAT_INSTAKILL = "cheat_instakill"
	CHEAT_GODMODE   = "cheat_godmode"
)

// Sprite rosters matching the client spritesheets
var (
	PlayerSprites = []string{"Samurai", "SamuraiArcher", "SamuraiCommander"}
	EnemySprites  = []string{"WhiteWerewolf", "BlackWerewolf", "RedWerewolf", "Gotoku", "Onre", "Yurei"}
)
