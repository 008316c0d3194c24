package game

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"arena-backend/constants"
	"arena-backend/models"
)

const (
	playerMaxHealth = 100.0
	playerDamage    = 25.0
	playerSpeed     = 8.0
	playerRange     = 64.0
	playerCooldown  = 500 * time.Millisecond
)

// Player is the server-authoritative state for one connected identity.
// Intent flags are sticky: set by the most recent input event, consumed on
// the next accepted tick.
type Player struct {
	Interactable
	Client        *models.Client
	Score         int
	WantsToMove   bool
	WantsToAttack bool
}

func NewPlayer(client *models.Client) *Player {
	x, y := annulusPoint(constants.PLAYER_SPAWN_MIN, constants.PLAYER_SPAWN_MAX)
	return &Player{
		Interactable: Interactable{
			Entity: Entity{
				ID:        uuid.New().String(),
				Name:      client.Username,
				Sprite:    constants.PlayerSprites[rand.Intn(len(constants.PlayerSprites))],
				X:         x,
				Y:         y,
				Animation: constants.ANIM_IDLE,
			},
			Health:    playerMaxHealth,
			MaxHealth: playerMaxHealth,
			Damage:    playerDamage,
			Direction: Direction{X: 1, Y: 0},
			Cooldown:  playerCooldown,
			Range:     playerRange,
			Speed:     playerSpeed,
		},
		Client: client,
	}
}

// Update consumes the pending intents. enemiesInRange is computed by the
// session so range logic stays in one place; a kill credits the enemy's
// worth to this player exactly once, on the transition to dead.
func (p *Player) Update(now time.Time, enemiesInRange []*Enemy, events *combatEvents) {
	if !p.Alive() {
		p.Animation = constants.ANIM_DEAD
		return
	}

	acted := false

	if p.WantsToMove {
		p.WantsToMove = false
		p.Animation = constants.ANIM_WALK
		p.X += p.Direction.X * p.Speed
		p.Y += p.Direction.Y * p.Speed
		p.LastAction = now
		acted = true
	}

	if p.WantsToAttack {
		p.WantsToAttack = false
		p.Animation = constants.ANIM_ATTACK
		p.LastAction = now
		acted = true
		if events != nil {
			events.attacked(p.ID, p.Sprite)
		}
		for _, enemy := range enemiesInRange {
			if enemy.TakeDamage(p.Damage) {
				p.Score += enemy.Worth
				if events != nil {
					events.died(enemy.ID, enemy.Sprite)
				}
			} else if events != nil {
				events.hit(enemy.ID, enemy.Sprite)
			}
		}
	}

	if !acted && now.Sub(p.LastAction) > p.Cooldown {
		p.Animation = constants.ANIM_IDLE
	}
}

// ApplyAction interprets one input token. Movement tokens use sign-only
// direction components, so diagonal travel is faster than axial travel.
// Unknown tokens are ignored by the caller; dead players accept nothing.
func (p *Player) ApplyAction(action string) bool {
	if !p.Alive() {
		return false
	}

	switch action {
	case constants.ACTION_MOVE_LEFT:
		p.setMove(-1, 0)
	case constants.ACTION_MOVE_RIGHT:
		p.setMove(1, 0)
	case constants.ACTION_MOVE_UP:
		p.setMove(0, -1)
	case constants.ACTION_MOVE_DOWN:
		p.setMove(0, 1)
	case constants.ACTION_MOVE_UP_LEFT:
		p.setMove(-1, -1)
	case constants.ACTION_MOVE_UP_RIGHT:
		p.setMove(1, -1)
	case constants.ACTION_MOVE_DOWN_LEFT:
		p.setMove(-1, 1)
	case constants.ACTION_MOVE_DOWN_RIGHT:
		p.setMove(1, 1)
	case constants.ACTION_ATTACK:
		p.WantsToAttack = true
	case constants.CHEAT_INC_SPD:
		p.Speed += 4
	case constants.CHEAT_INC_HP:
		p.MaxHealth += 100
		p.Health += 100
	case constants.CHEAT_INC_DMG:
		p.Damage += 25
	case constants.CHEAT_INC_RANGE:
		p.Range += 32
	case constants.CHEAT_INSTAKILL:
		p.Damage = 1e9
	case constants.CHEAT_GODMODE:
		p.MaxHealth = 1e9
		p.Health = 1e9
	default:
		return false
	}
	return true
}

func (p *Player) setMove(dx, dy float64) {
	p.Direction = Direction{X: dx, Y: dy}
	p.WantsToMove = true
}
