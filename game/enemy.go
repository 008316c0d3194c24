package game

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"arena-backend/constants"
)

const (
	enemyMaxHealth = 100.0
	enemyDamage    = 10.0
	enemySpeed     = 3.0
	enemyRange     = 48.0
	enemyWorth     = 10
	enemyCooldown  = time.Second
	enemySimRadius = 600.0
)

// Enemy chases the nearest living player. Outside SimulationRadius it
// freezes instead of despawning; a frozen enemy still renders but costs
// nothing and cannot chase players across the whole arena.
type Enemy struct {
	Interactable
	Worth            int
	SimulationRadius float64
}

func NewEnemy(x, y float64) *Enemy {
	sprite := constants.EnemySprites[rand.Intn(len(constants.EnemySprites))]
	return &Enemy{
		Interactable: Interactable{
			Entity: Entity{
				ID:        uuid.New().String(),
				Name:      sprite,
				Sprite:    sprite,
				X:         x,
				Y:         y,
				Animation: constants.ANIM_IDLE,
			},
			Health:    enemyMaxHealth,
			MaxHealth: enemyMaxHealth,
			Damage:    enemyDamage,
			Direction: Direction{X: -1, Y: 0},
			Cooldown:  enemyCooldown,
			Range:     enemyRange,
			Speed:     enemySpeed,
		},
		Worth:            enemyWorth,
		SimulationRadius: enemySimRadius,
	}
}

// Update advances one tick against the nearest living player, or idles
// when there is none. The attack animation plays every tick in range, but
// damage lands only when the cooldown has elapsed.
func (e *Enemy) Update(now time.Time, target *Player, events *combatEvents) {
	if !e.Alive() {
		e.Animation = constants.ANIM_DEAD
		return
	}

	if target == nil {
		e.Animation = constants.ANIM_IDLE
		return
	}

	dist := e.DistanceTo(&target.Entity)
	if dist > e.SimulationRadius {
		e.Animation = constants.ANIM_IDLE
		return
	}

	// Sign-only steering: diagonal pursuit is faster than axial. This
	// matches the client's expectations, see DESIGN.md.
	e.Direction = Direction{X: sign(target.X - e.X), Y: sign(target.Y - e.Y)}

	if dist < e.Range {
		e.Animation = constants.ANIM_ATTACK
		if now.Sub(e.LastAction) >= e.Cooldown {
			e.LastAction = now
			if events != nil {
				events.attacked(e.ID, e.Sprite)
			}
			if target.TakeDamage(e.Damage) {
				if events != nil {
					events.died(target.ID, target.Sprite)
				}
			} else if events != nil {
				events.hit(target.ID, target.Sprite)
			}
		}
		return
	}

	e.Animation = constants.ANIM_WALK
	e.X += e.Direction.X * e.Speed
	e.Y += e.Direction.Y * e.Speed
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
