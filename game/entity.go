package game

import (
	"math"
	"time"

	"arena-backend/constants"
)

// Entity is the base state shared by every simulated object.
type Entity struct {
	ID        string
	Name      string
	Sprite    string
	X         float64
	Y         float64
	Animation string
}

// Direction is the last nonzero movement direction, used for facing and
// for displacement. Components are -1, 0 or 1.
type Direction struct {
	X float64
	Y float64
}

// Interactable adds combat state on top of Entity.
type Interactable struct {
	Entity
	Health     float64
	MaxHealth  float64
	Damage     float64
	Direction  Direction
	LastAction time.Time
	Cooldown   time.Duration
	Range      float64
	Speed      float64
}

func (e *Entity) DistanceTo(other *Entity) float64 {
	dx := e.X - other.X
	dy := e.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

func (i *Interactable) Alive() bool {
	return i.Health > 0
}

// Facing derives the render-side facing from the movement direction.
// Computed at serialization time only, never stored.
func (i *Interactable) Facing() string {
	if i.Direction.X > 0 {
		return constants.FACING_RIGHT
	}
	return constants.FACING_LEFT
}

// TakeDamage clamps health at zero and flips the entity to its terminal
// dead animation. Returns true on the transition to dead so the caller can
// credit a kill exactly once.
func (i *Interactable) TakeDamage(amount float64) bool {
	if !i.Alive() {
		return false
	}
	i.Health -= amount
	if i.Health <= 0 {
		i.Health = 0
		i.Animation = constants.ANIM_DEAD
		return true
	}
	return false
}
