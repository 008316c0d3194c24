package game

import (
	"github.com/google/uuid"

	"arena-backend/constants"
)

const (
	coinWorth         = 5
	potionHeal        = 20.0
	pickupRadius      = 32.0
	collectibleCoin   = "Coin"
	collectiblePotion = "Potion"
)

// Collectible is a passive pickup. The effect fires exactly once, for the
// first living player inside the pickup radius; after that the Consumed
// flag stays set and the object disappears from broadcasts but is never
// removed from the session's list.
type Collectible struct {
	Entity
	PickupRadius float64
	Consumed     bool
}

func NewCoin(x, y float64) *Collectible {
	return newCollectible(collectibleCoin, x, y)
}

func NewPotion(x, y float64) *Collectible {
	return newCollectible(collectiblePotion, x, y)
}

func newCollectible(sprite string, x, y float64) *Collectible {
	return &Collectible{
		Entity: Entity{
			ID:        uuid.New().String(),
			Name:      sprite,
			Sprite:    sprite,
			X:         x,
			Y:         y,
			Animation: constants.ANIM_IDLE,
		},
		PickupRadius: pickupRadius,
	}
}

// Update applies the pickup effect to the nearest living player, once.
func (c *Collectible) Update(player *Player) {
	if c.Consumed || player == nil || !player.Alive() {
		return
	}
	if c.DistanceTo(&player.Entity) >= c.PickupRadius {
		return
	}

	c.Consumed = true
	switch c.Sprite {
	case collectibleCoin:
		player.Score += coinWorth
	case collectiblePotion:
		player.Health += potionHeal
		if player.Health > player.MaxHealth {
			player.Health = player.MaxHealth
		}
	}
}
