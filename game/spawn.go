package game

import (
	"math"
	"math/rand"
)

// annulusPoint samples a point uniformly-by-angle between minR and maxR
// from the origin. The center deadzone keeps spawns off the top of
// freshly joined players.
func annulusPoint(minR, maxR float64) (float64, float64) {
	angle := rand.Float64() * 2 * math.Pi
	r := minR + rand.Float64()*(maxR-minR)
	return r * math.Cos(angle), r * math.Sin(angle)
}

// SpawnEnemies places a batch of enemies in an annulus of the given
// radius, excluding the center deadzone.
func SpawnEnemies(count int, deadzone, radius float64) []*Enemy {
	enemies := make([]*Enemy, 0, count)
	for i := 0; i < count; i++ {
		x, y := annulusPoint(deadzone, radius)
		enemies = append(enemies, NewEnemy(x, y))
	}
	return enemies
}

// SpawnCollectibles scatters coins and potions across the same annulus.
func SpawnCollectibles(coins, potions int, deadzone, radius float64) []*Collectible {
	out := make([]*Collectible, 0, coins+potions)
	for i := 0; i < coins; i++ {
		x, y := annulusPoint(deadzone, radius)
		out = append(out, NewCoin(x, y))
	}
	for i := 0; i < potions; i++ {
		x, y := annulusPoint(deadzone, radius)
		out = append(out, NewPotion(x, y))
	}
	return out
}
