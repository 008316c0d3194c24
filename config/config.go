package config

import (
	"log"
	"os"

	"github.com/pelletier/go-toml/v2"

	"arena-backend/constants"
)

type ServerConfig struct {
	Port string
}

type GameConfig struct {
	TicksPerSecond  int
	WaitSeconds     int
	PlaySeconds     int
	SessionCapacity int
	EnemyCount      int
	CoinCount       int
	PotionCount     int
	SpawnRadius     float64
	SpawnDeadzone   float64
}

type AuthConfig struct {
	TokenTTLHours int
}

type StoreConfig struct {
	Path string
}

type Config struct {
	Server ServerConfig
	Game   GameConfig
	Auth   AuthConfig
	Store  StoreConfig
}

func Default() Config {
	return Config{
		Server: ServerConfig{Port: "8080"},
		Game: GameConfig{
			TicksPerSecond:  constants.TICKS_PER_SECOND,
			WaitSeconds:     int(constants.WAIT_TIME.Seconds()),
			PlaySeconds:     int(constants.GAME_TIME.Seconds()),
			SessionCapacity: constants.SESSION_CAPACITY,
			EnemyCount:      constants.ENEMY_COUNT,
			CoinCount:       constants.COIN_COUNT,
			PotionCount:     constants.POTION_COUNT,
			SpawnRadius:     constants.WORLD_RADIUS,
			SpawnDeadzone:   constants.SPAWN_DEADZONE,
		},
		Auth:  AuthConfig{TokenTTLHours: 24},
		Store: StoreConfig{Path: "usersData.json"},
	}
}

// Load reads a TOML config file, falling back to defaults when the file is
// missing. The PORT environment variable overrides the configured port.
func Load(fileName string) Config {
	cfg := Default()

	data, err := os.ReadFile(fileName)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Config read error: %v, using defaults", err)
		}
	} else if err := toml.Unmarshal(data, &cfg); err != nil {
		log.Printf("Config parse error: %v, using defaults", err)
		cfg = Default()
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}

	return cfg
}
