package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config is everything the front server needs from the environment.
type Config struct {
	// PlannerAPIBase is the base URL of the external planning backend.
	PlannerAPIBase string
	// ServerPort is the listen port for the front server.
	ServerPort string
	// StaticDir is where the bundled frontend assets live.
	StaticDir string
	// PublicBase is the externally visible origin used to build share
	// links. Falls back to the local listen address.
	PublicBase string
}

// Load reads the environment, letting a .env file fill in anything not
// already set. A missing .env is fine.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		PlannerAPIBase: getenv("PLANNER_API_BASE", "http://localhost:3001"),
		ServerPort:     getenv("SERVER_PORT", "8080"),
		StaticDir:      getenv("STATIC_DIR", "./static"),
	}
	cfg.PublicBase = getenv("PUBLIC_BASE", "http://localhost:"+cfg.ServerPort)
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
