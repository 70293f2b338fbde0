package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Port      string `env:"PORT" env-default:"8080"`
	DBPath    string `env:"DB_PATH" env-default:"./annah.db"`
	JWTSecret string `env:"JWT_SECRET" env-default:"annah-secret-key-change-in-production"`

	// Reminder scanner tuning. The defaults match the shipped behavior:
	// scan once a minute for tasks due inside the next half hour.
	ReminderInterval time.Duration `env:"REMINDER_INTERVAL" env-default:"60s"`
	ReminderWindow   time.Duration `env:"REMINDER_WINDOW" env-default:"30m"`
}

func Load() (*Config, error) {
	cfg := new(Config)
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
