package config

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

type Config struct {
	AppPort string `envconfig:"APP_PORT" default:"8080"`

	GithubClientID     string `envconfig:"GITHUB_CLIENT_ID" required:"true"`
	GithubClientSecret string `envconfig:"GITHUB_CLIENT_SECRET" required:"true"`

	// SessionSecret keys the HMAC protecting session cookies.
	SessionSecret string `envconfig:"SESSION_SECRET" required:"true"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB"`
}

func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, errors.Wrap(err, "error loading configuration from environment")
	}
	return cfg, nil
}
