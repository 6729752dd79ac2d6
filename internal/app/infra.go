package app

import (
	"github.com/blueDog-Consulting/gh-issues-view/internal/config"
	"github.com/blueDog-Consulting/gh-issues-view/internal/logger"
	"github.com/blueDog-Consulting/gh-issues-view/internal/redis"
)

type Infra struct {
	Redis *redis.Client
}

func setupInfra(cfg config.Config) (*Infra, error) {
	redisClient, err := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, err
	}

	logger.Info("redis ready", nil)

	return &Infra{
		Redis: redisClient,
	}, nil
}
