package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type AppConfig struct {
	StoreBackend string
	RedisURL     string
	DatabaseURL  string
	Namespace    string

	MaxMoveTokens int
	MaxIDLength   int
	GameTTL       time.Duration

	BoardImages bool
	MessagesDir string

	HTTPAddr        string
	RenderServerURL string
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		Namespace:     "chess",
		MaxMoveTokens: 300,
		MaxIDLength:   64,
		HTTPAddr:      ":8080",
	}

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if v := strings.TrimSpace(os.Getenv("CHESS_NAMESPACE")); v != "" {
		cfg.Namespace = v
	}

	if v := strings.TrimSpace(os.Getenv("CHESS_MAX_MOVE_TOKENS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxMoveTokens = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_MAX_ID_LENGTH")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxIDLength = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_GAME_TTL_SEC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.GameTTL = time.Duration(n) * time.Second
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_BOARD_IMAGES")); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			cfg.BoardImages = b
		}
	}
	cfg.MessagesDir = strings.TrimSpace(os.Getenv("CHESS_MESSAGES_DIR"))

	if v := strings.TrimSpace(os.Getenv("HTTP_ADDR")); v != "" {
		cfg.HTTPAddr = v
	}
	cfg.RenderServerURL = strings.TrimSpace(os.Getenv("RENDER_SERVER_URL"))

	backend := strings.ToLower(strings.TrimSpace(os.Getenv("STORE_BACKEND")))
	switch backend {
	case "":
		switch {
		case cfg.RedisURL != "":
			backend = BackendRedis
		case cfg.DatabaseURL != "":
			backend = BackendPostgres
		default:
			backend = BackendMemory
		}
	case BackendMemory, BackendRedis, BackendPostgres:
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", backend)
	}
	cfg.StoreBackend = backend

	if backend == BackendRedis && cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required for the redis backend")
	}
	if backend == BackendPostgres && cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required for the postgres backend")
	}

	return cfg, nil
}
