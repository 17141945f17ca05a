// Package config provides application configuration from the
// environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	BackendRedis     = "redis"
	BackendFirestore = "firestore"
)

type Config struct {
	TelegramBotToken    string
	TelegramAdminChatID int64
	VKToken             string
	VKGroupID           int
	QuestionsPath       string

	StoreBackend     string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	FirestoreProject string
}

func Load() (Config, error) {
	redisDB, err := parseIntEnv("REDIS_DB", 0)
	if err != nil {
		return Config{}, err
	}
	adminChatID, err := parseInt64Env("TELEGRAM_ADMIN_CHAT_ID", 0)
	if err != nil {
		return Config{}, err
	}
	vkGroupID, err := parseIntEnv("VK_GROUP_ID", 0)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		TelegramBotToken:    strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		TelegramAdminChatID: adminChatID,
		VKToken:             strings.TrimSpace(os.Getenv("VK_TOKEN")),
		VKGroupID:           vkGroupID,
		QuestionsPath:       getEnv("QUIZ_QUESTIONS_PATH", ""),
		StoreBackend:        getEnv("STORE_BACKEND", BackendRedis),
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		RedisDB:             redisDB,
		FirestoreProject:    os.Getenv("FIRESTORE_PROJECT_ID"),
	}

	if cfg.TelegramBotToken == "" {
		return Config{}, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if cfg.TelegramAdminChatID == 0 {
		return Config{}, fmt.Errorf("TELEGRAM_ADMIN_CHAT_ID is required")
	}
	if cfg.QuestionsPath == "" {
		return Config{}, fmt.Errorf("QUIZ_QUESTIONS_PATH is required")
	}
	switch cfg.StoreBackend {
	case BackendRedis:
	case BackendFirestore:
		if cfg.FirestoreProject == "" {
			return Config{}, fmt.Errorf("FIRESTORE_PROJECT_ID is required for the firestore backend")
		}
	default:
		return Config{}, fmt.Errorf("invalid STORE_BACKEND %q: expected %s or %s", cfg.StoreBackend, BackendRedis, BackendFirestore)
	}

	return cfg, nil
}

// ValidateVK checks the fields only the VK bot needs.
func (c Config) ValidateVK() error {
	if c.VKToken == "" {
		return fmt.Errorf("VK_TOKEN is required")
	}
	if c.VKGroupID <= 0 {
		return fmt.Errorf("VK_GROUP_ID is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v)
	}
	return fallback
}

func parseIntEnv(key string, fallback int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return v, nil
}

func parseInt64Env(key string, fallback int64) (int64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return v, nil
}
