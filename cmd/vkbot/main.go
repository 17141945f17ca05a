package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"github.com/redkrayn/Chat-bots-lesson-4/internal/config"
	"github.com/redkrayn/Chat-bots-lesson-4/internal/notify"
	"github.com/redkrayn/Chat-bots-lesson-4/internal/questions"
	"github.com/redkrayn/Chat-bots-lesson-4/internal/quiz"
	"github.com/redkrayn/Chat-bots-lesson-4/internal/store"
	"github.com/redkrayn/Chat-bots-lesson-4/internal/vk"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags|log.Lmicroseconds)
	if err := run(logger); err != nil {
		logger.Fatalf("%v", err)
	}
}

func run(logger *log.Logger) error {
	if err := godotenv.Load(); err != nil {
		logger.Printf("no .env file found, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := cfg.ValidateVK(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	bank, err := questions.Load(cfg.QuestionsPath)
	if err != nil {
		return fmt.Errorf("load questions: %w", err)
	}
	logger.Printf("loaded %d questions from %s", bank.Len(), cfg.QuestionsPath)

	sessions, closeStore, err := store.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Printf("close session store: %v", err)
		}
	}()

	// Operational failures are reported to the admin Telegram chat even
	// for the VK bot.
	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return fmt.Errorf("create telegram bot API: %w", err)
	}
	notifier := notify.New(logger, botAPI, cfg.TelegramAdminChatID)

	engine := quiz.NewEngine(bank, sessions)
	bot, err := vk.NewBot(cfg.VKToken, cfg.VKGroupID, engine, notifier, logger)
	if err != nil {
		return fmt.Errorf("create vk bot: %w", err)
	}

	notifier.Infof("VK-бот запущен")
	return bot.Run(ctx)
}
