// Package telegram adapts the quiz engine to Telegram long polling.
package telegram

import (
	"context"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/redkrayn/Chat-bots-lesson-4/internal/notify"
	"github.com/redkrayn/Chat-bots-lesson-4/internal/quiz"
)

const (
	buttonNewQuestion = "Новый вопрос"
	buttonSurrender   = "Сдаться"
	buttonScore       = "Мой счёт"

	replyFailure = "Что-то пошло не так. Попробуйте ещё раз."
)

type Bot struct {
	api      *tgbotapi.BotAPI
	engine   *quiz.Engine
	notifier *notify.Notifier
	logger   *log.Logger
}

func NewBot(api *tgbotapi.BotAPI, engine *quiz.Engine, notifier *notify.Notifier, logger *log.Logger) *Bot {
	return &Bot{api: api, engine: engine, notifier: notifier, logger: logger}
}

// Run polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Printf("telegram bot authorized as @%s", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID := fmt.Sprintf("tg-%d", msg.From.ID)
	ev := classify(msg.Text)
	if ev.Kind == quiz.EventStart {
		ev.Name = msg.From.FirstName
	}

	reply, err := b.engine.Handle(ctx, userID, ev)
	if err != nil {
		b.notifier.Errorf("telegram: handle event for %s: %v", userID, err)
		b.send(msg.Chat.ID, replyFailure, false)
		return
	}
	b.send(msg.Chat.ID, reply.Text, ev.Kind == quiz.EventStart)
}

// classify maps a raw message text onto a quiz event. Command policy
// lives here, not in the engine.
func classify(text string) quiz.Event {
	text = strings.TrimSpace(text)
	switch text {
	case "":
		return quiz.Event{Kind: quiz.EventUnrecognized}
	case "/start":
		return quiz.Event{Kind: quiz.EventStart}
	case buttonNewQuestion:
		return quiz.Event{Kind: quiz.EventNewQuestion}
	case buttonSurrender:
		return quiz.Event{Kind: quiz.EventSurrender}
	case buttonScore:
		return quiz.Event{Kind: quiz.EventScore}
	}
	if strings.HasPrefix(text, "/") {
		return quiz.Event{Kind: quiz.EventUnrecognized}
	}
	return quiz.Event{Kind: quiz.EventSubmit, Text: text}
}

func (b *Bot) send(chatID int64, text string, withKeyboard bool) {
	msg := tgbotapi.NewMessage(chatID, text)
	if withKeyboard {
		msg.ReplyMarkup = quizKeyboard()
	}
	if _, err := b.api.Send(msg); err != nil {
		// Reply-send failures are unrecoverable; log and move on.
		b.logger.Printf("telegram: send message to %d: %v", chatID, err)
	}
}

func quizKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonNewQuestion),
			tgbotapi.NewKeyboardButton(buttonSurrender),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonScore),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}
