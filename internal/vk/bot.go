// Package vk adapts the quiz engine to the VK group long poll API.
package vk

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/SevereCloud/vksdk/v2/api"
	"github.com/SevereCloud/vksdk/v2/api/params"
	"github.com/SevereCloud/vksdk/v2/events"
	longpoll "github.com/SevereCloud/vksdk/v2/longpoll-bot"
	"github.com/SevereCloud/vksdk/v2/object"

	"github.com/redkrayn/Chat-bots-lesson-4/internal/notify"
	"github.com/redkrayn/Chat-bots-lesson-4/internal/quiz"
)

const (
	buttonNewQuestion = "Новый вопрос"
	buttonSurrender   = "Сдаться"
	buttonScore       = "Мой счёт"
	buttonStart       = "Начать"

	replyFailure = "Что-то пошло не так. Попробуйте ещё раз."
)

type Bot struct {
	vk       *api.VK
	lp       *longpoll.LongPoll
	engine   *quiz.Engine
	notifier *notify.Notifier
	logger   *log.Logger
}

func NewBot(token string, groupID int, engine *quiz.Engine, notifier *notify.Notifier, logger *log.Logger) (*Bot, error) {
	vk := api.NewVK(token)
	lp, err := longpoll.NewLongPoll(vk, groupID)
	if err != nil {
		return nil, fmt.Errorf("create long poll: %w", err)
	}

	b := &Bot{vk: vk, lp: lp, engine: engine, notifier: notifier, logger: logger}
	lp.MessageNew(b.handleMessage)
	return b, nil
}

// Run listens for group events until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		b.lp.Shutdown()
	}()

	b.logger.Printf("vk bot listening on group %d", b.lp.GroupID)
	if err := b.lp.Run(); err != nil {
		return fmt.Errorf("long poll: %w", err)
	}
	return nil
}

func (b *Bot) handleMessage(ctx context.Context, obj events.MessageNewObject) {
	peerID := obj.Message.PeerID
	fromID := obj.Message.FromID
	userID := fmt.Sprintf("vk-%d", fromID)

	ev := classify(obj.Message.Text)
	if ev.Kind == quiz.EventStart {
		ev.Name = b.firstName(fromID)
	}

	reply, err := b.engine.Handle(ctx, userID, ev)
	if err != nil {
		b.notifier.Errorf("vk: handle event for %s: %v", userID, err)
		b.send(peerID, replyFailure)
		return
	}
	b.send(peerID, reply.Text)
}

func classify(text string) quiz.Event {
	text = strings.TrimSpace(text)
	switch text {
	case "":
		return quiz.Event{Kind: quiz.EventUnrecognized}
	case buttonStart, "/start":
		return quiz.Event{Kind: quiz.EventStart}
	case buttonNewQuestion:
		return quiz.Event{Kind: quiz.EventNewQuestion}
	case buttonSurrender:
		return quiz.Event{Kind: quiz.EventSurrender}
	case buttonScore:
		return quiz.Event{Kind: quiz.EventScore}
	}
	return quiz.Event{Kind: quiz.EventSubmit, Text: text}
}

// firstName resolves the sender's name for the greeting; an empty name
// just makes the greeting impersonal.
func (b *Bot) firstName(userID int) string {
	users, err := b.vk.UsersGet(api.Params{"user_ids": userID})
	if err != nil || len(users) == 0 {
		b.logger.Printf("vk: users.get for %d: %v", userID, err)
		return ""
	}
	return users[0].FirstName
}

func (b *Bot) send(peerID int, text string) {
	pb := params.NewMessagesSendBuilder()
	pb.PeerID(peerID)
	pb.Message(text)
	pb.RandomID(0)
	pb.Keyboard(quizKeyboard())

	if _, err := b.vk.MessagesSend(pb.Params); err != nil {
		// Reply-send failures are unrecoverable; log and move on.
		b.logger.Printf("vk: send message to %d: %v", peerID, err)
	}
}

func quizKeyboard() *object.MessagesKeyboard {
	kb := object.NewMessagesKeyboard(false)
	kb.AddRow()
	kb.AddTextButton(buttonNewQuestion, "", "primary")
	kb.AddTextButton(buttonSurrender, "", "negative")
	kb.AddRow()
	kb.AddTextButton(buttonScore, "", "secondary")
	return kb
}
