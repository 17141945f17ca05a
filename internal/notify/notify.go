// Package notify delivers operational messages to an admin Telegram
// chat, so failures reach an operator even when a user-facing reply is
// impossible. Both bots, including the VK one, report through Telegram.
package notify

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Notifier struct {
	logger *log.Logger
	api    *tgbotapi.BotAPI
	chatID int64
}

func New(logger *log.Logger, api *tgbotapi.BotAPI, chatID int64) *Notifier {
	return &Notifier{logger: logger, api: api, chatID: chatID}
}

// Errorf logs the message and forwards it to the admin chat.
func (n *Notifier) Errorf(format string, args ...any) {
	n.send("ERROR: " + fmt.Sprintf(format, args...))
}

// Infof logs the message and forwards it to the admin chat.
func (n *Notifier) Infof(format string, args ...any) {
	n.send(fmt.Sprintf(format, args...))
}

func (n *Notifier) send(text string) {
	n.logger.Print(text)
	if _, err := n.api.Send(tgbotapi.NewMessage(n.chatID, text)); err != nil {
		n.logger.Printf("notify admin chat: %v", err)
	}
}
