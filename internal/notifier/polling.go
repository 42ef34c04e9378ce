package notifier

import (
	"context"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// CommandFunc answers a bot command. args excludes the command itself.
type CommandFunc func(args []string) string

// Commands routes "/name arg..." messages to registered handlers.
type Commands map[string]CommandFunc

// Handle dispatches text and returns the reply. Unknown commands list the
// available ones; plain text gets no reply.
func (c Commands) Handle(text string) string {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return ""
	}
	// "/latest@my_bot" in group chats
	name := strings.ToLower(strings.SplitN(strings.TrimPrefix(fields[0], "/"), "@", 2)[0])
	if fn, ok := c[name]; ok {
		return fn(fields[1:])
	}
	names := make([]string, 0, len(c))
	for n := range c {
		names = append(names, "/"+n)
	}
	sort.Strings(names)
	return "Unknown command. Available: " + strings.Join(names, " ")
}

// StartPolling long-polls for bot commands from the configured chat. Blocks
// until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, commands Commands) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := t.bot.GetUpdatesChan(u)
	defer t.bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("telegram polling stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			t.handleUpdate(update, commands)
		}
	}
}

func (t *TelegramNotifier) handleUpdate(update tgbotapi.Update, commands Commands) {
	msg := update.Message
	if msg == nil || msg.Text == "" || msg.Chat == nil {
		return
	}
	if msg.Chat.ID != t.chatID {
		log.Warn().Int64("chat_id", msg.Chat.ID).Msg("ignoring command from unknown chat")
		return
	}
	log.Info().Str("command", msg.Text).Msg("received command")
	reply := commands.Handle(msg.Text)
	if reply == "" {
		return
	}
	if err := t.sendTo(msg.Chat.ID, reply); err != nil {
		log.Error().Err(err).Msg("send reply")
	}
}
