package services

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"vistream/internal/models"
)

// TelegramService — уведомления админам в Telegram-чат (например, о новых
// авторах, ждущих модерации). Необязательный компонент: без токена все
// вызовы — no-op.
type TelegramService struct {
	bot         *tgbotapi.BotAPI
	adminChatID int64
}

func NewTelegramService(botToken string, adminChatID int64) (*TelegramService, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	return &TelegramService{bot: bot, adminChatID: adminChatID}, nil
}

// NotifyCreatorSignup — пингуем админский чат о новом канале.
func (t *TelegramService) NotifyCreatorSignup(user *models.User, totalCreators int) error {
	if t == nil || t.bot == nil || t.adminChatID == 0 {
		log.Printf("[tg][skip] bot or chatID empty")
		return nil
	}

	channel := ""
	if user.ChannelName != nil {
		channel = *user.ChannelName
	}
	text := fmt.Sprintf(
		"<b>Новый автор на модерацию</b>\nКанал: %s\nИмя: %s\nEmail: %s\nВсего авторов: %d",
		channel, user.DisplayName, user.Email, totalCreators,
	)

	msg := tgbotapi.NewMessage(t.adminChatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := t.bot.Send(msg); err != nil {
		log.Printf("[tg][send][err] chatID=%d: %v", t.adminChatID, err)
		return err
	}
	log.Printf("[tg][send] creator signup notified: user_id=%d", user.ID)
	return nil
}
