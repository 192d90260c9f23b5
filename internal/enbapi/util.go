package enbapi

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/dchest/uniuri"
	"gorm.io/gorm"

	"enbapp/internal/telegram"
)

const (
	invitationCodeChars    = "0123456789abcdef"
	invitationCodeLen      = 8
	invitationCodeAttempts = 10
)

// GenerateInvitationCode picks a random 8-char hex code and checks it
// against existing accounts, giving up after a bounded number of attempts.
func GenerateInvitationCode(db *gorm.DB) (string, error) {
	for i := 0; i < invitationCodeAttempts; i++ {
		code := uniuri.NewLenChars(invitationCodeLen, []byte(invitationCodeChars))
		var double Account
		res := db.Where("invitation_code = ?", code).First(&double)
		if res.RowsAffected == 1 {
			continue
		}
		return code, nil
	}
	return "", errors.New("could not generate a unique invitation code")
}

func EscapeMarkdownV2(text string) string {
	specialChars := []string{"_", "*", "[", "]", "(", ")", "~", "`", ">", "#", "+", "-", "=", "|", "{", "}", ".", "!"}
	for _, char := range specialChars {
		text = strings.ReplaceAll(text, char, "\\"+char)
	}
	return text
}

func SendTelegramMessage(msg string, chat string) error {
	token := os.Getenv("TELEGRAM_TOKEN")
	if token == "" {
		err := errors.New("TELEGRAM_TOKEN is not set")
		return err
	}
	chatId := os.Getenv("DEFAULT_CHAT_ID")
	switch chat {
	case "finance":
		chatId = os.Getenv("FINANCE_CHAT_ID")
		if chatId == "" {
			err := errors.New("FINANCE CHAT_ID is not set")
			return err
		}
	default:
		chatId = os.Getenv("DEFAULT_CHAT_ID")
		if chatId == "" {
			err := errors.New("DEFAULT CHAT_ID is not set")
			return err
		}
	}
	chatIdInt, err := strconv.Atoi(chatId)
	if err != nil {
		return err
	}
	id := int64(chatIdInt)
	bot, err := telegram.NewBot(token)
	if err != nil {
		return err
	}
	// Send a message
	_, err = bot.Api.SendMessage(id, msg, &gotgbot.SendMessageOpts{
		ParseMode: "MarkdownV2",
		LinkPreviewOptions: &gotgbot.LinkPreviewOptions{
			IsDisabled: true,
		},
	})
	if err != nil {
		return err
	}
	return nil
}
