package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/psds-microservice/report-service/internal/transport"
)

func replyMarkup(kb *transport.Keyboard) interface{} {
	switch {
	case kb == nil:
		return nil
	case kb.Remove:
		return tgbotapi.NewRemoveKeyboard(false)
	case len(kb.Inline) > 0:
		return inlineMarkup(kb.Inline)
	case len(kb.Reply) > 0:
		rows := make([][]tgbotapi.KeyboardButton, 0, len(kb.Reply))
		for _, r := range kb.Reply {
			row := make([]tgbotapi.KeyboardButton, 0, len(r))
			for _, text := range r {
				row = append(row, tgbotapi.NewKeyboardButton(text))
			}
			rows = append(rows, row)
		}
		return tgbotapi.NewReplyKeyboard(rows...)
	}
	return nil
}

func inlineMarkup(rows [][]transport.Button) tgbotapi.InlineKeyboardMarkup {
	out := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, r := range rows {
		row := make([]tgbotapi.InlineKeyboardButton, 0, len(r))
		for _, b := range r {
			if b.URL != "" {
				row = append(row, tgbotapi.NewInlineKeyboardButtonURL(b.Text, b.URL))
			} else {
				row = append(row, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
			}
		}
		out = append(out, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(out...)
}
