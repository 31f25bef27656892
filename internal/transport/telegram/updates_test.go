package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/psds-microservice/report-service/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func privateMessage() *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 7,
		From:      &tgbotapi.User{ID: 42, FirstName: "Ivan", LastName: "Petrov", UserName: "ivan"},
		Chat:      &tgbotapi.Chat{ID: 42, Type: "private"},
	}
}

func TestConvert_Text(t *testing.T) {
	m := privateMessage()
	m.Text = "Бетон"

	upd, ok := Convert(tgbotapi.Update{Message: m})
	require.True(t, ok)
	require.NotNil(t, upd.Message)

	assert.Equal(t, transport.KindText, upd.Message.Kind)
	assert.Equal(t, "Бетон", upd.Message.Text)
	assert.Equal(t, transport.ChatPrivate, upd.Message.Chat)
	assert.Equal(t, "Ivan Petrov", upd.Message.FullName)
	assert.Equal(t, "@ivan", upd.Message.Handle())
	assert.Equal(t, transport.MessageID(7), upd.Message.ID)
}

func TestConvert_PhotoTakesLargestSize(t *testing.T) {
	m := privateMessage()
	m.Photo = []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "large"}}
	m.Caption = "crack"

	upd, ok := Convert(tgbotapi.Update{Message: m})
	require.True(t, ok)
	assert.Equal(t, transport.KindPhoto, upd.Message.Kind)
	assert.Equal(t, "large", upd.Message.FileID)
	assert.Equal(t, "crack", upd.Message.Text)
}

func TestConvert_VideoAnimationOther(t *testing.T) {
	m := privateMessage()
	m.Video = &tgbotapi.Video{FileID: "v1"}
	upd, _ := Convert(tgbotapi.Update{Message: m})
	assert.Equal(t, transport.KindVideo, upd.Message.Kind)
	assert.Equal(t, "v1", upd.Message.FileID)

	m = privateMessage()
	m.Animation = &tgbotapi.Animation{FileID: "gif"}
	upd, _ = Convert(tgbotapi.Update{Message: m})
	assert.Equal(t, transport.KindAnimation, upd.Message.Kind)

	m = privateMessage()
	m.Sticker = &tgbotapi.Sticker{FileID: "s"}
	upd, _ = Convert(tgbotapi.Update{Message: m})
	assert.Equal(t, transport.KindOther, upd.Message.Kind)
}

func TestConvert_GroupAndCallback(t *testing.T) {
	m := privateMessage()
	m.Chat = &tgbotapi.Chat{ID: -100, Type: "supergroup"}
	m.Text = "beaton"
	upd, ok := Convert(tgbotapi.Update{Message: m})
	require.True(t, ok)
	assert.Equal(t, transport.ChatGroup, upd.Message.Chat)

	upd, ok = Convert(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb1",
		From:    &tgbotapi.User{ID: 5},
		Message: &tgbotapi.Message{MessageID: 9, Chat: &tgbotapi.Chat{ID: 5, Type: "private"}},
		Data:    "tgl_prod_beton",
	}})
	require.True(t, ok)
	require.NotNil(t, upd.Callback)
	assert.Equal(t, "tgl_prod_beton", upd.Callback.Data)
	assert.Equal(t, transport.MessageID(9), upd.Callback.MessageID)
}

func TestConvert_SkipsWithoutSender(t *testing.T) {
	_, ok := Convert(tgbotapi.Update{ChannelPost: &tgbotapi.Message{Text: "x"}})
	assert.False(t, ok)

	_, ok = Convert(tgbotapi.Update{Message: &tgbotapi.Message{Text: "x", Chat: &tgbotapi.Chat{ID: 1}}})
	assert.False(t, ok)
}

func TestReplyMarkup(t *testing.T) {
	assert.Nil(t, replyMarkup(nil))

	rm, ok := replyMarkup(transport.RemoveKeyboard()).(tgbotapi.ReplyKeyboardRemove)
	require.True(t, ok)
	assert.True(t, rm.RemoveKeyboard)

	reply, ok := replyMarkup(transport.ReplyKeyboard([]string{"Бетон", "Асфальт"})).(tgbotapi.ReplyKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, reply.Keyboard, 1)
	assert.Equal(t, "Асфальт", reply.Keyboard[0][1].Text)
	assert.True(t, reply.ResizeKeyboard)

	inline, ok := replyMarkup(transport.InlineKeyboard(
		[]transport.Button{{Text: "go", URL: "https://t.me/x"}, {Text: "cb", Data: "f_apply"}},
	)).(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, inline.InlineKeyboard[0], 2)
	require.NotNil(t, inline.InlineKeyboard[0][0].URL)
	assert.Equal(t, "https://t.me/x", *inline.InlineKeyboard[0][0].URL)
	require.NotNil(t, inline.InlineKeyboard[0][1].CallbackData)
	assert.Equal(t, "f_apply", *inline.InlineKeyboard[0][1].CallbackData)
}
