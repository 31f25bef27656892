package intake

import (
	"strconv"

	"github.com/psds-microservice/report-service/internal/model"
	"github.com/psds-microservice/report-service/internal/transport"
)

const (
	NewReportButton = "📝 Отправить новый отчет"
	CancelButton    = "✖️ Отменить отчет"
	SkipButton      = "Пропустить"
	StartCmd        = "start"
	CancelCmd       = "cancel"
)

const (
	promptProduct = "Выберите продукт Beaton:"
	promptIntent  = "Цель сообщения?"
	promptMedia   = "Прикрепите до 3 фото или 1 видео:"
	promptName    = "Как к вам обращаться?"
	promptConsent = "Разрешаете использование в соцсетях?"
	mediaAccepted = "✅ Принято. Напишите комментарий:"

	errProduct    = "❌ Выберите продукт кнопкой."
	errButtons    = "❌ Используйте кнопки."
	errNotMedia   = "❌ Пожалуйста, отправьте фото или видео."
	errComment    = "❌ Напишите текст комментария."
	errName       = "❌ Напишите имя."
	errSaveFailed = "❌ Не удалось сохранить отчет. Попробуйте нажать кнопку ещё раз."
	retryMedia    = "\nПопробуйте снова."

	idleHint  = "Нажмите «" + NewReportButton + "», чтобы отправить отчет."
	cancelled = "Отчет отменен."
)

// NewReportKeyboard — клавиатура клиента вне анкеты.
func NewReportKeyboard() *transport.Keyboard {
	return transport.ReplyKeyboard([]string{NewReportButton})
}

func productKeyboard() *transport.Keyboard {
	return transport.ReplyKeyboard(model.ProductLabels(), []string{CancelButton})
}

func intentKeyboard() *transport.Keyboard {
	return column(model.IntentLabels())
}

func nameKeyboard() *transport.Keyboard {
	return transport.ReplyKeyboard([]string{SkipButton}, []string{CancelButton})
}

func consentKeyboard() *transport.Keyboard {
	return column(model.ConsentLabels())
}

// column раскладывает варианты по одному в ряд и добавляет отмену.
func column(labels []string) *transport.Keyboard {
	rows := make([][]string, 0, len(labels)+1)
	for _, l := range labels {
		rows = append(rows, []string{l})
	}
	rows = append(rows, []string{CancelButton})
	return transport.ReplyKeyboard(rows...)
}

func mediaErrorText(err *model.MediaError) string {
	switch err.Rule {
	case model.MediaTooManyPhotos:
		return "❌ ОШИБКА: Максимум 3 фото. Вы отправили " + strconv.Itoa(err.Count) + "."
	case model.MediaTooManyVideos:
		return "❌ ОШИБКА: Максимум 1 видео. Вы отправили " + strconv.Itoa(err.Count) + "."
	default:
		return "❌ ОШИБКА: Нельзя смешивать фото и видео."
	}
}

func completedText(id string) string {
	return "✅ Отчет #" + id + " успешно отправлен!"
}
