package bot

import (
	"strconv"
	"strings"

	"github.com/psds-microservice/report-service/internal/transport"
)

const (
	btnFilters     = "🔎 Поиск по фильтрам"
	btnList        = "📋 Просмотр отзывов"
	btnGroup       = "👥 Группа Beaton"
	btnSettings    = "⚙️ Настройки"
	btnAddAdmin    = "➕ Добавить админа"
	btnRemoveAdmin = "➖ Удалить админа"
	btnBack        = "🔙 Назад"
	btnHome        = "🏠 В главное меню"
)

func MainMenu() *transport.Keyboard {
	return transport.ReplyKeyboard(
		[]string{btnFilters, btnList},
		[]string{btnGroup, btnSettings},
	)
}

func settingsMenu() *transport.Keyboard {
	return transport.ReplyKeyboard(
		[]string{btnAddAdmin, btnRemoveAdmin},
		[]string{btnBack},
	)
}

func navMenu() *transport.Keyboard {
	return transport.ReplyKeyboard([]string{btnHome})
}

// groupLink строит ссылку на супергруппу: её id без префикса -100.
func groupLink(group int64) string {
	id := strings.TrimPrefix(strconv.FormatInt(group, 10), "-100")
	return "https://t.me/c/" + id + "/1"
}
