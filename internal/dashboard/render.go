package dashboard

import (
	"fmt"
	"strings"

	"github.com/psds-microservice/report-service/internal/deeplink"
	"github.com/psds-microservice/report-service/internal/transport"
)

const (
	separator       = "⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯"
	shortCommentLen = 25
)

// Render строит текст панели и кнопки: по одной «решить» на каждый флаг плюс фильтры и список.
func Render(s Snapshot, adminBot string) transport.Outgoing {
	var b strings.Builder
	b.WriteString("🏢 *BEATON | ПАНЕЛЬ УПРАВЛЕНИЯ*\n")
	b.WriteString(separator + "\n")
	fmt.Fprintf(&b, "📊 *Всего получено отчетов: %d*\n", s.Total)
	b.WriteString(separator + "\n")

	var rows [][]transport.Button
	if len(s.Attention) > 0 {
		b.WriteString("🚨 *ТРЕБУЮТ ВНИМАНИЯ (Нюансы):*\n")
		for _, r := range s.Attention {
			// Пользовательский текст вне сущностей: legacy Markdown не допускает экранирование внутри _..._
			fmt.Fprintf(&b, "• `%s` | %s | %s\n   💬 %s\n\n",
				r.ID, r.Product.Label(), transport.EscapeMarkdown(r.Username),
				transport.EscapeMarkdown(Shorten(r.Comment, shortCommentLen)))
			rows = append(rows, []transport.Button{{
				Text: "⚡️ Решить " + r.ID,
				URL:  deeplink.URL(adminBot, deeplink.TakeParam(r.ID)),
			}})
		}
	} else {
		b.WriteString("✅ *Все нюансы отработаны.*\n")
	}

	rows = append(rows,
		[]transport.Button{{Text: "🔍 Поиск по фильтрам", URL: deeplink.URL(adminBot, deeplink.FiltersParam())}},
		[]transport.Button{{Text: "💬 Просмотр отзывов клиента", URL: deeplink.URL(adminBot, deeplink.ListParam(0))}},
	)
	return transport.WithKeyboard(b.String(), transport.InlineKeyboard(rows...))
}

// Shorten обрезает строку до n символов, добавляя "..".
func Shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + ".."
}
