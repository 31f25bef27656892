package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/psds-microservice/report-service/internal/deeplink"
	"github.com/psds-microservice/report-service/internal/model"
	"github.com/psds-microservice/report-service/internal/transport"
)

const (
	pageSize    = 10
	divider     = "⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯"
	listDivider = "⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯"
)

var statusLabels = map[model.ReportStatus]string{
	model.ReportStatusNew:        "🆕 Новый",
	model.ReportStatusInProgress: "⏳ В работе",
}

// Card — текст полной карточки отчёта.
func Card(r *model.Report) string {
	username := r.Username
	if username == "" {
		username = "Не указан"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📦 *ОТЧЕТ %s*\n", r.ID)
	fmt.Fprintf(&b, "🏗 %s | %s\n", r.Product.Label(), r.Intent.Label())
	fmt.Fprintf(&b, "👤 *Логин:* %s\n", transport.EscapeMarkdown(username))
	if r.ClientName != nil && *r.ClientName != "" {
		fmt.Fprintf(&b, "📛 *Имя:* %s\n", transport.EscapeMarkdown(*r.ClientName))
	}
	b.WriteString(divider + "\n")
	fmt.Fprintf(&b, "💬 %s\n", transport.EscapeMarkdown(r.Comment))
	fmt.Fprintf(&b, "🔐 %s\n", r.Consent.Label())
	fmt.Fprintf(&b, "📄 Статус: %s", statusLabel(r.Status))
	return b.String()
}

func statusLabel(s model.ReportStatus) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

func consentIcon(c model.Consent) string {
	if c == model.ConsentPublic {
		return "✅"
	}
	return "🔒"
}

// line — строка списка со ссылкой на карточку в админ-боте.
func line(r model.Report, bot string) string {
	return fmt.Sprintf("• `%s` | %s | %s — [открыть](%s)\n",
		r.ID, r.Product.Label(), consentIcon(r.Consent), deeplink.URL(bot, deeplink.ViewParam(r.ID)))
}

// ListPage рендерит страницу общего списка отзывов (новые первыми).
func ListPage(items []model.Report, offset int, total int64, bot string) transport.Outgoing {
	if len(items) == 0 {
		return transport.Text("Отчетов пока нет.")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📂 *СПИСОК ОТЗЫВОВ (%d-%d из %d):*\n%s\n", offset+1, offset+len(items), total, listDivider)
	for _, r := range items {
		b.WriteString(line(r, bot))
	}

	var nav []transport.Button
	if offset > 0 {
		nav = append(nav, transport.Button{Text: "⬅️ Назад", Data: cbPage + strconv.Itoa(max(0, offset-pageSize))})
	}
	nav = append(nav, transport.Button{Text: btnHome, Data: cbClose})
	if int64(offset+pageSize) < total {
		nav = append(nav, transport.Button{Text: "Вперед ➡️", Data: cbPage + strconv.Itoa(offset+pageSize)})
	}
	return transport.Outgoing{Text: b.String(), Keyboard: transport.InlineKeyboard(nav), DisablePreview: true}
}

// Results рендерит первые результаты поиска по фильтрам.
func Results(items []model.Report, bot string) transport.Outgoing {
	var b strings.Builder
	fmt.Fprintf(&b, "🔎 *Результаты (%d):*\n", len(items))
	for _, r := range items[:min(len(items), pageSize)] {
		b.WriteString(line(r, bot))
	}
	kb := transport.InlineKeyboard(
		[]transport.Button{{Text: "🚀 ОТКРЫТЬ ВСЕ (ПО 10)", Data: cbBulk + "0"}},
		[]transport.Button{{Text: "⬅️ Назад к фильтрам", Data: cbFiltersBack}},
		[]transport.Button{{Text: btnHome, Data: cbClose}},
	)
	return transport.Outgoing{Text: b.String(), Keyboard: kb, DisablePreview: true}
}
