package bot

import (
	"slices"

	"github.com/psds-microservice/report-service/internal/model"
	"github.com/psds-microservice/report-service/internal/transport"
)

const filtersTitle = "🔎 *ФИЛЬТРЫ ОТЧЕТОВ BEATON*"

type filterOption struct {
	key   string
	label string
	apply func(*model.ReportFilter)
}

func product(p model.Product) func(*model.ReportFilter) {
	return func(f *model.ReportFilter) { f.Products = append(f.Products, p) }
}

func intent(i model.Intent) func(*model.ReportFilter) {
	return func(f *model.ReportFilter) { f.Intents = append(f.Intents, i) }
}

func consent(c model.Consent) func(*model.ReportFilter) {
	return func(f *model.ReportFilter) { f.Consents = append(f.Consents, c) }
}

var (
	productOptions = []filterOption{
		{"prod_beton", "Бетон", product(model.ProductConcrete)},
		{"prod_asfalt", "Асфальт", product(model.ProductAsphalt)},
	}
	intentOptions = []filterOption{
		{"cat_proud", "Горжусь!", intent(model.IntentProud)},
		{"cat_process", "Процесс", intent(model.IntentProcess)},
		{"cat_nuance", "Нюанс", intent(model.IntentNuance)},
	}
	consentOptions = []filterOption{
		{"con_yes", "Разрешено ✅", consent(model.ConsentPublic)},
		{"con_no", "Служебное 🔒", consent(model.ConsentInternal)},
	}
)

func lookupOption(key string) (filterOption, bool) {
	for _, group := range [][]filterOption{productOptions, intentOptions, consentOptions} {
		for _, o := range group {
			if o.key == key {
				return o, true
			}
		}
	}
	return filterOption{}, false
}

// FilterFromKeys собирает фильтр из выбранных ключей; неизвестные ключи пропускаются.
func FilterFromKeys(keys []string) model.ReportFilter {
	var f model.ReportFilter
	for _, k := range keys {
		if o, ok := lookupOption(k); ok {
			o.apply(&f)
		}
	}
	return f
}

// toggle включает или выключает ключ, сохраняя порядок выбора.
func toggle(selected []string, key string) []string {
	if i := slices.Index(selected, key); i >= 0 {
		return slices.Delete(slices.Clone(selected), i, i+1)
	}
	return append(slices.Clone(selected), key)
}

func filterKeyboard(selected []string) *transport.Keyboard {
	row := func(opts []filterOption, mark string) []transport.Button {
		out := make([]transport.Button, len(opts))
		for i, o := range opts {
			text := o.label
			if slices.Contains(selected, o.key) {
				text = mark + text
			}
			out[i] = transport.Button{Text: text, Data: cbToggle + o.key}
		}
		return out
	}
	header := func(s string) []transport.Button {
		return []transport.Button{{Text: s, Data: cbNone}}
	}
	return transport.InlineKeyboard(
		header("─── ПРОДУКЦИЯ ───"),
		row(productOptions, "✅ "),
		header("─── КАТЕГОРИИ ───"),
		row(intentOptions, "✅ "),
		header("─── ИСПОЛЬЗОВАНИЕ ───"),
		row(consentOptions, "🔹 "),
		[]transport.Button{{Text: "❌ Очистить", Data: cbClear}, {Text: "🔍 ПРИМЕНИТЬ", Data: cbApply}},
		[]transport.Button{{Text: btnHome, Data: cbClose}},
	)
}
