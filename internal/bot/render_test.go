package bot

import (
	"strings"
	"testing"

	"github.com/psds-microservice/report-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCard(t *testing.T) {
	name := "Иван_Петров"
	r := &model.Report{
		ID:         "B-007",
		Product:    model.ProductAsphalt,
		Intent:     model.IntentNuance,
		Comment:    "трещина *по краю*",
		Consent:    model.ConsentInternal,
		Username:   "@road_master",
		ClientName: &name,
		Status:     model.ReportStatusInProgress,
	}
	got := Card(r)
	assert.Equal(t, "📦 *ОТЧЕТ B-007*\n"+
		"🏗 Асфальт | Есть нюанс...\n"+
		"👤 *Логин:* @road\\_master\n"+
		"📛 *Имя:* Иван\\_Петров\n"+
		divider+"\n"+
		"💬 трещина \\*по краю\\*\n"+
		"🔐 Только для служебного использования\n"+
		"📄 Статус: ⏳ В работе", got)

	r.Username, r.ClientName = "", nil
	got = Card(r)
	assert.Contains(t, got, "*Логин:* Не указан")
	assert.NotContains(t, got, "Имя:")
}

func TestListPage(t *testing.T) {
	assert.Equal(t, "Отчетов пока нет.", ListPage(nil, 0, 0, "bot").Text)

	items := []model.Report{
		{ID: "B-012", Product: model.ProductConcrete, Consent: model.ConsentPublic},
		{ID: "B-011", Product: model.ProductAsphalt, Consent: model.ConsentInternal},
	}
	out := ListPage(items, 10, 12, "beaton_admin_bot")
	assert.True(t, strings.HasPrefix(out.Text, "📂 *СПИСОК ОТЗЫВОВ (11-12 из 12):*\n"))
	assert.Contains(t, out.Text, "• `B-012` | Бетон | ✅ — [открыть](https://t.me/beaton_admin_bot?start=view_B-012)\n")
	assert.Contains(t, out.Text, "• `B-011` | Асфальт | 🔒")
	assert.True(t, out.DisablePreview)

	require.Len(t, out.Keyboard.Inline, 1)
	nav := out.Keyboard.Inline[0]
	require.Len(t, nav, 2)
	assert.Equal(t, "pag_list_0", nav[0].Data)
	assert.Equal(t, cbClose, nav[1].Data)

	nav = ListPage(items, 0, 12, "b").Keyboard.Inline[0]
	require.Len(t, nav, 2)
	assert.Equal(t, cbClose, nav[0].Data)
	assert.Equal(t, "pag_list_10", nav[1].Data)
}

func TestFilterFromKeys(t *testing.T) {
	f := FilterFromKeys([]string{"prod_asfalt", "cat_nuance", "cat_proud", "con_no", "bogus"})
	assert.Equal(t, []model.Product{model.ProductAsphalt}, f.Products)
	assert.Equal(t, []model.Intent{model.IntentNuance, model.IntentProud}, f.Intents)
	assert.Equal(t, []model.Consent{model.ConsentInternal}, f.Consents)
	assert.True(t, FilterFromKeys(nil).Empty())
}

func TestToggle(t *testing.T) {
	s := toggle(nil, "prod_beton")
	s = toggle(s, "con_yes")
	assert.Equal(t, []string{"prod_beton", "con_yes"}, s)
	assert.Equal(t, []string{"con_yes"}, toggle(s, "prod_beton"))
	assert.Equal(t, []string{"prod_beton", "con_yes"}, s)
}

func TestFilterKeyboard_Marks(t *testing.T) {
	kb := filterKeyboard([]string{"prod_asfalt", "con_yes"})
	require.Len(t, kb.Inline, 8)
	assert.Equal(t, "Бетон", kb.Inline[1][0].Text)
	assert.Equal(t, "✅ Асфальт", kb.Inline[1][1].Text)
	assert.Equal(t, "tgl_prod_asfalt", kb.Inline[1][1].Data)
	assert.Equal(t, "🔹 Разрешено ✅", kb.Inline[5][0].Text)
	assert.Equal(t, cbApply, kb.Inline[6][1].Data)
}

func TestGroupLink(t *testing.T) {
	assert.Equal(t, "https://t.me/c/3528230429/1", groupLink(-1003528230429))
}
