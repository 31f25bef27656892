package intake

import (
	"context"
	"log/slog"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/psds-microservice/report-service/internal/dashboard"
	"github.com/psds-microservice/report-service/internal/database/databasetest"
	"github.com/psds-microservice/report-service/internal/model"
	"github.com/psds-microservice/report-service/internal/relay"
	"github.com/psds-microservice/report-service/internal/service"
	"github.com/psds-microservice/report-service/internal/transport"
	"github.com/psds-microservice/report-service/internal/transport/transporttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Отчёт с «нюансом» от анкеты до закрытого диалога с менеджером.
func TestScenario_FlaggedReportIsClaimedAndRelayed(t *testing.T) {
	const (
		group int64 = -100500
		staff int64 = 7
	)
	ctx := context.Background()
	log := slog.New(slog.DiscardHandler)
	db := databasetest.New(t)
	reports := service.NewReportService(db, "B")
	client, admin := transporttest.New(), transporttest.New()
	clock := clockwork.NewFakeClock()

	dash := dashboard.New(log, admin, reports, service.NewSettingsService(db), group, "beaton_admin_bot")
	machine := NewMachine(log, client, NewFinalizer(log, reports, nil, nil, nil), dash, clock, quiet)
	bridge := relay.NewBridge(log, relay.NewRegistry(), reports, machine, dash, client, admin)
	machine.SetRelay(bridge)
	f := &fixture{tr: client, reports: reports, clock: clock, m: machine}

	f.toMedia(t, model.IntentNuance)
	f.burst(t, photo("p1"), photo("p2"))
	machine.Handle(ctx, text("crack visible"))
	machine.Handle(ctx, text(SkipButton))
	machine.Handle(ctx, text(model.ConsentInternal.Label()))

	n, err := reports.CountAll(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	r, err := reports.GetByID(ctx, "B-001")
	require.NoError(t, err)
	assert.Equal(t, model.ReportStatusNew, r.Status)
	assert.Equal(t, []string{"p1", "p2"}, r.Photos)

	panel, ok := admin.Last(group)
	require.True(t, ok)
	assert.Contains(t, panel.Text, "ТРЕБУЮТ ВНИМАНИЯ")
	assert.Contains(t, panel.Text, "`B-001`")
	assert.Equal(t, "https://t.me/beaton_admin_bot?start=take_B-001", panel.Keyboard.Inline[0][0].URL)

	_, err = bridge.Claim(ctx, "B-001", staff)
	require.NoError(t, err)
	assert.Equal(t, InLiveSession, machine.State(user))

	live := admin.Live(group)
	require.Len(t, live, 1)
	updated, _ := admin.Content(group, live[0])
	assert.Contains(t, updated.Text, "Все нюансы отработаны")

	machine.Handle(ctx, text("hello"))
	last, _ := admin.Last(staff)
	assert.Equal(t, "👤 *Клиент:*\nhello", last.Text)

	bridge.Forward(ctx, relay.Staff(staff), transport.Message{UserID: staff, Kind: transport.KindText, Text: "hi"})
	last, _ = client.Last(user)
	assert.Equal(t, "👨‍💼 *Менеджер:*\nhi", last.Text)

	require.True(t, bridge.End(ctx, relay.Staff(staff)))
	assert.Equal(t, Idle, machine.State(user))

	machine.Start(ctx, text("/start"))
	assert.Equal(t, ChoosingProduct, machine.State(user))
}
