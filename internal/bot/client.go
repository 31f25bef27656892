// Package bot — фронтенды двух ботов: клиентский (анкета) и админский (менеджеры).
package bot

import (
	"context"
	"log/slog"

	"github.com/psds-microservice/report-service/internal/intake"
	"github.com/psds-microservice/report-service/internal/transport"
)

type IntakeMachine interface {
	Start(ctx context.Context, msg transport.Message)
	Cancel(ctx context.Context, msg transport.Message)
	Handle(ctx context.Context, msg transport.Message)
}

// ClientHandler разбирает личные сообщения клиентского бота.
type ClientHandler struct {
	log    *slog.Logger
	intake IntakeMachine
}

func NewClientHandler(log *slog.Logger, m IntakeMachine) *ClientHandler {
	return &ClientHandler{log: log.With("component", "client_bot"), intake: m}
}

func (h *ClientHandler) HandleUpdate(ctx context.Context, upd transport.Update) {
	msg := upd.Message
	if msg == nil || msg.Chat != transport.ChatPrivate {
		return
	}
	name, _, isCmd := msg.Command()
	switch {
	case isCmd && name == intake.StartCmd, msg.Kind == transport.KindText && msg.Text == intake.NewReportButton:
		h.intake.Start(ctx, *msg)
	case isCmd && name == intake.CancelCmd, msg.Kind == transport.KindText && msg.Text == intake.CancelButton:
		h.intake.Cancel(ctx, *msg)
	default:
		h.intake.Handle(ctx, *msg)
	}
}
