package intake

import (
	"sync"

	"github.com/psds-microservice/report-service/internal/model"
)

type State int

const (
	Idle State = iota
	ChoosingProduct
	ChoosingIntent
	UploadingMedia
	WritingComment
	Naming
	GrantingConsent
	InLiveSession
)

func (s State) String() string {
	switch s {
	case ChoosingProduct:
		return "choosing_product"
	case ChoosingIntent:
		return "choosing_intent"
	case UploadingMedia:
		return "uploading_media"
	case WritingComment:
		return "writing_comment"
	case Naming:
		return "naming"
	case GrantingConsent:
		return "granting_consent"
	case InLiveSession:
		return "in_live_session"
	default:
		return "idle"
	}
}

// Draft — незавершённый отчёт.
type Draft struct {
	Product    model.Product
	Intent     model.Intent
	Photos     []string
	Videos     []string
	Comment    string
	ClientName *string
}

// session — анкета одного клиента. batch растёт на каждое вложение; locked —
// пачка медиа уже обрабатывается (принята или отклонена).
type session struct {
	mu     sync.Mutex
	state  State
	draft  Draft
	batch  uint64
	locked bool
}

// reset требует удерживаемого s.mu.
func (s *session) reset() {
	s.state = Idle
	s.draft = Draft{}
	s.locked = false
}
