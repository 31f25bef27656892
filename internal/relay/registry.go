package relay

import (
	"sync"

	"github.com/psds-microservice/report-service/internal/errs"
)

type Role int

const (
	RoleSubmitter Role = iota + 1
	RoleStaff
)

func (r Role) String() string {
	if r == RoleStaff {
		return "staff"
	}
	return "submitter"
}

// Party — участник диалога. Роль нужна, потому что один и тот же пользователь
// Telegram может быть и клиентом, и менеджером.
type Party struct {
	Role Role
	ID   int64
}

func Submitter(id int64) Party { return Party{Role: RoleSubmitter, ID: id} }
func Staff(id int64) Party     { return Party{Role: RoleStaff, ID: id} }

// Registry — активные пары клиент↔менеджер. Обе зеркальные таблицы меняются под одним мьютексом.
type Registry struct {
	mu      sync.Mutex
	byUser  map[int64]int64
	byStaff map[int64]int64
}

func NewRegistry() *Registry {
	return &Registry{
		byUser:  make(map[int64]int64),
		byStaff: make(map[int64]int64),
	}
}

// Pair связывает клиента и менеджера. Повторная пара тех же участников не ошибка (fresh=false);
// занятость любой стороны с кем-то другим — ErrSubmitterBusy / ErrStaffBusy.
func (r *Registry) Pair(submitter, staff int64) (fresh bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, userPaired := r.byUser[submitter]
	u, staffPaired := r.byStaff[staff]
	switch {
	case userPaired && s == staff && staffPaired && u == submitter:
		return false, nil
	case userPaired && s != staff:
		return false, errs.ErrSubmitterBusy
	case staffPaired && u != submitter:
		return false, errs.ErrStaffBusy
	}
	r.byUser[submitter] = staff
	r.byStaff[staff] = submitter
	activeSessions.Set(float64(len(r.byUser)))
	return true, nil
}

// Counterpart возвращает собеседника p. Полупара (зеркальной записи нет) удаляется,
// а вызывающему возвращается *errs.ConsistencyError.
func (r *Registry) Counterpart(p Party) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	submitter, staff, err := r.lookup(p)
	if err != nil {
		return 0, err
	}
	if p.Role == RoleStaff {
		return submitter, nil
	}
	return staff, nil
}

// Unpair удаляет пару, в которой состоит p.
func (r *Registry) Unpair(p Party) (submitter, staff int64, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	submitter, staff, err = r.lookup(p)
	if err != nil {
		return 0, 0, err
	}
	delete(r.byUser, submitter)
	delete(r.byStaff, staff)
	activeSessions.Set(float64(len(r.byUser)))
	return submitter, staff, nil
}

func (r *Registry) Active(p Party) bool {
	_, err := r.Counterpart(p)
	return err == nil
}

// Len — число живых пар.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byUser)
}

// lookup требует удерживаемого r.mu.
func (r *Registry) lookup(p Party) (submitter, staff int64, err error) {
	switch p.Role {
	case RoleStaff:
		staff = p.ID
		var ok bool
		if submitter, ok = r.byStaff[staff]; !ok {
			return 0, 0, errs.ErrNoSession
		}
		if back, ok := r.byUser[submitter]; !ok || back != staff {
			delete(r.byStaff, staff)
			activeSessions.Set(float64(len(r.byUser)))
			return 0, 0, &errs.ConsistencyError{Submitter: submitter, Staff: staff}
		}
	default:
		submitter = p.ID
		var ok bool
		if staff, ok = r.byUser[submitter]; !ok {
			return 0, 0, errs.ErrNoSession
		}
		if back, ok := r.byStaff[staff]; !ok || back != submitter {
			delete(r.byUser, submitter)
			activeSessions.Set(float64(len(r.byUser)))
			return 0, 0, &errs.ConsistencyError{Submitter: submitter, Staff: staff}
		}
	}
	return submitter, staff, nil
}
