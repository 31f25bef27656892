// Package errs — доменные ошибки сервиса отчётов. Сравнение через errors.Is / errors.As.
package errs

import (
	"errors"
	"fmt"
)

var (
	ErrReportNotFound = errors.New("report not found")
	ErrAdminNotFound  = errors.New("admin not found")
	ErrAlreadyExists  = errors.New("already exists")

	ErrValidation  = errors.New("validation error")
	ErrTransport   = errors.New("transport error")
	ErrNotModified = errors.New("message is not modified")

	// ErrConsistency: одна из зеркальных записей пары найдена без второй.
	ErrConsistency   = errors.New("relay pairing is inconsistent")
	ErrSubmitterBusy = errors.New("submitter already has an active session")
	ErrStaffBusy     = errors.New("staff member already has an active session")
	ErrNoSession     = errors.New("no active session")
)

// ValidationError — ввод пользователя вне допустимого набора значений.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// TransportError — сбой отправки/редактирования/удаления сообщения.
// Матчится и на ErrTransport, и на исходную причину.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() []error { return []error{ErrTransport, e.Err} }

func Transport(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransportError{Op: op, Err: err}
}

// ConsistencyError описывает полуудалённую пару, найденную в реестре.
type ConsistencyError struct {
	Submitter int64
	Staff     int64
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("relay: inconsistent pairing submitter=%d staff=%d", e.Submitter, e.Staff)
}

func (e *ConsistencyError) Unwrap() error { return ErrConsistency }
