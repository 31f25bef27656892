package errs

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransportError_MatchesSentinelAndCause(t *testing.T) {
	err := Transport("send", io.ErrUnexpectedEOF)

	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	var te *TransportError
	assert.True(t, errors.As(err, &te))
	assert.Equal(t, "send", te.Op)
}

func TestTransport_NilPassthrough(t *testing.T) {
	assert.NoError(t, Transport("send", nil))
}

func TestValidationError_Unwrap(t *testing.T) {
	err := NewValidationError("product", "unknown choice")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "validation: product: unknown choice", err.Error())
}

func TestConsistencyError_Unwrap(t *testing.T) {
	err := &ConsistencyError{Submitter: 1, Staff: 2}
	assert.ErrorIs(t, err, ErrConsistency)
}
