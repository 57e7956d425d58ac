package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidOrder, "bad order")
	assert.Equal(t, ErrCodeInvalidOrder, err.Code)
	assert.Equal(t, "[102] bad order", err.Error())
	assert.Nil(t, err.Cause)
}

func TestNewf(t *testing.T) {
	err := Newf(ErrCodeDataNotFound, "no bars for symbol %s", "SPY")
	assert.Equal(t, "[200] no bars for symbol SPY", err.Error())
}

func TestWrapUnwrap(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(ErrCodeDataSourceFailed, "failed to read csv", cause)
	assert.Equal(t, "[201] failed to read csv: disk full", err.Error())
	assert.Equal(t, cause, stderrors.Unwrap(err))
	assert.True(t, stderrors.Is(err, cause))
}

func TestGetCode(t *testing.T) {
	err := New(ErrCodeBrokerInternal, "boom")
	assert.Equal(t, ErrCodeBrokerInternal, GetCode(err))
	assert.Equal(t, ErrCodeUnknown, GetCode(stderrors.New("plain")))

	wrapped := fmt.Errorf("outer: %w", err)
	assert.Equal(t, ErrCodeBrokerInternal, GetCode(wrapped))
}

func TestHasCode(t *testing.T) {
	err := New(ErrCodeEngineNotInitialized, "engine not initialized")
	assert.True(t, HasCode(err, ErrCodeEngineNotInitialized))
	assert.False(t, HasCode(err, ErrCodeInvalidOrder))
}
