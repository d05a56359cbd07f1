package llm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromStatusCode(t *testing.T) {
	tests := []struct {
		status int
		kind   ErrorKind
	}{
		{401, ErrKindAuth},
		{403, ErrKindAuth},
		{404, ErrKindModel},
		{429, ErrKindQuota},
		{400, ErrKindBadRequest},
		{422, ErrKindBadRequest},
		{500, ErrKindNetwork},
		{503, ErrKindNetwork},
		{200, ErrKindUnknown},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			err := FromStatusCode(tt.status, "boom")
			assert.Equal(t, tt.kind, err.Kind)
			assert.Equal(t, tt.status, err.StatusCode)
		})
	}
}

func TestKindOf(t *testing.T) {
	err := NewError(ErrKindQuota, "slow down")
	assert.Equal(t, ErrKindQuota, KindOf(err))

	wrapped := fmt.Errorf("outer: %w", err)
	assert.Equal(t, ErrKindQuota, KindOf(wrapped))

	assert.Equal(t, ErrKindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, ErrKindUnknown, KindOf(nil))
}

func TestErrorMessage(t *testing.T) {
	withStatus := FromStatusCode(429, "rate limited")
	assert.Contains(t, withStatus.Error(), "HTTP 429")
	assert.Contains(t, withStatus.Error(), "quota_exhausted")

	withoutStatus := NewError(ErrKindConfig, "missing key")
	assert.Equal(t, "configuration_error: missing key", withoutStatus.Error())
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := WrapError(ErrKindNetwork, "request failed", cause)
	assert.ErrorIs(t, err, cause)
}
