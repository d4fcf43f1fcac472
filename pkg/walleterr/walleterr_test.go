package walleterr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindInvalidAmount, KindOf(ErrInvalidAmount))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))

	// 包装后的错误仍然可以取出 Kind
	wrapped := fmt.Errorf("send failed: %w", ErrInsufficient)
	assert.Equal(t, KindInsufficientFunds, KindOf(wrapped))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("rpc: connection refused")
	err := Wrap(KindGasEstimationFailed, "Gas estimation failed", cause)

	assert.Equal(t, "Gas estimation failed", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestDecode(t *testing.T) {
	kind, msg := Decode(nil)
	assert.Equal(t, Kind(""), kind)
	assert.Equal(t, "OK", msg)

	kind, msg = Decode(ErrNoAccounts)
	assert.Equal(t, KindNoAccounts, kind)
	assert.Equal(t, "No accounts found", msg)

	kind, _ = Decode(errors.New("boom"))
	assert.Equal(t, KindInternal, kind)
}

func TestIs(t *testing.T) {
	assert.True(t, Is(ErrNotConnected, KindNotConnected))
	assert.False(t, Is(ErrNotConnected, KindNoAccounts))
}
