package errors

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrorTypeGroupNotFound, "no such username")
	assert.Equal(t, "group_not_found error: no such username", err.Error())

	annotated := err.WithContext("mygroup", "resolve")
	assert.Equal(t, "group_not_found error: no such username (group mygroup) [phase resolve]", annotated.Error())

	wrapped := Wrap(ErrorTypeNetwork, "fetch failed", errors.New("connection reset"))
	assert.Equal(t, "network error: fetch failed: connection reset", wrapped.Error())
}

func TestWithContextReturnsACopy(t *testing.T) {
	orig := New(ErrorTypeNetwork, "boom")
	annotated := orig.WithContext("g", "fetch")

	assert.Empty(t, orig.Group)
	assert.Empty(t, orig.Phase)
	assert.Equal(t, "g", annotated.Group)
	assert.Equal(t, "fetch", annotated.Phase)
}

func TestUnwrap(t *testing.T) {
	inner := errors.New("socket closed")
	err := Wrap(ErrorTypeNetwork, "fetch failed", inner)

	assert.True(t, errors.Is(err, inner))
	assert.Equal(t, inner, err.Unwrap())
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, ErrorTypeFloodWait, TypeOf(FloodWait(time.Second)))
	assert.Equal(t, ErrorTypeUnknown, TypeOf(errors.New("plain")))
	assert.Equal(t, ErrorTypeUnknown, TypeOf(nil))

	// Classification survives wrapping
	wrapped := fmt.Errorf("outer: %w", New(ErrorTypeAccessDenied, "private"))
	assert.Equal(t, ErrorTypeAccessDenied, TypeOf(wrapped))
	assert.True(t, Is(wrapped, ErrorTypeAccessDenied))
	assert.False(t, Is(wrapped, ErrorTypeNetwork))
}

func TestAsFloodWait(t *testing.T) {
	wait, ok := AsFloodWait(FloodWait(42 * time.Second))
	require.True(t, ok)
	assert.Equal(t, 42*time.Second, wait)

	wrapped := fmt.Errorf("rpc: %w", FloodWait(7*time.Second))
	wait, ok = AsFloodWait(wrapped)
	require.True(t, ok)
	assert.Equal(t, 7*time.Second, wait)

	_, ok = AsFloodWait(New(ErrorTypeNetwork, "nope"))
	assert.False(t, ok)
	_, ok = AsFloodWait(nil)
	assert.False(t, ok)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrorTypeNetwork))

	// Flood-wait is paced by the flood guard, never by the retrier
	assert.False(t, IsRetryable(ErrorTypeFloodWait))

	assert.False(t, IsRetryable(ErrorTypeAuth))
	assert.False(t, IsRetryable(ErrorTypeGroupNotFound))
	assert.False(t, IsRetryable(ErrorTypeAccessDenied))
	assert.False(t, IsRetryable(ErrorTypePersistence))
	assert.False(t, IsRetryable(ErrorTypeUnknown))
}
