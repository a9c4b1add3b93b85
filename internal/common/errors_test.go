package common

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_UnwrapsToSentinel(t *testing.T) {
	assert.ErrorIs(t, NotFound(), ErrorNotFound)
	assert.ErrorIs(t, InvalidCredentials(), ErrorInvalidCredentials)
	assert.False(t, errors.Is(NotFound(), ErrorInvalidCredentials))
}

func TestAPIError_Messages(t *testing.T) {
	assert.Equal(t, "Not found", NotFound().Error())
	assert.Equal(t, "Invalid credentials", InvalidCredentials().Error())
}

func TestAPIError_JSON(t *testing.T) {
	b, err := json.Marshal(NotFound())
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"Not found"}`, string(b))

	var decoded APIError
	require.NoError(t, json.Unmarshal([]byte(`{"message":"boom"}`), &decoded))
	assert.Equal(t, "boom", decoded.Message)
	assert.Nil(t, decoded.Unwrap())
}

func TestWipeByteArray(t *testing.T) {
	buf := []byte("demo123")
	WipeByteArray(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("expected buf[%d]==0, got %d", i, v)
		}
	}
	WipeByteArray(nil)
}
