package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDuration_JSON(t *testing.T) {
	var v struct {
		Delay Duration `json:"delay"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"delay":"100ms"}`), &v))
	assert.Equal(t, 100*time.Millisecond, v.Delay.Duration)

	require.NoError(t, json.Unmarshal([]byte(`{"delay":2000000000}`), &v))
	assert.Equal(t, 2*time.Second, v.Delay.Duration)

	require.Error(t, json.Unmarshal([]byte(`{"delay":"soon"}`), &v))
	require.Error(t, json.Unmarshal([]byte(`{"delay":true}`), &v))

	b, err := json.Marshal(Duration{15 * time.Minute})
	require.NoError(t, err)
	assert.Equal(t, `"15m0s"`, string(b))
}

func TestDuration_YAML(t *testing.T) {
	var v struct {
		Delay Duration `yaml:"delay"`
	}

	require.NoError(t, yaml.Unmarshal([]byte("delay: 250ms\n"), &v))
	assert.Equal(t, 250*time.Millisecond, v.Delay.Duration)

	require.NoError(t, yaml.Unmarshal([]byte("delay: 1000\n"), &v))
	assert.Equal(t, time.Duration(1000), v.Delay.Duration)
}
