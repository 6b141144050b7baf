package machine

import (
	"encoding/json"
	"testing"

	"github.com/mastercactapus/tubecut/coord"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseState(t *testing.T) {
	for i, name := range stateNames {
		s, ok := ParseState(name)
		assert.True(t, ok)
		assert.Equal(t, State(i), s)
		assert.Equal(t, name, s.String())
	}

	s, ok := ParseState("idle")
	assert.False(t, ok)
	assert.Equal(t, StateIdle, s)
}

func TestStatus_JSON(t *testing.T) {
	data, err := json.Marshal(Status{State: StateAlarm, MPos: coord.Point{X: 1.5, Y: -2}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"state":"Alarm","mpos":{"x":1.5,"y":-2}}`, string(data))

	var s Status
	require.NoError(t, json.Unmarshal(data, &s))
	assert.Equal(t, StateAlarm, s.State)

	assert.Error(t, json.Unmarshal([]byte(`{"state":"Bogus"}`), &s))
}
