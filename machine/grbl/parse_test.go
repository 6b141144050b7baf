package grbl

import (
	"testing"

	"github.com/mastercactapus/tubecut/coord"
	"github.com/mastercactapus/tubecut/machine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	stat, err := ParseStatus("<Idle|MPos:12.500,-3.250,0.000|Bf:35,1023|FS:0,0|Pn:XYZ>")
	require.NoError(t, err)
	assert.Equal(t, machine.Status{State: machine.StateIdle, MPos: coord.Point{X: 12.5, Y: -3.25}}, stat)

	data := []struct {
		line string
		exp  machine.Status
	}{
		{"<Run|MPos:1,2>", machine.Status{State: machine.StateRun, MPos: coord.Point{X: 1, Y: 2}}},
		{"  <Jog|FS:600,0|MPos:-1.5,0.25,3>\r", machine.Status{State: machine.StateJog, MPos: coord.Point{X: -1.5, Y: 0.25}}},
		{"<Hold:0|MPos:5.000,6.000,0.000>", machine.Status{State: machine.StateHold, MPos: coord.Point{X: 5, Y: 6}}},
		{"<Door:1|MPos:0,0,0>", machine.Status{State: machine.StateDoor}},
		{"<Alarm|MPos:0,0,0>", machine.Status{State: machine.StateAlarm}},
		{"<Tool|MPos:0,0,0>", machine.Status{State: machine.StateTool}},
		// unknown states fall back to Idle
		{"<Bogus|MPos:7,8,9>", machine.Status{State: machine.StateIdle, MPos: coord.Point{X: 7, Y: 8}}},
		{"<run|MPos:7,8,9>", machine.Status{State: machine.StateIdle, MPos: coord.Point{X: 7, Y: 8}}},
	}
	for _, d := range data {
		t.Run(d.line, func(t *testing.T) {
			stat, err := ParseStatus(d.line)
			require.NoError(t, err)
			assert.Equal(t, d.exp, stat)
		})
	}
}

func TestParseStatus_Errors(t *testing.T) {
	_, err := ParseStatus("ok")
	assert.ErrorIs(t, err, ErrNotStatus)
	_, err = ParseStatus("[MSG:Reset to continue]")
	assert.ErrorIs(t, err, ErrNotStatus)

	for _, line := range []string{
		"<Idle>",
		"<Idle|WPos:1,2,3>",
		"<Idle|MPos:1>",
		"<Idle|MPos:a,2,3>",
		"<Idle|MPos:1,2,3,4>",
		"<|MPos:1,2,3>",
		"<Id le|MPos:1,2,3>",
		"<Idle|MPos:NaN,0,0>",
		"<Idle|MPos:0,Inf,0>",
		"<Idle|MPos:-Inf,1,0>",
	} {
		_, err := ParseStatus(line)
		assert.ErrorIs(t, err, ErrMalformedStatus, line)
	}
}
